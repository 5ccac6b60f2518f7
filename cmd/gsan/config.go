package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/omics-tools/gsan/internal/adjust"
	"github.com/omics-tools/gsan/internal/calc"
	"github.com/omics-tools/gsan/internal/signif"
)

// configKeys are the persistent defaults the run command consults. Each
// validator rejects a value that the analysis itself would reject later.
var configKeys = map[string]struct {
	usage    string
	validate func(string) error
}{
	"nperm": {"default permutation count for gene sampling", func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("nperm must be a positive integer, got %q", v)
		}
		return nil
	}},
	"parallelism": {"default worker count for the permutation loop", func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("parallelism must be a positive integer, got %q", v)
		}
		return nil
	}},
	"stat": {"default gene-set statistic", func(v string) error {
		_, err := calc.Parse(v)
		return err
	}},
	"signif": {"default significance method", func(v string) error {
		_, err := signif.Parse(v)
		return err
	}},
	"adj": {"default multiple-testing adjustment", func(v string) error {
		_, err := adjust.Parse(v)
		return err
	}},
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage persistent analysis defaults",
		Long:  "List, get or set the defaults stored in ~/.gsan.yaml. Flags and run-spec values always take precedence.",
		Example: `  gsan config                   # list known keys and effective values
  gsan config set nperm 50000
  gsan config get nperm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listConfig(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a persistent default",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfig(args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one persistent default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if _, known := configKeys[key]; !known {
				return fmt.Errorf("unknown config key %q", key)
			}
			if !viper.IsSet(key) {
				return fmt.Errorf("key %q is not set", key)
			}
			fmt.Println(viper.Get(key))
			return nil
		},
	})

	return cmd
}

func listConfig(cmd *cobra.Command) error {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tDESCRIPTION")
	for _, k := range keys {
		value := "(unset)"
		if viper.IsSet(k) {
			value = fmt.Sprint(viper.Get(k))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k, value, configKeys[k].usage)
	}
	return tw.Flush()
}

func setConfig(key, value string) error {
	spec, known := configKeys[key]
	if !known {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := spec.validate(value); err != nil {
		return err
	}
	viper.Set(key, value)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".gsan.yaml")
	}
	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}
