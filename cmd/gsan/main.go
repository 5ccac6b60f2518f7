// Package main provides the gsan command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var showVersion bool

	cmd := &cobra.Command{
		Use:   "gsan",
		Short: "Gene set analysis from per-gene statistics",
		Long: `gsan scores gene sets against per-gene statistics (p-values or signed
scores) and estimates significance across directionality classes using
gene-label permutation, sample permutation or theoretical nulls.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Printf("gsan version %s (%s) built %s\n", version, commit, date)
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newMethodsCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads persistent defaults from ~/.gsan.yaml and the GSAN_*
// environment, underneath any explicit flags.
func initConfig() {
	viper.SetConfigName(".gsan")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("gsan")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // missing config file is fine
}

// newLogger builds the tool logger: human-readable progress on stderr,
// debug level when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
