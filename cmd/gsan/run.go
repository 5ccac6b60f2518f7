package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/omics-tools/gsan/internal/adjust"
	"github.com/omics-tools/gsan/internal/calc"
	"github.com/omics-tools/gsan/internal/gsa"
	"github.com/omics-tools/gsan/internal/output"
	"github.com/omics-tools/gsan/internal/runspec"
	"github.com/omics-tools/gsan/internal/signif"
)

func newRunCmd() *cobra.Command {
	var (
		outPath     string
		statName    string
		signifName  string
		adjName     string
		nPerm       int
		gseaParam   float64
		minSize     int
		maxSize     int
		parallelism int
		seed        uint64
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "run <spec.yaml>",
		Short: "Run one gene set analysis from a YAML run specification",
		Long: `Run one gene set analysis. The run specification holds the gene-level
statistics, optional directions, the gene set collection and any options;
flags override options set in the document. Use '-' to read the
specification from stdin.`,
		Example: `  gsan run analysis.yaml
  gsan run --stat gsea --nperm 1000 -o result.tsv analysis.yaml
  cat analysis.yaml | gsan run -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := runspec.Load(args[0])
			if err != nil {
				return err
			}
			opts, err := spec.Options()
			if err != nil {
				return err
			}

			// Flags beat the document; viper-backed defaults sit below both.
			if cmd.Flags().Changed("stat") {
				m, err := calc.Parse(statName)
				if err != nil {
					return err
				}
				opts.GeneSetStat = m
			}
			if cmd.Flags().Changed("signif") {
				m, err := signif.Parse(signifName)
				if err != nil {
					return err
				}
				opts.SignifMethod = m
			}
			if cmd.Flags().Changed("adj") {
				m, err := adjust.Parse(adjName)
				if err != nil {
					return err
				}
				opts.AdjMethod = m
			}
			if cmd.Flags().Changed("nperm") {
				opts.NPerm = nPerm
			} else if spec.NPerm == 0 && viper.IsSet("nperm") {
				opts.NPerm = viper.GetInt("nperm")
			}
			if cmd.Flags().Changed("gsea-param") {
				opts.GSEAParam = gseaParam
			}
			if cmd.Flags().Changed("min-size") {
				opts.SizeLimits.Min = minSize
			}
			if cmd.Flags().Changed("max-size") {
				opts.SizeLimits.Max = maxSize
			}
			if cmd.Flags().Changed("parallelism") {
				opts.Parallelism = parallelism
			} else if spec.Parallelism == 0 && viper.IsSet("parallelism") {
				opts.Parallelism = viper.GetInt("parallelism")
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}
			opts.Verbose = verbose

			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			runner := gsa.NewRunner()
			runner.SetLogger(logger)

			res, err := runner.Run(context.Background(), opts)
			if err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				out, err = os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer out.Close()
			}
			return output.NewTabWriter(out).WriteResult(res)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&statName, "stat", "mean", "Gene-set statistic")
	cmd.Flags().StringVar(&signifName, "signif", "geneSampling", "Significance method")
	cmd.Flags().StringVar(&adjName, "adj", "fdr", "Multiple-testing adjustment method")
	cmd.Flags().IntVar(&nPerm, "nperm", 10000, "Permutation count for gene sampling")
	cmd.Flags().Float64Var(&gseaParam, "gsea-param", 1, "GSEA enrichment-score exponent")
	cmd.Flags().IntVar(&minSize, "min-size", 1, "Minimum gene set size after intersection")
	cmd.Flags().IntVar(&maxSize, "max-size", 0, "Maximum gene set size (0: unbounded)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 1, "Workers for the permutation loop")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "RNG seed (0: derived from the clock)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Report progress")

	return cmd
}
