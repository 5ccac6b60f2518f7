package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/omics-tools/gsan/internal/calc"
	"github.com/omics-tools/gsan/internal/signif"
)

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List gene-set statistics and their supported significance methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STATISTIC\tINPUT\tSIGNIFICANCE METHODS")
			for _, m := range calc.Methods() {
				var sig []string
				for _, s := range signif.Methods() {
					if signif.Supports(s, m) {
						sig = append(sig, string(s))
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m, inputLabel(m.Requires()), strings.Join(sig, ", "))
			}
			return tw.Flush()
		},
	}
}

func inputLabel(k calc.StatKind) string {
	switch k {
	case calc.KindPValues:
		return "p-values"
	case calc.KindScores:
		return "scores"
	default:
		return "any"
	}
}
