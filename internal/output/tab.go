// Package output provides result output formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/omics-tools/gsan/internal/gsa"
	"github.com/omics-tools/gsan/internal/signif"
)

// classLabels maps directionality classes to their column suffixes.
var classLabels = map[signif.Class]string{
	signif.DistinctDirUp:  "distinct_dir_up",
	signif.DistinctDirDn:  "distinct_dir_dn",
	signif.NonDirectional: "non_dir",
	signif.MixedDirUp:     "mixed_dir_up",
	signif.MixedDirDn:     "mixed_dir_dn",
}

// TabWriter writes an analysis result as a tab-delimited table: one row
// per gene set, one stat/p/padj column triple per directionality class.
// Classes not computed for a set are written as "-".
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a tab-delimited result writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteResult writes the header and every gene-set row, then flushes.
func (tw *TabWriter) WriteResult(res *gsa.Result) error {
	cols := []string{"name", "genes_tot", "genes_up", "genes_dn"}
	for _, cl := range signif.Classes() {
		label := classLabels[cl]
		cols = append(cols, "stat_"+label, "p_"+label, "padj_"+label)
	}
	if _, err := tw.w.WriteString(strings.Join(cols, "\t") + "\n"); err != nil {
		return err
	}

	for _, set := range res.Sets {
		fields := []string{
			set.Name,
			fmt.Sprintf("%d", set.NGenesTot),
			fmt.Sprintf("%d", set.NGenesUp),
			fmt.Sprintf("%d", set.NGenesDn),
		}
		for _, cl := range signif.Classes() {
			cr, ok := set.Classes[cl]
			if !ok {
				fields = append(fields, "-", "-", "-")
				continue
			}
			fields = append(fields,
				fmt.Sprintf("%g", cr.Stat),
				fmt.Sprintf("%g", cr.P),
				fmt.Sprintf("%g", cr.PAdj))
		}
		if _, err := tw.w.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}
	return tw.w.Flush()
}
