package gsa

import (
	"fmt"
	"math"

	"github.com/omics-tools/gsan/internal/calc"
	"github.com/omics-tools/gsan/internal/signif"
)

// dataset is the normalized internal representation built once at the
// boundary: fixed-width arrays aligned to a single gene order. Nothing
// downstream performs type detection or re-alignment.
type dataset struct {
	names    []string
	stats    []float64
	dirs     []float64 // nil when no direction vector was supplied
	statType StatType

	// classes actually requested for this run, after defaulting.
	classes []signif.Class

	// permStats/permDirs are the sample-permutation columns aligned to
	// names; nil outside the sample-permutation strategy.
	permStats [][]float64
	permDirs  [][]float64
}

// hasClass reports whether the run computes the given class.
func (d *dataset) hasClass(cl signif.Class) bool {
	for _, c := range d.classes {
		if c == cl {
			return true
		}
	}
	return false
}

// normalize validates and reshapes the inputs against each other, detects
// the statistic type and resolves the directionality classes to compute.
// All taxonomy errors surface here, before any statistic is computed.
func normalize(o *Options) (*dataset, error) {
	d := &dataset{}

	// Drop NaN statistics: treated as missing, not an error.
	rawNames := o.GeneStats.Names()
	rawStats := o.GeneStats.Values()
	d.names = make([]string, 0, len(rawNames))
	d.stats = make([]float64, 0, len(rawStats))
	for i, v := range rawStats {
		if math.IsNaN(v) {
			continue
		}
		d.names = append(d.names, rawNames[i])
		d.stats = append(d.stats, v)
	}
	if len(d.names) == 0 {
		return nil, fmt.Errorf("gene-level statistics contain no usable values")
	}

	if isPValueLike(d.stats) {
		d.statType = StatPValues
	} else {
		d.statType = StatScores
	}

	// Calculator/input-type compatibility.
	switch o.GeneSetStat.Requires() {
	case calc.KindPValues:
		if d.statType != StatPValues {
			return nil, fmt.Errorf("%w: %s requires p-value-like input, detected %s", ErrIncompatibleStatType, o.GeneSetStat, d.statType)
		}
	case calc.KindScores:
		if d.statType != StatScores {
			return nil, fmt.Errorf("%w: %s requires score-like input, detected %s", ErrIncompatibleStatType, o.GeneSetStat, d.statType)
		}
	}

	// Align the direction vector. Its identifier set must equal the
	// original statistics' identifiers exactly, including genes whose
	// statistic was dropped as NaN.
	if o.Directions != nil {
		if o.Directions.Len() != o.GeneStats.Len() {
			return nil, fmt.Errorf("%w: %d directions for %d gene statistics", ErrInputMismatch, o.Directions.Len(), o.GeneStats.Len())
		}
		for _, n := range rawNames {
			if _, ok := o.Directions.Value(n); !ok {
				return nil, fmt.Errorf("%w: direction vector is missing gene %q", ErrInputMismatch, n)
			}
		}
		d.dirs = make([]float64, len(d.names))
		for i, n := range d.names {
			v, _ := o.Directions.Value(n)
			d.dirs[i] = v
		}
	}

	d.classes = resolveClasses(o, d)

	// Distinct- and mixed-directional classes on p-value-like input need
	// direction signs; scores carry their own sign.
	if d.statType == StatPValues && d.dirs == nil {
		for _, cl := range d.classes {
			if cl != signif.NonDirectional {
				return nil, fmt.Errorf("%w: class %s on p-value-like input", ErrMissingDirections, cl)
			}
		}
	}
	if len(d.classes) == 0 {
		return nil, fmt.Errorf("%w: no directionality class is computable for %s with the given input", ErrUnsupportedCombination, o.GeneSetStat)
	}

	if o.SignifMethod == signif.SamplePermutation {
		cols, err := o.PermStats.aligned(d.names)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInputMismatch, err)
		}
		d.permStats = cols
		if o.PermDirections != nil {
			dcols, err := o.PermDirections.aligned(d.names)
			if err != nil {
				return nil, fmt.Errorf("%w: permuted directions: %v", ErrInputMismatch, err)
			}
			if len(dcols) != len(cols) {
				return nil, fmt.Errorf("%w: %d permuted direction columns for %d statistic columns", ErrInputMismatch, len(dcols), len(cols))
			}
			d.permDirs = dcols
		}
	}

	return d, nil
}

// resolveClasses expands an empty class request to every class the
// calculator, input type and significance method jointly support.
func resolveClasses(o *Options, d *dataset) []signif.Class {
	if len(o.Classes) > 0 {
		out := make([]signif.Class, len(o.Classes))
		copy(out, o.Classes)
		return out
	}
	var out []signif.Class
	for _, cl := range signif.Classes() {
		if !classAvailable(cl, o.GeneSetStat) {
			continue
		}
		// Mixed classes are undefined under sample permutation; the
		// default selection omits them rather than failing.
		if cl.Mixed() && o.SignifMethod == signif.SamplePermutation {
			continue
		}
		// Without directions, p-value-like input can only serve the
		// non-directional class.
		if d.statType == StatPValues && d.dirs == nil && cl != signif.NonDirectional {
			continue
		}
		out = append(out, cl)
	}
	return out
}
