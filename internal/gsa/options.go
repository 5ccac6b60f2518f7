package gsa

import (
	"fmt"

	"github.com/omics-tools/gsan/internal/adjust"
	"github.com/omics-tools/gsan/internal/calc"
	"github.com/omics-tools/gsan/internal/signif"
)

// SizeLimits is the closed interval of allowed gene-set sizes, counted
// after intersection with the measured genes. Max <= 0 means unbounded.
type SizeLimits struct {
	Min int
	Max int
}

// contains reports whether n falls within the limits.
func (l SizeLimits) contains(n int) bool {
	if n < l.Min {
		return false
	}
	return l.Max <= 0 || n <= l.Max
}

// Options configures a single analysis run. The zero value is not usable;
// start from DefaultOptions and set the inputs.
type Options struct {
	// GeneStats holds the per-gene statistics (required).
	GeneStats *GeneVector
	// Directions optionally holds per-gene direction signs. Required for
	// distinct- and mixed-directional classes on p-value-like input.
	Directions *GeneVector
	// Collection is the gene set collection (required).
	Collection *Collection

	// GeneSetStat selects the calculator.
	GeneSetStat calc.Method
	// SignifMethod selects the significance-estimation strategy.
	SignifMethod signif.Method
	// AdjMethod selects the multiple-testing correction.
	AdjMethod adjust.Method
	// Classes optionally restricts the directionality classes to compute.
	// Empty means every class the calculator/significance combination
	// supports.
	Classes []signif.Class

	// SizeLimits filters gene sets by intersected member count.
	SizeLimits SizeLimits
	// PermStats and PermDirections feed the sample-permutation strategy.
	PermStats      *PermutationMatrix
	PermDirections *PermutationMatrix
	// NPerm is the permutation count for gene sampling.
	NPerm int
	// GSEAParam is the enrichment-score exponent.
	GSEAParam float64
	// Parallelism is the worker count for the permutation loop.
	Parallelism int
	// Seed seeds the gene-sampling RNG; 0 derives a seed from the clock.
	Seed uint64
	// Verbose enables progress logging. No effect on results.
	Verbose bool
}

// DefaultOptions returns the documented defaults: mean statistic, gene
// sampling with 10000 permutations, FDR adjustment, size limits [1, inf).
func DefaultOptions() Options {
	return Options{
		GeneSetStat:  calc.Mean,
		SignifMethod: signif.GeneSampling,
		AdjMethod:    adjust.FDR,
		SizeLimits:   SizeLimits{Min: 1},
		NPerm:        10000,
		GSEAParam:    1,
		Parallelism:  1,
	}
}

// validate checks everything that can be checked without touching the
// data: enum membership, parameter ranges and the combination rules.
func (o *Options) validate() error {
	if o.GeneStats == nil || o.GeneStats.Len() == 0 {
		return fmt.Errorf("gene-level statistics are required")
	}
	if o.Collection == nil || o.Collection.Len() == 0 {
		return fmt.Errorf("a gene set collection is required")
	}
	if _, err := calc.Parse(string(o.GeneSetStat)); err != nil {
		return err
	}
	if _, err := signif.Parse(string(o.SignifMethod)); err != nil {
		return err
	}
	if _, err := adjust.Parse(string(o.AdjMethod)); err != nil {
		return err
	}
	if o.NPerm < 1 {
		return fmt.Errorf("nPerm must be positive, got %d", o.NPerm)
	}
	if o.Parallelism < 1 {
		return fmt.Errorf("parallelism must be positive, got %d", o.Parallelism)
	}
	if o.SizeLimits.Min < 1 {
		return fmt.Errorf("minimum gene set size must be at least 1, got %d", o.SizeLimits.Min)
	}
	if o.SizeLimits.Max > 0 && o.SizeLimits.Max < o.SizeLimits.Min {
		return fmt.Errorf("gene set size limits [%d, %d] are empty", o.SizeLimits.Min, o.SizeLimits.Max)
	}

	if !signif.Supports(o.SignifMethod, o.GeneSetStat) {
		return fmt.Errorf("%w: %s with %s", ErrUnsupportedCombination, o.GeneSetStat, o.SignifMethod)
	}
	if o.GeneSetStat == calc.GSEA && o.AdjMethod != adjust.FDR && o.AdjMethod != adjust.None {
		return fmt.Errorf("gsea only supports adjustment methods fdr and none, got %q", o.AdjMethod)
	}
	if o.SignifMethod == signif.SamplePermutation {
		if o.PermStats == nil || o.PermStats.NPerm() == 0 {
			return fmt.Errorf("sample permutation requires a permutation matrix")
		}
		for _, cl := range o.Classes {
			if cl.Mixed() {
				return fmt.Errorf("%w: %s under sample permutation", ErrUnsupportedCombination, cl)
			}
		}
	}
	for _, cl := range o.Classes {
		if !classAvailable(cl, o.GeneSetStat) {
			return fmt.Errorf("%w: class %s is not defined for %s", ErrUnsupportedCombination, cl, o.GeneSetStat)
		}
	}
	return nil
}

// classAvailable reports whether a directionality class is ever produced
// by the given calculator, regardless of input type.
func classAvailable(cl signif.Class, m calc.Method) bool {
	switch m {
	case calc.MaxMean:
		return cl == signif.NonDirectional
	case calc.GSEA, calc.FGSEA:
		return cl == signif.DistinctDirUp || cl == signif.DistinctDirDn
	case calc.PAGE:
		return cl == signif.DistinctDirUp || cl == signif.DistinctDirDn || cl == signif.NonDirectional
	default:
		return true
	}
}
