// Package signif estimates the significance of gene-set statistics.
//
// Three interchangeable strategies are provided: gene-label permutation
// (GeneSampler), sample-label permutation (SamplePermuter, fed by a
// precomputed permutation matrix) and closed-form theoretical nulls
// (NullDistributor). Each strategy consumes Evals: a universe vector,
// per-set member indices into it, and the directionality classes (with
// comparison tails) served by that evaluation.
package signif

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/omics-tools/gsan/internal/calc"
)

// ErrUnsupportedCombination indicates a calculator x significance-method
// pairing that is not defined, or a directionality class a strategy cannot
// serve.
var ErrUnsupportedCombination = errors.New("unsupported calculator/significance combination")

// Method identifies a significance-estimation strategy.
type Method string

const (
	GeneSampling      Method = "geneSampling"
	SamplePermutation Method = "samplePermutation"
	NullDist          Method = "nullDist"
)

// Methods returns all significance methods in a stable order.
func Methods() []Method {
	return []Method{GeneSampling, SamplePermutation, NullDist}
}

// Parse converts a significance method name into a Method.
func Parse(name string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown significance method %q", name)
}

// Supports reports whether a significance method is defined for the given
// calculator. fgsea is gene-sampling only; theoretical nulls exist only for
// the calculators with a known asymptotic distribution.
func Supports(m Method, c calc.Method) bool {
	switch m {
	case GeneSampling:
		return true
	case SamplePermutation:
		return c != calc.FGSEA
	case NullDist:
		switch c {
		case calc.Fisher, calc.Stouffer, calc.Reporter, calc.Wilcoxon, calc.PAGE:
			return true
		}
		return false
	}
	return false
}

// Class is a directionality class of a gene-set result.
type Class string

const (
	DistinctDirUp  Class = "distinctDirUp"
	DistinctDirDn  Class = "distinctDirDn"
	NonDirectional Class = "nonDirectional"
	MixedDirUp     Class = "mixedDirUp"
	MixedDirDn     Class = "mixedDirDn"
)

// Classes returns the five directionality classes in reporting order.
func Classes() []Class {
	return []Class{DistinctDirUp, DistinctDirDn, NonDirectional, MixedDirUp, MixedDirDn}
}

// Mixed reports whether the class is one of the mixed-directional pair.
func (c Class) Mixed() bool {
	return c == MixedDirUp || c == MixedDirDn
}

// Tail determines which direction of deviation counts as significant when
// an observed statistic is compared against a null distribution.
type Tail int

const (
	// TailRight: larger statistic is more significant.
	TailRight Tail = iota
	// TailLeft: smaller statistic is more significant.
	TailLeft
	// TailTwoSided: larger magnitude is more significant.
	TailTwoSided
	// TailSigned splits by statistic sign: positive statistics compete
	// against the positive part of the null, negative against the
	// negative part (the GSEA convention).
	TailSigned
)

// ClassTail pairs a directionality class with its comparison tail.
type ClassTail struct {
	Class Class
	Tail  Tail
}

// SetMembers names a gene set and its member indices into an Eval universe.
type SetMembers struct {
	Name    string
	Members []int
}

// Eval is one statistic-evaluation task. All classes in Classes share the
// statistic computed from Universe and Members; they differ only in tail.
type Eval struct {
	Universe []float64
	Sets     []SetMembers
	Classes  []ClassTail
	// PermColumns feeds the sample-permutation strategy: each column is a
	// universe-aligned vector of permuted gene-level statistics.
	PermColumns [][]float64
}

// Outcome is the estimate for one gene set under one Eval.
type Outcome struct {
	Name string
	Stat float64
	// Pvals holds one raw p-value per computed class. A class absent from
	// the map was not computable for this set.
	Pvals map[Class]float64
}

// Estimator turns observed gene-set statistics into p-values.
type Estimator interface {
	Estimate(ctx context.Context, c calc.Calculator, ev Eval) ([]Outcome, error)
}

// empiricalP computes (count of background values at least as extreme + 1)
// divided by (background size + 1). TailSigned delegates to the sign-split
// comparison; no tail falls through to a silent floor.
func empiricalP(stat float64, background []float64, tail Tail) float64 {
	if tail == TailSigned {
		return signedP(stat, background)
	}
	extreme := 0
	for _, b := range background {
		switch tail {
		case TailRight:
			if b >= stat {
				extreme++
			}
		case TailLeft:
			if b <= stat {
				extreme++
			}
		case TailTwoSided:
			if math.Abs(b) >= math.Abs(stat) {
				extreme++
			}
		}
	}
	return float64(extreme+1) / float64(len(background)+1)
}

// signedP is the sign-split empirical p-value used by the GSEA family: the
// observed score competes only against background scores of its own sign.
func signedP(stat float64, background []float64) float64 {
	extreme, sameSign := 0, 0
	for _, b := range background {
		if (stat >= 0) != (b >= 0) {
			continue
		}
		sameSign++
		if math.Abs(b) >= math.Abs(stat) {
			extreme++
		}
	}
	return float64(extreme+1) / float64(sameSign+1)
}

// signedClass maps a signed statistic to the distinct-directional class it
// reports under.
func signedClass(stat float64) Class {
	if stat >= 0 {
		return DistinctDirUp
	}
	return DistinctDirDn
}
