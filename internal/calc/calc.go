// Package calc implements the gene-set statistic calculators.
//
// A calculator turns a universe of per-gene statistics plus a set of member
// indices into a single scalar. Calculators are bound to a universe once
// (precomputing ranks, transforms and sort orders), then scored repeatedly
// against member index sets. Gene-label permutation keeps the universe fixed
// and varies only the member indices, so binding once makes the permutation
// loop cheap.
package calc

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDegenerateInput indicates gene-level values outside a calculator's
// valid domain, e.g. a p-value of exactly zero for log-based combination.
var ErrDegenerateInput = errors.New("degenerate gene-level input")

// Method identifies a gene-set statistic calculator.
type Method string

const (
	Fisher       Method = "fisher"
	Stouffer     Method = "stouffer"
	Reporter     Method = "reporter"
	TailStrength Method = "tailStrength"
	Wilcoxon     Method = "wilcoxon"
	Mean         Method = "mean"
	Median       Method = "median"
	Sum          Method = "sum"
	MaxMean      Method = "maxmean"
	GSEA         Method = "gsea"
	FGSEA        Method = "fgsea"
	PAGE         Method = "page"
)

// Methods returns all supported calculator methods in a stable order.
func Methods() []Method {
	return []Method{
		Fisher, Stouffer, Reporter, TailStrength, Wilcoxon,
		Mean, Median, Sum, MaxMean, GSEA, FGSEA, PAGE,
	}
}

// Parse converts a method name into a Method.
func Parse(name string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown gene-set statistic %q", name)
}

// StatKind describes the kind of gene-level statistic a calculator accepts.
type StatKind int

const (
	// KindAny accepts both p-value-like and score-like input.
	KindAny StatKind = iota
	// KindPValues requires values in [0, 1].
	KindPValues
	// KindScores requires signed scores (t-values, fold changes).
	KindScores
)

// Requires reports the input kind a calculator demands.
func (m Method) Requires() StatKind {
	switch m {
	case Fisher, Stouffer, Reporter, TailStrength:
		return KindPValues
	case MaxMean, GSEA, FGSEA, PAGE:
		return KindScores
	default:
		return KindAny
	}
}

// Calculator is a pure gene-set statistic. Bind precomputes any
// universe-dependent state and returns an Evaluator for that universe.
type Calculator interface {
	Method() Method
	Bind(universe []float64) (Evaluator, error)
}

// Evaluator scores member index sets against a bound universe.
type Evaluator interface {
	// Score computes the gene-set statistic for the given member indices.
	Score(members []int) (float64, error)
}

// New constructs the calculator for a method. gseaParam is the enrichment
// score exponent and is only consulted by the GSEA family.
func New(m Method, gseaParam float64) (Calculator, error) {
	switch m {
	case Fisher:
		return fisherCalc{}, nil
	case Stouffer:
		return stoufferCalc{}, nil
	case Reporter:
		return reporterCalc{}, nil
	case TailStrength:
		return tailStrengthCalc{}, nil
	case Wilcoxon:
		return wilcoxonCalc{}, nil
	case Mean:
		return aggregateCalc{method: Mean}, nil
	case Median:
		return aggregateCalc{method: Median}, nil
	case Sum:
		return aggregateCalc{method: Sum}, nil
	case MaxMean:
		return maxMeanCalc{}, nil
	case GSEA:
		return gseaCalc{param: gseaParam, fast: false}, nil
	case FGSEA:
		return gseaCalc{param: gseaParam, fast: true}, nil
	case PAGE:
		return pageCalc{}, nil
	default:
		return nil, fmt.Errorf("unknown gene-set statistic %q", m)
	}
}

// ranks returns ascending 1-based ranks of values, with ties assigned the
// average of the ranks they span.
func ranks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// Positions i..j hold tied values; average their ranks.
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			out[order[k]] = avg
		}
		i = j + 1
	}
	return out
}
