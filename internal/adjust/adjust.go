// Package adjust applies multiple-testing corrections to p-value vectors.
// Each directionality class of an analysis is adjusted independently;
// classes are never pooled.
package adjust

import (
	"fmt"
	"sort"
)

// Method names a multiple-testing correction. FDR is the Benjamini-Hochberg
// step-up procedure; BY is the Benjamini-Yekutieli variant for dependent
// tests.
type Method string

const (
	None       Method = "none"
	Bonferroni Method = "bonferroni"
	Holm       Method = "holm"
	Hochberg   Method = "hochberg"
	FDR        Method = "fdr"
	BY         Method = "BY"
)

// Methods returns all supported correction methods.
func Methods() []Method {
	return []Method{None, Bonferroni, Holm, Hochberg, FDR, BY}
}

// Parse converts a method name into a Method.
func Parse(name string) (Method, error) {
	for _, m := range Methods() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown adjustment method %q", name)
}

// Adjust returns the corrected p-values for one directionality class.
// The output has the same length and order as the input.
func Adjust(pvals []float64, method Method) ([]float64, error) {
	switch method {
	case None:
		out := make([]float64, len(pvals))
		copy(out, pvals)
		return out, nil
	case Bonferroni:
		return bonferroni(pvals), nil
	case Holm:
		return holm(pvals), nil
	case Hochberg:
		return hochberg(pvals), nil
	case FDR:
		return benjaminiHochberg(pvals), nil
	case BY:
		return benjaminiYekutieli(pvals), nil
	default:
		return nil, fmt.Errorf("unknown adjustment method %q", method)
	}
}

func bonferroni(pvals []float64) []float64 {
	n := float64(len(pvals))
	out := make([]float64, len(pvals))
	for i, p := range pvals {
		out[i] = clamp01(p * n)
	}
	return out
}

// ascendingOrder returns the indices of pvals sorted by increasing value.
func ascendingOrder(pvals []float64) []int {
	order := make([]int, len(pvals))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return pvals[order[a]] < pvals[order[b]] })
	return order
}

// holm is the step-down Bonferroni: walk p-values ascending, multiply by
// the remaining test count, and carry the running maximum forward.
func holm(pvals []float64) []float64 {
	n := len(pvals)
	order := ascendingOrder(pvals)
	out := make([]float64, n)
	running := 0.0
	for k, i := range order {
		adj := pvals[i] * float64(n-k)
		if adj > running {
			running = adj
		}
		out[i] = clamp01(running)
	}
	return out
}

// hochberg is the step-up counterpart: walk descending and carry the
// running minimum backward.
func hochberg(pvals []float64) []float64 {
	n := len(pvals)
	order := ascendingOrder(pvals)
	out := make([]float64, n)
	running := 1.0
	for k := n - 1; k >= 0; k-- {
		i := order[k]
		adj := pvals[i] * float64(n-k)
		if adj < running {
			running = adj
		}
		out[i] = clamp01(running)
	}
	return out
}

// benjaminiHochberg controls the false discovery rate via the classic
// step-up procedure: adj_(k) = min over j >= k of p_(j) * n/j.
func benjaminiHochberg(pvals []float64) []float64 {
	return fdrStepUp(pvals, 1)
}

// benjaminiYekutieli is BH with the harmonic-sum penalty for arbitrary
// dependence between tests.
func benjaminiYekutieli(pvals []float64) []float64 {
	var c float64
	for i := 1; i <= len(pvals); i++ {
		c += 1 / float64(i)
	}
	return fdrStepUp(pvals, c)
}

func fdrStepUp(pvals []float64, penalty float64) []float64 {
	n := len(pvals)
	order := ascendingOrder(pvals)
	out := make([]float64, n)
	running := 1.0
	for k := n - 1; k >= 0; k-- {
		i := order[k]
		// Divide before multiplying: the rank ratio is exactly 1 at the
		// top of the ladder, where p*n/n would round below the raw p.
		adj := pvals[i] * penalty * (float64(n) / float64(k+1))
		if adj < running {
			running = adj
		}
		// The step-up minimum is mathematically >= the raw p-value; keep
		// that true through floating point as well.
		if running < pvals[i] {
			out[i] = clamp01(pvals[i])
		} else {
			out[i] = clamp01(running)
		}
	}
	return out
}

func clamp01(p float64) float64 {
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}
