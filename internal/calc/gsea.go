package calc

import (
	"fmt"
	"math"
	"sort"
)

// gseaCalc computes the weighted Kolmogorov-Smirnov-like enrichment score:
// walk the universe ranked by decreasing score, stepping up by
// |score|^param (normalized) at members and down by 1/(N-n) elsewhere; the
// enrichment score is the running sum's largest deviation from zero.
//
// The fast variant skips the full walk and evaluates the running sum only
// at member positions, where every extremum must occur. Both variants
// produce identical scores; the fast one is what the gene-sampling
// significance path uses for its permutation backgrounds.
type gseaCalc struct {
	param float64
	fast  bool
}

func (c gseaCalc) Method() Method {
	if c.fast {
		return FGSEA
	}
	return GSEA
}

func (c gseaCalc) Bind(universe []float64) (Evaluator, error) {
	if len(universe) == 0 {
		return nil, fmt.Errorf("%w: empty universe", ErrDegenerateInput)
	}
	// Rank genes by decreasing score.
	order := make([]int, len(universe))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return universe[order[a]] > universe[order[b]]
	})
	// position[i] = rank of gene i in the decreasing ordering.
	position := make([]int, len(universe))
	weight := make([]float64, len(universe))
	for r, i := range order {
		position[i] = r
		weight[i] = math.Pow(math.Abs(universe[i]), c.param)
	}
	return gseaEval{
		position: position,
		weight:   weight,
		fast:     c.fast,
	}, nil
}

type gseaEval struct {
	position []int
	weight   []float64 // |score|^param per gene
	fast     bool
}

func (e gseaEval) Score(members []int) (float64, error) {
	n := len(members)
	total := len(e.position)
	if n == 0 {
		return 0, fmt.Errorf("%w: empty member set", ErrDegenerateInput)
	}
	if n >= total {
		return 0, fmt.Errorf("%w: gene set spans the whole universe", ErrDegenerateInput)
	}

	var weightSum float64
	hits := make([]hit, 0, n)
	for _, i := range members {
		weightSum += e.weight[i]
		hits = append(hits, hit{pos: e.position[i], w: e.weight[i]})
	}
	if weightSum == 0 {
		// All member scores are zero; the running sum never rises.
		return 0, nil
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].pos < hits[b].pos })

	miss := 1 / float64(total-n)
	if e.fast {
		return enrichmentFast(hits, weightSum, miss), nil
	}
	return enrichmentWalk(hits, weightSum, miss, total), nil
}

type hit struct {
	pos int
	w   float64
}

// enrichmentWalk evaluates the running sum across all universe positions.
func enrichmentWalk(hits []hit, weightSum, miss float64, total int) float64 {
	var run, maxDev float64
	next := 0
	for pos := 0; pos < total; pos++ {
		if next < len(hits) && hits[next].pos == pos {
			run += hits[next].w / weightSum
			next++
		} else {
			run -= miss
		}
		if math.Abs(run) > math.Abs(maxDev) {
			maxDev = run
		}
	}
	return maxDev
}

// enrichmentFast touches only the member positions. Between hits the
// running sum decreases monotonically, so the maximum occurs right after a
// hit and the minimum right before one.
func enrichmentFast(hits []hit, weightSum, miss float64) float64 {
	var run, maxDev float64
	prev := -1
	for _, h := range hits {
		// Misses strictly between the previous hit and this one.
		run -= float64(h.pos-prev-1) * miss
		if math.Abs(run) > math.Abs(maxDev) {
			maxDev = run
		}
		run += h.w / weightSum
		if math.Abs(run) > math.Abs(maxDev) {
			maxDev = run
		}
		prev = h.pos
	}
	// The tail after the last hit only walks back toward zero; the final
	// value is (up to rounding) zero and never a new extremum.
	return maxDev
}
