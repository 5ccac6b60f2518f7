package calc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// pageCalc implements the PAGE parametric z-score: the member mean compared
// against the universe mean, scaled by the universe standard deviation with
// a finite-population correction:
//
//	z = (meanIn - meanAll) / (sd * sqrt((N-n) / (N*n)))
//
// Approximately standard normal under the null for moderately sized sets.
type pageCalc struct{}

func (pageCalc) Method() Method { return PAGE }

func (pageCalc) Bind(universe []float64) (Evaluator, error) {
	if len(universe) < 2 {
		return nil, fmt.Errorf("%w: need at least two genes", ErrDegenerateInput)
	}
	mean := stat.Mean(universe, nil)
	sd := stat.StdDev(universe, nil)
	if sd == 0 {
		return nil, fmt.Errorf("%w: zero variance across gene-level scores", ErrDegenerateInput)
	}
	return pageEval{values: universe, mean: mean, sd: sd}, nil
}

type pageEval struct {
	values []float64
	mean   float64
	sd     float64
}

func (e pageEval) Score(members []int) (float64, error) {
	n := len(members)
	total := len(e.values)
	if n == 0 {
		return 0, fmt.Errorf("%w: empty member set", ErrDegenerateInput)
	}
	if n >= total {
		return 0, fmt.Errorf("%w: gene set spans the whole universe", ErrDegenerateInput)
	}
	var sum float64
	for _, i := range members {
		sum += e.values[i]
	}
	meanIn := sum / float64(n)
	correction := math.Sqrt(float64(total-n) / (float64(total) * float64(n)))
	return (meanIn - e.mean) / (e.sd * correction), nil
}
