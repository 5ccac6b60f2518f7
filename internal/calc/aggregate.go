package calc

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// aggregateCalc covers the direct aggregates: mean, median and sum of the
// member statistics. Works for both p-value-like and score-like input; the
// caller decides which tail is significant.
type aggregateCalc struct {
	method Method
}

func (c aggregateCalc) Method() Method { return c.method }

func (c aggregateCalc) Bind(universe []float64) (Evaluator, error) {
	return aggregateEval{method: c.method, values: universe}, nil
}

type aggregateEval struct {
	method Method
	values []float64
}

func (e aggregateEval) Score(members []int) (float64, error) {
	if len(members) == 0 {
		return 0, fmt.Errorf("%w: empty member set", ErrDegenerateInput)
	}
	vals := make(stats.Float64Data, len(members))
	for j, i := range members {
		vals[j] = e.values[i]
	}
	switch e.method {
	case Mean:
		return stats.Mean(vals)
	case Median:
		return stats.Median(vals)
	case Sum:
		return stats.Sum(vals)
	}
	return 0, fmt.Errorf("aggregate %q not implemented", e.method)
}

// maxMeanCalc implements the Efron-Tibshirani maxmean statistic: average
// the positive and negative parts of the member scores separately (both
// divided by the full set size) and keep whichever magnitude wins,
// preserving its sign.
type maxMeanCalc struct{}

func (maxMeanCalc) Method() Method { return MaxMean }

func (maxMeanCalc) Bind(universe []float64) (Evaluator, error) {
	return maxMeanEval{values: universe}, nil
}

type maxMeanEval struct {
	values []float64
}

func (e maxMeanEval) Score(members []int) (float64, error) {
	if len(members) == 0 {
		return 0, fmt.Errorf("%w: empty member set", ErrDegenerateInput)
	}
	var pos, neg float64
	for _, i := range members {
		v := e.values[i]
		if v > 0 {
			pos += v
		} else {
			neg -= v
		}
	}
	n := float64(len(members))
	pos /= n
	neg /= n
	if pos >= neg {
		return pos, nil
	}
	return -neg, nil
}
