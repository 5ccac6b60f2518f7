package calc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// minQuantileP is the clamp applied before the inverse-normal transform.
// Quantile(0) and Quantile(1) are infinite; p-values this close to the
// boundary carry no additional information.
const minQuantileP = 1e-300

// fisherCalc combines member p-values as -2 * sum(ln p).
// Larger statistic means more significant; chi-squared with 2n df under
// the null of uniform p-values.
type fisherCalc struct{}

func (fisherCalc) Method() Method { return Fisher }

func (fisherCalc) Bind(universe []float64) (Evaluator, error) {
	logs := make([]float64, len(universe))
	for i, p := range universe {
		if p <= 0 {
			return nil, fmt.Errorf("%w: p-value %g at index %d (log-based combination requires p > 0)", ErrDegenerateInput, p, i)
		}
		logs[i] = math.Log(p)
	}
	return fisherEval{logs: logs}, nil
}

type fisherEval struct {
	logs []float64
}

func (e fisherEval) Score(members []int) (float64, error) {
	var sum float64
	for _, i := range members {
		sum += e.logs[i]
	}
	return -2 * sum, nil
}

// stoufferCalc sums inverse-normal-transformed p-values normalized by
// sqrt(set size); standard normal under the null.
type stoufferCalc struct{}

func (stoufferCalc) Method() Method { return Stouffer }

func (stoufferCalc) Bind(universe []float64) (Evaluator, error) {
	return stoufferEval{z: zTransform(universe), normalize: true}, nil
}

// reporterCalc averages inverse-normal-transformed p-values (Z-score mean).
type reporterCalc struct{}

func (reporterCalc) Method() Method { return Reporter }

func (reporterCalc) Bind(universe []float64) (Evaluator, error) {
	return stoufferEval{z: zTransform(universe), normalize: false}, nil
}

// zTransform maps p-values to Phi^-1(1-p), clamping away from the
// boundaries where the quantile diverges.
func zTransform(pvals []float64) []float64 {
	z := make([]float64, len(pvals))
	for i, p := range pvals {
		q := 1 - p
		if q < minQuantileP {
			q = minQuantileP
		} else if q > 1-1e-16 {
			q = 1 - 1e-16
		}
		z[i] = distuv.UnitNormal.Quantile(q)
	}
	return z
}

type stoufferEval struct {
	z         []float64
	normalize bool // true: divide by sqrt(n) (Stouffer); false: by n (Reporter)
}

func (e stoufferEval) Score(members []int) (float64, error) {
	if len(members) == 0 {
		return 0, fmt.Errorf("%w: empty member set", ErrDegenerateInput)
	}
	var sum float64
	for _, i := range members {
		sum += e.z[i]
	}
	if e.normalize {
		return sum / math.Sqrt(float64(len(members))), nil
	}
	return sum / float64(len(members)), nil
}

// tailStrengthCalc computes the Taylor-Tibshirani tail strength of the
// member p-values, ranking each member within the full gene list:
//
//	TS = (1/n) * sum(1 - p_i * (N+1) / rank_i)
//
// Larger statistic means member p-values crowd the significant tail.
type tailStrengthCalc struct{}

func (tailStrengthCalc) Method() Method { return TailStrength }

func (tailStrengthCalc) Bind(universe []float64) (Evaluator, error) {
	r := ranks(universe)
	terms := make([]float64, len(universe))
	scale := float64(len(universe) + 1)
	for i, p := range universe {
		terms[i] = 1 - p*scale/r[i]
	}
	return tailStrengthEval{terms: terms}, nil
}

type tailStrengthEval struct {
	terms []float64
}

func (e tailStrengthEval) Score(members []int) (float64, error) {
	if len(members) == 0 {
		return 0, fmt.Errorf("%w: empty member set", ErrDegenerateInput)
	}
	var sum float64
	for _, i := range members {
		sum += e.terms[i]
	}
	return sum / float64(len(members)), nil
}
