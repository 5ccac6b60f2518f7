package calc

import (
	"fmt"
	"math"
)

// wilcoxonCalc computes the Wilcoxon rank-sum statistic: the sum of the
// member ranks within the full ascending ranking of the universe. Under the
// null it is approximately normal with mean n(N+1)/2 and variance
// n(N-n)(N+1)/12.
type wilcoxonCalc struct{}

func (wilcoxonCalc) Method() Method { return Wilcoxon }

func (wilcoxonCalc) Bind(universe []float64) (Evaluator, error) {
	return wilcoxonEval{ranks: ranks(universe)}, nil
}

type wilcoxonEval struct {
	ranks []float64
}

func (e wilcoxonEval) Score(members []int) (float64, error) {
	if len(members) == 0 {
		return 0, fmt.Errorf("%w: empty member set", ErrDegenerateInput)
	}
	var sum float64
	for _, i := range members {
		sum += e.ranks[i]
	}
	return sum, nil
}

// WilcoxonNull returns the null mean and standard deviation of the
// rank-sum statistic for a set of n members in a universe of size total.
func WilcoxonNull(n, total int) (mean, sd float64) {
	fn := float64(n)
	fN := float64(total)
	mean = fn * (fN + 1) / 2
	variance := fn * (fN - fn) * (fN + 1) / 12
	if variance <= 0 {
		return mean, 0
	}
	return mean, math.Sqrt(variance)
}
