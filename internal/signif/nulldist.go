package signif

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/omics-tools/gsan/internal/calc"
)

// NullDistributor derives p-values from the calculator's known theoretical
// null: chi-squared with 2n degrees of freedom for Fisher, standard normal
// for Stouffer/Reporter/PAGE, and the normal approximation of the rank-sum
// for Wilcoxon. Calculators without a closed-form null are rejected.
type NullDistributor struct{}

// NewNullDistributor creates a theoretical-null estimator.
func NewNullDistributor() *NullDistributor {
	return &NullDistributor{}
}

// Estimate computes observed statistics and closed-form p-values.
func (NullDistributor) Estimate(ctx context.Context, c calc.Calculator, ev Eval) ([]Outcome, error) {
	if !Supports(NullDist, c.Method()) {
		return nil, fmt.Errorf("%w: %s has no theoretical null distribution", ErrUnsupportedCombination, c.Method())
	}

	bound, err := c.Bind(ev.Universe)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", c.Method(), err)
	}

	outcomes := make([]Outcome, len(ev.Sets))
	for i, set := range ev.Sets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stat, err := bound.Score(set.Members)
		if err != nil {
			outcomes[i] = Outcome{Name: set.Name, Stat: math.NaN()}
			continue
		}
		pvals := make(map[Class]float64, len(ev.Classes))
		for _, ct := range ev.Classes {
			p, ok := theoreticalP(c.Method(), stat, len(set.Members), len(ev.Universe), ct.Tail)
			if ok {
				pvals[ct.Class] = p
			}
		}
		outcomes[i] = Outcome{Name: set.Name, Stat: stat, Pvals: pvals}
	}
	return outcomes, nil
}

// theoreticalP maps (calculator, tail) to a closed-form p-value for a set
// of n members in a universe of size total.
func theoreticalP(m calc.Method, stat float64, n, total int, tail Tail) (float64, bool) {
	switch m {
	case calc.Fisher:
		// Right tail only: larger chi-squared means more significant.
		if tail != TailRight {
			return 0, false
		}
		chi := distuv.ChiSquared{K: 2 * float64(n)}
		return chi.Survival(stat), true
	case calc.Stouffer:
		return normalTailP(stat, tail)
	case calc.Reporter:
		// The mean of n standard normals has variance 1/n; scale back to
		// the unit normal before reading the tail.
		return normalTailP(stat*math.Sqrt(float64(n)), tail)
	case calc.Wilcoxon:
		mean, sd := calc.WilcoxonNull(n, total)
		if sd == 0 {
			return 0, false
		}
		return normalTailP((stat-mean)/sd, tail)
	case calc.PAGE:
		return normalTailP(stat, tail)
	}
	return 0, false
}

func normalTailP(z float64, tail Tail) (float64, bool) {
	switch tail {
	case TailRight:
		return distuv.UnitNormal.Survival(z), true
	case TailLeft:
		return distuv.UnitNormal.CDF(z), true
	case TailTwoSided:
		return 2 * distuv.UnitNormal.Survival(math.Abs(z)), true
	}
	return 0, false
}
