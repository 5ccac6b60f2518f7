package signif

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omics-tools/gsan/internal/calc"
)

// SamplePermuter estimates significance from a caller-supplied permutation
// matrix: gene-level statistics recomputed upstream after permuting the
// sample labels. Every permutation column is scored exactly as the real
// data, giving each gene set its own background. Mixed-directional classes
// are undefined here (the member subset would change per permutation) and
// are rejected during option validation.
type SamplePermuter struct {
	workers int
	logger  *zap.Logger
}

// NewSamplePermuter creates a sample-permutation estimator.
func NewSamplePermuter(workers int) *SamplePermuter {
	if workers < 1 {
		workers = 1
	}
	return &SamplePermuter{workers: workers, logger: zap.NewNop()}
}

// SetLogger sets the logger for progress messages.
func (s *SamplePermuter) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Estimate scores the observed data and every permutation column in
// ev.PermColumns. A failure in any column aborts the whole run.
func (s *SamplePermuter) Estimate(ctx context.Context, c calc.Calculator, ev Eval) ([]Outcome, error) {
	for _, ct := range ev.Classes {
		if ct.Class.Mixed() {
			return nil, fmt.Errorf("%w: %s under sample permutation", ErrUnsupportedCombination, ct.Class)
		}
	}
	if len(ev.PermColumns) == 0 {
		return nil, fmt.Errorf("sample permutation requires a permutation matrix")
	}

	bound, err := c.Bind(ev.Universe)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", c.Method(), err)
	}

	outcomes := make([]Outcome, len(ev.Sets))
	for i, set := range ev.Sets {
		stat, err := bound.Score(set.Members)
		if err != nil {
			outcomes[i] = Outcome{Name: set.Name, Stat: math.NaN()}
			continue
		}
		outcomes[i] = Outcome{Name: set.Name, Stat: stat}
	}

	s.logger.Debug("sample permutation",
		zap.String("statistic", string(c.Method())),
		zap.Int("columns", len(ev.PermColumns)),
		zap.Int("workers", s.workers))

	// backgrounds[set][perm]: one value per set per permutation column.
	backgrounds := make([][]float64, len(ev.Sets))
	for i := range backgrounds {
		backgrounds[i] = make([]float64, len(ev.PermColumns))
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for col := range ev.PermColumns {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Each column is a different universe; rebind so rank- and
			// transform-based calculators see the permuted values.
			colBound, err := c.Bind(ev.PermColumns[col])
			if err != nil {
				return fmt.Errorf("bind permutation column %d: %w", col, err)
			}
			for i, set := range ev.Sets {
				v, err := colBound.Score(set.Members)
				if err != nil {
					return fmt.Errorf("permutation column %d, set %s: %w", col, set.Name, err)
				}
				backgrounds[i][col] = v
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i := range outcomes {
		if math.IsNaN(outcomes[i].Stat) {
			continue
		}
		outcomes[i].Pvals = classPvals(outcomes[i].Stat, backgrounds[i], ev.Classes)
	}
	return outcomes, nil
}
