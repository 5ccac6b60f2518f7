package signif

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/omics-tools/gsan/internal/calc"
)

// GeneSampler builds an empirical null by repeatedly relabeling the
// gene-to-statistic mapping. Sets of identical size share a background:
// under a full relabeling the statistic of any set of size n has the same
// distribution, so one background per size class serves every set of that
// size.
type GeneSampler struct {
	nPerm   int
	workers int
	seed    uint64
	logger  *zap.Logger
}

// NewGeneSampler creates a gene-sampling estimator. workers <= 1 runs the
// permutation loop inline.
func NewGeneSampler(nPerm, workers int, seed uint64) *GeneSampler {
	if workers < 1 {
		workers = 1
	}
	return &GeneSampler{
		nPerm:   nPerm,
		workers: workers,
		seed:    seed,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for progress messages.
func (g *GeneSampler) SetLogger(l *zap.Logger) {
	g.logger = l
}

// Estimate computes observed statistics and empirical p-values for every
// set in the Eval. Worker failures abort the whole run.
func (g *GeneSampler) Estimate(ctx context.Context, c calc.Calculator, ev Eval) ([]Outcome, error) {
	bound, err := c.Bind(ev.Universe)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", c.Method(), err)
	}

	outcomes := make([]Outcome, len(ev.Sets))
	sizes := make(map[int]struct{})
	for i, s := range ev.Sets {
		stat, err := bound.Score(s.Members)
		if err != nil {
			// Degenerate for this one set; its classes stay uncomputed.
			outcomes[i] = Outcome{Name: s.Name, Stat: math.NaN()}
			continue
		}
		outcomes[i] = Outcome{Name: s.Name, Stat: stat}
		sizes[len(s.Members)] = struct{}{}
	}
	if len(sizes) == 0 {
		return outcomes, nil
	}

	g.logger.Debug("gene sampling",
		zap.String("statistic", string(c.Method())),
		zap.Int("nPerm", g.nPerm),
		zap.Int("sizeClasses", len(sizes)),
		zap.Int("workers", g.workers))

	background, err := g.backgrounds(ctx, bound, len(ev.Universe), sizes)
	if err != nil {
		return nil, err
	}

	for i := range outcomes {
		if math.IsNaN(outcomes[i].Stat) {
			continue
		}
		bg := background[len(ev.Sets[i].Members)]
		outcomes[i].Pvals = classPvals(outcomes[i].Stat, bg, ev.Classes)
	}
	return outcomes, nil
}

// backgrounds runs the permutation loop, fanned out across workers. Each
// worker owns an independent RNG stream and an independent shard of the
// permutation budget; shard results are concatenated in worker order, so
// the merge is commutative over the multiset of background values.
func (g *GeneSampler) backgrounds(ctx context.Context, bound calc.Evaluator, universeSize int, sizes map[int]struct{}) (map[int][]float64, error) {
	shards := make([]int, g.workers)
	for i := range shards {
		shards[i] = g.nPerm / g.workers
		if i < g.nPerm%g.workers {
			shards[i]++
		}
	}

	partials := make([]map[int][]float64, g.workers)
	eg, ctx := errgroup.WithContext(ctx)
	for w := range g.workers {
		eg.Go(func() error {
			rng := rand.New(rand.NewPCG(g.seed, uint64(w)+1))
			bg := make(map[int][]float64, len(sizes))
			idx := make([]int, universeSize)
			for i := range idx {
				idx[i] = i
			}
			for p := 0; p < shards[w]; p++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rng.Shuffle(len(idx), func(a, b int) {
					idx[a], idx[b] = idx[b], idx[a]
				})
				for size := range sizes {
					v, err := bound.Score(idx[:size])
					if err != nil {
						return fmt.Errorf("permutation background (size %d): %w", size, err)
					}
					bg[size] = append(bg[size], v)
				}
			}
			partials[w] = bg
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[int][]float64, len(sizes))
	for size := range sizes {
		all := make([]float64, 0, g.nPerm)
		for _, part := range partials {
			all = append(all, part[size]...)
		}
		merged[size] = all
	}
	return merged, nil
}

// classPvals computes the p-value of an observed statistic against a
// background for each requested class. Sign-split classes only populate
// the class matching the statistic's sign.
func classPvals(stat float64, background []float64, classes []ClassTail) map[Class]float64 {
	out := make(map[Class]float64, len(classes))
	for _, ct := range classes {
		if ct.Tail == TailSigned {
			if ct.Class == signedClass(stat) {
				out[ct.Class] = signedP(stat, background)
			}
			continue
		}
		out[ct.Class] = empiricalP(stat, background, ct.Tail)
	}
	return out
}
