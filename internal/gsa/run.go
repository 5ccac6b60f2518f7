package gsa

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/omics-tools/gsan/internal/adjust"
	"github.com/omics-tools/gsan/internal/calc"
	"github.com/omics-tools/gsan/internal/signif"
)

// Runner executes analyses. The zero-cost construction plus setter
// mirrors how the rest of the tool wires its logger.
type Runner struct {
	logger *zap.Logger
}

// NewRunner creates a Runner with a no-op logger.
func NewRunner() *Runner {
	return &Runner{logger: zap.NewNop()}
}

// SetLogger sets the logger for progress messages. Logging never affects
// results.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Run is a convenience wrapper around NewRunner().Run.
func Run(ctx context.Context, o Options) (*Result, error) {
	return NewRunner().Run(ctx, o)
}

// Run executes one gene set analysis. All validation happens before any
// statistic is computed; on error no partial result is returned.
func (r *Runner) Run(ctx context.Context, o Options) (*Result, error) {
	start := time.Now()

	if err := o.validate(); err != nil {
		return nil, err
	}
	d, err := normalize(&o)
	if err != nil {
		return nil, err
	}
	sets, err := filterSets(d, o.Collection, o.SizeLimits)
	if err != nil {
		return nil, err
	}
	calculator, err := calc.New(o.GeneSetStat, o.GSEAParam)
	if err != nil {
		return nil, err
	}

	nPerm := o.NPerm
	if o.SignifMethod == signif.SamplePermutation {
		nPerm = len(d.permStats)
	}

	r.logger.Info("starting gene set analysis",
		zap.Int("genes", len(d.names)),
		zap.Int("geneSets", len(sets)),
		zap.String("geneStatType", string(d.statType)),
		zap.String("geneSetStat", string(o.GeneSetStat)),
		zap.String("signifMethod", string(o.SignifMethod)),
		zap.Int("nPerm", nPerm))

	est := r.estimator(&o)
	plan := buildPlan(d, sets, o.GeneSetStat)
	r.logger.Debug("evaluation plan built", zap.Int("evals", len(plan)))

	rows := make([]GeneSetResult, len(sets))
	for i, s := range sets {
		rows[i] = GeneSetResult{
			Name:       s.name,
			Annotation: s.annotation,
			NGenesTot:  len(s.members),
			NGenesUp:   s.nUp,
			NGenesDn:   s.nDn,
			Classes:    make(map[signif.Class]ClassResult),
		}
	}

	for _, pe := range plan {
		outcomes, err := est.Estimate(ctx, calculator, pe.ev)
		if err != nil {
			return nil, fmt.Errorf("%s significance: %w", o.SignifMethod, err)
		}
		for k, out := range outcomes {
			row := &rows[pe.setIdx[k]]
			for cl, p := range out.Pvals {
				row.Classes[cl] = ClassResult{Stat: out.Stat, P: p, PAdj: math.NaN()}
			}
		}
	}

	if err := adjustRows(rows, o.AdjMethod); err != nil {
		return nil, err
	}

	res := &Result{
		GeneStatType: d.statType,
		GeneSetStat:  o.GeneSetStat,
		SignifMethod: o.SignifMethod,
		AdjMethod:    o.AdjMethod,
		SizeLimits:   o.SizeLimits,
		NPerm:        nPerm,
		GSEAParam:    o.GSEAParam,
		GeneStats:    o.GeneStats,
		Directions:   o.Directions,
		Collection:   o.Collection,
		Sets:         rows,
		Runtime:      time.Since(start),
	}
	res.buildIndex()

	r.logger.Info("analysis complete",
		zap.Int("geneSets", len(rows)),
		zap.Duration("runtime", res.Runtime))
	return res, nil
}

// estimator wires the configured significance strategy.
func (r *Runner) estimator(o *Options) signif.Estimator {
	switch o.SignifMethod {
	case signif.SamplePermutation:
		sp := signif.NewSamplePermuter(o.Parallelism)
		sp.SetLogger(r.logger)
		return sp
	case signif.NullDist:
		return signif.NewNullDistributor()
	default:
		seed := o.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		gs := signif.NewGeneSampler(o.NPerm, o.Parallelism, seed)
		gs.SetLogger(r.logger)
		return gs
	}
}

// adjustRows applies the multiple-testing correction independently per
// directionality class; classes are never pooled.
func adjustRows(rows []GeneSetResult, method adjust.Method) error {
	for _, cl := range signif.Classes() {
		var idx []int
		var ps []float64
		for i := range rows {
			if cr, ok := rows[i].Classes[cl]; ok {
				idx = append(idx, i)
				ps = append(ps, cr.P)
			}
		}
		if len(ps) == 0 {
			continue
		}
		adj, err := adjust.Adjust(ps, method)
		if err != nil {
			return err
		}
		for k, i := range idx {
			cr := rows[i].Classes[cl]
			cr.PAdj = adj[k]
			rows[i].Classes[cl] = cr
		}
	}
	return nil
}
