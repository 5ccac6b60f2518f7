package gsa

import (
	"math"

	"github.com/omics-tools/gsan/internal/calc"
	"github.com/omics-tools/gsan/internal/signif"
)

// planEval couples one significance evaluation with the filtered-set
// indices it covers. Sets absent from an eval (e.g. no up-regulated
// member for a mixed class) simply have that class uncomputed.
type planEval struct {
	ev     signif.Eval
	setIdx []int
}

// buildPlan expands the requested directionality classes into concrete
// evaluations: one universe vector, the member indices of every covered
// set within it, and the comparison tails. This is the single place that
// encodes the method x input-type x class matrix.
func buildPlan(d *dataset, sets []setInfo, m calc.Method) []planEval {
	if d.statType == StatPValues {
		return planPValueInput(d, sets, m)
	}
	return planScoreInput(d, sets, m)
}

// pTail is the significant tail for calculators applied to p-value
// vectors: the combination statistics grow with significance, the direct
// aggregates and the rank sum shrink.
func pTail(m calc.Method) signif.Tail {
	switch m {
	case calc.Fisher, calc.Stouffer, calc.Reporter, calc.TailStrength:
		return signif.TailRight
	default: // mean, median, sum, wilcoxon on p-values
		return signif.TailLeft
	}
}

func planPValueInput(d *dataset, sets []setInfo, m calc.Method) []planEval {
	var plan []planEval
	tail := pTail(m)
	allIdx := identity(len(sets))

	if d.hasClass(signif.NonDirectional) {
		plan = append(plan, planEval{
			ev: signif.Eval{
				Universe:    d.stats,
				Sets:        fullMembers(sets),
				Classes:     []signif.ClassTail{{Class: signif.NonDirectional, Tail: tail}},
				PermColumns: d.permStats,
			},
			setIdx: allIdx,
		})
	}

	needUp := d.hasClass(signif.DistinctDirUp)
	needDn := d.hasClass(signif.DistinctDirDn)
	if needUp || needDn {
		pUp, pDn := directionalTransform(d.stats, d.dirs)
		permUp, permDn := transformColumns(d)
		if needUp {
			plan = append(plan, planEval{
				ev: signif.Eval{
					Universe:    pUp,
					Sets:        fullMembers(sets),
					Classes:     []signif.ClassTail{{Class: signif.DistinctDirUp, Tail: tail}},
					PermColumns: permUp,
				},
				setIdx: allIdx,
			})
		}
		if needDn {
			plan = append(plan, planEval{
				ev: signif.Eval{
					Universe:    pDn,
					Sets:        fullMembers(sets),
					Classes:     []signif.ClassTail{{Class: signif.DistinctDirDn, Tail: tail}},
					PermColumns: permDn,
				},
				setIdx: allIdx,
			})
		}
	}

	if d.hasClass(signif.MixedDirUp) {
		if ev, idx, ok := subsetEval(d.stats, d.dirs, sets, true, false, signif.MixedDirUp, tail); ok {
			plan = append(plan, planEval{ev: ev, setIdx: idx})
		}
	}
	if d.hasClass(signif.MixedDirDn) {
		if ev, idx, ok := subsetEval(d.stats, d.dirs, sets, false, false, signif.MixedDirDn, tail); ok {
			plan = append(plan, planEval{ev: ev, setIdx: idx})
		}
	}
	return plan
}

func planScoreInput(d *dataset, sets []setInfo, m calc.Method) []planEval {
	var plan []planEval
	allIdx := identity(len(sets))
	signed := signif.Eval{
		Universe:    d.stats,
		Sets:        fullMembers(sets),
		PermColumns: d.permStats,
	}

	switch m {
	case calc.MaxMean:
		signed.Classes = []signif.ClassTail{{Class: signif.NonDirectional, Tail: signif.TailTwoSided}}
		return []planEval{{ev: signed, setIdx: allIdx}}
	case calc.GSEA, calc.FGSEA:
		var classes []signif.ClassTail
		if d.hasClass(signif.DistinctDirUp) {
			classes = append(classes, signif.ClassTail{Class: signif.DistinctDirUp, Tail: signif.TailSigned})
		}
		if d.hasClass(signif.DistinctDirDn) {
			classes = append(classes, signif.ClassTail{Class: signif.DistinctDirDn, Tail: signif.TailSigned})
		}
		signed.Classes = classes
		return []planEval{{ev: signed, setIdx: allIdx}}
	case calc.PAGE:
		var classes []signif.ClassTail
		if d.hasClass(signif.DistinctDirUp) {
			classes = append(classes, signif.ClassTail{Class: signif.DistinctDirUp, Tail: signif.TailRight})
		}
		if d.hasClass(signif.DistinctDirDn) {
			classes = append(classes, signif.ClassTail{Class: signif.DistinctDirDn, Tail: signif.TailLeft})
		}
		if d.hasClass(signif.NonDirectional) {
			classes = append(classes, signif.ClassTail{Class: signif.NonDirectional, Tail: signif.TailTwoSided})
		}
		signed.Classes = classes
		return []planEval{{ev: signed, setIdx: allIdx}}
	}

	// wilcoxon, mean, median, sum on signed scores.
	var classes []signif.ClassTail
	if d.hasClass(signif.DistinctDirUp) {
		classes = append(classes, signif.ClassTail{Class: signif.DistinctDirUp, Tail: signif.TailRight})
	}
	if d.hasClass(signif.DistinctDirDn) {
		classes = append(classes, signif.ClassTail{Class: signif.DistinctDirDn, Tail: signif.TailLeft})
	}
	if len(classes) > 0 {
		signed.Classes = classes
		plan = append(plan, planEval{ev: signed, setIdx: allIdx})
	}

	if d.hasClass(signif.NonDirectional) {
		plan = append(plan, planEval{
			ev: signif.Eval{
				Universe:    absVector(d.stats),
				Sets:        fullMembers(sets),
				Classes:     []signif.ClassTail{{Class: signif.NonDirectional, Tail: signif.TailRight}},
				PermColumns: absColumns(d.permStats),
			},
			setIdx: allIdx,
		})
	}

	// Direction signs for the mixed subsets: explicit directions win,
	// else the score sign.
	signs := d.dirs
	if signs == nil {
		signs = d.stats
	}
	if d.hasClass(signif.MixedDirUp) {
		if ev, idx, ok := subsetEval(d.stats, signs, sets, true, false, signif.MixedDirUp, signif.TailRight); ok {
			plan = append(plan, planEval{ev: ev, setIdx: idx})
		}
	}
	if d.hasClass(signif.MixedDirDn) {
		if ev, idx, ok := subsetEval(d.stats, signs, sets, false, true, signif.MixedDirDn, signif.TailRight); ok {
			plan = append(plan, planEval{ev: ev, setIdx: idx})
		}
	}
	return plan
}

// subsetEval restricts the universe to genes whose direction sign matches
// (up: sign >= 0, down: sign < 0) and remaps each set's members into the
// subset. Sets with no member in the subset are omitted; an eval with no
// sets at all reports ok = false. With abs set, subset values are made
// non-negative so a right tail reads "more extreme downward".
func subsetEval(values, signs []float64, sets []setInfo, up, abs bool, cl signif.Class, tail signif.Tail) (signif.Eval, []int, bool) {
	subIndex := make(map[int]int)
	var universe []float64
	for i := range values {
		inUp := signs[i] >= 0
		if inUp != up {
			continue
		}
		v := values[i]
		if abs {
			v = math.Abs(v)
		}
		subIndex[i] = len(universe)
		universe = append(universe, v)
	}
	if len(universe) == 0 {
		return signif.Eval{}, nil, false
	}

	var members []signif.SetMembers
	var setIdx []int
	for si, s := range sets {
		var sub []int
		for _, i := range s.members {
			if j, ok := subIndex[i]; ok {
				sub = append(sub, j)
			}
		}
		if len(sub) == 0 {
			continue
		}
		members = append(members, signif.SetMembers{Name: s.name, Members: sub})
		setIdx = append(setIdx, si)
	}
	if len(members) == 0 {
		return signif.Eval{}, nil, false
	}
	return signif.Eval{
		Universe: universe,
		Sets:     members,
		Classes:  []signif.ClassTail{{Class: cl, Tail: tail}},
	}, setIdx, true
}

// transformColumns applies the directional transform to every
// sample-permutation column, using the permuted directions when supplied
// and the observed directions otherwise.
func transformColumns(d *dataset) (up, dn [][]float64) {
	if d.permStats == nil {
		return nil, nil
	}
	up = make([][]float64, len(d.permStats))
	dn = make([][]float64, len(d.permStats))
	for c, col := range d.permStats {
		dirs := d.dirs
		if d.permDirs != nil {
			dirs = d.permDirs[c]
		}
		up[c], dn[c] = directionalTransform(col, dirs)
	}
	return up, dn
}

func fullMembers(sets []setInfo) []signif.SetMembers {
	out := make([]signif.SetMembers, len(sets))
	for i, s := range sets {
		out[i] = signif.SetMembers{Name: s.name, Members: s.members}
	}
	return out
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func absVector(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v)
	}
	return out
}

func absColumns(cols [][]float64) [][]float64 {
	if cols == nil {
		return nil
	}
	out := make([][]float64, len(cols))
	for i, c := range cols {
		out[i] = absVector(c)
	}
	return out
}
