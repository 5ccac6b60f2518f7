package signif

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/omics-tools/gsan/internal/calc"
)

func TestNullDistRejectsUnsupported(t *testing.T) {
	for _, m := range []calc.Method{calc.Mean, calc.Median, calc.Sum, calc.MaxMean, calc.GSEA, calc.FGSEA, calc.TailStrength} {
		c, err := calc.New(m, 1)
		require.NoError(t, err)
		_, err = NewNullDistributor().Estimate(context.Background(), c, Eval{
			Universe: []float64{0.1, 0.2, 0.3},
			Sets:     []SetMembers{{Name: "s", Members: []int{0}}},
			Classes:  []ClassTail{{Class: NonDirectional, Tail: TailTwoSided}},
		})
		assert.ErrorIs(t, err, ErrUnsupportedCombination, "method %s", m)
	}
}

func TestNullDistFisher(t *testing.T) {
	c, err := calc.New(calc.Fisher, 1)
	require.NoError(t, err)

	universe := []float64{0.01, 0.02, 0.5, 0.9}
	got, err := NewNullDistributor().Estimate(context.Background(), c, Eval{
		Universe: universe,
		Sets:     []SetMembers{{Name: "s", Members: []int{0, 1}}},
		Classes:  []ClassTail{{Class: NonDirectional, Tail: TailRight}},
	})
	require.NoError(t, err)

	stat := -2 * (math.Log(0.01) + math.Log(0.02))
	assert.InDelta(t, stat, got[0].Stat, 1e-12)
	want := distuv.ChiSquared{K: 4}.Survival(stat)
	assert.InDelta(t, want, got[0].Pvals[NonDirectional], 1e-12)
}

func TestNullDistStouffer(t *testing.T) {
	c, err := calc.New(calc.Stouffer, 1)
	require.NoError(t, err)

	// All members at p = 0.5 give z = 0: right-tail p is one half.
	got, err := NewNullDistributor().Estimate(context.Background(), c, Eval{
		Universe: []float64{0.5, 0.5, 0.5, 0.5},
		Sets:     []SetMembers{{Name: "s", Members: []int{0, 1, 2}}},
		Classes:  []ClassTail{{Class: DistinctDirUp, Tail: TailRight}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got[0].Pvals[DistinctDirUp], 1e-9)
}

func TestNullDistReporterMatchesStouffer(t *testing.T) {
	// Reporter's mean-z statistic scaled by sqrt(n) is the Stouffer
	// statistic; both strategies must report the same p-value.
	universe := []float64{0.01, 0.2, 0.4, 0.6, 0.95}
	members := []int{0, 1, 3}
	classes := []ClassTail{{Class: DistinctDirUp, Tail: TailRight}}

	run := func(m calc.Method) float64 {
		c, err := calc.New(m, 1)
		require.NoError(t, err)
		got, err := NewNullDistributor().Estimate(context.Background(), c, Eval{
			Universe: universe,
			Sets:     []SetMembers{{Name: "s", Members: members}},
			Classes:  classes,
		})
		require.NoError(t, err)
		return got[0].Pvals[DistinctDirUp]
	}

	assert.InDelta(t, run(calc.Stouffer), run(calc.Reporter), 1e-12)
}

func TestNullDistWilcoxon(t *testing.T) {
	c, err := calc.New(calc.Wilcoxon, 1)
	require.NoError(t, err)

	// Universe 1..9 ascending; members hold the three largest ranks.
	universe := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	got, err := NewNullDistributor().Estimate(context.Background(), c, Eval{
		Universe: universe,
		Sets:     []SetMembers{{Name: "s", Members: []int{6, 7, 8}}},
		Classes: []ClassTail{
			{Class: DistinctDirUp, Tail: TailRight},
			{Class: DistinctDirDn, Tail: TailLeft},
			{Class: NonDirectional, Tail: TailTwoSided},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 24.0, got[0].Stat) // ranks 7+8+9

	mean, sd := calc.WilcoxonNull(3, 9)
	z := (24 - mean) / sd
	assert.InDelta(t, distuv.UnitNormal.Survival(z), got[0].Pvals[DistinctDirUp], 1e-12)
	assert.InDelta(t, distuv.UnitNormal.CDF(z), got[0].Pvals[DistinctDirDn], 1e-12)
	assert.InDelta(t, 2*distuv.UnitNormal.Survival(z), got[0].Pvals[NonDirectional], 1e-12)

	// Up and down tails are complementary.
	assert.InDelta(t, 1, got[0].Pvals[DistinctDirUp]+got[0].Pvals[DistinctDirDn], 1e-12)
}

func TestNullDistPAGE(t *testing.T) {
	c, err := calc.New(calc.PAGE, 1)
	require.NoError(t, err)

	universe := []float64{-2, -1, -0.5, 0, 0.5, 1, 2, 3}
	got, err := NewNullDistributor().Estimate(context.Background(), c, Eval{
		Universe: universe,
		Sets:     []SetMembers{{Name: "s", Members: []int{6, 7}}},
		Classes:  []ClassTail{{Class: DistinctDirUp, Tail: TailRight}},
	})
	require.NoError(t, err)
	assert.InDelta(t, distuv.UnitNormal.Survival(got[0].Stat), got[0].Pvals[DistinctDirUp], 1e-12)
	assert.Less(t, got[0].Pvals[DistinctDirUp], 0.05)
}
