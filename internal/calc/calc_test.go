package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBind(t *testing.T, m Method, universe []float64) Evaluator {
	t.Helper()
	c, err := New(m, 1)
	require.NoError(t, err)
	ev, err := c.Bind(universe)
	require.NoError(t, err)
	return ev
}

func TestParse(t *testing.T) {
	for _, m := range Methods() {
		got, err := Parse(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := Parse("ttest")
	assert.Error(t, err)
}

func TestRequires(t *testing.T) {
	tests := []struct {
		method Method
		want   StatKind
	}{
		{Fisher, KindPValues},
		{Stouffer, KindPValues},
		{Reporter, KindPValues},
		{TailStrength, KindPValues},
		{Wilcoxon, KindAny},
		{Mean, KindAny},
		{Median, KindAny},
		{Sum, KindAny},
		{MaxMean, KindScores},
		{GSEA, KindScores},
		{FGSEA, KindScores},
		{PAGE, KindScores},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method.Requires())
		})
	}
}

func TestRanks(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"sorted", []float64{1, 2, 3}, []float64{1, 2, 3}},
		{"reversed", []float64{3, 2, 1}, []float64{3, 2, 1}},
		{"ties averaged", []float64{1, 2, 2, 4}, []float64{1, 2.5, 2.5, 4}},
		{"all equal", []float64{5, 5, 5}, []float64{2, 2, 2}},
		{"single", []float64{7}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ranks(tt.values))
		})
	}
}

func TestFisher(t *testing.T) {
	// All p-values at 1 contribute nothing: -2*ln(1) = 0.
	ev := mustBind(t, Fisher, []float64{1, 1, 1, 1})
	got, err := ev.Score([]int{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	// Single member: -2*ln(p).
	ev = mustBind(t, Fisher, []float64{0.05, 0.5})
	got, err = ev.Score([]int{0})
	require.NoError(t, err)
	assert.InDelta(t, -2*math.Log(0.05), got, 1e-12)
}

func TestFisherRejectsZeroP(t *testing.T) {
	c, err := New(Fisher, 1)
	require.NoError(t, err)
	_, err = c.Bind([]float64{0.5, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateInput))
}

func TestStoufferAndReporter(t *testing.T) {
	// p = 0.5 maps to z = 0 exactly, whatever the normalization.
	universe := []float64{0.5, 0.5, 0.5}
	for _, m := range []Method{Stouffer, Reporter} {
		ev := mustBind(t, m, universe)
		got, err := ev.Score([]int{0, 1, 2})
		require.NoError(t, err)
		assert.InDelta(t, 0, got, 1e-12, "method %s", m)
	}

	// For a single member Stouffer and Reporter agree: both return z.
	universe = []float64{0.05, 0.5, 0.9}
	sEv := mustBind(t, Stouffer, universe)
	rEv := mustBind(t, Reporter, universe)
	s1, err := sEv.Score([]int{0})
	require.NoError(t, err)
	r1, err := rEv.Score([]int{0})
	require.NoError(t, err)
	assert.InDelta(t, s1, r1, 1e-12)
	assert.Greater(t, s1, 1.5) // Phi^-1(0.95) ~ 1.645

	// For n members Stouffer = Reporter * sqrt(n).
	sN, err := sEv.Score([]int{0, 1, 2})
	require.NoError(t, err)
	rN, err := rEv.Score([]int{0, 1, 2})
	require.NoError(t, err)
	assert.InDelta(t, rN*math.Sqrt(3), sN, 1e-12)
}

func TestZTransformBoundaries(t *testing.T) {
	z := zTransform([]float64{0, 1})
	assert.False(t, math.IsInf(z[0], 0), "p=0 must clamp, got %v", z[0])
	assert.False(t, math.IsInf(z[1], 0), "p=1 must clamp, got %v", z[1])
	assert.Greater(t, z[0], 0.0)
	assert.Less(t, z[1], 0.0)
}

func TestTailStrength(t *testing.T) {
	// Uniformly spaced p-values i/(N+1) give exactly TS = 0 over the full
	// list: each term 1 - p*(N+1)/rank vanishes.
	universe := []float64{0.25, 0.5, 0.75}
	ev := mustBind(t, TailStrength, universe)
	got, err := ev.Score([]int{0, 1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-12)

	// A concentrated significant member pulls TS toward 1.
	ev = mustBind(t, TailStrength, []float64{0.001, 0.5, 0.9})
	got, err = ev.Score([]int{0})
	require.NoError(t, err)
	assert.InDelta(t, 1-0.001*4/1, got, 1e-12)
}

func TestAggregates(t *testing.T) {
	universe := []float64{2, -1, 4, 0, 10}
	members := []int{0, 1, 2}

	tests := []struct {
		method Method
		want   float64
	}{
		{Mean, 5.0 / 3},
		{Median, 2},
		{Sum, 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			ev := mustBind(t, tt.method, universe)
			got, err := ev.Score(members)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestAggregateSingleton(t *testing.T) {
	universe := []float64{3.5, -2}
	for _, m := range []Method{Mean, Median, Sum} {
		ev := mustBind(t, m, universe)
		got, err := ev.Score([]int{0})
		require.NoError(t, err)
		assert.Equal(t, 3.5, got, "method %s", m)
	}
}

func TestMaxMean(t *testing.T) {
	tests := []struct {
		name    string
		universe []float64
		members []int
		want    float64
	}{
		// (2+4)/3 = 2 beats |-1|/3.
		{"positive wins", []float64{2, -1, 4}, []int{0, 1, 2}, 2},
		// |-3-6|/3 = 3 beats 1/3; sign preserved.
		{"negative wins", []float64{1, -3, -6}, []int{0, 1, 2}, -3},
		{"all zero", []float64{0, 0, 0}, []int{0, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := mustBind(t, MaxMean, tt.universe)
			got, err := ev.Score(tt.members)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestWilcoxon(t *testing.T) {
	// Ranks of {10, 5, 1, 7} ascending are {4, 2, 1, 3}.
	ev := mustBind(t, Wilcoxon, []float64{10, 5, 1, 7})
	got, err := ev.Score([]int{0, 3})
	require.NoError(t, err)
	assert.Equal(t, 7.0, got) // 4 + 3
}

func TestWilcoxonNull(t *testing.T) {
	mean, sd := WilcoxonNull(3, 10)
	assert.InDelta(t, 3*11.0/2, mean, 1e-12)
	assert.InDelta(t, math.Sqrt(3*7*11.0/12), sd, 1e-12)

	// Degenerate: set spans the universe, zero variance.
	_, sd = WilcoxonNull(10, 10)
	assert.Equal(t, 0.0, sd)
}

func TestGSEATopOfList(t *testing.T) {
	// Members hold the two best scores; the running sum peaks right after
	// the second hit, before any miss is paid.
	universe := []float64{5, 4, 1, 0.5, 0.2, 0.1}
	ev := mustBind(t, GSEA, universe)
	got, err := ev.Score([]int{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)
}

func TestGSEABottomOfList(t *testing.T) {
	// Members at the bottom of the ranking give a negative enrichment score.
	universe := []float64{5, 4, 3, 2, -1, -2}
	ev := mustBind(t, GSEA, universe)
	got, err := ev.Score([]int{4, 5})
	require.NoError(t, err)
	assert.Less(t, got, 0.0)
}

func TestGSEAFastMatchesWalk(t *testing.T) {
	universe := []float64{3.1, -0.4, 2.2, 0.9, -1.7, 0.05, 4.4, -2.8, 1.1, 0.3, -0.9, 2.7}
	memberSets := [][]int{
		{0, 6},
		{4, 7, 10},
		{1, 3, 5, 9},
		{0, 2, 6, 8, 11},
		{7},
	}
	for _, param := range []float64{0, 0.5, 1, 2} {
		slow, err := New(GSEA, param)
		require.NoError(t, err)
		fast, err := New(FGSEA, param)
		require.NoError(t, err)

		sEv, err := slow.Bind(universe)
		require.NoError(t, err)
		fEv, err := fast.Bind(universe)
		require.NoError(t, err)

		for _, members := range memberSets {
			want, err := sEv.Score(members)
			require.NoError(t, err)
			got, err := fEv.Score(members)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-12, "param=%v members=%v", param, members)
		}
	}
}

func TestGSEADegenerate(t *testing.T) {
	ev := mustBind(t, GSEA, []float64{1, 2, 3})

	_, err := ev.Score(nil)
	assert.True(t, errors.Is(err, ErrDegenerateInput))

	_, err = ev.Score([]int{0, 1, 2})
	assert.True(t, errors.Is(err, ErrDegenerateInput), "whole-universe set")
}

func TestPAGE(t *testing.T) {
	universe := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	ev := mustBind(t, PAGE, universe)

	mean := 4.5
	sd := math.Sqrt(42.0 / 7) // sample sd of 1..8
	// Members {6, 7} have mean 7.5.
	want := (7.5 - mean) / (sd * math.Sqrt(6.0/(8*2)))
	got, err := ev.Score([]int{6, 7})
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)

	// A set sitting at the universe mean scores zero.
	got, err = ev.Score([]int{0, 7})
	require.NoError(t, err)
	assert.InDelta(t, 0, got, 1e-12)
}

func TestPAGERejectsZeroVariance(t *testing.T) {
	c, err := New(PAGE, 1)
	require.NoError(t, err)
	_, err = c.Bind([]float64{2, 2, 2})
	assert.True(t, errors.Is(err, ErrDegenerateInput))
}

func TestEmptyMemberSet(t *testing.T) {
	universe := []float64{0.1, 0.2, 0.3, 0.4}
	for _, m := range []Method{Fisher, Stouffer, Reporter, TailStrength, Wilcoxon, Mean, Median, Sum, MaxMean} {
		ev := mustBind(t, m, universe)
		_, err := ev.Score(nil)
		assert.True(t, errors.Is(err, ErrDegenerateInput), "method %s", m)
	}
}
