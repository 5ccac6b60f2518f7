package gsa

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeneVector(t *testing.T) {
	gv, err := NewGeneVector([]string{"a", "b", "c"}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, gv.Len())

	v, ok := gv.Value("b")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = gv.Value("z")
	assert.False(t, ok)
}

func TestNewGeneVectorErrors(t *testing.T) {
	_, err := NewGeneVector([]string{"a"}, []float64{1, 2})
	assert.Error(t, err, "length mismatch")

	_, err = NewGeneVector([]string{"a", "a"}, []float64{1, 2})
	assert.Error(t, err, "duplicate identifier")
}

func TestNewGeneVectorFromMap(t *testing.T) {
	gv, err := NewGeneVectorFromMap(map[string]float64{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"a", "b", "c"}, gv.Names()); diff != "" {
		t.Errorf("names not sorted (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 2, 3}, gv.Values()); diff != "" {
		t.Errorf("values misaligned (-want +got):\n%s", diff)
	}
}

func TestNewCollection(t *testing.T) {
	coll, err := NewCollection([]GeneSet{
		{Name: "s1", Genes: []string{"a", "b"}},
		{Name: "s2", Genes: []string{"c"}, Annotation: "pathway"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, coll.Len())

	s, ok := coll.Set("s2")
	require.True(t, ok)
	assert.Equal(t, "pathway", s.Annotation)

	_, ok = coll.Set("missing")
	assert.False(t, ok)
}

func TestNewCollectionErrors(t *testing.T) {
	_, err := NewCollection([]GeneSet{{Name: "", Genes: []string{"a"}}})
	assert.Error(t, err, "empty name")

	_, err = NewCollection([]GeneSet{
		{Name: "s", Genes: []string{"a"}},
		{Name: "s", Genes: []string{"b"}},
	})
	assert.Error(t, err, "duplicate name")
}

func TestPermutationMatrixAligned(t *testing.T) {
	m, err := NewPermutationMatrix([]string{"a", "b", "c"}, [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, m.NPerm())

	cols, err := m.aligned([]string{"c", "a", "b"})
	require.NoError(t, err)
	want := [][]float64{{3, 1, 2}, {6, 4, 5}}
	if diff := cmp.Diff(want, cols); diff != "" {
		t.Errorf("aligned columns (-want +got):\n%s", diff)
	}

	_, err = m.aligned([]string{"a", "b"})
	assert.Error(t, err, "row count mismatch")

	_, err = m.aligned([]string{"a", "b", "z"})
	assert.Error(t, err, "missing gene")
}

func TestPermutationMatrixErrors(t *testing.T) {
	_, err := NewPermutationMatrix([]string{"a", "a"}, nil)
	assert.Error(t, err, "duplicate gene")

	_, err = NewPermutationMatrix([]string{"a", "b"}, [][]float64{{1}})
	assert.Error(t, err, "ragged column")
}

func TestIsPValueLike(t *testing.T) {
	assert.True(t, isPValueLike([]float64{0, 0.5, 1}))
	assert.False(t, isPValueLike([]float64{0.5, 1.2}))
	assert.False(t, isPValueLike([]float64{-0.1, 0.5}))
	assert.False(t, isPValueLike(nil))
}
