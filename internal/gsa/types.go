// Package gsa runs gene set analysis: it scores collections of gene sets
// against per-gene statistics from an omics experiment and estimates the
// significance of each score across directionality classes.
//
// The entry point is Runner.Run (or the package-level Run), which takes an
// Options value holding all inputs and configuration and returns an
// immutable Result. All inputs are materialized in memory before any
// computation starts; nothing persists between calls.
package gsa

import (
	"fmt"
	"math"
	"sort"
)

// StatType classifies the gene-level statistic values.
type StatType string

const (
	// StatPValues: every value lies in [0, 1].
	StatPValues StatType = "p-value"
	// StatScores: signed scores such as t-values or log fold changes.
	StatScores StatType = "score"
)

// GeneVector is an ordered gene-identifier to value mapping. It backs both
// the gene-level statistics and the optional direction vector.
type GeneVector struct {
	names  []string
	values []float64
	index  map[string]int
}

// NewGeneVector builds a GeneVector from parallel name/value slices.
// Identifiers must be unique.
func NewGeneVector(names []string, values []float64) (*GeneVector, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("gene vector: %d names but %d values", len(names), len(values))
	}
	index := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := index[n]; dup {
			return nil, fmt.Errorf("gene vector: duplicate identifier %q", n)
		}
		index[n] = i
	}
	return &GeneVector{names: names, values: values, index: index}, nil
}

// NewGeneVectorFromMap builds a GeneVector from a map, ordering genes by
// identifier for determinism.
func NewGeneVectorFromMap(m map[string]float64) (*GeneVector, error) {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	values := make([]float64, len(names))
	for i, n := range names {
		values[i] = m[n]
	}
	return NewGeneVector(names, values)
}

// Len returns the number of genes.
func (g *GeneVector) Len() int { return len(g.names) }

// Names returns the gene identifiers in order. The slice is shared; do not
// modify.
func (g *GeneVector) Names() []string { return g.names }

// Values returns the values in identifier order. The slice is shared; do
// not modify.
func (g *GeneVector) Values() []float64 { return g.values }

// Value returns the value for a gene identifier.
func (g *GeneVector) Value(name string) (float64, bool) {
	i, ok := g.index[name]
	if !ok {
		return 0, false
	}
	return g.values[i], true
}

// GeneSet is one named group of gene identifiers with optional free-form
// annotation.
type GeneSet struct {
	Name       string
	Genes      []string
	Annotation string
}

// Collection is an ordered gene-set collection with unique set names.
// Member lists may reference genes absent from the measured statistics;
// such genes are ignored downstream.
type Collection struct {
	sets  []GeneSet
	index map[string]int
}

// NewCollection builds a Collection, rejecting duplicate set names.
func NewCollection(sets []GeneSet) (*Collection, error) {
	index := make(map[string]int, len(sets))
	for i, s := range sets {
		if s.Name == "" {
			return nil, fmt.Errorf("gene set collection: empty set name at index %d", i)
		}
		if _, dup := index[s.Name]; dup {
			return nil, fmt.Errorf("gene set collection: duplicate set name %q", s.Name)
		}
		index[s.Name] = i
	}
	return &Collection{sets: sets, index: index}, nil
}

// Len returns the number of gene sets.
func (c *Collection) Len() int { return len(c.sets) }

// Sets returns the gene sets in order. The slice is shared; do not modify.
func (c *Collection) Sets() []GeneSet { return c.sets }

// Set returns the gene set with the given name.
func (c *Collection) Set(name string) (GeneSet, bool) {
	i, ok := c.index[name]
	if !ok {
		return GeneSet{}, false
	}
	return c.sets[i], true
}

// PermutationMatrix is a genes x permutations table of permuted gene-level
// values, used by the sample-permutation significance method. Rows are
// labeled by gene identifier.
type PermutationMatrix struct {
	genes   []string
	columns [][]float64 // columns[perm][gene row]
	index   map[string]int
}

// NewPermutationMatrix builds a PermutationMatrix from row labels and
// column vectors. Every column must have one value per gene.
func NewPermutationMatrix(genes []string, columns [][]float64) (*PermutationMatrix, error) {
	index := make(map[string]int, len(genes))
	for i, g := range genes {
		if _, dup := index[g]; dup {
			return nil, fmt.Errorf("permutation matrix: duplicate gene %q", g)
		}
		index[g] = i
	}
	for c, col := range columns {
		if len(col) != len(genes) {
			return nil, fmt.Errorf("permutation matrix: column %d has %d values for %d genes", c, len(col), len(genes))
		}
	}
	return &PermutationMatrix{genes: genes, columns: columns, index: index}, nil
}

// NPerm returns the number of permutation columns.
func (m *PermutationMatrix) NPerm() int { return len(m.columns) }

// Genes returns the row labels in order.
func (m *PermutationMatrix) Genes() []string { return m.genes }

// aligned returns the matrix columns reordered to the given gene order.
// Every requested gene must be present; extra rows are an error because the
// row set must match the statistics exactly.
func (m *PermutationMatrix) aligned(order []string) ([][]float64, error) {
	if len(order) != len(m.genes) {
		return nil, fmt.Errorf("permutation matrix has %d rows, statistics have %d genes", len(m.genes), len(order))
	}
	rowOf := make([]int, len(order))
	for i, g := range order {
		j, ok := m.index[g]
		if !ok {
			return nil, fmt.Errorf("permutation matrix is missing gene %q", g)
		}
		rowOf[i] = j
	}
	out := make([][]float64, len(m.columns))
	for c, col := range m.columns {
		aligned := make([]float64, len(order))
		for i, j := range rowOf {
			aligned[i] = col[j]
		}
		out[c] = aligned
	}
	return out, nil
}

// isPValueLike reports whether every value lies in [0, 1].
func isPValueLike(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return len(values) > 0
}
