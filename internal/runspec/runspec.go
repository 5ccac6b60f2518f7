// Package runspec loads the tool's YAML run specification: one document
// holding the gene-level statistics, directions, gene sets and analysis
// options for a single run. This is the tool's own configuration format;
// gene set interchange formats (GMT, SBML, SIF) are out of scope.
package runspec

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/omics-tools/gsan/internal/adjust"
	"github.com/omics-tools/gsan/internal/calc"
	"github.com/omics-tools/gsan/internal/gsa"
	"github.com/omics-tools/gsan/internal/signif"
)

// GeneSet is one gene set entry of the specification.
type GeneSet struct {
	Name       string   `yaml:"name"`
	Genes      []string `yaml:"genes"`
	Annotation string   `yaml:"annotation,omitempty"`
}

// Spec mirrors the YAML document.
type Spec struct {
	GeneStats  map[string]float64 `yaml:"geneStats"`
	Directions map[string]float64 `yaml:"directions,omitempty"`
	GeneSets   []GeneSet          `yaml:"geneSets"`

	GeneSetStat  string   `yaml:"geneSetStat,omitempty"`
	SignifMethod string   `yaml:"signifMethod,omitempty"`
	AdjMethod    string   `yaml:"adjMethod,omitempty"`
	Classes      []string `yaml:"classes,omitempty"`

	MinSize     int     `yaml:"minSize,omitempty"`
	MaxSize     int     `yaml:"maxSize,omitempty"`
	NPerm       int     `yaml:"nPerm,omitempty"`
	GSEAParam   float64 `yaml:"gseaParam,omitempty"`
	Parallelism int     `yaml:"parallelism,omitempty"`
	Seed        uint64  `yaml:"seed,omitempty"`

	// PermStats/PermDirections hold one value row per gene for the
	// sample-permutation strategy; every row must have the same length.
	PermStats      map[string][]float64 `yaml:"permStats,omitempty"`
	PermDirections map[string][]float64 `yaml:"permDirections,omitempty"`
}

// Load reads a specification from a YAML file. "-" reads stdin.
func Load(path string) (*Spec, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open run spec: %w", err)
		}
		defer f.Close()
		r = f
	}
	return Parse(r)
}

// Parse decodes a specification from a reader.
func Parse(r io.Reader) (*Spec, error) {
	var s Spec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse run spec: %w", err)
	}
	if len(s.GeneStats) == 0 {
		return nil, fmt.Errorf("run spec: geneStats is required")
	}
	if len(s.GeneSets) == 0 {
		return nil, fmt.Errorf("run spec: geneSets is required")
	}
	return &s, nil
}

// Options converts the specification into analysis options, layering the
// documented defaults under whatever the document sets.
func (s *Spec) Options() (gsa.Options, error) {
	o := gsa.DefaultOptions()

	stats, err := gsa.NewGeneVectorFromMap(s.GeneStats)
	if err != nil {
		return o, err
	}
	o.GeneStats = stats

	if len(s.Directions) > 0 {
		dirs, err := gsa.NewGeneVectorFromMap(s.Directions)
		if err != nil {
			return o, err
		}
		o.Directions = dirs
	}

	sets := make([]gsa.GeneSet, len(s.GeneSets))
	for i, gs := range s.GeneSets {
		sets[i] = gsa.GeneSet{Name: gs.Name, Genes: gs.Genes, Annotation: gs.Annotation}
	}
	coll, err := gsa.NewCollection(sets)
	if err != nil {
		return o, err
	}
	o.Collection = coll

	if s.GeneSetStat != "" {
		m, err := calc.Parse(s.GeneSetStat)
		if err != nil {
			return o, err
		}
		o.GeneSetStat = m
	}
	if s.SignifMethod != "" {
		m, err := signif.Parse(s.SignifMethod)
		if err != nil {
			return o, err
		}
		o.SignifMethod = m
	}
	if s.AdjMethod != "" {
		m, err := adjust.Parse(s.AdjMethod)
		if err != nil {
			return o, err
		}
		o.AdjMethod = m
	}
	for _, cl := range s.Classes {
		o.Classes = append(o.Classes, signif.Class(cl))
	}

	if s.MinSize > 0 {
		o.SizeLimits.Min = s.MinSize
	}
	o.SizeLimits.Max = s.MaxSize
	if s.NPerm > 0 {
		o.NPerm = s.NPerm
	}
	if s.GSEAParam != 0 {
		o.GSEAParam = s.GSEAParam
	}
	if s.Parallelism > 0 {
		o.Parallelism = s.Parallelism
	}
	o.Seed = s.Seed

	if len(s.PermStats) > 0 {
		pm, err := rowsToMatrix(s.PermStats)
		if err != nil {
			return o, fmt.Errorf("permStats: %w", err)
		}
		o.PermStats = pm
	}
	if len(s.PermDirections) > 0 {
		pm, err := rowsToMatrix(s.PermDirections)
		if err != nil {
			return o, fmt.Errorf("permDirections: %w", err)
		}
		o.PermDirections = pm
	}

	return o, nil
}

// rowsToMatrix transposes gene-keyed value rows into permutation columns,
// ordering genes by identifier for determinism.
func rowsToMatrix(rows map[string][]float64) (*gsa.PermutationMatrix, error) {
	genes := make([]string, 0, len(rows))
	for g := range rows {
		genes = append(genes, g)
	}
	sort.Strings(genes)

	nPerm := len(rows[genes[0]])
	columns := make([][]float64, nPerm)
	for c := range columns {
		columns[c] = make([]float64, len(genes))
	}
	for i, g := range genes {
		row := rows[g]
		if len(row) != nPerm {
			return nil, fmt.Errorf("gene %q has %d permutation values, expected %d", g, len(row), nPerm)
		}
		for c, v := range row {
			columns[c][i] = v
		}
	}
	return gsa.NewPermutationMatrix(genes, columns)
}
