package gsa

import (
	"time"

	"github.com/omics-tools/gsan/internal/adjust"
	"github.com/omics-tools/gsan/internal/calc"
	"github.com/omics-tools/gsan/internal/signif"
)

// ClassResult holds the statistic, raw p-value and adjusted p-value of one
// directionality class for one gene set.
type ClassResult struct {
	Stat float64
	P    float64
	PAdj float64
}

// GeneSetResult is the per-set slice of a Result. Classes holds only the
// directionality classes actually computed for this set; an absent key
// means "not computed", never zero.
type GeneSetResult struct {
	Name       string
	Annotation string
	NGenesTot  int
	NGenesUp   int
	NGenesDn   int
	Classes    map[signif.Class]ClassResult
}

// Result aggregates everything from one analysis run. It is immutable
// after assembly and owned solely by the caller.
type Result struct {
	GeneStatType StatType
	GeneSetStat  calc.Method
	SignifMethod signif.Method
	AdjMethod    adjust.Method
	SizeLimits   SizeLimits
	NPerm        int
	GSEAParam    float64

	// Input echo.
	GeneStats  *GeneVector
	Directions *GeneVector
	Collection *Collection

	Sets    []GeneSetResult
	Runtime time.Duration

	index map[string]int
}

// Set returns the result row for a gene set name.
func (r *Result) Set(name string) (GeneSetResult, bool) {
	i, ok := r.index[name]
	if !ok {
		return GeneSetResult{}, false
	}
	return r.Sets[i], true
}

// buildIndex finalizes the name lookup; called once during assembly.
func (r *Result) buildIndex() {
	r.index = make(map[string]int, len(r.Sets))
	for i, s := range r.Sets {
		r.index[s.Name] = i
	}
}
