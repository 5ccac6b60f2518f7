package gsa

import (
	"errors"

	"github.com/omics-tools/gsan/internal/calc"
	"github.com/omics-tools/gsan/internal/signif"
)

// The error taxonomy of the analysis. Every validation failure is raised
// before any computation begins; match with errors.Is.
var (
	// ErrInputMismatch: identifier sets disagree across inputs (e.g. the
	// direction vector covers different genes than the statistics).
	ErrInputMismatch = errors.New("input identifier sets disagree")

	// ErrMissingDirections: a requested directionality class needs a
	// direction vector that was not provided.
	ErrMissingDirections = errors.New("directions required but not provided")

	// ErrIncompatibleStatType: the chosen calculator requires p-value-like
	// or score-like input and the detected type does not match.
	ErrIncompatibleStatType = errors.New("gene-level statistic type incompatible with calculator")

	// ErrEmptyCollection: no gene sets survive size filtering.
	ErrEmptyCollection = errors.New("no gene sets remain after size filtering")

	// ErrDegenerateInput: values outside a calculator's valid domain.
	ErrDegenerateInput = calc.ErrDegenerateInput

	// ErrUnsupportedCombination: calculator x significance-method pairing
	// that is not defined, or mixed-directional classes under sample
	// permutation.
	ErrUnsupportedCombination = signif.ErrUnsupportedCombination
)
