package gsa

// directionalTransform builds the up- and down-adjusted p-value vectors
// used for distinct-directional classes:
//
//	pUp = p/2 when the direction is non-negative, else 1 - p/2
//	pDn = 1 - p/2 when the direction is non-negative, else p/2
//
// A zero direction counts as up-regulated; this is a policy choice, not an
// accident of comparison order. Flipping every direction sign swaps the
// two outputs exactly.
func directionalTransform(pvals, dirs []float64) (pUp, pDn []float64) {
	pUp = make([]float64, len(pvals))
	pDn = make([]float64, len(pvals))
	for i, p := range pvals {
		if dirs[i] >= 0 {
			pUp[i] = p / 2
			pDn[i] = 1 - p/2
		} else {
			pUp[i] = 1 - p/2
			pDn[i] = p / 2
		}
	}
	return pUp, pDn
}
