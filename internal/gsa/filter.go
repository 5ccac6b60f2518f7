package gsa

import "fmt"

// setInfo is a gene set after intersection with the measured genes:
// member indices into the dataset arrays plus directional member counts.
type setInfo struct {
	name       string
	annotation string
	members    []int
	nUp        int
	nDn        int
}

// filterSets intersects every gene set with the measured genes and drops
// sets whose surviving member count falls outside the size limits. Sets
// with zero surviving members are always dropped. Fails when nothing
// remains.
func filterSets(d *dataset, coll *Collection, lim SizeLimits) ([]setInfo, error) {
	index := make(map[string]int, len(d.names))
	for i, n := range d.names {
		index[n] = i
	}

	// Direction signs come from the direction vector when present, else
	// from the score signs. Ties (zero) count as up by convention.
	signs := d.dirs
	if signs == nil && d.statType == StatScores {
		signs = d.stats
	}

	out := make([]setInfo, 0, coll.Len())
	for _, set := range coll.Sets() {
		info := setInfo{name: set.Name, annotation: set.Annotation}
		seen := make(map[int]struct{}, len(set.Genes))
		for _, g := range set.Genes {
			i, ok := index[g]
			if !ok {
				continue // not measured; ignored, not an error
			}
			if _, dup := seen[i]; dup {
				continue
			}
			seen[i] = struct{}{}
			info.members = append(info.members, i)
			if signs != nil {
				if signs[i] >= 0 {
					info.nUp++
				} else {
					info.nDn++
				}
			}
		}
		if len(info.members) == 0 || !lim.contains(len(info.members)) {
			continue
		}
		out = append(out, info)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w (limits [%d, %d])", ErrEmptyCollection, lim.Min, lim.Max)
	}
	return out, nil
}
