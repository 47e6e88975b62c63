package testutil

import (
	"sort"

	"github.com/hupe1980/skycat/distance"
	"github.com/hupe1980/skycat/model"
)

// ExactNearest returns the k stars closest to (ra, dec) by brute force,
// ordered by separation and then identifier. maxSep <= 0 means unbounded.
func ExactNearest(stars []model.StarEntry, ra, dec float64, k int, maxSep float64) []model.Neighbor {
	all := make([]model.Neighbor, 0, len(stars))
	for _, s := range stars {
		sep := distance.Separation(ra, dec, s.RA, s.Dec)
		if maxSep > 0 && sep > maxSep {
			continue
		}
		all = append(all, model.Neighbor{Star: s, Separation: sep})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Separation != all[j].Separation {
			return all[i].Separation < all[j].Separation
		}
		return all[i].Star.Less(all[j].Star)
	})
	if len(all) > k {
		all = all[:k]
	}
	return all
}

// ComputeRecall returns the fraction of ground-truth identifiers present in got.
func ComputeRecall(groundTruth, got []model.Neighbor) float64 {
	if len(groundTruth) == 0 {
		return 1
	}
	seen := make(map[model.CatalogID]struct{}, len(got))
	for _, n := range got {
		seen[n.Star.ID] = struct{}{}
	}
	hits := 0
	for _, n := range groundTruth {
		if _, ok := seen[n.Star.ID]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(groundTruth))
}
