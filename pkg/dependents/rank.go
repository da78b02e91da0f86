package dependents

import "sort"

// Dedupe keeps one record per key: the one with the strictly highest
// normalized star count, the first seen on ties. Keys keep the order in
// which they first appeared.
func Dedupe(records []RawRecord) []RawRecord {
	index := make(map[string]int, len(records))
	out := make([]RawRecord, 0, len(records))
	for _, r := range records {
		i, seen := index[r.Key]
		if !seen {
			index[r.Key] = len(out)
			out = append(out, r)
			continue
		}
		if StarsToNumber(r.StarsText) > StarsToNumber(out[i].StarsText) {
			out[i] = r
		}
	}
	return out
}

// Rank dedupes records, keeps those with at least minStars and returns the
// topN highest in descending order together with the number of distinct keys
// and the number that passed the threshold.
//
// "N/A" counts as -1, so any non-negative minStars drops it.
func Rank(records []RawRecord, minStars float64, topN int) (selected []Dependent, totalDistinct, aboveThreshold int) {
	unique := Dedupe(records)
	totalDistinct = len(unique)

	kept := make([]Dependent, 0, len(unique))
	for _, r := range unique {
		if StarsToNumber(r.StarsText) >= minStars {
			kept = append(kept, Dependent{Key: r.Key, StarsText: r.StarsText})
		}
	}
	aboveThreshold = len(kept)

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Stars() > kept[j].Stars()
	})

	if topN < 0 {
		topN = 0
	}
	if len(kept) > topN {
		kept = kept[:topN]
	}
	return kept, totalDistinct, aboveThreshold
}
