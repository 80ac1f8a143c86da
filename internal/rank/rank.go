package rank

import (
	"sort"

	"github.com/hyperifyio/pagelens/internal/fragment"
)

// MaxKeyPoints bounds how many key points one analysis pass may produce.
const MaxKeyPoints = 5

// SelectKeyPoints orders fragments by ascending importance, breaking ties by
// descending text length, and returns at most MaxKeyPoints of them as key
// points carrying their rank position. The sort is stable, so fully-equal
// fragments keep their original relative order and the result is
// deterministic for any input. Empty input yields empty output.
func SelectKeyPoints(fragments []fragment.Fragment) []fragment.KeyPoint {
	return SelectN(fragments, MaxKeyPoints)
}

// SelectN is SelectKeyPoints with an explicit bound. A non-positive bound
// falls back to MaxKeyPoints.
func SelectN(fragments []fragment.Fragment, max int) []fragment.KeyPoint {
	if max <= 0 {
		max = MaxKeyPoints
	}
	sorted := make([]fragment.Fragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Importance != sorted[j].Importance {
			return sorted[i].Importance < sorted[j].Importance
		}
		return len(sorted[i].Text) > len(sorted[j].Text)
	})
	if len(sorted) > max {
		sorted = sorted[:max]
	}
	out := make([]fragment.KeyPoint, 0, len(sorted))
	for i, f := range sorted {
		out = append(out, fragment.KeyPoint{Fragment: f, Index: i})
	}
	return out
}
