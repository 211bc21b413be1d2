// Package rank post-processes fused rankings: score-jump truncation
// (autocut) and per-result score explanations.
package rank

import "slices"

const (
	// jumpMedianFactor: a drop counts as a jump only above this multiple of
	// the median drop.
	jumpMedianFactor = 2

	// jumpAbsoluteFloor filters numeric noise: drops below this are never
	// jumps, whatever the median.
	jumpAbsoluteFloor = 0.01
)

// AutocutIndex returns the index after which a list of descending scores
// should be truncated, cutting after the n-th score jump.
//
// n <= 0 disables truncation. Fewer than two scores, or no qualifying
// jumps, return len(scores). The operation is idempotent: re-applying it to
// its own output changes nothing.
func AutocutIndex(scores []float32, n int) int {
	if n <= 0 || len(scores) < 2 {
		return len(scores)
	}

	drops := make([]float32, len(scores)-1)
	for i := range drops {
		drops[i] = scores[i] - scores[i+1]
	}

	median := medianOf(drops)

	jumps := 0
	for i, d := range drops {
		if d > jumpMedianFactor*median && d > jumpAbsoluteFloor {
			jumps++
			if jumps == n {
				return i + 1
			}
		}
	}
	return len(scores)
}

// Autocut truncates a descending score list after the n-th jump.
func Autocut(scores []float32, n int) []float32 {
	return scores[:AutocutIndex(scores, n)]
}

func medianOf(values []float32) float32 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
