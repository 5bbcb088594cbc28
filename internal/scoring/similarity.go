package scoring

import "math"

// expertiseLogBase matches spec.md §4.2.1: log(solved+1)/log(6) saturates at
// solved=5 (1 match → 0.387, 3 → 0.774, 5 → 1.0).
const expertiseLogBase = 6

// similarityScore computes the similarity component for one member, given
// how many similar tickets they solved and the arithmetic mean of those
// entries' similarity scores. Logarithmic scaling is mandated to avoid
// favoring members who simply touched many tickets ("ticket magnets").
func similarityScore(solvedCount int, avgSimilarity float64) float64 {
	if solvedCount <= 0 {
		return 0
	}
	expertiseFactor := math.Log(float64(solvedCount)+1) / math.Log(expertiseLogBase)
	if expertiseFactor > 1.0 {
		expertiseFactor = 1.0
	}
	score := expertiseFactor * avgSimilarity
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
