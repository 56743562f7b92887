package techchoice

import (
	"gonum.org/v1/gonum/floats"
)

const (
	// TCORank1Scaler bounds rank 1: within 10% of the reference cost.
	TCORank1Scaler = 1.1
	// TCORank2Scaler bounds rank 2: within 30% of the reference cost.
	TCORank2Scaler = 1.3

	// AbatementRank2 and AbatementRank3 are the abated-emissivity cut
	// points separating the three abatement ranks.
	AbatementRank2 = 2.37656461606311
	AbatementRank3 = 0.932690243851946
)

// tcoRank buckets a cost against the reference value: 1 near the reference,
// 3 far above it.
func tcoRank(x, ref float64) int {
	switch {
	case x > ref*TCORank2Scaler:
		return 3
	case x > ref*TCORank1Scaler:
		return 2
	default:
		return 1
	}
}

// abatementRank buckets abated emissivity: 1 for strong abatement, 3 for
// weak.
func abatementRank(x float64) int {
	switch {
	case x < AbatementRank3:
		return 3
	case x < AbatementRank2:
		return 2
	default:
		return 1
	}
}

// normalize divides the vector by its Euclidean norm, mapping values onto a
// comparable 0..1 scale. A zero vector normalizes to zeros.
func normalize(vals []float64) []float64 {
	out := make([]float64, len(vals))
	norm := floats.Norm(vals, 2)
	if norm == 0 {
		return out
	}
	for i, v := range vals {
		out[i] = v / norm
	}
	return out
}
