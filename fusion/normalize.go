package fusion

import (
	"math"

	"github.com/hupe1980/vexo/model"
)

// normalize scales one side's raw scores so that higher is always better.
// Sides flagged LowerIsBetter (raw distances) are inverted in the same pass.
func normalize(side Side, norm Normalization) map[model.ID]float32 {
	switch norm {
	case NormZScore:
		return normalizeZScore(side)
	default:
		return normalizeMinMax(side)
	}
}

// normalizeMinMax maps a side to [0,1]. All-equal scores map to 1 for every
// present entry; missing entries contribute 0 downstream.
func normalizeMinMax(side Side) map[model.ID]float32 {
	out := make(map[model.ID]float32, len(side.Scores))
	if len(side.Scores) == 0 {
		return out
	}

	lo := float32(math.MaxFloat32)
	hi := float32(-math.MaxFloat32)
	for _, s := range side.Scores {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	span := hi - lo
	for id, s := range side.Scores {
		var n float32
		if span == 0 {
			n = 1
		} else if side.LowerIsBetter {
			n = (hi - s) / span
		} else {
			n = (s - lo) / span
		}
		out[id] = n
	}
	return out
}

// normalizeZScore centers a side at 0 with unit variance. A zero-variance
// side maps to 0 everywhere.
func normalizeZScore(side Side) map[model.ID]float32 {
	out := make(map[model.ID]float32, len(side.Scores))
	if len(side.Scores) == 0 {
		return out
	}

	mean, sd := meanStddev(side.Scores)
	for id, s := range side.Scores {
		var n float32
		if sd != 0 {
			n = (s - mean) / sd
			if side.LowerIsBetter {
				n = -n
			}
		}
		out[id] = n
	}
	return out
}

// normalizeDistribution implements the distribution-based scaling:
// (score-(mean-3sd))/(6sd), clamped to [0,1], inverted for distance sides.
// A zero-variance side maps to 0.5 everywhere (the distribution center).
func normalizeDistribution(side Side) map[model.ID]float32 {
	out := make(map[model.ID]float32, len(side.Scores))
	if len(side.Scores) == 0 {
		return out
	}

	mean, sd := meanStddev(side.Scores)
	for id, s := range side.Scores {
		n := float32(0.5)
		if sd != 0 {
			if side.LowerIsBetter {
				n = ((mean + 3*sd) - s) / (6 * sd)
			} else {
				n = (s - (mean - 3*sd)) / (6 * sd)
			}
			if n < 0 {
				n = 0
			} else if n > 1 {
				n = 1
			}
		}
		out[id] = n
	}
	return out
}

func meanStddev(scores map[model.ID]float32) (mean, sd float32) {
	var sum float64
	for _, s := range scores {
		sum += float64(s)
	}
	m := sum / float64(len(scores))

	var varSum float64
	for _, s := range scores {
		d := float64(s) - m
		varSum += d * d
	}
	return float32(m), float32(math.Sqrt(varSum / float64(len(scores))))
}
