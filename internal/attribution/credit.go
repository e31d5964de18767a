package attribution

import (
	"math"
	"time"
)

// DecayHalfLifeDays is the half-life used by the time-decay model: a
// touchpoint's weight halves every 7 days of age relative to "now".
const DecayHalfLifeDays = 7.0

// CalculateCredit distributes one conversion's worth of credit across the
// touchpoints of a single path and accumulates it by channel name. The
// returned fractions sum to 1.0 for any non-empty path; an empty path
// yields an empty map.
//
// No rounding happens here; display rounding is applied at aggregation.
// The now argument only affects the time-decay model.
func CalculateCredit(touchpoints []Touchpoint, model Model, now time.Time) (map[string]float64, error) {
	credits := make(map[string]float64)
	n := len(touchpoints)
	if n == 0 {
		return credits, nil
	}

	switch model {
	case ModelFirstTouch:
		credits[touchpoints[0].ChannelName()] += 1

	case ModelLastTouch:
		credits[touchpoints[n-1].ChannelName()] += 1

	case ModelLinear:
		share := 1.0 / float64(n)
		for _, tp := range touchpoints {
			credits[tp.ChannelName()] += share
		}

	case ModelPositionBased:
		for i, tp := range touchpoints {
			credits[tp.ChannelName()] += positionCredit(i, n)
		}

	case ModelTimeDecay:
		weights := make([]float64, n)
		total := 0.0
		for i, tp := range touchpoints {
			daysSince := now.Sub(tp.Timestamp).Hours() / 24
			weights[i] = math.Pow(0.5, daysSince/DecayHalfLifeDays)
			total += weights[i]
		}
		if total == 0 {
			// All weights underflowed (extremely old touchpoints):
			// fall back to an even split instead of dividing by zero.
			share := 1.0 / float64(n)
			for _, tp := range touchpoints {
				credits[tp.ChannelName()] += share
			}
			break
		}
		for i, tp := range touchpoints {
			credits[tp.ChannelName()] += weights[i] / total
		}

	default:
		return nil, &InvalidModelError{Value: string(model)}
	}

	return credits, nil
}

// positionCredit implements the position-based (U-shaped) split: 40% to the
// first and last touchpoints, with the remaining 20% shared evenly by the
// middle ones.
func positionCredit(i, n int) float64 {
	switch {
	case n == 1:
		return 1
	case n == 2:
		return 0.5
	case i == 0 || i == n-1:
		return 0.4
	default:
		return 0.2 / float64(n-2)
	}
}
