package attribution_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrify/internal/attribution"
)

const creditEpsilon = 1e-9

// touchpointsAgedDays builds a path whose touchpoints are the given number
// of days older than now, earliest first.
func touchpointsAgedDays(now time.Time, agesDays ...float64) []attribution.Touchpoint {
	touchpoints := make([]attribution.Touchpoint, len(agesDays))
	for i, age := range agesDays {
		touchpoints[i] = attribution.Touchpoint{
			Source:    "source" + string(rune('a'+i)),
			Timestamp: now.Add(-time.Duration(age * 24 * float64(time.Hour))),
		}
	}
	return touchpoints
}

func creditSum(credits map[string]float64) float64 {
	total := 0.0
	for _, credit := range credits {
		total += credit
	}
	return total
}

func TestCreditConservation(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	for _, model := range attribution.AllModels() {
		for _, pathLen := range []int{1, 2, 3, 5, 8} {
			ages := make([]float64, pathLen)
			for i := range ages {
				ages[i] = float64(pathLen - i) // earliest first
			}
			credits, err := attribution.CalculateCredit(touchpointsAgedDays(now, ages...), model, now)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, creditSum(credits), creditEpsilon,
				"model %s with %d touchpoints should distribute exactly one conversion", model, pathLen)
		}
	}
}

func TestSingleTouchpointGetsFullCredit(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	touchpoints := []attribution.Touchpoint{{Source: "google", Medium: "cpc", Timestamp: now.AddDate(0, 0, -3)}}

	for _, model := range attribution.AllModels() {
		credits, err := attribution.CalculateCredit(touchpoints, model, now)
		require.NoError(t, err)
		require.Len(t, credits, 1, "model %s", model)
		assert.InDelta(t, 1.0, credits["google / cpc"], creditEpsilon, "model %s", model)
	}
}

func TestEmptyPathYieldsEmptyMap(t *testing.T) {
	now := time.Now().UTC()
	for _, model := range attribution.AllModels() {
		credits, err := attribution.CalculateCredit(nil, model, now)
		require.NoError(t, err)
		assert.Empty(t, credits, "model %s", model)
	}
}

func TestFirstAndLastTouchExclusivity(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	touchpoints := touchpointsAgedDays(now, 10, 6, 2)

	first, err := attribution.CalculateCredit(touchpoints, attribution.ModelFirstTouch, now)
	require.NoError(t, err)
	assert.Equal(t, 1.0, first[touchpoints[0].ChannelName()])
	assert.Len(t, first, 1)

	last, err := attribution.CalculateCredit(touchpoints, attribution.ModelLastTouch, now)
	require.NoError(t, err)
	assert.Equal(t, 1.0, last[touchpoints[2].ChannelName()])
	assert.Len(t, last, 1)
}

func TestLinearUniformity(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	touchpoints := touchpointsAgedDays(now, 8, 6, 4, 2)

	credits, err := attribution.CalculateCredit(touchpoints, attribution.ModelLinear, now)
	require.NoError(t, err)
	require.Len(t, credits, 4)
	for channel, credit := range credits {
		assert.Equal(t, 0.25, credit, "channel %s", channel)
	}
}

func TestPositionBasedBoundaries(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	t.Run("two touchpoints split evenly", func(t *testing.T) {
		touchpoints := touchpointsAgedDays(now, 4, 2)
		credits, err := attribution.CalculateCredit(touchpoints, attribution.ModelPositionBased, now)
		require.NoError(t, err)
		assert.Equal(t, 0.5, credits[touchpoints[0].ChannelName()])
		assert.Equal(t, 0.5, credits[touchpoints[1].ChannelName()])
	})

	t.Run("three touchpoints favor the endpoints", func(t *testing.T) {
		touchpoints := touchpointsAgedDays(now, 6, 4, 2)
		credits, err := attribution.CalculateCredit(touchpoints, attribution.ModelPositionBased, now)
		require.NoError(t, err)
		assert.InDelta(t, 0.4, credits[touchpoints[0].ChannelName()], creditEpsilon)
		assert.InDelta(t, 0.2, credits[touchpoints[1].ChannelName()], creditEpsilon)
		assert.InDelta(t, 0.4, credits[touchpoints[2].ChannelName()], creditEpsilon)
	})

	t.Run("middle touchpoints share the remainder", func(t *testing.T) {
		touchpoints := touchpointsAgedDays(now, 8, 6, 4, 2)
		credits, err := attribution.CalculateCredit(touchpoints, attribution.ModelPositionBased, now)
		require.NoError(t, err)
		assert.InDelta(t, 0.4, credits[touchpoints[0].ChannelName()], creditEpsilon)
		assert.InDelta(t, 0.1, credits[touchpoints[1].ChannelName()], creditEpsilon)
		assert.InDelta(t, 0.1, credits[touchpoints[2].ChannelName()], creditEpsilon)
		assert.InDelta(t, 0.4, credits[touchpoints[3].ChannelName()], creditEpsilon)
	})
}

func TestTimeDecayFavorsRecentTouchpoints(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	t.Run("exactly one half-life apart", func(t *testing.T) {
		touchpoints := touchpointsAgedDays(now, 7, 0)
		credits, err := attribution.CalculateCredit(touchpoints, attribution.ModelTimeDecay, now)
		require.NoError(t, err)
		// weights 0.5 and 1.0 normalize to 1/3 and 2/3
		assert.InDelta(t, 1.0/3.0, credits[touchpoints[0].ChannelName()], creditEpsilon)
		assert.InDelta(t, 2.0/3.0, credits[touchpoints[1].ChannelName()], creditEpsilon)
	})

	t.Run("strict monotonicity by recency", func(t *testing.T) {
		touchpoints := touchpointsAgedDays(now, 20, 10, 3, 1)
		credits, err := attribution.CalculateCredit(touchpoints, attribution.ModelTimeDecay, now)
		require.NoError(t, err)
		for i := 1; i < len(touchpoints); i++ {
			older := credits[touchpoints[i-1].ChannelName()]
			newer := credits[touchpoints[i].ChannelName()]
			assert.Greater(t, newer, older)
		}
	})

	t.Run("zero total weight falls back to an even split", func(t *testing.T) {
		// Ages large enough that 0.5^(age/7) underflows to exactly 0.
		touchpoints := touchpointsAgedDays(now, 80000, 79000)
		credits, err := attribution.CalculateCredit(touchpoints, attribution.ModelTimeDecay, now)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, credits[touchpoints[0].ChannelName()], creditEpsilon)
		assert.InDelta(t, 0.5, credits[touchpoints[1].ChannelName()], creditEpsilon)
	})
}

func TestSameChannelCreditsAccumulate(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	touchpoints := []attribution.Touchpoint{
		{Source: "google", Medium: "cpc", Timestamp: now.AddDate(0, 0, -4)},
		{Source: "newsletter", Timestamp: now.AddDate(0, 0, -2)},
		{Source: "google", Medium: "cpc", Timestamp: now.AddDate(0, 0, -1)},
	}

	credits, err := attribution.CalculateCredit(touchpoints, attribution.ModelLinear, now)
	require.NoError(t, err)
	require.Len(t, credits, 2)
	assert.InDelta(t, 2.0/3.0, credits["google / cpc"], creditEpsilon)
	assert.InDelta(t, 1.0/3.0, credits["newsletter"], creditEpsilon)
}

func TestUnknownModelIsRejected(t *testing.T) {
	now := time.Now().UTC()
	touchpoints := touchpointsAgedDays(now, 1)

	_, err := attribution.CalculateCredit(touchpoints, attribution.Model("made-up"), now)
	var invalidErr *attribution.InvalidModelError
	assert.ErrorAs(t, err, &invalidErr)
}
