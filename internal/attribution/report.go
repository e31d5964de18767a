package attribution

import (
	"math"
	"sort"
	"time"

	"attrify/internal/events"
	"attrify/internal/timeframe"
)

// ChannelStats is one aggregated report row per channel.
type ChannelStats struct {
	Channel     string  `json:"channel"`
	Sessions    int64   `json:"sessions"`
	Conversions float64 `json:"conversions"`
	Revenue     float64 `json:"revenue"`
	CVR         float64 `json:"cvr"`
}

// Totals holds the report-wide aggregates. Conversion and revenue totals are
// raw sums over the matched paths, independent of the attribution model.
type Totals struct {
	TotalSessions    int64   `json:"totalSessions"`
	TotalConversions int64   `json:"totalConversions"`
	TotalRevenue     float64 `json:"totalRevenue"`
	ConversionRate   float64 `json:"conversionRate"`
}

// DateRange echoes the report window back to the caller.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Report is the full attribution report for one model over one time frame.
type Report struct {
	Model     Model          `json:"model"`
	DateRange DateRange      `json:"dateRange"`
	Overall   Totals         `json:"overall"`
	Channels  []ChannelStats `json:"channels"`
}

// BuildReport aggregates conversion paths into per-channel statistics under
// the given model. Every session counts toward its channel's session total,
// converting or not; channels are sorted by attributed revenue descending
// with deterministic tie order.
func BuildReport(sessions []events.Session, paths []ConversionPath, model Model, tf *timeframe.TimeFrame, now time.Time) (*Report, error) {
	conversionsByChannel := make(map[string]float64)
	revenueByChannel := make(map[string]float64)
	sessionsByChannel := make(map[string]int64)

	totalRevenue := 0.0
	for _, path := range paths {
		credits, err := CalculateCredit(path.Touchpoints, model, now)
		if err != nil {
			return nil, err
		}
		for channel, credit := range credits {
			conversionsByChannel[channel] += credit
			revenueByChannel[channel] += path.Revenue * credit
		}
		totalRevenue += path.Revenue
	}

	for _, session := range sessions {
		tp := Touchpoint{Source: session.UTMSource, Medium: session.UTMMedium}
		sessionsByChannel[tp.ChannelName()]++
	}

	channels := make([]ChannelStats, 0, len(sessionsByChannel))
	for _, channel := range channelNames(conversionsByChannel, sessionsByChannel) {
		conversions := conversionsByChannel[channel]
		sessionCount := sessionsByChannel[channel]

		cvr := 0.0
		if sessionCount > 0 {
			cvr = conversions / float64(sessionCount) * 100
		}

		channels = append(channels, ChannelStats{
			Channel:     channel,
			Sessions:    sessionCount,
			Conversions: round2(conversions),
			Revenue:     round2(revenueByChannel[channel]),
			CVR:         cvr,
		})
	}

	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].Revenue > channels[j].Revenue
	})

	totalSessions := int64(len(sessions))
	conversionRate := 0.0
	if totalSessions > 0 {
		conversionRate = float64(len(paths)) / float64(totalSessions) * 100
	}

	return &Report{
		Model:     model,
		DateRange: DateRange{Start: tf.From, End: tf.To},
		Overall: Totals{
			TotalSessions:    totalSessions,
			TotalConversions: int64(len(paths)),
			TotalRevenue:     round2(totalRevenue),
			ConversionRate:   round2(conversionRate),
		},
		Channels: channels,
	}, nil
}

// channelNames returns the union of channels seen in either map, sorted
// alphabetically so map iteration order never leaks into the report.
func channelNames(conversions map[string]float64, sessions map[string]int64) []string {
	seen := make(map[string]bool, len(sessions)+len(conversions))
	names := make([]string, 0, len(sessions)+len(conversions))
	for channel := range sessions {
		if !seen[channel] {
			seen[channel] = true
			names = append(names, channel)
		}
	}
	for channel := range conversions {
		if !seen[channel] {
			seen[channel] = true
			names = append(names, channel)
		}
	}
	sort.Strings(names)
	return names
}

// round2 rounds to two decimals with half-up semantics on the scaled value.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
