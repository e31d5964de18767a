package attribution

import (
	"time"

	"attrify/internal/events"
)

// ConversionPath is the ordered touchpoint sequence behind a single
// conversion event. Touchpoints are chronological, earliest first, and a
// path always has at least one touchpoint: a session without acquisition
// metadata still contributes its own "Direct" touchpoint.
type ConversionPath struct {
	SessionID   string
	Touchpoints []Touchpoint
	Revenue     float64
	ConvertedAt time.Time
}

// BuildPaths constructs one ConversionPath per conversion event that can be
// matched to a session. Each session contributes exactly one touchpoint,
// derived from its stored UTM fields and its first-event timestamp; every
// conversion in that session reuses the same touchpoint sequence.
//
// Conversion events without a session identifier are grouped under the
// empty key and never match a session, so they produce no path and are
// absent from the report entirely. Callers that care about that data loss
// should compare the path count against the raw event count.
//
// Sessions from the same visitor are not stitched together into a single
// journey; each session/conversion pairing is independent.
func BuildPaths(sessions []events.Session, conversions []events.ConversionEvent) []ConversionPath {
	bySession := make(map[string][]events.ConversionEvent)
	for _, conv := range conversions {
		bySession[conv.SessionID] = append(bySession[conv.SessionID], conv)
	}

	paths := make([]ConversionPath, 0, len(conversions))
	for _, session := range sessions {
		group, ok := bySession[session.SessionID]
		if !ok {
			continue
		}

		touchpoints := []Touchpoint{{
			Source:    session.UTMSource,
			Medium:    session.UTMMedium,
			Campaign:  session.UTMCampaign,
			Timestamp: session.FirstEventAt,
		}}

		for _, conv := range group {
			paths = append(paths, ConversionPath{
				SessionID:   session.SessionID,
				Touchpoints: touchpoints,
				Revenue:     conv.Revenue,
				ConvertedAt: conv.Timestamp,
			})
		}
	}

	return paths
}
