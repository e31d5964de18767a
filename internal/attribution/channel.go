package attribution

import "time"

// DirectChannel labels sessions that arrived without an acquisition source.
const DirectChannel = "Direct"

// Touchpoint is one marketing-channel interaction a visitor had prior to
// (or at) conversion. It is built transiently from a session record and is
// never persisted on its own.
type Touchpoint struct {
	Source    string
	Medium    string
	Campaign  string // informational only, never part of the channel name
	Timestamp time.Time
}

// ChannelName derives the human-readable channel label for a touchpoint.
// Source and medium are used verbatim, with no case normalization:
//
//	{}                        -> "Direct"
//	{Source: "google"}        -> "google"
//	{Source: "google",
//	 Medium: "cpc"}           -> "google / cpc"
func (tp Touchpoint) ChannelName() string {
	if tp.Source == "" {
		return DirectChannel
	}
	if tp.Medium == "" {
		return tp.Source
	}
	return tp.Source + " / " + tp.Medium
}
