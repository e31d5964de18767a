// Package events persists visit sessions and conversion events, the two
// inputs consumed by the attribution engine.
package events

import "time"

// Session represents one visitor session and carries the acquisition
// metadata captured when the session started. UTM fields are stored
// verbatim; an empty source means the session is attributed to "Direct".
type Session struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	WebsiteID    uint      `gorm:"uniqueIndex:idx_website_session;index:idx_website_first_event;not null"`
	SessionID    string    `gorm:"uniqueIndex:idx_website_session;size:64;not null"`
	UTMSource    string    `gorm:"index"`
	UTMMedium    string
	UTMCampaign  string
	FirstEventAt time.Time `gorm:"index:idx_website_first_event;not null"`
	CreatedAt    time.Time
}

// ConversionEvent represents a discrete conversion (goal completion or
// purchase) with optional revenue. SessionID may be empty when the client
// could not associate the conversion with a session; such events never
// attribute to any channel.
type ConversionEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	WebsiteID uint      `gorm:"index:idx_website_timestamp;not null"`
	SessionID string    `gorm:"index;size:64"`
	Name      string    `gorm:"index"`
	Revenue   float64   `gorm:"not null;default:0"`
	Timestamp time.Time `gorm:"index:idx_website_timestamp;not null"`
	CreatedAt time.Time
}
