package events

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"
)

// CollectSessionInput defines the input required to record a session start.
type CollectSessionInput struct {
	WebsiteID    uint
	SessionID    string
	UTMSource    string
	UTMMedium    string
	UTMCampaign  string
	FirstEventAt time.Time
}

// CollectConversionInput defines the input required to record a conversion.
type CollectConversionInput struct {
	WebsiteID uint
	SessionID string
	Name      string
	Revenue   float64
	Timestamp time.Time
}

// CollectSession stores a session, generating an identifier and timestamp
// when the client did not supply them. Repeated calls with the same session
// identifier keep the original acquisition metadata and the earliest
// first-event timestamp: acquisition is first-touch data and must not be
// rewritten by later pings from the same session.
func CollectSession(dbManager cartridge.DBManager, logger *slog.Logger, input *CollectSessionInput) (*Session, error) {
	if input.SessionID == "" {
		input.SessionID = uuid.NewString()
	}
	if input.FirstEventAt.IsZero() {
		input.FirstEventAt = time.Now().UTC()
	}

	db := dbManager.GetConnection()

	var existing Session
	err := db.Where("website_id = ? AND session_id = ?", input.WebsiteID, input.SessionID).
		First(&existing).Error
	if err == nil {
		if input.FirstEventAt.Before(existing.FirstEventAt) {
			if err := db.Model(&existing).Update("first_event_at", input.FirstEventAt).Error; err != nil {
				return nil, fmt.Errorf("failed to update session first event: %w", err)
			}
			existing.FirstEventAt = input.FirstEventAt
		}
		logger.Debug("Session already recorded",
			slog.String("sessionId", input.SessionID),
			slog.Uint64("websiteId", uint64(input.WebsiteID)))
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	session := Session{
		WebsiteID:    input.WebsiteID,
		SessionID:    input.SessionID,
		UTMSource:    input.UTMSource,
		UTMMedium:    input.UTMMedium,
		UTMCampaign:  input.UTMCampaign,
		FirstEventAt: input.FirstEventAt.UTC(),
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	logger.Info("Collected session",
		slog.String("sessionId", session.SessionID),
		slog.Uint64("websiteId", uint64(session.WebsiteID)))
	return &session, nil
}

// CollectConversion stores a conversion event. Revenue defaults to 0 and a
// missing timestamp defaults to now. An empty session identifier is
// accepted but the conversion will never be attributed to a channel.
func CollectConversion(dbManager cartridge.DBManager, logger *slog.Logger, input *CollectConversionInput) (*ConversionEvent, error) {
	if input.Revenue < 0 {
		return nil, fmt.Errorf("revenue cannot be negative: %f", input.Revenue)
	}
	if input.Timestamp.IsZero() {
		input.Timestamp = time.Now().UTC()
	}

	conversion := ConversionEvent{
		WebsiteID: input.WebsiteID,
		SessionID: input.SessionID,
		Name:      input.Name,
		Revenue:   input.Revenue,
		Timestamp: input.Timestamp.UTC(),
	}

	db := dbManager.GetConnection()
	if err := db.Create(&conversion).Error; err != nil {
		return nil, fmt.Errorf("failed to store conversion event: %w", err)
	}

	if input.SessionID == "" {
		logger.Warn("Conversion collected without session identifier, it will not attribute to any channel",
			slog.Uint64("websiteId", uint64(input.WebsiteID)))
	} else {
		logger.Info("Collected conversion",
			slog.String("sessionId", conversion.SessionID),
			slog.Float64("revenue", conversion.Revenue),
			slog.Uint64("websiteId", uint64(conversion.WebsiteID)))
	}

	return &conversion, nil
}
