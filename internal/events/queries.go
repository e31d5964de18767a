package events

import (
	"fmt"

	"gorm.io/gorm"

	"attrify/internal/timeframe"
)

// FindSessionsInTimeFrame returns a website's sessions whose first event
// falls inside the time frame, inclusive on both bounds.
func FindSessionsInTimeFrame(db *gorm.DB, websiteID uint, tf *timeframe.TimeFrame) ([]Session, error) {
	var sessions []Session
	err := db.Model(&Session{}).
		Where("website_id = ?", websiteID).
		Where("first_event_at BETWEEN ? AND ?", tf.From.UTC(), tf.To.UTC()).
		Order("first_event_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching sessions: %w", err)
	}
	return sessions, nil
}

// FindConversionEventsInTimeFrame returns a website's conversion events
// inside the time frame, inclusive on both bounds.
func FindConversionEventsInTimeFrame(db *gorm.DB, websiteID uint, tf *timeframe.TimeFrame) ([]ConversionEvent, error) {
	var conversions []ConversionEvent
	err := db.Model(&ConversionEvent{}).
		Where("website_id = ?", websiteID).
		Where("timestamp BETWEEN ? AND ?", tf.From.UTC(), tf.To.UTC()).
		Order("timestamp ASC").
		Find(&conversions).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching conversion events: %w", err)
	}
	return conversions, nil
}

// GetSessionCountInTimeFrame counts sessions for a website in a time frame.
func GetSessionCountInTimeFrame(db *gorm.DB, websiteID uint, tf *timeframe.TimeFrame) (int64, error) {
	var count int64
	err := db.Model(&Session{}).
		Where("website_id = ? AND first_event_at BETWEEN ? AND ?", websiteID, tf.From.UTC(), tf.To.UTC()).
		Count(&count).Error
	return count, err
}

// GetConversionCountInTimeFrame counts conversion events for a website in a
// time frame.
func GetConversionCountInTimeFrame(db *gorm.DB, websiteID uint, tf *timeframe.TimeFrame) (int64, error) {
	var count int64
	err := db.Model(&ConversionEvent{}).
		Where("website_id = ? AND timestamp BETWEEN ? AND ?", websiteID, tf.From.UTC(), tf.To.UTC()).
		Count(&count).Error
	return count, err
}
