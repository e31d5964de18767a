// Package timeframe provides the date-range value type used by attribution
// queries and reports, plus an injectable clock for deterministic tests.
package timeframe

import (
	"fmt"
	"time"
)

// DefaultWindowDays is the trailing window applied when a caller does not
// supply explicit start/end dates.
const DefaultWindowDays = 30

// TimeProvider abstracts the wall clock so report math (notably time-decay
// attribution) stays deterministic under test.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider reads the system clock.
type DefaultTimeProvider struct{}

func (p *DefaultTimeProvider) Now() time.Time {
	return time.Now().UTC()
}

// TimeFrame represents a period between two points in time, inclusive on
// both bounds.
type TimeFrame struct {
	From time.Time
	To   time.Time
}

func NewTimeFrame(from, to time.Time) (*TimeFrame, error) {
	if from.After(to) {
		return nil, fmt.Errorf("fromTime must be before toTime")
	}
	return &TimeFrame{From: from, To: to}, nil
}

func (tf *TimeFrame) Duration() time.Duration {
	return tf.To.Sub(tf.From)
}

// Contains reports whether t falls inside the frame, bounds included.
func (tf *TimeFrame) Contains(t time.Time) bool {
	return !t.Before(tf.From) && !t.After(tf.To)
}

func (tf *TimeFrame) Validate() error {
	if tf.From.After(tf.To) {
		return fmt.Errorf("fromTime must be before toTime")
	}
	return nil
}
