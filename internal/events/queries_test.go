package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrify/internal/events"
	"attrify/internal/testsupport"
	"attrify/internal/timeframe"
)

func TestFindSessionsInTimeFrame(t *testing.T) {
	dbManager, _, website := testsupport.SetupTestDBManagerWithWebsite(t, "queries-sessions.test")
	db := dbManager.GetConnection()

	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 31, 23, 59, 59, 0, time.UTC)
	tf, err := timeframe.NewTimeFrame(from, to)
	require.NoError(t, err)

	// Inside the frame, including both bounds.
	onStart := testsupport.CreateSession(t, db, website.ID, "google", "cpc", "", from)
	middle := testsupport.CreateSession(t, db, website.ID, "newsletter", "email", "", from.AddDate(0, 0, 15))
	onEnd := testsupport.CreateSession(t, db, website.ID, "", "", "", to)

	// Outside the frame.
	testsupport.CreateSession(t, db, website.ID, "google", "cpc", "", from.Add(-time.Second))
	testsupport.CreateSession(t, db, website.ID, "google", "cpc", "", to.Add(time.Second))

	sessions, err := events.FindSessionsInTimeFrame(db, website.ID, tf)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	// Ordered by first event, earliest first.
	assert.Equal(t, onStart.SessionID, sessions[0].SessionID)
	assert.Equal(t, middle.SessionID, sessions[1].SessionID)
	assert.Equal(t, onEnd.SessionID, sessions[2].SessionID)

	count, err := events.GetSessionCountInTimeFrame(db, website.ID, tf)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestFindSessionsScopedToWebsite(t *testing.T) {
	dbManager, _, website := testsupport.SetupTestDBManagerWithWebsite(t, "queries-scope-a.test")
	db := dbManager.GetConnection()
	other := testsupport.CreateTestWebsite(db, "queries-scope-b.test")

	at := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	tf, err := timeframe.NewTimeFrame(at.AddDate(0, 0, -1), at.AddDate(0, 0, 1))
	require.NoError(t, err)

	mine := testsupport.CreateSession(t, db, website.ID, "google", "organic", "", at)
	testsupport.CreateSession(t, db, other.ID, "google", "organic", "", at)

	sessions, err := events.FindSessionsInTimeFrame(db, website.ID, tf)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, mine.SessionID, sessions[0].SessionID)
}

func TestFindConversionEventsInTimeFrame(t *testing.T) {
	dbManager, _, website := testsupport.SetupTestDBManagerWithWebsite(t, "queries-conversions.test")
	db := dbManager.GetConnection()

	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 31, 23, 59, 59, 0, time.UTC)
	tf, err := timeframe.NewTimeFrame(from, to)
	require.NoError(t, err)

	session := testsupport.CreateSession(t, db, website.ID, "facebook", "paid-social", "", from)

	late := testsupport.CreateConversion(t, db, website.ID, session.SessionID, 50, to)
	early := testsupport.CreateConversion(t, db, website.ID, session.SessionID, 100, from)
	testsupport.CreateConversion(t, db, website.ID, session.SessionID, 75, to.Add(time.Minute))

	conversions, err := events.FindConversionEventsInTimeFrame(db, website.ID, tf)
	require.NoError(t, err)
	require.Len(t, conversions, 2)

	assert.Equal(t, early.ID, conversions[0].ID)
	assert.Equal(t, late.ID, conversions[1].ID)

	count, err := events.GetConversionCountInTimeFrame(db, website.ID, tf)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
