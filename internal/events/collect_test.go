package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrify/internal/events"
	"attrify/internal/testsupport"
)

func TestCollectSessionStoresAcquisitionMetadata(t *testing.T) {
	dbManager, logger, website := testsupport.SetupTestDBManagerWithWebsite(t, "collect-session.test")

	firstEventAt := time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)
	session, err := events.CollectSession(dbManager, logger, &events.CollectSessionInput{
		WebsiteID:    website.ID,
		SessionID:    "sess-1",
		UTMSource:    "google",
		UTMMedium:    "cpc",
		UTMCampaign:  "brand",
		FirstEventAt: firstEventAt,
	})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", session.SessionID)
	assert.Equal(t, "google", session.UTMSource)
	assert.Equal(t, "cpc", session.UTMMedium)
	assert.Equal(t, "brand", session.UTMCampaign)
	assert.Equal(t, firstEventAt, session.FirstEventAt.UTC())
	assert.NotZero(t, session.ID)
}

func TestCollectSessionGeneratesMissingIdentifier(t *testing.T) {
	dbManager, logger, website := testsupport.SetupTestDBManagerWithWebsite(t, "collect-session-gen.test")

	session, err := events.CollectSession(dbManager, logger, &events.CollectSessionInput{
		WebsiteID: website.ID,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.SessionID)
	assert.False(t, session.FirstEventAt.IsZero())
}

func TestCollectSessionKeepsOriginalAcquisition(t *testing.T) {
	dbManager, logger, website := testsupport.SetupTestDBManagerWithWebsite(t, "collect-session-upsert.test")

	firstEventAt := time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)
	_, err := events.CollectSession(dbManager, logger, &events.CollectSessionInput{
		WebsiteID:    website.ID,
		SessionID:    "sess-1",
		UTMSource:    "google",
		UTMMedium:    "cpc",
		FirstEventAt: firstEventAt,
	})
	require.NoError(t, err)

	// A later ping with different metadata must not rewrite acquisition.
	later, err := events.CollectSession(dbManager, logger, &events.CollectSessionInput{
		WebsiteID:    website.ID,
		SessionID:    "sess-1",
		UTMSource:    "facebook",
		UTMMedium:    "paid-social",
		FirstEventAt: firstEventAt.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "google", later.UTMSource)
	assert.Equal(t, "cpc", later.UTMMedium)
	assert.Equal(t, firstEventAt, later.FirstEventAt.UTC())

	// An earlier ping moves the first-event timestamp back.
	earlier, err := events.CollectSession(dbManager, logger, &events.CollectSessionInput{
		WebsiteID:    website.ID,
		SessionID:    "sess-1",
		FirstEventAt: firstEventAt.Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "google", earlier.UTMSource)
	assert.Equal(t, firstEventAt.Add(-time.Hour), earlier.FirstEventAt.UTC())

	var count int64
	dbManager.GetConnection().Model(&events.Session{}).
		Where("website_id = ? AND session_id = ?", website.ID, "sess-1").
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCollectConversionDefaults(t *testing.T) {
	dbManager, logger, website := testsupport.SetupTestDBManagerWithWebsite(t, "collect-conversion.test")

	conversion, err := events.CollectConversion(dbManager, logger, &events.CollectConversionInput{
		WebsiteID: website.ID,
		SessionID: "sess-1",
		Name:      "signup",
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, conversion.Revenue)
	assert.False(t, conversion.Timestamp.IsZero())
	assert.NotZero(t, conversion.ID)
}

func TestCollectConversionRejectsNegativeRevenue(t *testing.T) {
	dbManager, logger, website := testsupport.SetupTestDBManagerWithWebsite(t, "collect-conversion-negative.test")

	_, err := events.CollectConversion(dbManager, logger, &events.CollectConversionInput{
		WebsiteID: website.ID,
		SessionID: "sess-1",
		Revenue:   -5,
	})
	assert.ErrorContains(t, err, "revenue cannot be negative")
}

func TestCollectConversionAcceptsMissingSession(t *testing.T) {
	dbManager, logger, website := testsupport.SetupTestDBManagerWithWebsite(t, "collect-conversion-nosession.test")

	conversion, err := events.CollectConversion(dbManager, logger, &events.CollectConversionInput{
		WebsiteID: website.ID,
		Name:      "purchase",
		Revenue:   12.5,
	})
	require.NoError(t, err)
	assert.Empty(t, conversion.SessionID)
	assert.Equal(t, 12.5, conversion.Revenue)
}
