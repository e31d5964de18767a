package websites_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrify/internal/testsupport"
	"attrify/internal/websites"
)

func TestBaseDomainForHost(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"shop.staging.example.com", "example.com"},
		{"Example.COM", "example.com"},
		{"example.co.uk", "example.co.uk"},
		{"www.example.co.uk", "example.co.uk"},
		{"example.com.au", "example.com.au"},
		{"localhost", "localhost"},
		{"app.localhost", "localhost"},
	}

	for _, tc := range tests {
		t.Run(tc.host, func(t *testing.T) {
			assert.Equal(t, tc.expected, websites.BaseDomainForHost(tc.host))
		})
	}
}

func TestCreateWebsite(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	website, err := websites.CreateWebsite(db, "Example.COM")
	require.NoError(t, err)

	assert.Equal(t, "example.com", website.Domain)
	assert.Len(t, website.APIKey, 64)
	assert.NotZero(t, website.ID)

	other, err := websites.CreateWebsite(db, "other.com")
	require.NoError(t, err)
	assert.NotEqual(t, website.APIKey, other.APIKey)
}

func TestGetWebsiteOrNotFound(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	website, err := websites.CreateWebsite(db, "known.com")
	require.NoError(t, err)

	id, err := websites.GetWebsiteOrNotFound(db, "known.com")
	require.NoError(t, err)
	assert.Equal(t, website.ID, id)

	_, err = websites.GetWebsiteOrNotFound(db, "missing.com")
	var notFound *websites.WebsiteNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestGetWebsiteByID(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	created, err := websites.CreateWebsite(db, "byid.com")
	require.NoError(t, err)

	website, err := websites.GetWebsiteByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "byid.com", website.Domain)

	_, err = websites.GetWebsiteByID(db, 99999)
	var notFound *websites.WebsiteNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
