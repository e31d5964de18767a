// Package websites manages the registry of tracked websites and their
// report API keys.
package websites

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// WebsiteNotFoundError represents an error when a website is not found
type WebsiteNotFoundError struct {
	Domain string
}

func (e *WebsiteNotFoundError) Error() string {
	return fmt.Sprintf("website not found for domain: %s", e.Domain)
}

// NewWebsiteNotFoundError creates a new WebsiteNotFoundError
func NewWebsiteNotFoundError(domain string) *WebsiteNotFoundError {
	return &WebsiteNotFoundError{Domain: domain}
}

// Website represents a registered website whose sessions and conversions
// are tracked. The APIKey authorizes access to that website's reports.
type Website struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Domain    string    `gorm:"unique;not null" json:"domain"` // Base domain, e.g., "example.com"
	APIKey    string    `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateWebsite registers a new website with a freshly generated API key.
func CreateWebsite(db *gorm.DB, domain string) (*Website, error) {
	key, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}

	website := Website{Domain: strings.ToLower(domain), APIKey: key}
	if err := db.Create(&website).Error; err != nil {
		return nil, fmt.Errorf("failed to create website: %w", err)
	}
	return &website, nil
}

// GetWebsiteOrNotFound retrieves a Website entry by exact domain match.
// It accepts a transaction to be used as part of a larger transaction process.
func GetWebsiteOrNotFound(tx *gorm.DB, host string) (uint, error) {
	var website Website
	if err := tx.Where("domain = ?", host).First(&website).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, NewWebsiteNotFoundError(host)
		}
		return 0, fmt.Errorf("unexpected error querying website: %w", err)
	}
	return website.ID, nil
}

// GetWebsiteByID retrieves a website by primary key.
func GetWebsiteByID(db *gorm.DB, id uint) (*Website, error) {
	var website Website
	if err := db.First(&website, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWebsiteNotFoundError(fmt.Sprintf("id=%d", id))
		}
		return nil, fmt.Errorf("unexpected error querying website: %w", err)
	}
	return &website, nil
}

// BaseDomainForHost returns the canonical base domain for a hostname,
// preserving localhost semantics while collapsing subdomains
// (e.g. foo.example.com -> example.com).
func BaseDomainForHost(host string) string {
	parts := strings.Split(strings.ToLower(host), ".")
	if len(parts) < 2 {
		return strings.ToLower(host) // e.g., "localhost"
	}

	lastPart := parts[len(parts)-1]
	if lastPart == "localhost" {
		return "localhost"
	}

	// Two trailing parts, adjusted for common ccTLD patterns that need
	// three (e.g. "co.uk", "com.au").
	secondLast := parts[len(parts)-2]
	ccTLDSecondLevels := map[string]bool{
		"co": true, "com": true, "org": true, "net": true, "gov": true, "ac": true, "edu": true,
	}
	if len(parts) >= 3 && len(lastPart) == 2 && ccTLDSecondLevels[secondLast] {
		return strings.Join(parts[len(parts)-3:], ".")
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
