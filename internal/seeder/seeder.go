// Package seeder generates demo sessions and conversions for local
// development and screenshots.
package seeder

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"

	"attrify/internal/events"
	"attrify/internal/websites"
)

// channelMix is a weighted set of acquisition profiles roughly matching
// what a small e-commerce site sees.
var channelMix = []struct {
	source   string
	medium   string
	campaign string
	weight   int
	cvr      float64 // probability a session converts
	revenue  float64 // mean order value when it does
}{
	{"", "", "", 35, 0.02, 40},
	{"google", "organic", "", 25, 0.03, 55},
	{"google", "cpc", "brand-search", 15, 0.05, 70},
	{"facebook", "paid-social", "spring-sale", 10, 0.04, 60},
	{"newsletter", "email", "weekly-digest", 8, 0.06, 45},
	{"twitter", "social", "", 7, 0.01, 30},
}

// Seeder handles the demo data seeding process.
type Seeder struct {
	DBManager    cartridge.DBManager
	Logger       *slog.Logger
	SessionCount int
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, sessionCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager:    dbManager,
		Logger:       logger,
		SessionCount: sessionCount,
	}
}

// SeedDomain seeds an existing domain with demo sessions and conversions
// spread over the trailing 30 days.
func (s *Seeder) SeedDomain(domain string) error {
	start := time.Now()
	s.Logger.Info("Seeding domain...", slog.String("domain", domain), slog.Int("sessionCount", s.SessionCount))

	db := s.DBManager.GetConnection()

	var website websites.Website
	if err := db.Where("domain = ?", domain).First(&website).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("website with domain %s not found", domain)
		}
		return fmt.Errorf("failed to find website: %w", err)
	}

	totalWeight := 0
	for _, ch := range channelMix {
		totalWeight += ch.weight
	}

	now := time.Now().UTC()
	sessionsCreated := 0
	conversionsCreated := 0

	for i := 0; i < s.SessionCount; i++ {
		profile := channelMix[0]
		pick := rand.IntN(totalWeight)
		for _, ch := range channelMix {
			if pick < ch.weight {
				profile = ch
				break
			}
			pick -= ch.weight
		}

		firstEventAt := now.Add(-time.Duration(rand.IntN(30*24)) * time.Hour)
		session := events.Session{
			WebsiteID:    website.ID,
			SessionID:    uuid.NewString(),
			UTMSource:    profile.source,
			UTMMedium:    profile.medium,
			UTMCampaign:  profile.campaign,
			FirstEventAt: firstEventAt,
		}
		if err := db.Create(&session).Error; err != nil {
			return fmt.Errorf("failed to seed session: %w", err)
		}
		sessionsCreated++

		if rand.Float64() >= profile.cvr {
			continue
		}

		// Conversion lands between 1 minute and 6 hours into the session.
		delay := time.Minute + time.Duration(rand.IntN(int(6*time.Hour/time.Minute)))*time.Minute
		conversion := events.ConversionEvent{
			WebsiteID: website.ID,
			SessionID: session.SessionID,
			Name:      "purchase",
			Revenue:   profile.revenue * (0.5 + rand.Float64()),
			Timestamp: firstEventAt.Add(delay),
		}
		if err := db.Create(&conversion).Error; err != nil {
			return fmt.Errorf("failed to seed conversion: %w", err)
		}
		conversionsCreated++
	}

	s.Logger.Info("Seeding completed",
		slog.String("domain", domain),
		slog.Int("sessions", sessionsCreated),
		slog.Int("conversions", conversionsCreated),
		slog.Duration("took", time.Since(start)))
	return nil
}

// SeedDemoWebsite registers the demo domain if needed and fills it with data.
func (s *Seeder) SeedDemoWebsite(domain string) error {
	db := s.DBManager.GetConnection()

	if _, err := websites.GetWebsiteOrNotFound(db, domain); err != nil {
		var notFound *websites.WebsiteNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		if _, err := websites.CreateWebsite(db, domain); err != nil {
			return err
		}
		s.Logger.Info("Registered demo website", slog.String("domain", domain))
	}

	return s.SeedDomain(domain)
}
