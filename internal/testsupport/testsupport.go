package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/cache"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"attrify/internal/config"
	"attrify/internal/events"
	"attrify/internal/websites"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager with attrify's interface
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

// Ensure TestDBManager implements cartridge.DBManager
var _ cartridge.DBManager = (*TestDBManager)(nil)

// allModels returns all attrify models for migration
func allModels() []any {
	return []any{
		&cache.CacheRecord{},
		&websites.Website{},
		&events.Session{},
		&events.ConversionEvent{},
	}
}

// SetupTestDB creates a test database with all attrify models migrated.
// Uses a named in-memory database with cache=shared to allow multiple
// connections to share the same database within a test. Caches the database
// by test name so multiple calls within the same test return the same one.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	// Use root test name for caching to handle closure issues where
	// setup functions capture the outer t while t.Run has subtest t
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	// Check cache first
	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	// Apply SQLite pragmas
	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	// Auto-migrate models
	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	// Cache the database
	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	// Register cleanup
	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	cfg := config.GetConfig()

	// SAFETY CHECK: Ensure we're in test environment
	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set ATTRIFY_ENV=test", cfg.Environment)
	}

	db := SetupTestDB(t)
	logger := GetLogger()
	dbManager := NewTestDBManager(db)

	return dbManager, logger
}

// SetupTestDBManagerWithWebsite creates a test database manager with a test website
func SetupTestDBManagerWithWebsite(t *testing.T, domain string) (*TestDBManager, *slog.Logger, websites.Website) {
	dbManager, logger := SetupTestDBManager(t)
	website := CreateTestWebsite(dbManager.GetConnection(), domain)
	return dbManager, logger, website
}

// CreateTestWebsite creates (or returns) a website entry for the domain
func CreateTestWebsite(db *gorm.DB, domain string) websites.Website {
	var website websites.Website
	if db.Where("domain = ?", domain).First(&website).Error != nil {
		website = websites.Website{Domain: domain, APIKey: "test-api-key-" + domain, CreatedAt: time.Now().UTC()}
		db.Create(&website)
	}
	return website
}

// CreateSession stores a session with the given acquisition metadata
func CreateSession(t *testing.T, db *gorm.DB, websiteID uint, source, medium, campaign string, firstEventAt time.Time) events.Session {
	t.Helper()
	session := events.Session{
		WebsiteID:    websiteID,
		SessionID:    uuid.NewString(),
		UTMSource:    source,
		UTMMedium:    medium,
		UTMCampaign:  campaign,
		FirstEventAt: firstEventAt,
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("testsupport: failed to create session: %v", err)
	}
	return session
}

// CreateConversion stores a conversion event for an existing session
func CreateConversion(t *testing.T, db *gorm.DB, websiteID uint, sessionID string, revenue float64, timestamp time.Time) events.ConversionEvent {
	t.Helper()
	conversion := events.ConversionEvent{
		WebsiteID: websiteID,
		SessionID: sessionID,
		Name:      "purchase",
		Revenue:   revenue,
		Timestamp: timestamp,
	}
	if err := db.Create(&conversion).Error; err != nil {
		t.Fatalf("testsupport: failed to create conversion: %v", err)
	}
	return conversion
}

// GetLogger returns a quiet logger for tests
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}
