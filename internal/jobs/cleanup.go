package jobs

import (
	"log/slog"
	"time"

	"attrify/internal/config"
	"attrify/internal/database"
	"attrify/internal/events"
)

// CleanupJob removes sessions and conversion events past the retention
// window. Attribution only ever looks backward over a bounded date range,
// so expired rows are dead weight.
type CleanupJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager *database.DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run deletes expired rows in batches to avoid holding the write lock for
// too long.
func (j *CleanupJob) Run() error {
	retentionDays := j.cfg.RetentionDays
	db := j.dbManager.GetConnection()
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	j.logger.Info("Starting retention cleanup",
		slog.Int("retention_days", retentionDays),
		slog.Time("cutoff_date", cutoffDate))

	batchSize := 1000
	totalDeleted := int64(0)

	for {
		result := db.Where("first_event_at < ?", cutoffDate).
			Limit(batchSize).
			Delete(&events.Session{})
		if result.Error != nil {
			j.logger.Error("Failed to delete expired sessions", slog.Any("error", result.Error))
			return result.Error
		}
		totalDeleted += result.RowsAffected
		if result.RowsAffected < int64(batchSize) {
			break
		}
	}

	for {
		result := db.Where("timestamp < ?", cutoffDate).
			Limit(batchSize).
			Delete(&events.ConversionEvent{})
		if result.Error != nil {
			j.logger.Error("Failed to delete expired conversion events", slog.Any("error", result.Error))
			return result.Error
		}
		totalDeleted += result.RowsAffected
		if result.RowsAffected < int64(batchSize) {
			break
		}
	}

	if totalDeleted == 0 {
		j.logger.Debug("No expired rows to clean up")
		return nil
	}

	j.logger.Info("Retention cleanup completed", slog.Int64("deleted", totalDeleted))
	return nil
}
