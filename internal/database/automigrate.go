package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-board-api/internal/domain"
)

// AutoMigrate runs GORM auto-migration for all domain models. Tables,
// indexes and foreign keys come from the struct definitions in the domain
// package.
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&domain.Member{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Attachment{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

// AutoMigrateWithRetry retries the migration with linear backoff. Useful
// right after startup when the database may still be warming up.
func AutoMigrateWithRetry(db *gorm.DB, logger *zap.Logger, maxRetries int) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = AutoMigrate(db)
		if err == nil {
			logger.Info("Database migration completed",
				zap.Int("attempt", attempt),
			)
			return nil
		}
		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Migration attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}
	return fmt.Errorf("migration failed after %d attempts: %w", maxRetries, err)
}
