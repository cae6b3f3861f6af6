package database

import (
	"fmt"

	"gorm.io/gorm"

	"jobboard_backend/internal/models"
)

// RunMigrations applies the schema for every model. The uuid extension
// is needed for the uuid_generate_v4 column defaults on postgres.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
			return fmt.Errorf("failed to create uuid extension: %w", err)
		}
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Job{},
		&models.JobApplication{},
		&models.SavedJob{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
