package database

import (
	"log"

	"delivery-service/internal/models"
	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	if err := db.AutoMigrate(
		&models.DeliveryConfig{},
		&models.DeliverySettings{},
	); err != nil {
		return err
	}

	log.Println("✓ Database migrations completed")
	return nil
}
