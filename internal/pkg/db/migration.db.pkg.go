package database

import (
	"fmt"
	"paysofter-checkout/internal/common/models"
	"paysofter-checkout/internal/pkg/logger"
)

func (db *Database) RunMigrations() error {
	logger.Info.Println("Starting database migrations...")

	if err := db.createExtensions(); err != nil {
		return fmt.Errorf("failed to create extensions: %w", err)
	}

	// Define models in dependency order
	entities := []interface{}{
		&models.Settlement{},
	}

	for _, model := range entities {
		logger.Info.Printf("Migrating model: %T", model)
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	if err := db.createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Info.Println("Database migrations completed successfully")
	return nil
}

func (db *Database) createExtensions() error {
	if db.Config.Driver != POSTGRES {
		return nil
	}
	query := `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`
	return db.Exec(query).Error
}

func (db *Database) createIndexes() error {
	if db.Config.Driver != POSTGRES {
		return nil
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_settlements_buyer_email ON settlements(buyer_email);`,
		`CREATE INDEX IF NOT EXISTS idx_settlements_settled_at ON settlements(settled_at);`,
		`CREATE INDEX IF NOT EXISTS idx_settlements_currency ON settlements(currency);`,
	}

	for _, query := range indexes {
		if err := db.Exec(query).Error; err != nil {
			logger.Error.Printf("Error creating index: %s, Error: %v", query, err)
			return err
		}
	}

	return nil
}
