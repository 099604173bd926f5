package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a Postgres connection via gorm and runs AutoMigrate for
// every row type this package owns. The teacher bootstraps its DB handle
// through an initializers package that isn't part of the retrieved
// reference set, so this connects directly from a DSN instead of through
// that layer.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	if err := db.AutoMigrate(
		&FieldRow{},
		&CropProfileRow{},
		&WeatherDayRow{},
		&InteractionRuleRow{},
		&OptimizationResultRow{},
	); err != nil {
		return nil, fmt.Errorf("store: automigrate: %w", err)
	}

	return db, nil
}
