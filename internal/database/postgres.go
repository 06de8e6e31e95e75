package database

import (
	"fmt"
	"time"

	"github.com/vladimiradmaev/medication-helper/internal/config"
	"github.com/vladimiradmaev/medication-helper/internal/database/migrations"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Medication is the persisted form of domain.Medication.
type Medication struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string   `gorm:"not null"`
	Dosage    string   `gorm:"not null"`
	Schedule  []string `gorm:"serializer:json"` // "HH:MM", in user order
}

// KVSlot is a single named JSON value. The dose log lives in one slot when
// Redis is not configured.
type KVSlot struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (KVSlot) TableName() string { return "kv_slots" }

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Medication{}, &KVSlot{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	registry, err := migrations.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := registry.Run(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database connection established and migrations completed", "host", cfg.Host, "db", cfg.DBName)
	return db, nil
}
