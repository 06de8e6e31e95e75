package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/medication-helper/internal/database"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DoseLogKey names the slot that holds the dose log in every backend.
const DoseLogKey = "medication-helper:dose_log"

func encodeDoseLog(records []domain.DoseRecord) ([]byte, error) {
	if records == nil {
		records = []domain.DoseRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return data, nil
}

func decodeDoseLog(data []byte) ([]domain.DoseRecord, error) {
	if len(data) == 0 {
		return []domain.DoseRecord{}, nil
	}
	var records []domain.DoseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.NewCorruptDataError(err, "Stored dose log is invalid")
	}
	return records, nil
}

// RedisDoseLog keeps the dose log as one JSON value in Redis.
type RedisDoseLog struct {
	client *redis.Client
	key    string
}

// NewRedisDoseLog wraps an existing client
func NewRedisDoseLog(client *redis.Client) *RedisDoseLog {
	return &RedisDoseLog{client: client, key: DoseLogKey}
}

// NewRedisClient connects and pings Redis
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.NewExternalAPIError(err, "redis")
	}
	return client, nil
}

func (l *RedisDoseLog) Load(ctx context.Context) ([]domain.DoseRecord, error) {
	data, err := l.client.Get(ctx, l.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.DoseRecord{}, nil
	}
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "redis")
	}
	return decodeDoseLog(data)
}

// Save overwrites the slot. The log has no TTL; stale days are pruned on read.
func (l *RedisDoseLog) Save(ctx context.Context, records []domain.DoseRecord) error {
	data, err := encodeDoseLog(records)
	if err != nil {
		return err
	}
	if err := l.client.Set(ctx, l.key, data, 0).Err(); err != nil {
		return apperrors.NewExternalAPIError(err, "redis")
	}
	return nil
}

// GormDoseLog keeps the dose log in the kv_slots table.
type GormDoseLog struct {
	db  *gorm.DB
	key string
}

func NewGormDoseLog(db *gorm.DB) *GormDoseLog {
	return &GormDoseLog{db: db, key: DoseLogKey}
}

func (l *GormDoseLog) Load(ctx context.Context) ([]domain.DoseRecord, error) {
	var slot database.KVSlot
	err := l.db.WithContext(ctx).Where("key = ?", l.key).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []domain.DoseRecord{}, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return decodeDoseLog(slot.Value)
}

func (l *GormDoseLog) Save(ctx context.Context, records []domain.DoseRecord) error {
	data, err := encodeDoseLog(records)
	if err != nil {
		return err
	}
	slot := database.KVSlot{Key: l.key, Value: data}
	err = l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}
