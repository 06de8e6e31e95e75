package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
)

// DoseService tracks the doses taken today. Recording is always an explicit
// user action; checks never record on their own.
type DoseService struct {
	stores *Stores
	now    Clock
}

func NewDoseService(stores *Stores, now Clock) *DoseService {
	return &DoseService{stores: stores, now: now}
}

// TodayLog returns today's records, pruning previous days from storage.
func (s *DoseService) TodayLog(ctx context.Context) ([]domain.DoseRecord, error) {
	now := s.now()
	var today []domain.DoseRecord
	err := s.stores.withLock(func() error {
		var err error
		today, err = s.stores.todayLocked(ctx, now)
		return err
	})
	return today, err
}

// RecordDose logs medicationID as taken. An empty at means now; otherwise at
// is a time of day placed on today's date.
func (s *DoseService) RecordDose(ctx context.Context, medicationID, at string) (domain.DoseRecord, error) {
	now := s.now()
	takenAt := now
	if strings.TrimSpace(at) != "" {
		t, err := domain.ParseTimeOfDay(at)
		if err != nil {
			return domain.DoseRecord{}, err
		}
		takenAt = t.On(now)
	}
	return s.RecordDoseAt(ctx, medicationID, takenAt)
}

// RecordDoseAt logs medicationID as taken at takenAt.
func (s *DoseService) RecordDoseAt(ctx context.Context, medicationID string, takenAt time.Time) (domain.DoseRecord, error) {
	if strings.TrimSpace(medicationID) == "" {
		return domain.DoseRecord{}, apperrors.NewValidationError("Medication id is required")
	}
	now := s.now()

	var record domain.DoseRecord
	err := s.stores.withLock(func() error {
		m, err := s.stores.Medications.Get(ctx, medicationID)
		if err != nil {
			return err
		}
		today, err := s.stores.todayLocked(ctx, now)
		if err != nil {
			return err
		}
		record = domain.DoseRecord{
			ID:           uuid.NewString(),
			MedicationID: m.ID,
			Name:         m.Name,
			Dosage:       m.Dosage,
			TakenAt:      takenAt.In(now.Location()),
		}
		return s.stores.Doses.Save(ctx, append(today, record))
	})
	if err != nil {
		return domain.DoseRecord{}, err
	}

	logger.Info("Dose recorded", "medication_id", record.MedicationID, "dose_id", record.ID, "taken_at", record.TakenAt.Format(time.RFC3339))
	return record, nil
}

// DeleteDose removes one record from today's log.
func (s *DoseService) DeleteDose(ctx context.Context, recordID string) error {
	now := s.now()
	err := s.stores.withLock(func() error {
		today, err := s.stores.todayLocked(ctx, now)
		if err != nil {
			return err
		}
		for i, r := range today {
			if r.ID == recordID {
				return s.stores.Doses.Save(ctx, append(today[:i:i], today[i+1:]...))
			}
		}
		return apperrors.NewNotFoundError(apperrors.CodeDoseNotFound, "Dose record not found").WithContext("dose_id", recordID)
	})
	if err != nil {
		return err
	}
	logger.Info("Dose deleted", "dose_id", recordID)
	return nil
}
