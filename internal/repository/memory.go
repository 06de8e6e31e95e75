package repository

import (
	"context"
	"sync"

	"github.com/vladimiradmaev/medication-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
)

// MemoryMedicationStore is an in-process medication list, used for
// STORAGE=memory and in tests.
type MemoryMedicationStore struct {
	mu    sync.RWMutex
	items []domain.Medication
}

func NewMemoryMedicationStore(seed ...domain.Medication) *MemoryMedicationStore {
	return &MemoryMedicationStore{items: domain.CloneMedications(seed)}
}

func (s *MemoryMedicationStore) List(ctx context.Context) ([]domain.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneMedications(s.items), nil
}

func (s *MemoryMedicationStore) Get(ctx context.Context, id string) (domain.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i].Clone(), nil
	}
	return domain.Medication{}, medicationNotFound(id)
}

func (s *MemoryMedicationStore) Create(ctx context.Context, m domain.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		return apperrors.NewValidationError("medication id required")
	}
	if s.indexOf(m.ID) >= 0 {
		return apperrors.New(apperrors.ErrorTypeDatabase, apperrors.CodeDuplicate, "Medication already exists").WithContext("medication_id", m.ID)
	}
	s.items = append(s.items, m.Clone())
	return nil
}

func (s *MemoryMedicationStore) Update(ctx context.Context, m domain.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(m.ID)
	if i < 0 {
		return medicationNotFound(m.ID)
	}
	s.items[i] = m.Clone()
	return nil
}

func (s *MemoryMedicationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return medicationNotFound(id)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *MemoryMedicationStore) indexOf(id string) int {
	for i, m := range s.items {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// MemoryDoseLog is an in-process dose log slot.
type MemoryDoseLog struct {
	mu      sync.Mutex
	records []domain.DoseRecord
	saves   int
}

func NewMemoryDoseLog(seed ...domain.DoseRecord) *MemoryDoseLog {
	return &MemoryDoseLog{records: append([]domain.DoseRecord(nil), seed...)}
}

func (l *MemoryDoseLog) Load(ctx context.Context) ([]domain.DoseRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.DoseRecord{}, l.records...), nil
}

func (l *MemoryDoseLog) Save(ctx context.Context, records []domain.DoseRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append([]domain.DoseRecord{}, records...)
	l.saves++
	return nil
}

// Saves counts Save calls.
func (l *MemoryDoseLog) Saves() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saves
}
