package services

import (
	"context"
	"sync"
	"time"

	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
)

// Clock returns the current wall-clock time in the user's location.
type Clock func() time.Time

// Snapshot is the state a check reasons over, read at one instant.
type Snapshot struct {
	Medications []domain.Medication
	TodayLog    []domain.DoseRecord
}

// Stores pairs the medication list with the dose log. Every multi-step
// operation that reads and then writes either store takes mu, so a check
// never sees a medication edit or dose write half-applied.
type Stores struct {
	Medications domain.MedicationStore
	Doses       domain.DoseLogStore

	mu sync.Mutex
}

func NewStores(medications domain.MedicationStore, doses domain.DoseLogStore) *Stores {
	return &Stores{Medications: medications, Doses: doses}
}

// Snapshot loads the medication list and today's pruned dose log together.
func (s *Stores) Snapshot(ctx context.Context, now time.Time) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meds, err := s.Medications.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	today, err := s.todayLocked(ctx, now)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Medications: domain.CloneMedications(meds), TodayLog: today}, nil
}

// todayLocked reads the log, drops previous days and writes the pruned log
// back when anything was dropped. A failed write-back is logged, not returned.
func (s *Stores) todayLocked(ctx context.Context, now time.Time) ([]domain.DoseRecord, error) {
	all, err := s.Doses.Load(ctx)
	if err != nil {
		return nil, err
	}
	today, changed := domain.LoadTodayLog(all, now)
	if changed {
		if err := s.Doses.Save(ctx, today); err != nil {
			logger.Warn("Failed to persist pruned dose log", "error", err, "dropped", len(all)-len(today))
		} else {
			logger.Debug("Pruned dose log", "dropped", len(all)-len(today))
		}
	}
	return today, nil
}

func (s *Stores) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
