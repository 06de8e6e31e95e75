package services

import (
	"context"
	"strings"
	"time"

	"github.com/vladimiradmaev/medication-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
	"github.com/vladimiradmaev/medication-helper/internal/reconcile"
)

// CheckResult is a decision plus the name the recognizer read.
type CheckResult struct {
	RecognizedName string
	Decision       domain.DosingDecision
	CheckedAt      time.Time
}

// CheckService answers "should I take this now?".
type CheckService struct {
	stores     *Stores
	recognizer domain.Recognizer
	engine     reconcile.Engine
}

func NewCheckService(stores *Stores, recognizer domain.Recognizer) *CheckService {
	return &CheckService{stores: stores, recognizer: recognizer}
}

// Check recognizes the medication in image and reconciles it at now. When the
// recognizer fails no decision is produced.
func (s *CheckService) Check(ctx context.Context, image domain.Image, now time.Time) (CheckResult, error) {
	if len(image.Data) == 0 {
		return CheckResult{}, apperrors.NewValidationError("Image is empty")
	}

	snap, err := s.stores.Snapshot(ctx, now)
	if err != nil {
		return CheckResult{}, err
	}

	names := make([]string, 0, len(snap.Medications))
	for _, m := range snap.Medications {
		names = append(names, m.Name)
	}

	recognized, err := s.recognizer.RecognizeMedication(ctx, image, names)
	if err != nil {
		logger.Error("Medication recognition failed", "error", err)
		return CheckResult{}, apperrors.NewExternalAPIError(err, "recognizer")
	}
	recognized = strings.TrimSpace(recognized)
	logger.Debug("Medication recognized", "name", recognized, "known", len(names))

	return s.reconcile(recognized, snap, now), nil
}

// CheckName reconciles a medication named by the user.
func (s *CheckService) CheckName(ctx context.Context, name string, now time.Time) (CheckResult, error) {
	if strings.TrimSpace(name) == "" {
		return CheckResult{}, apperrors.NewValidationError("Medication name is required")
	}
	snap, err := s.stores.Snapshot(ctx, now)
	if err != nil {
		return CheckResult{}, err
	}
	return s.reconcile(strings.TrimSpace(name), snap, now), nil
}

func (s *CheckService) reconcile(name string, snap Snapshot, now time.Time) CheckResult {
	decision := s.engine.Reconcile(name, snap.Medications, snap.TodayLog, domain.TimeOfDayOf(now))
	logger.Info("Dose check completed",
		"status", decision.Status,
		"recognized", name,
		"medication_id", decision.MatchedMedicationID,
		"time", domain.TimeOfDayOf(now).String(),
	)
	return CheckResult{RecognizedName: name, Decision: decision, CheckedAt: now}
}

// ResolveNow returns now, or the given time of day placed on now's date.
// Callers use it to honor an explicit "HH:MM" from the user.
func ResolveNow(now time.Time, at string) (time.Time, error) {
	if strings.TrimSpace(at) == "" {
		return now, nil
	}
	t, err := domain.ParseTimeOfDay(at)
	if err != nil {
		return time.Time{}, err
	}
	return t.On(now), nil
}
