package interfaces

import (
	"context"
	"time"

	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

// MedicationServiceInterface defines the contract for medication list operations
type MedicationServiceInterface interface {
	List(ctx context.Context) ([]domain.Medication, error)
	Get(ctx context.Context, id string) (domain.Medication, error)
	Create(ctx context.Context, in services.MedicationInput) (domain.Medication, error)
	Update(ctx context.Context, id string, in services.MedicationInput) (domain.Medication, error)
	Delete(ctx context.Context, id string) error
	ImportPrescription(ctx context.Context, image domain.Image) (services.ImportResult, error)
}

// DoseServiceInterface defines the contract for today's dose log
type DoseServiceInterface interface {
	TodayLog(ctx context.Context) ([]domain.DoseRecord, error)
	RecordDose(ctx context.Context, medicationID, at string) (domain.DoseRecord, error)
	DeleteDose(ctx context.Context, recordID string) error
}

// CheckServiceInterface defines the contract for dose checks
type CheckServiceInterface interface {
	Check(ctx context.Context, image domain.Image, now time.Time) (services.CheckResult, error)
	CheckName(ctx context.Context, name string, now time.Time) (services.CheckResult, error)
}

// NarratorInterface defines the contract for text-to-speech
type NarratorInterface interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
