package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
)

// MedicationInput is the user-editable part of a medication. Schedule entries
// are raw "HH:MM" or "H:MM AM" strings.
type MedicationInput struct {
	Name     string   `json:"name" yaml:"name"`
	Dosage   string   `json:"dosage" yaml:"dosage"`
	Schedule []string `json:"schedule" yaml:"schedule"`
}

// ImportResult reports the outcome of merging a scanned prescription.
type ImportResult struct {
	Added        []domain.Medication `json:"medications"`
	AddedCount   int                 `json:"added"`
	Skipped      []string            `json:"skippedNames"`
	SkippedCount int                 `json:"skipped"`
}

// Empty is true when the prescription yielded nothing to merge.
func (r ImportResult) Empty() bool {
	return r.AddedCount == 0 && r.SkippedCount == 0
}

type MedicationService struct {
	stores *Stores
	reader domain.PrescriptionReader
}

func NewMedicationService(stores *Stores, reader domain.PrescriptionReader) *MedicationService {
	return &MedicationService{stores: stores, reader: reader}
}

func (s *MedicationService) List(ctx context.Context) ([]domain.Medication, error) {
	return s.stores.Medications.List(ctx)
}

func (s *MedicationService) Get(ctx context.Context, id string) (domain.Medication, error) {
	return s.stores.Medications.Get(ctx, id)
}

func (s *MedicationService) Create(ctx context.Context, in MedicationInput) (domain.Medication, error) {
	m, err := in.toMedication(uuid.NewString())
	if err != nil {
		return domain.Medication{}, err
	}
	err = s.stores.withLock(func() error {
		return s.stores.Medications.Create(ctx, m)
	})
	if err != nil {
		return domain.Medication{}, err
	}
	logger.Info("Medication created", "medication_id", m.ID, "name", m.Name, "slots", len(m.Schedule))
	return m, nil
}

func (s *MedicationService) Update(ctx context.Context, id string, in MedicationInput) (domain.Medication, error) {
	m, err := in.toMedication(id)
	if err != nil {
		return domain.Medication{}, err
	}
	err = s.stores.withLock(func() error {
		return s.stores.Medications.Update(ctx, m)
	})
	if err != nil {
		return domain.Medication{}, err
	}
	logger.Info("Medication updated", "medication_id", m.ID)
	return m, nil
}

// Delete removes the medication. Logged doses keep their snapshot of it.
func (s *MedicationService) Delete(ctx context.Context, id string) error {
	err := s.stores.withLock(func() error {
		return s.stores.Medications.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.Info("Medication deleted", "medication_id", id)
	return nil
}

// ImportPrescription reads a prescription photo and adds every medication
// whose name is not on the list yet.
func (s *MedicationService) ImportPrescription(ctx context.Context, image domain.Image) (ImportResult, error) {
	if len(image.Data) == 0 {
		return ImportResult{}, apperrors.NewValidationError("Prescription image is empty")
	}
	scanned, err := s.reader.ExtractPrescription(ctx, image)
	if err != nil {
		return ImportResult{}, apperrors.NewExternalAPIError(err, "prescription reader")
	}
	return s.MergePrescription(ctx, scanned)
}

// MergePrescription adds scanned medications, skipping names already present
// (case-insensitive) including duplicates within the scan itself.
func (s *MedicationService) MergePrescription(ctx context.Context, scanned []domain.PrescribedMedication) (ImportResult, error) {
	result := ImportResult{Added: []domain.Medication{}}

	err := s.stores.withLock(func() error {
		existing, err := s.stores.Medications.List(ctx)
		if err != nil {
			return err
		}
		for _, p := range scanned {
			name := strings.TrimSpace(p.Name)
			if name == "" {
				continue
			}
			if _, dup := domain.FindMedicationByName(existing, name); dup {
				result.Skipped = append(result.Skipped, name)
				continue
			}

			in := MedicationInput{Name: name, Dosage: p.Dosage, Schedule: p.Schedule}
			if len(nonBlank(in.Schedule)) == 0 {
				in.Schedule = DefaultScheduleFor(p.Frequency)
			}
			m, err := in.toMedication(uuid.NewString())
			if err != nil {
				logger.Warn("Skipping scanned medication with invalid schedule", "name", name, "error", err)
				result.Skipped = append(result.Skipped, name)
				continue
			}
			if err := s.stores.Medications.Create(ctx, m); err != nil {
				return err
			}
			existing = append(existing, m)
			result.Added = append(result.Added, m)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	result.AddedCount = len(result.Added)
	result.SkippedCount = len(result.Skipped)
	logger.Info("Prescription merged", "scanned", len(scanned), "added", result.AddedCount, "skipped", result.SkippedCount)
	return result, nil
}

// DefaultScheduleFor maps a free-text frequency to default slots.
func DefaultScheduleFor(frequency string) []string {
	f := strings.ToLower(strings.TrimSpace(frequency))
	switch {
	case f == "":
		return nil
	case strings.Contains(f, "three times") || strings.Contains(f, "3 times"):
		return []string{"08:00", "14:00", "20:00"}
	case strings.Contains(f, "twice") || strings.Contains(f, "two times") || strings.Contains(f, "2 times"):
		return []string{"09:00", "21:00"}
	case strings.Contains(f, "once") || strings.Contains(f, "daily") || strings.Contains(f, "a day"):
		return []string{"09:00"}
	}
	return nil
}

func (in MedicationInput) toMedication(id string) (domain.Medication, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Medication{}, apperrors.NewValidationError("Medication name is required")
	}
	dosage := strings.TrimSpace(in.Dosage)
	if dosage == "" {
		return domain.Medication{}, apperrors.NewValidationError(fmt.Sprintf("Dosage is required for %s", name))
	}
	schedule, err := domain.ParseSchedule(in.Schedule)
	if err != nil {
		return domain.Medication{}, err
	}
	return domain.Medication{ID: id, Name: name, Dosage: dosage, Schedule: schedule}, nil
}

func nonBlank(entries []string) []string {
	var out []string
	for _, e := range entries {
		if strings.TrimSpace(e) != "" {
			out = append(out, e)
		}
	}
	return out
}
