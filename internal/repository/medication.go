package repository

import (
	"context"
	"errors"

	"github.com/vladimiradmaev/medication-helper/internal/database"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"gorm.io/gorm"
)

// MedicationRepository handles medication data operations
type MedicationRepository struct {
	db *gorm.DB
}

// NewMedicationRepository creates a new medication repository
func NewMedicationRepository(db *gorm.DB) *MedicationRepository {
	return &MedicationRepository{db: db}
}

// List returns all medications in the order they were added
func (r *MedicationRepository) List(ctx context.Context) ([]domain.Medication, error) {
	var rows []database.Medication
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	out := make([]domain.Medication, 0, len(rows))
	for _, row := range rows {
		m, err := toDomainMedication(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Get returns one medication by id
func (r *MedicationRepository) Get(ctx context.Context, id string) (domain.Medication, error) {
	var row database.Medication
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Medication{}, medicationNotFound(id)
		}
		return domain.Medication{}, apperrors.NewDatabaseError(err)
	}
	return toDomainMedication(row)
}

// Create inserts a medication; the id must already be set
func (r *MedicationRepository) Create(ctx context.Context, m domain.Medication) error {
	row := fromDomainMedication(m)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// Update replaces name, dosage and schedule
func (r *MedicationRepository) Update(ctx context.Context, m domain.Medication) error {
	row := fromDomainMedication(m)
	result := r.db.WithContext(ctx).
		Model(&row).
		Select("name", "dosage", "schedule", "updated_at").
		Updates(&row)
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return medicationNotFound(m.ID)
	}
	return nil
}

// Delete removes a medication. Dose records that reference it are left alone.
func (r *MedicationRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&database.Medication{})
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return medicationNotFound(id)
	}
	return nil
}

func medicationNotFound(id string) error {
	return apperrors.NewNotFoundError(apperrors.CodeMedicationNotFound, "Medication not found").WithContext("medication_id", id)
}

func toDomainMedication(row database.Medication) (domain.Medication, error) {
	schedule, err := domain.ParseSchedule(row.Schedule)
	if err != nil {
		return domain.Medication{}, apperrors.NewCorruptDataError(err, "Stored schedule is invalid").
			WithContext("medication_id", row.ID)
	}
	return domain.Medication{
		ID:       row.ID,
		Name:     row.Name,
		Dosage:   row.Dosage,
		Schedule: schedule,
	}, nil
}

func fromDomainMedication(m domain.Medication) database.Medication {
	return database.Medication{
		ID:       m.ID,
		Name:     m.Name,
		Dosage:   m.Dosage,
		Schedule: domain.FormatSchedule(m.Schedule),
	}
}
