package domain

import "context"

// Recognizer guesses the medication shown in a photo. knownNames are hints;
// an empty result with a nil error means the photo was not recognized.
type Recognizer interface {
	RecognizeMedication(ctx context.Context, image Image, knownNames []string) (string, error)
}

// PrescriptionReader extracts medications from a prescription photo.
type PrescriptionReader interface {
	ExtractPrescription(ctx context.Context, image Image) ([]PrescribedMedication, error)
}

// Narrator turns text into audio bytes.
type Narrator interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// MedicationStore holds the user's medication list.
type MedicationStore interface {
	List(ctx context.Context) ([]Medication, error)
	Get(ctx context.Context, id string) (Medication, error)
	Create(ctx context.Context, medication Medication) error
	Update(ctx context.Context, medication Medication) error
	Delete(ctx context.Context, id string) error
}

// DoseLogStore holds the dose log as one slot. Load returns everything
// stored, including stale days; pruning is the reader's job.
type DoseLogStore interface {
	Load(ctx context.Context) ([]DoseRecord, error)
	Save(ctx context.Context, records []DoseRecord) error
}
