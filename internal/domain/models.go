package domain

import (
	"strings"
	"time"
)

// Medication is a user-configured drug with a dosage and a recurring daily schedule.
type Medication struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Dosage   string      `json:"dosage"` // display only
	Schedule []TimeOfDay `json:"schedule"`
}

// NameMatches reports case-insensitive equality of names, ignoring surrounding whitespace.
func (m Medication) NameMatches(name string) bool {
	return strings.EqualFold(strings.TrimSpace(m.Name), strings.TrimSpace(name))
}

// Clone returns a copy that shares no slices with m.
func (m Medication) Clone() Medication {
	m.Schedule = append([]TimeOfDay(nil), m.Schedule...)
	return m
}

// FindMedicationByName returns the first medication whose name matches.
func FindMedicationByName(medications []Medication, name string) (Medication, bool) {
	if strings.TrimSpace(name) == "" {
		return Medication{}, false
	}
	for _, m := range medications {
		if m.NameMatches(name) {
			return m, true
		}
	}
	return Medication{}, false
}

// FindMedicationByID returns the medication with the given id.
func FindMedicationByID(medications []Medication, id string) (Medication, bool) {
	for _, m := range medications {
		if m.ID == id {
			return m, true
		}
	}
	return Medication{}, false
}

// CloneMedications deep-copies a medication list so callers get an immutable snapshot.
func CloneMedications(medications []Medication) []Medication {
	out := make([]Medication, len(medications))
	for i, m := range medications {
		out[i] = m.Clone()
	}
	return out
}

// DoseRecord is one logged dose. MedicationID is a weak reference: the
// medication may have been edited or deleted since. Name and Dosage are
// copied at record time for display.
type DoseRecord struct {
	ID           string    `json:"id"`
	MedicationID string    `json:"medicationId"`
	Name         string    `json:"name,omitempty"`
	Dosage       string    `json:"dosage,omitempty"`
	TakenAt      time.Time `json:"takenAt"`
}

// PrescribedMedication is one entry read off a prescription photo.
type PrescribedMedication struct {
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Frequency string   `json:"frequency,omitempty"`
	Schedule  []string `json:"schedule"`
}

// Image is an opaque photo payload handed to a recognizer.
type Image struct {
	Data     []byte
	MIMEType string
}
