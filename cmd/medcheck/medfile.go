package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"gopkg.in/yaml.v3"
)

// medFile is the on-disk medication list:
//
//	medications:
//	  - id: met
//	    name: Metformin
//	    dosage: 500mg
//	    schedule: ["09:00", "21:00"]
type medFile struct {
	Medications []medEntry `yaml:"medications"`
}

type medEntry struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Dosage   string   `yaml:"dosage"`
	Schedule []string `yaml:"schedule"`
}

func loadMedications(path string) ([]domain.Medication, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read medication file: %w", err)
	}

	var f medFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	meds := make([]domain.Medication, 0, len(f.Medications))
	seen := make(map[string]bool)
	for i, e := range f.Medications {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			id = fmt.Sprintf("med-%d", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate medication id %q", id)
		}
		seen[id] = true

		schedule, err := domain.ParseSchedule(e.Schedule)
		if err != nil {
			return nil, fmt.Errorf("medication %q: %w", e.Name, err)
		}
		meds = append(meds, domain.Medication{ID: id, Name: e.Name, Dosage: e.Dosage, Schedule: schedule})
	}
	return meds, nil
}

// parseTaken reads "id@HH:MM" into a dose taken today.
func parseTaken(arg string, meds []domain.Medication, today time.Time) (domain.DoseRecord, error) {
	id, at, ok := strings.Cut(arg, "@")
	if !ok {
		return domain.DoseRecord{}, fmt.Errorf("--taken %q: expected id@HH:MM", arg)
	}
	m, found := domain.FindMedicationByID(meds, strings.TrimSpace(id))
	if !found {
		return domain.DoseRecord{}, fmt.Errorf("--taken %q: unknown medication id", arg)
	}
	t, err := domain.ParseTimeOfDay(at)
	if err != nil {
		return domain.DoseRecord{}, fmt.Errorf("--taken %q: %w", arg, err)
	}
	return domain.DoseRecord{
		ID:           arg,
		MedicationID: m.ID,
		Name:         m.Name,
		Dosage:       m.Dosage,
		TakenAt:      t.On(today),
	}, nil
}
