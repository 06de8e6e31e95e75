package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTodayLog(t *testing.T) {
	loc := time.FixedZone("local", -5*3600)
	now := time.Date(2026, 10, 17, 9, 20, 0, 0, loc)

	records := []DoseRecord{
		{ID: "a", MedicationID: "m1", TakenAt: time.Date(2026, 10, 17, 9, 5, 0, 0, loc)},
		{ID: "b", MedicationID: "m1", TakenAt: time.Date(2026, 10, 16, 23, 59, 0, 0, loc)},
		{ID: "c", MedicationID: "m2", TakenAt: time.Date(2026, 10, 17, 0, 0, 0, 0, loc)},
		// 02:00 UTC on the 18th is still the 17th at UTC-5.
		{ID: "d", MedicationID: "m2", TakenAt: time.Date(2026, 10, 18, 2, 0, 0, 0, time.UTC)},
		{ID: "e", MedicationID: "m3", TakenAt: time.Date(2025, 10, 17, 9, 0, 0, 0, loc)},
	}

	today, changed := LoadTodayLog(records, now)
	assert.True(t, changed)
	ids := make([]string, 0, len(today))
	for _, r := range today {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "c", "d"}, ids)
}

func TestLoadTodayLog_idempotent(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	records := []DoseRecord{
		{ID: "a", MedicationID: "m1", TakenAt: now.Add(-time.Hour)},
		{ID: "b", MedicationID: "m1", TakenAt: now.Add(-48 * time.Hour)},
	}

	once, changed := LoadTodayLog(records, now)
	assert.True(t, changed)

	twice, changed := LoadTodayLog(once, now)
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestLoadTodayLog_yesterdayOnly(t *testing.T) {
	now := time.Date(2026, 10, 17, 0, 10, 0, 0, time.UTC)
	records := []DoseRecord{{ID: "a", MedicationID: "m1", TakenAt: now.Add(-20 * time.Minute)}}

	today, changed := LoadTodayLog(records, now)
	assert.True(t, changed)
	assert.Empty(t, today)
}

func TestLoadTodayLog_empty(t *testing.T) {
	today, changed := LoadTodayLog(nil, time.Now())
	assert.False(t, changed)
	assert.Empty(t, today)
}

func TestLatestDoseFor(t *testing.T) {
	base := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	log := []DoseRecord{
		{ID: "a", MedicationID: "m1", TakenAt: base},
		{ID: "b", MedicationID: "m2", TakenAt: base.Add(time.Hour)},
		{ID: "c", MedicationID: "m1", TakenAt: base.Add(2 * time.Hour)},
	}

	latest, ok := LatestDoseFor(log, "m1")
	assert.True(t, ok)
	assert.Equal(t, "c", latest.ID)

	_, ok = LatestDoseFor(log, "m3")
	assert.False(t, ok)
}

func TestFindMedicationByName(t *testing.T) {
	meds := []Medication{
		{ID: "1", Name: "Metformin"},
		{ID: "2", Name: "Salbutamol"},
		{ID: "3", Name: "metformin"},
	}

	m, ok := FindMedicationByName(meds, "  METFORMIN ")
	assert.True(t, ok)
	assert.Equal(t, "1", m.ID)

	_, ok = FindMedicationByName(meds, "Metformin XR")
	assert.False(t, ok, "matching is exact, not fuzzy")

	_, ok = FindMedicationByName(meds, "")
	assert.False(t, ok)
}

func TestCloneMedications(t *testing.T) {
	meds := []Medication{{ID: "1", Name: "A", Schedule: []TimeOfDay{MustParseTimeOfDay("09:00")}}}
	snapshot := CloneMedications(meds)
	meds[0].Schedule[0] = MustParseTimeOfDay("10:00")
	assert.Equal(t, "09:00", snapshot[0].Schedule[0].String())
}
