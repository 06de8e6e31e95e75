package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const medsYAML = `medications:
  - id: met
    name: Metformin
    dosage: 500mg
    schedule: ["09:00", "21:00"]
  - name: Lisinopril
    dosage: 10mg
    schedule: ["08:00"]
`

func fixedNow() time.Time {
	return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
}

func writeMeds(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out, fixedNow)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLoadMedications(t *testing.T) {
	meds, err := loadMedications(writeMeds(t, medsYAML))
	require.NoError(t, err)
	require.Len(t, meds, 2)

	assert.Equal(t, "met", meds[0].ID)
	assert.Equal(t, "med-2", meds[1].ID)
	assert.Equal(t, "08:00", meds[1].Schedule[0].String())
}

func TestLoadMedicationsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"duplicate id", "medications:\n  - id: a\n    name: A\n  - id: a\n    name: B\n"},
		{"bad schedule", "medications:\n  - id: a\n    name: A\n    schedule: [\"25:00\"]\n"},
		{"not yaml", "medications: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMedications(writeMeds(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := loadMedications(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseTaken(t *testing.T) {
	meds, err := loadMedications(writeMeds(t, medsYAML))
	require.NoError(t, err)

	r, err := parseTaken("met@09:02", meds, fixedNow())
	require.NoError(t, err)
	assert.Equal(t, "met", r.MedicationID)
	assert.Equal(t, "Metformin", r.Name)
	assert.Equal(t, time.Date(2026, 10, 17, 9, 2, 0, 0, time.UTC), r.TakenAt)

	for _, bad := range []string{"met", "nope@09:00", "met@9am"} {
		_, err := parseTaken(bad, meds, fixedNow())
		assert.Error(t, err, bad)
	}
}

func TestCheckCommand(t *testing.T) {
	meds := writeMeds(t, medsYAML)

	t.Run("on time", func(t *testing.T) {
		out, err := execute(t, "check", "--meds", meds, "--name", "metformin", "--time", "09:15")
		require.NoError(t, err)
		assert.Contains(t, out, "Status:  scheduled")
		assert.Contains(t, out, "Match:   Metformin 500mg (met)")
		assert.Contains(t, out, "Slot:    09:00")
	})

	t.Run("already taken", func(t *testing.T) {
		out, err := execute(t, "check", "--meds", meds, "--name", "Metformin", "--time", "21:05", "--taken", "met@09:02")
		require.NoError(t, err)
		assert.Contains(t, out, "Status:  already_taken_conflict")
	})

	t.Run("wrong time uses now", func(t *testing.T) {
		out, err := execute(t, "check", "--meds", meds, "--name", "Metformin")
		require.NoError(t, err)
		assert.Contains(t, out, "Status:  wrong_time")
		assert.Contains(t, out, "Next:    21:00")
	})

	t.Run("unknown name", func(t *testing.T) {
		out, err := execute(t, "check", "--meds", meds, "--name", "Aspirin", "--time", "09:00")
		require.NoError(t, err)
		assert.Contains(t, out, "Status:  unrecognized")
		assert.NotContains(t, out, "Match:")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "check", "--meds", meds, "--name", "Metformin", "--time", "08:45", "--json")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "scheduled", got["status"])
		assert.Equal(t, "met", got["matchedMedication"])
		assert.Equal(t, "09:00", got["matchedSlot"])
		assert.Equal(t, "08:45", got["checkedAt"])
	})

	t.Run("bad time", func(t *testing.T) {
		_, err := execute(t, "check", "--meds", meds, "--name", "Metformin", "--time", "noon")
		assert.Error(t, err)
	})

	t.Run("missing required flag", func(t *testing.T) {
		_, err := execute(t, "check", "--name", "Metformin")
		assert.Error(t, err)
	})
}

func TestSlotCommand(t *testing.T) {
	out, err := execute(t, "slot", "--schedule", "09:00,21:00", "--time", "23:55")
	require.NoError(t, err)
	assert.Contains(t, out, "Closest:  21:00 (175 min, outside the 30 min window)")
	assert.Contains(t, out, "Next:     09:00")

	out, err = execute(t, "slot", "--schedule", "23:50", "--time", "00:10")
	require.NoError(t, err)
	assert.Contains(t, out, "Closest:  23:50 (20 min, inside the 30 min window)")
	assert.Contains(t, out, "Next:     23:50")

	_, err = execute(t, "slot", "--schedule", "9am", "--time", "09:00")
	assert.Error(t, err)
}
