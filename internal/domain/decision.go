package domain

// DoseStatus is the closed set of reconciliation outcomes.
type DoseStatus string

const (
	StatusScheduled            DoseStatus = "scheduled"
	StatusAlreadyTakenConflict DoseStatus = "already_taken_conflict"
	StatusWrongTime            DoseStatus = "wrong_time"
	StatusUnrecognized         DoseStatus = "unrecognized"
)

// Statuses lists every DoseStatus in a stable order.
var Statuses = []DoseStatus{
	StatusScheduled,
	StatusAlreadyTakenConflict,
	StatusWrongTime,
	StatusUnrecognized,
}

// DosingDecision is the result of reconciling a proposed dose. It is derived
// on every check and never persisted.
type DosingDecision struct {
	Status              DoseStatus
	MatchedMedicationID string // empty when nothing matched
	MatchedName         string
	MatchedDosage       string
	MatchedSlot         *TimeOfDay // slot within the window, if any
	NextScheduledTime   *TimeOfDay
	Summary             string
	Recommendations     []string
}

// Matched reports whether the recognized name resolved to a medication.
func (d DosingDecision) Matched() bool {
	return d.MatchedMedicationID != ""
}

// SafeToTake is true only for an on-time dose with no prior dose today.
func (d DosingDecision) SafeToTake() bool {
	return d.Status == StatusScheduled
}
