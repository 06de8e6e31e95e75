package domain

import "time"

// LoadTodayLog keeps the records taken on now's local calendar date. changed
// reports whether anything was dropped; persisting the pruned log is left to
// the caller.
func LoadTodayLog(all []DoseRecord, now time.Time) ([]DoseRecord, bool) {
	today := make([]DoseRecord, 0, len(all))
	for _, r := range all {
		if sameDate(r.TakenAt.In(now.Location()), now) {
			today = append(today, r)
		}
	}
	return today, len(today) != len(all)
}

// LatestDoseFor returns the most recent record of medicationID in log.
func LatestDoseFor(log []DoseRecord, medicationID string) (DoseRecord, bool) {
	var (
		latest DoseRecord
		found  bool
	)
	for _, r := range log {
		if r.MedicationID != medicationID {
			continue
		}
		if !found || r.TakenAt.After(latest.TakenAt) {
			latest = r
			found = true
		}
	}
	return latest, found
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
