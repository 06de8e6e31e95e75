// Package reconcile decides whether taking a recognized medication right now
// is on time and safe, given the medication list and today's dose log.
//
// Everything here is a pure function of its arguments: no I/O, no shared
// state, safe to call from any goroutine.
package reconcile

import "github.com/vladimiradmaev/medication-helper/internal/domain"

// Engine classifies proposed doses. The zero value uses the built-in templates.
type Engine struct {
	Composer *Composer
}

// Reconcile runs the default engine.
func Reconcile(recognizedName string, medications []domain.Medication, todayLog []domain.DoseRecord, now domain.TimeOfDay) domain.DosingDecision {
	return Engine{}.Reconcile(recognizedName, medications, todayLog, now)
}

// Reconcile resolves recognizedName against medications, checks the time
// window, then checks todayLog for an earlier dose. todayLog must already be
// restricted to the current day (see domain.LoadTodayLog).
//
// A duplicate dose wins over a correct time: any dose of the medication
// logged today blocks another one, whichever slot it satisfied.
func (e Engine) Reconcile(recognizedName string, medications []domain.Medication, todayLog []domain.DoseRecord, now domain.TimeOfDay) domain.DosingDecision {
	med, ok := domain.FindMedicationByName(medications, recognizedName)
	if !ok {
		return e.decide(domain.DosingDecision{Status: domain.StatusUnrecognized}, Facts{MedicationName: recognizedName})
	}

	decision := domain.DosingDecision{
		MatchedMedicationID: med.ID,
		MatchedName:         med.Name,
		MatchedDosage:       med.Dosage,
	}
	facts := Facts{MedicationName: med.Name, Dosage: med.Dosage}

	match, ok := ClosestScheduledSlot(med.Schedule, now)
	if !ok || !match.WithinWindow() {
		decision.Status = domain.StatusWrongTime
		if next, found := NextScheduledSlot(med.Schedule, now); found {
			decision.NextScheduledTime = &next
			facts.NextTime = next.String()
		}
		return e.decide(decision, facts)
	}

	slot := match.Slot
	decision.MatchedSlot = &slot
	facts.Slot = slot.String()

	if prior, taken := domain.LatestDoseFor(todayLog, med.ID); taken {
		decision.Status = domain.StatusAlreadyTakenConflict
		facts.LastTakenAt = domain.TimeOfDayOf(prior.TakenAt).String()
		return e.decide(decision, facts)
	}

	decision.Status = domain.StatusScheduled
	return e.decide(decision, facts)
}

func (e Engine) decide(decision domain.DosingDecision, facts Facts) domain.DosingDecision {
	composer := e.Composer
	if composer == nil {
		composer = defaultComposer
	}
	decision.Summary, decision.Recommendations = composer.Compose(decision.Status, facts)
	return decision
}
