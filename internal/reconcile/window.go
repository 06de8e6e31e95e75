package reconcile

import "github.com/vladimiradmaev/medication-helper/internal/domain"

// WindowMinutes is the symmetric on-time tolerance around a scheduled slot.
const WindowMinutes = 30

// SlotMatch is the scheduled slot closest to a given time.
type SlotMatch struct {
	Slot         domain.TimeOfDay
	Index        int
	DeltaMinutes int
}

// WithinWindow reports whether the slot is close enough to count as on time.
func (m SlotMatch) WithinWindow() bool {
	return m.DeltaMinutes <= WindowMinutes
}

// ClosestScheduledSlot returns the slot with the smallest circular distance
// to now. Ties go to the earliest entry in schedule order. ok is false for an
// empty schedule.
func ClosestScheduledSlot(schedule []domain.TimeOfDay, now domain.TimeOfDay) (match SlotMatch, ok bool) {
	for i, slot := range schedule {
		delta := slot.DistanceTo(now)
		if !ok || delta < match.DeltaMinutes {
			match = SlotMatch{Slot: slot, Index: i, DeltaMinutes: delta}
			ok = true
		}
	}
	return match, ok
}

// NextScheduledSlot returns the slot reached first when moving forward from
// now, wrapping past midnight. A slot exactly at now counts as tomorrow's.
func NextScheduledSlot(schedule []domain.TimeOfDay, now domain.TimeOfDay) (domain.TimeOfDay, bool) {
	var (
		next domain.TimeOfDay
		best int
		ok   bool
	)
	for _, slot := range schedule {
		ahead := now.MinutesUntil(slot)
		if ahead == 0 {
			ahead = domain.MinutesPerDay
		}
		if !ok || ahead < best {
			next, best, ok = slot, ahead, true
		}
	}
	return next, ok
}
