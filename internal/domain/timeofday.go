package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
)

// MinutesPerDay is the length of the circular 24-hour clock.
const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time without a date, stored as minutes since midnight.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from hour and minute. Out-of-range values are rejected.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("time %02d:%02d is out of range", hour, minute))
	}
	return TimeOfDay(hour*60 + minute), nil
}

// TimeOfDayOf returns the local time-of-day component of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// ParseTimeOfDay accepts "HH:MM" in 24-hour form, or a 12-hour clock
// followed by a period ("9:00 PM", "9:00pm", "9:00 p.m.").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, apperrors.NewValidationError("time is required")
	}

	clock := strings.ToLower(raw)
	clock = strings.ReplaceAll(clock, ".", "")
	period := ""
	switch {
	case strings.HasSuffix(clock, "am"):
		period = "am"
	case strings.HasSuffix(clock, "pm"):
		period = "pm"
	}
	if period != "" {
		clock = strings.TrimSpace(strings.TrimSuffix(clock, period))
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid time %q, expected HH:MM", raw))
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid hour in %q", raw))
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid minute in %q", raw))
	}

	if period != "" {
		if hour < 1 || hour > 12 {
			return 0, apperrors.NewValidationError(fmt.Sprintf("invalid 12-hour time %q", raw))
		}
		hour %= 12
		if period == "pm" {
			hour += 12
		}
	}

	return NewTimeOfDay(hour, minute)
}

// MustParseTimeOfDay is ParseTimeOfDay for literals known to be valid.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseSchedule parses every entry, dropping blank ones and keeping order.
func ParseSchedule(entries []string) ([]TimeOfDay, error) {
	schedule := make([]TimeOfDay, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		t, err := ParseTimeOfDay(entry)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, t)
	}
	return schedule, nil
}

// FormatSchedule renders each slot as "HH:MM".
func FormatSchedule(schedule []TimeOfDay) []string {
	out := make([]string, len(schedule))
	for i, t := range schedule {
		out[i] = t.String()
	}
	return out
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String formats as zero-padded 24-hour "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On places t on the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location())
}

// DistanceTo is the circular distance in minutes between t and other,
// so 23:50 and 00:05 are 15 minutes apart.
func (t TimeOfDay) DistanceTo(other TimeOfDay) int {
	d := int(t) - int(other)
	if d < 0 {
		d = -d
	}
	if d > MinutesPerDay/2 {
		d = MinutesPerDay - d
	}
	return d
}

// MinutesUntil is the forward distance from t to other, in [0, MinutesPerDay).
func (t TimeOfDay) MinutesUntil(other TimeOfDay) int {
	return ((int(other)-int(t))%MinutesPerDay + MinutesPerDay) % MinutesPerDay
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
