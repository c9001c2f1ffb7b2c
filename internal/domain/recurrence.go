package domain

import "fmt"

// RecurrenceKind tags the recurrence rule variant.
type RecurrenceKind string

const (
	RecurrenceInterval RecurrenceKind = "interval"
	RecurrenceDaily    RecurrenceKind = "daily"
	RecurrenceWeekly   RecurrenceKind = "weekly"
)

// Recurrence is a tagged union over the three rule variants. Only the fields
// of the active variant are meaningful; the rest stay at their zero value and
// are flattened to optional columns at the persistence boundary.
type Recurrence struct {
	Kind            RecurrenceKind `json:"kind" bson:"kind"`
	IntervalMinutes int            `json:"interval_minutes,omitempty" bson:"interval_minutes,omitempty"`
	Time            string         `json:"time,omitempty" bson:"time,omitempty"`
	Days            []int          `json:"days,omitempty" bson:"days,omitempty"`
}

// Validate checks the variant invariants: interval needs minutes >= 1,
// daily/weekly need a valid HH:mm time, weekly needs a non-empty day set
// with weekdays in 0..6 (0 = Sunday).
func (r Recurrence) Validate() error {
	switch r.Kind {
	case RecurrenceInterval:
		if r.IntervalMinutes < 1 {
			return fmt.Errorf("interval_minutes must be at least 1, got %d", r.IntervalMinutes)
		}
	case RecurrenceDaily:
		if !validClock(r.Time) {
			return fmt.Errorf("invalid time %q, expected HH:mm", r.Time)
		}
	case RecurrenceWeekly:
		if !validClock(r.Time) {
			return fmt.Errorf("invalid time %q, expected HH:mm", r.Time)
		}
		if len(r.Days) == 0 {
			return fmt.Errorf("weekly recurrence requires at least one day")
		}
		for _, d := range r.Days {
			if d < 0 || d > 6 {
				return fmt.Errorf("day %d out of range 0..6", d)
			}
		}
	default:
		return fmt.Errorf("unknown recurrence kind %q", r.Kind)
	}
	return nil
}

func validClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h <= 23 && m <= 59
}
