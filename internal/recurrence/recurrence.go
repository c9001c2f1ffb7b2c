// Package recurrence computes the next trigger time for a recurring
// schedule. All functions are pure and perform no I/O.
package recurrence

import (
	"fmt"
	"time"

	"github.com/vhvplatform/go-webhook-scheduler/internal/domain"
)

// FallbackInterval is applied when a rule is malformed or its kind is
// unknown. Callers should surface the fallback via logging.
const FallbackInterval = time.Hour

// Next returns the next trigger time for rule r strictly after from.
//
//   - interval: from + N minutes.
//   - daily: today at HH:mm, or tomorrow if that moment has already passed.
//   - weekly: the closest listed weekday at HH:mm; a listed day equal to
//     today whose time has already passed counts as next week.
//
// A malformed rule falls back to from + FallbackInterval.
func Next(r domain.Recurrence, from time.Time) time.Time {
	switch r.Kind {
	case domain.RecurrenceInterval:
		if r.IntervalMinutes >= 1 {
			return from.Add(time.Duration(r.IntervalMinutes) * time.Minute)
		}

	case domain.RecurrenceDaily:
		hour, min, err := ParseClock(r.Time)
		if err != nil {
			break
		}
		candidate := time.Date(from.Year(), from.Month(), from.Day(), hour, min, 0, 0, from.Location())
		if !candidate.After(from) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate

	case domain.RecurrenceWeekly:
		hour, min, err := ParseClock(r.Time)
		if err != nil || len(r.Days) == 0 {
			break
		}
		best := -1
		for _, day := range r.Days {
			if day < 0 || day > 6 {
				continue
			}
			offset := (day - int(from.Weekday()) + 7) % 7
			if offset == 0 {
				today := time.Date(from.Year(), from.Month(), from.Day(), hour, min, 0, 0, from.Location())
				if !today.After(from) {
					offset = 7
				}
			}
			if best == -1 || offset < best {
				best = offset
			}
		}
		if best >= 0 {
			d := from.AddDate(0, 0, best)
			return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, from.Location())
		}
	}

	return from.Add(FallbackInterval)
}

// ParseClock parses a wall-clock time in strict HH:mm form.
func ParseClock(s string) (hour, min int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
