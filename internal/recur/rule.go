// Package recur computes occurrence dates for recurrence rules. It is
// pure calendar arithmetic: no state, no ceiling enforcement (the
// scheduler owns end dates and generation windows).
package recur

import (
	"errors"
	"fmt"
	"time"

	"github.com/pocketledger/pocketledger/internal/model"
)

// ErrRuleArithmetic means the calendar arithmetic could not produce a
// date strictly after its input. With valid rule data this cannot
// happen; callers treat it as a programmer error, not a user error.
var ErrRuleArithmetic = errors.New("recurrence arithmetic produced no forward date")

// Next returns the first occurrence of rule strictly after from.
// Results are UTC. Repeated calls with the same inputs return the same
// date.
func Next(rule model.Rule, from time.Time) (time.Time, error) {
	rule = rule.Normalized()
	from = from.UTC()

	var next time.Time
	switch rule.Frequency {
	case model.Daily:
		next = from.AddDate(0, 0, rule.Interval)
	case model.Weekly:
		next = from.AddDate(0, 0, 7*rule.Interval)
		if rule.DayOfWeek != nil {
			next = snapToWeekday(next, time.Weekday(*rule.DayOfWeek))
		}
	case model.Monthly:
		anchor := from.Day()
		if rule.DayOfMonth != nil {
			anchor = *rule.DayOfMonth
		}
		next = addMonthsClamped(from, rule.Interval, anchor)
	case model.Yearly:
		// Month and day are preserved; Feb 29 anchors clamp to Feb 28
		// on non-leap years.
		next = addMonthsClamped(from, 12*rule.Interval, from.Day())
	default:
		return time.Time{}, fmt.Errorf("%w: unknown frequency %q", ErrRuleArithmetic, rule.Frequency)
	}

	if !next.After(from) {
		return time.Time{}, fmt.Errorf("%w: %s -> %s", ErrRuleArithmetic, from.Format(time.RFC3339), next.Format(time.RFC3339))
	}
	return next, nil
}

// snapToWeekday moves t forward (0-6 days, never backward) to the next
// occurrence of the wanted weekday.
func snapToWeekday(t time.Time, want time.Weekday) time.Time {
	delta := (int(want) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, delta)
}

// addMonthsClamped advances by n months and pins the day-of-month to
// anchor, clamped to the length of the target month. Clamp, don't roll:
// Jan 31 + 1 month is Feb 28 (or 29), never Mar 3.
func addMonthsClamped(t time.Time, n, anchor int) time.Time {
	year, month, _ := t.Date()
	hour, minute, second := t.Clock()

	// time.Date normalizes month overflow, so month+n is safe here.
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := anchor
	if limit := daysIn(first.Year(), first.Month()); day > limit {
		day = limit
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, hour, minute, second, t.Nanosecond(), time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SameDay reports whether a and b fall on the same UTC calendar day.
// Scheduler duplicate suppression matches by day, not exact timestamp.
func SameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
