package model

import "time"

// Frequency is the base unit of a recurrence rule.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Rule describes how a recurring series repeats. Interval is the
// multiplier on the frequency unit (every N days/weeks/months/years).
// DayOfWeek (0=Sunday..6=Saturday) anchors weekly rules; DayOfMonth
// (1..31, clamped to month length) anchors monthly rules. EndDate, if
// set, is a hard ceiling enforced by the scheduler, not the engine.
type Rule struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval"`
	DayOfWeek  *int       `json:"dayOfWeek,omitempty"`
	DayOfMonth *int       `json:"dayOfMonth,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
}

// Normalized returns a copy with Interval floored at 1.
func (r Rule) Normalized() Rule {
	if r.Interval < 1 {
		r.Interval = 1
	}
	return r
}

// Ended reports whether the rule's end date is at or before the given
// date. Rules without an end date never end.
func (r Rule) Ended(on time.Time) bool {
	return r.EndDate != nil && !on.Before(*r.EndDate)
}
