package clock

import "time"

// Clock supplies the current time. The ledger and scheduler never call
// time.Now directly so that tests can pin "now".
type Clock interface {
	Now() time.Time
}

// System is the wall clock, normalized to UTC and truncated to seconds
// (consistent with the persisted ISO-8601 representation).
type System struct{}

func (System) Now() time.Time { return time.Now().UTC().Truncate(time.Second) }

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T.UTC() }

// Manual is a settable clock for tests that advance time mid-scenario.
type Manual struct {
	T time.Time
}

func (m *Manual) Now() time.Time { return m.T.UTC() }

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) { m.T = m.T.Add(d) }

// AdvanceDays moves the clock forward by whole days.
func (m *Manual) AdvanceDays(days int) { m.T = m.T.AddDate(0, 0, days) }
