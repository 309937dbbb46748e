package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDaily(t *testing.T) {
	t.Parallel()

	next, err := Next(model.Rule{Frequency: model.Daily}, date(2026, time.March, 10))
	require.NoError(t, err)
	require.Equal(t, date(2026, time.March, 11), next)

	next, err = Next(model.Rule{Frequency: model.Daily, Interval: 3}, date(2026, time.March, 10))
	require.NoError(t, err)
	require.Equal(t, date(2026, time.March, 13), next)
}

func TestNextWeeklyPlain(t *testing.T) {
	t.Parallel()

	next, err := Next(model.Rule{Frequency: model.Weekly}, date(2026, time.March, 10))
	require.NoError(t, err)
	require.Equal(t, date(2026, time.March, 17), next)

	next, err = Next(model.Rule{Frequency: model.Weekly, Interval: 2}, date(2026, time.March, 10))
	require.NoError(t, err)
	require.Equal(t, date(2026, time.March, 24), next)
}

func TestNextWeeklySnapsToAnchorWeekday(t *testing.T) {
	t.Parallel()

	// 2026-03-10 is a Tuesday. Anchored to Friday (5), one week out
	// lands on Tue 17th and snaps forward to Fri 20th.
	friday := 5
	rule := model.Rule{Frequency: model.Weekly, DayOfWeek: &friday}
	next, err := Next(rule, date(2026, time.March, 10))
	require.NoError(t, err)
	require.Equal(t, date(2026, time.March, 20), next)
	require.Equal(t, time.Friday, next.Weekday())

	// Anchored to the same weekday the snap is a no-op.
	tuesday := 2
	rule = model.Rule{Frequency: model.Weekly, DayOfWeek: &tuesday}
	next, err = Next(rule, date(2026, time.March, 10))
	require.NoError(t, err)
	require.Equal(t, date(2026, time.March, 17), next)
}

func TestNextMonthlyClampsShortMonths(t *testing.T) {
	t.Parallel()

	// Jan 31 -> Feb 28 (clamp), never a roll into March.
	next, err := Next(model.Rule{Frequency: model.Monthly}, date(2026, time.January, 31))
	require.NoError(t, err)
	require.Equal(t, date(2026, time.February, 28), next)

	// Leap year clamps to Feb 29.
	next, err = Next(model.Rule{Frequency: model.Monthly}, date(2028, time.January, 31))
	require.NoError(t, err)
	require.Equal(t, date(2028, time.February, 29), next)
}

func TestNextMonthlyAnchorRecoversAfterClamp(t *testing.T) {
	t.Parallel()

	// With an explicit day-of-month anchor the series returns to the
	// anchor day once the month is long enough.
	anchor := 31
	rule := model.Rule{Frequency: model.Monthly, DayOfMonth: &anchor}

	next, err := Next(rule, date(2026, time.January, 31))
	require.NoError(t, err)
	require.Equal(t, date(2026, time.February, 28), next)

	next, err = Next(rule, next)
	require.NoError(t, err)
	require.Equal(t, date(2026, time.March, 31), next)
}

func TestNextYearlyClampsLeapDay(t *testing.T) {
	t.Parallel()

	next, err := Next(model.Rule{Frequency: model.Yearly}, date(2028, time.February, 29))
	require.NoError(t, err)
	require.Equal(t, date(2029, time.February, 28), next)

	next, err = Next(model.Rule{Frequency: model.Yearly}, date(2026, time.July, 4))
	require.NoError(t, err)
	require.Equal(t, date(2027, time.July, 4), next)
}

func TestNextDeterministic(t *testing.T) {
	t.Parallel()

	rule := model.Rule{Frequency: model.Monthly, Interval: 2}
	from := date(2026, time.May, 15)
	a, err := Next(rule, from)
	require.NoError(t, err)
	b, err := Next(rule, from)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.True(t, a.After(from))
}

func TestNextNormalizesInterval(t *testing.T) {
	t.Parallel()

	// Interval zero behaves as one rather than producing a stuck date.
	next, err := Next(model.Rule{Frequency: model.Daily, Interval: 0}, date(2026, time.March, 10))
	require.NoError(t, err)
	require.Equal(t, date(2026, time.March, 11), next)
}

func TestNextUnknownFrequency(t *testing.T) {
	t.Parallel()

	_, err := Next(model.Rule{Frequency: "fortnightly"}, date(2026, time.March, 10))
	require.ErrorIs(t, err, ErrRuleArithmetic)
}

func TestNextPreservesTimeOfDay(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	next, err := Next(model.Rule{Frequency: model.Monthly}, from)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.April, 10, 9, 30, 0, 0, time.UTC), next)
}

func TestSameDay(t *testing.T) {
	t.Parallel()

	require.True(t, SameDay(
		time.Date(2026, time.March, 10, 1, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 10, 23, 59, 0, 0, time.UTC),
	))
	require.False(t, SameDay(date(2026, time.March, 10), date(2026, time.March, 11)))
}
