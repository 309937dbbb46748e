package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/clock"
	"github.com/pocketledger/pocketledger/internal/model"
)

func mustTemplate(t *testing.T, s *Store, next time.Time, rule model.Rule) model.RecurringTemplate {
	t.Helper()
	a := mustAccount(t, s, "Recurring-"+next.Format("20060102150405.000"))
	cat := firstCategory(t, s)
	tmpl, err := s.AddTemplate(model.RecurringTemplate{
		Amount: dec("15"), Type: model.Expense,
		AccountID: a.ID, CategoryID: cat.ID,
		Rule: rule, NextOccurrence: next,
	})
	require.NoError(t, err)
	return tmpl
}

func TestAddTemplateMintsGroupID(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, clock.Fixed{T: now})

	tmpl := mustTemplate(t, s, now, model.Rule{Frequency: model.Weekly})
	require.NotEmpty(t, tmpl.ID)
	require.NotEmpty(t, tmpl.GroupID)
	require.True(t, tmpl.IsActive)

	byGroup, err := s.TemplateByGroup(tmpl.GroupID)
	require.NoError(t, err)
	require.Equal(t, tmpl.ID, byGroup.ID)
}

func TestAddTemplateValidates(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, clock.Fixed{T: now})
	a := mustAccount(t, s, "Everyday")
	cat := firstCategory(t, s)

	var verr *ValidationError
	_, err := s.AddTemplate(model.RecurringTemplate{
		Amount: dec("15"), Type: model.Expense,
		AccountID: a.ID, CategoryID: cat.ID,
		Rule: model.Rule{Frequency: "hourly"}, NextOccurrence: now,
	})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "rule.frequency", verr.Field)

	_, err = s.AddTemplate(model.RecurringTemplate{
		Amount: dec("15"), Type: model.Expense,
		AccountID: a.ID, CategoryID: cat.ID,
		Rule: model.Rule{Frequency: model.Weekly},
	})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "nextOccurrence", verr.Field)
}

func TestDueTemplates(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, clock.Fixed{T: now})

	due := mustTemplate(t, s, now.AddDate(0, 0, -2), model.Rule{Frequency: model.Daily})
	exactlyNow := mustTemplate(t, s, now, model.Rule{Frequency: model.Daily})
	notYet := mustTemplate(t, s, now.AddDate(0, 0, 3), model.Rule{Frequency: model.Daily})
	paused := mustTemplate(t, s, now.AddDate(0, 0, -5), model.Rule{Frequency: model.Daily})
	_, err := s.ToggleTemplate(paused.ID)
	require.NoError(t, err)

	got := s.DueTemplates(now)
	ids := map[string]bool{}
	for _, tmpl := range got {
		ids[tmpl.ID] = true
	}
	require.Len(t, got, 2)
	require.True(t, ids[due.ID])
	require.True(t, ids[exactlyNow.ID], "a template due exactly now is due")
	require.False(t, ids[notYet.ID])
	require.False(t, ids[paused.ID])
}

func TestAdvanceTemplateMovesForwardOnly(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, clock.Fixed{T: now})

	tmpl := mustTemplate(t, s, now, model.Rule{Frequency: model.Weekly})
	adv, err := s.AdvanceTemplate(tmpl.ID)
	require.NoError(t, err)
	require.Equal(t, now.AddDate(0, 0, 7), adv.NextOccurrence)

	adv2, err := s.AdvanceTemplate(tmpl.ID)
	require.NoError(t, err)
	require.True(t, adv2.NextOccurrence.After(adv.NextOccurrence))
}

func TestToggleAndDeactivateTemplate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, clock.Fixed{T: now})

	tmpl := mustTemplate(t, s, now, model.Rule{Frequency: model.Monthly})
	off, err := s.ToggleTemplate(tmpl.ID)
	require.NoError(t, err)
	require.False(t, off.IsActive)
	require.Equal(t, tmpl.NextOccurrence, off.NextOccurrence, "toggle keeps the pointer")

	on, err := s.ToggleTemplate(tmpl.ID)
	require.NoError(t, err)
	require.True(t, on.IsActive)

	require.NoError(t, s.DeactivateTemplate(tmpl.ID))
	require.NoError(t, s.DeactivateTemplate(tmpl.ID), "deactivate is idempotent")
	got, err := s.TemplateByID(tmpl.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}

func TestUpdateTemplateKeepsGroupAndCreation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, clock.Fixed{T: now})

	tmpl := mustTemplate(t, s, now, model.Rule{Frequency: model.Weekly})
	edit := tmpl
	edit.Amount = dec("99")
	edit.GroupID = "forged"
	require.NoError(t, s.UpdateTemplate(edit))

	got, err := s.TemplateByID(tmpl.ID)
	require.NoError(t, err)
	require.True(t, got.Amount.Equal(dec("99")))
	require.Equal(t, tmpl.GroupID, got.GroupID)
	require.Equal(t, tmpl.CreatedAt, got.CreatedAt)
}

func TestDeleteTemplateLeavesTransactions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, clock.Fixed{T: now})
	a := mustAccount(t, s, "Everyday")
	cat := firstCategory(t, s)

	tmpl := mustTemplate(t, s, now, model.Rule{Frequency: model.Weekly})
	_, err := s.AddTransaction(model.Transaction{
		Amount: dec("15"), Type: model.Expense,
		AccountID: a.ID, CategoryID: cat.ID, Date: now,
		IsRecurring: true, RecurringGroupID: tmpl.GroupID,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTemplate(tmpl.ID))
	require.ErrorIs(t, func() error { _, err := s.TemplateByID(tmpl.ID); return err }(), ErrNotFound)
	require.Len(t, s.TransactionsInGroup(tmpl.GroupID), 1)
}

func TestDeleteGroupAfterKeepsHistory(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, clock.Fixed{T: now})
	a := mustAccount(t, s, "Everyday")
	cat := firstCategory(t, s)

	group := "series-1"
	for _, d := range []time.Time{now.AddDate(0, 0, -7), now, now.AddDate(0, 0, 7), now.AddDate(0, 0, 14)} {
		_, err := s.AddTransaction(model.Transaction{
			Amount: dec("15"), Type: model.Expense,
			AccountID: a.ID, CategoryID: cat.ID, Date: d,
			IsRecurring: true, RecurringGroupID: group,
		})
		require.NoError(t, err)
	}

	removed, err := s.DeleteGroupAfter(group, now)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	left := s.TransactionsInGroup(group)
	require.Len(t, left, 2)
	for _, tx := range left {
		require.False(t, tx.Date.After(now))
		require.False(t, tx.IsRecurring, "survivors are detached from the series")
		require.Equal(t, group, tx.RecurringGroupID, "group link stays for history")
	}
}
