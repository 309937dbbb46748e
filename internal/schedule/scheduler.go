// Package schedule materializes concrete transactions from recurring
// templates: catch-up generation for dates that have already passed and
// look-ahead generation keeping a rolling window of future occurrences.
package schedule

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pocketledger/pocketledger/internal/ledger"
	"github.com/pocketledger/pocketledger/internal/model"
	"github.com/pocketledger/pocketledger/internal/recur"
)

// DefaultLookaheadMonths bounds the rolling window of pre-generated
// future occurrences.
const DefaultLookaheadMonths = 3

// maxStepsPerTemplate caps one template's generation loop within a
// single pass. recur.Next always moves forward, so only a template
// decades behind "now" can approach this.
const maxStepsPerTemplate = 20000

// Scheduler drives template materialization. It is not safe for
// concurrent use; callers serialize passes with user mutations (the App
// facade holds that mutex).
type Scheduler struct {
	store           *ledger.Store
	log             zerolog.Logger
	lookaheadMonths int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithLookaheadMonths overrides the rolling-window length.
func WithLookaheadMonths(months int) Option {
	return func(s *Scheduler) {
		if months > 0 {
			s.lookaheadMonths = months
		}
	}
}

func New(store *ledger.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:           store,
		log:             zerolog.Nop(),
		lookaheadMonths: DefaultLookaheadMonths,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Failure records one template's error during a pass. One template's
// failure never aborts processing of the others.
type Failure struct {
	TemplateID string
	GroupID    string
	Err        error
}

// PassResult summarizes one scheduler pass.
type PassResult struct {
	CaughtUp    int // transactions materialized at past-due dates
	LookedAhead int // future transactions materialized into the window
	Failures    []Failure
}

// RunPass performs one full generation pass as of now: refresh balance
// caches (transactions may have crossed the "now" boundary since the
// last pass), catch up every due template, then top up the look-ahead
// window. Running the same pass twice with the same now generates
// nothing the second time.
func (s *Scheduler) RunPass(now time.Time) PassResult {
	now = now.UTC()
	var res PassResult

	if err := s.store.RebuildBalances(); err != nil {
		res.Failures = append(res.Failures, Failure{Err: fmt.Errorf("rebuild balances: %w", err)})
	}

	for _, t := range s.store.DueTemplates(now) {
		n, err := s.catchUp(t, now)
		res.CaughtUp += n
		if err != nil {
			res.Failures = append(res.Failures, Failure{TemplateID: t.ID, GroupID: t.GroupID, Err: err})
		}
	}

	ceiling := now.AddDate(0, s.lookaheadMonths, 0)
	for _, t := range s.store.Templates() {
		if !t.IsActive {
			continue
		}
		n, err := s.lookAhead(t, now, ceiling)
		res.LookedAhead += n
		if err != nil {
			res.Failures = append(res.Failures, Failure{TemplateID: t.ID, GroupID: t.GroupID, Err: err})
		}
	}

	s.log.Debug().
		Int("caught_up", res.CaughtUp).
		Int("looked_ahead", res.LookedAhead).
		Int("failures", len(res.Failures)).
		Time("now", now).
		Msg("generation pass complete")
	return res
}

// catchUp materializes every occurrence of t at or before now,
// advancing the template's pointer step by step. When the rule's end
// date is reached the template is left at its final valid date and
// stays active; DisableSeries is the explicit deactivation path.
func (s *Scheduler) catchUp(t model.RecurringTemplate, now time.Time) (int, error) {
	generated := 0
	for steps := 0; !t.NextOccurrence.After(now); steps++ {
		if steps >= maxStepsPerTemplate {
			return generated, fmt.Errorf("template %s: generation loop exceeded %d steps", t.ID, maxStepsPerTemplate)
		}
		if t.Rule.Ended(t.NextOccurrence) {
			return generated, nil
		}
		// Catch-up and look-ahead can both target the boundary day
		// equal to "now"; the same-day check keeps them from
		// double-generating around it.
		if !s.groupHasOccurrenceOn(t.GroupID, t.NextOccurrence) {
			if _, err := s.store.AddTransaction(s.materialize(t, t.NextOccurrence)); err != nil {
				return generated, fmt.Errorf("materialize %s: %w", t.NextOccurrence.Format("2006-01-02"), err)
			}
			generated++
		}
		advanced, err := s.store.AdvanceTemplate(t.ID)
		if err != nil {
			return generated, fmt.Errorf("advance: %w", err)
		}
		t = advanced
	}
	return generated, nil
}

// lookAhead walks forward from the latest materialized occurrence of
// t's group (or the template's own pointer for a fresh series) and
// fills the window up to the ceiling or the rule's end date, whichever
// comes first. The template pointer is not moved: look-ahead instances
// exist ahead of it and the same-day check reconciles the two walks.
func (s *Scheduler) lookAhead(t model.RecurringTemplate, now, ceiling time.Time) (int, error) {
	generated := 0
	cur, ok := s.latestInGroup(t.GroupID)
	if !ok {
		cur = t.NextOccurrence
		if cur.After(ceiling) || t.Rule.Ended(cur) {
			return 0, nil
		}
		if !s.groupHasOccurrenceOn(t.GroupID, cur) {
			if _, err := s.store.AddTransaction(s.materialize(t, cur)); err != nil {
				return 0, fmt.Errorf("materialize %s: %w", cur.Format("2006-01-02"), err)
			}
			generated++
		}
	}

	for steps := 0; ; steps++ {
		if steps >= maxStepsPerTemplate {
			return generated, fmt.Errorf("template %s: look-ahead loop exceeded %d steps", t.ID, maxStepsPerTemplate)
		}
		next, err := recur.Next(t.Rule, cur)
		if err != nil {
			return generated, fmt.Errorf("look-ahead after %s: %w", cur.Format("2006-01-02"), err)
		}
		if next.After(ceiling) || t.Rule.Ended(next) {
			return generated, nil
		}
		if !s.groupHasOccurrenceOn(t.GroupID, next) {
			if _, err := s.store.AddTransaction(s.materialize(t, next)); err != nil {
				return generated, fmt.Errorf("materialize %s: %w", next.Format("2006-01-02"), err)
			}
			generated++
		}
		cur = next
	}
}

// DisableSeries deletes every not-yet-past instance of the group (dated
// strictly after cutoff), keeps past instances as history, and
// deactivates the owning template. Returns the number of deleted
// transactions.
func (s *Scheduler) DisableSeries(groupID string, cutoff time.Time) (int, error) {
	removed, err := s.store.DeleteGroupAfter(groupID, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	t, err := s.store.TemplateByGroup(groupID)
	if err != nil {
		// Imported ledgers can carry groups whose template is gone;
		// deleting the future instances is still the right outcome.
		s.log.Warn().Str("group", groupID).Msg("disable series: no owning template")
		return removed, nil
	}
	if err := s.store.DeactivateTemplate(t.ID); err != nil {
		return removed, err
	}
	return removed, nil
}

func (s *Scheduler) materialize(t model.RecurringTemplate, date time.Time) model.Transaction {
	rule := t.Rule
	return model.Transaction{
		Amount:           t.Amount,
		Type:             t.Type,
		CategoryID:       t.CategoryID,
		AccountID:        t.AccountID,
		ToAccountID:      t.ToAccountID,
		Date:             date.UTC(),
		Notes:            t.Notes,
		IsRecurring:      true,
		Recurrence:       &rule,
		RecurringGroupID: t.GroupID,
	}
}

func (s *Scheduler) groupHasOccurrenceOn(groupID string, date time.Time) bool {
	for _, tx := range s.store.TransactionsInGroup(groupID) {
		if recur.SameDay(tx.Date, date) {
			return true
		}
	}
	return false
}

func (s *Scheduler) latestInGroup(groupID string) (time.Time, bool) {
	group := s.store.TransactionsInGroup(groupID)
	if len(group) == 0 {
		return time.Time{}, false
	}
	return group[len(group)-1].Date, true
}
