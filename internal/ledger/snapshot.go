package ledger

import "github.com/pocketledger/pocketledger/internal/model"

// Snapshot is the full persisted state, used by backup export/import.
type Snapshot struct {
	Accounts     []model.Account
	Transactions []model.Transaction
	Categories   []model.Category
	Budgets      []model.Budget
	Goals        []model.Goal
	Templates    []model.RecurringTemplate
	Preferences  model.Preferences
}

// Snapshot copies the entire store state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Accounts:     s.Accounts(),
		Transactions: s.Transactions(),
		Categories:   s.Categories(),
		Budgets:      s.Budgets(),
		Goals:        s.Goals(),
		Templates:    s.Templates(),
		Preferences:  s.Preferences(),
	}
}

// Restore overwrites every collection with the snapshot (no merge),
// rebuilds balance caches from the restored ledger, and persists
// everything. On a persist failure the previous state is restored in
// memory; the backing store may then hold a mix of old and new
// collections, which the next successful restore or mutation repairs.
func (s *Store) Restore(snap Snapshot) error {
	prev := Snapshot{
		Accounts:     s.accounts,
		Transactions: s.transactions,
		Categories:   s.categories,
		Budgets:      s.budgets,
		Goals:        s.goals,
		Templates:    s.templates,
		Preferences:  s.prefs,
	}

	s.accounts = snap.Accounts
	s.transactions = snap.Transactions
	s.categories = snap.Categories
	s.budgets = snap.Budgets
	s.goals = snap.Goals
	s.templates = snap.Templates
	s.prefs = snap.Preferences
	if len(s.categories) == 0 {
		s.categories = model.DefaultCategories()
	}
	s.rebuildBalancesLocked()

	for _, key := range []string{
		KeyAccounts, KeyTransactions, KeyCategories,
		KeyBudgets, KeyGoals, KeyTemplates, KeyPreferences,
	} {
		if err := s.persist(key); err != nil {
			s.accounts = prev.Accounts
			s.transactions = prev.Transactions
			s.categories = prev.Categories
			s.budgets = prev.Budgets
			s.goals = prev.Goals
			s.templates = prev.Templates
			s.prefs = prev.Preferences
			return err
		}
	}
	s.emit(KeyTransactions, OpUpdate, "")
	return nil
}
