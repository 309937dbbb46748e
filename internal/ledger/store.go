// Package ledger owns the in-memory financial state and its
// persistence: accounts, transactions, categories, budgets, goals,
// recurring templates, and scalar preferences.
//
// The store is single-writer: every mutation is a synchronous
// read-modify-write-persist on one goroutine. Callers that mix user
// mutations with background generation must serialize through one
// boundary (the App facade does this); the store itself takes no locks.
package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/clock"
	"github.com/pocketledger/pocketledger/internal/model"
	"github.com/pocketledger/pocketledger/internal/storage"
)

// Persisted collection keys. Each holds one JSON document.
const (
	KeyAccounts     = "accounts"
	KeyTransactions = "transactions"
	KeyCategories   = "categories"
	KeyBudgets      = "budgets"
	KeyGoals        = "goals"
	KeyTemplates    = "recurringTemplates"
	KeyPreferences  = "preferences"
)

// Store holds all collections in memory and writes each back to the
// provider after every logical operation.
type Store struct {
	provider storage.Provider
	clock    clock.Clock
	log      zerolog.Logger

	// countFuture makes future-dated transactions count toward account
	// balances immediately instead of being held pending.
	countFuture bool

	accounts     []model.Account
	transactions []model.Transaction
	categories   []model.Category
	budgets      []model.Budget
	goals        []model.Goal
	templates    []model.RecurringTemplate
	prefs        model.Preferences

	subscribers []func(Event)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithFutureBalances makes future-dated transactions apply their
// balance delta immediately.
func WithFutureBalances() Option {
	return func(s *Store) { s.countFuture = true }
}

// NewStore loads all collections from the provider. Empty stores are
// seeded with the default category set.
func NewStore(provider storage.Provider, clk clock.Clock, opts ...Option) (*Store, error) {
	s := &Store{
		provider: provider,
		clock:    clk,
		log:      zerolog.Nop(),
		prefs:    model.DefaultPreferences(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	if len(s.categories) == 0 {
		s.categories = model.DefaultCategories()
		if err := s.persist(KeyCategories); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	if err := loadInto(s.provider, KeyAccounts, &s.accounts); err != nil {
		return err
	}
	if err := loadInto(s.provider, KeyTransactions, &s.transactions); err != nil {
		return err
	}
	if err := loadInto(s.provider, KeyCategories, &s.categories); err != nil {
		return err
	}
	if err := loadInto(s.provider, KeyBudgets, &s.budgets); err != nil {
		return err
	}
	if err := loadInto(s.provider, KeyGoals, &s.goals); err != nil {
		return err
	}
	if err := loadInto(s.provider, KeyTemplates, &s.templates); err != nil {
		return err
	}
	return loadInto(s.provider, KeyPreferences, &s.prefs)
}

func loadInto(p storage.Provider, key string, dst any) error {
	data, ok, err := p.Load(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &storage.PersistenceError{Op: "load", Key: key, Err: err}
	}
	return nil
}

// persist writes the named collection back to the provider.
func (s *Store) persist(key string) error {
	var v any
	switch key {
	case KeyAccounts:
		v = s.accounts
	case KeyTransactions:
		v = s.transactions
	case KeyCategories:
		v = s.categories
	case KeyBudgets:
		v = s.budgets
	case KeyGoals:
		v = s.goals
	case KeyTemplates:
		v = s.templates
	case KeyPreferences:
		v = s.prefs
	default:
		return fmt.Errorf("unknown collection %q", key)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return &storage.PersistenceError{Op: "save", Key: key, Err: err}
	}
	if err := s.provider.Save(key, data); err != nil {
		s.log.Error().Err(err).Str("collection", key).Msg("persist failed")
		return err
	}
	return nil
}

// Now returns the store's current time.
func (s *Store) Now() time.Time { return s.clock.Now() }

// isFuture reports whether a transaction dated at t is still pending
// for balance purposes.
func (s *Store) isFuture(t time.Time) bool {
	if s.countFuture {
		return false
	}
	return t.After(s.clock.Now())
}

// ─── Accounts ───

// Accounts returns a copy of all accounts.
func (s *Store) Accounts() []model.Account {
	out := make([]model.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// AccountByID returns the account, or ErrNotFound.
func (s *Store) AccountByID(id string) (model.Account, error) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Account{}, notFound("account", id)
}

// AddAccount validates and appends an account. A zero ID is assigned.
func (s *Store) AddAccount(a model.Account) (model.Account, error) {
	if a.Name == "" {
		return model.Account{}, invalid("name", "must not be empty")
	}
	if !a.Type.Valid() {
		return model.Account{}, invalid("type", fmt.Sprintf("unknown account type %q", a.Type))
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Currency == "" {
		a.Currency = s.prefs.Currency
	}
	// The balance cache starts at the replayed value for a fresh
	// account, which is zero. Opening balances are materialized as
	// transactions by the caller.
	a.Balance = decimal.Zero
	now := s.clock.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.accounts = append(s.accounts, a)
	if err := s.persist(KeyAccounts); err != nil {
		s.accounts = s.accounts[:len(s.accounts)-1]
		return model.Account{}, err
	}
	s.emit(KeyAccounts, OpAdd, a.ID)
	return a, nil
}

// UpdateAccount replaces the stored account with the same ID. The
// balance field is kept from the stored record: balances change only
// through transactions.
func (s *Store) UpdateAccount(a model.Account) error {
	idx := -1
	for i := range s.accounts {
		if s.accounts[i].ID == a.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return notFound("account", a.ID)
	}
	prev := s.accounts[idx]
	a.Balance = prev.Balance
	a.CreatedAt = prev.CreatedAt
	a.UpdatedAt = s.clock.Now()
	s.accounts[idx] = a
	if err := s.persist(KeyAccounts); err != nil {
		s.accounts[idx] = prev
		return err
	}
	s.emit(KeyAccounts, OpUpdate, a.ID)
	return nil
}

// DeleteAccount removes an account. Transactions referencing it are
// left in place as historical records.
func (s *Store) DeleteAccount(id string) error {
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			prev := s.accounts
			s.accounts = append(append([]model.Account{}, s.accounts[:i]...), s.accounts[i+1:]...)
			if err := s.persist(KeyAccounts); err != nil {
				s.accounts = prev
				return err
			}
			s.emit(KeyAccounts, OpDelete, id)
			return nil
		}
	}
	return notFound("account", id)
}

// ─── Categories ───

func (s *Store) Categories() []model.Category {
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *Store) CategoryByID(id string) (model.Category, error) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return model.Category{}, notFound("category", id)
}

func (s *Store) AddCategory(c model.Category) (model.Category, error) {
	if c.Name == "" {
		return model.Category{}, invalid("name", "must not be empty")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.IsDefault = false
	s.categories = append(s.categories, c)
	if err := s.persist(KeyCategories); err != nil {
		s.categories = s.categories[:len(s.categories)-1]
		return model.Category{}, err
	}
	s.emit(KeyCategories, OpAdd, c.ID)
	return c, nil
}

func (s *Store) UpdateCategory(c model.Category) error {
	for i := range s.categories {
		if s.categories[i].ID == c.ID {
			prev := s.categories[i]
			c.IsDefault = prev.IsDefault
			s.categories[i] = c
			if err := s.persist(KeyCategories); err != nil {
				s.categories[i] = prev
				return err
			}
			s.emit(KeyCategories, OpUpdate, c.ID)
			return nil
		}
	}
	return notFound("category", c.ID)
}

// DeleteCategory removes a user category. System-seeded categories
// cannot be deleted.
func (s *Store) DeleteCategory(id string) error {
	for i := range s.categories {
		if s.categories[i].ID != id {
			continue
		}
		if s.categories[i].IsDefault {
			return invalid("category", "default categories cannot be deleted")
		}
		prev := s.categories
		s.categories = append(append([]model.Category{}, s.categories[:i]...), s.categories[i+1:]...)
		if err := s.persist(KeyCategories); err != nil {
			s.categories = prev
			return err
		}
		s.emit(KeyCategories, OpDelete, id)
		return nil
	}
	return notFound("category", id)
}

// ─── Budgets ───

func (s *Store) Budgets() []model.Budget {
	out := make([]model.Budget, len(s.budgets))
	copy(out, s.budgets)
	return out
}

func (s *Store) BudgetByID(id string) (model.Budget, error) {
	for _, b := range s.budgets {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Budget{}, notFound("budget", id)
}

func (s *Store) AddBudget(b model.Budget) (model.Budget, error) {
	if !b.Amount.IsPositive() {
		return model.Budget{}, invalid("amount", "must be positive")
	}
	if !b.Period.Valid() {
		return model.Budget{}, invalid("period", fmt.Sprintf("unknown period %q", b.Period))
	}
	if b.CategoryID != "" {
		if _, err := s.CategoryByID(b.CategoryID); err != nil {
			return model.Budget{}, err
		}
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := s.clock.Now()
	if b.StartDate.IsZero() {
		b.StartDate = now
	}
	b.CreatedAt, b.UpdatedAt = now, now
	s.budgets = append(s.budgets, b)
	if err := s.persist(KeyBudgets); err != nil {
		s.budgets = s.budgets[:len(s.budgets)-1]
		return model.Budget{}, err
	}
	s.emit(KeyBudgets, OpAdd, b.ID)
	return b, nil
}

func (s *Store) UpdateBudget(b model.Budget) error {
	for i := range s.budgets {
		if s.budgets[i].ID == b.ID {
			prev := s.budgets[i]
			b.CreatedAt = prev.CreatedAt
			b.UpdatedAt = s.clock.Now()
			s.budgets[i] = b
			if err := s.persist(KeyBudgets); err != nil {
				s.budgets[i] = prev
				return err
			}
			s.emit(KeyBudgets, OpUpdate, b.ID)
			return nil
		}
	}
	return notFound("budget", b.ID)
}

func (s *Store) DeleteBudget(id string) error {
	for i := range s.budgets {
		if s.budgets[i].ID == id {
			prev := s.budgets
			s.budgets = append(append([]model.Budget{}, s.budgets[:i]...), s.budgets[i+1:]...)
			if err := s.persist(KeyBudgets); err != nil {
				s.budgets = prev
				return err
			}
			s.emit(KeyBudgets, OpDelete, id)
			return nil
		}
	}
	return notFound("budget", id)
}

// ─── Goals ───

func (s *Store) Goals() []model.Goal {
	out := make([]model.Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

func (s *Store) GoalByID(id string) (model.Goal, error) {
	for _, g := range s.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return model.Goal{}, notFound("goal", id)
}

func (s *Store) AddGoal(g model.Goal) (model.Goal, error) {
	if g.Name == "" {
		return model.Goal{}, invalid("name", "must not be empty")
	}
	if !g.TargetAmount.IsPositive() {
		return model.Goal{}, invalid("targetAmount", "must be positive")
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := s.clock.Now()
	g.CreatedAt, g.UpdatedAt = now, now
	s.goals = append(s.goals, g)
	if err := s.persist(KeyGoals); err != nil {
		s.goals = s.goals[:len(s.goals)-1]
		return model.Goal{}, err
	}
	s.emit(KeyGoals, OpAdd, g.ID)
	return g, nil
}

func (s *Store) UpdateGoal(g model.Goal) error {
	for i := range s.goals {
		if s.goals[i].ID == g.ID {
			prev := s.goals[i]
			g.CurrentAmount = prev.CurrentAmount
			g.CreatedAt = prev.CreatedAt
			g.UpdatedAt = s.clock.Now()
			s.goals[i] = g
			if err := s.persist(KeyGoals); err != nil {
				s.goals[i] = prev
				return err
			}
			s.emit(KeyGoals, OpUpdate, g.ID)
			return nil
		}
	}
	return notFound("goal", g.ID)
}

func (s *Store) DeleteGoal(id string) error {
	for i := range s.goals {
		if s.goals[i].ID == id {
			prev := s.goals
			s.goals = append(append([]model.Goal{}, s.goals[:i]...), s.goals[i+1:]...)
			if err := s.persist(KeyGoals); err != nil {
				s.goals = prev
				return err
			}
			s.emit(KeyGoals, OpDelete, id)
			return nil
		}
	}
	return notFound("goal", id)
}

// DepositToGoal adds amount to the goal's accumulated total. Deposits
// are monotonic: the accumulated amount never decreases.
func (s *Store) DepositToGoal(id string, amount decimal.Decimal) (model.Goal, error) {
	if !amount.IsPositive() {
		return model.Goal{}, invalid("amount", "deposit must be positive")
	}
	for i := range s.goals {
		if s.goals[i].ID == id {
			prev := s.goals[i]
			s.goals[i].CurrentAmount = prev.CurrentAmount.Add(amount)
			s.goals[i].UpdatedAt = s.clock.Now()
			if err := s.persist(KeyGoals); err != nil {
				s.goals[i] = prev
				return model.Goal{}, err
			}
			s.emit(KeyGoals, OpUpdate, id)
			return s.goals[i], nil
		}
	}
	return model.Goal{}, notFound("goal", id)
}

// ─── Preferences ───

func (s *Store) Preferences() model.Preferences { return s.prefs }

func (s *Store) SetPreferences(p model.Preferences) error {
	prev := s.prefs
	s.prefs = p
	if err := s.persist(KeyPreferences); err != nil {
		s.prefs = prev
		return err
	}
	s.emit(KeyPreferences, OpUpdate, "")
	return nil
}
