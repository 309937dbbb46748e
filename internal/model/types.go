package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType discriminates how a transaction's amount moves money.
type TransactionType string

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// AccountType is the kind of account.
type AccountType string

const (
	Checking AccountType = "checking"
	Card     AccountType = "card"
	Cash     AccountType = "cash"
	Savings  AccountType = "savings"
)

func (t AccountType) Valid() bool {
	switch t {
	case Checking, Card, Cash, Savings:
		return true
	}
	return false
}

// Theme is a persisted display preference. The core does not interpret
// it beyond storing and restoring it.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// Account holds a running balance in a single currency. The balance is
// a cache: it must always equal the sum of applied deltas of non-future
// transactions touching the account.
type Account struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Transaction is a single ledger entry. Amount is always positive; the
// sign of the balance delta is implied by Type. ToAccountID is set iff
// Type == Transfer.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	CategoryID  string          `json:"categoryId"`
	AccountID   string          `json:"accountId"`
	ToAccountID string          `json:"toAccountId,omitempty"`
	Date        time.Time       `json:"date"`
	Notes       string          `json:"notes,omitempty"`

	IsRecurring      bool   `json:"isRecurring,omitempty"`
	Recurrence       *Rule  `json:"recurrence,omitempty"`
	RecurringGroupID string `json:"recurringGroupId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsTransfer reports whether the transaction moves money between two
// owned accounts.
func (t Transaction) IsTransfer() bool { return t.Type == Transfer }

// Category labels transactions. Default categories are seeded on first
// run and cannot be deleted.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	ColorHex  string `json:"colorHex"`
	IsDefault bool   `json:"isDefault"`
}

// BudgetPeriod is the recurrence of a budget window.
type BudgetPeriod string

const (
	PeriodDaily   BudgetPeriod = "daily"
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

func (p BudgetPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// Start returns the beginning of the period window containing t.
// Weekly windows start on Monday.
func (p BudgetPeriod) Start(t time.Time) time.Time {
	t = t.UTC()
	switch p {
	case PeriodDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodWeekly:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := t.AddDate(0, 0, -(weekday - 1))
		return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodYearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// End returns the exclusive end of the period window containing t.
func (p BudgetPeriod) End(t time.Time) time.Time {
	start := p.Start(t)
	switch p {
	case PeriodDaily:
		return start.AddDate(0, 0, 1)
	case PeriodWeekly:
		return start.AddDate(0, 0, 7)
	case PeriodYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// Budget caps spending over a rolling period. CategoryID empty means a
// whole-ledger budget.
type Budget struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Period     BudgetPeriod    `json:"period"`
	CategoryID string          `json:"categoryId,omitempty"`
	StartDate  time.Time       `json:"startDate"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Active reports whether the budget applies on the given date.
func (b Budget) Active(on time.Time) bool { return !on.Before(b.StartDate) }

// Goal is a savings target funded by explicit deposits.
type Goal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Icon          string          `json:"icon"`
	ColorHex      string          `json:"colorHex"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Progress is current/target, clamped to [0, 1] for display.
func (g Goal) Progress() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	p, _ := g.CurrentAmount.Div(g.TargetAmount).Float64()
	if p > 1 {
		return 1
	}
	return p
}

// Remaining is target - current, floored at zero.
func (g Goal) Remaining() decimal.Decimal {
	r := g.TargetAmount.Sub(g.CurrentAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Completed reports whether the goal has been fully funded.
func (g Goal) Completed() bool { return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) }

// RecurringTemplate drives materialization of recurring transactions.
// NextOccurrence is the next date at which a concrete transaction must
// be generated; it only ever moves forward.
type RecurringTemplate struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Type           TransactionType `json:"type"`
	CategoryID     string          `json:"categoryId"`
	AccountID      string          `json:"accountId"`
	ToAccountID    string          `json:"toAccountId,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Rule           Rule            `json:"rule"`
	GroupID        string          `json:"recurringGroupId"`
	NextOccurrence time.Time       `json:"nextOccurrence"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Preferences are the persisted scalar settings.
type Preferences struct {
	Theme    Theme  `json:"theme"`
	Currency string `json:"currency"`
	Language string `json:"language"`
}

// DefaultPreferences returns the first-run preference set.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeSystem, Currency: "EUR", Language: "auto"}
}
