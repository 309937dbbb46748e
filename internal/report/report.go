// Package report computes period-bounded aggregates over the ledger.
// Every figure here excludes future-dated transactions: pending
// occurrences are visible in the upcoming list, never in summaries.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/ledger"
	"github.com/pocketledger/pocketledger/internal/model"
)

// Reporter reads the ledger store. It performs no mutation.
type Reporter struct {
	store *ledger.Store
}

func New(store *ledger.Store) *Reporter { return &Reporter{store: store} }

// TotalBalance replays every non-future transaction delta over zero and
// sums the result across accounts. This replayed figure is the
// authoritative net worth; per-account cached balances are derived from
// the same replay.
func (r *Reporter) TotalBalance() decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	now := r.store.Now()
	for _, tx := range r.store.Transactions() {
		if tx.Date.After(now) {
			continue
		}
		ledger.ApplyDelta(balances, tx)
	}
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b)
	}
	return total
}

// IncomeForPeriod sums income transactions in [start, end).
func (r *Reporter) IncomeForPeriod(start, end time.Time) decimal.Decimal {
	return r.sumByType(model.Income, start, end)
}

// ExpensesForPeriod sums expense transactions in [start, end).
func (r *Reporter) ExpensesForPeriod(start, end time.Time) decimal.Decimal {
	return r.sumByType(model.Expense, start, end)
}

func (r *Reporter) sumByType(kind model.TransactionType, start, end time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range r.store.TransactionsInPeriod(start, end) {
		if tx.Type == kind {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// ExpensesByCategory groups non-future expenses in [start, end) by
// category id.
func (r *Reporter) ExpensesByCategory(start, end time.Time) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, tx := range r.store.TransactionsInPeriod(start, end) {
		if tx.Type != model.Expense {
			continue
		}
		out[tx.CategoryID] = out[tx.CategoryID].Add(tx.Amount)
	}
	return out
}

// BudgetProgress is the resolved state of one budget for one period
// window. Percentage is spent/target and is not clamped: over-budget is
// representable; display layers clamp if they want a full bar.
type BudgetProgress struct {
	Budget      model.Budget
	PeriodStart time.Time
	PeriodEnd   time.Time
	Spent       decimal.Decimal
	Remaining   decimal.Decimal
	Percentage  float64
}

// Progress resolves the budget's period window containing asOf and sums
// matching expenses, scoped to the budget's category when set.
func (r *Reporter) Progress(b model.Budget, asOf time.Time) BudgetProgress {
	start := b.Period.Start(asOf)
	end := b.Period.End(asOf)

	spent := decimal.Zero
	for _, tx := range r.store.TransactionsInPeriod(start, end) {
		if tx.Type != model.Expense {
			continue
		}
		if b.CategoryID != "" && tx.CategoryID != b.CategoryID {
			continue
		}
		spent = spent.Add(tx.Amount)
	}

	var pct float64
	if b.Amount.IsPositive() {
		pct, _ = spent.Div(b.Amount).Float64()
	}
	return BudgetProgress{
		Budget:      b,
		PeriodStart: start,
		PeriodEnd:   end,
		Spent:       spent,
		Remaining:   b.Amount.Sub(spent),
		Percentage:  pct,
	}
}

// ActiveBudgets returns budgets whose start date has passed as of asOf.
func (r *Reporter) ActiveBudgets(asOf time.Time) []model.Budget {
	var out []model.Budget
	for _, b := range r.store.Budgets() {
		if b.Active(asOf) {
			out = append(out, b)
		}
	}
	return out
}
