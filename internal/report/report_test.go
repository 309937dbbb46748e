package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/clock"
	"github.com/pocketledger/pocketledger/internal/ledger"
	"github.com/pocketledger/pocketledger/internal/model"
	"github.com/pocketledger/pocketledger/internal/storage"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T, now time.Time) (*ledger.Store, *Reporter, model.Account, model.Category) {
	t.Helper()
	store, err := ledger.NewStore(storage.NewMemory(), clock.Fixed{T: now})
	require.NoError(t, err)
	a, err := store.AddAccount(model.Account{Name: "Everyday", Type: model.Checking})
	require.NoError(t, err)
	cats := store.Categories()
	require.NotEmpty(t, cats)
	return store, New(store), a, cats[0]
}

func addTx(t *testing.T, s *ledger.Store, a model.Account, c model.Category, kind model.TransactionType, amount string, date time.Time) {
	t.Helper()
	_, err := s.AddTransaction(model.Transaction{
		Amount: dec(amount), Type: kind,
		AccountID: a.ID, CategoryID: c.ID, Date: date,
	})
	require.NoError(t, err)
}

func TestTotalBalanceExcludesFutureAndNetsTransfers(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, rep, a, cat := setup(t, now)
	b, err := store.AddAccount(model.Account{Name: "Savings", Type: model.Savings})
	require.NoError(t, err)

	addTx(t, store, a, cat, model.Income, "500", now.AddDate(0, 0, -5))
	addTx(t, store, a, cat, model.Expense, "120", now.AddDate(0, 0, -2))
	addTx(t, store, a, cat, model.Expense, "999", now.AddDate(0, 0, 9))

	// A transfer shuffles money between accounts without changing net
	// worth.
	_, err = store.AddTransaction(model.Transaction{
		Amount: dec("200"), Type: model.Transfer,
		AccountID: a.ID, ToAccountID: b.ID, CategoryID: cat.ID, Date: now,
	})
	require.NoError(t, err)

	total := rep.TotalBalance()
	require.True(t, total.Equal(dec("380")), "got %s", total)
}

func TestIncomeAndExpensesForPeriod(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, rep, a, cat := setup(t, now)

	addTx(t, store, a, cat, model.Income, "300", now.AddDate(0, 0, -3))
	addTx(t, store, a, cat, model.Income, "100", now.AddDate(0, -2, 0))
	addTx(t, store, a, cat, model.Expense, "80", now.AddDate(0, 0, -1))

	start := now.AddDate(0, -1, 0)
	end := now.AddDate(0, 0, 1)
	require.True(t, rep.IncomeForPeriod(start, end).Equal(dec("300")))
	require.True(t, rep.ExpensesForPeriod(start, end).Equal(dec("80")))
}

func TestExpensesByCategory(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, rep, a, cat := setup(t, now)
	other, err := store.AddCategory(model.Category{Name: "Vinyl"})
	require.NoError(t, err)

	addTx(t, store, a, cat, model.Expense, "40", now.AddDate(0, 0, -3))
	addTx(t, store, a, cat, model.Expense, "10", now.AddDate(0, 0, -2))
	_, err = store.AddTransaction(model.Transaction{
		Amount: dec("25"), Type: model.Expense,
		AccountID: a.ID, CategoryID: other.ID, Date: now.AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	addTx(t, store, a, cat, model.Income, "500", now.AddDate(0, 0, -1))

	got := rep.ExpensesByCategory(now.AddDate(0, -1, 0), now.AddDate(0, 0, 1))
	require.Len(t, got, 2)
	require.True(t, got[cat.ID].Equal(dec("50")))
	require.True(t, got[other.ID].Equal(dec("25")))
}

func TestBudgetProgressUnclampedOverspend(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, rep, a, cat := setup(t, now)

	b, err := store.AddBudget(model.Budget{
		Name: "Groceries", Amount: dec("100"),
		Period: model.PeriodMonthly, CategoryID: cat.ID,
	})
	require.NoError(t, err)

	addTx(t, store, a, cat, model.Expense, "150", now.AddDate(0, 0, -2))

	p := rep.Progress(b, now)
	require.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), p.PeriodStart)
	require.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), p.PeriodEnd)
	require.True(t, p.Spent.Equal(dec("150")))
	require.True(t, p.Remaining.Equal(dec("-50")), "overspend stays visible")
	require.InDelta(t, 1.5, p.Percentage, 1e-9)
}

func TestBudgetProgressScopesToCategory(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, rep, a, cat := setup(t, now)
	other, err := store.AddCategory(model.Category{Name: "Vinyl"})
	require.NoError(t, err)

	scoped, err := store.AddBudget(model.Budget{
		Name: "Scoped", Amount: dec("100"),
		Period: model.PeriodMonthly, CategoryID: cat.ID,
	})
	require.NoError(t, err)
	global, err := store.AddBudget(model.Budget{
		Name: "Everything", Amount: dec("100"),
		Period: model.PeriodMonthly,
	})
	require.NoError(t, err)

	addTx(t, store, a, cat, model.Expense, "30", now.AddDate(0, 0, -1))
	_, err = store.AddTransaction(model.Transaction{
		Amount: dec("20"), Type: model.Expense,
		AccountID: a.ID, CategoryID: other.ID, Date: now.AddDate(0, 0, -1),
	})
	require.NoError(t, err)

	require.True(t, rep.Progress(scoped, now).Spent.Equal(dec("30")))
	require.True(t, rep.Progress(global, now).Spent.Equal(dec("50")))
}

func TestBudgetProgressExcludesPendingExpenses(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, rep, a, cat := setup(t, now)

	b, err := store.AddBudget(model.Budget{
		Name: "Groceries", Amount: dec("100"), Period: model.PeriodMonthly,
	})
	require.NoError(t, err)

	addTx(t, store, a, cat, model.Expense, "40", now.AddDate(0, 0, -1))
	addTx(t, store, a, cat, model.Expense, "60", now.AddDate(0, 0, 5))

	p := rep.Progress(b, now)
	require.True(t, p.Spent.Equal(dec("40")), "pending occurrences never count as spent")
}

func TestWeeklyBudgetWindowStartsMonday(t *testing.T) {
	t.Parallel()

	// 2026-04-10 is a Friday; its week runs Mon Apr 6 .. Mon Apr 13.
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, rep, _, _ := setup(t, now)

	b, err := store.AddBudget(model.Budget{
		Name: "Weekly", Amount: dec("50"), Period: model.PeriodWeekly,
	})
	require.NoError(t, err)

	p := rep.Progress(b, now)
	require.Equal(t, time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), p.PeriodStart)
	require.Equal(t, time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC), p.PeriodEnd)
	require.Equal(t, time.Monday, p.PeriodStart.Weekday())
}

func TestActiveBudgets(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, rep, _, _ := setup(t, now)

	live, err := store.AddBudget(model.Budget{
		Name: "Live", Amount: dec("50"), Period: model.PeriodMonthly,
		StartDate: now.AddDate(0, -1, 0),
	})
	require.NoError(t, err)
	_, err = store.AddBudget(model.Budget{
		Name: "NotYet", Amount: dec("50"), Period: model.PeriodMonthly,
		StartDate: now.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	got := rep.ActiveBudgets(now)
	require.Len(t, got, 1)
	require.Equal(t, live.ID, got[0].ID)
}
