// Package pocketledger is a local-first personal finance core:
// accounts, transactions, categories, budgets, goals, and a recurring
// transaction engine, persisted through a pluggable key-value provider.
//
// App is the single entry point. It is constructed once at process
// start and passed to consumers; there is no package-level singleton.
// Every operation is serialized by one mutex, so a background timer
// driving generation passes is safe against user-initiated mutations.
package pocketledger

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/clock"
	"github.com/pocketledger/pocketledger/internal/export"
	"github.com/pocketledger/pocketledger/internal/ledger"
	"github.com/pocketledger/pocketledger/internal/model"
	"github.com/pocketledger/pocketledger/internal/recur"
	"github.com/pocketledger/pocketledger/internal/report"
	"github.com/pocketledger/pocketledger/internal/schedule"
	"github.com/pocketledger/pocketledger/internal/storage"
)

// App owns the ledger store, template registry, scheduler, and
// reporter behind one mutex.
type App struct {
	mu       sync.Mutex
	clock    clock.Clock
	store    *ledger.Store
	sched    *schedule.Scheduler
	reporter *report.Reporter
	log      zerolog.Logger
}

// Options configure App construction.
type Options struct {
	// LookaheadMonths bounds the rolling generation window. Zero means
	// the default (3).
	LookaheadMonths int
	// CountFutureInBalance applies future-dated transaction deltas to
	// balances immediately instead of holding them pending.
	CountFutureInBalance bool
	Logger               zerolog.Logger
	Clock                clock.Clock
}

// New loads state from the provider and wires the core together.
func New(provider storage.Provider, opts Options) (*App, error) {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	log := opts.Logger

	storeOpts := []ledger.Option{ledger.WithLogger(log)}
	if opts.CountFutureInBalance {
		storeOpts = append(storeOpts, ledger.WithFutureBalances())
	}
	store, err := ledger.NewStore(provider, clk, storeOpts...)
	if err != nil {
		return nil, err
	}
	sched := schedule.New(store,
		schedule.WithLogger(log),
		schedule.WithLookaheadMonths(opts.LookaheadMonths),
	)
	return &App{
		clock:    clk,
		store:    store,
		sched:    sched,
		reporter: report.New(store),
		log:      log,
	}, nil
}

// Subscribe registers a change-notification callback. Callbacks run
// synchronously under the app mutex; they must not call back into App.
func (a *App) Subscribe(fn func(ledger.Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.Subscribe(fn)
}

// Now returns the app's current time.
func (a *App) Now() time.Time { return a.clock.Now() }

// ─── Transactions ───

func (a *App) AddTransaction(tx model.Transaction) (model.Transaction, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.AddTransaction(tx)
}

func (a *App) UpdateTransaction(tx model.Transaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.UpdateTransaction(tx)
}

func (a *App) DeleteTransaction(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.DeleteTransaction(id)
}

func (a *App) Transactions() []model.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Transactions()
}

func (a *App) TransactionsForAccount(accountID string) []model.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.TransactionsForAccount(accountID)
}

func (a *App) TransactionsInPeriod(start, end time.Time) []model.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.TransactionsInPeriod(start, end)
}

// Upcoming returns the raw future-dated list (no summary exclusion).
func (a *App) Upcoming() []model.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Upcoming()
}

// ─── Accounts ───

// AddAccount creates the account. A nonzero opening balance is
// materialized as an initial transaction so it survives balance
// replays, which always start from zero.
func (a *App) AddAccount(acct model.Account) (model.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	opening := acct.Balance
	added, err := a.store.AddAccount(acct)
	if err != nil {
		return model.Account{}, err
	}
	if opening.IsZero() {
		return added, nil
	}
	kind, amount := model.Income, opening
	if opening.IsNegative() {
		kind, amount = model.Expense, opening.Neg()
	}
	_, err = a.store.AddTransaction(model.Transaction{
		Amount:     amount,
		Type:       kind,
		CategoryID: a.openingCategoryID(),
		AccountID:  added.ID,
		Date:       a.clock.Now(),
		Notes:      "Opening balance",
	})
	if err != nil {
		if derr := a.store.DeleteAccount(added.ID); derr != nil {
			a.log.Error().Err(derr).Str("account", added.ID).Msg("rollback of half-created account failed")
		}
		return model.Account{}, err
	}
	return a.store.AccountByID(added.ID)
}

// openingCategoryID picks the catch-all category for opening balance
// entries.
func (a *App) openingCategoryID() string {
	cats := a.store.Categories()
	for _, c := range cats {
		if c.Name == "other" {
			return c.ID
		}
	}
	if len(cats) > 0 {
		return cats[0].ID
	}
	return ""
}

func (a *App) UpdateAccount(acct model.Account) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.UpdateAccount(acct)
}

func (a *App) DeleteAccount(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.DeleteAccount(id)
}

func (a *App) Accounts() []model.Account {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Accounts()
}

func (a *App) GetAccountBalance(id string) (decimal.Decimal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.GetAccountBalance(id)
}

// ─── Categories, budgets, goals, preferences ───

func (a *App) Categories() []model.Category {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Categories()
}

func (a *App) AddCategory(c model.Category) (model.Category, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.AddCategory(c)
}

func (a *App) DeleteCategory(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.DeleteCategory(id)
}

func (a *App) Budgets() []model.Budget {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Budgets()
}

func (a *App) AddBudget(b model.Budget) (model.Budget, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.AddBudget(b)
}

func (a *App) DeleteBudget(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.DeleteBudget(id)
}

func (a *App) Goals() []model.Goal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Goals()
}

func (a *App) AddGoal(g model.Goal) (model.Goal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.AddGoal(g)
}

func (a *App) DepositToGoal(id string, amount decimal.Decimal) (model.Goal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.DepositToGoal(id, amount)
}

func (a *App) Preferences() model.Preferences {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Preferences()
}

func (a *App) SetPreferences(p model.Preferences) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.SetPreferences(p)
}

// ─── Recurring series ───

// AddRecurringTransaction records the originating transaction and
// creates its template in one step: the transaction is materialized at
// its own date, the template's pointer is set to the first occurrence
// after it, and both share a freshly minted group id. The next
// generation pass fills the look-ahead window.
func (a *App) AddRecurringTransaction(tx model.Transaction, rule model.Rule) (model.Transaction, model.RecurringTemplate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rule = rule.Normalized()
	next, err := recur.Next(rule, tx.Date.UTC())
	if err != nil {
		return model.Transaction{}, model.RecurringTemplate{}, err
	}
	tmpl, err := a.store.AddTemplate(model.RecurringTemplate{
		Amount:         tx.Amount,
		Type:           tx.Type,
		CategoryID:     tx.CategoryID,
		AccountID:      tx.AccountID,
		ToAccountID:    tx.ToAccountID,
		Notes:          tx.Notes,
		Rule:           rule,
		NextOccurrence: next,
	})
	if err != nil {
		return model.Transaction{}, model.RecurringTemplate{}, err
	}

	tx.IsRecurring = true
	ruleCopy := rule
	tx.Recurrence = &ruleCopy
	tx.RecurringGroupID = tmpl.GroupID
	added, err := a.store.AddTransaction(tx)
	if err != nil {
		if derr := a.store.DeleteTemplate(tmpl.ID); derr != nil {
			a.log.Error().Err(derr).Str("template", tmpl.ID).Msg("rollback of orphan template failed")
		}
		return model.Transaction{}, model.RecurringTemplate{}, err
	}
	return added, tmpl, nil
}

func (a *App) AddRecurringTemplate(t model.RecurringTemplate) (model.RecurringTemplate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.AddTemplate(t)
}

func (a *App) UpdateRecurringTemplate(t model.RecurringTemplate) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.UpdateTemplate(t)
}

func (a *App) DeleteRecurringTemplate(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.DeleteTemplate(id)
}

func (a *App) ToggleRecurringTemplate(id string) (model.RecurringTemplate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.ToggleTemplate(id)
}

func (a *App) RecurringTemplates() []model.RecurringTemplate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Templates()
}

// RunGenerationPass catches up due templates and tops up the rolling
// look-ahead window as of now. Safe to re-run: a second pass with the
// same now generates nothing.
func (a *App) RunGenerationPass(now time.Time) schedule.PassResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sched.RunPass(now)
}

// Refresh runs a generation pass at the current clock time.
func (a *App) Refresh() schedule.PassResult {
	return a.RunGenerationPass(a.clock.Now())
}

// DisableSeries deletes the group's future instances (strictly after
// cutoff) and deactivates its template; history stays.
func (a *App) DisableSeries(groupID string, cutoff time.Time) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sched.DisableSeries(groupID, cutoff)
}

// ─── Reports ───

func (a *App) TotalBalance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reporter.TotalBalance()
}

func (a *App) GetBudgetProgress(b model.Budget, asOf time.Time) report.BudgetProgress {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reporter.Progress(b, asOf)
}

func (a *App) ExpensesByCategory(start, end time.Time) map[string]decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reporter.ExpensesByCategory(start, end)
}

func (a *App) IncomeForPeriod(start, end time.Time) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reporter.IncomeForPeriod(start, end)
}

func (a *App) ExpensesForPeriod(start, end time.Time) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reporter.ExpensesForPeriod(start, end)
}

func (a *App) ActiveBudgets(asOf time.Time) []model.Budget {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reporter.ActiveBudgets(asOf)
}

// ─── Interchange ───

func (a *App) ExportCSV() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return export.CSV(a.store)
}

func (a *App) ExportJSON() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return export.JSON(a.store)
}

// ImportJSON overwrites all collections from a backup document,
// rebuilds balances, and runs a generation pass so imported templates
// are caught up immediately.
func (a *App) ImportJSON(data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := export.ImportJSON(a.store, data); err != nil {
		return err
	}
	res := a.sched.RunPass(a.clock.Now())
	for _, f := range res.Failures {
		a.log.Warn().Str("template", f.TemplateID).Err(f.Err).Msg("post-import generation failure")
	}
	return nil
}
