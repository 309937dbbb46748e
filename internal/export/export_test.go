package export

import (
	"encoding/json"
	"strings"
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

func seeded(t *testing.T, now time.Time) (*ledger.Store, model.Account, model.Category) {
	t.Helper()
	store, err := ledger.NewStore(storage.NewMemory(), clock.Fixed{T: now})
	require.NoError(t, err)
	a, err := store.AddAccount(model.Account{Name: "Everyday", Type: model.Checking})
	require.NoError(t, err)
	cats := store.Categories()
	require.NotEmpty(t, cats)
	return store, a, cats[0]
}

func TestCSVFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, a, cat := seeded(t, now)

	_, err := store.AddTransaction(model.Transaction{
		Amount: dec("12.50"), Type: model.Expense,
		AccountID: a.ID, CategoryID: cat.ID, Date: now.AddDate(0, 0, -1),
		Notes: "coffee, beans, grinder",
	})
	require.NoError(t, err)
	_, err = store.AddTransaction(model.Transaction{
		Amount: dec("900"), Type: model.Income,
		AccountID: a.ID, CategoryID: cat.ID, Date: now,
	})
	require.NoError(t, err)

	out, err := CSV(store)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Date,Type,Category,Amount,Account,Notes", lines[0])

	// Newest first.
	require.True(t, strings.HasPrefix(lines[1], "2026-04-10,income,"))
	require.True(t, strings.HasPrefix(lines[2], "2026-04-09,expense,"))

	// Commas inside notes become semicolons, so the row needs no
	// quoting.
	require.Contains(t, lines[2], "coffee; beans; grinder")
	require.NotContains(t, lines[2], `"`)
	require.Contains(t, lines[2], cat.Name)
	require.Contains(t, lines[2], "Everyday")
}

func TestCSVTolerateDeletedReferences(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, a, cat := seeded(t, now)

	_, err := store.AddTransaction(model.Transaction{
		Amount: dec("30"), Type: model.Expense,
		AccountID: a.ID, CategoryID: cat.ID, Date: now,
	})
	require.NoError(t, err)
	require.NoError(t, store.DeleteAccount(a.ID))

	out, err := CSV(store)
	require.NoError(t, err)
	require.Contains(t, out, "2026-04-10,expense,")
}

func TestBackupDocumentShape(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, a, cat := seeded(t, now)
	_, err := store.AddTransaction(model.Transaction{
		Amount: dec("40"), Type: model.Expense,
		AccountID: a.ID, CategoryID: cat.ID, Date: now,
	})
	require.NoError(t, err)
	tmpl, err := store.AddTemplate(model.RecurringTemplate{
		Amount: dec("9.99"), Type: model.Expense,
		AccountID: a.ID, CategoryID: cat.ID,
		Rule:           model.Rule{Frequency: model.Monthly},
		NextOccurrence: now.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	out, err := JSON(store)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	for _, key := range []string{
		"accounts", "transactions", "categories", "budgets", "goals",
		"recurringTransactions", "theme", "currency", "language",
		"backupDate", "appVersion",
	} {
		require.Contains(t, doc, key)
	}

	var version string
	require.NoError(t, json.Unmarshal(doc["appVersion"], &version))
	require.Equal(t, AppVersion, version)

	var recurring []model.RecurringTemplate
	require.NoError(t, json.Unmarshal(doc["recurringTransactions"], &recurring))
	require.Len(t, recurring, 1)
	require.Equal(t, tmpl.GroupID, recurring[0].GroupID)
}

func TestBackupRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, a, cat := seeded(t, now)

	_, err := store.AddTransaction(model.Transaction{
		Amount: dec("250"), Type: model.Income,
		AccountID: a.ID, CategoryID: cat.ID, Date: now.AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	_, err = store.AddGoal(model.Goal{Name: "Holiday", TargetAmount: dec("1000")})
	require.NoError(t, err)
	require.NoError(t, store.SetPreferences(model.Preferences{
		Theme: model.ThemeDark, Currency: "USD", Language: "en",
	}))

	out, err := JSON(store)
	require.NoError(t, err)

	// Import into a different store that has its own unrelated state.
	other, otherAcct, otherCat := seeded(t, now)
	_, err = other.AddTransaction(model.Transaction{
		Amount: dec("9999"), Type: model.Expense,
		AccountID: otherAcct.ID, CategoryID: otherCat.ID, Date: now,
	})
	require.NoError(t, err)

	require.NoError(t, ImportJSON(other, []byte(out)))

	// Total overwrite: the pre-import expense is gone, the imported
	// income is present, balances are rebuilt from the imported ledger.
	txs := other.Transactions()
	require.Len(t, txs, 1)
	require.Equal(t, model.Income, txs[0].Type)

	bal, err := other.GetAccountBalance(a.ID)
	require.NoError(t, err)
	require.True(t, bal.Equal(dec("250")), "got %s", bal)

	require.Equal(t, model.Preferences{
		Theme: model.ThemeDark, Currency: "USD", Language: "en",
	}, other.Preferences())
}

func TestImportDefaultsMissingPreferences(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, _, _ := seeded(t, now)

	require.NoError(t, ImportJSON(store, []byte(`{"transactions":[],"accounts":[]}`)))
	require.Equal(t, model.DefaultPreferences(), store.Preferences())
	require.NotEmpty(t, store.Categories(), "empty import reseeds default categories")
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	store, a, cat := seeded(t, now)
	_, err := store.AddTransaction(model.Transaction{
		Amount: dec("10"), Type: model.Expense,
		AccountID: a.ID, CategoryID: cat.ID, Date: now,
	})
	require.NoError(t, err)

	require.Error(t, ImportJSON(store, []byte("{not json")))
	require.Len(t, store.Transactions(), 1, "failed import leaves state untouched")
}
