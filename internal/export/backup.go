package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pocketledger/pocketledger/internal/ledger"
	"github.com/pocketledger/pocketledger/internal/model"
)

// AppVersion is stamped into backups.
const AppVersion = "1.1"

// Backup is the full-export document. The recurringTransactions key
// name is part of the interchange format and predates the template
// terminology; it carries the templates.
type Backup struct {
	Accounts     []model.Account           `json:"accounts"`
	Transactions []model.Transaction       `json:"transactions"`
	Categories   []model.Category          `json:"categories"`
	Budgets      []model.Budget            `json:"budgets"`
	Goals        []model.Goal              `json:"goals"`
	Recurring    []model.RecurringTemplate `json:"recurringTransactions"`
	Theme        model.Theme               `json:"theme"`
	Currency     string                    `json:"currency"`
	Language     string                    `json:"language"`
	BackupDate   time.Time                 `json:"backupDate"`
	AppVersion   string                    `json:"appVersion"`
}

// JSON serializes the entire store as one pretty-printed backup
// document.
func JSON(store *ledger.Store) (string, error) {
	snap := store.Snapshot()
	b := Backup{
		Accounts:     snap.Accounts,
		Transactions: snap.Transactions,
		Categories:   snap.Categories,
		Budgets:      snap.Budgets,
		Goals:        snap.Goals,
		Recurring:    snap.Templates,
		Theme:        snap.Preferences.Theme,
		Currency:     snap.Preferences.Currency,
		Language:     snap.Preferences.Language,
		BackupDate:   store.Now(),
		AppVersion:   AppVersion,
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}
	return string(data), nil
}

// ImportJSON replaces the entire store state with the backup document.
// No merge: every collection is overwritten, balances are rebuilt from
// the imported ledger.
func ImportJSON(store *ledger.Store, data []byte) error {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("parse backup: %w", err)
	}
	prefs := model.Preferences{Theme: b.Theme, Currency: b.Currency, Language: b.Language}
	if prefs.Theme == "" {
		prefs.Theme = model.ThemeSystem
	}
	if prefs.Currency == "" {
		prefs.Currency = model.DefaultPreferences().Currency
	}
	if prefs.Language == "" {
		prefs.Language = model.DefaultPreferences().Language
	}
	return store.Restore(ledger.Snapshot{
		Accounts:     b.Accounts,
		Transactions: b.Transactions,
		Categories:   b.Categories,
		Budgets:      b.Budgets,
		Goals:        b.Goals,
		Templates:    b.Recurring,
		Preferences:  prefs,
	})
}
