// Package export renders the ledger to interchange formats: a
// transactions CSV and a full JSON backup with total-overwrite import.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/pocketledger/pocketledger/internal/ledger"
)

// CSV renders all transactions, newest first. Commas inside notes are
// replaced with semicolons so downstream spreadsheet imports that
// ignore quoting still line up.
func CSV(store *ledger.Store) (string, error) {
	txs := store.Transactions()
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Date", "Type", "Category", "Amount", "Account", "Notes"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		categoryName := ""
		if c, err := store.CategoryByID(tx.CategoryID); err == nil {
			categoryName = c.Name
		}
		accountName := ""
		if a, err := store.AccountByID(tx.AccountID); err == nil {
			accountName = a.Name
		}
		row := []string{
			tx.Date.UTC().Format("2006-01-02"),
			string(tx.Type),
			categoryName,
			tx.Amount.String(),
			accountName,
			strings.ReplaceAll(tx.Notes, ",", ";"),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}
