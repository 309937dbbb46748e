package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger"
	"github.com/pocketledger/pocketledger/internal/model"
)

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txAddCmd)
	txCmd.AddCommand(txListCmd)
	txCmd.AddCommand(txDeleteCmd)

	txAddCmd.Flags().String("amount", "", "Amount (positive decimal)")
	txAddCmd.Flags().String("type", "expense", "income | expense | transfer")
	txAddCmd.Flags().String("category", "", "Category name (fuzzy matched)")
	txAddCmd.Flags().String("account", "", "Source account name")
	txAddCmd.Flags().String("to", "", "Destination account name (transfers)")
	txAddCmd.Flags().String("date", "", "Date YYYY-MM-DD (default today)")
	txAddCmd.Flags().String("notes", "", "Free-text note")
}

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Manage transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	RunE:  runTxAdd,
}

func runTxAdd(cmd *cobra.Command, args []string) error {
	app, closeFn, err := openApp()
	if err != nil {
		return err
	}
	defer closeFn()

	amountStr, _ := cmd.Flags().GetString("amount")
	typeStr, _ := cmd.Flags().GetString("type")
	categoryStr, _ := cmd.Flags().GetString("category")
	accountStr, _ := cmd.Flags().GetString("account")
	toStr, _ := cmd.Flags().GetString("to")
	dateStr, _ := cmd.Flags().GetString("date")
	notes, _ := cmd.Flags().GetString("notes")

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return fmt.Errorf("amount %q: %w", amountStr, err)
	}

	date := app.Now()
	if dateStr != "" {
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("date %q: %w", dateStr, err)
		}
	}

	account, err := accountByName(app, accountStr)
	if err != nil {
		return err
	}
	category, err := resolveCategory(app, categoryStr)
	if err != nil {
		return err
	}

	tx := model.Transaction{
		Amount:     amount,
		Type:       model.TransactionType(typeStr),
		CategoryID: category.ID,
		AccountID:  account.ID,
		Date:       date,
		Notes:      notes,
	}
	if toStr != "" {
		to, err := accountByName(app, toStr)
		if err != nil {
			return err
		}
		tx.ToAccountID = to.ID
	}

	added, err := app.AddTransaction(tx)
	if err != nil {
		return err
	}
	fmt.Printf("recorded %s %s (%s)\n", added.Type, added.Amount.StringFixed(2), added.ID)
	return nil
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		txs := app.Transactions()
		for i := len(txs) - 1; i >= 0; i-- {
			tx := txs[i]
			marker := " "
			if tx.IsRecurring {
				marker = "R"
			}
			fmt.Printf("%s %s %-8s %10s  %s\n",
				marker, tx.Date.Format("2006-01-02"), tx.Type, tx.Amount.StringFixed(2), tx.ID)
		}
		return nil
	},
}

var txDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()
		return app.DeleteTransaction(args[0])
	},
}

func accountByName(app *pocketledger.App, name string) (model.Account, error) {
	if name == "" {
		return model.Account{}, fmt.Errorf("account name required")
	}
	for _, a := range app.Accounts() {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return model.Account{}, fmt.Errorf("no account named %q", name)
}

// resolveCategory matches the given name against known categories,
// tolerating typos within a small edit distance.
func resolveCategory(app *pocketledger.App, name string) (model.Category, error) {
	if name == "" {
		return model.Category{}, fmt.Errorf("category name required")
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	best := model.Category{}
	bestDist := -1
	for _, c := range app.Categories() {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(c.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > 2 {
		return model.Category{}, fmt.Errorf("no category matching %q", name)
	}
	return best, nil
}
