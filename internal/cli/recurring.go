package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/model"
)

func init() {
	rootCmd.AddCommand(recurringCmd)
	recurringCmd.AddCommand(recurringAddCmd)
	recurringCmd.AddCommand(recurringListCmd)
	recurringCmd.AddCommand(recurringToggleCmd)
	recurringCmd.AddCommand(recurringDisableCmd)

	recurringAddCmd.Flags().String("amount", "", "Amount (positive decimal)")
	recurringAddCmd.Flags().String("type", "expense", "income | expense | transfer")
	recurringAddCmd.Flags().String("category", "", "Category name (fuzzy matched)")
	recurringAddCmd.Flags().String("account", "", "Source account name")
	recurringAddCmd.Flags().String("to", "", "Destination account name (transfers)")
	recurringAddCmd.Flags().String("date", "", "First occurrence YYYY-MM-DD (default today)")
	recurringAddCmd.Flags().String("notes", "", "Free-text note")
	recurringAddCmd.Flags().String("every", "monthly", "daily | weekly | monthly | yearly")
	recurringAddCmd.Flags().Int("interval", 1, "Recurrence interval (every N units)")
	recurringAddCmd.Flags().String("until", "", "End date YYYY-MM-DD")

	recurringDisableCmd.Flags().String("after", "", "Cutoff date YYYY-MM-DD (default today)")
}

var recurringAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Start a recurring series",
	RunE:  runRecurringAdd,
}

func runRecurringAdd(cmd *cobra.Command, args []string) error {
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
	every, _ := cmd.Flags().GetString("every")
	interval, _ := cmd.Flags().GetInt("interval")
	until, _ := cmd.Flags().GetString("until")

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

	rule := model.Rule{Frequency: model.Frequency(every), Interval: interval}
	if until != "" {
		end, err := time.Parse("2006-01-02", until)
		if err != nil {
			return fmt.Errorf("until %q: %w", until, err)
		}
		rule.EndDate = &end
	}
	_, tmpl, err := app.AddRecurringTransaction(tx, rule)
	if err != nil {
		return err
	}
	res := app.Refresh()
	for _, f := range res.Failures {
		fmt.Printf("template %s failed: %v\n", f.TemplateID, f.Err)
	}
	fmt.Printf("started %s series %s, next on %s\n", tmpl.Rule.Frequency, tmpl.GroupID,
		tmpl.NextOccurrence.Format("2006-01-02"))
	return nil
}

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Manage recurring series",
}

var recurringListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recurring templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		for _, t := range app.RecurringTemplates() {
			state := "active"
			if !t.IsActive {
				state = "paused"
			}
			end := "open-ended"
			if t.Rule.EndDate != nil {
				end = "until " + t.Rule.EndDate.Format("2006-01-02")
			}
			fmt.Printf("%-7s %-8s every %d %s, next %s, %s  group=%s\n",
				state, t.Type, t.Rule.Normalized().Interval, t.Rule.Frequency,
				t.NextOccurrence.Format("2006-01-02"), end, t.GroupID)
		}
		return nil
	},
}

var recurringToggleCmd = &cobra.Command{
	Use:   "toggle TEMPLATE_ID",
	Short: "Pause or resume a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		t, err := app.ToggleRecurringTemplate(args[0])
		if err != nil {
			return err
		}
		if t.IsActive {
			fmt.Println("resumed")
		} else {
			fmt.Println("paused")
		}
		return nil
	},
}

var recurringDisableCmd = &cobra.Command{
	Use:   "disable GROUP_ID",
	Short: "Stop a series and remove its future occurrences",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		cutoff := app.Now()
		if after, _ := cmd.Flags().GetString("after"); after != "" {
			cutoff, err = time.Parse("2006-01-02", after)
			if err != nil {
				return fmt.Errorf("after %q: %w", after, err)
			}
		}
		removed, err := app.DisableSeries(args[0], cutoff)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d future occurrence(s)\n", removed)
		return nil
	},
}
