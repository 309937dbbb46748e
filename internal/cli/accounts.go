package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/model"
)

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsAddCmd)

	accountsAddCmd.Flags().String("type", "checking", "checking | card | cash | savings")
	accountsAddCmd.Flags().String("balance", "0", "Opening balance")

	rootCmd.AddCommand(categoriesCmd)
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage accounts",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		for _, a := range app.Accounts() {
			bal, err := app.GetAccountBalance(a.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%-20s %-8s %12s  %s\n", a.Name, a.Type, bal.StringFixed(2), a.ID)
		}
		return nil
	},
}

var accountsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		typeStr, _ := cmd.Flags().GetString("type")
		balanceStr, _ := cmd.Flags().GetString("balance")
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return fmt.Errorf("balance %q: %w", balanceStr, err)
		}

		acct, err := app.AddAccount(model.Account{
			Name:    args[0],
			Type:    model.AccountType(typeStr),
			Balance: balance,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", acct.Name, acct.ID)
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		for _, c := range app.Categories() {
			kind := "custom"
			if c.IsDefault {
				kind = "default"
			}
			fmt.Printf("%-16s %-8s %s\n", c.Name, kind, c.ID)
		}
		return nil
	},
}
