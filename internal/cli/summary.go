package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	overStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show balances and budget progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		var b strings.Builder
		b.WriteString(titleStyle.Render("Accounts") + "\n")
		for _, a := range app.Accounts() {
			line := fmt.Sprintf("  %-20s %12s %s", a.Name, a.Balance.StringFixed(2), a.Currency)
			if a.Balance.IsNegative() {
				line = negativeStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		total := app.TotalBalance()
		totalLine := fmt.Sprintf("  %-20s %12s", "net worth", total.StringFixed(2))
		if total.IsNegative() {
			totalLine = negativeStyle.Render(totalLine)
		} else {
			totalLine = positiveStyle.Render(totalLine)
		}
		b.WriteString(labelStyle.Render("  ────────────────────────────────") + "\n")
		b.WriteString(totalLine + "\n")

		now := app.Now()
		budgets := app.ActiveBudgets(now)
		if len(budgets) > 0 {
			b.WriteString("\n" + titleStyle.Render("Budgets") + "\n")
			for _, bd := range budgets {
				p := app.GetBudgetProgress(bd, now)
				pct := fmt.Sprintf("%3.0f%%", p.Percentage*100)
				if p.Percentage > 1 {
					pct = overStyle.Render(pct)
				}
				b.WriteString(fmt.Sprintf("  %-20s %10s / %-10s %s\n",
					bd.Name, p.Spent.StringFixed(2), bd.Amount.StringFixed(2), pct))
			}
		}

		upcoming := app.Upcoming()
		if len(upcoming) > 0 {
			b.WriteString("\n" + titleStyle.Render("Upcoming") + "\n")
			limit := len(upcoming)
			if limit > 5 {
				limit = 5
			}
			for _, tx := range upcoming[:limit] {
				b.WriteString(labelStyle.Render(fmt.Sprintf("  %s  %-8s %10s\n",
					tx.Date.Format("2006-01-02"), tx.Type, tx.Amount.StringFixed(2))))
			}
		}

		fmt.Print(b.String())
		return nil
	},
}
