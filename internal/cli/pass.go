package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(passCmd)
}

var passCmd = &cobra.Command{
	Use:   "pass",
	Short: "Run a generation pass now",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		res := app.Refresh()
		fmt.Printf("caught up %d, looked ahead %d\n", res.CaughtUp, res.LookedAhead)
		for _, f := range res.Failures {
			fmt.Printf("template %s failed: %v\n", f.TemplateID, f.Err)
		}
		return nil
	},
}
