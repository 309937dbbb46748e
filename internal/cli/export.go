package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().String("format", "csv", "csv | json")
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data as CSV or a full JSON backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		var data string
		switch format {
		case "csv":
			data, err = app.ExportCSV()
		case "json":
			data, err = app.ExportJSON()
		default:
			return fmt.Errorf("unknown format %q", format)
		}
		if err != nil {
			return err
		}
		if output == "" {
			fmt.Print(data)
			return nil
		}
		return os.WriteFile(output, []byte(data), 0o644)
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Restore from a JSON backup, replacing all current data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := app.ImportJSON(data); err != nil {
			return err
		}
		fmt.Println("imported")
		return nil
	},
}
