package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/ui"
)

var previewSource sourceFlags
var previewRows int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the loaded rows without generating documents",
	Long:  `Load a spreadsheet or CSV file and print its rows, shape and identifier column.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lazy := &lazyServices{ctx: cmd.Context(), prompt: cmd.ErrOrStderr()}

		t, err := loadTable(cmd.Context(), previewSource, appConfig.SheetIndex, lazy.sheetReader)
		if err != nil {
			return err
		}

		limit := previewRows
		if limit == 0 {
			limit = appConfig.Preview.MaxRows
		}

		w := cmd.OutOrStdout()
		ui.FormatLoaded(w, t)
		ui.FormatPreview(w, t, limit)
		ui.FormatItems(w, t.ItemNames())
		return nil
	},
}

func init() {
	previewSource.register(previewCmd)
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 0, "Maximum rows to show (default from config, negative = all)")
	rootCmd.AddCommand(previewCmd)
}
