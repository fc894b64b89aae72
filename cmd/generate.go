package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/config"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/generate"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/table"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/ui"
)

type generateOptions struct {
	Source   sourceFlags
	Items    []string
	All      bool
	Mode     string
	FolderID string
	DryRun   bool
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate documents from the selected rows",
	Long: `Generate Google Docs documents from the selected rows of a spreadsheet or CSV file.

In individual mode every selected row becomes its own document titled after
the row's first column. In consolidated mode all selected rows are written to
a single document separated by rule lines.

With --dry-run the batchUpdate requests are printed as JSON and no document is
created.`,
	Example: `  sheets2docs generate --csv projects.csv --all
  sheets2docs generate --sheet https://docs.google.com/spreadsheets/d/ID/edit --item Alpha --item Beta --mode consolidated
  sheets2docs generate --csv projects.csv --item Alpha --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if _, err := genOpts.Source.source(); err != nil {
			return err
		}
		lazy := &lazyServices{ctx: ctx, prompt: cmd.ErrOrStderr()}
		return runGenerate(ctx, cmd.OutOrStdout(), appConfig, genOpts, lazy.sheetReader, lazy.docs)
	},
}

func init() {
	genOpts.Source.register(generateCmd)
	generateCmd.Flags().StringArrayVar(&genOpts.Items, "item", nil, "Identifier (first column value) of a row to generate; repeatable")
	generateCmd.Flags().BoolVar(&genOpts.All, "all", false, "Generate every row")
	generateCmd.Flags().StringVar(&genOpts.Mode, "mode", string(generate.ModeIndividual), "Generation mode (individual, consolidated)")
	generateCmd.Flags().StringVar(&genOpts.FolderID, "folder", "", "Drive folder ID to place generated documents in (default from config)")
	generateCmd.Flags().BoolVar(&genOpts.DryRun, "dry-run", false, "Print the batch requests as JSON instead of calling the Docs API")

	rootCmd.AddCommand(generateCmd)
}

// selectRows applies --all or --item to t.
func selectRows(t *table.Table, items []string, all bool) ([]table.Row, error) {
	if all {
		return t.All(), nil
	}
	if len(items) == 0 {
		return nil, generate.ErrNoSelection
	}
	return t.Select(items)
}

func newGenerator(cfg *config.Config, docs generate.DocumentService, folderID string) *generate.Generator {
	g := generate.New(docs, logger)
	g.Labels = cfg.DocLabels()
	g.IndividualBatch = generate.BatchPolicy{Size: cfg.Batch.Individual.Size, Delay: cfg.Batch.Individual.Delay}
	g.ConsolidatedBatch = generate.BatchPolicy{Size: cfg.Batch.Consolidated.Size, Delay: cfg.Batch.Consolidated.Delay}
	g.FolderID = folderID
	if g.FolderID == "" {
		g.FolderID = cfg.Drive.FolderID
	}
	return g
}

// runGenerate loads the input, selects rows and writes or plans the
// documents. newDocs is only called once the selection is valid and the run
// is not a dry run.
func runGenerate(ctx context.Context, w io.Writer, cfg *config.Config, opts generateOptions, newReader func() (sheetReader, error), newDocs func() (generate.DocumentService, error)) error {
	mode, err := generate.ParseMode(opts.Mode)
	if err != nil {
		return err
	}

	src, err := opts.Source.source()
	if err != nil {
		return err
	}

	t, err := loadTable(ctx, opts.Source, cfg.SheetIndex, newReader)
	if err != nil {
		return err
	}

	rows, err := selectRows(t, opts.Items, opts.All)
	if err != nil {
		return err
	}

	if opts.DryRun {
		plans, err := newGenerator(cfg, nil, opts.FolderID).Plan(mode, rows)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plans)
	}

	docs, err := newDocs()
	if err != nil {
		return err
	}
	g := newGenerator(cfg, docs, opts.FolderID)

	ui.FormatHeader(w, src, mode, len(rows))
	ui.FormatLoaded(w, t)
	g.Progress = func(done, total int) {
		ui.FormatProgress(w, done, total)
	}

	results, err := g.Run(ctx, mode, rows)
	if len(results) > 0 {
		ui.FormatResults(w, results)
	}
	if err != nil {
		ui.FormatError(w, err)
		ui.FormatWarning(w, "Check your Google permissions or try again.")
		return err
	}
	return nil
}
