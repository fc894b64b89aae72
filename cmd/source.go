package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/gdocs"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/generate"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/table"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/ui"
)

// sourceFlags selects the tabular input. A sheet URL wins over a CSV path.
type sourceFlags struct {
	SheetURL   string
	CSVPath    string
	Range      string
	SheetIndex int
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.SheetURL, "sheet", "", "Google Sheets URL (https://docs.google.com/spreadsheets/d/...)")
	cmd.Flags().StringVar(&s.CSVPath, "csv", "", "Path to a CSV file")
	cmd.Flags().StringVar(&s.Range, "range", "", "A1 range to read from the sheet (default: the whole grid)")
	cmd.Flags().IntVar(&s.SheetIndex, "sheet-index", -1, "Sheet (tab) position to read when --range is not set (default from config)")
}

func (s *sourceFlags) source() (ui.Source, error) {
	switch {
	case s.SheetURL != "":
		return ui.Source{Kind: "sheet", Ref: s.SheetURL}, nil
	case s.CSVPath != "":
		return ui.Source{Kind: "csv", Ref: s.CSVPath}, nil
	default:
		return ui.Source{}, errors.New("provide a Google Sheets URL with --sheet or a CSV file with --csv")
	}
}

// sheetReader reads a spreadsheet by ID.
type sheetReader interface {
	Read(ctx context.Context, spreadsheetID string, opts gdocs.SheetOptions) (*table.Table, error)
}

// loadTable reads the selected source. newReader is only called for sheet
// input.
func loadTable(ctx context.Context, s sourceFlags, defaultSheetIndex int, newReader func() (sheetReader, error)) (*table.Table, error) {
	src, err := s.source()
	if err != nil {
		return nil, err
	}

	if src.Kind == "csv" {
		t, err := table.LoadCSVFile(s.CSVPath)
		if errors.Is(err, table.ErrEmpty) {
			return nil, errors.New("the CSV file is empty")
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}

	id, ok := table.ExtractSheetID(s.SheetURL)
	if !ok {
		return nil, fmt.Errorf("invalid Google Sheets URL: %s", s.SheetURL)
	}

	reader, err := newReader()
	if err != nil {
		return nil, err
	}

	idx := s.SheetIndex
	if idx < 0 {
		idx = defaultSheetIndex
	}
	logger.Debug("reading spreadsheet", "id", id, "range", s.Range, "sheet_index", idx)

	t, err := reader.Read(ctx, id, gdocs.SheetOptions{Range: s.Range, SheetIndex: idx})
	if errors.Is(err, table.ErrEmpty) {
		return nil, errors.New("the spreadsheet is empty or could not be read")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read the spreadsheet: %w", err)
	}
	return t, nil
}

// connect authenticates and builds the Google services.
func connect(ctx context.Context, prompt io.Writer) (*gdocs.Services, error) {
	opt, err := gdocs.Authenticate(ctx, gdocs.AuthConfig{
		CredentialsFile: appConfig.CredentialsFile,
		TokenFile:       appConfig.TokenFile,
		RedirectAddr:    appConfig.RedirectAddr,
		Prompt:          prompt,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	return gdocs.NewServices(ctx, opt)
}

// lazyServices connects on first use and reuses the services afterwards.
type lazyServices struct {
	ctx    context.Context
	prompt io.Writer
	s      *gdocs.Services
}

func (l *lazyServices) get() (*gdocs.Services, error) {
	if l.s != nil {
		return l.s, nil
	}
	s, err := connect(l.ctx, l.prompt)
	if err != nil {
		return nil, err
	}
	l.s = s
	return s, nil
}

func (l *lazyServices) docs() (generate.DocumentService, error) {
	s, err := l.get()
	if err != nil {
		return nil, err
	}
	return gdocs.NewDocsClient(s, logger), nil
}

func (l *lazyServices) sheetReader() (sheetReader, error) {
	s, err := l.get()
	if err != nil {
		return nil, err
	}
	return gdocs.NewSheetReader(s), nil
}
