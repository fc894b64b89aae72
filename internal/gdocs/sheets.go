package gdocs

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/table"
)

const (
	defaultRowCount    = 1000
	defaultColumnCount = 26
)

// SheetOptions selects what part of a spreadsheet to read.
type SheetOptions struct {
	// Range in A1 notation; empty reads the whole grid of SheetIndex
	Range      string
	SheetIndex int
}

// SheetReader reads spreadsheet values into tables.
type SheetReader struct {
	sheets *sheets.Service
}

// NewSheetReader returns a reader backed by s.
func NewSheetReader(s *Services) *SheetReader {
	return &SheetReader{sheets: s.Sheets}
}

// Read fetches the unformatted values of a spreadsheet.
func (r *SheetReader) Read(ctx context.Context, spreadsheetID string, opts SheetOptions) (*table.Table, error) {
	rng := opts.Range
	if rng == "" {
		var err error
		rng, err = r.gridRange(ctx, spreadsheetID, opts.SheetIndex)
		if err != nil {
			return nil, err
		}
	}

	resp, err := r.sheets.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rng, err)
	}

	return table.FromValues(resp.Values)
}

func (r *SheetReader) gridRange(ctx context.Context, spreadsheetID string, index int) (string, error) {
	meta, err := r.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.gridProperties", "sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}
	if index < 0 || index >= len(meta.Sheets) {
		return "", fmt.Errorf("sheet index %d out of range (spreadsheet has %d sheets)", index, len(meta.Sheets))
	}

	rows, cols := int64(defaultRowCount), int64(defaultColumnCount)
	props := meta.Sheets[index].Properties
	if props != nil && props.GridProperties != nil {
		if props.GridProperties.RowCount > 0 {
			rows = props.GridProperties.RowCount
		}
		if props.GridProperties.ColumnCount > 0 {
			cols = props.GridProperties.ColumnCount
		}
	}

	rng := table.FullRange(int(rows), int(cols))
	if props != nil && props.Title != "" {
		rng = quoteSheetTitle(props.Title) + "!" + rng
	}
	return rng, nil
}

func quoteSheetTitle(title string) string {
	quoted := "'"
	for _, r := range title {
		if r == '\'' {
			quoted += "''"
			continue
		}
		quoted += string(r)
	}
	return quoted + "'"
}
