package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/generate"
	datatable "github.com/rafaeltorresng/Sheets-to-Docs/internal/table"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// warnStyle for warnings
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// linkStyle for document URLs
	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Underline(true)

	// headerBoxStyle for the run header
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)

	// boxStyle for the results summary
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	headerCellStyle = cellStyle.
			Bold(true).
			Foreground(lipgloss.Color("33"))
)

// maxCellWidth truncates long cell values in the preview table.
const maxCellWidth = 40

// Source describes where the table was loaded from.
type Source struct {
	Kind string // "sheet" or "csv"
	Ref  string
}

// FormatHeader renders the run header with source and mode.
func FormatHeader(w io.Writer, src Source, mode generate.Mode, selected int) {
	content := fmt.Sprintf("%s %s  %s %s\n%s %s\n%s %d",
		dimStyle.Render("Source:"), titleStyle.Render(src.Kind),
		dimStyle.Render("Mode:"), titleStyle.Render(string(mode)),
		dimStyle.Render("Input:"), src.Ref,
		dimStyle.Render("Items:"), selected,
	)
	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// FormatLoaded renders the loaded-data confirmation line.
func FormatLoaded(w io.Writer, t *datatable.Table) {
	msg := fmt.Sprintf("✓ Data loaded: %d rows, %d columns", t.NumRows(), t.NumColumns())
	fmt.Fprintln(w, successStyle.Render(msg))
}

// FormatPreview renders up to maxRows rows of t as a table, followed by the
// shape and identifier column notes.
func FormatPreview(w io.Writer, t *datatable.Table, maxRows int) {
	rows := t.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(t.Columns...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		tbl.Row(truncateCells(r)...)
	}

	fmt.Fprintln(w, tbl.Render())
	if len(rows) < len(t.Rows) {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("... %d more rows", len(t.Rows)-len(rows))))
	}
	fmt.Fprintf(w, "%s %d rows × %d columns\n", dimStyle.Render("Shape:"), t.NumRows(), t.NumColumns())
	fmt.Fprintf(w, "%s %q (used as the document title)\n", dimStyle.Render("Identifier column:"), t.IdentifierColumn())
}

// FormatItems lists the identifiers accepted by --item.
func FormatItems(w io.Writer, names []string) {
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render("Items (--item):"), strings.Join(truncateCells(names), ", "))
}

func truncateCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "\n", " ")
		if r := []rune(c); len(r) > maxCellWidth {
			c = string(r[:maxCellWidth-1]) + "…"
		}
		out[i] = c
	}
	return out
}

// FormatProgress renders a single progress line.
func FormatProgress(w io.Writer, done, total int) {
	fmt.Fprintf(w, "%s %s\n", dimStyle.Render(fmt.Sprintf("[%d/%d]", done, total)), progressBar(done, total, 30))
}

func progressBar(done, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := done * width / total
	return successStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// FormatResults renders the generated document links.
func FormatResults(w io.Writer, results []generate.Result) {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%d document(s) generated", len(results))))
	for _, r := range results {
		name := r.Name
		if name == "" {
			name = dimStyle.Render("(untitled)")
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s %s", name+":", linkStyle.Render(r.URL)))
	}
	fmt.Fprintln(w, boxStyle.Render(sb.String()))
}

// FormatWarning renders a warning line.
func FormatWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warnStyle.Render("! "+msg))
}

// FormatError renders an error line.
func FormatError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("✗ "+err.Error()))
}
