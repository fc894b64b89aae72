package docbuild

import (
	"fmt"
	"strings"
	"time"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/table"
)

// Labels holds the fixed text used when laying out documents.
type Labels struct {
	// Placeholder replaces empty or missing cell values
	Placeholder string
	// TitlePrefix is prepended to the item title of a single document
	TitlePrefix string
	// ConsolidatedTitle is the document title for consolidated output
	ConsolidatedTitle string
	// ConsolidatedHeading is the TITLE paragraph of consolidated output
	ConsolidatedHeading string
	// GeneratedOn precedes the generation date
	GeneratedOn string
	// Total precedes the item count in consolidated output
	Total string
	// UntitledItem names an item without identifier, followed by its position
	UntitledItem string
	// UntitledDocument names a single document without identifier
	UntitledDocument string
	// DateFormat is a Go reference layout for the generation date
	DateFormat string
	// Separator is repeated SeparatorWidth times between consolidated items
	Separator      string
	SeparatorWidth int
}

// DefaultLabels returns the built-in English labels.
func DefaultLabels() Labels {
	return Labels{
		Placeholder:         "(not provided)",
		TitlePrefix:         "Briefing - ",
		ConsolidatedTitle:   "Briefings - Multiple Items",
		ConsolidatedHeading: "Generated Briefings",
		GeneratedOn:         "Generated on:",
		Total:               "Total items:",
		UntitledItem:        "Item",
		UntitledDocument:    "Document",
		DateFormat:          "02/01/2006",
		Separator:           "=",
		SeparatorWidth:      50,
	}
}

func (l Labels) date(now time.Time) string {
	layout := l.DateFormat
	if layout == "" {
		layout = "02/01/2006"
	}
	return now.Format(layout)
}

func (l Labels) separator() string {
	return "\n" + strings.Repeat(l.Separator, max(l.SeparatorWidth, 0)) + "\n\n"
}

// ItemTitle returns the cleaned identifier of row, or fallback when the
// identifier carries no value.
func ItemTitle(row table.Row, labels Labels, fallback string) string {
	title := table.CleanValue(row.Identifier(), labels.Placeholder)
	if title == labels.Placeholder {
		return fallback
	}
	return title
}

// SingleTitle returns the document title for a one-row document.
func SingleTitle(row table.Row, labels Labels) string {
	return labels.TitlePrefix + ItemTitle(row, labels, labels.UntitledDocument)
}

// SingleBlocks lays out one row as its own document.
func SingleBlocks(row table.Row, labels Labels, now time.Time) []Block {
	title := ItemTitle(row, labels, labels.UntitledDocument)

	blocks := []Block{
		{Text: title + "\n", Style: StyleTitle},
		{Text: fmt.Sprintf("%s %s\n\n", labels.GeneratedOn, labels.date(now))},
	}
	return append(blocks, fieldBlocks(row, labels)...)
}

// ConsolidatedBlocks lays out every row in a single document, separated by
// a rule line.
func ConsolidatedBlocks(rows []table.Row, labels Labels, now time.Time) []Block {
	blocks := []Block{
		{Text: labels.ConsolidatedHeading + "\n", Style: StyleTitle},
		{Text: fmt.Sprintf("%s %s\n%s %d\n\n", labels.GeneratedOn, labels.date(now), labels.Total, len(rows))},
	}

	for i, row := range rows {
		title := ItemTitle(row, labels, fmt.Sprintf("%s %d", labels.UntitledItem, i+1))
		blocks = append(blocks, Block{Text: title + "\n", Style: StyleHeading1})
		blocks = append(blocks, fieldBlocks(row, labels)...)

		if i < len(rows)-1 {
			blocks = append(blocks, Block{Text: labels.separator()})
		}
	}
	return blocks
}

func fieldBlocks(row table.Row, labels Labels) []Block {
	fields := row.Fields()
	blocks := make([]Block, 0, len(fields)*2)
	for _, f := range fields {
		blocks = append(blocks,
			Block{Text: f.Name + "\n", Style: StyleHeading2},
			Block{Text: table.CleanValue(f.Value, labels.Placeholder) + "\n\n"},
		)
	}
	return blocks
}
