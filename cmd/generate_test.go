package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"google.golang.org/api/docs/v1"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/config"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/gdocs"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/generate"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/table"
)

const projectsCSV = `Project,Goal,Owner
Alpha,Grow revenue,Ana
Beta,,Bo
Gamma,Ship v2,Cy
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func setupLogger(t *testing.T) {
	t.Helper()
	prev := logger
	logger = log.NewWithOptions(io.Discard, log.Options{})
	t.Cleanup(func() { logger = prev })
}

func noReader() (sheetReader, error) {
	return nil, errors.New("sheet reader should not be used")
}

func noDocs() (generate.DocumentService, error) {
	return nil, errors.New("document service should not be used")
}

func docsFrom(svc generate.DocumentService) func() (generate.DocumentService, error) {
	return func() (generate.DocumentService, error) { return svc, nil }
}

type fakeSheetReader struct {
	id   string
	opts gdocs.SheetOptions
	tbl  *table.Table
	err  error
}

func (f *fakeSheetReader) Read(_ context.Context, id string, opts gdocs.SheetOptions) (*table.Table, error) {
	f.id, f.opts = id, opts
	return f.tbl, f.err
}

type recordingDocs struct {
	titles []string
	fail   bool
}

func (r *recordingDocs) Create(_ context.Context, title string) (string, error) {
	if r.fail {
		return "", errors.New("permission denied")
	}
	r.titles = append(r.titles, title)
	return "id-" + title, nil
}

func (r *recordingDocs) BatchUpdate(context.Context, string, []*docs.Request) error { return nil }

func (r *recordingDocs) URL(id string) string { return "https://docs.google.com/document/d/" + id + "/edit" }

func TestRunGenerateDryRun(t *testing.T) {
	setupLogger(t)
	path := writeCSV(t, projectsCSV)

	var buf bytes.Buffer
	opts := generateOptions{
		Source: sourceFlags{CSVPath: path, SheetIndex: -1},
		Items:  []string{"Gamma", "Alpha"},
		Mode:   "individual",
		DryRun: true,
	}
	if err := runGenerate(context.Background(), &buf, config.DefaultConfig(), opts, noReader, noDocs); err != nil {
		t.Fatalf("runGenerate() unexpected error: %v", err)
	}

	var plans []struct {
		Title    string `json:"title"`
		Requests int    `json:"request_count"`
		Batches  [][]map[string]any
	}
	if err := json.Unmarshal(buf.Bytes(), &plans); err != nil {
		t.Fatalf("dry run output is not JSON: %v\n%s", err, buf.String())
	}
	if len(plans) != 2 {
		t.Fatalf("got %d plans, want 2", len(plans))
	}
	if plans[0].Title != "Briefing - Gamma" || plans[1].Title != "Briefing - Alpha" {
		t.Errorf("titles = %q, %q", plans[0].Title, plans[1].Title)
	}
	if plans[0].Requests != 9 {
		t.Errorf("request_count = %d, want 9", plans[0].Requests)
	}
	if !strings.Contains(buf.String(), `"insertText"`) {
		t.Errorf("dry run output missing insertText requests")
	}
}

func TestRunGenerateConsolidatedDryRun(t *testing.T) {
	setupLogger(t)
	path := writeCSV(t, projectsCSV)

	var buf bytes.Buffer
	opts := generateOptions{
		Source: sourceFlags{CSVPath: path},
		All:    true,
		Mode:   "consolidated",
		DryRun: true,
	}
	if err := runGenerate(context.Background(), &buf, config.DefaultConfig(), opts, noReader, noDocs); err != nil {
		t.Fatalf("runGenerate() unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Briefings - Multiple Items") {
		t.Errorf("output missing consolidated title:\n%s", buf.String())
	}
}

func TestRunGenerateWritesDocuments(t *testing.T) {
	setupLogger(t)
	path := writeCSV(t, projectsCSV)
	svc := &recordingDocs{}

	var buf bytes.Buffer
	opts := generateOptions{
		Source: sourceFlags{CSVPath: path},
		All:    true,
		Mode:   "individual",
	}
	if err := runGenerate(context.Background(), &buf, config.DefaultConfig(), opts, noReader, docsFrom(svc)); err != nil {
		t.Fatalf("runGenerate() unexpected error: %v", err)
	}

	if len(svc.titles) != 3 {
		t.Errorf("created %d documents, want 3", len(svc.titles))
	}
	out := buf.String()
	for _, want := range []string{"3 document(s) generated", "Alpha:", "[3/3]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunGenerateReportsFailure(t *testing.T) {
	setupLogger(t)
	path := writeCSV(t, projectsCSV)

	var buf bytes.Buffer
	opts := generateOptions{
		Source: sourceFlags{CSVPath: path},
		Items:  []string{"Alpha"},
		Mode:   "consolidated",
	}
	err := runGenerate(context.Background(), &buf, config.DefaultConfig(), opts, noReader, docsFrom(&recordingDocs{fail: true}))
	if err == nil {
		t.Fatal("runGenerate() expected error, got nil")
	}
	if !strings.Contains(buf.String(), "permission denied") {
		t.Errorf("output missing error:\n%s", buf.String())
	}
}

func TestRunGenerateValidation(t *testing.T) {
	setupLogger(t)
	path := writeCSV(t, projectsCSV)

	tests := []struct {
		name    string
		opts    generateOptions
		wantErr string
	}{
		{"no source", generateOptions{Mode: "individual", All: true}, "--sheet"},
		{"bad mode", generateOptions{Source: sourceFlags{CSVPath: path}, Mode: "both", All: true}, "unknown mode"},
		{"no selection", generateOptions{Source: sourceFlags{CSVPath: path}, Mode: "individual"}, "select at least one item"},
		{"unknown item", generateOptions{Source: sourceFlags{CSVPath: path}, Mode: "individual", Items: []string{"Zeta"}}, "Zeta"},
		{"empty csv", generateOptions{Source: sourceFlags{CSVPath: writeCSV(t, "Project,Goal\n")}, Mode: "individual", All: true}, "empty"},
		{"bad sheet url", generateOptions{Source: sourceFlags{SheetURL: "https://example.com"}, Mode: "individual", All: true}, "invalid Google Sheets URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.DryRun = true
			err := runGenerate(context.Background(), io.Discard, config.DefaultConfig(), tt.opts, noReader, noDocs)
			if err == nil {
				t.Fatal("runGenerate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunGenerateValidatesBeforeConnecting(t *testing.T) {
	setupLogger(t)
	path := writeCSV(t, projectsCSV)

	tests := []struct {
		name    string
		opts    generateOptions
		wantErr string
	}{
		{"bad mode", generateOptions{Source: sourceFlags{CSVPath: path}, Mode: "indvidual", All: true}, "unknown mode"},
		{"unknown item", generateOptions{Source: sourceFlags{CSVPath: path}, Mode: "individual", Items: []string{"Zeta"}}, "Zeta"},
		{"no selection", generateOptions{Source: sourceFlags{CSVPath: path}, Mode: "consolidated"}, "select at least one item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connected := false
			newDocs := func() (generate.DocumentService, error) {
				connected = true
				return &recordingDocs{}, nil
			}

			err := runGenerate(context.Background(), io.Discard, config.DefaultConfig(), tt.opts, noReader, newDocs)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("runGenerate() error = %v, want it to contain %q", err, tt.wantErr)
			}
			if connected {
				t.Error("document service was created before the input was validated")
			}
		})
	}
}

func TestLoadTableFromSheet(t *testing.T) {
	setupLogger(t)
	tbl, err := table.New([]string{"Name"}, [][]string{{"Alpha"}})
	if err != nil {
		t.Fatal(err)
	}
	reader := &fakeSheetReader{tbl: tbl}
	newReader := func() (sheetReader, error) { return reader, nil }

	src := sourceFlags{
		SheetURL:   "https://docs.google.com/spreadsheets/d/abc123/edit",
		CSVPath:    "ignored.csv",
		SheetIndex: -1,
	}
	got, err := loadTable(context.Background(), src, 2, newReader)
	if err != nil {
		t.Fatalf("loadTable() unexpected error: %v", err)
	}
	if got != tbl {
		t.Error("loadTable() did not return the reader's table")
	}
	if reader.id != "abc123" {
		t.Errorf("spreadsheet id = %q, want %q", reader.id, "abc123")
	}
	if reader.opts.SheetIndex != 2 {
		t.Errorf("sheet index = %d, want config default 2", reader.opts.SheetIndex)
	}

	reader.err = table.ErrEmpty
	if _, err := loadTable(context.Background(), src, 0, newReader); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("loadTable() error = %v, want empty spreadsheet error", err)
	}
}

func TestSelectRows(t *testing.T) {
	tbl, err := table.New([]string{"Name"}, [][]string{{"A"}, {"B"}})
	if err != nil {
		t.Fatal(err)
	}

	rows, err := selectRows(tbl, []string{"B"}, true)
	if err != nil || len(rows) != 2 {
		t.Errorf("selectRows(all) = %d rows, %v; want 2 rows", len(rows), err)
	}
	if _, err := selectRows(tbl, nil, false); !errors.Is(err, generate.ErrNoSelection) {
		t.Errorf("selectRows(none) error = %v, want ErrNoSelection", err)
	}
}
