package gdocs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// fakeGoogle records requests and serves canned Docs, Sheets and Drive
// responses.
type fakeGoogle struct {
	mu       sync.Mutex
	calls    []string
	bodies   map[string][]byte
	times    []time.Time
	meta     string
	values   string
	failPath string
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	call := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, call)
	f.times = append(f.times, time.Now())
	if f.bodies == nil {
		f.bodies = make(map[string][]byte)
	}
	f.bodies[call] = body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.failPath != "" && strings.Contains(r.URL.Path, f.failPath) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"forbidden"}}`)
		return
	}

	switch {
	case r.URL.Path == "/v1/documents":
		io.WriteString(w, `{"documentId":"doc-1","title":"t"}`)
	case strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		io.WriteString(w, `{"documentId":"doc-1","replies":[]}`)
	case strings.Contains(r.URL.Path, "/values/"):
		io.WriteString(w, f.values)
	case strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/"):
		io.WriteString(w, f.meta)
	case strings.HasPrefix(r.URL.Path, "/files/"):
		io.WriteString(w, `{"id":"doc-1"}`)
	default:
		http.NotFound(w, r)
	}
}

func newTestServices(t *testing.T, f *fakeGoogle) *Services {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	s, err := NewServices(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewServices() unexpected error: %v", err)
	}
	return s
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestDocsClientCreateAndUpdate(t *testing.T) {
	f := &fakeGoogle{}
	client := NewDocsClient(newTestServices(t, f), quietLogger())
	client.SetDelay(40 * time.Millisecond)
	ctx := context.Background()

	id, err := client.Create(ctx, "Briefing - Alpha")
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if id != "doc-1" {
		t.Errorf("Create() id = %q, want %q", id, "doc-1")
	}

	reqs := []*docs.Request{{InsertText: &docs.InsertTextRequest{Location: &docs.Location{Index: 1}, Text: "Alpha\n"}}}
	for i := 0; i < 3; i++ {
		if err := client.BatchUpdate(ctx, id, reqs); err != nil {
			t.Fatalf("BatchUpdate() unexpected error: %v", err)
		}
	}

	wantCalls := []string{
		"POST /v1/documents",
		"POST /v1/documents/doc-1:batchUpdate",
		"POST /v1/documents/doc-1:batchUpdate",
		"POST /v1/documents/doc-1:batchUpdate",
	}
	if diff := cmp.Diff(wantCalls, f.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	var sent docs.BatchUpdateDocumentRequest
	if err := json.Unmarshal(f.bodies["POST /v1/documents/doc-1:batchUpdate"], &sent); err != nil {
		t.Fatalf("failed to decode batch body: %v", err)
	}
	if len(sent.Requests) != 1 || sent.Requests[0].InsertText.Text != "Alpha\n" {
		t.Errorf("unexpected batch body: %s", f.bodies["POST /v1/documents/doc-1:batchUpdate"])
	}

	// Batches for the same document are spaced by the delay.
	for i := 2; i < len(f.times); i++ {
		if gap := f.times[i].Sub(f.times[i-1]); gap < 30*time.Millisecond {
			t.Errorf("batch %d sent %v after previous, want at least ~40ms", i, gap)
		}
	}

	if got := client.URL(id); got != "https://docs.google.com/document/d/doc-1/edit" {
		t.Errorf("URL() = %q", got)
	}
}

func TestDocsClientEmptyBatch(t *testing.T) {
	f := &fakeGoogle{}
	client := NewDocsClient(newTestServices(t, f), quietLogger())

	if err := client.BatchUpdate(context.Background(), "doc-1", nil); err != nil {
		t.Fatalf("BatchUpdate() unexpected error: %v", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("expected no API calls, got %v", f.calls)
	}
}

func TestDocsClientErrors(t *testing.T) {
	f := &fakeGoogle{failPath: ":batchUpdate"}
	client := NewDocsClient(newTestServices(t, f), quietLogger())

	err := client.BatchUpdate(context.Background(), "doc-1", []*docs.Request{{}})
	if err == nil {
		t.Fatal("BatchUpdate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "doc-1") {
		t.Errorf("error %q does not name the document", err)
	}
}

func TestDocsClientCancelledContext(t *testing.T) {
	f := &fakeGoogle{}
	client := NewDocsClient(newTestServices(t, f), quietLogger())
	client.SetDelay(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	reqs := []*docs.Request{{}}
	if err := client.BatchUpdate(ctx, "doc-1", reqs); err != nil {
		t.Fatalf("first BatchUpdate() unexpected error: %v", err)
	}
	cancel()
	if err := client.BatchUpdate(ctx, "doc-1", reqs); err == nil {
		t.Fatal("BatchUpdate() after cancel expected error, got nil")
	}
}

func TestMoveToFolder(t *testing.T) {
	f := &fakeGoogle{}
	client := NewDocsClient(newTestServices(t, f), quietLogger())

	if err := client.MoveToFolder(context.Background(), "doc-1", "folder-9"); err != nil {
		t.Fatalf("MoveToFolder() unexpected error: %v", err)
	}
	if len(f.calls) != 1 || f.calls[0] != "PATCH /files/doc-1" {
		t.Errorf("calls = %v, want [PATCH /files/doc-1]", f.calls)
	}
}

func TestSheetReaderRead(t *testing.T) {
	f := &fakeGoogle{
		meta: `{"sheets":[
			{"properties":{"title":"Main","gridProperties":{"rowCount":3,"columnCount":2}}},
			{"properties":{"title":"Bob's","gridProperties":{}}}
		]}`,
		values: `{"range":"Main!A1:B3","values":[["Name","Goal"],["Alpha","Grow"],["Beta",7]]}`,
	}
	reader := NewSheetReader(newTestServices(t, f))
	ctx := context.Background()

	t.Run("detects range from grid", func(t *testing.T) {
		tbl, err := reader.Read(ctx, "sheet-1", SheetOptions{})
		if err != nil {
			t.Fatalf("Read() unexpected error: %v", err)
		}
		if diff := cmp.Diff([][]string{{"Alpha", "Grow"}, {"Beta", "7"}}, tbl.Rows); diff != "" {
			t.Errorf("Read() rows mismatch (-want +got):\n%s", diff)
		}
		last := f.calls[len(f.calls)-1]
		if !strings.HasSuffix(last, "/values/'Main'!A1:B3") {
			t.Errorf("values call = %q, want range 'Main'!A1:B3", last)
		}
	})

	t.Run("defaults missing grid properties", func(t *testing.T) {
		if _, err := reader.Read(ctx, "sheet-1", SheetOptions{SheetIndex: 1}); err != nil {
			t.Fatalf("Read() unexpected error: %v", err)
		}
		last := f.calls[len(f.calls)-1]
		if !strings.HasSuffix(last, "/values/'Bob''s'!A1:Z1000") {
			t.Errorf("values call = %q, want range 'Bob''s'!A1:Z1000", last)
		}
	})

	t.Run("explicit range skips metadata", func(t *testing.T) {
		before := len(f.calls)
		if _, err := reader.Read(ctx, "sheet-1", SheetOptions{Range: "A1:B3"}); err != nil {
			t.Fatalf("Read() unexpected error: %v", err)
		}
		if len(f.calls)-before != 1 {
			t.Errorf("expected a single values call, got %v", f.calls[before:])
		}
	})

	t.Run("sheet index out of range", func(t *testing.T) {
		if _, err := reader.Read(ctx, "sheet-1", SheetOptions{SheetIndex: 5}); err == nil {
			t.Fatal("Read() expected error, got nil")
		}
	})
}

func TestQuoteSheetTitle(t *testing.T) {
	if got := quoteSheetTitle("Bob's"); got != "'Bob''s'" {
		t.Errorf("quoteSheetTitle() = %q, want %q", got, "'Bob''s'")
	}
}
