// Package generate writes selected table rows to Google Docs, either one
// document per row or a single consolidated document.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"google.golang.org/api/docs/v1"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/docbuild"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/table"
)

// ErrNoSelection is returned when there are no rows to generate.
var ErrNoSelection = errors.New("select at least one item")

// Mode selects how rows map to documents
type Mode string

const (
	// ModeIndividual writes one document per row
	ModeIndividual Mode = "individual"
	// ModeConsolidated writes every row into a single document
	ModeConsolidated Mode = "consolidated"
)

// ParseMode checks if the given mode string is valid and returns the Mode
func ParseMode(mode string) (Mode, error) {
	switch Mode(mode) {
	case ModeIndividual:
		return ModeIndividual, nil
	case ModeConsolidated:
		return ModeConsolidated, nil
	default:
		return "", fmt.Errorf("unknown mode: %q (valid options: individual, consolidated)", mode)
	}
}

// DocumentService is the subset of the Docs API used for generation.
type DocumentService interface {
	Create(ctx context.Context, title string) (string, error)
	BatchUpdate(ctx context.Context, docID string, requests []*docs.Request) error
	URL(docID string) string
}

// Pacer is implemented by services that space out batches themselves.
type Pacer interface {
	SetDelay(d time.Duration)
}

// Mover is implemented by services that can place documents in a folder.
type Mover interface {
	MoveToFolder(ctx context.Context, docID, folderID string) error
}

// BatchPolicy bounds the requests per batchUpdate call and the spacing
// between calls.
type BatchPolicy struct {
	Size  int
	Delay time.Duration
}

// Default batch policies.
var (
	DefaultIndividual   = BatchPolicy{Size: 20, Delay: 800 * time.Millisecond}
	DefaultConsolidated = BatchPolicy{Size: 15, Delay: 1200 * time.Millisecond}
)

// Result describes one generated document.
type Result struct {
	Name       string `json:"name"`
	DocumentID string `json:"document_id"`
	URL        string `json:"url"`
}

// Generator turns rows into documents.
type Generator struct {
	Docs              DocumentService
	Labels            docbuild.Labels
	IndividualBatch   BatchPolicy
	ConsolidatedBatch BatchPolicy

	// FolderID places generated documents in a Drive folder when set
	FolderID string

	// Progress is called after each document in individual mode
	Progress func(done, total int)

	Now    func() time.Time
	Logger *log.Logger
}

// New returns a Generator with default labels and batch policies.
func New(svc DocumentService, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		Docs:              svc,
		Labels:            docbuild.DefaultLabels(),
		IndividualBatch:   DefaultIndividual,
		ConsolidatedBatch: DefaultConsolidated,
		Now:               time.Now,
		Logger:            logger,
	}
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// Plan builds the documents for rows without calling the API.
func (g *Generator) Plan(mode Mode, rows []table.Row) ([]docbuild.Plan, error) {
	if len(rows) == 0 {
		return nil, ErrNoSelection
	}

	now := g.now()
	switch mode {
	case ModeIndividual:
		plans := make([]docbuild.Plan, 0, len(rows))
		for _, row := range rows {
			plans = append(plans, g.individualPlan(row, now))
		}
		return plans, nil
	case ModeConsolidated:
		return []docbuild.Plan{g.consolidatedPlan(rows, now)}, nil
	default:
		return nil, fmt.Errorf("unknown mode: %q", mode)
	}
}

func (g *Generator) individualPlan(row table.Row, now time.Time) docbuild.Plan {
	blocks := docbuild.SingleBlocks(row, g.Labels, now)
	return docbuild.NewPlan(docbuild.SingleTitle(row, g.Labels), blocks, g.IndividualBatch.Size)
}

func (g *Generator) consolidatedPlan(rows []table.Row, now time.Time) docbuild.Plan {
	blocks := docbuild.ConsolidatedBlocks(rows, g.Labels, now)
	return docbuild.NewPlan(g.Labels.ConsolidatedTitle, blocks, g.ConsolidatedBatch.Size)
}

// Run dispatches to Individual or Consolidated.
func (g *Generator) Run(ctx context.Context, mode Mode, rows []table.Row) ([]Result, error) {
	switch mode {
	case ModeIndividual:
		return g.Individual(ctx, rows)
	case ModeConsolidated:
		res, err := g.Consolidated(ctx, rows)
		if err != nil {
			return nil, err
		}
		return []Result{res}, nil
	default:
		return nil, fmt.Errorf("unknown mode: %q", mode)
	}
}

// Individual writes one document per row. On failure it returns the
// documents completed so far along with the error.
func (g *Generator) Individual(ctx context.Context, rows []table.Row) ([]Result, error) {
	if len(rows) == 0 {
		return nil, ErrNoSelection
	}

	logger := g.Logger.With("run", uuid.NewString(), "mode", ModeIndividual)
	logger.Info("generating documents", "items", len(rows))

	now := g.now()
	results := make([]Result, 0, len(rows))
	for i, row := range rows {
		plan := g.individualPlan(row, now)
		res, err := g.write(ctx, logger, plan, g.IndividualBatch)
		if err != nil {
			return results, fmt.Errorf("item %q: %w", row.Identifier(), err)
		}
		res.Name = row.Identifier()
		results = append(results, res)

		if g.Progress != nil {
			g.Progress(i+1, len(rows))
		}
	}

	logger.Info("documents generated", "count", len(results))
	return results, nil
}

// Consolidated writes every row into a single document.
func (g *Generator) Consolidated(ctx context.Context, rows []table.Row) (Result, error) {
	if len(rows) == 0 {
		return Result{}, ErrNoSelection
	}

	logger := g.Logger.With("run", uuid.NewString(), "mode", ModeConsolidated)
	logger.Info("generating consolidated document", "items", len(rows))

	plan := g.consolidatedPlan(rows, g.now())
	res, err := g.write(ctx, logger, plan, g.ConsolidatedBatch)
	if err != nil {
		return Result{}, err
	}
	res.Name = plan.Title

	if g.Progress != nil {
		g.Progress(1, 1)
	}
	return res, nil
}

func (g *Generator) write(ctx context.Context, logger *log.Logger, plan docbuild.Plan, policy BatchPolicy) (Result, error) {
	if p, ok := g.Docs.(Pacer); ok {
		p.SetDelay(policy.Delay)
	}

	id, err := g.Docs.Create(ctx, plan.Title)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("writing document", "id", id, "requests", plan.Requests, "batches", len(plan.Batches))

	for i, batch := range plan.Batches {
		if err := g.Docs.BatchUpdate(ctx, id, batch); err != nil {
			return Result{}, fmt.Errorf("batch %d/%d: %w", i+1, len(plan.Batches), err)
		}
	}

	if g.FolderID != "" {
		m, ok := g.Docs.(Mover)
		if !ok {
			return Result{}, fmt.Errorf("document service cannot move documents to folders")
		}
		if err := m.MoveToFolder(ctx, id, g.FolderID); err != nil {
			return Result{}, err
		}
	}

	return Result{DocumentID: id, URL: g.Docs.URL(id)}, nil
}
