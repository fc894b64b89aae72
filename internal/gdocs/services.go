package gdocs

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Services bundles the API clients built from one set of credentials.
type Services struct {
	Docs   *docs.Service
	Sheets *sheets.Service
	Drive  *drive.Service
}

// NewServices creates Docs, Sheets and Drive clients sharing opts.
func NewServices(ctx context.Context, opts ...option.ClientOption) (*Services, error) {
	docsSrv, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Docs service: %w", err)
	}
	sheetsSrv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	driveSrv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %w", err)
	}
	return &Services{Docs: docsSrv, Sheets: sheetsSrv, Drive: driveSrv}, nil
}

// DocumentURL returns the edit URL of a document.
func DocumentURL(id string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", id)
}

// DocsClient creates documents and submits batch updates, pacing batches
// sent to the same document.
type DocsClient struct {
	docs   *docs.Service
	drive  *drive.Service
	logger *log.Logger

	delay   time.Duration
	lastDoc string
	limiter *rate.Limiter
}

// NewDocsClient returns a client around s. Drive may be nil when folder
// placement is not needed.
func NewDocsClient(s *Services, logger *log.Logger) *DocsClient {
	if logger == nil {
		logger = log.Default()
	}
	return &DocsClient{docs: s.Docs, drive: s.Drive, logger: logger}
}

// SetDelay sets the minimum spacing between batches for one document.
func (c *DocsClient) SetDelay(d time.Duration) {
	c.delay = d
	c.lastDoc = ""
}

// Create creates an empty document and returns its ID.
func (c *DocsClient) Create(ctx context.Context, title string) (string, error) {
	doc, err := c.docs.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create document %q: %w", title, err)
	}
	c.logger.Debug("document created", "id", doc.DocumentId, "title", title)
	return doc.DocumentId, nil
}

// BatchUpdate applies requests to a document. Consecutive calls for the same
// document are spaced by the configured delay.
func (c *DocsClient) BatchUpdate(ctx context.Context, docID string, requests []*docs.Request) error {
	if len(requests) == 0 {
		return nil
	}

	if docID != c.lastDoc {
		c.lastDoc = docID
		c.limiter = rate.NewLimiter(rate.Every(c.delay), 1)
		if c.delay <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("batch update cancelled: %w", err)
	}

	req := &docs.BatchUpdateDocumentRequest{Requests: requests}
	if _, err := c.docs.Documents.BatchUpdate(docID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update document %s: %w", docID, err)
	}
	c.logger.Debug("batch applied", "id", docID, "requests", len(requests))
	return nil
}

// URL returns the edit URL for docID.
func (c *DocsClient) URL(docID string) string {
	return DocumentURL(docID)
}

// MoveToFolder adds the document to a Drive folder.
func (c *DocsClient) MoveToFolder(ctx context.Context, docID, folderID string) error {
	if c.drive == nil {
		return fmt.Errorf("drive service not configured")
	}
	_, err := c.drive.Files.Update(docID, &drive.File{}).
		AddParents(folderID).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to move document %s to folder %s: %w", docID, folderID, err)
	}
	return nil
}
