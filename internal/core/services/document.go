package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

var docLog = logger.With("documents")

// PollConfig bounds document status polling.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollConfig polls every 5s for at most 60 attempts.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    domain.DefaultPollInterval,
		MaxAttempts: domain.DefaultPollAttempts,
	}
}

// DocumentService manages uploaded documents.
type DocumentService struct {
	api  driven.DocumentAPI
	poll PollConfig
}

// NewDocumentService creates a document service. Zero poll fields fall
// back to the defaults.
func NewDocumentService(api driven.DocumentAPI, poll PollConfig) *DocumentService {
	defaults := DefaultPollConfig()
	if poll.Interval <= 0 {
		poll.Interval = defaults.Interval
	}
	if poll.MaxAttempts <= 0 {
		poll.MaxAttempts = defaults.MaxAttempts
	}
	return &DocumentService{api: api, poll: poll}
}

// Upload sends a file and returns the created document.
func (s *DocumentService) Upload(
	ctx context.Context,
	req domain.UploadRequest,
	onProgress domain.UploadProgressFunc,
) (*domain.Document, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Reader == nil {
		return nil, fmt.Errorf("%w: a file name and content are required", domain.ErrInvalidInput)
	}

	doc, err := s.api.UploadDocument(ctx, req, onProgress)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", req.Name, err)
	}
	docLog.Debug("uploaded %s as %s", req.Name, doc.ID)
	return doc, nil
}

// WaitForProcessing polls the document until it reaches a terminal status.
// Each attempt waits one interval, fetches the document and reports its
// progress. A document that ends in the error status is returned without
// an error; callers inspect Status. When the attempt budget is exhausted
// the error wraps domain.ErrPollTimeout.
func (s *DocumentService) WaitForProcessing(
	ctx context.Context,
	id domain.ID,
	onProgress domain.ProcessingProgressFunc,
) (*domain.Document, error) {
	for attempt := 1; attempt <= s.poll.MaxAttempts; attempt++ {
		if err := sleep(ctx, s.poll.Interval); err != nil {
			return nil, err
		}

		doc, err := s.api.GetDocument(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("polling document %s: %w", id, err)
		}

		if onProgress != nil {
			onProgress(doc.Progress(), doc.Status, doc.StatusMessage)
		}
		if doc.Status.IsTerminal() {
			docLog.Debug("document %s reached %s after %d polls", id, doc.Status, attempt)
			return doc, nil
		}
	}

	return nil, fmt.Errorf("%w: document %s after %d attempts", domain.ErrPollTimeout, id, s.poll.MaxAttempts)
}

// List returns documents matching the filter.
func (s *DocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	return s.api.ListDocuments(ctx, filter)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id domain.ID) (*domain.Document, error) {
	if id.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	return s.api.GetDocument(ctx, id)
}

// Delete removes a document.
func (s *DocumentService) Delete(ctx context.Context, id domain.ID) error {
	if id.IsZero() {
		return domain.ErrInvalidInput
	}
	return s.api.DeleteDocument(ctx, id)
}

// Move assigns a document to another store.
func (s *DocumentService) Move(ctx context.Context, id, storeID domain.ID) (*domain.Document, error) {
	if id.IsZero() || storeID.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	return s.api.MoveDocument(ctx, id, storeID)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
