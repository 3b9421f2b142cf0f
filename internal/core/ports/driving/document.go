package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// DocumentService manages uploaded documents.
type DocumentService interface {
	// Upload sends a file and returns the created document without waiting
	// for processing.
	Upload(ctx context.Context, req domain.UploadRequest, onProgress domain.UploadProgressFunc) (*domain.Document, error)

	// WaitForProcessing polls the document until it reaches a terminal
	// status. Returns domain.ErrPollTimeout when the attempt budget runs out.
	WaitForProcessing(ctx context.Context, id domain.ID, onProgress domain.ProcessingProgressFunc) (*domain.Document, error)

	// List returns documents matching the filter.
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id domain.ID) (*domain.Document, error)

	// Delete removes a document.
	Delete(ctx context.Context, id domain.ID) error

	// Move assigns a document to another store.
	Move(ctx context.Context, id, storeID domain.ID) (*domain.Document, error)
}

// DocumentTracker follows documents that are still being processed.
type DocumentTracker interface {
	// Track adds or replaces documents in the tracked list.
	Track(docs ...domain.Document)

	// Replace swaps the whole tracked list.
	Replace(docs []domain.Document)

	// Forget drops a document from the list.
	Forget(id domain.ID)

	// Snapshot returns a copy of the tracked list.
	Snapshot() []domain.Document

	// InFlight counts documents in a non-terminal status.
	InFlight() int

	// Tick re-fetches every in-flight document once and returns how many
	// were refreshed.
	Tick(ctx context.Context) (int, error)
}
