package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// Ensure DocumentTracker implements the interface.
var _ driving.DocumentTracker = (*DocumentTracker)(nil)

// DocumentTracker keeps a list of documents and refreshes the ones still
// being processed. One tracker serves every view so a document is polled
// once per tick no matter how many screens show it.
type DocumentTracker struct {
	api driven.DocumentAPI

	mu   sync.RWMutex
	docs []domain.Document
}

// NewDocumentTracker creates an empty tracker.
func NewDocumentTracker(api driven.DocumentAPI) *DocumentTracker {
	return &DocumentTracker{api: api}
}

// Track adds documents, replacing entries with the same ID in place.
func (t *DocumentTracker) Track(docs ...domain.Document) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, doc := range docs {
		if i := t.indexLocked(doc.ID); i >= 0 {
			t.docs[i] = doc
			continue
		}
		t.docs = append(t.docs, doc)
	}
}

// Replace swaps the whole list.
func (t *DocumentTracker) Replace(docs []domain.Document) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.docs = append([]domain.Document(nil), docs...)
}

// Forget drops a document.
func (t *DocumentTracker) Forget(id domain.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.indexLocked(id); i >= 0 {
		t.docs = append(t.docs[:i], t.docs[i+1:]...)
	}
}

// Snapshot returns a copy of the list.
func (t *DocumentTracker) Snapshot() []domain.Document {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]domain.Document(nil), t.docs...)
}

// InFlight counts documents in a non-terminal status.
func (t *DocumentTracker) InFlight() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for i := range t.docs {
		if t.docs[i].InFlight() {
			n++
		}
	}
	return n
}

// Tick re-fetches every in-flight document once. Fetch failures are
// logged and retried on the next tick.
func (t *DocumentTracker) Tick(ctx context.Context) (int, error) {
	var pending []domain.ID
	t.mu.RLock()
	for i := range t.docs {
		if t.docs[i].InFlight() {
			pending = append(pending, t.docs[i].ID)
		}
	}
	t.mu.RUnlock()

	refreshed := 0
	for _, id := range pending {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		doc, err := t.api.GetDocument(ctx, id)
		if err != nil {
			docLog.Debug("status of %s: %v", id, err)
			continue
		}

		t.mu.Lock()
		// The document may have been forgotten while we fetched it.
		if i := t.indexLocked(id); i >= 0 {
			t.docs[i] = *doc
			refreshed++
		}
		t.mu.Unlock()
	}
	return refreshed, nil
}

func (t *DocumentTracker) indexLocked(id domain.ID) int {
	for i := range t.docs {
		if t.docs[i].ID == id {
			return i
		}
	}
	return -1
}
