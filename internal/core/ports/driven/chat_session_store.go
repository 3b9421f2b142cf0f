package driven

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// ChatSessionStore remembers the active chat session per user and store
// so a chat can be resumed instead of recreated.
type ChatSessionStore interface {
	// Get returns the cached session for the user and store.
	// Returns nil and no error if none is cached.
	Get(ctx context.Context, userID, ragStoreName string) (*domain.ChatSession, error)

	// Save caches a session for the user, replacing any previous one for the same store.
	Save(ctx context.Context, userID string, session domain.ChatSession) error

	// Delete drops a cached session by id.
	Delete(ctx context.Context, sessionID string) error

	// Clear drops every cached session of a user.
	Clear(ctx context.Context, userID string) error
}
