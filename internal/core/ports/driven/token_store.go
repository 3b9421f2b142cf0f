package driven

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// TokenStore persists the signed-in session (token pair and cached user).
type TokenStore interface {
	// Load returns the stored session.
	// Returns nil and no error if nobody is signed in.
	Load(ctx context.Context) (*domain.AuthSession, error)

	// Save replaces the stored session.
	Save(ctx context.Context, session domain.AuthSession) error

	// Clear removes the stored session. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
