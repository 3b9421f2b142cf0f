package driven

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// TokenProvider owns the signed-in session and provides access tokens for
// authenticated API calls.
//
// This interface is designed to work alongside the Scheduler's proactive refresh:
//   - Scheduler: Refreshes tokens shortly before they expire
//   - TokenProvider: Reactive refresh when the backend answers 401
type TokenProvider interface {
	// GetToken returns the current access token.
	// Returns domain.ErrAuthRequired when nobody is signed in.
	GetToken(ctx context.Context) (string, error)

	// Refresh exchanges the refresh token for a new token pair and returns
	// the new access token. On failure the stored session is cleared and
	// the error wraps domain.ErrTokenRefreshFailed. Concurrent callers
	// share one refresh.
	Refresh(ctx context.Context) (string, error)

	// IsAuthenticated returns true if a session is stored.
	IsAuthenticated() bool

	// Session returns the stored session, or nil when signed out.
	Session(ctx context.Context) (*domain.AuthSession, error)

	// Establish stores the session described by a login, register or
	// refresh response.
	Establish(ctx context.Context, resp domain.TokenResponse) (*domain.AuthSession, error)

	// Invalidate removes the stored session atomically.
	Invalidate(ctx context.Context) error
}
