package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// AuthService signs users in and out and owns the session lifecycle.
type AuthService interface {
	// Login authenticates and persists the returned session.
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthUser, error)

	// Register creates an account and signs it in.
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthUser, error)

	// Logout ends the session remotely (best-effort) and clears all local state.
	Logout(ctx context.Context) error

	// CurrentUser fetches the signed-in user from the backend, refreshing
	// the token once on 401. Returns domain.ErrAuthExpired when the session
	// could not be recovered; local state is cleared in that case.
	CurrentUser(ctx context.Context) (*domain.AuthUser, error)

	// Session returns the stored session without contacting the backend.
	// Returns nil when nobody is signed in.
	Session(ctx context.Context) (*domain.AuthSession, error)

	// RefreshAccessToken exchanges the refresh token for a new pair.
	RefreshAccessToken(ctx context.Context) error

	// OnLogout registers a hook run after local state is cleared.
	OnLogout(hook func(ctx context.Context, userID string))
}
