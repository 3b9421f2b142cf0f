package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

var authLog = logger.With("auth")

// AuthService owns the sign-in lifecycle. Local state (tokens, cached chat
// sessions and whatever OnLogout hooks clear) is dropped as a unit.
type AuthService struct {
	api      driven.AuthAPI
	tokens   driven.TokenProvider
	sessions driven.ChatSessionStore

	mu    sync.RWMutex
	hooks []func(ctx context.Context, userID string)
}

// NewAuthService creates an auth service. sessions may be nil.
func NewAuthService(api driven.AuthAPI, tokens driven.TokenProvider, sessions driven.ChatSessionStore) *AuthService {
	return &AuthService{
		api:      api,
		tokens:   tokens,
		sessions: sessions,
	}
}

// OnLogout registers a hook run after local state is cleared.
func (s *AuthService) OnLogout(hook func(ctx context.Context, userID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Login authenticates and persists the returned session.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthUser, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthUser, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if req.Role != "" && !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, req.Role)
	}

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

func (s *AuthService) establish(ctx context.Context, resp *domain.TokenResponse) (*domain.AuthUser, error) {
	if resp == nil || resp.AccessToken == "" {
		return nil, errors.New("backend returned no access token")
	}
	session, err := s.tokens.Establish(ctx, *resp)
	if err != nil {
		return nil, err
	}
	if session.User != nil {
		return session.User, nil
	}

	// Older backends omit the user from the token response.
	user, err := s.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	resp.User = user
	if _, err := s.tokens.Establish(ctx, *resp); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout ends the session remotely (best-effort) and clears local state.
func (s *AuthService) Logout(ctx context.Context) error {
	session, err := s.tokens.Session(ctx)
	if err != nil {
		authLog.Warn("reading session: %v", err)
	}
	if session.IsAuthenticated() {
		if err := s.api.Logout(ctx); err != nil {
			authLog.Warn("remote logout failed: %v", err)
		}
	}
	return s.clearLocal(ctx, session.UserID())
}

// clearLocal drops tokens, cached chat sessions and hook-owned state.
func (s *AuthService) clearLocal(ctx context.Context, userID string) error {
	err := s.tokens.Invalidate(ctx)
	if s.sessions != nil && userID != "" {
		if clearErr := s.sessions.Clear(ctx, userID); clearErr != nil {
			authLog.Warn("clearing chat sessions: %v", clearErr)
		}
	}

	s.mu.RLock()
	hooks := append([]func(context.Context, string){}, s.hooks...)
	s.mu.RUnlock()
	for _, hook := range hooks {
		hook(ctx, userID)
	}
	return err
}

// CurrentUser fetches the signed-in user, refreshing the token once on 401.
// When the session cannot be recovered local state is cleared and the
// error wraps domain.ErrAuthExpired.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.AuthUser, error) {
	session, err := s.tokens.Session(ctx)
	if err != nil {
		return nil, err
	}
	if !session.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuthExpired) {
			if clearErr := s.clearLocal(ctx, session.UserID()); clearErr != nil {
				authLog.Warn("clearing session: %v", clearErr)
			}
		}
		return nil, err
	}

	// Keep the cached user current; the token pair may have been refreshed.
	latest, err := s.tokens.Session(ctx)
	if err == nil && latest.IsAuthenticated() {
		_, err = s.tokens.Establish(ctx, domain.TokenResponse{
			AccessToken:  latest.AccessToken,
			RefreshToken: latest.RefreshToken,
			User:         user,
		})
	}
	if err != nil {
		authLog.Debug("caching user: %v", err)
	}
	return user, nil
}

// Session returns the stored session without contacting the backend.
func (s *AuthService) Session(ctx context.Context) (*domain.AuthSession, error) {
	return s.tokens.Session(ctx)
}

// RefreshAccessToken exchanges the refresh token for a new pair. When the
// backend rejects the refresh all local state is cleared; a cancelled call
// leaves it alone.
func (s *AuthService) RefreshAccessToken(ctx context.Context) error {
	session, err := s.tokens.Session(ctx)
	if err != nil {
		return err
	}
	if !session.IsAuthenticated() {
		return domain.ErrAuthRequired
	}

	if _, err := s.tokens.Refresh(ctx); err != nil {
		if domain.IsInterrupted(err) {
			return err
		}
		if clearErr := s.clearLocal(ctx, session.UserID()); clearErr != nil {
			authLog.Warn("clearing session: %v", clearErr)
		}
		return err
	}
	return nil
}
