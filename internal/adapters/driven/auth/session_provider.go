package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure SessionProvider implements the interfaces.
var (
	_ driven.TokenProvider = (*SessionProvider)(nil)
	_ oauth2.TokenSource   = (*SessionProvider)(nil)
)

var log = logger.With("auth")

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error)
}

// SessionProvider keeps the signed-in session in a TokenStore and hands
// out its access token. Concurrent refreshes are collapsed into one call.
type SessionProvider struct {
	store     driven.TokenStore
	refresher Refresher
	group     singleflight.Group

	mu     sync.RWMutex
	cached *domain.AuthSession
	loaded bool
}

// NewSessionProvider creates a provider over store. refresher may be set
// later with SetRefresher when it depends on this provider.
func NewSessionProvider(store driven.TokenStore, refresher Refresher) *SessionProvider {
	return &SessionProvider{
		store:     store,
		refresher: refresher,
	}
}

// SetRefresher sets the client used for refresh calls.
func (p *SessionProvider) SetRefresher(r Refresher) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresher = r
}

// Session returns the stored session, or nil when signed out.
func (p *SessionProvider) Session(ctx context.Context) (*domain.AuthSession, error) {
	p.mu.RLock()
	if p.loaded {
		s := p.cached
		p.mu.RUnlock()
		return copySession(s), nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		s, err := p.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		p.cached = s
		p.loaded = true
	}
	return copySession(p.cached), nil
}

// GetToken returns the current access token.
func (p *SessionProvider) GetToken(ctx context.Context) (string, error) {
	s, err := p.Session(ctx)
	if err != nil {
		return "", err
	}
	if !s.IsAuthenticated() {
		return "", domain.ErrAuthRequired
	}
	return s.AccessToken, nil
}

// Token implements oauth2.TokenSource.
func (p *SessionProvider) Token() (*oauth2.Token, error) {
	s, err := p.Session(context.Background())
	if err != nil {
		return nil, err
	}
	if !s.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.Expiry,
	}, nil
}

// IsAuthenticated returns true if a session is stored.
func (p *SessionProvider) IsAuthenticated() bool {
	s, err := p.Session(context.Background())
	return err == nil && s.IsAuthenticated()
}

// refreshTimeout bounds a shared refresh once it no longer follows the
// context of the caller that started it.
const refreshTimeout = 30 * time.Second

// Refresh exchanges the refresh token for a new pair. The exchange is
// shared by concurrent callers and outlives the cancellation of any one of
// them; a caller whose ctx ends stops waiting but the refresh completes.
func (p *SessionProvider) Refresh(ctx context.Context) (string, error) {
	ch := p.group.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return p.refresh(rctx)
	})
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, ctx.Err())
	case res := <-ch:
		if res.Shared {
			log.Debug("joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (p *SessionProvider) refresh(ctx context.Context) (string, error) {
	current, err := p.Session(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}
	if !current.HasRefreshToken() {
		p.clearQuietly(ctx)
		return "", fmt.Errorf("%w: no refresh token", domain.ErrTokenRefreshFailed)
	}

	p.mu.RLock()
	refresher := p.refresher
	p.mu.RUnlock()
	if refresher == nil {
		return "", fmt.Errorf("%w: no refresher configured", domain.ErrTokenRefreshFailed)
	}

	resp, err := refresher.Refresh(ctx, current.RefreshToken)
	if domain.IsInterrupted(err) {
		log.Debug("refresh interrupted, keeping session: %v", err)
		return "", fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}
	if err != nil {
		log.Debug("refresh failed, clearing session: %v", err)
		p.clearQuietly(ctx)
		return "", fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}
	if resp.AccessToken == "" {
		p.clearQuietly(ctx)
		return "", fmt.Errorf("%w: empty access token", domain.ErrTokenRefreshFailed)
	}

	if resp.RefreshToken == "" {
		resp.RefreshToken = current.RefreshToken
	}
	if resp.User == nil {
		resp.User = current.User
	}
	s, err := p.Establish(ctx, *resp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}
	log.Debug("token refreshed, expires %s", s.Expiry.Format(time.RFC3339))
	return s.AccessToken, nil
}

// Establish stores the session described by a token response.
func (p *SessionProvider) Establish(ctx context.Context, resp domain.TokenResponse) (*domain.AuthSession, error) {
	if resp.AccessToken == "" {
		return nil, errors.New("token response has no access token")
	}
	s := domain.AuthSession{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
		Expiry:       TokenExpiry(resp.AccessToken),
		UpdatedAt:    time.Now(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	p.cached = &s
	p.loaded = true
	return copySession(&s), nil
}

// Invalidate removes the stored session.
func (p *SessionProvider) Invalidate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = nil
	p.loaded = true
	if err := p.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (p *SessionProvider) clearQuietly(ctx context.Context) {
	if err := p.Invalidate(ctx); err != nil {
		log.Warn("%v", err)
	}
}

func copySession(s *domain.AuthSession) *domain.AuthSession {
	if s == nil {
		return nil
	}
	c := *s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	return &c
}
