package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// Ensure TokenStore implements the interface.
var _ driven.TokenStore = (*TokenStore)(nil)

// TokenStore is an in-memory implementation of driven.TokenStore.
type TokenStore struct {
	mu      sync.RWMutex
	session *domain.AuthSession
}

// NewTokenStore creates an empty in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Load returns a copy of the stored session, or nil.
func (s *TokenStore) Load(_ context.Context) (*domain.AuthSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, nil
	}
	return copySession(s.session), nil
}

// Save replaces the stored session.
func (s *TokenStore) Save(_ context.Context, session domain.AuthSession) error {
	if session.AccessToken == "" {
		return domain.ErrInvalidInput
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = copySession(&session)
	return nil
}

// Clear removes the stored session.
func (s *TokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func copySession(in *domain.AuthSession) *domain.AuthSession {
	out := *in
	if in.User != nil {
		user := *in.User
		out.User = &user
	}
	return &out
}
