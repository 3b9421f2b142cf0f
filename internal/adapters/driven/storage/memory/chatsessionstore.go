package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// Ensure ChatSessionStore implements the interface.
var _ driven.ChatSessionStore = (*ChatSessionStore)(nil)

type chatSessionKey struct {
	userID       string
	ragStoreName string
}

// ChatSessionStore is an in-memory implementation of driven.ChatSessionStore.
type ChatSessionStore struct {
	mu       sync.RWMutex
	sessions map[chatSessionKey]domain.ChatSession
}

// NewChatSessionStore creates an empty in-memory chat session store.
func NewChatSessionStore() *ChatSessionStore {
	return &ChatSessionStore{
		sessions: make(map[chatSessionKey]domain.ChatSession),
	}
}

// Get returns the cached session for the user and store, or nil.
func (s *ChatSessionStore) Get(_ context.Context, userID, ragStoreName string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[chatSessionKey{userID, ragStoreName}]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// Save caches a session, replacing the previous one for the same store.
func (s *ChatSessionStore) Save(_ context.Context, userID string, session domain.ChatSession) error {
	if session.ID.IsZero() || session.RagStoreName == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatSessionKey{userID, session.RagStoreName}] = session
	return nil
}

// Delete drops a cached session by id.
func (s *ChatSessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, session := range s.sessions {
		if session.ID.String() == sessionID {
			delete(s.sessions, key)
		}
	}
	return nil
}

// Clear drops every cached session of a user.
func (s *ChatSessionStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.sessions {
		if key.userID == userID {
			delete(s.sessions, key)
		}
	}
	return nil
}
