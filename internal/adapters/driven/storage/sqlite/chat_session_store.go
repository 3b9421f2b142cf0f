package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// chatSessionStore implements driven.ChatSessionStore.
type chatSessionStore struct {
	store *Store
}

var _ driven.ChatSessionStore = (*chatSessionStore)(nil)

// Get returns the cached session for the user and store, or nil.
func (s *chatSessionStore) Get(ctx context.Context, userID, ragStoreName string) (*domain.ChatSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT session_id, rag_store_name, message_count, title, created_at
		FROM chat_sessions WHERE user_id = ? AND rag_store_name = ?
	`, userID, ragStoreName)

	var session domain.ChatSession
	var id string
	var title, createdAt sql.NullString
	if err := row.Scan(&id, &session.RagStoreName, &session.MessageCount, &title, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning chat session: %w", err)
	}

	session.ID = domain.ID(id)
	session.Title = title.String
	session.CreatedAt = parseNullableTime(createdAt)
	return &session, nil
}

// Save caches a session, replacing the previous one for the same store.
func (s *chatSessionStore) Save(ctx context.Context, userID string, session domain.ChatSession) error {
	if session.ID.IsZero() || session.RagStoreName == "" {
		return fmt.Errorf("%w: session id and rag store name are required", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (user_id, rag_store_name, session_id, message_count, title, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, rag_store_name) DO UPDATE SET
			session_id = excluded.session_id,
			message_count = excluded.message_count,
			title = excluded.title,
			created_at = excluded.created_at
	`, userID, session.RagStoreName, session.ID.String(), session.MessageCount,
		nullString(session.Title), formatNullableTime(session.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving chat session: %w", err)
	}
	return nil
}

// Delete drops a cached session by id.
func (s *chatSessionStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM chat_sessions WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("deleting chat session: %w", err)
	}
	return nil
}

// Clear drops every cached session of a user.
func (s *chatSessionStore) Clear(ctx context.Context, userID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM chat_sessions WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clearing chat sessions: %w", err)
	}
	return nil
}
