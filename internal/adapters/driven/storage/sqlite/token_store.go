package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// tokenStore implements driven.TokenStore on the single-row auth_session table.
type tokenStore struct {
	store *Store
}

var _ driven.TokenStore = (*tokenStore)(nil)

// Load returns the stored session, or nil when nobody is signed in.
func (s *tokenStore) Load(ctx context.Context) (*domain.AuthSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, user_json, expires_at, updated_at
		FROM auth_session WHERE id = 1
	`)

	var session domain.AuthSession
	var refreshToken, userJSON, expiresAt sql.NullString
	var updatedAt string
	if err := row.Scan(&session.AccessToken, &refreshToken, &userJSON, &expiresAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning auth session: %w", err)
	}

	session.RefreshToken = refreshToken.String
	session.Expiry = parseNullableTime(expiresAt)
	session.UpdatedAt = parseTime(updatedAt)
	if userJSON.Valid && userJSON.String != "" {
		var user domain.AuthUser
		if err := json.Unmarshal([]byte(userJSON.String), &user); err != nil {
			return nil, fmt.Errorf("unmarshalling cached user: %w", err)
		}
		session.User = &user
	}

	return &session, nil
}

// Save replaces the stored session.
func (s *tokenStore) Save(ctx context.Context, session domain.AuthSession) error {
	if session.AccessToken == "" {
		return fmt.Errorf("%w: access token is required", domain.ErrInvalidInput)
	}

	var userJSON any
	if session.User != nil {
		data, err := json.Marshal(session.User)
		if err != nil {
			return fmt.Errorf("marshalling cached user: %w", err)
		}
		userJSON = string(data)
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO auth_session (id, access_token, refresh_token, user_json, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			user_json = excluded.user_json,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, session.AccessToken, nullString(session.RefreshToken), userJSON,
		formatNullableTime(session.Expiry), formatTime(session.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving auth session: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (s *tokenStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM auth_session"); err != nil {
		return fmt.Errorf("clearing auth session: %w", err)
	}
	return nil
}
