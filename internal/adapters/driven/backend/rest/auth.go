package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.TokenResponse, error) {
	var out domain.TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, creds, &out, false); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &out, nil
}

// Register creates an account and returns its token pair.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenResponse, error) {
	var out domain.TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", nil, req, &out, false); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new pair.
// It never goes through the refresh-and-retry path.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var out domain.TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", nil, body, &out, false); err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return &out, nil
}

// Logout invalidates the session on the backend.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil, nil, true); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*domain.AuthUser, error) {
	var out domain.AuthUser
	if err := c.get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &out, nil
}
