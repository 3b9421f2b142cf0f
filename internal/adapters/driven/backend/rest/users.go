package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// ListUsers returns all users.
func (c *Client) ListUsers(ctx context.Context) ([]domain.ManagedUser, error) {
	var out []domain.ManagedUser
	if err := c.get(ctx, "/users/", nil, &out); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// CreateUser creates an account.
func (c *Client) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.ManagedUser, error) {
	var out domain.ManagedUser
	if err := c.doJSON(ctx, http.MethodPost, "/users/", nil, req, &out, true); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &out, nil
}

// UpdateUser edits an account.
func (c *Client) UpdateUser(ctx context.Context, id domain.ID, req domain.UpdateUserRequest) (*domain.ManagedUser, error) {
	var out domain.ManagedUser
	if err := c.doJSON(ctx, http.MethodPut, "/users/"+escape(id), nil, req, &out, true); err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return &out, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id domain.ID) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/users/"+escape(id), nil, nil, nil, true); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

// ToggleUserStatus activates or deactivates an account.
func (c *Client) ToggleUserStatus(ctx context.Context, id domain.ID) (*domain.ManagedUser, error) {
	var out domain.ManagedUser
	if err := c.doJSON(ctx, http.MethodPatch, "/users/"+escape(id)+"/toggle-status", nil, nil, &out, true); err != nil {
		return nil, fmt.Errorf("toggle user %s: %w", id, err)
	}
	return &out, nil
}

// GetUserStats summarises the user base.
func (c *Client) GetUserStats(ctx context.Context) (*domain.UserStats, error) {
	var out domain.UserStats
	if err := c.get(ctx, "/users/stats", nil, &out); err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return &out, nil
}
