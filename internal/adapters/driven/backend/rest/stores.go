package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// ListStores returns every store the user can see.
func (c *Client) ListStores(ctx context.Context) ([]domain.RagStore, error) {
	var out []domain.RagStore
	if err := c.get(ctx, "/stores/", nil, &out); err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return out, nil
}

// GetStore returns one store.
func (c *Client) GetStore(ctx context.Context, id domain.ID) (*domain.RagStore, error) {
	var out domain.RagStore
	if err := c.get(ctx, "/stores/"+escape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get store %s: %w", id, err)
	}
	return &out, nil
}

// CreateStore creates a store.
func (c *Client) CreateStore(ctx context.Context, in domain.StoreInput) (*domain.RagStore, error) {
	var out domain.RagStore
	if err := c.doJSON(ctx, http.MethodPost, "/stores/", nil, in, &out, true); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return &out, nil
}

// UpdateStore edits a store.
func (c *Client) UpdateStore(ctx context.Context, id domain.ID, in domain.StoreInput) (*domain.RagStore, error) {
	var out domain.RagStore
	if err := c.doJSON(ctx, http.MethodPut, "/stores/"+escape(id), nil, in, &out, true); err != nil {
		return nil, fmt.Errorf("update store %s: %w", id, err)
	}
	return &out, nil
}

// DeleteStore removes a store.
func (c *Client) DeleteStore(ctx context.Context, id domain.ID) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/stores/"+escape(id), nil, nil, nil, true); err != nil {
		return fmt.Errorf("delete store %s: %w", id, err)
	}
	return nil
}

// ListPermissions returns who can access a store.
func (c *Client) ListPermissions(ctx context.Context, storeID domain.ID) ([]domain.StorePermission, error) {
	var out []domain.StorePermission
	if err := c.get(ctx, "/stores/"+escape(storeID)+"/permissions", nil, &out); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return out, nil
}

// GrantPermission gives a user access to a store.
func (c *Client) GrantPermission(
	ctx context.Context,
	storeID domain.ID,
	perm domain.StorePermission,
) (*domain.StorePermission, error) {
	var out domain.StorePermission
	path := "/stores/" + escape(storeID) + "/permissions"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, perm, &out, true); err != nil {
		return nil, fmt.Errorf("grant permission: %w", err)
	}
	return &out, nil
}

// RevokePermission removes a user's access to a store.
func (c *Client) RevokePermission(ctx context.Context, storeID, userID domain.ID) error {
	path := "/stores/" + escape(storeID) + "/permissions/" + escape(userID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil, true); err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}
	return nil
}
