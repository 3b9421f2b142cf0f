package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// Ensure StoreService implements the interface.
var _ driving.StoreService = (*StoreService)(nil)

// StoreService manages RAG stores and their permissions.
type StoreService struct {
	api driven.StoreAPI
}

// NewStoreService creates a store service.
func NewStoreService(api driven.StoreAPI) *StoreService {
	return &StoreService{api: api}
}

// List returns every store visible to the user.
func (s *StoreService) List(ctx context.Context) ([]domain.RagStore, error) {
	return s.api.ListStores(ctx)
}

// Get retrieves a store by ID.
func (s *StoreService) Get(ctx context.Context, id domain.ID) (*domain.RagStore, error) {
	if id.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	return s.api.GetStore(ctx, id)
}

// Find resolves ref against id, name, display name and rag store name.
// An exact id match wins; names are compared case-insensitively.
func (s *StoreService) Find(ctx context.Context, ref string) (*domain.RagStore, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrInvalidInput
	}

	stores, err := s.api.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stores {
		if stores[i].ID.String() == ref {
			return &stores[i], nil
		}
	}
	for i := range stores {
		st := &stores[i]
		if strings.EqualFold(st.Name, ref) ||
			strings.EqualFold(st.DisplayName, ref) ||
			strings.EqualFold(st.RagStoreName, ref) {
			return st, nil
		}
	}
	return nil, fmt.Errorf("store %q: %w", ref, domain.ErrNotFound)
}

// Create creates a store.
func (s *StoreService) Create(ctx context.Context, in domain.StoreInput) (*domain.RagStore, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" && strings.TrimSpace(in.DisplayName) == "" {
		return nil, fmt.Errorf("%w: a store name is required", domain.ErrInvalidInput)
	}
	return s.api.CreateStore(ctx, in)
}

// Update changes a store's name or description.
func (s *StoreService) Update(ctx context.Context, id domain.ID, in domain.StoreInput) (*domain.RagStore, error) {
	if id.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	return s.api.UpdateStore(ctx, id, in)
}

// Delete removes a store.
func (s *StoreService) Delete(ctx context.Context, id domain.ID) error {
	if id.IsZero() {
		return domain.ErrInvalidInput
	}
	return s.api.DeleteStore(ctx, id)
}

// ListPermissions returns the users with access to a store.
func (s *StoreService) ListPermissions(ctx context.Context, storeID domain.ID) ([]domain.StorePermission, error) {
	if storeID.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	return s.api.ListPermissions(ctx, storeID)
}

// Grant gives a user access to a store.
func (s *StoreService) Grant(
	ctx context.Context,
	storeID, userID domain.ID,
	level domain.PermissionLevel,
) (*domain.StorePermission, error) {
	if storeID.IsZero() || userID.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if level == "" {
		level = domain.PermissionRead
	}
	if !level.IsValid() {
		return nil, fmt.Errorf("%w: unknown permission %q", domain.ErrInvalidInput, level)
	}
	return s.api.GrantPermission(ctx, storeID, domain.StorePermission{UserID: userID, Permission: level})
}

// Revoke removes a user's access to a store.
func (s *StoreService) Revoke(ctx context.Context, storeID, userID domain.ID) error {
	if storeID.IsZero() || userID.IsZero() {
		return domain.ErrInvalidInput
	}
	return s.api.RevokePermission(ctx, storeID, userID)
}
