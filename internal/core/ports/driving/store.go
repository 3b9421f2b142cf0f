package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// StoreService manages RAG stores.
type StoreService interface {
	List(ctx context.Context) ([]domain.RagStore, error)
	Get(ctx context.Context, id domain.ID) (*domain.RagStore, error)
	// Find resolves a store by id, name, display name or rag store name.
	Find(ctx context.Context, ref string) (*domain.RagStore, error)
	Create(ctx context.Context, in domain.StoreInput) (*domain.RagStore, error)
	Update(ctx context.Context, id domain.ID, in domain.StoreInput) (*domain.RagStore, error)
	Delete(ctx context.Context, id domain.ID) error
	ListPermissions(ctx context.Context, storeID domain.ID) ([]domain.StorePermission, error)
	Grant(ctx context.Context, storeID, userID domain.ID, level domain.PermissionLevel) (*domain.StorePermission, error)
	Revoke(ctx context.Context, storeID, userID domain.ID) error
}
