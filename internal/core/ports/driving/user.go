package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// UserService administers user accounts.
type UserService interface {
	List(ctx context.Context) ([]domain.ManagedUser, error)
	Create(ctx context.Context, req domain.CreateUserRequest) (*domain.ManagedUser, error)
	Update(ctx context.Context, id domain.ID, req domain.UpdateUserRequest) (*domain.ManagedUser, error)
	Delete(ctx context.Context, id domain.ID) error
	ToggleStatus(ctx context.Context, id domain.ID) (*domain.ManagedUser, error)
	Stats(ctx context.Context) (*domain.UserStats, error)
}
