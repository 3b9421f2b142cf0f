package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// Ensure UserService implements the interface.
var _ driving.UserService = (*UserService)(nil)

// UserService administers user accounts.
type UserService struct {
	api driven.UserAPI
}

// NewUserService creates a user service.
func NewUserService(api driven.UserAPI) *UserService {
	return &UserService{api: api}
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]domain.ManagedUser, error) {
	return s.api.ListUsers(ctx)
}

// Create creates a user. The role defaults to student.
func (s *UserService) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.ManagedUser, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if req.Role == "" {
		req.Role = domain.RoleStudent
	}
	if !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, req.Role)
	}
	return s.api.CreateUser(ctx, req)
}

// Update changes the fields set in req.
func (s *UserService) Update(ctx context.Context, id domain.ID, req domain.UpdateUserRequest) (*domain.ManagedUser, error) {
	if id.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if req.Role != nil && !req.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *req.Role)
	}
	if req.Email == nil && req.Name == nil && req.Password == nil && req.Role == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	return s.api.UpdateUser(ctx, id, req)
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id domain.ID) error {
	if id.IsZero() {
		return domain.ErrInvalidInput
	}
	return s.api.DeleteUser(ctx, id)
}

// ToggleStatus activates or deactivates a user.
func (s *UserService) ToggleStatus(ctx context.Context, id domain.ID) (*domain.ManagedUser, error) {
	if id.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	return s.api.ToggleUserStatus(ctx, id)
}

// Stats returns account counters.
func (s *UserService) Stats(ctx context.Context) (*domain.UserStats, error) {
	return s.api.GetUserStats(ctx)
}
