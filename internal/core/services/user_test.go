package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

type fakeUserAPI struct {
	created []domain.CreateUserRequest
	updated map[domain.ID]domain.UpdateUserRequest
	toggled []domain.ID
}

var _ driven.UserAPI = (*fakeUserAPI)(nil)

func (f *fakeUserAPI) ListUsers(context.Context) ([]domain.ManagedUser, error) { return nil, nil }

func (f *fakeUserAPI) CreateUser(_ context.Context, req domain.CreateUserRequest) (*domain.ManagedUser, error) {
	f.created = append(f.created, req)
	return &domain.ManagedUser{AuthUser: domain.AuthUser{ID: "9", Email: req.Email, Role: req.Role}}, nil
}

func (f *fakeUserAPI) UpdateUser(_ context.Context, id domain.ID, req domain.UpdateUserRequest) (*domain.ManagedUser, error) {
	if f.updated == nil {
		f.updated = make(map[domain.ID]domain.UpdateUserRequest)
	}
	f.updated[id] = req
	return &domain.ManagedUser{AuthUser: domain.AuthUser{ID: id}}, nil
}

func (f *fakeUserAPI) DeleteUser(context.Context, domain.ID) error { return nil }

func (f *fakeUserAPI) ToggleUserStatus(_ context.Context, id domain.ID) (*domain.ManagedUser, error) {
	f.toggled = append(f.toggled, id)
	return &domain.ManagedUser{AuthUser: domain.AuthUser{ID: id, IsActive: len(f.toggled)%2 == 1}}, nil
}

func (f *fakeUserAPI) GetUserStats(context.Context) (*domain.UserStats, error) {
	return &domain.UserStats{Total: 2, Active: 1, Inactive: 1}, nil
}

func TestUserService_Create(t *testing.T) {
	api := &fakeUserAPI{}
	svc := NewUserService(api)

	u, err := svc.Create(context.Background(), domain.CreateUserRequest{Email: " bia@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, u.Role)
	assert.Equal(t, "bia@example.com", api.created[0].Email)
}

func TestUserService_Create_Invalid(t *testing.T) {
	svc := NewUserService(&fakeUserAPI{})

	tests := []domain.CreateUserRequest{
		{Email: "", Password: "pw"},
		{Email: "a@b.c", Password: ""},
		{Email: "a@b.c", Password: "pw", Role: "dean"},
	}
	for _, req := range tests {
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestUserService_Update(t *testing.T) {
	api := &fakeUserAPI{}
	svc := NewUserService(api)
	ctx := context.Background()

	_, err := svc.Update(ctx, "9", domain.UpdateUserRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := domain.UserRole("dean")
	_, err = svc.Update(ctx, "9", domain.UpdateUserRequest{Role: &bad})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	role := domain.RoleProfessor
	_, err = svc.Update(ctx, "9", domain.UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProfessor, *api.updated["9"].Role)
}

func TestUserService_ToggleStatus(t *testing.T) {
	api := &fakeUserAPI{}
	svc := NewUserService(api)

	_, err := svc.ToggleStatus(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	u, err := svc.ToggleStatus(context.Background(), "9")
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}
