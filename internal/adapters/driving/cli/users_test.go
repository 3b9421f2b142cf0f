package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

func TestUsersListCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	last := time.Now().Add(-time.Hour)
	mocks.users.users = append(mocks.users.users, domain.ManagedUser{
		AuthUser:  domain.AuthUser{ID: "user-2", Email: "bo@example.com", Role: domain.RoleAdmin},
		LastLogin: &last,
	})

	out, err := execute(t, "users", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "LAST LOGIN")
	assert.Contains(t, out, "ana@example.com")
	assert.Contains(t, out, "bo@example.com")
	assert.Contains(t, out, "an hour ago")
}

func TestUsersListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.users.users = nil

	out, err := execute(t, "users", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No users")
}

func TestUsersCreateCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "users", "create", "--email", "prof@example.com", "--password", "pw", "--role", "professor")

	require.NoError(t, err)
	assert.Contains(t, out, "Created prof@example.com (user-7) with role professor")
	assert.Equal(t, domain.RoleProfessor, mocks.users.created.Role)
}

func TestUsersCreateCmd_PromptsForMissingValues(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("new@example.com\nsecret\n"))
	out, err := execute(t, "users", "create")

	require.NoError(t, err)
	assert.Contains(t, out, "with role student")
	assert.Equal(t, "new@example.com", mocks.users.created.Email)
	assert.Equal(t, "secret", mocks.users.created.Password)
}

func TestUsersUpdateCmd_OnlyChangedFields(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "users", "update", "user-1", "--email", "ana@uni.edu")

	require.NoError(t, err)
	assert.Contains(t, out, "Updated ana@uni.edu (user-1)")
	require.NotNil(t, mocks.users.updated.Email)
	assert.Equal(t, "ana@uni.edu", *mocks.users.updated.Email)
	assert.Nil(t, mocks.users.updated.Role)
	assert.Nil(t, mocks.users.updated.Password)
}

func TestUsersDeleteCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "users", "delete", "user-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted user user-1")
	assert.Equal(t, []domain.ID{"user-1"}, mocks.users.deleted)
}

func TestUsersToggleCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "users", "toggle", "user-2")

	require.NoError(t, err)
	assert.Contains(t, out, "bo@example.com deactivated")
}

func TestUsersStatsCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "users", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Total:    10")
	assert.Contains(t, out, "Inactive: 2")
	assert.Contains(t, out, "student")
	assert.NotContains(t, out, "professor")
}

func TestUsersCmd_ServiceNotConfigured(t *testing.T) {
	old := userService
	userService = nil
	defer func() { userService = old }()

	_, err := execute(t, "users", "stats")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user service not configured")
}
