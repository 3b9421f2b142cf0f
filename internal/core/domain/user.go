package domain

import "time"

// ManagedUser is a user as seen by administrators.
type ManagedUser struct {
	AuthUser
	CreatedAt time.Time  `json:"created_at,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// CreateUserRequest is the body for creating a user.
type CreateUserRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Email    *string   `json:"email,omitempty"`
	Name     *string   `json:"name,omitempty"`
	Password *string   `json:"password,omitempty"`
	Role     *UserRole `json:"role,omitempty"`
}

// UserStats summarises the user base.
type UserStats struct {
	Total    int              `json:"total"`
	Active   int              `json:"active"`
	Inactive int              `json:"inactive"`
	ByRole   map[UserRole]int `json:"by_role,omitempty"`
}
