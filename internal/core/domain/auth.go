package domain

import "time"

// UserRole is the authorisation tier of a user.
type UserRole string

// User roles.
const (
	RoleStudent   UserRole = "student"
	RoleProfessor UserRole = "professor"
	RoleAdmin     UserRole = "admin"
)

// IsValid returns true if the role is recognised.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleProfessor, RoleAdmin:
		return true
	default:
		return false
	}
}

// AuthUser is the signed-in user as reported by the backend.
type AuthUser struct {
	ID       ID       `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
	IsActive bool     `json:"is_active"`
}

// IsAdmin returns true for administrators.
func (u *AuthUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Credentials is the body of a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of a registration request.
type RegisterRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role,omitempty"`
}

// TokenResponse is returned by login, register and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	User         *AuthUser `json:"user,omitempty"`
}

// AuthSession is the persisted sign-in state: the token pair and the
// cached user. It is created on login, replaced on refresh and removed
// as a whole on logout.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	User         *AuthUser `json:"user,omitempty"`
	// Expiry is when the access token expires. Zero when unknown.
	Expiry    time.Time `json:"expiry,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAuthenticated returns true if an access token is present.
func (s *AuthSession) IsAuthenticated() bool {
	return s != nil && s.AccessToken != ""
}

// IsExpired returns true if the access token has expired.
func (s *AuthSession) IsExpired() bool {
	if s.Expiry.IsZero() {
		return false
	}
	return time.Now().After(s.Expiry)
}

// ExpiresWithin returns true if the access token expires inside window.
// Sessions with unknown expiry never report true.
func (s *AuthSession) ExpiresWithin(window time.Duration) bool {
	if s.Expiry.IsZero() {
		return false
	}
	return time.Until(s.Expiry) <= window
}

// HasRefreshToken returns true if a refresh token is available.
func (s *AuthSession) HasRefreshToken() bool {
	return s != nil && s.RefreshToken != ""
}

// UserID returns the cached user's id, or "" when unknown.
func (s *AuthSession) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID.String()
}
