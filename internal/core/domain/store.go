package domain

import "time"

// RagStore is a named retrieval corpus. Chat sessions are bound to a
// store through its RagStoreName.
type RagStore struct {
	ID            ID        `json:"id"`
	Name          string    `json:"name"`
	DisplayName   string    `json:"display_name"`
	Description   string    `json:"description,omitempty"`
	DocumentCount int       `json:"document_count"`
	RagStoreName  string    `json:"rag_store_name"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Label returns the name to show users.
func (s *RagStore) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

// HasDocuments returns true if a chat can be started against the store.
func (s *RagStore) HasDocuments() bool {
	return s.DocumentCount > 0
}

// StoreInput is the body for creating or updating a store.
type StoreInput struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// PermissionLevel is the access a user has to a store.
type PermissionLevel string

// Permission levels.
const (
	PermissionRead  PermissionLevel = "read"
	PermissionWrite PermissionLevel = "write"
	PermissionAdmin PermissionLevel = "admin"
)

// IsValid returns true if the level is recognised.
func (p PermissionLevel) IsValid() bool {
	switch p {
	case PermissionRead, PermissionWrite, PermissionAdmin:
		return true
	default:
		return false
	}
}

// StorePermission grants a user access to a store.
type StorePermission struct {
	UserID     ID              `json:"user_id"`
	UserEmail  string          `json:"user_email,omitempty"`
	Permission PermissionLevel `json:"permission"`
}
