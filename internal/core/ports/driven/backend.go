package driven

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// AuthAPI is the backend's authentication surface.
// Login, Register and Refresh are unauthenticated calls.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.TokenResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.AuthUser, error)
}

// DocumentAPI manages uploaded documents.
type DocumentAPI interface {
	// UploadDocument sends the file and returns the created document
	// (status uploaded). onProgress may be nil.
	UploadDocument(ctx context.Context, req domain.UploadRequest, onProgress domain.UploadProgressFunc) (*domain.Document, error)
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
	GetDocument(ctx context.Context, id domain.ID) (*domain.Document, error)
	DeleteDocument(ctx context.Context, id domain.ID) error
	MoveDocument(ctx context.Context, id, storeID domain.ID) (*domain.Document, error)
}

// StoreAPI manages RAG stores and their permissions.
type StoreAPI interface {
	ListStores(ctx context.Context) ([]domain.RagStore, error)
	GetStore(ctx context.Context, id domain.ID) (*domain.RagStore, error)
	CreateStore(ctx context.Context, in domain.StoreInput) (*domain.RagStore, error)
	UpdateStore(ctx context.Context, id domain.ID, in domain.StoreInput) (*domain.RagStore, error)
	DeleteStore(ctx context.Context, id domain.ID) error
	ListPermissions(ctx context.Context, storeID domain.ID) ([]domain.StorePermission, error)
	GrantPermission(ctx context.Context, storeID domain.ID, perm domain.StorePermission) (*domain.StorePermission, error)
	RevokePermission(ctx context.Context, storeID, userID domain.ID) error
}

// ChatAPI manages chat sessions and queries.
type ChatAPI interface {
	CreateSession(ctx context.Context, ragStoreName string) (*domain.ChatSession, error)
	ListSessions(ctx context.Context) ([]domain.ChatSession, error)
	GetSession(ctx context.Context, id domain.ID) (*domain.ChatSession, error)
	GetMessages(ctx context.Context, id domain.ID) ([]domain.HistoryMessage, error)
	Query(ctx context.Context, id domain.ID, message string) (*domain.QueryResponse, error)
	// QueryStream posts the message and dispatches stream events to h
	// until the stream ends. The response body is always released.
	QueryStream(ctx context.Context, id domain.ID, message string, h StreamHandlers) error
	DeleteSession(ctx context.Context, id domain.ID) error
	GetInsights(ctx context.Context, id domain.ID) (*domain.ChatInsights, error)
}

// SettingsAPI manages backend-wide settings.
type SettingsAPI interface {
	GetSystemPrompt(ctx context.Context) (*domain.SystemPrompt, error)
	UpdateSystemPrompt(ctx context.Context, prompt string) (*domain.SystemPrompt, error)
	ResetSystemPrompt(ctx context.Context) (*domain.SystemPrompt, error)
	GetGeneralSettings(ctx context.Context) (domain.GeneralSettings, error)
	UpdateGeneralSettings(ctx context.Context, settings domain.GeneralSettings) (domain.GeneralSettings, error)
	ResetGeneralSettings(ctx context.Context) (domain.GeneralSettings, error)
}

// AnalyticsAPI reads usage analytics.
type AnalyticsAPI interface {
	GetDashboard(ctx context.Context) (*domain.DashboardSummary, error)
	GetStats(ctx context.Context) (domain.UsageStats, error)
	GetActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
	GetTopQueries(ctx context.Context, limit int) ([]domain.QueryStat, error)
	TrackEvent(ctx context.Context, event domain.TrackedEvent) error
}

// UserAPI manages user accounts (administrators only).
type UserAPI interface {
	ListUsers(ctx context.Context) ([]domain.ManagedUser, error)
	CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.ManagedUser, error)
	UpdateUser(ctx context.Context, id domain.ID, req domain.UpdateUserRequest) (*domain.ManagedUser, error)
	DeleteUser(ctx context.Context, id domain.ID) error
	ToggleUserStatus(ctx context.Context, id domain.ID) (*domain.ManagedUser, error)
	GetUserStats(ctx context.Context) (*domain.UserStats, error)
}

// HealthChecker checks backend liveness.
type HealthChecker interface {
	Health(ctx context.Context) (map[string]any, error)
}
