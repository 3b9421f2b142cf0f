package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// mockStoreService is a mock implementation of driving.StoreService.
type mockStoreService struct {
	stores []domain.RagStore
	err    error
}

func (m *mockStoreService) List(_ context.Context) ([]domain.RagStore, error) {
	return m.stores, m.err
}

func (m *mockStoreService) Get(ctx context.Context, id domain.ID) (*domain.RagStore, error) {
	return m.Find(ctx, id.String())
}

func (m *mockStoreService) Find(_ context.Context, ref string) (*domain.RagStore, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.stores {
		if m.stores[i].ID.String() == ref || m.stores[i].Name == ref {
			return &m.stores[i], nil
		}
	}
	return nil, fmt.Errorf("store %q: %w", ref, domain.ErrNotFound)
}

func (m *mockStoreService) Create(_ context.Context, _ domain.StoreInput) (*domain.RagStore, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockStoreService) Update(_ context.Context, _ domain.ID, _ domain.StoreInput) (*domain.RagStore, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockStoreService) Delete(_ context.Context, _ domain.ID) error {
	return domain.ErrNotImplemented
}

func (m *mockStoreService) ListPermissions(_ context.Context, _ domain.ID) ([]domain.StorePermission, error) {
	return nil, nil
}

func (m *mockStoreService) Grant(_ context.Context, _, _ domain.ID, _ domain.PermissionLevel) (*domain.StorePermission, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockStoreService) Revoke(_ context.Context, _, _ domain.ID) error {
	return domain.ErrNotImplemented
}

// mockChatService is a mock implementation of driving.ChatService. Only
// Ask is exercised by the server.
type mockChatService struct {
	answer   *domain.ChatMessage
	err      error
	store    *domain.RagStore
	question string
}

func (m *mockChatService) Ask(_ context.Context, store *domain.RagStore, question string) (*domain.ChatMessage, error) {
	m.store = store
	m.question = question
	return m.answer, m.err
}

func (m *mockChatService) State() domain.AppStatus        { return domain.AppWelcome }
func (m *mockChatService) Session() *domain.ChatSession   { return nil }
func (m *mockChatService) Store() *domain.RagStore        { return nil }
func (m *mockChatService) Messages() []domain.ChatMessage { return nil }
func (m *mockChatService) Insights() *domain.ChatInsights { return nil }
func (m *mockChatService) LastError() error               { return nil }
func (m *mockChatService) Fail(_ error)                   {}
func (m *mockChatService) Reset()                         {}

func (m *mockChatService) StartWithStore(_ context.Context, _ *domain.RagStore) error {
	return domain.ErrNotImplemented
}

func (m *mockChatService) Send(_ context.Context, _ string, _ func(domain.ChatMessage)) (*domain.ChatMessage, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockChatService) End(_ context.Context) error { return nil }

func (m *mockChatService) UploadAndStart(_ context.Context, _ *domain.RagStore, _ []domain.UploadRequest, _ func(driving.UploadStep)) error {
	return domain.ErrNotImplemented
}

func (m *mockChatService) ListSessions(_ context.Context) ([]domain.ChatSession, error) {
	return nil, nil
}

func (m *mockChatService) History(_ context.Context, _ domain.ID) ([]domain.ChatMessage, error) {
	return nil, nil
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	filter    domain.DocumentFilter
	err       error
}

func (m *mockDocumentService) Upload(_ context.Context, _ domain.UploadRequest, _ domain.UploadProgressFunc) (*domain.Document, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockDocumentService) WaitForProcessing(_ context.Context, _ domain.ID, _ domain.ProcessingProgressFunc) (*domain.Document, error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockDocumentService) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	m.filter = filter
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ domain.ID) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ domain.ID) error {
	return m.err
}

func (m *mockDocumentService) Move(_ context.Context, _, _ domain.ID) (*domain.Document, error) {
	return nil, domain.ErrNotImplemented
}

func testStores() *mockStoreService {
	return &mockStoreService{
		stores: []domain.RagStore{
			{ID: "store-1", Name: "calculus", DisplayName: "Calculus I", DocumentCount: 3, RagStoreName: "ragStores/calc"},
			{ID: "store-2", Name: "empty"},
		},
	}
}
