package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// UploadStep reports progress of one file in an upload-and-chat flow.
type UploadStep struct {
	File     string
	Index    int
	Total    int
	Progress int
	Status   domain.DocumentStatus
	Message  string
}

// ChatService drives the chat lifecycle: Welcome, Uploading, Chatting, Error.
type ChatService interface {
	// State returns the current lifecycle state.
	State() domain.AppStatus

	// Session returns the active session, or nil.
	Session() *domain.ChatSession

	// Store returns the store the active chat is bound to, or nil.
	Store() *domain.RagStore

	// Messages returns a copy of the conversation.
	Messages() []domain.ChatMessage

	// Insights returns the insights loaded for the active session.
	Insights() *domain.ChatInsights

	// LastError returns the error that moved the chat into the Error state.
	LastError() error

	// StartWithStore creates or reuses a session for the store and loads
	// its history. Returns domain.ErrStoreEmpty without contacting the
	// backend when the store has no documents.
	StartWithStore(ctx context.Context, store *domain.RagStore) error

	// Send appends the user message and a model placeholder, then streams
	// the answer. onUpdate observes the placeholder after every change.
	// Returns domain.ErrStaleSession after tearing down an orphaned session.
	Send(ctx context.Context, text string, onUpdate func(domain.ChatMessage)) (*domain.ChatMessage, error)

	// End deletes the session (best-effort) and returns to Welcome.
	End(ctx context.Context) error

	// UploadAndStart uploads files into the store, waits for processing and
	// starts a chat. Failures move the chat into the Error state.
	UploadAndStart(ctx context.Context, store *domain.RagStore, uploads []domain.UploadRequest, onStep func(UploadStep)) error

	// Ask answers one question against a store with a throwaway session.
	Ask(ctx context.Context, store *domain.RagStore, question string) (*domain.ChatMessage, error)

	// ListSessions returns the user's sessions on the backend.
	ListSessions(ctx context.Context) ([]domain.ChatSession, error)

	// History returns the formatted messages of any session.
	History(ctx context.Context, sessionID domain.ID) ([]domain.ChatMessage, error)

	// Fail moves the chat into the Error state.
	Fail(err error)

	// Reset discards local chat state without contacting the backend.
	Reset()
}
