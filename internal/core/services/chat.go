package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

var chatLog = logger.With("chat")

// Analytics event types reported by the chat.
const (
	EventChatStarted = "chat_started"
	EventChatQuery   = "chat_query"
	EventChatEnded   = "chat_ended"
)

// EventTracker reports client events. driving.AnalyticsService satisfies it.
type EventTracker interface {
	Track(ctx context.Context, eventType string, data map[string]any)
}

// ChatDeps are the collaborators of a ChatService. Sessions and Events
// may be nil.
type ChatDeps struct {
	Chat      driven.ChatAPI
	Stores    driven.StoreAPI
	Documents driving.DocumentService
	Tokens    driven.TokenProvider
	Sessions  driven.ChatSessionStore
	Events    EventTracker
}

// ChatService drives one conversation at a time through the
// Welcome, Uploading, Chatting and Error states.
type ChatService struct {
	deps  ChatDeps
	newID func() string
	now   func() time.Time

	mu       sync.RWMutex
	state    domain.AppStatus
	session  *domain.ChatSession
	store    *domain.RagStore
	messages []domain.ChatMessage
	insights *domain.ChatInsights
	lastErr  error
}

// NewChatService creates a chat service in the Welcome state.
func NewChatService(deps ChatDeps) *ChatService {
	return &ChatService{
		deps:  deps,
		newID: uuid.NewString,
		now:   time.Now,
		state: domain.AppWelcome,
	}
}

// State returns the lifecycle state.
func (s *ChatService) State() domain.AppStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Session returns a copy of the active session, or nil.
func (s *ChatService) Session() *domain.ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	c := *s.session
	return &c
}

// Store returns a copy of the store the chat is bound to, or nil.
func (s *ChatService) Store() *domain.RagStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil
	}
	c := *s.store
	return &c
}

// Messages returns a copy of the conversation.
func (s *ChatService) Messages() []domain.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatMessage, len(s.messages))
	for i := range s.messages {
		out[i] = copyMessage(s.messages[i])
	}
	return out
}

// Insights returns the insights of the active session, or nil.
func (s *ChatService) Insights() *domain.ChatInsights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.insights == nil {
		return nil
	}
	c := *s.insights
	return &c
}

// LastError returns the error behind the Error state.
func (s *ChatService) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// StartWithStore opens a chat against store. A store without documents is
// rejected with domain.ErrStoreEmpty before any backend call. The cached
// session for the user and store is reused while the backend still knows
// it; otherwise a new session is created.
func (s *ChatService) StartWithStore(ctx context.Context, store *domain.RagStore) error {
	if store == nil {
		return fmt.Errorf("%w: no store selected", domain.ErrInvalidInput)
	}
	if !store.HasDocuments() {
		return fmt.Errorf("%s: %w", store.Label(), domain.ErrStoreEmpty)
	}
	if store.RagStoreName == "" {
		return fmt.Errorf("%w: store %s has no rag store name", domain.ErrInvalidInput, store.Label())
	}

	userID := s.userID(ctx)
	session, err := s.resumeOrCreate(ctx, userID, store.RagStoreName)
	if err != nil {
		return err
	}

	history, err := s.deps.Chat.GetMessages(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	insights, err := s.deps.Chat.GetInsights(ctx, session.ID)
	if err != nil {
		chatLog.Debug("insights for %s: %v", session.ID, err)
		insights = nil
	}

	if s.deps.Sessions != nil && userID != "" {
		if err := s.deps.Sessions.Save(ctx, userID, *session); err != nil {
			chatLog.Warn("caching session: %v", err)
		}
	}

	storeCopy := *store
	s.mu.Lock()
	s.state = domain.AppChatting
	s.session = session
	s.store = &storeCopy
	s.messages = domain.FormatHistory(history)
	s.insights = insights
	s.lastErr = nil
	s.mu.Unlock()

	s.track(ctx, EventChatStarted, map[string]any{
		"session_id": session.ID.String(),
		"rag_store":  store.RagStoreName,
	})
	return nil
}

func (s *ChatService) resumeOrCreate(ctx context.Context, userID, ragStoreName string) (*domain.ChatSession, error) {
	if s.deps.Sessions != nil && userID != "" {
		cached, err := s.deps.Sessions.Get(ctx, userID, ragStoreName)
		if err != nil {
			chatLog.Warn("reading cached session: %v", err)
		}
		if cached != nil {
			remote, err := s.deps.Chat.GetSession(ctx, cached.ID)
			switch {
			case err == nil:
				chatLog.Debug("resuming session %s", remote.ID)
				if remote.RagStoreName == "" {
					remote.RagStoreName = ragStoreName
				}
				return remote, nil
			case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
				chatLog.Debug("cached session %s is gone", cached.ID)
				s.forgetSession(ctx, cached.ID)
			default:
				return nil, fmt.Errorf("checking session: %w", err)
			}
		}
	}

	session, err := s.deps.Chat.CreateSession(ctx, ragStoreName)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	if session.RagStoreName == "" {
		session.RagStoreName = ragStoreName
	}
	return session, nil
}

// Send appends the user's message and a model placeholder, then streams
// the answer into the placeholder. onUpdate observes the placeholder after
// every change. A stream error that means the session's store is gone
// tears the chat down and returns domain.ErrStaleSession; any other stream
// error becomes the placeholder text.
func (s *ChatService) Send(
	ctx context.Context,
	text string,
	onUpdate func(domain.ChatMessage),
) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	if s.session == nil || s.state != domain.AppChatting {
		s.mu.Unlock()
		return nil, domain.ErrNoActiveSession
	}
	sessionID := s.session.ID
	ragStoreName := s.session.RagStoreName
	now := s.now()
	user := domain.ChatMessage{ID: s.newID(), Role: domain.RoleUser, CreatedAt: now}
	user.SetText(text)
	placeholder := domain.ChatMessage{ID: s.newID(), Role: domain.RoleModel, Parts: []domain.Part{{}}, CreatedAt: now}
	s.messages = append(s.messages, user, placeholder)
	s.mu.Unlock()

	notify := func(m domain.ChatMessage, ok bool) {
		if ok && onUpdate != nil {
			onUpdate(m)
		}
	}
	notify(copyMessage(placeholder), true)

	var (
		running strings.Builder
		errMsg  string
		errCode string
		failed  bool
	)
	handlers := driven.StreamHandlers{
		OnContent: func(fragment string) {
			running.WriteString(fragment)
			full := running.String()
			notify(s.patch(placeholder.ID, func(m *domain.ChatMessage) { m.SetText(full) }))
		},
		OnGrounding: func(chunks []domain.GroundingChunk) {
			notify(s.patch(placeholder.ID, func(m *domain.ChatMessage) { m.GroundingChunks = chunks }))
		},
		OnDone: func(fullText string, chunks []domain.GroundingChunk) {
			notify(s.patch(placeholder.ID, func(m *domain.ChatMessage) {
				m.SetText(fullText)
				m.GroundingChunks = chunks
			}))
		},
		OnError: func(message, code string) {
			failed, errMsg, errCode = true, message, code
		},
	}

	streamErr := s.deps.Chat.QueryStream(ctx, sessionID, text, handlers)
	if streamErr != nil && !failed {
		if errors.Is(streamErr, domain.ErrNotFound) || domain.IsStaleSessionError("", domain.ErrorMessage(streamErr)) {
			return nil, s.teardownStale(ctx, sessionID, domain.ErrorMessage(streamErr))
		}
		msg, ok := s.patch(placeholder.ID, func(m *domain.ChatMessage) { m.SetText(domain.ErrorMessage(streamErr)) })
		notify(msg, ok)
		return &msg, streamErr
	}

	if failed {
		if domain.IsStaleSessionError(errCode, errMsg) {
			return nil, s.teardownStale(ctx, sessionID, errMsg)
		}
		if errMsg == "" {
			errMsg = "the assistant could not answer"
		}
		msg, ok := s.patch(placeholder.ID, func(m *domain.ChatMessage) { m.SetText(errMsg) })
		notify(msg, ok)
		return &msg, nil
	}

	s.mu.Lock()
	if s.session != nil && s.session.ID == sessionID {
		s.session.MessageCount += 2
	}
	s.mu.Unlock()

	msg, _ := s.patch(placeholder.ID, func(*domain.ChatMessage) {})
	s.track(ctx, EventChatQuery, map[string]any{
		"session_id": sessionID.String(),
		"rag_store":  ragStoreName,
		"sources":    len(msg.GroundingChunks),
	})
	return &msg, nil
}

// teardownStale drops the orphaned session locally and remotely and
// returns the error reported to the caller.
func (s *ChatService) teardownStale(ctx context.Context, sessionID domain.ID, reason string) error {
	chatLog.Info("session %s is orphaned: %s", sessionID, reason)
	s.Reset()
	if err := s.deps.Chat.DeleteSession(ctx, sessionID); err != nil {
		chatLog.Debug("deleting orphaned session: %v", err)
	}
	s.forgetSession(ctx, sessionID)
	if reason == "" {
		return domain.ErrStaleSession
	}
	return fmt.Errorf("%w: %s", domain.ErrStaleSession, reason)
}

// End deletes the session server-side (best-effort) and returns to Welcome.
func (s *ChatService) End(ctx context.Context) error {
	s.mu.RLock()
	var sessionID domain.ID
	if s.session != nil {
		sessionID = s.session.ID
	}
	s.mu.RUnlock()

	s.Reset()
	if sessionID.IsZero() {
		return nil
	}

	if err := s.deps.Chat.DeleteSession(ctx, sessionID); err != nil {
		chatLog.Warn("deleting session %s: %v", sessionID, err)
	}
	s.forgetSession(ctx, sessionID)
	s.track(ctx, EventChatEnded, map[string]any{"session_id": sessionID.String()})
	return nil
}

// UploadAndStart uploads files, waits for each to be processed, moves
// them into store and starts a chat on the refreshed store. Any failure
// moves the chat into the Error state.
func (s *ChatService) UploadAndStart(
	ctx context.Context,
	store *domain.RagStore,
	uploads []domain.UploadRequest,
	onStep func(driving.UploadStep),
) error {
	if store == nil || len(uploads) == 0 {
		return fmt.Errorf("%w: a store and at least one file are required", domain.ErrInvalidInput)
	}
	if onStep == nil {
		onStep = func(driving.UploadStep) {}
	}

	storeCopy := *store
	s.mu.Lock()
	s.state = domain.AppUploading
	s.store = &storeCopy
	s.lastErr = nil
	s.mu.Unlock()

	for i, up := range uploads {
		step := driving.UploadStep{File: up.Name, Index: i, Total: len(uploads)}

		doc, err := s.deps.Documents.Upload(ctx, up, func(percent int) {
			step.Progress = percent / 10 // sending is the first tenth
			step.Status = domain.StatusUploaded
			onStep(step)
		})
		if err != nil {
			return s.failWith(err)
		}

		doc, err = s.deps.Documents.WaitForProcessing(ctx, doc.ID, func(progress int, status domain.DocumentStatus, message string) {
			step.Progress, step.Status, step.Message = progress, status, message
			onStep(step)
		})
		if err != nil {
			return s.failWith(err)
		}
		if doc.Status == domain.StatusError {
			msg := doc.StatusMessage
			if msg == "" {
				msg = "processing failed"
			}
			return s.failWith(fmt.Errorf("%s: %s", up.Name, msg))
		}

		if doc.RagStoreID != store.ID {
			if _, err := s.deps.Documents.Move(ctx, doc.ID, store.ID); err != nil {
				return s.failWith(fmt.Errorf("moving %s into %s: %w", up.Name, store.Label(), err))
			}
		}
	}

	refreshed, err := s.deps.Stores.GetStore(ctx, store.ID)
	if err != nil {
		return s.failWith(fmt.Errorf("refreshing store: %w", err))
	}
	// The backend may count documents lazily.
	if refreshed.DocumentCount < len(uploads) {
		refreshed.DocumentCount = store.DocumentCount + len(uploads)
	}

	if err := s.StartWithStore(ctx, refreshed); err != nil {
		return s.failWith(err)
	}
	return nil
}

func (s *ChatService) failWith(err error) error {
	s.Fail(err)
	return err
}

// Ask answers a single question against store with a throwaway session.
func (s *ChatService) Ask(ctx context.Context, store *domain.RagStore, question string) (*domain.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if store == nil || question == "" {
		return nil, fmt.Errorf("%w: a store and a question are required", domain.ErrInvalidInput)
	}
	if !store.HasDocuments() {
		return nil, fmt.Errorf("%s: %w", store.Label(), domain.ErrStoreEmpty)
	}

	session, err := s.deps.Chat.CreateSession(ctx, store.RagStoreName)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	defer func() {
		// The caller's context may be done by now.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := s.deps.Chat.DeleteSession(cleanupCtx, session.ID); err != nil {
			chatLog.Debug("deleting ask session: %v", err)
		}
	}()

	resp, err := s.deps.Chat.Query(ctx, session.ID, question)
	if err != nil {
		return nil, err
	}

	answer := domain.ChatMessage{
		ID:              s.newID(),
		Role:            domain.RoleModel,
		GroundingChunks: resp.GroundingChunks,
		CreatedAt:       s.now(),
	}
	answer.SetText(resp.Response)

	s.track(ctx, EventChatQuery, map[string]any{
		"session_id": session.ID.String(),
		"rag_store":  store.RagStoreName,
		"sources":    len(resp.GroundingChunks),
	})
	return &answer, nil
}

// ListSessions returns the user's sessions on the backend.
func (s *ChatService) ListSessions(ctx context.Context) ([]domain.ChatSession, error) {
	return s.deps.Chat.ListSessions(ctx)
}

// History returns the formatted messages of any session.
func (s *ChatService) History(ctx context.Context, sessionID domain.ID) ([]domain.ChatMessage, error) {
	if sessionID.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	history, err := s.deps.Chat.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return domain.FormatHistory(history), nil
}

// Fail moves the chat into the Error state.
func (s *ChatService) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.AppError
	s.lastErr = err
}

// Reset discards local chat state and returns to Welcome.
func (s *ChatService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.AppWelcome
	s.session = nil
	s.store = nil
	s.messages = nil
	s.insights = nil
	s.lastErr = nil
}

// patch applies fn to the message with id and returns a copy. It reports
// false when the message is gone, e.g. after Reset.
func (s *ChatService) patch(id string, fn func(*domain.ChatMessage)) (domain.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			fn(&s.messages[i])
			return copyMessage(s.messages[i]), true
		}
	}
	return domain.ChatMessage{}, false
}

func (s *ChatService) userID(ctx context.Context) string {
	if s.deps.Tokens == nil {
		return ""
	}
	session, err := s.deps.Tokens.Session(ctx)
	if err != nil {
		chatLog.Debug("reading session: %v", err)
		return ""
	}
	return session.UserID()
}

func (s *ChatService) forgetSession(ctx context.Context, id domain.ID) {
	if s.deps.Sessions == nil {
		return
	}
	if err := s.deps.Sessions.Delete(ctx, id.String()); err != nil {
		chatLog.Warn("dropping cached session: %v", err)
	}
}

func (s *ChatService) track(ctx context.Context, event string, data map[string]any) {
	if s.deps.Events != nil {
		s.deps.Events.Track(ctx, event, data)
	}
}

func copyMessage(m domain.ChatMessage) domain.ChatMessage {
	m.Parts = append([]domain.Part(nil), m.Parts...)
	m.GroundingChunks = append([]domain.GroundingChunk(nil), m.GroundingChunks...)
	return m
}
