package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

// Chat roles.
const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatSession is a conversation bound to one RAG store.
type ChatSession struct {
	ID           ID        `json:"id"`
	RagStoreName string    `json:"rag_store_name"`
	MessageCount int       `json:"message_count"`
	Title        string    `json:"title,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Part is one text segment of a message.
type Part struct {
	Text string `json:"text"`
}

// RetrievedContext is the document text a model answer cites.
type RetrievedContext struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// GroundingChunk is a citation attached to a model message.
type GroundingChunk struct {
	RetrievedContext *RetrievedContext `json:"retrievedContext,omitempty"`
}

// UnmarshalJSON accepts both the nested {"retrievedContext": {...}} form
// and the flat {"text": ...} form the backend uses in stored history.
func (g *GroundingChunk) UnmarshalJSON(data []byte) error {
	var raw struct {
		RetrievedContext *RetrievedContext `json:"retrievedContext"`
		Snake            *RetrievedContext `json:"retrieved_context"`
		Text             *string           `json:"text"`
		Title            string            `json:"title"`
		URI              string            `json:"uri"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.RetrievedContext != nil:
		g.RetrievedContext = raw.RetrievedContext
	case raw.Snake != nil:
		g.RetrievedContext = raw.Snake
	case raw.Text != nil:
		g.RetrievedContext = &RetrievedContext{Text: *raw.Text, Title: raw.Title, URI: raw.URI}
	default:
		g.RetrievedContext = nil
	}
	return nil
}

// Text returns the cited text, or "" when the chunk carries none.
func (g GroundingChunk) Text() string {
	if g.RetrievedContext == nil {
		return ""
	}
	return g.RetrievedContext.Text
}

// ChatMessage is a message as shown in the conversation.
type ChatMessage struct {
	// ID is assigned locally.
	ID              string           `json:"id"`
	Role            ChatRole         `json:"role"`
	Parts           []Part           `json:"parts"`
	GroundingChunks []GroundingChunk `json:"groundingChunks,omitempty"`
	CreatedAt       time.Time        `json:"created_at,omitempty"`
}

// Text joins all parts of the message.
func (m *ChatMessage) Text() string {
	if len(m.Parts) == 1 {
		return m.Parts[0].Text
	}
	var b strings.Builder
	for _, p := range m.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// SetText replaces the message body with a single part.
func (m *ChatMessage) SetText(text string) {
	m.Parts = []Part{{Text: text}}
}

// SourceFragment is the flat citation form stored in chat history.
type SourceFragment struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

// HistoryMessage is a stored chat message as returned by the backend.
type HistoryMessage struct {
	ID              ID               `json:"id,omitempty"`
	Role            ChatRole         `json:"role"`
	Content         string           `json:"content"`
	GroundingChunks []SourceFragment `json:"grounding_chunks,omitempty"`
	CreatedAt       time.Time        `json:"created_at,omitempty"`
}

// FormatHistory maps stored messages into display messages. Role and
// text are preserved; each fragment is wrapped into a retrieved context.
func FormatHistory(history []HistoryMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(history))
	for _, h := range history {
		msg := ChatMessage{
			ID:        h.ID.String(),
			Role:      h.Role,
			Parts:     []Part{{Text: h.Content}},
			CreatedAt: h.CreatedAt,
		}
		if len(h.GroundingChunks) > 0 {
			msg.GroundingChunks = make([]GroundingChunk, len(h.GroundingChunks))
			for i, f := range h.GroundingChunks {
				msg.GroundingChunks[i] = GroundingChunk{
					RetrievedContext: &RetrievedContext{Text: f.Text, Title: f.Title},
				}
			}
		}
		out = append(out, msg)
	}
	return out
}

// StreamEventType discriminates events on the chat stream.
type StreamEventType string

// Stream event types.
const (
	EventContent   StreamEventType = "content"
	EventGrounding StreamEventType = "grounding"
	EventDone      StreamEventType = "done"
	EventError     StreamEventType = "error"
)

// StreamEvent is one "data: {json}" line from the chat stream.
type StreamEvent struct {
	Type            StreamEventType  `json:"type"`
	Text            string           `json:"text,omitempty"`
	FullText        string           `json:"full_text,omitempty"`
	Message         string           `json:"message,omitempty"`
	Code            string           `json:"code,omitempty"`
	GroundingChunks []GroundingChunk `json:"grounding_chunks,omitempty"`
}

// QueryResponse is the answer to a non-streaming query.
type QueryResponse struct {
	Response        string           `json:"response"`
	GroundingChunks []GroundingChunk `json:"grounding_chunks,omitempty"`
}

// ChatInsights summarises a session.
type ChatInsights struct {
	Summary            string   `json:"summary,omitempty"`
	Topics             []string `json:"topics,omitempty"`
	SuggestedQuestions []string `json:"suggested_questions,omitempty"`
}

// IsEmpty returns true if the insights carry nothing to show.
func (i *ChatInsights) IsEmpty() bool {
	return i == nil || (i.Summary == "" && len(i.Topics) == 0 && len(i.SuggestedQuestions) == 0)
}

// AppStatus is the chat lifecycle state.
type AppStatus int

// Lifecycle states.
const (
	AppWelcome AppStatus = iota
	AppUploading
	AppChatting
	AppError
)

// String returns the state name.
func (s AppStatus) String() string {
	switch s {
	case AppWelcome:
		return "welcome"
	case AppUploading:
		return "uploading"
	case AppChatting:
		return "chatting"
	case AppError:
		return "error"
	default:
		return unknownDescription
	}
}

const unknownDescription = "unknown"

// staleSessionCodes are structured error codes for a session whose store
// is gone or no longer accessible.
var staleSessionCodes = map[string]bool{
	"RAG_STORE_NOT_FOUND":    true,
	"RAG_STORE_INACCESSIBLE": true,
	"PERMISSION_DENIED":      true,
	"INVALID_ARGUMENT":       true,
}

// staleSessionPhrases are matched against free-text errors when the
// backend sends no code.
var staleSessionPhrases = []string{
	"RAG store não existe",
	"não está acessível",
	"INVALID_ARGUMENT",
	"PERMISSION_DENIED",
}

// IsStaleSessionError reports whether a stream error means the session's
// store was deleted or revoked. A recognised structured code decides
// immediately; otherwise the message text is matched.
func IsStaleSessionError(code, message string) bool {
	if staleSessionCodes[strings.ToUpper(code)] {
		return true
	}
	for _, phrase := range staleSessionPhrases {
		if strings.Contains(message, phrase) {
			return true
		}
	}
	return false
}
