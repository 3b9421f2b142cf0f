package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

type queryRequest struct {
	Message string `json:"message"`
}

// CreateSession opens a chat session bound to a RAG store.
func (c *Client) CreateSession(ctx context.Context, ragStoreName string) (*domain.ChatSession, error) {
	body := map[string]string{"rag_store_name": ragStoreName}
	var out domain.ChatSession
	if err := c.doJSON(ctx, http.MethodPost, "/chat/sessions", nil, body, &out, true); err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return &out, nil
}

// ListSessions returns the user's chat sessions.
func (c *Client) ListSessions(ctx context.Context) ([]domain.ChatSession, error) {
	var out []domain.ChatSession
	if err := c.get(ctx, "/chat/sessions", nil, &out); err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	return out, nil
}

// GetSession returns one chat session.
func (c *Client) GetSession(ctx context.Context, id domain.ID) (*domain.ChatSession, error) {
	var out domain.ChatSession
	if err := c.get(ctx, "/chat/sessions/"+escape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get chat session %s: %w", id, err)
	}
	return &out, nil
}

// GetMessages returns the stored history of a session.
func (c *Client) GetMessages(ctx context.Context, id domain.ID) ([]domain.HistoryMessage, error) {
	var out []domain.HistoryMessage
	if err := c.get(ctx, "/chat/sessions/"+escape(id)+"/messages", nil, &out); err != nil {
		return nil, fmt.Errorf("get chat messages: %w", err)
	}
	return out, nil
}

// Query asks a question and waits for the whole answer.
func (c *Client) Query(ctx context.Context, id domain.ID, message string) (*domain.QueryResponse, error) {
	var out domain.QueryResponse
	path := "/chat/sessions/" + escape(id) + "/query"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, queryRequest{Message: message}, &out, true); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return &out, nil
}

// QueryStream asks a question and dispatches the answer as it streams in.
// The stream has no client-side timeout; cancel ctx to abandon it.
func (c *Client) QueryStream(ctx context.Context, id domain.ID, message string, h driven.StreamHandlers) error {
	build, err := c.jsonRequest(http.MethodPost, "/chat/sessions/"+escape(id)+"/query-stream", nil, queryRequest{Message: message})
	if err != nil {
		return err
	}
	streamBuild := func(ctx context.Context) (*http.Request, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Cache-Control", "no-cache")
		return req, nil
	}

	resp, err := c.do(ctx, c.streamClient, streamBuild, true)
	if err != nil {
		return fmt.Errorf("query stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("query stream: %w", decodeError(resp))
	}
	return decodeStream(resp.Body, h)
}

// DeleteSession removes a chat session.
func (c *Client) DeleteSession(ctx context.Context, id domain.ID) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/chat/sessions/"+escape(id), nil, nil, nil, true); err != nil {
		return fmt.Errorf("delete chat session %s: %w", id, err)
	}
	return nil
}

// GetInsights returns the summary of a session.
func (c *Client) GetInsights(ctx context.Context, id domain.ID) (*domain.ChatInsights, error) {
	var out domain.ChatInsights
	if err := c.get(ctx, "/chat/sessions/"+escape(id)+"/insights", nil, &out); err != nil {
		return nil, fmt.Errorf("get insights: %w", err)
	}
	return &out, nil
}
