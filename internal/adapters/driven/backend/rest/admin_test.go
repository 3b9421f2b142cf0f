package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

func TestClient_SystemPrompt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/settings/system-prompt", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"prompt":"Be concise."}`)
	})
	mux.HandleFunc("PUT /api/v1/settings/system-prompt", func(w http.ResponseWriter, r *http.Request) {
		var body domain.SystemPrompt
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, `{"prompt":"`+body.Prompt+`"}`)
	})
	mux.HandleFunc("POST /api/v1/settings/reset-system-prompt", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"prompt":"default"}`)
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	p, err := c.GetSystemPrompt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Be concise.", p.Prompt)

	p, err = c.UpdateSystemPrompt(ctx, "Cite sources.")
	require.NoError(t, err)
	assert.Equal(t, "Cite sources.", p.Prompt)

	p, err = c.ResetSystemPrompt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", p.Prompt)
}

func TestClient_GeneralSettings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/settings/general", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"systemName":"Campus AI","theme":"light"}`)
	})
	mux.HandleFunc("POST /api/v1/settings/reset-general", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	c, _ := newTestClient(t, mux)

	s, err := c.GetGeneralSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Campus AI", s["systemName"])

	s, err = c.ResetGeneralSettings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestClient_Analytics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"total_documents":12,"total_queries":80}`)
	})
	mux.HandleFunc("GET /api/v1/analytics/activity", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `[{"type":"upload","description":"notes.pdf","created_at":"2026-03-01T10:00:00Z"}]`)
	})
	mux.HandleFunc("GET /api/v1/analytics/queries", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, `[{"query":"entropy","count":9}]`)
	})
	mux.HandleFunc("POST /api/v1/analytics/track-event", func(w http.ResponseWriter, r *http.Request) {
		var ev domain.TrackedEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		assert.Equal(t, "chat_started", ev.EventType)
		w.WriteHeader(http.StatusNoContent)
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	dash, err := c.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, dash.TotalDocuments)

	activity, err := c.GetActivity(ctx, 5)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, "upload", activity[0].Type)

	queries, err := c.GetTopQueries(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 9, queries[0].Count)

	require.NoError(t, c.TrackEvent(ctx, domain.TrackedEvent{EventType: "chat_started"}))
}

func TestClient_Users(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/users/{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":1,"email":"root@uni.br","role":"admin","is_active":true}]`)
	})
	mux.HandleFunc("PATCH /api/v1/users/1/toggle-status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":1,"email":"root@uni.br","role":"admin","is_active":false}`)
	})
	mux.HandleFunc("PUT /api/v1/users/1", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"name": "Root"}, body)
		writeJSON(w, http.StatusOK, `{"id":1,"name":"Root"}`)
	})
	mux.HandleFunc("GET /api/v1/users/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"total":3,"active":2,"inactive":1,"by_role":{"admin":1,"student":2}}`)
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdmin())

	toggled, err := c.ToggleUserStatus(ctx, "1")
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	name := "Root"
	updated, err := c.UpdateUser(ctx, "1", domain.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Root", updated.Name)

	stats, err := c.GetUserStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ByRole[domain.RoleStudent])
}
