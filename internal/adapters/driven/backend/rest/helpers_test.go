package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// fakeTokens is a TokenProvider whose refresh result is scripted.
type fakeTokens struct {
	mu           sync.Mutex
	token        string
	refreshTo    string
	refreshErr   error
	refreshCalls int
}

func (f *fakeTokens) GetToken(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		return "", domain.ErrAuthRequired
	}
	return f.token, nil
}

func (f *fakeTokens) Refresh(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		f.token = ""
		return "", f.refreshErr
	}
	f.token = f.refreshTo
	return f.token, nil
}

func (f *fakeTokens) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token != ""
}

func (f *fakeTokens) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

var errRefresh = errors.New("refresh rejected")

// newTestClient starts a server for mux and returns a client signed in
// with token "old" that refreshes to "new".
func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *fakeTokens) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tokens := &fakeTokens{token: "old", refreshTo: "new"}
	c := New(srv.URL+"/", WithTokenProvider(tokens), WithRateLimit(0, 0))
	return c, tokens
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
