package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure Client implements the backend ports.
var (
	_ driven.AuthAPI       = (*Client)(nil)
	_ driven.DocumentAPI   = (*Client)(nil)
	_ driven.StoreAPI      = (*Client)(nil)
	_ driven.ChatAPI       = (*Client)(nil)
	_ driven.SettingsAPI   = (*Client)(nil)
	_ driven.AnalyticsAPI  = (*Client)(nil)
	_ driven.UserAPI       = (*Client)(nil)
	_ driven.HealthChecker = (*Client)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second
	apiPrefix      = "/api/v1"

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

var log = logger.With("rest")

// Client talks to the backend.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
	limiter      *RateLimiter
	userAgent    string

	mu     sync.RWMutex
	tokens driven.TokenProvider
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the client used for regular requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithStreamClient replaces the client used for the chat stream.
// It should not carry a timeout.
func WithStreamClient(hc *http.Client) Option {
	return func(c *Client) {
		c.streamClient = hc
	}
}

// WithTimeout sets the timeout for regular requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit sets the client-side request rate. A non-positive rate
// disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = NewRateLimiter(perSecond, burst)
	}
}

// WithTokenProvider sets the source of bearer tokens.
func WithTokenProvider(p driven.TokenProvider) Option {
	return func(c *Client) {
		c.tokens = p
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client for the backend at baseURL (without the /api/v1 prefix).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		streamClient: &http.Client{},
		limiter:      NewRateLimiter(DefaultRatePerSecond, DefaultBurst),
		userAgent:    "ragchat-cli",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTokenProvider sets the token source after construction. The token
// provider itself needs a Client for refresh calls, so the two are wired
// in two steps.
func (c *Client) SetTokenProvider(p driven.TokenProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = p
}

func (c *Client) tokenProvider() driven.TokenProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// requestFunc builds a fresh request for each attempt so bodies can be resent.
type requestFunc func(ctx context.Context) (*http.Request, error)

// jsonRequest returns a requestFunc for an API path with an optional JSON body.
func (c *Client) jsonRequest(method, path string, query url.Values, body any) (requestFunc, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}
	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return func(ctx context.Context) (*http.Request, error) {
		var r io.Reader
		if payload != nil {
			r = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, r)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, nil
}

// send performs one attempt. Requests on the stream client are not
// throttled.
func (c *Client) send(ctx context.Context, hc *http.Client, build requestFunc, token string) (*http.Response, error) {
	if hc != c.streamClient {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	req, err := build(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	log.Debug("%s %s", req.Method, req.URL.Path)
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	c.limiter.UpdateFromResponse(resp)
	return resp, nil
}

// do runs the request. Authenticated requests that get a 401 refresh the
// token exactly once and retry; a failed refresh or a second 401 returns
// domain.ErrAuthExpired.
func (c *Client) do(ctx context.Context, hc *http.Client, build requestFunc, authenticated bool) (*http.Response, error) {
	if !authenticated {
		return c.send(ctx, hc, build, "")
	}

	tokens := c.tokenProvider()
	if tokens == nil {
		return nil, domain.ErrAuthRequired
	}
	token, err := tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, hc, build, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	discard(resp)

	log.Debug("401 from %s, refreshing token", resp.Request.URL.Path)
	token, err = tokens.Refresh(ctx)
	if domain.IsInterrupted(err) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthExpired, err)
	}

	resp, err = c.send(ctx, hc, build, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		apiErr := decodeError(resp)
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthExpired, apiErr)
	}
	return resp, nil
}

// doJSON runs a JSON request and decodes the response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any, authenticated bool) error {
	build, err := c.jsonRequest(method, path, query, in)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, c.httpClient, build, authenticated)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// get is shorthand for an authenticated GET.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out, true)
}

// errorBody covers the shapes the backend uses for error details.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// validationItem is one entry of a 422 detail list.
type validationItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// decodeError turns a non-2xx response into *domain.APIError and closes the body.
func decodeError(resp *http.Response) *domain.APIError {
	defer resp.Body.Close()
	apiErr := &domain.APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return apiErr
	}

	if len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			apiErr.Detail = s
			return apiErr
		}
		var items []validationItem
		if json.Unmarshal(body.Detail, &items) == nil && len(items) > 0 {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				msgs = append(msgs, it.Msg)
			}
			apiErr.Detail = strings.Join(msgs, "; ")
			return apiErr
		}
	}
	switch {
	case body.Message != "":
		apiErr.Detail = body.Message
	case body.Error != "":
		apiErr.Detail = body.Error
	}
	return apiErr
}

// discard drains and closes a response body so the connection can be reused.
func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

// escape encodes an id for use as a path segment.
func escape(id domain.ID) string {
	return url.PathEscape(id.String())
}
