// Package farmos implements an authenticated HTTP client for the farmOS
// JSON:API, owning the OAuth2 token lifecycle: lazy acquisition, local
// expiry checks, and a single reactive refresh-and-retry on 401. It also
// provides the JSON:API normalisation helpers the tool layer builds on.
package farmos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// httpClientTimeout is the timeout for the default HTTP client used
	// when no custom client is provided.
	httpClientTimeout = 30 * time.Second

	// maxResponseBytes caps response body reads to prevent a misbehaving
	// server from consuming unbounded memory.
	maxResponseBytes = 1024 * 1024

	// mediaType is the JSON:API content negotiation media type.
	mediaType = "application/vnd.api+json"
)

// Client talks to a farmOS instance. It is safe for concurrent use; all
// tool calls share one client and one live token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiURL     string
	tokenURL   string
	grant      grantConfig
	store      tokenStore
	group      singleflight.Group
	logger     *slog.Logger
}

// Options configures a Client. BaseURL and ClientID are required; when
// Username and Password are both set the password grant is used.
type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string

	// HTTPClient overrides the default 30-second-timeout client.
	HTTPClient *http.Client

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// New creates a farmOS API client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpClientTimeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	kind := grantClientCredentials
	if opts.Username != "" && opts.Password != "" {
		kind = grantPassword
	}

	base := strings.TrimRight(opts.BaseURL, "/")

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		apiURL:     base + "/api",
		tokenURL:   base + "/oauth/token",
		grant: grantConfig{
			kind:         kind,
			clientID:     opts.ClientID,
			clientSecret: opts.ClientSecret,
			username:     opts.Username,
			password:     opts.Password,
		},
		logger: logger,
	}
}

// Request issues one authenticated call against the farmOS API and
// returns the raw response body. The path is relative to /api.
//
// The token lifecycle contract: a token judged expired by local clock
// comparison is never sent, and a 401 triggers exactly one
// re-authentication and one retry before surfacing an APIError.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	tok := c.store.current()
	if tok == nil {
		var err error
		if tok, err = c.freshToken(ctx); err != nil {
			return nil, err
		}
	}

	u := c.apiPath(path, query)

	c.logger.Debug("farmOS request",
		slog.String("method", method),
		slog.String("url", u),
	)

	status, respBody, err := c.send(ctx, method, u, body, tok)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		// Token expired before the local clock predicted, or was revoked
		// server-side. Refresh and retry the same request exactly once.
		c.logger.Warn("farmOS rejected token, re-authenticating",
			slog.String("url", u),
		)

		c.store.invalidate(tok)

		var authErr error
		if tok, authErr = c.freshToken(ctx); authErr != nil {
			return nil, authErr
		}

		if status, respBody, err = c.send(ctx, method, u, body, tok); err != nil {
			return nil, err
		}
	}

	if status < 200 || status > 299 {
		return nil, &APIError{Status: status, Body: sanitizeResponseBody(respBody)}
	}

	return respBody, nil
}

// send performs a single HTTP exchange with the given token.
func (c *Client) send(ctx context.Context, method, u string, body []byte, tok *Token) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, &RequestError{Err: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", mediaType)

	if body != nil {
		req.Header.Set("Content-Type", mediaType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{Err: fmt.Errorf("sending request to %s: %w", u, err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, &RequestError{Err: fmt.Errorf("reading response from %s: %w", u, err)}
	}

	c.logger.Debug("farmOS response",
		slog.String("url", u),
		slog.Int("status", resp.StatusCode),
	)

	return resp.StatusCode, respBody, nil
}

func (c *Client) apiPath(path string, query url.Values) string {
	u := c.apiURL
	if p := strings.TrimPrefix(path, "/"); p != "" {
		u += "/" + p
	}

	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return u
}

// envelope is the JSON:API document wrapper for write payloads.
type envelope struct {
	Data interface{} `json:"data"`
}

// Get issues a GET and returns the raw JSON:API document.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.Request(ctx, http.MethodGet, path, query, nil)
}

// Post wraps the resource in a {"data": ...} envelope and issues a POST.
func (c *Client) Post(ctx context.Context, path string, resource interface{}) ([]byte, error) {
	body, err := json.Marshal(envelope{Data: resource})
	if err != nil {
		return nil, fmt.Errorf("marshalling payload: %w", err)
	}

	return c.Request(ctx, http.MethodPost, path, nil, body)
}

// Patch wraps the resource in a {"data": ...} envelope and issues a PATCH.
func (c *Client) Patch(ctx context.Context, path string, resource interface{}) ([]byte, error) {
	body, err := json.Marshal(envelope{Data: resource})
	if err != nil {
		return nil, fmt.Errorf("marshalling payload: %w", err)
	}

	return c.Request(ctx, http.MethodPatch, path, nil, body)
}
