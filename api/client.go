package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/incube-ai/incube-go/logging"
)

// APIError carries the HTTP status and the human message extracted from an
// error response body ("detail" or "message", falling back to the status).
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// Client is the REST boundary of the platform backend. It carries session
// credentials via a cookie jar plus an optional session token header, and is
// safe for concurrent use.
type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	streamClient *http.Client
	logger       logging.Logger
}

// Options configures Client construction.
type Options struct {
	// Token, when set, is sent as a bearer Authorization header on every
	// request in addition to any session cookies.
	Token string

	// Timeout bounds each non-streaming request. Defaults to 30s.
	Timeout time.Duration

	// HTTPClient overrides the default client (with cookie jar). Mainly
	// for tests.
	HTTPClient *http.Client

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// NewClient creates a REST client for the given base URL.
func NewClient(baseURL string, optFns ...func(o *Options)) *Client {
	opts := Options{Timeout: 30 * time.Second, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	streamClient := opts.HTTPClient
	if httpClient == nil {
		jar, _ := cookiejar.New(nil)
		httpClient = &http.Client{Timeout: opts.Timeout, Jar: jar}
		// Streams outlive any sane request timeout, so the streaming client
		// carries none; it shares the jar so both surfaces present the same
		// session cookies.
		streamClient = &http.Client{Jar: jar}
	}

	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		token:        opts.Token,
		httpClient:   httpClient,
		streamClient: streamClient,
		logger:       opts.Logger,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// HTTPClient returns the client used for non-streaming requests.
func (c *Client) HTTPClient() *http.Client { return c.httpClient }

// StreamClient returns the client used for long-lived streaming requests. It
// has no request timeout but shares the REST client's cookie jar.
func (c *Client) StreamClient() *http.Client { return c.streamClient }

// Header returns the extra headers (auth) to apply to streaming requests.
func (c *Client) Header() http.Header {
	h := http.Header{}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

// BoomerangURL returns the streaming run endpoint for a perspective.
func (c *Client) BoomerangURL(perspectiveID string) string {
	return fmt.Sprintf("%s/api/perspectives/%s/boomerang", c.baseURL, perspectiveID)
}

// do issues a JSON request and decodes the response into out (skipped when
// out is nil or the response is 204 No Content).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s body: %w", method, path, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
	}
	return nil
}

// errorFromResponse extracts detail/message from an error body, falling back
// to the bare status when the body is not parseable.
func (c *Client) errorFromResponse(resp *http.Response) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("request failed: %d", resp.StatusCode),
	}

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && json.Unmarshal(raw, &payload) == nil {
		if payload.Detail != "" {
			apiErr.Message = payload.Detail
		} else if payload.Message != "" {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}
