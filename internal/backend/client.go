// Package backend is the console's only path to the job-board API.
//
// Protected calls read the credential from the session at request time and
// send it as a bearer token. A 401 or 403 clears the session (unless a newer
// session replaced it while the request was in flight) before the error is
// returned to the calling screen. Any other failure leaves the session alone.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/fiitjobs/jobadmin/internal/session"
)

// Sessions is the part of the session context the client depends on
type Sessions interface {
	Snapshot() (session.Session, uint64)
	InvalidateIfCurrent(epoch uint64) bool
	Confirm(epoch uint64)
}

// Client represents an HTTP client for the job-board API
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	sessions   Sessions
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout. It applies to a copy of the HTTP
// client, so a client passed to WithHTTPClient is never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new API client rooted at baseURL, e.g. https://host/api
func New(baseURL string, sessions Sessions, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sessions:   sessions,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	c.logger = c.logger.With().Str("component", "backend").Logger()
	return c
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one backend call
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	protected   bool
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), nil
}

// do sends req and decodes a successful JSON response into out (if non-nil)
func (c *Client) do(ctx context.Context, req request, out any) error {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, req.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	// Read fresh on every call: never cache the credential per screen
	var epoch uint64
	if req.protected && c.sessions != nil {
		var current session.Session
		current, epoch = c.sessions.Snapshot()
		if current.Authenticated() {
			httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", current.Credential))
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn().Err(err).Str("op", req.op).Msg("Backend request failed")
		return fmt.Errorf("%s: %w: %w", req.op, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{Op: req.op, Status: resp.StatusCode, Message: errorMessage(body)}

		if req.protected && IsAuthorizationFailure(apiErr) && c.sessions != nil {
			cleared := c.sessions.InvalidateIfCurrent(epoch)
			c.logger.Warn().
				Str("op", req.op).
				Int("status", resp.StatusCode).
				Bool("session_cleared", cleared).
				Msg("Authorization failure from backend")
		}
		return apiErr
	}

	if req.protected && c.sessions != nil {
		c.sessions.Confirm(epoch)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to decode response: %w", req.op, err)
	}

	return nil
}
