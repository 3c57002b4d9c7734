package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout applies when no http.Client or timeout is configured
	DefaultTimeout = 10 * time.Second

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 4096
)

// Client talks to the notes REST API. It performs no retries; callers decide
// what to do with a failed operation.
type Client struct {
	baseURL string
	tokens  TokenHolder
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets a per-request timeout on the underlying http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			if c.http == nil {
				c.http = &http.Client{}
			}
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a Client for the API rooted at baseURL (e.g. http://localhost:8080).
// tokens may be nil when only login/register will be called.
func New(baseURL string, tokens TokenHolder, opts ...Option) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	return c
}

// BaseURL returns the API root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and decodes a JSON response into out (when non-nil).
// Every failure comes back as an *OperationError named after op.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &OperationError{Op: op, Message: fmt.Sprintf("encode request: %v", err), Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &OperationError{Op: op, Message: fmt.Sprintf("build request: %v", err), Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Str("op", op).Str("request_id", requestID).Err(err).Msg("request failed")
		return &OperationError{Op: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("op", op).
		Str("method", method).
		Str("url", u).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &OperationError{Op: op, Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &OperationError{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	return nil
}

// errorMessage extracts a readable message from an error response body,
// falling back to the status text.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") && len(text) < 200 {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
