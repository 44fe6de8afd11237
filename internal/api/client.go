// Package api is the HTTP client for the research backend.
//
// Every method is a single round trip: no retries, no caching. Failures wrap
// ErrRequestFailed so callers that do not care about the cause can treat them
// alike, while errors.As still exposes *HTTPError for status failures.
package api

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
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// DefaultTimeout applies when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

var (
	// ErrRequestFailed is wrapped by every error the client returns.
	ErrRequestFailed = errors.New("request failed")

	// ErrTransport marks network-level failures (unreachable host, reset, timeout).
	ErrTransport = fmt.Errorf("%w: transport error", ErrRequestFailed)

	// ErrDecode marks responses whose body could not be parsed.
	ErrDecode = fmt.Errorf("%w: malformed response", ErrRequestFailed)
)

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Unwrap lets errors.Is(err, ErrRequestFailed) match status failures.
func (e *HTTPError) Unwrap() error {
	return ErrRequestFailed
}

// Options configures a Client.
type Options struct {
	// BaseURL is the backend origin, e.g. "http://localhost:5000".
	BaseURL string

	// HTTPClient is used for all requests. Defaults to a fresh http.Client.
	HTTPClient *http.Client

	// Timeout bounds each request. Zero means DefaultTimeout; negative disables it.
	Timeout time.Duration

	// Token, when set, is sent as a bearer token.
	Token string

	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// Client issues typed requests against one backend origin.
// Safe for concurrent use.
type Client struct {
	base      *url.URL
	client    *http.Client
	timeout   time.Duration
	userAgent string

	mu    sync.RWMutex
	token string
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("api: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: base URL %q must be http or https", raw)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "minescope/0.1"
	}

	return &Client{
		base:      base,
		client:    hc,
		timeout:   timeout,
		userAgent: ua,
		token:     opts.Token,
	}, nil
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// SetToken replaces the bearer token sent with later requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends one request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.roundTrip(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, method, path, err)
	}
	return nil
}

// roundTrip sends the request and returns the raw body of a 2xx response.
func (c *Client) roundTrip(ctx context.Context, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal %s %s: %w", ErrRequestFailed, method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %w", ErrTransport, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   errorExcerpt(raw),
		}
	}
	return raw, nil
}

// errorExcerpt pulls the "error" field out of a JSON error body, or falls
// back to a short prefix of the raw text.
func errorExcerpt(raw []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return e.Error
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
