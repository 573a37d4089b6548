// Package api is the HTTP client for the N3 collaboration REST service.
package api

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
	"sync"
	"time"
)

// DefaultClientTimeout is the default deadline applied to every request.
const DefaultClientTimeout = 10 * time.Second

// Envelope is the wrapper every API response carries.
type Envelope[T any] struct {
	StatusCode int    `json:"status_code"`
	Detail     string `json:"detail"`
	Data       T      `json:"data"`
}

// Client wraps HTTP calls to the N3 API. The bearer credential is shared by
// every request and guarded for a single writer and many readers.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        *slog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request deadline. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a new API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    DefaultClientTimeout,
		httpClient: &http.Client{},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken installs the bearer credential for all subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken revokes the bearer credential so later requests are anonymous.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer credential, or "" when none is set.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// do sends one request and decodes the envelope's data into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("api request failed", "method", method, "path", path, "error", err)
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	c.log.Debug("api request", "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}

	env := Envelope[json.RawMessage]{}
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", path, err)
	}
	return nil
}
