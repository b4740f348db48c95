// Package api is the HTTP client for the taskflow backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "http://localhost:8080/api"

// TokenSource yields the persisted auth token, "" when signed out
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the backend REST API
type Client struct {
	baseURL string
	http    *http.Client

	Auth     *AuthClient
	Projects *ProjectClient
	Tasks    *TaskClient
}

// Option customizes a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithTransport sets the base transport wrapped by the auth interceptor
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if t, ok := c.http.Transport.(*authTransport); ok {
			t.base = rt
		}
	}
}

// New creates a client for baseURL. Requests carry the token from tokens when one is stored.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &authTransport{base: http.DefaultTransport, tokens: tokens},
			Timeout:   15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthClient{c: c}
	c.Projects = &ProjectClient{c: c}
	c.Tasks = &TaskClient{c: c}
	return c
}

// BaseURL returns the API root requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a JSON request and decodes a JSON response into out (when non-nil)
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newError(resp.StatusCode, respBody)
		slog.Debug("api request failed", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
