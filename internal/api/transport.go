package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// authTransport attaches the bearer token and a request ID to every outgoing request
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if t.tokens != nil {
		token, err := t.tokens.Token()
		if err != nil {
			slog.Warn("failed to read token", "error", err)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		slog.Debug("api request", "id", requestID, "method", req.Method, "url", req.URL.Path, "error", err)
		return nil, err
	}
	slog.Debug("api request", "id", requestID, "method", req.Method, "url", req.URL.Path,
		"status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}
