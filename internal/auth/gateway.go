// Package auth signs users in and out and restores sessions at startup.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/session"
)

// LoginClient performs the credential exchange with the backend
type LoginClient interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
}

// TokenStore persists the auth token across restarts
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// Gateway keeps the persisted token and the session store in step
type Gateway struct {
	client  LoginClient
	tokens  TokenStore
	session *session.Store
}

// NewGateway creates a gateway and restores any persisted session into store
func NewGateway(client LoginClient, tokens TokenStore, store *session.Store) *Gateway {
	g := &Gateway{client: client, tokens: tokens, session: store}
	g.Restore()
	return g
}

// Login exchanges credentials for a token. On failure nothing is mutated and the
// backend error is returned as is.
func (g *Gateway) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	resp, err := g.client.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		slog.Info("login failed", "email", email, "error", err)
		return nil, err
	}

	if err := g.tokens.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	identity := resp.Identity()
	g.session.Set(identity)
	slog.Info("logged in", "email", identity.Email)
	return &identity, nil
}

// Logout forgets the token and the identity. It always succeeds.
func (g *Gateway) Logout() {
	if err := g.tokens.ClearToken(); err != nil {
		slog.Warn("failed to clear token", "error", err)
	}
	g.session.Clear()
	slog.Info("logged out")
}

// IsAuthenticated reports whether a token is persisted. It is a presence check only.
func (g *Gateway) IsAuthenticated() bool {
	token, err := g.tokens.Token()
	return err == nil && token != ""
}

// CurrentUser returns the signed-in identity, or nil
func (g *Gateway) CurrentUser() *models.Identity {
	return g.session.Current()
}

// Restore loads the identity from the persisted token. A token that cannot be decoded
// is discarded and the user is treated as signed out.
func (g *Gateway) Restore() {
	token, err := g.tokens.Token()
	if err != nil {
		slog.Warn("failed to read token", "error", err)
		return
	}
	if token == "" {
		return
	}

	identity, err := DecodeIdentity(token)
	if err != nil {
		slog.Warn("discarding unreadable token", "error", err)
		if err := g.tokens.ClearToken(); err != nil {
			slog.Warn("failed to clear token", "error", err)
		}
		if g.session.Current() != nil {
			g.session.Clear()
		}
		return
	}
	g.session.Set(*identity)
}
