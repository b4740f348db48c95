package api

import (
	"context"
	"net/http"

	"github.com/tgienger/taskflow/internal/models"
)

// AuthClient wraps the authentication endpoint
type AuthClient struct {
	c *Client
}

// Login exchanges credentials for a token
func (a *AuthClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := a.c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
