package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tgienger/taskflow/internal/models"
)

// ProjectClient wraps the /projects endpoints
type ProjectClient struct {
	c *Client
}

// List returns every project visible to the signed-in user
func (p *ProjectClient) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := p.c.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Get returns a project by ID
func (p *ProjectClient) Get(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	if err := p.c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Create creates a project
func (p *ProjectClient) Create(ctx context.Context, req models.ProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := p.c.do(ctx, http.MethodPost, "/projects", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete deletes a project and its tasks
func (p *ProjectClient) Delete(ctx context.Context, id int64) error {
	return p.c.do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil)
}

// Progress re-fetches a project's task counters and percentage
func (p *ProjectClient) Progress(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	if err := p.c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/progress", id), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
