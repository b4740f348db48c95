package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tgienger/taskflow/internal/models"
)

// TaskClient wraps the /projects/{id}/tasks endpoints
type TaskClient struct {
	c *Client
}

func tasksPath(projectID int64) string {
	return fmt.Sprintf("/projects/%d/tasks", projectID)
}

// List returns the tasks of a project in server order
func (t *TaskClient) List(ctx context.Context, projectID int64) ([]models.Task, error) {
	var tasks []models.Task
	if err := t.c.do(ctx, http.MethodGet, tasksPath(projectID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create adds a task to a project
func (t *TaskClient) Create(ctx context.Context, projectID int64, req models.TaskRequest) (*models.Task, error) {
	var task models.Task
	if err := t.c.do(ctx, http.MethodPost, tasksPath(projectID), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Toggle flips a task's completion on the server
func (t *TaskClient) Toggle(ctx context.Context, projectID, taskID int64) (*models.Task, error) {
	var task models.Task
	path := fmt.Sprintf("%s/%d/toggle", tasksPath(projectID), taskID)
	if err := t.c.do(ctx, http.MethodPatch, path, struct{}{}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task
func (t *TaskClient) Delete(ctx context.Context, projectID, taskID int64) error {
	return t.c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", tasksPath(projectID), taskID), nil, nil)
}
