package views

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/tgienger/taskflow/internal/api"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

// ProjectDirectory is the project side of the backend
type ProjectDirectory interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, req models.ProjectRequest) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
	Progress(ctx context.Context, id int64) (*models.Project, error)
}

// TaskDirectory is the task side of the backend
type TaskDirectory interface {
	List(ctx context.Context, projectID int64) ([]models.Task, error)
	Create(ctx context.Context, projectID int64, req models.TaskRequest) (*models.Task, error)
	Toggle(ctx context.Context, projectID, taskID int64) (*models.Task, error)
	Delete(ctx context.Context, projectID, taskID int64) error
}

// DisplayDateLayout is how due dates are shown
const DisplayDateLayout = "Jan 2, 2006"

// ProgressTierFor buckets a completion percentage
func ProgressTierFor(percentage float64) styles.ProgressTier {
	switch {
	case percentage <= 0:
		return styles.ProgressNeutral
	case percentage < 50:
		return styles.ProgressWarning
	case percentage < 100:
		return styles.ProgressInProgress
	default:
		return styles.ProgressComplete
	}
}

// IsOverdue reports whether an open task's due date lies strictly before now
func IsOverdue(task models.Task, now time.Time) bool {
	if task.Completed || task.DueDate.IsZero() {
		return false
	}
	return task.DueDate.Before(now)
}

// FormatDate renders a due date for display
func FormatDate(d models.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DisplayDateLayout)
}

// Tomorrow is the calendar day after now
func Tomorrow(now time.Time) models.Date {
	return models.NewDate(now.AddDate(0, 0, 1))
}

// SortByDueDate orders tasks by ascending due date, keeping server order for ties
func SortByDueDate(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(tasks[j].DueDate.Time)
	})
}

// errorMessage is the text shown to the user for a failed backend call
func errorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// hasText reports whether s holds anything besides whitespace
func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
