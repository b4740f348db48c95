package views

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/api"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

func date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestProgressTierFor(t *testing.T) {
	cases := []struct {
		pct  float64
		want styles.ProgressTier
	}{
		{0, styles.ProgressNeutral},
		{0.01, styles.ProgressWarning},
		{33.3, styles.ProgressWarning},
		{49.99, styles.ProgressWarning},
		{50, styles.ProgressInProgress},
		{75, styles.ProgressInProgress},
		{99.99, styles.ProgressInProgress},
		{100, styles.ProgressComplete},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ProgressTierFor(tc.pct), "percentage %v", tc.pct)
	}
}

func TestIsOverdue(t *testing.T) {
	due := date(t, "2024-03-05")
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.Local)

	assert.True(t, IsOverdue(models.Task{DueDate: due}, now))
	assert.False(t, IsOverdue(models.Task{DueDate: due, Completed: true}, now), "completed tasks are never overdue")
	assert.False(t, IsOverdue(models.Task{DueDate: due}, due.Time), "due exactly now is not overdue")
	assert.True(t, IsOverdue(models.Task{DueDate: due}, due.Add(time.Nanosecond)))
	assert.False(t, IsOverdue(models.Task{DueDate: date(t, "2024-03-07")}, now))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Mar 5, 2024", FormatDate(date(t, "2024-03-05")))
	assert.Equal(t, "", FormatDate(models.Date{}))
}

func TestTomorrow(t *testing.T) {
	cases := map[string]time.Time{
		"2024-03-06": time.Date(2024, 3, 5, 23, 59, 0, 0, time.Local),
		"2024-04-01": time.Date(2024, 3, 31, 8, 0, 0, 0, time.Local),
		"2025-01-01": time.Date(2024, 12, 31, 0, 0, 0, 0, time.Local),
		"2024-02-29": time.Date(2024, 2, 28, 12, 0, 0, 0, time.Local),
	}
	for want, now := range cases {
		assert.Equal(t, want, Tomorrow(now).String())
	}
}

func TestSortByDueDateIsStable(t *testing.T) {
	tasks := []models.Task{
		{ID: 1, DueDate: date(t, "2024-03-10")},
		{ID: 2, DueDate: date(t, "2024-03-01")},
		{ID: 3, DueDate: date(t, "2024-03-05")},
		{ID: 4, DueDate: date(t, "2024-03-01")},
	}
	SortByDueDate(tasks)

	var ids []int64
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []int64{2, 4, 3, 1}, ids)
}

func TestErrorMessage(t *testing.T) {
	err := &api.Error{StatusCode: 401, Message: "Invalid email or password"}
	assert.Equal(t, "Invalid email or password", errorMessage(err))
	assert.Equal(t, "boom", errorMessage(errors.New("boom")))
}

func TestHasText(t *testing.T) {
	assert.False(t, hasText(""))
	assert.False(t, hasText(" \t\n"))
	assert.True(t, hasText(" x "))
}
