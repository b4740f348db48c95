package views

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/api"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/testutil"
)

var fixedNow = time.Date(2024, 3, 4, 15, 30, 0, 0, time.Local)

func openDetail(t *testing.T, client *api.Client, projectID int64) *ProjectDetailView {
	t.Helper()
	v := NewProjectDetailView(projectID, client.Projects, client.Tasks)
	v.now = func() time.Time { return fixedNow }
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	settle(t, v, v.Init())
	return v
}

// seededDetail opens a project holding tasks due 03-10, 03-01 and 03-05, in that server order
func seededDetail(t *testing.T) (*ProjectDetailView, *testutil.Backend, *api.Client) {
	t.Helper()
	client, backend := newTestClient(t)
	id := backend.AddProject("Launch", "Ship it")
	backend.AddTask(id, "Write docs", "2024-03-10", false)
	backend.AddTask(id, "Draft plan", "2024-03-01", false)
	backend.AddTask(id, "Review", "2024-03-05", true)

	v := openDetail(t, client, id)
	require.True(t, v.Ready())
	backend.ResetRequests()
	return v, backend, client
}

func dueDates(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.DueDate.String()
	}
	return out
}

func TestDetailSortsTasksByDueDate(t *testing.T) {
	v, _, _ := seededDetail(t)

	assert.Equal(t, []string{"2024-03-01", "2024-03-05", "2024-03-10"}, dueDates(v.Tasks()))
	assert.Equal(t, "Launch", v.Project().Title)
	assert.Equal(t, 3, v.Project().TotalTasks)
	assert.False(t, v.Loading())
}

func TestDetailLoadFailureGoesBack(t *testing.T) {
	client, backend := newTestClient(t)

	v := NewProjectDetailView(999, client.Projects, client.Tasks)
	msgs := settle(t, v, v.Init())

	_, back := findMsg[BackToProjects](msgs)
	assert.True(t, back)
	assert.False(t, v.Ready())
	assert.Equal(t, []string{"GET /projects/999"}, backend.Requests())
}

func TestDetailTaskListFailureStopsLoading(t *testing.T) {
	client, backend := newTestClient(t)
	id := backend.AddProject("Launch", "Ship it")
	backend.FailNext("GET /projects/1/tasks", 1)

	v := openDetail(t, client, id)

	assert.True(t, v.Ready())
	assert.False(t, v.Loading())
	assert.Empty(t, v.Tasks())
	view := v.View()
	assert.NotContains(t, view, "Loading...")
	assert.Contains(t, view, "Launch")
	assert.Contains(t, view, "injected failure")

	press(v, "n")
	assert.True(t, v.Creating())
}

func TestToggleFlipsLocallyAndRefreshesProgress(t *testing.T) {
	v, backend, _ := seededDetail(t)
	first := v.Tasks()[0]
	require.False(t, first.Completed)

	settle(t, v, press(v, " "))

	assert.True(t, v.Tasks()[0].Completed)
	assert.Equal(t, []string{
		"PATCH /projects/1/tasks/3/toggle",
		"GET /projects/1/progress",
	}, backend.Requests())
	assert.Equal(t, 1, backend.CountRequests("GET /projects/1/progress"))
	assert.Equal(t, 2, v.Project().CompletedTasks)
	assert.InDelta(t, 66.67, v.Project().ProgressPercentage, 0.01)

	server, ok := backend.Task(1, first.ID)
	require.True(t, ok)
	assert.True(t, server.Completed)
}

func TestToggleFailureLeavesTaskAlone(t *testing.T) {
	v, backend, _ := seededDetail(t)
	backend.FailNext("PATCH /projects/1/tasks/3/toggle", 1)

	settle(t, v, press(v, "x"))

	assert.False(t, v.Tasks()[0].Completed)
	assert.Equal(t, 0, backend.CountRequests("GET /projects/1/progress"))
	assert.Contains(t, v.View(), "injected failure")
}

func TestCreateDialogPrefillsTomorrow(t *testing.T) {
	v, _, _ := seededDetail(t)

	press(v, "n")

	require.True(t, v.Creating())
	assert.Equal(t, "2024-03-05", v.DueDraft())
}

func TestCreateTaskBlankTitleSendsNothing(t *testing.T) {
	v, backend, _ := seededDetail(t)

	press(v, "n")
	typeText(v, "  ")

	assert.Nil(t, press(v, "ctrl+s"))
	assert.True(t, v.Creating())
	assert.Empty(t, backend.Requests())
}

func TestCreateTaskBadDueDateSendsNothing(t *testing.T) {
	v, backend, _ := seededDetail(t)

	press(v, "n")
	typeText(v, "Ship")
	v.newDue.SetValue("soon")

	assert.Nil(t, press(v, "ctrl+s"))
	assert.True(t, v.Creating())
	assert.Empty(t, backend.Requests())
	assert.Contains(t, v.View(), "Due date must look like")
}

func TestCreateTaskReloadsProjectAndTasks(t *testing.T) {
	v, backend, _ := seededDetail(t)

	press(v, "n")
	typeText(v, "Ship")
	settle(t, v, press(v, "ctrl+s"))

	assert.False(t, v.Creating())
	assert.Equal(t, []string{
		"POST /projects/1/tasks",
		"GET /projects/1",
		"GET /projects/1/tasks",
	}, backend.Requests())
	require.Len(t, v.Tasks(), 4)
	assert.Equal(t, 4, v.Project().TotalTasks)
	assert.Equal(t, []string{"2024-03-01", "2024-03-05", "2024-03-05", "2024-03-10"}, dueDates(v.Tasks()))
	assert.Equal(t, "Ship", v.Tasks()[2].Title, "equal due dates keep server order")
}

func TestDeleteTaskKeyConfirmsWithoutOpening(t *testing.T) {
	v, backend, _ := seededDetail(t)

	assert.Nil(t, press(v, "d"))
	assert.False(t, v.ViewingTask())
	require.True(t, v.ConfirmingDelete())
	assert.Contains(t, v.View(), `Delete "Draft plan"?`)

	settle(t, v, press(v, "y"))

	assert.Equal(t, []string{
		"DELETE /projects/1/tasks/3",
		"GET /projects/1",
		"GET /projects/1/tasks",
	}, backend.Requests())
	assert.Len(t, v.Tasks(), 2)
	assert.Equal(t, 2, v.Project().TotalTasks)
}

func TestEnterOpensTaskDetailPane(t *testing.T) {
	client, backend := newTestClient(t)
	id := backend.AddProject("Launch", "")
	description := strings.Repeat("lorem ipsum dolor ", 20)
	_, err := client.Tasks.Create(context.Background(), id, models.TaskRequest{
		Title:       "Long one",
		Description: description,
		DueDate:     Tomorrow(fixedNow),
	})
	require.NoError(t, err)

	v := openDetail(t, client, id)
	press(v, "enter")
	require.True(t, v.ViewingTask())

	view := v.View()
	assert.Contains(t, view, "Long one")
	assert.Contains(t, view, "Mar 5, 2024")
	assert.Contains(t, view, "lorem ipsum")

	press(v, "esc")
	assert.False(t, v.ViewingTask())
}

func TestOverdueMarker(t *testing.T) {
	v, _, _ := seededDetail(t)

	view := v.View()
	assert.Contains(t, view, "Due Mar 1, 2024 (overdue)")
	assert.Contains(t, view, "Due Mar 10, 2024")
	assert.NotContains(t, view, "Due Mar 5, 2024 (overdue)", "completed tasks are never overdue")
}

func TestEscGoesBack(t *testing.T) {
	v, _, _ := seededDetail(t)

	_, back := findMsg[BackToProjects](runCmd(t, press(v, "esc")))
	assert.True(t, back)
}

func TestIgnoresOtherProjectsMessages(t *testing.T) {
	v, _, _ := seededDetail(t)

	v.Update(tasksLoadedMsg{projectID: 42, tasks: nil})
	v.Update(taskToggledMsg{projectID: 42, taskID: v.Tasks()[0].ID})

	assert.Len(t, v.Tasks(), 3)
	assert.False(t, v.Tasks()[0].Completed)
}
