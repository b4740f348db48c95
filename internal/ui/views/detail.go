package views

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

// BackToProjects signals to go back to project list
type BackToProjects struct{}

type detailProjectMsg struct {
	projectID int64
	project   *models.Project
	err       error
}

type tasksLoadedMsg struct {
	projectID int64
	tasks     []models.Task
	err       error
}

type taskCreatedMsg struct {
	projectID int64
	task      *models.Task
	err       error
}

type taskToggledMsg struct {
	projectID int64
	taskID    int64
	err       error
}

type taskDeletedMsg struct {
	projectID int64
	taskID    int64
	err       error
}

type progressLoadedMsg struct {
	projectID int64
	project   *models.Project
	err       error
}

// ProjectDetailView shows one project's progress and its tasks
type ProjectDetailView struct {
	projectID int64
	projects  ProjectDirectory
	tasks     TaskDirectory
	styles    *styles.Styles
	keys      keys.KeyMap
	now       func() time.Time

	width  int
	height int

	project  *models.Project
	taskList []models.Task
	loading  bool
	ready    bool
	errMsg   string

	cursor  int
	scrollY int

	// Task detail pane
	viewingTask bool

	// Task creation
	creating   bool
	submitting bool
	newTitle   textinput.Model
	newDesc    textarea.Model
	newDue     textinput.Model
	focusIdx   int // 0=title, 1=desc, 2=due, 3=save

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewProjectDetailView creates a detail view for the project with the given ID
func NewProjectDetailView(projectID int64, projects ProjectDirectory, tasks TaskDirectory) *ProjectDetailView {
	newTitle := textinput.New()
	newTitle.Placeholder = "Task title"
	newTitle.CharLimit = 200

	newDesc := textarea.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 1000
	newDesc.SetWidth(50)
	newDesc.SetHeight(3)
	newDesc.ShowLineNumbers = false

	newDue := textinput.New()
	newDue.Placeholder = models.DateLayout
	newDue.CharLimit = len(models.DateLayout)

	return &ProjectDetailView{
		projectID: projectID,
		projects:  projects,
		tasks:     tasks,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		now:       time.Now,
		newTitle:  newTitle,
		newDesc:   newDesc,
		newDue:    newDue,
	}
}

func (v *ProjectDetailView) Init() tea.Cmd {
	return v.loadProject()
}

// ProjectID is the ID of the project this view shows
func (v *ProjectDetailView) ProjectID() int64 { return v.projectID }

// Project returns the loaded project, or nil before it arrives
func (v *ProjectDetailView) Project() *models.Project { return v.project }

// Tasks returns the tasks in display order
func (v *ProjectDetailView) Tasks() []models.Task { return v.taskList }

// Ready reports whether the project and its tasks have loaded
func (v *ProjectDetailView) Ready() bool { return v.ready }

// Loading reports whether a load is in flight
func (v *ProjectDetailView) Loading() bool { return v.loading }

// Creating reports whether the create dialog is open
func (v *ProjectDetailView) Creating() bool { return v.creating }

// ConfirmingDelete reports whether a delete confirmation is shown
func (v *ProjectDetailView) ConfirmingDelete() bool { return v.confirmingDelete }

// ViewingTask reports whether the task detail pane is open
func (v *ProjectDetailView) ViewingTask() bool { return v.viewingTask }

// DueDraft is the current text of the due date field
func (v *ProjectDetailView) DueDraft() string { return v.newDue.Value() }

func (v *ProjectDetailView) loadProject() tea.Cmd {
	v.loading = true
	id, projects := v.projectID, v.projects
	return func() tea.Msg {
		project, err := projects.Get(context.Background(), id)
		return detailProjectMsg{projectID: id, project: project, err: err}
	}
}

func (v *ProjectDetailView) loadTasks() tea.Cmd {
	id, tasks := v.projectID, v.tasks
	return func() tea.Msg {
		list, err := tasks.List(context.Background(), id)
		return tasksLoadedMsg{projectID: id, tasks: list, err: err}
	}
}

func (v *ProjectDetailView) refreshProgress() tea.Cmd {
	id, projects := v.projectID, v.projects
	return func() tea.Msg {
		project, err := projects.Progress(context.Background(), id)
		return progressLoadedMsg{projectID: id, project: project, err: err}
	}
}

func (v *ProjectDetailView) openCreateTaskDialog() {
	v.creating = true
	v.errMsg = ""
	v.focusIdx = 0
	v.newTitle.Reset()
	v.newDesc.Reset()
	v.newDue.SetValue(Tomorrow(v.now()).String())
	v.updateFocus()
}

func (v *ProjectDetailView) createTask() tea.Cmd {
	if v.submitting || !hasText(v.newTitle.Value()) {
		return nil
	}
	due, err := models.ParseDate(strings.TrimSpace(v.newDue.Value()))
	if err != nil {
		v.errMsg = "Due date must look like " + models.DateLayout
		return nil
	}

	v.submitting = true
	req := models.TaskRequest{
		Title:       v.newTitle.Value(),
		Description: v.newDesc.Value(),
		DueDate:     due,
	}
	id, tasks := v.projectID, v.tasks
	return func() tea.Msg {
		task, err := tasks.Create(context.Background(), id, req)
		return taskCreatedMsg{projectID: id, task: task, err: err}
	}
}

func (v *ProjectDetailView) toggleTask(taskID int64) tea.Cmd {
	id, tasks := v.projectID, v.tasks
	return func() tea.Msg {
		_, err := tasks.Toggle(context.Background(), id, taskID)
		return taskToggledMsg{projectID: id, taskID: taskID, err: err}
	}
}

func (v *ProjectDetailView) deleteTask(taskID int64) tea.Cmd {
	id, tasks := v.projectID, v.tasks
	return func() tea.Msg {
		err := tasks.Delete(context.Background(), id, taskID)
		return taskDeletedMsg{projectID: id, taskID: taskID, err: err}
	}
}

func (v *ProjectDetailView) selectedTask() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.taskList) {
		return models.Task{}, false
	}
	return v.taskList[v.cursor], true
}

func (v *ProjectDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.newDesc.SetWidth(clamp(styles.ContentWidth(msg.Width)-8, 20, 50))
		v.ensureVisible()
		return v, nil

	case detailProjectMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		if msg.err != nil {
			slog.Error("failed to load project", "id", msg.projectID, "error", msg.err)
			v.loading = false
			return v, func() tea.Msg { return BackToProjects{} }
		}
		v.project = msg.project
		return v, v.loadTasks()

	case tasksLoadedMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			slog.Error("failed to load tasks", "project", msg.projectID, "error", msg.err)
			v.errMsg = errorMessage(msg.err)
			// keep whatever tasks were shown so the project stays usable
			v.ready = true
			return v, nil
		}
		SortByDueDate(msg.tasks)
		v.taskList = msg.tasks
		v.ready = true
		if v.cursor >= len(v.taskList) {
			v.cursor = max(len(v.taskList)-1, 0)
		}
		if len(v.taskList) == 0 {
			v.viewingTask = false
		}
		v.ensureVisible()
		return v, nil

	case taskCreatedMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		v.submitting = false
		if msg.err != nil {
			slog.Error("failed to create task", "project", msg.projectID, "error", msg.err)
			v.errMsg = errorMessage(msg.err)
			return v, nil
		}
		v.creating = false
		v.errMsg = ""
		return v, v.loadProject()

	case taskToggledMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		if msg.err != nil {
			slog.Error("failed to toggle task", "task", msg.taskID, "error", msg.err)
			v.errMsg = errorMessage(msg.err)
			return v, nil
		}
		for i := range v.taskList {
			if v.taskList[i].ID == msg.taskID {
				v.taskList[i].Completed = !v.taskList[i].Completed
				break
			}
		}
		return v, v.refreshProgress()

	case progressLoadedMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		if msg.err != nil {
			slog.Error("failed to refresh progress", "project", msg.projectID, "error", msg.err)
			return v, nil
		}
		if v.project == nil {
			v.project = msg.project
			return v, nil
		}
		v.project.TotalTasks = msg.project.TotalTasks
		v.project.CompletedTasks = msg.project.CompletedTasks
		v.project.ProgressPercentage = msg.project.ProgressPercentage
		return v, nil

	case taskDeletedMsg:
		if msg.projectID != v.projectID {
			return v, nil
		}
		if msg.err != nil {
			slog.Error("failed to delete task", "task", msg.taskID, "error", msg.err)
			v.errMsg = errorMessage(msg.err)
			return v, nil
		}
		return v, v.loadProject()

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.viewingTask {
			return v.updateViewingTask(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *ProjectDetailView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.taskList)-1 {
			v.cursor++
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Enter):
		if _, ok := v.selectedTask(); ok {
			v.viewingTask = true
		}

	case key.Matches(msg, v.keys.New):
		if !v.ready {
			return v, nil
		}
		v.openCreateTaskDialog()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Toggle):
		if task, ok := v.selectedTask(); ok {
			return v, v.toggleTask(task.ID)
		}

	case key.Matches(msg, v.keys.Delete):
		v.confirmDelete()

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
	}

	return v, nil
}

func (v *ProjectDetailView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		v.viewingTask = false
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Toggle):
		if task, ok := v.selectedTask(); ok {
			return v, v.toggleTask(task.ID)
		}
	case key.Matches(msg, v.keys.Delete):
		v.confirmDelete()
	}
	return v, nil
}

func (v *ProjectDetailView) confirmDelete() {
	task, ok := v.selectedTask()
	if !ok {
		return
	}
	v.confirmingDelete = true
	v.deleteTargetID = task.ID
	v.deleteTargetName = task.Title
}

func (v *ProjectDetailView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Confirm):
		v.confirmingDelete = false
		v.viewingTask = false
		return v, v.deleteTask(v.deleteTargetID)
	case key.Matches(msg, v.keys.Cancel):
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ProjectDetailView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.createTask()

	case key.Matches(msg, v.keys.ShiftTab):
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter) && v.focusIdx != 1:
		if v.focusIdx == 3 {
			return v, v.createTask()
		}
		v.focusIdx++
		v.updateFocus()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	case 2:
		v.newDue, cmd = v.newDue.Update(msg)
	}
	return v, cmd
}

func (v *ProjectDetailView) updateFocus() {
	v.newTitle.Blur()
	v.newDesc.Blur()
	v.newDue.Blur()

	switch v.focusIdx {
	case 0:
		v.newTitle.Focus()
	case 1:
		v.newDesc.Focus()
	case 2:
		v.newDue.Focus()
	}
}

// visibleTasks is how many two-line task rows fit under the header
func (v *ProjectDetailView) visibleTasks() int {
	return max((v.height-12)/2, 1)
}

func (v *ProjectDetailView) ensureVisible() {
	visible := v.visibleTasks()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

func (v *ProjectDetailView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if !v.ready || v.project == nil {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	if v.errMsg != "" {
		b.WriteString(v.styles.StatusBar.Inherit(v.styles.Error).Render(v.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *ProjectDetailView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	p := *v.project

	lines := []string{s.Title.Render(p.Title)}
	if p.Description != "" {
		lines = append(lines, s.TitleMuted.Render(wordwrap.String(p.Description, max(contentWidth-4, 20))))
	}
	lines = append(lines, "", renderProgress(p, clamp(contentWidth-30, 10, 40)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *ProjectDetailView) renderTaskList() string {
	s := v.styles

	if len(v.taskList) == 0 {
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	now := v.now()
	end := min(v.scrollY+v.visibleTasks(), len(v.taskList))

	var items []string
	for i := v.scrollY; i < end; i++ {
		items = append(items, v.renderTaskItem(v.taskList[i], i == v.cursor, now))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *ProjectDetailView) renderTaskItem(task models.Task, selected bool, now time.Time) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	check := "[ ]"
	if task.Completed {
		check = "[x]"
	}

	titleText := task.Title
	if task.Completed {
		titleText = s.TaskDone.Render(titleText)
	}

	due := "Due " + FormatDate(task.DueDate)
	dueStyle := s.TitleMuted
	if IsOverdue(task, now) {
		due += " (overdue)"
		dueStyle = s.TaskOverdue
	}

	rowStyle := s.ListItem
	if selected {
		rowStyle = s.ListSelected
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		rowStyle.Width(width).Render(check+" "+titleText),
		rowStyle.Width(width).Render("    "+dueStyle.Render(due)),
	)
}

func (v *ProjectDetailView) renderTaskView() string {
	task, ok := v.selectedTask()
	if !ok {
		return ""
	}

	s := v.styles
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	labelStyle := s.TitleMuted

	status := "Open"
	if task.Completed {
		status = "Done"
	}

	due := FormatDate(task.DueDate)
	if IsOverdue(task, v.now()) {
		due = s.TaskOverdue.Render(due + " (overdue)")
	}

	desc := s.TitleMuted.Render("No description")
	if task.Description != "" {
		desc = wordwrap.String(task.Description, textWidth)
	}

	created := ""
	if !task.CreatedAt.IsZero() {
		created = task.CreatedAt.Format("Jan 2, 2006 3:04 PM")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(task.Title),
		labelStyle.Render("Status"),
		status,
		"",
		labelStyle.Render("Due"),
		due,
		"",
		labelStyle.Render("Created"),
		created,
		"",
		labelStyle.Render("Description"),
		desc,
		"",
		s.Help.Render(fmt.Sprintf("%s toggle • %s delete • %s back",
			s.HelpKey.Render("space"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("esc"),
		)),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}

func (v *ProjectDetailView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle := s.Input
	descStyle := s.Input
	dueStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		dueStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	label := " Save "
	if v.submitting {
		label = " Saving… "
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Task"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.newTitle.View()),
		"",
		"Description:",
		descStyle.Render(v.newDesc.View()),
		"",
		"Due date ("+models.DateLayout+"):",
		dueStyle.Width(16).Render(v.newDue.View()),
		"",
		btnStyle.Render(label),
		"",
		s.Error.Render(v.errMsg),
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectDetailView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(
		fmt.Sprintf("%s view • %s toggle • %s new • %s del • %s back • %s quit",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("space"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("esc"),
			s.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectDetailView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↑/k ↓/j") + " move",
		s.HelpKey.Render("↵") + "       view task",
		s.HelpKey.Render("space") + "   toggle done",
		s.HelpKey.Render("n") + "       new task",
		s.HelpKey.Render("d") + "       delete task",
		s.HelpKey.Render("esc") + "     back to projects",
		s.HelpKey.Render("q") + "       quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectDetailView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(deletePrompt(v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
