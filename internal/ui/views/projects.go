package views

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Title }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Title }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 3 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	desc := p.Description()
	if desc == "" {
		desc = "No description"
	}

	fmt.Fprintf(w, "%s\n%s\n%s",
		titleStyle.Render(p.Title()),
		descStyle.MaxHeight(1).Render(desc),
		d.styles.ListItem.Render(renderProgress(p.project, clamp(width-24, 10, 30))),
	)
}

// renderProgress draws a project's bar followed by its counters
func renderProgress(p models.Project, barWidth int) string {
	tier := ProgressTierFor(p.ProgressPercentage)
	pct := lipgloss.NewStyle().Foreground(tier.Color()).
		Render(fmt.Sprintf("%3.0f%%", p.ProgressPercentage))
	return fmt.Sprintf("%s %s  %d/%d tasks",
		styles.ProgressBar(p.ProgressPercentage, barWidth, tier), pct,
		p.CompletedTasks, p.TotalTasks)
}

// SelectedProject asks the app to open a project
type SelectedProject struct {
	Project models.Project
}

type projectsLoadedMsg struct {
	projects []models.Project
	err      error
}

type projectCreatedMsg struct {
	project *models.Project
	err     error
}

type projectDeletedMsg struct {
	id  int64
	err error
}

// ProjectListView lists the user's projects with their progress
type ProjectListView struct {
	projects ProjectDirectory
	auth     Authenticator
	user     *models.Identity

	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	loading    bool
	loaded     bool
	loadFailed bool
	errMsg     string

	creating   bool
	submitting bool
	newName    textinput.Model
	newDesc    textinput.Model
	focusIdx   int // 0=name, 1=desc, 2=confirm

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

func NewProjectListView(projects ProjectDirectory, auth Authenticator) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project title"
	newName.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 500

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		projects: projects,
		auth:     auth,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newDesc:  newDesc,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects()
}

// SetUser sets the identity shown in the header
func (v *ProjectListView) SetUser(identity *models.Identity) {
	v.user = identity
}

// Projects returns the projects currently listed
func (v *ProjectListView) Projects() []models.Project {
	items := v.list.Items()
	projects := make([]models.Project, 0, len(items))
	for _, item := range items {
		if p, ok := item.(projectItem); ok {
			projects = append(projects, p.project)
		}
	}
	return projects
}

// Loading reports whether a list request is in flight
func (v *ProjectListView) Loading() bool { return v.loading }

// LoadFailed reports whether the last list request failed
func (v *ProjectListView) LoadFailed() bool { return v.loadFailed }

// Creating reports whether the create dialog is open
func (v *ProjectListView) Creating() bool { return v.creating }

// ConfirmingDelete reports whether a delete confirmation is shown
func (v *ProjectListView) ConfirmingDelete() bool { return v.confirmingDelete }

func (v *ProjectListView) loadProjects() tea.Cmd {
	v.loading = true
	projects := v.projects
	return func() tea.Msg {
		got, err := projects.List(context.Background())
		return projectsLoadedMsg{projects: got, err: err}
	}
}

func (v *ProjectListView) createProject() tea.Cmd {
	if v.submitting || !hasText(v.newName.Value()) {
		return nil
	}
	v.submitting = true
	req := models.ProjectRequest{Title: v.newName.Value(), Description: v.newDesc.Value()}
	projects := v.projects
	return func() tea.Msg {
		project, err := projects.Create(context.Background(), req)
		return projectCreatedMsg{project: project, err: err}
	}
}

func (v *ProjectListView) deleteProject(id int64) tea.Cmd {
	projects := v.projects
	return func() tea.Msg {
		return projectDeletedMsg{id: id, err: projects.Delete(context.Background(), id)}
	}
}

func (v *ProjectListView) logout() tea.Cmd {
	auth := v.auth
	return func() tea.Msg {
		auth.Logout()
		return nil
	}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-8)
		return v, nil

	case projectsLoadedMsg:
		v.loading = false
		v.loaded = true
		if msg.err != nil {
			slog.Error("failed to load projects", "error", msg.err)
			v.loadFailed = true
			v.errMsg = errorMessage(msg.err)
			v.list.SetItems(nil)
			return v, nil
		}
		v.loadFailed = false
		v.errMsg = ""
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		return v, v.list.SetItems(items)

	case projectCreatedMsg:
		v.submitting = false
		if msg.err != nil {
			slog.Error("failed to create project", "error", msg.err)
			v.errMsg = errorMessage(msg.err)
			return v, nil
		}
		v.creating = false
		v.errMsg = ""
		return v, v.loadProjects()

	case projectDeletedMsg:
		if msg.err != nil {
			slog.Error("failed to delete project", "id", msg.id, "error", msg.err)
			v.errMsg = errorMessage(msg.err)
			return v, nil
		}
		return v, v.loadProjects()

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
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

		// Typing into the list filter
		if v.list.SettingFilter() {
			var cmd tea.Cmd
			v.list, cmd = v.list.Update(msg)
			return v, cmd
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Logout):
			return v, v.logout()
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.errMsg = ""
			v.newName.Reset()
			v.newDesc.Reset()
			v.updateFocus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.project.ID
				v.deleteTargetName = item.project.Title
			}
			return v, nil
		}

		var cmd tea.Cmd
		v.list, cmd = v.list.Update(msg)
		return v, cmd
	}

	return v, nil
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Confirm):
		v.confirmingDelete = false
		return v, v.deleteProject(v.deleteTargetID)
	case key.Matches(msg, v.keys.Cancel):
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.createProject()

	case key.Matches(msg, v.keys.ShiftTab):
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.createProject()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.renderUser(),
		v.list.View(),
		v.renderStatus(),
		v.renderHelp(),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderUser() string {
	if v.user == nil {
		return ""
	}
	name := v.user.FullName
	if name == "" {
		name = v.user.Email
	}
	return v.styles.TitleMuted.Render("Signed in as " + name)
}

func (v *ProjectListView) renderStatus() string {
	if v.loading {
		return v.styles.StatusBar.Render("Refreshing...")
	}
	if v.errMsg != "" {
		return v.styles.StatusBar.Inherit(v.styles.Error).Render(v.errMsg)
	}
	return ""
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	heading := s.Title.Render("No Projects")
	hint := s.TitleMuted.Render("Press 'n' to create your first project")
	if v.loadFailed {
		heading = s.Error.Render("Could not load projects")
		hint = s.TitleMuted.Render(v.errMsg)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		v.renderUser(),
		"",
		heading,
		"",
		hint,
		"",
		s.ButtonPrimary.Render(" New Project "),
		"",
		s.TitleMuted.Render("L: log out • q: quit"),
	)

	// Center within content width, then center that in terminal
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	label := " Create "
	if v.submitting {
		label = " Creating… "
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Project"),
		"",
		"Title:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
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

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s del • %s filter • %s log out • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("L"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("d") + "      delete project",
		s.HelpKey.Render("/") + "      filter",
		s.HelpKey.Render("L") + "      log out",
		s.HelpKey.Render("q") + "      quit",
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

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(deletePrompt(v.deleteTargetName)),
		"",
		s.TitleMuted.Render("This also deletes every task in the project."),
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

func deletePrompt(title string) string {
	return "Delete \"" + title + "\"?"
}
