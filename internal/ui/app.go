package ui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/taskflow/internal/auth"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/router"
	"github.com/tgienger/taskflow/internal/session"
	"github.com/tgienger/taskflow/internal/ui/views"
)

// Settings remembers the last opened project between runs
type Settings interface {
	LastProjectID() int64
	SetLastProjectID(id int64) error
}

// Options wires the app to its collaborators
type Options struct {
	Gateway  *auth.Gateway
	Session  *session.Store
	Projects views.ProjectDirectory
	Tasks    views.TaskDirectory
	Settings Settings
}

// identityChangedMsg carries a session store notification into the event loop
type identityChangedMsg struct {
	identity *models.Identity
}

type App struct {
	gateway  *auth.Gateway
	session  *session.Store
	projects views.ProjectDirectory
	tasks    views.TaskDirectory
	settings Settings
	router   *router.Router

	route       router.Route
	identities  chan *models.Identity
	unsubscribe func()

	login       *views.LoginView
	projectList *views.ProjectListView
	detail      *views.ProjectDetailView

	width  int
	height int
}

// Creates a new application
func NewApp(opts Options) *App {
	a := &App{
		gateway:    opts.Gateway,
		session:    opts.Session,
		projects:   opts.Projects,
		tasks:      opts.Tasks,
		settings:   opts.Settings,
		router:     router.New(router.Guard(opts.Gateway)),
		identities: make(chan *models.Identity, 16),
	}
	a.unsubscribe = opts.Session.Subscribe(func(identity *models.Identity) {
		select {
		case a.identities <- identity:
		default:
			slog.Warn("identity change dropped, event loop is behind")
		}
	})
	return a
}

// Close detaches the app from the session store
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Route is the screen currently shown
func (a *App) Route() router.Route {
	return a.route
}

// StartPath is where the app opens: the last project if one is remembered
func (a *App) StartPath() string {
	if id := a.settings.LastProjectID(); id > 0 {
		return router.ProjectPath(id)
	}
	return router.ProjectsPath
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.navigate(a.StartPath()), a.waitForIdentity())
}

func (a *App) waitForIdentity() tea.Cmd {
	ch := a.identities
	return func() tea.Msg {
		return identityChangedMsg{identity: <-ch}
	}
}

// navigate resolves path through the router and builds the screen it lands on
func (a *App) navigate(path string) tea.Cmd {
	route := a.router.Navigate(path)
	a.route = route
	slog.Debug("navigate", "path", path, "route", route.Name.String())

	var cmd tea.Cmd
	switch route.Name {
	case router.Login:
		a.detail = nil
		a.projectList = nil
		a.login = views.NewLoginView(a.gateway)
		a.resize(a.login)
		cmd = a.login.Init()

	case router.Projects:
		a.login = nil
		a.detail = nil
		if a.projectList == nil {
			a.projectList = views.NewProjectListView(a.projects, a.gateway)
			a.resize(a.projectList)
		}
		a.projectList.SetUser(a.session.Current())
		cmd = a.projectList.Init()

	case router.ProjectDetail:
		a.login = nil
		a.detail = views.NewProjectDetailView(route.ProjectID, a.projects, a.tasks)
		a.resize(a.detail)
		a.rememberProject(route.ProjectID)
		cmd = a.detail.Init()
	}
	return cmd
}

func (a *App) rememberProject(id int64) {
	if err := a.settings.SetLastProjectID(id); err != nil {
		slog.Warn("failed to save last project", "id", id, "error", err)
	}
}

func (a *App) resize(m tea.Model) {
	if a.width > 0 {
		m.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case identityChangedMsg:
		next := a.waitForIdentity()
		if msg.identity == nil {
			a.rememberProject(0)
			if a.route.Name == router.Login {
				return a, next
			}
			return a, tea.Batch(next, a.navigate(router.LoginPath))
		}
		if a.route.Name == router.Login {
			return a, tea.Batch(next, a.navigate(router.ProjectsPath))
		}
		if a.projectList != nil {
			a.projectList.SetUser(msg.identity)
		}
		return a, next

	case views.SelectedProject:
		return a, a.navigate(router.ProjectPath(msg.Project.ID))

	case views.BackToProjects:
		a.rememberProject(0)
		return a, a.navigate(router.ProjectsPath)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if view := a.current(); view != nil {
			_, cmd := view.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Late results still apply, so every live view sees non-key messages
	var cmds []tea.Cmd
	for _, view := range a.live() {
		_, cmd := view.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// current is the view for the active route
func (a *App) current() tea.Model {
	switch a.route.Name {
	case router.Login:
		if a.login != nil {
			return a.login
		}
	case router.Projects:
		if a.projectList != nil {
			return a.projectList
		}
	case router.ProjectDetail:
		if a.detail != nil {
			return a.detail
		}
	}
	return nil
}

func (a *App) live() []tea.Model {
	var out []tea.Model
	if a.login != nil {
		out = append(out, a.login)
	}
	if a.projectList != nil {
		out = append(out, a.projectList)
	}
	if a.detail != nil {
		out = append(out, a.detail)
	}
	return out
}

func (a *App) View() string {
	if view := a.current(); view != nil {
		return view.View()
	}
	return ""
}
