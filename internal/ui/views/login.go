package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/ui/keys"
	"github.com/tgienger/taskflow/internal/ui/styles"
)

// Authenticator signs a user in and out
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.Identity, error)
	Logout()
}

type loginSucceededMsg struct {
	identity models.Identity
}

type loginFailedMsg struct {
	err error
}

// LoginView collects credentials and hands them to the auth gateway
type LoginView struct {
	auth   Authenticator
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	email      textinput.Model
	password   textinput.Model
	focusIdx   int // 0=email, 1=password, 2=submit
	submitting bool
	errMsg     string
}

func NewLoginView(auth Authenticator) *LoginView {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &LoginView{
		auth:     auth,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		email:    email,
		password: password,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

// Err is the message of the last failed attempt
func (v *LoginView) Err() string {
	return v.errMsg
}

// Submitting reports whether a login request is in flight
func (v *LoginView) Submitting() bool {
	return v.submitting
}

func (v *LoginView) submit() tea.Cmd {
	if v.submitting {
		return nil
	}
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	if email == "" || password == "" {
		v.errMsg = "Email and password are required"
		return nil
	}

	v.submitting = true
	v.errMsg = ""
	auth := v.auth
	return func() tea.Msg {
		identity, err := auth.Login(context.Background(), email, password)
		if err != nil {
			return loginFailedMsg{err: err}
		}
		return loginSucceededMsg{identity: *identity}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginSucceededMsg:
		v.submitting = false
		v.password.Reset()
		return v, nil

	case loginFailedMsg:
		v.submitting = false
		v.errMsg = errorMessage(msg.err)
		v.password.Reset()
		v.focusIdx = 1
		v.updateFocus()
		return v, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, tea.Quit
		case key.Matches(msg, v.keys.ShiftTab), msg.String() == "up":
			v.focusIdx = (v.focusIdx + 2) % 3
			v.updateFocus()
			return v, nil
		case key.Matches(msg, v.keys.Tab), msg.String() == "down":
			v.focusIdx = (v.focusIdx + 1) % 3
			v.updateFocus()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx == 0 {
				v.focusIdx = 1
				v.updateFocus()
				return v, nil
			}
			return v, v.submit()
		}

		var cmd tea.Cmd
		switch v.focusIdx {
		case 0:
			v.email, cmd = v.email.Update(msg)
		case 1:
			v.password, cmd = v.password.Update(msg)
		}
		return v, cmd
	}

	return v, nil
}

func (v *LoginView) updateFocus() {
	v.email.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.email.Focus()
	case 1:
		v.password.Focus()
	}
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	emailStyle := s.Input
	passwordStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		emailStyle = s.InputFocused
	case 1:
		passwordStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	label := " Sign in "
	if v.submitting {
		label = " Signing in… "
	}

	status := ""
	if v.errMsg != "" {
		status = s.Error.Render(v.errMsg)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("TaskFlow"),
		s.TitleMuted.Render("Sign in to continue"),
		"",
		"Email:",
		emailStyle.Width(inputWidth).Render(v.email.View()),
		"",
		"Password:",
		passwordStyle.Width(inputWidth).Render(v.password.View()),
		"",
		btnStyle.Render(label),
		"",
		status,
		s.TitleMuted.Render("Tab: next • Enter: sign in • Esc: quit"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
