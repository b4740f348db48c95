package views

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/taskflow/internal/api"
	"github.com/tgienger/taskflow/internal/testutil"
)

func newTestClient(t *testing.T) (*api.Client, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	tokens := &testutil.MemoryTokens{Value: testutil.IssueToken("ada@example.com", "Ada Lovelace")}
	return api.New(backend.URL(), tokens), backend
}

// runCmd executes cmd and any batched commands, returning the non-nil messages
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("command did not finish")
	}

	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, runCmd(t, c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// settle runs cmd and feeds every resulting message back into m until no
// commands remain. It returns every message seen.
func settle(t *testing.T, m tea.Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, msg := range runCmd(t, next) {
			seen = append(seen, msg)
			_, c := m.Update(msg)
			if c != nil {
				queue = append(queue, c)
			}
		}
	}
	return seen
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ", "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m tea.Model, s string) tea.Cmd {
	_, cmd := m.Update(keyPress(s))
	return cmd
}

// typeText sends each rune as a key press, dropping cursor blink commands
func typeText(m tea.Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
