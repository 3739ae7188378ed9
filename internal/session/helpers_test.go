package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alwalxed/dft/internal/project"
	"github.com/alwalxed/dft/internal/tree"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// fakeSaver records saves and can be told to fail or panic.
type fakeSaver struct {
	mu    sync.Mutex
	saves int
	err   error
	panic bool
}

func (f *fakeSaver) Save(*project.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panic {
		panic("disk on fire")
	}
	f.saves++
	return f.err
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

var errDiskFull = errors.New("disk full")

// Key constructors.
var (
	keyUp        = tea.KeyMsg{Type: tea.KeyUp}
	keyDown      = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter     = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc       = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab       = tea.KeyMsg{Type: tea.KeyTab}
	keyBackspace = tea.KeyMsg{Type: tea.KeyBackspace}
	keySpace     = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyLeft      = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight     = tea.KeyMsg{Type: tea.KeyRight}
	keyCtrlC     = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// newTestProject returns an empty project named demo.
func newTestProject(t *testing.T) *project.Project {
	t.Helper()
	p, err := project.New("demo")
	if err != nil {
		t.Fatalf("project.New() error = %v", err)
	}
	return p
}

// withChildren adds titled children under n.
func withChildren(t *testing.T, n *tree.Node, titles ...string) {
	t.Helper()
	for _, title := range titles {
		if _, err := tree.AddChild(n, title); err != nil {
			t.Fatalf("AddChild(%q) error = %v", title, err)
		}
	}
}

// newTestModel returns a model over p with a fake saver and a short
// feedback duration.
func newTestModel(t *testing.T, p *project.Project, opts ...Option) (Model, *fakeSaver) {
	t.Helper()
	saver := &fakeSaver{}
	base := []Option{WithSaver(saver), WithFeedbackDuration(time.Millisecond)}
	return New(p, append(base, opts...)...), saver
}

// send applies msgs in order and returns the final model and the last command.
func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update() returned %T, want Model", next)
		}
	}
	return m, cmd
}

func titlesOf(nodes []*tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Title
	}
	return out
}
