package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/alwalxed/dft/internal/logging"
	"github.com/alwalxed/dft/internal/nav"
	"github.com/alwalxed/dft/internal/project"
	"github.com/alwalxed/dft/internal/tree"
)

// DefaultFeedbackDuration is how long a feedback message stays visible.
const DefaultFeedbackDuration = 2 * time.Second

// Feedback texts.
const (
	msgAdded       = "Added"
	msgUpdated     = "Updated"
	msgDeleted     = "Deleted"
	msgMarkedDone  = "Marked done"
	msgMarkedOpen  = "Marked open"
	msgSaveFailed  = "Failed to save"
	msgNodeMissing = "Item no longer exists"
)

// Model is the root Bubble Tea model for an open project.
type Model struct {
	project    *project.Project
	nav        nav.State
	modal      modal
	feedback   string
	feedbackID int
	ttl        time.Duration

	saver    Saver
	logger   *log.Logger
	helpText string

	keys     navKeys
	modalKey modalKeys
	help     help.Model
	width    int
	height   int
	quitting bool
	finalErr error
}

// Option configures a Model.
type Option func(*Model)

// WithSaver sets where the project is saved after each mutation and on quit.
func WithSaver(s Saver) Option {
	return func(m *Model) { m.saver = s }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithFeedbackDuration sets how long feedback messages stay visible.
func WithFeedbackDuration(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithHelpText sets the markdown shown in the help dialog.
func WithHelpText(md string) Option {
	return func(m *Model) { m.helpText = md }
}

// New creates a session over p, viewing the root's children.
func New(p *project.Project, opts ...Option) Model {
	m := Model{
		project:  p,
		ttl:      DefaultFeedbackDuration,
		logger:   logging.Discard(),
		keys:     NavKeyMap(),
		modalKey: ModalKeyMap(),
		help:     help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Project returns the project being edited.
func (m Model) Project() *project.Project {
	return m.project
}

// FinalSaveErr returns the error from the save attempted on quit, if any.
func (m Model) FinalSaveErr() error {
	return m.finalErr
}

// Feedback returns the visible feedback message.
func (m Model) Feedback() string {
	return m.feedback
}

// Items returns the nodes in the current list.
func (m Model) Items() []*tree.Node {
	return m.nav.List(m.project.Root)
}

// SelectedIndex returns the cursor position within Items.
func (m Model) SelectedIndex() int {
	return m.nav.Selected
}

// Breadcrumb returns the titles from the root to the node being viewed.
func (m Model) Breadcrumb() []string {
	crumbs := m.nav.Breadcrumb(m.project.Root)
	out := make([]string, len(crumbs))
	for i, n := range crumbs {
		out[i] = n.Title
	}
	return out
}

// Update handles incoming messages. Key input goes to the open dialog if
// there is one, otherwise to navigation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case clearFeedbackMsg:
		if msg.id == m.feedbackID {
			m.feedback = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.modal != nil {
			return m.handleModalKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// setFeedback shows text and schedules its expiry. Scheduling under a new
// id invalidates any pending expiry.
func (m Model) setFeedback(text string) (Model, tea.Cmd) {
	m.feedback = text
	m.feedbackID++
	return m, clearFeedbackCmd(m.feedbackID, m.ttl)
}

// fail turns a refused action into feedback.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	return m.setFeedback(err.Error())
}

// handleKey processes keys while no dialog is open.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	root := m.project.Root

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		s, err := m.nav.MoveUp(root)
		if err != nil {
			return m.fail(err)
		}
		m.nav = s
		return m, nil

	case key.Matches(msg, m.keys.Down):
		s, err := m.nav.MoveDown(root)
		if err != nil {
			return m.fail(err)
		}
		m.nav = s
		return m, nil

	case key.Matches(msg, m.keys.Dive):
		s, err := m.nav.DiveIn(root)
		if err != nil {
			return m.fail(err)
		}
		m.nav = s
		return m, nil

	case key.Matches(msg, m.keys.Back):
		s, err := m.nav.GoBack()
		if err != nil {
			return m.fail(err)
		}
		m.nav = s.EnsureValid(root)
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.modal = newInputModal(inputNew, m.nav.Parent(root).ID, "")
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		cur := m.nav.Current(root)
		if cur == nil {
			return m.fail(nav.ErrNothingSelected)
		}
		m.modal = newInputModal(inputEdit, cur.ID, cur.Title)
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		cur := m.nav.Current(root)
		if cur == nil {
			return m.fail(nav.ErrNothingSelected)
		}
		m.modal = newDeleteModal(cur, m.nav.Selected)
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		cur := m.nav.Current(root)
		if cur == nil {
			return m.fail(nav.ErrNothingSelected)
		}
		return m.apply(func(m *Model) (string, error) {
			if tree.ToggleStatus(cur) == tree.StatusDone {
				return msgMarkedDone, nil
			}
			return msgMarkedOpen, nil
		})

	case key.Matches(msg, m.keys.Help):
		m.modal = helpModal{}
		return m, nil
	}

	return m, nil
}

// handleModalKey routes a key to the open dialog. ctrl+c drops the dialog
// and quits.
func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.modalKey.Quit) {
		m.modal = nil
		return m.quit()
	}

	switch md := m.modal.(type) {
	case helpModal:
		m.modal = nil
		return m, nil

	case deleteModal:
		switch {
		case key.Matches(msg, m.modalKey.Cancel):
			m.modal = nil
		case key.Matches(msg, m.modalKey.Switch):
			md.button ^= 1
			m.modal = md
		case key.Matches(msg, m.modalKey.Submit):
			m.modal = nil
			if md.button == buttonCancel {
				return m, nil
			}
			return m.deleteNode(md)
		}
		return m, nil

	case inputModal:
		switch {
		case key.Matches(msg, m.modalKey.Cancel):
			m.modal = nil
			return m, nil
		case key.Matches(msg, m.modalKey.Switch):
			md.button ^= 1
			m.modal = md
			return m, nil
		case key.Matches(msg, m.modalKey.Submit):
			if md.button == buttonCancel {
				m.modal = nil
				return m, nil
			}
			return m.submitInput(md)
		}
		md, cmd := md.update(msg)
		m.modal = md
		return m, cmd
	}

	return m, nil
}

// submitInput validates the buffer and applies a new or edited title. On a
// validation failure the dialog stays open with the error.
func (m Model) submitInput(md inputModal) (tea.Model, tea.Cmd) {
	title, err := tree.ValidateTitle(md.Value())
	if err != nil {
		var ve *tree.ValidationError
		if errors.As(err, &ve) {
			md.err = ve.Reason
		} else {
			md.err = err.Error()
		}
		m.modal = md
		return m, nil
	}

	m.modal = nil
	root := m.project.Root

	if md.kind == inputEdit {
		n := tree.Find(root, md.targetID)
		if n == nil {
			return m.setFeedback(msgNodeMissing)
		}
		return m.apply(func(m *Model) (string, error) {
			if err := tree.EditTitle(n, title); err != nil {
				return "", err
			}
			return msgUpdated, nil
		})
	}

	parent := tree.Find(root, md.targetID)
	if parent == nil {
		parent = root
	}
	return m.apply(func(m *Model) (string, error) {
		child, err := tree.AddChild(parent, title)
		if err != nil {
			return "", err
		}
		if m.nav.Parent(root) == parent {
			m.nav = m.nav.SelectID(root, child.ID)
		}
		return msgAdded, nil
	})
}

// deleteNode removes the node named by the dialog from the current list.
func (m Model) deleteNode(md deleteModal) (tea.Model, tea.Cmd) {
	root := m.project.Root
	parent := tree.FindParent(root, md.targetID)
	if parent == nil {
		return m.setFeedback(msgNodeMissing)
	}
	return m.apply(func(m *Model) (string, error) {
		index := tree.SiblingIndex(parent.Children, md.targetID)
		if !tree.DeleteChild(parent, md.targetID) {
			return "", errors.New(msgNodeMissing)
		}
		if m.nav.Parent(root) == parent {
			m.nav = m.nav.AdjustAfterDelete(root, index)
		}
		return msgDeleted, nil
	})
}

// apply runs a tree mutation, repairs the navigation position and saves.
// A failed save keeps the in-memory change. A panic in fn becomes feedback.
func (m Model) apply(fn func(m *Model) (string, error)) (out tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("mutation panicked", "panic", r)
			m.nav = m.nav.Repair(m.project.Root)
			out, cmd = m.setFeedback(fmt.Sprintf("Error: %v", r))
		}
	}()

	text, err := fn(&m)
	m.nav = m.nav.Repair(m.project.Root)
	if err != nil {
		return m.setFeedback(err.Error())
	}
	if err := m.save(); err != nil {
		return m.setFeedback(msgSaveFailed)
	}
	return m.setFeedback(text)
}

// save writes the project through the Saver, if one is configured.
func (m Model) save() error {
	if m.saver == nil {
		return nil
	}
	if err := m.saver.Save(m.project); err != nil {
		m.logger.Error("save failed", "project", m.project.Name, "err", err)
		return err
	}
	m.logger.Debug("saved", "project", m.project.Name)
	return nil
}

// quit attempts a final save and exits regardless of its outcome.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.finalErr = m.save()
	m.quitting = true
	return m, tea.Quit
}
