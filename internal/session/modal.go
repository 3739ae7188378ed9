package session

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alwalxed/dft/internal/tree"
)

// modal is the dialog currently open over the list. A nil modal means none.
// Implementations are values; handlers return the updated copy.
type modal interface {
	title() string
}

// Button indexes shared by the input and delete dialogs.
const (
	buttonPrimary = 0
	buttonCancel  = 1
)

// inputKind tells an inputModal whether it creates or renames a node.
type inputKind int

const (
	inputNew inputKind = iota
	inputEdit
)

// inputModal collects a title for a new node or an edit.
type inputModal struct {
	kind     inputKind
	targetID string // parent for inputNew, node for inputEdit
	input    textinput.Model
	err      string
	button   int
}

func newInputModal(kind inputKind, targetID, value string) inputModal {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.Prompt = "> "
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return inputModal{kind: kind, targetID: targetID, input: ti}
}

func (m inputModal) title() string {
	if m.kind == inputEdit {
		return "Edit item"
	}
	return "New item"
}

// Value returns the raw buffer contents.
func (m inputModal) Value() string {
	return m.input.Value()
}

// update feeds a key that is not a dialog control to the text buffer.
func (m inputModal) update(msg tea.KeyMsg) (inputModal, tea.Cmd) {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.err = ""
	}
	return m, cmd
}

func (m inputModal) primaryLabel() string {
	if m.kind == inputEdit {
		return "Save"
	}
	return "Add"
}

func (m inputModal) view() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render(m.title()))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(errorText.Render(m.err))
	}
	b.WriteString("\n\n")
	b.WriteString(renderButtons(m.primaryLabel(), m.button))
	return b.String()
}

// deleteModal confirms removal of a node and its subtree.
type deleteModal struct {
	targetID string
	index    int
	label    string
	subtree  int
	button   int
}

func newDeleteModal(n *tree.Node, index int) deleteModal {
	return deleteModal{
		targetID: n.ID,
		index:    index,
		label:    n.Title,
		subtree:  tree.CountDescendants(n),
	}
}

func (m deleteModal) title() string {
	return "Delete item?"
}

func (m deleteModal) view() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render(m.title()))
	b.WriteString("\n\n  ")
	b.WriteString(m.label)
	switch m.subtree {
	case 0:
	case 1:
		b.WriteString("\n\n  This also deletes 1 sub-item.")
	default:
		fmt.Fprintf(&b, "\n\n  This also deletes %d sub-items.", m.subtree)
	}
	b.WriteString("\n\n")
	b.WriteString(renderButtons("Delete", m.button))
	return b.String()
}

// helpModal shows the key reference and closes on any key.
type helpModal struct{}

func (helpModal) title() string {
	return "Help"
}

// renderButtons draws the primary and cancel buttons with the selected one
// highlighted.
func renderButtons(primary string, selected int) string {
	p, c := buttonStyle, buttonStyle
	if selected == buttonCancel {
		c = activeButtonStyle
	} else {
		p = activeButtonStyle
	}
	return "  " + p.Render(primary) + "  " + c.Render("Cancel")
}
