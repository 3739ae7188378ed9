// Package session implements the interactive Bubble Tea session for one
// project: list-cursor navigation over the tree, modal dialogs for adding,
// editing and deleting nodes, a transient feedback line, and a save after
// every mutation.
package session

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alwalxed/dft/internal/project"
)

// --- Consumer-side interfaces ---

// Saver persists a project. store.FileStore satisfies it.
type Saver interface {
	Save(p *project.Project) error
}

// --- tea.Msg types ---

// clearFeedbackMsg expires the feedback line scheduled under id. A newer
// feedback message bumps the id, so older ticks are ignored.
type clearFeedbackMsg struct {
	id int
}

// clearFeedbackCmd schedules the expiry of feedback generation id.
func clearFeedbackCmd(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearFeedbackMsg{id: id}
	})
}
