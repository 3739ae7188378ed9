package session

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/alwalxed/dft/internal/tree"
)

// CursorMarker is the prefix shown on the selected row.
const CursorMarker = "▸ "

var (
	accent = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	dim    = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}

	breadcrumbStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedRow     = lipgloss.NewStyle().Bold(true)
	doneRow         = lipgloss.NewStyle().Foreground(dim)
	mutedText       = lipgloss.NewStyle().Foreground(dim)
	feedbackText    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "3", Dark: "11"})
	errorText       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	modalTitleStyle = lipgloss.NewStyle().Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(dim)
	activeButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Bold(true).
				Foreground(lipgloss.Color("0")).
				Background(accent)
)

// ModalBorder returns the style of the box drawn around an open dialog.
func ModalBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
}

// StatusBox returns the checkbox drawn for a node's completion marker.
func StatusBox(m tree.Marker) string {
	switch m {
	case tree.MarkerDone:
		return "[x]"
	case tree.MarkerPartial:
		return "[~]"
	default:
		return "[ ]"
	}
}
