package session

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// navKeys holds key bindings for the list view.
type navKeys struct {
	Up     key.Binding
	Down   key.Binding
	Dive   key.Binding
	Back   key.Binding
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Toggle key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns the list view bindings for the help bar.
func (k navKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Dive, k.Back, k.New, k.Toggle, k.Help, k.Quit}
}

// FullHelp returns the list view bindings grouped for expanded help.
func (k navKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Dive, k.Back},
		{k.New, k.Edit, k.Delete, k.Toggle},
		{k.Help, k.Quit},
	}
}

// modalKeys holds key bindings shared by the input and delete dialogs.
type modalKeys struct {
	Switch key.Binding
	Submit key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

// ShortHelp returns the dialog bindings for the help bar.
func (k modalKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Submit, k.Cancel, k.Quit}
}

// FullHelp returns the dialog bindings grouped for expanded help.
func (k modalKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Switch, k.Submit, k.Cancel}, {k.Quit}}
}

// closeKeys holds the single binding shown while the help dialog is open.
type closeKeys struct {
	AnyKey key.Binding
}

// ShortHelp returns the help dialog bindings for the help bar.
func (k closeKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.AnyKey}
}

// FullHelp returns the help dialog bindings grouped for expanded help.
func (k closeKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.AnyKey}}
}

// NavKeyMap returns the key bindings for the list view.
func NavKeyMap() navKeys {
	return navKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Dive: key.NewBinding(
			key.WithKeys("enter", "right", "l"),
			key.WithHelp("→/enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h", "esc", "backspace"),
			key.WithHelp("←/esc", "back"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle done"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ModalKeyMap returns the key bindings for the input and delete dialogs.
func ModalKeyMap() modalKeys {
	return modalKeys{
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch button"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		// Only ctrl+c: q is typed into the title.
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// CloseKeyMap returns the key bindings for the help dialog.
func CloseKeyMap() closeKeys {
	return closeKeys{
		// "any" is a display-only key for the help bar; the help dialog
		// closes on every tea.KeyMsg.
		AnyKey: key.NewBinding(
			key.WithKeys("any"),
			key.WithHelp("any key", "close"),
		),
	}
}

// HelpBindings returns the help.KeyMap for the open dialog, or the list
// view bindings when no dialog is open.
func HelpBindings(md modal) help.KeyMap {
	switch md.(type) {
	case inputModal, deleteModal:
		return ModalKeyMap()
	case helpModal:
		return CloseKeyMap()
	default:
		return NavKeyMap()
	}
}
