package session

import (
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func collectKeys(groups [][]key.Binding) []string {
	var out []string
	for _, g := range groups {
		for _, b := range g {
			out = append(out, b.Keys()...)
		}
	}
	return out
}

func TestNavKeys_ContainsExpected(t *testing.T) {
	// Given: the list view key map
	km := NavKeyMap()
	allKeys := collectKeys(km.FullHelp())

	// Then: every navigation and action key is bound
	expected := []string{
		"up", "k", "down", "j",
		"enter", "right", "l",
		"left", "h", "esc", "backspace",
		"n", "e", "d", " ", "x", "?", "q", "ctrl+c",
	}
	for _, want := range expected {
		if !slices.Contains(allKeys, want) {
			t.Errorf("NavKeyMap missing key %q, got %v", want, allKeys)
		}
	}
}

func TestNavKeys_NoDuplicates(t *testing.T) {
	allKeys := collectKeys(NavKeyMap().FullHelp())
	seen := map[string]bool{}
	for _, k := range allKeys {
		if seen[k] {
			t.Errorf("key %q bound twice", k)
		}
		seen[k] = true
	}
}

func TestModalKeys_ContainsExpected(t *testing.T) {
	allKeys := collectKeys(ModalKeyMap().FullHelp())

	for _, want := range []string{"tab", "enter", "esc", "ctrl+c"} {
		if !slices.Contains(allKeys, want) {
			t.Errorf("ModalKeyMap missing key %q, got %v", want, allKeys)
		}
	}
}

func TestCloseKeys_ContainsAnyKey(t *testing.T) {
	bindings := CloseKeyMap().ShortHelp()
	if len(bindings) != 1 {
		t.Fatalf("CloseKeyMap has %d bindings, want 1", len(bindings))
	}
	if h := bindings[0].Help(); !strings.Contains(h.Key, "any") {
		t.Errorf("help key = %q, want an 'any key' hint", h.Key)
	}
}

func TestHelpBindings_PerModal(t *testing.T) {
	tests := []struct {
		name  string
		modal modal
		want  string
	}{
		{"none", nil, "toggle done"},
		{"input", newInputModal(inputNew, "", ""), "switch button"},
		{"delete", deleteModal{}, "switch button"},
		{"help", helpModal{}, "close"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var descs []string
			for _, g := range HelpBindings(tt.modal).FullHelp() {
				for _, b := range g {
					descs = append(descs, b.Help().Desc)
				}
			}
			if !slices.Contains(descs, tt.want) {
				t.Errorf("HelpBindings(%s) descs = %v, want %q", tt.name, descs, tt.want)
			}
		})
	}
}
