// Package nav tracks the viewing position inside a project tree.
//
// The position is a list cursor: a stack of ancestor ids (root implicit)
// naming the node whose children are on screen, plus the index of the
// selected child. Every transform is a pure function of the State and the
// tree; the State is a value and transforms never share the caller's stack.
package nav

import (
	"slices"

	"github.com/alwalxed/dft/internal/tree"
)

// Failure is a refused movement. Its text is shown to the user as is.
type Failure string

func (f Failure) Error() string { return string(f) }

const (
	ErrListEmpty       Failure = "List is empty"
	ErrAtTop           Failure = "At top"
	ErrAtBottom        Failure = "At bottom"
	ErrNothingSelected Failure = "Nothing selected"
	ErrAtRoot          Failure = "At root"
)

// State is a navigation position.
type State struct {
	Ancestors []string
	Selected  int
}

// Depth returns how many levels below the root the view is.
func (s State) Depth() int {
	return len(s.Ancestors)
}

// Parent returns the node whose children are being viewed. A stack top that
// no longer resolves falls back to root.
func (s State) Parent(root *tree.Node) *tree.Node {
	if len(s.Ancestors) == 0 {
		return root
	}
	if n := tree.Find(root, s.Ancestors[len(s.Ancestors)-1]); n != nil {
		return n
	}
	return root
}

// List returns the children currently on screen.
func (s State) List(root *tree.Node) []*tree.Node {
	if p := s.Parent(root); p != nil {
		return p.Children
	}
	return nil
}

// Current returns the selected node, or nil when nothing is selected.
func (s State) Current(root *tree.Node) *tree.Node {
	list := s.List(root)
	if s.Selected < 0 || s.Selected >= len(list) {
		return nil
	}
	return list[s.Selected]
}

// Breadcrumb returns root followed by every ancestor on the stack that still
// resolves.
func (s State) Breadcrumb(root *tree.Node) []*tree.Node {
	if root == nil {
		return nil
	}
	out := []*tree.Node{root}
	for _, id := range s.Ancestors {
		if n := tree.Find(root, id); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// MoveUp selects the previous item.
func (s State) MoveUp(root *tree.Node) (State, error) {
	list := s.List(root)
	switch {
	case len(list) == 0:
		return s, ErrListEmpty
	case s.Selected <= 0:
		return s, ErrAtTop
	}
	s.Selected--
	return s, nil
}

// MoveDown selects the next item.
func (s State) MoveDown(root *tree.Node) (State, error) {
	list := s.List(root)
	switch {
	case len(list) == 0:
		return s, ErrListEmpty
	case s.Selected >= len(list)-1:
		return s, ErrAtBottom
	}
	s.Selected++
	return s, nil
}

// DiveIn views the children of the selected item. Diving into a leaf is
// allowed and shows an empty list.
func (s State) DiveIn(root *tree.Node) (State, error) {
	cur := s.Current(root)
	if cur == nil {
		return s, ErrNothingSelected
	}
	return State{
		Ancestors: append(slices.Clone(s.Ancestors), cur.ID),
		Selected:  0,
	}, nil
}

// GoBack returns to the parent level with the first item selected.
func (s State) GoBack() (State, error) {
	if len(s.Ancestors) == 0 {
		return s, ErrAtRoot
	}
	return State{
		Ancestors: slices.Clone(s.Ancestors[:len(s.Ancestors)-1]),
		Selected:  0,
	}, nil
}

// EnsureValid clamps the selection into the current list.
func (s State) EnsureValid(root *tree.Node) State {
	n := len(s.List(root))
	switch {
	case n == 0 || s.Selected < 0:
		s.Selected = 0
	case s.Selected >= n:
		s.Selected = n - 1
	}
	return s
}

// AdjustAfterDelete keeps the cursor near its previous position after the
// item at deletedIndex was removed from the current list.
func (s State) AdjustAfterDelete(root *tree.Node, deletedIndex int) State {
	if deletedIndex <= s.Selected && s.Selected > 0 {
		s.Selected--
	}
	return s.EnsureValid(root)
}

// Repair truncates the stack at the first id that is no longer a child of
// the level above it, then clamps the selection.
func (s State) Repair(root *tree.Node) State {
	parent := root
	for i, id := range s.Ancestors {
		var next *tree.Node
		if parent != nil {
			if j := tree.SiblingIndex(parent.Children, id); j >= 0 {
				next = parent.Children[j]
			}
		}
		if next == nil {
			s.Ancestors = slices.Clone(s.Ancestors[:i])
			s.Selected = 0
			break
		}
		parent = next
	}
	return s.EnsureValid(root)
}

// SelectID moves the cursor onto the child with the given id. The state is
// unchanged when id is not in the current list.
func (s State) SelectID(root *tree.Node, id string) State {
	if i := tree.SiblingIndex(s.List(root), id); i >= 0 {
		s.Selected = i
	}
	return s
}
