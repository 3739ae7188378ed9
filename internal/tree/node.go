// Package tree implements the problem tree: nodes, validated mutations and
// recursive queries. Nothing in this package performs I/O.
package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the maximum number of characters in a trimmed title.
const MaxTitleLength = 200

// Status is the completion state of a node.
type Status string

const (
	StatusOpen Status = "open"
	StatusDone Status = "done"
)

// now is the clock used for created_at and completed_at. Tests replace it.
var now = time.Now

// newID generates node identifiers.
var newID = func() string { return uuid.NewString() }

// Node is a single problem or task. A node exclusively owns its children;
// there are no parent pointers, parents are derived with FindParent.
type Node struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      Status     `json:"status"`
	Children    []*Node    `json:"children"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// MarshalJSON encodes the node, always emitting children as an array.
func (n *Node) MarshalJSON() ([]byte, error) {
	type plain Node
	p := plain(*n)
	if p.Children == nil {
		p.Children = []*Node{}
	}
	return json.Marshal(p)
}

// IsDone reports whether the node itself is marked done.
func (n *Node) IsDone() bool {
	return n.Status == StatusDone
}

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a rejected field value. Reason is suitable for
// showing to the user as is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidateTitle trims title and checks its length, returning the value that
// should be stored.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	n := utf8.RuneCountInString(trimmed)
	if n == 0 {
		return "", &ValidationError{Field: "title", Reason: "Title cannot be empty"}
	}
	if n > MaxTitleLength {
		return "", &ValidationError{
			Field:  "title",
			Reason: fmt.Sprintf("Title must be %d characters or fewer (got %d)", MaxTitleLength, n),
		}
	}
	return trimmed, nil
}

// NewNode creates an open, childless node with a fresh id.
func NewNode(title string) (*Node, error) {
	t, err := ValidateTitle(title)
	if err != nil {
		return nil, err
	}
	return &Node{
		ID:        newID(),
		Title:     t,
		Status:    StatusOpen,
		Children:  []*Node{},
		CreatedAt: now(),
	}, nil
}

// AddChild creates a node and appends it to parent's children.
func AddChild(parent *Node, title string) (*Node, error) {
	child, err := NewNode(title)
	if err != nil {
		return nil, err
	}
	parent.Children = append(parent.Children, child)
	return child, nil
}

// EditTitle replaces the node's title. The node is unchanged on error.
func EditTitle(n *Node, title string) error {
	t, err := ValidateTitle(title)
	if err != nil {
		return err
	}
	n.Title = t
	return nil
}

// MarkDone marks n and every descendant done. Descendants that were already
// done get a fresh completed_at as well.
func MarkDone(n *Node) {
	markDoneAt(n, now())
}

func markDoneAt(n *Node, at time.Time) {
	n.Status = StatusDone
	ts := at
	n.CompletedAt = &ts
	for _, child := range n.Children {
		markDoneAt(child, at)
	}
}

// MarkOpen reopens n only. Completed children stay completed.
func MarkOpen(n *Node) {
	n.Status = StatusOpen
	n.CompletedAt = nil
}

// ToggleStatus flips n between open and done and returns the new status.
func ToggleStatus(n *Node) Status {
	if n.IsDone() {
		MarkOpen(n)
	} else {
		MarkDone(n)
	}
	return n.Status
}

// DeleteChild removes the first direct child of parent with the given id,
// along with its subtree. It reports whether anything was removed.
func DeleteChild(parent *Node, id string) bool {
	for i, child := range parent.Children {
		if child.ID == id {
			parent.Children = slices.Delete(parent.Children, i, i+1)
			return true
		}
	}
	return false
}
