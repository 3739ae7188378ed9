// Package project defines the named container that owns a problem tree and
// is persisted as one unit.
package project

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/alwalxed/dft/internal/tree"
)

// FormatVersion is written to every saved project document.
const FormatVersion = "1.0.0"

// MaxNameLength is the maximum length of a normalized project name.
const MaxNameLength = 50

// ReservedNames collide with top-level CLI commands and cannot be used.
var ReservedNames = []string{"new", "open", "list", "ls", "delete", "rm", "help", "version"}

// ErrInvalidName indicates a project name failed normalization.
var ErrInvalidName = errors.New("project: invalid name")

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Project is a named tree of nodes plus metadata.
type Project struct {
	Name       string     `json:"project_name"`
	Version    string     `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	OpenCount  int        `json:"open_count,omitempty"`
	Root       *tree.Node `json:"root"`
}

// NormalizeName trims and lowercases name and checks it against the naming
// rule: 1-50 characters, starting with a letter or digit, followed by
// letters, digits, hyphens or underscores, and not a reserved word.
func NormalizeName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(n) > MaxNameLength {
		return "", fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidName, n, MaxNameLength)
	}
	if !namePattern.MatchString(n) {
		return "", fmt.Errorf("%w: %q must start with a letter or digit and contain only letters, digits, '-' or '_'", ErrInvalidName, n)
	}
	if slices.Contains(ReservedNames, n) {
		return "", fmt.Errorf("%w: %q is a reserved word", ErrInvalidName, n)
	}
	return n, nil
}

// New creates an empty project. The root node is titled with the
// normalized name.
func New(name string) (*Project, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	root, err := tree.NewNode(n)
	if err != nil {
		return nil, fmt.Errorf("project: creating root: %w", err)
	}
	return &Project{
		Name:       n,
		Version:    FormatVersion,
		CreatedAt:  root.CreatedAt,
		ModifiedAt: root.CreatedAt,
		Root:       root,
	}, nil
}

// Touch records that the project was opened.
func (p *Project) Touch() {
	p.OpenCount++
}

// NodeCount returns the number of nodes in the tree, root included.
func (p *Project) NodeCount() int {
	if p.Root == nil {
		return 0
	}
	return 1 + tree.CountDescendants(p.Root)
}
