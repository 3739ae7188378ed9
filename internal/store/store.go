// Package store persists projects as one JSON document per project under a
// data directory. Saves replace the document atomically; loads are gated by
// the embedded project schema.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alwalxed/dft/internal/project"
	"github.com/alwalxed/dft/internal/tree"
)

const fileExt = ".json"

var (
	// ErrNotFound indicates no document exists for the project name.
	ErrNotFound = errors.New("store: project not found")
	// ErrCorrupted indicates a document exists but cannot be used.
	ErrCorrupted = errors.New("store: project file corrupted")
	// ErrFilesystem indicates an I/O failure reading or writing the data directory.
	ErrFilesystem = errors.New("store: filesystem error")
)

// Summary is a listing entry for one stored project.
type Summary struct {
	Name       string
	NodeCount  int
	OpenCount  int
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// FileStore persists projects as JSON files under a base directory.
// A single session per project is assumed: two writers on the same file
// are last-writer-wins.
type FileStore struct {
	baseDir string
	logger  *log.Logger
	now     func() time.Time
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used for skipped files and save events.
func WithLogger(l *log.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for modified_at.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewFileStore creates a FileStore that keeps projects under baseDir.
func NewFileStore(baseDir string, opts ...Option) *FileStore {
	s := &FileStore{
		baseDir: baseDir,
		logger:  log.New(io.Discard),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string {
	return s.baseDir
}

// Exists reports whether a document exists for name. Errors other than a
// missing file are returned wrapped in ErrFilesystem.
func (s *FileStore) Exists(name string) (bool, error) {
	p, err := s.path(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: checking %s: %w", ErrFilesystem, p, err)
	}
	return true, nil
}

// Load reads and validates the project stored under name.
func (s *FileStore) Load(name string) (*project.Project, error) {
	n, err := project.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	p := filepath.Join(s.baseDir, n+fileExt)

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrFilesystem, p, err)
	}

	return decode(p, n, data)
}

// decode validates raw document bytes against the schema and unmarshals them.
// The stored project_name must match the name the file is stored under.
func decode(p, name string, data []byte) (*project.Project, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrCorrupted, p, err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupted, p, err)
	}

	var proj project.Project
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrCorrupted, p, err)
	}
	if proj.Name != name {
		return nil, fmt.Errorf("%w: %s: project_name %q does not match file name %q", ErrCorrupted, p, proj.Name, name)
	}
	if dup := duplicateID(proj.Root); dup != "" {
		return nil, fmt.Errorf("%w: %s: duplicate node id %q", ErrCorrupted, p, dup)
	}
	return &proj, nil
}

// duplicateID returns the first node id that appears twice in the tree.
func duplicateID(root *tree.Node) string {
	seen := make(map[string]bool)
	var walk func(n *tree.Node) string
	walk = func(n *tree.Node) string {
		if seen[n.ID] {
			return n.ID
		}
		seen[n.ID] = true
		for _, c := range n.Children {
			if d := walk(c); d != "" {
				return d
			}
		}
		return ""
	}
	return walk(root)
}

// Save stamps modified_at and atomically replaces the project's document.
func (s *FileStore) Save(proj *project.Project) error {
	p, err := s.path(proj.Name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("%w: creating directory: %w", ErrFilesystem, err)
	}

	proj.ModifiedAt = s.now()
	data, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshaling %s: %w", proj.Name, err)
	}

	if err := writeAtomic(p, data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrFilesystem, p, err)
	}
	s.logger.Debug("saved project", "name", proj.Name, "nodes", proj.NodeCount())
	return nil
}

// writeAtomic writes data to a temp file beside path, syncs it and renames
// it over path. Readers see either the old or the new document.
func writeAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

// Delete removes the project's document.
func (s *FileStore) Delete(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("%w: removing %s: %w", ErrFilesystem, p, err)
	}
	return nil
}

// List returns a summary of every readable project, sorted by name.
// Documents that fail to load are skipped and logged.
func (s *FileStore) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrFilesystem, s.baseDir, err)
	}

	var out []Summary
	for _, e := range entries {
		fname := e.Name()
		if e.IsDir() || strings.HasPrefix(fname, ".") || filepath.Ext(fname) != fileExt {
			continue
		}
		name := strings.TrimSuffix(fname, fileExt)
		proj, err := s.Load(name)
		if err != nil {
			s.logger.Warn("skipping project", "file", fname, "err", err)
			continue
		}
		out = append(out, Summary{
			Name:       proj.Name,
			NodeCount:  proj.NodeCount(),
			OpenCount:  proj.OpenCount,
			CreatedAt:  proj.CreatedAt,
			ModifiedAt: proj.ModifiedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// path returns the filesystem path for a project document. Names go
// through project.NormalizeName, which rejects separators and dot-segments.
func (s *FileStore) path(name string) (string, error) {
	n, err := project.NormalizeName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, n+fileExt), nil
}
