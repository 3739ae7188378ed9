// Package dft provides embedded runtime resources (project schema, help text)
// and an overlay filesystem that checks local disk first, falling back to embedded.
package dft

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed schema/project.schema.json
var rawSchema embed.FS

//go:embed help/*.md
var rawHelp embed.FS

// Schema is the embedded schema filesystem with the "schema/" prefix stripped.
var Schema = mustSub(rawSchema, "schema")

// Help is the embedded help filesystem with the "help/" prefix stripped.
var Help = mustSub(rawHelp, "help")

// ProjectSchemaFile is the name of the project document schema within Schema.
const ProjectSchemaFile = "project.schema.json"

// HelpFile is the name of the key reference within Help.
const HelpFile = "keys.md"

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if o.localDir != "" && fs.ValidPath(name) {
		f, err := os.Open(filepath.Join(o.localDir, filepath.FromSlash(name)))
		if err == nil {
			return f, nil
		}
	}
	return o.embedded.Open(name)
}

// HelpText returns the key reference, preferring a keys.md in localDir.
func HelpText(localDir string) (string, error) {
	data, err := fs.ReadFile(OverlayFS(localDir, Help), HelpFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
