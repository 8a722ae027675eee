// Package storage maps caller-supplied relative paths onto a sandboxed notes
// root and performs note and folder operations on the local file system.
package storage

import "github.com/starford/frankmd/internal/models"

// Provider is the interface for notes root operations. Every path is relative
// to the root and uses "/" separators.
type Provider interface {
	// Resolve maps path to an absolute path inside the root. With mustExist
	// set, a missing target is apperr.ErrNotFound.
	Resolve(path string, mustExist bool) (string, error)
	// Tree returns a fresh listing of the root: folders before files, each
	// group ordered case-insensitively, hidden entries and non-.md files omitted.
	Tree() ([]models.TreeNode, error)
	// Walk visits every note in Tree order. Returning fs.SkipAll stops the walk.
	Walk(fn WalkFunc) error
	// Read returns the content of the note at path.
	Read(path string) ([]byte, error)
	// Write creates or overwrites the file at path, creating missing parents.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Rename moves a file or a whole folder from oldPath to newPath.
	Rename(oldPath, newPath string) error
	// CreateFolder creates path and any missing parents. Existing folders are fine.
	CreateFolder(path string) error
	// DeleteFolder removes path only when it is an empty directory.
	DeleteFolder(path string) error
	// Exists, IsFile and IsDir report file system state and never fail.
	Exists(path string) bool
	IsFile(path string) bool
	IsDir(path string) bool
}

// WalkFunc is called for each note with its relative ("/"-separated) and
// absolute paths.
type WalkFunc func(rel, abs string) error

// Verify *FS satisfies Provider at compile time.
var _ Provider = (*FS)(nil)
