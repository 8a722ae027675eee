package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/starford/frankmd/internal/apperr"
)

// FS implements Provider backed by the local file system.
type FS struct {
	*Resolver
}

// NewFS creates a new FS provider rooted at the given directory, creating it
// if needed.
func NewFS(root string) (*FS, error) {
	r, err := NewResolver(root)
	if err != nil {
		return nil, err
	}
	return &FS{Resolver: r}, nil
}

// Read returns the raw bytes of a note.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.Resolve(path, true)
	if err != nil {
		return nil, err
	}
	if !isRegular(abs) {
		return nil, fmt.Errorf("storage: read %s: %w", path, apperr.ErrNotFound)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
// It overwrites existing files; callers wanting create-only semantics check
// Exists first.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.Resolve(path, false)
	if err != nil {
		return err
	}
	if abs == f.root || isDir(abs) {
		return fmt.Errorf("storage: write %s: is a folder: %w", path, apperr.ErrInvalidPath)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".frankmd-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	success = true
	return nil
}

// Delete removes a note. Folders are not deleted here; see DeleteFolder.
func (f *FS) Delete(path string) error {
	abs, err := f.Resolve(path, true)
	if err != nil {
		return err
	}
	if !isRegular(abs) {
		return fmt.Errorf("storage: delete %s: %w", path, apperr.ErrNotFound)
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Rename moves a note or a folder subtree. Within one volume this is a single
// rename(2). Across volumes it falls back to copy then remove, which is not
// atomic: if the remove fails the copy is kept and the error says so.
func (f *FS) Rename(oldPath, newPath string) error {
	absOld, err := f.Resolve(oldPath, true)
	if err != nil {
		return err
	}
	absNew, err := f.Resolve(newPath, false)
	if err != nil {
		return err
	}
	if absOld == f.root || absNew == f.root {
		return fmt.Errorf("storage: rename %s: %w", oldPath, apperr.ErrInvalidPath)
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for rename: %w", err)
	}

	err = os.Rename(absOld, absNew)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("storage: rename %s: %w", oldPath, err)
	}
	if err := copyTree(absOld, absNew); err != nil {
		return fmt.Errorf("storage: copy %s across volumes: %w", oldPath, err)
	}
	if err := os.RemoveAll(absOld); err != nil {
		return fmt.Errorf("storage: rename %s: copied to %s but source remains: %w", oldPath, newPath, err)
	}
	return nil
}

// CreateFolder creates path and any missing parents.
func (f *FS) CreateFolder(path string) error {
	abs, err := f.Resolve(path, false)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("storage: create folder %s: %w", path, err)
	}
	return nil
}

// DeleteFolder removes an empty directory. Any entry, hidden ones included,
// makes it ErrFolderNotEmpty and leaves the folder untouched.
func (f *FS) DeleteFolder(path string) error {
	abs, err := f.Resolve(path, true)
	if err != nil {
		return err
	}
	if !isDir(abs) {
		return fmt.Errorf("storage: delete folder %s: %w", path, apperr.ErrNotFound)
	}
	if abs == f.root {
		return fmt.Errorf("storage: delete folder %s: %w", path, apperr.ErrInvalidPath)
	}
	empty, err := isEmptyDir(abs)
	if err != nil {
		return fmt.Errorf("storage: delete folder %s: %w", path, err)
	}
	if !empty {
		return fmt.Errorf("storage: delete folder %s: %w", path, apperr.ErrFolderNotEmpty)
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete folder %s: %w", path, err)
	}
	return nil
}

// Exists reports whether anything exists at path. Paths outside the root
// never exist.
func (f *FS) Exists(path string) bool {
	abs, err := f.Resolve(path, false)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// IsFile reports whether path is a regular file.
func (f *FS) IsFile(path string) bool {
	abs, err := f.Resolve(path, false)
	return err == nil && isRegular(abs)
}

// IsDir reports whether path is a directory.
func (f *FS) IsDir(path string) bool {
	abs, err := f.Resolve(path, false)
	return err == nil && isDir(abs)
}

// isRegular does not follow symlinks, so a link is never a note.
func isRegular(abs string) bool {
	info, err := os.Lstat(abs)
	return err == nil && info.Mode().IsRegular()
}

func isDir(abs string) bool {
	info, err := os.Stat(abs)
	return err == nil && info.IsDir()
}

func isEmptyDir(abs string) (bool, error) {
	d, err := os.Open(abs)
	if err != nil {
		return false, err
	}
	defer d.Close()
	_, err = d.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// copyTree copies a file or directory tree from src to dst, keeping modes.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode().IsRegular():
			return copyFile(p, target, info.Mode().Perm())
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return nil
		}
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
