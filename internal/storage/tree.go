package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/frankmd/internal/models"
)

const noteExt = ".md"

// IsNote reports whether name is a note file name.
func IsNote(name string) bool {
	return strings.HasSuffix(name, noteExt)
}

// IsHidden reports whether name is a dot entry.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Tree builds a listing of the whole root. It is rebuilt from disk on every call.
func (f *FS) Tree() ([]models.TreeNode, error) {
	nodes, err := f.buildTree(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: tree: %w", err)
	}
	return nodes, nil
}

func (f *FS) buildTree(dir string) ([]models.TreeNode, error) {
	entries, err := readSorted(dir)
	if err != nil {
		return nil, err
	}
	nodes := make([]models.TreeNode, 0, len(entries))
	for _, e := range entries {
		abs := filepath.Join(dir, e.Name())
		switch {
		case e.IsDir():
			children, err := f.buildTree(abs)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, models.TreeNode{
				Name:     e.Name(),
				Path:     f.relative(abs),
				Type:     models.NodeFolder,
				Children: children,
			})
		default:
			nodes = append(nodes, models.TreeNode{
				Name: strings.TrimSuffix(e.Name(), noteExt),
				Path: f.relative(abs),
				Type: models.NodeFile,
			})
		}
	}
	return nodes, nil
}

// Walk visits every note depth-first in the same order as Tree.
func (f *FS) Walk(fn WalkFunc) error {
	err := f.walk(f.root, fn)
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (f *FS) walk(dir string, fn WalkFunc) error {
	entries, err := readSorted(dir)
	if err != nil {
		// A folder removed mid-walk is not an error for the walk itself.
		if errors.Is(err, fs.ErrNotExist) && dir != f.root {
			return nil
		}
		return fmt.Errorf("storage: walk: %w", err)
	}
	for _, e := range entries {
		abs := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := f.walk(abs, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(f.relative(abs), abs); err != nil {
			return err
		}
	}
	return nil
}

// readSorted lists dir keeping only visible folders and notes, folders first,
// then case-insensitively by name. Entries are classified without following
// symlinks, so links are neither folders nor notes.
func readSorted(dir string) ([]fs.DirEntry, error) {
	all, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	kept := all[:0]
	for _, e := range all {
		if IsHidden(e.Name()) {
			continue
		}
		if e.IsDir() || (e.Type().IsRegular() && IsNote(e.Name())) {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		la, lb := strings.ToLower(a.Name()), strings.ToLower(b.Name())
		if la != lb {
			return la < lb
		}
		return a.Name() < b.Name()
	})
	return kept, nil
}
