package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/frankmd/internal/apperr"
)

// Resolver turns relative paths into absolute paths confined to a root.
// It holds no state besides the root, so every call observes the disk as it
// is at that moment.
type Resolver struct {
	root   string // absolute, cleaned
	prefix string // root with a trailing separator
}

// NewResolver creates a resolver for root, creating the directory if it does
// not exist yet.
func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		return nil, fmt.Errorf("storage: root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	prefix := abs
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return &Resolver{root: abs, prefix: prefix}, nil
}

// Root returns the absolute root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve sanitizes rel, joins it onto the root and verifies the result stays
// inside it. With mustExist set, a missing target is ErrNotFound.
func (r *Resolver) Resolve(rel string, mustExist bool) (string, error) {
	if strings.ContainsRune(rel, 0) {
		return "", fmt.Errorf("storage: %q: %w", rel, apperr.ErrInvalidPath)
	}

	sanitized := strings.ReplaceAll(rel, "..", "")
	cleaned := filepath.Clean(filepath.FromSlash(sanitized))
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" {
		return "", fmt.Errorf("storage: %q: %w", rel, apperr.ErrInvalidPath)
	}

	candidate := filepath.Join(r.root, cleaned)
	if !r.contains(candidate) {
		return "", fmt.Errorf("storage: %q escapes notes root: %w", rel, apperr.ErrInvalidPath)
	}

	if mustExist {
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("storage: %s: %w", rel, apperr.ErrNotFound)
			}
			return "", fmt.Errorf("storage: stat %s: %w", rel, err)
		}
	}
	return candidate, nil
}

func (r *Resolver) contains(abs string) bool {
	return abs == r.root || strings.HasPrefix(abs, r.prefix)
}

// relative converts an absolute path under the root back to a "/"-separated
// relative path.
func (r *Resolver) relative(abs string) string {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}
