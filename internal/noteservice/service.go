// Package noteservice is the request-facing facade over the notes store. It
// adds the create-only-if-absent checks, metadata and search that HTTP and
// MCP callers share.
package noteservice

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/frankmd/internal/apperr"
	"github.com/starford/frankmd/internal/checksum"
	"github.com/starford/frankmd/internal/models"
	"github.com/starford/frankmd/internal/parser"
	"github.com/starford/frankmd/internal/search"
	"github.com/starford/frankmd/internal/storage"
)

const noteExt = ".md"

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path        string         `json:"path"`
	Name        string         `json:"name"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Checksum    string         `json:"checksum"`
	Tags        []string       `json:"tags"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Stats       parser.Stats   `json:"stats"`
}

// Service coordinates storage and search.
type Service struct {
	store    storage.Provider
	searcher *search.Searcher
	defaults search.Options
}

// NewService creates a new note service. defaults apply to searches whose
// caller does not override them.
func NewService(store storage.Provider, defaults search.Options) *Service {
	return &Service{
		store:    store,
		searcher: search.New(store),
		defaults: defaults,
	}
}

// WithExt appends ".md" unless p already ends with it.
func WithExt(p string) string {
	if strings.HasSuffix(p, noteExt) {
		return p
	}
	return p + noteExt
}

// Tree returns the current folder and note listing.
func (s *Service) Tree(_ context.Context) ([]models.TreeNode, error) {
	return s.store.Tree()
}

// GetNote reads and parses a note.
func (s *Service) GetNote(_ context.Context, p string) (*NoteDetail, error) {
	data, err := s.store.Read(p)
	if err != nil {
		return nil, err
	}
	return buildNoteDetail(p, data), nil
}

// CreateNote writes a new note, adding the .md extension when missing.
func (s *Service) CreateNote(_ context.Context, p string, content []byte) (*NoteDetail, error) {
	p = WithExt(p)
	if _, err := s.store.Resolve(p, false); err != nil {
		return nil, err
	}
	if s.store.Exists(p) {
		return nil, fmt.Errorf("note %s: %w", p, apperr.ErrAlreadyExists)
	}
	if err := s.store.Write(p, content); err != nil {
		return nil, err
	}
	return buildNoteDetail(p, content), nil
}

// SaveNote writes content to p, creating the note when it does not exist.
// A non-empty ifMatch must match the checksum of the stored content.
func (s *Service) SaveNote(_ context.Context, p string, content []byte, ifMatch string) (*NoteDetail, error) {
	if ifMatch != "" {
		existing, err := s.store.Read(p)
		if err != nil {
			return nil, err
		}
		if !checksum.Matches(ifMatch, checksum.Sum(existing)) {
			return nil, fmt.Errorf("note %s: %w", p, apperr.ErrConflict)
		}
	}
	if err := s.store.Write(p, content); err != nil {
		return nil, err
	}
	return buildNoteDetail(p, content), nil
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(_ context.Context, p string) error {
	return s.store.Delete(p)
}

// RenameNote moves a note and returns its new path, which always carries the
// .md extension.
func (s *Service) RenameNote(_ context.Context, oldPath, newPath string) (string, error) {
	newPath = WithExt(newPath)
	if _, err := s.store.Resolve(oldPath, true); err != nil {
		return "", err
	}
	if !s.store.IsFile(oldPath) {
		return "", fmt.Errorf("note %s: %w", oldPath, apperr.ErrNotFound)
	}
	if err := s.checkTarget(newPath); err != nil {
		return "", err
	}
	if err := s.store.Rename(oldPath, newPath); err != nil {
		return "", err
	}
	return newPath, nil
}

// CreateFolder creates a folder and any missing parents.
func (s *Service) CreateFolder(_ context.Context, p string) error {
	if _, err := s.store.Resolve(p, false); err != nil {
		return err
	}
	if s.store.Exists(p) {
		return fmt.Errorf("folder %s: %w", p, apperr.ErrAlreadyExists)
	}
	return s.store.CreateFolder(p)
}

// DeleteFolder removes an empty folder.
func (s *Service) DeleteFolder(_ context.Context, p string) error {
	return s.store.DeleteFolder(p)
}

// RenameFolder moves a folder with everything below it.
func (s *Service) RenameFolder(_ context.Context, oldPath, newPath string) error {
	oldAbs, err := s.store.Resolve(oldPath, true)
	if err != nil {
		return err
	}
	if !s.store.IsDir(oldPath) {
		return fmt.Errorf("folder %s: %w", oldPath, apperr.ErrNotFound)
	}
	newAbs, err := s.store.Resolve(newPath, false)
	if err != nil {
		return err
	}
	if strings.HasPrefix(newAbs, oldAbs+string(filepath.Separator)) {
		return fmt.Errorf("folder %s into its own subfolder: %w", oldPath, apperr.ErrInvalidPath)
	}
	if err := s.checkTarget(newPath); err != nil {
		return err
	}
	return s.store.Rename(oldPath, newPath)
}

// RenamePath renames a note or a folder, whichever exists at oldPath.
// Notes keep the .md extension rule of RenameNote.
func (s *Service) RenamePath(ctx context.Context, oldPath, newPath string) (string, error) {
	if s.store.IsDir(oldPath) {
		if err := s.RenameFolder(ctx, oldPath, newPath); err != nil {
			return "", err
		}
		return newPath, nil
	}
	return s.RenameNote(ctx, oldPath, newPath)
}

// SearchDefaults returns the options applied when a caller sets none.
func (s *Service) SearchDefaults() search.Options {
	return s.defaults
}

// Search scans note contents for query.
func (s *Service) Search(ctx context.Context, query string, opts search.Options) ([]models.SearchHit, error) {
	return s.searcher.Search(ctx, query, opts)
}

func (s *Service) checkTarget(p string) error {
	if _, err := s.store.Resolve(p, false); err != nil {
		return err
	}
	if s.store.Exists(p) {
		return fmt.Errorf("%s: %w", p, apperr.ErrAlreadyExists)
	}
	return nil
}

// buildNoteDetail constructs a NoteDetail from raw data without re-reading the file.
func buildNoteDetail(p string, data []byte) *NoteDetail {
	res := parser.Parse(data)
	return &NoteDetail{
		Path:        p,
		Name:        strings.TrimSuffix(path.Base(p), noteExt),
		Title:       res.Title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Tags:        res.Tags,
		Frontmatter: res.Frontmatter,
		Stats:       parser.ComputeStats(string(data)),
	}
}
