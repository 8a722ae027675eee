// Package search implements full-text search over notes by scanning the notes
// root on every query.
package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/starford/frankmd/internal/models"
	"github.com/starford/frankmd/internal/storage"
)

// Defaults used when Options leave a field unset.
const (
	DefaultContextLines = 2
	DefaultMaxResults   = 20
)

// Walker is the part of storage the searcher needs.
type Walker interface {
	Walk(fn storage.WalkFunc) error
}

// Options tunes a single search.
type Options struct {
	// ContextLines is the number of lines shown before and after a match.
	// Negative means none.
	ContextLines int
	// MaxResults caps the number of hits; zero or negative means DefaultMaxResults.
	MaxResults int
}

// DefaultOptions returns the options used by the web UI.
func DefaultOptions() Options {
	return Options{ContextLines: DefaultContextLines, MaxResults: DefaultMaxResults}
}

// Searcher scans notes for a pattern.
type Searcher struct {
	walker Walker
}

// New creates a Searcher over the given notes walker.
func New(w Walker) *Searcher {
	return &Searcher{walker: w}
}

// Compile builds the case-insensitive matcher for query. A query that is not
// a valid regular expression is matched literally instead.
func Compile(query string) *regexp.Regexp {
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	}
	return re
}

// Search returns hits in traversal order, at most one per line, stopping as
// soon as MaxResults hits have been collected. A blank query returns no hits
// without touching the disk.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]models.SearchHit, error) {
	hits := []models.SearchHit{}
	if strings.TrimSpace(query) == "" {
		return hits, nil
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.ContextLines < 0 {
		opts.ContextLines = 0
	}
	re := Compile(query)

	err := s.walker.Walk(func(rel, abs string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			// Deleted or replaced since it was listed.
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("search: read %s: %w", rel, err)
		}
		hits = scanFile(hits, rel, string(data), re, opts)
		if len(hits) >= opts.MaxResults {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// scanFile appends the hits found in content, never growing hits beyond
// opts.MaxResults.
func scanFile(hits []models.SearchHit, path, content string, re *regexp.Regexp, opts Options) []models.SearchHit {
	lines := splitLines(content)
	for i, line := range lines {
		loc := re.FindStringIndex(line)
		if loc == nil {
			continue
		}
		hits = append(hits, models.SearchHit{
			Path:       path,
			LineNumber: i + 1,
			MatchText:  line[loc[0]:loc[1]],
			Context:    contextWindow(lines, i, opts.ContextLines),
		})
		if len(hits) >= opts.MaxResults {
			break
		}
	}
	return hits
}

func contextWindow(lines []string, match, n int) []models.ContextLine {
	n = min(max(n, 0), len(lines))
	start := max(0, match-n)
	end := min(len(lines)-1, match+n)
	out := make([]models.ContextLine, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, models.ContextLine{
			LineNumber: i + 1,
			Content:    lines[i],
			IsMatch:    i == match,
		})
	}
	return out
}

// splitLines splits content into lines without their terminators. A trailing
// newline does not start an extra empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
