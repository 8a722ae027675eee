// Package watcher reports changes made to the notes root, including edits
// done outside the application, so clients can refresh their tree.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/frankmd/internal/storage"
)

// Event kinds passed to Callback.
const (
	Created = "created"
	Updated = "updated"
	Deleted = "deleted"
	// Folder is reported for directory-level changes; path is the folder.
	Folder = "folder"
)

// Callback is called for each change. For notes, kind is Created, Updated or
// Deleted and path is the "/"-separated note path relative to the root.
type Callback func(kind string, path string)

// Watcher follows a notes root with fsnotify.
type Watcher struct {
	root   string
	w      *fsnotify.Watcher
	logger *slog.Logger

	known map[string]struct{} // note paths seen on disk
	dirs  map[string]struct{} // watched folder paths, root excluded
}

// New starts watching root and every non-hidden folder below it. Events are
// buffered by fsnotify until Run is called.
func New(root string, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	wt := &Watcher{
		root:   abs,
		w:      fw,
		logger: logger,
		known:  make(map[string]struct{}),
		dirs:   make(map[string]struct{}),
	}
	if err := wt.addTree(abs, nil); err != nil {
		fw.Close()
		return nil, err
	}
	return wt, nil
}

// Watch is New followed by Run.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb Callback) error {
	wt, err := New(root, logger)
	if err != nil {
		return err
	}
	return wt.Run(ctx, cb)
}

// Run processes events until ctx is cancelled, then releases the watcher.
func (wt *Watcher) Run(ctx context.Context, cb Callback) error {
	defer wt.w.Close()
	if cb == nil {
		cb = func(string, string) {}
	}
	wt.logger.Info("watcher: started", slog.String("root", wt.root))

	for {
		select {
		case <-ctx.Done():
			wt.logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-wt.w.Events:
			if !ok {
				return nil
			}
			wt.handle(ev, cb)

		case watchErr, ok := <-wt.w.Errors:
			if !ok {
				return nil
			}
			wt.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (wt *Watcher) handle(ev fsnotify.Event, cb Callback) {
	rel, ok := wt.rel(ev.Name)
	if !ok {
		return
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, err := os.Lstat(ev.Name)
		if err != nil {
			// Gone again before we looked; a Remove event follows.
			return
		}
		if info.IsDir() {
			if ev.Op&fsnotify.Create == 0 {
				return
			}
			if err := wt.addTree(ev.Name, cb); err != nil {
				wt.logger.Warn("watcher: add new dir failed",
					slog.String("path", rel),
					slog.String("error", err.Error()))
			}
			cb(Folder, rel)
			return
		}
		if !info.Mode().IsRegular() || !storage.IsNote(rel) {
			return
		}
		kind := Updated
		if _, seen := wt.known[rel]; !seen {
			kind = Created
			wt.known[rel] = struct{}{}
		}
		wt.logger.Debug("watcher: note changed", slog.String("path", rel), slog.String("op", kind))
		cb(kind, rel)

	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// fsnotify reports a rename on the old path only; the new path
		// arrives as a separate Create when it stays inside the root.
		if _, ok := wt.known[rel]; ok {
			delete(wt.known, rel)
			wt.logger.Debug("watcher: note removed", slog.String("path", rel))
			cb(Deleted, rel)
			return
		}
		if _, ok := wt.dirs[rel]; ok {
			wt.forgetTree(rel, cb)
			cb(Folder, rel)
		}
	}
}

// addTree watches dir and its non-hidden subfolders and records the notes it
// finds. With a non-nil cb, each note found is reported as Created.
func (wt *Watcher) addTree(dir string, cb Callback) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != dir && os.IsNotExist(err) {
				return nil
			}
			return err
		}
		rel, ok := wt.rel(p)
		if !ok && p != wt.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		switch {
		case d.IsDir():
			if err := wt.w.Add(p); err != nil {
				return err
			}
			if p != wt.root {
				wt.dirs[rel] = struct{}{}
			}
		case d.Type().IsRegular() && storage.IsNote(rel):
			if _, seen := wt.known[rel]; !seen {
				wt.known[rel] = struct{}{}
				if cb != nil {
					cb(Created, rel)
				}
			}
		}
		return nil
	})
}

// forgetTree drops every note and folder at or below rel, reporting each
// note as Deleted.
func (wt *Watcher) forgetTree(rel string, cb Callback) {
	prefix := rel + "/"
	for p := range wt.known {
		if strings.HasPrefix(p, prefix) {
			delete(wt.known, p)
			cb(Deleted, p)
		}
	}
	for p := range wt.dirs {
		if p == rel || strings.HasPrefix(p, prefix) {
			delete(wt.dirs, p)
		}
	}
}

// rel converts an absolute event path to a note-style relative path. It
// reports false for the root itself, for paths outside it and for anything
// with a hidden component.
func (wt *Watcher) rel(abs string) (string, bool) {
	r, err := filepath.Rel(wt.root, abs)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	r = filepath.ToSlash(r)
	for _, part := range strings.Split(r, "/") {
		if storage.IsHidden(part) {
			return "", false
		}
	}
	return r, true
}
