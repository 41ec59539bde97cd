// Package watch re-runs extraction when Markdown files change. Roots are
// directories, watched recursively, or single files. Bursts of file events
// are debounced into one callback.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives the changed paths since the previous call. Paths below a
// directory root are slash-separated and relative to it; a file root is
// reported by its base name.
type Handler func(ctx context.Context, changed []string) error

type root struct {
	path string
	file bool
}

// Watcher monitors a set of roots.
type Watcher struct {
	roots    []root
	match    func(rel string) bool
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New watches every path in paths. A directory is watched with every
// non-hidden directory below it and match selects the files whose changes
// are reported. A file is watched through its parent directory and its
// changes are always reported.
func New(paths []string, match func(rel string) bool, handler Handler, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w := &Watcher{
		match:    match,
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		watcher:  fw,
	}
	for _, o := range opts {
		o(w)
	}
	for _, p := range paths {
		if err := w.addRoot(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRoot(p string) error {
	abs, err := filepath.Abs(p)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve watch root").
			WithContext("path", p).
			Build()
	}
	info, err := os.Stat(abs)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch path").
			WithContext("path", p).
			Build()
	}
	if !info.IsDir() {
		if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
				WithContext("path", filepath.Dir(abs)).
				Build()
		}
		w.roots = append(w.roots, root{path: abs, file: true})
		return nil
	}
	if err := w.addTree(abs, abs); err != nil {
		return err
	}
	w.roots = append(w.roots, root{path: abs})
	return nil
}

// addTree watches dir and the directories below it. Hidden directories are
// skipped unless they are top itself.
func (w *Watcher) addTree(dir, top string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != top && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
			WithContext("path", dir).
			Build()
	}
	return nil
}

// Run delivers debounced changes to the handler until ctx is canceled. A
// handler error is logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()
	for _, r := range w.roots {
		w.logger.Debug("Watching", logfields.Path(r.path))
	}
	w.logger.Info("Watching for changes", logfields.Count(len(w.roots)))

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if rel, ok := w.relevant(event); ok {
				pending[rel] = struct{}{}
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			w.logger.Debug("Change detected", logfields.Count(len(changed)))
			if err := w.handler(ctx, changed); err != nil {
				w.logger.Error("Watch handler failed", logfields.Error(err))
			}
		}
	}
}

// relevant filters an event down to a reported path. New directories below
// a directory root are added to the watch set.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	name := filepath.Clean(event.Name)
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if _, ok := w.dirRoot(name); ok {
				if err := w.addTree(name, ""); err != nil {
					w.logger.Warn("Failed to watch new directory", logfields.Path(name), logfields.Error(err))
				}
			}
			return "", false
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	for _, r := range w.roots {
		if r.file && name == r.path {
			return filepath.Base(name), true
		}
	}
	rel, ok := w.dirRoot(name)
	if !ok || (w.match != nil && !w.match(rel)) {
		return "", false
	}
	return rel, true
}

// dirRoot returns name relative to the first directory root containing it.
func (w *Watcher) dirRoot(name string) (string, bool) {
	for _, r := range w.roots {
		if r.file {
			continue
		}
		rel, err := filepath.Rel(r.path, name)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}
