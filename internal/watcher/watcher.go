// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watcher reports debounced batches of file changes under a project root.
//
// It backs "codecraft analyze --watch": each quiet period after a burst of
// edits produces one Batch, which the caller turns into a re-analysis.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 2 * time.Second

// DefaultIgnore lists directory and file patterns that never trigger a batch.
var DefaultIgnore = []string{
	".git", ".hg", ".svn",
	"node_modules", "vendor",
	"__pycache__", ".venv", "venv",
	"dist", "build", "target",
	".idea", ".vscode",
	"*.pyc", "*.swp", "*.tmp", "*~",
}

// =============================================================================
// TYPES
// =============================================================================

// Options configures a Watcher.
type Options struct {
	// Root is the directory to watch recursively.
	Root string

	// Debounce is how long the tree must stay quiet before a batch fires.
	Debounce time.Duration

	// Ignore holds extra base-name patterns (filepath.Match syntax) added to DefaultIgnore.
	Ignore []string

	Logger *zap.Logger
}

// Batch is one debounced group of changes.
type Batch struct {
	// Paths changed since the previous batch, sorted and de-duplicated.
	Paths []string
	At    time.Time
}

// Watcher watches a directory tree with fsnotify.
type Watcher struct {
	root     string
	debounce time.Duration
	ignore   []string
	log      *zap.Logger

	fs      *fsnotify.Watcher
	mu      sync.Mutex
	pending map[string]time.Time // path -> last change time
	closed  bool
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// New creates a watcher for opts.Root. The root must be an existing directory.
func New(opts Options) (*Watcher, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s: not a directory", opts.Root)
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		root:     root,
		debounce: opts.Debounce,
		ignore:   lo.Uniq(append(append([]string{}, DefaultIgnore...), opts.Ignore...)),
		log:      opts.Logger.Named("watcher"),
		fs:       fs,
		pending:  make(map[string]time.Time),
	}, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Ignored reports whether a path has an ignored component below the root.
func (w *Watcher) Ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range splitPath(rel) {
		if matchesAny(part, w.ignore) {
			return true
		}
	}
	return false
}

// =============================================================================
// RUN LOOP
// =============================================================================

// Run watches until ctx is done or the watcher is closed, calling fn for each
// batch on the Run goroutine. Run returns nil when ctx is canceled.
func (w *Watcher) Run(ctx context.Context, fn func(Batch)) error {
	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	w.log.Info("watching", zap.String("root", w.root), zap.Duration("debounce", w.debounce))

	tick := w.debounce / 4
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			// Non-fatal; an overflowed queue only loses detail, the batch still fires
			w.log.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			if batch, ok := w.flush(now); ok {
				w.log.Debug("batch", zap.Int("paths", len(batch.Paths)))
				fn(batch)
			}
		}
	}
}

// handleEvent records a change. Chmod-only events are ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || w.Ignored(event.Name) {
		return
	}

	// New directories need their own watches
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.log.Debug("add directory failed", zap.String("path", event.Name), zap.Error(err))
			}
		}
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flush returns the pending paths once the newest change is older than the debounce.
func (w *Watcher) flush(now time.Time) (Batch, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return Batch{}, false
	}

	var latest time.Time
	for _, t := range w.pending {
		if t.After(latest) {
			latest = t
		}
	}
	if now.Sub(latest) < w.debounce {
		return Batch{}, false
	}

	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	w.pending = make(map[string]time.Time)

	return Batch{Paths: paths, At: now}, true
}

// addRecursive adds a directory and all its non-ignored subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil // Skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.Ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			if path == w.root {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			w.log.Debug("watch add failed", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	err := w.fs.Close()
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func splitPath(rel string) []string {
	return lo.Compact(strings.Split(filepath.ToSlash(rel), "/"))
}

func matchesAny(name string, patterns []string) bool {
	return lo.ContainsBy(patterns, func(p string) bool {
		ok, err := filepath.Match(p, name)
		return err == nil && ok
	})
}
