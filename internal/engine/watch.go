// internal/engine/watch.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultWatchDebounce = 250 * time.Millisecond

// RunHandler receives every run produced in watch mode. Returning an error
// stops watching.
type RunHandler func(ctx context.Context, run *Run) error

// watchTarget is one command line path in watch mode.
type watchTarget struct {
	// root is the directory watched for this target.
	root string
	// file is set when the target names a single file.
	file string
	// pattern is set when the target is a glob.
	pattern string
}

func (e *Engine) selects(t watchTarget, path string) bool {
	switch {
	case t.file != "":
		return path == t.file
	case t.pattern != "":
		ok, _ := doublestar.PathMatch(t.pattern, path)
		return ok && !e.finder.IsExcluded(path)
	default:
		return e.finder.Selects(t.root, path)
	}
}

// Watch lints paths once and then re-lints files as they change, until ctx
// is cancelled. Bursts of file system events are coalesced so that saving
// several files at once produces a single run.
func (e *Engine) Watch(ctx context.Context, paths []string, handle RunHandler) error {
	logger := e.logger.Named("watch")

	run, err := e.Run(ctx, paths)
	switch {
	case errors.Is(err, ErrNoFiles):
		logger.Info("No files to lint yet; waiting for changes")
	case err != nil:
		return err
	default:
		if err := handle(ctx, run); err != nil {
			return err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	targets := make([]watchTarget, 0, len(paths))
	for _, p := range paths {
		t, err := e.addTarget(watcher, p)
		if err != nil {
			return err
		}
		targets = append(targets, t)
	}
	logger.Info("Watching for changes", zap.Strings("paths", paths), zap.Int("directories", len(watcher.WatchList())))

	interval := e.cfg.Engine().WatchDebounce
	if interval <= 0 {
		interval = defaultWatchDebounce
	}
	debounced := debounce.New(interval)
	trigger := make(chan struct{}, 1)
	signal := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	pending := make(map[string]struct{})
	mark := func(path string) {
		for _, t := range targets {
			if e.selects(t, path) {
				pending[path] = struct{}{}
				debounced(signal)
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Stopping watch", zap.Error(ctx.Err()))
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			e.handleEvent(watcher, targets, event, mark)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error", zap.Error(err))

		case <-trigger:
			files := existingFiles(pending)
			pending = make(map[string]struct{})
			if len(files) == 0 {
				continue
			}

			logger.Debug("Re-linting changed files", zap.Strings("files", files))
			run, err := e.LintFiles(ctx, files)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("Re-lint failed", zap.Error(err))
				continue
			}
			if err := handle(ctx, run); err != nil {
				return err
			}
		}
	}
}

// handleEvent queues changed files and starts watching new directories.
func (e *Engine) handleEvent(watcher *fsnotify.Watcher, targets []watchTarget, event fsnotify.Event, mark func(string)) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	path := filepath.Clean(event.Name)

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		mark(path)
		return
	}
	if !event.Has(fsnotify.Create) {
		return
	}
	for _, t := range targets {
		if t.file != "" || !isWithin(t.root, path) || e.finder.IsExcludedDir(t.root, path) {
			continue
		}
		// Files may have been written into the directory before the watch
		// was registered, so queue everything already in it.
		if err := e.watchTree(watcher, t.root, path, mark); err != nil {
			e.logger.Warn("Failed to watch new directory", zap.String("dir", path), zap.Error(err))
		}
		return
	}
}

// addTarget registers the directories needed to observe path.
func (e *Engine) addTarget(watcher *fsnotify.Watcher, path string) (watchTarget, error) {
	if strings.ContainsAny(path, "*?[{") {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(path))
		t := watchTarget{root: filepath.FromSlash(base), pattern: filepath.Clean(path)}
		return t, e.watchTree(watcher, t.root, t.root, nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		return watchTarget{}, fmt.Errorf("cannot watch %s: %w", path, err)
	}
	if !info.IsDir() {
		t := watchTarget{root: filepath.Dir(path), file: filepath.Clean(path)}
		if err := watcher.Add(t.root); err != nil {
			return watchTarget{}, fmt.Errorf("cannot watch %s: %w", t.root, err)
		}
		return t, nil
	}

	t := watchTarget{root: filepath.Clean(path)}
	return t, e.watchTree(watcher, t.root, t.root, nil)
}

// watchTree adds dir and its subdirectories to watcher, skipping excluded
// directories. When mark is non-nil every file found is passed to it.
func (e *Engine) watchTree(watcher *fsnotify.Watcher, root, dir string, mark func(string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			if mark != nil {
				mark(path)
			}
			return nil
		}
		if path != root && e.finder.IsExcludedDir(root, path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("cannot watch %s: %w", path, err)
		}
		return nil
	})
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// existingFiles returns the regular files among paths. Deleted files drop out.
func existingFiles(paths map[string]struct{}) []string {
	files := make([]string, 0, len(paths))
	for p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			files = append(files, p)
		}
	}
	return files
}
