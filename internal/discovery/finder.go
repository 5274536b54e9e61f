// internal/discovery/finder.go
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// ErrBadPattern is returned when an include or exclude pattern is malformed.
var ErrBadPattern = errors.New("invalid file pattern")

// FileFinder expands command line paths into the set of files to lint.
type FileFinder struct {
	include []string
	exclude []string
	logger  *zap.Logger
}

// NewFileFinder validates the patterns in cfg and returns a finder.
func NewFileFinder(cfg Config, logger *zap.Logger) (*FileFinder, error) {
	cfg.SetDefaults()
	for _, p := range append(append([]string(nil), cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileFinder{
		include: cfg.Include,
		exclude: cfg.Exclude,
		logger:  logger.Named("discovery"),
	}, nil
}

// Find returns the sorted, de-duplicated files selected by paths. A
// directory is searched recursively for files matching the include
// patterns. A file named explicitly is linted unless it is excluded. A path
// containing glob characters is expanded first.
func (f *FileFinder) Find(ctx context.Context, paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	add := func(p string) {
		seen[filepath.Clean(p)] = struct{}{}
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if hasMeta(p) {
			matches, err := doublestar.FilepathGlob(p)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrBadPattern, p, err)
			}
			for _, m := range matches {
				info, err := os.Stat(m)
				if err != nil || info.IsDir() {
					continue
				}
				if !f.IsExcluded(m) {
					add(m)
				}
			}
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			if !f.IsExcluded(p) {
				add(p)
			}
			continue
		}
		if err := f.walk(ctx, p, add); err != nil {
			return nil, err
		}
	}

	files := make([]string, 0, len(seen))
	for p := range seen {
		files = append(files, p)
	}
	sort.Strings(files)
	f.logger.Debug("File discovery finished", zap.Strings("paths", paths), zap.Int("files", len(files)))
	return files, nil
}

// walk visits root, pruning excluded directories.
func (f *FileFinder) walk(ctx context.Context, root string, add func(string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			f.logger.Warn("Skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if path == root {
			return nil
		}
		if d.IsDir() {
			if f.IsExcludedDir(root, path) {
				f.logger.Debug("Pruning excluded directory", zap.String("path", path))
				return filepath.SkipDir
			}
			return nil
		}
		if f.Selects(root, path) {
			add(path)
		}
		return nil
	})
}

// Selects reports whether path, found below the searched directory root,
// is selected by the include patterns and not excluded. Watch mode uses it
// to filter file system events.
func (f *FileFinder) Selects(root, path string) bool {
	rel, ok := relativeTo(root, path)
	return ok && f.matchesInclude(rel) && !f.matchesExclude(rel)
}

// IsExcludedDir reports whether every file below dir, a directory under
// root, is excluded.
func (f *FileFinder) IsExcludedDir(root, dir string) bool {
	rel, ok := relativeTo(root, dir)
	return ok && rel != "." && f.isExcludedDir(rel)
}

// IsExcluded reports whether an explicitly named file matches an exclude pattern.
func (f *FileFinder) IsExcluded(path string) bool {
	return f.matchesExclude(normalize(path))
}

func (f *FileFinder) matchesInclude(rel string) bool {
	return matchAny(f.include, rel)
}

func (f *FileFinder) matchesExclude(rel string) bool {
	return matchAny(f.exclude, rel)
}

// isExcludedDir probes a file name inside dir: patterns such as
// "**/node_modules/**" exclude a directory by excluding everything under it.
func (f *FileFinder) isExcludedDir(rel string) bool {
	return matchAny(f.exclude, rel+"/"+dirProbe)
}

const dirProbe = "__scopelint_probe__"

func relativeTo(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// normalize turns path into the slash separated, volume-less form patterns
// are matched against.
func normalize(path string) string {
	path = filepath.Clean(path)
	path = strings.TrimPrefix(path, filepath.VolumeName(path))
	return strings.TrimPrefix(filepath.ToSlash(path), "/")
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
