// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
	"github.com/xkilldash9x/scopelint/internal/config"
)

// ErrNoFiles is returned when the given paths select no file to lint.
var ErrNoFiles = errors.New("no files matched the given paths")

// -- Interfaces for Dependency Inversion --

// Linter analyses the content of one file. *javascript.Analyzer satisfies it.
type Linter interface {
	Analyze(ctx context.Context, filename, content string) (core.FileResult, error)
}

// Finder expands command line paths into files. *discovery.FileFinder satisfies it.
type Finder interface {
	Find(ctx context.Context, paths []string) ([]string, error)
	Selects(root, path string) bool
	IsExcluded(path string) bool
	IsExcludedDir(root, dir string) bool
}

// Run is the outcome of linting a set of files.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	// Results holds one entry per file, sorted by file name.
	Results []core.FileResult
}

// Count returns the number of diagnostics with the given severity.
func (r *Run) Count(severity core.Severity) int {
	n := 0
	for _, res := range r.Results {
		for _, d := range res.Diagnostics {
			if d.Severity == severity {
				n++
			}
		}
	}
	return n
}

// Engine lints files concurrently, one parser and rule instance per file.
type Engine struct {
	cfg    config.Interface
	logger *zap.Logger
	linter Linter
	finder Finder
}

// New creates a new Engine.
func New(cfg config.Interface, logger *zap.Logger, linter Linter, finder Finder) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if linter == nil {
		return nil, errors.New("linter cannot be nil")
	}
	if finder == nil {
		return nil, errors.New("finder cannot be nil")
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.Named("engine"),
		linter: linter,
		finder: finder,
	}, nil
}

// Run discovers the files selected by paths and lints them.
func (e *Engine) Run(ctx context.Context, paths []string) (*Run, error) {
	files, err := e.finder.Find(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return e.LintFiles(ctx, files)
}

// LintFiles lints files with bounded concurrency. Once ctx is cancelled no
// further file is started; files already being analysed run to completion
// and the partial run is returned together with the context error.
func (e *Engine) LintFiles(ctx context.Context, files []string) (*Run, error) {
	files = append([]string(nil), files...)
	sort.Strings(files)

	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	results := make([]core.FileResult, len(files))
	done := make([]bool, len(files))
	logger := e.logger.With(zap.String("run_id", run.ID))

	concurrency := e.cfg.Engine().Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	started := 0
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		started++
		i, file := i, file
		g.Go(func() error {
			result, err := e.lintFile(context.WithoutCancel(gctx), file)
			if err != nil {
				return err
			}
			results[i] = result
			done[i] = true
			return nil
		})
	}

	err := g.Wait()
	run.Duration = time.Since(run.StartedAt)
	run.Results = compact(results, done)

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		logger.Warn("Lint run stopped early",
			zap.Int("files_started", started),
			zap.Int("files_total", len(files)),
			zap.Error(err),
		)
		return run, err
	}

	logger.Info("Lint run finished",
		zap.Int("files", len(run.Results)),
		zap.Int("errors", run.Count(core.SeverityError)),
		zap.Int("warnings", run.Count(core.SeverityWarning)),
		zap.Int("notes", run.Count(core.SeverityNote)),
		zap.Duration("duration", run.Duration),
	)
	return run, nil
}

func (e *Engine) lintFile(ctx context.Context, file string) (core.FileResult, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return core.FileResult{}, fmt.Errorf("failed to read %s: %w", file, err)
	}

	start := time.Now()
	result, err := e.linter.Analyze(ctx, file, string(content))
	if err != nil {
		return core.FileResult{}, fmt.Errorf("failed to analyze %s: %w", file, err)
	}
	e.logger.Debug("Linted file",
		zap.String("file", file),
		zap.Int("diagnostics", len(result.Diagnostics)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// compact drops the slots of files that were never linted.
func compact(results []core.FileResult, done []bool) []core.FileResult {
	out := make([]core.FileResult, 0, len(results))
	for i, r := range results {
		if done[i] {
			out = append(out, r)
		}
	}
	return out
}
