// File: cmd/lint.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
	"github.com/xkilldash9x/scopelint/internal/analysis/static/angular"
	"github.com/xkilldash9x/scopelint/internal/analysis/static/javascript"
	"github.com/xkilldash9x/scopelint/internal/config"
	"github.com/xkilldash9x/scopelint/internal/discovery"
	"github.com/xkilldash9x/scopelint/internal/engine"
	"github.com/xkilldash9x/scopelint/internal/observability"
	"github.com/xkilldash9x/scopelint/internal/reporting"
)

// ErrViolationsFound is returned when a run produced diagnostics of
// severity error.
var ErrViolationsFound = errors.New("lint violations found")

// newLintCmd creates and configures the `lint` command.
func newLintCmd() *cobra.Command {
	var watch bool

	lintCmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lints JavaScript files for controllers that write to $scope",
		Long: `Lints the given files, directories or glob patterns (default ".").

Directories are searched recursively for files matching lint.include that are
not matched by lint.exclude. With --controller-pattern only functions whose
name matches the pattern are treated as controllers; otherwise every function
registered through .controller(name, fn) is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"."}
			}
			return runLint(cmd.Context(), cfg, args, watch, cmd.OutOrStdout(), observability.GetLogger())
		},
	}

	// Configuration override flags.
	lintCmd.Flags().StringP("controller-pattern", "p", "", "Controller name or /regex/flags (Go RE2 syntax, no lookaround); empty detects .controller() registrations. (Overrides config/env)")
	lintCmd.Flags().String("severity", "", "Severity of reported diagnostics: error, warning or note. (Overrides config/env)")
	lintCmd.Flags().StringSlice("include", nil, "Glob patterns selecting files inside directories. (Overrides config/env)")
	lintCmd.Flags().StringSlice("exclude", nil, "Glob patterns of files and directories to skip. (Overrides config/env)")
	lintCmd.Flags().IntP("concurrency", "j", 0, "Number of files linted in parallel. (Overrides config/env)")

	// Reporting flags
	lintCmd.Flags().StringP("format", "f", "", "Report format: text, json or sarif. (Overrides config/env)")
	lintCmd.Flags().StringP("output", "o", "", "Report file path; standard output when unset. (Overrides config/env)")

	lintCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and re-lint files as they change")
	return lintCmd
}

// runLint wires the rule, analyzer, finder and engine together, lints paths
// and writes the report.
func runLint(ctx context.Context, cfg config.Interface, paths []string, watch bool, stdout io.Writer, logger *zap.Logger) error {
	severity, err := core.ParseSeverity(cfg.Lint().Severity)
	if err != nil {
		return err
	}
	matcher, err := angular.NewControllerMatcher(cfg.Lint().ControllerNamePattern)
	if err != nil {
		return err
	}

	rule := angular.NewControllerAs(logger, matcher)
	analyzer := javascript.NewAnalyzer(logger, severity, rule)

	finder, err := discovery.NewFileFinder(discovery.Config{
		Include: cfg.Lint().Include,
		Exclude: cfg.Lint().Exclude,
	}, logger)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, logger, analyzer, finder)
	if err != nil {
		return fmt.Errorf("failed to initialize lint engine: %w", err)
	}

	rules := []core.Descriptor{rule}
	logger.Info("Starting lint",
		zap.Strings("paths", paths),
		zap.Stringer("controller_matcher", matcher),
		zap.String("severity", string(severity)),
		zap.Bool("watch", watch),
	)

	if watch {
		return eng.Watch(ctx, paths, func(ctx context.Context, run *engine.Run) error {
			return writeReport(cfg, run, rules, stdout, logger)
		})
	}

	run, err := eng.Run(ctx, paths)
	if run == nil {
		return err
	}
	// A cancelled run still reports the files it finished.
	if reportErr := writeReport(cfg, run, rules, stdout, logger); reportErr != nil {
		return reportErr
	}
	if err != nil {
		return err
	}
	if run.Count(core.SeverityError) > 0 {
		return ErrViolationsFound
	}
	return nil
}

// writeReport renders run in the configured format.
func writeReport(cfg config.Interface, run *engine.Run, rules []core.Descriptor, stdout io.Writer, logger *zap.Logger) error {
	info := reporting.RunInfo{
		ID:          run.ID,
		ToolVersion: Version,
		Rules:       rules,
		Logger:      logger,
	}

	format, path := cfg.Output().Format, cfg.Output().Path
	var (
		reporter reporting.Reporter
		err      error
	)
	if path == "" || path == "stdout" {
		reporter, err = reporting.NewWithWriter(format, nopCloser{stdout}, info)
	} else {
		reporter, err = reporting.New(format, path, info)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s reporter: %w", format, err)
	}

	for _, result := range run.Results {
		if err := reporter.Write(result); err != nil {
			_ = reporter.Close()
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if err := reporter.Close(); err != nil {
		return fmt.Errorf("failed to finalize report: %w", err)
	}

	if path != "" && path != "stdout" {
		logger.Info("Report written", zap.String("path", path), zap.String("format", format))
	}
	return nil
}

// nopCloser keeps the command's output stream open after a report closes.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
