// internal/reporting/text_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
)

// TextReporter prints diagnostics grouped by file followed by a one line
// summary, in the style of eslint's stylish formatter.
type TextReporter struct {
	writer  io.WriteCloser
	logger  *zap.Logger
	mu      sync.Mutex
	summary Summary
	err     error
}

// NewTextReporter creates a reporter writing human readable text.
func NewTextReporter(writer io.WriteCloser, info RunInfo) *TextReporter {
	return &TextReporter{writer: writer, logger: info.logger("text_reporter")}
}

// Write prints the diagnostics of one file. Files without diagnostics print nothing.
func (r *TextReporter) Write(result core.FileResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary.Add(result)
	if len(result.Diagnostics) == 0 || r.err != nil {
		return r.err
	}

	tw := tabwriter.NewWriter(r.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, result.File)
	for _, d := range result.Diagnostics {
		fmt.Fprintf(tw, "  %d:%d\t%s\t%s\t%s\n", d.Location.Line, d.Location.Column, d.Severity, d.Message, d.RuleID)
	}
	fmt.Fprintln(tw)
	if err := tw.Flush(); err != nil {
		r.err = fmt.Errorf("failed to write text report: %w", err)
	}
	return r.err
}

// Close prints the summary line and closes the writer.
func (r *TextReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err == nil {
		if _, err := fmt.Fprintln(r.writer, r.summaryLine()); err != nil {
			r.err = fmt.Errorf("failed to write text report: %w", err)
		}
	}
	closeErr := r.writer.Close()

	if r.err != nil {
		return r.err
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	return nil
}

func (r *TextReporter) summaryLine() string {
	s := r.summary
	if s.Problems() == 0 {
		return fmt.Sprintf("No problems found in %d %s.", s.Files, plural(s.Files, "file", "files"))
	}
	return fmt.Sprintf("%d %s (%d %s, %d %s, %d %s) in %d %s.",
		s.Problems(), plural(s.Problems(), "problem", "problems"),
		s.Errors, plural(s.Errors, "error", "errors"),
		s.Warnings, plural(s.Warnings, "warning", "warnings"),
		s.Notes, plural(s.Notes, "note", "notes"),
		s.FilesFlagged, plural(s.FilesFlagged, "file", "files"),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
