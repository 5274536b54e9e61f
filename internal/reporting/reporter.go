// -- internal/reporting/reporter.go --
package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
	"github.com/xkilldash9x/scopelint/internal/observability"
)

// ErrUnsupportedFormat is returned by New for an unknown report format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Reporter defines the interface for writing lint results to an output.
type Reporter interface {
	// Write processes the result of one file. Results arrive in the order
	// the engine sorted them.
	Write(result core.FileResult) error
	// Close finalizes the report and closes any underlying resources (e.g., file handles).
	Close() error
}

// RunInfo describes the lint run a report belongs to.
type RunInfo struct {
	ID          string
	ToolVersion string
	// Rules are the rules that ran, used to describe rule IDs in the report.
	Rules  []core.Descriptor
	Logger *zap.Logger
}

func (i RunInfo) logger(name string) *zap.Logger {
	if i.Logger != nil {
		return i.Logger.Named(name)
	}
	return observability.GetLogger().Named(name)
}

// Summary counts diagnostics by severity.
type Summary struct {
	Files        int `json:"files"`
	FilesFlagged int `json:"filesWithDiagnostics"`
	Errors       int `json:"errors"`
	Warnings     int `json:"warnings"`
	Notes        int `json:"notes"`
	SyntaxErrors int `json:"filesWithSyntaxErrors"`
}

// Add accounts for one file result.
func (s *Summary) Add(result core.FileResult) {
	s.Files++
	if len(result.Diagnostics) > 0 {
		s.FilesFlagged++
	}
	if result.SyntaxErrors {
		s.SyntaxErrors++
	}
	for _, d := range result.Diagnostics {
		switch d.Severity {
		case core.SeverityError:
			s.Errors++
		case core.SeverityWarning:
			s.Warnings++
		default:
			s.Notes++
		}
	}
}

// Problems returns the total number of diagnostics.
func (s Summary) Problems() int {
	return s.Errors + s.Warnings + s.Notes
}

// Summarize accumulates a Summary over results.
func Summarize(results []core.FileResult) Summary {
	var s Summary
	for _, r := range results {
		s.Add(r)
	}
	return s
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a new reporter based on the specified format and output path.
// An empty path or "stdout" writes to standard output.
func New(format, outputPath string, info RunInfo) (Reporter, error) {
	switch format {
	case "text", "json", "sarif":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		// Wrap Stdout so Close() is a no-op.
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}
	return NewWithWriter(format, writer, info)
}

// NewWithWriter creates a reporter that takes ownership of writer.
func NewWithWriter(format string, writer io.WriteCloser, info RunInfo) (Reporter, error) {
	switch format {
	case "text":
		return NewTextReporter(writer, info), nil
	case "json":
		return NewJSONReporter(writer, info), nil
	case "sarif":
		return NewSARIFReporter(writer, info), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
