// internal/reporting/json_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sync"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
)

// JSONReport is the document written by JSONReporter.
type JSONReport struct {
	RunID       string            `json:"runId,omitempty"`
	ToolVersion string            `json:"toolVersion,omitempty"`
	Files       []core.FileResult `json:"files"`
	Summary     Summary           `json:"summary"`
}

// JSONReporter buffers every file result and writes a single JSON document on Close.
type JSONReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	mu     sync.Mutex
	report JSONReport
}

// NewJSONReporter creates a reporter writing one JSON document.
func NewJSONReporter(writer io.WriteCloser, info RunInfo) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		logger: info.logger("json_reporter"),
		report: JSONReport{
			RunID:       info.ID,
			ToolVersion: info.ToolVersion,
			Files:       []core.FileResult{},
		},
	}
}

func (r *JSONReporter) Write(result core.FileResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if result.Diagnostics == nil {
		result.Diagnostics = []core.Diagnostic{}
	}
	r.report.Files = append(r.report.Files, result)
	r.report.Summary.Add(result)
	return nil
}

// Close encodes the report and closes the writer.
func (r *JSONReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	encodeErr := encoder.Encode(r.report)
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to encode JSON report", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode JSON output: %w", encodeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	r.logger.Debug("Wrote JSON report", zap.Int("files", len(r.report.Files)))
	return nil
}
