// internal/reporting/sarif_reporter.go
package reporting

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
	"github.com/xkilldash9x/scopelint/internal/reporting/sarif"
)

// Constants for tool identification in the SARIF report.
const (
	ToolName    = "scopelint"
	ToolInfoURI = "https://github.com/xkilldash9x/scopelint"
	// automationCategory prefixes the run ID in automationDetails.id.
	automationCategory = "scopelint/"
	// snippetFingerprintKey names the line independent fingerprint of a result.
	snippetFingerprintKey = "scopelintSnippetHash/v1"
)

// SARIFReporter implements the Reporter interface for the SARIF 2.1.0 format.
// It is thread safe.
type SARIFReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	log    *sarif.Log
	// mu protects the log structure and the maps.
	mu sync.Mutex
	// descriptors holds the metadata of the rules that ran, by rule ID.
	descriptors map[string]core.Descriptor
	// ruleIndex maps a rule ID to its position in driver.rules.
	ruleIndex map[string]int
}

// NewSARIFReporter creates a new reporter that writes SARIF output.
func NewSARIFReporter(writer io.WriteCloser, info RunInfo) *SARIFReporter {
	run := &sarif.Run{
		Tool: &sarif.Tool{
			Driver: &sarif.ToolComponent{
				Name:           ToolName,
				InformationURI: pString(ToolInfoURI),
				// Initialize empty slices (not nil) for proper JSON marshalling
				Rules: []*sarif.ReportingDescriptor{},
			},
		},
		Invocations: []*sarif.Invocation{{ExecutionSuccessful: true}},
		Results:     []*sarif.Result{},
	}
	if info.ToolVersion != "" {
		run.Tool.Driver.Version = pString(info.ToolVersion)
	}
	if info.ID != "" {
		run.AutomationDetails = &sarif.RunAutomationDetails{
			ID:   pString(automationCategory + info.ID),
			GUID: pString(info.ID),
		}
	}

	r := &SARIFReporter{
		writer:      writer,
		logger:      info.logger("sarif_reporter"),
		log:         &sarif.Log{Version: sarif.Version, Schema: sarif.Schema, Runs: []*sarif.Run{run}},
		descriptors: make(map[string]core.Descriptor),
		ruleIndex:   make(map[string]int),
	}
	for _, d := range info.Rules {
		r.descriptors[d.Name()] = d
	}
	return r
}

// Write converts the diagnostics of one file into SARIF results. A file that
// only parsed with errors also produces a tool notification.
func (r *SARIFReporter) Write(result core.FileResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	for _, d := range result.Diagnostics {
		index := r.ensureRule(d)
		res := &sarif.Result{
			RuleID:    d.RuleID,
			RuleIndex: &index,
			Message:   &sarif.Message{Text: pString(d.Message)},
			Level:     mapSeverityToSARIFLevel(d.Severity),
			Locations: []*sarif.Location{createLocation(d.Location)},
		}
		res.PartialFingerprints = map[string]string{snippetFingerprintKey: snippetFingerprint(d)}
		run.Results = append(run.Results, res)
	}

	if result.SyntaxErrors {
		invocation := run.Invocations[0]
		invocation.Notifications = append(invocation.Notifications, &sarif.Notification{
			Level:   sarif.LevelWarning,
			Message: &sarif.Message{Text: pString("File contains syntax errors; analysis may be incomplete")},
			Locations: []*sarif.Location{{
				PhysicalLocation: &sarif.PhysicalLocation{
					ArtifactLocation: &sarif.ArtifactLocation{URI: pString(result.File)},
				},
			}},
		})
	}
	return nil
}

// Close finalizes the SARIF log and writes it to the output writer.
func (r *SARIFReporter) Close() error {
	startTime := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	r.logger.Debug("Finalizing SARIF report",
		zap.Int("total_results", len(run.Results)),
		zap.Int("total_rules", len(run.Tool.Driver.Rules)),
	)

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")

	encodeErr := encoder.Encode(r.log)
	// Always attempt to close the writer, regardless of encoding success.
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to encode SARIF log to JSON", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode SARIF output: %w", encodeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}

	r.logger.Debug("Successfully wrote SARIF report", zap.Duration("duration", time.Since(startTime)))
	return nil
}

// ensureRule registers the rule of d on first use and returns its index.
// NOTE: Must be called while holding the mutex.
func (r *SARIFReporter) ensureRule(d core.Diagnostic) int {
	if index, exists := r.ruleIndex[d.RuleID]; exists {
		return index
	}

	description := d.Message
	if desc, ok := r.descriptors[d.RuleID]; ok {
		description = desc.Description()
	}

	driver := r.log.Runs[0].Tool.Driver
	driver.Rules = append(driver.Rules, &sarif.ReportingDescriptor{
		ID:               d.RuleID,
		Name:             pString(d.RuleID),
		ShortDescription: &sarif.MultiformatMessageString{Text: pString(description)},
		FullDescription:  &sarif.MultiformatMessageString{Text: pString(d.Message)},
		DefaultConfiguration: &sarif.ReportingConfiguration{
			Level: mapSeverityToSARIFLevel(d.Severity),
		},
		Properties: &sarif.PropertyBag{
			"tags":      []string{"angularjs", "maintainability"},
			"precision": "high",
		},
	})
	index := len(driver.Rules) - 1
	r.ruleIndex[d.RuleID] = index
	r.logger.Debug("Registering new SARIF rule definition", zap.String("rule_id", d.RuleID))
	return index
}

// createLocation converts a diagnostic location into a SARIF location with a region.
func createLocation(loc core.Location) *sarif.Location {
	region := &sarif.Region{
		StartLine:   pInt(loc.Line),
		StartColumn: pInt(loc.Column),
	}
	if loc.EndLine > 0 {
		region.EndLine = pInt(loc.EndLine)
		region.EndColumn = pInt(loc.EndColumn)
	}
	if loc.Snippet != "" {
		region.Snippet = &sarif.ArtifactContent{Text: pString(loc.Snippet)}
	}

	return &sarif.Location{
		PhysicalLocation: &sarif.PhysicalLocation{
			ArtifactLocation: &sarif.ArtifactLocation{URI: pString(loc.File)},
			Region:           region,
		},
	}
}

// snippetFingerprint hashes the rule, file and whitespace-normalized snippet
// of d. Unlike the region it survives edits that only move the statement.
func snippetFingerprint(d core.Diagnostic) string {
	canonical := strings.Join([]string{d.RuleID, d.Location.File, strings.Join(strings.Fields(d.Location.Snippet), " ")}, "\x00")
	hash := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(hash[:])
}

// mapSeverityToSARIFLevel converts a diagnostic severity to the SARIF standard.
func mapSeverityToSARIFLevel(severity core.Severity) sarif.Level {
	switch severity {
	case core.SeverityError:
		return sarif.LevelError
	case core.SeverityWarning:
		return sarif.LevelWarning
	default:
		return sarif.LevelNote
	}
}

// pString returns a pointer to the given string value. Helper for optional SARIF fields.
func pString(s string) *string {
	return &s
}

func pInt(i int) *int {
	return &i
}
