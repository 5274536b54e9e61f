package core

import (
	"fmt"
	"strings"
)

// -- Severity Definitions --

// Severity classifies how a diagnostic is surfaced to the user and maps
// directly onto SARIF result levels.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// ParseSeverity converts a user supplied string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityError:
		return SeverityError, nil
	case SeverityWarning, "warn":
		return SeverityWarning, nil
	case SeverityNote, "info":
		return SeverityNote, nil
	default:
		return "", fmt.Errorf("unknown severity %q (expected error, warning or note)", s)
	}
}

// -- Diagnostic Definitions --

// Location holds the detailed position and snippet of a diagnostic.
// Lines and columns are 1-indexed.
type Location struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine"`
	EndColumn int    `json:"endColumn"`
	Snippet   string `json:"snippet,omitempty"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is a single report emitted by a rule against a source node.
type Diagnostic struct {
	RuleID   string   `json:"ruleId"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Location Location `json:"location"`
}

// Before reports whether d sorts before other by file, then position, then rule.
func (d Diagnostic) Before(other Diagnostic) bool {
	if d.Location.File != other.Location.File {
		return d.Location.File < other.Location.File
	}
	if d.Location.Line != other.Location.Line {
		return d.Location.Line < other.Location.Line
	}
	if d.Location.Column != other.Location.Column {
		return d.Location.Column < other.Location.Column
	}
	return d.RuleID < other.RuleID
}

// FileResult groups the diagnostics produced for one analysed file.
type FileResult struct {
	File        string       `json:"file"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	// SyntaxErrors is true when the parser recovered from errors in the file.
	SyntaxErrors bool `json:"syntaxErrors,omitempty"`
}
