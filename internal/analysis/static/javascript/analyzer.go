// Filename: javascript/analyzer.go
// This module hosts lint rules over JavaScript source: it parses the file,
// builds lexical scope information, drives rule visitors through the AST and
// collects the diagnostics they report.
package javascript

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
)

// Rule is a lint rule the Analyzer can run. Create is called once per file
// and must return a fresh Visitor, so no state leaks between files.
type Rule interface {
	core.Descriptor
	Create(ctx *RuleContext) Visitor
}

// RuleContext is the rule's view of the file being analysed: its source,
// the scope resolver and the diagnostic sink.
type RuleContext struct {
	Filename string
	Source   []byte
	Logger   *zap.Logger

	ruleID      string
	severity    core.Severity
	scopes      *ScopeManager
	diagnostics *[]core.Diagnostic
}

// Resolve returns the node that declared identifier, or nil.
func (c *RuleContext) Resolve(identifier *sitter.Node) *sitter.Node {
	if c.scopes == nil {
		return nil
	}
	return c.scopes.Resolve(identifier)
}

// Content returns the source text of node.
func (c *RuleContext) Content(node *sitter.Node) string {
	return NodeContent(node, c.Source)
}

// Report records a diagnostic for node.
func (c *RuleContext) Report(node *sitter.Node, message string) {
	*c.diagnostics = append(*c.diagnostics, core.Diagnostic{
		RuleID:   c.ruleID,
		Message:  message,
		Severity: c.severity,
		Location: FormatLocation(c.Filename, node, c.Source),
	})
}

// Analyzer runs a fixed set of rules over JavaScript files. It is safe for
// concurrent use; every Analyze call owns its parser and rule state.
type Analyzer struct {
	logger   *zap.Logger
	rules    []Rule
	severity core.Severity
}

// NewAnalyzer creates a new analyzer that reports with the given severity.
func NewAnalyzer(logger *zap.Logger, severity core.Severity, rules ...Rule) *Analyzer {
	if severity == "" {
		severity = core.SeverityWarning
	}
	return &Analyzer{
		logger:   logger.Named("js_analyzer"),
		rules:    rules,
		severity: severity,
	}
}

// Rules returns the rules this analyzer runs.
func (a *Analyzer) Rules() []Rule {
	return a.rules
}

// Analyze parses content and runs every rule over it.
func (a *Analyzer) Analyze(ctx context.Context, filename, content string) (core.FileResult, error) {
	result := core.FileResult{File: filename, Diagnostics: []core.Diagnostic{}}
	if content == "" {
		return result, nil
	}

	a.logger.Debug("Starting analysis of JavaScript file", zap.String("filename", filename), zap.Int("size_bytes", len(content)))

	// 1. Parsing Phase
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	source := []byte(content)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return result, fmt.Errorf("tree-sitter failed to parse %s: %w", filename, err)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode.HasError() {
		result.SyntaxErrors = true
		a.logger.Warn("Tree-sitter detected syntax errors; analysis may be incomplete", zap.String("file", filename))
	}

	// 2. Pass 1: Scope analysis
	scopes := NewScopeManager(rootNode, source)

	// 3. Pass 2: Rule traversal
	visitors := make([]Visitor, 0, len(a.rules))
	for _, rule := range a.rules {
		ruleCtx := &RuleContext{
			Filename:    filename,
			Source:      source,
			Logger:      a.logger.Named(rule.Name()).With(zap.String("file", filename)),
			ruleID:      rule.Name(),
			severity:    a.severity,
			scopes:      scopes,
			diagnostics: &result.Diagnostics,
		}
		visitors = append(visitors, rule.Create(ruleCtx))
	}

	walker := newASTWalker(a.logger, visitors)
	walker.WalkProgram(rootNode)

	sort.SliceStable(result.Diagnostics, func(i, j int) bool {
		return result.Diagnostics[i].Before(result.Diagnostics[j])
	})

	if len(result.Diagnostics) > 0 {
		a.logger.Debug("Analysis completed with diagnostics",
			zap.String("filename", filename),
			zap.Int("diagnostics_count", len(result.Diagnostics)),
		)
	}
	return result, nil
}
