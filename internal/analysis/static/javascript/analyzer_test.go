package javascript

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
)

// -- Test Helpers --

// recordingRule logs every traversal event it receives and reports each
// call to a function named "flag".
type recordingRule struct {
	*core.BaseRule

	mu      sync.Mutex
	created int
	events  []string
}

func newRecordingRule() *recordingRule {
	return &recordingRule{BaseRule: core.NewBaseRule("recording", "records events", nil)}
}

func (r *recordingRule) Create(ctx *RuleContext) Visitor {
	r.mu.Lock()
	r.created++
	r.events = nil
	r.mu.Unlock()
	return &recordingVisitor{rule: r, ctx: ctx}
}

func (r *recordingRule) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

type recordingVisitor struct {
	rule *recordingRule
	ctx  *RuleContext
}

func (v *recordingVisitor) name(fn *sitter.Node) string {
	if name, ok := FunctionName(fn, v.ctx.Source); ok {
		return name
	}
	return fn.Type()
}

func (v *recordingVisitor) EnterFunction(fn *sitter.Node) { v.rule.record("enter " + v.name(fn)) }
func (v *recordingVisitor) ExitFunction(fn *sitter.Node)  { v.rule.record("exit " + v.name(fn)) }
func (v *recordingVisitor) VisitStatement(stmt *sitter.Node) {
	v.rule.record("stmt " + strings.TrimSuffix(v.ctx.Content(stmt), ";"))
}
func (v *recordingVisitor) ExitCall(call *sitter.Node) {
	callee := v.ctx.Content(call.ChildByFieldName("function"))
	v.rule.record("call " + callee)
	if callee == "flag" {
		v.ctx.Report(call, "flagged")
	}
}
func (v *recordingVisitor) ExitProgram() { v.rule.record("program") }

func runRule(t *testing.T, rule Rule, code string) core.FileResult {
	t.Helper()
	analyzer := NewAnalyzer(zaptest.NewLogger(t), core.SeverityError, rule)
	result, err := analyzer.Analyze(context.Background(), "test_case.js", code)
	require.NoError(t, err)
	return result
}

// -- Tests --

func TestWalker_EventOrder(t *testing.T) {
	code := `
		function outer() {
			inner();
			function inner() { a.b(); }
		}
		outer();
	`
	rule := newRecordingRule()
	runRule(t, rule, code)

	assert.Equal(t, []string{
		"enter outer",
		"stmt inner()",
		"call inner",
		"enter inner",
		"stmt a.b()",
		"call a.b",
		"exit inner",
		"exit outer",
		"stmt outer()",
		"call outer",
		"program",
	}, rule.events)
}

func TestWalker_NestedCallsExitInnermostFirst(t *testing.T) {
	rule := newRecordingRule()
	runRule(t, rule, "a(b(c()));")

	assert.Equal(t, []string{
		"stmt a(b(c()))",
		"call c",
		"call b",
		"call a",
		"program",
	}, rule.events)
}

func TestWalker_FunctionKinds(t *testing.T) {
	code := `
		var f = function named() {};
		var g = () => 1;
		var h = function* gen() {};
		class K { method() {} }
	`
	rule := newRecordingRule()
	runRule(t, rule, code)

	var entered []string
	for _, e := range rule.events {
		if strings.HasPrefix(e, "enter ") {
			entered = append(entered, strings.TrimPrefix(e, "enter "))
		}
	}
	assert.Equal(t, []string{"named", "arrow_function", "gen", "method_definition"}, entered)
}

func TestAnalyzer_ReportsWithSeverityAndLocation(t *testing.T) {
	code := "ok();\n  flag(1);\nflag(2);\n"
	result := runRule(t, newRecordingRule(), code)

	require.Len(t, result.Diagnostics, 2)
	first := result.Diagnostics[0]
	assert.Equal(t, "recording", first.RuleID)
	assert.Equal(t, "flagged", first.Message)
	assert.Equal(t, core.SeverityError, first.Severity)
	assert.Equal(t, "test_case.js", first.Location.File)
	assert.Equal(t, 2, first.Location.Line)
	assert.Equal(t, 3, first.Location.Column)
	assert.Equal(t, 3, result.Diagnostics[1].Location.Line)
	assert.False(t, result.SyntaxErrors)
}

func TestAnalyzer_EmptyContent(t *testing.T) {
	rule := newRecordingRule()
	result := runRule(t, rule, "")
	assert.Empty(t, result.Diagnostics)
	assert.NotNil(t, result.Diagnostics)
	assert.Equal(t, 0, rule.created, "rules are not instantiated for empty files")
}

func TestAnalyzer_SyntaxErrorsAreTolerated(t *testing.T) {
	code := "flag(1);\nfunction ( {\n"
	result := runRule(t, newRecordingRule(), code)
	assert.True(t, result.SyntaxErrors)
	assert.NotEmpty(t, result.Diagnostics)
}

func TestAnalyzer_FreshRuleStatePerFile(t *testing.T) {
	rule := newRecordingRule()
	analyzer := NewAnalyzer(zaptest.NewLogger(t), "", rule)

	for i := 0; i < 3; i++ {
		result, err := analyzer.Analyze(context.Background(), fmt.Sprintf("f%d.js", i), "flag();")
		require.NoError(t, err)
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, core.SeverityWarning, result.Diagnostics[0].Severity, "empty severity defaults to warning")
	}
	assert.Equal(t, 3, rule.created)
	assert.Len(t, analyzer.Rules(), 1)
}

func TestAnalyzer_Concurrency(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(zaptest.NewLogger(t), core.SeverityWarning, newRecordingRule())

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			code := strings.Repeat("flag();\n", id%4+1)
			result, err := analyzer.Analyze(context.Background(), fmt.Sprintf("w%d.js", id), code)
			if err != nil {
				errs <- err
				return
			}
			if len(result.Diagnostics) != id%4+1 {
				errs <- fmt.Errorf("worker %d: expected %d diagnostics, got %d", id, id%4+1, len(result.Diagnostics))
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestNodeID(t *testing.T) {
	root, src := parseProgram(t, "function a() {}\nfunction a() {}")
	first := root.NamedChild(0)
	second := root.NamedChild(1)

	assert.Equal(t, IDOf(first), IDOf(root.NamedChild(0)))
	assert.NotEqual(t, IDOf(first), IDOf(second), "identical text at different offsets is a different node")
	assert.True(t, IDOf(nil).IsZero())
	assert.False(t, IDOf(first).IsZero())
	assert.Equal(t, "function_declaration[0:15]", IDOf(first).String())

	name, ok := FunctionName(first, src)
	assert.True(t, ok)
	assert.Equal(t, "a", name)

	_, ok = FunctionName(nil, src)
	assert.False(t, ok)
}

func TestIsFunction_IgnoresKeywordToken(t *testing.T) {
	root, _ := parseProgram(t, "function a() {}\nvar f = function () {};")

	decl := root.NamedChild(0)
	keyword := decl.Child(0)
	require.Equal(t, "function", keyword.Type())
	assert.False(t, keyword.IsNamed())
	assert.False(t, IsFunction(keyword))
	assert.False(t, IsFunctionLiteral(keyword))
	assert.True(t, IsFunction(decl))

	expr := root.NamedChild(1).NamedChild(0).ChildByFieldName("value")
	require.NotNil(t, expr)
	assert.True(t, IsFunctionLiteral(expr))
	assert.False(t, IsFunctionLiteral(expr.Child(0)))
}
