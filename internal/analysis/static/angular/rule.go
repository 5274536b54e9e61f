// Filename: angular/rule.go
package angular

import (
	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
	"github.com/xkilldash9x/scopelint/internal/analysis/static/javascript"
)

const (
	// ControllerAsRuleName identifies the rule in diagnostics and reports.
	ControllerAsRuleName = "ng-controller-as"

	// ControllerAsMessage is reported for every offending statement.
	ControllerAsMessage = "You should not set properties on $scope in controllers. Use controllerAs syntax and add data to 'this'"

	controllerAsDescription = "Disallow assigning or calling $scope members inside controllers; use controllerAs and 'this' instead"
)

// ControllerAs flags statements that put data or behaviour on $scope
// inside an AngularJS controller, including inside callbacks and helpers
// nested in the controller body.
type ControllerAs struct {
	*core.BaseRule
	matcher *ControllerMatcher
}

// NewControllerAs creates the rule. A nil matcher selects registration mode.
func NewControllerAs(logger *zap.Logger, matcher *ControllerMatcher) *ControllerAs {
	if matcher == nil {
		matcher = &ControllerMatcher{kind: MatchRegistration}
	}
	return &ControllerAs{
		BaseRule: core.NewBaseRule(ControllerAsRuleName, controllerAsDescription, logger),
		matcher:  matcher,
	}
}

// Matcher returns the controller identification mode of the rule.
func (r *ControllerAs) Matcher() *ControllerMatcher {
	return r.matcher
}

// Create returns a visitor holding the per-file state of the rule.
func (r *ControllerAs) Create(ctx *javascript.RuleContext) javascript.Visitor {
	logger := ctx.Logger
	if logger == nil {
		logger = r.Logger
	}
	return &controllerAsVisitor{
		ctx:         ctx,
		matcher:     r.matcher,
		logger:      logger,
		tree:        newScopeTree(),
		controllers: make(map[javascript.NodeID]bool),
	}
}

type controllerAsVisitor struct {
	javascript.BaseVisitor

	ctx     *javascript.RuleContext
	matcher *ControllerMatcher
	logger  *zap.Logger

	tree        *scopeTree
	controllers map[javascript.NodeID]bool
}

func (v *controllerAsVisitor) EnterFunction(fn *sitter.Node) {
	v.tree.enter(fn)

	if v.matcher.Kind() != MatchName {
		return
	}
	if name, ok := javascript.FunctionName(fn, v.ctx.Source); ok && v.matcher.MatchName(name) {
		v.controllers[javascript.IDOf(fn)] = true
		v.logger.Debug("Controller matched by name", zap.String("name", name))
	}
}

func (v *controllerAsVisitor) ExitFunction(*sitter.Node) {
	v.tree.exit()
}

func (v *controllerAsVisitor) VisitStatement(stmt *sitter.Node) {
	if isScopeViolation(stmt, v.ctx.Source) {
		v.tree.addViolation(stmt)
	}
}

func (v *controllerAsVisitor) ExitCall(call *sitter.Node) {
	if v.matcher.Kind() != MatchRegistration {
		return
	}
	arg := registrationTarget(call, v.ctx.Source)
	if arg == nil {
		return
	}

	fn := resolveController(arg, v.ctx)
	if fn == nil {
		v.logger.Debug("Controller registration could not be resolved",
			zap.String("argument", v.ctx.Content(arg)),
			zap.Uint32("line", call.StartPoint().Row+1),
		)
		return
	}
	v.controllers[javascript.IDOf(fn)] = true
	v.logger.Debug("Controller registered", zap.String("controller", javascript.IDOf(fn).String()))
}

func (v *controllerAsVisitor) ExitProgram() {
	reported := 0
	v.tree.collect(
		func(id javascript.NodeID) bool { return v.controllers[id] },
		func(stmt *sitter.Node) {
			v.ctx.Report(stmt, ControllerAsMessage)
			reported++
		},
	)
	v.logger.Debug("Controller scope check finished",
		zap.Int("functions", v.tree.size()),
		zap.Int("controllers", len(v.controllers)),
		zap.Int("violations", reported),
	)
}
