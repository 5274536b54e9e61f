// Filename: javascript/walker.go
// Depth-first traversal of the Tree-sitter AST that dispatches enter/exit
// events to rule visitors in source order.
package javascript

import (
	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"
)

// Visitor receives traversal events for one file. Every function node
// produces exactly one EnterFunction/ExitFunction pair, properly nested.
type Visitor interface {
	// EnterFunction is called before any node inside fn is visited.
	EnterFunction(fn *sitter.Node)
	// ExitFunction is called after every node inside fn has been visited.
	ExitFunction(fn *sitter.Node)
	// VisitStatement is called when an expression statement is entered.
	VisitStatement(stmt *sitter.Node)
	// ExitCall is called once a call expression and its arguments have been visited.
	ExitCall(call *sitter.Node)
	// ExitProgram is called once, after the whole tree has been visited.
	ExitProgram()
}

// BaseVisitor implements Visitor with no-ops. Embed it to handle only the
// events a rule cares about.
type BaseVisitor struct{}

func (BaseVisitor) EnterFunction(*sitter.Node)  {}
func (BaseVisitor) ExitFunction(*sitter.Node)   {}
func (BaseVisitor) VisitStatement(*sitter.Node) {}
func (BaseVisitor) ExitCall(*sitter.Node)       {}
func (BaseVisitor) ExitProgram()                {}

// astWalker fans traversal events out to a set of visitors.
type astWalker struct {
	logger   *zap.Logger
	visitors []Visitor

	functions  int
	statements int
	calls      int
}

func newASTWalker(logger *zap.Logger, visitors []Visitor) *astWalker {
	return &astWalker{
		logger:   logger.Named("js_walker"),
		visitors: visitors,
	}
}

// WalkProgram visits the whole tree and then signals program exit.
func (w *astWalker) WalkProgram(root *sitter.Node) {
	w.Walk(root)
	for _, v := range w.visitors {
		v.ExitProgram()
	}
	w.logger.Debug("Traversal finished",
		zap.Int("functions", w.functions),
		zap.Int("statements", w.statements),
		zap.Int("calls", w.calls),
	)
}

// Walk recursively visits nodes.
func (w *astWalker) Walk(node *sitter.Node) {
	if node == nil || node.IsNull() {
		return
	}

	if IsFunction(node) {
		w.functions++
		for _, v := range w.visitors {
			v.EnterFunction(node)
		}
		w.walkChildren(node)
		for i := len(w.visitors) - 1; i >= 0; i-- {
			w.visitors[i].ExitFunction(node)
		}
		return
	}

	if node.Type() == "expression_statement" {
		w.statements++
		for _, v := range w.visitors {
			v.VisitStatement(node)
		}
	}

	w.walkChildren(node)

	if node.Type() == "call_expression" {
		w.calls++
		for _, v := range w.visitors {
			v.ExitCall(node)
		}
	}
}

func (w *astWalker) walkChildren(node *sitter.Node) {
	cursor := sitter.NewTreeCursor(node)
	defer cursor.Close()

	if ok := cursor.GoToFirstChild(); ok {
		for {
			w.Walk(cursor.CurrentNode())
			if ok := cursor.GoToNextSibling(); !ok {
				break
			}
		}
	}
}
