// Filename: angular/scopetree.go
package angular

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xkilldash9x/scopelint/internal/analysis/static/javascript"
)

const rootIndex = 0

// functionScope is one node of the function nesting tree. The synthetic root
// stands for the program and has a zero fn.
type functionScope struct {
	parent     int
	fn         javascript.NodeID
	children   []int
	violations []*sitter.Node
}

// scopeTree mirrors the static nesting of functions in one file. Nodes live
// in an arena and refer to each other by index; the stack holds the path
// from the root to the function currently being visited.
type scopeTree struct {
	nodes []functionScope
	stack []int
}

func newScopeTree() *scopeTree {
	return &scopeTree{
		nodes: []functionScope{{parent: -1}},
		stack: []int{rootIndex},
	}
}

func (t *scopeTree) current() int {
	return t.stack[len(t.stack)-1]
}

// enter opens a child scope for fn under the current scope.
func (t *scopeTree) enter(fn *sitter.Node) {
	parent := t.current()
	idx := len(t.nodes)
	t.nodes = append(t.nodes, functionScope{parent: parent, fn: javascript.IDOf(fn)})
	t.nodes[parent].children = append(t.nodes[parent].children, idx)
	t.stack = append(t.stack, idx)
}

// exit returns to the parent scope. The root is never popped.
func (t *scopeTree) exit() {
	if len(t.stack) > 1 {
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// addViolation records stmt against the current scope.
func (t *scopeTree) addViolation(stmt *sitter.Node) {
	idx := t.current()
	t.nodes[idx].violations = append(t.nodes[idx].violations, stmt)
}

// size returns the number of function scopes, excluding the root.
func (t *scopeTree) size() int {
	return len(t.nodes) - 1
}

// collect walks the tree in post-order. Each scope merges its own
// violations with those bubbled up by its children. A controller scope hands
// the merged list to report and passes nothing upward; any other scope
// passes the list to its parent. Whatever reaches the root is dropped.
func (t *scopeTree) collect(isController func(javascript.NodeID) bool, report func(*sitter.Node)) {
	t.collectFrom(rootIndex, isController, report)
}

func (t *scopeTree) collectFrom(idx int, isController func(javascript.NodeID) bool, report func(*sitter.Node)) []*sitter.Node {
	node := &t.nodes[idx]

	merged := make([]*sitter.Node, 0, len(node.violations))
	merged = append(merged, node.violations...)
	for _, child := range node.children {
		merged = append(merged, t.collectFrom(child, isController, report)...)
	}

	if idx == rootIndex || !isController(node.fn) {
		return merged
	}
	for _, stmt := range merged {
		report(stmt)
	}
	return nil
}
