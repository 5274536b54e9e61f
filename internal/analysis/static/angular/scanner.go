// Filename: angular/scanner.go
package angular

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xkilldash9x/scopelint/internal/analysis/static/javascript"
)

// isScopeViolation reports whether the expression statement stmt assigns to,
// or calls, a member of $scope that a controller should expose on its
// instance instead.
func isScopeViolation(stmt *sitter.Node, source []byte) bool {
	exprs := javascript.NamedChildren(stmt)
	if len(exprs) == 0 {
		return false
	}

	var target *sitter.Node
	switch expr := exprs[0]; expr.Type() {
	case "assignment_expression", "augmented_assignment_expression":
		target = expr.ChildByFieldName("left")
	case "call_expression":
		target = expr.ChildByFieldName("function")
	default:
		return false
	}
	if target == nil {
		return false
	}
	if isComputedScopeAccess(target, source) {
		return true
	}

	path := javascript.FlattenPropertyAccess(target, source)
	if len(path) != 2 || path[0] != ScopeIdentifier {
		return false
	}
	return !IsAllowedScopeMember(path[1])
}

// isComputedScopeAccess reports whether target is $scope[expr] with an index
// that is not a string literal. Such a member cannot be named, so it can
// never be one of the allowed scope members.
func isComputedScopeAccess(target *sitter.Node, source []byte) bool {
	target = unwrapParens(target)
	if target == nil || target.Type() != "subscript_expression" {
		return false
	}
	index := target.ChildByFieldName("index")
	if index == nil || index.Type() == "string" {
		return false
	}
	object := unwrapParens(target.ChildByFieldName("object"))
	return object != nil && object.Type() == "identifier" &&
		javascript.NodeContent(object, source) == ScopeIdentifier
}

func unwrapParens(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == "parenthesized_expression" {
		inner := javascript.NamedChildren(node)
		if len(inner) != 1 {
			return nil
		}
		node = inner[0]
	}
	return node
}
