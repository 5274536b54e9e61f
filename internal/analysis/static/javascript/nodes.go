// Filename: javascript/nodes.go
package javascript

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// NodeID identifies a syntax node within one parsed file. Two textually
// identical functions at different offsets have different IDs, so NodeID is
// an identity, not a structural key.
type NodeID struct {
	Start uint32
	End   uint32
	Kind  string
}

// IDOf returns the identity of node. The zero NodeID stands for "no node".
func IDOf(node *sitter.Node) NodeID {
	if node == nil || node.IsNull() {
		return NodeID{}
	}
	return NodeID{Start: node.StartByte(), End: node.EndByte(), Kind: node.Type()}
}

func (id NodeID) String() string {
	return fmt.Sprintf("%s[%d:%d]", id.Kind, id.Start, id.End)
}

// IsZero reports whether id refers to no node.
func (id NodeID) IsZero() bool {
	return id == NodeID{}
}

// Grammar revisions disagree on the name of a function expression
// ("function" in older releases, "function_expression" in newer ones), so
// both are accepted everywhere. In newer releases the anonymous `function`
// keyword token also has type "function", so only named nodes qualify.
const (
	nodeFunctionDeclaration          = "function_declaration"
	nodeGeneratorFunctionDeclaration = "generator_function_declaration"
	nodeFunction                     = "function"
	nodeFunctionExpression           = "function_expression"
	nodeGeneratorFunction            = "generator_function"
	nodeArrowFunction                = "arrow_function"
	nodeMethodDefinition             = "method_definition"
)

// IsFunctionDeclaration reports whether node is a hoisted function declaration.
func IsFunctionDeclaration(node *sitter.Node) bool {
	if node == nil || !node.IsNamed() {
		return false
	}
	switch node.Type() {
	case nodeFunctionDeclaration, nodeGeneratorFunctionDeclaration:
		return true
	}
	return false
}

// IsFunctionLiteral reports whether node is a function value written inline
// (function expression, generator expression or arrow function).
func IsFunctionLiteral(node *sitter.Node) bool {
	if node == nil || !node.IsNamed() {
		return false
	}
	switch node.Type() {
	case nodeFunction, nodeFunctionExpression, nodeGeneratorFunction, nodeArrowFunction:
		return true
	}
	return false
}

// IsFunction reports whether node opens a function scope of any kind.
func IsFunction(node *sitter.Node) bool {
	if node == nil || !node.IsNamed() {
		return false
	}
	return IsFunctionDeclaration(node) || IsFunctionLiteral(node) || node.Type() == nodeMethodDefinition
}

// FunctionName returns the declared name of a function declaration or a
// named function expression. Arrow functions and methods have no own name.
func FunctionName(node *sitter.Node, source []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Type() {
	case nodeFunctionDeclaration, nodeGeneratorFunctionDeclaration,
		nodeFunction, nodeFunctionExpression, nodeGeneratorFunction:
		name := node.ChildByFieldName("name")
		if name == nil {
			return "", false
		}
		return NodeContent(name, source), true
	}
	return "", false
}
