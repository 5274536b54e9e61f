// Filename: angular/identifier.go
package angular

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xkilldash9x/scopelint/internal/analysis/static/javascript"
)

// registrationMethod is the module method that registers a controller.
const registrationMethod = "controller"

// resolver maps an identifier to the node that declared it.
// *javascript.RuleContext satisfies it.
type resolver interface {
	Resolve(identifier *sitter.Node) *sitter.Node
}

// registrationTarget returns the second argument of a controller
// registration call such as app.controller('MainCtrl', X), or nil when call
// is not one.
func registrationTarget(call *sitter.Node, source []byte) *sitter.Node {
	if call == nil || call.Type() != "call_expression" {
		return nil
	}
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Type() != "member_expression" {
		return nil
	}
	property := callee.ChildByFieldName("property")
	if property == nil || javascript.NodeContent(property, source) != registrationMethod {
		return nil
	}

	args := javascript.NamedChildren(call.ChildByFieldName("arguments"))
	if len(args) != 2 {
		return nil
	}
	return args[1]
}

// resolveController follows the controller argument of a registration call
// to the function that forms the controller body. Supported shapes:
//
//	app.controller('A', function ($scope) {...})
//	app.controller('A', ['$scope', function ($scope) {...}])
//	app.controller('A', ['$scope', ACtrl])
//	app.controller('A', ACtrl)
//
// It returns nil when the argument does not lead to a function in this file.
func resolveController(arg *sitter.Node, r resolver) *sitter.Node {
	if arg == nil {
		return nil
	}

	switch {
	case javascript.IsFunctionLiteral(arg):
		return arg
	case arg.Type() == "array":
		elements := javascript.NamedChildren(arg)
		if len(elements) == 0 {
			return nil
		}
		last := elements[len(elements)-1]
		if javascript.IsFunctionLiteral(last) {
			return last
		}
		if last.Type() == "identifier" {
			return resolveIdentifier(last, r)
		}
	case arg.Type() == "identifier":
		return resolveIdentifier(arg, r)
	}
	return nil
}

func resolveIdentifier(ident *sitter.Node, r resolver) *sitter.Node {
	decl := r.Resolve(ident)
	if javascript.IsFunctionLiteral(decl) || javascript.IsFunctionDeclaration(decl) {
		return decl
	}
	return nil
}
