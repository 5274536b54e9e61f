// Filename: javascript/helpers.go
package javascript

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xkilldash9x/scopelint/internal/analysis/core"
)

// NodeContent extracts the string content of a node from the source byte slice.
func NodeContent(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(source)
}

// NamedChildren returns the named children of node, skipping comments.
// Argument lists and array literals keep comments as named children, which
// would otherwise shift positional lookups.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := int(node.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// FlattenPropertyAccess attempts to flatten a chain of property accesses (member_expression and subscript_expression)
// into a list of strings (e.g., $scope.items.length or $scope['title'] -> ["$scope", "items", "length"] or ["$scope", "title"]).
// It returns nil when any link of the chain cannot be named statically.
func FlattenPropertyAccess(node *sitter.Node, source []byte) []string {
	var path []string
	current := node

	for {
		if current == nil {
			return nil
		}

		switch current.Type() {
		case "identifier":
			path = append([]string{NodeContent(current, source)}, path...)
			return path
		case "this":
			path = append([]string{"this"}, path...)
			return path

		case "parenthesized_expression":
			// ($scope).x behaves like $scope.x
			inner := NamedChildren(current)
			if len(inner) != 1 {
				return nil
			}
			current = inner[0]

		case "member_expression":
			object := current.ChildByFieldName("object")
			property := current.ChildByFieldName("property")

			if property == nil || object == nil {
				return nil
			}

			switch property.Type() {
			case "identifier", "property_identifier", "private_property_identifier":
				path = append([]string{NodeContent(property, source)}, path...)
				current = object
			default:
				return nil
			}

		case "subscript_expression":
			object := current.ChildByFieldName("object")
			index := current.ChildByFieldName("index")

			if index == nil || object == nil {
				return nil
			}

			// Only a static string literal index can be flattened.
			if index.Type() != "string" {
				return nil
			}
			propName := strings.Trim(NodeContent(index, source), "\"'`")
			path = append([]string{propName}, path...)
			current = object

		default:
			return nil
		}
	}
}

// FormatLocation converts a Tree-sitter Node location to a core.Location.
func FormatLocation(filename string, node *sitter.Node, source []byte) core.Location {
	if node == nil {
		return core.Location{File: filename, Snippet: "N/A"}
	}

	startByte := node.StartByte()
	endByte := node.EndByte()
	startPoint := node.StartPoint()
	endPoint := node.EndPoint()

	snippet := "N/A"
	if int(endByte) <= len(source) && int(startByte) < int(endByte) {
		lineStart := findLineStart(source, int(startByte))
		lineEnd := findLineEnd(source, int(startByte))
		if lineStart >= 0 && lineEnd > lineStart {
			snippet = strings.TrimSpace(string(source[lineStart:lineEnd]))
		} else {
			snippet = node.Content(source)
		}
	}

	return core.Location{
		File:      filename,
		Line:      int(startPoint.Row) + 1,
		Column:    int(startPoint.Column) + 1,
		EndLine:   int(endPoint.Row) + 1,
		EndColumn: int(endPoint.Column) + 1,
		Snippet:   snippet,
	}
}

func findLineStart(source []byte, idx int) int {
	if idx >= len(source) {
		if len(source) == 0 {
			return 0
		}
		idx = len(source) - 1
	}
	if idx < 0 {
		return 0
	}

	for i := idx; i >= 0; i-- {
		if source[i] == '\n' {
			return i + 1
		}
	}
	return 0
}

func findLineEnd(source []byte, idx int) int {
	for i := idx; i < len(source); i++ {
		if source[i] == '\n' {
			return i
		}
	}
	return len(source)
}
