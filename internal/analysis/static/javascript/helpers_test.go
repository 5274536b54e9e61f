package javascript

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseProgram parses code and returns the program node. The tree is closed
// when the test finishes.
func parseProgram(t *testing.T, code string) (*sitter.Node, []byte) {
	t.Helper()
	parser := sitter.NewParser()
	t.Cleanup(parser.Close)
	parser.SetLanguage(javascript.GetLanguage())
	src := []byte(code)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode(), src
}

// parseNode returns the expression of the first statement in code.
func parseNode(t *testing.T, code string) (*sitter.Node, []byte) {
	t.Helper()
	root, src := parseProgram(t, code)
	stmt := root.NamedChild(0)
	require.NotNil(t, stmt, "no statement found")
	if stmt.Type() == "expression_statement" {
		return stmt.NamedChild(0), src
	}
	return stmt, src
}

// findFirst returns the first node of the given type in depth-first order.
func findFirst(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == nodeType {
		return node
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if found := findFirst(node.NamedChild(i), nodeType); found != nil {
			return found
		}
	}
	return nil
}

func TestFlattenPropertyAccess(t *testing.T) {
	tests := []struct {
		code     string
		expected []string // nil means we expect failure/nil
	}{
		{"$scope.title", []string{"$scope", "title"}},
		{"$scope.items.length", []string{"$scope", "items", "length"}},
		{"$scope['title']", []string{"$scope", "title"}},
		{`$scope["title"]`, []string{"$scope", "title"}},
		{"($scope).title", []string{"$scope", "title"}},
		{"this.data", []string{"this", "data"}},
		{"simple", []string{"simple"}},
		{"arr[0]", nil},
		{"$scope[key]", nil},
		{"getScope().title", nil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			node, src := parseNode(t, tt.code)
			result := FlattenPropertyAccess(node, src)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNamedChildrenSkipsComments(t *testing.T) {
	node, _ := parseNode(t, "app.controller('Main', /* inline */ MainCtrl)")
	require.Equal(t, "call_expression", node.Type())

	args := NamedChildren(node.ChildByFieldName("arguments"))
	require.Len(t, args, 2)
	assert.Equal(t, "string", args[0].Type())
	assert.Equal(t, "identifier", args[1].Type())

	assert.Nil(t, NamedChildren(nil))
}

func TestFormatLocation(t *testing.T) {
	code := "var a = 1;\n  $scope.title = 'x';\n"
	root, src := parseProgram(t, code)
	stmt := root.NamedChild(1)
	require.NotNil(t, stmt)

	loc := FormatLocation("main.js", stmt, src)
	assert.Equal(t, "main.js", loc.File)
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 3, loc.Column)
	assert.Equal(t, 2, loc.EndLine)
	assert.Equal(t, "$scope.title = 'x';", loc.Snippet)
	assert.Equal(t, "main.js:2:3", loc.String())

	missing := FormatLocation("main.js", nil, src)
	assert.Equal(t, "N/A", missing.Snippet)
}

func TestFindLineStart(t *testing.T) {
	content := `line one
line two
line three`
	source := []byte(content)

	tests := []struct {
		name     string
		idx      int
		expected int
	}{
		{"middle of first line", 3, 0},
		{"start of first line", 0, 0},
		{"end of first line", 7, 0},
		{"on newline char", 8, 9},
		{"start of second line", 9, 9},
		{"middle of second line", 12, 9},
		{"end of last line", len(content) - 1, 18},
		{"out of bounds high", len(content) + 5, 18},
		{"out of bounds low", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, findLineStart(source, tt.idx))
		})
	}

	assert.Equal(t, 0, findLineStart(nil, 4))
}

func TestFindLineEnd(t *testing.T) {
	source := []byte("ab\ncd")
	assert.Equal(t, 2, findLineEnd(source, 0))
	assert.Equal(t, 5, findLineEnd(source, 3))
	assert.Equal(t, 5, findLineEnd(source, 10))
}
