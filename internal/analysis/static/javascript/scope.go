// Filename: javascript/scope.go
// Lexical scope analysis for JavaScript programs. The ScopeManager is built
// in a pre-pass over the whole tree, so declarations that appear textually
// after their use (hoisted functions, var) resolve the same way as earlier ones.
package javascript

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ScopeKind classifies the kind of scope.
type ScopeKind int

const (
	ScopeProgram  ScopeKind = iota // file level
	ScopeFunction                  // function, arrow or method body
	ScopeBlock                     // { ... } and switch bodies
	ScopeFor                       // for / for-in / for-of heads
	ScopeCatch                     // catch (e) { ... }
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeProgram:
		return "program"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeFor:
		return "for"
	case ScopeCatch:
		return "catch"
	default:
		return "unknown"
	}
}

// DeclKind is the syntactic form that introduced a binding.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
	DeclFunction     // function declaration
	DeclFunctionName // name of a named function expression, visible inside it
	DeclClass
	DeclParam
	DeclCatchParam
	DeclImport
)

// Variable is a single named binding.
type Variable struct {
	Name string
	Kind DeclKind
	// Def is the defining node: the variable_declarator for var/let/const,
	// the function or class node for declarations, and the binding
	// identifier for parameters, catch parameters and imports.
	Def   *sitter.Node
	Scope *Scope
}

// DeclaringNode returns the node a reference to v evaluates to, as far as
// it is statically known: the initializer of a simple variable declarator,
// or the declaration node itself. It returns nil for declarators without an
// initializer or with a destructuring pattern.
func (v *Variable) DeclaringNode() *sitter.Node {
	if v == nil || v.Def == nil {
		return nil
	}
	switch v.Kind {
	case DeclVar, DeclLet, DeclConst:
		if v.Def.Type() != "variable_declarator" {
			return v.Def
		}
		name := v.Def.ChildByFieldName("name")
		if name == nil || name.Type() != "identifier" {
			return nil
		}
		return v.Def.ChildByFieldName("value")
	default:
		return v.Def
	}
}

// Scope represents a lexical scope in the source.
type Scope struct {
	Kind      ScopeKind
	Node      *sitter.Node // the AST node that introduced this scope
	Parent    *Scope
	Children  []*Scope
	Variables map[string]*Variable

	start, end uint32
}

func newScope(kind ScopeKind, node *sitter.Node, parent *Scope) *Scope {
	s := &Scope{
		Kind:      kind,
		Node:      node,
		Parent:    parent,
		Variables: make(map[string]*Variable),
		start:     node.StartByte(),
		end:       node.EndByte(),
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// declare binds name in s. The first definition of a name wins.
func (s *Scope) declare(name string, kind DeclKind, def *sitter.Node) {
	if name == "" {
		return
	}
	if _, exists := s.Variables[name]; exists {
		return
	}
	s.Variables[name] = &Variable{Name: name, Kind: kind, Def: def, Scope: s}
}

// Lookup resolves a name by walking the parent chain.
// Returns nil if the name is not declared in any enclosing scope.
func (s *Scope) Lookup(name string) *Variable {
	for scope := s; scope != nil; scope = scope.Parent {
		if v, ok := scope.Variables[name]; ok {
			return v
		}
	}
	return nil
}

// varScope returns the nearest function or program scope, where var
// declarations are hoisted to.
func (s *Scope) varScope() *Scope {
	scope := s
	for scope.Parent != nil && scope.Kind != ScopeFunction {
		scope = scope.Parent
	}
	return scope
}

func (s *Scope) contains(start, end uint32) bool {
	return s.start <= start && end <= s.end
}

// ScopeManager owns the scope tree of one parsed file.
type ScopeManager struct {
	root   *Scope
	source []byte
}

// NewScopeManager analyses the tree rooted at program and returns the scope tree.
func NewScopeManager(program *sitter.Node, source []byte) *ScopeManager {
	m := &ScopeManager{source: source}
	if program == nil || program.IsNull() {
		return m
	}
	m.root = newScope(ScopeProgram, program, nil)
	m.visitChildren(program, m.root)
	return m
}

// Root returns the program scope, or nil for an empty tree.
func (m *ScopeManager) Root() *Scope {
	return m.root
}

// ScopeAt returns the innermost scope whose source range contains node.
func (m *ScopeManager) ScopeAt(node *sitter.Node) *Scope {
	if m.root == nil || node == nil {
		return m.root
	}
	start, end := node.StartByte(), node.EndByte()
	scope := m.root
	for {
		var next *Scope
		for _, child := range scope.Children {
			if child.contains(start, end) {
				next = child
				break
			}
		}
		if next == nil {
			return scope
		}
		scope = next
	}
}

// Resolve returns the declaring node of identifier as seen from its own
// position: the nearest lexically enclosing declaration of that name,
// reduced through Variable.DeclaringNode. It returns nil when the
// identifier is not declared in the file.
func (m *ScopeManager) Resolve(identifier *sitter.Node) *sitter.Node {
	if identifier == nil || identifier.Type() != "identifier" {
		return nil
	}
	scope := m.ScopeAt(identifier)
	if scope == nil {
		return nil
	}
	return scope.Lookup(NodeContent(identifier, m.source)).DeclaringNode()
}

// -- Scope tree construction --

func (m *ScopeManager) visitChildren(node *sitter.Node, scope *Scope) {
	for _, child := range NamedChildren(node) {
		m.visit(child, scope)
	}
}

func (m *ScopeManager) visit(node *sitter.Node, scope *Scope) {
	if node == nil || node.IsNull() {
		return
	}

	switch node.Type() {
	case nodeFunctionDeclaration, nodeGeneratorFunctionDeclaration,
		nodeFunction, nodeFunctionExpression, nodeGeneratorFunction,
		nodeArrowFunction, nodeMethodDefinition:
		m.visitFunction(node, scope)
		return

	case "class_declaration":
		if name := node.ChildByFieldName("name"); name != nil {
			scope.declare(NodeContent(name, m.source), DeclClass, node)
		}

	case "statement_block", "switch_body", "class_body":
		m.visitChildren(node, newScope(ScopeBlock, node, scope))
		return

	case "for_statement", "for_in_statement":
		forScope := newScope(ScopeFor, node, scope)
		if node.Type() == "for_in_statement" {
			m.declareForInBinding(node, forScope)
		}
		m.visitChildren(node, forScope)
		return

	case "catch_clause":
		catchScope := newScope(ScopeCatch, node, scope)
		if param := node.ChildByFieldName("parameter"); param != nil {
			m.declarePattern(param, DeclCatchParam, nil, catchScope)
		}
		m.visitChildren(node, catchScope)
		return

	case "variable_declaration":
		m.declareDeclarators(node, DeclVar, scope.varScope())

	case "lexical_declaration":
		kind := DeclLet
		if first := node.Child(0); first != nil && first.Type() == "const" {
			kind = DeclConst
		}
		m.declareDeclarators(node, kind, scope)

	case "import_statement":
		m.declareImports(node, m.root)
		return
	}

	m.visitChildren(node, scope)
}

func (m *ScopeManager) visitFunction(node *sitter.Node, scope *Scope) {
	if IsFunctionDeclaration(node) {
		if name := node.ChildByFieldName("name"); name != nil {
			scope.declare(NodeContent(name, m.source), DeclFunction, node)
		}
	}

	fnScope := newScope(ScopeFunction, node, scope)
	if IsFunctionLiteral(node) {
		if name := node.ChildByFieldName("name"); name != nil {
			fnScope.declare(NodeContent(name, m.source), DeclFunctionName, node)
		}
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		for _, param := range NamedChildren(params) {
			m.declarePattern(param, DeclParam, nil, fnScope)
		}
		// Default values may hold nested functions.
		m.visitChildren(params, fnScope)
	} else if param := node.ChildByFieldName("parameter"); param != nil {
		m.declarePattern(param, DeclParam, nil, fnScope)
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	// The top-level block of a function shares the function scope.
	if body.Type() == "statement_block" {
		m.visitChildren(body, fnScope)
	} else {
		m.visit(body, fnScope)
	}
}

func (m *ScopeManager) declareDeclarators(node *sitter.Node, kind DeclKind, target *Scope) {
	for _, child := range NamedChildren(node) {
		if child.Type() != "variable_declarator" {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil {
			m.declarePattern(name, kind, child, target)
		}
	}
}

func (m *ScopeManager) declareForInBinding(node *sitter.Node, forScope *Scope) {
	kindNode := node.ChildByFieldName("kind")
	left := node.ChildByFieldName("left")
	if kindNode == nil || left == nil {
		// for (x in y) assigns to an existing binding.
		return
	}
	switch kindNode.Type() {
	case "var":
		m.declarePattern(left, DeclVar, nil, forScope.varScope())
	case "const":
		m.declarePattern(left, DeclConst, nil, forScope)
	default:
		m.declarePattern(left, DeclLet, nil, forScope)
	}
}

// declarePattern binds every identifier in a binding pattern. When def is nil
// the binding identifier itself is recorded as the defining node.
func (m *ScopeManager) declarePattern(pattern *sitter.Node, kind DeclKind, def *sitter.Node, scope *Scope) {
	if pattern == nil {
		return
	}

	switch pattern.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		d := def
		if d == nil {
			d = pattern
		}
		scope.declare(NodeContent(pattern, m.source), kind, d)

	case "assignment_pattern", "object_assignment_pattern":
		m.declarePattern(pattern.ChildByFieldName("left"), kind, def, scope)

	case "pair_pattern":
		m.declarePattern(pattern.ChildByFieldName("value"), kind, def, scope)

	case "object_pattern", "array_pattern", "rest_pattern", "rest_parameter":
		for _, child := range NamedChildren(pattern) {
			m.declarePattern(child, kind, def, scope)
		}
	}
}

func (m *ScopeManager) declareImports(node *sitter.Node, scope *Scope) {
	for _, child := range NamedChildren(node) {
		if child.Type() != "import_clause" {
			continue
		}
		for _, binding := range NamedChildren(child) {
			switch binding.Type() {
			case "identifier":
				scope.declare(NodeContent(binding, m.source), DeclImport, binding)
			case "namespace_import":
				for _, id := range NamedChildren(binding) {
					if id.Type() == "identifier" {
						scope.declare(NodeContent(id, m.source), DeclImport, id)
					}
				}
			case "named_imports":
				for _, spec := range NamedChildren(binding) {
					if spec.Type() != "import_specifier" {
						continue
					}
					local := spec.ChildByFieldName("alias")
					if local == nil {
						local = spec.ChildByFieldName("name")
					}
					if local != nil {
						scope.declare(NodeContent(local, m.source), DeclImport, local)
					}
				}
			}
		}
	}
}
