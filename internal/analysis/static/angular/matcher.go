// Filename: angular/matcher.go
package angular

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchKind selects how controllers are identified.
type MatchKind int

const (
	// MatchRegistration identifies controllers through .controller(name, fn)
	// registration calls in the analysed file.
	MatchRegistration MatchKind = iota
	// MatchName identifies controllers by function name, for code bases that
	// declare controllers in different files than they register them.
	MatchName
)

func (k MatchKind) String() string {
	switch k {
	case MatchRegistration:
		return "registration"
	case MatchName:
		return "name"
	default:
		return "unknown"
	}
}

// regexLiteral matches the /body/flags form of a pattern option.
var regexLiteral = regexp.MustCompile(`^/(.+)/([a-z]*)$`)

// ControllerMatcher is the resolved controller identification mode. It is
// immutable and safe to share between files.
type ControllerMatcher struct {
	kind    MatchKind
	pattern string
	re      *regexp.Regexp
}

// NewControllerMatcher resolves the controller name pattern option. An empty
// pattern selects registration mode. A pattern written as /body/flags is
// compiled as a regular expression (flags i, m and s are honoured, g, u and y
// have no meaning for a name test and are ignored); any other string matches
// a function name exactly.
func NewControllerMatcher(pattern string) (*ControllerMatcher, error) {
	if pattern == "" {
		return &ControllerMatcher{kind: MatchRegistration}, nil
	}

	m := &ControllerMatcher{kind: MatchName, pattern: pattern}
	sub := regexLiteral.FindStringSubmatch(pattern)
	if sub == nil {
		return m, nil
	}

	var goFlags strings.Builder
	for _, flag := range sub[2] {
		switch flag {
		case 'i', 'm', 's':
			goFlags.WriteRune(flag)
		case 'g', 'u', 'y':
		default:
			return nil, fmt.Errorf("unsupported regular expression flag %q in controller pattern %s", flag, pattern)
		}
	}

	expr := sub[1]
	if goFlags.Len() > 0 {
		expr = "(?" + goFlags.String() + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid controller pattern %s: %w", pattern, err)
	}
	m.re = re
	return m, nil
}

// Kind returns the identification mode.
func (m *ControllerMatcher) Kind() MatchKind {
	return m.kind
}

// MatchName reports whether a function called name is a controller in
// name mode. It is always false in registration mode.
func (m *ControllerMatcher) MatchName(name string) bool {
	if m.kind != MatchName || name == "" {
		return false
	}
	if m.re != nil {
		return m.re.MatchString(name)
	}
	return name == m.pattern
}

func (m *ControllerMatcher) String() string {
	if m.kind == MatchName {
		return fmt.Sprintf("%s(%s)", m.kind, m.pattern)
	}
	return m.kind.String()
}
