package core

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"error", SeverityError, false},
		{"ERROR", SeverityError, false},
		{" warning ", SeverityWarning, false},
		{"warn", SeverityWarning, false},
		{"note", SeverityNote, false},
		{"info", SeverityNote, false},
		{"fatal", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeverity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocationString(t *testing.T) {
	loc := Location{File: "app/main.js", Line: 12, Column: 5}
	assert.Equal(t, "app/main.js:12:5", loc.String())
}

func TestDiagnosticOrdering(t *testing.T) {
	diags := []Diagnostic{
		{RuleID: "b", Location: Location{File: "b.js", Line: 1, Column: 1}},
		{RuleID: "a", Location: Location{File: "a.js", Line: 3, Column: 1}},
		{RuleID: "z", Location: Location{File: "a.js", Line: 2, Column: 9}},
		{RuleID: "a", Location: Location{File: "a.js", Line: 2, Column: 9}},
		{RuleID: "a", Location: Location{File: "a.js", Line: 2, Column: 4}},
	}

	sort.SliceStable(diags, func(i, j int) bool { return diags[i].Before(diags[j]) })

	got := make([]string, 0, len(diags))
	for _, d := range diags {
		got = append(got, d.Location.String()+"/"+d.RuleID)
	}
	assert.Equal(t, []string{
		"a.js:2:4/a",
		"a.js:2:9/a",
		"a.js:2:9/z",
		"a.js:3:1/a",
		"b.js:1:1/b",
	}, got)
}

func TestBaseRule(t *testing.T) {
	rule := NewBaseRule("ng-controller-as", "flags $scope usage", zaptest.NewLogger(t))
	assert.Equal(t, "ng-controller-as", rule.Name())
	assert.Equal(t, "flags $scope usage", rule.Description())
	require.NotNil(t, rule.Logger)

	// A nil logger falls back to a no-op logger instead of panicking.
	nop := NewBaseRule("x", "y", nil)
	require.NotNil(t, nop.Logger)
	nop.Logger.Info("discarded")
}
