// internal/template/template_test.go
//
// Unit-tests for the placeholder engine.
//
// Run: go test ./internal/template -v

package template

import (
	"regexp"
	"testing"
)

func TestApplySubstitutes(t *testing.T) {
	e := New()
	vars := map[string]string{"DB_HOST": "db.internal", "DB_PORT": "5432"}

	got := e.Apply("host: {{DB_HOST}}\nport: {{ DB_PORT }}\n", vars)
	want := "host: db.internal\nport: 5432\n"
	if got != want {
		t.Fatalf("Apply = %q, want %q", got, want)
	}
}

func TestApplyUnknownLeftVerbatim(t *testing.T) {
	e := New()
	in := `value: "{{UNSET_VAR}}"`
	if got := e.Apply(in, map[string]string{}); got != in {
		t.Fatalf("Apply = %q, want input unchanged", got)
	}
}

func TestApplyNoPlaceholderIdentity(t *testing.T) {
	e := New()
	in := "plain text { not a placeholder } {{1bad}} {{}}"
	if got := e.Apply(in, map[string]string{"X": "y"}); got != in {
		t.Fatalf("Apply = %q, want byte-identical input", got)
	}
}

func TestApplySinglePass(t *testing.T) {
	e := New()
	vars := map[string]string{"A": "{{B}}", "B": "never"}

	// The substituted value must not be re-scanned.
	if got := e.Apply("{{A}}", vars); got != "{{B}}" {
		t.Fatalf("Apply = %q, want %q", got, "{{B}}")
	}
}

func TestCustomPattern(t *testing.T) {
	e := NewWithPattern(regexp.MustCompile(`%([A-Z_]+)%`))
	got := e.Apply("path=%HOME%", map[string]string{"HOME": "/root"})
	if got != "path=/root" {
		t.Fatalf("Apply = %q, want %q", got, "path=/root")
	}
}
