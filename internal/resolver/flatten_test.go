// internal/resolver/flatten_test.go
//
// Unit-tests for Flatten and the candidate/profile helpers.
//
// Run: go test ./internal/resolver -v

package resolver

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func flattenYAML(t *testing.T, doc string) map[string]any {
	t.Helper()
	var node any
	if err := yaml.Unmarshal([]byte(doc), &node); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	out := make(map[string]any)
	Flatten("", node, out)
	return out
}

func TestFlattenNestedSequence(t *testing.T) {
	got := flattenYAML(t, "a:\n  b:\n    - 1\n    - 2\n")
	want := map[string]any{"a.b[0]": 1, "a.b[1]": 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %#v, want %#v", got, want)
	}
}

func TestFlattenScalarTypes(t *testing.T) {
	got := flattenYAML(t, "s: text\nb: true\ni: 42\nf: 1.5\nn: null\n")
	want := map[string]any{"s": "text", "b": true, "i": 42, "f": 1.5, "n": nil}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %#v, want %#v", got, want)
	}
}

func TestFlattenSequenceOfMaps(t *testing.T) {
	got := flattenYAML(t, "servers:\n  - host: a\n    port: 1\n  - host: b\n")
	want := map[string]any{
		"servers[0].host": "a",
		"servers[0].port": 1,
		"servers[1].host": "b",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %#v, want %#v", got, want)
	}
}

func TestFlattenNonStringKeys(t *testing.T) {
	got := flattenYAML(t, "1: one\ntrue: yes\n")
	want := map[string]any{"1": "one", "true": "yes"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %#v, want %#v", got, want)
	}
}

func TestFlattenTopLevelSequence(t *testing.T) {
	got := flattenYAML(t, "- x\n- y\n")
	want := map[string]any{"[0]": "x", "[1]": "y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten = %#v, want %#v", got, want)
	}
}

func TestParseProfiles(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"prod", []string{"prod"}},
		{"prod, eu , ", []string{"prod", "eu"}},
		{",,", []string{}},
		{"default", []string{"default"}},
	}
	for _, c := range cases {
		if got := ParseProfiles(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("ParseProfiles(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCandidatesOrder(t *testing.T) {
	got := Candidates("billing", []string{"prod", "eu"})
	want := []string{
		"application.yml",
		"application.yaml",
		"billing.yml",
		"billing.yaml",
		"application-prod.yml",
		"application-prod.yaml",
		"billing-prod.yml",
		"billing-prod.yaml",
		"application-eu.yml",
		"application-eu.yaml",
		"billing-eu.yml",
		"billing-eu.yaml",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Candidates = %v, want %v", got, want)
	}
}
