// internal/vault/vault_test.go
//
// Unit-tests for reference parsing.  Live lookups need a Vault server
// and are out of scope here.
//
// Run: go test ./internal/vault -v

package vault

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestIsRef(t *testing.T) {
	if !IsRef("vault:secret/app#password") {
		t.Fatalf("IsRef rejected a reference")
	}
	if IsRef("plain-value") || IsRef("") {
		t.Fatalf("IsRef accepted a non-reference")
	}
}

func TestResolvePassthrough(t *testing.T) {
	c := &Client{log: zap.NewNop().Sugar()}
	got, err := c.Resolve(context.Background(), "plain-value")
	if err != nil || got != "plain-value" {
		t.Fatalf("Resolve = %q, %v; want passthrough", got, err)
	}
}

func TestResolveMalformed(t *testing.T) {
	c := &Client{log: zap.NewNop().Sugar()}
	for _, in := range []string{"vault:", "vault:secret/app", "vault:#key", "vault:secret/app#"} {
		if _, err := c.Resolve(context.Background(), in); err == nil {
			t.Fatalf("Resolve(%q) accepted malformed reference", in)
		}
	}
}

func TestSplitMount(t *testing.T) {
	mount, rel := splitMount("secret/app/db")
	if mount != "secret" || rel != "app/db" {
		t.Fatalf("splitMount = %q, %q", mount, rel)
	}
	mount, rel = splitMount("secret")
	if mount != "secret" || rel != "" {
		t.Fatalf("splitMount = %q, %q", mount, rel)
	}
}
