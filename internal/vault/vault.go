// internal/vault/vault.go
//
// Vault-backed secret references for startup configuration.
//
// Context
// -------
// Any string value in the startup configuration (and the AUTH_USERNAME /
// AUTH_PASSWORD credential pair) may be written as
//
//	vault:<mount>/<path>#<key>
//
// and is swapped for the KV-v2 secret value before the rest of the
// process sees it.  The client is created only when a reference actually
// appears, so plain configurations need no Vault environment.
//
// Environment expectations
// ------------------------
//   - VAULT_ADDR  – scheme and host of the Vault server.
//   - VAULT_TOKEN – initial token (falls back to ~/.vault-token).
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// RefPrefix marks a configuration value as a Vault secret reference.
const RefPrefix = "vault:"

// IsRef reports whether val is a Vault secret reference.
func IsRef(val string) bool {
	return strings.HasPrefix(val, RefPrefix)
}

// Client is safe for concurrent use.  Create once at startup.  The zero
// value is invalid.
type Client struct {
	api *vault.Client
	log *zap.SugaredLogger
}

// New constructs a Vault client from the standard environment.
func New(_ context.Context, log *zap.SugaredLogger) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	return &Client{api: apiCli, log: log}, nil
}

// Resolve maps a vault: reference to its secret value.  Non-reference
// input is returned unchanged.
func (c *Client) Resolve(ctx context.Context, val string) (string, error) {
	if !IsRef(val) {
		return val, nil
	}

	ref := strings.TrimPrefix(val, RefPrefix)
	secretPath, key, ok := strings.Cut(ref, "#")
	if !ok || secretPath == "" || key == "" {
		return "", fmt.Errorf("malformed vault reference %q, want vault:<mount>/<path>#<key>", val)
	}
	return c.getKV(ctx, secretPath, key)
}

// getKV fetches a single key from a KV-v2 secret.
func (c *Client) getKV(ctx context.Context, secretPath, key string) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	c.log.Debugw("vault reference resolved", "path", secretPath, "key", key)
	return sval, nil
}

func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
