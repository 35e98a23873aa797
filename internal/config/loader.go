// internal/config/loader.go
//
// Startup-configuration loader.
//
/*
Context
--------
`Load(path)` builds one immutable `Config` struct from three layers
(highest precedence last):

  1. Optional `.env` in the working directory.
  2. The YAML file named by --config (default config.yaml).
  3. Environment variables prefixed `SCS_`, where `__` maps to "."
     (e.g., `SCS_HTTP__BIND_ADDR → http.bind_addr`).

After merging, every string value beginning with `vault:` is resolved
through the Vault client, the tree is unmarshalled into strongly-typed
structs, validated, and cross-checked (either `git` or `environments`
must be present).  The result is read-only for the process lifetime.

Logs use the global sugared logger (`zap.S()`) so early boot issues
surface even before the file logger is installed.
*/
package config

import (
	"context"
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/martinmares/simple-config-server/internal/vault"
)

const envPrefix = "SCS_"

// Load reads .env, the YAML file, and env overrides, resolves vault:
// references, validates, and returns the immutable Config.
func Load(ctx context.Context, path string) (*Config, error) {
	// .env (optional, no error if missing)
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", path, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", path)

	// Env overrides: SCS_HTTP__BIND_ADDR → http.bind_addr
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveVaultRefs(ctx, k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}
	if cfg.Git == nil && len(cfg.Environments) == 0 {
		return nil, errors.New("config must contain either `git` or `environments`")
	}

	zap.S().Infow("config loaded",
		"file", path,
		"bind_addr", cfg.HTTP.BindAddr,
		"environments", len(cfg.Environments),
		"single_instance", cfg.Git != nil)
	return &cfg, nil
}

// resolveVaultRefs rewrites every `vault:` string value in place.  The
// Vault client is created lazily, so configurations without references
// need no VAULT_ADDR.
func resolveVaultRefs(ctx context.Context, k *koanf.Koanf) error {
	var cli *vault.Client

	for key, raw := range k.All() {
		val, ok := raw.(string)
		if !ok || !vault.IsRef(val) {
			continue
		}
		if cli == nil {
			c, err := vault.New(ctx, zap.S())
			if err != nil {
				zap.S().Errorw("vault client init failed", "err", err)
				return err
			}
			cli = c
		}
		resolved, err := cli.Resolve(ctx, val)
		if err != nil {
			zap.S().Errorw("vault reference failed", "key", key, "err", err)
			return err
		}
		if err := k.Set(key, resolved); err != nil {
			return err
		}
	}
	return nil
}
