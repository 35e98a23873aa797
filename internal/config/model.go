// internal/config/model.go
//
// Typed startup-configuration model.
//
// Context
// -------
// These structs define the shape of the tree that loader.go builds from
// three overlay layers:
//
//   - optional `.env`                       – dotenv values,
//   - the YAML file named by --config       – primary static file,
//   - `SCS_`-prefixed environment overrides – highest precedence,
//     where `__` maps to "." (SCS_HTTP__BIND_ADDR → http.bind_addr).
//
// Any string value beginning with `vault:` is resolved through the
// Vault client before unmarshalling, so the model never stores Vault
// URIs — only plain strings.
//
// Validation happens immediately after unmarshal; the process fails
// fast on missing or malformed required fields.
package config

import (
	"github.com/martinmares/simple-config-server/internal/gitrepo"
)

// HTTP holds the listener tunables.
type HTTP struct {
	BindAddr string `koanf:"bind_addr" validate:"required,hostname_port"`
	BasePath string `koanf:"base_path"`
}

// EnvDefinition declares one tenant environment: its git endpoint plus
// an optional per-environment env file layered over the global one.
type EnvDefinition struct {
	Git     gitrepo.GitConfig `koanf:"git"`
	EnvFile string            `koanf:"env_file"`
}

// Config is the immutable aggregate returned by Load().  Exactly one of
// Git (single-instance mode, exposed as environment "default") or
// Environments (multi-tenant mode) must be present.
type Config struct {
	HTTP HTTP `koanf:"http"`

	// EnvFromProcess folds the process environment into every
	// environment's template-variable map.
	EnvFromProcess bool `koanf:"env_from_process"`

	// EnvFile is a global KEY=VALUE file merged into every environment.
	EnvFile string `koanf:"env_file"`

	Git          *gitrepo.GitConfig       `koanf:"git"`
	Environments map[string]EnvDefinition `koanf:"environments" validate:"dive"`
}
