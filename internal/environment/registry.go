// internal/environment/registry.go
//
// Registry of tenant environments.
//
// Context
// -------
// Each environment pairs a git endpoint with an immutable variable map
// merged at startup from up to three sources, later sources winning by
// key: the inherited process environment (when enabled), the global env
// file, and the environment's own env file.  Entries never change after
// Build returns, so concurrent requests read them without locks; the
// only mutable state is the on-disk git mirror, which belongs to the
// backend.
package environment

import (
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/martinmares/simple-config-server/internal/config"
	"github.com/martinmares/simple-config-server/internal/gitrepo"
)

// DefaultName is the environment name used in single-instance mode.
const DefaultName = "default"

// Environment is one tenant: a named git endpoint plus its resolved
// variable map.  Vars must be treated as read-only.
type Environment struct {
	Name    string
	Git     gitrepo.GitConfig
	Vars    map[string]string
	Backend gitrepo.Backend
}

// Registry holds every environment, keyed by name.
type Registry struct {
	envs map[string]*Environment
}

// NewRegistry builds a registry from pre-constructed environments.
// Build is the production path; this one exists for tests and tools.
func NewRegistry(envs ...*Environment) *Registry {
	r := &Registry{envs: make(map[string]*Environment, len(envs))}
	for _, e := range envs {
		r.envs[e.Name] = e
	}
	return r
}

// Build constructs the registry from the startup configuration.
func Build(cfg *config.Config, log *zap.SugaredLogger) (*Registry, error) {
	global := make(map[string]string)
	if cfg.EnvFromProcess {
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				global[k] = v
			}
		}
	}
	if cfg.EnvFile != "" {
		mergeEnvFile(cfg.EnvFile, global, log)
	}

	r := &Registry{envs: make(map[string]*Environment)}

	switch {
	case len(cfg.Environments) > 0:
		for name, def := range cfg.Environments {
			vars := make(map[string]string, len(global))
			for k, v := range global {
				vars[k] = v
			}
			if def.EnvFile != "" {
				mergeEnvFile(def.EnvFile, vars, log)
			}
			r.envs[name] = &Environment{
				Name:    name,
				Git:     def.Git,
				Vars:    vars,
				Backend: gitrepo.NewBackend(def.Git),
			}
		}
	case cfg.Git != nil:
		r.envs[DefaultName] = &Environment{
			Name:    DefaultName,
			Git:     *cfg.Git,
			Vars:    global,
			Backend: gitrepo.NewBackend(*cfg.Git),
		}
	default:
		return nil, errors.New("no git endpoint configured")
	}

	return r, nil
}

// Lookup returns the named environment.
func (r *Registry) Lookup(name string) (*Environment, bool) {
	env, ok := r.envs[name]
	return env, ok
}

// All returns every environment sorted by name, for deterministic
// startup order and UI snapshots.
func (r *Registry) All() []*Environment {
	out := make([]*Environment, 0, len(r.envs))
	for _, env := range r.envs {
		out = append(out, env)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// mergeEnvFile overlays KEY=VALUE pairs from path onto target.  An
// unreadable file is logged and skipped; a tenant with a missing env
// file still serves, just without those variables.
func mergeEnvFile(path string, target map[string]string, log *zap.SugaredLogger) {
	vars, err := godotenv.Read(path)
	if err != nil {
		log.Warnw("env file skipped", "file", path, "err", err)
		return
	}
	for k, v := range vars {
		target[k] = v
	}
}
