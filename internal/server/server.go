// internal/server/server.go
//
// HTTP transport for the resolution engine.
//
// Context
// -------
// The transport is deliberately thin: route → registry lookup → engine
// call → render.  All resolution policy lives below it.  Routes are
// mounted under the normalized base path; every route is gated by the
// optional basic-auth middleware.  /metrics is mounted by main outside
// both.
package server

import (
	"context"
	_ "embed"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/martinmares/simple-config-server/internal/environment"
	"github.com/martinmares/simple-config-server/internal/gitrepo"
	"github.com/martinmares/simple-config-server/internal/resolver"
	"github.com/martinmares/simple-config-server/internal/template"
)

//go:embed ui.html
var uiHTML string

// Server renders engine results over HTTP.
type Server struct {
	registry  *environment.Registry
	engine    *template.Engine
	assembler *resolver.Assembler
	auth      AuthConfig
	basePath  string
	log       *zap.SugaredLogger

	// versions collapses concurrent rev-parse/commit-date subprocess
	// calls for the same (environment, refs) key.
	versions singleflight.Group
}

// New wires a Server over the registry.  basePath is normalized here;
// pass the raw configured value.
func New(reg *environment.Registry, engine *template.Engine, auth AuthConfig, basePath string, log *zap.SugaredLogger) *Server {
	return &Server{
		registry:  reg,
		engine:    engine,
		assembler: resolver.New(engine),
		auth:      auth,
		basePath:  NormalizeBasePath(basePath),
		log:       log,
	}
}

// NormalizeBasePath maps the configured prefix to either "/" or
// "/<trimmed>".
func NormalizeBasePath(base string) string {
	trimmed := strings.Trim(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	inner := chi.NewRouter()
	inner.Use(s.requireAuth)
	inner.NotFound(s.handleNotFound)

	inner.Get("/ui", s.handleUI)
	inner.Get("/ui/meta.json", s.handleUIMeta)
	inner.Get("/{env}/env", s.handleEnvJSON)
	inner.Get("/{env}/env/export", s.handleEnvExport)
	inner.Get("/{env}/files", s.handleFiles)
	inner.Get("/{env}/file/{label}/*", s.handleFile)
	inner.Get("/{env}/{application}/{profile}", s.handleConfig)
	inner.Get("/{env}/{application}/{profile}/{label}", s.handleConfig)

	if s.basePath == "/" {
		return inner
	}

	outer := chi.NewRouter()
	outer.NotFound(s.handleNotFound)
	outer.Mount(s.basePath, inner)
	return outer
}

// resolveVersion maps (environment, label) to the current commit hash,
// degrading to "" on failure so a broken ref never blocks configuration
// delivery.
func (s *Server) resolveVersion(ctx context.Context, env *environment.Environment, label string) string {
	refs := gitrepo.CandidateRefs(env.Git, label)
	key := "commit\x00" + env.Name + "\x00" + strings.Join(refs, "\x00")
	v, err, _ := s.versions.Do(key, func() (any, error) {
		return env.Backend.ResolveCommit(ctx, env.Git, refs)
	})
	if err != nil {
		s.log.Warnw("commit resolution failed",
			"environment", env.Name, "refs", refs, "err", err)
		return ""
	}
	return v.(string)
}

// resolveCommitDate is resolveVersion's counterpart for the committer
// date shown on the dashboard.
func (s *Server) resolveCommitDate(ctx context.Context, env *environment.Environment) string {
	refs := gitrepo.CandidateRefs(env.Git, "")
	key := "date\x00" + env.Name + "\x00" + strings.Join(refs, "\x00")
	v, err, _ := s.versions.Do(key, func() (any, error) {
		return env.Backend.CommitDate(ctx, env.Git, refs)
	})
	if err != nil {
		s.log.Warnw("commit date resolution failed",
			"environment", env.Name, "refs", refs, "err", err)
		return ""
	}
	return v.(string)
}
