// internal/server/handlers.go
//
// Route handlers.  Each one is registry lookup → engine call → render;
// error kinds map to status codes here and nowhere else (not-found →
// protocol 404, bad path → 400, everything else → 500 with the detail
// kept in the log).
package server

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/martinmares/simple-config-server/internal/environment"
	"github.com/martinmares/simple-config-server/internal/gitrepo"
	"github.com/martinmares/simple-config-server/internal/metrics"
	"github.com/martinmares/simple-config-server/internal/pathsafe"
	"github.com/martinmares/simple-config-server/internal/resolver"
)

// lookupEnv resolves the {env} route param, rendering the protocol 404
// on a miss.
func (s *Server) lookupEnv(w http.ResponseWriter, r *http.Request) (*environment.Environment, bool) {
	name := chi.URLParam(r, "env")
	env, ok := s.registry.Lookup(name)
	if !ok {
		writeSpringNotFound(w, r.URL.Path)
		return nil, false
	}
	return env, true
}

// handleConfig serves both the labelled and unlabelled lookup routes.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("config").Inc()

	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}
	application := chi.URLParam(r, "application")
	rawProfiles := chi.URLParam(r, "profile")
	label := chi.URLParam(r, "label")

	profiles := resolver.ParseProfiles(rawProfiles)
	props, found, err := s.assembler.Assemble(r.Context(),
		env.Backend, env.Git, application, profiles, label, env.Vars)
	if err != nil {
		s.log.Errorw("config lookup failed",
			"environment", env.Name, "application", application,
			"profiles", rawProfiles, "label", label, "err", err)
		writeInternalError(w)
		return
	}

	resp := EnvResponse{
		Name:            application,
		Profiles:        profiles,
		Version:         s.resolveVersion(r.Context(), env, label),
		State:           "",
		PropertySources: []PropertySource{},
	}
	if label != "" {
		resp.Label = &label
	}
	if found {
		resp.PropertySources = append(resp.PropertySources, PropertySource{
			Name:   propertySourceName(env.Git.RepoURL, env.Git.Subpath, rawProfiles),
			Source: props,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleFile serves raw repository content at a label, templating text
// files and passing binaries through untouched.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("file").Inc()

	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}
	label := chi.URLParam(r, "label")

	rel, err := pathsafe.Clean(chi.URLParam(r, "*"))
	if err != nil {
		var bad *pathsafe.BadRequestError
		if errors.As(err, &bad) {
			http.Error(w, bad.Reason, http.StatusBadRequest)
			return
		}
		writeInternalError(w)
		return
	}

	refs := gitrepo.CandidateRefs(env.Git, label)
	data, err := env.Backend.ReadFile(r.Context(), env.Git, refs, rel)
	if errors.Is(err, gitrepo.ErrNotFound) {
		writeSpringNotFound(w, r.URL.Path)
		return
	}
	if err != nil {
		s.log.Errorw("file read failed",
			"environment", env.Name, "path", rel, "label", label, "err", err)
		writeInternalError(w)
		return
	}

	if isBinary(data) {
		w.Header().Set("Content-Type", contentTypeFor(rel, data, true))
		_, _ = w.Write(data)
		return
	}

	templated := s.engine.Apply(string(data), env.Vars)
	w.Header().Set("Content-Type", contentTypeFor(rel, data, false))
	_, _ = w.Write([]byte(templated))
}

// isBinary classifies content the way the file route needs it: a NUL
// byte or invalid UTF-8 means "serve unmodified".
func isBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data)
}

// contentTypeFor guesses from the extension first; binaries with no
// known extension are sniffed, text falls back to plain.
func contentTypeFor(path string, data []byte, binary bool) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	if binary {
		return mimetype.Detect(data).String()
	}
	return "text/plain; charset=utf-8"
}

func (s *Server) handleEnvJSON(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("env").Inc()

	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, env.Vars)
}

func (s *Server) handleEnvExport(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("env").Inc()

	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}

	keys := make([]string, 0, len(env.Vars))
	for k := range env.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString("export ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(shellEscape(env.Vars[k]))
		b.WriteString("\"\n")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// shellEscape makes a value safe inside double quotes in a sourced
// shell script.
func shellEscape(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	v = strings.ReplaceAll(v, `$`, `\$`)
	return v
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("files").Inc()

	env, ok := s.lookupEnv(w, r)
	if !ok {
		return
	}

	files, err := env.Backend.ListFiles(r.Context(), env.Git)
	if err != nil {
		s.log.Errorw("file listing failed", "environment", env.Name, "err", err)
		writeInternalError(w)
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}
