// internal/server/ui.go
//
// Dashboard metadata snapshot and static page.
//
// The page is the embedded ui.html with its __META_JSON__ marker
// replaced by the snapshot; /ui/meta.json serves the same snapshot raw
// for tooling.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/martinmares/simple-config-server/internal/metrics"
)

type envMeta struct {
	Name           string `json:"name"`
	RepoURL        string `json:"repo_url"`
	Branch         string `json:"branch"`
	Workdir        string `json:"workdir"`
	Subpath        string `json:"subpath"`
	LastCommit     string `json:"last_commit"`
	LastCommitDate string `json:"last_commit_date"`
}

type uiMeta struct {
	BasePath     string    `json:"base_path"`
	Environments []envMeta `json:"environments"`
	AuthEnabled  bool      `json:"auth_enabled"`
}

func (s *Server) buildUIMeta(r *http.Request) uiMeta {
	meta := uiMeta{
		BasePath:     s.basePath,
		Environments: []envMeta{},
		AuthEnabled:  s.auth.Required,
	}
	for _, env := range s.registry.All() {
		meta.Environments = append(meta.Environments, envMeta{
			Name:           env.Name,
			RepoURL:        env.Git.RepoURL,
			Branch:         env.Git.Branch,
			Workdir:        env.Git.Workdir,
			Subpath:        env.Git.Subpath,
			LastCommit:     s.resolveVersion(r.Context(), env, ""),
			LastCommitDate: s.resolveCommitDate(r.Context(), env),
		})
	}
	return meta
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("ui").Inc()

	metaJSON, err := json.Marshal(s.buildUIMeta(r))
	if err != nil {
		s.log.Errorw("ui meta marshal failed", "err", err)
		writeInternalError(w)
		return
	}

	html := strings.Replace(uiHTML, "__META_JSON__", string(metaJSON), 1)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleUIMeta(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("ui").Inc()
	writeJSON(w, http.StatusOK, s.buildUIMeta(r))
}
