// internal/server/respond.go
//
// Protocol-shaped response envelopes and render helpers.
//
// The lookup envelope and the 404 body mirror the well-known
// configuration-server JSON shapes so existing client libraries keep
// working: propertySources is always a JSON array (never null), label
// is omitted when the request carried none, and state stays an empty
// string reserved for compatibility.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PropertySource is one merged property map with its identity string.
type PropertySource struct {
	Name   string         `json:"name"`
	Source map[string]any `json:"source"`
}

// EnvResponse is the protocol-compatible lookup envelope.
type EnvResponse struct {
	Name            string           `json:"name"`
	Profiles        []string         `json:"profiles"`
	Label           *string          `json:"label,omitempty"`
	Version         string           `json:"version"`
	State           string           `json:"state"`
	PropertySources []PropertySource `json:"propertySources"`
}

// propertySourceName builds the deterministic source identity
// git:{repo_url}{/subpath}:{raw_profile_string}.
func propertySourceName(repoURL, subpath, rawProfiles string) string {
	if subpath != "" {
		subpath = "/" + subpath
	}
	return fmt.Sprintf("git:%s%s:%s", repoURL, subpath, rawProfiles)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeSpringNotFound renders the protocol-shaped 404 body.
func writeSpringNotFound(w http.ResponseWriter, path string) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"status":    http.StatusNotFound,
		"error":     "Not Found",
		"path":      path,
	})
}

func writeInternalError(w http.ResponseWriter) {
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// handleNotFound covers every unmatched route.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeSpringNotFound(w, r.URL.Path)
}
