// internal/resolver/candidates.go
//
// Candidate filename generation for an (application, profiles) pair.
//
// The order is the merge order: generic files first, application file
// next, then profile-specific files in request order, so a later file's
// keys win on collision.
package resolver

import (
	"fmt"
	"strings"
)

// ParseProfiles splits a comma-separated profile string, trimming each
// entry and dropping empties.  Order is preserved; it drives merge
// precedence.
func ParseProfiles(raw string) []string {
	parts := strings.Split(raw, ",")
	profiles := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

// Candidates returns the ordered repository-relative filenames to try
// for application and profiles.
func Candidates(application string, profiles []string) []string {
	out := []string{
		"application.yml",
		"application.yaml",
		fmt.Sprintf("%s.yml", application),
		fmt.Sprintf("%s.yaml", application),
	}
	for _, p := range profiles {
		out = append(out,
			fmt.Sprintf("application-%s.yml", p),
			fmt.Sprintf("application-%s.yaml", p),
			fmt.Sprintf("%s-%s.yml", application, p),
			fmt.Sprintf("%s-%s.yaml", application, p),
		)
	}
	return out
}
