// internal/gitrepo/gitrepo.go
//
// Version-control backend contract.
//
// Context
// -------
// The resolution engine never touches git internals; it speaks to a
// narrow Backend capability interface (sync, resolve commit, read file,
// list files) so the subprocess driver and the go-git library driver are
// interchangeable.  All policy — which refs to try, how subpaths prefix
// file addresses — lives here, outside both drivers.
//
// Failure taxonomy
// ----------------
//   - *OperationError  – a backend operation failed; carries the stage
//     (clone, fetch, reset, rev-parse, show, ls-tree) and captured
//     stderr as structured fields.
//   - ErrNotFound      – every candidate ref missed; callers decide
//     fatality (commit resolution degrades, file reads 404).
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Operation stages recorded on OperationError.
const (
	StageClone    = "clone"
	StageFetch    = "fetch"
	StageReset    = "reset"
	StageRevParse = "rev-parse"
	StageShow     = "show"
	StageLsTree   = "ls-tree"
)

// ErrNotFound reports that no candidate ref resolved the requested
// object.  It is not a backend failure.
var ErrNotFound = errors.New("not found in repository")

// OperationError reports a failed backend operation.  Stage and Stderr
// stay structured so callers can assert on the kind without parsing the
// message.
type OperationError struct {
	Stage  string
	Stderr string
	Err    error
}

func (e *OperationError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s failed: %s", e.Stage, e.Stderr)
	}
	return fmt.Sprintf("git %s failed: %v", e.Stage, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// GitConfig describes one environment's git endpoint.
type GitConfig struct {
	RepoURL             string `koanf:"repo_url" validate:"required"`
	Branch              string `koanf:"branch"   validate:"required"`
	Workdir             string `koanf:"workdir"  validate:"required"`
	Subpath             string `koanf:"subpath"`
	RefreshIntervalSecs int    `koanf:"refresh_interval_secs"`
	Backend             string `koanf:"backend"  validate:"omitempty,oneof=cli gogit"`
}

// Backend is the capability interface over one git working copy.  All
// operations are read-only except Sync, which clones or fast-forwards
// the local mirror.  Implementations must be safe for concurrent use.
type Backend interface {
	// Sync clones the repository into gc.Workdir on first use; on later
	// calls it fetches all remotes with pruning and hard-resets the
	// working tree to origin/<branch>.
	Sync(ctx context.Context, gc GitConfig) error

	// ResolveCommit returns the full commit hash of the first ref in
	// refs that resolves, or ErrNotFound.
	ResolveCommit(ctx context.Context, gc GitConfig, refs []string) (string, error)

	// CommitDate returns the strict ISO-8601 committer date of the first
	// ref in refs that resolves, or ErrNotFound.
	CommitDate(ctx context.Context, gc GitConfig, refs []string) (string, error)

	// ReadFile returns the bytes of relPath (joined under gc.Subpath) at
	// the first ref in refs that resolves it, or ErrNotFound when every
	// candidate misses.
	ReadFile(ctx context.Context, gc GitConfig, refs []string, relPath string) ([]byte, error)

	// ListFiles returns every file path at the tip of gc.Branch, with
	// gc.Subpath stripped; entries outside the subpath are dropped.
	ListFiles(ctx context.Context, gc GitConfig) ([]string, error)
}

// NewBackend selects the driver named by gc.Backend; empty selects the
// subprocess driver.
func NewBackend(gc GitConfig) Backend {
	if gc.Backend == "gogit" {
		return &GoGit{}
	}
	return &CLI{}
}

// CandidateRefs maps a requested label to the ordered ref fallback list.
// A same-named local ref is preferred (branches already checked out)
// before the remote-tracking ref (tags and branches never created
// locally).  With no label the tracked branch is used the same way.
func CandidateRefs(gc GitConfig, label string) []string {
	rev := label
	if rev == "" {
		rev = gc.Branch
	}
	return []string{rev, "origin/" + rev}
}

// repoPath joins the configured subpath ahead of rel and normalizes the
// separators to the forward-slash form ref:path addressing requires.
func repoPath(gc GitConfig, rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	sub := subpathPrefix(gc)
	if sub == "" {
		return rel
	}
	if rel == "" {
		return sub
	}
	return sub + "/" + rel
}

// subpathPrefix returns the normalized subpath or "".
func subpathPrefix(gc GitConfig) string {
	return strings.Trim(strings.ReplaceAll(gc.Subpath, "\\", "/"), "/")
}

// stripSubpath filters raw tree entries down to the configured subpath,
// removing the prefix.  Entries outside the subpath are dropped.
func stripSubpath(gc GitConfig, entries []string) []string {
	sub := subpathPrefix(gc)
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if sub != "" {
			rest, ok := strings.CutPrefix(entry, sub+"/")
			if !ok {
				continue
			}
			entry = rest
		}
		files = append(files, entry)
	}
	return files
}
