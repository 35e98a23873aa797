// internal/gitrepo/cli.go
//
// Subprocess git driver.
//
// Each operation shells out to the git binary and suspends only the
// calling goroutine; no process-wide lock is held, so refresh loops and
// request reads of the same mirror proceed concurrently (eventual
// consistency, see the Refresher doc).  No timeout is applied — a hung
// subprocess stalls only the request or tick that invoked it.
package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CLI drives a system-installed git binary.  The zero value is ready to
// use.
type CLI struct{}

// run executes git with args and returns stdout.  A non-zero exit or a
// spawn failure is wrapped in an OperationError tagged with stage.
func (*CLI) run(ctx context.Context, stage string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &OperationError{
			Stage:  stage,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}

// missedRef reports whether err is a clean non-zero git exit, meaning
// the ref or path did not resolve rather than the tool failing to run.
func missedRef(err error) bool {
	var op *OperationError
	if !errors.As(err, &op) {
		return false
	}
	var exit *exec.ExitError
	return errors.As(op.Err, &exit)
}

func (c *CLI) Sync(ctx context.Context, gc GitConfig) error {
	if err := os.MkdirAll(gc.Workdir, 0o755); err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(gc.Workdir, ".git")); err != nil {
		_, err := c.run(ctx, StageClone,
			"clone", "--branch", gc.Branch, "--single-branch", gc.RepoURL, gc.Workdir)
		return err
	}

	if _, err := c.run(ctx, StageFetch,
		"-C", gc.Workdir, "fetch", "--all", "--prune"); err != nil {
		return err
	}
	_, err := c.run(ctx, StageReset,
		"-C", gc.Workdir, "reset", "--hard", "origin/"+gc.Branch)
	return err
}

func (c *CLI) ResolveCommit(ctx context.Context, gc GitConfig, refs []string) (string, error) {
	for _, ref := range refs {
		out, err := c.run(ctx, StageRevParse, "-C", gc.Workdir, "rev-parse", ref)
		if err == nil {
			return strings.TrimSpace(string(out)), nil
		}
		if !missedRef(err) {
			return "", err
		}
	}
	return "", ErrNotFound
}

func (c *CLI) CommitDate(ctx context.Context, gc GitConfig, refs []string) (string, error) {
	for _, ref := range refs {
		out, err := c.run(ctx, StageShow, "-C", gc.Workdir, "show", "-s", "--format=%cI", ref)
		if err == nil {
			return strings.TrimSpace(string(out)), nil
		}
		if !missedRef(err) {
			return "", err
		}
	}
	return "", ErrNotFound
}

func (c *CLI) ReadFile(ctx context.Context, gc GitConfig, refs []string, relPath string) ([]byte, error) {
	pathspec := repoPath(gc, relPath)
	for _, ref := range refs {
		out, err := c.run(ctx, StageShow, "-C", gc.Workdir, "show", ref+":"+pathspec)
		if err == nil {
			return out, nil
		}
		if !missedRef(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (c *CLI) ListFiles(ctx context.Context, gc GitConfig) ([]string, error) {
	out, err := c.run(ctx, StageLsTree,
		"-C", gc.Workdir, "ls-tree", "-r", "--name-only", gc.Branch)
	if err != nil {
		return nil, err
	}
	return stripSubpath(gc, strings.Split(string(out), "\n")), nil
}
