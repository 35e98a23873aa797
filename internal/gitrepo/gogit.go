// internal/gitrepo/gogit.go
//
// Library git driver (go-git).
//
// Same contract as the subprocess driver, implemented in-process.  The
// Stderr field of OperationError stays empty here; the wrapped library
// error carries the detail instead.
package gitrepo

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GoGit drives a working copy through go-git.  The zero value is ready
// to use.
type GoGit struct{}

func opErr(stage string, err error) error {
	return &OperationError{Stage: stage, Err: err}
}

func (*GoGit) Sync(ctx context.Context, gc GitConfig) error {
	if err := os.MkdirAll(gc.Workdir, 0o755); err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(gc.Workdir, ".git")); err != nil {
		_, err := git.PlainCloneContext(ctx, gc.Workdir, false, &git.CloneOptions{
			URL:           gc.RepoURL,
			ReferenceName: plumbing.NewBranchReferenceName(gc.Branch),
			SingleBranch:  true,
		})
		if err != nil {
			return opErr(StageClone, err)
		}
		return nil
	}

	repo, err := git.PlainOpen(gc.Workdir)
	if err != nil {
		return opErr(StageFetch, err)
	}
	err = repo.FetchContext(ctx, &git.FetchOptions{Prune: true, Force: true})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return opErr(StageFetch, err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision("origin/" + gc.Branch))
	if err != nil {
		return opErr(StageReset, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return opErr(StageReset, err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: *hash, Mode: git.HardReset}); err != nil {
		return opErr(StageReset, err)
	}
	return nil
}

// resolveCommit opens the mirror and returns the commit of the first
// ref in refs that resolves.
func (*GoGit) resolveCommit(gc GitConfig, refs []string) (*object.Commit, error) {
	repo, err := git.PlainOpen(gc.Workdir)
	if err != nil {
		return nil, opErr(StageRevParse, err)
	}
	for _, ref := range refs {
		hash, err := repo.ResolveRevision(plumbing.Revision(ref))
		if err != nil {
			continue
		}
		commit, err := repo.CommitObject(*hash)
		if err != nil {
			continue
		}
		return commit, nil
	}
	return nil, ErrNotFound
}

func (g *GoGit) ResolveCommit(_ context.Context, gc GitConfig, refs []string) (string, error) {
	commit, err := g.resolveCommit(gc, refs)
	if err != nil {
		return "", err
	}
	return commit.Hash.String(), nil
}

func (g *GoGit) CommitDate(_ context.Context, gc GitConfig, refs []string) (string, error) {
	commit, err := g.resolveCommit(gc, refs)
	if err != nil {
		return "", err
	}
	return commit.Committer.When.Format(time.RFC3339), nil
}

func (g *GoGit) ReadFile(_ context.Context, gc GitConfig, refs []string, relPath string) ([]byte, error) {
	pathspec := repoPath(gc, relPath)
	repo, err := git.PlainOpen(gc.Workdir)
	if err != nil {
		return nil, opErr(StageShow, err)
	}
	for _, ref := range refs {
		hash, err := repo.ResolveRevision(plumbing.Revision(ref))
		if err != nil {
			continue
		}
		commit, err := repo.CommitObject(*hash)
		if err != nil {
			continue
		}
		tree, err := commit.Tree()
		if err != nil {
			continue
		}
		file, err := tree.File(pathspec)
		if err != nil {
			continue
		}
		rd, err := file.Reader()
		if err != nil {
			return nil, opErr(StageShow, err)
		}
		data, err := io.ReadAll(rd)
		rd.Close()
		if err != nil {
			return nil, opErr(StageShow, err)
		}
		return data, nil
	}
	return nil, ErrNotFound
}

func (g *GoGit) ListFiles(_ context.Context, gc GitConfig) ([]string, error) {
	commit, err := g.resolveCommit(gc, CandidateRefs(gc, ""))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, opErr(StageLsTree, errors.New("branch "+gc.Branch+" not found"))
		}
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, opErr(StageLsTree, err)
	}

	var entries []string
	err = tree.Files().ForEach(func(f *object.File) error {
		entries = append(entries, f.Name)
		return nil
	})
	if err != nil {
		return nil, opErr(StageLsTree, err)
	}
	return stripSubpath(gc, entries), nil
}
