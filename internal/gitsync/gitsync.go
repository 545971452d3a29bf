// Package gitsync checks out the content repository into a local
// workspace so that convert and audit can operate on a tree without a
// running content store. It clones shallow on first use and pulls on
// subsequent runs.
package gitsync

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	ferrors "github.com/docpress/docpress/internal/foundation/errors"
	"github.com/docpress/docpress/internal/logfields"
)

// Source identifies the content repository to sync.
type Source struct {
	// URL is the clone URL (https or local path).
	URL string
	// Branch to check out. Empty means the remote default branch.
	Branch string
	// Token authenticates HTTPS remotes. Empty for public repositories.
	Token string
}

// Client syncs content repositories into a workspace directory.
type Client struct {
	workspaceDir string
}

// NewClient creates a sync client rooted at the given workspace directory.
func NewClient(workspaceDir string) *Client {
	return &Client{workspaceDir: workspaceDir}
}

// Sync ensures a checkout of the source exists under the workspace and
// returns its path. An existing checkout is pulled, otherwise the
// repository is cloned shallow (depth 1, single branch).
func (c *Client) Sync(ctx context.Context, src Source) (string, error) {
	if src.URL == "" {
		return "", ferrors.GitError("repository URL is required").Build()
	}

	repoPath := filepath.Join(c.workspaceDir, RepoDirName(src.URL))

	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		return c.pull(ctx, repoPath, src)
	}

	return c.clone(ctx, repoPath, src)
}

func (c *Client) clone(ctx context.Context, repoPath string, src Source) (string, error) {
	slog.Info("Cloning content repository",
		logfields.URL(src.URL),
		logfields.Branch(src.Branch),
		logfields.Path(repoPath))

	// Remove any partial checkout left behind by an interrupted clone.
	if err := os.RemoveAll(repoPath); err != nil {
		return "", ferrors.GitError("failed to remove stale checkout").
			WithCause(err).
			WithContext("path", repoPath).
			Build()
	}

	opts := &git.CloneOptions{
		URL:   src.URL,
		Auth:  authMethod(src.Token),
		Depth: 1,
	}
	if src.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + src.Branch)
		opts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, repoPath, false, opts)
	if err != nil {
		return "", ferrors.GitError("failed to clone repository").
			WithCause(err).
			WithContext("url", src.URL).
			WithContext("branch", src.Branch).
			Build()
	}

	if head, err := repo.Head(); err == nil {
		slog.Info("Repository cloned",
			logfields.URL(src.URL),
			slog.String("commit", head.Hash().String()[:8]))
	}

	return repoPath, nil
}

func (c *Client) pull(ctx context.Context, repoPath string, src Source) (string, error) {
	slog.Debug("Updating existing checkout", logfields.Path(repoPath))

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", ferrors.GitError("failed to open existing checkout").
			WithCause(err).
			WithContext("path", repoPath).
			Build()
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", ferrors.GitError("failed to get worktree").
			WithCause(err).
			WithContext("path", repoPath).
			Build()
	}

	pullOpts := &git.PullOptions{
		RemoteName: "origin",
		Auth:       authMethod(src.Token),
	}
	if src.Branch != "" {
		pullOpts.ReferenceName = plumbing.ReferenceName("refs/heads/" + src.Branch)
		pullOpts.SingleBranch = true
	}

	err = worktree.PullContext(ctx, pullOpts)
	switch {
	case err == nil:
		slog.Info("Checkout updated", logfields.Path(repoPath))
	case err == git.NoErrAlreadyUpToDate:
		slog.Debug("Checkout already up to date", logfields.Path(repoPath))
	default:
		return "", ferrors.GitError("failed to pull repository").
			WithCause(err).
			WithContext("path", repoPath).
			WithContext("branch", src.Branch).
			Build()
	}

	return repoPath, nil
}

// authMethod maps a token onto go-git transport credentials. GitHub,
// GitLab and Gitea all accept token auth as HTTP basic auth with the
// token in the password field.
func authMethod(token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	return &githttp.BasicAuth{
		Username: "token",
		Password: token,
	}
}

// RepoDirName derives a stable checkout directory name from a clone URL.
func RepoDirName(url string) string {
	name := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	name = path.Base(filepath.ToSlash(name))
	if name == "" || name == "." || name == "/" {
		return "content"
	}
	return name
}
