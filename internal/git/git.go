// Package git provides shell-based wrappers for git and gh CLI commands.
// It uses os/exec instead of go-git so commits pick up the runner's
// credentials, signing config, and the GH_TOKEN that CI provides.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Common errors returned by git operations.
var (
	ErrGitNotInstalled  = errors.New("git is not installed or not in PATH")
	ErrGhNotInstalled   = errors.New("gh CLI is not installed or not in PATH")
	ErrNotGitRepository = errors.New("not a git repository")
	ErrBranchExists     = errors.New("branch already exists")
	ErrNothingToCommit  = errors.New("nothing to commit")
)

// Commander is an interface for executing commands.
// This allows mocking in tests.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	RunInDir(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ShellCommander executes real shell commands.
type ShellCommander struct{}

// Run executes a command in the current directory.
func (c *ShellCommander) Run(ctx context.Context, name string, args ...string) (string, error) {
	return c.RunInDir(ctx, "", name, args...)
}

// RunInDir executes a command in the specified directory.
func (c *ShellCommander) RunInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		// Include stderr in error for debugging
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("%w: %s", err, errMsg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Client wraps git and gh CLI operations for one checkout.
type Client struct {
	commander Commander
	workDir   string
}

// NewClient creates a new git client for the given directory.
func NewClient(workDir string) *Client {
	return &Client{
		commander: &ShellCommander{},
		workDir:   workDir,
	}
}

// NewClientWithCommander creates a client with a custom commander (for testing).
func NewClientWithCommander(workDir string, commander Commander) *Client {
	return &Client{
		commander: commander,
		workDir:   workDir,
	}
}

func (c *Client) git(ctx context.Context, args ...string) (string, error) {
	return c.commander.RunInDir(ctx, c.workDir, "git", args...)
}

// IsGitInstalled checks if git binary is available in PATH.
func (c *Client) IsGitInstalled(ctx context.Context) bool {
	_, err := c.commander.Run(ctx, "git", "--version")
	return err == nil
}

// IsGhInstalled checks if gh CLI binary is available in PATH.
func (c *Client) IsGhInstalled(ctx context.Context) bool {
	_, err := c.commander.Run(ctx, "gh", "--version")
	return err == nil
}

// IsRepository checks if the working directory is a git repository.
func (c *Client) IsRepository(ctx context.Context) bool {
	_, err := c.git(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// IsDirty checks if the working directory has uncommitted changes.
func (c *Client) IsDirty(ctx context.Context) (bool, error) {
	output, err := c.git(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("check dirty state: %w", err)
	}
	return output != "", nil
}

// HasStagedChanges reports whether the index differs from HEAD.
func (c *Client) HasStagedChanges(ctx context.Context) (bool, error) {
	output, err := c.git(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return false, fmt.Errorf("check staged changes: %w", err)
	}
	return output != "", nil
}

// CurrentBranch returns the name of the current branch.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	output, err := c.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return output, nil
}

// DefaultBranch returns the default branch name (main or master).
func (c *Client) DefaultBranch(ctx context.Context, remote string) (string, error) {
	// Output is like "refs/remotes/origin/main"
	output, err := c.git(ctx, "symbolic-ref", "refs/remotes/"+remote+"/HEAD")
	if err == nil {
		parts := strings.Split(output, "/")
		if len(parts) > 0 && parts[len(parts)-1] != "" {
			return parts[len(parts)-1], nil
		}
	}

	for _, branch := range []string{"main", "master"} {
		if c.BranchExists(ctx, branch) {
			return branch, nil
		}
	}

	return "", fmt.Errorf("could not determine default branch")
}

// CreateBranch creates and checks out a new branch.
func (c *Client) CreateBranch(ctx context.Context, name string) error {
	_, err := c.git(ctx, "checkout", "-b", name)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return ErrBranchExists
		}
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	return nil
}

// BranchExists checks if a branch exists locally.
func (c *Client) BranchExists(ctx context.Context, name string) bool {
	_, err := c.git(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// RemoteBranchExists checks the remote for a branch without fetching it.
func (c *Client) RemoteBranchExists(ctx context.Context, remote, name string) bool {
	output, err := c.git(ctx, "ls-remote", "--heads", remote, name)
	return err == nil && output != ""
}

// Add stages files for commit. Removed paths are staged too.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	args := append([]string{"add", "-A", "--"}, paths...)
	_, err := c.git(ctx, args...)
	if err != nil {
		return fmt.Errorf("add files: %w", err)
	}
	return nil
}

// AddAll stages all changes.
func (c *Client) AddAll(ctx context.Context) error {
	return c.Add(ctx, ".")
}

// Commit creates a commit with the given message.
func (c *Client) Commit(ctx context.Context, message string) error {
	_, err := c.git(ctx, "commit", "-m", message)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ConfigureIdentity sets the committer identity for this repository only.
// Empty values are left untouched.
func (c *Client) ConfigureIdentity(ctx context.Context, name, email string) error {
	if name != "" {
		if _, err := c.git(ctx, "config", "user.name", name); err != nil {
			return fmt.Errorf("set user.name: %w", err)
		}
	}
	if email != "" {
		if _, err := c.git(ctx, "config", "user.email", email); err != nil {
			return fmt.Errorf("set user.email: %w", err)
		}
	}
	return nil
}

// PushWithUpstream pushes and sets upstream tracking.
func (c *Client) PushWithUpstream(ctx context.Context, remote, branch string) error {
	_, err := c.git(ctx, "push", "-u", remote, branch)
	if err != nil {
		return fmt.Errorf("push with upstream %s/%s: %w", remote, branch, err)
	}
	return nil
}

// HasRemote checks if a remote is configured.
func (c *Client) HasRemote(ctx context.Context, name string) bool {
	_, err := c.git(ctx, "remote", "get-url", name)
	return err == nil
}

// CreatePR creates a pull request using gh CLI and returns its URL.
func (c *Client) CreatePR(ctx context.Context, title, body, base, head string) (string, error) {
	if !c.IsGhInstalled(ctx) {
		return "", ErrGhNotInstalled
	}

	output, err := c.commander.RunInDir(ctx, c.workDir, "gh", "pr", "create",
		"--title", title,
		"--body", body,
		"--base", base,
		"--head", head,
	)
	if err != nil {
		return "", fmt.Errorf("create PR: %w", err)
	}
	return output, nil
}
