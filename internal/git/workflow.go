package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// maxBranchAttempts bounds how many names StartImplementation tries before
// giving up on a collision.
const maxBranchAttempts = 5

// BranchNamer produces a fresh branch name for an identifier on each call.
type BranchNamer interface {
	Branch(identifier string) string
}

// WorkflowResult contains the outcome of a workflow operation.
type WorkflowResult struct {
	// BranchName is the name of the created implementation branch
	BranchName string
	// PreviousBranch is the branch we were on before switching
	PreviousBranch string
	// Attempts is how many names were tried
	Attempts int
}

// StartImplementation creates and checks out the implementation branch.
//
// It first tries branch. If that name already exists locally or on remote
// (two runs named the same PRP within the same second), it asks namer for
// another name, up to maxBranchAttempts in total.
func (c *Client) StartImplementation(ctx context.Context, branch, identifier, remote string, namer BranchNamer) (*WorkflowResult, error) {
	if branch == "" {
		return nil, fmt.Errorf("branch name is required")
	}
	if !c.IsGitInstalled(ctx) {
		return nil, ErrGitNotInstalled
	}
	if !c.IsRepository(ctx) {
		return nil, ErrNotGitRepository
	}

	currentBranch, err := c.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	result := &WorkflowResult{PreviousBranch: currentBranch}

	checkRemote := remote != "" && c.HasRemote(ctx, remote)
	name := branch
	for attempt := 1; attempt <= maxBranchAttempts; attempt++ {
		result.Attempts = attempt

		if checkRemote && c.RemoteBranchExists(ctx, remote, name) {
			err = ErrBranchExists
		} else {
			err = c.CreateBranch(ctx, name)
		}
		if err == nil {
			result.BranchName = name
			return result, nil
		}
		if !errors.Is(err, ErrBranchExists) || namer == nil {
			return nil, err
		}
		name = namer.Branch(identifier)
	}

	return nil, fmt.Errorf("create branch for %s after %d attempts: %w", identifier, maxBranchAttempts, ErrBranchExists)
}

// ArchiveCommitMessage returns the message for the commit that moves a PRP
// into the done directory.
func ArchiveCommitMessage(identifier string, issue int) string {
	msg := fmt.Sprintf("chore: archive PRP %s", identifier)
	if issue > 0 {
		msg += fmt.Sprintf(" (#%d)", issue)
	}
	return msg
}

// ImplementationCommitMessage returns the message for the agent's changes.
func ImplementationCommitMessage(identifier string, issue int) string {
	msg := fmt.Sprintf("feat: implement %s", identifier)
	if issue > 0 {
		msg += fmt.Sprintf("\n\nRefs #%d", issue)
	}
	return msg
}

// CommitArchive stages the removal of ref and the addition of archived,
// then commits.
func (c *Client) CommitArchive(ctx context.Context, ref, archived, identifier string, issue int) error {
	if err := c.Add(ctx, ref, archived); err != nil {
		return fmt.Errorf("stage archive: %w", err)
	}
	if err := c.Commit(ctx, ArchiveCommitMessage(identifier, issue)); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}
	return nil
}

// CommitImplementation stages everything and commits it. It returns
// ErrNothingToCommit when the agent left the tree unchanged.
func (c *Client) CommitImplementation(ctx context.Context, identifier string, issue int) error {
	if err := c.AddAll(ctx); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}

	staged, err := c.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if !staged {
		return ErrNothingToCommit
	}

	if err := c.Commit(ctx, ImplementationCommitMessage(identifier, issue)); err != nil {
		return fmt.Errorf("commit implementation: %w", err)
	}
	return nil
}

// PRInfo contains information about a created pull request.
type PRInfo struct {
	URL    string
	Title  string
	Branch string
	Base   string
}

// PRRequest describes the pull request for one implemented PRP.
type PRRequest struct {
	Remote     string
	Base       string
	Branch     string
	Identifier string
	// Reference is the original PRP path and ArchivedPath where it now lives.
	Reference    string
	ArchivedPath string
	Issue        int
}

// GeneratePRBody creates the pull request body for an implemented PRP.
func GeneratePRBody(req PRRequest) string {
	var sb strings.Builder

	sb.WriteString("## Summary\n\n")
	sb.WriteString("Implements ")
	sb.WriteString(req.Reference)
	sb.WriteString("\n")
	if req.ArchivedPath != "" && req.ArchivedPath != req.Reference {
		sb.WriteString("\nThe PRP has been archived to `")
		sb.WriteString(req.ArchivedPath)
		sb.WriteString("`.\n")
	}
	if req.Issue > 0 {
		sb.WriteString(fmt.Sprintf("\nCloses #%d\n", req.Issue))
	}

	sb.WriteString("\n---\n")
	sb.WriteString("*Generated by prpflow*\n")

	return sb.String()
}

// OpenPullRequest pushes the branch and opens a pull request for it.
func (c *Client) OpenPullRequest(ctx context.Context, req PRRequest) (*PRInfo, error) {
	if !c.IsGhInstalled(ctx) {
		return nil, ErrGhNotInstalled
	}
	if req.Remote == "" {
		req.Remote = "origin"
	}

	if req.Branch == "" {
		branch, err := c.CurrentBranch(ctx)
		if err != nil {
			return nil, err
		}
		req.Branch = branch
	}

	base := req.Base
	if base == "" {
		detected, err := c.DefaultBranch(ctx, req.Remote)
		if err != nil {
			detected = "main"
		}
		base = detected
	}

	if err := c.PushWithUpstream(ctx, req.Remote, req.Branch); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Implement %s", req.Identifier)
	const maxTitleLen = 72
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}

	url, err := c.CreatePR(ctx, title, GeneratePRBody(req), base, req.Branch)
	if err != nil {
		return nil, err
	}

	return &PRInfo{
		URL:    url,
		Title:  title,
		Branch: req.Branch,
		Base:   base,
	}, nil
}
