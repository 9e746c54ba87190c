package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/josephgoksu/prpflow/internal/agent"
	"github.com/josephgoksu/prpflow/internal/ghaction"
	"github.com/josephgoksu/prpflow/internal/git"
	"github.com/josephgoksu/prpflow/internal/logger"
	"github.com/josephgoksu/prpflow/internal/prp"
	"github.com/spf13/cobra"
)

var (
	implementInput commentInput
	implementOpts  implementFlags
)

type implementFlags struct {
	noAgent    bool
	noPR       bool
	allowDirty bool
	base       string
}

// newGitClient is swapped in tests to inject a mock commander.
var newGitClient = func(dir string) *git.Client {
	return git.NewClient(dir)
}

var implementCmd = &cobra.Command{
	Use:   "implement",
	Short: "Resolve a PRP, run the agent on a new branch and open a pull request",
	Long: `Implement drives the whole loop for one comment:

  1. resolve: archive the PRP and write the agent prompt
  2. create the implementation branch (a new name is tried on collision)
  3. commit the archive move
  4. run the agent with the prompt on stdin
  5. commit whatever the agent changed
  6. push and open a pull request with gh

Outputs are emitted even when a later step fails, so workflow steps can
report what happened. --no-agent and --no-pr stop the loop early.

The working tree must be clean unless --allow-dirty is set, so the commits
contain only the archive move and the agent's changes. The agent sees the
PRP through PRP_PATH, PRP_NAME, PRP_BRANCH and PRP_ISSUE.`,
	Example: `  prpflow implement --event "$GITHUB_EVENT_PATH"
  prpflow implement --comment "PRPs/test-feature.md" --issue 42 --no-pr`,
	Args: cobra.NoArgs,
	RunE: runImplement,
}

func runImplement(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	cfg := GetConfig()

	req, err := implementInput.read(cmd, hostFs)
	if err != nil {
		return err
	}
	if req.Skip {
		return emitOutputs(cmd.OutOrStdout(), ghaction.FromResult(&prp.Result{}))
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	if !ws.HasGit {
		return usageErrorf("implement needs a git checkout, %s is not one", ws.RootPath)
	}
	r, err := newResolver(ws)
	if err != nil {
		return err
	}

	lock, err := lockWorkspace(ctx, ws)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			LogError("release workspace lock", err)
		}
	}()

	client := newGitClient(ws.RootPath)
	if !implementOpts.allowDirty {
		dirty, err := client.IsDirty(ctx)
		if err != nil {
			return err
		}
		if dirty {
			return usageErrorf("working tree has uncommitted changes; commit them or pass --allow-dirty")
		}
	}

	res, err := r.Resolve(ctx, prp.Request{Comment: req.Body, IssueNumber: req.Issue})
	if err != nil {
		return err
	}

	var prURL string
	defer func() {
		outs := ghaction.FromResult(res)
		if prURL != "" {
			outs.Set(ghaction.KeyPRURL, prURL)
		}
		if emitErr := emitOutputs(cmd.OutOrStdout(), outs); emitErr != nil && err == nil {
			err = emitErr
		}
	}()

	if !res.Found {
		return nil
	}
	logger.SetReference(res.Reference)

	if err := client.ConfigureIdentity(ctx, cfg.Git.AuthorName, cfg.Git.AuthorEmail); err != nil {
		return err
	}

	wf, err := client.StartImplementation(ctx, res.Branch, res.Identifier, cfg.Git.Remote, r.Namer())
	if err != nil {
		return fmt.Errorf("start implementation branch: %w", err)
	}
	if wf.BranchName != res.Branch {
		slog.Warn("branch name taken, using a fresh one", "wanted", res.Branch, "got", wf.BranchName, "attempts", wf.Attempts)
	}
	res.Branch = wf.BranchName

	if err := client.CommitArchive(ctx, res.Reference, res.ArchivedPath, res.Identifier, res.IssueNumber); err != nil {
		return err
	}

	if implementOpts.noAgent {
		slog.Info("skipping agent", "prompt", res.PromptPath)
		return nil
	}

	runner := agent.NewRunner(agent.Config{
		Command: cfg.Agent.Command,
		Args:    cfg.Agent.Args,
		Timeout: time.Duration(cfg.Agent.TimeoutSeconds) * time.Second,
		Dir:     ws.RootPath,
		Env:     agentEnv(res),
		// stdout carries step outputs
		Stdout: cmd.ErrOrStderr(),
		Stderr: cmd.ErrOrStderr(),
		Fs:     hostFs,
		Logger: slog.Default(),
	})
	if !runner.Available() {
		return fmt.Errorf("agent command %q not found in PATH", cfg.Agent.Command)
	}
	if err := runner.Run(ctx, res.PromptPath); err != nil {
		return err
	}

	if err := client.CommitImplementation(ctx, res.Identifier, res.IssueNumber); err != nil {
		if !errors.Is(err, git.ErrNothingToCommit) {
			return err
		}
		slog.Warn("agent left no changes to commit", "prp", res.Identifier)
	}

	if implementOpts.noPR {
		return nil
	}

	base := implementOpts.base
	if base == "" {
		base = cfg.Git.Base
	}
	pr, err := client.OpenPullRequest(ctx, git.PRRequest{
		Remote:       cfg.Git.Remote,
		Base:         base,
		Branch:       res.Branch,
		Identifier:   res.Identifier,
		Reference:    res.Reference,
		ArchivedPath: res.ArchivedPath,
		Issue:        res.IssueNumber,
	})
	if err != nil {
		return err
	}
	prURL = pr.URL
	slog.Info("opened pull request", "url", pr.URL, "base", pr.Base, "branch", pr.Branch)
	return nil
}

// agentEnv describes the resolved PRP to the agent process.
func agentEnv(res *prp.Result) []string {
	return []string{
		"PRP_PATH=" + res.ArchivedPath,
		"PRP_NAME=" + res.Identifier,
		"PRP_BRANCH=" + res.Branch,
		"PRP_ISSUE=" + strconv.Itoa(res.IssueNumber),
	}
}

func init() {
	rootCmd.AddCommand(implementCmd)
	addCommentFlags(implementCmd, &implementInput)
	implementCmd.Flags().BoolVar(&implementOpts.noAgent, "no-agent", false, "stop after the archive commit")
	implementCmd.Flags().BoolVar(&implementOpts.noPR, "no-pr", false, "do not push or open a pull request")
	implementCmd.Flags().BoolVar(&implementOpts.allowDirty, "allow-dirty", false, "run even if the working tree has uncommitted changes")
	implementCmd.Flags().StringVar(&implementOpts.base, "base", "", "pull request base branch (default git.base, then the remote default)")
}
