package cmd

import (
	"log/slog"

	"github.com/josephgoksu/prpflow/internal/ghaction"
	"github.com/josephgoksu/prpflow/internal/logger"
	"github.com/josephgoksu/prpflow/internal/prp"
	"github.com/spf13/cobra"
)

var (
	resolveInput  commentInput
	resolveDryRun bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Archive the referenced PRP and write the agent prompt",
	Long: `Resolve runs the full pipeline for one comment:

  extract the PRPs/<name>.md reference
  check the file exists in the workspace
  name the implementation branch
  move the file to PRPs/done/<name>.md
  render the prompt template and write it to prompt.output

It emits found, prp_path, prp_name, branch_name, new_path and prompt_path.
It does not touch git; see "prpflow implement" for the full loop.`,
	Example: `  prpflow resolve --comment "Please implement PRPs/test-feature.md" --issue 123
  prpflow resolve --event "$GITHUB_EVENT_PATH" --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := resolveInput.read(cmd, hostFs)
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
		r, err := newResolver(ws)
		if err != nil {
			return err
		}

		if !resolveDryRun {
			lock, err := lockWorkspace(cmd.Context(), ws)
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					LogError("release workspace lock", err)
				}
			}()
		}

		res, err := r.Resolve(cmd.Context(), prp.Request{
			Comment:     req.Body,
			IssueNumber: req.Issue,
			DryRun:      resolveDryRun,
		})
		if err != nil {
			return err
		}
		if res.Found {
			logger.SetReference(res.Reference)
			slog.Info("resolved PRP", "prp", res.Identifier, "branch", res.Branch, "prompt", res.PromptPath)
		}
		return emitOutputs(cmd.OutOrStdout(), ghaction.FromResult(res))
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	addCommentFlags(resolveCmd, &resolveInput)
	resolveCmd.Flags().BoolVar(&resolveDryRun, "dry-run", false, "compute outputs without moving files or writing the prompt")
}
