package cmd

import (
	"github.com/josephgoksu/prpflow/internal/ghaction"
	"github.com/josephgoksu/prpflow/internal/logger"
	"github.com/josephgoksu/prpflow/internal/prp"
	"github.com/spf13/cobra"
)

var detectInput commentInput

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Report whether a comment references an existing PRP",
	Long: `Scan the comment for a PRPs/<name>.md reference and check that the file
exists. Nothing is moved or written besides the step outputs.

A comment without a reference is not an error: found is false and the exit
code is 0. A reference to a missing file fails with exit code 3.`,
	Example: `  prpflow detect --comment "Please implement PRPs/test-feature.md"
  prpflow detect --event "$GITHUB_EVENT_PATH" -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := detectInput.read(cmd, hostFs)
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

		res, err := r.Detect(req.Body)
		if err != nil {
			return err
		}
		if res.Found {
			logger.SetReference(res.Reference)
		}
		return emitOutputs(cmd.OutOrStdout(), ghaction.FromResult(res))
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	addCommentFlags(detectCmd, &detectInput)
}
