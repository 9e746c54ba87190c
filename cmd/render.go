package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renderWrite bool

var renderCmd = &cobra.Command{
	Use:   "render <archived-path>",
	Short: "Render the agent prompt for a PRP path",
	Long: `Render substitutes the path into the configured prompt template and prints
the result. Use it to check a custom prompt.templateFile: a template without
the placeholder, or with it more than once, fails with exit code 3.`,
	Example: `  prpflow render PRPs/done/test-feature.md
  prpflow render PRPs/done/test-feature.md --write`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		r, err := newResolver(ws)
		if err != nil {
			return err
		}

		if renderWrite {
			path, err := r.Prompts().Build(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		}

		prompt, err := r.Prompts().Prompt(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), prompt)
		return err
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().BoolVar(&renderWrite, "write", false, "write to prompt.output and print its path")
}
