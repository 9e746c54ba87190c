package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the prpflow version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if GetConfig().Output == "json" {
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"version": GetVersion(),
				"go":      runtime.Version(),
			})
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "prpflow %s (%s)\n", GetVersion(), runtime.Version())
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
