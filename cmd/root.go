/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"

	"github.com/josephgoksu/prpflow/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// workdir is the checkout prpflow operates on.
	workdir string
	// outputFormat selects how results are printed to stdout.
	outputFormat string
	// version is the application version, set at build time.
	version = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prpflow",
	Short: "prpflow turns PRP references in issue comments into implementation runs.",
	Long: `prpflow finds a Product Requirement Prompt (PRP) referenced in an issue
comment, archives it under PRPs/done/, renders an agent prompt, and can drive
the rest of the loop: branch, AI agent, commit and pull request.

It reads the comment from --comment, --comment-file or the GitHub Actions
event payload, and writes step outputs to $GITHUB_OUTPUT when set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := InitConfig(); err != nil {
			return err
		}
		cfg := GetConfig()
		logger.Setup(logger.Config{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			Output:  cmd.ErrOrStderr(),
			Verbose: cfg.Verbose,
		})
		logger.SetVersion(version)
		logger.SetCommand(cmd.CommandPath())
		return nil
	},
}

// Execute adds all child commands to the root command and runs it. It
// returns the process exit code; main.main passes it to os.Exit.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		PrintError(userMessage(err), err)
	}
	return ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.prpflow.yaml or $HOME/.prpflow.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&workdir, "workdir", "C", ".", "checkout to operate on")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "stdout format: text, json or yaml")

	bindFlags()

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})
}

// bindFlags binds persistent flags to Viper.
func bindFlags() {
	for _, name := range []string{"config", "verbose", "workdir", "output"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// GetVersion returns the build version.
func GetVersion() string {
	return version
}
