package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/josephgoksu/prpflow/internal/agent"
	"github.com/josephgoksu/prpflow/internal/prp"
	"github.com/josephgoksu/prpflow/internal/ui"
	"github.com/josephgoksu/prpflow/internal/workspace"
	"github.com/spf13/viper"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitUsage        = 2
	ExitTaskFailure  = 3
	ExitLocked       = 4
	ExitAgentFailure = 5
)

// UsageError marks bad flags, arguments or configuration.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var usageErr *UsageError
	var validationErrs validator.ValidationErrors
	var exitErr *agent.ExitError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usageErr), errors.As(err, &validationErrs):
		return ExitUsage
	case errors.Is(err, workspace.ErrLocked):
		return ExitLocked
	case prp.IsTaskFailure(err):
		return ExitTaskFailure
	case errors.As(err, &exitErr), errors.Is(err, agent.ErrTimeout):
		return ExitAgentFailure
	default:
		return ExitError
	}
}

// userMessage is the short line printed when --verbose is off.
func userMessage(err error) string {
	var usageErr *UsageError
	var validationErrs validator.ValidationErrors
	var stepErr *prp.StepError

	switch {
	case errors.As(err, &validationErrs):
		return fmt.Sprintf("Error: invalid configuration (%d field(s)); rerun with --verbose for details", len(validationErrs))
	case errors.As(err, &usageErr):
		return "Error: " + usageErr.Error()
	case errors.Is(err, workspace.ErrLocked):
		return "Error: another prpflow run holds the workspace lock"
	case errors.Is(err, context.Canceled):
		return "Error: interrupted"
	case errors.As(err, &stepErr):
		return fmt.Sprintf("Error: %s step failed for %s: %v", stepErr.Step, stepErr.Ref, stepErr.Err)
	case errors.Is(err, agent.ErrTimeout):
		return "Error: the agent did not finish in time"
	default:
		return "Error: " + err.Error()
	}
}

// PrintError prints an error message without exiting, allowing for recovery.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		// In verbose mode, print the detailed, underlying technical error.
		fmt.Fprintf(os.Stderr, "Error: %v\n", technicalErr)
	} else if isTerminal(os.Stderr) {
		fmt.Fprintln(os.Stderr, ui.StyleError.Render(userMsg))
	} else {
		fmt.Fprintln(os.Stderr, userMsg)
	}
}

// LogError logs an error without printing to stderr if verbose mode is off.
func LogError(msg string, err error) {
	if viper.GetBool("verbose") {
		if err != nil {
			fmt.Fprintf(os.Stderr, "[DEBUG] %s: %v\n", msg, err)
		} else {
			fmt.Fprintf(os.Stderr, "[DEBUG] %s\n", msg)
		}
	}
}
