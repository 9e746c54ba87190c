// Package agent runs the external AI coding agent against a rendered prompt.
package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// PromptFileToken in an argument is replaced with the prompt path.
const PromptFileToken = "{prompt_file}"

// Defaults for the Claude CLI.
const (
	DefaultCommand = "claude"
	DefaultTimeout = 30 * time.Minute
)

// DefaultArgs runs the agent non-interactively with the prompt on stdin.
var DefaultArgs = []string{"-p", "--dangerously-skip-permissions"}

// ErrTimeout is returned when the agent exceeds its time budget.
var ErrTimeout = errors.New("agent timed out")

// ExitError reports a non-zero agent exit.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("agent exited with status %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Config describes how to invoke the agent.
type Config struct {
	Command string
	Args    []string
	Timeout time.Duration
	// Dir is the working directory, normally the workspace root.
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
	// Fs is where the prompt file is read from. Defaults to the OS filesystem.
	Fs     afero.Fs
	Logger *slog.Logger
}

// Runner invokes the agent process.
type Runner struct {
	cfg Config
}

// NewRunner fills defaults into cfg.
func NewRunner(cfg Config) *Runner {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.Args == nil {
		cfg.Args = append([]string(nil), DefaultArgs...)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{cfg: cfg}
}

// Available reports whether the agent command can be found.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.cfg.Command)
	return err == nil
}

// Command returns the resolved command line for promptPath, for logging
// and dry runs.
func (r *Runner) Command(promptPath string) []string {
	args := make([]string, 0, len(r.cfg.Args)+1)
	args = append(args, r.cfg.Command)
	for _, a := range r.cfg.Args {
		args = append(args, strings.ReplaceAll(a, PromptFileToken, promptPath))
	}
	return args
}

// Run executes the agent with the prompt at promptPath on stdin. Output is
// streamed to the configured writers.
func (r *Runner) Run(ctx context.Context, promptPath string) error {
	prompt, err := afero.ReadFile(r.cfg.Fs, promptPath)
	if err != nil {
		return fmt.Errorf("read prompt %s: %w", promptPath, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	argv := r.Command(promptPath)
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = r.cfg.Dir
	cmd.Stdin = bytes.NewReader(prompt)
	cmd.Stdout = r.cfg.Stdout
	cmd.Stderr = r.cfg.Stderr
	cmd.WaitDelay = 5 * time.Second
	if len(r.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), r.cfg.Env...)
	}

	r.cfg.Logger.Info("starting agent", "command", argv[0], "prompt", promptPath, "timeout", r.cfg.Timeout)
	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w after %s", ErrTimeout, r.cfg.Timeout)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode(), Err: err}
		}
		return fmt.Errorf("run agent %s: %w", argv[0], err)
	}

	r.cfg.Logger.Info("agent finished", "elapsed", elapsed)
	return nil
}
