package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/josephgoksu/prpflow/internal/logger"
	"github.com/josephgoksu/prpflow/internal/prp"
	"github.com/josephgoksu/prpflow/internal/workspace"
	"github.com/spf13/afero"
)

// hostFs is the filesystem used for paths outside the workspace: the
// event payload, $GITHUB_OUTPUT and the prompt scratch file.
var hostFs afero.Fs = afero.NewOsFs()

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// openWorkspace opens the checkout named by --workdir and points crash
// logs at it.
func openWorkspace() (*workspace.Workspace, error) {
	cfg := GetConfig()
	dir := cfg.Workdir
	if dir == "" {
		dir = "."
	}
	ws, err := workspace.OpenFs(hostFs, dir)
	if err != nil {
		return nil, usageErrorf("open workdir %s: %v", dir, err)
	}
	logger.SetBasePath(filepath.Join(ws.RootPath, ".prpflow"))
	slog.Debug("opened workspace", "root", ws.RootPath, "git", ws.HasGit)
	return ws, nil
}

// lockWorkspace takes the advisory lock for the configured timeout.
func lockWorkspace(ctx context.Context, ws *workspace.Workspace) (*workspace.Lock, error) {
	timeout := time.Duration(GetConfig().Lock.TimeoutSeconds) * time.Second
	lock, err := ws.Lock(ctx, timeout)
	if err != nil {
		return nil, err
	}
	slog.Debug("acquired workspace lock", "path", ws.LockPath())
	return lock, nil
}

// newResolver builds a resolver from the loaded configuration.
func newResolver(ws *workspace.Workspace) (*prp.Resolver, error) {
	cfg := GetConfig()
	suffix, err := prp.ParseSuffixStrategy(cfg.Branch.Suffix)
	if err != nil {
		return nil, &UsageError{Err: err}
	}
	return prp.NewResolver(ws.Fs, prp.Options{
		Layout:       prp.Layout{Dir: cfg.PRP.Dir, DoneDir: cfg.PRP.DoneDir},
		BranchPrefix: cfg.Branch.Prefix,
		Suffix:       suffix,
		Prompt: prp.PromptOptions{
			Placeholder:  cfg.Prompt.Placeholder,
			TemplateFile: cfg.Prompt.TemplateFile,
			Output:       cfg.Prompt.Output,
		},
		Scratch: hostFs,
		Logger:  slog.Default(),
	}), nil
}
