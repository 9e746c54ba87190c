/*
Package workspace provides the handle every prpflow operation runs against.

A workspace is a git checkout identified by its root directory. All task file
access goes through an afero.Fs rooted there, so relative references such as
PRPs/feature.md resolve against the checkout and cannot escape it.
*/
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Info contains information about the detected workspace
type Info struct {
	RootPath string // Absolute path of the checkout root
	HasGit   bool   // Whether a .git entry was found at RootPath
	Name     string // Base name of the root directory
}

// Detect walks up from basePath looking for a .git entry. If none is found
// basePath itself is the root; prpflow can still archive and render prompts
// outside git, only the git workflow needs a repository.
func Detect(fs afero.Fs, basePath string) (*Info, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	for dir := absPath; ; {
		if hasGitEntry(fs, dir) {
			return &Info{RootPath: dir, HasGit: true, Name: filepath.Base(dir)}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return &Info{RootPath: absPath, HasGit: false, Name: filepath.Base(absPath)}, nil
}

// hasGitEntry checks for .git as a directory or, for worktrees and
// submodules, a file.
func hasGitEntry(fs afero.Fs, path string) bool {
	_, err := fs.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// Workspace is an opened checkout.
type Workspace struct {
	Info
	// Fs is rooted at RootPath.
	Fs afero.Fs
}

// Open detects the checkout containing dir and returns a workspace rooted
// at it.
func Open(dir string) (*Workspace, error) {
	return OpenFs(afero.NewOsFs(), dir)
}

// OpenFs is Open over an arbitrary base filesystem.
func OpenFs(base afero.Fs, dir string) (*Workspace, error) {
	info, err := Detect(base, dir)
	if err != nil {
		return nil, fmt.Errorf("detect workspace: %w", err)
	}
	st, err := base.Stat(info.RootPath)
	if err != nil {
		return nil, fmt.Errorf("open workspace %s: %w", info.RootPath, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("open workspace %s: %w", info.RootPath, os.ErrInvalid)
	}
	return &Workspace{
		Info: *info,
		Fs:   afero.NewBasePathFs(base, info.RootPath),
	}, nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
