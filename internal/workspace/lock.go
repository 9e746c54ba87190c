package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFileName  = "prpflow.lock"
	lockRetryWait = 250 * time.Millisecond
)

// ErrLocked is returned when another run holds the workspace lock past the
// timeout.
var ErrLocked = errors.New("workspace is locked by another prpflow run")

// Lock is an exclusive advisory lock serialising runs against one checkout.
type Lock struct {
	flk *flock.Flock
}

// LockPath returns where the lock file lives: inside the git directory when
// the workspace is a repository so it never shows up as an untracked file.
func (w *Workspace) LockPath() string {
	if gitDir, ok := w.gitDir(); ok {
		return filepath.Join(gitDir, lockFileName)
	}
	return filepath.Join(w.RootPath, "."+lockFileName)
}

// gitDir resolves the repository metadata directory. In worktrees and
// submodules .git is a file containing "gitdir: <path>".
func (w *Workspace) gitDir() (string, bool) {
	if !w.HasGit {
		return "", false
	}
	dotGit := filepath.Join(w.RootPath, ".git")
	if isDir(dotGit) {
		return dotGit, true
	}

	data, err := os.ReadFile(dotGit)
	if err != nil {
		return "", false
	}
	target, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:")
	if !ok {
		return "", false
	}
	target = filepath.FromSlash(strings.TrimSpace(target))
	if !filepath.IsAbs(target) {
		target = filepath.Join(w.RootPath, target)
	}
	if !isDir(target) {
		return "", false
	}
	return filepath.Clean(target), true
}

// Lock acquires the workspace lock, waiting up to timeout. A zero timeout
// tries once.
func (w *Workspace) Lock(ctx context.Context, timeout time.Duration) (*Lock, error) {
	flk := flock.New(w.LockPath())

	if timeout <= 0 {
		ok, err := flk.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", flk.Path(), err)
		}
		if !ok {
			return nil, ErrLocked
		}
		return &Lock{flk: flk}, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ok, err := flk.TryLockContext(lockCtx, lockRetryWait)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("lock %s: %w", flk.Path(), err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{flk: flk}, nil
}

// Unlock releases the lock. Safe on a nil Lock.
func (l *Lock) Unlock() error {
	if l == nil || l.flk == nil {
		return nil
	}
	return l.flk.Unlock()
}
