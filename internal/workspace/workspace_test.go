package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_FindsGitRootFromSubdir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	sub := filepath.Join(dir, "PRPs", "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	info, err := Detect(afero.NewOsFs(), sub)
	require.NoError(t, err)
	assert.Equal(t, dir, info.RootPath)
	assert.True(t, info.HasGit)
	assert.Equal(t, filepath.Base(dir), info.Name)
}

func TestDetect_GitFileCountsAsRepository(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: ../main/.git/worktrees/x\n"), 0o644))

	info, err := Detect(afero.NewOsFs(), dir)
	require.NoError(t, err)
	assert.True(t, info.HasGit)
}

func TestDetect_InMemory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src/app/.git", 0o755))
	require.NoError(t, fs.MkdirAll("/src/app/PRPs", 0o755))

	info, err := Detect(fs, "/src/app/PRPs")
	require.NoError(t, err)
	assert.Equal(t, "/src/app", info.RootPath)
}

func TestOpen_RootsFilesystem(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "PRPs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "PRPs", "a.md"), []byte("a"), 0o644))

	ws, err := Open(dir)
	require.NoError(t, err)

	data, err := afero.ReadFile(ws.Fs, "PRPs/a.md")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	_, err = ws.Fs.Stat("../outside.md")
	assert.Error(t, err)
}

func TestLock_SecondHolderTimesOut(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	ws, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".git", "prpflow.lock"), ws.LockPath())

	first, err := ws.Lock(context.Background(), time.Second)
	require.NoError(t, err)

	_, err = ws.Lock(context.Background(), 0)
	assert.True(t, errors.Is(err, ErrLocked), "got %v", err)

	_, err = ws.Lock(context.Background(), 300*time.Millisecond)
	assert.True(t, errors.Is(err, ErrLocked), "got %v", err)

	require.NoError(t, first.Unlock())

	second, err := ws.Lock(context.Background(), time.Second)
	require.NoError(t, err)
	assert.NoError(t, second.Unlock())
}

func TestLockPath_WithoutGit(t *testing.T) {
	dir := t.TempDir()
	ws, err := Open(dir)
	require.NoError(t, err)
	assert.False(t, ws.HasGit)
	assert.Equal(t, filepath.Join(dir, ".prpflow.lock"), ws.LockPath())
}

func TestLockPath_WorktreeUsesGitDir(t *testing.T) {
	base := t.TempDir()
	gitDir := filepath.Join(base, "main", ".git", "worktrees", "feature")
	require.NoError(t, os.MkdirAll(gitDir, 0o755))
	wt := filepath.Join(base, "feature")
	require.NoError(t, os.MkdirAll(wt, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(wt, ".git"), []byte("gitdir: ../main/.git/worktrees/feature\n"), 0o644))

	ws, err := Open(wt)
	require.NoError(t, err)
	assert.True(t, ws.HasGit)
	assert.Equal(t, filepath.Join(gitDir, "prpflow.lock"), ws.LockPath())

	lock, err := ws.Lock(context.Background(), 0)
	require.NoError(t, err)
	require.NoError(t, lock.Unlock())

	_, err = os.Stat(filepath.Join(wt, ".prpflow.lock"))
	assert.True(t, os.IsNotExist(err), "lock must not land in the worktree")
}

func TestLockPath_UnreadableGitFileFallsBackToRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("not a gitdir pointer"), 0o644))

	ws, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".prpflow.lock"), ws.LockPath())
}

func TestUnlock_NilSafe(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Unlock())
}
