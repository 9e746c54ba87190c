package prp

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
)

// Mover archives task files into the done directory.
type Mover struct {
	fs     afero.Fs
	layout Layout
}

// NewMover creates a mover over a workspace-rooted filesystem.
func NewMover(fs afero.Fs, layout Layout) *Mover {
	return &Mover{fs: fs, layout: layout.withDefaults()}
}

// Move relocates ref to <DoneDir>/<identifier>.md and returns the new path.
// An existing archive is never overwritten: Move returns ErrArchiveExists
// and leaves both files in place.
func (m *Mover) Move(ref string) (string, error) {
	dest := m.layout.ArchivePath(ref)

	exists, err := afero.Exists(m.fs, dest)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", dest, err)
	}
	if exists {
		return "", fmt.Errorf("%s: %w", dest, ErrArchiveExists)
	}

	if err := m.fs.MkdirAll(m.layout.DoneDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", m.layout.DoneDir, err)
	}

	if err := m.fs.Rename(ref, dest); err != nil {
		// Rename fails across devices; copy instead.
		if copyErr := m.copyThenRemove(ref, dest); copyErr != nil {
			return "", fmt.Errorf("move %s to %s: %w (rename: %v)", ref, dest, copyErr, err)
		}
	}
	return dest, nil
}

// Plan returns the archive path for ref without touching the filesystem.
func (m *Mover) Plan(ref string) string {
	return m.layout.ArchivePath(ref)
}

func (m *Mover) copyThenRemove(src, dest string) error {
	info, err := m.fs.Stat(src)
	if err != nil {
		return err
	}
	data, err := afero.ReadFile(m.fs, src)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(m.fs, dest, data, info.Mode().Perm()); err != nil {
		_ = m.fs.Remove(dest)
		return err
	}

	written, err := afero.ReadFile(m.fs, dest)
	if err != nil || !bytes.Equal(written, data) {
		_ = m.fs.Remove(dest)
		if err == nil {
			err = fmt.Errorf("content mismatch after copy")
		}
		return err
	}
	return m.fs.Remove(src)
}
