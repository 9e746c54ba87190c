package prp

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Validator checks that a reference names a task file in the workspace.
type Validator struct {
	fs afero.Fs
}

// NewValidator creates a validator over a workspace-rooted filesystem.
func NewValidator(fs afero.Fs) *Validator {
	return &Validator{fs: fs}
}

// Validate returns nil when ref is an existing regular file. A reference
// that was extracted but points nowhere is ErrTaskFileMissing.
func (v *Validator) Validate(ref string) error {
	if escapesRoot(ref) {
		return fmt.Errorf("%s: %w", ref, ErrOutsideWorkspace)
	}

	info, err := v.fs.Stat(ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", ref, ErrTaskFileMissing)
		}
		return fmt.Errorf("stat %s: %w", ref, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", ref, ErrNotAFile)
	}
	return nil
}

// escapesRoot reports whether a slash-separated relative reference leaves
// the workspace once cleaned.
func escapesRoot(ref string) bool {
	cleaned := path.Clean(ref)
	return cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned)
}
