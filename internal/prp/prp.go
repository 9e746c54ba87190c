// Package prp resolves a Product Requirement Prompt (PRP) referenced in free
// text into an archived task file, a branch name, and an agent prompt.
//
// Every filesystem operation goes through an afero.Fs rooted at the
// workspace, so references are always interpreted relative to the checkout
// the caller passed in, never the process working directory.
package prp

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Default layout, relative to the workspace root.
const (
	DefaultDir     = "PRPs"
	DefaultDoneDir = "PRPs/done"
	fileExt        = ".md"
)

// Errors returned by the resolver steps. None of them mean "no reference";
// that outcome is reported through Result.Found.
var (
	ErrTaskFileMissing      = errors.New("referenced PRP file does not exist")
	ErrNotAFile             = errors.New("referenced PRP path is not a regular file")
	ErrOutsideWorkspace     = errors.New("PRP reference escapes the workspace")
	ErrArchiveExists        = errors.New("archived PRP already exists")
	ErrPlaceholderMissing   = errors.New("prompt template does not contain the placeholder")
	ErrPlaceholderAmbiguous = errors.New("prompt template contains the placeholder more than once")
)

// Layout describes where pending and archived PRPs live.
type Layout struct {
	Dir     string
	DoneDir string
}

// DefaultLayout returns the PRPs/ and PRPs/done/ layout.
func DefaultLayout() Layout {
	return Layout{Dir: DefaultDir, DoneDir: DefaultDoneDir}
}

func (l Layout) withDefaults() Layout {
	if strings.TrimSpace(l.Dir) == "" {
		l.Dir = DefaultDir
	}
	if strings.TrimSpace(l.DoneDir) == "" {
		l.DoneDir = path.Join(l.Dir, "done")
	}
	l.Dir = strings.TrimSuffix(path.Clean(l.Dir), "/")
	l.DoneDir = strings.TrimSuffix(path.Clean(l.DoneDir), "/")
	return l
}

// ArchivePath returns where ref lands once archived.
func (l Layout) ArchivePath(ref string) string {
	return path.Join(l.withDefaults().DoneDir, Identifier(ref)+fileExt)
}

// Identifier returns the file stem of a reference: PRPs/test-feature.md
// becomes test-feature.
func Identifier(ref string) string {
	return strings.TrimSuffix(path.Base(ref), fileExt)
}

// StepError records which resolver step failed.
type StepError struct {
	Step string
	Ref  string
	Err  error
}

func (e *StepError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Step, e.Ref, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsTaskFailure reports whether err is one of the hard failures caused by
// the task file or template rather than the environment.
func IsTaskFailure(err error) bool {
	for _, target := range []error{
		ErrTaskFileMissing,
		ErrNotAFile,
		ErrOutsideWorkspace,
		ErrArchiveExists,
		ErrPlaceholderMissing,
		ErrPlaceholderAmbiguous,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
