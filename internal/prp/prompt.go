package prp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/josephgoksu/prpflow/prompts"
	"github.com/spf13/afero"
)

// DefaultPromptOutput is the scratch file the agent reads its prompt from.
const DefaultPromptOutput = "/tmp/prp-prompt.md"

// Render substitutes value for the single occurrence of placeholder in
// template. Zero or several occurrences are errors so a broken template
// never reaches the agent unsubstituted.
func Render(template, placeholder, value string) (string, error) {
	if placeholder == "" {
		placeholder = prompts.Placeholder
	}
	switch n := strings.Count(template, placeholder); {
	case n == 0:
		return "", fmt.Errorf("%q: %w", placeholder, ErrPlaceholderMissing)
	case n > 1:
		return "", fmt.Errorf("%q found %d times: %w", placeholder, n, ErrPlaceholderAmbiguous)
	}
	return strings.Replace(template, placeholder, value, 1), nil
}

// PromptBuilder renders the agent prompt and writes it to a scratch file.
type PromptBuilder struct {
	workspace    afero.Fs
	scratch      afero.Fs
	placeholder  string
	templateFile string
	output       string
}

// PromptOptions configures a PromptBuilder. Zero values select defaults.
type PromptOptions struct {
	Placeholder string
	// TemplateFile is read from the workspace filesystem.
	TemplateFile string
	// Output is written to the scratch filesystem.
	Output string
}

// NewPromptBuilder creates a builder. workspace is rooted at the checkout;
// scratch is where the rendered prompt is written (the host filesystem in
// production).
func NewPromptBuilder(workspace, scratch afero.Fs, opts PromptOptions) *PromptBuilder {
	if opts.Placeholder == "" {
		opts.Placeholder = prompts.Placeholder
	}
	if opts.Output == "" {
		opts.Output = DefaultPromptOutput
	}
	return &PromptBuilder{
		workspace:    workspace,
		scratch:      scratch,
		placeholder:  opts.Placeholder,
		templateFile: opts.TemplateFile,
		output:       opts.Output,
	}
}

// Output returns the scratch path the prompt is written to.
func (b *PromptBuilder) Output() string {
	return b.output
}

// Prompt loads the template and renders it for archivedPath.
func (b *PromptBuilder) Prompt(archivedPath string) (string, error) {
	tmpl, err := prompts.GetPrompt(b.workspace, prompts.KeyExecutePRP, b.templateFile)
	if err != nil {
		return "", err
	}
	return Render(tmpl, b.placeholder, archivedPath)
}

// Build renders the prompt for archivedPath and writes it to Output.
func (b *PromptBuilder) Build(archivedPath string) (string, error) {
	content, err := b.Prompt(archivedPath)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(b.output); dir != "." && dir != "" {
		if err := b.scratch.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(b.scratch, b.output, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write prompt %s: %w", b.output, err)
	}
	return b.output, nil
}
