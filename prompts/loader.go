package prompts

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// PromptKey is a type for identifying specific prompts.
type PromptKey string

const (
	// KeyExecutePRP is the key for the agent implementation prompt.
	KeyExecutePRP PromptKey = "ExecutePRP"
)

// promptConfig defines the default content for a prompt.
type promptConfig struct {
	defaultContent string
}

// promptRegistry maps a PromptKey to its configuration.
var promptRegistry = map[PromptKey]promptConfig{
	KeyExecutePRP: {
		defaultContent: ExecutePRPPrompt,
	},
}

// GetPrompt returns the content of templateFile when it is set and present
// in fs. An empty templateFile yields the built-in default for key. A
// configured templateFile that does not exist is an error: the caller asked
// for a specific template and silently falling back would hide a typo.
func GetPrompt(fs afero.Fs, key PromptKey, templateFile string) (string, error) {
	config, ok := promptRegistry[key]
	if !ok {
		return "", fmt.Errorf("unrecognized prompt key: %s", key)
	}

	if strings.TrimSpace(templateFile) == "" {
		return config.defaultContent, nil
	}

	content, err := afero.ReadFile(fs, templateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("prompt template %s not found: %w", templateFile, err)
		}
		return "", fmt.Errorf("failed to read prompt template at %s: %w", templateFile, err)
	}
	slog.Debug("using custom prompt template", "path", templateFile)
	return string(content), nil
}
