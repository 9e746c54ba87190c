package prompts

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPrompt(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/repo/.github/prp-template.md", []byte("Run /execute-prp $ARGUMENTS now"), 0644)

	tests := []struct {
		name         string
		key          PromptKey
		templateFile string
		want         string
		wantErr      bool
	}{
		{
			name: "default prompt",
			key:  KeyExecutePRP,
			want: ExecutePRPPrompt,
		},
		{
			name:         "whitespace template file uses default",
			key:          KeyExecutePRP,
			templateFile: "   ",
			want:         ExecutePRPPrompt,
		},
		{
			name:         "custom template",
			key:          KeyExecutePRP,
			templateFile: "/repo/.github/prp-template.md",
			want:         "Run /execute-prp $ARGUMENTS now",
		},
		{
			name:         "missing custom template",
			key:          KeyExecutePRP,
			templateFile: "/repo/missing.md",
			wantErr:      true,
		},
		{
			name:    "unknown key",
			key:     PromptKey("Nope"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetPrompt(fs, tt.key, tt.templateFile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultPromptHasSinglePlaceholder(t *testing.T) {
	assert.Equal(t, 1, strings.Count(ExecutePRPPrompt, Placeholder))
}
