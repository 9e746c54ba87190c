package ghaction

import (
	"strings"
	"testing"

	"github.com/josephgoksu/prpflow/internal/prp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issueCommentEvent = `{
  "action": "created",
  "comment": {
    "body": "Please implement PRPs/test-feature.md",
    "user": {"login": "octocat"},
    "author_association": "OWNER"
  },
  "issue": {"number": 123, "title": "Add test feature"}
}`

func TestReadEvent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/github/event.json", []byte(issueCommentEvent), 0o644))

	ev, err := ReadEvent(fs, "/github/event.json")
	require.NoError(t, err)
	assert.Equal(t, "Please implement PRPs/test-feature.md", ev.Comment.Body)
	assert.Equal(t, 123, ev.Issue.Number)
	assert.Equal(t, "octocat", ev.Comment.User.Login)
	assert.False(t, ev.IsPullRequest())
}

func TestReadEvent_PullRequestComment(t *testing.T) {
	fs := afero.NewMemMapFs()
	payload := `{"comment":{"body":"x"},"issue":{"number":4,"pull_request":{"url":"https://api.github.com/x"}}}`
	require.NoError(t, afero.WriteFile(fs, "/e.json", []byte(payload), 0o644))

	ev, err := ReadEvent(fs, "/e.json")
	require.NoError(t, err)
	assert.True(t, ev.IsPullRequest())
}

func TestReadEvent_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := ReadEvent(fs, "/missing.json")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte("{"), 0o644))
	_, err = ReadEvent(fs, "/bad.json")
	assert.Error(t, err)
}

func TestOutputs_Encode(t *testing.T) {
	out := NewOutputs().
		Set("found", "true").
		Set("prp_name", "test-feature").
		Set("found", "true")

	encoded, err := out.Encode()
	require.NoError(t, err)
	assert.Equal(t, "found=true\nprp_name=test-feature\n", encoded)
	assert.Equal(t, []string{"found", "prp_name"}, out.Keys())
}

func TestOutputs_EncodeMultiline(t *testing.T) {
	out := NewOutputs().Set("body", "line one\nline two")

	encoded, err := out.Encode()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(encoded, "\n"), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "body<<ghadelimiter_"))
	delim := strings.TrimPrefix(lines[0], "body<<")
	assert.Equal(t, "line one", lines[1])
	assert.Equal(t, "line two", lines[2])
	assert.Equal(t, delim, lines[3])
}

func TestOutputs_AppendTo(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out", []byte("earlier=1\n"), 0o644))

	require.NoError(t, NewOutputs().Set("found", "false").AppendTo(fs, "/out"))

	data, err := afero.ReadFile(fs, "/out")
	require.NoError(t, err)
	assert.Equal(t, "earlier=1\nfound=false\n", string(data))
}

func TestFromResult(t *testing.T) {
	out := FromResult(&prp.Result{Found: false})
	assert.Equal(t, []string{KeyFound}, out.Keys())
	v, _ := out.Get(KeyFound)
	assert.Equal(t, "false", v)

	out = FromResult(&prp.Result{
		Found:        true,
		Reference:    "PRPs/test-feature.md",
		Identifier:   "test-feature",
		Branch:       "implement/test-feature-1700000000",
		ArchivedPath: "PRPs/done/test-feature.md",
		PromptPath:   "/tmp/prp-prompt.md",
	})
	assert.Equal(t, []string{KeyFound, KeyPRPPath, KeyPRPName, KeyBranchName, KeyNewPath, KeyPromptPath}, out.Keys())
	assert.Equal(t, map[string]string{
		"found":       "true",
		"prp_path":    "PRPs/test-feature.md",
		"prp_name":    "test-feature",
		"branch_name": "implement/test-feature-1700000000",
		"new_path":    "PRPs/done/test-feature.md",
		"prompt_path": "/tmp/prp-prompt.md",
	}, out.Map())
}
