// Package ghaction reads GitHub Actions event payloads and writes step
// outputs.
package ghaction

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// Environment variables set by the Actions runner.
const (
	EnvEventPath = "GITHUB_EVENT_PATH"
	EnvOutput    = "GITHUB_OUTPUT"
)

// Event is the subset of an issue_comment payload prpflow reads.
type Event struct {
	Comment struct {
		Body string `json:"body"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
		AuthorAssociation string `json:"author_association"`
	} `json:"comment"`
	Issue struct {
		Number      int             `json:"number"`
		PullRequest json.RawMessage `json:"pull_request,omitempty"`
	} `json:"issue"`
}

// IsPullRequest reports whether the comment was made on a pull request
// rather than an issue.
func (e *Event) IsPullRequest() bool {
	return len(e.Issue.PullRequest) > 0 && string(e.Issue.PullRequest) != "null"
}

// ReadEvent decodes the payload at path.
func ReadEvent(fs afero.Fs, path string) (*Event, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read event %s: %w", path, err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", path, err)
	}
	return &ev, nil
}
