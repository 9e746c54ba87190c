package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/josephgoksu/prpflow/internal/ghaction"
	"github.com/josephgoksu/prpflow/internal/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// commentInput collects the comment source flags shared by detect, resolve
// and implement.
type commentInput struct {
	comment         string
	commentFile     string
	eventPath       string
	issue           int
	allowPRComments bool
}

// commentRequest is the comment to process after all sources are merged.
type commentRequest struct {
	Body  string
	Issue int
	// Skip is set for events prpflow should not act on, such as comments on
	// pull requests.
	Skip bool
}

func addCommentFlags(cmd *cobra.Command, in *commentInput) {
	cmd.Flags().StringVar(&in.comment, "comment", "", "comment body to scan for a PRP reference")
	cmd.Flags().StringVar(&in.commentFile, "comment-file", "", "read the comment body from a file (- for stdin)")
	cmd.Flags().StringVar(&in.eventPath, "event", "", "GitHub event payload (default $GITHUB_EVENT_PATH)")
	cmd.Flags().IntVar(&in.issue, "issue", 0, "issue number the comment belongs to")
	cmd.Flags().BoolVar(&in.allowPRComments, "allow-pr-comments", false, "also act on comments made on pull requests")
}

// read merges the flags with the event payload. --comment and --issue win
// over values from the event.
func (in *commentInput) read(cmd *cobra.Command, fs afero.Fs) (*commentRequest, error) {
	req := &commentRequest{Issue: in.issue}

	switch {
	case cmd.Flags().Changed("comment"):
		req.Body = in.comment
	case in.commentFile != "":
		body, err := readCommentFile(cmd.InOrStdin(), fs, in.commentFile)
		if err != nil {
			return nil, err
		}
		req.Body = body
	}

	eventPath := in.eventPath
	if eventPath == "" {
		eventPath = os.Getenv(ghaction.EnvEventPath)
	}
	if eventPath != "" {
		ev, err := ghaction.ReadEvent(fs, eventPath)
		if err != nil {
			return nil, err
		}
		if !cmd.Flags().Changed("comment") && in.commentFile == "" {
			req.Body = ev.Comment.Body
		}
		if req.Issue == 0 {
			req.Issue = ev.Issue.Number
		}
		if ev.IsPullRequest() && !in.allowPRComments {
			slog.Info("ignoring comment on pull request", "issue", ev.Issue.Number, "user", ev.Comment.User.Login)
			req.Skip = true
		}
	} else if !cmd.Flags().Changed("comment") && in.commentFile == "" {
		return nil, usageErrorf("no comment given: use --comment, --comment-file or --event")
	}

	if req.Issue < 0 {
		return nil, usageErrorf("--issue must not be negative")
	}
	logger.SetComment(req.Body)
	return req, nil
}

func readCommentFile(stdin io.Reader, fs afero.Fs, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read comment from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", usageErrorf("read comment file: %v", err)
	}
	return string(data), nil
}
