package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// seqNamer hands out implement/<id>-<n> with n counting up from 1.
type seqNamer struct {
	next int
}

func (s *seqNamer) Branch(identifier string) string {
	s.next++
	return fmt.Sprintf("implement/%s-%d", identifier, s.next)
}

func repoMock() *MockCommander {
	m := NewMockCommander()
	m.SetResponse("git --version", "git version 2.40.0", nil)
	m.SetResponse("git rev-parse --is-inside-work-tree", "true", nil)
	m.SetResponse("git rev-parse --abbrev-ref HEAD", "main", nil)
	return m
}

func TestStartImplementation(t *testing.T) {
	existsErr := errors.New("exit status 128: fatal: a branch named 'x' already exists")

	tests := []struct {
		name         string
		setup        func(*MockCommander)
		wantBranch   string
		wantAttempts int
		wantErr      error
	}{
		{
			name: "first name free",
			setup: func(m *MockCommander) {
				m.SetResponse("git checkout -b implement/feat-100", "", nil)
			},
			wantBranch:   "implement/feat-100",
			wantAttempts: 1,
		},
		{
			name: "local collision retries with fresh name",
			setup: func(m *MockCommander) {
				m.SetResponse("git checkout -b implement/feat-100", "", existsErr)
			},
			wantBranch:   "implement/feat-1",
			wantAttempts: 2,
		},
		{
			name: "remote collision retries with fresh name",
			setup: func(m *MockCommander) {
				m.SetResponse("git ls-remote --heads origin implement/feat-100", "abc\trefs/heads/implement/feat-100", nil)
			},
			wantBranch:   "implement/feat-1",
			wantAttempts: 2,
		},
		{
			name: "gives up after max attempts",
			setup: func(m *MockCommander) {
				m.SetResponse("git checkout -b implement/feat-100", "", existsErr)
				for i := 1; i <= maxBranchAttempts; i++ {
					m.SetResponse(fmt.Sprintf("git checkout -b implement/feat-%d", i), "", existsErr)
				}
			},
			wantErr: ErrBranchExists,
		},
		{
			name: "not a repository",
			setup: func(m *MockCommander) {
				m.SetResponse("git rev-parse --is-inside-work-tree", "", errors.New("fatal"))
			},
			wantErr: ErrNotGitRepository,
		},
		{
			name: "git missing",
			setup: func(m *MockCommander) {
				m.SetResponse("git --version", "", errors.New("not found"))
			},
			wantErr: ErrGitNotInstalled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := repoMock()
			tt.setup(mock)
			client := NewClientWithCommander("/repo", mock)

			result, err := client.StartImplementation(context.Background(), "implement/feat-100", "feat", "origin", &seqNamer{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("StartImplementation() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("StartImplementation() error = %v", err)
			}
			if result.BranchName != tt.wantBranch {
				t.Errorf("BranchName = %q, want %q", result.BranchName, tt.wantBranch)
			}
			if result.Attempts != tt.wantAttempts {
				t.Errorf("Attempts = %d, want %d", result.Attempts, tt.wantAttempts)
			}
			if result.PreviousBranch != "main" {
				t.Errorf("PreviousBranch = %q, want main", result.PreviousBranch)
			}
		})
	}
}

func TestStartImplementation_NoNamerFailsOnCollision(t *testing.T) {
	mock := repoMock()
	mock.SetResponse("git checkout -b implement/feat-100", "", errors.New("fatal: a branch named 'implement/feat-100' already exists"))
	client := NewClientWithCommander("/repo", mock)

	_, err := client.StartImplementation(context.Background(), "implement/feat-100", "feat", "", nil)
	if !errors.Is(err, ErrBranchExists) {
		t.Fatalf("error = %v, want ErrBranchExists", err)
	}
}

func TestCommitArchive(t *testing.T) {
	mock := NewMockCommander()
	client := NewClientWithCommander("/repo", mock)

	err := client.CommitArchive(context.Background(), "PRPs/test-feature.md", "PRPs/done/test-feature.md", "test-feature", 123)
	if err != nil {
		t.Fatalf("CommitArchive() error = %v", err)
	}
	if !mock.Called("git add -A -- PRPs/test-feature.md PRPs/done/test-feature.md") {
		t.Error("expected both paths to be staged")
	}
	if !mock.Called("git commit -m chore: archive PRP test-feature (#123)") {
		t.Errorf("unexpected commit, calls: %v", mock.Calls)
	}
}

func TestCommitImplementation(t *testing.T) {
	tests := []struct {
		name       string
		staged     string
		wantErr    error
		wantCommit bool
	}{
		{name: "changes committed", staged: "main.go", wantCommit: true},
		{name: "agent changed nothing", staged: "", wantErr: ErrNothingToCommit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCommander()
			mock.SetResponse("git diff --cached --name-only", tt.staged, nil)
			client := NewClientWithCommander("/repo", mock)

			err := client.CommitImplementation(context.Background(), "test-feature", 7)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CommitImplementation() error = %v, want %v", err, tt.wantErr)
			}
			committed := mock.Called("git commit -m feat: implement test-feature\n\nRefs #7")
			if committed != tt.wantCommit {
				t.Errorf("committed = %v, want %v", committed, tt.wantCommit)
			}
		})
	}
}

func TestCommitMessages(t *testing.T) {
	if got := ArchiveCommitMessage("x", 0); got != "chore: archive PRP x" {
		t.Errorf("ArchiveCommitMessage() = %q", got)
	}
	if got := ImplementationCommitMessage("x", 0); got != "feat: implement x" {
		t.Errorf("ImplementationCommitMessage() = %q", got)
	}
}

func TestGeneratePRBody(t *testing.T) {
	body := GeneratePRBody(PRRequest{
		Reference:    "PRPs/test-feature.md",
		ArchivedPath: "PRPs/done/test-feature.md",
		Issue:        123,
	})

	for _, want := range []string{
		"Implements PRPs/test-feature.md",
		"`PRPs/done/test-feature.md`",
		"Closes #123",
		"Generated by prpflow",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("GeneratePRBody() missing %q in:\n%s", want, body)
		}
	}

	noIssue := GeneratePRBody(PRRequest{Reference: "PRPs/a.md"})
	if strings.Contains(noIssue, "Closes") {
		t.Errorf("GeneratePRBody() without issue should not close anything:\n%s", noIssue)
	}
}

func TestOpenPullRequest(t *testing.T) {
	mock := NewMockCommander()
	mock.SetResponse("git symbolic-ref refs/remotes/origin/HEAD", "refs/remotes/origin/main", nil)
	body := GeneratePRBody(PRRequest{Reference: "PRPs/x.md", Issue: 5})
	mock.SetResponse("gh pr create --title Implement x --body "+body+" --base main --head implement/x-1",
		"https://github.com/acme/repo/pull/10", nil)
	client := NewClientWithCommander("/repo", mock)

	info, err := client.OpenPullRequest(context.Background(), PRRequest{
		Branch:     "implement/x-1",
		Identifier: "x",
		Reference:  "PRPs/x.md",
		Issue:      5,
	})
	if err != nil {
		t.Fatalf("OpenPullRequest() error = %v", err)
	}
	if !mock.Called("git push -u origin implement/x-1") {
		t.Error("expected branch push with upstream")
	}
	if info.URL != "https://github.com/acme/repo/pull/10" {
		t.Errorf("URL = %q", info.URL)
	}
	if info.Base != "main" || info.Title != "Implement x" {
		t.Errorf("unexpected PR info: %+v", info)
	}
}

func TestOpenPullRequest_PushFailureStops(t *testing.T) {
	mock := NewMockCommander()
	mock.SetResponse("git push -u origin implement/x-1", "", errors.New("permission denied"))
	client := NewClientWithCommander("/repo", mock)

	_, err := client.OpenPullRequest(context.Background(), PRRequest{Base: "main", Branch: "implement/x-1", Identifier: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, c := range mock.Calls {
		if c.Name == "gh" && len(c.Args) > 0 && c.Args[0] == "pr" {
			t.Error("gh pr create must not run after a failed push")
		}
	}
}
