package prp

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/afero"
)

// Request is a single comment to resolve.
type Request struct {
	Comment     string
	IssueNumber int
	// DryRun computes every output without moving files or writing the prompt.
	DryRun bool
}

// Result carries the outputs handed to the rest of the workflow.
type Result struct {
	Found        bool   `json:"found" yaml:"found"`
	Reference    string `json:"prp_path,omitempty" yaml:"prp_path,omitempty"`
	Identifier   string `json:"prp_name,omitempty" yaml:"prp_name,omitempty"`
	Branch       string `json:"branch_name,omitempty" yaml:"branch_name,omitempty"`
	ArchivedPath string `json:"new_path,omitempty" yaml:"new_path,omitempty"`
	PromptPath   string `json:"prompt_path,omitempty" yaml:"prompt_path,omitempty"`
	IssueNumber  int    `json:"issue_number,omitempty" yaml:"issue_number,omitempty"`
	DryRun       bool   `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// Options configures a Resolver. Zero values select defaults.
type Options struct {
	Layout       Layout
	BranchPrefix string
	Suffix       SuffixStrategy
	Prompt       PromptOptions
	// Scratch receives the rendered prompt. Defaults to the OS filesystem.
	Scratch afero.Fs
	Clock   func() time.Time
	Logger  *slog.Logger
}

// Resolver runs Extract → Validate → Name → Move → Build Prompt.
//
// It takes no locks. Callers running several resolutions against one
// checkout serialise them; see workspace.Lock.
type Resolver struct {
	extractor *Extractor
	validator *Validator
	namer     *Namer
	mover     *Mover
	prompts   *PromptBuilder
	logger    *slog.Logger
}

// NewResolver wires the pipeline over a workspace-rooted filesystem.
func NewResolver(fs afero.Fs, opts Options) *Resolver {
	layout := opts.Layout.withDefaults()
	scratch := opts.Scratch
	if scratch == nil {
		scratch = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	namer := NewNamer(opts.BranchPrefix, opts.Suffix)
	if opts.Clock != nil {
		namer.WithClock(opts.Clock)
	}
	return &Resolver{
		extractor: NewExtractor(layout.Dir),
		validator: NewValidator(fs),
		namer:     namer,
		mover:     NewMover(fs, layout),
		prompts:   NewPromptBuilder(fs, scratch, opts.Prompt),
		logger:    logger,
	}
}

// Namer exposes the branch namer so the git workflow can ask for a fresh
// name when the first one already exists.
func (r *Resolver) Namer() *Namer {
	return r.namer
}

// Prompts exposes the prompt builder.
func (r *Resolver) Prompts() *PromptBuilder {
	return r.prompts
}

// Detect runs Extract and Validate only.
func (r *Resolver) Detect(comment string) (*Result, error) {
	ref, ok := r.extractor.Extract(comment)
	if !ok {
		r.logger.Info("no PRP reference found in comment")
		return &Result{Found: false}, nil
	}
	r.logger.Debug("extracted PRP reference", "ref", ref)

	if err := r.validator.Validate(ref); err != nil {
		return nil, &StepError{Step: "validate", Ref: ref, Err: err}
	}
	return &Result{
		Found:      true,
		Reference:  ref,
		Identifier: Identifier(ref),
	}, nil
}

// Resolve runs the full pipeline. A comment without a reference returns
// Result{Found: false} and a nil error.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	res, err := r.Detect(req.Comment)
	if err != nil || !res.Found {
		return res, err
	}
	res.IssueNumber = req.IssueNumber
	res.DryRun = req.DryRun

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Branch = r.namer.Branch(res.Identifier)

	// Check the template before moving anything so a bad template leaves
	// the task file pending.
	if _, err := r.prompts.Prompt(r.mover.Plan(res.Reference)); err != nil {
		return nil, &StepError{Step: "prompt", Ref: res.Reference, Err: err}
	}

	if req.DryRun {
		res.ArchivedPath = r.mover.Plan(res.Reference)
		res.PromptPath = r.prompts.Output()
		r.logger.Info("dry run resolved PRP", "ref", res.Reference, "branch", res.Branch)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	archived, err := r.mover.Move(res.Reference)
	if err != nil {
		return nil, &StepError{Step: "move", Ref: res.Reference, Err: err}
	}
	res.ArchivedPath = archived
	r.logger.Info("archived PRP", "from", res.Reference, "to", archived)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	promptPath, err := r.prompts.Build(archived)
	if err != nil {
		return nil, &StepError{Step: "prompt", Ref: archived, Err: err}
	}
	res.PromptPath = promptPath
	r.logger.Info("wrote agent prompt", "path", promptPath, "branch", res.Branch, "issue", req.IssueNumber)

	return res, nil
}
