package ghaction

import (
	"strconv"

	"github.com/josephgoksu/prpflow/internal/prp"
)

// Output keys consumed by downstream workflow steps.
const (
	KeyFound      = "found"
	KeyPRPPath    = "prp_path"
	KeyPRPName    = "prp_name"
	KeyBranchName = "branch_name"
	KeyNewPath    = "new_path"
	KeyPromptPath = "prompt_path"
	KeyPRURL      = "pr_url"
)

// FromResult maps a resolver result onto step outputs. Empty fields are
// omitted so a detect-only run emits just found, prp_path and prp_name.
func FromResult(res *prp.Result) *Outputs {
	out := NewOutputs()
	out.Set(KeyFound, strconv.FormatBool(res != nil && res.Found))
	if res == nil || !res.Found {
		return out
	}
	setIf(out, KeyPRPPath, res.Reference)
	setIf(out, KeyPRPName, res.Identifier)
	setIf(out, KeyBranchName, res.Branch)
	setIf(out, KeyNewPath, res.ArchivedPath)
	setIf(out, KeyPromptPath, res.PromptPath)
	return out
}

func setIf(out *Outputs, key, value string) {
	if value != "" {
		out.Set(key, value)
	}
}
