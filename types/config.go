/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose bool         `mapstructure:"verbose"`
	Config  string       `mapstructure:"config"`
	Workdir string       `mapstructure:"workdir"`
	Output  string       `mapstructure:"output" validate:"omitempty,oneof=text json yaml"`
	PRP     PRPConfig    `mapstructure:"prp" validate:"required"`
	Branch  BranchConfig `mapstructure:"branch" validate:"required"`
	Prompt  PromptConfig `mapstructure:"prompt" validate:"required"`
	Agent   AgentConfig  `mapstructure:"agent" validate:"required"`
	Git     GitConfig    `mapstructure:"git" validate:"required"`
	Lock    LockConfig   `mapstructure:"lock"`
	Log     LogConfig    `mapstructure:"log"`
}

// PRPConfig holds the task file layout, relative to the workspace root.
type PRPConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`

	// DoneDir defaults to <Dir>/done when empty.
	DoneDir string `mapstructure:"doneDir"`
}

// BranchConfig controls implementation branch naming.
type BranchConfig struct {
	Prefix string `mapstructure:"prefix" validate:"required"`

	// Suffix selects the uniqueness strategy appended after the identifier.
	// It is lowercased before validation.
	Suffix string `mapstructure:"suffix" validate:"required,oneof=timestamp uuid"`
}

// PromptConfig controls agent prompt rendering.
type PromptConfig struct {
	Placeholder string `mapstructure:"placeholder" validate:"required"`

	// TemplateFile is optional and relative to the workspace root.
	TemplateFile string `mapstructure:"templateFile"`

	// Output is a host path; it is not resolved against the workspace.
	Output string `mapstructure:"output" validate:"required"`
}

// AgentConfig describes the coding agent process.
type AgentConfig struct {
	Command string   `mapstructure:"command" validate:"required"`
	Args    []string `mapstructure:"args"`

	// TimeoutSeconds bounds a single agent run.
	TimeoutSeconds int `mapstructure:"timeoutSeconds" validate:"min=1,max=86400"`
}

// GitConfig holds remote and pull request settings.
type GitConfig struct {
	Remote string `mapstructure:"remote" validate:"required"`

	// Base is the pull request base branch. Empty means detect main/master.
	Base        string `mapstructure:"base"`
	AuthorName  string `mapstructure:"authorName"`
	AuthorEmail string `mapstructure:"authorEmail" validate:"omitempty,email"`
}

// LockConfig controls workspace serialisation.
type LockConfig struct {
	TimeoutSeconds int `mapstructure:"timeoutSeconds" validate:"min=0,max=3600"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}
