package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/josephgoksu/prpflow/internal/agent"
	"github.com/josephgoksu/prpflow/internal/prp"
	"github.com/josephgoksu/prpflow/prompts"
	"github.com/josephgoksu/prpflow/types"
	"github.com/spf13/viper"
)

const (
	configName = ".prpflow"
	envPrefix  = "PRPFLOW"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single instance of Validate, it caches struct info
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// setDefaults registers every configuration key so env overrides work for
// keys that appear in no config file.
func setDefaults() {
	viper.SetDefault("workdir", ".")
	viper.SetDefault("output", "text")

	viper.SetDefault("prp.dir", prp.DefaultDir)
	// Empty derives <prp.dir>/done.
	viper.SetDefault("prp.doneDir", "")

	viper.SetDefault("branch.prefix", prp.DefaultBranchPrefix)
	viper.SetDefault("branch.suffix", string(prp.SuffixTimestamp))

	viper.SetDefault("prompt.placeholder", prompts.Placeholder)
	viper.SetDefault("prompt.templateFile", "")
	viper.SetDefault("prompt.output", prp.DefaultPromptOutput)

	viper.SetDefault("agent.command", agent.DefaultCommand)
	viper.SetDefault("agent.args", agent.DefaultArgs)
	viper.SetDefault("agent.timeoutSeconds", int(agent.DefaultTimeout.Seconds()))

	viper.SetDefault("git.remote", "origin")
	viper.SetDefault("git.base", "")
	viper.SetDefault("git.authorName", "")
	viper.SetDefault("git.authorEmail", "")

	viper.SetDefault("lock.timeoutSeconds", 120)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// InitConfig reads in config file and ENV variables if set, then unmarshals
// and validates GlobalAppConfig.
func InitConfig() error {
	// It's okay if .env file doesn't exist.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)                          // e.g., PRPFLOW_VERBOSE
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // PRPFLOW_AGENT_COMMAND
	viper.AutomaticEnv()

	setDefaults()

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		viper.SetConfigName(configName)
		viper.AddConfigPath(viper.GetString("workdir"))
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			slog.Debug("no config file found, using defaults and environment")
		case cfgFileFlag != "" && errors.Is(err, os.ErrNotExist):
			return usageErrorf("config file not found: %s", cfgFileFlag)
		default:
			return usageErrorf("read config %s: %v", viper.ConfigFileUsed(), err)
		}
	} else {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	}

	var cfg types.AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return usageErrorf("unmarshal config: %v", err)
	}
	normalizeAppConfig(&cfg)
	if err := validateAppConfig(&cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	GlobalAppConfig = cfg
	return nil
}

// normalizeAppConfig lowercases the enum-like keys so UUID and uuid are the
// same value, matching how the resolver and logger parse them.
func normalizeAppConfig(config *types.AppConfig) {
	for _, v := range []*string{
		&config.Branch.Suffix,
		&config.Output,
		&config.Log.Level,
		&config.Log.Format,
	} {
		*v = strings.ToLower(strings.TrimSpace(*v))
	}
}

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(config *types.AppConfig) error {
	if err := validate.Struct(config); err != nil {
		return err
	}
	if strings.TrimSpace(config.Prompt.Placeholder) == "" {
		return usageErrorf("prompt.placeholder must not be blank")
	}
	return nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}
