package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigName(".sonarstash")
	v.SetConfigType("yaml")

	// Search paths in order of priority
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	v.AddConfigPath("/etc/sonarstash")

	// Environment variable support: SONARSTASH_STASH_URL -> stash.url
	v.SetEnvPrefix("SONARSTASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// SetConfigFile sets a specific config file to use.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
	l.v.SetConfigFile(path)
}

// Load loads the configuration from all sources.
// Priority (highest to lowest):
// 1. Explicit config file (if set via SetConfigFile)
// 2. Environment variables (SONARSTASH_*)
// 3. Config file from search paths (.sonarstash.yaml)
// 4. Default values
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	l.setDefaults(cfg)

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env apply.
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults sets all default values in viper.
func (l *Loader) setDefaults(cfg *Config) {
	l.v.SetDefault("stash.notification", cfg.Stash.Notification)
	l.v.SetDefault("stash.timeout_ms", cfg.Stash.TimeoutMS)
	l.v.SetDefault("stash.issue_threshold", cfg.Stash.IssueThreshold)
	l.v.SetDefault("stash.reset_comments", cfg.Stash.ResetComments)
	l.v.SetDefault("stash.reviewer_approval", cfg.Stash.ReviewerApproval)
	l.v.SetDefault("stash.approval_severity_threshold", cfg.Stash.ApprovalSeverityThreshold)
	l.v.SetDefault("stash.include_analysis_overview", cfg.Stash.IncludeAnalysisOverview)

	l.v.SetDefault("sonar.languages", cfg.Sonar.Languages)
	l.v.SetDefault("sonar.rule_types", cfg.Sonar.RuleTypes)
	l.v.SetDefault("sonar.report_code_smells", cfg.Sonar.ReportCodeSmells)

	l.v.SetDefault("log.level", cfg.Log.Level)
}

// BindFlag binds a command-line flag to a configuration key. Bound flags
// take precedence over environment variables and the config file.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind to %q", key)
	}
	return l.v.BindPFlag(key, flag)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	loader := NewLoader()
	loader.SetConfigFile(path)
	return loader.Load()
}

// LoadDefault loads configuration with default search paths.
func LoadDefault() (*Config, error) {
	loader := NewLoader()
	return loader.Load()
}
