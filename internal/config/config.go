// Package config handles all configuration management for sonarstash.
//
// Configuration is loaded from multiple sources in order of precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (SONARSTASH_*)
// 3. Configuration file (.sonarstash.yaml)
// 4. Default values (lowest priority)
package config

import (
	"time"

	"github.com/sonarstash/sonarstash/internal/sonar"
)

// Config is the main configuration structure for sonarstash.
type Config struct {
	// Stash configures the pull-request side: server, credentials and
	// decoration behavior.
	Stash StashConfig `mapstructure:"stash" yaml:"stash"`

	// Sonar configures the SonarQube side: server, project and catalog
	// filters.
	Sonar SonarConfig `mapstructure:"sonar" yaml:"sonar"`

	// Log configures logging.
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// StashConfig configures the Stash/Bitbucket Server collaborator.
type StashConfig struct {
	// Notification enables the whole run. When false, a run is a no-op.
	Notification bool `mapstructure:"notification" yaml:"notification"`

	// URL is the Stash server base URL.
	URL string `mapstructure:"url" yaml:"url"`

	// Login and Password authenticate the reviewer account.
	Login    string `mapstructure:"login" yaml:"login"`
	Password string `mapstructure:"password" yaml:"password"`

	// TimeoutMS is the transport timeout in milliseconds for every Stash
	// call.
	TimeoutMS int `mapstructure:"timeout_ms" yaml:"timeout_ms"`

	// IssueThreshold suppresses inline comments when the report reaches
	// this many issues.
	IssueThreshold int `mapstructure:"issue_threshold" yaml:"issue_threshold"`

	// ResetComments deletes comments left by earlier runs before posting.
	ResetComments bool `mapstructure:"reset_comments" yaml:"reset_comments"`

	// ReviewerApproval lets the tool approve or unapprove the pull
	// request.
	ReviewerApproval bool `mapstructure:"reviewer_approval" yaml:"reviewer_approval"`

	// ApprovalSeverityThreshold is the most severe finding still
	// compatible with approval ("INFO".."BLOCKER"). Empty means no
	// issue is tolerated.
	ApprovalSeverityThreshold string `mapstructure:"approval_severity_threshold" yaml:"approval_severity_threshold"`

	// IncludeAnalysisOverview posts a summary comment on every run.
	IncludeAnalysisOverview bool `mapstructure:"include_analysis_overview" yaml:"include_analysis_overview"`

	// PullRequest identifies the pull request to decorate.
	PullRequest PullRequestConfig `mapstructure:"pull_request" yaml:"pull_request"`
}

// PullRequestConfig identifies one pull request.
type PullRequestConfig struct {
	Project    string `mapstructure:"project" yaml:"project"`
	Repository string `mapstructure:"repository" yaml:"repository"`
	ID         int    `mapstructure:"id" yaml:"id"`
}

// SonarConfig configures the SonarQube collaborator.
type SonarConfig struct {
	// URL is the SonarQube public root URL.
	URL string `mapstructure:"url" yaml:"url"`

	// Token authenticates catalog and issue fetches.
	Token string `mapstructure:"token" yaml:"token"`

	// ProjectKey is the analyzed project whose issues are decorated.
	ProjectKey string `mapstructure:"project_key" yaml:"project_key"`

	// Languages and RuleTypes filter the rule catalog fetch.
	Languages string `mapstructure:"languages" yaml:"languages"`
	RuleTypes string `mapstructure:"rule_types" yaml:"rule_types"`

	// ReportCodeSmells keeps code-smell findings in the report. When
	// false, findings whose rule is in the catalog are dropped.
	ReportCodeSmells bool `mapstructure:"report_code_smells" yaml:"report_code_smells"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level" yaml:"level"`
}

// Timeout returns the Stash transport timeout as a duration.
func (c *StashConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ApprovalSeverity returns the configured approval severity threshold.
// The second return value is false when no threshold is configured.
func (c *StashConfig) ApprovalSeverity() (sonar.Severity, bool) {
	if c.ApprovalSeverityThreshold == "" {
		return 0, false
	}
	severity, err := sonar.ParseSeverity(c.ApprovalSeverityThreshold)
	if err != nil {
		return 0, false
	}
	return severity, true
}

// Validate validates the configuration and returns an error if invalid.
// Stash-side settings are only mandatory when notification is enabled.
func (c *Config) Validate() error {
	if c.Stash.ApprovalSeverityThreshold != "" {
		if _, err := sonar.ParseSeverity(c.Stash.ApprovalSeverityThreshold); err != nil {
			return &ValidationError{
				Field:   "stash.approval_severity_threshold",
				Message: "must be one of INFO, MINOR, MAJOR, CRITICAL, BLOCKER",
			}
		}
	}

	if c.Stash.TimeoutMS <= 0 {
		return &ValidationError{Field: "stash.timeout_ms", Message: "must be positive"}
	}

	if c.Stash.IssueThreshold < 0 {
		return &ValidationError{Field: "stash.issue_threshold", Message: "must not be negative"}
	}

	if !c.Stash.Notification {
		return nil
	}

	if c.Stash.URL == "" {
		return &ValidationError{Field: "stash.url", Message: "Stash base URL is required"}
	}

	if c.Stash.Login == "" {
		return &ValidationError{Field: "stash.login", Message: "Stash login is required"}
	}

	if c.Stash.PullRequest.Project == "" || c.Stash.PullRequest.Repository == "" || c.Stash.PullRequest.ID == 0 {
		return &ValidationError{
			Field:   "stash.pull_request",
			Message: "project, repository and id are required",
		}
	}

	if c.Sonar.URL == "" {
		return &ValidationError{Field: "sonar.url", Message: "SonarQube URL is required"}
	}

	if c.Sonar.ProjectKey == "" {
		return &ValidationError{Field: "sonar.project_key", Message: "SonarQube project key is required"}
	}

	return nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "config validation error: " + e.Field + ": " + e.Message
}
