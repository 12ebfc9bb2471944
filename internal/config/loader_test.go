package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
stash:
  notification: true
  url: http://stash.example.test
  login: sonarqube
  password: secret
  issue_threshold: 25
  reviewer_approval: true
  approval_severity_threshold: MAJOR
  pull_request:
    project: PRJ
    repository: repo
    id: 42
sonar:
  url: http://sonar.example.test
  project_key: com.acme:app
  report_code_smells: false
log:
  level: debug
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".sonarstash.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := LoadFromFile(writeConfigFile(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if !cfg.Stash.Notification {
		t.Error("Stash.Notification = false, want true")
	}
	if cfg.Stash.IssueThreshold != 25 {
		t.Errorf("Stash.IssueThreshold = %d, want 25", cfg.Stash.IssueThreshold)
	}
	if cfg.Stash.PullRequest.ID != 42 {
		t.Errorf("PullRequest.ID = %d, want 42", cfg.Stash.PullRequest.ID)
	}
	if cfg.Sonar.ReportCodeSmells {
		t.Error("Sonar.ReportCodeSmells = true, want false")
	}

	// Values absent from the file keep their defaults.
	if cfg.Stash.TimeoutMS != 10000 {
		t.Errorf("Stash.TimeoutMS = %d, want default 10000", cfg.Stash.TimeoutMS)
	}
	if cfg.Sonar.Languages != "java" {
		t.Errorf("Sonar.Languages = %v, want default java", cfg.Sonar.Languages)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := writeConfigFile(t, `
stash:
  notification: true
  login: sonarqube
`)
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected a validation error for a config without stash.url")
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("SONARSTASH_STASH_ISSUE_THRESHOLD", "7")

	cfg, err := LoadFromFile(writeConfigFile(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Stash.IssueThreshold != 7 {
		t.Errorf("Stash.IssueThreshold = %d, want 7 from the environment", cfg.Stash.IssueThreshold)
	}
}
