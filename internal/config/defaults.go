package config

// DefaultConfig returns a Config with sensible default values.
// Notification is off by default: a run is a no-op until the server side is
// configured explicitly.
func DefaultConfig() *Config {
	return &Config{
		Stash: StashConfig{
			Notification:            false,
			TimeoutMS:               10000,
			IssueThreshold:          100,
			ResetComments:           false,
			ReviewerApproval:        false,
			IncludeAnalysisOverview: true,
		},
		Sonar: SonarConfig{
			Languages:        "java",
			RuleTypes:        "CODE_SMELL",
			ReportCodeSmells: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
