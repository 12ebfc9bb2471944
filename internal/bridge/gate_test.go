package bridge

import (
	"testing"

	"github.com/sonarstash/sonarstash/internal/sonar"
)

func TestGate(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		threshold int
		want      GateDecision
	}{
		{name: "under threshold", count: 4, threshold: 100, want: GatePublish},
		{name: "one below threshold", count: 99, threshold: 100, want: GatePublish},
		{name: "at threshold", count: 100, threshold: 100, want: GateSuppress},
		{name: "over threshold", count: 101, threshold: 100, want: GateSuppress},
		{name: "empty report zero threshold", count: 0, threshold: 0, want: GateSuppress},
		{name: "empty report positive threshold", count: 0, threshold: 1, want: GatePublish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Gate(tt.count, tt.threshold); got != tt.want {
				t.Errorf("Gate(%d, %d) = %v, want %v", tt.count, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestShouldApprove(t *testing.T) {
	minor := sonar.Issue{Rule: "java:S1", Severity: sonar.SeverityMinor}
	major := sonar.Issue{Rule: "java:S2", Severity: sonar.SeverityMajor}
	blocker := sonar.Issue{Rule: "java:S3", Severity: sonar.SeverityBlocker}

	tests := []struct {
		name         string
		threshold    sonar.Severity
		hasThreshold bool
		report       sonar.Report
		want         bool
	}{
		{name: "no threshold empty report", want: true},
		{name: "no threshold non-empty report", report: sonar.Report{minor}, want: false},
		{name: "all issues at threshold", threshold: sonar.SeverityMajor, hasThreshold: true,
			report: sonar.Report{minor, major}, want: true},
		{name: "issue above threshold", threshold: sonar.SeverityMajor, hasThreshold: true,
			report: sonar.Report{minor, blocker}, want: false},
		{name: "threshold with empty report", threshold: sonar.SeverityInfo, hasThreshold: true, want: true},
		{name: "blocker threshold tolerates everything", threshold: sonar.SeverityBlocker, hasThreshold: true,
			report: sonar.Report{minor, major, blocker}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldApprove(tt.threshold, tt.hasThreshold, tt.report); got != tt.want {
				t.Errorf("ShouldApprove() = %v, want %v", got, tt.want)
			}
		})
	}
}
