package sonar

import "testing"

func TestSeverityOrder(t *testing.T) {
	// INFO < MINOR < MAJOR < CRITICAL < BLOCKER
	for i := 1; i < len(Severities); i++ {
		if !(Severities[i-1] < Severities[i]) {
			t.Errorf("expected %s < %s", Severities[i-1], Severities[i])
		}
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Severity
		wantErr bool
	}{
		{name: "upper case", input: "BLOCKER", want: SeverityBlocker},
		{name: "lower case", input: "minor", want: SeverityMinor},
		{name: "padded", input: "  MAJOR ", want: SeverityMajor},
		{name: "info", input: "INFO", want: SeverityInfo},
		{name: "critical", input: "Critical", want: SeverityCritical},
		{name: "unknown", input: "URGENT", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSeverity(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSeverity(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSeverity(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSeverity(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSeverityString(t *testing.T) {
	if got := SeverityBlocker.String(); got != "BLOCKER" {
		t.Errorf("String() = %v, want BLOCKER", got)
	}
	if got := Severity(42).String(); got != "UNKNOWN" {
		t.Errorf("String() = %v, want UNKNOWN", got)
	}
}

func TestReportMaxSeverity(t *testing.T) {
	var empty Report
	if _, ok := empty.MaxSeverity(); ok {
		t.Error("empty report should have no max severity")
	}

	report := Report{
		{Rule: "java:S1", Severity: SeverityMinor},
		{Rule: "java:S2", Severity: SeverityCritical},
		{Rule: "java:S3", Severity: SeverityMajor},
	}
	max, ok := report.MaxSeverity()
	if !ok || max != SeverityCritical {
		t.Errorf("MaxSeverity() = %v, %v, want CRITICAL, true", max, ok)
	}

	if got := report.CountBySeverity(SeverityMajor); got != 1 {
		t.Errorf("CountBySeverity(MAJOR) = %d, want 1", got)
	}
}
