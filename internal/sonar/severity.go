package sonar

import (
	"fmt"
	"strings"
)

// Severity is a SonarQube issue severity.
//
// The constants below define the one total order used everywhere in this
// tool (classification, approval policy, logging), least to most severe:
// INFO < MINOR < MAJOR < CRITICAL < BLOCKER.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityMinor
	SeverityMajor
	SeverityCritical
	SeverityBlocker
)

// Severities lists all severities in ascending order.
var Severities = []Severity{
	SeverityInfo,
	SeverityMinor,
	SeverityMajor,
	SeverityCritical,
	SeverityBlocker,
}

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityMinor:
		return "MINOR"
	case SeverityMajor:
		return "MAJOR"
	case SeverityCritical:
		return "CRITICAL"
	case SeverityBlocker:
		return "BLOCKER"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity parses a severity name as reported by the SonarQube API.
// Matching is case-insensitive.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INFO":
		return SeverityInfo, nil
	case "MINOR":
		return SeverityMinor, nil
	case "MAJOR":
		return SeverityMajor, nil
	case "CRITICAL":
		return SeverityCritical, nil
	case "BLOCKER":
		return SeverityBlocker, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", name)
	}
}
