package sonar

import "iter"

// Issue is a single analysis finding.
type Issue struct {
	// Rule is the identifier of the rule that raised the finding,
	// e.g. "java:S1192".
	Rule string

	// Severity of the finding.
	Severity Severity

	// File is the path of the affected file, relative to the project root.
	File string

	// Line is the affected line (0 for file-level findings).
	Line int

	// Message is the human-readable description.
	Message string
}

// Feed is a lazily produced sequence of findings. A feed must be drained
// exactly once. An entry with a non-nil error is malformed and carries no
// usable issue; consumers skip it and keep draining.
type Feed = iter.Seq2[Issue, error]

// Report is an ordered issue report. Order equals the order issues were
// received from the feed.
type Report []Issue

// CountBySeverity returns how many issues in the report carry the given
// severity.
func (r Report) CountBySeverity(s Severity) int {
	n := 0
	for _, issue := range r {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// MaxSeverity returns the most severe severity present in the report.
// The second return value is false for an empty report.
func (r Report) MaxSeverity() (Severity, bool) {
	if len(r) == 0 {
		return SeverityInfo, false
	}
	max := r[0].Severity
	for _, issue := range r[1:] {
		if issue.Severity > max {
			max = issue.Severity
		}
	}
	return max, true
}
