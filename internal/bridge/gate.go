package bridge

import "github.com/sonarstash/sonarstash/internal/sonar"

// GateDecision says whether the per-issue comments are published.
type GateDecision int

const (
	// GatePublish posts every issue comment of the report.
	GatePublish GateDecision = iota

	// GateSuppress posts none of them. Publication is all-or-nothing.
	GateSuppress
)

func (d GateDecision) String() string {
	if d == GateSuppress {
		return "SUPPRESS"
	}
	return "PUBLISH"
}

// Gate decides whether the issue comments are published or suppressed.
// The threshold is a strict upper bound: a report with threshold issues is
// already suppressed.
func Gate(issueCount, threshold int) GateDecision {
	if issueCount >= threshold {
		return GateSuppress
	}
	return GatePublish
}

// ReviewDecision is the approval outcome of a run.
type ReviewDecision int

const (
	// DecisionApprove approves the pull request.
	DecisionApprove ReviewDecision = iota

	// DecisionResetApproval withdraws a previous approval.
	DecisionResetApproval
)

func (d ReviewDecision) String() string {
	if d == DecisionResetApproval {
		return "RESET_APPROVAL"
	}
	return "APPROVE"
}

// ShouldApprove is the single source of truth for the approval decision.
//
// With a threshold, the pull request is approved when no issue is strictly
// more severe than the threshold. Without one, only an empty report is
// approved.
func ShouldApprove(threshold sonar.Severity, hasThreshold bool, report sonar.Report) bool {
	if hasThreshold {
		for _, issue := range report {
			if issue.Severity > threshold {
				return false
			}
		}
		return true
	}
	return len(report) == 0
}
