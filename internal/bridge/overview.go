package bridge

import (
	"fmt"
	"strings"

	"github.com/sonarstash/sonarstash/internal/sonar"
)

// formatIssueComment renders one inline issue comment.
func formatIssueComment(issue sonar.Issue) string {
	return fmt.Sprintf("*%s* - %s [%s]", issue.Severity, issue.Message, issue.Rule)
}

// renderOverview renders the analysis overview comment. It is posted
// whether or not the inline comments were published.
func renderOverview(report sonar.Report, gate GateDecision, threshold int) string {
	var sb strings.Builder

	sb.WriteString("## SonarQube analysis overview\n\n")

	if len(report) == 0 {
		sb.WriteString("No issue detected.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "%d issue(s) detected:\n\n", len(report))
	for i := len(sonar.Severities) - 1; i >= 0; i-- {
		severity := sonar.Severities[i]
		if n := report.CountBySeverity(severity); n > 0 {
			fmt.Fprintf(&sb, "| %s | %d |\n", severity, n)
		}
	}

	if gate == GateSuppress {
		fmt.Fprintf(&sb, "\nToo many issues (%d/%d): they are not displayed in the diff view.\n",
			len(report), threshold)
	}

	return sb.String()
}
