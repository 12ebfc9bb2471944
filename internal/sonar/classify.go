package sonar

import (
	"errors"

	"github.com/sonarstash/sonarstash/internal/logger"
)

// IncludePolicy decides whether a finding is retained in the report. The
// catalog lets a policy distinguish code-smell findings from other kinds.
type IncludePolicy func(Issue, *RuleCatalog) bool

// IncludeAll retains every finding.
func IncludeAll(Issue, *RuleCatalog) bool { return true }

// ExcludeCodeSmells retains only findings whose rule is not in the
// code-smell catalog.
func ExcludeCodeSmells(issue Issue, catalog *RuleCatalog) bool {
	return !catalog.Has(issue.Rule)
}

// Classify drains the feed exactly once and applies the inclusion policy in
// a single, order-preserving pass. Malformed entries are logged and
// skipped; they never abort classification of the remaining entries. A
// feed that becomes unavailable (ErrFeedUnavailable) does abort: an
// incomplete report must not drive comment or approval decisions.
func Classify(feed Feed, catalog *RuleCatalog, include IncludePolicy, log *logger.Logger) (Report, error) {
	if include == nil {
		include = IncludeAll
	}

	var report Report
	for issue, err := range feed {
		if err != nil {
			if errors.Is(err, ErrFeedUnavailable) {
				return nil, err
			}
			log.Warn("Skipping malformed finding: %v", err)
			continue
		}
		if !include(issue, catalog) {
			continue
		}
		report = append(report, issue)
	}
	return report, nil
}
