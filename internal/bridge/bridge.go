// Package bridge sequences one decoration run: it resolves the reviewer
// and the pull-request diff on the Stash side, classifies the SonarQube
// findings, and posts comments and the approval decision.
package bridge

import (
	"context"
	"net/http"

	"github.com/sonarstash/sonarstash/internal/config"
	"github.com/sonarstash/sonarstash/internal/logger"
	"github.com/sonarstash/sonarstash/internal/sonar"
	"github.com/sonarstash/sonarstash/internal/stash"
)

// Engine runs the SonarQube to Stash bridge. One Engine performs one
// single-threaded pass per Run call: no retries, fail-fast, and every
// remote call is an independent, non-transactional effect.
type Engine struct {
	cfg *config.Config
	log *logger.Logger

	// newClient acquires the scoped Stash handle for a run. The handle is
	// released exactly once, on every exit path.
	newClient func() stash.Client

	// catalog fetches the code-smell rule catalog (best effort).
	catalog func(ctx context.Context) *sonar.RuleCatalog

	// feed produces the raw finding sequence, consumed exactly once.
	feed func(ctx context.Context) sonar.Feed

	// include is the classification policy applied to the feed.
	include sonar.IncludePolicy
}

// NewEngine wires an engine against the real SonarQube and Stash servers
// described by the configuration.
func NewEngine(cfg *config.Config, log *logger.Logger) *Engine {
	httpClient := &http.Client{Timeout: cfg.Stash.Timeout()}

	catalogFetcher := sonar.NewCatalogFetcher(cfg.Sonar.URL, cfg.Sonar.Token, httpClient, log)
	issueFetcher := sonar.NewIssueFetcher(cfg.Sonar.URL, cfg.Sonar.Token, cfg.Sonar.ProjectKey, httpClient)

	include := sonar.IncludeAll
	if !cfg.Sonar.ReportCodeSmells {
		include = sonar.ExcludeCodeSmells
	}

	return &Engine{
		cfg: cfg,
		log: log.WithPrefix("BRIDGE"),
		newClient: func() stash.Client {
			return stash.NewClient(cfg.Stash.URL, cfg.Stash.Login, cfg.Stash.Password, cfg.Stash.Timeout())
		},
		catalog: func(ctx context.Context) *sonar.RuleCatalog {
			return catalogFetcher.Fetch(ctx, cfg.Sonar.Languages, cfg.Sonar.RuleTypes)
		},
		feed:    issueFetcher.Issues,
		include: include,
	}
}

// Run executes one decoration run. Failures never escape: they are logged
// at error level with full detail at debug, and the run is a no-op for
// that execution.
func (e *Engine) Run(ctx context.Context) {
	if !e.cfg.Stash.Notification {
		e.log.Info("Stash notification not enabled, skipping")
		return
	}

	client := e.newClient()
	defer client.Close()

	if err := e.run(ctx, client); err != nil {
		if IsMissingElement(err) {
			e.log.Error("Process stopped: %v", err)
		} else {
			e.log.Error("Unable to push SonarQube report to Stash: %v", err)
		}
		e.log.Debug("Run aborted: %+v", err)
	}
}

// run walks the step sequence. The first failing step aborts the rest;
// effects already applied stay applied.
func (e *Engine) run(ctx context.Context, client stash.Client) error {
	pr := stash.PullRequestRef{
		Project:    e.cfg.Stash.PullRequest.Project,
		Repository: e.cfg.Stash.PullRequest.Repository,
		ID:         e.cfg.Stash.PullRequest.ID,
	}

	user, err := client.User(ctx, e.cfg.Stash.Login)
	if err != nil {
		return err
	}
	if user == nil {
		return missingElement("no SonarQube reviewer identified to publish the analysis")
	}

	diff, err := client.DiffReport(ctx, pr)
	if err != nil {
		return err
	}
	if diff == nil {
		return missingElement("no Stash differential report available for %s", pr)
	}

	if e.cfg.Stash.ResetComments {
		if err := client.ResetComments(ctx, pr, diff, user); err != nil {
			return err
		}
		e.log.Debug("Deleted comments of %s on %s", user.Slug, pr)
	}

	if e.cfg.Stash.ReviewerApproval {
		if err := client.AddReviewer(ctx, pr, user.Slug); err != nil {
			return err
		}
	}

	catalog := e.catalog(ctx)
	report, err := sonar.Classify(e.feed(ctx), catalog, e.include, e.log)
	if err != nil {
		return err
	}
	e.log.Info("Extracted %d issue(s) for %s", len(report), pr)

	threshold := e.cfg.Stash.IssueThreshold
	gate := Gate(len(report), threshold)
	if gate == GateSuppress {
		e.log.Warn("Too many issues detected (%d/%d): issues cannot be displayed in the diff view",
			len(report), threshold)
	} else {
		if err := e.postIssueComments(ctx, client, pr, report, diff); err != nil {
			return err
		}
	}

	if e.cfg.Stash.IncludeAnalysisOverview {
		overview := renderOverview(report, gate, threshold)
		if err := client.PostOverviewComment(ctx, pr, overview); err != nil {
			return err
		}
	}

	if e.cfg.Stash.ReviewerApproval {
		if err := e.applyApproval(ctx, client, pr, report); err != nil {
			return err
		}
	}

	return nil
}

// postIssueComments posts one inline comment per issue, positioned via the
// diff report. Issues outside the diff are skipped.
func (e *Engine) postIssueComments(ctx context.Context, client stash.Client, pr stash.PullRequestRef, report sonar.Report, diff *stash.DiffReport) error {
	posted := 0
	for _, issue := range report {
		anchor, ok := diff.Anchor(issue.File, issue.Line)
		if !ok {
			e.log.Debug("Issue %s at %s:%d is outside the diff, skipping", issue.Rule, issue.File, issue.Line)
			continue
		}
		if err := client.PostIssueComment(ctx, pr, anchor, formatIssueComment(issue)); err != nil {
			return err
		}
		posted++
	}
	e.log.Info("Posted %d issue comment(s) on %s", posted, pr)
	return nil
}

// applyApproval computes and applies the approval decision. Approve and
// reset are mutually exclusive; re-applying the same decision is a remote
// no-op.
func (e *Engine) applyApproval(ctx context.Context, client stash.Client, pr stash.PullRequestRef, report sonar.Report) error {
	threshold, hasThreshold := e.cfg.Stash.ApprovalSeverity()

	decision := DecisionResetApproval
	if ShouldApprove(threshold, hasThreshold, report) {
		decision = DecisionApprove
	}
	e.log.Info("Review decision for %s: %s", pr, decision)

	if decision == DecisionApprove {
		return client.Approve(ctx, pr)
	}
	return client.ResetApproval(ctx, pr)
}
