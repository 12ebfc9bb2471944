package sonar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// issuesPageSize is the page size requested from /api/issues/search.
const issuesPageSize = 500

// ErrFeedUnavailable marks a transport-level failure of the issue feed:
// the remaining findings cannot be fetched at all. This is different from
// a malformed entry, which only loses that one finding.
var ErrFeedUnavailable = errors.New("issue feed unavailable")

// IssueFetcher streams the findings of one analyzed project from the
// SonarQube issues search API.
type IssueFetcher struct {
	baseURL    string
	token      string
	projectKey string
	client     *http.Client
}

// NewIssueFetcher creates an issue fetcher for the given project.
func NewIssueFetcher(baseURL, token, projectKey string, client *http.Client) *IssueFetcher {
	return &IssueFetcher{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		projectKey: projectKey,
		client:     client,
	}
}

// Issues returns a lazy feed over the project's open issues. Pages are
// requested on demand as the feed is drained; the feed must be consumed
// exactly once. Malformed entries are yielded through the error slot and
// carry no issue; a failed page fetch yields ErrFeedUnavailable and ends
// the feed.
func (f *IssueFetcher) Issues(ctx context.Context) Feed {
	return func(yield func(Issue, error) bool) {
		for page := 1; ; page++ {
			raw, total, err := f.fetchPage(ctx, page)
			if err != nil {
				yield(Issue{}, fmt.Errorf("%w: %s", ErrFeedUnavailable, err))
				return
			}
			for _, entry := range raw {
				issue, err := entry.toIssue()
				if err != nil {
					if !yield(Issue{}, err) {
						return
					}
					continue
				}
				if !yield(issue, nil) {
					return
				}
			}
			if len(raw) == 0 || page*issuesPageSize >= total {
				return
			}
		}
	}
}

// rawIssue is the wire shape of one entry of the issues search response.
type rawIssue struct {
	Key       string `json:"key"`
	Rule      string `json:"rule"`
	Severity  string `json:"severity"`
	Component string `json:"component"`
	Line      int    `json:"line"`
	Message   string `json:"message"`
}

func (r rawIssue) toIssue() (Issue, error) {
	severity, err := ParseSeverity(r.Severity)
	if err != nil {
		return Issue{}, fmt.Errorf("issue %s: %w", r.Key, err)
	}

	// Components are "projectKey:path/to/file"; file-level and
	// project-level issues keep whatever is there.
	file := r.Component
	if idx := strings.IndexByte(file, ':'); idx >= 0 {
		file = file[idx+1:]
	}

	return Issue{
		Rule:     strings.TrimSpace(r.Rule),
		Severity: severity,
		File:     file,
		Line:     r.Line,
		Message:  r.Message,
	}, nil
}

func (f *IssueFetcher) fetchPage(ctx context.Context, page int) ([]rawIssue, int, error) {
	query := url.Values{}
	query.Set("componentKeys", f.projectKey)
	query.Set("resolved", "false")
	query.Set("ps", strconv.Itoa(issuesPageSize))
	query.Set("p", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.baseURL+"/api/issues/search?"+query.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	if f.token != "" {
		req.SetBasicAuth(f.token, "")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("issues search returned %s", resp.Status)
	}

	var payload struct {
		Total  int        `json:"total"`
		Issues []rawIssue `json:"issues"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, fmt.Errorf("decoding issues search response: %w", err)
	}
	return payload.Issues, payload.Total, nil
}
