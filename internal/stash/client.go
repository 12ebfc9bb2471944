// Package stash is the Stash/Bitbucket Server REST collaborator.
//
// One client is acquired at the start of a run and released exactly once at
// the end, on every exit path. All calls are independent remote effects;
// the package makes no cross-call atomicity promises.
package stash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the set of pull-request operations the bridge needs.
type Client interface {
	// User resolves a user by slug. A missing user is (nil, nil).
	User(ctx context.Context, slug string) (*User, error)

	// DiffReport fetches the diff of the pull request. A pull request
	// without a retrievable diff is (nil, nil).
	DiffReport(ctx context.Context, pr PullRequestRef) (*DiffReport, error)

	// ResetComments deletes the diff comments authored by the given user.
	ResetComments(ctx context.Context, pr PullRequestRef, diff *DiffReport, user *User) error

	// AddReviewer registers the user as a reviewer. Adding an existing
	// reviewer is a no-op on the server side.
	AddReviewer(ctx context.Context, pr PullRequestRef, slug string) error

	// PostIssueComment posts one inline comment at the given anchor.
	PostIssueComment(ctx context.Context, pr PullRequestRef, anchor CommentAnchor, text string) error

	// PostOverviewComment posts a general (non-anchored) comment.
	PostOverviewComment(ctx context.Context, pr PullRequestRef, text string) error

	// Approve marks the pull request approved by the authenticated user.
	Approve(ctx context.Context, pr PullRequestRef) error

	// ResetApproval withdraws the authenticated user's approval.
	ResetApproval(ctx context.Context, pr PullRequestRef) error

	// Close releases the client.
	Close()
}

// httpClient talks to the Bitbucket Server 1.0 REST API with basic auth.
type httpClient struct {
	baseURL  string
	login    string
	password string
	client   *http.Client
}

// NewClient creates a Stash client. The timeout applies to every call made
// through the client; inner layers add no timeouts of their own.
func NewClient(baseURL, login, password string, timeout time.Duration) Client {
	return &httpClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		login:    login,
		password: password,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) Close() {
	c.client.CloseIdleConnections()
}

func (c *httpClient) prPath(pr PullRequestRef) string {
	return fmt.Sprintf("/rest/api/1.0/projects/%s/repos/%s/pull-requests/%d",
		pr.Project, pr.Repository, pr.ID)
}

// do issues one request and decodes the response into out when out is
// non-nil. A 404 is not an error; callers detect a missing entity through
// the returned status code.
func (c *httpClient) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		return resp.StatusCode, fmt.Errorf("%s %s returned %s", method, path, resp.Status)
	}
	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *httpClient) User(ctx context.Context, slug string) (*User, error) {
	var payload struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	status, err := c.do(ctx, http.MethodGet, "/rest/api/1.0/users/"+slug, nil, &payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return &User{ID: payload.ID, Name: payload.Name, Slug: payload.Slug}, nil
}

func (c *httpClient) DiffReport(ctx context.Context, pr PullRequestRef) (*DiffReport, error) {
	var payload struct {
		Diffs []struct {
			Destination struct {
				ToString string `json:"toString"`
			} `json:"destination"`
			Hunks []struct {
				Segments []struct {
					Type  string `json:"type"`
					Lines []struct {
						Destination int `json:"destination"`
					} `json:"lines"`
				} `json:"segments"`
			} `json:"hunks"`
			LineComments []struct {
				ID      int `json:"id"`
				Version int `json:"version"`
				Author  struct {
					Slug string `json:"slug"`
				} `json:"author"`
			} `json:"lineComments"`
		} `json:"diffs"`
	}

	status, err := c.do(ctx, http.MethodGet, c.prPath(pr)+"/diff?withComments=true", nil, &payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	var anchors []CommentAnchor
	var comments []Comment
	for _, diff := range payload.Diffs {
		path := diff.Destination.ToString
		for _, hunk := range diff.Hunks {
			for _, segment := range hunk.Segments {
				if segment.Type == "REMOVED" {
					continue
				}
				for _, line := range segment.Lines {
					anchors = append(anchors, CommentAnchor{
						Path:     path,
						Line:     line.Destination,
						LineType: segment.Type,
					})
				}
			}
		}
		for _, comment := range diff.LineComments {
			comments = append(comments, Comment{
				ID:         comment.ID,
				Version:    comment.Version,
				AuthorSlug: comment.Author.Slug,
			})
		}
	}
	return NewDiffReport(anchors, comments), nil
}

func (c *httpClient) ResetComments(ctx context.Context, pr PullRequestRef, diff *DiffReport, user *User) error {
	for _, comment := range diff.CommentsBy(user.Slug) {
		path := fmt.Sprintf("%s/comments/%d?version=%d", c.prPath(pr), comment.ID, comment.Version)
		if _, err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
			return fmt.Errorf("deleting comment %d: %w", comment.ID, err)
		}
	}
	return nil
}

func (c *httpClient) AddReviewer(ctx context.Context, pr PullRequestRef, slug string) error {
	body := map[string]interface{}{
		"user": map[string]string{"name": slug},
		"role": "REVIEWER",
	}
	_, err := c.do(ctx, http.MethodPost, c.prPath(pr)+"/participants", body, nil)
	return err
}

func (c *httpClient) PostIssueComment(ctx context.Context, pr PullRequestRef, anchor CommentAnchor, text string) error {
	body := map[string]interface{}{
		"text": text,
		"anchor": map[string]interface{}{
			"path":     anchor.Path,
			"line":     anchor.Line,
			"lineType": anchor.LineType,
			"fileType": "TO",
		},
	}
	_, err := c.do(ctx, http.MethodPost, c.prPath(pr)+"/comments", body, nil)
	return err
}

func (c *httpClient) PostOverviewComment(ctx context.Context, pr PullRequestRef, text string) error {
	body := map[string]string{"text": text}
	_, err := c.do(ctx, http.MethodPost, c.prPath(pr)+"/comments", body, nil)
	return err
}

func (c *httpClient) Approve(ctx context.Context, pr PullRequestRef) error {
	_, err := c.do(ctx, http.MethodPost, c.prPath(pr)+"/approve", nil, nil)
	return err
}

func (c *httpClient) ResetApproval(ctx context.Context, pr PullRequestRef) error {
	_, err := c.do(ctx, http.MethodDelete, c.prPath(pr)+"/approve", nil, nil)
	return err
}
