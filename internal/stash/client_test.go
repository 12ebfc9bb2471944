package stash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(url string) Client {
	return NewClient(url, "sonarqube", "secret", 5*time.Second)
}

func TestClientUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, password, ok := r.BasicAuth()
		if !ok || login != "sonarqube" || password != "secret" {
			t.Error("request is missing basic auth credentials")
		}
		if r.URL.Path != "/rest/api/1.0/users/sonarqube" {
			t.Errorf("path = %v", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 7, "name": "SonarQube", "slug": "sonarqube",
		})
	}))
	defer server.Close()

	user, err := newTestClient(server.URL).User(context.Background(), "sonarqube")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.ID != 7 || user.Slug != "sonarqube" {
		t.Errorf("user = %+v, want id=7 slug=sonarqube", user)
	}
}

func TestClientUserNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	user, err := newTestClient(server.URL).User(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil for a missing user", user)
	}
}

const diffPayload = `{
  "diffs": [
    {
      "destination": {"toString": "src/main/App.java"},
      "hunks": [
        {
          "segments": [
            {"type": "CONTEXT", "lines": [{"destination": 9}]},
            {"type": "ADDED", "lines": [{"destination": 10}, {"destination": 11}]},
            {"type": "REMOVED", "lines": [{"destination": 12}]}
          ]
        }
      ],
      "lineComments": [
        {"id": 31, "version": 2, "author": {"slug": "sonarqube"}},
        {"id": 44, "version": 0, "author": {"slug": "alice"}}
      ]
    }
  ]
}`

func TestClientDiffReport(t *testing.T) {
	pr := PullRequestRef{Project: "PRJ", Repository: "repo", ID: 42}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/1.0/projects/PRJ/repos/repo/pull-requests/42/diff" {
			t.Errorf("path = %v", r.URL.Path)
		}
		_, _ = io.WriteString(w, diffPayload)
	}))
	defer server.Close()

	diff, err := newTestClient(server.URL).DiffReport(context.Background(), pr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff.Len() != 3 {
		t.Errorf("diff.Len() = %d, want 3 commentable lines", diff.Len())
	}
	anchor, ok := diff.Anchor("src/main/App.java", 10)
	if !ok || anchor.LineType != "ADDED" {
		t.Errorf("Anchor(10) = %+v, %v, want an ADDED anchor", anchor, ok)
	}
	if _, ok := diff.Anchor("src/main/App.java", 12); ok {
		t.Error("removed line must not be commentable")
	}
	if got := diff.CommentsBy("sonarqube"); len(got) != 1 || got[0].ID != 31 {
		t.Errorf("CommentsBy(sonarqube) = %+v, want comment 31 only", got)
	}
}

func TestClientDiffReportNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	diff, err := newTestClient(server.URL).DiffReport(context.Background(),
		PullRequestRef{Project: "PRJ", Repository: "repo", ID: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff != nil {
		t.Errorf("diff = %+v, want nil when the diff is unavailable", diff)
	}
}

func TestClientResetCommentsDeletesOnlyOwnComments(t *testing.T) {
	pr := PullRequestRef{Project: "PRJ", Repository: "repo", ID: 42}
	diff := NewDiffReport(nil, []Comment{
		{ID: 31, Version: 2, AuthorSlug: "sonarqube"},
		{ID: 44, Version: 0, AuthorSlug: "alice"},
	})

	var deleted []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %v, want DELETE", r.Method)
		}
		deleted = append(deleted, r.URL.Path+"?"+r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := newTestClient(server.URL).ResetComments(context.Background(), pr, diff,
		&User{Slug: "sonarqube"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "/rest/api/1.0/projects/PRJ/repos/repo/pull-requests/42/comments/31?version=2"
	if len(deleted) != 1 || deleted[0] != want {
		t.Errorf("deleted = %v, want [%s]", deleted, want)
	}
}

func TestClientApprovalEndpoints(t *testing.T) {
	pr := PullRequestRef{Project: "PRJ", Repository: "repo", ID: 42}

	tests := []struct {
		name       string
		call       func(Client) error
		wantMethod string
	}{
		{
			name:       "approve",
			call:       func(c Client) error { return c.Approve(context.Background(), pr) },
			wantMethod: http.MethodPost,
		},
		{
			name:       "reset approval",
			call:       func(c Client) error { return c.ResetApproval(context.Background(), pr) },
			wantMethod: http.MethodDelete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod, gotPath = r.Method, r.URL.Path
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			if err := tt.call(newTestClient(server.URL)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotMethod != tt.wantMethod {
				t.Errorf("method = %v, want %v", gotMethod, tt.wantMethod)
			}
			if gotPath != "/rest/api/1.0/projects/PRJ/repos/repo/pull-requests/42/approve" {
				t.Errorf("path = %v", gotPath)
			}
		})
	}
}

func TestClientPostIssueComment(t *testing.T) {
	pr := PullRequestRef{Project: "PRJ", Repository: "repo", ID: 42}

	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %v, want POST", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	anchor := CommentAnchor{Path: "src/main/App.java", Line: 10, LineType: "ADDED"}
	err := newTestClient(server.URL).PostIssueComment(context.Background(), pr, anchor, "*MAJOR* - oops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if body["text"] != "*MAJOR* - oops" {
		t.Errorf("text = %v", body["text"])
	}
	anchorBody, _ := body["anchor"].(map[string]interface{})
	if anchorBody == nil || anchorBody["path"] != "src/main/App.java" || anchorBody["lineType"] != "ADDED" {
		t.Errorf("anchor = %v", body["anchor"])
	}
}

func TestClientPostOverviewComment(t *testing.T) {
	pr := PullRequestRef{Project: "PRJ", Repository: "repo", ID: 42}

	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := newTestClient(server.URL).PostOverviewComment(context.Background(), pr, "overview text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["text"] != "overview text" {
		t.Errorf("text = %v", body["text"])
	}
	if _, hasAnchor := body["anchor"]; hasAnchor {
		t.Error("overview comment must not carry an anchor")
	}
}

func TestClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).User(context.Background(), "sonarqube")
	if err == nil {
		t.Fatal("expected an error for a 401 response")
	}
	if want := fmt.Sprintf("%d", http.StatusUnauthorized); !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not mention the status code", err)
	}
}
