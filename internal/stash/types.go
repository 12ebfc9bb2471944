package stash

import "fmt"

// PullRequestRef identifies one pull request on the Stash server.
type PullRequestRef struct {
	Project    string
	Repository string
	ID         int
}

func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Project, r.Repository, r.ID)
}

// User is a Stash user, typically the SonarQube reviewer account.
type User struct {
	ID   int
	Name string
	Slug string
}

// CommentAnchor positions an inline comment on the pull request diff.
type CommentAnchor struct {
	Path     string
	Line     int
	LineType string // "ADDED" or "CONTEXT"
}

// Comment is an existing comment on the pull request diff.
type Comment struct {
	ID         int
	Version    int
	AuthorSlug string
}

type anchorKey struct {
	path string
	line int
}

// DiffReport maps the changed lines of a pull request to comment anchors.
// It also carries the inline comments already present on the diff, which
// the comment reset uses to find leftovers from earlier runs.
type DiffReport struct {
	anchors  map[anchorKey]CommentAnchor
	comments []Comment
}

// NewDiffReport builds a diff report from commentable anchors and the
// inline comments already on the diff.
func NewDiffReport(anchors []CommentAnchor, comments []Comment) *DiffReport {
	report := &DiffReport{
		anchors:  make(map[anchorKey]CommentAnchor, len(anchors)),
		comments: comments,
	}
	for _, anchor := range anchors {
		report.anchors[anchorKey{path: anchor.Path, line: anchor.Line}] = anchor
	}
	return report
}

// Anchor returns the comment anchor for the given file and destination
// line, if that line is part of the pull request diff.
func (d *DiffReport) Anchor(path string, line int) (CommentAnchor, bool) {
	anchor, ok := d.anchors[anchorKey{path: path, line: line}]
	return anchor, ok
}

// CommentsBy returns the existing diff comments authored by the given user.
func (d *DiffReport) CommentsBy(slug string) []Comment {
	var out []Comment
	for _, c := range d.comments {
		if c.AuthorSlug == slug {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of commentable lines in the diff.
func (d *DiffReport) Len() int {
	return len(d.anchors)
}
