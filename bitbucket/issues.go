package bitbucket

import (
	"context"
	"net/http"
	"strconv"
)

// IssuesService covers the repository issue tracker
type IssuesService struct {
	client *Client
}

func issuesPath(workspace, slug string, rest ...string) string {
	path := "repositories/" + escapePath(workspace, slug) + "/issues"
	if len(rest) > 0 {
		path += "/" + escapePath(rest...)
	}
	return path
}

// List enumerates issues
func (s *IssuesService) List(workspace, slug string, opts *ListOptions, page PageOptions) *Paginator[Issue] {
	return paginate[Issue](s.client, issuesPath(workspace, slug), opts, page)
}

// Get returns one issue
func (s *IssuesService) Get(ctx context.Context, workspace, slug string, id int) (*Issue, error) {
	return call[Issue](ctx, s.client, V2, http.MethodGet, issuesPath(workspace, slug, strconv.Itoa(id)), nil, nil)
}

// Create files a new issue
func (s *IssuesService) Create(ctx context.Context, workspace, slug string, issue *Issue) (*Issue, error) {
	return call[Issue](ctx, s.client, V2, http.MethodPost, issuesPath(workspace, slug), nil, issue)
}

// Update changes the fields set in issue
func (s *IssuesService) Update(ctx context.Context, workspace, slug string, id int, issue *Issue) (*Issue, error) {
	return call[Issue](ctx, s.client, V2, http.MethodPut, issuesPath(workspace, slug, strconv.Itoa(id)), nil, issue)
}

// Delete removes an issue
func (s *IssuesService) Delete(ctx context.Context, workspace, slug string, id int) error {
	return send(ctx, s.client, V2, http.MethodDelete, issuesPath(workspace, slug, strconv.Itoa(id)), nil)
}

// Comments enumerates the comments of an issue
func (s *IssuesService) Comments(workspace, slug string, id int, page PageOptions) *Paginator[Comment] {
	return Paginate[Comment](s.client, issuesPath(workspace, slug, strconv.Itoa(id), "comments"), nil, page)
}
