package bitbucket

import (
	"context"
	"net/http"
	"strconv"
)

// PullRequestListOptions filters pull request listings
type PullRequestListOptions struct {
	ListOptions
	// State may repeat: OPEN, MERGED, DECLINED, SUPERSEDED
	State []string `url:"state,omitempty"`
}

// PullRequestsService covers /repositories/{workspace}/{slug}/pullrequests
type PullRequestsService struct {
	client *Client
}

func pullRequestsPath(workspace, slug string, rest ...string) string {
	path := "repositories/" + escapePath(workspace, slug) + "/pullrequests"
	if len(rest) > 0 {
		path += "/" + escapePath(rest...)
	}
	return path
}

// List enumerates pull requests. Without a state filter the API returns
// open pull requests only.
func (s *PullRequestsService) List(workspace, slug string, opts *PullRequestListOptions, page PageOptions) *Paginator[PullRequest] {
	return paginate[PullRequest](s.client, pullRequestsPath(workspace, slug), opts, page)
}

// Get returns one pull request
func (s *PullRequestsService) Get(ctx context.Context, workspace, slug string, id int) (*PullRequest, error) {
	return call[PullRequest](ctx, s.client, V2, http.MethodGet, pullRequestsPath(workspace, slug, strconv.Itoa(id)), nil, nil)
}

// Create opens a pull request
func (s *PullRequestsService) Create(ctx context.Context, workspace, slug string, pr *PullRequest) (*PullRequest, error) {
	return call[PullRequest](ctx, s.client, V2, http.MethodPost, pullRequestsPath(workspace, slug), nil, pr)
}

// Approve approves a pull request as the authenticated user
func (s *PullRequestsService) Approve(ctx context.Context, workspace, slug string, id int) (*Participant, error) {
	return call[Participant](ctx, s.client, V2, http.MethodPost, pullRequestsPath(workspace, slug, strconv.Itoa(id), "approve"), nil, nil)
}

// Unapprove withdraws an approval
func (s *PullRequestsService) Unapprove(ctx context.Context, workspace, slug string, id int) error {
	return send(ctx, s.client, V2, http.MethodDelete, pullRequestsPath(workspace, slug, strconv.Itoa(id), "approve"), nil)
}

// Decline declines a pull request
func (s *PullRequestsService) Decline(ctx context.Context, workspace, slug string, id int) (*PullRequest, error) {
	return call[PullRequest](ctx, s.client, V2, http.MethodPost, pullRequestsPath(workspace, slug, strconv.Itoa(id), "decline"), nil, nil)
}

// Merge merges a pull request; opts may be nil
func (s *PullRequestsService) Merge(ctx context.Context, workspace, slug string, id int, opts *MergeOptions) (*PullRequest, error) {
	var body any
	if opts != nil {
		body = opts
	}
	return call[PullRequest](ctx, s.client, V2, http.MethodPost, pullRequestsPath(workspace, slug, strconv.Itoa(id), "merge"), nil, body)
}

// Comments enumerates the comments of a pull request
func (s *PullRequestsService) Comments(workspace, slug string, id int, page PageOptions) *Paginator[Comment] {
	return Paginate[Comment](s.client, pullRequestsPath(workspace, slug, strconv.Itoa(id), "comments"), nil, page)
}

// Diff returns the unified diff of a pull request
func (s *PullRequestsService) Diff(ctx context.Context, workspace, slug string, id int) (string, error) {
	req, err := NewRequest(V2, http.MethodGet, pullRequestsPath(workspace, slug, strconv.Itoa(id), "diff"), nil, nil)
	if err != nil {
		return "", err
	}
	return Execute[string](ctx, s.client, req)
}
