package bitbucket

import (
	"context"
	"net/http"
)

// RefsService covers branches and tags
type RefsService struct {
	client *Client
}

func refsPath(workspace, slug, kind string, name ...string) string {
	path := "repositories/" + escapePath(workspace, slug) + "/refs/" + kind
	if len(name) > 0 {
		path += "/" + escapePath(name...)
	}
	return path
}

// Branches enumerates branches
func (s *RefsService) Branches(workspace, slug string, opts *ListOptions, page PageOptions) *Paginator[Ref] {
	return paginate[Ref](s.client, refsPath(workspace, slug, "branches"), opts, page)
}

// Branch returns one branch
func (s *RefsService) Branch(ctx context.Context, workspace, slug, name string) (*Ref, error) {
	return call[Ref](ctx, s.client, V2, http.MethodGet, refsPath(workspace, slug, "branches", name), nil, nil)
}

// CreateBranch creates a branch pointing at target
func (s *RefsService) CreateBranch(ctx context.Context, workspace, slug, name, target string) (*Ref, error) {
	body := &Ref{Name: name, Target: &Commit{Hash: target}}
	return call[Ref](ctx, s.client, V2, http.MethodPost, refsPath(workspace, slug, "branches"), nil, body)
}

// DeleteBranch removes a branch
func (s *RefsService) DeleteBranch(ctx context.Context, workspace, slug, name string) error {
	return send(ctx, s.client, V2, http.MethodDelete, refsPath(workspace, slug, "branches", name), nil)
}

// Tags enumerates tags
func (s *RefsService) Tags(workspace, slug string, opts *ListOptions, page PageOptions) *Paginator[Ref] {
	return paginate[Ref](s.client, refsPath(workspace, slug, "tags"), opts, page)
}
