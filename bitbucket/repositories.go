package bitbucket

import (
	"context"
	"net/http"
)

// RepositoryListOptions filters repository listings
type RepositoryListOptions struct {
	ListOptions
	// Role is one of member, contributor, admin, owner
	Role string `url:"role,omitempty"`
}

// RepositoriesService covers /repositories
type RepositoriesService struct {
	client *Client
}

// List enumerates the repositories of a workspace
func (s *RepositoriesService) List(workspace string, opts *RepositoryListOptions, page PageOptions) *Paginator[Repository] {
	return paginate[Repository](s.client, "repositories/"+escapePath(workspace), opts, page)
}

// ListPublic enumerates all public repositories
func (s *RepositoriesService) ListPublic(opts *ListOptions, page PageOptions) *Paginator[Repository] {
	return paginate[Repository](s.client, "repositories", opts, page)
}

// Get returns one repository
func (s *RepositoriesService) Get(ctx context.Context, workspace, slug string) (*Repository, error) {
	return call[Repository](ctx, s.client, V2, http.MethodGet, "repositories/"+escapePath(workspace, slug), nil, nil)
}

// Create creates a repository; repo carries the settings (scm, is_private, project...)
func (s *RepositoriesService) Create(ctx context.Context, workspace, slug string, repo *Repository) (*Repository, error) {
	return call[Repository](ctx, s.client, V2, http.MethodPost, "repositories/"+escapePath(workspace, slug), nil, repo)
}

// Delete removes a repository
func (s *RepositoriesService) Delete(ctx context.Context, workspace, slug string) error {
	return send(ctx, s.client, V2, http.MethodDelete, "repositories/"+escapePath(workspace, slug), nil)
}
