package bitbucket

import (
	"context"
	"net/http"
)

// UsersService covers the 2.0 user endpoints
type UsersService struct {
	client *Client
}

// Current returns the authenticated user
func (s *UsersService) Current(ctx context.Context) (*User, error) {
	return call[User](ctx, s.client, V2, http.MethodGet, "user", nil, nil)
}

// Get returns a user by UUID or account ID
func (s *UsersService) Get(ctx context.Context, selectedUser string) (*User, error) {
	return call[User](ctx, s.client, V2, http.MethodGet, "users/"+escapePath(selectedUser), nil, nil)
}

// Emails enumerates the authenticated user's addresses
func (s *UsersService) Emails(page PageOptions) *Paginator[Email] {
	return Paginate[Email](s.client, "user/emails", nil, page)
}

// UsersV1Service covers the legacy 1.0 user endpoints
type UsersV1Service struct {
	client *Client
}

// Get returns the profile and repositories of an account
func (s *UsersV1Service) Get(ctx context.Context, account string) (*V1Account, error) {
	return call[V1Account](ctx, s.client, V1, http.MethodGet, "users/"+escapePath(account), nil, nil)
}

// Followers lists the accounts following account
func (s *UsersV1Service) Followers(ctx context.Context, account string) (*V1Followers, error) {
	return call[V1Followers](ctx, s.client, V1, http.MethodGet, "users/"+escapePath(account, "followers"), nil, nil)
}
