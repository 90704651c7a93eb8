package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Scheme names, used in errors and logs
const (
	SchemeNone                    = "none"
	SchemeBasic                   = "basic"
	SchemeOAuth1TwoLegged         = "oauth1"
	SchemeOAuth2ClientCredentials = "oauth2_client_credentials"
	SchemeOAuth2AuthorizationCode = "oauth2_authorization_code"
	SchemeOAuth2PreAcquired       = "oauth2_token"
)

// ErrNoToken is returned when an OAuth2 authenticator has nothing to send and
// no way to obtain a token.
var ErrNoToken = errors.New("no access token available")

// Authenticator decorates an outgoing request with credential material.
type Authenticator interface {
	// Scheme returns the scheme name
	Scheme() string
	// Authenticate attaches credentials to req. It may perform a token
	// acquisition round-trip first.
	Authenticate(ctx context.Context, req *http.Request) error
}

// Refresher is implemented by authenticators that can renew their
// credentials after the API rejected them with 401.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// AuthenticationError reports a failed token acquisition or refresh
type AuthenticationError struct {
	Scheme string
	Err    error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Scheme, e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// None sends requests without credentials
type None struct{}

func (None) Scheme() string { return SchemeNone }

func (None) Authenticate(context.Context, *http.Request) error { return nil }

// Basic authenticates with a username and an app password
type Basic struct {
	Username string
	Password string
}

// NewBasic creates an HTTP Basic authenticator
func NewBasic(username, password string) *Basic {
	return &Basic{Username: username, Password: password}
}

func (b *Basic) Scheme() string { return SchemeBasic }

func (b *Basic) Authenticate(_ context.Context, req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}
