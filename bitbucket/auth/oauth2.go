package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Bitbucket Cloud OAuth2 endpoints
const (
	DefaultAuthURL  = "https://bitbucket.org/site/oauth2/authorize"
	DefaultTokenURL = "https://bitbucket.org/site/oauth2/access_token"
)

// OAuth2Config holds the consumer and endpoint settings shared by the OAuth2
// authenticators.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	// AuthURL and TokenURL default to the Bitbucket Cloud endpoints
	AuthURL     string
	TokenURL    string
	RedirectURL string
	Scopes      []string

	// HTTPClient is used for token endpoint calls; http.DefaultClient if nil
	HTTPClient *http.Client
	// Now is the clock used for expiry checks; time.Now if nil
	Now func() time.Time
}

func (c OAuth2Config) oauth2() *oauth2.Config {
	authURL := c.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// tokenFlow is the Absent -> Valid -> Expired -> Valid machinery shared by
// all OAuth2 variants. acquire performs the variant's initial grant.
type tokenFlow struct {
	scheme  string
	store   *TokenStore
	config  *oauth2.Config
	client  *http.Client
	now     func() time.Time
	acquire func(ctx context.Context) (*oauth2.Token, error)

	mu sync.Mutex
}

func newTokenFlow(scheme string, cfg OAuth2Config, initial *Token) *tokenFlow {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &tokenFlow{
		scheme: scheme,
		store:  NewTokenStore(initial),
		config: cfg.oauth2(),
		client: client,
		now:    now,
	}
}

func (f *tokenFlow) tokenContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, f.client)
}

// valid returns a token that is not expired, acquiring or refreshing first if
// needed.
func (f *tokenFlow) valid(ctx context.Context) (*Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.store.State(f.now()) {
	case StateValid:
		tok, _ := f.store.Current()
		return tok, nil
	case StateExpired:
		return f.renewLocked(ctx)
	default:
		return f.acquireLocked(ctx)
	}
}

// renewLocked uses the refresh token when there is one, else falls back to
// the variant's initial grant.
func (f *tokenFlow) renewLocked(ctx context.Context) (*Token, error) {
	current, ok := f.store.Current()
	if !ok || current.RefreshToken == "" {
		return f.acquireLocked(ctx)
	}

	src := f.config.TokenSource(f.tokenContext(ctx), &oauth2.Token{RefreshToken: current.RefreshToken})
	raw, err := src.Token()
	if err != nil {
		return nil, &AuthenticationError{Scheme: f.scheme, Err: fmt.Errorf("refresh token grant: %w", err)}
	}
	return f.storeLocked(raw)
}

func (f *tokenFlow) acquireLocked(ctx context.Context) (*Token, error) {
	if f.acquire == nil {
		return nil, &AuthenticationError{Scheme: f.scheme, Err: ErrNoToken}
	}
	raw, err := f.acquire(f.tokenContext(ctx))
	if err != nil {
		var authErr *AuthenticationError
		if errors.As(err, &authErr) {
			return nil, err
		}
		return nil, &AuthenticationError{Scheme: f.scheme, Err: err}
	}
	return f.storeLocked(raw)
}

func (f *tokenFlow) storeLocked(raw *oauth2.Token) (*Token, error) {
	if raw == nil || raw.AccessToken == "" {
		return nil, &AuthenticationError{Scheme: f.scheme, Err: errors.New("token endpoint returned no access token")}
	}
	tok := fromOAuth2(raw)
	f.store.Set(tok)
	return tok, nil
}

func (f *tokenFlow) authenticate(ctx context.Context, req *http.Request) error {
	tok, err := f.valid(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	return nil
}

// refresh marks the held token expired and renews it
func (f *tokenFlow) refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if current, ok := f.store.Current(); ok {
		current.Expiry = f.now().UTC().Add(-time.Second)
		f.store.Set(current)
		_, err := f.renewLocked(ctx)
		return err
	}
	_, err := f.acquireLocked(ctx)
	return err
}

// OAuth2ClientCredentials authenticates the consumer itself (no user consent)
type OAuth2ClientCredentials struct {
	flow *tokenFlow
}

// NewOAuth2ClientCredentials creates a client-credentials authenticator.
// The first request performs the grant.
func NewOAuth2ClientCredentials(cfg OAuth2Config) *OAuth2ClientCredentials {
	flow := newTokenFlow(SchemeOAuth2ClientCredentials, cfg, nil)
	cc := &clientcredentials.Config{
		ClientID:     flow.config.ClientID,
		ClientSecret: flow.config.ClientSecret,
		TokenURL:     flow.config.Endpoint.TokenURL,
		Scopes:       cfg.Scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	flow.acquire = cc.Token
	return &OAuth2ClientCredentials{flow: flow}
}

func (a *OAuth2ClientCredentials) Scheme() string { return SchemeOAuth2ClientCredentials }

func (a *OAuth2ClientCredentials) Authenticate(ctx context.Context, req *http.Request) error {
	return a.flow.authenticate(ctx, req)
}

func (a *OAuth2ClientCredentials) Refresh(ctx context.Context) error {
	return a.flow.refresh(ctx)
}

// Store exposes the token store
func (a *OAuth2ClientCredentials) Store() *TokenStore { return a.flow.store }

// OAuth2AuthorizationCode authenticates a user who granted consent in the
// browser. The code is exchanged on first use and then discarded.
type OAuth2AuthorizationCode struct {
	flow *tokenFlow

	mu   sync.Mutex
	code string
}

// NewOAuth2AuthorizationCode creates an authorization-code authenticator.
// code may be empty if the caller will call Exchange itself.
func NewOAuth2AuthorizationCode(cfg OAuth2Config, code string) *OAuth2AuthorizationCode {
	a := &OAuth2AuthorizationCode{
		flow: newTokenFlow(SchemeOAuth2AuthorizationCode, cfg, nil),
		code: code,
	}
	a.flow.acquire = a.exchangePending
	return a
}

func (a *OAuth2AuthorizationCode) Scheme() string { return SchemeOAuth2AuthorizationCode }

// AuthCodeURL returns the consent page URL the user must visit
func (a *OAuth2AuthorizationCode) AuthCodeURL(state string) string {
	return a.flow.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token and stores it
func (a *OAuth2AuthorizationCode) Exchange(ctx context.Context, code string) (*Token, error) {
	a.flow.mu.Lock()
	defer a.flow.mu.Unlock()

	raw, err := a.flow.config.Exchange(a.flow.tokenContext(ctx), code)
	if err != nil {
		return nil, &AuthenticationError{Scheme: a.Scheme(), Err: fmt.Errorf("code exchange: %w", err)}
	}
	return a.flow.storeLocked(raw)
}

func (a *OAuth2AuthorizationCode) exchangePending(ctx context.Context) (*oauth2.Token, error) {
	a.mu.Lock()
	code := a.code
	a.code = ""
	a.mu.Unlock()

	if code == "" {
		return nil, fmt.Errorf("%w: authorization code required", ErrNoToken)
	}
	raw, err := a.flow.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}
	return raw, nil
}

func (a *OAuth2AuthorizationCode) Authenticate(ctx context.Context, req *http.Request) error {
	return a.flow.authenticate(ctx, req)
}

func (a *OAuth2AuthorizationCode) Refresh(ctx context.Context) error {
	return a.flow.refresh(ctx)
}

// Store exposes the token store
func (a *OAuth2AuthorizationCode) Store() *TokenStore { return a.flow.store }

// OAuth2PreAcquiredToken uses a token obtained elsewhere. It can only renew
// itself when the token carries a refresh token and cfg names the consumer.
type OAuth2PreAcquiredToken struct {
	flow *tokenFlow
}

// NewOAuth2PreAcquiredToken creates an authenticator seeded with token
func NewOAuth2PreAcquiredToken(cfg OAuth2Config, token *Token) *OAuth2PreAcquiredToken {
	return &OAuth2PreAcquiredToken{flow: newTokenFlow(SchemeOAuth2PreAcquired, cfg, token)}
}

func (a *OAuth2PreAcquiredToken) Scheme() string { return SchemeOAuth2PreAcquired }

func (a *OAuth2PreAcquiredToken) Authenticate(ctx context.Context, req *http.Request) error {
	return a.flow.authenticate(ctx, req)
}

func (a *OAuth2PreAcquiredToken) Refresh(ctx context.Context) error {
	return a.flow.refresh(ctx)
}

// Store exposes the token store
func (a *OAuth2PreAcquiredToken) Store() *TokenStore { return a.flow.store }
