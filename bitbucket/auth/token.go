package auth

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// State is the lifecycle position of an OAuth2 token
type State int

const (
	// StateAbsent means no token was ever acquired, or the store was reset
	StateAbsent State = iota
	// StateValid means a token is held and not past its expiry
	StateValid
	// StateExpired means the held token is past its expiry and must be refreshed
	StateExpired
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	default:
		return "absent"
	}
}

// Token is an OAuth2 access/refresh token pair.
// A zero Expiry means the token does not expire.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	Scopes       []string
}

// Expired reports whether now is strictly after the token's expiry
func (t *Token) Expired(now time.Time) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return now.UTC().After(t.Expiry.UTC())
}

func (t *Token) clone() *Token {
	c := *t
	c.Scopes = append([]string(nil), t.Scopes...)
	return &c
}

// TokenStore holds the current token of one authenticator
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates a store, optionally seeded with a token
func NewTokenStore(initial *Token) *TokenStore {
	s := &TokenStore{}
	if initial != nil {
		s.token = initial.clone()
	}
	return s
}

// Current returns a copy of the held token
func (s *TokenStore) Current() (*Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return nil, false
	}
	return s.token.clone(), true
}

// Set replaces the held token
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == nil {
		s.token = nil
		return
	}
	s.token = token.clone()
}

// IsExpired reports whether a token is held and is past its expiry.
// An empty store is not expired, it is absent; see State.
func (s *TokenStore) IsExpired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token != nil && s.token.Expired(now)
}

// State returns the lifecycle state at the given instant
func (s *TokenStore) State(now time.Time) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.token == nil:
		return StateAbsent
	case s.token.AccessToken == "", s.token.Expired(now):
		// a refresh-only token must be renewed before first use
		return StateExpired
	default:
		return StateValid
	}
}

// Reset drops the held token (logout)
func (s *TokenStore) Reset() {
	s.Set(nil)
}

// fromOAuth2 converts a token endpoint response. Bitbucket reports granted
// scopes in a space separated "scopes" member.
func fromOAuth2(t *oauth2.Token) *Token {
	tok := &Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry.UTC(),
	}
	if t.Expiry.IsZero() {
		tok.Expiry = time.Time{}
	}
	for _, key := range []string{"scopes", "scope"} {
		if raw, ok := t.Extra(key).(string); ok && raw != "" {
			tok.Scopes = strings.Fields(raw)
			break
		}
	}
	return tok
}
