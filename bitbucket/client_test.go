package bitbucket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/bbcloud/bitbucket/auth"
)

// newTestClient points both API versions at a test server
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{
		WithBaseURL(V1, server.URL+"/1.0"),
		WithBaseURL(V2, server.URL+"/2.0"),
	}, opts...)

	client, err := NewClient(zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client, server
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{
			name: "defaults",
		},
		{
			name: "custom base URL without trailing slash",
			opts: []Option{WithBaseURL(V2, "https://bitbucket.example.com/api/2.0")},
		},
		{
			name:    "relative base URL",
			opts:    []Option{WithBaseURL(V1, "/1.0/")},
			wantErr: true,
		},
		{
			name:    "zero page length",
			opts:    []Option{WithPageLen(0)},
			wantErr: true,
		},
		{
			name:    "negative page length",
			opts:    []Option{WithPageLen(-5)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(logger, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client.Users)
			assert.Equal(t, auth.SchemeNone, client.Authenticator().Scheme())
		})
	}
}

func TestClientOptions(t *testing.T) {
	httpClient := &http.Client{Timeout: 5 * time.Second}

	client, err := NewClient(zerolog.Nop(),
		WithHTTPClient(httpClient),
		WithUserAgent("custom/1.0"),
		WithPageLen(25),
		WithBaseURL(V2, "https://example.com/2.0"),
	)
	require.NoError(t, err)

	assert.Same(t, httpClient, client.httpClient)
	assert.Equal(t, "custom/1.0", client.userAgent)
	assert.Equal(t, 25, client.pageLen)
	assert.Equal(t, "https://example.com/2.0/", client.BaseURL(V2))
	assert.Equal(t, DefaultV1BaseURL, client.BaseURL(V1))
}

func TestNewRequestRejectsQueryInPath(t *testing.T) {
	_, err := NewRequest(V2, http.MethodGet, "repositories?role=member", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryInPath)
}

func TestDoSendsHeadersAndQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2.0/repositories/team", r.URL.Path)
		assert.Equal(t, "member", r.URL.Query().Get("role"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"full_name":"team/repo"}`))
	})

	req, err := NewRequest(V2, http.MethodGet, "/repositories/team", map[string][]string{"role": {"member"}}, nil)
	require.NoError(t, err)

	repo, err := Execute[Repository](context.Background(), client, req)
	require.NoError(t, err)
	assert.Equal(t, "team/repo", repo.FullName)
}

func TestDoEncodesBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"scm":"git","is_private":true}`, string(body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"slug":"repo","scm":"git"}`))
	})

	repo, err := client.Repositories.Create(context.Background(), "team", "repo", &Repository{SCM: "git", IsPrivate: true})
	require.NoError(t, err)
	assert.Equal(t, "repo", repo.Slug)
}

func TestDoAPIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		check       func(t *testing.T, apiErr *APIError)
	}{
		{
			name:        "error envelope",
			status:      http.StatusBadRequest,
			body:        `{"type":"error","error":{"message":"You must provide a search query","fields":{"q":["required"]},"detail":"see docs","id":"abc123"}}`,
			wantMessage: "You must provide a search query",
			check: func(t *testing.T, apiErr *APIError) {
				assert.Equal(t, []string{"required"}, apiErr.FieldErrors("q"))
				assert.Equal(t, "see docs", apiErr.Detail)
				assert.Equal(t, "abc123", apiErr.ID)
			},
		},
		{
			name:        "single field message",
			status:      http.StatusBadRequest,
			body:        `{"type":"error","error":{"message":"Bad request","fields":{"name":"taken"}}}`,
			wantMessage: "Bad request",
			check: func(t *testing.T, apiErr *APIError) {
				assert.Equal(t, []string{"taken"}, apiErr.FieldErrors("name"))
			},
		},
		{
			name:        "keyed error",
			status:      http.StatusConflict,
			body:        `{"key":"repo.exists","message":"Repository already exists","arguments":{"slug":"repo"}}`,
			wantMessage: "Repository already exists",
			check: func(t *testing.T, apiErr *APIError) {
				assert.Equal(t, "repo.exists", apiErr.Key)
				assert.Equal(t, "repo", apiErr.Arguments["slug"])
			},
		},
		{
			name:        "plain text",
			status:      http.StatusBadGateway,
			body:        "upstream unavailable\n",
			wantMessage: "upstream unavailable",
		},
		{
			name:        "empty body",
			status:      http.StatusNotFound,
			body:        "",
			wantMessage: "404 Not Found",
			check: func(t *testing.T, apiErr *APIError) {
				assert.True(t, apiErr.IsNotFound())
			},
		},
		{
			name:        "redirect is an error",
			status:      http.StatusNotModified,
			body:        "",
			wantMessage: "304 Not Modified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Repositories.Get(context.Background(), "team", "repo")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, apiErr.Body)
			if tt.check != nil {
				tt.check(t, apiErr)
			}
		})
	}
}

func TestAPIErrorSentinels(t *testing.T) {
	notFound := &APIError{StatusCode: http.StatusNotFound}
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", notFound), ErrNotFound)
	assert.NotErrorIs(t, notFound, ErrUnauthorized)

	forbidden := &APIError{StatusCode: http.StatusForbidden}
	assert.ErrorIs(t, forbidden, ErrUnauthorized)
}

func TestDoTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(zerolog.Nop(), WithBaseURL(V2, url+"/2.0"))
	require.NoError(t, err)

	_, err = client.Users.Current(context.Background())
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodGet, transportErr.Method)
	assert.Contains(t, transportErr.URL, "/2.0/user")
}

func TestDoDeserializationError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"display_name": 42}`))
	})

	_, err := client.Users.Current(context.Background())
	require.Error(t, err)

	var decodeErr *DeserializationError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "User", decodeErr.Target.Name())
	assert.Contains(t, decodeErr.Body, "42")
}

func TestDeserializationErrorTruncatesOnRuneBoundary(t *testing.T) {
	// 199 ASCII bytes put the 2-byte rune across the 200 byte limit
	body := strings.Repeat("a", 199) + "é" + strings.Repeat("z", 50)
	err := &DeserializationError{Target: reflect.TypeOf(User{}), Body: body, Err: errors.New("bad")}

	msg := err.Error()
	assert.True(t, utf8.ValidString(msg))
	assert.Contains(t, msg, strings.Repeat("a", 199)+"...")
	assert.NotContains(t, msg, "é")
	assert.NotContains(t, msg, "z")
}

func TestDoEmptyBodyLeavesZeroValue(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req, err := NewRequest(V2, http.MethodGet, "user", nil, nil)
	require.NoError(t, err)

	user := User{DisplayName: "stale"}
	require.NoError(t, client.Do(context.Background(), req, &user))
	assert.Equal(t, User{}, user)
}

func TestDoRawTargets(t *testing.T) {
	const diff = "diff --git a/x b/x\n"
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2.0/repositories/team/repo/pullrequests/7/diff", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(diff))
	})

	got, err := client.PullRequests.Diff(context.Background(), "team", "repo", 7)
	require.NoError(t, err)
	assert.Equal(t, diff, got)

	req, err := NewRequest(V2, http.MethodGet, "repositories/team/repo/pullrequests/7/diff", nil, nil)
	require.NoError(t, err)
	var raw []byte
	require.NoError(t, client.Do(context.Background(), req, &raw))
	assert.Equal(t, []byte(diff), raw)
}

func TestDoIsIdempotentForGet(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"username":"jdoe"}`))
	})

	first, err := client.Users.Current(context.Background())
	require.NoError(t, err)
	second, err := client.Users.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoUsesV1BaseURL(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.0/users/jdoe/followers", r.URL.Path)
		w.Write([]byte(`{"count":1,"followers":[{"username":"fan","is_team":false}]}`))
	})

	followers, err := client.UsersV1.Followers(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.Equal(t, 1, followers.Count)
	require.Len(t, followers.Followers, 1)
	assert.Equal(t, "fan", followers.Followers[0].Username)
}

// staleAuth fails its first credential and succeeds after a refresh
type staleAuth struct {
	refreshed atomic.Int32
	err       error
}

func (a *staleAuth) Scheme() string { return "test" }

func (a *staleAuth) Authenticate(_ context.Context, r *http.Request) error {
	r.Header.Set("Authorization", fmt.Sprintf("Bearer token-%d", a.refreshed.Load()))
	return nil
}

func (a *staleAuth) Refresh(context.Context) error {
	if a.err != nil {
		return a.err
	}
	a.refreshed.Add(1)
	return nil
}

func TestDoRefreshesOnceOn401(t *testing.T) {
	authenticator := &staleAuth{}
	var calls atomic.Int32

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"username":"jdoe"}`))
	}, WithAuthenticator(authenticator))

	user, err := client.Users.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jdoe", user.Username)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), authenticator.refreshed.Load())
}

func TestDoGivesUpAfterSecond401(t *testing.T) {
	authenticator := &staleAuth{}
	var calls atomic.Int32

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}, WithAuthenticator(authenticator))

	_, err := client.Users.Current(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoRefreshFailure(t *testing.T) {
	refreshErr := &auth.AuthenticationError{Scheme: "test", Err: errors.New("revoked")}
	authenticator := &staleAuth{err: refreshErr}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, WithAuthenticator(authenticator))

	_, err := client.Users.Current(context.Background())
	var authErr *auth.AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestDoNoRefreshForBasic(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "jdoe", user)
		assert.Equal(t, "wrong", pass)
		w.WriteHeader(http.StatusUnauthorized)
	}, WithAuthenticator(auth.NewBasic("jdoe", "wrong")))

	_, err := client.Users.Current(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGo(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"username":"jdoe"}`))
	})

	req, err := NewRequest(V2, http.MethodGet, "user", nil, nil)
	require.NoError(t, err)

	var user User
	require.NoError(t, <-client.Go(context.Background(), req, &user))
	assert.Equal(t, "jdoe", user.Username)
}

func TestDoReports401WhenNothingToRefresh(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "Bearer revoked", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"message":"Access token expired."}}`))
	}, WithAuthenticator(auth.NewOAuth2PreAcquiredToken(auth.OAuth2Config{}, &auth.Token{AccessToken: "revoked"})))

	_, err := client.Users.Current(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Access token expired.", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}
