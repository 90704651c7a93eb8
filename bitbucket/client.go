package bitbucket

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"

	"github.com/s0up4200/bbcloud/bitbucket/auth"
)

// Defaults
const (
	DefaultV1BaseURL = "https://api.bitbucket.org/1.0/"
	DefaultV2BaseURL = "https://api.bitbucket.org/2.0/"
	DefaultTimeout   = 30 * time.Second
	DefaultPageLen   = 50
	DefaultUserAgent = "bbcloud"
)

// apiEndpoint is the origin and serializer of one API version
type apiEndpoint struct {
	base  *url.URL
	codec *Codec
}

// Client represents a Bitbucket Cloud API client. It is not safe for
// concurrent use unless its authenticator is.
type Client struct {
	endpoints  map[APIVersion]apiEndpoint
	httpClient *http.Client
	auth       auth.Authenticator
	userAgent  string
	pageLen    int
	logger     zerolog.Logger

	Users        *UsersService
	UsersV1      *UsersV1Service
	Repositories *RepositoriesService
	PullRequests *PullRequestsService
	Issues       *IssuesService
	Refs         *RefsService
	Pipelines    *PipelinesService
}

// NewClient creates a new Bitbucket client
func NewClient(logger zerolog.Logger, opts ...Option) (*Client, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.pageLen <= 0 {
		return nil, fmt.Errorf("%w: page length must be positive", ErrInvalidConfig)
	}

	endpoints := make(map[APIVersion]apiEndpoint, 2)
	for _, version := range []APIVersion{V1, V2} {
		base, err := parseBaseURL(options.baseURLs[version])
		if err != nil {
			return nil, fmt.Errorf("%w: %s base URL: %v", ErrInvalidConfig, version, err)
		}
		endpoints[version] = apiEndpoint{base: base, codec: NewCodec(version)}
	}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = options.timeout
	}

	c := &Client{
		endpoints:  endpoints,
		httpClient: httpClient,
		auth:       options.authenticator,
		userAgent:  options.userAgent,
		pageLen:    options.pageLen,
		logger:     logger,
	}

	c.Users = &UsersService{client: c}
	c.UsersV1 = &UsersV1Service{client: c}
	c.Repositories = &RepositoriesService{client: c}
	c.PullRequests = &PullRequestsService{client: c}
	c.Issues = &IssuesService{client: c}
	c.Refs = &RefsService{client: c}
	c.Pipelines = &PipelinesService{client: c}

	return c, nil
}

// parseBaseURL ensures the base ends with a slash so relative paths resolve
// beneath the version segment.
func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty URL")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("URL %q must be absolute", raw)
	}
	return u, nil
}

// Codec returns the serializer of an API version
func (c *Client) Codec(version APIVersion) *Codec {
	return c.endpoints[version].codec
}

// BaseURL returns the origin of an API version
func (c *Client) BaseURL(version APIVersion) string {
	return c.endpoints[version].base.String()
}

// Authenticator returns the configured credential scheme
func (c *Client) Authenticator() auth.Authenticator {
	return c.auth
}
