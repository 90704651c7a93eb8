package bitbucket

import (
	"net/http"
	"time"

	"github.com/s0up4200/bbcloud/bitbucket/auth"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	authenticator auth.Authenticator
	httpClient    *http.Client
	timeout       time.Duration
	baseURLs      map[APIVersion]string
	userAgent     string
	pageLen       int
}

func defaultOptions() clientOptions {
	return clientOptions{
		authenticator: auth.None{},
		timeout:       DefaultTimeout,
		baseURLs: map[APIVersion]string{
			V1: DefaultV1BaseURL,
			V2: DefaultV2BaseURL,
		},
		userAgent: DefaultUserAgent,
		pageLen:   DefaultPageLen,
	}
}

// WithAuthenticator sets the credential scheme. Defaults to auth.None.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(o *clientOptions) {
		if a != nil {
			o.authenticator = a
		}
	}
}

// WithHTTPClient sets a custom HTTP client. Its Timeout wins over WithTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTimeout sets the per-call HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithBaseURL overrides the origin of one API version.
func WithBaseURL(version APIVersion, baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURLs[version] = baseURL
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithPageLen sets the default number of items requested per page. It must
// be positive; NewClient rejects anything else.
func WithPageLen(n int) Option {
	return func(o *clientOptions) {
		o.pageLen = n
	}
}
