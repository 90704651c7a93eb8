package cmd

import (
	"fmt"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/s0up4200/bbcloud/bitbucket"
	"github.com/s0up4200/bbcloud/bitbucket/auth"
	"github.com/s0up4200/bbcloud/config"
)

// newClient builds the API client described by cfg
func newClient(cfg *config.Config, logger zerolog.Logger) (*bitbucket.Client, error) {
	httpClient := newHTTPClient(cfg, logger)

	authenticator, err := newAuthenticator(cfg.Auth, httpClient)
	if err != nil {
		return nil, err
	}
	if rt, ok := httpClient.Transport.(*retryablehttp.RoundTripper); ok {
		rt.Client.PrepareRetry = resignHook(authenticator)
	}

	userAgent := cfg.Bitbucket.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent()
	}

	return bitbucket.NewClient(logger,
		bitbucket.WithAuthenticator(authenticator),
		bitbucket.WithHTTPClient(httpClient),
		bitbucket.WithBaseURL(bitbucket.V1, cfg.Bitbucket.V1URL),
		bitbucket.WithBaseURL(bitbucket.V2, cfg.Bitbucket.V2URL),
		bitbucket.WithPageLen(cfg.Bitbucket.PageLen),
		bitbucket.WithUserAgent(userAgent),
	)
}

// newHTTPClient returns a pooled client, wrapped with retries when
// http.retries is set. The last response is passed through after retries
// run out so API errors keep their body.
func newHTTPClient(cfg *config.Config, logger zerolog.Logger) *http.Client {
	base := cleanhttp.DefaultPooledClient()
	base.Timeout = cfg.Bitbucket.Timeout

	if cfg.HTTP.Retries <= 0 {
		return base
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = base
	retryClient.RetryMax = cfg.HTTP.Retries
	retryClient.RetryWaitMin = cfg.HTTP.RetryWaitMin
	retryClient.RetryWaitMax = cfg.HTTP.RetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = retryLogger{logger: logger.With().Str("component", "retry").Logger()}

	httpClient := retryClient.StandardClient()
	httpClient.Timeout = cfg.Bitbucket.Timeout
	return httpClient
}

// resignHook gives each retried attempt a fresh OAuth1 nonce and timestamp,
// which servers reject when reused. Basic and bearer headers stay valid
// across attempts and are left as they are.
func resignHook(a auth.Authenticator) retryablehttp.PrepareRetry {
	signer, ok := a.(*auth.OAuth1TwoLegged)
	if !ok {
		return nil
	}
	return func(req *http.Request) error {
		return signer.Authenticate(req.Context(), req)
	}
}

// newAuthenticator maps the auth section onto an authenticator. Token
// endpoint calls go through httpClient.
func newAuthenticator(a config.AuthConfig, httpClient *http.Client) (auth.Authenticator, error) {
	oauth := auth.OAuth2Config{
		ClientID:     a.ConsumerKey,
		ClientSecret: a.ConsumerSecret,
		AuthURL:      a.AuthorizeURL,
		TokenURL:     a.TokenURL,
		RedirectURL:  a.RedirectURL,
		Scopes:       a.Scopes,
		HTTPClient:   httpClient,
	}

	switch a.Method {
	case config.AuthNone, "":
		return auth.None{}, nil
	case config.AuthBasic:
		return auth.NewBasic(a.Username, a.Password), nil
	case config.AuthOAuth1:
		return auth.NewOAuth1TwoLegged(a.ConsumerKey, a.ConsumerSecret), nil
	case config.AuthClientCredentials:
		return auth.NewOAuth2ClientCredentials(oauth), nil
	case config.AuthAuthorizationCode:
		return auth.NewOAuth2AuthorizationCode(oauth, a.Code), nil
	case config.AuthToken:
		return auth.NewOAuth2PreAcquiredToken(oauth, &auth.Token{
			AccessToken:  a.AccessToken,
			RefreshToken: a.RefreshToken,
			TokenType:    "Bearer",
		}), nil
	default:
		return nil, fmt.Errorf("unsupported auth method: %s", a.Method)
	}
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger
type retryLogger struct {
	logger zerolog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
