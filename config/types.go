package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Bitbucket BitbucketConfig `mapstructure:"bitbucket"`
	Auth      AuthConfig      `mapstructure:"auth"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// BitbucketConfig holds API endpoints and paging defaults
type BitbucketConfig struct {
	V1URL     string        `mapstructure:"v1_url"`
	V2URL     string        `mapstructure:"v2_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	PageLen   int           `mapstructure:"page_len"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Auth methods
const (
	AuthNone              = "none"
	AuthBasic             = "basic"
	AuthOAuth1            = "oauth1"
	AuthClientCredentials = "client_credentials"
	AuthAuthorizationCode = "authorization_code"
	AuthToken             = "token"
)

// AuthConfig selects and configures the credential scheme
type AuthConfig struct {
	Method string `mapstructure:"method"`

	// basic
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// oauth1 two-legged and all oauth2 flows
	ConsumerKey    string `mapstructure:"consumer_key"`
	ConsumerSecret string `mapstructure:"consumer_secret"`

	AuthorizeURL string   `mapstructure:"authorize_url"`
	TokenURL     string   `mapstructure:"token_url"`
	RedirectURL  string   `mapstructure:"redirect_url"`
	Scopes       []string `mapstructure:"scopes"`

	// authorization_code
	Code string `mapstructure:"code"`

	// token
	AccessToken  string `mapstructure:"access_token"`
	RefreshToken string `mapstructure:"refresh_token"`
}

// HTTPConfig controls caller-side retries
type HTTPConfig struct {
	Retries      int           `mapstructure:"retries"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
}

// FilterConfig maps names to saved filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
