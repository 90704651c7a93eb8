package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BBCLOUD_AUTH_PASSWORD
const EnvPrefix = "BBCLOUD"

// Load loads the configuration from file and environment. A missing config
// file is not an error when no path was given.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "bbcloud"))
		}
		v.AddConfigPath("/etc/bbcloud/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key needs a default
// for AutomaticEnv to pick up its environment override.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bitbucket.v1_url", "https://api.bitbucket.org/1.0/")
	v.SetDefault("bitbucket.v2_url", "https://api.bitbucket.org/2.0/")
	v.SetDefault("bitbucket.timeout", "30s")
	v.SetDefault("bitbucket.page_len", 50)
	v.SetDefault("bitbucket.user_agent", "")

	v.SetDefault("auth.method", AuthNone)
	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.consumer_key", "")
	v.SetDefault("auth.consumer_secret", "")
	v.SetDefault("auth.authorize_url", "https://bitbucket.org/site/oauth2/authorize")
	v.SetDefault("auth.token_url", "https://bitbucket.org/site/oauth2/access_token")
	v.SetDefault("auth.redirect_url", "")
	v.SetDefault("auth.scopes", []string{})
	v.SetDefault("auth.code", "")
	v.SetDefault("auth.access_token", "")
	v.SetDefault("auth.refresh_token", "")

	v.SetDefault("http.retries", 0)
	v.SetDefault("http.retry_wait_min", "1s")
	v.SetDefault("http.retry_wait_max", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Bitbucket.V1URL == "" || cfg.Bitbucket.V2URL == "" {
		return fmt.Errorf("bitbucket.v1_url and bitbucket.v2_url are required")
	}
	if cfg.Bitbucket.PageLen <= 0 {
		return fmt.Errorf("bitbucket.page_len must be positive, got %d", cfg.Bitbucket.PageLen)
	}
	if cfg.Bitbucket.Timeout < 0 {
		return fmt.Errorf("bitbucket.timeout must not be negative")
	}

	if err := validateAuth(&cfg.Auth); err != nil {
		return err
	}

	if cfg.HTTP.Retries < 0 {
		return fmt.Errorf("http.retries must not be negative")
	}
	if cfg.HTTP.Retries > 0 && cfg.HTTP.RetryWaitMax < cfg.HTTP.RetryWaitMin {
		return fmt.Errorf("http.retry_wait_max must be at least http.retry_wait_min")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

func validateAuth(a *AuthConfig) error {
	switch a.Method {
	case AuthNone:
	case AuthBasic:
		if a.Username == "" || a.Password == "" {
			return fmt.Errorf("auth.username and auth.password are required for basic auth")
		}
	case AuthOAuth1, AuthClientCredentials, AuthAuthorizationCode:
		if a.ConsumerKey == "" || a.ConsumerSecret == "" {
			return fmt.Errorf("auth.consumer_key and auth.consumer_secret are required for %s", a.Method)
		}
	case AuthToken:
		if a.AccessToken == "" && a.RefreshToken == "" {
			return fmt.Errorf("auth.access_token or auth.refresh_token is required for token auth")
		}
	default:
		return fmt.Errorf("invalid auth.method: %s", a.Method)
	}
	return nil
}
