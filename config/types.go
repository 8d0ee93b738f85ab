package config

import (
	"time"

	"github.com/s0up4200/cfclient/confluence"
)

// Config represents the complete configuration structure
type Config struct {
	Confluence ConfluenceConfig `mapstructure:"confluence"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Client     ClientConfig     `mapstructure:"client"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Filter     FilterConfig     `mapstructure:"filter"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ConfluenceConfig locates the Confluence site
type ConfluenceConfig struct {
	// URL is the site base, e.g. https://example.atlassian.net/wiki
	URL string `mapstructure:"url"`
}

// AuthConfig holds credentials. Either email and api_token, or bearer_token,
// or nothing for anonymous access.
type AuthConfig struct {
	Email       string `mapstructure:"email"`
	APIToken    string `mapstructure:"api_token"`
	BearerToken string `mapstructure:"bearer_token"`
}

// ClientConfig tunes the HTTP client
type ClientConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// UploadConfig contains attachment upload settings
type UploadConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	DefaultExpression string            `mapstructure:"default_expression"`
	Presets           map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// AuthMethod returns the configured credentials, or nil for anonymous access
func (a AuthConfig) AuthMethod() confluence.AuthMethod {
	switch {
	case a.BearerToken != "":
		return confluence.BearerAuth{Token: a.BearerToken}
	case a.Email != "" && a.APIToken != "":
		return confluence.BasicAuth{Email: a.Email, APIToken: a.APIToken}
	default:
		return nil
	}
}
