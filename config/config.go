package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CFCLIENT_AUTH_API_TOKEN
const EnvPrefix = "CFCLIENT"

const maxUploadConcurrency = 20

// Load reads the configuration from configPath, or from config.yaml in the
// standard locations when configPath is empty. Values from a .env file in the
// working directory and CFCLIENT_* variables override the file.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

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
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".cfclient"))
		}
		v.AddConfigPath("/etc/cfclient/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit path the environment alone may configure the client
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

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("confluence.url", "")

	v.SetDefault("auth.email", "")
	v.SetDefault("auth.api_token", "")
	v.SetDefault("auth.bearer_token", "")

	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.user_agent", "")

	v.SetDefault("upload.concurrency", 4)

	v.SetDefault("filter.default_expression", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Confluence.URL == "" {
		return fmt.Errorf("confluence.url is required")
	}
	u, err := url.Parse(cfg.Confluence.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("confluence.url must be an absolute http(s) URL: %s", cfg.Confluence.URL)
	}

	auth := cfg.Auth
	if auth.BearerToken != "" && (auth.Email != "" || auth.APIToken != "") {
		return fmt.Errorf("auth.bearer_token cannot be combined with auth.email/auth.api_token")
	}
	if (auth.Email == "") != (auth.APIToken == "") {
		return fmt.Errorf("auth.email and auth.api_token must be set together")
	}

	if cfg.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive: %s", cfg.Client.Timeout)
	}

	if cfg.Upload.Concurrency < 1 || cfg.Upload.Concurrency > maxUploadConcurrency {
		return fmt.Errorf("upload.concurrency must be between 1 and %d: %d", maxUploadConcurrency, cfg.Upload.Concurrency)
	}

	for name, expression := range cfg.Filter.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter preset %q has an empty expression", name)
		}
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
