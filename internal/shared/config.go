package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override [TidalCredentials].
const (
	EnvAccessToken  = "TIDAL_ACCESS_TOKEN"
	EnvRefreshToken = "TIDAL_REFRESH_TOKEN"
	EnvUserID       = "TIDAL_USER_ID"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Client      ClientConfig      `toml:"client"`
	Export      ExportConfig      `toml:"export"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Tidal TidalCredentials `toml:"tidal"`
}

// TidalCredentials contains the session a TIDAL client is built from.
type TidalCredentials struct {
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	UserID       string `toml:"user_id"`
	ClientID     string `toml:"client_id"`
	CountryCode  string `toml:"country_code"`
	Locale       string `toml:"locale"`
}

// ClientConfig contains HTTP client settings.
type ClientConfig struct {
	V1URL          string `toml:"v1_url"`
	V2URL          string `toml:"v2_url"`
	TokenURL       string `toml:"token_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	SessionRegion  bool   `toml:"session_region"`
	BodyEncoding   string `toml:"body_encoding"`
}

// Timeout returns the request timeout, or zero for none.
func (c ClientConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExportConfig contains playlist export settings.
type ExportConfig struct {
	OutputDir string  `toml:"output_dir"`
	Format    string  `toml:"format"`
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides credentials with any non-empty TIDAL_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := strings.TrimSpace(getenv(EnvAccessToken)); v != "" {
		c.Credentials.Tidal.AccessToken = v
	}
	if v := strings.TrimSpace(getenv(EnvRefreshToken)); v != "" {
		c.Credentials.Tidal.RefreshToken = v
	}
	if v := strings.TrimSpace(getenv(EnvUserID)); v != "" {
		c.Credentials.Tidal.UserID = v
	}
}

// Validate checks the settings that cannot be caught by the client itself.
func (c *Config) Validate() error {
	switch c.Client.BodyEncoding {
	case "", "form", "json":
	default:
		return fmt.Errorf("%w: body_encoding must be form or json, got %q", ErrInvalidConfig, c.Client.BodyEncoding)
	}

	switch c.Export.Format {
	case "", "json", "csv", "markdown", "txt":
	default:
		return fmt.Errorf("%w: unknown export format %q", ErrInvalidConfig, c.Export.Format)
	}

	if c.Export.Workers < 0 || c.Export.RateLimit < 0 {
		return fmt.Errorf("%w: export workers and rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
