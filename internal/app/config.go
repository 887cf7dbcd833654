package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/kintai/internal/freee"
	"github.com/florianilch/kintai/internal/oauth"
	"github.com/florianilch/kintai/internal/store"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogExporter selects where log records are additionally exported.
type LogExporter string

const (
	LogExporterNone     LogExporter = "none"
	LogExporterStdout   LogExporter = "stdout"
	LogExporterOTLPHTTP LogExporter = "otlp-http"
	LogExporterOTLPGRPC LogExporter = "otlp-grpc"
)

// ConfigStorageType represents where the client configuration is kept.
type ConfigStorageType string

const (
	ConfigStorageTypeFile ConfigStorageType = "file"
	ConfigStorageTypeEnv  ConfigStorageType = "env"
)

// TokenStorageType represents where the token record is kept.
type TokenStorageType string

const (
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeKeyring TokenStorageType = "keyring"

	// tokenStorageTypeEnv is rejected: refreshed tokens must be written back.
	tokenStorageTypeEnv TokenStorageType = "env"
)

// Default configuration values
const (
	DefaultConfigLogFormat          = LogFormatText
	DefaultConfigLogExporter        = LogExporterNone
	DefaultConfigDataDir            = "."
	DefaultConfigTimezone           = "Local"
	DefaultConfigAPIBaseURL         = freee.DefaultBaseURL
	DefaultConfigAPITimeout         = 30 * time.Second
	DefaultConfigOAuthAuthURL       = oauth.DefaultAuthURL
	DefaultConfigOAuthTokenURL      = oauth.DefaultTokenURL
	DefaultConfigOAuthRedirectURI   = oauth.RedirectURIOutOfBand
	DefaultConfigStorageConfig      = ConfigStorageTypeFile
	DefaultConfigStorageConfigFile  = "config.json"
	DefaultConfigStorageToken       = TokenStorageTypeFile
	DefaultConfigStorageTokenFile   = "token.json"
	DefaultConfigStorageConfigEnvPx = store.DefaultEnvPrefix
)

// APIConfig holds freee HR API settings.
type APIConfig struct {
	BaseURL string        `json:"base_url" validate:"required,url"`
	Timeout time.Duration `json:"timeout" validate:"gte=0"`
}

// OAuthConfig holds the authorization server settings.
type OAuthConfig struct {
	AuthURL  string `json:"auth_url" validate:"required,url"`
	TokenURL string `json:"token_url" validate:"required,url"`

	// RedirectURI must match the one registered for the app. A loopback
	// http URL makes auth receive the code automatically.
	RedirectURI string `json:"redirect_uri" validate:"required"`
}

// StorageConfig describes how to construct the config and token stores.
// Relative file paths are resolved against Config.DataDir.
type StorageConfig struct {
	Config     ConfigStorageType `json:"config" validate:"required,oneof=file env"`
	ConfigFile string            `json:"config_file,omitempty"`
	EnvPrefix  string            `json:"env_prefix,omitempty"`

	Token       TokenStorageType `json:"token" validate:"required,oneof=file keyring"`
	TokenFile   string           `json:"token_file,omitempty"`
	KeyringUser string           `json:"keyring_user,omitempty"`
}

// Config holds the application's settings.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel    slog.Level  `json:"log_level"`
	LogFormat   LogFormat   `json:"log_format" validate:"oneof=text json"`
	LogExporter LogExporter `json:"log_exporter" validate:"oneof=none stdout otlp-http otlp-grpc"`

	// DataDir holds config.json and token.json (defaults to the working directory).
	DataDir string `json:"data_dir" validate:"required"`

	// Timezone decides which calendar day a punch belongs to.
	Timezone string `json:"timezone" validate:"required"`

	API     APIConfig     `json:"api"`
	OAuth   OAuthConfig   `json:"oauth"`
	Storage StorageConfig `json:"storage"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.LogExporter == "" {
		c.LogExporter = DefaultConfigLogExporter
	}
	if c.DataDir == "" {
		c.DataDir = DefaultConfigDataDir
	}
	if c.Timezone == "" {
		c.Timezone = DefaultConfigTimezone
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultConfigAPIBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultConfigAPITimeout
	}
	if c.OAuth.AuthURL == "" {
		c.OAuth.AuthURL = DefaultConfigOAuthAuthURL
	}
	if c.OAuth.TokenURL == "" {
		c.OAuth.TokenURL = DefaultConfigOAuthTokenURL
	}
	if c.OAuth.RedirectURI == "" {
		c.OAuth.RedirectURI = DefaultConfigOAuthRedirectURI
	}
	if c.Storage.Config == "" {
		c.Storage.Config = DefaultConfigStorageConfig
	}
	if c.Storage.Token == "" {
		c.Storage.Token = DefaultConfigStorageToken
	}

	switch c.Storage.Config {
	case ConfigStorageTypeFile:
		if c.Storage.ConfigFile == "" {
			c.Storage.ConfigFile = DefaultConfigStorageConfigFile
		}
	case ConfigStorageTypeEnv:
		if c.Storage.EnvPrefix == "" {
			c.Storage.EnvPrefix = DefaultConfigStorageConfigEnvPx
		}
	}

	switch c.Storage.Token {
	case TokenStorageTypeFile:
		if c.Storage.TokenFile == "" {
			c.Storage.TokenFile = DefaultConfigStorageTokenFile
		}
	case TokenStorageTypeKeyring:
		if c.Storage.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("storage.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Storage.KeyringUser = currentUser.Username
		}
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	// Refreshing rotates the refresh token, so it must be written back
	if c.Storage.Token == tokenStorageTypeEnv {
		return errors.New("token storage must be writable, env is read-only")
	}

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if _, err := url.Parse(c.OAuth.RedirectURI); err != nil {
		return fmt.Errorf("invalid oauth.redirect_uri: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	switch c.Storage.Config {
	case ConfigStorageTypeFile:
		if c.Storage.ConfigFile == "" {
			return errors.New("storage.config_file required for file storage")
		}
	case ConfigStorageTypeEnv:
		if c.Storage.EnvPrefix == "" {
			return errors.New("storage.env_prefix required for env storage")
		}
	}

	switch c.Storage.Token {
	case TokenStorageTypeFile:
		if c.Storage.TokenFile == "" {
			return errors.New("storage.token_file required for file storage")
		}
	case TokenStorageTypeKeyring:
		if c.Storage.KeyringUser == "" {
			return errors.New("storage.keyring_user required for keyring storage")
		}
	}

	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// NewConfigStore creates the configured ConfigStore.
func (c *Config) NewConfigStore() (store.ConfigStore, error) {
	switch c.Storage.Config {
	case ConfigStorageTypeFile:
		return store.NewFileConfigStore(c.resolve(c.Storage.ConfigFile))
	case ConfigStorageTypeEnv:
		return store.NewEnvConfigStore(c.Storage.EnvPrefix)
	default:
		return nil, fmt.Errorf("unsupported config storage type: %s", c.Storage.Config)
	}
}

// NewTokenStore creates the configured TokenStore.
func (c *Config) NewTokenStore() (store.TokenStore, error) {
	switch c.Storage.Token {
	case TokenStorageTypeFile:
		return store.NewFileTokenStore(c.resolve(c.Storage.TokenFile))
	case TokenStorageTypeKeyring:
		return store.NewKeyringTokenStore(store.DefaultKeyringService, c.Storage.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported token storage type: %s", c.Storage.Token)
	}
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}
