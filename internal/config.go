package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Upstream  UpstreamConfig    `yaml:"upstream"`
	Stream    StreamConfig      `yaml:"stream"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Scenarios ScenarioConfig    `yaml:"scenarios"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Upstream.Validate(); err != nil {
		return err
	}
	if err := c.Stream.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Scenarios.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// UpstreamConfig points at the agent backend this service interprets. Both
// URLs are optional: with no events URL the service runs scenario-only, and
// with no graph URL the graph endpoint serves an empty layout.
type UpstreamConfig struct {
	EventsURL        string `yaml:"events_url"`
	GraphURL         string `yaml:"graph_url"`
	GraphPollSeconds int    `yaml:"graph_poll_seconds"`
}

// Validate validates the upstream configuration.
func (c *UpstreamConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.EventsURL, is.URL),
		validation.Field(&c.GraphURL, is.URL),
		validation.Field(&c.GraphPollSeconds, validation.Min(0)),
	)
}

// GraphPollInterval returns the graph polling interval, defaulting to 5s.
func (c *UpstreamConfig) GraphPollInterval() time.Duration {
	if c.GraphPollSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.GraphPollSeconds) * time.Second
}

// StreamConfig holds event retention configuration.
type StreamConfig struct {
	Limit int `yaml:"limit"`
}

// Validate validates the stream configuration.
func (c *StreamConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Limit, validation.Min(0)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// ScenarioConfig holds the path to the scenario scripts directory.
type ScenarioConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the scenario configuration.
func (c *ScenarioConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Upstream: UpstreamConfig{
			GraphPollSeconds: 5,
		},
		Stream: StreamConfig{
			Limit: 150,
		},
		SQLite: SQLiteConfig{
			Path: "./opsdeck.db",
		},
		Scenarios: ScenarioConfig{
			Dir: "./config/scenarios",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
