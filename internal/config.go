package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

var clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Itinerary ItineraryConfig   `yaml:"itinerary"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Countdown CountdownConfig   `yaml:"countdown"`
	Narration NarrationConfig   `yaml:"narration"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Itinerary.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Countdown.Validate(); err != nil {
		return err
	}
	if err := c.Narration.Validate(); err != nil {
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

// ItineraryConfig holds the path to the canonical itinerary file.
type ItineraryConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the itinerary configuration.
func (c *ItineraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds the completion-state database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CountdownConfig holds the daily hard-deadline settings: the HH:MM target
// (e.g. the last safe train back to the port) and the sentinel text shown
// once the deadline has passed.
type CountdownConfig struct {
	Target         string `yaml:"target"`
	ReachedDisplay string `yaml:"reached_display"`
}

// Validate validates the countdown configuration.
func (c *CountdownConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Target, validation.Required, validation.Match(clockRe)),
	)
}

// NarrationConfig holds the speech-engine parameters for activity
// narration and for phrasebook pronunciation.
type NarrationConfig struct {
	Language       string  `yaml:"language"`
	Rate           float64 `yaml:"rate"`
	PhraseLanguage string  `yaml:"phrase_language"`
	PhraseRate     float64 `yaml:"phrase_rate"`
}

// Validate validates the narration configuration.
func (c *NarrationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Language, validation.Required),
		validation.Field(&c.Rate, validation.Required, validation.Min(0.1), validation.Max(4.0)),
		validation.Field(&c.PhraseLanguage, validation.Required),
		validation.Field(&c.PhraseRate, validation.Required, validation.Min(0.1), validation.Max(4.0)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
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
		Itinerary: ItineraryConfig{
			Path: "./config/itinerary.yaml",
		},
		SQLite: SQLiteConfig{
			Path: "./daytrip.db",
		},
		Countdown: CountdownConfig{
			Target: "16:48",
		},
		Narration: NarrationConfig{
			Language:       "es-ES",
			Rate:           0.95,
			PhraseLanguage: "it-IT",
			PhraseRate:     0.85,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
