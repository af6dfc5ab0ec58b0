package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Validation errors.
var (
	ErrMissingBaseURL     = errors.New("baseURL is required")
	ErrMissingCredentials = errors.New("clientID and clientSecret are required")
)

// DefaultPollInterval is the component watchdog interval applied when
// the configuration leaves it unset.
const DefaultPollInterval = 10 * time.Second

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Retry tunes the socket open-attempt retry loop. Zero fields select
// the connection defaults.
type Retry struct {
	MaxAttempts  int      `yaml:"maxAttempts,omitempty"`
	InitialDelay Duration `yaml:"initialDelay,omitempty"`
	MaxDelay     Duration `yaml:"maxDelay,omitempty"`
	Multiplier   float64  `yaml:"multiplier,omitempty"`
	Jitter       float64  `yaml:"jitter,omitempty"`
}

// Config is the client configuration.
type Config struct {
	// BaseURL is the platform base URL.
	BaseURL string `yaml:"baseURL"`

	// TokenURL overrides the default token endpoint.
	TokenURL string `yaml:"tokenURL,omitempty"`

	// ClientID and ClientSecret are the application credentials.
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`

	// DeviceID pins the kiosk device identifier. Leave empty to adopt
	// the platform-reported identifier.
	DeviceID string `yaml:"deviceID,omitempty"`

	// Retry tunes the connect retry loop.
	Retry Retry `yaml:"retry,omitempty"`

	// PollInterval is the component watchdog interval.
	PollInterval Duration `yaml:"pollInterval,omitempty"`

	// RequiredComponents lists the device kinds that gate application
	// availability, by kind name (e.g. "BAG_TAG_PRINTER").
	RequiredComponents []string `yaml:"requiredComponents,omitempty"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Validate checks the required fields.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// applyDefaults fills unset tuning values.
func (c *Config) applyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
}
