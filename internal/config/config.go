package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults for the invocation log query
const (
	DefaultLogGroup      = "bedrock-invoke-logging-us-east-1"
	DefaultRegion        = "us-east-1"
	DefaultLookbackHours = 24
	DefaultLimit         = 100
	DefaultListenAddr    = "127.0.0.1:8501"

	MinLimit  = 1
	MaxLimit  = 1000
	LimitStep = 10
)

// LookbackChoices are the selectable lookback windows in hours
var LookbackChoices = []int{1, 6, 12, 24, 48, 96}

// Validation errors
var (
	ErrInvalidLookback = errors.New("invalid lookback window")
	ErrInvalidLimit    = errors.New("invalid result limit")
	ErrUnknownKey      = errors.New("unknown config key")
)

// Config represents the application configuration
type Config struct {
	Profile       string `yaml:"profile,omitempty"`
	Region        string `yaml:"region,omitempty"`
	LogGroup      string `yaml:"log_group,omitempty"`
	LookbackHours int    `yaml:"lookback_hours,omitempty"`
	Limit         int    `yaml:"limit,omitempty"`
	ListenAddr    string `yaml:"listen_addr,omitempty"`
}

// Keys lists the settable config keys in display order
var Keys = []string{"profile", "region", "log_group", "lookback_hours", "limit", "listen_addr"}

// GetConfigDir returns the config directory path ($XDG_CONFIG_HOME/bsmith)
func GetConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".bsmith"
	}
	return filepath.Join(dir, "bsmith")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// LoadConfig loads the configuration from path. A missing file yields an
// empty config
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes the configuration to path
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// WithDefaults returns a copy of cfg with empty fields set to the defaults
func (c Config) WithDefaults() Config {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.LogGroup == "" {
		c.LogGroup = DefaultLogGroup
	}
	if c.LookbackHours == 0 {
		c.LookbackHours = DefaultLookbackHours
	}
	if c.Limit == 0 {
		c.Limit = DefaultLimit
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	return c
}

// Set updates a single key from its string form
func (c *Config) Set(key, value string) error {
	switch key {
	case "profile":
		c.Profile = value
	case "region":
		c.Region = value
	case "log_group":
		c.LogGroup = value
	case "listen_addr":
		c.ListenAddr = value
	case "lookback_hours":
		h, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidLookback, value)
		}
		if err := ValidateLookback(h); err != nil {
			return err
		}
		c.LookbackHours = h
	case "limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidLimit, value)
		}
		if err := ValidateLimit(n); err != nil {
			return err
		}
		c.Limit = n
	default:
		return fmt.Errorf("%w: %s (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get returns the string form of a key
func (c Config) Get(key string) (string, error) {
	switch key {
	case "profile":
		return c.Profile, nil
	case "region":
		return c.Region, nil
	case "log_group":
		return c.LogGroup, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "lookback_hours":
		return strconv.Itoa(c.LookbackHours), nil
	case "limit":
		return strconv.Itoa(c.Limit), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// ValidateLookback checks that hours is one of LookbackChoices
func ValidateLookback(hours int) error {
	if !slices.Contains(LookbackChoices, hours) {
		return fmt.Errorf("%w: %dh (choose one of %v)", ErrInvalidLookback, hours, LookbackChoices)
	}
	return nil
}

// ValidateLimit checks that limit is within MinLimit..MaxLimit
func ValidateLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidLimit, limit, MinLimit, MaxLimit)
	}
	return nil
}

// NextLookback returns the lookback choice after hours, wrapping around
func NextLookback(hours int) int {
	i := slices.Index(LookbackChoices, hours)
	return LookbackChoices[(i+1)%len(LookbackChoices)]
}

// StepLimit moves limit by delta steps of LimitStep, clamped to the valid range
func StepLimit(limit, delta int) int {
	limit += delta * LimitStep
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
