// Package config provides configuration management for the lifehub
// console.
//
// Configuration is loaded in the following order (later sources
// override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./config.yaml, ~/.lifehub/config.yaml,
//     /etc/lifehub/config.yaml)
//  3. .env files
//  4. Environment variables (LH_ prefix)
//
// Environment variables use underscores for nested keys:
//   - LH_BACKEND_URL=http://hub.lan:8000
//   - LH_CONSOLE_THEME=lcars
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure for the console.
type Config struct {
	// Backend contains the connection settings for the life-dashboard
	// API server.
	Backend BackendConfig `mapstructure:"backend"`

	// Console contains presentation and refresh settings.
	Console ConsoleConfig `mapstructure:"console"`

	// Logging contains logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
}

// BackendConfig contains backend connection settings.
type BackendConfig struct {
	// URL is the base URL of the backend (e.g. http://hub.lan:8000)
	URL string `mapstructure:"url"`

	// Token is the bearer token sent with every request
	Token string `mapstructure:"token"`

	// Timeout is the per-request timeout
	Timeout time.Duration `mapstructure:"timeout"`

	// BackgroundRate caps background refresh requests per second
	BackgroundRate float64 `mapstructure:"background_rate"`
}

// ConsoleConfig contains presentation settings.
type ConsoleConfig struct {
	// Theme is the startup theme name; the prefs file overrides it once
	// the user has switched themes interactively
	Theme string `mapstructure:"theme"`

	// ThemeFile is an optional YAML theme override file
	ThemeFile string `mapstructure:"theme_file"`

	// RefreshInterval is the dashboard LIVE poll period
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`

	// SmartHomeRefreshInterval is the smart-home fallback poll period
	SmartHomeRefreshInterval time.Duration `mapstructure:"smarthome_refresh_interval"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format"`

	// File is the log destination; the TUI owns stdout, so logs go to
	// a file. Empty discards them.
	File string `mapstructure:"file"`
}

var cfg *Config

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for config.yaml in standard
// locations.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.lifehub")
		v.AddConfigPath("/etc/lifehub")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix("LH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("backend.background_rate", 10.0)

	v.SetDefault("console.theme", "catppuccin")
	v.SetDefault("console.refresh_interval", "30s")
	v.SetDefault("console.smarthome_refresh_interval", "60s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
}

func validate(cfg *Config) error {
	if cfg.Backend.URL == "" {
		return fmt.Errorf("backend url is required")
	}

	if cfg.Backend.Timeout <= 0 {
		return fmt.Errorf("invalid backend timeout: %s", cfg.Backend.Timeout)
	}

	if cfg.Console.RefreshInterval < time.Second {
		return fmt.Errorf("refresh interval below 1s: %s", cfg.Console.RefreshInterval)
	}

	if cfg.Console.SmartHomeRefreshInterval < time.Second {
		return fmt.Errorf("smarthome refresh interval below 1s: %s", cfg.Console.SmartHomeRefreshInterval)
	}

	return nil
}

// Get returns the most recently loaded configuration.
func Get() *Config {
	return cfg
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
