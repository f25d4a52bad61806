// Package config loads application configuration from defaults, an
// optional YAML file, and SURVEY_-prefixed environment variables, in
// that order of precedence (environment wins).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "surveycli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
	Output string `yaml:"output" envconfig:"OUTPUT"`
}

// AnalysisConfig contains questionnaire analysis defaults
type AnalysisConfig struct {
	DataFile         string `yaml:"data_file" envconfig:"DATA_FILE"`
	MaxMissingGrades int    `yaml:"max_missing_grades" envconfig:"MAX_MISSING_GRADES"`
	ChartFile        string `yaml:"chart_file" envconfig:"CHART_FILE"`
}

// Default returns the built-in configuration defaults
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
		Analysis: AnalysisConfig{
			DataFile:         "data/survey.json",
			MaxMissingGrades: 1,
			ChartFile:        "reports/age_distribution.xlsx",
		},
	}
}

// Load builds the configuration: defaults, overlaid by the YAML file
// at configFile when it exists, overlaid by environment variables.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, apperrors.NewConfigError("failed to read config file", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, apperrors.NewConfigError("failed to parse config file", err)
			}
		}
	}

	if err := envconfig.Process("SURVEY", &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return apperrors.NewConfigError(fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid log level: %q", c.Logging.Level), nil)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid log format: %q", c.Logging.Format), nil)
	}
	if c.Analysis.MaxMissingGrades < 0 {
		return apperrors.NewConfigError("analysis.max_missing_grades must be non-negative", nil)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RPS <= 0 {
		return apperrors.NewConfigError("rate limit rps must be positive when enabled", nil)
	}
	return nil
}
