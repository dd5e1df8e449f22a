package logger

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// SetupEnvVar names the environment variable that selects a logging preset.
const SetupEnvVar = "LOG_SETUP"

// Setup is a named logging preset.
type Setup string

const (
	SetupProduction  Setup = "prod"
	SetupDevelopment Setup = "dev"
)

var (
	// ErrLogSetupUndefined is returned when LOG_SETUP is unset or blank.
	ErrLogSetupUndefined = errors.New(`failed to setup logger: "LOG_SETUP" not properly defined`)
	// ErrLogSetupUnsupported is returned for a LOG_SETUP value with no preset.
	ErrLogSetupUnsupported = errors.New("log setup not supported")
)

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
	// TimeFormat is the console timestamp layout.
	TimeFormat string `yaml:"time_format" mapstructure:"time_format"`
	// Dir is where file sinks are created.
	Dir   string     `yaml:"dir" mapstructure:"dir"`
	Files []FileSink `yaml:"files" mapstructure:"files"`
}

// FileSink writes plain (uncolored) lines at or above Level to Dir/Name.
type FileSink struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Level string `yaml:"level" mapstructure:"level"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "2006-01-02 15:04:05"
	}
	if c.Dir == "" {
		c.Dir = "logs"
	}
	c.Timestamp = true
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "trace"}
	if !contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	validFormats := []string{"json", "console", "text", FormatPretty}
	if !contains(validFormats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Format)
	}
	for _, f := range c.Files {
		if f.Name == "" {
			return fmt.Errorf("logging.files: name is required")
		}
		if f.Level != "" && !contains(validLevels, f.Level) {
			return fmt.Errorf("logging.files[%s].level must be one of %v (got: %s)", f.Name, validLevels, f.Level)
		}
	}
	return nil
}

// PresetConfig returns the logging configuration for a named preset.
//
// prod logs info and above to the console without color. dev logs debug and
// above to a colored console and mirrors plain lines into logs/error.log
// (errors only) and logs/all.log.
func PresetConfig(setup Setup) (Config, error) {
	switch setup {
	case SetupProduction:
		cfg := Config{Level: "info", Format: "console", NoColor: true}
		cfg.ApplyDefaults()
		return cfg, nil
	case SetupDevelopment:
		cfg := Config{
			Level:  "debug",
			Format: "console",
			Files: []FileSink{
				{Name: "error.log", Level: "error"},
				{Name: "all.log"},
			},
		}
		cfg.ApplyDefaults()
		return cfg, nil
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrLogSetupUnsupported, setup)
	}
}

// SetupFromEnv reads LOG_SETUP and returns the matching preset.
func SetupFromEnv() (Config, error) {
	raw := strings.TrimSpace(os.Getenv(SetupEnvVar))
	if raw == "" {
		return Config{}, ErrLogSetupUndefined
	}
	return PresetConfig(Setup(strings.ToLower(raw)))
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
