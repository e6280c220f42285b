package app

import (
	"io"
	"time"

	"apptest/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool
	// LogLevel is a level name ("info", "warn", ...). Debug wins over it.
	LogLevel string

	// TeardownTimeout bounds the teardown of a run, zero for the default.
	TeardownTimeout time.Duration

	// ConfigPath is an explicit configuration file, empty for the default location.
	ConfigPath string

	// Flags are the command-line values of the run.
	Flags config.Flags

	// LogOutput receives log records. Nil means os.Stderr.
	LogOutput io.Writer
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath string, flags config.Flags) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
		Flags:      flags,
	}
}
