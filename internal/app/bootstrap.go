package app

import (
	"fmt"
	"os"

	"apptest/internal/config"
	"apptest/internal/containerizer"
	"apptest/pkg/logging"
)

// runtime is a container runtime that holds resources.
type runtime interface {
	containerizer.Runtime
	Close() error
}

// For mocking in tests
var (
	newSource = func() config.Source { return config.OSSource{} }

	newRuntime = func(engine config.Engine, composeCommand []string) (runtime, error) {
		stack, err := containerizer.New(engine, composeCommand)
		if err != nil {
			return nil, err
		}
		return stack, nil
	}

	newComposer = func(composeCommand []string) (containerizer.Composer, error) {
		c, err := containerizer.NewComposeCLI(composeCommand)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
)

// Application is the main application structure that bootstraps and runs apptest
type Application struct {
	config  *Config
	source  config.Source
	toolDir string
	file    config.FileConfig
}

// NewApplication initializes logging and loads the configuration file.
func NewApplication(cfg *Config) (*Application, error) {
	// Configure logging based on the level and debug flags
	appLogLevel := logging.LevelInfo
	if cfg.LogLevel != "" {
		lvl, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
		}
		appLogLevel = lvl
	}
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	out := cfg.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logging.InitForCLI(appLogLevel, out)

	source := newSource()
	toolDir, err := source.WorkingDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	file, err := config.LoadFile(cfg.ConfigPath, toolDir)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load apptest configuration")
		return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}
	if cfg.ConfigPath != "" {
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	}

	return &Application{
		config:  cfg,
		source:  source,
		toolDir: toolDir,
		file:    file,
	}, nil
}

// resolve derives the run configuration and logs its warnings.
func (a *Application) resolve() (config.RunConfig, error) {
	res, err := config.NewResolver(a.source).Resolve(a.config.Flags, a.file)
	if err != nil {
		return config.RunConfig{}, err
	}
	for _, w := range res.Warnings {
		logging.Warn("Config", "%s", w)
	}
	cfg := res.Config
	logging.Debug("Config", "Resolved project %s, work dir %s, app %s, browser %s, engine %s",
		cfg.Project, cfg.WorkDir, cfg.AppPath, cfg.Browser, cfg.Engine)
	return cfg, nil
}
