package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Resolution is the outcome of Resolve: the configuration plus the warnings the
// caller should surface (deprecated inputs, substituted paths).
type Resolution struct {
	Config   RunConfig
	Warnings []string
}

// Resolver derives a RunConfig from flags, the environment, the config file
// and built-in defaults, in that order of precedence. It has no side effects.
type Resolver struct {
	Source Source
	// NewProject generates a project name when no override is present.
	NewProject func() string
}

// NewResolver returns a Resolver reading from src.
func NewResolver(src Source) *Resolver {
	return &Resolver{Source: src, NewProject: NewProjectName}
}

// Resolve builds the run configuration. Any returned error wraps ErrConfiguration.
func (r *Resolver) Resolve(flags Flags, file FileConfig) (Resolution, error) {
	toolDir, err := r.Source.WorkingDir()
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: cannot determine tool directory: %v", ErrConfiguration, err)
	}
	toolDir = filepath.Clean(toolDir)

	var res Resolution
	cfg := &res.Config
	cfg.InCI = InCI(r.Source)

	cfg.Image = r.pick(flags.Image, EnvImage, file.Image, DefaultImage)
	cfg.RunnerImage = r.pick(flags.RunnerImage, EnvRunnerImage, file.RunnerImage, DefaultRunnerImage)
	cfg.JupyterToken = r.pick(flags.Token, EnvJupyterToken, file.JupyterToken, DefaultJupyterToken)

	cfg.Project = r.pick(nil, EnvProject, file.Project, "")
	if cfg.Project == "" {
		cfg.Project = r.NewProject()
	}
	if err := ValidateProjectName(cfg.Project); err != nil {
		return Resolution{}, err
	}
	cfg.Network = NetworkName(cfg.Project)

	workRoot := absFrom(toolDir, r.pick(flags.WorkRoot, EnvWorkRoot, file.WorkRoot, toolDir))
	cfg.WorkDir = filepath.Join(workRoot, cfg.Project)

	if cfg.Bundled, err = r.pickBool(flags.Bundled, EnvBundled, file.Bundled, false); err != nil {
		return Resolution{}, err
	}

	cfg.AppName = r.pick(flags.Name, EnvAppName, file.Name, DefaultAppName)
	if (cfg.AppName == "" && !cfg.Bundled) || strings.ContainsAny(cfg.AppName, `/\`) || cfg.AppName == "." || cfg.AppName == ".." {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidAppName, cfg.AppName)
	}

	appPath := absFrom(toolDir, r.pick(flags.AppPath, EnvWorkspace, file.AppPath, "."))
	if appPath == toolDir {
		if !cfg.InCI {
			return Resolution{}, fmt.Errorf("%w (%s); pass --app-path or set %s", ErrUnsafeAppPath, appPath, EnvWorkspace)
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("application path is pointing to the tool directory %s, mounting an empty directory instead", appPath))
		appPath = filepath.Join(cfg.WorkDir, placeholderDirName)
		cfg.PlaceholderApp = true
	}
	cfg.AppPath = appPath

	browser, err := ParseBrowser(r.pick(flags.Browser, EnvBrowser, file.Browser, string(DefaultBrowser)))
	if err != nil {
		return Resolution{}, err
	}
	cfg.Browser = browser

	switch {
	case flags.Notebooks != nil:
		cfg.Notebooks = *flags.Notebooks
	default:
		if v, ok := lookupNonEmpty(r.Source, EnvNotebooks); ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s is deprecated, use --notebooks instead", EnvNotebooks))
			cfg.Notebooks = v
		} else if file.Notebooks != "" {
			cfg.Notebooks = file.Notebooks
		} else {
			cfg.Notebooks = DefaultNotebooks
		}
	}

	if shots := r.pick(flags.Screenshots, EnvScreenshots, file.Screenshots, ""); shots != "" {
		cfg.ScreenshotPath = absFrom(toolDir, shots)
	}

	if cfg.Engine, err = ParseEngine(r.pick(flags.Engine, EnvEngine, file.Engine, string(DefaultEngine))); err != nil {
		return Resolution{}, err
	}

	cfg.ComposeCommand = strings.Fields(r.pick(nil, EnvComposeCommand, file.ComposeCommand, DefaultCompose))
	if len(cfg.ComposeCommand) == 0 {
		cfg.ComposeCommand = strings.Fields(DefaultCompose)
	}

	if len(flags.PassThrough) > 0 {
		cfg.PassThrough = append([]string(nil), flags.PassThrough...)
	}

	return res, nil
}

// pick returns the first of flag, environment variable, file value and default
// that is set. Empty environment variables and file values count as unset.
func (r *Resolver) pick(flag *string, envKey, fileValue, def string) string {
	if flag != nil {
		return *flag
	}
	if envKey != "" {
		if v, ok := lookupNonEmpty(r.Source, envKey); ok {
			return v
		}
	}
	if fileValue != "" {
		return fileValue
	}
	return def
}

func (r *Resolver) pickBool(flag *bool, envKey string, fileValue *bool, def bool) (bool, error) {
	if flag != nil {
		return *flag, nil
	}
	if v, ok := lookupNonEmpty(r.Source, envKey); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, envKey, v)
		}
		return b, nil
	}
	if fileValue != nil {
		return *fileValue, nil
	}
	return def, nil
}

// absFrom makes p absolute relative to base.
func absFrom(base, p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	return filepath.Clean(p)
}
