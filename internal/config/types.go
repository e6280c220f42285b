package config

import "fmt"

// Browser identifies the Selenium browser node the tests run against.
type Browser string

const (
	BrowserChrome  Browser = "chrome"
	BrowserFirefox Browser = "firefox"
	BrowserOpera   Browser = "opera"
)

// Browsers lists every supported browser in the order the topology declares them.
var Browsers = []Browser{BrowserChrome, BrowserFirefox, BrowserOpera}

// ParseBrowser validates s against the supported browsers.
func ParseBrowser(s string) (Browser, error) {
	for _, b := range Browsers {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q, must be one of: chrome, firefox, opera", ErrInvalidBrowser, s)
}

// Engine selects how the test-runner container is executed.
type Engine string

const (
	// EngineCLI shells out to the docker CLI.
	EngineCLI Engine = "cli"
	// EngineAPI talks to the Docker Engine API directly.
	EngineAPI Engine = "api"
)

// ParseEngine validates s against the supported engines.
func ParseEngine(s string) (Engine, error) {
	switch Engine(s) {
	case EngineCLI, EngineAPI:
		return Engine(s), nil
	}
	return "", fmt.Errorf("%w: %q, must be 'cli' or 'api'", ErrInvalidEngine, s)
}

// RunConfig is the fully resolved configuration of one test run.
// It is built once by the Resolver and only read afterwards.
type RunConfig struct {
	// Image is the AiiDAlab image the application is served from.
	Image string
	// RunnerImage is the Selenium test-runner image.
	RunnerImage string

	// AppPath is the absolute host path of the application under test.
	AppPath string
	// AppName is the directory name of the application inside the container.
	AppName string
	// Bundled means the application is pre-installed in Image and is not mounted.
	Bundled bool
	// PlaceholderApp is set when AppPath was substituted with an empty directory.
	PlaceholderApp bool

	Browser   Browser
	Notebooks string
	// ScreenshotPath is the absolute host directory for screenshots, empty when disabled.
	ScreenshotPath string
	JupyterToken   string

	// Project scopes the compose containers; Network is the compose default network.
	Project string
	Network string
	// WorkDir is the per-run directory holding the generated manifest.
	WorkDir string

	// InCI is true when a recognized CI environment was detected.
	InCI bool

	Engine         Engine
	ComposeCommand []string

	// PassThrough arguments are appended verbatim to the test-runner invocation.
	PassThrough []string
}

// HasScreenshots reports whether screenshots are collected on the host.
func (c RunConfig) HasScreenshots() bool {
	return c.ScreenshotPath != ""
}

// FileConfig is the optional YAML configuration file. Every field is optional;
// unset fields fall through to the built-in defaults.
type FileConfig struct {
	Image          string `yaml:"image,omitempty"`
	RunnerImage    string `yaml:"runnerImage,omitempty"`
	AppPath        string `yaml:"appPath,omitempty"`
	Name           string `yaml:"name,omitempty"`
	Bundled        *bool  `yaml:"bundled,omitempty"`
	Browser        string `yaml:"browser,omitempty"`
	Notebooks      string `yaml:"notebooks,omitempty"`
	Screenshots    string `yaml:"screenshots,omitempty"`
	JupyterToken   string `yaml:"jupyterToken,omitempty"`
	Project        string `yaml:"project,omitempty"`
	WorkRoot       string `yaml:"workRoot,omitempty"`
	Engine         string `yaml:"engine,omitempty"`
	ComposeCommand string `yaml:"composeCommand,omitempty"`
}

// Flags carries the command-line values. A nil field means the flag was not
// passed, so lower-precedence sources apply.
type Flags struct {
	Image       *string
	RunnerImage *string
	AppPath     *string
	Name        *string
	Bundled     *bool
	Browser     *string
	Notebooks   *string
	Screenshots *string
	Token       *string
	WorkRoot    *string
	Engine      *string

	PassThrough []string
}
