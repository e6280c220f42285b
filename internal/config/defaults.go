package config

const (
	DefaultImage        = "aiidalab/aiidalab-docker-stack:latest"
	DefaultRunnerImage  = "aiidalab/aiidalab-test-app-action:selenium-tests"
	DefaultAppName      = "app"
	DefaultBrowser      = BrowserChrome
	DefaultNotebooks    = "**/[!.]*.ipynb"
	DefaultJupyterToken = "aiidalab-test"
	DefaultEngine       = EngineCLI
	DefaultCompose      = "docker compose"

	// ProjectPrefix is prepended to the random suffix of generated project names.
	ProjectPrefix = "aiidalabtests"
	// placeholderDirName is the empty directory mounted instead of an unsafe app path.
	placeholderDirName = "app"
)

// Environment variables consulted during resolution.
const (
	EnvWorkspace      = "GITHUB_WORKSPACE"
	EnvProject        = "AIIDALAB_TESTS_WORKDIR"
	EnvNotebooks      = "AIIDALAB_APP_TESTS_NOTEBOOKS" // deprecated in favour of --notebooks
	EnvGitHubActions  = "GITHUB_ACTIONS"
	EnvCI             = "CI"
	EnvImage          = "AIIDALAB_TEST_IMAGE"
	EnvRunnerImage    = "AIIDALAB_TEST_RUNNER_IMAGE"
	EnvAppName        = "AIIDALAB_TEST_APP_NAME"
	EnvBundled        = "AIIDALAB_TEST_BUNDLED"
	EnvBrowser        = "AIIDALAB_TEST_BROWSER"
	EnvScreenshots    = "AIIDALAB_TEST_SCREENSHOTS"
	EnvJupyterToken   = "JUPYTER_TOKEN"
	EnvWorkRoot       = "AIIDALAB_TEST_WORK_ROOT"
	EnvEngine         = "AIIDALAB_TEST_ENGINE"
	EnvComposeCommand = "AIIDALAB_TEST_COMPOSE"
)
