package launcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"apptest/internal/config"
	"apptest/internal/containerizer"
	"apptest/internal/topology"
	"apptest/pkg/logging"
)

const subsystem = "Launcher"

// Mount targets inside the test-runner container.
const (
	RunnerAppMount        = "/selenium-tests/app"
	RunnerScreenshotMount = "/selenium-tests/screenshots"
)

const defaultTeardownTimeout = 2 * time.Minute

// For mocking in tests
var (
	osMkdirAll  = os.MkdirAll
	osRemoveAll = os.RemoveAll
)

// Result describes a finished run.
type Result struct {
	Project      string
	WorkDir      string
	ManifestPath string
	// States is every state the run passed through, starting with StateIdle.
	States []State
	// Err is the earliest stage failure, nil on success.
	Err error
	// TeardownErr is kept even when an earlier failure is reported in Err.
	TeardownErr error
	// TeardownSkipped is set inside CI, where the cleanup command tears down.
	TeardownSkipped bool
}

// Final is the terminal state of the run.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return StateIdle
	}
	return r.States[len(r.States)-1]
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithObserver registers fn to be called on every state transition.
func WithObserver(fn StateObserver) Option {
	return func(l *Launcher) { l.observer = fn }
}

// WithTeardownTimeout bounds the teardown stage, which runs even after the
// run context was cancelled.
func WithTeardownTimeout(d time.Duration) Option {
	return func(l *Launcher) { l.teardownTimeout = d }
}

// Launcher sequences one test run: compose, start, test, tear down.
// A Launcher is not safe for concurrent use; create one per run.
type Launcher struct {
	runtime         containerizer.Runtime
	observer        StateObserver
	teardownTimeout time.Duration

	state  State
	result *Result
}

// New returns a Launcher driving rt.
func New(rt containerizer.Runtime, opts ...Option) *Launcher {
	l := &Launcher{
		runtime:         rt,
		teardownTimeout: defaultTeardownTimeout,
		state:           StateIdle,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current state.
func (l *Launcher) State() State {
	return l.state
}

// Launch runs the whole sequence for cfg. The returned error equals Result.Err.
func (l *Launcher) Launch(ctx context.Context, cfg config.RunConfig) (*Result, error) {
	if l.state != StateIdle {
		return nil, fmt.Errorf("launcher already used, state is %s", l.state)
	}
	l.result = &Result{
		Project: cfg.Project,
		WorkDir: cfg.WorkDir,
		States:  []State{StateIdle},
	}
	logging.Info(subsystem, "Launching test environment %s (browser: %s)", cfg.Project, cfg.Browser)

	l.transition(StateComposing, nil)
	project, err := l.compose(cfg)
	if err != nil {
		return l.fail(cfg, &StartError{Stage: StateComposing, Err: err}, false)
	}
	l.result.ManifestPath = project.ManifestPath

	l.transition(StateStarting, nil)
	if err := ctx.Err(); err != nil {
		return l.fail(cfg, &StartError{Stage: StateStarting, Err: err}, false)
	}
	if err := l.runtime.Start(ctx, project); err != nil {
		return l.fail(cfg, &StartError{Stage: StateStarting, Err: err}, true)
	}

	l.transition(StateTestRunning, nil)
	if err := ctx.Err(); err != nil {
		return l.fail(cfg, &TestError{Err: err}, true)
	}
	if err := l.runtime.Run(ctx, TestContainer(cfg)); err != nil {
		return l.fail(cfg, &TestError{Err: err}, true)
	}
	logging.Info(subsystem, "Completed selenium tests")

	l.transition(StateTearingDown, nil)
	if err := l.teardown(ctx, cfg, project, true); err != nil {
		l.result.TeardownErr = err
		l.result.Err = err
		l.transition(StateFailed, err)
		return l.result, err
	}
	l.transition(StateDone, nil)
	return l.result, nil
}

// compose creates the work directory and the host directories the run mounts,
// then writes the manifest.
func (l *Launcher) compose(cfg config.RunConfig) (containerizer.Project, error) {
	if err := checkWorkDir(cfg); err != nil {
		return containerizer.Project{}, err
	}
	if err := osMkdirAll(cfg.WorkDir, 0755); err != nil {
		return containerizer.Project{}, fmt.Errorf("failed to create work directory: %w", err)
	}
	if cfg.PlaceholderApp {
		if err := osMkdirAll(cfg.AppPath, 0755); err != nil {
			return containerizer.Project{}, fmt.Errorf("failed to create placeholder app directory: %w", err)
		}
	}
	if cfg.HasScreenshots() {
		if err := osMkdirAll(cfg.ScreenshotPath, 0755); err != nil {
			return containerizer.Project{}, fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}

	manifestPath, err := topology.WriteFile(cfg.WorkDir, topology.Build(cfg))
	if err != nil {
		return containerizer.Project{}, err
	}
	logging.Debug(subsystem, "Wrote compose file %s", manifestPath)

	return containerizer.Project{
		Name:         cfg.Project,
		Dir:          cfg.WorkDir,
		ManifestPath: manifestPath,
	}, nil
}

// fail records cause as the run's error, tears down what was set up, and
// moves to StateFailed. A teardown failure never replaces cause.
func (l *Launcher) fail(cfg config.RunConfig, cause error, started bool) (*Result, error) {
	logging.Error(subsystem, cause, "Test run failed in state %s", l.state)
	l.result.Err = cause

	if !cfg.InCI {
		l.transition(StateTearingDown, cause)
	}
	project := containerizer.Project{Name: cfg.Project, Dir: cfg.WorkDir, ManifestPath: l.result.ManifestPath}
	if err := l.teardown(context.Background(), cfg, project, started); err != nil {
		logging.Error(subsystem, err, "Teardown after failure did not complete")
		l.result.TeardownErr = err
	}

	l.transition(StateFailed, cause)
	return l.result, cause
}

// teardown stops the project and removes its work directory. The work
// directory is kept when compose down fails, so a later cleanup can retry.
func (l *Launcher) teardown(ctx context.Context, cfg config.RunConfig, project containerizer.Project, started bool) error {
	if cfg.InCI {
		logging.Info(subsystem, "Running in CI, leaving teardown of %s to the cleanup step", cfg.Project)
		l.result.TeardownSkipped = true
		return nil
	}

	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.teardownTimeout)
	defer cancel()

	if started {
		if err := l.runtime.Stop(tctx, project); err != nil {
			return &TeardownError{Err: err}
		}
	}
	if err := checkWorkDir(cfg); err != nil {
		return &TeardownError{Err: err}
	}
	if err := osRemoveAll(cfg.WorkDir); err != nil {
		return &TeardownError{Err: fmt.Errorf("failed to remove work directory %s: %w", cfg.WorkDir, err)}
	}
	logging.Debug(subsystem, "Removed work directory %s", cfg.WorkDir)
	return nil
}

// checkWorkDir only accepts a work directory named after the project, so
// teardown never removes anything but the run's own directory.
func checkWorkDir(cfg config.RunConfig) error {
	if cfg.Project == "" || filepath.Base(filepath.Clean(cfg.WorkDir)) != cfg.Project {
		return fmt.Errorf("work directory %q does not belong to project %q", cfg.WorkDir, cfg.Project)
	}
	return nil
}

func (l *Launcher) transition(to State, cause error) {
	from := l.state
	l.state = to
	l.result.States = append(l.result.States, to)
	logging.Debug(subsystem, "State: %s -> %s", from, to)
	if l.observer != nil {
		l.observer(from, to, cause)
	}
}

// TestContainer describes the test-runner invocation for cfg.
func TestContainer(cfg config.RunConfig) containerizer.Container {
	c := containerizer.Container{
		Image:   cfg.RunnerImage,
		Network: cfg.Network,
		Env: []containerizer.EnvVar{
			{Name: "AIIDALAB_HOST", Value: topology.ServiceApp},
			{Name: "SELENIUM_HOST", Value: topology.ServiceHub},
			{Name: "JUPYTER_TOKEN", Value: cfg.JupyterToken},
			{Name: "APP_NOTEBOOKS", Value: cfg.Notebooks},
			{Name: "APP_NAME", Value: cfg.AppName},
		},
		Mounts: []containerizer.Mount{
			{Source: cfg.AppPath, Target: RunnerAppMount},
		},
		Args:   []string{"--capability", "browserName", string(cfg.Browser)},
		Remove: true,
	}
	if cfg.HasScreenshots() {
		c.Mounts = append(c.Mounts, containerizer.Mount{Source: cfg.ScreenshotPath, Target: RunnerScreenshotMount})
	}
	c.Args = append(c.Args, cfg.PassThrough...)
	return c
}
