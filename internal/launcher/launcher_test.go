package launcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"apptest/internal/config"
	"apptest/internal/containerizer"
	"apptest/internal/topology"
	"apptest/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// fakeRuntime records every call and can be told to fail a stage.
type fakeRuntime struct {
	calls []string

	startErr error
	runErr   error
	stopErr  error

	started  []containerizer.Project
	ran      []containerizer.Container
	stopped  []containerizer.Project
	manifest []byte
	// stopDeadline is the deadline of the context Stop was called with.
	stopDeadline time.Time

	onStart func()
}

func (f *fakeRuntime) Start(ctx context.Context, p containerizer.Project) error {
	f.calls = append(f.calls, "start")
	f.started = append(f.started, p)
	data, _ := os.ReadFile(p.ManifestPath)
	f.manifest = data
	if f.onStart != nil {
		f.onStart()
	}
	return f.startErr
}

func (f *fakeRuntime) Stop(ctx context.Context, p containerizer.Project) error {
	f.calls = append(f.calls, "stop")
	f.stopped = append(f.stopped, p)
	f.stopDeadline, _ = ctx.Deadline()
	return f.stopErr
}

func (f *fakeRuntime) Run(ctx context.Context, c containerizer.Container) error {
	f.calls = append(f.calls, "run")
	f.ran = append(f.ran, c)
	return f.runErr
}

func newTestConfig(t *testing.T) config.RunConfig {
	t.Helper()
	logging.InitForCLI(logging.LevelDebug, io.Discard)
	root := t.TempDir()
	return config.RunConfig{
		Image:          config.DefaultImage,
		RunnerImage:    config.DefaultRunnerImage,
		AppPath:        "/repo",
		AppName:        "app",
		Browser:        config.BrowserFirefox,
		Notebooks:      config.DefaultNotebooks,
		JupyterToken:   config.DefaultJupyterToken,
		Project:        "aiidalabtests0011223344556677",
		Network:        "aiidalabtests0011223344556677_default",
		WorkDir:        filepath.Join(root, "aiidalabtests0011223344556677"),
		Engine:         config.EngineCLI,
		ComposeCommand: []string{"docker", "compose"},
	}
}

func TestLaunch_EndToEnd(t *testing.T) {
	cfg := newTestConfig(t)
	rt := &fakeRuntime{}

	res, err := New(rt).Launch(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "run", "stop"}, rt.calls)
	assert.Equal(t, []State{StateIdle, StateComposing, StateStarting, StateTestRunning, StateTearingDown, StateDone}, res.States)
	assert.Equal(t, StateDone, res.Final())
	assert.False(t, res.TeardownSkipped)

	// The manifest existed while the topology was up.
	require.Len(t, rt.started, 1)
	assert.Equal(t, cfg.Project, rt.started[0].Name)
	assert.Equal(t, filepath.Join(cfg.WorkDir, topology.FileName), rt.started[0].ManifestPath)

	var doc struct {
		Services map[string]topology.Service `yaml:"services"`
	}
	require.NoError(t, yaml.Unmarshal(rt.manifest, &doc))
	assert.Len(t, doc.Services, 5)
	assert.Equal(t, []string{"/repo/:/home/aiida/apps/app"}, doc.Services["aiidalab"].Volumes)
	for _, browser := range []string{"chrome", "firefox", "opera"} {
		assert.Equal(t, []string{"seleniumhub"}, doc.Services[browser].DependsOn)
	}

	// Test runner invocation.
	require.Len(t, rt.ran, 1)
	runner := rt.ran[0]
	assert.Equal(t, cfg.Network, runner.Network)
	assert.Equal(t, []string{"--capability", "browserName", "firefox"}, runner.Args)
	assert.Equal(t, []containerizer.Mount{{Source: "/repo", Target: RunnerAppMount}}, runner.Mounts)

	// Teardown removed the work directory.
	_, statErr := os.Stat(cfg.WorkDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLaunch_BundledKeepsRunnerMount(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Bundled = true
	rt := &fakeRuntime{}

	_, err := New(rt).Launch(context.Background(), cfg)
	require.NoError(t, err)

	var doc struct {
		Services map[string]topology.Service `yaml:"services"`
	}
	require.NoError(t, yaml.Unmarshal(rt.manifest, &doc))
	assert.Empty(t, doc.Services["aiidalab"].Volumes)

	runner := rt.ran[0]
	assert.Contains(t, runner.Mounts, containerizer.Mount{Source: "/repo", Target: RunnerAppMount})
	assert.Contains(t, runner.Env, containerizer.EnvVar{Name: "APP_NAME", Value: "app"})
}

func TestLaunch_Screenshots(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.ScreenshotPath = filepath.Join(t.TempDir(), "nested", "shots")
	rt := &fakeRuntime{}

	_, err := New(rt).Launch(context.Background(), cfg)
	require.NoError(t, err)

	info, err := os.Stat(cfg.ScreenshotPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Contains(t, rt.ran[0].Mounts, containerizer.Mount{Source: cfg.ScreenshotPath, Target: RunnerScreenshotMount})
}

func TestLaunch_WithoutScreenshotsOnlyCreatesWorkDir(t *testing.T) {
	cfg := newTestConfig(t)
	var created []string
	original := osMkdirAll
	defer func() { osMkdirAll = original }()
	osMkdirAll = func(path string, perm os.FileMode) error {
		created = append(created, path)
		return original(path, perm)
	}

	rt := &fakeRuntime{}
	_, err := New(rt).Launch(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{cfg.WorkDir}, created)
	assert.Len(t, rt.ran[0].Mounts, 1)
}

func TestLaunch_PlaceholderAppIsCreated(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.PlaceholderApp = true
	cfg.AppPath = filepath.Join(cfg.WorkDir, "app")
	rt := &fakeRuntime{}
	var existed bool
	rt.onStart = func() {
		entries, err := os.ReadDir(cfg.AppPath)
		existed = err == nil && len(entries) == 0
	}

	_, err := New(rt).Launch(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, existed, "placeholder must exist and be empty while the topology runs")
}

func TestLaunch_StartFailure(t *testing.T) {
	cfg := newTestConfig(t)
	rt := &fakeRuntime{startErr: errors.New("port already allocated")}

	res, err := New(rt).Launch(context.Background(), cfg)
	require.Error(t, err)

	var startErr *StartError
	require.True(t, errors.As(err, &startErr))
	assert.Equal(t, StateStarting, startErr.Stage)
	assert.Contains(t, err.Error(), "unable to start docker-compose")
	assert.Equal(t, []string{"start", "stop"}, rt.calls, "test runner must not run, teardown must be attempted")
	assert.Equal(t, []State{StateIdle, StateComposing, StateStarting, StateTearingDown, StateFailed}, res.States)
}

func TestLaunch_TestFailure(t *testing.T) {
	cfg := newTestConfig(t)
	rt := &fakeRuntime{runErr: &containerizer.ExitError{Command: "docker run", Code: 1}}

	res, err := New(rt).Launch(context.Background(), cfg)
	require.Error(t, err)

	var testErr *TestError
	require.True(t, errors.As(err, &testErr))
	var exitErr *containerizer.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, err.Error(), "failed to execute selenium tests")
	assert.Equal(t, []string{"start", "run", "stop"}, rt.calls)
	assert.Equal(t, StateFailed, res.Final())
}

func TestLaunch_EarliestFailureWins(t *testing.T) {
	cfg := newTestConfig(t)
	rt := &fakeRuntime{
		runErr:  errors.New("tests failed"),
		stopErr: errors.New("compose down failed"),
	}

	res, err := New(rt).Launch(context.Background(), cfg)

	var testErr *TestError
	require.True(t, errors.As(err, &testErr))
	var teardownErr *TeardownError
	assert.False(t, errors.As(err, &teardownErr))
	require.Error(t, res.TeardownErr)
	assert.Contains(t, res.TeardownErr.Error(), "compose down failed")

	// The work directory is kept for a later cleanup.
	_, statErr := os.Stat(cfg.WorkDir)
	assert.NoError(t, statErr)
}

func TestLaunch_TeardownFailureAfterSuccess(t *testing.T) {
	cfg := newTestConfig(t)
	rt := &fakeRuntime{stopErr: errors.New("compose down failed")}

	res, err := New(rt).Launch(context.Background(), cfg)

	var teardownErr *TeardownError
	require.True(t, errors.As(err, &teardownErr))
	assert.Equal(t, err, res.TeardownErr)
	assert.Equal(t, []State{StateIdle, StateComposing, StateStarting, StateTestRunning, StateTearingDown, StateFailed}, res.States)
}

func TestLaunch_ComposeFailure(t *testing.T) {
	cfg := newTestConfig(t)
	original := osMkdirAll
	defer func() { osMkdirAll = original }()
	osMkdirAll = func(string, os.FileMode) error { return errors.New("read-only file system") }

	rt := &fakeRuntime{}
	res, err := New(rt).Launch(context.Background(), cfg)

	var startErr *StartError
	require.True(t, errors.As(err, &startErr))
	assert.Equal(t, StateComposing, startErr.Stage)
	assert.Empty(t, rt.calls, "nothing was started, nothing to stop")
	assert.Equal(t, StateFailed, res.Final())
}

func TestLaunch_InCISkipsTeardown(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.InCI = true
	rt := &fakeRuntime{}

	res, err := New(rt).Launch(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "run"}, rt.calls)
	assert.True(t, res.TeardownSkipped)
	_, statErr := os.Stat(filepath.Join(cfg.WorkDir, topology.FileName))
	assert.NoError(t, statErr, "manifest stays for the cleanup step")
}

func TestLaunch_InCIFailureGoesStraightToFailed(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.InCI = true
	rt := &fakeRuntime{runErr: errors.New("tests failed")}

	res, err := New(rt).Launch(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, []State{StateIdle, StateComposing, StateStarting, StateTestRunning, StateFailed}, res.States)
	assert.Equal(t, []string{"start", "run"}, rt.calls)
}

func TestLaunch_CancelledBeforeTests(t *testing.T) {
	cfg := newTestConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	rt := &fakeRuntime{onStart: cancel}

	_, err := New(rt).Launch(ctx, cfg)

	var testErr *TestError
	require.True(t, errors.As(err, &testErr))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []string{"start", "stop"}, rt.calls, "teardown still runs after cancellation")
}

func TestLaunch_Observer(t *testing.T) {
	cfg := newTestConfig(t)
	type transition struct {
		from, to State
		failed   bool
	}
	var seen []transition
	observer := func(from, to State, err error) {
		seen = append(seen, transition{from, to, err != nil})
	}

	_, err := New(&fakeRuntime{startErr: errors.New("boom")}, WithObserver(observer)).Launch(context.Background(), cfg)
	require.Error(t, err)

	assert.Equal(t, []transition{
		{StateIdle, StateComposing, false},
		{StateComposing, StateStarting, false},
		{StateStarting, StateTearingDown, true},
		{StateTearingDown, StateFailed, true},
	}, seen)
}

func TestLaunch_SingleUse(t *testing.T) {
	cfg := newTestConfig(t)
	l := New(&fakeRuntime{})

	_, err := l.Launch(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, l.State().Terminal())

	_, err = l.Launch(context.Background(), cfg)
	assert.Error(t, err)
}

func TestTestContainer(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.ScreenshotPath = "/shots"
	cfg.PassThrough = []string{"-k", "notebooks"}

	c := TestContainer(cfg)
	assert.Equal(t, config.DefaultRunnerImage, c.Image)
	assert.True(t, c.Remove)
	assert.Equal(t, []containerizer.EnvVar{
		{Name: "AIIDALAB_HOST", Value: "aiidalab"},
		{Name: "SELENIUM_HOST", Value: "seleniumhub"},
		{Name: "JUPYTER_TOKEN", Value: "aiidalab-test"},
		{Name: "APP_NOTEBOOKS", Value: "**/[!.]*.ipynb"},
		{Name: "APP_NAME", Value: "app"},
	}, c.Env)
	assert.Equal(t, []containerizer.Mount{
		{Source: "/repo", Target: RunnerAppMount},
		{Source: "/shots", Target: RunnerScreenshotMount},
	}, c.Mounts)
	assert.Equal(t, []string{"--capability", "browserName", "firefox", "-k", "notebooks"}, c.Args)
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateIdle, StateComposing, StateStarting, StateTestRunning, StateTearingDown} {
		assert.False(t, s.Terminal(), s)
	}
	assert.True(t, StateDone.Terminal())
	assert.True(t, StateFailed.Terminal())
}

func TestLaunch_TeardownTimeout(t *testing.T) {
	cfg := newTestConfig(t)
	rt := &fakeRuntime{}

	before := time.Now()
	_, err := New(rt, WithTeardownTimeout(5*time.Second)).Launch(context.Background(), cfg)
	require.NoError(t, err)

	require.False(t, rt.stopDeadline.IsZero())
	assert.WithinDuration(t, before.Add(5*time.Second), rt.stopDeadline, 2*time.Second)
}

func TestLaunch_WorkDirMustBelongToProject(t *testing.T) {
	toolDir := t.TempDir()
	precious := filepath.Join(toolDir, "precious.txt")
	require.NoError(t, os.WriteFile(precious, []byte("keep"), 0644))

	for _, project := range []string{".", ".."} {
		t.Run(project, func(t *testing.T) {
			cfg := newTestConfig(t)
			cfg.Project = project
			cfg.WorkDir = filepath.Join(toolDir, project)
			rt := &fakeRuntime{}

			res, err := New(rt).Launch(context.Background(), cfg)

			var startErr *StartError
			require.True(t, errors.As(err, &startErr))
			assert.Equal(t, StateComposing, startErr.Stage)
			assert.Empty(t, rt.calls)
			var teardownErr *TeardownError
			assert.True(t, errors.As(res.TeardownErr, &teardownErr))

			_, statErr := os.Stat(precious)
			assert.NoError(t, statErr, "files next to the work directory must survive")
		})
	}
}
