package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"apptest/internal/cli"
	"apptest/internal/config"
	"apptest/internal/containerizer"
	"apptest/internal/launcher"
	"apptest/internal/topology"
	"apptest/pkg/logging"
)

// For mocking in tests
var (
	osStat      = os.Stat
	osRemoveAll = os.RemoveAll
)

// Run resolves the configuration and runs the tests once.
func (a *Application) Run(ctx context.Context) error {
	cfg, err := a.resolve()
	if err != nil {
		return err
	}

	rt, err := newRuntime(cfg.Engine, cfg.ComposeCommand)
	if err != nil {
		return fmt.Errorf("failed to set up container runtime: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logging.Debug("CLI", "Closing container runtime: %v", err)
		}
	}()

	var opts []launcher.Option
	if a.config.TeardownTimeout > 0 {
		opts = append(opts, launcher.WithTeardownTimeout(a.config.TeardownTimeout))
	}
	res, err := launcher.New(rt, opts...).Launch(ctx, cfg)
	if err != nil {
		return err
	}
	if res.TeardownSkipped {
		logging.Info("CLI", "Test environment %s left running for the cleanup step", res.Project)
	}
	return nil
}

// Plan resolves the configuration and writes the topology a run would start.
func (a *Application) Plan(w io.Writer, format cli.OutputFormat) error {
	cfg, err := a.resolve()
	if err != nil {
		return err
	}
	m := topology.Build(cfg)
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid topology: %w", err)
	}
	return cli.RenderPlan(w, cfg, m, format)
}

// Cleanup tears down the project of an earlier run and removes its work
// directory. project overrides AIIDALAB_TESTS_WORKDIR when not nil.
func (a *Application) Cleanup(ctx context.Context, project *string) error {
	target, err := config.NewResolver(a.source).ResolveCleanup(project, a.config.Flags.WorkRoot, a.file)
	if err != nil {
		return err
	}
	logging.Info("CLI", "Cleaning up test environment %s", target.Project)

	composer, err := newComposer(target.ComposeCommand)
	if err != nil {
		return fmt.Errorf("failed to set up compose: %w", err)
	}

	p := containerizer.Project{Name: target.Project, Dir: target.WorkDir}
	if _, err := osStat(target.WorkDir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to inspect work directory %s: %w", target.WorkDir, err)
		}
		logging.Warn("CLI", "Work directory %s does not exist, stopping project by name only", target.WorkDir)
		p.Dir = a.toolDir
	} else if _, err := osStat(target.ManifestPath(topology.FileName)); err == nil {
		p.ManifestPath = target.ManifestPath(topology.FileName)
	}

	if err := composer.Stop(ctx, p); err != nil {
		return &launcher.TeardownError{Err: err}
	}
	if err := osRemoveAll(target.WorkDir); err != nil {
		return &launcher.TeardownError{Err: fmt.Errorf("failed to remove work directory %s: %w", target.WorkDir, err)}
	}
	logging.Info("CLI", "Removed test environment %s", target.Project)
	return nil
}
