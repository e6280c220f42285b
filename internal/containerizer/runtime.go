package containerizer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"apptest/internal/config"
)

// Project identifies one compose topology on the host.
type Project struct {
	Name string
	// Dir is the work directory compose commands run in.
	Dir string
	// ManifestPath is the compose file; empty lets compose address the project by name only.
	ManifestPath string
}

// EnvVar is a single environment entry passed to a container.
type EnvVar struct {
	Name  string
	Value string
}

func (e EnvVar) String() string {
	return e.Name + "=" + e.Value
}

// Mount is a host directory bind-mounted into a container.
type Mount struct {
	Source string
	Target string
}

// Container describes a one-shot container run to completion.
type Container struct {
	Image   string
	Network string
	Env     []EnvVar
	Mounts  []Mount
	Args    []string
	// Remove deletes the container once it exited.
	Remove bool
}

// Composer brings compose projects up and down.
type Composer interface {
	Start(ctx context.Context, p Project) error
	Stop(ctx context.Context, p Project) error
}

// TestRunner runs a container until it exits.
type TestRunner interface {
	Run(ctx context.Context, c Container) error
}

// Runtime is everything the launcher needs from the container host.
type Runtime interface {
	Composer
	TestRunner
}

// ExitError reports a process or container that exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// Stack combines a compose driver with a test-runner driver.
type Stack struct {
	Composer
	TestRunner
}

// New returns the runtime for engine. Compose always goes through the CLI;
// the engine selects how the test runner is executed.
func New(engine config.Engine, composeCommand []string) (*Stack, error) {
	composer, err := NewComposeCLI(composeCommand)
	if err != nil {
		return nil, err
	}

	var runner TestRunner
	switch engine {
	case config.EngineCLI, "":
		runner = NewDockerCLI()
	case config.EngineAPI:
		api, err := NewDockerAPI()
		if err != nil {
			return nil, err
		}
		runner = api
	default:
		return nil, fmt.Errorf("unsupported container engine %q", engine)
	}
	return &Stack{Composer: composer, TestRunner: runner}, nil
}

// Close releases resources held by the drivers.
func (s *Stack) Close() error {
	var errs []error
	if c, ok := s.TestRunner.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := s.Composer.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
