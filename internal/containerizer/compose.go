package containerizer

import (
	"context"
	"errors"
)

// ComposeCLI drives compose projects through the docker compose command line.
type ComposeCLI struct {
	// Command is the compose invocation, e.g. ["docker", "compose"] or ["docker-compose"].
	Command []string
}

// NewComposeCLI returns a compose driver for command.
func NewComposeCLI(command []string) (*ComposeCLI, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, errors.New("compose command must not be empty")
	}
	return &ComposeCLI{Command: append([]string(nil), command...)}, nil
}

// Start creates and starts every service of the project in the background.
func (c *ComposeCLI) Start(ctx context.Context, p Project) error {
	return c.run(ctx, p, "up", "--detach")
}

// Stop stops and removes the project's containers and its default network.
func (c *ComposeCLI) Stop(ctx context.Context, p Project) error {
	return c.run(ctx, p, "down", "--remove-orphans")
}

func (c *ComposeCLI) run(ctx context.Context, p Project, verb ...string) error {
	return runCommand(ctx, p.Dir, "Compose", c.Command[0], c.args(p, verb...)...)
}

func (c *ComposeCLI) args(p Project, verb ...string) []string {
	args := append([]string(nil), c.Command[1:]...)
	args = append(args, "--project-name", p.Name)
	if p.ManifestPath != "" {
		args = append(args, "--file", p.ManifestPath)
	}
	return append(args, verb...)
}
