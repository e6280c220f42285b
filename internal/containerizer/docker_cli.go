package containerizer

import (
	"context"
	"errors"
)

// DockerCLI runs test-runner containers with `docker run`.
type DockerCLI struct {
	// Binary is the docker executable, "docker" unless overridden.
	Binary string
}

// NewDockerCLI returns a DockerCLI using the docker binary from PATH.
func NewDockerCLI() *DockerCLI {
	return &DockerCLI{Binary: "docker"}
}

// Run executes the container in the foreground and waits for it to exit.
func (d *DockerCLI) Run(ctx context.Context, c Container) error {
	if c.Image == "" {
		return errors.New("container image not defined")
	}
	return runCommand(ctx, "", "TestRunner", d.Binary, runArgs(c)...)
}

// runArgs renders c as `docker run` arguments.
func runArgs(c Container) []string {
	args := []string{"run"}
	if c.Remove {
		args = append(args, "--rm")
	}
	for _, e := range c.Env {
		args = append(args, "--env", e.String())
	}
	if c.Network != "" {
		args = append(args, "--network="+c.Network)
	}
	for _, m := range c.Mounts {
		args = append(args, "--mount", "type=bind,src="+m.Source+",dst="+m.Target)
	}
	args = append(args, c.Image)
	return append(args, c.Args...)
}
