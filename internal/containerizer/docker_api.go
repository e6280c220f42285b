package containerizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"apptest/pkg/logging"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// engineClient is the subset of the Docker SDK client used by DockerAPI.
type engineClient interface {
	ImagePull(ctx context.Context, ref string, options types.ImagePullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options types.ContainerStartOptions) error
	ContainerLogs(ctx context.Context, containerID string, options types.ContainerLogsOptions) (io.ReadCloser, error)
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerRemove(ctx context.Context, containerID string, options types.ContainerRemoveOptions) error
	Close() error
}

// DockerAPI runs test-runner containers through the Docker Engine API.
type DockerAPI struct {
	cli engineClient
}

// NewDockerAPI creates a client from the DOCKER_* environment.
func NewDockerAPI() (*DockerAPI, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &DockerAPI{cli: cli}, nil
}

// Close closes the underlying client.
func (d *DockerAPI) Close() error {
	return d.cli.Close()
}

// Run pulls the image, runs the container to completion while streaming its
// output to the logger, and fails on a non-zero exit status.
func (d *DockerAPI) Run(ctx context.Context, c Container) error {
	const subsystem = "TestRunner"
	if c.Image == "" {
		return errors.New("container image not defined")
	}

	if err := d.pull(ctx, c.Image); err != nil {
		// Locally built runner images are not on any registry.
		logging.Warn(subsystem, "%v, trying local image", err)
	}

	cfg, hostCfg := containerSpec(c)
	resp, err := d.cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, "")
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	shortID := resp.ID
	if len(shortID) > 12 {
		shortID = shortID[:12]
	}
	logging.Debug(subsystem, "Created test runner container %s", shortID)

	if c.Remove {
		defer func() {
			// The run context may already be cancelled; removal still has to happen.
			rmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := d.cli.ContainerRemove(rmCtx, resp.ID, types.ContainerRemoveOptions{Force: true}); err != nil {
				logging.Warn(subsystem, "Failed to remove container %s: %v", shortID, err)
			}
		}()
	}

	// Register the wait before starting so a fast exit is not missed.
	statusCh, errCh := d.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNextExit)

	if err := d.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	logsDone := make(chan struct{})
	logs, err := d.cli.ContainerLogs(ctx, resp.ID, types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		logging.Error(subsystem, err, "Failed to get container logs, continuing anyway")
		close(logsDone)
	} else {
		go func() {
			defer close(logsDone)
			defer logs.Close()
			stdout := logging.LineWriter(logging.LevelInfo, subsystem)
			stderr := logging.LineWriter(logging.LevelInfo, subsystem)
			if _, err := stdcopy.StdCopy(stdout, stderr, logs); err != nil && !errors.Is(err, context.Canceled) {
				logging.Debug(subsystem, "Log stream ended: %v", err)
			}
			stdout.Close()
			stderr.Close()
		}()
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("failed waiting for container: %w", err)
	case status := <-statusCh:
		<-logsDone
		if status.Error != nil {
			return fmt.Errorf("container wait error: %s", status.Error.Message)
		}
		if status.StatusCode != 0 {
			return &ExitError{Command: c.Image, Code: int(status.StatusCode)}
		}
		return nil
	}
}

func (d *DockerAPI) pull(ctx context.Context, image string) error {
	reader, err := d.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", image, err)
	}
	defer reader.Close()
	// Pull progress is JSON noise; draining the stream waits for the pull to finish.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", image, err)
	}
	logging.Debug("TestRunner", "Pulled image %s", image)
	return nil
}

// containerSpec translates c into SDK configuration.
func containerSpec(c Container) (*container.Config, *container.HostConfig) {
	env := make([]string, 0, len(c.Env))
	for _, e := range c.Env {
		env = append(env, e.String())
	}

	mounts := make([]mount.Mount, 0, len(c.Mounts))
	for _, m := range c.Mounts {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: m.Source,
			Target: m.Target,
		})
	}

	cfg := &container.Config{
		Image: c.Image,
		Env:   env,
		Cmd:   append([]string(nil), c.Args...),
	}
	hostCfg := &container.HostConfig{
		Mounts: mounts,
	}
	if c.Network != "" {
		hostCfg.NetworkMode = container.NetworkMode(c.Network)
	}
	return cfg, hostCfg
}
