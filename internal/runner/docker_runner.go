package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/containerd/errdefs"
	"github.com/moby/moby/client"

	"github.com/Andrew-Schwartz/typset-image/internal/logger"
)

// DockerClient is the subset of the moby client the docker runner needs.
type DockerClient interface {
	ContainerInspect(ctx context.Context, containerID string, options client.ContainerInspectOptions) (client.ContainerInspectResult, error)
	ContainerStart(ctx context.Context, containerID string, options client.ContainerStartOptions) (client.ContainerStartResult, error)
}

// DockerRunner executes tools inside a long-lived toolchain container, for
// hosts that do not have the TeX/Typst binaries installed locally. The cache
// root must be bind-mounted into the container at the same path, since workdir
// is handed to `docker exec -w` verbatim.
type DockerRunner struct {
	cli       DockerClient
	local     Runner
	container string
	docker    string

	mu    sync.Mutex
	ready bool
}

func NewDockerRunner(container, dockerBin string) (*DockerRunner, error) {
	cli, err := client.New(client.FromEnv)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return NewDockerRunnerWithClient(cli, container, dockerBin), nil
}

// NewDockerRunnerWithClient creates a DockerRunner with an injected client, for tests.
func NewDockerRunnerWithClient(cli DockerClient, container, dockerBin string) *DockerRunner {
	if dockerBin == "" {
		dockerBin = "docker"
	}
	return &DockerRunner{
		cli:       cli,
		local:     NewExecRunner(),
		container: container,
		docker:    dockerBin,
	}
}

func (d *DockerRunner) Run(ctx context.Context, workdir string, exe string, args ...string) (string, error) {
	if err := d.ensureRunning(ctx); err != nil {
		return "", err
	}

	dockerArgs := append([]string{"exec", "-w", workdir, d.container, exe}, args...)
	out, err := d.local.Run(ctx, "", d.docker, dockerArgs...)
	if err != nil {
		// docker exec propagates the tool's exit code; report the tool,
		// not the docker binary, so diagnostics read the same as the
		// exec runner's.
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			exitErr.Command = exe
		}
		return "", err
	}
	return out, nil
}

// ensureRunning checks the toolchain container exists and starts it if stopped.
// The check only runs until it succeeds once.
func (d *DockerRunner) ensureRunning(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ready {
		return nil
	}

	inspect, err := d.cli.ContainerInspect(ctx, d.container, client.ContainerInspectOptions{})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return fmt.Errorf("toolchain container %s not found", d.container)
		}
		return fmt.Errorf("inspect toolchain container %s: %w", d.container, err)
	}

	if inspect.Container.State == nil || !inspect.Container.State.Running {
		logger.WithComponent("docker-runner").Infof("starting toolchain container %s", d.container)
		if _, err := d.cli.ContainerStart(ctx, d.container, client.ContainerStartOptions{}); err != nil {
			return fmt.Errorf("start toolchain container %s: %w", d.container, err)
		}
	}

	d.ready = true
	return nil
}
