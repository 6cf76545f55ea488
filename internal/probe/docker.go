package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	dockerclient "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// Docker wraps the container runtime client for the availability,
// running-service and inspect-by-ID probes, and carries the same client
// through to container stats, logs and lifecycle calls so the process
// holds a single runtime connection.
type Docker struct {
	cli     *dockerclient.Client
	timeout time.Duration
}

// NewDocker connects to the runtime socket. An empty socket uses the
// environment defaults. Connection setup does not contact the daemon;
// availability is a separate probe.
func NewDocker(socket string, timeout time.Duration) (*Docker, error) {
	opts := []dockerclient.Opt{dockerclient.WithAPIVersionNegotiation()}
	if socket == "" {
		opts = append(opts, dockerclient.FromEnv)
	} else {
		host := socket
		if !strings.Contains(socket, "://") {
			host = "unix://" + socket
		}
		opts = append(opts, dockerclient.WithHost(host))
	}

	cli, err := dockerclient.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	return &Docker{cli: cli, timeout: timeout}, nil
}

func (d *Docker) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

// Available reports whether the runtime daemon responds within the probe
// timeout.
func (d *Docker) Available(ctx context.Context) bool {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	_, err := d.cli.Ping(ctx)
	return err == nil
}

// ServiceRunning reports whether a running container carries the given
// name. The runtime's name filter matches substrings, so results are
// compared exactly.
func (d *Docker) ServiceRunning(ctx context.Context, name string) (bool, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	list, err := d.cli.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return false, fmt.Errorf("container list: %v: %w", err, ErrUnavailable)
	}
	for _, c := range list {
		for _, n := range c.Names {
			if strings.TrimPrefix(n, "/") == name {
				return true, nil
			}
		}
	}
	return false, nil
}

// ContainerName resolves a container ID to its human name.
func (d *Docker) ContainerName(ctx context.Context, id string) (string, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	inspect, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", fmt.Errorf("inspect %s: %v: %w", id, err, ErrUnavailable)
	}
	return strings.TrimPrefix(inspect.Name, "/"), nil
}

// ContainerState returns status and start time for a container.
func (d *Docker) ContainerState(ctx context.Context, nameOrID string) (status string, startedAt time.Time, err error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	inspect, err := d.cli.ContainerInspect(ctx, nameOrID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("inspect %s: %v: %w", nameOrID, err, ErrUnavailable)
	}
	if inspect.State != nil {
		status = inspect.State.Status
		if t, perr := time.Parse(time.RFC3339Nano, inspect.State.StartedAt); perr == nil {
			startedAt = t
		}
	}
	return status, startedAt, nil
}

// RunningContainers lists running containers.
func (d *Docker) RunningContainers(ctx context.Context) ([]container.Summary, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	list, err := d.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("container list: %v: %w", err, ErrUnavailable)
	}
	return list, nil
}

// StatsOneShot takes a single non-streaming stats sample.
func (d *Docker) StatsOneShot(ctx context.Context, id string) (container.StatsResponse, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	var stats container.StatsResponse
	resp, err := d.cli.ContainerStats(ctx, id, false)
	if err != nil {
		return stats, fmt.Errorf("stats %s: %v: %w", id, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return stats, fmt.Errorf("stats %s: %v: %w", id, err, ErrMalformed)
	}
	return stats, nil
}

// Logs returns the last tail lines of a container's combined output.
// The runtime multiplexes stdout and stderr into one stream with 8-byte
// frame headers; stdcopy demultiplexes them.
func (d *Docker) Logs(ctx context.Context, nameOrID, tail string) (string, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	rc, err := d.cli.ContainerLogs(ctx, nameOrID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
	})
	if err != nil {
		return "", fmt.Errorf("logs %s: %v: %w", nameOrID, err, ErrUnavailable)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil && err != io.EOF {
		return "", fmt.Errorf("logs %s: %v: %w", nameOrID, err, ErrMalformed)
	}
	return buf.String(), nil
}

// Start starts a stopped container.
func (d *Docker) Start(ctx context.Context, nameOrID string) error {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	return d.cli.ContainerStart(ctx, nameOrID, container.StartOptions{})
}

// Stop stops a running container with the runtime's default grace period.
func (d *Docker) Stop(ctx context.Context, nameOrID string) error {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	return d.cli.ContainerStop(ctx, nameOrID, container.StopOptions{})
}

// Restart restarts a container.
func (d *Docker) Restart(ctx context.Context, nameOrID string) error {
	ctx, cancel := d.bound(ctx)
	defer cancel()
	return d.cli.ContainerRestart(ctx, nameOrID, container.StopOptions{})
}

// Close releases the runtime connection.
func (d *Docker) Close() error {
	return d.cli.Close()
}
