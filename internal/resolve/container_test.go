package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/models"
)

func TestContainerResolve_Override(t *testing.T) {
	r := NewContainerResolver("nvr-dashboard", &probe.Cgroup{Path: missingPath(t)}, nil, zerolog.Nop())

	id, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "nvr-dashboard", id.Name)
	assert.Empty(t, id.ID)
	assert.Equal(t, models.ResolvedViaEnv, id.ResolvedVia)
}

func TestContainerResolve_HostnameFallback(t *testing.T) {
	// No override, unreadable cgroup, no runtime: the hostname is the
	// last resort.
	r := NewContainerResolver("", &probe.Cgroup{Path: missingPath(t)}, nil, zerolog.Nop())
	r.hostname = func() (string, error) { return "4d0a19f17b2a", nil }

	id, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4d0a19f17b2a", id.Name)
	assert.Equal(t, models.ResolvedViaHostname, id.ResolvedVia)
}

func TestContainerResolve_CgroupWithoutRuntimeFallsThrough(t *testing.T) {
	// The cgroup yields an ID but no runtime is reachable to name it;
	// the hostname fallback still answers.
	cg := writeTempFile(t, "cgroup",
		"0::/system.slice/docker-4d0a19f17b2adab37f04f0674ff1a07fead0aa12708b6e4a16e8418c4e017280.scope\n")
	r := NewContainerResolver("", &probe.Cgroup{Path: cg}, nil, zerolog.Nop())
	r.hostname = func() (string, error) { return "fallback-host", nil }

	id, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fallback-host", id.Name)
	assert.Equal(t, models.ResolvedViaHostname, id.ResolvedVia)
}

func TestContainerResolve_AllStrategiesFail(t *testing.T) {
	r := NewContainerResolver("", &probe.Cgroup{Path: missingPath(t)}, nil, zerolog.Nop())
	r.hostname = func() (string, error) { return "", errors.New("no hostname") }

	_, err := r.Resolve(context.Background())
	assert.Error(t, err)
}
