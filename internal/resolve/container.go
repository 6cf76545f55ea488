package resolve

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/models"
)

// ContainerResolver answers "which container is this process running
// in?". Precedence: operator environment override, then cgroup-path ID
// extraction plus a runtime name lookup, then the process hostname as
// last resort.
type ContainerResolver struct {
	override string
	cgroup   *probe.Cgroup
	docker   *probe.Docker
	hostname func() (string, error)
	log      zerolog.Logger
}

// NewContainerResolver builds the resolver. An empty override disables
// the first strategy.
func NewContainerResolver(override string, cgroup *probe.Cgroup, docker *probe.Docker, log zerolog.Logger) *ContainerResolver {
	return &ContainerResolver{
		override: override,
		cgroup:   cgroup,
		docker:   docker,
		hostname: os.Hostname,
		log:      log,
	}
}

// Resolve determines the process's own container identity. An error is
// returned only when every strategy failed, so the caller's cache does
// not memoize a failure.
func (r *ContainerResolver) Resolve(ctx context.Context) (models.ContainerIdentity, error) {
	if r.override != "" {
		return models.ContainerIdentity{
			Name:        r.override,
			ResolvedVia: models.ResolvedViaEnv,
		}, nil
	}

	if id, err := r.cgroup.ContainerID(); err == nil {
		if r.docker != nil {
			if name, err := r.docker.ContainerName(ctx, id); err == nil {
				return models.ContainerIdentity{
					Name:        name,
					ID:          id,
					ResolvedVia: models.ResolvedViaCgroup,
				}, nil
			} else {
				r.log.Debug().Err(err).Str("id", id).Msg("runtime name lookup failed")
			}
		}
	} else {
		r.log.Debug().Err(err).Msg("cgroup ID extraction failed")
	}

	name, err := r.hostname()
	if err != nil {
		return models.ContainerIdentity{}, fmt.Errorf("container identity: %w", err)
	}
	return models.ContainerIdentity{
		Name:        name,
		ResolvedVia: models.ResolvedViaHostname,
	}, nil
}
