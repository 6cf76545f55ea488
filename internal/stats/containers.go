package stats

import (
	"context"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/rs/zerolog"

	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/models"
)

// collectContainers samples every running container once. A container
// whose stats call fails is reported with its status only; one slow or
// dying container must not blank the whole list.
func collectContainers(ctx context.Context, docker *probe.Docker, log zerolog.Logger) []models.ContainerStats {
	if docker == nil {
		return nil
	}

	list, err := docker.RunningContainers(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("container list failed")
		return nil
	}

	out := make([]models.ContainerStats, 0, len(list))
	for _, c := range list {
		cs := models.ContainerStats{
			Name:   containerName(c),
			Status: c.State,
		}
		if sample, err := docker.StatsOneShot(ctx, c.ID); err == nil {
			fillUsage(&cs, sample)
		} else {
			log.Debug().Err(err).Str("container", cs.Name).Msg("container stats failed")
		}
		out = append(out, cs)
	}
	return out
}

func containerName(c container.Summary) string {
	if len(c.Names) > 0 {
		return strings.TrimPrefix(c.Names[0], "/")
	}
	if len(c.ID) >= 12 {
		return c.ID[:12]
	}
	return c.ID
}

// fillUsage converts a raw runtime sample into dashboard numbers. CPU
// percent follows the runtime's own formula: usage delta over system
// delta, scaled by the online CPU count.
func fillUsage(cs *models.ContainerStats, s container.StatsResponse) {
	cpuDelta := float64(s.CPUStats.CPUUsage.TotalUsage) - float64(s.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(s.CPUStats.SystemUsage) - float64(s.PreCPUStats.SystemUsage)
	if cpuDelta > 0 && sysDelta > 0 {
		cpus := float64(s.CPUStats.OnlineCPUs)
		if cpus == 0 {
			cpus = float64(len(s.CPUStats.CPUUsage.PercpuUsage))
		}
		cs.CPUPercent = round1(cpuDelta / sysDelta * cpus * 100)
	}

	cs.MemoryUsageBytes = s.MemoryStats.Usage
	// The runtime counts page cache in usage; subtracting it matches
	// what docker stats itself displays.
	if cache, ok := s.MemoryStats.Stats["cache"]; ok && cache < cs.MemoryUsageBytes {
		cs.MemoryUsageBytes -= cache
	} else if inactive, ok := s.MemoryStats.Stats["inactive_file"]; ok && inactive < cs.MemoryUsageBytes {
		cs.MemoryUsageBytes -= inactive
	}
	cs.MemoryLimitBytes = s.MemoryStats.Limit
	if cs.MemoryLimitBytes > 0 {
		cs.MemoryPercent = round1(float64(cs.MemoryUsageBytes) / float64(cs.MemoryLimitBytes) * 100)
	}

	for _, nw := range s.Networks {
		cs.NetworkRxBytes += nw.RxBytes
		cs.NetworkTxBytes += nw.TxBytes
	}
}
