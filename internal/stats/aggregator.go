package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nvrdash/nvrdash/internal/config"
	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/internal/resolve"
	"github.com/nvrdash/nvrdash/models"
)

// Aggregator collects dashboard snapshots. Snapshots are cached for the
// configured TTL and recomputed single-flight, so any number of polling
// clients costs one collection pass per interval.
type Aggregator struct {
	resolver *resolve.Service
	docker   *probe.Docker
	log      zerolog.Logger

	instanceID     string
	thermalZone    string
	sysClassNet    string
	interfaces     []string
	backupMount    string
	serviceName    string
	recordingsPath string

	cache *resolve.Cached[Snapshot]
	clock func() time.Time
}

// NewAggregator builds the snapshot collector. docker may be nil when
// the runtime socket is unreachable.
func NewAggregator(cfg *config.Config, resolver *resolve.Service, docker *probe.Docker, log zerolog.Logger) *Aggregator {
	sysClassNet := "/sys/class/net"
	if cfg.Hardware.HostRoot != "" {
		sysClassNet = cfg.Hardware.HostRoot + sysClassNet
	}
	return &Aggregator{
		resolver:       resolver,
		docker:         docker,
		log:            log,
		instanceID:     uuid.NewString(),
		thermalZone:    cfg.Hardware.ThermalZone,
		sysClassNet:    sysClassNet,
		interfaces:     cfg.Network.InterfacePriority,
		backupMount:    cfg.Hardware.BackupMount,
		serviceName:    cfg.Docker.ServiceName,
		recordingsPath: cfg.NVR.RecordingsPath,
		cache:          resolve.NewCached[Snapshot](cfg.Cache.StatsTTL),
		clock:          time.Now,
	}
}

// InstanceID identifies this server process.
func (a *Aggregator) InstanceID() string {
	return a.instanceID
}

// Snapshot returns the current (possibly cached) dashboard sample.
func (a *Aggregator) Snapshot(ctx context.Context) Snapshot {
	s, _ := a.cache.Get(ctx, func(ctx context.Context) (Snapshot, error) {
		return a.collect(ctx), nil
	})
	return s
}

func (a *Aggregator) collect(ctx context.Context) Snapshot {
	now := a.clock()
	hw := a.resolver.Hardware(ctx)

	targets := []diskTarget{{mountpoint: "/", role: "root"}}
	if hw.HasUSBBackupVolume {
		targets = append(targets, diskTarget{mountpoint: a.backupMount, role: "backup"})
	}
	if hw.HasSDCard && hw.BootDevice != models.BootSD {
		targets = append(targets, diskTarget{mountpoint: "/boot/firmware", role: "sd_card"})
	}

	return Snapshot{
		InstanceID:    a.instanceID,
		Timestamp:     now,
		UptimeSeconds: hostUptime(ctx),
		CPU:           collectCPU(ctx, a.thermalZone),
		Memory:        collectMemory(ctx),
		Disks:         collectDisks(ctx, targets),
		Network:       collectNetwork(ctx, a.sysClassNet, a.interfaces),
		Containers:    collectContainers(ctx, a.docker, a.log),
		Accelerator:   a.resolver.Accelerator(ctx),
		NVR:           collectNVR(ctx, a.docker, a.serviceName, a.recordingsPath, now),
	}
}
