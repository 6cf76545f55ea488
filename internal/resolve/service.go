// Package resolve implements the host-identity and capability-resolution
// core: ordered strategy chains over the probes in internal/probe, a
// field-level precedence merge, and a per-category capability cache.
//
// Each question (hardware profile, network identity, container identity,
// storage enumeration) is answered by a resolver that tolerates partial
// failure of every strategy; unresolved facts surface as explicit
// unknown/absent values, never as faults.
package resolve

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/models"
)

// Options configures the resolution service.
type Options struct {
	// HostRoot is the prefix the host's /dev, /proc and /sys are
	// bind-mounted under (typically /host). Empty probes only the
	// container's own namespace.
	HostRoot string

	// AcceleratorDevice, AcceleratorDriver and AcceleratorVendor
	// identify the AI accelerator.
	AcceleratorDevice string
	AcceleratorDriver string
	AcceleratorVendor string

	// BackupMount is the designated backup-volume mount point.
	BackupMount string

	// ServiceName is the monitored NVR service's container name.
	ServiceName string

	// ContainerNameOverride short-circuits container identity
	// resolution when set.
	ContainerNameOverride string

	// Network overrides and interface priority for host-IP fallback.
	StaticNetwork     StaticNetwork
	InterfacePriority []string

	// ProbeTimeout bounds each external command invocation.
	ProbeTimeout time.Duration

	// HardwareTTL and NetworkTTL box the capability cache. Container
	// identity is cached for the process lifetime once resolved.
	HardwareTTL time.Duration
	NetworkTTL  time.Duration
}

// Service bundles the resolvers behind their capability caches. It is
// constructed once at process start and handed to request handlers;
// there is no ambient module state.
type Service struct {
	hardware  *HardwareResolver
	network   *NetworkResolver
	container *ContainerResolver
	storage   *StorageResolver

	hwCache    *Cached[models.HardwareProfile]
	accelCache *Cached[models.AcceleratorStatus]
	netCache   *Cached[models.NetworkIdentity]
	idCache    *Cached[models.ContainerIdentity]
}

// NewService wires production probes into the resolvers. docker may be
// nil when the runtime socket is unreachable; runtime-backed facts then
// resolve to their absent values.
func NewService(opts Options, docker *probe.Docker, log zerolog.Logger) *Service {
	fs := probe.NewFS(opts.HostRoot)
	procPath := func(p string) string {
		if opts.HostRoot != "" {
			return opts.HostRoot + p
		}
		return p
	}

	hardware := NewHardwareResolver(HardwareDeps{
		FS:                fs,
		Mounts:            &probe.Mounts{Path: procPath("/proc/mounts")},
		Cmdline:           &probe.Cmdline{Path: procPath("/proc/cmdline")},
		Modules:           &probe.Modules{Path: procPath("/proc/modules")},
		PCI:               &probe.PCI{Root: procPath("/sys/bus/pci/devices")},
		Docker:            docker,
		AcceleratorDevice: opts.AcceleratorDevice,
		AcceleratorDriver: opts.AcceleratorDriver,
		AcceleratorVendor: opts.AcceleratorVendor,
		BackupMount:       opts.BackupMount,
		ServiceName:       opts.ServiceName,
	}, log)

	network := NewNetworkResolver(
		opts.StaticNetwork,
		opts.InterfacePriority,
		probe.NewHostNet(opts.ProbeTimeout),
		&probe.RouteTable{Path: "/proc/net/route"},
		&probe.FIBTrie{Path: "/proc/net/fib_trie"},
		log,
	)

	container := NewContainerResolver(
		opts.ContainerNameOverride,
		&probe.Cgroup{Path: "/proc/self/cgroup"},
		docker,
		log,
	)

	storage := NewStorageResolver(probe.NewBlockDevices(opts.ProbeTimeout), opts.BackupMount)

	return &Service{
		hardware:   hardware,
		network:    network,
		container:  container,
		storage:    storage,
		hwCache:    NewCached[models.HardwareProfile](opts.HardwareTTL),
		accelCache: NewCached[models.AcceleratorStatus](opts.HardwareTTL),
		netCache:   NewCached[models.NetworkIdentity](opts.NetworkTTL),
		idCache:    NewCached[models.ContainerIdentity](0),
	}
}

// Hardware returns the cached hardware profile, recomputing it wholesale
// on expiry.
func (s *Service) Hardware(ctx context.Context) models.HardwareProfile {
	p, _ := s.hwCache.Get(ctx, func(ctx context.Context) (models.HardwareProfile, error) {
		return s.hardware.Resolve(ctx), nil
	})
	return p
}

// Accelerator returns the cached accelerator status.
func (s *Service) Accelerator(ctx context.Context) models.AcceleratorStatus {
	a, _ := s.accelCache.Get(ctx, func(ctx context.Context) (models.AcceleratorStatus, error) {
		return s.hardware.Accelerator(ctx), nil
	})
	return a
}

// Network returns the host's network identity, cached briefly so
// repeated polling does not respawn the probe commands while still
// reflecting DHCP renewals within one polling interval.
func (s *Service) Network(ctx context.Context) models.NetworkIdentity {
	n, _ := s.netCache.Get(ctx, func(ctx context.Context) (models.NetworkIdentity, error) {
		return s.network.Resolve(ctx), nil
	})
	return n
}

// Identity returns the process's own container identity, resolved once
// and cached for the process lifetime. Failures are not memoized.
func (s *Service) Identity(ctx context.Context) (models.ContainerIdentity, error) {
	return s.idCache.Get(ctx, s.container.Resolve)
}

// Storage enumerates block devices fresh on every call.
func (s *Service) Storage(ctx context.Context) ([]models.StorageDevice, error) {
	return s.storage.Resolve(ctx)
}
