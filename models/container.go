package models

// ContainerResolution names the mechanism that resolved the process's
// own container identity.
type ContainerResolution string

const (
	// ResolvedViaEnv means an operator-supplied override was used.
	ResolvedViaEnv ContainerResolution = "env_override"

	// ResolvedViaCgroup means the container ID was extracted from the
	// cgroup path and the name looked up through the runtime.
	ResolvedViaCgroup ContainerResolution = "cgroup_lookup"

	// ResolvedViaHostname means the process hostname was used as a last
	// resort.
	ResolvedViaHostname ContainerResolution = "hostname_fallback"
)

// ContainerIdentity is the observing process's own container identity.
// Once resolved successfully it is immutable for the process lifetime;
// a running process cannot change the container it lives in.
type ContainerIdentity struct {
	// Name is the runtime-assigned container name.
	Name string `json:"name"`

	// ID is the full container ID, empty when only the hostname fallback
	// succeeded.
	ID string `json:"id,omitempty"`

	// ResolvedVia names the mechanism that produced this identity.
	ResolvedVia ContainerResolution `json:"resolved_via"`
}

// ContainerStats is a one-shot resource usage sample for a running
// container, composed into the stats response by the aggregator.
type ContainerStats struct {
	// Name is the container name without the leading slash.
	Name string `json:"name"`

	// CPUPercent is CPU usage relative to the host, 0-100 per core.
	CPUPercent float64 `json:"cpu_percent"`

	// MemoryUsageBytes is current memory usage.
	MemoryUsageBytes uint64 `json:"memory_usage_bytes"`

	// MemoryLimitBytes is the configured memory limit, host total when
	// unlimited.
	MemoryLimitBytes uint64 `json:"memory_limit_bytes"`

	// MemoryPercent is usage relative to the limit.
	MemoryPercent float64 `json:"memory_percent"`

	// NetworkRxBytes and NetworkTxBytes sum traffic over all interfaces.
	NetworkRxBytes uint64 `json:"network_rx_bytes"`
	NetworkTxBytes uint64 `json:"network_tx_bytes"`

	// Status is the runtime status string (running, exited, ...).
	Status string `json:"status"`
}
