// Package stats composes resolver output with live system metrics into
// one dashboard snapshot: CPU, memory, disks, network counters,
// container runtime stats, accelerator state and the monitored NVR
// service's activity. Snapshots are cached briefly so concurrent
// dashboard clients share one collection pass.
package stats

import (
	"time"

	"github.com/nvrdash/nvrdash/models"
)

// CPUStats reports processor usage and temperature.
type CPUStats struct {
	// UsagePercent is overall CPU usage since the previous sample.
	UsagePercent float64 `json:"usage_percent"`

	// PerCore lists usage per logical core.
	PerCore []float64 `json:"per_core,omitempty"`

	// Load1, Load5 and Load15 are the standard load averages.
	Load1  float64 `json:"load_1"`
	Load5  float64 `json:"load_5"`
	Load15 float64 `json:"load_15"`

	// TemperatureC is the SoC temperature in degrees Celsius, 0 when
	// the thermal zone is unreadable.
	TemperatureC float64 `json:"temperature_c"`
}

// MemoryStats reports physical memory usage.
type MemoryStats struct {
	TotalBytes     uint64  `json:"total_bytes"`
	UsedBytes      uint64  `json:"used_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	Percent        float64 `json:"percent"`
}

// DiskStats reports filesystem usage for one monitored mount.
type DiskStats struct {
	// Mountpoint is the filesystem mount path.
	Mountpoint string `json:"mountpoint"`

	// Role names what the appliance uses this filesystem for
	// (root, backup, sd_card).
	Role string `json:"role"`

	TotalBytes uint64  `json:"total_bytes"`
	UsedBytes  uint64  `json:"used_bytes"`
	FreeBytes  uint64  `json:"free_bytes"`
	Percent    float64 `json:"percent"`
}

// NetworkStats reports cumulative traffic counters for one interface.
type NetworkStats struct {
	Interface string `json:"interface"`
	RxBytes   uint64 `json:"rx_bytes"`
	TxBytes   uint64 `json:"tx_bytes"`
	RxPackets uint64 `json:"rx_packets"`
	TxPackets uint64 `json:"tx_packets"`
}

// NVRServiceStats summarizes the monitored NVR service's health and
// recording activity.
type NVRServiceStats struct {
	// Name is the monitored container's name.
	Name string `json:"name"`

	// Status is the runtime status string, "unknown" when the runtime
	// is unreachable.
	Status string `json:"status"`

	// UptimeSeconds is time since the container started, 0 when not
	// running.
	UptimeSeconds int64 `json:"uptime_seconds"`

	// Recording is true when any recording file was modified within the
	// activity window.
	Recording bool `json:"recording"`

	// ActiveCameras counts camera directories with recent recordings.
	ActiveCameras int `json:"active_cameras"`

	// DetectionEvents24h and DetectionEvents7d count object-detection
	// events inside the respective windows.
	DetectionEvents24h int `json:"detection_events_24h"`
	DetectionEvents7d  int `json:"detection_events_7d"`

	// RecordingsBytes is total on-disk size of the recordings tree.
	RecordingsBytes uint64 `json:"recordings_bytes"`
}

// Snapshot is one aggregated dashboard sample. Collection failures in
// any section leave that section at its zero value rather than failing
// the snapshot.
type Snapshot struct {
	// InstanceID identifies this server process, stable across samples
	// so clients can detect restarts.
	InstanceID string `json:"instance_id"`

	// Timestamp is when the sample was collected.
	Timestamp time.Time `json:"timestamp"`

	// UptimeSeconds is the host's uptime.
	UptimeSeconds uint64 `json:"uptime_seconds"`

	CPU     CPUStats       `json:"cpu"`
	Memory  MemoryStats    `json:"memory"`
	Disks   []DiskStats    `json:"disks"`
	Network []NetworkStats `json:"network"`

	// Containers lists per-container runtime stats, empty when the
	// runtime is unreachable.
	Containers []models.ContainerStats `json:"containers"`

	// Accelerator is the AI accelerator's current state.
	Accelerator models.AcceleratorStatus `json:"accelerator"`

	// NVR summarizes the monitored NVR service, nil when no service is
	// configured.
	NVR *NVRServiceStats `json:"nvr,omitempty"`
}
