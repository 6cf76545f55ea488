// Package nvrdash is a host monitoring dashboard backend for a
// containerized NVR appliance.
//
// # Overview
//
// The dashboard runs inside a container on the appliance it monitors
// and resolves the physical host's identity and capabilities from
// partial evidence: bind-mounted host filesystems, /proc and /sys
// parsers, the container runtime API and short-lived external
// commands.
//
// # Architecture
//
//	┌─────────────────┐
//	│  API Server     │  REST + WebSocket (Echo)
//	│  (internal/api) │
//	└────────┬────────┘
//	         │
//	┌────────▼────────┐       ┌─────────────────┐
//	│  Resolvers      │◄──────┤  Stats          │
//	│ (internal/      │       │  Aggregator     │
//	│  resolve)       │       │ (internal/stats)│
//	└────────┬────────┘       └─────────────────┘
//	         │
//	┌────────▼────────┐
//	│  Probes         │  /proc, /sys, runtime API,
//	│ (internal/probe)│  external commands
//	└─────────────────┘
//
// # Core Features
//
//   - Hardware capability profile (NVMe, SD card, backup volume,
//     AI accelerator, container runtime, monitored NVR service)
//   - Host network identity resolved through an ordered strategy chain
//     with field-level precedence merging
//   - Live system and container stats with TTL-cached single-flight
//     snapshots
//   - Storage enumeration, container logs and lifecycle control, and a
//     pass-through proxy for the sibling backup service
package nvrdash
