package models

// AssignmentMode describes how the host's primary address was assigned.
type AssignmentMode string

const (
	// AssignmentStatic means the winning strategy reported a static address.
	AssignmentStatic AssignmentMode = "static"

	// AssignmentDHCP means the winning strategy saw DHCP lease metadata.
	AssignmentDHCP AssignmentMode = "dhcp"

	// AssignmentStaticOverride means an operator override is configured.
	// Explicit operator intent always wins over probed evidence.
	AssignmentStaticOverride AssignmentMode = "static_override"

	// AssignmentUnknown means no strategy could report an assignment mode.
	AssignmentUnknown AssignmentMode = "unknown"
)

// NetworkIdentity is the physical host's network identity as resolved
// from inside the container sandbox. Fields left empty could not be
// resolved by any strategy.
//
// Invariant: when HostIP is set, SourceStrategy names the strategy that
// produced it. AssignmentMode is never DHCP or static without a resolved
// HostIP.
type NetworkIdentity struct {
	// HostIP is the physical host's primary IPv4 address.
	HostIP string `json:"host_ip,omitempty"`

	// ContainerIP is the observing container's own outbound IPv4 address.
	ContainerIP string `json:"container_ip,omitempty"`

	// Gateway is the default route's gateway address.
	Gateway string `json:"gateway,omitempty"`

	// SubnetMask is the dotted-decimal mask of the host's subnet.
	SubnetMask string `json:"subnet_mask,omitempty"`

	// AssignmentMode reports how HostIP was assigned.
	AssignmentMode AssignmentMode `json:"assignment_mode"`

	// SourceStrategy names the strategy that produced HostIP, for
	// debugging precedence decisions.
	SourceStrategy string `json:"source_strategy,omitempty"`
}
