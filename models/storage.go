package models

// Transport classifies the bus a block device is attached through.
type Transport string

const (
	TransportUSB     Transport = "usb"
	TransportSATA    Transport = "sata"
	TransportMMC     Transport = "mmc"
	TransportNVMe    Transport = "nvme"
	TransportUnknown Transport = "unknown"
)

// UsageStats reports filesystem usage for a mounted device.
type UsageStats struct {
	TotalBytes uint64  `json:"total_bytes"`
	UsedBytes  uint64  `json:"used_bytes"`
	FreeBytes  uint64  `json:"free_bytes"`
	Percent    float64 `json:"percent"`
}

// StorageDevice describes one block device as enumerated from the live
// system. Devices are enumerated fresh on every call so just-inserted or
// removed USB media is reflected immediately; there is no cross-call
// identity.
type StorageDevice struct {
	// Name is the kernel device name (sda, nvme0n1, mmcblk0).
	Name string `json:"name"`

	// Path is the device node path under /dev.
	Path string `json:"path"`

	// Model is the device model string when the kernel reports one.
	Model string `json:"model,omitempty"`

	// SizeBytes is the raw device size.
	SizeBytes uint64 `json:"size_bytes"`

	// Transport classifies the attachment bus.
	Transport Transport `json:"transport"`

	// FilesystemType is the detected filesystem, empty for bare devices.
	FilesystemType string `json:"filesystem_type,omitempty"`

	// Mountpoint is where the device (or its first mounted partition) is
	// mounted, empty when unmounted.
	Mountpoint string `json:"mountpoint,omitempty"`

	// SuggestedMountpoint is where the appliance would mount this device
	// if it were adopted for its designated role (e.g. the USB backup
	// volume), empty when the device maps to no role.
	SuggestedMountpoint string `json:"suggested_mountpoint,omitempty"`

	// Usage is present only for mounted devices.
	Usage *UsageStats `json:"usage,omitempty"`
}
