package models

// BootDevice identifies which block device the appliance booted from.
type BootDevice string

const (
	// BootNVMe means the root filesystem lives on an NVMe drive.
	BootNVMe BootDevice = "nvme"

	// BootSD means the root filesystem lives on the SD card.
	BootSD BootDevice = "sd"

	// BootUnknown means no strategy could classify the boot device.
	// It is never guessed from partial evidence.
	BootUnknown BootDevice = "unknown"
)

// HardwareProfile is a snapshot of the physical capabilities visible from
// the appliance. It is recomputed wholesale when the hardware cache
// expires and is never partially mutated.
//
// Invariant: BootDevice is derived by the resolver, never set directly,
// and is consistent with HasNVMe/HasSDCard whenever it is determinable.
type HardwareProfile struct {
	// HasNVMe is true when an NVMe device node is present.
	HasNVMe bool `json:"has_nvme"`

	// HasUSBBackupVolume is true when the backup mount point exists and
	// is an active mount.
	HasUSBBackupVolume bool `json:"has_usb_backup_volume"`

	// HasSDCard is true when an mmcblk device node is present.
	HasSDCard bool `json:"has_sd_card"`

	// HasAccelerator is true when the AI accelerator device node exists.
	HasAccelerator bool `json:"has_accelerator"`

	// HasContainerRuntime is true when the container runtime responds.
	HasContainerRuntime bool `json:"has_container_runtime"`

	// HasMonitoredService is true when the monitored NVR service
	// container is running.
	HasMonitoredService bool `json:"has_monitored_service"`

	// BootDevice classifies the device backing the root filesystem.
	BootDevice BootDevice `json:"boot_device"`
}

// AcceleratorStatus describes the AI accelerator as seen through its
// device node, kernel driver and PCI bus entry.
type AcceleratorStatus struct {
	// DevicePath is the accelerator device node, empty when absent.
	DevicePath string `json:"device_path,omitempty"`

	// Driver is the loaded kernel module name, empty when not loaded.
	Driver string `json:"driver,omitempty"`

	// DriverVersion is the version token reported by the module list.
	DriverVersion string `json:"driver_version,omitempty"`

	// PCIAddress is the bus address of the matching PCI device.
	PCIAddress string `json:"pci_address,omitempty"`

	// Active is true when both the device node and the driver are present.
	Active bool `json:"active"`
}
