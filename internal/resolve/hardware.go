package resolve

import (
	"context"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/models"
)

// HardwareResolver answers "which storage hardware is physically present
// and which device did the system boot from?". Every probe failure is
// absorbed; the worst case is a profile full of false/unknown fields.
type HardwareResolver struct {
	fs          *probe.FS
	mounts      *probe.Mounts
	cmdline     *probe.Cmdline
	modules     *probe.Modules
	pci         *probe.PCI
	docker      *probe.Docker
	accelDev    string
	accelDriver string
	accelVendor string
	backupMount string
	serviceName string
	log         zerolog.Logger
}

// HardwareDeps collects the probes a HardwareResolver runs.
type HardwareDeps struct {
	FS      *probe.FS
	Mounts  *probe.Mounts
	Cmdline *probe.Cmdline
	Modules *probe.Modules
	PCI     *probe.PCI
	Docker  *probe.Docker

	// AcceleratorDevice is the device node that marks the accelerator
	// (e.g. /dev/hailo0), AcceleratorDriver the kernel module name and
	// AcceleratorVendor the PCI vendor identifier to match.
	AcceleratorDevice string
	AcceleratorDriver string
	AcceleratorVendor string

	// BackupMount is the designated backup-volume mount point.
	BackupMount string

	// ServiceName is the monitored NVR service's container name.
	ServiceName string
}

// NewHardwareResolver builds the resolver.
func NewHardwareResolver(deps HardwareDeps, log zerolog.Logger) *HardwareResolver {
	return &HardwareResolver{
		fs:          deps.FS,
		mounts:      deps.Mounts,
		cmdline:     deps.Cmdline,
		modules:     deps.Modules,
		pci:         deps.PCI,
		docker:      deps.Docker,
		accelDev:    deps.AcceleratorDevice,
		accelDriver: deps.AcceleratorDriver,
		accelVendor: deps.AcceleratorVendor,
		backupMount: deps.BackupMount,
		serviceName: deps.ServiceName,
		log:         log,
	}
}

// Resolve recomputes the full hardware profile. The profile is built
// wholesale; callers never see a partially updated record.
func (r *HardwareResolver) Resolve(ctx context.Context) models.HardwareProfile {
	p := models.HardwareProfile{BootDevice: models.BootUnknown}

	p.HasNVMe = r.fs.NVMePresent()
	p.HasSDCard = r.fs.SDCardPresent()
	_, p.HasAccelerator = r.fs.AcceleratorPath(r.accelDev)

	if mounted, err := r.mounts.IsMounted(r.backupMount); err == nil {
		p.HasUSBBackupVolume = mounted
	} else {
		r.log.Debug().Err(err).Str("mount", r.backupMount).Msg("backup mount probe failed")
	}

	if r.docker != nil {
		p.HasContainerRuntime = r.docker.Available(ctx)
		if p.HasContainerRuntime {
			running, err := r.docker.ServiceRunning(ctx, r.serviceName)
			if err != nil {
				r.log.Debug().Err(err).Str("service", r.serviceName).Msg("service probe failed")
			}
			p.HasMonitoredService = running
		}
	}

	p.BootDevice = r.bootDevice(&p)
	return p
}

// bootDevice classifies the device backing the root filesystem. The
// mount table is the primary strategy; the kernel command line is the
// fallback, with device-existence facts disambiguating indirect
// (PARTUUID/UUID) root references. When neither strategy classifies, the
// answer is unknown rather than a guess.
//
// A mount-table root source is itself evidence of the device's
// presence, so a classification from it also raises the matching
// presence flag: the profile never reports a boot device the flags
// deny.
func (r *HardwareResolver) bootDevice(p *models.HardwareProfile) models.BootDevice {
	if src, err := r.mounts.RootSource(); err == nil {
		switch classifyBlockDevice(src) {
		case models.BootNVMe:
			p.HasNVMe = true
			return models.BootNVMe
		case models.BootSD:
			p.HasSDCard = true
			return models.BootSD
		}
	} else {
		r.log.Debug().Err(err).Msg("root mount source unavailable")
	}

	root, err := r.cmdline.RootParam()
	if err != nil {
		r.log.Debug().Err(err).Msg("boot cmdline unavailable")
		return models.BootUnknown
	}

	switch classifyBlockDevice(root) {
	case models.BootNVMe:
		p.HasNVMe = true
		return models.BootNVMe
	case models.BootSD:
		p.HasSDCard = true
		return models.BootSD
	}

	// Indirect reference: only the presence of exactly one candidate
	// device disambiguates.
	if strings.HasPrefix(root, "PARTUUID=") || strings.HasPrefix(root, "UUID=") {
		switch {
		case p.HasNVMe && !p.HasSDCard:
			return models.BootNVMe
		case p.HasSDCard && !p.HasNVMe:
			return models.BootSD
		}
	}
	return models.BootUnknown
}

// Accelerator resolves the accelerator's device node, driver and PCI bus
// address. Absence of the device node means no bus address is reported
// even when a stale module is loaded.
func (r *HardwareResolver) Accelerator(ctx context.Context) models.AcceleratorStatus {
	status := models.AcceleratorStatus{}

	devPath, present := r.fs.AcceleratorPath(r.accelDev)
	if !present {
		return status
	}
	status.DevicePath = devPath

	if version, err := r.modules.Lookup(r.accelDriver); err == nil {
		status.Driver = r.accelDriver
		status.DriverVersion = version
	} else {
		r.log.Debug().Err(err).Msg("accelerator driver not loaded")
	}

	if addr, err := r.pci.FindByVendor(r.accelVendor); err == nil {
		status.PCIAddress = addr
	}

	status.Active = status.DevicePath != "" && status.Driver != ""
	return status
}

// classifyBlockDevice maps a root device reference to a boot device by
// its kernel name prefix.
func classifyBlockDevice(dev string) models.BootDevice {
	name := path.Base(dev)
	switch {
	case strings.HasPrefix(name, "nvme"):
		return models.BootNVMe
	case strings.HasPrefix(name, "mmcblk"):
		return models.BootSD
	}
	return models.BootUnknown
}
