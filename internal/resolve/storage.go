package resolve

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/models"
)

// StorageResolver enumerates block devices. Enumeration is uncached by
// design so freshly inserted or removed USB media shows up immediately.
type StorageResolver struct {
	blockdev    *probe.BlockDevices
	backupMount string
	usage       func(path string) (*models.UsageStats, error)
}

// NewStorageResolver builds the resolver.
func NewStorageResolver(blockdev *probe.BlockDevices, backupMount string) *StorageResolver {
	return &StorageResolver{
		blockdev:    blockdev,
		backupMount: backupMount,
		usage:       DiskUsage,
	}
}

// Resolve lists all disks with their mount state and usage. At most one
// device maps to the appliance's backup-volume role: the first unmounted
// USB-attached disk gets the backup mount point as its suggested
// mountpoint.
func (r *StorageResolver) Resolve(ctx context.Context) ([]models.StorageDevice, error) {
	raw, err := r.blockdev.List(ctx)
	if err != nil {
		return nil, err
	}

	devices := make([]models.StorageDevice, 0, len(raw))
	backupAssigned := false
	for _, d := range raw {
		dev := models.StorageDevice{
			Name:      d.Name,
			Path:      d.Path,
			Model:     d.Model,
			SizeBytes: d.SizeBytes(),
			Transport: transportOf(d.Tran),
		}

		// Filesystem facts come from the disk itself or, more commonly,
		// its first mounted partition.
		dev.FilesystemType = d.Fstype
		dev.Mountpoint = d.Mountpoint
		for _, child := range d.Children {
			if dev.Mountpoint == "" && child.Mountpoint != "" {
				dev.Mountpoint = child.Mountpoint
				dev.FilesystemType = child.Fstype
			}
		}

		if dev.Mountpoint != "" {
			if usage, err := r.usage(dev.Mountpoint); err == nil {
				dev.Usage = usage
			}
		} else if dev.Transport == models.TransportUSB && !backupAssigned {
			dev.SuggestedMountpoint = r.backupMount
			backupAssigned = true
		}

		devices = append(devices, dev)
	}
	return devices, nil
}

// DiskUsage reports filesystem usage for a mount point.
func DiskUsage(path string) (*models.UsageStats, error) {
	u, err := disk.Usage(path)
	if err != nil {
		return nil, err
	}
	return &models.UsageStats{
		TotalBytes: u.Total,
		UsedBytes:  u.Used,
		FreeBytes:  u.Free,
		Percent:    u.UsedPercent,
	}, nil
}

func transportOf(tran string) models.Transport {
	switch tran {
	case "usb":
		return models.TransportUSB
	case "sata":
		return models.TransportSATA
	case "mmc":
		return models.TransportMMC
	case "nvme":
		return models.TransportNVMe
	}
	return models.TransportUnknown
}
