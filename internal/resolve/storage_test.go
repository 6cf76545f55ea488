package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/models"
)

const lsblkOutput = `{
  "blockdevices": [
    {
      "name": "nvme0n1", "path": "/dev/nvme0n1", "model": "Samsung SSD 980 ",
      "size": 500107862016, "tran": "nvme", "fstype": null, "mountpoint": null, "type": "disk",
      "children": [
        {"name": "nvme0n1p1", "path": "/dev/nvme0n1p1", "size": 268435456, "fstype": "vfat", "mountpoint": "/boot/firmware", "type": "part"},
        {"name": "nvme0n1p2", "path": "/dev/nvme0n1p2", "size": 499839426560, "fstype": "ext4", "mountpoint": "/", "type": "part"}
      ]
    },
    {
      "name": "sda", "path": "/dev/sda", "model": "Portable SSD T7",
      "size": "1000204886016", "tran": "usb", "fstype": null, "mountpoint": null, "type": "disk",
      "children": [
        {"name": "sda1", "path": "/dev/sda1", "size": 1000203091968, "fstype": "ext4", "mountpoint": null, "type": "part"}
      ]
    },
    {
      "name": "loop0", "path": "/dev/loop0", "size": 4096, "type": "loop"
    }
  ]
}`

func fakeBlockDevices(out string, err error) *probe.BlockDevices {
	return &probe.BlockDevices{
		Timeout: time.Second,
		Run: func(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
			return out, err
		},
	}
}

func TestStorageResolve(t *testing.T) {
	r := NewStorageResolver(fakeBlockDevices(lsblkOutput, nil), "/mnt/backup-ssd")
	r.usage = func(path string) (*models.UsageStats, error) {
		return &models.UsageStats{TotalBytes: 100, UsedBytes: 40, FreeBytes: 60, Percent: 40}, nil
	}

	devices, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2) // loop devices are not disks

	nvme := devices[0]
	assert.Equal(t, "nvme0n1", nvme.Name)
	assert.Equal(t, "Samsung SSD 980", nvme.Model)
	assert.Equal(t, uint64(500107862016), nvme.SizeBytes)
	assert.Equal(t, models.TransportNVMe, nvme.Transport)
	// The first mounted partition supplies the mount facts.
	assert.Equal(t, "/boot/firmware", nvme.Mountpoint)
	assert.Equal(t, "vfat", nvme.FilesystemType)
	require.NotNil(t, nvme.Usage)
	assert.Equal(t, uint64(100), nvme.Usage.TotalBytes)

	usb := devices[1]
	assert.Equal(t, "sda", usb.Name)
	assert.Equal(t, models.TransportUSB, usb.Transport)
	// String-typed size from older lsblk versions still parses.
	assert.Equal(t, uint64(1000204886016), usb.SizeBytes)
	assert.Empty(t, usb.Mountpoint)
	assert.Nil(t, usb.Usage)
	// The first unmounted USB disk maps to the backup-volume role.
	assert.Equal(t, "/mnt/backup-ssd", usb.SuggestedMountpoint)
}

func TestStorageResolve_ListFails(t *testing.T) {
	r := NewStorageResolver(fakeBlockDevices("", probe.ErrUnavailable), "/mnt/backup-ssd")

	_, err := r.Resolve(context.Background())
	assert.Error(t, err)
}
