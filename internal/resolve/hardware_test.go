package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/models"
)

// hwFixture builds a fake host root with the given device nodes plus
// /proc file contents.
type hwFixture struct {
	root    string
	mounts  string
	cmdline string
	modules string
}

func (f hwFixture) resolver(t *testing.T) *HardwareResolver {
	t.Helper()
	return NewHardwareResolver(HardwareDeps{
		FS:                &probe.FS{Roots: []string{f.root}},
		Mounts:            &probe.Mounts{Path: f.mounts},
		Cmdline:           &probe.Cmdline{Path: f.cmdline},
		Modules:           &probe.Modules{Path: f.modules},
		PCI:               &probe.PCI{Root: filepath.Join(f.root, "sys", "bus", "pci", "devices")},
		AcceleratorDevice: "/dev/hailo0",
		AcceleratorDriver: "hailo_pci",
		AcceleratorVendor: "0x1e60",
		BackupMount:       "/mnt/backup-ssd",
		ServiceName:       "scrypted",
	}, zerolog.Nop())
}

func newHWFixture(t *testing.T, devices []string, mounts, cmdline string) hwFixture {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dev"), 0o755))
	for _, d := range devices {
		require.NoError(t, os.WriteFile(filepath.Join(root, d), nil, 0o644))
	}
	return hwFixture{
		root:    root,
		mounts:  writeTempFile(t, "mounts", mounts),
		cmdline: writeTempFile(t, "cmdline", cmdline),
		modules: writeTempFile(t, "modules", ""),
	}
}

func TestHardwareResolve_NVMeBoot(t *testing.T) {
	f := newHWFixture(t,
		[]string{"dev/nvme0"},
		"/dev/nvme0n1p2 / ext4 rw 0 0\n/dev/sda1 /mnt/backup-ssd ext4 rw 0 0\n",
		"root=/dev/nvme0n1p2",
	)

	p := f.resolver(t).Resolve(context.Background())
	assert.True(t, p.HasNVMe)
	assert.False(t, p.HasSDCard)
	assert.True(t, p.HasUSBBackupVolume)
	assert.False(t, p.HasContainerRuntime)
	assert.Equal(t, models.BootNVMe, p.BootDevice)
}

func TestHardwareResolve_SDBootFromCmdline(t *testing.T) {
	// Root mount shows an overlay, as it does inside a container, so
	// classification falls through to the kernel command line.
	f := newHWFixture(t,
		[]string{"dev/mmcblk0"},
		"overlay / overlay rw 0 0\n",
		"console=tty1 root=/dev/mmcblk0p2 rootwait",
	)

	p := f.resolver(t).Resolve(context.Background())
	assert.True(t, p.HasSDCard)
	assert.Equal(t, models.BootSD, p.BootDevice)
}

func TestHardwareResolve_PartUUIDDisambiguation(t *testing.T) {
	tests := []struct {
		name    string
		devices []string
		want    models.BootDevice
	}{
		{
			name:    "only nvme present",
			devices: []string{"dev/nvme0"},
			want:    models.BootNVMe,
		},
		{
			name:    "only sd present",
			devices: []string{"dev/mmcblk0"},
			want:    models.BootSD,
		},
		{
			name:    "both present - ambiguous, never guessed",
			devices: []string{"dev/nvme0", "dev/mmcblk0"},
			want:    models.BootUnknown,
		},
		{
			name:    "neither present",
			devices: nil,
			want:    models.BootUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHWFixture(t, tt.devices,
				"overlay / overlay rw 0 0\n",
				"root=PARTUUID=5c4657ad-02 rootwait",
			)
			p := f.resolver(t).Resolve(context.Background())
			assert.Equal(t, tt.want, p.BootDevice)
		})
	}
}

func TestHardwareResolve_BootDeviceImpliesPresence(t *testing.T) {
	// The host's /proc may be visible while its /dev is not, so the
	// device-node probe can miss a controller the mount table proves
	// exists. The profile must stay internally consistent: a classified
	// boot device always implies the matching presence flag.
	tests := []struct {
		name     string
		mounts   string
		cmdline  string
		wantBoot models.BootDevice
		wantNVMe bool
		wantSD   bool
	}{
		{
			name:     "nvme root mount without device node",
			mounts:   "/dev/nvme0n1p2 / ext4 rw 0 0\n",
			cmdline:  "console=tty1",
			wantBoot: models.BootNVMe,
			wantNVMe: true,
		},
		{
			name:     "sd root mount without device node",
			mounts:   "/dev/mmcblk0p2 / ext4 rw 0 0\n",
			cmdline:  "console=tty1",
			wantBoot: models.BootSD,
			wantSD:   true,
		},
		{
			name:     "nvme root from cmdline without device node",
			mounts:   "overlay / overlay rw 0 0\n",
			cmdline:  "root=/dev/nvme0n1p2 rootwait",
			wantBoot: models.BootNVMe,
			wantNVMe: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHWFixture(t, nil, tt.mounts, tt.cmdline)
			p := f.resolver(t).Resolve(context.Background())
			assert.Equal(t, tt.wantBoot, p.BootDevice)
			assert.Equal(t, tt.wantNVMe, p.HasNVMe)
			assert.Equal(t, tt.wantSD, p.HasSDCard)
		})
	}
}

func TestHardwareResolve_AllProbesFail(t *testing.T) {
	f := hwFixture{
		root:    t.TempDir(),
		mounts:  missingPath(t),
		cmdline: missingPath(t),
		modules: missingPath(t),
	}

	// Nothing resolvable still yields a usable profile, not a fault.
	p := f.resolver(t).Resolve(context.Background())
	assert.Equal(t, models.HardwareProfile{BootDevice: models.BootUnknown}, p)
}

func TestAccelerator_DeviceAndDriverPresent(t *testing.T) {
	f := newHWFixture(t, []string{"dev/hailo0"}, "", "")
	f.modules = writeTempFile(t, "modules", "hailo_pci 131072 0 - Live 0x0\n")

	pciDir := filepath.Join(f.root, "sys", "bus", "pci", "devices", "0000:01:00.0")
	require.NoError(t, os.MkdirAll(pciDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pciDir, "vendor"), []byte("0x1e60\n"), 0o644))

	status := f.resolver(t).Accelerator(context.Background())
	assert.Equal(t, "/dev/hailo0", status.DevicePath)
	assert.Equal(t, "hailo_pci", status.Driver)
	assert.Equal(t, "131072", status.DriverVersion)
	assert.Equal(t, "0000:01:00.0", status.PCIAddress)
	assert.True(t, status.Active)
}

func TestAccelerator_DeviceAbsent(t *testing.T) {
	f := newHWFixture(t, nil, "", "")
	// A stale loaded module without the device node reports nothing.
	f.modules = writeTempFile(t, "modules", "hailo_pci 131072 0 - Live 0x0\n")

	status := f.resolver(t).Accelerator(context.Background())
	assert.Equal(t, models.AcceleratorStatus{}, status)
}

func TestAccelerator_DriverNotLoaded(t *testing.T) {
	f := newHWFixture(t, []string{"dev/hailo0"}, "", "")

	status := f.resolver(t).Accelerator(context.Background())
	assert.Equal(t, "/dev/hailo0", status.DevicePath)
	assert.Empty(t, status.Driver)
	assert.False(t, status.Active)
}
