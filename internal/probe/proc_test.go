package probe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountsRootSource(t *testing.T) {
	mounts := "/dev/nvme0n1p2 / ext4 rw,noatime 0 0\n" +
		"/dev/nvme0n1p1 /boot/firmware vfat rw 0 0\n" +
		"tmpfs /tmp tmpfs rw 0 0\n"

	m := &Mounts{Path: writeFile(t, "mounts", mounts)}
	src, err := m.RootSource()
	require.NoError(t, err)
	assert.Equal(t, "/dev/nvme0n1p2", src)
}

func TestMountsIsMounted(t *testing.T) {
	mounts := "/dev/sda1 /mnt/backup-ssd ext4 rw 0 0\n"
	m := &Mounts{Path: writeFile(t, "mounts", mounts)}

	mounted, err := m.IsMounted("/mnt/backup-ssd")
	require.NoError(t, err)
	assert.True(t, mounted)

	mounted, err = m.IsMounted("/mnt/other")
	require.NoError(t, err)
	assert.False(t, mounted)
}

func TestCmdlineRootParam(t *testing.T) {
	tests := []struct {
		name    string
		cmdline string
		want    string
		wantErr bool
	}{
		{
			name:    "direct device",
			cmdline: "console=serial0,115200 root=/dev/mmcblk0p2 rootfstype=ext4 rootwait",
			want:    "/dev/mmcblk0p2",
		},
		{
			name:    "partuuid reference",
			cmdline: "coherent_pool=1M root=PARTUUID=5c4657ad-02 fsck.repair=yes",
			want:    "PARTUUID=5c4657ad-02",
		},
		{
			name:    "no root param",
			cmdline: "console=tty1 quiet splash",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cmdline{Path: writeFile(t, "cmdline", tt.cmdline)}
			got, err := c.RootParam()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformed))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModulesLookup(t *testing.T) {
	modules := "hailo_pci 131072 0 - Live 0x0000000000000000\n" +
		"videodev 311296 2 bcm2835_codec - Live 0x0000000000000000\n"

	m := &Modules{Path: writeFile(t, "modules", modules)}

	version, err := m.Lookup("hailo_pci")
	require.NoError(t, err)
	assert.Equal(t, "131072", version)

	_, err = m.Lookup("nouveau")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestPCIFindByVendor(t *testing.T) {
	root := t.TempDir()
	devDir := filepath.Join(root, "0000:01:00.0")
	require.NoError(t, os.MkdirAll(devDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "vendor"), []byte("0x1e60\n"), 0o644))

	p := &PCI{Root: root}
	addr, err := p.FindByVendor("0x1e60")
	require.NoError(t, err)
	assert.Equal(t, "0000:01:00.0", addr)

	_, err = p.FindByVendor("0x10de")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestCgroupContainerID(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "cgroup v1 plain path",
			content: "12:cpuset:/docker/4d0a19f17b2adab37f04f0674ff1a07fead0aa12708b6e4a16e8418c4e017280\n",
			want:    "4d0a19f17b2adab37f04f0674ff1a07fead0aa12708b6e4a16e8418c4e017280",
		},
		{
			name:    "cgroup v2 systemd scope",
			content: "0::/system.slice/docker-4d0a19f17b2adab37f04f0674ff1a07fead0aa12708b6e4a16e8418c4e017280.scope\n",
			want:    "4d0a19f17b2adab37f04f0674ff1a07fead0aa12708b6e4a16e8418c4e017280",
		},
		{
			name:    "no container segment",
			content: "0::/user.slice/user-1000.slice/session-3.scope\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cgroup{Path: writeFile(t, "cgroup", tt.content)}
			got, err := c.ContainerID()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnavailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
