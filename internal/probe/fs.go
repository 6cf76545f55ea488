package probe

import (
	"fmt"
	"os"
	"path/filepath"
)

// FS answers device-node existence questions. The appliance bind-mounts
// the host's /dev and /proc under a prefix (typically /host) into the
// dashboard container, so every path is checked both directly and under
// each configured root.
type FS struct {
	// Roots are prefixes prepended to probed paths. The empty string
	// checks the container's own namespace.
	Roots []string
}

// NewFS returns an FS probing the container namespace first and the
// given host root second. An empty hostRoot probes only the container.
func NewFS(hostRoot string) *FS {
	roots := []string{""}
	if hostRoot != "" {
		roots = append(roots, hostRoot)
	}
	return &FS{Roots: roots}
}

// Exists reports whether path exists under any configured root.
func (f *FS) Exists(path string) bool {
	for _, root := range f.Roots {
		if _, err := os.Stat(filepath.Join(root, path)); err == nil {
			return true
		}
	}
	return false
}

// NVMePresent reports whether any NVMe controller node exists.
func (f *FS) NVMePresent() bool {
	for i := 0; i < 5; i++ {
		if f.Exists(fmt.Sprintf("/dev/nvme%d", i)) {
			return true
		}
	}
	return false
}

// SDCardPresent reports whether an mmcblk device or its first partition
// exists. Both are checked because some kernels expose only partitions
// once the card is claimed as the root device.
func (f *FS) SDCardPresent() bool {
	return f.Exists("/dev/mmcblk0") || f.Exists("/dev/mmcblk0p1")
}

// AcceleratorPath returns the accelerator device node path when present.
func (f *FS) AcceleratorPath(device string) (string, bool) {
	if f.Exists(device) {
		return device, true
	}
	return "", false
}
