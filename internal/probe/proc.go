package probe

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mounts parses the kernel mount table.
type Mounts struct {
	// Path is the mount table location, normally /proc/mounts or the
	// host-bind-mounted equivalent.
	Path string
}

// RootSource returns the block device backing the root filesystem.
func (m *Mounts) RootSource() (string, error) {
	f, err := os.Open(m.Path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", m.Path, ErrUnavailable)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && fields[1] == "/" {
			return fields[0], nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("%s: %v: %w", m.Path, err, ErrMalformed)
	}
	return "", fmt.Errorf("no root mount in %s: %w", m.Path, ErrMalformed)
}

// IsMounted reports whether target is an active mount point.
func (m *Mounts) IsMounted(target string) (bool, error) {
	f, err := os.Open(m.Path)
	if err != nil {
		return false, fmt.Errorf("%s: %w", m.Path, ErrUnavailable)
	}
	defer f.Close()

	target = filepath.Clean(target)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && filepath.Clean(fields[1]) == target {
			return true, nil
		}
	}
	return false, sc.Err()
}

// Cmdline parses the kernel boot parameter line.
type Cmdline struct {
	Path string
}

// RootParam returns the value of the root= boot parameter.
func (c *Cmdline) RootParam() (string, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Path, ErrUnavailable)
	}
	for _, param := range strings.Fields(string(data)) {
		if v, ok := strings.CutPrefix(param, "root="); ok {
			return v, nil
		}
	}
	return "", fmt.Errorf("no root= in %s: %w", c.Path, ErrMalformed)
}

// Modules scans the loaded-kernel-module list.
type Modules struct {
	Path string
}

// Lookup returns the version token reported for the named module. The
// second column of /proc/modules is returned verbatim; absence of the
// module is ErrUnavailable.
func (m *Modules) Lookup(name string) (string, error) {
	f, err := os.Open(m.Path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", m.Path, ErrUnavailable)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 && fields[0] == name {
			if len(fields) > 1 {
				return fields[1], nil
			}
			return "", nil
		}
	}
	return "", fmt.Errorf("module %s not loaded: %w", name, ErrUnavailable)
}

// PCI scans enumerated PCI bus devices.
type PCI struct {
	// Root is the bus device directory, normally /sys/bus/pci/devices.
	Root string
}

// FindByVendor returns the bus address of the first device whose vendor
// attribute matches the given identifier (e.g. "0x1e60").
func (p *PCI) FindByVendor(vendor string) (string, error) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Root, ErrUnavailable)
	}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(p.Root, e.Name(), "vendor"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(data)) == vendor {
			return e.Name(), nil
		}
	}
	return "", fmt.Errorf("no PCI device with vendor %s: %w", vendor, ErrUnavailable)
}

// Cgroup extracts the container ID from the process's own cgroup paths.
type Cgroup struct {
	Path string
}

// ContainerID returns the first 12-64 character hexadecimal path segment
// found in the cgroup file. Runtimes place the container ID as a path
// component (plain, under docker-....scope, or similar).
func (c *Cgroup) ContainerID() (string, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Path, ErrUnavailable)
	}
	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			continue
		}
		for _, seg := range strings.Split(parts[2], "/") {
			seg = strings.TrimSuffix(seg, ".scope")
			if i := strings.LastIndexByte(seg, '-'); i >= 0 {
				seg = seg[i+1:]
			}
			if isHexID(seg) {
				return seg, nil
			}
		}
	}
	return "", fmt.Errorf("no container ID in %s: %w", c.Path, ErrUnavailable)
}

func isHexID(s string) bool {
	if len(s) < 12 || len(s) > 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
