package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// HostNet queries the physical host's network stack by entering the init
// process's network namespace (nsenter -t 1 -n). The dashboard container
// runs behind a private bridge, so its own stack says nothing about the
// host's LAN identity; nsenter is the most reliable strategy when the
// container is privileged enough to use it.
type HostNet struct {
	Run     CommandRunner
	Timeout time.Duration
}

// NewHostNet returns a HostNet with the production command runner.
func NewHostNet(timeout time.Duration) *HostNet {
	return &HostNet{Run: RunCommand, Timeout: timeout}
}

// DefaultRoute returns the gateway address and egress interface of the
// host's default route.
func (h *HostNet) DefaultRoute(ctx context.Context) (gateway, iface string, err error) {
	out, err := h.Run(ctx, h.Timeout, "nsenter", "-t", "1", "-n", "ip", "route", "show", "default")
	if err != nil {
		return "", "", err
	}

	// "default via 192.168.1.1 dev eth0 proto dhcp src 192.168.1.31 metric 100"
	fields := strings.Fields(out)
	for i := 0; i < len(fields)-1; i++ {
		switch fields[i] {
		case "via":
			gateway = fields[i+1]
		case "dev":
			iface = fields[i+1]
		}
	}
	if gateway == "" || net.ParseIP(gateway) == nil {
		return "", "", fmt.Errorf("no gateway in route output %q: %w", out, ErrMalformed)
	}
	return gateway, iface, nil
}

// InterfaceAddr returns the first global-scope IPv4 address on the given
// host interface, its prefix length converted to a dotted subnet mask,
// and whether the address carries the "dynamic" keyword that marks a
// DHCP lease.
func (h *HostNet) InterfaceAddr(ctx context.Context, iface string) (ip, mask string, dhcp bool, err error) {
	out, err := h.Run(ctx, h.Timeout, "nsenter", "-t", "1", "-n", "ip", "-4", "addr", "show", "dev", iface)
	if err != nil {
		return "", "", false, err
	}

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 || fields[0] != "inet" {
			continue
		}
		if !containsField(fields, "global") {
			continue
		}
		addr, prefix, ok := splitCIDR(fields[1])
		if !ok {
			return "", "", false, fmt.Errorf("address %q: %w", fields[1], ErrMalformed)
		}
		return addr, PrefixToMask(prefix), containsField(fields, "dynamic"), nil
	}
	return "", "", false, fmt.Errorf("no global IPv4 address on %s: %w", iface, ErrUnavailable)
}

func containsField(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}

func splitCIDR(s string) (addr string, prefix int, ok bool) {
	addr, prefixStr, found := strings.Cut(s, "/")
	if !found || net.ParseIP(addr) == nil {
		return "", 0, false
	}
	prefix, err := strconv.Atoi(prefixStr)
	if err != nil || prefix < 0 || prefix > 32 {
		return "", 0, false
	}
	return addr, prefix, true
}

// PrefixToMask converts an IPv4 prefix length to dotted-decimal form.
func PrefixToMask(prefix int) string {
	m := net.CIDRMask(prefix, 32)
	return net.IPv4(m[0], m[1], m[2], m[3]).String()
}
