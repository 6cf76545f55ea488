package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvrdash/nvrdash/internal/probe"
	"github.com/nvrdash/nvrdash/models"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fakeHostNet routes the namespace probe's two commands to canned
// outputs keyed on the subcommand.
func fakeHostNet(routeOut string, routeErr error, addrOut string, addrErr error) *probe.HostNet {
	return &probe.HostNet{
		Timeout: time.Second,
		Run: func(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
			for _, a := range args {
				if a == "route" {
					return routeOut, routeErr
				}
			}
			return addrOut, addrErr
		},
	}
}

func missingPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing")
}

func newTestResolver(t *testing.T) *NetworkResolver {
	t.Helper()
	return &NetworkResolver{
		hostNet:    fakeHostNet("", probe.ErrUnavailable, "", probe.ErrUnavailable),
		routeTable: &probe.RouteTable{Path: missingPath(t)},
		fibTrie:    &probe.FIBTrie{Path: missingPath(t)},
		outbound:   func() (string, error) { return "", probe.ErrUnavailable },
		ifaceAddr:  func(string) (string, string, error) { return "", "", probe.ErrUnavailable },
		log:        zerolog.Nop(),
	}
}

func TestNetworkResolve_HostRouteWins(t *testing.T) {
	r := newTestResolver(t)
	r.hostNet = fakeHostNet(
		"default via 192.168.1.1 dev eth0 proto dhcp src 192.168.1.31 metric 100", nil,
		"    inet 192.168.1.31/24 brd 192.168.1.255 scope global dynamic eth0", nil,
	)
	// A later strategy also knows an address; it must not displace the
	// earlier winner.
	r.outbound = func() (string, error) { return "192.168.1.99", nil }

	id := r.Resolve(context.Background())
	assert.Equal(t, "192.168.1.31", id.HostIP)
	assert.Equal(t, "192.168.1.1", id.Gateway)
	assert.Equal(t, "255.255.255.0", id.SubnetMask)
	assert.Equal(t, models.AssignmentDHCP, id.AssignmentMode)
	assert.Equal(t, "host_default_route", id.SourceStrategy)
	assert.Equal(t, "192.168.1.99", id.ContainerIP)
}

func TestNetworkResolve_FieldLevelMerge(t *testing.T) {
	r := newTestResolver(t)
	// Namespace probe knows only the gateway; the FIB trie supplies the
	// address and the interface scan the mask.
	r.hostNet = fakeHostNet(
		"default via 192.168.1.1 dev eth0", nil,
		"", probe.ErrUnavailable,
	)
	trie := "  |-- 192.168.1.31\n     /32 host LOCAL\n"
	r.fibTrie = &probe.FIBTrie{Path: writeTempFile(t, "fib_trie", trie)}
	r.ifaceAddr = func(string) (string, string, error) { return "192.168.1.31", "255.255.255.0", nil }
	r.ifacePrio = []string{"eth0"}

	id := r.Resolve(context.Background())
	assert.Equal(t, "192.168.1.31", id.HostIP)
	assert.Equal(t, "192.168.1.1", id.Gateway)
	assert.Equal(t, "255.255.255.0", id.SubnetMask)
	assert.Equal(t, "fib_trie", id.SourceStrategy)
	// The strategy that won the IP carried no assignment marker, and a
	// marker is never adopted from a losing strategy.
	assert.Equal(t, models.AssignmentUnknown, id.AssignmentMode)
}

func TestNetworkResolve_OperatorOverride(t *testing.T) {
	r := newTestResolver(t)
	r.override = StaticNetwork{IP: "10.1.2.3", Gateway: "10.1.2.1", Subnet: "255.255.255.0"}
	// Probes succeed with different answers; explicit operator intent
	// still wins every field it sets.
	r.hostNet = fakeHostNet(
		"default via 192.168.1.1 dev eth0", nil,
		"    inet 192.168.1.31/24 scope global dynamic eth0", nil,
	)

	id := r.Resolve(context.Background())
	assert.Equal(t, "10.1.2.3", id.HostIP)
	assert.Equal(t, "10.1.2.1", id.Gateway)
	assert.Equal(t, "255.255.255.0", id.SubnetMask)
	assert.Equal(t, models.AssignmentStaticOverride, id.AssignmentMode)
	assert.Equal(t, "operator_override", id.SourceStrategy)
}

func TestNetworkResolve_AllStrategiesFail(t *testing.T) {
	r := newTestResolver(t)

	id := r.Resolve(context.Background())
	assert.Empty(t, id.HostIP)
	assert.Empty(t, id.Gateway)
	assert.Empty(t, id.SubnetMask)
	assert.Empty(t, id.SourceStrategy)
	assert.Equal(t, models.AssignmentUnknown, id.AssignmentMode)
}

func TestNetworkResolve_ExcludedAddressesSkipped(t *testing.T) {
	r := newTestResolver(t)
	trie := "  |-- 127.0.0.1\n     /32 host LOCAL\n  |-- 172.17.0.2\n     /32 host LOCAL\n"
	r.fibTrie = &probe.FIBTrie{Path: writeTempFile(t, "fib_trie", trie)}
	r.outbound = func() (string, error) { return "172.17.0.2", nil }

	id := r.Resolve(context.Background())
	// Loopback and bridge artifacts never become the host identity, but
	// the container's own address is reported as-is.
	assert.Empty(t, id.HostIP)
	assert.Equal(t, "172.17.0.2", id.ContainerIP)
}

func TestExcludedAddress(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1", true},
		{"172.17.0.2", true},
		{"172.16.0.1", true},
		{"172.31.255.254", true},
		{"172.32.0.1", false},
		{"192.168.1.31", false},
		{"10.0.0.5", false},
		{"not-an-ip", true},
		{"", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExcludedAddress(tt.addr), tt.addr)
	}
}
