package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRunner(out string, err error) CommandRunner {
	return func(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
		return out, err
	}
}

func TestHostNetDefaultRoute(t *testing.T) {
	h := &HostNet{
		Run: fakeRunner("default via 192.168.1.1 dev eth0 proto dhcp src 192.168.1.31 metric 100", nil),
	}

	gw, iface, err := h.DefaultRoute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.1", gw)
	assert.Equal(t, "eth0", iface)
}

func TestHostNetDefaultRoute_NoGateway(t *testing.T) {
	h := &HostNet{Run: fakeRunner("default dev eth0 scope link", nil)}

	_, _, err := h.DefaultRoute(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestHostNetDefaultRoute_CommandFails(t *testing.T) {
	h := &HostNet{Run: fakeRunner("", ErrUnavailable)}

	_, _, err := h.DefaultRoute(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestHostNetInterfaceAddr(t *testing.T) {
	out := `2: eth0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 qdisc mq state UP
    inet 192.168.1.31/24 brd 192.168.1.255 scope global dynamic noprefixroute eth0
       valid_lft 85525sec preferred_lft 85525sec`

	h := &HostNet{Run: fakeRunner(out, nil)}

	ip, mask, dhcp, err := h.InterfaceAddr(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.31", ip)
	assert.Equal(t, "255.255.255.0", mask)
	assert.True(t, dhcp)
}

func TestHostNetInterfaceAddr_StaticSkipsLinkScope(t *testing.T) {
	out := `2: eth0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500
    inet 169.254.12.7/16 brd 169.254.255.255 scope link eth0
    inet 10.0.0.5/8 brd 10.255.255.255 scope global eth0`

	h := &HostNet{Run: fakeRunner(out, nil)}

	ip, mask, dhcp, err := h.InterfaceAddr(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", ip)
	assert.Equal(t, "255.0.0.0", mask)
	assert.False(t, dhcp)
}

func TestHostNetInterfaceAddr_NoGlobalAddress(t *testing.T) {
	h := &HostNet{Run: fakeRunner("2: eth0: <BROADCAST> mtu 1500", nil)}

	_, _, _, err := h.InterfaceAddr(context.Background(), "eth0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestPrefixToMask(t *testing.T) {
	assert.Equal(t, "255.255.255.0", PrefixToMask(24))
	assert.Equal(t, "255.255.0.0", PrefixToMask(16))
	assert.Equal(t, "255.255.255.255", PrefixToMask(32))
	assert.Equal(t, "0.0.0.0", PrefixToMask(0))
}

func TestRunCommand_MissingBinary(t *testing.T) {
	_, err := RunCommand(context.Background(), time.Second, "definitely-not-a-real-binary-name")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}
