package probe

import (
	"fmt"
	"net"
)

// OutboundIP discovers which local address the kernel would use for
// egress by opening a connectionless socket toward a well-known public
// address and reading back the chosen local endpoint. No packet is
// transmitted.
func OutboundIP() (string, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("outbound dial: %v: %w", err, ErrUnavailable)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return "", fmt.Errorf("outbound dial: %w", ErrMalformed)
	}
	return addr.IP.String(), nil
}

// InterfaceAddr returns the first IPv4 address and dotted subnet mask of
// the named local interface.
func InterfaceAddr(name string) (ip, mask string, err error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return "", "", fmt.Errorf("interface %s: %w", name, ErrUnavailable)
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return "", "", fmt.Errorf("interface %s: %v: %w", name, err, ErrUnavailable)
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		v4 := ipnet.IP.To4()
		if v4 == nil {
			continue
		}
		ones, _ := ipnet.Mask.Size()
		return v4.String(), PrefixToMask(ones), nil
	}
	return "", "", fmt.Errorf("no IPv4 address on %s: %w", name, ErrUnavailable)
}
