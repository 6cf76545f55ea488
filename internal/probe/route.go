package probe

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strings"
)

// RouteTable parses the kernel routing table text form (/proc/net/route).
// It is the last-resort gateway strategy for environments where the
// namespace-scoped route query is unavailable.
type RouteTable struct {
	Path string
}

// DefaultGateway returns the gateway of the default route. Gateway
// fields in /proc/net/route are hex-encoded 32-bit values in host
// (little-endian) byte order, so the decoded bytes are reversed to
// produce dotted-decimal form.
func (r *RouteTable) DefaultGateway() (string, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.Path, ErrUnavailable)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 || fields[1] != "00000000" {
			continue
		}
		ip, err := HexToIPv4(fields[2])
		if err != nil {
			return "", err
		}
		if ip == "0.0.0.0" {
			continue
		}
		return ip, nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("%s: %v: %w", r.Path, err, ErrMalformed)
	}
	return "", fmt.Errorf("no default route in %s: %w", r.Path, ErrUnavailable)
}

// HexToIPv4 converts a little-endian hex-encoded address from the kernel
// route table into dotted-decimal form: "0100A8C0" -> "192.168.0.1".
func HexToIPv4(s string) (string, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 4 {
		return "", fmt.Errorf("hex address %q: %w", s, ErrMalformed)
	}
	return net.IPv4(b[3], b[2], b[1], b[0]).String(), nil
}

// FIBTrie scans the kernel forwarding information base text dump
// (/proc/net/fib_trie) for locally assigned host addresses.
type FIBTrie struct {
	Path string
}

// HostAddresses returns every /32 host entry in the trie, in file order
// and deduplicated. The caller applies the address-range exclusion rule;
// the raw list includes loopback and bridge artifacts.
func (t *FIBTrie) HostAddresses() ([]string, error) {
	f, err := os.Open(t.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Path, ErrUnavailable)
	}
	defer f.Close()

	var (
		addrs []string
		seen  = map[string]bool{}
		last  string
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "|--"):
			last = strings.TrimSpace(strings.TrimPrefix(line, "|--"))
		case strings.HasPrefix(line, "/32 host"):
			if last != "" && !seen[last] && net.ParseIP(last) != nil {
				seen[last] = true
				addrs = append(addrs, last)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", t.Path, err, ErrMalformed)
	}
	return addrs, nil
}
