package probe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestHexToIPv4(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		want    string
		wantErr bool
	}{
		{
			// The kernel writes route entries in host byte order, so the
			// textual hex is the address reversed byte by byte.
			name: "little-endian gateway",
			hex:  "0100A8C0",
			want: "192.168.0.1",
		},
		{
			name: "another subnet",
			hex:  "FE01A8C0",
			want: "192.168.1.254",
		},
		{
			name: "zero address",
			hex:  "00000000",
			want: "0.0.0.0",
		},
		{
			name:    "too short",
			hex:     "A8C0",
			wantErr: true,
		},
		{
			name:    "not hex",
			hex:     "ZZZZZZZZ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HexToIPv4(tt.hex)
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

func TestRouteTableDefaultGateway(t *testing.T) {
	table := "Iface\tDestination\tGateway\tFlags\tRefCnt\tUse\tMetric\tMask\n" +
		"eth0\t0000A8C0\t00000000\t0001\t0\t0\t0\t00FFFFFF\n" +
		"eth0\t00000000\t0100A8C0\t0003\t0\t0\t0\t00000000\n"

	r := &RouteTable{Path: writeFile(t, "route", table)}
	gw, err := r.DefaultGateway()
	require.NoError(t, err)
	assert.Equal(t, "192.168.0.1", gw)
}

func TestRouteTableDefaultGateway_SkipsZeroGateway(t *testing.T) {
	table := "Iface\tDestination\tGateway\tFlags\n" +
		"eth0\t00000000\t00000000\t0001\n"

	r := &RouteTable{Path: writeFile(t, "route", table)}
	_, err := r.DefaultGateway()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestRouteTableDefaultGateway_MissingFile(t *testing.T) {
	r := &RouteTable{Path: filepath.Join(t.TempDir(), "missing")}
	_, err := r.DefaultGateway()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestFIBTrieHostAddresses(t *testing.T) {
	trie := `Main:
  +-- 0.0.0.0/0 3 0 5
     |-- 0.0.0.0
        /0 universe UNICAST
     +-- 127.0.0.0/8 2 0 2
        |-- 127.0.0.1
           /32 host LOCAL
     +-- 192.168.0.0/24 2 0 2
        |-- 192.168.0.31
           /32 host LOCAL
        |-- 192.168.0.31
           /32 host LOCAL
        |-- 192.168.0.255
           /24 link UNICAST
`
	f := &FIBTrie{Path: writeFile(t, "fib_trie", trie)}
	addrs, err := f.HostAddresses()
	require.NoError(t, err)
	// Deduplicated, in file order; non-host entries are skipped but the
	// raw list still carries loopback.
	assert.Equal(t, []string{"127.0.0.1", "192.168.0.31"}, addrs)
}
