package stats

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	gopsnet "github.com/shirou/gopsutil/v3/net"
)

const cpuSampleInterval = 500 * time.Millisecond

func collectCPU(ctx context.Context, thermalZone string) CPUStats {
	var s CPUStats

	if overall, err := cpu.PercentWithContext(ctx, cpuSampleInterval, false); err == nil && len(overall) > 0 {
		s.UsagePercent = round1(overall[0])
	}
	if perCore, err := cpu.PercentWithContext(ctx, 0, true); err == nil {
		s.PerCore = make([]float64, len(perCore))
		for i, v := range perCore {
			s.PerCore[i] = round1(v)
		}
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		s.Load1, s.Load5, s.Load15 = avg.Load1, avg.Load5, avg.Load15
	}
	s.TemperatureC = readThermalZone(thermalZone)
	return s
}

// readThermalZone reads a sysfs thermal zone file reporting
// millidegrees Celsius. Returns 0 when unreadable.
func readThermalZone(path string) float64 {
	if path == "" {
		return 0
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0
	}
	return round1(milli / 1000)
}

func collectMemory(ctx context.Context) MemoryStats {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryStats{}
	}
	return MemoryStats{
		TotalBytes:     vm.Total,
		UsedBytes:      vm.Used,
		AvailableBytes: vm.Available,
		Percent:        round1(vm.UsedPercent),
	}
}

// diskTarget names one filesystem the dashboard tracks.
type diskTarget struct {
	mountpoint string
	role       string
}

func collectDisks(ctx context.Context, targets []diskTarget) []DiskStats {
	var out []DiskStats
	for _, t := range targets {
		usage, err := disk.UsageWithContext(ctx, t.mountpoint)
		if err != nil {
			continue
		}
		out = append(out, DiskStats{
			Mountpoint: t.mountpoint,
			Role:       t.role,
			TotalBytes: usage.Total,
			UsedBytes:  usage.Used,
			FreeBytes:  usage.Free,
			Percent:    round1(usage.UsedPercent),
		})
	}
	return out
}

// collectNetwork reads cumulative counters for the prioritized
// interfaces. Sysfs is tried first because it reflects the host
// namespace when /sys is bind-mounted; gopsutil covers the rest.
func collectNetwork(ctx context.Context, sysClassNet string, interfaces []string) []NetworkStats {
	var out []NetworkStats
	seen := map[string]bool{}

	for _, iface := range interfaces {
		if s, ok := readSysfsCounters(sysClassNet, iface); ok {
			out = append(out, s)
			seen[iface] = true
		}
	}
	if len(out) == len(interfaces) {
		return out
	}

	counters, err := gopsnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return out
	}
	for _, iface := range interfaces {
		if seen[iface] {
			continue
		}
		for _, c := range counters {
			if c.Name == iface {
				out = append(out, NetworkStats{
					Interface: iface,
					RxBytes:   c.BytesRecv,
					TxBytes:   c.BytesSent,
					RxPackets: c.PacketsRecv,
					TxPackets: c.PacketsSent,
				})
				break
			}
		}
	}
	return out
}

func readSysfsCounters(root, iface string) (NetworkStats, bool) {
	statDir := filepath.Join(root, iface, "statistics")
	rx, ok := readCounter(filepath.Join(statDir, "rx_bytes"))
	if !ok {
		return NetworkStats{}, false
	}
	tx, _ := readCounter(filepath.Join(statDir, "tx_bytes"))
	rxp, _ := readCounter(filepath.Join(statDir, "rx_packets"))
	txp, _ := readCounter(filepath.Join(statDir, "tx_packets"))
	return NetworkStats{
		Interface: iface,
		RxBytes:   rx,
		TxBytes:   tx,
		RxPackets: rxp,
		TxPackets: txp,
	}, true
}

func readCounter(path string) (uint64, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func hostUptime(ctx context.Context) uint64 {
	up, err := host.UptimeWithContext(ctx)
	if err != nil {
		return 0
	}
	return up
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
