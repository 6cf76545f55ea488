package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BlockDevice is one entry of the block-device lister's JSON output.
type BlockDevice struct {
	Name       string        `json:"name"`
	Path       string        `json:"path"`
	Model      string        `json:"model"`
	Size       json.Number   `json:"size"`
	Tran       string        `json:"tran"`
	Fstype     string        `json:"fstype"`
	Mountpoint string        `json:"mountpoint"`
	Type       string        `json:"type"`
	Children   []BlockDevice `json:"children"`
}

// SizeBytes returns the device size, tolerating lsblk versions that emit
// sizes as JSON strings.
func (b BlockDevice) SizeBytes() uint64 {
	n, err := b.Size.Int64()
	if err != nil || n < 0 {
		return 0
	}
	return uint64(n)
}

// BlockDevices enumerates block devices via lsblk's JSON output.
type BlockDevices struct {
	Run     CommandRunner
	Timeout time.Duration
}

// NewBlockDevices returns a BlockDevices probe with the production
// command runner.
func NewBlockDevices(timeout time.Duration) *BlockDevices {
	return &BlockDevices{Run: RunCommand, Timeout: timeout}
}

// List returns all disk-type devices with their partitions attached as
// children.
func (b *BlockDevices) List(ctx context.Context) ([]BlockDevice, error) {
	out, err := b.Run(ctx, b.Timeout, "lsblk", "-J", "-b",
		"-o", "NAME,PATH,MODEL,SIZE,TRAN,FSTYPE,MOUNTPOINT,TYPE")
	if err != nil {
		return nil, err
	}

	var parsed struct {
		BlockDevices []BlockDevice `json:"blockdevices"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, fmt.Errorf("lsblk output: %v: %w", err, ErrMalformed)
	}

	devices := make([]BlockDevice, 0, len(parsed.BlockDevices))
	for _, d := range parsed.BlockDevices {
		if d.Type != "disk" {
			continue
		}
		d.Model = strings.TrimSpace(d.Model)
		devices = append(devices, d)
	}
	return devices, nil
}
