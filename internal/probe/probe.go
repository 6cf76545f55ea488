// Package probe implements single fact-gathering operations against the
// live environment: filesystem existence checks, /proc and /sys parsers,
// container runtime queries and short-lived external commands.
//
// Probes run from inside a container sandbox with only partial visibility
// into the physical host, so a missing device, binary or permission is an
// expected outcome, not an error condition. Every probe reports failure
// as a typed error value and never panics past its boundary. Callers
// distinguish three failure classes:
//
//   - ErrUnavailable: the tool, device or file is absent
//   - ErrTimeout: an external command exceeded its declared bound
//   - ErrMalformed: output existed but did not match the expected shape
//
// Probes that invoke external processes apply their timeout to the
// process call itself so total resolver latency stays bounded.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrUnavailable reports an absent tool, device node or file.
	ErrUnavailable = errors.New("probe unavailable")

	// ErrTimeout reports an external command that exceeded its bound.
	ErrTimeout = errors.New("probe timeout")

	// ErrMalformed reports output that did not match the expected shape.
	ErrMalformed = errors.New("probe output malformed")
)

// CommandRunner executes one external command with a hard timeout and
// returns its standard output. Implementations map process
// failure onto the probe error taxonomy.
type CommandRunner func(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error)

// RunCommand is the production CommandRunner. A missing binary maps to
// ErrUnavailable, an exceeded deadline to ErrTimeout and a non-zero exit
// to ErrUnavailable (the tool exists but could not answer).
func RunCommand(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", name, ErrTimeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", name, ErrUnavailable)
		}
		return "", fmt.Errorf("%s: %v: %w", name, err, ErrUnavailable)
	}

	return strings.TrimSpace(string(out)), nil
}
