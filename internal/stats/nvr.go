package stats

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvrdash/nvrdash/internal/probe"
)

// recordingActivityWindow is how recently a recording file must have
// been written for a camera to count as actively recording.
const recordingActivityWindow = 5 * time.Minute

// collectNVR walks the recordings tree and inspects the monitored
// container. docker may be nil; container fields then stay unknown.
func collectNVR(ctx context.Context, docker *probe.Docker, serviceName, recordingsPath string, now time.Time) *NVRServiceStats {
	if serviceName == "" {
		return nil
	}

	s := &NVRServiceStats{Name: serviceName, Status: "unknown"}

	if docker != nil {
		if status, startedAt, err := docker.ContainerState(ctx, serviceName); err == nil {
			s.Status = status
			if status == "running" && !startedAt.IsZero() {
				s.UptimeSeconds = int64(now.Sub(startedAt).Seconds())
			}
		}
	}

	if recordingsPath != "" {
		scanRecordings(s, recordingsPath, now)
	}
	return s
}

// scanRecordings fills recording activity, detection-event counts and
// on-disk size from one pass over the recordings tree. Unreadable
// entries are skipped; a partially scanned tree is better than none.
func scanRecordings(s *NVRServiceStats, root string, now time.Time) {
	activeCameras := map[string]bool{}

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		s.RecordingsBytes += uint64(info.Size())

		age := now.Sub(info.ModTime())
		if age <= recordingActivityWindow {
			s.Recording = true
			if cam := cameraOf(root, path); cam != "" {
				activeCameras[cam] = true
			}
		}
		if isDetectionEvent(d.Name()) {
			if age <= 24*time.Hour {
				s.DetectionEvents24h++
			}
			if age <= 7*24*time.Hour {
				s.DetectionEvents7d++
			}
		}
		return nil
	})

	s.ActiveCameras = len(activeCameras)
}

// cameraOf returns the top-level directory a recording file sits under,
// which the NVR keys by camera.
func cameraOf(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// isDetectionEvent recognizes the NVR's object-detection event files.
func isDetectionEvent(name string) bool {
	return strings.HasSuffix(name, ".json") && strings.Contains(name, "ObjectDetector")
}
