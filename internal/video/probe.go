package video

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Duration returns the length of a media file in seconds, as reported
// by ffprobe.
func Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q for %s: %w", strings.TrimSpace(string(out)), path, err)
	}

	return duration, nil
}

// EnsureMinDuration probes path and rejects media shorter than min.
// A non-positive min disables the check; the measured duration is
// returned either way so callers can log it.
func EnsureMinDuration(ctx context.Context, path string, min time.Duration) (float64, error) {
	duration, err := Duration(ctx, path)
	if err != nil {
		return 0, err
	}
	if min > 0 && duration < min.Seconds() {
		return duration, fmt.Errorf("%s runs %.2fs, below the %.0fs minimum", path, duration, min.Seconds())
	}
	return duration, nil
}
