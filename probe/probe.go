// Package probe measures media durations with an external probe tool, independently of the engine.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// ErrNoDuration is returned when the probe ran but reported no positive duration.
var ErrNoDuration = errors.New("probe reported no duration")

// Prober measures a media file's duration in seconds.
type Prober interface {
	Duration(path string) (float64, error)
}

// FFProbe runs ffprobe against the container.
type FFProbe struct {
	Binary  string
	Timeout time.Duration
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseOutput extracts format.duration from ffprobe's JSON output.
func ParseOutput(data []byte) (float64, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("decode probe output: %w", err)
	}
	if out.Format.Duration == "" {
		return 0, ErrNoDuration
	}

	d, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse probe duration %q: %w", out.Format.Duration, err)
	}
	if d <= 0 {
		return 0, ErrNoDuration
	}
	return d, nil
}

// Duration implements Prober.
func (p FFProbe) Duration(path string) (float64, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, p.Binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("run %s: %w", p.Binary, err)
	}

	return ParseOutput(out)
}
