package video

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is an output frame size in pixels.
type Resolution struct {
	Width  int
	Height int
}

// DefaultResolution is the portrait format used for phone playback.
var DefaultResolution = Resolution{Width: 720, Height: 1280}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Aspect returns the width to height ratio.
func (r Resolution) Aspect() float64 {
	return float64(r.Width) / float64(r.Height)
}

// ParseResolution parses a "WIDTHxHEIGHT" string such as "720x1280".
// Both dimensions must be positive and even; libx264 rejects odd frame
// sizes.
func ParseResolution(s string) (Resolution, error) {
	parts := strings.Split(strings.TrimSpace(strings.ToLower(s)), "x")
	if len(parts) != 2 {
		return Resolution{}, fmt.Errorf("resolution must be WIDTHxHEIGHT, got %q", s)
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid width in resolution %q", s)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid height in resolution %q", s)
	}
	if width <= 0 || height <= 0 {
		return Resolution{}, fmt.Errorf("resolution dimensions must be positive, got %q", s)
	}
	if width%2 != 0 || height%2 != 0 {
		return Resolution{}, fmt.Errorf("resolution dimensions must be even, got %q", s)
	}

	return Resolution{Width: width, Height: height}, nil
}
