package cli

import (
	"codeberg.org/okrause/faunareel/internal/video"
)

// Flags holds all command-line flag values
type Flags struct {
	CfgFile     string
	SpeakerWAV  string
	KeepImages  bool
	Resolution  ResolutionValue
	MaxImages   int
	Refresh     bool
	ClearCache  bool
	NoHistory   bool
	MinDuration float64
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Resolution:  ResolutionValue{video.DefaultResolution},
		MaxImages:   25,
		MinDuration: 30,
	}
}

// ResolutionValue adapts video.Resolution to the pflag.Value interface
// so malformed resolutions are rejected at parse time instead of
// surfacing as a broken ffmpeg filter later.
type ResolutionValue struct {
	video.Resolution
}

// Set parses and validates a WIDTHxHEIGHT string.
func (v *ResolutionValue) Set(s string) error {
	r, err := video.ParseResolution(s)
	if err != nil {
		return err
	}
	v.Resolution = r
	return nil
}

// Type describes the flag value in help output.
func (v *ResolutionValue) Type() string {
	return "WIDTHxHEIGHT"
}
