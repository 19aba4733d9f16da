package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// EncodingError reports an ffmpeg run that exited non-zero or produced
// no usable output file.
type EncodingError struct {
	Path   string
	Detail string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("encoding %s: %v: %s", e.Path, e.Err, e.Detail)
	}
	return fmt.Sprintf("encoding %s: %v", e.Path, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Config holds assembly settings.
type Config struct {
	// Resolution is the exact output frame size.
	Resolution Resolution

	// FPS is the output frame rate. Slideshows tolerate low rates.
	FPS int

	// OutputDir is where finished videos are written.
	OutputDir string
}

// DefaultConfig returns assembly settings for portrait phone playback.
func DefaultConfig() *Config {
	return &Config{
		Resolution: DefaultResolution,
		FPS:        15,
		OutputDir:  "output_video",
	}
}

// Assembler turns a narration track and a set of still images into a
// slideshow video via ffmpeg's concat demuxer.
type Assembler struct {
	config *Config
}

// NewAssembler creates an Assembler, verifying that ffmpeg and ffprobe
// are on PATH.
func NewAssembler(config *Config) (*Assembler, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Resolution.Width == 0 || config.Resolution.Height == 0 {
		config.Resolution = DefaultResolution
	}
	if config.FPS <= 0 {
		config.FPS = 15
	}
	if config.OutputDir == "" {
		config.OutputDir = "output_video"
	}

	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			return nil, fmt.Errorf("%s not found in PATH: %w", tool, err)
		}
	}

	return &Assembler{config: config}, nil
}

// Assemble renders <stem>.mp4 in the output directory. Each image is
// shown for an equal share of the audio duration and the narration
// plays underneath.
func (a *Assembler) Assemble(ctx context.Context, audioPath string, imagePaths []string, stem string) (string, error) {
	if len(imagePaths) == 0 {
		return "", fmt.Errorf("no images to assemble")
	}

	duration, err := Duration(ctx, audioPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	outputPath := filepath.Join(a.config.OutputDir, stem+".mp4")

	listPath, err := writeConcatList(imagePaths, duration)
	if err != nil {
		return "", err
	}
	defer os.Remove(listPath)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-i", audioPath,
		"-vf", buildFilter(a.config.Resolution),
		"-c:v", "libx264",
		"-c:a", "aac",
		"-r", strconv.Itoa(a.config.FPS),
		"-shortest",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &EncodingError{Path: outputPath, Detail: string(tailBytes(output, 2048)), Err: err}
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "", &EncodingError{Path: outputPath, Err: fmt.Errorf("ffmpeg produced no output: %w", err)}
	}
	if info.Size() == 0 {
		return "", &EncodingError{Path: outputPath, Err: fmt.Errorf("ffmpeg produced an empty file")}
	}

	return outputPath, nil
}

// writeConcatList writes a concat demuxer list giving every image an
// equal share of totalDuration. The demuxer ignores the duration of
// the final entry, so the last image is listed once more without one;
// with a single image that repeat keeps it on screen for the full run.
func writeConcatList(imagePaths []string, totalDuration float64) (string, error) {
	perImage := totalDuration / float64(len(imagePaths))

	var b strings.Builder
	var last string
	for _, p := range imagePaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolving image path %s: %w", p, err)
		}
		last = concatQuote(abs)
		fmt.Fprintf(&b, "file %s\nduration %s\n", last, formatSeconds(perImage))
	}
	fmt.Fprintf(&b, "file %s\n", last)

	f, err := os.CreateTemp("", "faunareel-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("creating concat list: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing concat list: %w", err)
	}
	return f.Name(), nil
}

// concatQuote single-quotes a path for the concat demuxer, which has
// no escape for a quote inside a quoted string.
func concatQuote(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

// buildFilter scales each frame to fit inside the target resolution,
// pads the short side with black and crops to the exact frame size.
func buildFilter(r Resolution) string {
	aspect := strconv.FormatFloat(r.Aspect(), 'f', -1, 64)
	return fmt.Sprintf(
		"scale='if(gt(a,%s),%d,-2)':'if(gt(a,%s),-2,%d)',pad=%d:%d:(%d-iw)/2:(%d-ih)/2:black,crop=%d:%d",
		aspect, r.Width,
		aspect, r.Height,
		r.Width, r.Height, r.Width, r.Height,
		r.Width, r.Height,
	)
}

func tailBytes(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return append([]byte("..."), b[len(b)-n:]...)
}
