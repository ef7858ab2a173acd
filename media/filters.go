package media

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"briefcast/config"
)

const (
	videoCodec  = config.VideoCodec
	videoPreset = config.VideoPreset
	audioCodec  = config.AudioCodec
	pixelFormat = config.PixelFormat

	// maxZoom caps the Ken Burns travel so long slides don't crop away the
	// caption area.
	maxZoom = 1.25
)

// zoomFilter builds the continuous-zoom graph for a still of the given
// duration. The per-frame increment is zoomPerSecond/fps and zoompan starts
// at z=1, so frame one is unscaled.
func (c *Client) zoomFilter(duration, zoomPerSecond float64) string {
	inc := zoomPerSecond / float64(c.FPS)
	frames := int(math.Ceil(duration * float64(c.FPS)))
	if frames < 1 {
		frames = 1
	}
	return fmt.Sprintf(
		"scale=%d:%d,zoompan=z='min(zoom+%.6f,%.2f)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d,format=%s",
		c.Width, c.Height, inc, maxZoom, frames, c.Width, c.Height, c.FPS, pixelFormat,
	)
}

// plainFilter is the no-zoom fallback chain; it must work on any encoder
// build that can produce the output at all.
func (c *Client) plainFilter() string {
	return fmt.Sprintf("scale=%d:%d,format=%s", c.Width, c.Height, pixelFormat)
}

// writeConcatList writes a concat-demuxer list file for the given inputs,
// in order, and returns its path. Single quotes in paths are escaped the way
// the demuxer expects.
func writeConcatList(paths []string) (string, error) {
	f, err := os.CreateTemp("", "concat_*.txt")
	if err != nil {
		return "", fmt.Errorf("concat list: %w", err)
	}
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("concat list: %w", err)
	}
	return f.Name(), nil
}

// parseProbeSeconds converts ffprobe's duration output to seconds.
func parseProbeSeconds(out string) (float64, error) {
	s := strings.TrimSpace(out)
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: unparsable duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ffprobe: non-positive duration %v", d)
	}
	return d, nil
}
