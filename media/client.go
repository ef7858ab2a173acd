package media

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Encode failure kinds. Callers branch on these: a rejected filter graph is
// retryable with a simpler chain, a stuck process is not.
var (
	// ErrEncodeFailed means the encoder exited nonzero.
	ErrEncodeFailed = errors.New("encode failed")

	// ErrEncodeTimeout means the encoder exceeded its deadline and was killed.
	ErrEncodeTimeout = errors.New("encode timed out")
)

// Client wraps every ffmpeg/ffprobe invocation in the pipeline. All encodes
// run under Timeout; there is no unbounded wait on a subprocess anywhere.
type Client struct {
	Width   int
	Height  int
	FPS     int
	CRF     int
	Timeout time.Duration
}

// NewClient returns a Client with the given frame geometry and limits.
func NewClient(width, height, fps, crf int, timeout time.Duration) *Client {
	return &Client{Width: width, Height: height, FPS: fps, CRF: crf, Timeout: timeout}
}

// run compiles an ffmpeg-go stream and executes it under the client timeout.
func (c *Client) run(stream *ffmpeg.Stream) error {
	cmd := stream.OverWriteOutput().Compile()
	return c.runCmd(cmd)
}

// runCmd executes a prepared command, distinguishing timeout from failure.
func (c *Client) runCmd(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start: %v", ErrEncodeFailed, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(c.Timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v: %s", ErrEncodeFailed, err, lastStderrLine(&stderr))
		}
		return nil
	case <-timer.C:
		_ = cmd.Process.Kill()
		<-done
		return fmt.Errorf("%w after %s", ErrEncodeTimeout, c.Timeout)
	}
}

// lastStderrLine extracts the tail of ffmpeg's stderr for error context.
func lastStderrLine(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

// ProbeDuration returns the container duration of a media file in seconds.
func (c *Client) ProbeDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=nw=1:nk=1",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out

	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("ffprobe start: %w", err)
	}
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(c.Timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			return 0, fmt.Errorf("ffprobe: %w", err)
		}
	case <-timer.C:
		_ = cmd.Process.Kill()
		<-done
		return 0, fmt.Errorf("ffprobe: %w", ErrEncodeTimeout)
	}

	d, err := parseProbeSeconds(out.String())
	if err != nil {
		return 0, err
	}
	return d, nil
}

// Silence writes a mono MP3 of the exact requested length. Zero-length
// requests are bumped to one millisecond so ffmpeg still emits a file.
func (c *Client) Silence(seconds float64, outPath string) error {
	if seconds <= 0 {
		seconds = 0.001
	}
	return c.run(
		ffmpeg.Input("anullsrc=r=24000:cl=mono", ffmpeg.KwArgs{"f": "lavfi"}).
			Output(outPath, ffmpeg.KwArgs{
				"t":      fmt.Sprintf("%.3f", seconds),
				"acodec": "libmp3lame",
				"q:a":    "9",
			}),
	)
}

// ConcatCopy losslessly concatenates the inputs in order via the concat
// demuxer (stream copy, no re-encode). Works for both audio and video parts.
func (c *Client) ConcatCopy(paths []string, outPath string) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: nothing to concatenate", ErrEncodeFailed)
	}
	listPath, err := writeConcatList(paths)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	return c.run(
		ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
			Output(outPath, ffmpeg.KwArgs{"c": "copy"}),
	)
}

// EncodeAudio re-encodes an audio file to MP3 at the requested bitrate,
// applying the optional filter chain (e.g. a tempo chain) on the way.
func (c *Client) EncodeAudio(inPath, outPath string, filters []string, bitrate string) error {
	kwargs := ffmpeg.KwArgs{
		"vn":  "",
		"c:a": "libmp3lame",
		"b:a": bitrate,
	}
	if len(filters) > 0 {
		kwargs["af"] = strings.Join(filters, ",")
	}
	return c.run(ffmpeg.Input(inPath).Output(outPath, kwargs))
}

// EncodeSlide turns a still frame into a silent clip of the given duration
// with a continuous slow zoom. If the zoom graph is rejected it retries once
// with a plain scale-only chain; a timeout is never retried.
func (c *Client) EncodeSlide(framePath, outPath string, duration, zoomPerSecond float64) error {
	err := c.encodeStill(framePath, outPath, duration, c.zoomFilter(duration, zoomPerSecond))
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrEncodeTimeout) {
		return err
	}
	log.Printf("zoom filter rejected for %s, retrying with plain scale: %v", framePath, err)
	return c.encodeStill(framePath, outPath, duration, c.plainFilter())
}

// encodeStill loops one image for the duration through the given filter.
func (c *Client) encodeStill(framePath, outPath string, duration float64, filter string) error {
	return c.run(
		ffmpeg.Input(framePath, ffmpeg.KwArgs{"loop": "1", "t": fmt.Sprintf("%.3f", duration)}).
			Output(outPath, ffmpeg.KwArgs{
				"vf":       filter,
				"r":        fmt.Sprintf("%d", c.FPS),
				"c:v":      videoCodec,
				"preset":   videoPreset,
				"crf":      fmt.Sprintf("%d", c.CRF),
				"pix_fmt":  pixelFormat,
				"an":       "",
				"movflags": "+faststart",
			}),
	)
}

// Mux lays the narration audio over the silent body, stream-copying the
// video and truncating to the shorter input. The output is written
// faststart so the result streams progressively.
func (c *Client) Mux(videoPath, audioPath, outPath, audioBitrate string) error {
	video := ffmpeg.Input(videoPath)
	audio := ffmpeg.Input(audioPath)
	return c.run(
		ffmpeg.Output([]*ffmpeg.Stream{video, audio}, outPath, ffmpeg.KwArgs{
			"c:v":      "copy",
			"c:a":      audioCodec,
			"b:a":      audioBitrate,
			"shortest": "",
			"movflags": "+faststart",
		}),
	)
}

// StaticVideo renders a plain black body under the audio track. Last-resort
// output when slide assembly failed but narration exists.
func (c *Client) StaticVideo(audioPath, outPath, audioBitrate string) error {
	color := ffmpeg.Input(
		fmt.Sprintf("color=c=black:s=%dx%d:r=%d", c.Width, c.Height, c.FPS),
		ffmpeg.KwArgs{"f": "lavfi"},
	)
	audio := ffmpeg.Input(audioPath)
	return c.run(
		ffmpeg.Output([]*ffmpeg.Stream{color, audio}, outPath, ffmpeg.KwArgs{
			"c:v":      videoCodec,
			"preset":   videoPreset,
			"pix_fmt":  pixelFormat,
			"c:a":      audioCodec,
			"b:a":      audioBitrate,
			"shortest": "",
			"movflags": "+faststart",
		}),
	)
}
