package pipeline

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"briefcast/config"
	"briefcast/frame"
	"briefcast/tts"
	"briefcast/types"
)

// fakeEncoder satisfies Encoder without ffmpeg: every operation just writes a
// marker file where the real encoder would write media.
type fakeEncoder struct {
	duration   float64
	probeErr   error
	slideErr   error
	concatErr  error
	muxErr     error
	staticErr  error
	slideCalls int
	muxCalls   int
	staticUsed bool
}

func touch(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}

func (f *fakeEncoder) ProbeDuration(string) (float64, error) {
	return f.duration, f.probeErr
}
func (f *fakeEncoder) Silence(_ float64, out string) error { return touch(out) }
func (f *fakeEncoder) EncodeSlide(_, out string, _, _ float64) error {
	f.slideCalls++
	if f.slideErr != nil {
		return f.slideErr
	}
	return touch(out)
}
func (f *fakeEncoder) ConcatCopy(_ []string, out string) error {
	if f.concatErr != nil {
		return f.concatErr
	}
	return touch(out)
}
func (f *fakeEncoder) Mux(_, _, out, _ string) error {
	f.muxCalls++
	if f.muxErr != nil {
		return f.muxErr
	}
	return touch(out)
}
func (f *fakeEncoder) StaticVideo(_, out, _ string) error {
	f.staticUsed = true
	if f.staticErr != nil {
		return f.staticErr
	}
	return touch(out)
}

type fakeNarrator struct {
	err error
}

func (f *fakeNarrator) Synthesize(_, out string) error {
	if f.err != nil {
		return f.err
	}
	return touch(out)
}

type fakeBackgrounds struct{}

func (fakeBackgrounds) Fetch(count int) ([]image.Image, int) {
	out := make([]image.Image, count)
	for i := range out {
		out[i] = image.NewRGBA(image.Rect(0, 0, 100, 180))
	}
	return out, 0
}

func testPipeline(t *testing.T, enc Encoder, narrator Narrator) *Pipeline {
	t.Helper()
	cfg := config.FromEnv()
	cfg.OutDir = t.TempDir()

	composer, err := frame.NewComposer(cfg, nil)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return New(cfg, enc, narrator, fakeBackgrounds{}, composer)
}

func testRequest() types.RenderRequest {
	return types.RenderRequest{
		UUID:     "test-run",
		Script:   "[HOOK] Hello.\n[CUT] Story one.\n[CUT] Story two.",
		Captions: []string{"Story one", "Story two"},
		Title:    "Daily brief",
		Ticker:   "Story one • Story two",
	}
}

func TestRunHappyPath(t *testing.T) {
	enc := &fakeEncoder{duration: 40.0}
	p := testPipeline(t, enc, &fakeNarrator{})

	var events []types.StageEvent
	p.OnEvent = func(ev types.StageEvent) { events = append(events, ev) }

	result, err := p.Run(testRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Slides != 2 {
		t.Fatalf("Slides = %d; want 2", result.Slides)
	}
	if result.Duration != 40.0 {
		t.Fatalf("Duration = %v; want 40.0", result.Duration)
	}
	if result.SilentTTS || result.StaticBody {
		t.Fatalf("unexpected degradation: %+v", result)
	}
	if enc.slideCalls != 2 {
		t.Fatalf("slideCalls = %d; want 2", enc.slideCalls)
	}
	if enc.muxCalls != 1 {
		t.Fatalf("muxCalls = %d; want 1", enc.muxCalls)
	}
	if _, err := os.Stat(result.VideoPath); err != nil {
		t.Fatalf("final video missing: %v", err)
	}
	if filepath.Ext(result.VideoPath) != ".mp4" {
		t.Fatalf("VideoPath = %q; want .mp4", result.VideoPath)
	}
	if _, err := os.Stat(result.VideoPath + ".part"); !os.IsNotExist(err) {
		t.Fatal("scratch file was left behind")
	}

	var sawDone bool
	for _, ev := range events {
		if ev.Stage == types.StageDone {
			sawDone = true
		}
	}
	if !sawDone {
		t.Fatal("no done event emitted")
	}
}

func TestRunProviderFailureFallsBackToSilence(t *testing.T) {
	enc := &fakeEncoder{duration: config.DefaultAudioSeconds}
	narrator := &fakeNarrator{err: &tts.ProviderError{Status: 500, Reason: "upstream down"}}
	p := testPipeline(t, enc, narrator)

	result, err := p.Run(testRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.SilentTTS {
		t.Fatal("SilentTTS not set after provider failure")
	}
	if _, err := os.Stat(result.VideoPath); err != nil {
		t.Fatalf("final video missing: %v", err)
	}
}

func TestRunNonProviderNarrationErrorIsFatal(t *testing.T) {
	enc := &fakeEncoder{duration: 40.0}
	narrator := &fakeNarrator{err: fmt.Errorf("concat failed: %w", errors.New("boom"))}
	p := testPipeline(t, enc, narrator)

	if _, err := p.Run(testRequest()); err == nil {
		t.Fatal("Run succeeded; want error")
	}
}

func TestRunProbeFailureAssumesDefault(t *testing.T) {
	enc := &fakeEncoder{probeErr: errors.New("no ffprobe")}
	p := testPipeline(t, enc, &fakeNarrator{})

	result, err := p.Run(testRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Duration != config.DefaultAudioSeconds {
		t.Fatalf("Duration = %v; want default %v", result.Duration, config.DefaultAudioSeconds)
	}
}

func TestRunSlideFailureSwitchesToStaticBody(t *testing.T) {
	enc := &fakeEncoder{duration: 40.0, slideErr: errors.New("encoder rejected filter")}
	p := testPipeline(t, enc, &fakeNarrator{})

	result, err := p.Run(testRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.StaticBody {
		t.Fatal("StaticBody not set after slide failure")
	}
	if !enc.staticUsed {
		t.Fatal("StaticVideo was not used")
	}
	if enc.muxCalls != 0 {
		t.Fatalf("muxCalls = %d; static path should not mux", enc.muxCalls)
	}
	if _, err := os.Stat(result.VideoPath); err != nil {
		t.Fatalf("final video missing: %v", err)
	}
}

func TestRunMuxFailureLeavesNoArtifact(t *testing.T) {
	enc := &fakeEncoder{duration: 40.0, muxErr: errors.New("mux exploded")}
	p := testPipeline(t, enc, &fakeNarrator{})

	req := testRequest()
	if _, err := p.Run(req); err == nil {
		t.Fatal("Run succeeded; want error")
	}

	final := filepath.Join(p.cfg.OutDir, req.UUID+".mp4")
	if _, err := os.Stat(final); !os.IsNotExist(err) {
		t.Fatal("failed run left a final artifact behind")
	}
}

func TestRunAssignsUUIDWhenMissing(t *testing.T) {
	enc := &fakeEncoder{duration: 40.0}
	p := testPipeline(t, enc, &fakeNarrator{})

	req := testRequest()
	req.UUID = ""
	result, err := p.Run(req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.UUID == "" {
		t.Fatal("UUID not assigned")
	}
}

func TestRunMultipleAssetsPerSlide(t *testing.T) {
	enc := &fakeEncoder{duration: 40.0}
	cfg := config.FromEnv()
	cfg.OutDir = t.TempDir()
	cfg.SlideAssets = 2

	composer, err := frame.NewComposer(cfg, nil)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	p := New(cfg, enc, &fakeNarrator{}, fakeBackgrounds{}, composer)

	result, err := p.Run(testRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if enc.slideCalls != 4 {
		t.Fatalf("slideCalls = %d; want 4 (2 slides x 2 assets)", enc.slideCalls)
	}
	if result.Slides != 2 {
		t.Fatalf("Slides = %d; want 2", result.Slides)
	}
}

func TestRunShortSlidesAreNotOversplit(t *testing.T) {
	// 10s over two captions gives 5s per slide; four assets would mean 1.25s
	// each, below the 2.5s floor, so each slide splits into two assets only.
	enc := &fakeEncoder{duration: 10.0}
	cfg := config.FromEnv()
	cfg.OutDir = t.TempDir()
	cfg.SlideAssets = 4
	cfg.MinSlideSec = 2.5

	composer, err := frame.NewComposer(cfg, nil)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	p := New(cfg, enc, &fakeNarrator{}, fakeBackgrounds{}, composer)

	if _, err := p.Run(testRequest()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if enc.slideCalls != 4 {
		t.Fatalf("slideCalls = %d; want 4 (2 slides x 2 clamped assets)", enc.slideCalls)
	}
}
