// Package pipeline drives one render end to end: narration, duration
// allocation, slide composition and encoding, assembly, and the final mux.
// Degradations are layered so a run keeps producing something watchable:
// silent narration when speech synthesis fails, generated backgrounds when
// downloads fail, a static body when slide encoding fails. Only an unusable
// output path or a broken mux is fatal.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"briefcast/config"
	"briefcast/frame"
	"briefcast/timing"
	"briefcast/tts"
	"briefcast/types"
)

// Narrator produces the narration track for a script.
type Narrator interface {
	Synthesize(script, outPath string) error
}

// BackgroundSource supplies slide backgrounds. Implementations never fail;
// they substitute generated images and report how many slots needed that.
type BackgroundSource interface {
	Fetch(count int) ([]image.Image, int)
}

// Encoder is the subset of the media client the pipeline drives. Narrow on
// purpose so tests can run the whole pipeline without ffmpeg installed.
type Encoder interface {
	ProbeDuration(path string) (float64, error)
	Silence(seconds float64, outPath string) error
	EncodeSlide(framePath, outPath string, duration, zoomPerSecond float64) error
	ConcatCopy(paths []string, outPath string) error
	Mux(videoPath, audioPath, outPath, audioBitrate string) error
	StaticVideo(audioPath, outPath, audioBitrate string) error
}

// Pipeline renders one request at a time. OnEvent, when set, receives a
// StageEvent at each phase boundary.
type Pipeline struct {
	cfg      config.Config
	enc      Encoder
	narrator Narrator
	bgs      BackgroundSource
	composer *frame.Composer

	OnEvent func(types.StageEvent)
}

// New assembles a pipeline from its collaborators.
func New(cfg config.Config, enc Encoder, narrator Narrator, bgs BackgroundSource, composer *frame.Composer) *Pipeline {
	return &Pipeline{cfg: cfg, enc: enc, narrator: narrator, bgs: bgs, composer: composer}
}

func (p *Pipeline) emit(stage types.Stage, detail string, current, total int) {
	if p.OnEvent == nil {
		return
	}
	p.OnEvent(types.StageEvent{Stage: stage, Detail: detail, Current: current, Total: total, At: time.Now()})
}

// Run renders req into OutDir and returns the run summary. The final MP4
// appears atomically: it is muxed to a scratch name and renamed only on
// success, so a failed run never leaves a half-written artifact behind.
func (p *Pipeline) Run(req types.RenderRequest) (*types.Result, error) {
	start := time.Now()
	if req.UUID == "" {
		req.UUID = uuid.NewString()
	}
	result := &types.Result{UUID: req.UUID}

	if err := os.MkdirAll(p.cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	workDir, err := os.MkdirTemp("", "render_")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	audioPath := filepath.Join(p.cfg.OutDir, req.UUID+".mp3")
	duration, err := p.narrate(req.Script, audioPath, result)
	if err != nil {
		p.emit(types.StageFailed, err.Error(), 0, 0)
		return nil, err
	}
	result.AudioPath = audioPath
	result.Duration = duration

	p.emit(types.StageAllocation, fmt.Sprintf("%.1fs across %d caption(s)", duration, len(req.Captions)), 0, 0)
	plans := timing.Allocate(duration, req.Captions)
	result.Slides = len(plans)

	bodyPath, err := p.buildBody(req, plans, workDir, result)
	if err != nil {
		p.emit(types.StageFailed, err.Error(), 0, 0)
		return nil, err
	}

	finalPath := filepath.Join(p.cfg.OutDir, req.UUID+".mp4")
	scratch := finalPath + ".part"
	p.emit(types.StageAssembly, "muxing narration over body", 0, 0)
	if result.StaticBody {
		err = p.enc.StaticVideo(audioPath, scratch, p.cfg.BitrateTTS)
	} else {
		err = p.enc.Mux(bodyPath, audioPath, scratch, p.cfg.BitrateTTS)
	}
	if err != nil {
		os.Remove(scratch)
		p.emit(types.StageFailed, err.Error(), 0, 0)
		return nil, fmt.Errorf("assemble final video: %w", err)
	}
	if err := os.Rename(scratch, finalPath); err != nil {
		os.Remove(scratch)
		return nil, fmt.Errorf("move final video: %w", err)
	}

	result.VideoPath = finalPath
	result.Elapsed = time.Since(start)
	p.emit(types.StageDone, finalPath, 0, 0)
	return result, nil
}

// narrate synthesizes the narration track and returns its measured duration.
// A speech-provider failure is downgraded to a silent track of the default
// length; any other synthesis failure is fatal.
func (p *Pipeline) narrate(script, audioPath string, result *types.Result) (float64, error) {
	p.emit(types.StageNarration, "synthesizing narration", 0, 0)

	var provErr *tts.ProviderError
	err := p.narrator.Synthesize(script, audioPath)
	switch {
	case err == nil:
	case errors.As(err, &provErr):
		log.Printf("speech provider unavailable (%v), rendering with silent track", provErr)
		result.SilentTTS = true
		if err := p.enc.Silence(config.DefaultAudioSeconds, audioPath); err != nil {
			return 0, fmt.Errorf("silent narration fallback: %w", err)
		}
	default:
		return 0, fmt.Errorf("narration: %w", err)
	}

	duration, err := p.enc.ProbeDuration(audioPath)
	if err != nil || duration <= 0 {
		log.Printf("probe narration duration: %v, assuming %.0fs", err, config.DefaultAudioSeconds)
		duration = config.DefaultAudioSeconds
	}
	return duration, nil
}

// buildBody composes and encodes every slide clip and concatenates them into
// the silent video body. Any encode or concat failure flips the run to a
// static body instead of aborting.
func (p *Pipeline) buildBody(req types.RenderRequest, plans []types.SlidePlan, workDir string, result *types.Result) (string, error) {
	assetsPerSlide := p.cfg.SlideAssets
	totalAssets := len(plans) * assetsPerSlide
	p.emit(types.StageSlides, fmt.Sprintf("rendering %d slide asset(s)", totalAssets), 0, totalAssets)

	var parts []string
	for _, plan := range plans {
		// A short slide is not split below the per-asset duration floor.
		assets := assetsPerSlide
		for assets > 1 && plan.Duration/float64(assets) < p.cfg.MinSlideSec {
			assets--
		}

		// Assets for one slide download in parallel; slides themselves are
		// strictly sequential.
		images, fallbacks := p.bgs.Fetch(assets)
		result.Fallbacks += fallbacks

		per := plan.Duration / float64(assets)
		for j := 0; j < assets; j++ {
			idx := plan.Index*assetsPerSlide + j
			composed := p.composer.Compose(images[j], plan.Caption, req.Title, req.Ticker)

			framePath := filepath.Join(workDir, fmt.Sprintf("frame_%03d.png", idx))
			if err := writePNG(framePath, composed); err != nil {
				return "", fmt.Errorf("write frame %d: %w", idx, err)
			}

			clipPath := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", idx))
			if err := p.enc.EncodeSlide(framePath, clipPath, per, p.cfg.ZoomPerSecond); err != nil {
				log.Printf("slide %d encode failed (%v), switching to static body", idx, err)
				result.StaticBody = true
				return "", nil
			}
			parts = append(parts, clipPath)
			p.emit(types.StageSlides, plan.Caption, idx+1, totalAssets)
		}
	}

	bodyPath := filepath.Join(workDir, "body.mp4")
	if err := p.enc.ConcatCopy(parts, bodyPath); err != nil {
		log.Printf("body concat failed (%v), switching to static body", err)
		result.StaticBody = true
		return "", nil
	}
	return bodyPath, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
