// Package tts turns a tagged narration script into one mixed-rate speech
// track: per-segment provider calls, optional inter-segment gaps, lossless
// stitching, tempo chaining, and a final bitrate re-encode.
package tts

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"briefcast/media"
)

// Synthesizer owns the script-to-track conversion. It deletes every
// intermediate clip it creates; only the output path survives the call.
type Synthesizer struct {
	provider Provider
	media    *media.Client
	voice    string
	tempo    float64
	gapMS    int
	bitrate  string
}

// NewSynthesizer wires a provider and an encoder client with the narration
// settings.
func NewSynthesizer(provider Provider, client *media.Client, voice string, tempo float64, gapMS int, bitrate string) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		media:    client,
		voice:    voice,
		tempo:    tempo,
		gapMS:    gapMS,
		bitrate:  bitrate,
	}
}

// Synthesize writes the finished narration track to outPath.
//
// Provider failures propagate unwrapped as *ProviderError so the caller can
// decide on a fallback. Everything else (concat, tempo, re-encode) is a
// plain wrapped error.
func (s *Synthesizer) Synthesize(script, outPath string) error {
	segments := Segments(script)
	if len(segments) == 0 {
		return fmt.Errorf("script has no narratable text")
	}

	tmpDir, err := os.MkdirTemp("", "tts_")
	if err != nil {
		return fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// One silence clip is shared by every gap slot.
	gapPath := ""
	if s.gapMS > 0 {
		gapPath = filepath.Join(tmpDir, "gap.mp3")
		if err := s.media.Silence(float64(s.gapMS)/1000.0, gapPath); err != nil {
			return fmt.Errorf("gap silence: %w", err)
		}
	}

	var parts []string
	for i, seg := range segments {
		segPath := filepath.Join(tmpDir, fmt.Sprintf("seg_%03d.mp3", i))
		if err := s.provider.Speak(seg, s.voice, segPath); err != nil {
			return err
		}
		parts = append(parts, segPath)
		if gapPath != "" && i < len(segments)-1 {
			parts = append(parts, gapPath)
		}
	}
	log.Printf("synthesized %d narration segment(s)", len(segments))

	combined := filepath.Join(tmpDir, "combined.mp3")
	if err := s.media.ConcatCopy(parts, combined); err != nil {
		return fmt.Errorf("stitch segments: %w", err)
	}

	if err := s.media.EncodeAudio(combined, outPath, TempoChain(s.tempo), s.bitrate); err != nil {
		return fmt.Errorf("finalize narration: %w", err)
	}
	return nil
}
