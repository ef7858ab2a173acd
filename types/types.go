package types

import "time"

// RenderRequest is the unit of work accepted over the API and the Kafka
// topic. Script and Captions are opaque inputs here: whoever enqueues the
// request owns content generation.
type RenderRequest struct {
	UUID     string   `json:"uuid"`
	Script   string   `json:"script"`
	Captions []string `json:"captions"`
	Theme    string   `json:"theme,omitempty"`
	Ticker   string   `json:"ticker,omitempty"`
	Title    string   `json:"title,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// SlidePlan is one caption's allocated screen time. Index preserves the
// caption order end to end.
type SlidePlan struct {
	Index    int     `json:"index"`
	Caption  string  `json:"caption"`
	Duration float64 `json:"duration"`
}

// VideoMeta describes the finished artifact for publication.
type VideoMeta struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Result summarizes one pipeline run.
type Result struct {
	UUID       string        `json:"uuid"`
	VideoPath  string        `json:"video_path"`
	AudioPath  string        `json:"audio_path"`
	Duration   float64       `json:"duration"`
	Slides     int           `json:"slides"`
	Fallbacks  int           `json:"fallback_assets"`
	SilentTTS  bool          `json:"silent_tts"`
	StaticBody bool          `json:"static_body"`
	Elapsed    time.Duration `json:"elapsed"`
	Published  string        `json:"published,omitempty"`
}

// Stage identifies a pipeline phase for progress reporting.
type Stage string

const (
	StageScript     Stage = "script"
	StageNarration  Stage = "narration"
	StageAllocation Stage = "allocation"
	StageSlides     Stage = "slides"
	StageAssembly   Stage = "assembly"
	StagePublish    Stage = "publish"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// StageEvent is emitted as the pipeline advances; consumed by the watch TUI
// and the job registry.
type StageEvent struct {
	Stage   Stage     `json:"stage"`
	Detail  string    `json:"detail"`
	Current int       `json:"current,omitempty"`
	Total   int       `json:"total,omitempty"`
	At      time.Time `json:"at"`
}
