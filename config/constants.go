package config

// Frame geometry (9:16 vertical)
const (
	// FrameWidth is the output video width
	FrameWidth = 1080

	// FrameHeight is the output video height
	FrameHeight = 1920
)

// Codec constants
const (
	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "veryfast"

	// AudioCodec is the audio encoding codec for the final mux
	AudioCodec = "aac"

	// PixelFormat keeps the output broadly player-compatible
	PixelFormat = "yuv420p"
)

// Duration allocation constants
const (
	// MinPerSlide is the minimum raw allocation per slide in seconds
	MinPerSlide = 3.0

	// RescaleFloor is the post-rescale clamp in seconds
	RescaleFloor = 2.5

	// LastSlideFloor is the minimum duration of the final slide in seconds
	LastSlideFloor = 2.0

	// DefaultAudioSeconds is assumed when probing the narration track fails
	DefaultAudioSeconds = 60.0
)

// Caption rendering constants
const (
	// MaxCaptionLines caps word-wrapped caption height
	MaxCaptionLines = 3

	// CaptionMargin is the horizontal padding around caption text in pixels
	CaptionMargin = 80

	// HeaderBandHeight is the translucent top band in pixels
	HeaderBandHeight = 160
)

// DefaultCaption is used when a run produces no captions at all
const DefaultCaption = "60-second brief"
