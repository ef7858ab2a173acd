package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config collects every recognized environment option in one place so each
// component receives an explicit value instead of reading the environment
// itself. Zero values never leak out: FromEnv fills in the documented default
// for anything unset or unparsable.
type Config struct {
	// Script source
	Theme       string
	Language    string
	RSSURL      string
	CryptoCoins []string

	// Narration
	Voice      string
	Tempo      float64
	GapMS      int
	BitrateTTS string

	// Speech provider
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	// Title polish (optional)
	CohereKey string

	// Video
	FPS            int
	CRF            int
	MinSlideSec    float64
	ZoomPerSecond  float64
	TickerHeight   int
	SlideAssets    int
	BadgeSize      int
	BadgePosition  string
	BadgeImageURL  string
	BadgeInitials  string
	EncodeTimeout  time.Duration
	TitlePrefix    string

	// Background acquisition
	DownloadWorkers int
	FetchTimeout    time.Duration
	FetchMaxBytes   int64
	ImageKeywords   []string

	// Artifacts
	OutDir string

	// Publisher (optional)
	S3Bucket       string
	S3Region       string
	S3Prefix       string
	S3UsePathStyle bool

	// Consume mode (optional)
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Seen-headline filter (optional)
	RedisAddr  string
	RedisPass  string
	SeenKey    string
	SeenTTL    time.Duration

	// API mode
	Port string
}

// FromEnv builds a Config from the process environment, applying defaults.
func FromEnv() Config {
	return Config{
		Theme:       envStr("THEME", "news"),
		Language:    envStr("LANGUAGE", "en"),
		RSSURL:      envStr("RSS_URL", "https://news.google.com/rss?hl=en-US&gl=US&ceid=US:en"),
		CryptoCoins: envList("CRYPTO_COINS", "bitcoin,ethereum,solana"),

		Voice:      envStr("TTS_VOICE", "alloy"),
		Tempo:      envFloat("TTS_ATEMPO", 1.0),
		GapMS:      envInt("TTS_GAP_MS", 0),
		BitrateTTS: envStr("TTS_BITRATE", "128k"),

		OpenAIKey:     envStr("OPENAI_API_KEY", ""),
		OpenAIBaseURL: strings.TrimRight(envStr("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		OpenAIModel:   envStr("OPENAI_MODEL_TTS", "gpt-4o-mini-tts"),

		CohereKey: envStr("COHERE_API_KEY", ""),

		FPS:           envInt("FPS", 30),
		CRF:           envInt("CRF", 22),
		MinSlideSec:   envFloat("MIN_SLIDE_SECONDS", RescaleFloor),
		ZoomPerSecond: envFloat("ZOOM_PER_SECOND", 0.0016),
		TickerHeight:  envInt("TICKER_H", 120),
		SlideAssets:   max(1, envInt("SLIDE_ASSETS", 1)),
		BadgeSize:     envInt("BADGE_SIZE", 0),
		BadgePosition: envStr("BADGE_POSITION", "top-right"),
		BadgeImageURL: envStr("BADGE_IMAGE_URL", ""),
		BadgeInitials: envStr("BADGE_INITIALS", "DB"),
		EncodeTimeout: time.Duration(envInt("ENCODE_TIMEOUT_SECONDS", 120)) * time.Second,
		TitlePrefix:   envStr("VIDEO_TITLE_PREFIX", ""),

		DownloadWorkers: max(1, envInt("DOWNLOAD_WORKERS", 4)),
		FetchTimeout:    time.Duration(envInt("FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		FetchMaxBytes:   envInt64("FETCH_MAX_BYTES", 8<<20),
		ImageKeywords:   envList("IMAGE_KEYWORDS", ""),

		OutDir: envStr("OUT_DIR", "out"),

		S3Bucket:       envStr("S3_BUCKET", ""),
		S3Region:       envStr("S3_REGION", ""),
		S3Prefix:       strings.Trim(envStr("S3_PREFIX", ""), "/"),
		S3UsePathStyle: strings.EqualFold(envStr("S3_USE_PATH_STYLE", ""), "true"),

		KafkaBrokers: envList("KAFKA_BROKERS", ""),
		KafkaTopic:   envStr("KAFKA_TOPIC", "briefcast.render"),
		KafkaGroupID: envStr("KAFKA_GROUP_ID", "briefcast-workers"),

		RedisAddr: envStr("REDIS_ADDR", ""),
		RedisPass: envStr("REDIS_PASS", ""),
		SeenKey:   envStr("SEEN_KEY", "briefcast:seen"),
		SeenTTL:   time.Duration(envInt("SEEN_TTL_SECONDS", 7*24*3600)) * time.Second,

		Port: envStr("PORT", "8080"),
	}
}

// envStr returns the trimmed value of name, or def when unset/blank.
func envStr(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envInt64(name string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envFloat(name string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// envList splits a comma separated variable, dropping empty entries.
// An empty default yields a nil slice.
func envList(name, def string) []string {
	v := envStr(name, def)
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
