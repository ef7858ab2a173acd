package backgrounds

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"briefcast/config"
)

const (
	defaultStockURL  = "https://loremflickr.com/%d/%d/%s"
	defaultFillerURL = "https://picsum.photos/%d/%d?random=%d"
)

// Acquirer downloads slide backgrounds concurrently, capped at a fixed number
// of in-flight fetches. Every failure (timeout, bad status, oversized body,
// undecodable image) is absorbed by generating a procedural background for
// that slot, so Fetch always hands back exactly the requested count.
type Acquirer struct {
	client   *http.Client
	workers  int
	maxBytes int64
	keywords []string
	theme    string

	stockURL  string
	fillerURL string

	// variant counts generated fallbacks across calls so consecutive
	// fallback images do not share a palette.
	variant int32
}

// NewAcquirer builds an acquirer from the run configuration.
func NewAcquirer(cfg config.Config) *Acquirer {
	return &Acquirer{
		client:    &http.Client{Timeout: cfg.FetchTimeout},
		workers:   cfg.DownloadWorkers,
		maxBytes:  cfg.FetchMaxBytes,
		keywords:  cfg.ImageKeywords,
		theme:     cfg.Theme,
		stockURL:  defaultStockURL,
		fillerURL: defaultFillerURL,
	}
}

// Fetch returns count backgrounds, in slot order, plus how many slots fell
// back to a generated image. It never returns an error.
func (a *Acquirer) Fetch(count int) ([]image.Image, int) {
	if count <= 0 {
		return nil, 0
	}

	candidates := a.candidates(count)
	images := make([]image.Image, count)
	var fallbacks int32

	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			img, err := a.download(candidates[slot])
			if err != nil {
				log.Printf("background %d: %v, using generated image", slot, err)
				img = Generate(a.theme, int(atomic.AddInt32(&a.variant, 1)))
				atomic.AddInt32(&fallbacks, 1)
			}
			images[slot] = img
		}(i)
	}
	wg.Wait()

	return images, int(fallbacks)
}

// themeKeywords seeds the stock pool when no IMAGE_KEYWORDS are configured.
var themeKeywords = map[string][]string{
	"crypto": {"cryptocurrency", "finance", "money", "city"},
	"sports": {"stadium", "sports", "athletes", "crowd"},
	"news":   {"city", "skyline", "newspaper", "crowd"},
}

// candidates mixes two pools into one URL per slot: keyword-conditioned stock
// photos (configured keywords, or the theme defaults) and unconditioned
// filler. The combined set is shuffled so stock and filler slots interleave
// differently on every call.
func (a *Acquirer) candidates(count int) []string {
	keywords := a.keywords
	if len(keywords) == 0 {
		keywords = themeKeywords[a.theme]
	}
	if len(keywords) == 0 {
		keywords = themeKeywords["news"]
	}
	picked := append([]string(nil), keywords...)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	urls := make([]string, count)
	for i := 0; i < count; i++ {
		if i < len(picked) {
			urls[i] = fmt.Sprintf(a.stockURL, config.FrameWidth, config.FrameHeight, url.PathEscape(picked[i]))
			continue
		}
		urls[i] = fmt.Sprintf(a.fillerURL, config.FrameWidth, config.FrameHeight, time.Now().UnixNano()+int64(i))
	}
	rand.Shuffle(len(urls), func(i, j int) {
		urls[i], urls[j] = urls[j], urls[i]
	})
	return urls
}

// download fetches one image to a temp file, decodes it, and removes the
// temp file before returning on every path.
func (a *Acquirer) download(rawURL string) (image.Image, error) {
	resp, err := a.client.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > a.maxBytes {
		return nil, fmt.Errorf("fetch %s: %d bytes exceeds limit", rawURL, resp.ContentLength)
	}

	tmp, err := os.CreateTemp("", "bg_*.img")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	// Read one byte past the limit so an oversized body is detectable even
	// when Content-Length is absent.
	n, err := io.Copy(tmp, io.LimitReader(resp.Body, a.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	if n > a.maxBytes {
		return nil, fmt.Errorf("download %s: body exceeds %d bytes", rawURL, a.maxBytes)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind temp file: %w", err)
	}
	img, _, err := image.Decode(tmp)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return img, nil
}
