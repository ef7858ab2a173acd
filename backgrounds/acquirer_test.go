package backgrounds

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"briefcast/config"
)

func testAcquirer(srvURL string, maxBytes int64, keywords []string) *Acquirer {
	return &Acquirer{
		client:    &http.Client{Timeout: 2 * time.Second},
		workers:   4,
		maxBytes:  maxBytes,
		keywords:  keywords,
		theme:     "news",
		stockURL:  srvURL + "/%dx%d/%s",
		fillerURL: srvURL + "/%dx%d/filler-%d",
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFetchAllFailuresStillReturnsCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := testAcquirer(srv.URL, 1<<20, []string{"city", "money"})
	images, fallbacks := a.Fetch(5)

	if len(images) != 5 {
		t.Fatalf("Fetch returned %d images; want 5", len(images))
	}
	if fallbacks != 5 {
		t.Fatalf("fallbacks = %d; want 5", fallbacks)
	}
	for i, img := range images {
		if img == nil {
			t.Fatalf("image %d is nil", i)
		}
		b := img.Bounds()
		if b.Dx() != config.FrameWidth || b.Dy() != config.FrameHeight {
			t.Fatalf("image %d is %dx%d; want %dx%d", i, b.Dx(), b.Dy(), config.FrameWidth, config.FrameHeight)
		}
	}
}

func TestFetchDecodesDownloadedImages(t *testing.T) {
	body := pngBytes(t, 64, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	a := testAcquirer(srv.URL, 1<<20, nil)
	images, fallbacks := a.Fetch(3)

	if len(images) != 3 {
		t.Fatalf("Fetch returned %d images; want 3", len(images))
	}
	if fallbacks != 0 {
		t.Fatalf("fallbacks = %d; want 0", fallbacks)
	}
	if b := images[0].Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("downloaded image is %dx%d; want 64x64", b.Dx(), b.Dy())
	}
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	body := pngBytes(t, 64, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	a := testAcquirer(srv.URL, int64(len(body))-1, nil)
	images, fallbacks := a.Fetch(1)

	if fallbacks != 1 {
		t.Fatalf("fallbacks = %d; want 1 for oversized body", fallbacks)
	}
	if b := images[0].Bounds(); b.Dx() != config.FrameWidth {
		t.Fatalf("fallback image width %d; want %d", b.Dx(), config.FrameWidth)
	}
}

func TestCandidatesUseThemeDefaultsWithoutKeywords(t *testing.T) {
	a := testAcquirer("http://stock", 1<<20, nil)

	urls := a.candidates(len(themeKeywords["news"]))
	for i, u := range urls {
		if strings.Contains(u, "filler-") {
			t.Fatalf("candidate %d is filler %q; want a theme-keyword stock URL", i, u)
		}
	}
}

func TestCandidatesShuffleStockAndFiller(t *testing.T) {
	a := testAcquirer("http://stock", 1<<20, []string{"alpha"})

	// One keyword against five slots: without shuffling the stock URL would
	// land in slot 0 every call.
	positions := make(map[int]bool)
	for trial := 0; trial < 40; trial++ {
		for i, u := range a.candidates(5) {
			if !strings.Contains(u, "filler-") {
				positions[i] = true
			}
		}
	}
	if len(positions) < 2 {
		t.Fatalf("stock URL stuck at the same slot across 40 calls: %v", positions)
	}
}

func TestFetchZeroCount(t *testing.T) {
	a := testAcquirer("http://unused", 1<<20, nil)
	images, fallbacks := a.Fetch(0)
	if images != nil || fallbacks != 0 {
		t.Fatalf("Fetch(0) = %v, %d; want nil, 0", images, fallbacks)
	}
}

func TestGenerate(t *testing.T) {
	for _, theme := range []string{"news", "sports", "crypto", "unknown"} {
		t.Run(theme, func(t *testing.T) {
			img := Generate(theme, 0)
			b := img.Bounds()
			if b.Dx() != config.FrameWidth || b.Dy() != config.FrameHeight {
				t.Fatalf("Generate(%q) is %dx%d; want %dx%d", theme, b.Dx(), b.Dy(), config.FrameWidth, config.FrameHeight)
			}
		})
	}
}

func TestGenerateVariantsDiffer(t *testing.T) {
	a := Generate("news", 0)
	b := Generate("news", 1)

	same := true
	for y := 0; y < config.FrameHeight && same; y += 97 {
		for x := 0; x < config.FrameWidth && same; x += 97 {
			if a.RGBAAt(x, y) != (color.RGBA{}) && a.RGBAAt(x, y) != b.RGBAAt(x, y) {
				same = false
			}
		}
	}
	if same {
		t.Fatal("variant 0 and 1 are pixel-identical on the sample grid")
	}
}

func TestGenerateDeterministicPerVariant(t *testing.T) {
	a := Generate("crypto", 3)
	b := Generate("crypto", 3)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("same theme and variant produced different images")
	}
}
