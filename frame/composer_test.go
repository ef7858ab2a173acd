package frame

import (
	"image"
	"strings"
	"testing"

	"briefcast/config"
)

func testComposer(t *testing.T) *Composer {
	t.Helper()
	cfg := config.FromEnv()
	c, err := NewComposer(cfg, nil)
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return c
}

func TestComposeDimensions(t *testing.T) {
	c := testComposer(t)
	bg := image.NewRGBA(image.Rect(0, 0, 640, 480))

	out := c.Compose(bg, "a caption", "Header", "ticker text")
	b := out.Bounds()
	if b.Dx() != config.FrameWidth || b.Dy() != config.FrameHeight {
		t.Fatalf("composed frame is %dx%d; want %dx%d", b.Dx(), b.Dy(), config.FrameWidth, config.FrameHeight)
	}
}

func TestCoverFit(t *testing.T) {
	cases := []struct {
		name   string
		sw, sh int
	}{
		{"landscape source", 1920, 1080},
		{"portrait source", 600, 1200},
		{"square source", 500, 500},
		{"tiny source", 10, 10},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, c.sw, c.sh))
			out := coverFit(src, 1080, 1920)
			b := out.Bounds()
			if b.Dx() != 1080 || b.Dy() != 1920 {
				t.Fatalf("coverFit produced %dx%d; want 1080x1920", b.Dx(), b.Dy())
			}
		})
	}
}

func TestCoverFitEmptySource(t *testing.T) {
	out := coverFit(image.NewRGBA(image.Rect(0, 0, 0, 0)), 100, 200)
	b := out.Bounds()
	if b.Dx() != 100 || b.Dy() != 200 {
		t.Fatalf("coverFit on empty source produced %dx%d; want 100x200", b.Dx(), b.Dy())
	}
}

func TestWrapLinesRespectsCap(t *testing.T) {
	face, err := loadFace(64)
	if err != nil {
		t.Fatalf("loadFace: %v", err)
	}

	long := strings.Repeat("word ", 60)
	lines := wrapLines(face, long, 900, config.MaxCaptionLines)
	if len(lines) > config.MaxCaptionLines {
		t.Fatalf("wrapLines produced %d lines; cap is %d", len(lines), config.MaxCaptionLines)
	}
	if !strings.HasSuffix(lines[len(lines)-1], "…") {
		t.Fatalf("truncated wrap should end in an ellipsis, got %q", lines[len(lines)-1])
	}
}

func TestWrapLinesShortTextSingleLine(t *testing.T) {
	face, err := loadFace(64)
	if err != nil {
		t.Fatalf("loadFace: %v", err)
	}

	lines := wrapLines(face, "short", 900, 3)
	if len(lines) != 1 || lines[0] != "short" {
		t.Fatalf("wrapLines = %v; want [short]", lines)
	}
}

func TestWrapLinesEmpty(t *testing.T) {
	face, err := loadFace(64)
	if err != nil {
		t.Fatalf("loadFace: %v", err)
	}
	if lines := wrapLines(face, "   ", 900, 3); lines != nil {
		t.Fatalf("wrapLines on blank text = %v; want nil", lines)
	}
}

func TestRenderBadgeInitials(t *testing.T) {
	badge := renderBadge(nil, "DB", 160)
	b := badge.Bounds()
	if b.Dx() != 160 || b.Dy() != 160 {
		t.Fatalf("badge is %dx%d; want 160x160", b.Dx(), b.Dy())
	}

	// Corners stay transparent outside the circle.
	if _, _, _, a := badge.At(0, 0).RGBA(); a != 0 {
		t.Fatalf("badge corner alpha %d; want 0", a)
	}
	// Center is opaque disc.
	if _, _, _, a := badge.At(80, 80).RGBA(); a == 0 {
		t.Fatal("badge center is transparent")
	}
}
