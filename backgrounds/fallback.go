// Package backgrounds supplies one image per slide: remote stock photos when
// the network cooperates, procedurally generated gradients when it does not.
// Acquisition never fails; the worst case is a full set of generated images.
package backgrounds

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"briefcast/config"
)

// palette is a top/bottom gradient pair for one content theme.
type palette struct {
	top    color.RGBA
	bottom color.RGBA
}

var themePalettes = map[string]palette{
	"crypto": {color.RGBA{8, 20, 16, 255}, color.RGBA{0, 130, 80, 255}},
	"sports": {color.RGBA{10, 18, 40, 255}, color.RGBA{0, 120, 200, 255}},
	"news":   {color.RGBA{20, 20, 35, 255}, color.RGBA{130, 0, 0, 255}},
}

// Generate renders a procedural background for the given theme. The variant
// seed perturbs the palette and highlight placement so consecutive fallback
// slides do not look identical.
func Generate(theme string, variant int) *image.RGBA {
	p, ok := themePalettes[theme]
	if !ok {
		p = themePalettes["news"]
	}

	rng := rand.New(rand.NewSource(int64(variant)*7919 + 31))
	p = perturb(p, rng)

	w, h := config.FrameWidth, config.FrameHeight
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	// Radial highlight center, kept off-center for a bit of life.
	hx := float64(w) * (0.3 + 0.4*rng.Float64())
	hy := float64(h) * (0.2 + 0.3*rng.Float64())
	radius := float64(h) * 0.55

	for y := 0; y < h; y++ {
		t := float64(y) / float64(h-1)
		r := lerp(float64(p.top.R), float64(p.bottom.R), t)
		g := lerp(float64(p.top.G), float64(p.bottom.G), t)
		b := lerp(float64(p.top.B), float64(p.bottom.B), t)
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-hx, float64(y)-hy
			dist := math.Sqrt(dx*dx + dy*dy)
			glow := 0.0
			if dist < radius {
				glow = 38 * (1 - dist/radius)
			}
			noise := rng.Float64()*10 - 5
			i := img.PixOffset(x, y)
			img.Pix[i] = clamp8(r + glow + noise)
			img.Pix[i+1] = clamp8(g + glow + noise)
			img.Pix[i+2] = clamp8(b + glow + noise)
			img.Pix[i+3] = 255
		}
	}

	boxBlur(img)
	return img
}

// perturb nudges each channel by up to ±18 so variants differ visibly.
func perturb(p palette, rng *rand.Rand) palette {
	jitter := func(c color.RGBA) color.RGBA {
		n := func(v uint8) uint8 {
			return clamp8(float64(v) + rng.Float64()*36 - 18)
		}
		return color.RGBA{n(c.R), n(c.G), n(c.B), 255}
	}
	return palette{top: jitter(p.top), bottom: jitter(p.bottom)}
}

// boxBlur softens the per-pixel noise with a single 3x1 horizontal pass.
// A full kernel is overkill for a background that sits behind text.
func boxBlur(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			i := img.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				sum := int(img.Pix[i-4+c]) + int(img.Pix[i+c]) + int(img.Pix[i+4+c])
				img.Pix[i+c] = uint8(sum / 3)
			}
		}
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
