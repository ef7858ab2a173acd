// Package frame composes the still image behind each slide: a cover-fitted
// background, translucent header and ticker bands, a word-wrapped caption,
// and an optional presenter badge.
package frame

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"briefcast/config"
)

// Composer renders slide frames at a fixed geometry. Build one per run and
// reuse it for every slide; face construction is the expensive part.
type Composer struct {
	width   int
	height  int
	tickerH int

	captionFace font.Face
	headerFace  font.Face
	tickerFace  font.Face

	badge    *image.RGBA
	badgePos string
}

// NewComposer loads the render faces and prepares the optional badge.
// badgePhoto may be nil; with BadgeSize unset no badge is drawn at all.
func NewComposer(cfg config.Config, badgePhoto image.Image) (*Composer, error) {
	captionFace, err := loadFace(64)
	if err != nil {
		return nil, fmt.Errorf("caption face: %w", err)
	}
	headerFace, err := loadFace(44)
	if err != nil {
		return nil, fmt.Errorf("header face: %w", err)
	}
	tickerFace, err := loadFace(36)
	if err != nil {
		return nil, fmt.Errorf("ticker face: %w", err)
	}

	c := &Composer{
		width:       config.FrameWidth,
		height:      config.FrameHeight,
		tickerH:     cfg.TickerHeight,
		captionFace: captionFace,
		headerFace:  headerFace,
		tickerFace:  tickerFace,
		badgePos:    cfg.BadgePosition,
	}
	if cfg.BadgeSize > 0 {
		c.badge = renderBadge(badgePhoto, cfg.BadgeInitials, cfg.BadgeSize)
	}
	return c, nil
}

// Compose renders one slide frame. header and ticker may be empty, in which
// case their bands are skipped entirely.
func (c *Composer) Compose(bg image.Image, caption, header, ticker string) *image.RGBA {
	canvas := coverFit(bg, c.width, c.height)

	if header != "" {
		c.drawHeader(canvas, header)
	}
	if ticker != "" {
		c.drawTicker(canvas, ticker)
	}
	if caption != "" {
		c.drawCaption(canvas, caption)
	}
	if c.badge != nil {
		c.drawBadge(canvas)
	}
	return canvas
}

// coverFit scales src to fill w x h preserving aspect ratio, cropping the
// overflow evenly on both sides.
func coverFit(src image.Image, w, h int) *image.RGBA {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}

	scale := float64(w) / float64(sw)
	if s := float64(h) / float64(sh); s > scale {
		scale = s
	}
	dw := int(float64(sw)*scale + 0.5)
	dh := int(float64(sh)*scale + 0.5)

	scaled := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, sb, xdraw.Over, nil)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	offset := image.Pt((dw-w)/2, (dh-h)/2)
	xdraw.Draw(out, out.Bounds(), scaled, offset, xdraw.Src)
	return out
}

func (c *Composer) drawHeader(canvas *image.RGBA, header string) {
	band := image.Rect(0, 0, c.width, config.HeaderBandHeight)
	fillBand(canvas, band)

	lines := wrapLines(c.headerFace, header, c.width-2*config.CaptionMargin, 2)
	y := (config.HeaderBandHeight-len(lines)*lineHeight(c.headerFace))/2 + c.headerFace.Metrics().Ascent.Ceil()
	for _, line := range lines {
		x := (c.width - textWidth(c.headerFace, line)) / 2
		drawOutlined(canvas, c.headerFace, line, x, y, color.White)
		y += lineHeight(c.headerFace)
	}
}

func (c *Composer) drawTicker(canvas *image.RGBA, ticker string) {
	band := image.Rect(0, c.height-c.tickerH, c.width, c.height)
	fillBand(canvas, band)

	lines := wrapLines(c.tickerFace, ticker, c.width-2*config.CaptionMargin, 1)
	if len(lines) == 0 {
		return
	}
	y := c.height - c.tickerH/2 + c.tickerFace.Metrics().Ascent.Ceil()/2
	x := (c.width - textWidth(c.tickerFace, lines[0])) / 2
	drawOutlined(canvas, c.tickerFace, lines[0], x, y, color.RGBA{240, 220, 120, 255})
}

// drawCaption centers the wrapped caption in the lower third, above the
// ticker band.
func (c *Composer) drawCaption(canvas *image.RGBA, caption string) {
	lines := wrapLines(c.captionFace, caption, c.width-2*config.CaptionMargin, config.MaxCaptionLines)
	if len(lines) == 0 {
		return
	}

	block := len(lines) * lineHeight(c.captionFace)
	bottom := c.height - c.tickerH - 120
	y := bottom - block + c.captionFace.Metrics().Ascent.Ceil()
	for _, line := range lines {
		x := (c.width - textWidth(c.captionFace, line)) / 2
		drawOutlined(canvas, c.captionFace, line, x, y, color.White)
		y += lineHeight(c.captionFace)
	}
}

func (c *Composer) drawBadge(canvas *image.RGBA) {
	d := c.badge.Bounds().Dx()
	margin := 40
	var origin image.Point
	switch c.badgePos {
	case "top-left":
		origin = image.Pt(margin, config.HeaderBandHeight+margin)
	case "bottom-left":
		origin = image.Pt(margin, c.height-c.tickerH-d-margin)
	case "bottom-right":
		origin = image.Pt(c.width-d-margin, c.height-c.tickerH-d-margin)
	default:
		origin = image.Pt(c.width-d-margin, config.HeaderBandHeight+margin)
	}
	rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(d, d))}
	xdraw.Draw(canvas, rect, c.badge, image.Point{}, xdraw.Over)
}

// fillBand darkens a rectangle with a translucent overlay.
func fillBand(canvas *image.RGBA, band image.Rectangle) {
	overlay := image.NewUniform(color.RGBA{0, 0, 0, 150})
	xdraw.Draw(canvas, band, overlay, image.Point{}, xdraw.Over)
}
