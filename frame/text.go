package frame

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// loadFace parses the embedded bold face at the given point size. Every
// composed frame uses the same family so output stays consistent without a
// font file on disk.
func loadFace(size float64) (font.Face, error) {
	ft, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build face: %w", err)
	}
	return face, nil
}

// textWidth measures a string in whole pixels.
func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// wrapLines greedily word-wraps text to maxWidth pixels, capped at maxLines.
// When the cap cuts text off, the final line ends in an ellipsis. Words wider
// than the line are kept whole; ffmpeg scaling tolerates slight overflow
// better than mid-word breaks read.
func wrapLines(face font.Face, text string, maxWidth, maxLines int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		if textWidth(face, candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = w
	}
	lines = append(lines, current)

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := lines[maxLines-1]
		for textWidth(face, last+"…") > maxWidth && strings.Contains(last, " ") {
			last = last[:strings.LastIndex(last, " ")]
		}
		lines[maxLines-1] = last + "…"
	}
	return lines
}

// drawOutlined renders one line with a dark outline so captions stay legible
// on bright backgrounds. x,y is the baseline origin.
func drawOutlined(dst *image.RGBA, face font.Face, line string, x, y int, fill color.Color) {
	outline := color.RGBA{0, 0, 0, 255}
	for dx := -2; dx <= 2; dx++ {
		for dy := -2; dy <= 2; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(dst, face, line, x+dx, y+dy, outline)
		}
	}
	drawString(dst, face, line, x, y, fill)
}

func drawString(dst *image.RGBA, face font.Face, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// lineHeight is the vertical advance between wrapped lines.
func lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}
