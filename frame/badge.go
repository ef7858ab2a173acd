package frame

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// circleMask is an alpha mask for circular cropping.
type circleMask struct {
	d int
}

func (m *circleMask) ColorModel() color.Model { return color.AlphaModel }
func (m *circleMask) Bounds() image.Rectangle { return image.Rect(0, 0, m.d, m.d) }
func (m *circleMask) At(x, y int) color.Color {
	r := float64(m.d) / 2
	dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
	if dx*dx+dy*dy <= r*r {
		return color.Alpha{255}
	}
	return color.Alpha{0}
}

// renderBadge produces a circular presenter badge of the given diameter.
// With a photo it is a circular crop; without one it is the presenter's
// initials on a solid disc.
func renderBadge(photo image.Image, initials string, diameter int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, diameter, diameter))
	mask := &circleMask{d: diameter}

	if photo != nil {
		square := coverFit(photo, diameter, diameter)
		xdraw.DrawMask(out, out.Bounds(), square, image.Point{}, mask, image.Point{}, xdraw.Over)
		return out
	}

	disc := image.NewUniform(color.RGBA{30, 30, 46, 255})
	xdraw.DrawMask(out, out.Bounds(), disc, image.Point{}, mask, image.Point{}, xdraw.Over)

	face, err := loadFace(float64(diameter) / 2.6)
	if err != nil {
		return out
	}
	w := textWidth(face, initials)
	x := (diameter - w) / 2
	y := diameter/2 + face.Metrics().Ascent.Ceil()/2 - 4
	drawString(out, face, initials, x, y, color.White)
	return out
}
