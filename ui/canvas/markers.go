// Package canvas provides the MRI slice views and their dipole glyphs.
package canvas

import (
	"image"
	"image/color"
	"math"

	"dipole-explorer/pkg/geometry"
)

var (
	posColor       = color.RGBA{R: 80, G: 220, B: 80, A: 255}
	oriColor       = color.RGBA{R: 80, G: 170, B: 255, A: 255}
	arrowColor     = color.RGBA{R: 255, G: 210, B: 60, A: 255}
	crosshairColor = color.RGBA{R: 255, G: 80, B: 80, A: 160}
)

// MarkerSet holds the dipole glyphs drawn over a slice: a cross at the
// position, a circle at the orientation point, and an arrow between them
// once both exist. Glyphs are projected onto every slice plane.
type MarkerSet struct {
	Pos *geometry.Vec3
	Ori *geometry.Vec3
}

// Clear drops both glyphs.
func (m *MarkerSet) Clear() {
	m.Pos = nil
	m.Ori = nil
}

// Draw renders the glyphs onto a slice image. project maps in-plane mm
// to pixel coordinates; hAxis and vAxis are the plane's axes.
func (m *MarkerSet) Draw(out *image.RGBA, hAxis, vAxis geometry.Axis, project func(h, v float64) (int, int)) {
	if m.Pos == nil && m.Ori == nil {
		return
	}

	var px, py, ox, oy int
	if m.Pos != nil {
		px, py = project(m.Pos.Component(hAxis), m.Pos.Component(vAxis))
	}
	if m.Ori != nil {
		ox, oy = project(m.Ori.Component(hAxis), m.Ori.Component(vAxis))
	}

	if m.Pos != nil && m.Ori != nil {
		drawArrow(out, px, py, ox, oy, arrowColor)
	}
	if m.Pos != nil {
		drawCross(out, px, py, 6, posColor)
	}
	if m.Ori != nil {
		drawCircle(out, ox, oy, 5, oriColor)
	}
}

func setPixel(out *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(out.Bounds()) {
		out.SetRGBA(x, y, col)
	}
}

func drawCross(out *image.RGBA, cx, cy, r int, col color.RGBA) {
	for d := -r; d <= r; d++ {
		setPixel(out, cx+d, cy+d, col)
		setPixel(out, cx+d, cy-d, col)
	}
}

func drawCircle(out *image.RGBA, cx, cy, r int, col color.RGBA) {
	// Midpoint circle.
	x, y, err := r, 0, 1-r
	for x >= y {
		setPixel(out, cx+x, cy+y, col)
		setPixel(out, cx+y, cy+x, col)
		setPixel(out, cx-y, cy+x, col)
		setPixel(out, cx-x, cy+y, col)
		setPixel(out, cx-x, cy-y, col)
		setPixel(out, cx-y, cy-x, col)
		setPixel(out, cx+y, cy-x, col)
		setPixel(out, cx+x, cy-y, col)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func drawLine(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	for {
		setPixel(out, x1, y1, col)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

// drawArrow draws a line with a head at the destination end.
func drawArrow(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	drawLine(out, x1, y1, x2, y2, col)

	angle := math.Atan2(float64(y2-y1), float64(x2-x1))
	const headLen = 8.0
	for _, spread := range []float64{math.Pi - 0.5, math.Pi + 0.5} {
		hx := x2 + int(headLen*math.Cos(angle+spread))
		hy := y2 + int(headLen*math.Sin(angle+spread))
		drawLine(out, x2, y2, hx, hy, col)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
