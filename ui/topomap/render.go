// Package topomap renders topographic sensor-array field maps: sensor
// positions flattened to a disc, values interpolated between them, drawn
// with a diverging colormap and a head outline.
package topomap

import (
	"image"
	"image/color"
	"math"

	"dipole-explorer/internal/sensors"
	"dipole-explorer/pkg/geometry"
)

// projectAzimuthal flattens a 3-D sensor position onto the unit disc:
// the vertex (top of the head) maps to the center, the equator to the
// rim. Standard azimuthal equidistant projection.
func projectAzimuthal(p geometry.Vec3) geometry.Point2D {
	n := p.Norm()
	if n < 1e-12 {
		return geometry.Point2D{}
	}
	elevation := math.Asin(p.Z / n)
	r := (math.Pi/2 - elevation) / (math.Pi / 2)
	if r > 1 {
		r = 1
	}
	azimuth := math.Atan2(p.Y, p.X)
	return geometry.NewPoint2D(r*math.Cos(azimuth), r*math.Sin(azimuth))
}

// interpolate estimates the field at a disc point by inverse-distance
// weighting over the projected sensors.
func interpolate(at geometry.Point2D, proj []geometry.Point2D, values []float64) float64 {
	var num, den float64
	for i := range values {
		d := at.Distance(proj[i])
		if d < 1e-5 {
			return values[i]
		}
		w := 1 / (d * d)
		num += w * values[i]
		den += w
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// divergingColor maps a normalized value in [-1, 1] to a blue-white-red
// gradient.
func divergingColor(v float64) color.RGBA {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	if v >= 0 {
		c := uint8(255 * (1 - v))
		return color.RGBA{R: 255, G: c, B: c, A: 255}
	}
	c := uint8(255 * (1 + v))
	return color.RGBA{R: c, G: c, B: 255, A: 255}
}

var outlineColor = color.RGBA{A: 255}

// Render draws the topomap for a set of channels and their values into
// a square image.
func Render(channels []sensors.Channel, values []float64, size int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	if size < 4 || len(channels) == 0 || len(channels) != len(values) {
		return out
	}

	proj := make([]geometry.Point2D, len(channels))
	for i, ch := range channels {
		proj[i] = projectAzimuthal(ch.Pos)
	}

	maxAbs := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	// Head disc, leaving margin for the nose.
	center := float64(size) / 2
	radius := float64(size) * 0.42

	for yPix := 0; yPix < size; yPix++ {
		for xPix := 0; xPix < size; xPix++ {
			// Disc coordinates: x right, y toward the nose (up).
			dx := (float64(xPix) - center) / radius
			dy := (center - float64(yPix)) / radius
			if dx*dx+dy*dy > 1 {
				continue
			}
			// Anatomical x is rightward, y toward the nose; the disc's
			// vertical is anatomical y.
			v := interpolate(geometry.NewPoint2D(dy, -dx), proj, values)
			out.SetRGBA(xPix, yPix, divergingColor(v/maxAbs))
		}
	}

	drawHeadOutline(out, center, radius)
	for i := range channels {
		// Same disc orientation as the interpolation above.
		xPix := int(center - proj[i].Y*radius)
		yPix := int(center - proj[i].X*radius)
		drawDot(out, xPix, yPix)
	}

	return out
}

func drawHeadOutline(out *image.RGBA, center, radius float64) {
	steps := int(2 * math.Pi * radius)
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := int(center + radius*math.Cos(a))
		y := int(center + radius*math.Sin(a))
		setPixel(out, x, y, outlineColor)
	}

	// Nose: small wedge at the top.
	noseHalf := radius * 0.1
	tipY := center - radius*1.12
	baseY := center - radius*0.99
	for t := 0.0; t <= 1; t += 0.02 {
		y := int(tipY + (baseY-tipY)*t)
		setPixel(out, int(center-noseHalf*t), y, outlineColor)
		setPixel(out, int(center+noseHalf*t), y, outlineColor)
	}
}

func drawDot(out *image.RGBA, x, y int) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			setPixel(out, x+dx, y+dy, outlineColor)
		}
	}
}

func setPixel(out *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(out.Bounds()) {
		out.SetRGBA(x, y, col)
	}
}
