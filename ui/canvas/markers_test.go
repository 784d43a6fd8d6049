package canvas

import (
	"image"
	"testing"

	"dipole-explorer/pkg/geometry"
)

func testProject(img *image.RGBA) func(h, v float64) (int, int) {
	b := img.Bounds()
	// 1 px per mm, origin at center, v up.
	return func(h, v float64) (int, int) {
		return b.Dx()/2 + int(h), b.Dy()/2 - int(v)
	}
}

func countColored(img *image.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != 0 || g != 0 || bl != 0 {
				n++
			}
		}
	}
	return n
}

func TestMarkerSetEmptyDrawsNothing(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	var m MarkerSet
	m.Draw(img, geometry.AxisY, geometry.AxisZ, testProject(img))
	if countColored(img) != 0 {
		t.Error("empty marker set should draw nothing")
	}
}

func TestMarkerSetDrawsPositionCross(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	pos := geometry.NewVec3(0, 10, -5)
	m := MarkerSet{Pos: &pos}
	m.Draw(img, geometry.AxisY, geometry.AxisZ, testProject(img))

	// Cross center: h = y = 10, v = z = -5.
	if img.RGBAAt(60, 55) != posColor {
		t.Error("cross center pixel not set")
	}
}

func TestMarkerSetDrawsArrowWhenBothSet(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	pos := geometry.NewVec3(0, -20, 0)
	ori := geometry.NewVec3(0, 20, 0)
	m := MarkerSet{Pos: &pos, Ori: &ori}
	m.Draw(img, geometry.AxisY, geometry.AxisZ, testProject(img))

	// The shaft runs horizontally through the middle row.
	if img.RGBAAt(50, 50) != arrowColor {
		t.Error("arrow shaft pixel not set")
	}

	before := countColored(img)
	m.Clear()
	if m.Pos != nil || m.Ori != nil {
		t.Error("Clear did not drop the glyphs")
	}
	if before == 0 {
		t.Error("expected glyph pixels before clearing")
	}
}

func TestDrawPrimitivesClipToBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	// All of these extend past the edges; none may panic.
	drawCross(img, 0, 0, 6, posColor)
	drawCircle(img, 9, 9, 8, oriColor)
	drawLine(img, -5, -5, 20, 20, arrowColor)
	drawArrow(img, 5, 5, 30, 5, arrowColor)
}
