package topomap

import (
	"image/color"
	"math"
	"testing"

	"dipole-explorer/internal/sensors"
	"dipole-explorer/pkg/geometry"
)

func TestProjectAzimuthal(t *testing.T) {
	// Vertex maps to the center.
	p := projectAzimuthal(geometry.NewVec3(0, 0, 0.1))
	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y) > 1e-9 {
		t.Errorf("vertex projects to %v, want origin", p)
	}

	// A point on the equator maps to the rim.
	p = projectAzimuthal(geometry.NewVec3(0.1, 0, 0))
	if math.Abs(math.Hypot(p.X, p.Y)-1) > 1e-9 {
		t.Errorf("equator projects to radius %v, want 1", math.Hypot(p.X, p.Y))
	}
	if p.X < 0.99 {
		t.Errorf("front equator point should project along +x, got %v", p)
	}
}

func TestInterpolateExactAtSensor(t *testing.T) {
	proj := []geometry.Point2D{
		geometry.NewPoint2D(0, 0),
		geometry.NewPoint2D(1, 0),
	}
	vals := []float64{3, -3}

	if got := interpolate(proj[0], proj, vals); got != 3 {
		t.Errorf("at sensor 0: %v, want 3", got)
	}
	mid := interpolate(geometry.NewPoint2D(0.5, 0), proj, vals)
	if math.Abs(mid) > 1e-9 {
		t.Errorf("midpoint between opposite values = %v, want 0", mid)
	}
}

func TestDivergingColorEndpoints(t *testing.T) {
	if c := divergingColor(1); c != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("+1 = %v, want pure red", c)
	}
	if c := divergingColor(-1); c != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("-1 = %v, want pure blue", c)
	}
	if c := divergingColor(0); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("0 = %v, want white", c)
	}
	// Out-of-range values clamp instead of wrapping.
	if c := divergingColor(3); c != divergingColor(1) {
		t.Error("values above 1 should clamp")
	}
}

func TestRenderDipolarPattern(t *testing.T) {
	layout := sensors.SyntheticLayout()
	mags := layout.ByKind(sensors.Mag)

	// Sign follows anatomical y: left/right antisymmetry.
	vals := make([]float64, len(mags))
	for i, ch := range mags {
		vals[i] = ch.Pos.Y
	}

	img := Render(mags, vals, 100)

	// Somewhere inside the disc both polarities must appear.
	var sawRed, sawBlue bool
	for y := 20; y < 80; y++ {
		for x := 20; x < 80; x++ {
			c := img.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			if c.R == 255 && c.G < 200 {
				sawRed = true
			}
			if c.B == 255 && c.G < 200 {
				sawBlue = true
			}
		}
	}
	if !sawRed || !sawBlue {
		t.Errorf("dipolar pattern missing polarity: red=%v blue=%v", sawRed, sawBlue)
	}
}

func TestRenderDegenerateInputs(t *testing.T) {
	// None of these may panic.
	Render(nil, nil, 50)
	Render(sensors.SyntheticLayout().ByKind(sensors.EEG), nil, 50)
	layout := sensors.SyntheticLayout()
	eeg := layout.ByKind(sensors.EEG)
	Render(eeg, make([]float64, len(eeg)), 2)
	Render(eeg, make([]float64, len(eeg)), 50) // all-zero values
}
