package mri

import (
	"dipole-explorer/internal/transform"
	"dipole-explorer/pkg/geometry"
)

// Phantom dimensions in mm, roughly an adult head.
const (
	phantomExtent  = 90.0
	phantomSpacing = 2.0
)

// SyntheticHead generates a simple head phantom: a bright skull shell
// around an ellipsoidal brain with a darker ventricle region. It stands
// in for the subject T1 image when no volume file is configured, so the
// tool (and its tests) run without subject data.
func SyntheticHead() *Volume {
	n := int(2*phantomExtent/phantomSpacing) + 1

	affine := transform.FromMatrix([4][4]float64{
		{phantomSpacing, 0, 0, -phantomExtent},
		{0, phantomSpacing, 0, -phantomExtent},
		{0, 0, phantomSpacing, -phantomExtent},
		{0, 0, 0, 1},
	})

	data := make([]float32, n*n*n)
	idx := 0
	for k := 0; k < n; k++ {
		z := -phantomExtent + float64(k)*phantomSpacing
		for j := 0; j < n; j++ {
			y := -phantomExtent + float64(j)*phantomSpacing
			for i := 0; i < n; i++ {
				x := -phantomExtent + float64(i)*phantomSpacing
				data[idx] = phantomValue(geometry.NewVec3(x, y, z))
				idx++
			}
		}
	}

	vol, err := NewVolume(n, n, n, data, affine)
	if err != nil {
		// The phantom is built from constants; a failure here is a bug.
		panic(err)
	}
	return vol
}

func phantomValue(p geometry.Vec3) float32 {
	// Ellipsoid radii: slightly longer front-to-back, shorter top offset.
	r := ellipsoidRadius(p, 75, 85, 70)

	switch {
	case r > 1.05:
		return 0 // outside the head
	case r > 0.92:
		return 255 // skull shell
	case r > 0.88:
		return 40 // CSF gap
	default:
		// Brain interior with a darker central ventricle.
		vr := ellipsoidRadius(p.Sub(geometry.NewVec3(0, -10, 10)), 15, 25, 12)
		if vr < 1 {
			return 60
		}
		return 140
	}
}

func ellipsoidRadius(p geometry.Vec3, rx, ry, rz float64) float64 {
	nx := p.X / rx
	ny := p.Y / ry
	nz := p.Z / rz
	return geometry.NewVec3(nx, ny, nz).Norm()
}
