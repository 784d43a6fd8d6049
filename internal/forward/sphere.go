// Package forward computes predicted sensor measurements for a current
// dipole: an exact spherical-conductor solution and a precomputed grid
// lookup table for fast approximate evaluation.
package forward

import (
	"math"

	"dipole-explorer/internal/sensors"
	"dipole-explorer/pkg/geometry"
)

const (
	mu0 = 4 * math.Pi * 1e-7

	// gradBaseline is the planar gradiometer baseline in meters.
	gradBaseline = 0.0168
)

// SphereModel evaluates dipole fields in a spherically symmetric
// conductor centered on the head-frame origin. All positions are
// head-frame meters.
type SphereModel struct {
	// Conductivity in S/m, used for the EEG potential.
	Conductivity float64
}

// BField returns the magnetic field at sensor position r for a dipole at
// r0 with moment q (A·m), using the Sarvas formula. The field of a
// radial dipole vanishes outside a spherical conductor; near-singular
// geometries return the zero vector.
func (m SphereModel) BField(r, r0, q geometry.Vec3) geometry.Vec3 {
	a := r.Sub(r0)
	na := a.Norm()
	nr := r.Norm()
	if na < 1e-9 || nr < 1e-9 {
		return geometry.Vec3{}
	}

	f := na * (nr*na + nr*nr - r0.Dot(r))
	if math.Abs(f) < 1e-24 {
		return geometry.Vec3{}
	}

	adotr := a.Dot(r)
	gradF := r.Scale(na*na/nr + adotr/na + 2*na + 2*nr).
		Sub(r0.Scale(na + 2*nr + adotr/na))

	qxr0 := q.Cross(r0)
	b := qxr0.Scale(f).Sub(gradF.Scale(qxr0.Dot(r)))
	return b.Scale(mu0 / (4 * math.Pi * f * f))
}

// Potential returns the electric potential at r for a dipole at r0 with
// moment q, using the homogeneous-medium approximation.
func (m SphereModel) Potential(r, r0, q geometry.Vec3) float64 {
	sigma := m.Conductivity
	if sigma <= 0 {
		sigma = 0.3
	}
	a := r.Sub(r0)
	na := a.Norm()
	if na < 1e-9 {
		return 0
	}
	return q.Dot(a) / (4 * math.Pi * sigma * na * na * na)
}

// ChannelValue returns the measurement of one channel for a dipole at r0
// with moment q.
func (m SphereModel) ChannelValue(ch sensors.Channel, r0, q geometry.Vec3) float64 {
	switch ch.Kind {
	case sensors.Mag:
		return m.BField(ch.Pos, r0, q).Dot(ch.Ori.Normalize())

	case sensors.Grad:
		// Finite difference of the radial field along the gradiometer
		// baseline direction.
		radial := ch.Pos.Normalize()
		t := ch.Ori.Normalize().Scale(gradBaseline / 2)
		plus := m.BField(ch.Pos.Add(t), r0, q).Dot(radial)
		minus := m.BField(ch.Pos.Sub(t), r0, q).Dot(radial)
		return (plus - minus) / gradBaseline

	case sensors.EEG:
		return m.Potential(ch.Pos, r0, q)
	}
	return 0
}

// Leadfield returns the 3-column leadfield of one channel at a dipole
// position: the measurement for unit moments along x, y, and z. The
// measurement for any moment q is the dot product of the row with q.
func (m SphereModel) Leadfield(ch sensors.Channel, r0 geometry.Vec3) [3]float64 {
	return [3]float64{
		m.ChannelValue(ch, r0, geometry.NewVec3(1, 0, 0)),
		m.ChannelValue(ch, r0, geometry.NewVec3(0, 1, 0)),
		m.ChannelValue(ch, r0, geometry.NewVec3(0, 0, 1)),
	}
}

// LeadfieldMatrix computes leadfield rows for every channel of a layout.
func (m SphereModel) LeadfieldMatrix(layout *sensors.Layout, r0 geometry.Vec3) [][3]float64 {
	out := make([][3]float64, len(layout.Channels))
	for i, ch := range layout.Channels {
		out[i] = m.Leadfield(ch, r0)
	}
	return out
}
