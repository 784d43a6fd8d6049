// Package transform provides 4x4 homogeneous coordinate transforms between
// the anatomical (RAS, millimeter) frame and the sensor head (meter) frame.
package transform

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"dipole-explorer/pkg/geometry"
)

// Transform is a 4x4 homogeneous transformation matrix.
type Transform struct {
	m *mat.Dense
}

// Identity returns the identity transform.
func Identity() *Transform {
	return &Transform{m: eye()}
}

func eye() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// FromMatrix creates a Transform from a row-major 4x4 array.
func FromMatrix(rows [4][4]float64) *Transform {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m.Set(i, j, rows[i][j])
		}
	}
	return &Transform{m: m}
}

// Translation returns a pure translation transform.
func Translation(t geometry.Vec3) *Transform {
	tr := Identity()
	tr.m.Set(0, 3, t.X)
	tr.m.Set(1, 3, t.Y)
	tr.m.Set(2, 3, t.Z)
	return tr
}

// Scaling returns a uniform scaling transform.
func Scaling(s float64) *Transform {
	tr := Identity()
	tr.m.Set(0, 0, s)
	tr.m.Set(1, 1, s)
	tr.m.Set(2, 2, s)
	return tr
}

// Apply transforms a point.
func (t *Transform) Apply(p geometry.Vec3) geometry.Vec3 {
	in := mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1})
	var out mat.VecDense
	out.MulVec(t.m, in)
	w := out.AtVec(3)
	if w == 0 {
		w = 1
	}
	return geometry.Vec3{
		X: out.AtVec(0) / w,
		Y: out.AtVec(1) / w,
		Z: out.AtVec(2) / w,
	}
}

// ApplyDirection transforms a direction vector, ignoring translation.
func (t *Transform) ApplyDirection(v geometry.Vec3) geometry.Vec3 {
	var out geometry.Vec3
	out.X = t.m.At(0, 0)*v.X + t.m.At(0, 1)*v.Y + t.m.At(0, 2)*v.Z
	out.Y = t.m.At(1, 0)*v.X + t.m.At(1, 1)*v.Y + t.m.At(1, 2)*v.Z
	out.Z = t.m.At(2, 0)*v.X + t.m.At(2, 1)*v.Y + t.m.At(2, 2)*v.Z
	return out
}

// Compose returns t * other, i.e. other applied first.
func (t *Transform) Compose(other *Transform) *Transform {
	out := mat.NewDense(4, 4, nil)
	out.Mul(t.m, other.m)
	return &Transform{m: out}
}

// Inverse returns the inverse transform.
func (t *Transform) Inverse() (*Transform, error) {
	out := mat.NewDense(4, 4, nil)
	if err := out.Inverse(t.m); err != nil {
		return nil, fmt.Errorf("transform is singular: %w", err)
	}
	return &Transform{m: out}, nil
}

// At returns the matrix element at (i, j).
func (t *Transform) At(i, j int) float64 {
	return t.m.At(i, j)
}

// GenRASToHead builds the transform from anatomical RAS millimeters to the
// head frame in meters. headToRAS maps head-frame meters to RAS
// millimeters; when nil, only the unit conversion is applied.
func GenRASToHead(headToRAS *Transform) (*Transform, error) {
	if headToRAS == nil {
		return Scaling(0.001), nil
	}
	inv, err := headToRAS.Inverse()
	if err != nil {
		return nil, fmt.Errorf("inverting head-to-RAS transform: %w", err)
	}
	return inv, nil
}
