// Package mri provides the MRI volume model: voxel data with a
// voxel-to-RAS affine, trilinear sampling in anatomical coordinates, and
// rendering of orthogonal slices for display.
package mri

import (
	"fmt"
	"image"
	"image/color"

	"dipole-explorer/internal/transform"
	"dipole-explorer/pkg/geometry"
)

// Volume holds a scalar MRI volume. Sampling is done in anatomical RAS
// millimeter coordinates through the inverse voxel affine, so the stored
// voxel order never needs to be reorganized to a canonical layout.
type Volume struct {
	Nx, Ny, Nz int

	data []float32

	// affine maps voxel indices (i, j, k) to RAS mm.
	affine *transform.Transform
	inv    *transform.Transform

	minVal, maxVal float32
}

// NewVolume creates a volume from voxel data in k-major order
// (index = i + Nx*(j + Ny*k)) and a voxel-to-RAS affine.
func NewVolume(nx, ny, nz int, data []float32, affine *transform.Transform) (*Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%dx%d", nx, ny, nz)
	}
	if len(data) != nx*ny*nz {
		return nil, fmt.Errorf("data length %d does not match %dx%dx%d", len(data), nx, ny, nz)
	}
	if affine == nil {
		affine = transform.Identity()
	}
	inv, err := affine.Inverse()
	if err != nil {
		return nil, fmt.Errorf("voxel affine: %w", err)
	}

	v := &Volume{Nx: nx, Ny: ny, Nz: nz, data: data, affine: affine, inv: inv}
	v.minVal, v.maxVal = data[0], data[0]
	for _, s := range data {
		if s < v.minVal {
			v.minVal = s
		}
		if s > v.maxVal {
			v.maxVal = s
		}
	}
	return v, nil
}

// At returns the voxel value at integer indices, or 0 outside the grid.
func (v *Volume) At(i, j, k int) float32 {
	if i < 0 || j < 0 || k < 0 || i >= v.Nx || j >= v.Ny || k >= v.Nz {
		return 0
	}
	return v.data[i+v.Nx*(j+v.Ny*k)]
}

// IntensityRange returns the minimum and maximum voxel values.
func (v *Volume) IntensityRange() (float32, float32) {
	return v.minVal, v.maxVal
}

// Affine returns the voxel-to-RAS transform.
func (v *Volume) Affine() *transform.Transform {
	return v.affine
}

// SampleRAS returns the trilinearly interpolated value at an RAS mm
// position. Positions outside the volume sample as 0.
func (v *Volume) SampleRAS(p geometry.Vec3) float32 {
	vox := v.inv.Apply(p)

	x, y, z := vox.X, vox.Y, vox.Z
	i0, j0, k0 := int(floor(x)), int(floor(y)), int(floor(z))
	fx, fy, fz := float32(x-floor(x)), float32(y-floor(y)), float32(z-floor(z))

	var acc float32
	for di := 0; di <= 1; di++ {
		for dj := 0; dj <= 1; dj++ {
			for dk := 0; dk <= 1; dk++ {
				w := lerpWeight(fx, di) * lerpWeight(fy, dj) * lerpWeight(fz, dk)
				if w == 0 {
					continue
				}
				acc += w * v.At(i0+di, j0+dj, k0+dk)
			}
		}
	}
	return acc
}

func floor(x float64) float64 {
	f := float64(int(x))
	if x < f {
		f--
	}
	return f
}

func lerpWeight(f float32, d int) float32 {
	if d == 1 {
		return f
	}
	return 1 - f
}

// SliceExtent describes the anatomical extent of a rendered slice: the
// horizontal and vertical in-plane ranges in mm. The vertical axis is
// drawn bottom-up (mm increase upward), matching anatomical convention.
type SliceExtent struct {
	HMin, HMax float64
	VMin, VMax float64
}

// RenderSlice renders the plane normal to axis at position pos (mm) into
// a grayscale image of the given pixel size. Intensities are windowed to
// the volume's full range.
func (v *Volume) RenderSlice(axis geometry.Axis, pos float64, ext SliceExtent, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	if w < 2 || h < 2 {
		return img
	}
	hAxis, vAxis := axis.InPlane()

	span := float64(v.maxVal - v.minVal)
	if span == 0 {
		span = 1
	}

	for py := 0; py < h; py++ {
		// Top pixel row is VMax.
		vmm := ext.VMax - (ext.VMax-ext.VMin)*float64(py)/float64(h-1)
		for px := 0; px < w; px++ {
			hmm := ext.HMin + (ext.HMax-ext.HMin)*float64(px)/float64(w-1)

			var p geometry.Vec3
			p = p.WithComponent(axis, pos)
			p = p.WithComponent(hAxis, hmm)
			p = p.WithComponent(vAxis, vmm)

			val := v.SampleRAS(p)
			// Out-of-volume samples read 0, which falls below the window
			// when every voxel is brighter.
			scaled := (float64(val-v.minVal) / span) * 255
			if scaled < 0 {
				scaled = 0
			} else if scaled > 255 {
				scaled = 255
			}
			img.SetGray(px, py, color.Gray{Y: uint8(scaled)})
		}
	}
	return img
}
