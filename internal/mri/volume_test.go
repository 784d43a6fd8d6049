package mri

import (
	"math"
	"testing"

	"dipole-explorer/internal/transform"
	"dipole-explorer/pkg/geometry"
)

func TestNewVolumeValidation(t *testing.T) {
	if _, err := NewVolume(0, 1, 1, nil, nil); err == nil {
		t.Error("expected error for zero dimension")
	}
	if _, err := NewVolume(2, 2, 2, make([]float32, 7), nil); err == nil {
		t.Error("expected error for short data")
	}
}

func TestVolumeAt(t *testing.T) {
	data := make([]float32, 2*3*4)
	for i := range data {
		data[i] = float32(i)
	}
	v, err := NewVolume(2, 3, 4, data, nil)
	if err != nil {
		t.Fatal(err)
	}

	// index = i + Nx*(j + Ny*k)
	if got := v.At(1, 2, 3); got != float32(1+2*(2+3*3)) {
		t.Errorf("At(1,2,3) = %v", got)
	}
	if got := v.At(-1, 0, 0); got != 0 {
		t.Errorf("out-of-range voxel = %v, want 0", got)
	}
}

func TestSampleRASInterpolates(t *testing.T) {
	// 2x2x2 volume with value = i along x; identity affine.
	data := []float32{0, 1, 0, 1, 0, 1, 0, 1}
	v, err := NewVolume(2, 2, 2, data, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := v.SampleRAS(geometry.NewVec3(0.25, 0, 0))
	if math.Abs(float64(got)-0.25) > 1e-6 {
		t.Errorf("SampleRAS(0.25) = %v, want 0.25", got)
	}

	if got := v.SampleRAS(geometry.NewVec3(50, 50, 50)); got != 0 {
		t.Errorf("outside volume = %v, want 0", got)
	}
}

func TestSampleRASUsesAffine(t *testing.T) {
	data := []float32{0, 1, 0, 1, 0, 1, 0, 1}
	// Voxels are 10 mm apart.
	affine := transform.Scaling(10)
	v, err := NewVolume(2, 2, 2, data, affine)
	if err != nil {
		t.Fatal(err)
	}

	got := v.SampleRAS(geometry.NewVec3(5, 0, 0))
	if math.Abs(float64(got)-0.5) > 1e-6 {
		t.Errorf("SampleRAS(5mm) = %v, want 0.5", got)
	}
}

func TestRenderSliceOrientation(t *testing.T) {
	v := SyntheticHead()
	ext := SliceExtent{HMin: -70, HMax: 70, VMin: -20, VMax: 60}

	img := v.RenderSlice(geometry.AxisX, 0, ext, 64, 48)
	b := img.Bounds()
	if b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("bounds = %v", b)
	}

	// The slice center lies inside the brain: nonzero intensity.
	center := img.GrayAt(32, 24).Y
	if center == 0 {
		t.Error("center of mid-sagittal slice should be inside the head")
	}
}

func TestRenderSliceClampsBelowWindow(t *testing.T) {
	// Every voxel sits well above zero, so out-of-volume samples read
	// below the intensity window and must clamp to black.
	data := make([]float32, 8)
	for i := range data {
		data[i] = 100 + float32(i)*10
	}
	v, err := NewVolume(2, 2, 2, data, nil)
	if err != nil {
		t.Fatal(err)
	}

	ext := SliceExtent{HMin: -50, HMax: 50, VMin: -50, VMax: 50}
	img := v.RenderSlice(geometry.AxisZ, 0, ext, 32, 32)

	// The corner maps far outside the one-voxel volume.
	if got := img.GrayAt(0, 0).Y; got != 0 {
		t.Errorf("out-of-volume pixel = %d, want 0", got)
	}
}

func TestSyntheticHeadShells(t *testing.T) {
	v := SyntheticHead()

	if got := v.SampleRAS(geometry.NewVec3(0, 0, 0)); got < 50 {
		t.Errorf("brain interior = %v, want bright tissue", got)
	}
	// Far corner is outside the head.
	if got := v.SampleRAS(geometry.NewVec3(88, 88, 88)); got != 0 {
		t.Errorf("outside head = %v, want 0", got)
	}

	minVal, maxVal := v.IntensityRange()
	if minVal != 0 || maxVal != 255 {
		t.Errorf("intensity range = [%v, %v], want [0, 255]", minVal, maxVal)
	}
}
