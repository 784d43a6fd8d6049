package transform

import (
	"math"
	"testing"

	"dipole-explorer/pkg/geometry"
)

func vecAlmostEqual(a, b geometry.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) < tol &&
		math.Abs(a.Y-b.Y) < tol &&
		math.Abs(a.Z-b.Z) < tol
}

func TestIdentityApply(t *testing.T) {
	p := geometry.NewVec3(12, -3, 7)
	if got := Identity().Apply(p); got != p {
		t.Errorf("identity changed point: %v", got)
	}
}

func TestTranslationAndCompose(t *testing.T) {
	tr := Translation(geometry.NewVec3(1, 2, 3))
	p := tr.Apply(geometry.NewVec3(0, 0, 0))
	if p != geometry.NewVec3(1, 2, 3) {
		t.Errorf("translation = %v", p)
	}

	// Scaling then translating: compose applies the right operand first.
	both := Translation(geometry.NewVec3(10, 0, 0)).Compose(Scaling(2))
	got := both.Apply(geometry.NewVec3(1, 1, 1))
	want := geometry.NewVec3(12, 2, 2)
	if !vecAlmostEqual(got, want, 1e-12) {
		t.Errorf("compose = %v, want %v", got, want)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	tr := Translation(geometry.NewVec3(-4, 9, 2)).Compose(Scaling(0.5))
	inv, err := tr.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	p := geometry.NewVec3(3, -7, 11)
	back := inv.Apply(tr.Apply(p))
	if !vecAlmostEqual(back, p, 1e-9) {
		t.Errorf("round trip = %v, want %v", back, p)
	}
}

func TestApplyDirectionIgnoresTranslation(t *testing.T) {
	tr := Translation(geometry.NewVec3(100, 100, 100))
	v := geometry.NewVec3(0, 0, 1)
	if got := tr.ApplyDirection(v); got != v {
		t.Errorf("direction transformed by translation: %v", got)
	}
}

func TestGenRASToHeadDefault(t *testing.T) {
	tr, err := GenRASToHead(nil)
	if err != nil {
		t.Fatalf("GenRASToHead: %v", err)
	}

	// 50 mm RAS becomes 0.05 m head.
	got := tr.Apply(geometry.NewVec3(50, 0, 0))
	if !vecAlmostEqual(got, geometry.NewVec3(0.05, 0, 0), 1e-12) {
		t.Errorf("RAS→head = %v, want (0.05, 0, 0)", got)
	}
}

func TestGenRASToHeadInvertsCalibration(t *testing.T) {
	// Head meters → RAS mm: scale by 1000 and shift 5 mm along y.
	headToRAS := Translation(geometry.NewVec3(0, 5, 0)).Compose(Scaling(1000))

	tr, err := GenRASToHead(headToRAS)
	if err != nil {
		t.Fatalf("GenRASToHead: %v", err)
	}

	head := geometry.NewVec3(0.01, 0.02, 0.03)
	ras := headToRAS.Apply(head)
	back := tr.Apply(ras)
	if !vecAlmostEqual(back, head, 1e-9) {
		t.Errorf("round trip = %v, want %v", back, head)
	}
}

func TestSingularInverse(t *testing.T) {
	degenerate := FromMatrix([4][4]float64{})
	if _, err := degenerate.Inverse(); err == nil {
		t.Error("expected error inverting a singular transform")
	}
}
