package forward

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"dipole-explorer/internal/sensors"
	"dipole-explorer/internal/transform"
	"dipole-explorer/pkg/geometry"
)

func testEvaluator(t *testing.T, store *Store) *Evaluator {
	t.Helper()
	rasToHead, err := transform.GenRASToHead(nil)
	if err != nil {
		t.Fatalf("GenRASToHead: %v", err)
	}
	return &Evaluator{
		Layout:       sensors.SyntheticLayout(),
		Store:        store,
		Subject:      "sample",
		GridStepMM:   5,
		Conductivity: 0.3,
		RASToHead:    rasToHead,
		Log:          zerolog.Nop(),
	}
}

func TestEvaluateExact(t *testing.T) {
	ev := testEvaluator(t, nil)

	res, err := ev.Evaluate(Request{
		PosRAS:    geometry.NewVec3(20, 0, 40),
		OriRAS:    geometry.NewVec3(20, 30, 40),
		Amplitude: 50e-9,
		Exact:     true,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.Exact {
		t.Error("result should be marked exact")
	}
	if len(res.Values) != len(ev.Layout.Channels) {
		t.Fatalf("got %d values for %d channels", len(res.Values), len(ev.Layout.Channels))
	}

	nonzero := 0
	for _, v := range res.Values {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Error("tangential dipole produced all-zero measurements")
	}

	// Moment direction follows pos -> ori, here +y, scaled to amplitude.
	if math.Abs(res.Moment.Norm()-50e-9) > 1e-15 {
		t.Errorf("moment magnitude = %v, want 50e-9", res.Moment.Norm())
	}
	if res.Moment.Y <= 0 || math.Abs(res.Moment.X) > 1e-15 {
		t.Errorf("moment direction = %v, want +y", res.Moment)
	}
}

func TestEvaluateCoincidentPoints(t *testing.T) {
	ev := testEvaluator(t, nil)
	p := geometry.NewVec3(10, 10, 10)
	if _, err := ev.Evaluate(Request{PosRAS: p, OriRAS: p, Amplitude: 50e-9}); err == nil {
		t.Error("expected error for coincident position and orientation")
	}
}

func TestEvaluateLookupMatchesExact(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer store.Close()

	ev := testEvaluator(t, store)

	// Precompute the leadfield at the grid point the request snaps to.
	pos := geometry.NewVec3(20, -10, 35)
	model := SphereModel{Conductivity: ev.Conductivity}
	posHead := ev.RASToHead.Apply(pos)
	if err := store.Put(ev.Subject, pos, model.LeadfieldMatrix(ev.Layout, posHead)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	req := Request{
		PosRAS:    pos,
		OriRAS:    geometry.NewVec3(20, 20, 35),
		Amplitude: 50e-9,
	}

	fast, err := ev.Evaluate(req)
	if err != nil {
		t.Fatalf("lookup Evaluate: %v", err)
	}
	if fast.Exact {
		t.Fatal("expected lookup path, got exact")
	}

	req.Exact = true
	exact, err := ev.Evaluate(req)
	if err != nil {
		t.Fatalf("exact Evaluate: %v", err)
	}

	for i := range exact.Values {
		diff := math.Abs(fast.Values[i] - exact.Values[i])
		if diff > 1e-12*math.Max(1, math.Abs(exact.Values[i])) {
			t.Fatalf("channel %d: lookup %v != exact %v",
				i, fast.Values[i], exact.Values[i])
		}
	}
}

func TestEvaluateFallsBackWhenGridPointMissing(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer store.Close()

	ev := testEvaluator(t, store)
	res, err := ev.Evaluate(Request{
		PosRAS:    geometry.NewVec3(15, 15, 30),
		OriRAS:    geometry.NewVec3(15, 40, 30),
		Amplitude: 50e-9,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.Exact {
		t.Error("empty table should fall back to the exact model")
	}
}

func TestResultByKind(t *testing.T) {
	ev := testEvaluator(t, nil)
	res, err := ev.Evaluate(Request{
		PosRAS:    geometry.NewVec3(0, 20, 40),
		OriRAS:    geometry.NewVec3(30, 20, 40),
		Amplitude: 50e-9,
		Exact:     true,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	chs, vals := res.ByKind(sensors.EEG)
	if len(chs) != len(vals) || len(chs) == 0 {
		t.Fatalf("ByKind returned %d channels, %d values", len(chs), len(vals))
	}
	want := len(ev.Layout.ByKind(sensors.EEG))
	if len(chs) != want {
		t.Errorf("ByKind returned %d EEG channels, layout has %d", len(chs), want)
	}
}
