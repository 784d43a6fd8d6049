package app

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"dipole-explorer/internal/forward"
	"dipole-explorer/pkg/geometry"
)

type fakeSolver struct {
	calls      []forward.Request
	err        error
	busyDuring []bool
	state      *State
}

func (f *fakeSolver) Evaluate(req forward.Request) (*forward.Result, error) {
	f.calls = append(f.calls, req)
	if f.state != nil {
		f.busyDuring = append(f.busyDuring, f.state.Busy())
	}
	if f.err != nil {
		return nil, f.err
	}
	return &forward.Result{Exact: req.Exact}, nil
}

func newTestTrigger(t *testing.T) (*State, *fakeSolver) {
	t.Helper()
	s := newTestState()
	solver := &fakeSolver{state: s}
	NewTrigger(s, solver, zerolog.Nop())
	return s, solver
}

func TestTriggerFiresOncePerMutation(t *testing.T) {
	s, solver := newTestTrigger(t)

	s.SetDipolePos(geometry.NewVec3(10, 0, 30))
	if len(solver.calls) != 0 {
		t.Fatal("fired with orientation unset")
	}

	s.SetDipoleOri(geometry.NewVec3(10, 30, 30))
	if len(solver.calls) != 1 {
		t.Fatalf("got %d calls after placement, want 1", len(solver.calls))
	}

	s.SetAmplitudeNAm(80)
	if len(solver.calls) != 2 {
		t.Fatalf("got %d calls after amplitude change, want 2", len(solver.calls))
	}

	s.SetExact(true)
	if len(solver.calls) != 3 {
		t.Fatalf("got %d calls after exact toggle, want 3", len(solver.calls))
	}
	if !solver.calls[2].Exact {
		t.Error("exact flag not forwarded")
	}
}

func TestTriggerNeverFiresWhenNotReady(t *testing.T) {
	s, solver := newTestTrigger(t)

	s.SetAmplitudeNAm(60)

	p := geometry.NewVec3(5, 5, 5)
	s.SetDipolePos(p)
	s.SetDipoleOri(p) // identical to position
	s.SetAmplitudeNAm(70)

	if len(solver.calls) != 0 {
		t.Errorf("got %d calls, want 0 while placement incomplete or degenerate", len(solver.calls))
	}
}

func TestTriggerConvertsAmplitude(t *testing.T) {
	s, solver := newTestTrigger(t)

	s.SetDipolePos(geometry.NewVec3(0, 0, 30))
	s.SetDipoleOri(geometry.NewVec3(20, 0, 30))

	if len(solver.calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(solver.calls))
	}
	if math.Abs(solver.calls[0].Amplitude-50e-9) > 1e-18 {
		t.Errorf("amplitude = %v A·m, want 50e-9", solver.calls[0].Amplitude)
	}
}

func TestTriggerBusyBracketsEvaluation(t *testing.T) {
	s, solver := newTestTrigger(t)

	s.SetDipolePos(geometry.NewVec3(0, 10, 30))
	s.SetDipoleOri(geometry.NewVec3(0, 40, 30))

	if len(solver.busyDuring) != 1 || !solver.busyDuring[0] {
		t.Error("busy flag not set during evaluation")
	}
	if s.Busy() {
		t.Error("busy flag not cleared after evaluation")
	}
}

func TestTriggerEmitsResult(t *testing.T) {
	s, solver := newTestTrigger(t)

	var results []*forward.Result
	s.On(EventFieldComputed, func(data interface{}) {
		results = append(results, data.(*forward.Result))
	})

	s.SetDipolePos(geometry.NewVec3(10, 10, 30))
	s.SetDipoleOri(geometry.NewVec3(10, 10, 50))

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	// Failures are logged, not surfaced: no result event, flag cleared.
	solver.err = errors.New("no lookup entry")
	s.SetAmplitudeNAm(95)

	if len(results) != 1 {
		t.Error("failed evaluation must not emit a result")
	}
	if s.Busy() {
		t.Error("busy flag stuck after failure")
	}
}

func TestTriggerRefiresOnBrowseClick(t *testing.T) {
	s, solver := newTestTrigger(t)
	r := NewRouter(s, zerolog.Nop())

	// Browsing before placement computes nothing.
	r.HandleClick(geometry.AxisY, 10, 10)
	if len(solver.calls) != 0 {
		t.Fatalf("got %d calls before placement, want 0", len(solver.calls))
	}

	s.SetDipolePos(geometry.NewVec3(10, 0, 30))
	s.SetDipoleOri(geometry.NewVec3(10, 30, 30))
	if len(solver.calls) != 1 {
		t.Fatalf("got %d calls after placement, want 1", len(solver.calls))
	}

	// A browse click moves two slice axes but is one mutating event.
	r.HandleClick(geometry.AxisX, 25, -10)
	if len(solver.calls) != 2 {
		t.Fatalf("got %d calls after browse click, want 2", len(solver.calls))
	}

	// Clicking the same spot again changes nothing and must not re-fire.
	r.HandleClick(geometry.AxisX, 25, -10)
	if len(solver.calls) != 2 {
		t.Errorf("got %d calls after no-op click, want 2", len(solver.calls))
	}
}

func TestResetDoesNotTrigger(t *testing.T) {
	s, solver := newTestTrigger(t)

	s.SetDipolePos(geometry.NewVec3(10, 10, 30))
	s.SetDipoleOri(geometry.NewVec3(10, 10, 50))
	before := len(solver.calls)

	s.Reset()
	if len(solver.calls) != before {
		t.Error("reset must not run an evaluation")
	}
}
