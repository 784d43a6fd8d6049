package app

import (
	"github.com/rs/zerolog"

	"dipole-explorer/internal/forward"
)

// FieldSolver computes predicted sensor measurements for a dipole
// placement. *forward.Evaluator is the production implementation.
type FieldSolver interface {
	Evaluate(forward.Request) (*forward.Result, error)
}

// Trigger watches the state for dipole-affecting changes and runs the
// forward solver whenever the dipole is fully placed. Evaluation is
// synchronous on the event thread; the busy flag brackets it so the
// status bar can show progress. The flag is advisory and does not block
// re-entrant input.
type Trigger struct {
	state  *State
	solver FieldSolver
	log    zerolog.Logger
}

// NewTrigger wires a trigger into the state's events. Each dipole,
// amplitude, solver-mode, or crosshair change runs at most one
// evaluation, so the sensor plots follow every mutating interaction.
func NewTrigger(state *State, solver FieldSolver, log zerolog.Logger) *Trigger {
	t := &Trigger{state: state, solver: solver, log: log}
	recheck := func(interface{}) { t.Recheck() }
	state.On(EventDipoleChanged, recheck)
	state.On(EventAmplitudeChanged, recheck)
	state.On(EventExactChanged, recheck)
	state.On(EventCrosshairMoved, recheck)
	return t
}

// Recheck evaluates the forward solution if the dipole is fully placed,
// emitting EventFieldComputed with the *forward.Result. Does nothing
// while the placement is incomplete. Solver failures are logged and
// swallowed; the previous sensor plots stay up.
func (t *Trigger) Recheck() {
	if !t.state.DipoleReady() {
		return
	}

	pos := *t.state.DipolePos()
	ori := *t.state.DipoleOri()

	t.state.SetBusy(true)
	defer t.state.SetBusy(false)

	res, err := t.solver.Evaluate(forward.Request{
		PosRAS:    pos,
		OriRAS:    ori,
		Amplitude: t.state.AmplitudeNAm() * 1e-9,
		Exact:     t.state.Exact(),
	})
	if err != nil {
		t.log.Error().Err(err).Msg("forward evaluation failed")
		return
	}

	t.state.Emit(EventFieldComputed, res)
}
