package app

import (
	"github.com/rs/zerolog"

	"dipole-explorer/pkg/geometry"
)

// Router interprets clicks on the slice views according to the active
// mode. Click coordinates arrive in slice-local RAS mm: the horizontal
// and vertical in-plane axes of the clicked view.
type Router struct {
	state *State
	log   zerolog.Logger
}

// NewRouter creates a router bound to a state store.
func NewRouter(state *State, log zerolog.Logger) *Router {
	return &Router{state: state, log: log}
}

// HandleClick dispatches a click on the view of one axis. Clicks outside
// the browsable ranges are dropped without touching state.
func (r *Router) HandleClick(axis geometry.Axis, h, v float64) {
	hAxis, vAxis := axis.InPlane()
	if !r.state.Slice(hAxis).Contains(h) || !r.state.Slice(vAxis).Contains(v) {
		r.log.Debug().
			Str("view", axis.PlaneName()).
			Float64("h", h).
			Float64("v", v).
			Msg("click outside slice range ignored")
		return
	}

	// Busy spans the whole mutating handler, including any field
	// evaluation the mutation triggers.
	r.state.SetBusy(true)
	defer r.state.SetBusy(false)

	switch r.state.Mode() {
	case ModeBrowsing:
		moved := r.state.SetSlice(hAxis, h)
		if r.state.SetSlice(vAxis, v) {
			moved = true
		}
		// One crosshair event per click, not one per changed axis, so a
		// placed dipole re-evaluates exactly once.
		if moved {
			r.state.Emit(EventCrosshairMoved, r.state.Crosshair())
		}

	case ModeSettingPosition:
		p := r.resolve(axis, h, v)
		r.log.Info().
			Str("view", axis.PlaneName()).
			Float64("x", p.X).Float64("y", p.Y).Float64("z", p.Z).
			Msg("dipole position set")
		r.state.SetDipolePos(p)

	case ModeSettingOrientation:
		p := r.resolve(axis, h, v)
		r.log.Info().
			Str("view", axis.PlaneName()).
			Float64("x", p.X).Float64("y", p.Y).Float64("z", p.Z).
			Msg("dipole orientation set")
		r.state.SetDipoleOri(p)
	}
}

// resolve lifts an in-plane click to 3-D: the clicked coordinates fill
// the two in-plane axes, the browsed slice position fills the third.
func (r *Router) resolve(axis geometry.Axis, h, v float64) geometry.Vec3 {
	hAxis, vAxis := axis.InPlane()

	var p geometry.Vec3
	p = p.WithComponent(axis, r.state.Slice(axis).Val)
	p = p.WithComponent(hAxis, h)
	p = p.WithComponent(vAxis, v)
	return p
}
