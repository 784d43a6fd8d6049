// Package app holds the interaction state of the dipole explorer and the
// event wiring between the slice views, the controls, and the forward
// solver.
package app

import (
	"sync"

	"dipole-explorer/internal/config"
	"dipole-explorer/pkg/geometry"
)

// Mode is the active click interpretation for the slice views.
type Mode int

const (
	// ModeBrowsing moves the browsed slice position.
	ModeBrowsing Mode = iota
	// ModeSettingPosition places the dipole position at the click.
	ModeSettingPosition
	// ModeSettingOrientation places the point the dipole points toward.
	ModeSettingOrientation
)

func (m Mode) String() string {
	switch m {
	case ModeBrowsing:
		return "Slice browser"
	case ModeSettingPosition:
		return "Set dipole position"
	case ModeSettingOrientation:
		return "Set dipole orientation"
	}
	return "unknown"
}

// SliceCoord is one axis of the browsed slice position, in RAS mm.
type SliceCoord struct {
	Val, Min, Max float64
}

// Contains reports whether v lies inside the coordinate's range.
func (c SliceCoord) Contains(v float64) bool {
	return v >= c.Min && v <= c.Max
}

// Clamp limits v to the coordinate's range.
func (c SliceCoord) Clamp(v float64) float64 {
	if v < c.Min {
		return c.Min
	}
	if v > c.Max {
		return c.Max
	}
	return v
}

// EventType identifies different application events.
type EventType int

const (
	EventSliceChanged EventType = iota
	EventCrosshairMoved
	EventModeChanged
	EventDipoleChanged
	EventAmplitudeChanged
	EventExactChanged
	EventBusyChanged
	EventFieldComputed
	EventReset
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State is the interaction state: browsed slice coordinates, the dipole
// placement, and the evaluation settings. It is mutated only through its
// methods, each of which emits the matching event.
type State struct {
	mu sync.RWMutex

	// Browsed slice position per axis, indexed by geometry.Axis.
	slices [3]SliceCoord

	// Dipole placement. Both are RAS mm points; the orientation point
	// together with the position defines the moment direction. Nil until
	// the user places them.
	dipolePos *geometry.Vec3
	dipoleOri *geometry.Vec3

	amplitudeNAm float64
	mode         Mode
	exact        bool
	busy         bool

	defaults struct {
		slices       [3]SliceCoord
		amplitudeNAm float64
	}

	listeners map[EventType][]EventListener
}

// NewState creates the interaction state with defaults from the config:
// every axis starts at 0 mm, the dipole unplaced, mode browsing.
func NewState(cfg *config.Config) *State {
	s := &State{
		slices: [3]SliceCoord{
			geometry.AxisX: {Val: 0, Min: cfg.Slices.X.Min, Max: cfg.Slices.X.Max},
			geometry.AxisY: {Val: 0, Min: cfg.Slices.Y.Min, Max: cfg.Slices.Y.Max},
			geometry.AxisZ: {Val: 0, Min: cfg.Slices.Z.Min, Max: cfg.Slices.Z.Max},
		},
		amplitudeNAm: cfg.Dipole.AmplitudeNAm,
		listeners:    make(map[EventType][]EventListener),
	}
	s.defaults.slices = s.slices
	s.defaults.amplitudeNAm = s.amplitudeNAm
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Slice returns the browsed coordinate of one axis.
func (s *State) Slice(axis geometry.Axis) SliceCoord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slices[axis]
}

// SetSlice moves the browsed position of one axis, clamping to its
// range, and reports whether the value changed. No event fires when it
// does not.
func (s *State) SetSlice(axis geometry.Axis, val float64) bool {
	s.mu.Lock()
	val = s.slices[axis].Clamp(val)
	if s.slices[axis].Val == val {
		s.mu.Unlock()
		return false
	}
	s.slices[axis].Val = val
	s.mu.Unlock()

	s.Emit(EventSliceChanged, axis)
	return true
}

// Crosshair returns the browsed position as a 3-D point.
func (s *State) Crosshair() geometry.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return geometry.NewVec3(
		s.slices[geometry.AxisX].Val,
		s.slices[geometry.AxisY].Val,
		s.slices[geometry.AxisZ].Val,
	)
}

// Mode returns the active interaction mode.
func (s *State) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the interaction mode. Selecting the active mode is a
// no-op and emits nothing.
func (s *State) SetMode(m Mode) {
	s.mu.Lock()
	if s.mode == m {
		s.mu.Unlock()
		return
	}
	s.mode = m
	s.mu.Unlock()

	s.Emit(EventModeChanged, m)
}

// DipolePos returns the dipole position, or nil when unset.
func (s *State) DipolePos() *geometry.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dipolePos
}

// DipoleOri returns the dipole orientation point, or nil when unset.
func (s *State) DipoleOri() *geometry.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dipoleOri
}

// SetDipolePos places the dipole position.
func (s *State) SetDipolePos(p geometry.Vec3) {
	s.mu.Lock()
	s.dipolePos = &p
	s.mu.Unlock()

	s.Emit(EventDipoleChanged, nil)
}

// SetDipoleOri places the point the dipole points toward.
func (s *State) SetDipoleOri(p geometry.Vec3) {
	s.mu.Lock()
	s.dipoleOri = &p
	s.mu.Unlock()

	s.Emit(EventDipoleChanged, nil)
}

// DipoleReady reports whether the dipole is fully placed: position and
// orientation both set and not coordinate-wise identical.
func (s *State) DipoleReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dipolePos != nil && s.dipoleOri != nil && *s.dipolePos != *s.dipoleOri
}

// AmplitudeNAm returns the dipole amplitude in nAm.
func (s *State) AmplitudeNAm() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.amplitudeNAm
}

// SetAmplitudeNAm changes the dipole amplitude, in nAm.
func (s *State) SetAmplitudeNAm(nam float64) {
	s.mu.Lock()
	if s.amplitudeNAm == nam {
		s.mu.Unlock()
		return
	}
	s.amplitudeNAm = nam
	s.mu.Unlock()

	s.Emit(EventAmplitudeChanged, nam)
}

// Exact reports whether the exact solver is requested.
func (s *State) Exact() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exact
}

// SetExact toggles between the lookup table and the exact solver.
func (s *State) SetExact(exact bool) {
	s.mu.Lock()
	if s.exact == exact {
		s.mu.Unlock()
		return
	}
	s.exact = exact
	s.mu.Unlock()

	s.Emit(EventExactChanged, exact)
}

// Busy reports whether a field computation is in progress.
func (s *State) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// SetBusy flips the busy flag. Advisory only: it informs the status bar,
// it does not lock out input.
func (s *State) SetBusy(busy bool) {
	s.mu.Lock()
	s.busy = busy
	s.mu.Unlock()

	s.Emit(EventBusyChanged, busy)
}

// Reset restores the defaults: slice positions and amplitude back to
// their initial values, dipole unplaced, mode browsing. Emits only
// EventReset; no field computation follows.
func (s *State) Reset() {
	s.mu.Lock()
	s.slices = s.defaults.slices
	s.amplitudeNAm = s.defaults.amplitudeNAm
	s.dipolePos = nil
	s.dipoleOri = nil
	s.mode = ModeBrowsing
	s.exact = false
	s.busy = false
	s.mu.Unlock()

	s.Emit(EventReset, nil)
}
