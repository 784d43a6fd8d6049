package forward

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dipole-explorer/internal/sensors"
	"dipole-explorer/internal/transform"
	"dipole-explorer/pkg/geometry"
)

// Request describes one field evaluation. Position and orientation are
// RAS millimeter points; the orientation point and the position define
// the moment direction. Amplitude is in A·m.
type Request struct {
	PosRAS    geometry.Vec3
	OriRAS    geometry.Vec3
	Amplitude float64

	// Exact forces the spherical-conductor solution instead of the
	// precomputed lookup table.
	Exact bool
}

// Result holds the predicted measurement for every channel of the
// layout, in layout order.
type Result struct {
	Channels []sensors.Channel
	Values   []float64

	// PosHead and Moment are the head-frame dipole parameters the
	// values were computed from.
	PosHead geometry.Vec3
	Moment  geometry.Vec3

	Exact   bool
	Elapsed time.Duration
}

// ByKind returns the channels of one kind with their values.
func (r *Result) ByKind(kind sensors.Kind) ([]sensors.Channel, []float64) {
	var chs []sensors.Channel
	var vals []float64
	for i, ch := range r.Channels {
		if ch.Kind == kind {
			chs = append(chs, ch)
			vals = append(vals, r.Values[i])
		}
	}
	return chs, vals
}

// Evaluator turns dipole placements into predicted sensor measurements.
// The lookup store is optional; without one every request falls back to
// the exact model.
type Evaluator struct {
	Layout       *sensors.Layout
	Store        *Store
	Subject      string
	GridStepMM   float64
	Conductivity float64
	RASToHead    *transform.Transform
	Log          zerolog.Logger
}

// Evaluate computes the predicted measurements for a request.
func (e *Evaluator) Evaluate(req Request) (*Result, error) {
	if e.Layout == nil || len(e.Layout.Channels) == 0 {
		return nil, errors.New("evaluator has no sensor layout")
	}

	start := time.Now()

	posHead := e.RASToHead.Apply(req.PosRAS)
	oriHead := e.RASToHead.Apply(req.OriRAS)
	dir := oriHead.Sub(posHead)
	if dir.Norm() < 1e-12 {
		return nil, errors.New("dipole orientation coincides with its position")
	}
	moment := dir.Normalize().Scale(req.Amplitude)

	var (
		values []float64
		exact  = req.Exact || e.Store == nil
	)
	if !exact {
		lf, err := e.Store.Nearest(e.Subject, req.PosRAS, e.GridStepMM)
		switch {
		case errors.Is(err, ErrNotFound):
			e.Log.Debug().
				Float64("x", req.PosRAS.X).
				Float64("y", req.PosRAS.Y).
				Float64("z", req.PosRAS.Z).
				Msg("no precomputed solution, using exact model")
			exact = true
		case err != nil:
			return nil, fmt.Errorf("forward lookup: %w", err)
		case len(lf) != len(e.Layout.Channels):
			return nil, fmt.Errorf("lookup entry has %d channels, layout has %d",
				len(lf), len(e.Layout.Channels))
		default:
			values = make([]float64, len(lf))
			for i, row := range lf {
				values[i] = row[0]*moment.X + row[1]*moment.Y + row[2]*moment.Z
			}
		}
	}
	if exact {
		model := SphereModel{Conductivity: e.Conductivity}
		values = make([]float64, len(e.Layout.Channels))
		for i, ch := range e.Layout.Channels {
			values[i] = model.ChannelValue(ch, posHead, moment)
		}
	}

	res := &Result{
		Channels: e.Layout.Channels,
		Values:   values,
		PosHead:  posHead,
		Moment:   moment,
		Exact:    exact,
		Elapsed:  time.Since(start),
	}

	e.Log.Info().
		Bool("exact", exact).
		Dur("elapsed", res.Elapsed).
		Int("channels", len(values)).
		Msg("forward solution computed")

	return res, nil
}
