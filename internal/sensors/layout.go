// Package sensors models the measurement side: the sensor array layout
// (magnetometers, gradiometers, EEG electrodes) and evoked measurement
// data used for the default topomaps.
package sensors

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"dipole-explorer/pkg/geometry"
)

// Kind identifies the channel type.
type Kind string

const (
	Mag  Kind = "mag"  // magnetometer, measures radial B in Tesla
	Grad Kind = "grad" // planar gradiometer, T/m
	EEG  Kind = "eeg"  // electrode potential in Volts
)

// Kinds lists the channel types in display order.
var Kinds = [3]Kind{Mag, Grad, EEG}

// Label returns the topomap caption for the channel type.
func (k Kind) Label() string {
	switch k {
	case Mag:
		return "Evoked magnetometer field"
	case Grad:
		return "Evoked gradiometer field"
	case EEG:
		return "Evoked EEG field"
	}
	return string(k)
}

// Channel is one sensor: a position on the helmet/scalp in head-frame
// meters and, for MEG channels, the sensing orientation.
type Channel struct {
	Name string        `yaml:"name"`
	Kind Kind          `yaml:"kind"`
	Pos  geometry.Vec3 `yaml:"pos"`
	Ori  geometry.Vec3 `yaml:"ori"`
}

// Layout is a full sensor array.
type Layout struct {
	Channels []Channel `yaml:"channels"`
}

// LoadLayout reads a sensor layout from a YAML file.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	if len(l.Channels) == 0 {
		return nil, fmt.Errorf("layout %s has no channels", path)
	}
	for i, ch := range l.Channels {
		if ch.Kind != Mag && ch.Kind != Grad && ch.Kind != EEG {
			return nil, fmt.Errorf("channel %d (%s): unknown kind %q", i, ch.Name, ch.Kind)
		}
	}
	return &l, nil
}

// ByKind returns the channels of one type, preserving order.
func (l *Layout) ByKind(kind Kind) []Channel {
	var out []Channel
	for _, ch := range l.Channels {
		if ch.Kind == kind {
			out = append(out, ch)
		}
	}
	return out
}

// SyntheticLayout builds a default helmet-style array when no layout file
// is available: rings of sensors on the upper hemisphere of a sphere.
// MEG sensors sit at radius r, EEG electrodes on the scalp just inside.
func SyntheticLayout() *Layout {
	l := &Layout{}

	megRadius := 0.11
	eegRadius := 0.095

	rings := []struct {
		elevation float64 // degrees above the equator
		count     int
	}{
		{15, 12},
		{40, 10},
		{65, 6},
		{85, 1},
	}

	for _, ring := range rings {
		el := ring.elevation * math.Pi / 180
		for i := 0; i < ring.count; i++ {
			az := 2 * math.Pi * float64(i) / float64(ring.count)
			dir := geometry.NewVec3(
				math.Cos(el)*math.Cos(az),
				math.Cos(el)*math.Sin(az),
				math.Sin(el),
			)

			n := len(l.Channels)
			l.Channels = append(l.Channels,
				Channel{
					Name: fmt.Sprintf("MAG%03d", n+1),
					Kind: Mag,
					Pos:  dir.Scale(megRadius),
					Ori:  dir, // radial
				},
				Channel{
					Name: fmt.Sprintf("GRD%03d", n+2),
					Kind: Grad,
					Pos:  dir.Scale(megRadius),
					// Tangential: azimuthal direction.
					Ori: geometry.NewVec3(-math.Sin(az), math.Cos(az), 0),
				},
				Channel{
					Name: fmt.Sprintf("EEG%03d", n+3),
					Kind: EEG,
					Pos:  dir.Scale(eegRadius),
				})
		}
	}

	return l
}
