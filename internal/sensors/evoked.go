package sensors

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Evoked holds averaged sensor measurements: one time series per channel.
// Channel order matches the layout it was recorded with.
type Evoked struct {
	Times    []float64            `yaml:"times"` // seconds
	Channels map[string][]float64 `yaml:"channels"`
}

// LoadEvoked reads evoked data from a YAML file.
func LoadEvoked(path string) (*Evoked, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading evoked data: %w", err)
	}
	var ev Evoked
	if err := yaml.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parsing evoked data: %w", err)
	}
	if len(ev.Times) == 0 {
		return nil, fmt.Errorf("evoked data %s has no samples", path)
	}
	for name, series := range ev.Channels {
		if len(series) != len(ev.Times) {
			return nil, fmt.Errorf("channel %s has %d samples, want %d", name, len(series), len(ev.Times))
		}
	}
	return &ev, nil
}

// PeakSample returns the index of the sample with the largest global field
// power (root mean square across channels).
func (ev *Evoked) PeakSample() int {
	best, bestPower := 0, -1.0
	for t := range ev.Times {
		power := 0.0
		for _, series := range ev.Channels {
			power += series[t] * series[t]
		}
		if power > bestPower {
			bestPower = power
			best = t
		}
	}
	return best
}

// ValuesAt returns the per-channel values at a sample index for the given
// channels, in channel order. Missing channels read as 0.
func (ev *Evoked) ValuesAt(sample int, channels []Channel) []float64 {
	out := make([]float64, len(channels))
	if sample < 0 || sample >= len(ev.Times) {
		return out
	}
	for i, ch := range channels {
		if series, ok := ev.Channels[ch.Name]; ok {
			out[i] = series[sample]
		}
	}
	return out
}

// SaveEvoked writes evoked data to a YAML file.
func SaveEvoked(ev *Evoked, path string) error {
	data, err := yaml.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling evoked data: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// SyntheticEvoked generates a plausible auditory-like evoked response for
// a layout: a 100 ms peak whose topography is a smooth dipolar pattern.
// Used for the default topomaps when no measurement file is configured.
func SyntheticEvoked(layout *Layout) *Evoked {
	const (
		nSamples = 61
		tMin     = -0.1
		tStep    = 0.005
	)

	ev := &Evoked{
		Times:    make([]float64, nSamples),
		Channels: make(map[string][]float64, len(layout.Channels)),
	}
	for i := range ev.Times {
		ev.Times[i] = tMin + float64(i)*tStep
	}

	for _, ch := range layout.Channels {
		series := make([]float64, nSamples)

		// Dipolar spatial pattern over the array: sign flips across y.
		spatial := math.Sin(math.Atan2(ch.Pos.Y, ch.Pos.X)) * (0.5 + ch.Pos.Z/0.2)
		scale := kindScale(ch.Kind)

		for i, t := range ev.Times {
			// Gaussian peak at 100 ms, trough at 180 ms.
			peak := math.Exp(-math.Pow((t-0.1)/0.02, 2))
			trough := -0.6 * math.Exp(-math.Pow((t-0.18)/0.03, 2))
			series[i] = spatial * scale * (peak + trough)
		}
		ev.Channels[ch.Name] = series
	}
	return ev
}

func kindScale(kind Kind) float64 {
	switch kind {
	case Mag:
		return 100e-15 // ~100 fT
	case Grad:
		return 200e-13 // fT/cm range
	case EEG:
		return 5e-6 // ~5 µV
	}
	return 1
}
