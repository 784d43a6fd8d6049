// Package config provides configuration loading for dipole-explorer.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AxisRange describes the browsable coordinate range of one slice axis in mm.
type AxisRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Subject identifies the dataset inside the data directory.
	Subject string `yaml:"subject"`

	// DataDir is the root directory holding MRI, sensor, and forward data.
	DataDir string `yaml:"dataDir"`

	// MRI parameters
	MRI struct {
		// Volume is the T1 image path relative to DataDir.
		// When empty or missing a synthetic phantom is used.
		Volume string `yaml:"volume"`

		// Enhance enables CLAHE contrast enhancement of rendered slices.
		Enhance bool `yaml:"enhance"`

		// ClipLimit is the CLAHE clip limit used when Enhance is set.
		ClipLimit float64 `yaml:"clipLimit"`
	} `yaml:"mri"`

	// Slice browser parameters
	Slices struct {
		X AxisRange `yaml:"x"`
		Y AxisRange `yaml:"y"`
		Z AxisRange `yaml:"z"`
	} `yaml:"slices"`

	// Dipole parameters
	Dipole struct {
		// AmplitudeNAm is the default dipole amplitude in nA·m.
		AmplitudeNAm float64 `yaml:"amplitudeNAm"`

		// AmplitudeMinNAm and AmplitudeMaxNAm bound the amplitude slider.
		AmplitudeMinNAm float64 `yaml:"amplitudeMinNAm"`
		AmplitudeMaxNAm float64 `yaml:"amplitudeMaxNAm"`

		// AmplitudeStepNAm is the slider step.
		AmplitudeStepNAm float64 `yaml:"amplitudeStepNAm"`
	} `yaml:"dipole"`

	// Forward model parameters
	Forward struct {
		// GridStepMM is the lookup-table grid spacing in mm.
		GridStepMM float64 `yaml:"gridStepMM"`

		// Database is the lookup-table SQLite path relative to DataDir.
		Database string `yaml:"database"`

		// SphereRadiusM is the conductor sphere radius in meters.
		SphereRadiusM float64 `yaml:"sphereRadiusM"`

		// Conductivity is the homogeneous conductivity in S/m used for EEG.
		Conductivity float64 `yaml:"conductivity"`
	} `yaml:"forward"`

	// Output parameters
	Output struct {
		// Verbose enables debug-level logging.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Subject = "sample"
	cfg.DataDir = "data"

	cfg.MRI.Enhance = false
	cfg.MRI.ClipLimit = 2.0

	cfg.Slices.X = AxisRange{Min: -60, Max: 60}
	cfg.Slices.Y = AxisRange{Min: -70, Max: 70}
	cfg.Slices.Z = AxisRange{Min: -20, Max: 60}

	cfg.Dipole.AmplitudeNAm = 50
	cfg.Dipole.AmplitudeMinNAm = 5
	cfg.Dipole.AmplitudeMaxNAm = 100
	cfg.Dipole.AmplitudeStepNAm = 5

	cfg.Forward.GridStepMM = 5
	cfg.Forward.Database = "fwd/lookup.db"
	cfg.Forward.SphereRadiusM = 0.09
	cfg.Forward.Conductivity = 0.3

	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// VolumePath returns the absolute T1 volume path, or "" when unset.
func (c *Config) VolumePath() string {
	if c.MRI.Volume == "" {
		return ""
	}
	return filepath.Join(c.DataDir, c.MRI.Volume)
}

// ForwardDBPath returns the absolute lookup-table path.
func (c *Config) ForwardDBPath() string {
	return filepath.Join(c.DataDir, c.Forward.Database)
}
