// Command fwdgen precomputes the forward lookup table: leadfields on a
// regular grid inside the browsable volume, written to the SQLite
// database the explorer reads at runtime.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"dipole-explorer/internal/config"
	"dipole-explorer/internal/forward"
	"dipole-explorer/internal/logging"
	"dipole-explorer/internal/sensors"
	"dipole-explorer/internal/transform"
	"dipole-explorer/pkg/geometry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(*verbose || cfg.Output.Verbose, nil)

	layout, err := sensors.LoadLayout(cfg.DataDir + "/sensors/layout.yaml")
	if err != nil {
		log.Info().Msg("using synthetic sensor layout")
		layout = sensors.SyntheticLayout()
	}

	store, err := forward.Open(cfg.ForwardDBPath())
	if err != nil {
		log.Fatal().Err(err).Msg("opening lookup table")
	}
	defer store.Close()

	model := forward.SphereModel{Conductivity: cfg.Forward.Conductivity}
	rasToHead, err := transform.GenRASToHead(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("building coordinate transform")
	}
	step := cfg.Forward.GridStepMM
	if step <= 0 {
		step = 5
	}

	log.Info().
		Str("subject", cfg.Subject).
		Float64("step_mm", step).
		Int("channels", len(layout.Channels)).
		Str("database", cfg.ForwardDBPath()).
		Msg("precomputing forward solutions")

	start := time.Now()
	count := 0
	for x := cfg.Slices.X.Min; x <= cfg.Slices.X.Max; x += step {
		for y := cfg.Slices.Y.Min; y <= cfg.Slices.Y.Max; y += step {
			for z := cfg.Slices.Z.Min; z <= cfg.Slices.Z.Max; z += step {
				grid := geometry.NewVec3(x, y, z)
				posHead := rasToHead.Apply(grid)

				// Grid points at or outside the conductor sphere have no
				// meaningful solution.
				if posHead.Norm() >= cfg.Forward.SphereRadiusM {
					continue
				}

				lf := model.LeadfieldMatrix(layout, posHead)
				if err := store.Put(cfg.Subject, grid, lf); err != nil {
					log.Fatal().Err(err).
						Float64("x", x).Float64("y", y).Float64("z", z).
						Msg("storing leadfield")
				}
				count++
			}
		}
		log.Debug().Float64("x", x).Int("stored", count).Msg("plane done")
	}

	log.Info().
		Int("entries", count).
		Dur("elapsed", time.Since(start)).
		Msg("lookup table written")
}
