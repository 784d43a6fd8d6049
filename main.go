// Package main provides the entry point for the dipole explorer.
package main

import (
	"flag"
	"fmt"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"

	"dipole-explorer/internal/app"
	"dipole-explorer/internal/config"
	"dipole-explorer/internal/forward"
	"dipole-explorer/internal/logging"
	"dipole-explorer/internal/mri"
	"dipole-explorer/internal/sensors"
	"dipole-explorer/internal/transform"
	"dipole-explorer/internal/version"
	"dipole-explorer/ui/mainwindow"
	"dipole-explorer/ui/prefs"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s v%s (%s, built %s)\n",
			version.AppName, version.Version, version.GitCommit, version.BuildTime)
		return
	}

	appPrefs := prefs.Load()
	if *configPath == "" {
		*configPath = appPrefs.String(prefs.KeyLastConfig)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *configPath != "" {
		appPrefs.SetString(prefs.KeyLastConfig, *configPath)
	}

	sink := logging.NewRingWriter(500)
	log := logging.New(*verbose || cfg.Output.Verbose, sink)
	log.Info().Str("version", version.Version).Str("subject", cfg.Subject).Msg("starting")

	volume := loadVolume(cfg, log)
	layout := loadLayout(cfg, log)
	evoked := loadEvoked(cfg, layout, log)

	rasToHead, err := transform.GenRASToHead(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("building coordinate transform")
	}

	evaluator := &forward.Evaluator{
		Layout:       layout,
		Subject:      cfg.Subject,
		GridStepMM:   cfg.Forward.GridStepMM,
		Conductivity: cfg.Forward.Conductivity,
		RASToHead:    rasToHead,
		Log:          log,
	}
	if store, err := forward.Open(cfg.ForwardDBPath()); err != nil {
		log.Warn().Err(err).Msg("no forward lookup table, every evaluation uses the exact model")
	} else {
		defer store.Close()
		evaluator.Store = store
		if n, err := store.Count(cfg.Subject); err == nil {
			log.Info().Int64("entries", n).Msg("forward lookup table opened")
		}
	}

	state := app.NewState(cfg)
	router := app.NewRouter(state, log)
	app.NewTrigger(state, evaluator, log)

	fa := fyneapp.NewWithID("io.github.dipole-explorer")
	fa.Settings().SetTheme(&app.ExplorerTheme{})

	win := mainwindow.New(fa, mainwindow.Deps{
		Config:  cfg,
		State:   state,
		Router:  router,
		Volume:  volume,
		Layout:  layout,
		Evoked:  evoked,
		Prefs:   appPrefs,
		LogSink: sink,
	})

	win.ShowAndRun()
}

func loadVolume(cfg *config.Config, log zerolog.Logger) *mri.Volume {
	if path := cfg.VolumePath(); path != "" {
		vol, err := mri.LoadNIfTI(path)
		if err == nil {
			log.Info().Str("path", path).Msg("MRI volume loaded")
			return vol
		}
		log.Warn().Err(err).Str("path", path).Msg("loading MRI volume failed, using phantom")
	}
	log.Info().Msg("using synthetic head phantom")
	return mri.SyntheticHead()
}

func loadLayout(cfg *config.Config, log zerolog.Logger) *sensors.Layout {
	path := cfg.DataDir + "/sensors/layout.yaml"
	if layout, err := sensors.LoadLayout(path); err == nil {
		log.Info().Int("channels", len(layout.Channels)).Msg("sensor layout loaded")
		return layout
	}
	log.Info().Msg("using synthetic sensor layout")
	return sensors.SyntheticLayout()
}

func loadEvoked(cfg *config.Config, layout *sensors.Layout, log zerolog.Logger) *sensors.Evoked {
	path := cfg.DataDir + "/sensors/evoked.yaml"
	if ev, err := sensors.LoadEvoked(path); err == nil {
		log.Info().Int("samples", len(ev.Times)).Msg("evoked data loaded")
		return ev
	}
	log.Info().Msg("using synthetic evoked data")
	return sensors.SyntheticEvoked(layout)
}
