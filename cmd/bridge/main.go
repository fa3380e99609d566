// Command bridge runs vehicles and pedestrians over a one-lane bridge.
//
// Modes:
//
//	population  spawn the configured population and wait for all of it
//	stream      keep every class arriving for -duration, then drain
//	scenario    a short scripted run showing the fairness gate at work
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"bridge/config"
	"bridge/monitor"
	"bridge/population"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
)

func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	var (
		configPath  = flag.String("config", "", "YAML file overlaid on the preset")
		preset      = flag.String("preset", "default", "parameter preset: default or quick")
		mode        = flag.String("mode", "population", "population, stream or scenario")
		duration    = flag.Duration("duration", 5*time.Second, "how long stream mode keeps actors arriving")
		scale       = flag.Float64("scale", 1, "multiply every duration, overrides time_scale")
		seed        = flag.Uint64("seed", 0, "random seed, overrides seed")
		maxInFlight = flag.Int64("max-in-flight", 0, "cap on live actors, overrides max_in_flight")
		level       = flag.String("log-level", "info", "trace, debug, info, warn or error")
		jsonLogs    = flag.Bool("json", false, "write JSON log lines instead of console output")
		profileKind = flag.String("profile", "", "write a cpu, mem, block or mutex profile to the working directory")
	)
	flag.Parse()

	log, err := newLogger(*level, *jsonLogs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Preset(*preset)
	if err == nil && *configPath != "" {
		cfg, err = config.Load(cfg, *configPath)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scale":
			cfg.TimeScale = *scale
		case "seed":
			cfg.Seed = *seed
		case "max-in-flight":
			cfg.MaxInFlight = *maxInFlight
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if *profileKind != "" {
		p, err := startProfile(*profileKind)
		if err != nil {
			log.Fatal().Err(err).Msg("profiling")
		}
		defer p.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch *mode {
	case "scenario":
		err = runScenario(ctx, log, cfg.TimeScale)
	case "population", "stream":
		var report *population.Report
		report, err = runPopulation(ctx, log, cfg, *mode == "stream", *duration)
		if report != nil {
			printSummary(os.Stdout, report)
		}
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Error().Err(err).Str("mode", *mode).Msg("bridge run failed")
		exitCode = 1
	}
}

func startProfile(kind string) (interface{ Stop() }, error) {
	var mode func(*profile.Profile)
	switch kind {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "block":
		mode = profile.BlockProfile
	case "mutex":
		mode = profile.MutexProfile
	default:
		return nil, fmt.Errorf("unknown profile %q", kind)
	}
	return profile.Start(mode, profile.ProfilePath("."), profile.NoShutdownHook), nil
}

func newLogger(level string, jsonLogs bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("bad -log-level: %w", err)
	}
	var log zerolog.Logger
	if jsonLogs {
		log = zerolog.New(os.Stderr)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
	}
	return log.Level(lvl).With().Timestamp().Logger(), nil
}

func runPopulation(ctx context.Context, log zerolog.Logger, cfg config.Config, stream bool, d time.Duration) (*population.Report, error) {
	rec := population.NewRecorder()
	crossing, arrivals := cfg.Sources()
	g := &population.Generator{
		Monitor:     monitor.New(monitor.WithObserver(rec.Observe)),
		Crossing:    crossing,
		MaxInFlight: cfg.MaxInFlight,
		Recorder:    rec,
		Log:         log,
	}
	for _, c := range monitor.Classes {
		g.Plans[c] = population.Plan{Count: cfg.Population.Get(c), Arrival: arrivals[c]}
	}

	log.Info().
		Int("north", g.Plans[monitor.North].Count).
		Int("south", g.Plans[monitor.South].Count).
		Int("pedestrian", g.Plans[monitor.Pedestrian].Count).
		Float64("time_scale", cfg.TimeScale).
		Bool("stream", stream).
		Msg("starting")

	if !stream {
		return g.Run(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return g.Stream(ctx)
}
