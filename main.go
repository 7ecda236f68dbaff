package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/frap/config"
	"github.com/pthm-cable/frap/sim"
	"github.com/pthm-cable/frap/systems"
	"github.com/pthm-cable/frap/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Uint64("seed", 0, "RNG seed of the first run (0 = time-based)")
	runs := flag.Int("runs", 1, "Number of independent runs, seeded seed, seed+1, ...")
	iterations := flag.Int("iterations", 0, "Time steps per run including step 0 (0 = use config)")
	workers := flag.Int("workers", -1, "Worker goroutines per step (-1 = use config, 0 = GOMAXPROCS)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV files and config snapshot")
	logStats := flag.Bool("log-stats", false, "Log per-step stats every telemetry.log_every steps")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, *seed, *runs, *iterations, *workers, *outputDir, *logStats); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, seed uint64, runs, iterations, workers int, outputDir string, logStats bool) error {
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	// CLI overrides
	if iterations > 0 {
		cfg.Simulation.Iterations = iterations
	}
	if workers >= 0 {
		cfg.Parallel.Workers = workers
	}
	if !logStats {
		cfg.Telemetry.LogEvery = 0
	}
	if err := cfg.Refresh(); err != nil {
		return err
	}
	if runs < 1 {
		return config.Invalid("runs", runs, "must be >= 1")
	}

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	slog.Info("starting FRAP simulation",
		"seed", seed,
		"runs", runs,
		"particles", cfg.Simulation.NumParticles,
		"iterations", cfg.Simulation.Iterations,
		"policy", cfg.Boundary.Policy,
		"workers", cfg.Derived.Workers,
	)

	series := make([]*sim.Series, 0, runs)
	summaries := make([]telemetry.RunSummary, 0, runs)
	perfRows := make([]telemetry.PerfRecord, 0, runs)

	for r := 0; r < runs; r++ {
		runSeed := seed + uint64(r)
		runOut := om
		if runs > 1 {
			if runOut, err = om.Sub(fmt.Sprintf("run_%03d", r)); err != nil {
				return err
			}
		}

		res, summary, err := runOnce(cfg, r, runSeed, runOut)
		if err != nil {
			return fmt.Errorf("run %d: %w", r, err)
		}
		series = append(series, res.Series)
		summaries = append(summaries, summary)
		perfRows = append(perfRows, res.Perf.ToCSV(r))
	}

	curve, err := sim.MeanSeries(series...)
	if err != nil {
		return err
	}
	bleached := 0
	for _, s := range summaries {
		bleached += s.Bleached
	}
	overall := telemetry.Analyze(curve.Mean, cfg.Simulation.NumParticles, bleached/runs,
		cfg.Derived.BleachFraction, cfg.Telemetry.PlateauWindow)
	slog.Info("mean recovery", "runs", runs, "recovery", overall)

	if err := om.WriteMean(curve.Records()); err != nil {
		return err
	}
	if err := om.WritePerf(perfRows); err != nil {
		return err
	}
	if err := om.WriteSummary(summaries); err != nil {
		return err
	}
	if om != nil {
		slog.Info("output written", "dir", om.Dir())
	}
	return nil
}

// runOnce executes one seeded run and writes its per-run files.
func runOnce(cfg *config.Config, index int, seed uint64, om *telemetry.OutputManager) (*sim.Result, telemetry.RunSummary, error) {
	s, err := sim.New(cfg, systems.NewSource(seed))
	if err != nil {
		return nil, telemetry.RunSummary{}, err
	}
	defer s.Close()

	start := time.Now()
	res, err := s.Run(cfg.Simulation.Iterations)
	if err != nil {
		return nil, telemetry.RunSummary{}, err
	}

	e := s.Ensemble()
	rec := telemetry.Analyze(res.Series.Floats(), e.Count(), e.BleachedCount(),
		cfg.Derived.BleachFraction, cfg.Telemetry.PlateauWindow)
	slog.Info("run complete",
		"run", index,
		"seed", seed,
		"duration", time.Since(start).Round(time.Millisecond),
		"escaped", res.Escaped,
		"recovery", rec,
		"perf", res.Perf,
	)

	if err := om.WriteFluorescence(res.Series.Records()); err != nil {
		return nil, telemetry.RunSummary{}, err
	}
	if err := om.WriteSteps(res.Stats); err != nil {
		return nil, telemetry.RunSummary{}, err
	}
	if cfg.Telemetry.WriteTrajectory {
		if err := om.WriteTrajectory(res.Trajectory.Records(e.Labels())); err != nil {
			return nil, telemetry.RunSummary{}, err
		}
	}
	return res, rec.Summary(index, seed, res.Escaped), nil
}
