// Package main fits the displacement distribution of the FRAP simulation
// to a measured fluorescence curve with Nelder-Mead.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/frap/config"
	"github.com/pthm-cable/frap/telemetry"
)

// FitLogRecord is one row of fit_log.csv.
type FitLogRecord struct {
	Eval  int     `csv:"eval"`
	Loss  float64 `csv:"loss"`
	Sigma float64 `csv:"sigma"`
	Mu    float64 `csv:"mu"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	targetPath := flag.String("target", "", "Target fluorescence CSV (time,green)")
	seeds := flag.Int("seeds", 4, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := fit(*configPath, *targetPath, *seeds, *maxEvals, *outputDir); err != nil {
		slog.Error("fit failed", "error", err)
		os.Exit(1)
	}
}

func fit(configPath, targetPath string, seeds, maxEvals int, outputDir string) error {
	if targetPath == "" || outputDir == "" {
		return errors.New("-target and -output are required")
	}
	if seeds < 1 {
		return config.Invalid("seeds", seeds, "must be >= 1")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	baseCfg := config.Cfg()

	target, err := loadTarget(targetPath)
	if err != nil {
		return err
	}

	params := NewParamVector(baseCfg)

	evalSeeds := make([]uint64, seeds)
	for i := range evalSeeds {
		evalSeeds[i] = uint64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, evalSeeds, baseCfg, target)

	var (
		fitLog    []FitLogRecord
		startTime = time.Now()
	)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			loss := evaluator.Evaluate(raw)

			cfg := *baseCfg
			params.ApplyToConfig(&cfg, raw)
			fitLog = append(fitLog, FitLogRecord{
				Eval:  len(fitLog) + 1,
				Loss:  loss,
				Sigma: cfg.Simulation.Sigma,
				Mu:    cfg.Simulation.Mu,
			})

			elapsed := time.Since(startTime)
			bestLoss, _ := evaluator.Best()
			slog.Info("evaluation",
				"eval", len(fitLog),
				"max_evals", maxEvals,
				"loss", loss,
				"best", bestLoss,
				"sigma", cfg.Simulation.Sigma,
				"mu", cfg.Simulation.Mu,
				"elapsed", formatDuration(elapsed),
			)
			return loss
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0, // Sequential evaluation
	}

	slog.Info("starting Nelder-Mead fit",
		"params", params.Dim(),
		"seeds", seeds,
		"iterations", len(target),
		"max_evals", maxEvals,
	)

	initX := params.Normalize(params.DefaultVector())
	if _, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{}); err != nil {
		// Hitting the evaluation budget is reported as an error; the best
		// point so far is still usable.
		slog.Warn("optimization ended", "error", err)
	}

	if err := writeFitLog(filepath.Join(outputDir, "fit_log.csv"), fitLog); err != nil {
		return err
	}

	bestLoss, bestParams := evaluator.Best()
	if bestParams == nil {
		return errors.New("no successful evaluation")
	}

	bestCfg := *baseCfg
	params.ApplyToConfig(&bestCfg, bestParams)
	if err := bestCfg.Refresh(); err != nil {
		return err
	}
	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return err
	}

	slog.Info("fit complete",
		"evals", len(fitLog),
		"duration", formatDuration(time.Since(startTime)),
		"loss", bestLoss,
		"sigma", bestCfg.Simulation.Sigma,
		"mu", bestCfg.Simulation.Mu,
		"config", configOutPath,
	)
	return nil
}

// loadTarget reads a fluorescence CSV and returns green counts ordered by time.
func loadTarget(path string) ([]float64, error) {
	records, err := telemetry.ReadFluorescence(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, config.Invalid("target", path, "no rows")
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Time < records[j].Time })

	target := make([]float64, len(records))
	for i, r := range records {
		target[i] = float64(r.Green)
	}
	return target, nil
}

func writeFitLog(path string, rows []FitLogRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating fit log: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("writing fit log: %w", err)
	}
	return nil
}
