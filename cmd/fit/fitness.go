package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/frap/config"
	"github.com/pthm-cable/frap/sim"
	"github.com/pthm-cable/frap/systems"
)

// FitnessEvaluator scores parameter vectors against a target curve.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []uint64
	baseConfig *config.Config
	target     []float64

	mu       sync.Mutex
	bestLoss float64
	bestX    []float64
}

// NewFitnessEvaluator creates a new evaluator. Each run has len(target)
// iterations.
func NewFitnessEvaluator(params *ParamVector, seeds []uint64, baseCfg *config.Config, target []float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		baseConfig: baseCfg,
		target:     target,
		bestLoss:   math.Inf(1),
	}
}

// Best returns the lowest loss seen and its clamped parameters.
func (fe *FitnessEvaluator) Best() (float64, []float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestLoss, fe.bestX
}

// Evaluate returns the mean squared error between the target and the
// seed-averaged simulated curve for raw parameters x (lower = better).
// Invalid parameters score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	series := make([]*sim.Series, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			series[idx], errs[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return math.Inf(1)
		}
	}
	curve, err := sim.MeanSeries(series...)
	if err != nil {
		return math.Inf(1)
	}

	loss := MeanSquaredError(fe.target, curve.Mean)

	fe.mu.Lock()
	if loss < fe.bestLoss {
		fe.bestLoss = loss
		fe.bestX = fe.params.Clamp(x)
	}
	fe.mu.Unlock()

	return loss
}

// runSimulation executes a single seeded run on one worker.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed uint64) (*sim.Series, error) {
	s, err := sim.New(cfg, systems.NewSource(seed))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	res, err := s.Run(len(fe.target))
	if err != nil {
		return nil, err
	}
	return res.Series, nil
}

// copyConfig returns a copy of the base config with fitting-friendly
// run settings.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Simulation.Iterations = len(fe.target)
	cfg.Parallel.Workers = 1
	cfg.Derived.Workers = 1
	cfg.Telemetry.LogEvery = 0
	return &cfg
}

// MeanSquaredError compares two equally long curves.
func MeanSquaredError(target, got []float64) float64 {
	if len(target) == 0 || len(target) != len(got) {
		return math.Inf(1)
	}
	d := floats.Distance(target, got, 2)
	return d * d / float64(len(target))
}
