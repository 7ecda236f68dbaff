// Package sim runs FRAP simulations: it samples the particle ensemble,
// advances it step by step and records the trajectory and the
// fluorescence series.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/frap/components"
	"github.com/pthm-cable/frap/config"
	"github.com/pthm-cable/frap/systems"
	"github.com/pthm-cable/frap/telemetry"
)

// Simulation holds the fixed inputs of a run.
type Simulation struct {
	params   config.SimulationConfig
	policy   systems.Policy
	ensemble *systems.Ensemble
	src      rand.Source
	pool     *systems.Pool

	logEvery   int
	perfWindow int
}

// Result is the output of one run.
type Result struct {
	Trajectory *Trajectory
	Series     *Series
	Stats      []telemetry.StepStats
	Perf       telemetry.PerfStats
	Escaped    int
}

// New validates cfg and samples the initial ensemble from src. The same
// source drives the displacements of every subsequent Run.
func New(cfg *config.Config, src rand.Source) (*Simulation, error) {
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	policy, err := systems.ParsePolicy(cfg.Boundary.Policy)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	p := cfg.Simulation
	ensemble, err := systems.NewEnsemble(p.NumParticles, p.BleachRadius, p.MaxRadius, src)
	if err != nil {
		return nil, err
	}

	return &Simulation{
		params:     p,
		policy:     policy,
		ensemble:   ensemble,
		src:        src,
		pool:       systems.NewPool(cfg.Derived.Workers, cfg.Parallel.ChunkSize, cfg.Parallel.Threshold),
		logEvery:   cfg.Telemetry.LogEvery,
		perfWindow: cfg.Telemetry.PerfWindow,
	}, nil
}

// Ensemble returns the initial particle field.
func (s *Simulation) Ensemble() *systems.Ensemble {
	return s.ensemble
}

// Close stops the worker pool.
func (s *Simulation) Close() {
	s.pool.Stop()
}

// Run advances the ensemble for iterations-1 steps. Step 0 of the
// trajectory is the initial field; slot 0 of the series stays zero.
func (s *Simulation) Run(iterations int) (*Result, error) {
	if err := config.ValidateIterations(iterations); err != nil {
		return nil, fmt.Errorf("running simulation: %w", err)
	}

	n := s.ensemble.Count()
	traj := NewTrajectory(n, iterations)
	for i := 0; i < n; i++ {
		traj.Set(i, 0, s.ensemble.Position(i))
	}
	series := NewSeries(iterations)
	collector := telemetry.NewCollector(n, s.ensemble.BleachedCount(), s.logEvery, iterations-1)
	perf := telemetry.NewPerfCollector(s.perfWindow)

	result := &Result{Trajectory: traj, Series: series}
	if iterations == 1 {
		return result, nil
	}

	world := ecs.NewWorld()
	s.ensemble.Spawn(world)
	diffusion := systems.NewDiffusionSystem(world, s.ensemble.Bounds(), s.policy,
		s.params.Mu, s.params.Sigma, s.src, s.pool)

	slog.Debug("run started",
		"particles", n,
		"bleached", s.ensemble.BleachedCount(),
		"iterations", iterations,
		"policy", s.policy.String(),
		"workers", s.pool.Workers(),
	)

	for step := 1; step < iterations; step++ {
		perf.StartStep()
		perf.StartPhase(telemetry.PhaseDiffusion)
		tally := diffusion.Update(func(index int32, pos components.Position) {
			traj.Set(int(index), step, pos)
		})

		perf.StartPhase(telemetry.PhaseRecord)
		series.Record(step, tally.Green)
		collector.Record(step, tally)
		perf.EndStep()
	}

	result.Stats = collector.Stats()
	result.Escaped = collector.Escaped()
	result.Perf = perf.Stats()
	return result, nil
}
