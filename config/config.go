// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Boundary policy names.
const (
	PolicyPullback = "pullback"
	PolicyMirror   = "mirror"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Boundary   BoundaryConfig   `yaml:"boundary"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Fit        FitConfig        `yaml:"fit"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig is the input surface of one FRAP run.
type SimulationConfig struct {
	NumParticles int     `yaml:"num_particles"`
	Mu           float64 `yaml:"mu"`            // Mean per-axis displacement per step
	Sigma        float64 `yaml:"sigma"`         // Stddev of per-axis displacement per step
	BleachRadius float64 `yaml:"bleach_radius"` // Particles starting inside are bleached
	MaxRadius    float64 `yaml:"max_radius"`    // Disk boundary
	Iterations   int     `yaml:"iterations"`    // Time steps including step 0
}

// BoundaryConfig selects how out-of-bounds candidates are pulled back.
type BoundaryConfig struct {
	Policy string `yaml:"policy"` // pullback (default) or mirror
}

// ParallelConfig controls the per-step worker pool.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`    // 0 = GOMAXPROCS
	ChunkSize int `yaml:"chunk_size"` // Particles per work chunk
	Threshold int `yaml:"threshold"`  // Below this particle count a step runs inline
}

// TelemetryConfig holds logging and analysis parameters.
type TelemetryConfig struct {
	LogEvery        int     `yaml:"log_every"`        // Steps between progress logs (0 = off)
	PlateauWindow   float64 `yaml:"plateau_window"`   // Trailing fraction of the series used for the plateau
	PerfWindow      int     `yaml:"perf_window"`      // Steps averaged by the perf collector
	WriteTrajectory bool    `yaml:"write_trajectory"` // Export trajectory.csv
}

// FitConfig holds defaults for cmd/fit.
type FitConfig struct {
	SigmaMin float64 `yaml:"sigma_min"`
	SigmaMax float64 `yaml:"sigma_max"`
	MuMin    float64 `yaml:"mu_min"`
	MuMax    float64 `yaml:"mu_max"`
	FitMu    bool    `yaml:"fit_mu"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Workers        int     // Effective worker count
	BleachFraction float64 // (bleach_radius / max_radius)^2, expected bleached share
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks every section and returns the first violation.
func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	switch c.Boundary.Policy {
	case "", PolicyPullback, PolicyMirror:
	default:
		return Invalid("boundary.policy", c.Boundary.Policy, "must be pullback or mirror")
	}
	if c.Parallel.Workers < 0 {
		return Invalid("parallel.workers", c.Parallel.Workers, "must be >= 0")
	}
	if c.Parallel.ChunkSize < 1 {
		return Invalid("parallel.chunk_size", c.Parallel.ChunkSize, "must be >= 1")
	}
	if c.Telemetry.PlateauWindow <= 0 || c.Telemetry.PlateauWindow > 1 {
		return Invalid("telemetry.plateau_window", c.Telemetry.PlateauWindow, "must be in (0, 1]")
	}
	if c.Fit.SigmaMin <= 0 || c.Fit.SigmaMax <= c.Fit.SigmaMin {
		return Invalid("fit.sigma_min", c.Fit.SigmaMin, "need 0 < sigma_min < sigma_max")
	}
	if c.Fit.MuMax <= c.Fit.MuMin {
		return Invalid("fit.mu_max", c.Fit.MuMax, "must be > mu_min")
	}
	return nil
}

// Validate checks the run parameters.
func (s SimulationConfig) Validate() error {
	if err := ValidateGeometry(s.NumParticles, s.BleachRadius, s.MaxRadius); err != nil {
		return err
	}
	if err := ValidateDisplacement(s.Mu, s.Sigma); err != nil {
		return err
	}
	return ValidateIterations(s.Iterations)
}

// ValidateGeometry checks the ensemble parameters.
func ValidateGeometry(count int, bleachRadius, maxRadius float64) error {
	if count <= 0 {
		return Invalid("num_particles", count, "must be > 0")
	}
	if !finite(maxRadius) || maxRadius <= 0 {
		return Invalid("max_radius", maxRadius, "must be finite and > 0")
	}
	if !finite(bleachRadius) || bleachRadius <= 0 {
		return Invalid("bleach_radius", bleachRadius, "must be finite and > 0")
	}
	if bleachRadius >= maxRadius {
		return Invalid("bleach_radius", bleachRadius, fmt.Sprintf("must be < max_radius (%g)", maxRadius))
	}
	return nil
}

// ValidateDisplacement checks the displacement distribution.
func ValidateDisplacement(mu, sigma float64) error {
	if !finite(mu) {
		return Invalid("mu", mu, "must be finite")
	}
	if !finite(sigma) || sigma <= 0 {
		return Invalid("sigma", sigma, "must be finite and > 0")
	}
	return nil
}

// ValidateIterations checks the step count of a run.
func ValidateIterations(iterations int) error {
	if iterations < 1 {
		return Invalid("iterations", iterations, "must be >= 1")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Boundary.Policy == "" {
		c.Boundary.Policy = PolicyPullback
	}

	c.Derived.Workers = c.Parallel.Workers
	if c.Derived.Workers == 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}

	ratio := c.Simulation.BleachRadius / c.Simulation.MaxRadius
	c.Derived.BleachFraction = ratio * ratio
}

// Refresh revalidates the config and recomputes derived values after
// fields were changed in code.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
