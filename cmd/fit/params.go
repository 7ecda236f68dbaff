package main

import (
	"github.com/pthm-cable/frap/config"
)

// ParamSpec defines a single fitted parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Starting value
}

// ParamVector holds the fitted parameters in optimizer order.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector builds the vector from the fit bounds: sigma always,
// mu only when fit.fit_mu is set.
func NewParamVector(cfg *config.Config) *ParamVector {
	fc := cfg.Fit
	specs := []ParamSpec{{
		Name:    "sigma",
		Path:    "simulation.sigma",
		Min:     fc.SigmaMin,
		Max:     fc.SigmaMax,
		Default: clamp(cfg.Simulation.Sigma, fc.SigmaMin, fc.SigmaMax),
	}}
	if fc.FitMu {
		specs = append(specs, ParamSpec{
			Name:    "mu",
			Path:    "simulation.mu",
			Min:     fc.MuMin,
			Max:     fc.MuMax,
			Default: clamp(cfg.Simulation.Mu, fc.MuMin, fc.MuMax),
		})
	}
	return &ParamVector{Specs: specs}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the starting values.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = clamp(v[i], spec.Min, spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "sigma":
			cfg.Simulation.Sigma = clamped[i]
		case "mu":
			cfg.Simulation.Mu = clamped[i]
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
