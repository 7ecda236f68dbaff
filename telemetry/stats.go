package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/frap/systems"
)

// StepStats holds the per-step counts of one run.
type StepStats struct {
	Step          int     `csv:"step"`
	Time          int     `csv:"time"`
	Green         int     `csv:"green"`
	InBleach      int     `csv:"in_bleach"`
	Reflected     int     `csv:"reflected"`
	Escaped       int     `csv:"escaped"`
	MeanRadius    float64 `csv:"mean_radius"`
	GreenFraction float64 `csv:"green_fraction"` // green / unbleached particles
}

// NewStepStats converts a step tally into a stats row.
// Step i reports time index i+1.
func NewStepStats(step int, t systems.Tally, particles, unbleached int) StepStats {
	s := StepStats{
		Step:      step,
		Time:      step + 1,
		Green:     t.Green,
		InBleach:  t.InBleach,
		Reflected: t.Reflected,
		Escaped:   t.Escaped,
	}
	if particles > 0 {
		s.MeanRadius = t.RadiusSum / float64(particles)
	}
	if unbleached > 0 {
		s.GreenFraction = float64(t.Green) / float64(unbleached)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s StepStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", s.Step),
		slog.Int("green", s.Green),
		slog.Int("in_bleach", s.InBleach),
		slog.Int("reflected", s.Reflected),
		slog.Int("escaped", s.Escaped),
		slog.Float64("mean_radius", s.MeanRadius),
		slog.Float64("green_fraction", s.GreenFraction),
	)
}

// LogStats logs the step stats using slog.
func (s StepStats) LogStats() {
	slog.Info("stats",
		"step", s.Step,
		"green", s.Green,
		"in_bleach", s.InBleach,
		"reflected", s.Reflected,
		"escaped", s.Escaped,
		"mean_radius", s.MeanRadius,
		"green_fraction", s.GreenFraction,
	)
}
