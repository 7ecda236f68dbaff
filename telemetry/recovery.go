package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Recovery summarizes a fluorescence series.
type Recovery struct {
	Particles int     `csv:"particles"`
	Bleached  int     `csv:"bleached"`
	Expected  float64 `csv:"expected"`  // equilibrium green count
	Plateau   float64 `csv:"plateau"`   // mean over the trailing window
	Recovered float64 `csv:"recovered"` // plateau / expected
	HalfTime  int     `csv:"half_time"` // first time index reaching plateau/2, 0 if none
	Peak      float64 `csv:"peak"`
}

// ExpectedGreen returns the equilibrium green count: unbleached particles
// spread uniformly, of which a bleachFraction share sits in the bleach region.
func ExpectedGreen(particles, bleached int, bleachFraction float64) float64 {
	return float64(particles-bleached) * bleachFraction
}

// Analyze computes recovery metrics from per-slot green counts. Slot 0 is
// the placeholder and is skipped; slot i has time index i+1. window is the
// trailing fraction of measured slots averaged for the plateau.
func Analyze(counts []float64, particles, bleached int, bleachFraction, window float64) Recovery {
	r := Recovery{
		Particles: particles,
		Bleached:  bleached,
		Expected:  ExpectedGreen(particles, bleached, bleachFraction),
	}
	if len(counts) < 2 {
		return r
	}
	measured := counts[1:]

	tail := int(math.Ceil(window * float64(len(measured))))
	tail = max(1, min(tail, len(measured)))
	r.Plateau = stat.Mean(measured[len(measured)-tail:], nil)
	r.Peak = floats.Max(measured)
	if r.Expected > 0 {
		r.Recovered = r.Plateau / r.Expected
	}

	if r.Plateau > 0 {
		half := r.Plateau / 2
		for j, v := range measured {
			if v >= half {
				r.HalfTime = j + 2
				break
			}
		}
	}
	return r
}

// LogValue implements slog.LogValuer for structured logging.
func (r Recovery) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("particles", r.Particles),
		slog.Int("bleached", r.Bleached),
		slog.Float64("expected", r.Expected),
		slog.Float64("plateau", r.Plateau),
		slog.Float64("recovered", r.Recovered),
		slog.Int("half_time", r.HalfTime),
		slog.Float64("peak", r.Peak),
	)
}

// RunSummary is one summary.csv row.
type RunSummary struct {
	Run       int     `csv:"run"`
	Seed      uint64  `csv:"seed"`
	Particles int     `csv:"particles"`
	Bleached  int     `csv:"bleached"`
	Expected  float64 `csv:"expected"`
	Plateau   float64 `csv:"plateau"`
	Recovered float64 `csv:"recovered"`
	HalfTime  int     `csv:"half_time"`
	Peak      float64 `csv:"peak"`
	Escaped   int     `csv:"escaped"`
}

// Summary flattens r into a summary row.
func (r Recovery) Summary(run int, seed uint64, escaped int) RunSummary {
	return RunSummary{
		Run:       run,
		Seed:      seed,
		Particles: r.Particles,
		Bleached:  r.Bleached,
		Expected:  r.Expected,
		Plateau:   r.Plateau,
		Recovered: r.Recovered,
		HalfTime:  r.HalfTime,
		Peak:      r.Peak,
		Escaped:   escaped,
	}
}
