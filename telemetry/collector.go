package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/frap/systems"
)

// Collector accumulates per-step stats for one run.
type Collector struct {
	particles  int
	unbleached int
	logEvery   int

	stats   []StepStats
	escaped int
}

// NewCollector creates a new stats collector.
// logEvery: steps between progress log lines (0 disables them)
func NewCollector(particles, bleached, logEvery, steps int) *Collector {
	return &Collector{
		particles:  particles,
		unbleached: particles - bleached,
		logEvery:   logEvery,
		stats:      make([]StepStats, 0, steps),
	}
}

// Record adds the tally of one step.
func (c *Collector) Record(step int, t systems.Tally) StepStats {
	s := NewStepStats(step, t, c.particles, c.unbleached)
	c.stats = append(c.stats, s)

	if t.Escaped > 0 {
		c.escaped += t.Escaped
		slog.Warn("particles left the disk after reflection",
			"step", step,
			"escaped", t.Escaped,
		)
	}
	if c.logEvery > 0 && step%c.logEvery == 0 {
		s.LogStats()
	}
	return s
}

// Stats returns the recorded rows in step order.
func (c *Collector) Stats() []StepStats {
	return c.stats
}

// Escaped returns the total number of escapes over the run.
func (c *Collector) Escaped() int {
	return c.escaped
}
