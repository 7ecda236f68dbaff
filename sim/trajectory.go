package sim

import (
	"math"

	"github.com/pthm-cable/frap/components"
	"github.com/pthm-cable/frap/telemetry"
)

// Axis indices of a Trajectory.
const (
	AxisX = 0
	AxisY = 1
)

// Trajectory holds every particle's position at every step, shaped
// (axis, particle, step) and stored row-major.
type Trajectory struct {
	particles int
	steps     int
	data      []float64
}

// NewTrajectory allocates a zeroed trajectory.
func NewTrajectory(particles, steps int) *Trajectory {
	return &Trajectory{
		particles: particles,
		steps:     steps,
		data:      make([]float64, 2*particles*steps),
	}
}

// Shape returns (2, particles, steps).
func (t *Trajectory) Shape() [3]int {
	return [3]int{2, t.particles, t.steps}
}

func (t *Trajectory) offset(axis, particle, step int) int {
	return (axis*t.particles+particle)*t.steps + step
}

// At returns one coordinate.
func (t *Trajectory) At(axis, particle, step int) float64 {
	return t.data[t.offset(axis, particle, step)]
}

// Set stores a particle's position at a step.
func (t *Trajectory) Set(particle, step int, p components.Position) {
	t.data[t.offset(AxisX, particle, step)] = p.X
	t.data[t.offset(AxisY, particle, step)] = p.Y
}

// Position returns a particle's position at a step.
func (t *Trajectory) Position(particle, step int) components.Position {
	return components.Position{
		X: t.data[t.offset(AxisX, particle, step)],
		Y: t.data[t.offset(AxisY, particle, step)],
	}
}

// Frame returns all particle positions at one step.
func (t *Trajectory) Frame(step int) []components.Position {
	out := make([]components.Position, t.particles)
	for i := range out {
		out[i] = t.Position(i, step)
	}
	return out
}

// Data returns the row-major backing slice. Callers must not modify it.
func (t *Trajectory) Data() []float64 {
	return t.data
}

// Extent returns the largest absolute coordinate, the half-width a
// renderer needs to fit every frame.
func (t *Trajectory) Extent() float64 {
	var m float64
	for _, v := range t.data {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

// MaxRadius returns the largest distance from the origin over all steps.
func (t *Trajectory) MaxRadius() float64 {
	var m float64
	for p := 0; p < t.particles; p++ {
		for s := 0; s < t.steps; s++ {
			m = math.Max(m, t.Position(p, s).Radius())
		}
	}
	return m
}

// Records flattens the trajectory for CSV export, step-major.
func (t *Trajectory) Records(bleached []bool) []telemetry.TrajectoryRecord {
	out := make([]telemetry.TrajectoryRecord, 0, t.particles*t.steps)
	for s := 0; s < t.steps; s++ {
		for p := 0; p < t.particles; p++ {
			pos := t.Position(p, s)
			out = append(out, telemetry.TrajectoryRecord{
				Step:     s,
				Particle: p,
				X:        pos.X,
				Y:        pos.Y,
				Bleached: p < len(bleached) && bleached[p],
			})
		}
	}
	return out
}
