// Package components defines ECS components for the simulation.
package components

// Particle holds a particle's identity and its fluorescence label.
// Both are fixed for the lifetime of a run.
type Particle struct {
	Index    int32 // row in the ensemble and trajectory
	Bleached bool  // started strictly inside the bleach radius
}

// Class is the outcome of classifying a candidate position.
type Class uint8

const (
	ClassElsewhere Class = iota // inside the disk, not counted
	ClassGreen                  // unbleached and inside the bleach radius
	ClassOutside                // beyond the boundary, reflected
)

func (c Class) String() string {
	switch c {
	case ClassGreen:
		return "green"
	case ClassOutside:
		return "outside"
	default:
		return "elsewhere"
	}
}
