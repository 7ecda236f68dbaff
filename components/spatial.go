package components

import "math"

// Position represents a particle's position in the disk.
type Position struct {
	X, Y float64
}

// Radius returns the distance from the origin.
func (p Position) Radius() float64 {
	return math.Hypot(p.X, p.Y)
}

// Angle returns the direction from the origin in radians.
func (p Position) Angle() float64 {
	return math.Atan2(p.Y, p.X)
}

// Add returns p displaced by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}
