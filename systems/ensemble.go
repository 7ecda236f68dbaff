// Package systems contains the sampling, boundary and diffusion systems for the simulation.
package systems

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/frap/components"
	"github.com/pthm-cable/frap/config"
)

// NewSource returns a PCG source derived from a single seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Ensemble is the starting particle field. It is immutable once built.
type Ensemble struct {
	positions     []components.Position
	bleached      []bool
	bleachedCount int
	bleachRadius  float64
	maxRadius     float64
}

// NewEnsemble samples count particles uniformly over the disk of radius
// maxRadius and bleaches those starting strictly inside bleachRadius.
// A nil src draws from the global generator.
func NewEnsemble(count int, bleachRadius, maxRadius float64, src rand.Source) (*Ensemble, error) {
	if err := config.ValidateGeometry(count, bleachRadius, maxRadius); err != nil {
		return nil, fmt.Errorf("sampling ensemble: %w", err)
	}

	angle := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src}
	// Drawing r^2 uniformly gives uniform density per unit area.
	radiusSq := distuv.Uniform{Min: 0, Max: maxRadius * maxRadius, Src: src}

	thetas := make([]float64, count)
	for i := range thetas {
		thetas[i] = angle.Rand()
	}
	radii := make([]float64, count)
	for i := range radii {
		radii[i] = math.Sqrt(radiusSq.Rand())
	}

	e := &Ensemble{
		positions:    make([]components.Position, count),
		bleached:     make([]bool, count),
		bleachRadius: bleachRadius,
		maxRadius:    maxRadius,
	}
	for i := range count {
		r := radii[i]
		p := components.Position{X: r * math.Cos(thetas[i]), Y: r * math.Sin(thetas[i])}
		if d := p.Radius(); d > maxRadius {
			// rounding in cos/sin can push r == maxRadius a ulp outside
			p.X *= maxRadius / d
			p.Y *= maxRadius / d
		}
		e.positions[i] = p
		if r < bleachRadius {
			e.bleached[i] = true
			e.bleachedCount++
		}
	}
	return e, nil
}

// Count returns the number of particles.
func (e *Ensemble) Count() int { return len(e.positions) }

// Position returns particle i's initial position.
func (e *Ensemble) Position(i int) components.Position { return e.positions[i] }

// Bleached reports whether particle i is bleached.
func (e *Ensemble) Bleached(i int) bool { return e.bleached[i] }

// BleachedCount returns the number of bleached particles.
func (e *Ensemble) BleachedCount() int { return e.bleachedCount }

// BleachRadius returns the radius of the bleached region.
func (e *Ensemble) BleachRadius() float64 { return e.bleachRadius }

// MaxRadius returns the disk boundary.
func (e *Ensemble) MaxRadius() float64 { return e.maxRadius }

// Bounds returns the radii the diffusion system works against.
func (e *Ensemble) Bounds() Bounds {
	return Bounds{BleachRadius: e.bleachRadius, MaxRadius: e.maxRadius}
}

// Positions returns a copy of the initial positions.
func (e *Ensemble) Positions() []components.Position {
	out := make([]components.Position, len(e.positions))
	copy(out, e.positions)
	return out
}

// Labels returns a copy of the bleached flags.
func (e *Ensemble) Labels() []bool {
	out := make([]bool, len(e.bleached))
	copy(out, e.bleached)
	return out
}

// Spawn creates one entity per particle in w, in particle order.
func (e *Ensemble) Spawn(w *ecs.World) {
	mapper := ecs.NewMap2[components.Position, components.Particle](w)
	for i := range e.positions {
		pos := e.positions[i]
		part := components.Particle{Index: int32(i), Bleached: e.bleached[i]}
		mapper.NewEntity(&pos, &part)
	}
}
