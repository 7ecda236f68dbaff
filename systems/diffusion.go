package systems

import (
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/frap/components"
)

// particleSnapshot captures read-only state for the parallel phase.
type particleSnapshot struct {
	Entity   ecs.Entity
	Particle components.Particle
	Pos      components.Position
}

// DiffusionSystem advances every particle by one Brownian step.
type DiffusionSystem struct {
	filter *ecs.Filter2[components.Position, components.Particle]
	posMap *ecs.Map1[components.Position]
	bounds Bounds
	policy Policy
	dispX  distuv.Normal
	dispY  distuv.Normal
	pool   *Pool

	snapshots []particleSnapshot
	outcomes  []Outcome
	dx, dy    []float64
	tallies   []Tally
}

// NewDiffusionSystem creates a diffusion system over the particles in w.
// Displacements are Normal(mu, sigma) per axis, drawn from src.
func NewDiffusionSystem(w *ecs.World, bounds Bounds, policy Policy, mu, sigma float64, src rand.Source, pool *Pool) *DiffusionSystem {
	return &DiffusionSystem{
		filter: ecs.NewFilter2[components.Position, components.Particle](w),
		posMap: ecs.NewMap1[components.Position](w),
		bounds: bounds,
		policy: policy,
		dispX:  distuv.Normal{Mu: mu, Sigma: sigma, Src: src},
		dispY:  distuv.Normal{Mu: mu, Sigma: sigma, Src: src},
		pool:   pool,
	}
}

// Update runs one step. record, if non-nil, receives every particle's
// final position. The returned tally is the fold of all chunk tallies.
func (s *DiffusionSystem) Update(record func(index int32, pos components.Position)) Tally {
	// Phase A: snapshot step i-1 state
	s.snapshots = s.snapshots[:0]
	query := s.filter.Query()
	for query.Next() {
		pos, part := query.Get()
		s.snapshots = append(s.snapshots, particleSnapshot{
			Entity:   query.Entity(),
			Particle: *part,
			Pos:      *pos,
		})
	}

	n := len(s.snapshots)
	if n == 0 {
		return Tally{}
	}
	s.resize(n)

	// Draws stay on this goroutine: all x displacements, then all y,
	// in particle order.
	for i := 0; i < n; i++ {
		s.dx[i] = s.dispX.Rand()
	}
	for i := 0; i < n; i++ {
		s.dy[i] = s.dispY.Rand()
	}

	// Phase B: compute outcomes, one tally per chunk
	s.pool.Run(n, s.computeChunk)

	// Phase C: apply (single writer)
	for i := range s.snapshots {
		snap := &s.snapshots[i]
		out := s.outcomes[i]
		*s.posMap.Get(snap.Entity) = out.Pos
		if record != nil {
			record(snap.Particle.Index, out.Pos)
		}
	}

	var total Tally
	for _, t := range s.tallies {
		total = total.Add(t)
	}
	return total
}

// computeChunk advances snapshots [start, end).
func (s *DiffusionSystem) computeChunk(id, start, end int) {
	var t Tally
	for i := start; i < end; i++ {
		snap := &s.snapshots[i]
		idx := snap.Particle.Index
		out := Advance(snap.Pos, s.dx[idx], s.dy[idx], snap.Particle.Bleached, s.bounds, s.policy)
		s.outcomes[i] = out
		t.Observe(out, s.bounds.BleachRadius)
	}
	s.tallies[id] = t
}

func (s *DiffusionSystem) resize(n int) {
	if cap(s.outcomes) < n {
		s.outcomes = make([]Outcome, n)
		s.dx = make([]float64, n)
		s.dy = make([]float64, n)
	}
	s.outcomes = s.outcomes[:n]
	s.dx = s.dx[:n]
	s.dy = s.dy[:n]

	chunks := s.pool.Chunks(n)
	if cap(s.tallies) < chunks {
		s.tallies = make([]Tally, chunks)
	}
	s.tallies = s.tallies[:chunks]
}
