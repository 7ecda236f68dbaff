package systems

import (
	"sync/atomic"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/frap/components"
)

func TestPool_CoversEveryItemOnce(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		p := NewPool(workers, 7, 0)
		hits := make([]int32, 100)
		var calls atomic.Int32

		p.Run(len(hits), func(id, start, end int) {
			calls.Add(1)
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		p.Stop()

		if int(calls.Load()) != p.Chunks(100) {
			t.Errorf("workers=%d: %d chunk calls, expected %d", workers, calls.Load(), p.Chunks(100))
		}
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("workers=%d: item %d processed %d times", workers, i, h)
			}
		}
	}
}

func TestPool_ChunkBoundariesIndependentOfWorkers(t *testing.T) {
	record := func(workers int) [][2]int {
		p := NewPool(workers, 10, 0)
		defer p.Stop()
		out := make([][2]int, p.Chunks(95))
		p.Run(95, func(id, start, end int) {
			out[id] = [2]int{start, end}
		})
		return out
	}

	a, b := record(1), record(6)
	if len(a) != 10 {
		t.Fatalf("expected 10 chunks, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d: %v vs %v", i, a[i], b[i])
		}
	}
	if a[9] != [2]int{90, 95} {
		t.Errorf("last chunk should be [90,95), got %v", a[9])
	}
}

func TestPool_EmptyRun(t *testing.T) {
	p := NewPool(4, 16, 0)
	p.Run(0, func(id, start, end int) {
		t.Error("fn must not be called for zero items")
	})
	p.Stop()
}

func newDiffusionFixture(t *testing.T, n int, seed uint64, workers int, policy Policy, sigma float64) (*Ensemble, *DiffusionSystem, *Pool) {
	t.Helper()
	src := NewSource(seed)
	e, err := NewEnsemble(n, 2, 5, src)
	if err != nil {
		t.Fatal(err)
	}
	w := ecs.NewWorld()
	e.Spawn(w)
	pool := NewPool(workers, 64, 0)
	t.Cleanup(pool.Stop)
	return e, NewDiffusionSystem(w, e.Bounds(), policy, 0, sigma, src, pool), pool
}

func TestDiffusionSystem_TallyConsistentWithPositions(t *testing.T) {
	e, sys, _ := newDiffusionFixture(t, 500, 42, 4, PolicyPullback, 0.1)

	pos := make([]components.Position, e.Count())
	for step := 0; step < 30; step++ {
		tally := sys.Update(func(i int32, p components.Position) { pos[i] = p })

		green, inBleach := 0, 0
		for i, p := range pos {
			if p.Radius() > 5 {
				t.Fatalf("step %d particle %d: radius %f outside boundary", step, i, p.Radius())
			}
			if p.Radius() < 2 {
				inBleach++
				if !e.Bleached(i) {
					green++
				}
			}
		}
		if tally.Green != green {
			t.Errorf("step %d: tally green %d, counted %d", step, tally.Green, green)
		}
		if tally.InBleach != inBleach {
			t.Errorf("step %d: tally in-bleach %d, counted %d", step, tally.InBleach, inBleach)
		}
		if tally.Green > e.Count()-e.BleachedCount() || tally.Green > tally.InBleach {
			t.Errorf("step %d: green %d exceeds bounds", step, tally.Green)
		}
	}
}

func TestDiffusionSystem_SameOutputForAnyWorkerCount(t *testing.T) {
	run := func(workers int) ([]components.Position, []Tally) {
		e, sys, _ := newDiffusionFixture(t, 700, 9, workers, PolicyPullback, 0.3)
		pos := make([]components.Position, e.Count())
		var tallies []Tally
		for step := 0; step < 20; step++ {
			tallies = append(tallies, sys.Update(func(i int32, p components.Position) { pos[i] = p }))
		}
		return pos, tallies
	}

	posA, tA := run(1)
	posB, tB := run(5)
	for i := range posA {
		if posA[i] != posB[i] {
			t.Fatalf("particle %d: %v vs %v", i, posA[i], posB[i])
		}
	}
	for i := range tA {
		if tA[i] != tB[i] {
			t.Errorf("step %d: %+v vs %+v", i, tA[i], tB[i])
		}
	}
}

func TestDiffusionSystem_MirrorKeepsLargeStepsInside(t *testing.T) {
	_, sys, _ := newDiffusionFixture(t, 300, 4, 2, PolicyMirror, 3.0)
	for step := 0; step < 25; step++ {
		tally := sys.Update(func(i int32, p components.Position) {
			if p.Radius() > 5+1e-9 {
				t.Fatalf("step %d particle %d escaped to radius %f", step, i, p.Radius())
			}
		})
		if tally.Escaped != 0 {
			t.Fatalf("step %d: mirror policy reported %d escapes", step, tally.Escaped)
		}
	}
}

func TestDiffusionSystem_DoesNotTouchEnsemble(t *testing.T) {
	e, sys, _ := newDiffusionFixture(t, 100, 8, 2, PolicyPullback, 0.5)
	before := e.Positions()
	for step := 0; step < 5; step++ {
		sys.Update(nil)
	}
	for i, p := range before {
		if e.Position(i) != p {
			t.Fatalf("ensemble particle %d mutated", i)
		}
	}
}
