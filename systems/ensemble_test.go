package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/frap/components"
	"github.com/pthm-cable/frap/config"
)

func TestNewEnsemble_PositionsInsideDisk(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		e, err := NewEnsemble(500, 2, 5, NewSource(seed))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if e.Count() != 500 {
			t.Fatalf("expected 500 particles, got %d", e.Count())
		}
		for i := 0; i < e.Count(); i++ {
			p := e.Position(i)
			if math.IsNaN(p.X) || math.IsNaN(p.Y) {
				t.Fatalf("seed %d particle %d: non-finite position", seed, i)
			}
			if r := p.Radius(); r > 5 {
				t.Fatalf("seed %d particle %d: radius %f outside max radius", seed, i, r)
			}
		}
	}
}

func TestNewEnsemble_BleachedIffInsideBleachRadius(t *testing.T) {
	e, err := NewEnsemble(2000, 1.5, 4, NewSource(7))
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for i := 0; i < e.Count(); i++ {
		r := e.Position(i).Radius()
		// Position radius equals the sampled radius up to rounding.
		if math.Abs(r-1.5) < 1e-9 {
			continue
		}
		if (r < 1.5) != e.Bleached(i) {
			t.Errorf("particle %d: radius %f, bleached=%v", i, r, e.Bleached(i))
		}
		if e.Bleached(i) {
			count++
		}
	}
	if count != e.BleachedCount() {
		t.Errorf("BleachedCount() = %d, counted %d", e.BleachedCount(), count)
	}
}

func TestNewEnsemble_BleachedFractionMatchesArea(t *testing.T) {
	const n = 100000
	e, err := NewEnsemble(n, 2, 5, NewSource(99))
	if err != nil {
		t.Fatal(err)
	}

	got := float64(e.BleachedCount()) / n
	want := (2.0 / 5.0) * (2.0 / 5.0)
	// Binomial stddev is ~0.0012 here.
	if math.Abs(got-want) > 0.01 {
		t.Errorf("bleached fraction %f, expected %f", got, want)
	}
}

func TestNewEnsemble_InvalidParameters(t *testing.T) {
	cases := []struct {
		name         string
		count        int
		bleach, maxR float64
	}{
		{"zero count", 0, 1, 2},
		{"negative count", -1, 1, 2},
		{"zero max radius", 10, 1, 0},
		{"zero bleach radius", 10, 0, 2},
		{"bleach equals max", 10, 2, 2},
		{"bleach beyond max", 10, 3, 2},
	}
	for _, tc := range cases {
		e, err := NewEnsemble(tc.count, tc.bleach, tc.maxR, NewSource(1))
		if !errors.Is(err, config.ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", tc.name, err)
		}
		if e != nil {
			t.Errorf("%s: expected nil ensemble on error", tc.name)
		}
	}
}

func TestNewEnsemble_DeterministicForSeed(t *testing.T) {
	a, _ := NewEnsemble(300, 1, 3, NewSource(5))
	b, _ := NewEnsemble(300, 1, 3, NewSource(5))
	for i := 0; i < a.Count(); i++ {
		if a.Position(i) != b.Position(i) || a.Bleached(i) != b.Bleached(i) {
			t.Fatalf("particle %d differs between identical seeds", i)
		}
	}
}

func TestEnsemble_CopiesAreIndependent(t *testing.T) {
	e, _ := NewEnsemble(10, 1, 3, NewSource(3))
	pos := e.Positions()
	labels := e.Labels()
	pos[0] = components.Position{X: 100, Y: 100}
	labels[0] = !labels[0]

	if e.Position(0).X == 100 {
		t.Error("Positions() must return a copy")
	}
	if e.Bleached(0) == labels[0] {
		t.Error("Labels() must return a copy")
	}
}

func TestEnsemble_Spawn(t *testing.T) {
	e, _ := NewEnsemble(50, 1, 3, NewSource(11))
	w := ecs.NewWorld()
	e.Spawn(w)

	filter := ecs.NewFilter2[components.Position, components.Particle](w)
	query := filter.Query()
	seen := make(map[int32]bool)
	for query.Next() {
		pos, part := query.Get()
		i := int(part.Index)
		if *pos != e.Position(i) {
			t.Errorf("entity %d: position %v, expected %v", i, *pos, e.Position(i))
		}
		if part.Bleached != e.Bleached(i) {
			t.Errorf("entity %d: bleached mismatch", i)
		}
		seen[part.Index] = true
	}
	if len(seen) != 50 {
		t.Errorf("expected 50 entities, found %d", len(seen))
	}
}
