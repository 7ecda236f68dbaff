package systems

import (
	"math"

	"github.com/pthm-cable/frap/components"
	"github.com/pthm-cable/frap/config"
)

// Bounds holds the two radii of the FRAP geometry.
type Bounds struct {
	BleachRadius, MaxRadius float64
}

// Policy decides where a particle that stepped outside the disk ends up.
type Policy uint8

const (
	// PolicyPullback moves back from the previous position by the
	// overshoot, along the direction of the candidate position.
	PolicyPullback Policy = iota
	// PolicyMirror folds the candidate's radius back into the disk.
	PolicyMirror
)

// ParsePolicy maps a config policy name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", config.PolicyPullback:
		return PolicyPullback, nil
	case config.PolicyMirror:
		return PolicyMirror, nil
	}
	return 0, config.Invalid("boundary.policy", name, "must be pullback or mirror")
}

func (p Policy) String() string {
	if p == PolicyMirror {
		return config.PolicyMirror
	}
	return config.PolicyPullback
}

// Outcome is the result of advancing one particle by one step.
type Outcome struct {
	Pos     components.Position // recorded position
	Radius  float64             // distance of Pos from the origin
	Class   components.Class
	Escaped bool // recorded position is still beyond the boundary
}

// Advance moves a particle from prev by (dx, dy) and classifies it.
// Candidates beyond the boundary are reflected and never count as green;
// a bleached particle never counts regardless of where it is.
func Advance(prev components.Position, dx, dy float64, bleached bool, b Bounds, policy Policy) Outcome {
	cand := prev.Add(dx, dy)
	dist := cand.Radius()

	switch {
	case dist > b.MaxRadius:
		var pos components.Position
		if policy == PolicyMirror {
			pos = Mirror(cand, dist, b.MaxRadius)
		} else {
			pos = Pullback(prev, cand, dist, b.MaxRadius)
		}
		r := pos.Radius()
		return Outcome{Pos: pos, Radius: r, Class: components.ClassOutside, Escaped: r > b.MaxRadius}
	case dist < b.BleachRadius && !bleached:
		return Outcome{Pos: cand, Radius: dist, Class: components.ClassGreen}
	default:
		return Outcome{Pos: cand, Radius: dist, Class: components.ClassElsewhere}
	}
}

// Pullback returns prev + (maxRadius - dist) in the direction of cand.
// For overshoots larger than the distance to the far side of the disk the
// result lands outside; callers see that as Outcome.Escaped.
func Pullback(prev, cand components.Position, dist, maxRadius float64) components.Position {
	theta := cand.Angle()
	diff := maxRadius - dist
	return prev.Add(diff*math.Cos(theta), diff*math.Sin(theta))
}

// Mirror reflects cand at the circle until its signed radial distance is
// within [-maxRadius, maxRadius]. The line through the origin is kept.
func Mirror(cand components.Position, dist, maxRadius float64) components.Position {
	s := math.Mod(dist, 4*maxRadius)
	switch {
	case s > 3*maxRadius:
		s -= 4 * maxRadius
	case s > maxRadius:
		s = 2*maxRadius - s
	}
	theta := cand.Angle()
	return components.Position{X: s * math.Cos(theta), Y: s * math.Sin(theta)}
}

// Tally folds particle outcomes for one step.
type Tally struct {
	Green     int     // unbleached particles inside the bleach radius
	InBleach  int     // recorded positions inside the bleach radius, any label
	Reflected int     // candidates that crossed the boundary
	Escaped   int     // recorded positions beyond the boundary
	RadiusSum float64 // sum of recorded radii
}

// Observe adds one outcome.
func (t *Tally) Observe(o Outcome, bleachRadius float64) {
	switch o.Class {
	case components.ClassGreen:
		t.Green++
	case components.ClassOutside:
		t.Reflected++
	}
	if o.Escaped {
		t.Escaped++
	}
	if o.Radius < bleachRadius {
		t.InBleach++
	}
	t.RadiusSum += o.Radius
}

// Add returns the sum of two tallies.
func (t Tally) Add(o Tally) Tally {
	return Tally{
		Green:     t.Green + o.Green,
		InBleach:  t.InBleach + o.InBleach,
		Reflected: t.Reflected + o.Reflected,
		Escaped:   t.Escaped + o.Escaped,
		RadiusSum: t.RadiusSum + o.RadiusSum,
	}
}
