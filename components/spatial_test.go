package components

import (
	"math"
	"testing"
)

func TestPositionRadiusAndAngle(t *testing.T) {
	p := Position{X: 3, Y: 4}
	if r := p.Radius(); r != 5 {
		t.Errorf("expected radius 5, got %f", r)
	}

	q := Position{X: 0, Y: -2}
	if a := q.Angle(); math.Abs(a+math.Pi/2) > 1e-12 {
		t.Errorf("expected angle -pi/2, got %f", a)
	}
}

func TestPositionAdd(t *testing.T) {
	p := Position{X: 1, Y: -1}.Add(0.5, 2)
	if p.X != 1.5 || p.Y != 1 {
		t.Errorf("expected (1.5, 1), got (%f, %f)", p.X, p.Y)
	}
}

func TestClassString(t *testing.T) {
	for c, want := range map[Class]string{
		ClassElsewhere: "elsewhere",
		ClassGreen:     "green",
		ClassOutside:   "outside",
	} {
		if got := c.String(); got != want {
			t.Errorf("Class(%d).String() = %q, want %q", c, got, want)
		}
	}
}
