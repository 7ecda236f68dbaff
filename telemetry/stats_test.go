package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/frap/systems"
)

func TestNewStepStats(t *testing.T) {
	tally := systems.Tally{Green: 3, InBleach: 5, Reflected: 2, Escaped: 1, RadiusSum: 40}
	s := NewStepStats(7, tally, 10, 6)

	assert.Equal(t, 7, s.Step)
	assert.Equal(t, 8, s.Time)
	assert.Equal(t, 3, s.Green)
	assert.Equal(t, 5, s.InBleach)
	assert.Equal(t, 2, s.Reflected)
	assert.Equal(t, 1, s.Escaped)
	assert.InDelta(t, 4.0, s.MeanRadius, 1e-12)
	assert.InDelta(t, 0.5, s.GreenFraction, 1e-12)
}

func TestNewStepStats_AllBleached(t *testing.T) {
	s := NewStepStats(1, systems.Tally{RadiusSum: 2}, 2, 0)
	assert.Zero(t, s.GreenFraction)
}

func TestCollector_RecordsInOrder(t *testing.T) {
	c := NewCollector(10, 4, 0, 3)
	c.Record(1, systems.Tally{Green: 1})
	c.Record(2, systems.Tally{Green: 2, Escaped: 2})
	c.Record(3, systems.Tally{Green: 4, Escaped: 1})

	stats := c.Stats()
	if assert.Len(t, stats, 3) {
		assert.Equal(t, []int{1, 2, 3}, []int{stats[0].Step, stats[1].Step, stats[2].Step})
		assert.InDelta(t, 4.0/6.0, stats[2].GreenFraction, 1e-12)
	}
	assert.Equal(t, 3, c.Escaped())
}
