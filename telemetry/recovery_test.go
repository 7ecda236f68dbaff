package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedGreen(t *testing.T) {
	assert.InDelta(t, 84.0, ExpectedGreen(100, 16, 1.0), 1e-12)
	assert.InDelta(t, 13.44, ExpectedGreen(100, 16, 0.16), 1e-12)
}

func TestAnalyze_RecoveryCurve(t *testing.T) {
	// slot 0 placeholder, then a saturating rise to 10
	counts := []float64{0, 1, 3, 5, 7, 8, 9, 10, 10, 10, 10}

	r := Analyze(counts, 100, 20, 0.125, 0.2)

	assert.Equal(t, 100, r.Particles)
	assert.Equal(t, 20, r.Bleached)
	assert.InDelta(t, 10.0, r.Expected, 1e-12)
	assert.InDelta(t, 10.0, r.Plateau, 1e-12, "last 2 of 10 measured slots")
	assert.InDelta(t, 1.0, r.Recovered, 1e-12)
	assert.InDelta(t, 10.0, r.Peak, 1e-12)
	// first slot >= 5 is slot 3, time index 4
	assert.Equal(t, 4, r.HalfTime)
}

func TestAnalyze_WindowAtLeastOneSlot(t *testing.T) {
	r := Analyze([]float64{0, 2, 4, 6}, 10, 2, 0.5, 0.01)
	assert.InDelta(t, 6.0, r.Plateau, 1e-12)
}

func TestAnalyze_PlaceholderOnly(t *testing.T) {
	r := Analyze([]float64{0}, 10, 2, 0.5, 0.1)
	assert.Zero(t, r.Plateau)
	assert.Zero(t, r.HalfTime)
	assert.InDelta(t, 4.0, r.Expected, 1e-12)
}

func TestAnalyze_NoRecovery(t *testing.T) {
	r := Analyze([]float64{0, 0, 0, 0}, 10, 10, 0.5, 0.5)
	assert.Zero(t, r.Plateau)
	assert.Zero(t, r.Recovered, "no unbleached particles means no expected signal")
	assert.Zero(t, r.HalfTime)
}

func TestRecovery_Summary(t *testing.T) {
	r := Recovery{Particles: 5, Bleached: 1, Expected: 2, Plateau: 1, Recovered: 0.5, HalfTime: 3, Peak: 2}
	s := r.Summary(2, 99, 4)
	assert.Equal(t, RunSummary{
		Run: 2, Seed: 99, Particles: 5, Bleached: 1, Expected: 2,
		Plateau: 1, Recovered: 0.5, HalfTime: 3, Peak: 2, Escaped: 4,
	}, s)
}
