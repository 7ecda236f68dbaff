package sim

import "github.com/pthm-cable/frap/telemetry"

// Series is the fluorescence time series of one run. Slot i carries time
// index i+1; slot 0 is a placeholder fixed at zero.
type Series struct {
	counts []int
}

// NewSeries allocates a series with n slots.
func NewSeries(n int) *Series {
	return &Series{counts: make([]int, n)}
}

// Len returns the number of slots.
func (s *Series) Len() int { return len(s.counts) }

// Record stores the green count of step i (i >= 1).
func (s *Series) Record(step, green int) {
	s.counts[step] = green
}

// Count returns the green count in slot i.
func (s *Series) Count(i int) int { return s.counts[i] }

// Time returns the time index of slot i.
func (s *Series) Time(i int) int { return i + 1 }

// Counts returns a copy of the green counts.
func (s *Series) Counts() []int {
	out := make([]int, len(s.counts))
	copy(out, s.counts)
	return out
}

// Floats returns the green counts as float64.
func (s *Series) Floats() []float64 {
	out := make([]float64, len(s.counts))
	for i, c := range s.counts {
		out[i] = float64(c)
	}
	return out
}

// Matrix returns the (2, n) form: row 0 time indices, row 1 green counts.
func (s *Series) Matrix() [2][]float64 {
	times := make([]float64, len(s.counts))
	for i := range times {
		times[i] = float64(s.Time(i))
	}
	return [2][]float64{times, s.Floats()}
}

// Records returns the series as (time, green) rows.
func (s *Series) Records() []telemetry.FluorescenceRecord {
	out := make([]telemetry.FluorescenceRecord, len(s.counts))
	for i, c := range s.counts {
		out[i] = telemetry.FluorescenceRecord{Time: s.Time(i), Green: c}
	}
	return out
}
