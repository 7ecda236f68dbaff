package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/frap/config"
	"github.com/pthm-cable/frap/telemetry"
)

// MeanCurve is the slot-wise average of several runs' series.
type MeanCurve struct {
	Mean   []float64
	StdDev []float64
	Runs   int
}

// MeanSeries averages equally long series slot by slot.
func MeanSeries(series ...*Series) (*MeanCurve, error) {
	if len(series) == 0 {
		return nil, config.Invalid("series", 0, "need at least one series")
	}
	n := series[0].Len()
	for i, s := range series {
		if s.Len() != n {
			return nil, config.Invalid("series", i, fmt.Sprintf("length %d, expected %d", s.Len(), n))
		}
	}

	curve := &MeanCurve{
		Mean:   make([]float64, n),
		StdDev: make([]float64, n),
		Runs:   len(series),
	}
	column := make([]float64, len(series))
	for slot := 0; slot < n; slot++ {
		for r, s := range series {
			column[r] = float64(s.Count(slot))
		}
		if len(column) > 1 {
			curve.Mean[slot], curve.StdDev[slot] = stat.MeanStdDev(column, nil)
		} else {
			curve.Mean[slot] = column[0]
		}
	}
	return curve, nil
}

// Records returns the curve as mean_fluorescence.csv rows.
func (c *MeanCurve) Records() []telemetry.MeanRecord {
	out := make([]telemetry.MeanRecord, len(c.Mean))
	for i := range c.Mean {
		out[i] = telemetry.MeanRecord{Time: i + 1, Mean: c.Mean[i], StdDev: c.StdDev[i]}
	}
	return out
}
