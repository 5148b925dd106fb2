package dataset

import (
	"math"
	"math/rand"
	"time"
)

// Synthetic generates a deterministic hourly load series: a daily and a
// yearly cycle on top of a base level, with a little noise. Useful for
// running the pipeline offline.
func Synthetic(start time.Time, hours int, seed int64) *Series {
	rng := rand.New(rand.NewSource(seed))

	timestamps := make([]time.Time, hours)
	values := make([]float64, hours)
	for i := 0; i < hours; i++ {
		t := start.Add(time.Duration(i) * time.Hour)
		daily := math.Sin(2 * math.Pi * float64(t.Hour()) / 24)
		yearly := math.Cos(2 * math.Pi * float64(t.YearDay()) / 365)
		noise := rng.NormFloat64() * 0.05

		timestamps[i] = t
		values[i] = 10 + 3*daily + 1.5*yearly + noise
	}

	s, err := NewSeries(timestamps, values)
	if err != nil {
		// hourly timestamps are strictly increasing by construction
		panic(err)
	}
	return s
}
