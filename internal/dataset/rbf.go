package dataset

import (
	"fmt"
	"math"
	"time"
)

// RepeatingBasis encodes a cyclical feature (e.g. day of year) as a set
// of repeating Gaussian basis functions. Centers are spread evenly over
// the input range and distances wrap around, so the encoding of the
// range end matches the encoding of its start.
type RepeatingBasis struct {
	periods  int
	rangeMin float64
	rangeMax float64
}

// NewRepeatingBasis creates an encoder with the given number of basis
// functions over [rangeMin, rangeMax].
func NewRepeatingBasis(periods int, rangeMin, rangeMax float64) (*RepeatingBasis, error) {
	if periods < 1 {
		return nil, fmt.Errorf("dataset: basis periods must be positive, got %d", periods)
	}
	if rangeMax <= rangeMin {
		return nil, fmt.Errorf("dataset: invalid basis range [%g, %g]", rangeMin, rangeMax)
	}
	return &RepeatingBasis{periods: periods, rangeMin: rangeMin, rangeMax: rangeMax}, nil
}

// Periods returns the number of basis functions.
func (r *RepeatingBasis) Periods() int {
	return r.periods
}

// Transform encodes a single value into its basis activations.
func (r *RepeatingBasis) Transform(x float64) []float64 {
	// Normalize to [0, 1); width of each bump is one period
	base := (x - r.rangeMin) / (r.rangeMax - r.rangeMin)
	base = base - math.Floor(base)
	width := 1.0 / float64(r.periods)

	out := make([]float64, r.periods)
	for j := 0; j < r.periods; j++ {
		center := float64(j) / float64(r.periods)
		d := math.Abs(base - center)
		if d > 0.5 {
			d = 1 - d
		}
		out[j] = math.Exp(-(d / width) * (d / width))
	}
	return out
}

// TransformAll encodes a slice of values, one row per value.
func (r *RepeatingBasis) TransformAll(xs []float64) [][]float64 {
	rows := make([][]float64, len(xs))
	for i, x := range xs {
		rows[i] = r.Transform(x)
	}
	return rows
}

// DayOfYear returns the day of year of t as a float, the cyclical input
// used for the seasonal basis features.
func DayOfYear(t time.Time) float64 {
	return float64(t.YearDay())
}
