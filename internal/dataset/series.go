// Package dataset turns a raw electricity-load series into the
// windowed, batched samples the training loop consumes.
package dataset

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series is an immutable time-ordered sequence of scalar observations
// with parallel timestamps.
type Series struct {
	Timestamps []time.Time
	Values     []float64
}

// NewSeries validates and wraps a value/timestamp pair. Timestamps must
// be strictly increasing and match the value count.
func NewSeries(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("dataset: %d timestamps for %d values", len(timestamps), len(values))
	}
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, fmt.Errorf("dataset: timestamps not strictly increasing at index %d (%s)", i, timestamps[i])
		}
	}
	return &Series{Timestamps: timestamps, Values: values}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// Split cuts the series into a train prefix and test suffix by
// position. Temporal order is preserved; nothing is shuffled.
func (s *Series) Split(trainRatio float64) (train, test *Series) {
	n := int(float64(s.Len()) * trainRatio)
	if n < 0 {
		n = 0
	}
	if n > s.Len() {
		n = s.Len()
	}
	train = &Series{Timestamps: s.Timestamps[:n], Values: s.Values[:n]}
	test = &Series{Timestamps: s.Timestamps[n:], Values: s.Values[n:]}
	return train, test
}

// After returns the sub-series with timestamps strictly after cutoff.
func (s *Series) After(cutoff time.Time) *Series {
	i := 0
	for i < s.Len() && !s.Timestamps[i].After(cutoff) {
		i++
	}
	return &Series{Timestamps: s.Timestamps[i:], Values: s.Values[i:]}
}

// Stats returns min, max and mean of the observations.
func (s *Series) Stats() (min, max, mean float64) {
	if s.Len() == 0 {
		return 0, 0, 0
	}
	return floats.Min(s.Values), floats.Max(s.Values), stat.Mean(s.Values, nil)
}
