package dataset

import (
	"math"
	"testing"
	"time"
)

func hourly(start time.Time, values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range values {
		timestamps[i] = start.Add(time.Duration(i) * time.Hour)
	}
	s, err := NewSeries(timestamps, values)
	if err != nil {
		panic(err)
	}
	return s
}

func TestNewSeriesValidation(t *testing.T) {
	now := time.Date(2012, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := NewSeries([]time.Time{now}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
	if _, err := NewSeries([]time.Time{now, now}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for non-increasing timestamps")
	}
	if _, err := NewSeries([]time.Time{now.Add(time.Hour), now}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for decreasing timestamps")
	}
	if _, err := NewSeries(nil, nil); err != nil {
		t.Fatalf("empty series should be valid: %v", err)
	}
}

func TestSeriesSplit(t *testing.T) {
	s := hourly(time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), ramp(100))

	train, test := s.Split(0.67)
	if train.Len() != 67 || test.Len() != 33 {
		t.Fatalf("split sizes %d/%d, want 67/33", train.Len(), test.Len())
	}
	if train.Values[66] != 66 || test.Values[0] != 67 {
		t.Fatal("split is not positional")
	}
	if !test.Timestamps[0].After(train.Timestamps[train.Len()-1]) {
		t.Fatal("test set does not follow train set in time")
	}
}

func TestSeriesAfter(t *testing.T) {
	start := time.Date(2011, 12, 31, 22, 0, 0, 0, time.UTC)
	s := hourly(start, ramp(10))

	cutoff := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	trimmed := s.After(cutoff)
	if trimmed.Len() != 7 {
		t.Fatalf("expected 7 observations after cutoff, got %d", trimmed.Len())
	}
	if !trimmed.Timestamps[0].After(cutoff) {
		t.Fatalf("first timestamp %s is not after %s", trimmed.Timestamps[0], cutoff)
	}
}

func TestSeriesStats(t *testing.T) {
	s := hourly(time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), []float64{2, 4, 6})

	min, max, mean := s.Stats()
	if min != 2 || max != 6 || math.Abs(mean-4) > 1e-12 {
		t.Fatalf("stats = %v/%v/%v, want 2/6/4", min, max, mean)
	}
}

func TestSyntheticDeterministic(t *testing.T) {
	start := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Synthetic(start, 48, 42)
	b := Synthetic(start, 48, 42)

	if a.Len() != 48 {
		t.Fatalf("expected 48 observations, got %d", a.Len())
	}
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			t.Fatalf("same seed produced different values at %d", i)
		}
	}

	c := Synthetic(start, 48, 7)
	same := true
	for i := range a.Values {
		if a.Values[i] != c.Values[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical series")
	}
}
