package dataset

import "fmt"

// Sample is one supervised window: Target is History shifted forward by
// one step, both of window length. Slices alias the source series.
//
// The flat History slice doubles as the model input of shape
// [lookback, 1]: one feature per time step.
type Sample struct {
	History []float64
	Target  []float64
}

// Windows converts a time series into the full ordered list of sliding
// window samples: for each i in 0..N-L-1, History = values[i:i+L] and
// Target = values[i+1:i+L+1]. A series of length N yields exactly N-L
// samples, in index order.
//
// A lookback outside 1..N-1 is a configuration error and is rejected
// before any sample is built rather than degrading to an empty result.
func Windows(values []float64, lookback int) ([]Sample, error) {
	if lookback < 1 {
		return nil, fmt.Errorf("dataset: lookback must be positive, got %d", lookback)
	}
	if lookback >= len(values) {
		return nil, fmt.Errorf("dataset: lookback %d must be smaller than series length %d", lookback, len(values))
	}

	samples := make([]Sample, 0, len(values)-lookback)
	for i := 0; i < len(values)-lookback; i++ {
		samples = append(samples, Sample{
			History: values[i : i+lookback],
			Target:  values[i+1 : i+lookback+1],
		})
	}
	return samples, nil
}

// Batches groups samples into fixed-size batches, preserving order.
// The result has ceil(len(samples)/size) batches; only the last one may
// be short. A non-positive size is a configuration error.
func Batches(samples []Sample, size int) ([][]Sample, error) {
	if size <= 0 {
		return nil, fmt.Errorf("dataset: batch size must be positive, got %d", size)
	}

	batches := make([][]Sample, 0, (len(samples)+size-1)/size)
	for start := 0; start < len(samples); start += size {
		end := start + size
		if end > len(samples) {
			end = len(samples)
		}
		batches = append(batches, samples[start:end])
	}
	return batches, nil
}
