package model

import (
	"math"
	"testing"

	"github.com/andresilva/loadcast/internal/activations"
	"github.com/andresilva/loadcast/internal/layer"
	"github.com/andresilva/loadcast/internal/loss"
	"github.com/andresilva/loadcast/internal/opt"
)

func TestForecasterShapes(t *testing.T) {
	m := NewLSTMForecaster(4, 8, 1, loss.MSE{}, opt.NewAdam(0.001))

	out := m.Forward([]float64{0.1, 0.2, 0.3, 0.4})
	if len(out) != 4 {
		t.Fatalf("output length = %d, want 4 (same shape as input window)", len(out))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("output[%d] invalid: %f", i, v)
		}
	}
}

func TestForecasterStacked(t *testing.T) {
	m := NewLSTMForecaster(6, 5, 2, loss.MSE{}, opt.NewAdam(0.001))

	if len(m.Layers()) != 3 {
		t.Fatalf("layer count = %d, want 3 (2 LSTM stacks + projection)", len(m.Layers()))
	}

	out := m.Forward(make([]float64, 6))
	if len(out) != 6 {
		t.Fatalf("output length = %d, want 6", len(out))
	}
}

func TestTrainBatchReducesLossOnConstantSeries(t *testing.T) {
	m := NewLSTMForecaster(4, 8, 1, loss.MSE{}, opt.NewAdam(0.01))

	// Constant series: the model should learn to predict 0.5 everywhere
	x := []float64{0.5, 0.5, 0.5, 0.5}
	y := []float64{0.5, 0.5, 0.5, 0.5}
	xs := [][]float64{x, x, x}
	ys := [][]float64{y, y, y}

	first := m.TrainBatch(xs, ys)
	var last float64
	for i := 0; i < 50; i++ {
		last = m.TrainBatch(xs, ys)
	}

	if math.IsNaN(last) || math.IsInf(last, 0) {
		t.Fatalf("loss diverged: %f", last)
	}
	if last >= first {
		t.Errorf("loss did not decrease: first %f, last %f", first, last)
	}
}

func TestTrainBatchEmptyBatch(t *testing.T) {
	m := NewLSTMForecaster(4, 4, 1, loss.MSE{}, &opt.SGD{LearningRate: 0.1})

	if got := m.TrainBatch(nil, nil); got != 0 {
		t.Errorf("TrainBatch on empty batch = %f, want 0", got)
	}
}

func TestParamsRoundTrip(t *testing.T) {
	m := New([]layer.Layer{
		layer.NewDense(2, 3, activations.Tanh{}),
		layer.NewDense(3, 1, activations.Linear{}),
	}, loss.MSE{}, &opt.SGD{LearningRate: 0.1})

	params := m.Params()
	if len(params) != m.NumParams() {
		t.Fatalf("Params length %d != NumParams %d", len(params), m.NumParams())
	}

	for i := range params {
		params[i] = float64(i) * 0.1
	}
	m.setParamsFlat(params)

	got := m.Params()
	for i := range params {
		if got[i] != params[i] {
			t.Fatalf("param %d = %f, want %f", i, got[i], params[i])
		}
	}
}

func TestTrainingModeFlag(t *testing.T) {
	m := NewLSTMForecaster(4, 4, 1, loss.MSE{}, &opt.SGD{LearningRate: 0.1})

	if m.Training() {
		t.Error("model should start in evaluation mode")
	}
	m.SetTraining(true)
	if !m.Training() {
		t.Error("SetTraining(true) did not switch mode")
	}
	m.SetTraining(false)
	if m.Training() {
		t.Error("SetTraining(false) did not switch mode")
	}
}
