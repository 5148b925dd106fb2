package model

import (
	"github.com/andresilva/loadcast/internal/activations"
	"github.com/andresilva/loadcast/internal/layer"
	"github.com/andresilva/loadcast/internal/loss"
	"github.com/andresilva/loadcast/internal/opt"
)

// NewLSTMForecaster builds the load forecasting model: numLayers stacked
// LSTMs unrolled over the lookback window, followed by a shared linear
// projection applied at every time step. Input and output are flat
// [lookback * 1] sequences (one feature per step), so a prediction has
// the same shape as its input window.
func NewLSTMForecaster(lookback, hiddenSize, numLayers int, lossFn loss.Loss, optimizer opt.Optimizer) *Model {
	layers := make([]layer.Layer, 0, numLayers+1)

	inSize := 1
	for i := 0; i < numLayers; i++ {
		layers = append(layers, layer.NewSequenceUnroller(
			layer.NewLSTM(inSize, hiddenSize), lookback, true))
		inSize = hiddenSize
	}

	layers = append(layers, layer.NewTimeDistributed(
		layer.NewDense(hiddenSize, 1, activations.Linear{}), lookback))

	return New(layers, lossFn, optimizer)
}
