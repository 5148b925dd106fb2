// Package model assembles layers into a trainable sequence model.
package model

import (
	"gonum.org/v1/gonum/floats"

	"github.com/andresilva/loadcast/internal/layer"
	"github.com/andresilva/loadcast/internal/loss"
	"github.com/andresilva/loadcast/internal/opt"
)

// Model is a stack of layers with a loss and an optimizer. It is the
// only mutable shared state of a training run and is owned by the
// train loop for the run's duration.
type Model struct {
	layers   []layer.Layer
	loss     loss.Loss
	opt      opt.Optimizer
	training bool

	// Pre-allocated loss gradient buffer for the hot loop
	lossGradBuf []float64
}

// New creates a model from the given layers.
func New(layers []layer.Layer, lossFn loss.Loss, optimizer opt.Optimizer) *Model {
	return &Model{
		layers: layers,
		loss:   lossFn,
		opt:    optimizer,
	}
}

// Forward performs a forward pass through all layers.
func (m *Model) Forward(x []float64) []float64 {
	curr := x
	for i := range m.layers {
		curr = m.layers[i].Forward(curr)
	}
	return curr
}

// Predict is a forward pass in evaluation mode; no gradients are touched.
func (m *Model) Predict(x []float64) []float64 {
	return m.Forward(x)
}

// Backward propagates a loss gradient through all layers, accumulating
// parameter gradients.
func (m *Model) Backward(grad []float64) []float64 {
	curr := grad
	for i := len(m.layers) - 1; i >= 0; i-- {
		curr = m.layers[i].Backward(curr)
	}
	return curr
}

// ClearGradients zeroes the gradient buffers of every layer.
func (m *Model) ClearGradients() {
	for _, l := range m.layers {
		l.ClearGradients()
	}
}

// TrainBatch runs one optimization step over a batch of samples:
// clear gradients, forward and backpropagate each sample in order,
// average the accumulated gradients, apply the optimizer once.
// Returns the mean per-sample loss.
func (m *Model) TrainBatch(xs, ys [][]float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	m.ClearGradients()

	var totalLoss float64
	for i := range xs {
		yPred := m.Forward(xs[i])
		totalLoss += m.loss.Forward(yPred, ys[i])

		if cap(m.lossGradBuf) < len(yPred) {
			m.lossGradBuf = make([]float64, len(yPred))
		}
		grad := m.lossGradBuf[:len(yPred)]

		if inPlace, ok := m.loss.(loss.BackwardInPlacer); ok {
			inPlace.BackwardInPlace(yPred, ys[i], grad)
		} else {
			grad = m.loss.Backward(yPred, ys[i])
		}

		m.Backward(grad)
	}

	m.step(1 / float64(len(xs)))
	return totalLoss / float64(len(xs))
}

// step applies one optimizer update to the flattened parameter vector,
// scaling the accumulated gradients first (1/batchSize for averaging).
func (m *Model) step(scale float64) {
	params := m.Params()
	grads := m.Gradients()
	if scale != 1 {
		floats.Scale(scale, grads)
	}

	m.opt.StepInPlace(params, grads)
	m.setParamsFlat(params)
}

// setParamsFlat scatters a flattened parameter vector back to the layers.
func (m *Model) setParamsFlat(params []float64) {
	offset := 0
	for _, l := range m.layers {
		n := len(l.Params())
		l.SetParams(params[offset : offset+n])
		offset += n
	}
}

// Params returns all model parameters flattened (copy).
func (m *Model) Params() []float64 {
	var params []float64
	for _, l := range m.layers {
		params = append(params, l.Params()...)
	}
	return params
}

// Gradients returns all model gradients flattened (copy).
func (m *Model) Gradients() []float64 {
	var gradients []float64
	for _, l := range m.layers {
		gradients = append(gradients, l.Gradients()...)
	}
	return gradients
}

// Layers returns the model's layer slice.
func (m *Model) Layers() []layer.Layer {
	return m.layers
}

// SetTraining switches between training and evaluation mode.
func (m *Model) SetTraining(training bool) {
	m.training = training
}

// Training reports whether the model is in training mode.
func (m *Model) Training() bool {
	return m.training
}

// NumParams returns the total trainable parameter count.
func (m *Model) NumParams() int {
	total := 0
	for _, l := range m.layers {
		total += len(l.Params())
	}
	return total
}
