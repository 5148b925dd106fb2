// Package loss provides the loss functions used for training and evaluation.
package loss

import "math"

// BackwardInPlacer is an optional interface for loss functions that support
// in-place gradient computation to avoid allocations.
type BackwardInPlacer interface {
	BackwardInPlace(yPred, yTrue, grad []float64)
}

// Loss is a loss function with derivative.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue []float64) float64

	// Backward computes the gradient of the loss w.r.t. prediction.
	Backward(yPred, yTrue []float64) []float64
}

// MSE (Mean Squared Error) loss.
type MSE struct{}

// Forward computes mean squared error: (1/n) * sum((y_pred - y_true)^2)
func (m MSE) Forward(yPred, yTrue []float64) float64 {
	n := len(yPred)
	if n != len(yTrue) {
		panic("MSE: prediction and target must have same length")
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yPred[i] - yTrue[i]
		sum += diff * diff
	}
	return sum / float64(n)
}

// Backward computes gradient: dL/dy_pred = (2/n) * (y_pred - y_true)
func (m MSE) Backward(yPred, yTrue []float64) []float64 {
	grad := make([]float64, len(yPred))
	m.BackwardInPlace(yPred, yTrue, grad)
	return grad
}

// BackwardInPlace computes the gradient into a pre-allocated slice.
func (m MSE) BackwardInPlace(yPred, yTrue, grad []float64) {
	n := len(yPred)
	if n != len(yTrue) || n != len(grad) {
		panic("MSE: slices must have same length")
	}

	factor := 2.0 / float64(n)
	for i := 0; i < n; i++ {
		grad[i] = factor * (yPred[i] - yTrue[i])
	}
}

// MAE (Mean Absolute Error) loss, used as the validation metric.
type MAE struct{}

// Forward computes mean absolute error: (1/n) * sum(|y_pred - y_true|)
func (l MAE) Forward(yPred, yTrue []float64) float64 {
	n := len(yPred)
	if n != len(yTrue) {
		panic("MAE: prediction and target must have same length")
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yPred[i] - yTrue[i])
	}
	return sum / float64(n)
}

// Backward computes gradient: dL/dy_pred = (1/n) * sign(y_pred - y_true)
func (l MAE) Backward(yPred, yTrue []float64) []float64 {
	grad := make([]float64, len(yPred))
	l.BackwardInPlace(yPred, yTrue, grad)
	return grad
}

// BackwardInPlace computes the gradient into a pre-allocated slice.
func (l MAE) BackwardInPlace(yPred, yTrue, grad []float64) {
	n := len(yPred)
	if n != len(yTrue) || n != len(grad) {
		panic("MAE: slices must have same length")
	}

	factor := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		switch diff := yPred[i] - yTrue[i]; {
		case diff > 0:
			grad[i] = factor
		case diff < 0:
			grad[i] = -factor
		default:
			grad[i] = 0
		}
	}
}
