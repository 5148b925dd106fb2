// Package opt provides optimization algorithms.
package opt

import "math"

// Optimizer updates model parameters based on gradients.
//
// Stateful optimizers (Adam) keep per-parameter state, so an optimizer
// instance must be applied to one parameter vector only: call it once
// per update with the model's full flattened parameters.
type Optimizer interface {
	// Step computes updated parameters and returns a new slice.
	Step(params, gradients []float64) []float64

	// StepInPlace updates params in place.
	StepInPlace(params, gradients []float64)
}

// SGD (Stochastic Gradient Descent) optimizer.
type SGD struct {
	LearningRate float64
}

// Step computes updated parameters: params - lr * gradients
func (s *SGD) Step(params, gradients []float64) []float64 {
	result := make([]float64, len(params))
	copy(result, params)
	s.StepInPlace(result, gradients)
	return result
}

// StepInPlace updates params in place: params = params - lr * gradients
func (s *SGD) StepInPlace(params, gradients []float64) {
	for i := range params {
		params[i] -= s.LearningRate * gradients[i]
	}
}

// Adam optimizer with bias-corrected first and second moment estimates.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	m []float64 // first moment
	v []float64 // second moment
	t int       // update count
}

// NewAdam creates an Adam optimizer with the usual defaults
// (beta1=0.9, beta2=0.999, eps=1e-8).
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

// Step computes updated parameters and returns a new slice.
func (a *Adam) Step(params, gradients []float64) []float64 {
	result := make([]float64, len(params))
	copy(result, params)
	a.StepInPlace(result, gradients)
	return result
}

// StepInPlace updates params in place. Moment buffers are sized on the
// first call; a later call with a different parameter count panics,
// since that means the optimizer is being shared across models.
func (a *Adam) StepInPlace(params, gradients []float64) {
	if a.m == nil {
		a.m = make([]float64, len(params))
		a.v = make([]float64, len(params))
	}
	if len(a.m) != len(params) {
		panic("Adam: parameter count changed between steps")
	}

	a.t++
	c1 := 1 - math.Pow(a.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.Beta2, float64(a.t))

	for i := range params {
		g := gradients[i]
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*g
		a.v[i] = a.Beta2*a.v[i] + (1-a.Beta2)*g*g

		mHat := a.m[i] / c1
		vHat := a.v[i] / c2

		params[i] -= a.LearningRate * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
}
