package opt

import (
	"math"
	"testing"
)

func TestSGDStep(t *testing.T) {
	sgd := &SGD{LearningRate: 0.1}

	params := []float64{1.0, 2.0}
	grads := []float64{1.0, -1.0}

	updated := sgd.Step(params, grads)

	if math.Abs(updated[0]-0.9) > 1e-12 {
		t.Errorf("updated[0] = %f, want 0.9", updated[0])
	}
	if math.Abs(updated[1]-2.1) > 1e-12 {
		t.Errorf("updated[1] = %f, want 2.1", updated[1])
	}

	// Step must not mutate its input
	if params[0] != 1.0 || params[1] != 2.0 {
		t.Errorf("Step mutated params: %v", params)
	}
}

func TestSGDStepInPlace(t *testing.T) {
	sgd := &SGD{LearningRate: 0.5}

	params := []float64{1.0}
	sgd.StepInPlace(params, []float64{2.0})

	if params[0] != 0 {
		t.Errorf("params[0] = %f, want 0", params[0])
	}
}

func TestAdamFirstStepIsScaledLR(t *testing.T) {
	adam := NewAdam(0.001)

	// With bias correction, the very first update is lr * g/|g|
	params := []float64{1.0}
	adam.StepInPlace(params, []float64{5.0})

	want := 1.0 - 0.001
	if math.Abs(params[0]-want) > 1e-9 {
		t.Errorf("params[0] = %f, want %f", params[0], want)
	}
}

func TestAdamDescendsQuadratic(t *testing.T) {
	adam := NewAdam(0.1)

	// Minimize f(x) = x^2 from x = 3
	params := []float64{3.0}
	for i := 0; i < 200; i++ {
		grads := []float64{2 * params[0]}
		adam.StepInPlace(params, grads)
	}

	if math.Abs(params[0]) > 0.1 {
		t.Errorf("x = %f after 200 Adam steps, want ~0", params[0])
	}
}

func TestAdamZeroGradientNoChange(t *testing.T) {
	adam := NewAdam(0.01)

	params := []float64{1.5, -2.5}
	adam.StepInPlace(params, []float64{0, 0})

	if params[0] != 1.5 || params[1] != -2.5 {
		t.Errorf("params changed on zero gradient: %v", params)
	}
}

func TestAdamParamCountChangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic when parameter count changes")
		}
	}()

	adam := NewAdam(0.01)
	adam.StepInPlace([]float64{1}, []float64{1})
	adam.StepInPlace([]float64{1, 2}, []float64{1, 2})
}
