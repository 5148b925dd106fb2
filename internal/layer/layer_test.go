package layer

import (
	"math"
	"testing"

	"github.com/andresilva/loadcast/internal/activations"
)

func TestDenseForward(t *testing.T) {
	d := NewDense(2, 1, activations.Linear{})

	// Fix parameters: w = [2, 3], b = [1]
	d.SetParams([]float64{2, 3, 1})

	out := d.Forward([]float64{1, 2})
	if len(out) != 1 {
		t.Fatalf("output length = %d, want 1", len(out))
	}
	if math.Abs(out[0]-9) > 1e-12 {
		t.Errorf("Forward = %f, want 9", out[0])
	}
}

func TestDenseBackwardAccumulates(t *testing.T) {
	d := NewDense(2, 1, activations.Linear{})
	d.SetParams([]float64{2, 3, 1})

	x := []float64{1, 2}
	d.Forward(x)
	gradIn := d.Backward([]float64{1})

	// Linear activation: dz = 1, gradW = input, gradB = 1, gradIn = W
	grads := d.Gradients()
	want := []float64{1, 2, 1}
	for i := range want {
		if math.Abs(grads[i]-want[i]) > 1e-12 {
			t.Errorf("Gradients[%d] = %f, want %f", i, grads[i], want[i])
		}
	}
	if math.Abs(gradIn[0]-2) > 1e-12 || math.Abs(gradIn[1]-3) > 1e-12 {
		t.Errorf("gradIn = %v, want [2 3]", gradIn)
	}

	// Second backward over the same step doubles the accumulated gradients
	d.Forward(x)
	d.Backward([]float64{1})
	grads = d.Gradients()
	for i := range want {
		if math.Abs(grads[i]-2*want[i]) > 1e-12 {
			t.Errorf("accumulated Gradients[%d] = %f, want %f", i, grads[i], 2*want[i])
		}
	}

	d.ClearGradients()
	for i, g := range d.Gradients() {
		if g != 0 {
			t.Errorf("Gradients[%d] = %f after clear, want 0", i, g)
		}
	}
}

func TestDenseParamsRoundTrip(t *testing.T) {
	d := NewDense(3, 2, activations.Tanh{})

	params := d.Params()
	if len(params) != 3*2+2 {
		t.Fatalf("param count = %d, want 8", len(params))
	}

	newParams := make([]float64, len(params))
	for i := range newParams {
		newParams[i] = float64(i)
	}
	d.SetParams(newParams)

	got := d.Params()
	for i := range newParams {
		if got[i] != newParams[i] {
			t.Errorf("Params[%d] = %f, want %f", i, got[i], newParams[i])
		}
	}
}

func TestDenseDeterministicInit(t *testing.T) {
	a := NewDense(4, 3, activations.ReLU{})
	b := NewDense(4, 3, activations.ReLU{})

	pa, pb := a.Params(), b.Params()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("initialization differs at %d: %f vs %f", i, pa[i], pb[i])
		}
	}
}
