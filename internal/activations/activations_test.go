package activations

import (
	"math"
	"testing"
)

func TestSigmoid(t *testing.T) {
	s := Sigmoid{}

	if got := s.Activate(0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Sigmoid(0) = %f, want 0.5", got)
	}

	// Derivative at 0 is 0.25
	if got := s.Derivative(0); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("Sigmoid'(0) = %f, want 0.25", got)
	}

	// Saturation
	if got := s.Activate(100); got < 0.999 {
		t.Errorf("Sigmoid(100) = %f, want ~1", got)
	}
	if got := s.Activate(-100); got > 0.001 {
		t.Errorf("Sigmoid(-100) = %f, want ~0", got)
	}
}

func TestTanh(t *testing.T) {
	a := Tanh{}

	if got := a.Activate(0); got != 0 {
		t.Errorf("Tanh(0) = %f, want 0", got)
	}
	if got := a.Derivative(0); math.Abs(got-1) > 1e-12 {
		t.Errorf("Tanh'(0) = %f, want 1", got)
	}

	// Odd function
	if a.Activate(1.3) != -a.Activate(-1.3) {
		t.Error("Tanh should be odd")
	}
}

func TestReLU(t *testing.T) {
	r := ReLU{}

	if got := r.Activate(-2); got != 0 {
		t.Errorf("ReLU(-2) = %f, want 0", got)
	}
	if got := r.Activate(3); got != 3 {
		t.Errorf("ReLU(3) = %f, want 3", got)
	}
	if got := r.Derivative(3); got != 1 {
		t.Errorf("ReLU'(3) = %f, want 1", got)
	}
	if got := r.Derivative(-3); got != 0 {
		t.Errorf("ReLU'(-3) = %f, want 0", got)
	}
}

func TestLinear(t *testing.T) {
	l := Linear{}

	for _, x := range []float64{-5, 0, 0.5, 42} {
		if got := l.Activate(x); got != x {
			t.Errorf("Linear(%f) = %f, want %f", x, got, x)
		}
		if got := l.Derivative(x); got != 1 {
			t.Errorf("Linear'(%f) = %f, want 1", x, got)
		}
	}
}
