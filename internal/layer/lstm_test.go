package layer

import (
	"math"
	"testing"
)

func TestLSTMForward(t *testing.T) {
	lstm := NewLSTM(3, 5)

	x := []float64{1.0, 0.5, -0.5}
	output := lstm.Forward(x)

	if len(output) != 5 {
		t.Errorf("output length = %d, expected 5", len(output))
	}

	for i := 0; i < 5; i++ {
		if math.IsNaN(output[i]) || math.IsInf(output[i], 0) {
			t.Errorf("output[%d] contains invalid value: %f", i, output[i])
		}
		// Hidden state is output_gate * tanh(cell), both bounded
		if output[i] < -1 || output[i] > 1 {
			t.Errorf("output[%d] = %f, outside [-1, 1]", i, output[i])
		}
	}
}

func TestLSTMBackward(t *testing.T) {
	lstm := NewLSTM(3, 5)

	x := []float64{1.0, 0.5, -0.5}
	lstm.Forward(x)

	grad := make([]float64, 5)
	for i := range grad {
		grad[i] = 1.0
	}

	dx := lstm.Backward(grad)

	if len(dx) != 3 {
		t.Errorf("input gradient length = %d, expected 3", len(dx))
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(dx[i]) || math.IsInf(dx[i], 0) {
			t.Errorf("dx[%d] contains invalid value: %f", i, dx[i])
		}
	}

	// Some parameter gradient must be nonzero after a backward pass
	nonzero := false
	for _, g := range lstm.Gradients() {
		if g != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		t.Error("all gradients are zero after backward")
	}
}

func TestLSTMParams(t *testing.T) {
	lstm := NewLSTM(4, 8)

	params := lstm.Params()
	// inputWeights: 4*8*4, recurrentWeights: 4*8*8, biases: 4*8
	expectedLen := 4*8*4 + 4*8*8 + 4*8
	if len(params) != expectedLen {
		t.Fatalf("expected %d params, got %d", expectedLen, len(params))
	}

	newParams := make([]float64, len(params))
	for i := range newParams {
		newParams[i] = float64(i) * 0.01
	}
	lstm.SetParams(newParams)

	got := lstm.Params()
	for i := range newParams {
		if got[i] != newParams[i] {
			t.Fatalf("Params[%d] = %f, want %f", i, got[i], newParams[i])
		}
	}
}

func TestLSTMResetReproducible(t *testing.T) {
	lstm := NewLSTM(1, 4)

	seq := []float64{0.1, 0.2, 0.3}

	first := make([]float64, 4)
	lstm.Reset()
	for _, v := range seq {
		copy(first, lstm.Forward([]float64{v}))
	}

	second := make([]float64, 4)
	lstm.Reset()
	for _, v := range seq {
		copy(second, lstm.Forward([]float64{v}))
	}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("output differs after reset: %f vs %f", first[i], second[i])
		}
	}
}

func TestLSTMStateCarriesAcrossSteps(t *testing.T) {
	lstm := NewLSTM(1, 4)

	lstm.Reset()
	a := append([]float64(nil), lstm.Forward([]float64{0.5})...)
	b := append([]float64(nil), lstm.Forward([]float64{0.5})...)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("same input produced identical outputs at consecutive steps; hidden state is not carried")
	}
}

func TestLSTMClearGradients(t *testing.T) {
	lstm := NewLSTM(2, 3)
	lstm.Forward([]float64{1, -1})
	lstm.Backward([]float64{1, 1, 1})

	lstm.ClearGradients()
	for i, g := range lstm.Gradients() {
		if g != 0 {
			t.Fatalf("Gradients[%d] = %f after clear, want 0", i, g)
		}
	}
}
