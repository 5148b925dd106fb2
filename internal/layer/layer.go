// Package layer provides the neural network layers used by the load forecaster.
package layer

import (
	"math"

	"github.com/andresilva/loadcast/internal/activations"
)

// Layer is a neural network layer.
//
// Backward accumulates parameter gradients into the layer's gradient
// buffers; callers clear them with ClearGradients before each batch and
// read them back flattened with Gradients.
type Layer interface {
	Forward(x []float64) []float64
	Backward(grad []float64) []float64
	Params() []float64
	SetParams([]float64)
	Gradients() []float64
	ClearGradients()
	InSize() int
	OutSize() int
}

// Recurrent is a layer carrying hidden state across time steps.
// Reset clears that state before a new sequence.
type Recurrent interface {
	Layer
	Reset()
}

// Dense is a fully connected layer with pre-allocated buffers.
// Weights are stored row-major: weight for output i, input j is at
// weights[i*in + j].
type Dense struct {
	weights []float64
	biases  []float64
	act     activations.Activation
	outSize int
	inSize  int

	// Reusable buffers
	inputBuf  []float64
	outputBuf []float64
	preActBuf []float64
	gradWBuf  []float64
	gradBBuf  []float64
	gradInBuf []float64
	dzBuf     []float64
}

// NewDense creates a new dense layer with Xavier-initialized weights.
func NewDense(in, out int, act activations.Activation) *Dense {
	weights := make([]float64, out*in)
	biases := make([]float64, out)

	// Xavier/Glorot initialization, deterministic per layer shape
	scale := math.Sqrt(2.0 / (float64(in) + float64(out)))
	rng := newRNG(uint64(in*1000 + out*100 + 7))
	for i := range weights {
		weights[i] = rng.Float64()*2*scale - scale
	}
	for i := range biases {
		biases[i] = rng.Float64()*0.2 - 0.1
	}

	return &Dense{
		weights:   weights,
		biases:    biases,
		act:       act,
		outSize:   out,
		inSize:    in,
		inputBuf:  make([]float64, in),
		outputBuf: make([]float64, out),
		preActBuf: make([]float64, out),
		gradWBuf:  make([]float64, out*in),
		gradBBuf:  make([]float64, out),
		gradInBuf: make([]float64, in),
		dzBuf:     make([]float64, out),
	}
}

// Forward computes act(Wx + b) using pre-allocated buffers.
func (d *Dense) Forward(x []float64) []float64 {
	copy(d.inputBuf, x)

	outSize := d.outSize
	inSize := d.inSize
	weights := d.weights
	biases := d.biases
	input := d.inputBuf
	preAct := d.preActBuf
	output := d.outputBuf

	for o := 0; o < outSize; o++ {
		sum := biases[o]
		wBase := o * inSize
		for i := 0; i < inSize; i++ {
			sum += weights[wBase+i] * input[i]
		}
		preAct[o] = sum
		output[o] = d.act.Activate(sum)
	}

	return output[:outSize]
}

// Backward accumulates weight and bias gradients for the most recent
// Forward call and returns the gradient w.r.t. the input.
func (d *Dense) Backward(grad []float64) []float64 {
	outSize := d.outSize
	inSize := d.inSize
	weights := d.weights
	input := d.inputBuf
	dz := d.dzBuf
	gradW := d.gradWBuf
	gradB := d.gradBBuf
	gradIn := d.gradInBuf

	// dz = dL/d(output) * act'(preAct)
	for o := 0; o < outSize; o++ {
		dz[o] = grad[o] * d.act.Derivative(d.preActBuf[o])
		gradB[o] += dz[o]
	}

	// dL/dW[o, i] += dz[o] * input[i]
	for o := 0; o < outSize; o++ {
		dzo := dz[o]
		wBase := o * inSize
		for i := 0; i < inSize; i++ {
			gradW[wBase+i] += dzo * input[i]
		}
	}

	// dL/dx[i] = sum_o(dz[o] * W[o, i])
	for i := 0; i < inSize; i++ {
		sum := 0.0
		for o := 0; o < outSize; o++ {
			sum += dz[o] * weights[o*inSize+i]
		}
		gradIn[i] = sum
	}

	return gradIn[:inSize]
}

// Params returns weights and biases flattened (copy).
func (d *Dense) Params() []float64 {
	params := make([]float64, 0, len(d.weights)+len(d.biases))
	params = append(params, d.weights...)
	params = append(params, d.biases...)
	return params
}

// SetParams updates weights and biases from a flattened slice.
func (d *Dense) SetParams(params []float64) {
	copy(d.weights, params[:len(d.weights)])
	copy(d.biases, params[len(d.weights):])
}

// Gradients returns accumulated gradients flattened (copy).
func (d *Dense) Gradients() []float64 {
	gradients := make([]float64, 0, len(d.gradWBuf)+len(d.gradBBuf))
	gradients = append(gradients, d.gradWBuf...)
	gradients = append(gradients, d.gradBBuf...)
	return gradients
}

// ClearGradients zeroes the accumulated gradients.
func (d *Dense) ClearGradients() {
	for i := range d.gradWBuf {
		d.gradWBuf[i] = 0
	}
	for i := range d.gradBBuf {
		d.gradBBuf[i] = 0
	}
}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int {
	return d.inSize
}

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int {
	return d.outSize
}

// Activation returns the activation function used by this layer.
func (d *Dense) Activation() activations.Activation {
	return d.act
}
