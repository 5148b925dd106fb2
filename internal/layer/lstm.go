package layer

import (
	"math"

	"github.com/andresilva/loadcast/internal/activations"
)

// Max gradient norm for clipping
const maxGradientNorm = 1.0

// LSTM is a Long Short-Term Memory layer.
// Weight matrices are stored contiguously per gate in the order
// [input, forget, cell, output]; working buffers are pre-allocated so the
// forward and backward passes do not allocate.
type LSTM struct {
	inSize  int
	outSize int

	inputWeights     []float64 // 4 * outSize * inSize
	recurrentWeights []float64 // 4 * outSize * outSize
	biases           []float64 // 4 * outSize

	inputAct  activations.Activation
	forgetAct activations.Activation
	cellAct   activations.Activation
	outputAct activations.Activation

	// Working buffers
	inputBuf  []float64
	outputBuf []float64
	preActBuf []float64 // pre-activations for all 4 gates
	cellBuf   []float64
	hiddenBuf []float64

	// Gradient buffers
	gradInputWeights     []float64
	gradRecurrentWeights []float64
	gradBiases           []float64

	// Per-gate deltas for backprop
	dInputBuf  []float64
	dForgetBuf []float64
	dCellBuf   []float64
	dOutputBuf []float64

	dcBuf     []float64
	dxBuf     []float64
	dhPrevBuf []float64
	cPrevBuf  []float64
	hPrevBuf  []float64

	// Gate outputs stored for backprop
	inputGateOut  []float64
	forgetGateOut []float64
	cellGateOut   []float64
	outputGateOut []float64

	// Saved per-step values for BPTT
	storedCellStates   [][]float64
	storedHiddenStates [][]float64
	storedInputs       [][]float64
	storedPreActs      [][]float64 // 4 gates per step
	storedGates        [][]float64 // post-activation, 4 gates per step

	timeStep int
}

// NewLSTM creates a new LSTM layer with pre-allocated buffers.
func NewLSTM(inSize, outSize int) *LSTM {
	// Xavier/Glorot initialization for the 4 gate blocks
	inputScale := math.Sqrt(2.0 / float64(inSize+4*outSize))
	recurrentScale := math.Sqrt(2.0 / float64(outSize+4*outSize))

	inputWeights := make([]float64, outSize*4*inSize)
	recurrentWeights := make([]float64, outSize*4*outSize)
	biases := make([]float64, outSize*4)

	rng := newRNG(uint64(inSize*1000 + outSize*100 + 142))

	for i := 0; i < outSize*4; i++ {
		// Forget gate bias starts at 1 to prevent early forgetting
		if i >= outSize && i < outSize*2 {
			biases[i] = 1.0
		}

		for j := 0; j < inSize; j++ {
			inputWeights[i*inSize+j] = rng.Float64()*2*inputScale - inputScale
		}
		for j := 0; j < outSize; j++ {
			recurrentWeights[i*outSize+j] = rng.Float64()*2*recurrentScale - recurrentScale
		}
	}

	return &LSTM{
		inSize:  inSize,
		outSize: outSize,

		inputWeights:     inputWeights,
		recurrentWeights: recurrentWeights,
		biases:           biases,

		inputAct:  activations.Sigmoid{},
		forgetAct: activations.Sigmoid{},
		cellAct:   activations.Tanh{},
		outputAct: activations.Sigmoid{},

		inputBuf:  make([]float64, inSize),
		outputBuf: make([]float64, outSize),
		preActBuf: make([]float64, outSize*4),
		cellBuf:   make([]float64, outSize),
		hiddenBuf: make([]float64, outSize),

		gradInputWeights:     make([]float64, outSize*4*inSize),
		gradRecurrentWeights: make([]float64, outSize*4*outSize),
		gradBiases:           make([]float64, outSize*4),

		dInputBuf:  make([]float64, outSize),
		dForgetBuf: make([]float64, outSize),
		dCellBuf:   make([]float64, outSize),
		dOutputBuf: make([]float64, outSize),

		dcBuf:     make([]float64, outSize),
		dxBuf:     make([]float64, inSize),
		dhPrevBuf: make([]float64, outSize),
		cPrevBuf:  make([]float64, outSize),
		hPrevBuf:  make([]float64, outSize),

		inputGateOut:  make([]float64, outSize),
		forgetGateOut: make([]float64, outSize),
		cellGateOut:   make([]float64, outSize),
		outputGateOut: make([]float64, outSize),
	}
}

// Reset clears the recurrent state for a new sequence.
func (l *LSTM) Reset() {
	l.timeStep = 0
	l.storedCellStates = l.storedCellStates[:0]
	l.storedHiddenStates = l.storedHiddenStates[:0]
	l.storedInputs = l.storedInputs[:0]
	l.storedPreActs = l.storedPreActs[:0]
	l.storedGates = l.storedGates[:0]
	for i := range l.cellBuf {
		l.cellBuf[i] = 0
	}
	for i := range l.hiddenBuf {
		l.hiddenBuf[i] = 0
	}
}

// Forward performs a forward pass for one time step.
// x has length inSize; the returned hidden state has length outSize.
func (l *LSTM) Forward(x []float64) []float64 {
	copy(l.inputBuf, x)

	inputStart, forgetStart, cellStart, outputStart := 0, l.outSize, l.outSize*2, l.outSize*3

	// Pre-activations: biases + W_x*x + W_h*h_prev
	copy(l.preActBuf, l.biases)

	for g := 0; g < 4; g++ {
		baseG := g * l.outSize
		baseW := baseG * l.inSize
		for i := 0; i < l.outSize; i++ {
			sum := 0.0
			for j := 0; j < l.inSize; j++ {
				sum += l.inputWeights[baseW+i*l.inSize+j] * x[j]
			}
			l.preActBuf[baseG+i] += sum
		}
	}

	hPrev := l.hiddenBuf
	for g := 0; g < 4; g++ {
		baseG := g * l.outSize
		baseW := baseG * l.outSize
		for i := 0; i < l.outSize; i++ {
			sum := 0.0
			for j := 0; j < l.outSize; j++ {
				sum += l.recurrentWeights[baseW+i*l.outSize+j] * hPrev[j]
			}
			l.preActBuf[baseG+i] += sum
		}
	}

	// Gate activations
	for i := 0; i < l.outSize; i++ {
		l.inputGateOut[i] = l.inputAct.Activate(l.preActBuf[inputStart+i])
	}
	for i := 0; i < l.outSize; i++ {
		l.forgetGateOut[i] = l.forgetAct.Activate(l.preActBuf[forgetStart+i])
	}
	for i := 0; i < l.outSize; i++ {
		l.cellGateOut[i] = l.cellAct.Activate(l.preActBuf[cellStart+i])
	}
	for i := 0; i < l.outSize; i++ {
		l.outputGateOut[i] = l.outputAct.Activate(l.preActBuf[outputStart+i])
	}

	// c_new = forget * c_prev + input * cell_candidate
	if l.timeStep > 0 && len(l.storedCellStates) > 0 {
		copy(l.cellBuf, l.storedCellStates[len(l.storedCellStates)-1])
	} else {
		for i := range l.cellBuf {
			l.cellBuf[i] = 0
		}
	}
	for i := 0; i < l.outSize; i++ {
		l.cellBuf[i] = l.forgetGateOut[i]*l.cellBuf[i] + l.inputGateOut[i]*l.cellGateOut[i]
	}

	// h_new = output * tanh(c_new)
	for i := 0; i < l.outSize; i++ {
		l.hiddenBuf[i] = l.outputGateOut[i] * math.Tanh(l.cellBuf[i])
	}

	// Store states for backprop
	if l.timeStep >= len(l.storedCellStates) {
		l.storedCellStates = append(l.storedCellStates, make([]float64, l.outSize))
		l.storedHiddenStates = append(l.storedHiddenStates, make([]float64, l.outSize))
		l.storedInputs = append(l.storedInputs, make([]float64, l.inSize))
		l.storedPreActs = append(l.storedPreActs, make([]float64, l.outSize*4))
		l.storedGates = append(l.storedGates, make([]float64, l.outSize*4))
	}
	copy(l.storedCellStates[l.timeStep], l.cellBuf)
	copy(l.storedHiddenStates[l.timeStep], l.hiddenBuf)
	copy(l.storedInputs[l.timeStep], l.inputBuf)
	copy(l.storedPreActs[l.timeStep], l.preActBuf)
	gates := l.storedGates[l.timeStep]
	copy(gates[inputStart:], l.inputGateOut)
	copy(gates[forgetStart:], l.forgetGateOut)
	copy(gates[cellStart:], l.cellGateOut)
	copy(gates[outputStart:], l.outputGateOut)

	l.timeStep++

	copy(l.outputBuf, l.hiddenBuf)
	return l.outputBuf
}

// Backward performs backpropagation through time for one time step.
// grad is the gradient of the loss w.r.t. the output at this step; the
// carry to the previous hidden state is added into grad in place so the
// caller can thread it to the next (earlier) step. Returns the gradient
// w.r.t. the input.
func (l *LSTM) Backward(grad []float64) []float64 {
	ts := l.timeStep - 1
	if ts < 0 || ts >= len(l.storedCellStates) {
		for i := range l.dxBuf {
			l.dxBuf[i] = 0
		}
		return l.dxBuf
	}

	c := l.storedCellStates[ts]
	cPrev := l.cPrevBuf
	if ts > 0 {
		copy(cPrev, l.storedCellStates[ts-1])
	} else {
		for i := range cPrev {
			cPrev[i] = 0
		}
	}
	hPrev := l.hPrevBuf
	if ts > 0 {
		copy(hPrev, l.storedHiddenStates[ts-1])
	} else {
		for i := range hPrev {
			hPrev[i] = 0
		}
	}

	x := l.storedInputs[ts]
	pre := l.storedPreActs[ts]
	gates := l.storedGates[ts]
	ig := gates[:l.outSize]
	cg := gates[l.outSize*2 : l.outSize*3]
	og := gates[l.outSize*3:]

	// dc = dL/dh * o * (1 - tanh(c)^2)
	dc := l.dcBuf
	for i := 0; i < l.outSize; i++ {
		tanhC := math.Tanh(c[i])
		dc[i] = grad[i] * og[i] * (1 - tanhC*tanhC)
	}

	inputStart, forgetStart, cellStart, outputStart := 0, l.outSize, l.outSize*2, l.outSize*3

	for i := 0; i < l.outSize; i++ {
		l.dInputBuf[i] = dc[i] * cg[i] * l.inputAct.Derivative(pre[inputStart+i])
	}
	for i := 0; i < l.outSize; i++ {
		l.dForgetBuf[i] = dc[i] * cPrev[i] * l.forgetAct.Derivative(pre[forgetStart+i])
	}
	for i := 0; i < l.outSize; i++ {
		l.dCellBuf[i] = dc[i] * ig[i] * l.cellAct.Derivative(pre[cellStart+i])
	}
	for i := 0; i < l.outSize; i++ {
		l.dOutputBuf[i] = grad[i] * math.Tanh(c[i]) * l.outputAct.Derivative(pre[outputStart+i])
	}

	// Accumulate weight and bias gradients: d_gate * x^T and d_gate * h_prev^T
	for g := 0; g < 4; g++ {
		baseG := g * l.outSize
		dg := l.gateDelta(g)
		baseW := baseG * l.inSize
		for i := 0; i < l.outSize; i++ {
			for j := 0; j < l.inSize; j++ {
				l.gradInputWeights[baseW+i*l.inSize+j] += dg[i] * x[j]
			}
			l.gradBiases[baseG+i] += dg[i]
		}
	}
	for g := 0; g < 4; g++ {
		baseW := g * l.outSize * l.outSize
		dg := l.gateDelta(g)
		for i := 0; i < l.outSize; i++ {
			for j := 0; j < l.outSize; j++ {
				l.gradRecurrentWeights[baseW+i*l.outSize+j] += dg[i] * hPrev[j]
			}
		}
	}

	// dL/dx = sum over gates of W_x^T * d_gate
	dx := l.dxBuf
	for i := 0; i < l.inSize; i++ {
		sum := 0.0
		for g := 0; g < 4; g++ {
			baseW := g * l.outSize * l.inSize
			dg := l.gateDelta(g)
			for j := 0; j < l.outSize; j++ {
				sum += l.inputWeights[baseW+j*l.inSize+i] * dg[j]
			}
		}
		dx[i] = sum
	}

	// dL/dh_prev = sum over gates of W_h^T * d_gate
	dhPrev := l.dhPrevBuf
	for i := 0; i < l.outSize; i++ {
		sum := 0.0
		for g := 0; g < 4; g++ {
			baseW := g * l.outSize * l.outSize
			dg := l.gateDelta(g)
			for j := 0; j < l.outSize; j++ {
				sum += l.recurrentWeights[baseW+j*l.outSize+i] * dg[j]
			}
		}
		dhPrev[i] = sum
	}

	// Thread the hidden-state carry to the previous step
	for i := 0; i < l.outSize; i++ {
		grad[i] += dhPrev[i]
	}

	l.clipGradients()

	l.timeStep--
	return dx
}

func (l *LSTM) gateDelta(g int) []float64 {
	switch g {
	case 1:
		return l.dForgetBuf
	case 2:
		return l.dCellBuf
	case 3:
		return l.dOutputBuf
	default:
		return l.dInputBuf
	}
}

// clipGradients rescales accumulated gradients when their L2 norm
// exceeds maxGradientNorm.
func (l *LSTM) clipGradients() {
	normSq := 0.0
	for i := range l.gradInputWeights {
		normSq += l.gradInputWeights[i] * l.gradInputWeights[i]
	}
	for i := range l.gradRecurrentWeights {
		normSq += l.gradRecurrentWeights[i] * l.gradRecurrentWeights[i]
	}
	for i := range l.gradBiases {
		normSq += l.gradBiases[i] * l.gradBiases[i]
	}

	norm := math.Sqrt(normSq)
	if norm > maxGradientNorm {
		scale := maxGradientNorm / norm
		for i := range l.gradInputWeights {
			l.gradInputWeights[i] *= scale
		}
		for i := range l.gradRecurrentWeights {
			l.gradRecurrentWeights[i] *= scale
		}
		for i := range l.gradBiases {
			l.gradBiases[i] *= scale
		}
	}
}

// Params returns all LSTM parameters flattened (copy).
func (l *LSTM) Params() []float64 {
	total := len(l.inputWeights) + len(l.recurrentWeights) + len(l.biases)
	params := make([]float64, total)
	copy(params, l.inputWeights)
	copy(params[len(l.inputWeights):], l.recurrentWeights)
	copy(params[len(l.inputWeights)+len(l.recurrentWeights):], l.biases)
	return params
}

// SetParams updates weights and biases from a flattened slice.
func (l *LSTM) SetParams(params []float64) {
	totalInput := len(l.inputWeights)
	totalRecurrent := len(l.recurrentWeights)

	copy(l.inputWeights, params[:totalInput])
	copy(l.recurrentWeights, params[totalInput:totalInput+totalRecurrent])
	copy(l.biases, params[totalInput+totalRecurrent:])
}

// Gradients returns all LSTM gradients flattened (copy).
func (l *LSTM) Gradients() []float64 {
	total := len(l.gradInputWeights) + len(l.gradRecurrentWeights) + len(l.gradBiases)
	gradients := make([]float64, total)
	copy(gradients, l.gradInputWeights)
	copy(gradients[len(l.gradInputWeights):], l.gradRecurrentWeights)
	copy(gradients[len(l.gradInputWeights)+len(l.gradRecurrentWeights):], l.gradBiases)
	return gradients
}

// ClearGradients zeroes the accumulated gradients.
func (l *LSTM) ClearGradients() {
	for i := range l.gradInputWeights {
		l.gradInputWeights[i] = 0
	}
	for i := range l.gradRecurrentWeights {
		l.gradRecurrentWeights[i] = 0
	}
	for i := range l.gradBiases {
		l.gradBiases[i] = 0
	}
}

// InSize returns the input size of the LSTM.
func (l *LSTM) InSize() int {
	return l.inSize
}

// OutSize returns the output (hidden state) size of the LSTM.
func (l *LSTM) OutSize() int {
	return l.outSize
}

// Hidden returns the current hidden state.
func (l *LSTM) Hidden() []float64 {
	return l.hiddenBuf
}
