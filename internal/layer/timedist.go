package layer

import (
	"fmt"
)

// TimeDistributed applies a stateless core layer independently at every
// time step, sharing its parameters across steps. It turns a
// [timeSteps * core.InSize()] sequence into a [timeSteps * core.OutSize()]
// sequence, which gives the forecaster its per-step linear projection.
type TimeDistributed struct {
	core         Layer
	timeSteps    int
	outputBuf    []float64
	gradInBuf    []float64
	storedInputs [][]float64
}

// NewTimeDistributed wraps core, applying it at each of timeSteps steps.
func NewTimeDistributed(core Layer, timeSteps int) *TimeDistributed {
	td := &TimeDistributed{
		core:         core,
		timeSteps:    timeSteps,
		outputBuf:    make([]float64, timeSteps*core.OutSize()),
		gradInBuf:    make([]float64, timeSteps*core.InSize()),
		storedInputs: make([][]float64, timeSteps),
	}
	for t := range td.storedInputs {
		td.storedInputs[t] = make([]float64, core.InSize())
	}
	return td
}

// Forward applies the core layer to each time step slice.
func (td *TimeDistributed) Forward(x []float64) []float64 {
	inSize := td.core.InSize()
	outSize := td.core.OutSize()

	if len(x) != td.timeSteps*inSize {
		panic(fmt.Sprintf("TimeDistributed: input size mismatch, expected %d, got %d", td.timeSteps*inSize, len(x)))
	}

	for t := 0; t < td.timeSteps; t++ {
		copy(td.storedInputs[t], x[t*inSize:(t+1)*inSize])
		out := td.core.Forward(td.storedInputs[t])
		copy(td.outputBuf[t*outSize:(t+1)*outSize], out)
	}

	return td.outputBuf
}

// Backward backpropagates each step through the shared core layer.
// The core's Forward is replayed per step so its buffers hold that
// step's pre-activations; parameter gradients accumulate across steps.
func (td *TimeDistributed) Backward(grad []float64) []float64 {
	inSize := td.core.InSize()
	outSize := td.core.OutSize()

	for t := td.timeSteps - 1; t >= 0; t-- {
		td.core.Forward(td.storedInputs[t])
		dx := td.core.Backward(grad[t*outSize : (t+1)*outSize])
		copy(td.gradInBuf[t*inSize:(t+1)*inSize], dx)
	}

	return td.gradInBuf
}

func (td *TimeDistributed) Params() []float64     { return td.core.Params() }
func (td *TimeDistributed) SetParams(p []float64) { td.core.SetParams(p) }
func (td *TimeDistributed) Gradients() []float64  { return td.core.Gradients() }
func (td *TimeDistributed) ClearGradients()       { td.core.ClearGradients() }
func (td *TimeDistributed) InSize() int           { return td.timeSteps * td.core.InSize() }
func (td *TimeDistributed) OutSize() int          { return td.timeSteps * td.core.OutSize() }
