package layer

import (
	"fmt"
)

// SequenceUnroller unrolls a recurrent base layer over T time steps.
// Input is a flat [timeSteps * base.InSize()] slice interpreted as
// [time, features]; with returnSeq the output keeps one vector per step.
type SequenceUnroller struct {
	base      Recurrent
	timeSteps int
	returnSeq bool
	outputBuf []float64
	gradInBuf []float64
	carryBuf  []float64
	stepGrad  []float64
}

// NewSequenceUnroller wraps base and unrolls it over timeSteps steps.
func NewSequenceUnroller(base Recurrent, timeSteps int, returnSeq bool) *SequenceUnroller {
	outSize := base.OutSize()
	if returnSeq {
		outSize *= timeSteps
	}

	return &SequenceUnroller{
		base:      base,
		timeSteps: timeSteps,
		returnSeq: returnSeq,
		outputBuf: make([]float64, outSize),
		gradInBuf: make([]float64, timeSteps*base.InSize()),
		carryBuf:  make([]float64, base.OutSize()),
		stepGrad:  make([]float64, base.OutSize()),
	}
}

// Forward resets the base layer and feeds it one time step at a time.
func (s *SequenceUnroller) Forward(x []float64) []float64 {
	inSize := s.base.InSize()
	outSize := s.base.OutSize()

	if len(x) != s.timeSteps*inSize {
		panic(fmt.Sprintf("SequenceUnroller: input size mismatch, expected %d, got %d", s.timeSteps*inSize, len(x)))
	}

	s.base.Reset()

	for t := 0; t < s.timeSteps; t++ {
		out := s.base.Forward(x[t*inSize : (t+1)*inSize])

		if s.returnSeq {
			copy(s.outputBuf[t*outSize:(t+1)*outSize], out)
		} else if t == s.timeSteps-1 {
			copy(s.outputBuf, out)
		}
	}

	return s.outputBuf
}

// Backward runs BPTT from the last step to the first, threading the
// hidden-state carry the base layer adds into the step gradient.
func (s *SequenceUnroller) Backward(grad []float64) []float64 {
	outSize := s.base.OutSize()
	inSize := s.base.InSize()

	for i := range s.carryBuf {
		s.carryBuf[i] = 0
	}

	for t := s.timeSteps - 1; t >= 0; t-- {
		copy(s.stepGrad, s.carryBuf)
		if s.returnSeq {
			for i := 0; i < outSize; i++ {
				s.stepGrad[i] += grad[t*outSize+i]
			}
		} else if t == s.timeSteps-1 {
			for i := 0; i < outSize; i++ {
				s.stepGrad[i] += grad[i]
			}
		}

		dx := s.base.Backward(s.stepGrad)
		copy(s.gradInBuf[t*inSize:(t+1)*inSize], dx)
		copy(s.carryBuf, s.stepGrad)
	}

	return s.gradInBuf
}

func (s *SequenceUnroller) Params() []float64     { return s.base.Params() }
func (s *SequenceUnroller) SetParams(p []float64) { s.base.SetParams(p) }
func (s *SequenceUnroller) Gradients() []float64  { return s.base.Gradients() }
func (s *SequenceUnroller) ClearGradients()       { s.base.ClearGradients() }
func (s *SequenceUnroller) InSize() int           { return s.timeSteps * s.base.InSize() }

func (s *SequenceUnroller) OutSize() int {
	if s.returnSeq {
		return s.timeSteps * s.base.OutSize()
	}
	return s.base.OutSize()
}
