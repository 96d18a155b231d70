package dsp

import "sync"

// Mixer is a dense I x O boolean routing matrix. Entry [i][o] = 1.0
// routes input channel i+1 additively into output channel o+1 (spec
// §4.5). Default is all-zero (silent) until the parameter store
// hydrates it.
type Mixer struct {
	mu      sync.Mutex
	inputs  int
	outputs int
	matrix  [][]float64
	scratch []int16 // reused output accumulator, avoids per-frame allocation
}

// NewMixer constructs an all-zero I x O routing matrix.
func NewMixer(inputs, outputs int) *Mixer {
	matrix := make([][]float64, inputs)
	for i := range matrix {
		matrix[i] = make([]float64, outputs)
	}
	return &Mixer{
		inputs:  inputs,
		outputs: outputs,
		matrix:  matrix,
		scratch: make([]int16, outputs),
	}
}

// SetRoute sets M[i-1][o-1] = routed ? 1.0 : 0.0 after bounds-checking
// i in [1,I] and o in [1,O]. Returns false if out of range.
func (m *Mixer) SetRoute(i, o int, routed bool) bool {
	if i < 1 || i > m.inputs || o < 1 || o > m.outputs {
		return false
	}
	m.mu.Lock()
	if routed {
		m.matrix[i-1][o-1] = 1.0
	} else {
		m.matrix[i-1][o-1] = 0.0
	}
	m.mu.Unlock()
	return true
}

// GetRoute reports whether input i is currently routed to output o.
// The second return is false if (i,o) is out of range.
func (m *Mixer) GetRoute(i, o int) (bool, bool) {
	if i < 1 || i > m.inputs || o < 1 || o > m.outputs {
		return false, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matrix[i-1][o-1] != 0, true
}

// Process accumulates every routed input into the output scratch vector
// and returns it. The accumulation itself truncates to 16 bits per
// partial sum, matching the documented 16-bit-accumulator behavior
// (spec §4.5: "Sums are accumulated in 16-bit"). The returned slice is
// reused across calls — callers on the audio thread must finish with it
// before the next Process call.
func (m *Mixer) Process(in []int16) []int16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	for o := 0; o < m.outputs; o++ {
		m.scratch[o] = 0
	}
	for i := 0; i < m.inputs && i < len(in); i++ {
		for o := 0; o < m.outputs; o++ {
			if m.matrix[i][o] != 0 {
				contribution := int16(int64(float64(in[i]) * m.matrix[i][o]))
				m.scratch[o] = int16(int64(m.scratch[o]) + int64(contribution))
			}
		}
	}
	return m.scratch
}

// Inputs and Outputs return the matrix dimensions.
func (m *Mixer) Inputs() int  { return m.inputs }
func (m *Mixer) Outputs() int { return m.outputs }
