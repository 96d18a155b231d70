package dsp

import (
	"math"
	"sync"
)

// Gain holds a linear multiplier derived from a dB value, clamped to
// [0,1]: the ceiling at 1 is intentional — gain in this processor is an
// attenuator, never a boost (spec §3, §9(b): preserved for compatibility
// even though it reads as asymmetric with a control plane that could
// otherwise imply boost).
type Gain struct {
	mu      sync.Mutex
	address Address
	linear  float64
}

// NewGain constructs a Gain at unity (0 dB, linear 1.0).
func NewGain(address Address) *Gain {
	return &Gain{address: address, linear: 1.0}
}

// Address returns the channel this gain instance owns.
func (g *Gain) Address() Address { return g.address }

// SetGain computes g = clamp(10^(gainDB/20), 0, 1) and stores it.
// Returns false (no-op) if the address does not match.
func (g *Gain) SetGain(side Side, index int, gainDB float64) bool {
	if !g.address.Matches(side, index) {
		return false
	}
	linear := math.Pow(10, gainDB/20)
	if linear < 0 {
		linear = 0
	} else if linear > 1 {
		linear = 1
	}

	g.mu.Lock()
	g.linear = linear
	g.mu.Unlock()
	return true
}

// GetGain returns the dB equivalent of the stored linear multiplier.
// Because of the [0,1] clamp this is lossy for any gainDB that would
// have produced a linear value above 1.
func (g *Gain) GetGain() float64 {
	g.mu.Lock()
	linear := g.linear
	g.mu.Unlock()
	return 20 * math.Log10(linear)
}

// Linear returns the raw stored multiplier (used by tests; not part of
// the wire protocol).
func (g *Gain) Linear() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.linear
}

// Process multiplies the sample by the stored linear gain, truncating
// to 16 bits.
func (g *Gain) Process(sample int16) int16 {
	g.mu.Lock()
	linear := g.linear
	g.mu.Unlock()
	return int16(int64(float64(sample) * linear))
}
