package dsp

import "sync"

// Mute holds a {0.0, 1.0} multiplier where 1.0 is audible and 0.0 is
// silenced. The wire encoding is the inverse boolean: mute=true means
// m=0.0 (spec §3).
type Mute struct {
	mu      sync.Mutex
	address Address
	m       float64
}

// NewMute constructs a Mute in the audible (unmuted) state.
func NewMute(address Address) *Mute {
	return &Mute{address: address, m: 1.0}
}

// Address returns the channel this mute instance owns.
func (m *Mute) Address() Address { return m.address }

// SetMute stores m = muted ? 0.0 : 1.0. Returns false (no-op) if the
// address does not match.
func (m *Mute) SetMute(side Side, index int, muted bool) bool {
	if !m.address.Matches(side, index) {
		return false
	}
	m.mu.Lock()
	if muted {
		m.m = 0.0
	} else {
		m.m = 1.0
	}
	m.mu.Unlock()
	return true
}

// IsMuted reports whether the stored multiplier is exactly 0.0.
func (m *Mute) IsMuted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m == 0.0
}

// Process multiplies the sample by the stored multiplier, truncating to
// 16 bits.
func (m *Mute) Process(sample int16) int16 {
	m.mu.Lock()
	mult := m.m
	m.mu.Unlock()
	return int16(int64(float64(sample) * mult))
}
