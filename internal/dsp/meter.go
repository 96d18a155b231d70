package dsp

import (
	"math"
	"sync"
)

// ReferenceAmplitude is the full-scale reference used by the dBFS
// formula below. It is not 32768 (true int16 full scale) — it is the
// value the original source measured its reference against, and is
// preserved exactly so readings match (spec §3).
const ReferenceAmplitude = 14000.0

// Meter is a per-channel rolling window over the most recent W samples,
// where W = floor(sampleRate * 0.1) — a 100ms window. All channels of a
// Meter share a single write cursor (spec §4.4): store() advances one
// cursor position per call regardless of which channel slots are
// written in that call.
type Meter struct {
	mu       sync.Mutex
	address  Side
	channels int
	window   int
	cursor   int
	buffers  [][]int16
}

// NewMeter constructs a meter for `channels` channels of `side`, sized
// to a 100ms window at sampleRate.
func NewMeter(side Side, channels, sampleRate int) *Meter {
	window := int(float64(sampleRate) * 0.1)
	if window < 1 {
		window = 1
	}
	buffers := make([][]int16, channels)
	for c := range buffers {
		buffers[c] = make([]int16, window)
	}
	return &Meter{
		address:  side,
		channels: channels,
		window:   window,
		buffers:  buffers,
	}
}

// Window returns the configured ring-buffer length in samples.
func (m *Meter) Window() int {
	return m.window
}

// Store writes one frame (one sample per channel) at the current cursor
// position across all channels, then advances the single shared cursor
// by one, wrapping at the window length.
func (m *Meter) Store(frame []int16) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.cursor
	for c := 0; c < m.channels && c < len(frame); c++ {
		m.buffers[c][p] = frame[c]
	}
	m.cursor++
	if m.cursor >= m.window {
		m.cursor = 0
	}
}

// ChannelAmplitudeDB computes the dBFS reading for one channel over its
// full window, regardless of how many samples have actually been
// written since construction — an unfilled tail reads as silence, which
// is the documented behavior, not an approximation pending a fill count:
//
//	20*log10(clamp(sqrt(sum((s/ReferenceAmplitude)^2) / W), 0, 1))
func (m *Meter) ChannelAmplitudeDB(channel int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if channel < 0 || channel >= m.channels {
		return math.Inf(-1)
	}

	var sumSquares float64
	buf := m.buffers[channel]
	for _, s := range buf {
		normalized := float64(s) / ReferenceAmplitude
		sumSquares += normalized * normalized
	}
	rms := math.Sqrt(sumSquares / float64(m.window))
	if rms < 0 {
		rms = 0
	} else if rms > 1 {
		rms = 1
	}
	return 20 * math.Log10(rms)
}

// AllAmplitudesDB returns the dBFS reading for every channel, 1..C, in
// order, as required by a get_meter reply.
func (m *Meter) AllAmplitudesDB() []float64 {
	out := make([]float64, m.channels)
	for c := 0; c < m.channels; c++ {
		out[c] = m.ChannelAmplitudeDB(c)
	}
	return out
}
