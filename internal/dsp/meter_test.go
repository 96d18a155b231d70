package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeter_WindowLength(t *testing.T) {
	// Invariant 6: window = floor(rate*0.1).
	m := NewMeter(SideInput, 2, 48000)
	assert.Equal(t, 4800, m.Window())
}

func TestMeter_Invariant6ConstantSignalAmplitude(t *testing.T) {
	m := NewMeter(SideInput, 1, 48000)
	window := m.Window()

	const s = int16(7000)
	for i := 0; i < window; i++ {
		m.Store([]int16{s})
	}

	got := m.ChannelAmplitudeDB(0)
	want := 20 * math.Log10(float64(s)/ReferenceAmplitude)
	assert.InDelta(t, want, got, 0.01)
}

func TestMeter_SharedCursorAcrossChannels(t *testing.T) {
	m := NewMeter(SideInput, 2, 10) // window = 1
	m.Store([]int16{100, 200})
	// A single store call advances the shared cursor by exactly one,
	// regardless of channel count.
	assert.Equal(t, 0, m.cursor)
}

func TestMeter_AllAmplitudesOrder(t *testing.T) {
	m := NewMeter(SideOutput, 3, 48000)
	for i := 0; i < m.Window(); i++ {
		m.Store([]int16{1000, 2000, 3000})
	}
	dbs := m.AllAmplitudesDB()
	assert.Len(t, dbs, 3)
	assert.Less(t, dbs[0], dbs[1])
	assert.Less(t, dbs[1], dbs[2])
}
