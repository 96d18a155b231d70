package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMute_RoundTrip(t *testing.T) {
	addr := Address{Side: SideOutput, Index: 2}
	m := NewMute(addr)

	assert.True(t, m.SetMute(SideOutput, 2, true))
	assert.True(t, m.IsMuted())

	assert.True(t, m.SetMute(SideOutput, 2, false))
	assert.False(t, m.IsMuted())
}

func TestMute_AddressGuard(t *testing.T) {
	addr := Address{Side: SideOutput, Index: 2}
	m := NewMute(addr)

	ok := m.SetMute(SideOutput, 3, true)
	assert.False(t, ok)
	assert.False(t, m.IsMuted())
}

func TestMute_S4_SilencesExactlyZero(t *testing.T) {
	addr := Address{Side: SideOutput, Index: 1}
	m := NewMute(addr)
	m.SetMute(SideOutput, 1, true)

	for _, s := range []int16{1, -1, 32767, -32768} {
		assert.Equal(t, int16(0), m.Process(s))
	}
}
