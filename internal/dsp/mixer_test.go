package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMixer_S2_SummedRouting(t *testing.T) {
	m := NewMixer(2, 2)
	require.True(t, m.SetRoute(1, 1, true))
	require.True(t, m.SetRoute(2, 1, true))

	out := m.Process([]int16{1000, 3000})
	assert.Equal(t, []int16{4000, 0}, out)
}

func TestMixer_DefaultIsSilent(t *testing.T) {
	m := NewMixer(2, 2)
	out := m.Process([]int16{1000, 1000})
	assert.Equal(t, []int16{0, 0}, out)
}

func TestMixer_BoundsCheck(t *testing.T) {
	m := NewMixer(2, 2)
	assert.False(t, m.SetRoute(0, 1, true))
	assert.False(t, m.SetRoute(1, 3, true))
	assert.False(t, m.SetRoute(3, 1, true))
}

func TestMixer_GetRoute(t *testing.T) {
	m := NewMixer(2, 2)
	m.SetRoute(1, 2, true)

	routed, ok := m.GetRoute(1, 2)
	require.True(t, ok)
	assert.True(t, routed)

	routed, ok = m.GetRoute(2, 2)
	require.True(t, ok)
	assert.False(t, routed)

	_, ok = m.GetRoute(5, 1)
	assert.False(t, ok)
}
