package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBiquad_PeakingZeroGainIsBypassOnFirstSample(t *testing.T) {
	// Invariant 5: a peaking filter with gain_db=0 returns exactly the
	// input sample (within 1 LSB) on the first processed sample, since
	// the delay line starts zeroed.
	params := FilterParams{Type: FilterPeaking, CenterFrequency: 1000, QFactor: 0.707, GainDB: 0}
	b := NewBiquad(48000, params)

	got := b.Process(12345)
	assert.InDelta(t, 12345, got, 1)
}

func TestBiquad_ReconfigurePreservesDelayLine(t *testing.T) {
	params := FilterParams{Type: FilterLowpass, CenterFrequency: 4000, QFactor: 0.707, GainDB: 0}
	b := NewBiquad(48000, params)

	b.Process(1000)
	x1Before := b.x1

	b.Reconfigure(FilterParams{Type: FilterHighpass, CenterFrequency: 2000, QFactor: 1, GainDB: 0})

	require.Equal(t, x1Before, b.x1, "reconfigure must not reset the delay line")
}

func TestValidateFilterParams(t *testing.T) {
	tests := []struct {
		name    string
		params  FilterParams
		rate    int
		wantErr bool
	}{
		{"valid peaking", FilterParams{FilterPeaking, 1000, 0.707, 0}, 48000, false},
		{"frequency at nyquist", FilterParams{FilterPeaking, 24000, 0.707, 0}, 48000, true},
		{"negative frequency", FilterParams{FilterPeaking, -10, 0.707, 0}, 48000, true},
		{"q too low", FilterParams{FilterPeaking, 1000, 0.05, 0}, 48000, true},
		{"q too high", FilterParams{FilterPeaking, 1000, 15, 0}, 48000, true},
		{"gain too high", FilterParams{FilterPeaking, 1000, 0.707, 40}, 48000, true},
		{"unknown type", FilterParams{"square", 1000, 0.707, 0}, 48000, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFilterParams(tc.params, tc.rate)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrFilterParamOutOfRange)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
