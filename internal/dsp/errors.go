package dsp

import "errors"

var (
	// ErrFilterParamOutOfRange is returned by ValidateFilterParams when a
	// filter configuration falls outside the transport-boundary guard
	// rails (center frequency, Q factor, gain).
	ErrFilterParamOutOfRange = errors.New("filter parameter out of range")

	// ErrChannelMismatch names the case of a mutator addressed to a
	// channel other than the one an effect instance owns. The effect
	// mutators in this package do not return it: they report a mismatch
	// by returning false, which the processor treats as a silent no-op
	// per spec invariant 4.
	ErrChannelMismatch = errors.New("channel address mismatch")
)
