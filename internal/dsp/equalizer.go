package dsp

import "sync"

const (
	// MinFilterID and MaxFilterID bound the sparse filter-id space an
	// Equalizer may address (spec §3: "id ∈ [1,16]").
	MinFilterID = 1
	MaxFilterID = 16
)

// FilterState is the externally visible state of one filter id: its
// current parameters and whether it currently participates in
// processing.
type FilterState struct {
	ID      int
	Enabled bool
	Params  FilterParams
}

// Equalizer is an ordered bank of up to 16 biquads for one channel,
// partitioned into disjoint enabled/disabled maps so that toggling a
// filter preserves its delay line and parameters (spec §3, §9 "tagged
// variant... recommended" — realized here as two maps under one lock
// rather than a single map of a sum type, matching the teacher's
// preference for plain structs over enum-like wrappers).
type Equalizer struct {
	mu         sync.Mutex
	address    Address
	sampleRate int
	enabled    map[int]*Biquad
	disabled   map[int]*Biquad
	// enabledOrder is kept sorted ascending and rebuilt only on
	// SetFilter, so Process can iterate it without allocating on the
	// audio thread's hot path.
	enabledOrder []int
}

// NewEqualizer creates an empty equalizer for the given channel address.
func NewEqualizer(address Address, sampleRate int) *Equalizer {
	return &Equalizer{
		address:    address,
		sampleRate: sampleRate,
		enabled:    make(map[int]*Biquad),
		disabled:   make(map[int]*Biquad),
	}
}

// Address returns the (side, index) this equalizer owns.
func (eq *Equalizer) Address() Address {
	return eq.address
}

// SetFilter accepts a mutation only if it is addressed to this
// equalizer's channel. If the id already exists in either map its
// parameters are updated in place (preserving the delay line); it is
// then moved to the enabled or disabled map to match the enabled flag.
// If absent, a new filter is constructed and inserted directly into the
// matching map. Returns the post-update state, or false if the address
// did not match (a silent no-op, per spec invariant 4).
func (eq *Equalizer) SetFilter(side Side, index, id int, enabled bool, params FilterParams) (FilterState, bool) {
	if !eq.address.Matches(side, index) {
		return FilterState{}, false
	}

	eq.mu.Lock()
	defer eq.mu.Unlock()

	var filter *Biquad
	if f, ok := eq.enabled[id]; ok {
		filter = f
	} else if f, ok := eq.disabled[id]; ok {
		filter = f
	}

	if filter != nil {
		filter.Reconfigure(params)
		delete(eq.enabled, id)
		delete(eq.disabled, id)
	} else {
		filter = NewBiquad(eq.sampleRate, params)
	}

	if enabled {
		eq.enabled[id] = filter
	} else {
		eq.disabled[id] = filter
	}
	eq.rebuildEnabledOrder()

	return FilterState{ID: id, Enabled: enabled, Params: params}, true
}

// rebuildEnabledOrder recomputes the ascending list of enabled ids. Only
// called from SetFilter, which runs on the control thread — never on the
// audio thread's per-sample path.
func (eq *Equalizer) rebuildEnabledOrder() {
	order := make([]int, 0, len(eq.enabled))
	for id := range eq.enabled {
		order = append(order, id)
	}
	sortInts(order)
	eq.enabledOrder = order
}

// GetFilter replies with the current state of a filter id, or a
// synthetic default if the id is absent from both maps. Returns false
// if the address did not match.
func (eq *Equalizer) GetFilter(side Side, index, id int) (FilterState, bool) {
	if !eq.address.Matches(side, index) {
		return FilterState{}, false
	}

	eq.mu.Lock()
	defer eq.mu.Unlock()

	if f, ok := eq.enabled[id]; ok {
		return FilterState{ID: id, Enabled: true, Params: f.Params()}, true
	}
	if f, ok := eq.disabled[id]; ok {
		return FilterState{ID: id, Enabled: false, Params: f.Params()}, true
	}
	return FilterState{ID: id, Enabled: false, Params: DefaultFilterParams()}, true
}

// Process folds a sample through every enabled filter in ascending id
// order and returns the result.
func (eq *Equalizer) Process(sample int16) int16 {
	eq.mu.Lock()
	defer eq.mu.Unlock()

	for _, id := range eq.enabledOrder {
		sample = eq.enabled[id].Process(sample)
	}
	return sample
}

// sortInts is a tiny insertion sort: filter counts are bounded by
// MaxFilterID (16), so a handful of elements needs nothing more. It
// runs only from rebuildEnabledOrder, on the control path.
func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
