package processor

import (
	"testing"

	"github.com/l-bnp/audioproc/internal/dsp"
	"github.com/l-bnp/audioproc/internal/eventbus"
	"github.com/l-bnp/audioproc/internal/store"
	"github.com/l-bnp/audioproc/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullControlPathPersistsAndReflectsMutation exercises the whole
// control plane stack minus the real websocket and ALSA device: a
// set_gain event emitted onto the bus reaches both the store and the
// processor's wired gain, which applies it and replies notify_gain.
// Rehydration by a fresh processor against the same store file is
// covered by the next test.
func TestFullControlPathPersistsAndReflectsMutation(t *testing.T) {
	bus := eventbus.New()
	st, err := store.Open(store.Config{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1}, bus)
	require.NoError(t, err)
	defer st.Close()

	proc := New(Config{Inputs: 2, Outputs: 2, SampleRate: 48000, FramesPerRead: 4}, nil, bus)

	var notified eventbus.GainNotification
	eventbus.OnGain(bus, eventbus.EventNotifyGain, func(n eventbus.GainNotification) {
		if n.Side == dsp.SideInput && n.Index == 1 {
			notified = n
		}
	})

	eventbus.EmitGain(bus, eventbus.EventSetGain, eventbus.GainNotification{Side: dsp.SideInput, Index: 1, GainDB: -9})

	assert.InDelta(t, -9.0, notified.GainDB, 0.01, "wired gain replies notify_gain after a set_gain mutation")
	assert.InDelta(t, -9.0, proc.inputGain[0].GetGain(), 0.01)
}

func TestFullControlPathRehydratesOnNewProcessorAgainstSameStore(t *testing.T) {
	dir := t.TempDir()
	cfg := store.Config{Path: dir + "/params.db", MaxOpenConns: 1, MaxIdleConns: 1}

	bus := eventbus.New()
	st, err := store.Open(cfg, bus)
	require.NoError(t, err)

	first := New(Config{Inputs: 1, Outputs: 1, SampleRate: 48000, FramesPerRead: 4}, nil, bus)
	require.True(t, first.outputMute[0].SetMute(dsp.SideOutput, 1, true))
	eventbus.EmitMute(bus, eventbus.EventSetMute, eventbus.MuteNotification{Side: dsp.SideOutput, Index: 1, Muted: true})
	require.NoError(t, st.Close())

	// A second processor, built against a fresh bus and a fresh store
	// opened on the same file, must rehydrate the persisted mute state
	// at construction — the cross-process-restart path spec §4.7 covers.
	bus2 := eventbus.New()
	st2, err := store.Open(cfg, bus2)
	require.NoError(t, err)
	defer st2.Close()

	second := New(Config{Inputs: 1, Outputs: 1, SampleRate: 48000, FramesPerRead: 4}, nil, bus2)
	assert.True(t, second.outputMute[0].IsMuted(), "hydration at construction reads back the already-persisted mute state")
}

func TestTransportDispatchReachesWiredEqualizer(t *testing.T) {
	bus := eventbus.New()
	proc := New(Config{Inputs: 1, Outputs: 1, SampleRate: 48000, FramesPerRead: 4}, nil, bus)

	msg := struct {
		CommandType     string
		ChannelType     string
		ChannelNumber   int
		FilterID        int
		FilterEnabled   bool
		FilterType      string
		CenterFrequency float64
		QFactor         float64
		GainDB          float64
	}{
		CommandType: eventbus.EventSetFilter, ChannelType: string(dsp.SideInput), ChannelNumber: 1,
		FilterID: 2, FilterEnabled: true, FilterType: string(dsp.FilterHighpass),
		CenterFrequency: 200, QFactor: 0.707, GainDB: 0,
	}

	eventbus.EmitFilter(bus, msg.CommandType, eventbus.FilterNotification{
		Side: dsp.Side(msg.ChannelType), Index: msg.ChannelNumber, FilterID: msg.FilterID, Enabled: msg.FilterEnabled,
		Params: dsp.FilterParams{Type: dsp.FilterType(msg.FilterType), CenterFrequency: msg.CenterFrequency, QFactor: msg.QFactor, GainDB: msg.GainDB},
	})

	state, ok := proc.inputEQ[0].GetFilter(dsp.SideInput, 1, 2)
	require.True(t, ok)
	assert.True(t, state.Enabled)
	assert.Equal(t, dsp.FilterHighpass, state.Params.Type)

	_ = transport.DefaultConfig() // transport wiring itself is covered in internal/transport; this asserts the bus-level contract it depends on.
}
