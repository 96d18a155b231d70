package processor

import (
	"testing"

	"github.com/l-bnp/audioproc/internal/dsp"
	"github.com/l-bnp/audioproc/internal/eventbus"
	"github.com/stretchr/testify/assert"
)

func TestWireGainHydratesFromDatabaseReply(t *testing.T) {
	bus := eventbus.New()
	g := dsp.NewGain(dsp.Address{Side: dsp.SideInput, Index: 1})

	// Simulate a store that always answers with -6dB, the way
	// internal/store would on a hydration hit.
	eventbus.OnGain(bus, eventbus.EventGetDatabaseGain, func(n eventbus.GainNotification) {
		eventbus.EmitGain(bus, eventbus.EventNotifyGain, eventbus.GainNotification{Side: n.Side, Index: n.Index, GainDB: -6})
	})

	wireGain(bus, []*dsp.Gain{g})
	assert.InDelta(t, -6.0, g.GetGain(), 0.01)
}

func TestWireGainSetGainRepliesNotifyOnlyWhenAddressed(t *testing.T) {
	bus := eventbus.New()
	g1 := dsp.NewGain(dsp.Address{Side: dsp.SideInput, Index: 1})
	g2 := dsp.NewGain(dsp.Address{Side: dsp.SideInput, Index: 2})
	wireGain(bus, []*dsp.Gain{g1, g2})

	var replies int
	eventbus.OnGain(bus, eventbus.EventNotifyGain, func(eventbus.GainNotification) { replies++ })
	replies = 0 // counter subscribed after wireGain, so no hydration-time reply is counted

	eventbus.EmitGain(bus, eventbus.EventSetGain, eventbus.GainNotification{Side: dsp.SideInput, Index: 1, GainDB: -3})

	assert.Equal(t, 1, replies, "only the addressed gain should reply")
	assert.InDelta(t, -3.0, g1.GetGain(), 0.01)
	assert.InDelta(t, 0.0, g2.GetGain(), 0.01)
}

func TestWireMuteGetMuteReadsCurrentValue(t *testing.T) {
	bus := eventbus.New()
	m := dsp.NewMute(dsp.Address{Side: dsp.SideOutput, Index: 1})
	wireMute(bus, []*dsp.Mute{m})

	var got eventbus.MuteNotification
	eventbus.OnMute(bus, eventbus.EventNotifyMute, func(n eventbus.MuteNotification) { got = n })

	eventbus.EmitMute(bus, eventbus.EventSetMute, eventbus.MuteNotification{Side: dsp.SideOutput, Index: 1, Muted: true})
	eventbus.EmitMute(bus, eventbus.EventGetMute, eventbus.MuteNotification{Side: dsp.SideOutput, Index: 1})

	assert.True(t, got.Muted)
}

func TestWireEqualizerHydratesAllSixteenFilterIDs(t *testing.T) {
	bus := eventbus.New()
	eq := dsp.NewEqualizer(dsp.Address{Side: dsp.SideInput, Index: 1}, 48000)

	var hydrationRequests int
	eventbus.OnFilter(bus, eventbus.EventGetDatabaseFilter, func(eventbus.FilterNotification) { hydrationRequests++ })

	wireEqualizer(bus, []*dsp.Equalizer{eq})
	assert.Equal(t, dsp.MaxFilterID, hydrationRequests)
}

func TestWireEqualizerSetFilterAppliesAndNotifies(t *testing.T) {
	bus := eventbus.New()
	eq := dsp.NewEqualizer(dsp.Address{Side: dsp.SideInput, Index: 1}, 48000)
	wireEqualizer(bus, []*dsp.Equalizer{eq})

	var got eventbus.FilterNotification
	eventbus.OnFilter(bus, eventbus.EventNotifyFilter, func(n eventbus.FilterNotification) { got = n })

	eventbus.EmitFilter(bus, eventbus.EventSetFilter, eventbus.FilterNotification{
		Side: dsp.SideInput, Index: 1, FilterID: 5, Enabled: true,
		Params: dsp.FilterParams{Type: dsp.FilterLowpass, CenterFrequency: 2000, QFactor: 0.707, GainDB: 0},
	})

	assert.Equal(t, 5, got.FilterID)
	assert.True(t, got.Enabled)

	state, ok := eq.GetFilter(dsp.SideInput, 1, 5)
	assert.True(t, ok)
	assert.True(t, state.Enabled)
}

func TestWireMixerSetRouteAndGetRoute(t *testing.T) {
	bus := eventbus.New()
	mixer := dsp.NewMixer(2, 2)
	wireMixer(bus, mixer)

	var got eventbus.MixerNotification
	eventbus.OnMixer(bus, eventbus.EventNotifyMixer, func(n eventbus.MixerNotification) { got = n })

	eventbus.EmitMixer(bus, eventbus.EventSetMixer, eventbus.MixerNotification{Input: 1, Output: 2, Routed: true})
	eventbus.EmitMixer(bus, eventbus.EventGetMixer, eventbus.MixerNotification{Input: 1, Output: 2})

	assert.True(t, got.Routed)
}

func TestWireMeterAnswersBySide(t *testing.T) {
	bus := eventbus.New()
	in := dsp.NewMeter(dsp.SideInput, 2, 48000)
	out := dsp.NewMeter(dsp.SideOutput, 2, 48000)
	wireMeter(bus, in, out)

	var got eventbus.MeterNotification
	eventbus.OnMeter(bus, eventbus.EventNotifyMeter, func(n eventbus.MeterNotification) { got = n })

	eventbus.EmitMeter(bus, eventbus.EventGetMeter, eventbus.MeterNotification{Side: dsp.SideOutput})
	assert.Equal(t, dsp.SideOutput, got.Side)
	assert.Len(t, got.AmplitudesDB, 2)
}
