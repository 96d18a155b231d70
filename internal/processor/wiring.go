package processor

import (
	"github.com/l-bnp/audioproc/internal/dsp"
	"github.com/l-bnp/audioproc/internal/eventbus"
)

// wireGain binds each Gain instance to the bus: a set_gain/get_gain
// subscription that applies a matching mutation (or reads the current
// value) and replies notify_gain, plus a hydration subscription that
// installs whatever the parameter store resolves at startup (spec
// §4.10's "each effect's constructor synchronously emits
// get_database_* ... and subscribes to its set_*/get_* control
// events").
func wireGain(bus *eventbus.Bus, gains []*dsp.Gain) {
	for _, g := range gains {
		g := g
		eventbus.OnGain(bus, eventbus.EventNotifyGain, func(n eventbus.GainNotification) {
			if g.Address().Matches(n.Side, n.Index) {
				g.SetGain(n.Side, n.Index, n.GainDB)
			}
		})
		eventbus.OnGain(bus, eventbus.EventGetGainFailed, func(n eventbus.GainNotification) {
			if g.Address().Matches(n.Side, n.Index) {
				g.SetGain(n.Side, n.Index, dsp.DefaultGainDB)
			}
		})

		eventbus.OnGain(bus, eventbus.EventSetGain, func(n eventbus.GainNotification) {
			if g.SetGain(n.Side, n.Index, n.GainDB) {
				eventbus.EmitGain(bus, eventbus.EventNotifyGain, eventbus.GainNotification{
					Side: n.Side, Index: n.Index, GainDB: g.GetGain(),
				})
			}
		})
		eventbus.OnGain(bus, eventbus.EventGetGain, func(n eventbus.GainNotification) {
			if g.Address().Matches(n.Side, n.Index) {
				eventbus.EmitGain(bus, eventbus.EventNotifyGain, eventbus.GainNotification{
					Side: n.Side, Index: n.Index, GainDB: g.GetGain(),
				})
			}
		})

		addr := g.Address()
		eventbus.EmitGain(bus, eventbus.EventGetDatabaseGain, eventbus.GainNotification{Side: addr.Side, Index: addr.Index})
	}
}

// wireMute mirrors wireGain for Mute instances.
func wireMute(bus *eventbus.Bus, mutes []*dsp.Mute) {
	for _, m := range mutes {
		m := m
		eventbus.OnMute(bus, eventbus.EventNotifyMute, func(n eventbus.MuteNotification) {
			if m.Address().Matches(n.Side, n.Index) {
				m.SetMute(n.Side, n.Index, n.Muted)
			}
		})
		eventbus.OnMute(bus, eventbus.EventGetMuteFailed, func(n eventbus.MuteNotification) {
			if m.Address().Matches(n.Side, n.Index) {
				m.SetMute(n.Side, n.Index, false)
			}
		})

		eventbus.OnMute(bus, eventbus.EventSetMute, func(n eventbus.MuteNotification) {
			if m.SetMute(n.Side, n.Index, n.Muted) {
				eventbus.EmitMute(bus, eventbus.EventNotifyMute, eventbus.MuteNotification{
					Side: n.Side, Index: n.Index, Muted: m.IsMuted(),
				})
			}
		})
		eventbus.OnMute(bus, eventbus.EventGetMute, func(n eventbus.MuteNotification) {
			if m.Address().Matches(n.Side, n.Index) {
				eventbus.EmitMute(bus, eventbus.EventNotifyMute, eventbus.MuteNotification{
					Side: n.Side, Index: n.Index, Muted: m.IsMuted(),
				})
			}
		})

		addr := m.Address()
		eventbus.EmitMute(bus, eventbus.EventGetDatabaseMute, eventbus.MuteNotification{Side: addr.Side, Index: addr.Index})
	}
}

// wireEqualizer binds each Equalizer's full filter bank. Hydration is
// per filter id — each (side, index) equalizer hydrates all 16 ids at
// construction, matching the store's one-row-per-attribute schema
// (spec §4.7).
func wireEqualizer(bus *eventbus.Bus, eqs []*dsp.Equalizer) {
	for _, eq := range eqs {
		eq := eq
		eventbus.OnFilter(bus, eventbus.EventNotifyFilter, func(n eventbus.FilterNotification) {
			if eq.Address().Matches(n.Side, n.Index) {
				eq.SetFilter(n.Side, n.Index, n.FilterID, n.Enabled, n.Params)
			}
		})

		eventbus.OnFilter(bus, eventbus.EventSetFilter, func(n eventbus.FilterNotification) {
			if state, ok := eq.SetFilter(n.Side, n.Index, n.FilterID, n.Enabled, n.Params); ok {
				eventbus.EmitFilter(bus, eventbus.EventNotifyFilter, eventbus.FilterNotification{
					Side: n.Side, Index: n.Index, FilterID: state.ID, Enabled: state.Enabled, Params: state.Params,
				})
			}
		})
		eventbus.OnFilter(bus, eventbus.EventGetFilter, func(n eventbus.FilterNotification) {
			if state, ok := eq.GetFilter(n.Side, n.Index, n.FilterID); ok {
				eventbus.EmitFilter(bus, eventbus.EventNotifyFilter, eventbus.FilterNotification{
					Side: n.Side, Index: n.Index, FilterID: state.ID, Enabled: state.Enabled, Params: state.Params,
				})
			}
		})

		addr := eq.Address()
		for id := dsp.MinFilterID; id <= dsp.MaxFilterID; id++ {
			eventbus.EmitFilter(bus, eventbus.EventGetDatabaseFilter, eventbus.FilterNotification{
				Side: addr.Side, Index: addr.Index, FilterID: id,
			})
		}
	}
}

// wireMixer hydrates every (input, output) routing entry and binds
// set_mixer/get_mixer.
func wireMixer(bus *eventbus.Bus, mixer *dsp.Mixer) {
	eventbus.OnMixer(bus, eventbus.EventNotifyMixer, func(n eventbus.MixerNotification) {
		mixer.SetRoute(n.Input, n.Output, n.Routed)
	})
	eventbus.OnMixer(bus, eventbus.EventGetMixerFailed, func(n eventbus.MixerNotification) {
		mixer.SetRoute(n.Input, n.Output, false)
	})

	eventbus.OnMixer(bus, eventbus.EventSetMixer, func(n eventbus.MixerNotification) {
		if mixer.SetRoute(n.Input, n.Output, n.Routed) {
			eventbus.EmitMixer(bus, eventbus.EventNotifyMixer, n)
		}
	})
	eventbus.OnMixer(bus, eventbus.EventGetMixer, func(n eventbus.MixerNotification) {
		if routed, ok := mixer.GetRoute(n.Input, n.Output); ok {
			eventbus.EmitMixer(bus, eventbus.EventNotifyMixer, eventbus.MixerNotification{
				Input: n.Input, Output: n.Output, Routed: routed,
			})
		}
	})

	for i := 1; i <= mixer.Inputs(); i++ {
		for o := 1; o <= mixer.Outputs(); o++ {
			eventbus.EmitMixer(bus, eventbus.EventGetDatabaseMixer, eventbus.MixerNotification{Input: i, Output: o})
		}
	}
}

// wireMeter answers get_meter for whichever side a meter owns. Meters
// are not persisted (spec §4.7 lists only gain/mute/mixer/filter), so
// there is no hydration step here.
func wireMeter(bus *eventbus.Bus, inputMeter, outputMeter *dsp.Meter) {
	eventbus.OnMeter(bus, eventbus.EventGetMeter, func(n eventbus.MeterNotification) {
		var m *dsp.Meter
		switch n.Side {
		case dsp.SideInput:
			m = inputMeter
		case dsp.SideOutput:
			m = outputMeter
		default:
			return
		}
		eventbus.EmitMeter(bus, eventbus.EventNotifyMeter, eventbus.MeterNotification{
			Side: n.Side, AmplitudesDB: m.AllAmplitudesDB(),
		})
	})
}
