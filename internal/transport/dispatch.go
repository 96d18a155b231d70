package transport

import (
	"github.com/l-bnp/audioproc/internal/domain"
	"github.com/l-bnp/audioproc/internal/dsp"
	"github.com/l-bnp/audioproc/internal/eventbus"
)

// dispatch validates the inbound message against the dispatch table
// (spec §4.8) and emits the same-named bus event. The store and the
// processor's per-effect wiring are both subscribed under these
// names; dispatch itself does not know or care who answers.
func dispatch(bus *eventbus.Bus, msg inboundMessage, sampleRate int) error {
	switch msg.CommandType {
	case eventbus.EventSetGain, eventbus.EventGetGain:
		side, index, err := channelFields(msg)
		if err != nil {
			return err
		}
		gainDB := 0.0
		if msg.CommandType == eventbus.EventSetGain {
			if msg.GainDB == nil {
				return missingField("gain_db")
			}
			gainDB = *msg.GainDB
		}
		eventbus.EmitGain(bus, msg.CommandType, eventbus.GainNotification{Side: side, Index: index, GainDB: gainDB})
		return nil

	case eventbus.EventSetMute, eventbus.EventGetMute:
		side, index, err := channelFields(msg)
		if err != nil {
			return err
		}
		muted := false
		if msg.CommandType == eventbus.EventSetMute {
			if msg.Mute == nil {
				return missingField("mute")
			}
			muted = *msg.Mute
		}
		eventbus.EmitMute(bus, msg.CommandType, eventbus.MuteNotification{Side: side, Index: index, Muted: muted})
		return nil

	case eventbus.EventSetMixer, eventbus.EventGetMixer:
		if msg.InputChannel == nil || msg.OutputChannel == nil {
			return missingField("input_channel/output_channel")
		}
		routed := false
		if msg.CommandType == eventbus.EventSetMixer {
			if msg.Mix == nil {
				return missingField("mix")
			}
			routed = *msg.Mix
		}
		eventbus.EmitMixer(bus, msg.CommandType, eventbus.MixerNotification{
			Input: *msg.InputChannel, Output: *msg.OutputChannel, Routed: routed,
		})
		return nil

	case eventbus.EventSetFilter, eventbus.EventGetFilter:
		side, index, err := channelFields(msg)
		if err != nil {
			return err
		}
		if msg.FilterID == nil {
			return missingField("filter_id")
		}

		params := dsp.DefaultFilterParams()
		enabled := false
		if msg.CommandType == eventbus.EventSetFilter {
			if msg.FilterEnabled == nil || msg.FilterType == nil || msg.CenterFrequency == nil || msg.QFactor == nil || msg.GainDB == nil {
				return missingField("filter_enabled/filter_type/center_frequency/q_factor/gain_db")
			}
			enabled = *msg.FilterEnabled
			params = dsp.FilterParams{
				Type:            dsp.FilterType(*msg.FilterType),
				CenterFrequency: *msg.CenterFrequency,
				QFactor:         *msg.QFactor,
				GainDB:          *msg.GainDB,
			}
			if err := dsp.ValidateFilterParams(params, sampleRate); err != nil {
				return domain.NewCommandError("invalid_filter_params", err.Error(), err)
			}
		}

		eventbus.EmitFilter(bus, msg.CommandType, eventbus.FilterNotification{
			Side: side, Index: index, FilterID: *msg.FilterID, Enabled: enabled, Params: params,
		})
		return nil

	case eventbus.EventGetMeter:
		if msg.ChannelType == nil {
			return missingField("channel_type")
		}
		eventbus.EmitMeter(bus, eventbus.EventGetMeter, eventbus.MeterNotification{Side: dsp.Side(*msg.ChannelType)})
		return nil

	default:
		return domain.NewCommandError("unknown_command", "fail", domain.ErrUnknownCommand)
	}
}

func channelFields(msg inboundMessage) (dsp.Side, int, error) {
	if msg.ChannelType == nil || msg.ChannelNumber == nil {
		return "", 0, missingField("channel_type/channel_number")
	}
	return dsp.Side(*msg.ChannelType), *msg.ChannelNumber, nil
}

func missingField(field string) error {
	return domain.NewCommandError("invalid_command_payload", "missing field: "+field, domain.ErrInvalidCommandPayload)
}
