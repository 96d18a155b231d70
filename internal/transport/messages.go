package transport

import "github.com/l-bnp/audioproc/internal/eventbus"

// inboundMessage is the union of every field any command_type in the
// dispatch table (spec §4.8) may carry. Pointer fields distinguish
// "absent" from the zero value, since get_gain/get_mute/get_mixer/
// get_filter omit the value fields entirely.
type inboundMessage struct {
	CommandType string `json:"command_type"`

	ChannelType   *string `json:"channel_type,omitempty"`
	ChannelNumber *int    `json:"channel_number,omitempty"`
	GainDB        *float64 `json:"gain_db,omitempty"`
	Mute          *bool    `json:"mute,omitempty"`

	InputChannel  *int  `json:"input_channel,omitempty"`
	OutputChannel *int  `json:"output_channel,omitempty"`
	Mix           *bool `json:"mix,omitempty"`

	FilterID        *int     `json:"filter_id,omitempty"`
	FilterEnabled   *bool    `json:"filter_enabled,omitempty"`
	FilterType      *string  `json:"filter_type,omitempty"`
	CenterFrequency *float64 `json:"center_frequency,omitempty"`
	QFactor         *float64 `json:"q_factor,omitempty"`
}

func gainResponse(commandType string, n eventbus.GainNotification) map[string]interface{} {
	return map[string]interface{}{
		"command_type":   commandType,
		"channel_type":   string(n.Side),
		"channel_number": n.Index,
		"gain_db":        n.GainDB,
	}
}

func muteResponse(commandType string, n eventbus.MuteNotification) map[string]interface{} {
	return map[string]interface{}{
		"command_type":   commandType,
		"channel_type":   string(n.Side),
		"channel_number": n.Index,
		"mute":           n.Muted,
	}
}

func mixerResponse(commandType string, n eventbus.MixerNotification) map[string]interface{} {
	return map[string]interface{}{
		"command_type":   commandType,
		"input_channel":  n.Input,
		"output_channel": n.Output,
		"mix":            n.Routed,
	}
}

func filterResponse(commandType string, n eventbus.FilterNotification) map[string]interface{} {
	return map[string]interface{}{
		"command_type":     commandType,
		"channel_type":     string(n.Side),
		"channel_number":   n.Index,
		"filter_id":        n.FilterID,
		"filter_enabled":   n.Enabled,
		"filter_type":      string(n.Params.Type),
		"center_frequency": n.Params.CenterFrequency,
		"q_factor":         n.Params.QFactor,
		"gain_db":          n.Params.GainDB,
	}
}

func meterResponse(commandType string, n eventbus.MeterNotification) map[string]interface{} {
	return map[string]interface{}{
		"command_type":  commandType,
		"channel_type":  string(n.Side),
		"amplitudes_db": n.AmplitudesDB,
	}
}

func errorResponse(errorType, errorMessage string) map[string]interface{} {
	resp := map[string]interface{}{"error_type": errorType}
	if errorMessage != "" {
		resp["error_message"] = errorMessage
	}
	return resp
}
