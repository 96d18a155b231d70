package eventbus

import "github.com/l-bnp/audioproc/internal/dsp"

// Event names, used verbatim as bus names and (for set_*/get_*) as the
// wire command_type strings (spec §4.8).
const (
	EventSetGain   = "set_gain"
	EventGetGain   = "get_gain"
	EventSetMute   = "set_mute"
	EventGetMute   = "get_mute"
	EventSetMixer  = "set_mixer"
	EventGetMixer  = "get_mixer"
	EventSetFilter = "set_filter"
	EventGetFilter = "get_filter"
	EventGetMeter  = "get_meter"

	EventNotifyGain   = "notify_gain"
	EventNotifyMute   = "notify_mute"
	EventNotifyMixer  = "notify_mixer"
	EventNotifyFilter = "notify_filter"
	EventNotifyMeter  = "notify_meter"

	EventGetGainFailed   = "get_gain_failed"
	EventGetMuteFailed   = "get_mute_failed"
	EventGetMixerFailed  = "get_mixer_failed"
	EventGetFilterFailed = "get_filter_failed"

	EventGetDatabaseGain   = "get_database_gain"
	EventGetDatabaseMute   = "get_database_mute"
	EventGetDatabaseMixer  = "get_database_mixer"
	EventGetDatabaseFilter = "get_database_filter"
)

// GainNotification is the payload broadcast after a set_gain/get_gain
// mutation or database hydration of a gain value.
type GainNotification struct {
	Side   dsp.Side
	Index  int
	GainDB float64
	Failed bool // true when this is a get_gain_failed downgrade
}

// MuteNotification is the payload broadcast after a set_mute/get_mute
// mutation or database hydration of a mute value.
type MuteNotification struct {
	Side   dsp.Side
	Index  int
	Muted  bool
	Failed bool
}

// MixerNotification is the payload broadcast after a set_mixer/get_mixer
// mutation or database hydration of a routing entry.
type MixerNotification struct {
	Input  int
	Output int
	Routed bool
	Failed bool
}

// FilterNotification is the payload broadcast after a set_filter/get_filter
// mutation or database hydration of a filter. CommandType is downgraded to
// "get_filter_failed" by the store when any attribute was missing on
// hydration (spec §4.7).
type FilterNotification struct {
	Side        dsp.Side
	Index       int
	FilterID    int
	Enabled     bool
	Params      dsp.FilterParams
	CommandType string
}

// MeterNotification is the payload broadcast in reply to get_meter.
type MeterNotification struct {
	Side         dsp.Side
	AmplitudesDB []float64
}

// GainHandler, MuteHandler, MixerHandler, FilterHandler, MeterHandler are
// the concrete function types the typed On*/Emit* helpers below enforce.
// Passing a handler or payload of the wrong shape to a helper is a compile
// error; emitting with one helper under a name that was subscribed through
// another still panics at runtime on the handler type assertion.
type (
	GainHandler   func(GainNotification)
	MuteHandler   func(MuteNotification)
	MixerHandler  func(MixerNotification)
	FilterHandler func(FilterNotification)
	MeterHandler  func(MeterNotification)
)

// OnGain subscribes a GainHandler under name (one of the gain-shaped
// event names: set_gain, get_gain, notify_gain, get_gain_failed,
// get_database_gain).
func OnGain(b *Bus, name string, h GainHandler) Token { return b.on(name, h) }

// EmitGain synchronously invokes every GainHandler subscribed under
// name, in registration order.
func EmitGain(b *Bus, name string, payload GainNotification) {
	for _, h := range b.handlersFor(name) {
		h.(GainHandler)(payload)
	}
}

func OnMute(b *Bus, name string, h MuteHandler) Token { return b.on(name, h) }

func EmitMute(b *Bus, name string, payload MuteNotification) {
	for _, h := range b.handlersFor(name) {
		h.(MuteHandler)(payload)
	}
}

func OnMixer(b *Bus, name string, h MixerHandler) Token { return b.on(name, h) }

func EmitMixer(b *Bus, name string, payload MixerNotification) {
	for _, h := range b.handlersFor(name) {
		h.(MixerHandler)(payload)
	}
}

func OnFilter(b *Bus, name string, h FilterHandler) Token { return b.on(name, h) }

func EmitFilter(b *Bus, name string, payload FilterNotification) {
	for _, h := range b.handlersFor(name) {
		h.(FilterHandler)(payload)
	}
}

func OnMeter(b *Bus, name string, h MeterHandler) Token { return b.on(name, h) }

func EmitMeter(b *Bus, name string, payload MeterNotification) {
	for _, h := range b.handlersFor(name) {
		h.(MeterHandler)(payload)
	}
}
