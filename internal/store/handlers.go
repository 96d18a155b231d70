package store

import (
	"github.com/l-bnp/audioproc/internal/dsp"
	"github.com/l-bnp/audioproc/internal/eventbus"
	"github.com/l-bnp/audioproc/internal/logger"
)

// subscribe wires Store's handlers to the four mutation events and the
// four hydration events (spec §4.7).
func (s *Store) subscribe(bus *eventbus.Bus) {
	eventbus.OnGain(bus, eventbus.EventSetGain, func(n eventbus.GainNotification) {
		s.handleSetGain(n)
	})
	eventbus.OnMute(bus, eventbus.EventSetMute, func(n eventbus.MuteNotification) {
		s.handleSetMute(n)
	})
	eventbus.OnMixer(bus, eventbus.EventSetMixer, func(n eventbus.MixerNotification) {
		s.handleSetMixer(n)
	})
	// set_filter's handler is also invoked by the control transport
	// path; the store MUST ignore any notion of a reply and MUST NOT
	// re-emit (spec §4.7, §9(a)).
	eventbus.OnFilter(bus, eventbus.EventSetFilter, func(n eventbus.FilterNotification) {
		s.handleSetFilter(n)
	})

	eventbus.OnGain(bus, eventbus.EventGetDatabaseGain, func(n eventbus.GainNotification) {
		s.handleHydrateGain(bus, n)
	})
	eventbus.OnMute(bus, eventbus.EventGetDatabaseMute, func(n eventbus.MuteNotification) {
		s.handleHydrateMute(bus, n)
	})
	eventbus.OnMixer(bus, eventbus.EventGetDatabaseMixer, func(n eventbus.MixerNotification) {
		s.handleHydrateMixer(bus, n)
	})
	eventbus.OnFilter(bus, eventbus.EventGetDatabaseFilter, func(n eventbus.FilterNotification) {
		s.handleHydrateFilter(bus, n)
	})
}

func (s *Store) handleSetGain(n eventbus.GainNotification) {
	err := s.upsert(Parameter{ParameterName: gainKey(n.Side, n.Index), ParameterDoubleValue: n.GainDB})
	if err != nil {
		logger.ErrorLog("persist gain failed", logger.Channel(dsp.Address{Side: n.Side, Index: n.Index}), logger.Error(err))
	}
}

func (s *Store) handleSetMute(n eventbus.MuteNotification) {
	intVal := int64(0)
	if n.Muted {
		intVal = 1
	}
	err := s.upsert(Parameter{ParameterName: muteKey(n.Side, n.Index), ParameterIntValue: intVal})
	if err != nil {
		logger.ErrorLog("persist mute failed", logger.Channel(dsp.Address{Side: n.Side, Index: n.Index}), logger.Error(err))
	}
}

func (s *Store) handleSetMixer(n eventbus.MixerNotification) {
	intVal := int64(0)
	if n.Routed {
		intVal = 1
	}
	err := s.upsert(Parameter{ParameterName: mixerKey(n.Input, n.Output), ParameterIntValue: intVal})
	if err != nil {
		logger.ErrorLog("persist mixer route failed", logger.String("key", mixerKey(n.Input, n.Output)), logger.Error(err))
	}
}

func (s *Store) handleSetFilter(n eventbus.FilterNotification) {
	enabledInt := int64(0)
	if n.Enabled {
		enabledInt = 1
	}
	rows := []Parameter{
		{ParameterName: filterAttrKey(n.Side, n.Index, n.FilterID, "enabled"), ParameterIntValue: enabledInt},
		{ParameterName: filterAttrKey(n.Side, n.Index, n.FilterID, "center_frequency"), ParameterDoubleValue: n.Params.CenterFrequency},
		{ParameterName: filterAttrKey(n.Side, n.Index, n.FilterID, "q_factor"), ParameterDoubleValue: n.Params.QFactor},
		{ParameterName: filterAttrKey(n.Side, n.Index, n.FilterID, "gain_db"), ParameterDoubleValue: n.Params.GainDB},
		{ParameterName: filterAttrKey(n.Side, n.Index, n.FilterID, "filter_type"), ParameterStrValue: string(n.Params.Type)},
	}
	for _, row := range rows {
		if err := s.upsert(row); err != nil {
			logger.ErrorLog("persist filter attribute failed", logger.Channel(dsp.Address{Side: n.Side, Index: n.Index}), logger.String("key", row.ParameterName), logger.Error(err))
		}
	}
}

func (s *Store) handleHydrateGain(bus *eventbus.Bus, n eventbus.GainNotification) {
	key := gainKey(n.Side, n.Index)
	row, ok, err := s.lookup(key)
	if err != nil {
		logger.ErrorLog("hydrate gain lookup failed", logger.Channel(dsp.Address{Side: n.Side, Index: n.Index}), logger.Error(err))
		ok = false
	}
	if !ok {
		eventbus.EmitGain(bus, eventbus.EventGetGainFailed, eventbus.GainNotification{Side: n.Side, Index: n.Index, GainDB: dsp.DefaultGainDB, Failed: true})
		return
	}
	eventbus.EmitGain(bus, eventbus.EventNotifyGain, eventbus.GainNotification{Side: n.Side, Index: n.Index, GainDB: row.ParameterDoubleValue})
}

func (s *Store) handleHydrateMute(bus *eventbus.Bus, n eventbus.MuteNotification) {
	key := muteKey(n.Side, n.Index)
	row, ok, err := s.lookup(key)
	if err != nil {
		logger.ErrorLog("hydrate mute lookup failed", logger.Channel(dsp.Address{Side: n.Side, Index: n.Index}), logger.Error(err))
		ok = false
	}
	if !ok {
		eventbus.EmitMute(bus, eventbus.EventGetMuteFailed, eventbus.MuteNotification{Side: n.Side, Index: n.Index, Muted: false, Failed: true})
		return
	}
	eventbus.EmitMute(bus, eventbus.EventNotifyMute, eventbus.MuteNotification{Side: n.Side, Index: n.Index, Muted: row.ParameterIntValue == 1})
}

func (s *Store) handleHydrateMixer(bus *eventbus.Bus, n eventbus.MixerNotification) {
	key := mixerKey(n.Input, n.Output)
	row, ok, err := s.lookup(key)
	if err != nil {
		logger.ErrorLog("hydrate mixer lookup failed", logger.String("key", key), logger.Error(err))
		ok = false
	}
	if !ok {
		eventbus.EmitMixer(bus, eventbus.EventGetMixerFailed, eventbus.MixerNotification{Input: n.Input, Output: n.Output, Routed: false, Failed: true})
		return
	}
	eventbus.EmitMixer(bus, eventbus.EventNotifyMixer, eventbus.MixerNotification{Input: n.Input, Output: n.Output, Routed: row.ParameterIntValue == 1})
}

// handleHydrateFilter looks up each of the five attribute rows. On a
// full hit it replies notify_filter; if any attribute is missing, it
// applies per-attribute defaults and still replies notify_filter, but
// with CommandType downgraded to get_filter_failed so the UI knows the
// value is synthetic (spec §4.7, §7(e)).
func (s *Store) handleHydrateFilter(bus *eventbus.Bus, n eventbus.FilterNotification) {
	defaults := dsp.DefaultFilterParams()

	params := defaults
	enabled := false
	anyMissing := false

	if row, ok, err := s.lookupLogged(filterAttrKey(n.Side, n.Index, n.FilterID, "enabled")); err != nil {
		anyMissing = true
	} else if ok {
		enabled = row.ParameterIntValue == 1
	} else {
		anyMissing = true
	}

	if row, ok, err := s.lookupLogged(filterAttrKey(n.Side, n.Index, n.FilterID, "center_frequency")); err == nil && ok {
		params.CenterFrequency = row.ParameterDoubleValue
	} else {
		anyMissing = true
	}
	if row, ok, err := s.lookupLogged(filterAttrKey(n.Side, n.Index, n.FilterID, "q_factor")); err == nil && ok {
		params.QFactor = row.ParameterDoubleValue
	} else {
		anyMissing = true
	}
	if row, ok, err := s.lookupLogged(filterAttrKey(n.Side, n.Index, n.FilterID, "gain_db")); err == nil && ok {
		params.GainDB = row.ParameterDoubleValue
	} else {
		anyMissing = true
	}
	if row, ok, err := s.lookupLogged(filterAttrKey(n.Side, n.Index, n.FilterID, "filter_type")); err == nil && ok {
		params.Type = dsp.FilterType(row.ParameterStrValue)
	} else {
		anyMissing = true
	}

	commandType := "notify_filter"
	if anyMissing {
		commandType = eventbus.EventGetFilterFailed
	}

	eventbus.EmitFilter(bus, eventbus.EventNotifyFilter, eventbus.FilterNotification{
		Side:        n.Side,
		Index:       n.Index,
		FilterID:    n.FilterID,
		Enabled:     enabled,
		Params:      params,
		CommandType: commandType,
	})
}

func (s *Store) lookupLogged(key string) (Parameter, bool, error) {
	row, ok, err := s.lookup(key)
	if err != nil {
		logger.ErrorLog("hydrate filter attribute lookup failed", logger.String("key", key), logger.Error(err))
		return Parameter{}, false, err
	}
	return row, ok, nil
}
