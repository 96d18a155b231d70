// Package processor assembles one device, the per-channel effect
// chains, the mixer, and the two meters into the steady-state audio
// loop (spec §4.10). Adapted from the teacher's internal/audio/player
// (the component that owned a decoder, an output stream, and drove
// the read/process/write cycle) generalized from a single playback
// stream to a full-duplex capture/process/playback pipeline.
package processor

import (
	"sync/atomic"

	"github.com/l-bnp/audioproc/internal/device"
	"github.com/l-bnp/audioproc/internal/dsp"
	"github.com/l-bnp/audioproc/internal/eventbus"
	"github.com/l-bnp/audioproc/internal/logger"
)

// Config fixes the channel counts and frame batch size the processor
// is constructed with; these come from the CLI's required flags.
type Config struct {
	Inputs     int
	Outputs    int
	SampleRate int
	// FramesPerRead sizes one read/process/write batch (spec §4.10's
	// "F frames"). Device.Read returns at most the frame count the
	// device was opened with, so a batch is the smaller of the two.
	FramesPerRead int
}

// Processor owns the full per-sample signal path and the device it
// reads from and writes to.
type Processor struct {
	cfg Config
	dev *device.Device

	inputMeter  *dsp.Meter
	outputMeter *dsp.Meter

	inputEQ    []*dsp.Equalizer
	inputGain  []*dsp.Gain
	inputMute  []*dsp.Mute
	outputEQ   []*dsp.Equalizer
	outputGain []*dsp.Gain
	outputMute []*dsp.Mute

	mixer *dsp.Mixer

	stopped atomic.Bool

	// Per-loop scratch buffers, allocated once in New so steady-state
	// processing never allocates (spec §5's "no dynamic allocation").
	readBuf    []int16 // F * Inputs
	writeBuf   []int16 // F * Outputs
	inFrame    []int16 // Inputs
	outFrame   []int16 // Outputs
}

// New constructs every effect vector and the mixer, wires each effect
// to the bus for its own (side, index), and hydrates every effect from
// the parameter store before returning.
func New(cfg Config, dev *device.Device, bus *eventbus.Bus) *Processor {
	p := &Processor{
		cfg:         cfg,
		dev:         dev,
		inputMeter:  dsp.NewMeter(dsp.SideInput, cfg.Inputs, cfg.SampleRate),
		outputMeter: dsp.NewMeter(dsp.SideOutput, cfg.Outputs, cfg.SampleRate),
		mixer:       dsp.NewMixer(cfg.Inputs, cfg.Outputs),
		readBuf:     make([]int16, cfg.FramesPerRead*cfg.Inputs),
		writeBuf:    make([]int16, cfg.FramesPerRead*cfg.Outputs),
		inFrame:     make([]int16, cfg.Inputs),
		outFrame:    make([]int16, cfg.Outputs),
	}

	p.inputEQ = make([]*dsp.Equalizer, cfg.Inputs)
	p.inputGain = make([]*dsp.Gain, cfg.Inputs)
	p.inputMute = make([]*dsp.Mute, cfg.Inputs)
	for i := 0; i < cfg.Inputs; i++ {
		addr := dsp.Address{Side: dsp.SideInput, Index: i + 1}
		p.inputEQ[i] = dsp.NewEqualizer(addr, cfg.SampleRate)
		p.inputGain[i] = dsp.NewGain(addr)
		p.inputMute[i] = dsp.NewMute(addr)
	}

	p.outputEQ = make([]*dsp.Equalizer, cfg.Outputs)
	p.outputGain = make([]*dsp.Gain, cfg.Outputs)
	p.outputMute = make([]*dsp.Mute, cfg.Outputs)
	for o := 0; o < cfg.Outputs; o++ {
		addr := dsp.Address{Side: dsp.SideOutput, Index: o + 1}
		p.outputEQ[o] = dsp.NewEqualizer(addr, cfg.SampleRate)
		p.outputGain[o] = dsp.NewGain(addr)
		p.outputMute[o] = dsp.NewMute(addr)
	}

	wireGain(bus, append(p.inputGain, p.outputGain...))
	wireMute(bus, append(p.inputMute, p.outputMute...))
	wireEqualizer(bus, append(p.inputEQ, p.outputEQ...))
	wireMixer(bus, p.mixer)
	wireMeter(bus, p.inputMeter, p.outputMeter)

	return p
}

// Stop requests the processing loop exit at the top of its next
// iteration. In-flight device I/O is allowed to complete naturally
// (spec §5's cancellation contract).
func (p *Processor) Stop() {
	p.stopped.Store(true)
}

// Run drives the read/process/write cycle until Stop is called or a
// device error persists past recovery, then closes the device.
func (p *Processor) Run() error {
	defer p.dev.Close()

	for !p.stopped.Load() {
		n, err := p.dev.Read(p.readBuf)
		if err != nil {
			logger.ErrorLog("device read failed, stopping processor", logger.Error(err))
			return err
		}
		frames := n / p.cfg.Inputs

		for f := 0; f < frames; f++ {
			p.processFrame(f)
		}

		if _, err := p.dev.Write(p.writeBuf[:frames*p.cfg.Outputs]); err != nil {
			logger.ErrorLog("device write failed, stopping processor", logger.Error(err))
			return err
		}
	}
	return nil
}

// processFrame implements spec §4.10 step 1 for a single frame index
// within the current read batch.
func (p *Processor) processFrame(f int) {
	base := f * p.cfg.Inputs
	for i := 0; i < p.cfg.Inputs; i++ {
		p.inFrame[i] = p.readBuf[base+i]
	}

	p.inputMeter.Store(p.inFrame)

	for i := 0; i < p.cfg.Inputs; i++ {
		s := p.inFrame[i]
		s = p.inputEQ[i].Process(s)
		s = p.inputGain[i].Process(s)
		s = p.inputMute[i].Process(s)
		p.inFrame[i] = s
	}

	mixed := p.mixer.Process(p.inFrame)

	outBase := f * p.cfg.Outputs
	for o := 0; o < p.cfg.Outputs; o++ {
		s := mixed[o]
		s = p.outputEQ[o].Process(s)
		s = p.outputGain[o].Process(s)
		s = p.outputMute[o].Process(s)
		p.outFrame[o] = s
		p.writeBuf[outBase+o] = s
	}

	p.outputMeter.Store(p.outFrame)
}
