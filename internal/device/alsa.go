// Package device wraps an ALSA-class interleaved capture+playback pair
// using github.com/yobert/alsa, grounded on the original
// AlsaDevice class (capture_handle/playback_handle opened against the
// same named interface, RW_INTERLEAVED access, rate-near negotiation,
// one buffer/period sized to the frame count the processor asks for).
package device

import (
	"encoding/binary"
	"fmt"

	yalsa "github.com/yobert/alsa"

	"github.com/l-bnp/audioproc/internal/domain"
	"github.com/l-bnp/audioproc/internal/logger"
)

// Device owns one capture stream and one playback stream opened
// against the same named ALSA interface, matching the original's
// single AlsaDevice instance with two handles.
type Device struct {
	interfaceName  string
	inputChannels  int
	outputChannels int
	sampleRate     int
	frames         int

	capture  *yalsa.Device
	playback *yalsa.Device

	captureBuf  []byte
	playbackBuf []byte
}

// Open finds the named interface's capture- and playback-capable PCM
// devices, negotiates S16_LE at the requested rate and channel counts,
// and prepares both for interleaved I/O. frames sizes the buffer used
// per Read/Write call (and, via NegotiateBufferSize, the underlying
// ALSA buffer/period — the original's snd_pcm_hw_params_set_buffer_size_near).
func Open(interfaceName string, inputChannels, outputChannels, sampleRate, frames int) (*Device, error) {
	d := &Device{
		interfaceName:  interfaceName,
		inputChannels:  inputChannels,
		outputChannels: outputChannels,
		sampleRate:     sampleRate,
		frames:         frames,
	}

	capture, playback, err := findDevices(interfaceName)
	if err != nil {
		return nil, err
	}

	if err := negotiate(capture, inputChannels, sampleRate, frames); err != nil {
		return nil, fmt.Errorf("negotiate capture: %w", err)
	}
	if err := negotiate(playback, outputChannels, sampleRate, frames); err != nil {
		return nil, fmt.Errorf("negotiate playback: %w", err)
	}

	d.capture = capture
	d.playback = playback
	d.captureBuf = make([]byte, frames*inputChannels*2)
	d.playbackBuf = make([]byte, frames*outputChannels*2)

	logger.Info("audio device opened",
		logger.String("interface", interfaceName),
		logger.Int("inputs", inputChannels),
		logger.Int("outputs", outputChannels),
		logger.Int("sample_rate", sampleRate),
	)
	return d, nil
}

func findDevices(interfaceName string) (capture, playback *yalsa.Device, err error) {
	cards, err := yalsa.OpenCards()
	if err != nil {
		return nil, nil, fmt.Errorf("open cards: %w", err)
	}
	defer yalsa.CloseCards(cards)

	for _, card := range cards {
		devices, err := card.Devices()
		if err != nil {
			continue
		}
		for _, dev := range devices {
			if dev.Type != yalsa.PCM {
				continue
			}
			if dev.Title != interfaceName {
				continue
			}
			if dev.Record && capture == nil {
				capture = dev
			}
			if dev.Play && playback == nil {
				playback = dev
			}
		}
	}

	if capture == nil || playback == nil {
		return nil, nil, fmt.Errorf("%w: no capture/playback pair found for interface %q", domain.ErrDeviceRecoveryFailed, interfaceName)
	}
	return capture, playback, nil
}

func negotiate(dev *yalsa.Device, channels, rate, frames int) error {
	if err := dev.Open(); err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if _, err := dev.NegotiateChannels(channels); err != nil {
		return fmt.Errorf("negotiate channels: %w", err)
	}
	if _, err := dev.NegotiateRate(rate); err != nil {
		return fmt.Errorf("negotiate rate: %w", err)
	}
	if _, err := dev.NegotiateFormat(yalsa.S16_LE); err != nil {
		return fmt.Errorf("negotiate format: %w", err)
	}
	if _, err := dev.NegotiateBufferSize(frames, frames*2); err != nil {
		return fmt.Errorf("negotiate buffer size: %w", err)
	}
	if err := dev.Prepare(); err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	return nil
}

// Read fills frame-interleaved int16 samples (inputChannels per
// frame) from the capture stream, one-shot reopening and retrying on
// error — the Go-native equivalent of the original's single
// snd_pcm_recover retry, since yobert/alsa surfaces recoverable xruns
// as plain errors rather than a distinct recover call.
func (d *Device) Read(buf []int16) (int, error) {
	if err := d.capture.Read(d.captureBuf); err != nil {
		logger.Warn("capture read failed, attempting one-shot recovery", logger.Error(err))
		if rerr := d.recoverCapture(); rerr != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrDeviceRecoveryFailed, rerr)
		}
		if err := d.capture.Read(d.captureBuf); err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrDeviceRecoveryFailed, err)
		}
	}
	n := bytesToInt16(d.captureBuf, buf)
	return n, nil
}

// Write pushes frame-interleaved int16 samples (outputChannels per
// frame) to the playback stream, with the same one-shot recovery
// contract as Read.
func (d *Device) Write(buf []int16) (int, error) {
	n := int16ToBytes(buf, d.playbackBuf)
	if err := d.playback.Write(d.playbackBuf[:n]); err != nil {
		logger.Warn("playback write failed, attempting one-shot recovery", logger.Error(err))
		if rerr := d.recoverPlayback(); rerr != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrDeviceRecoveryFailed, rerr)
		}
		if err := d.playback.Write(d.playbackBuf[:n]); err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrDeviceRecoveryFailed, err)
		}
	}
	return len(buf), nil
}

func (d *Device) recoverCapture() error {
	d.capture.Close()
	capture, _, err := findDevices(d.interfaceName)
	if err != nil {
		return err
	}
	if err := negotiate(capture, d.inputChannels, d.sampleRate, d.frames); err != nil {
		return err
	}
	d.capture = capture
	return nil
}

func (d *Device) recoverPlayback() error {
	d.playback.Close()
	_, playback, err := findDevices(d.interfaceName)
	if err != nil {
		return err
	}
	if err := negotiate(playback, d.outputChannels, d.sampleRate, d.frames); err != nil {
		return err
	}
	d.playback = playback
	return nil
}

// Close closes the playback and capture handles. Playback frames still
// queued in the device are not drained first.
func (d *Device) Close() error {
	if d.playback != nil {
		d.playback.Close()
	}
	if d.capture != nil {
		d.capture.Close()
	}
	logger.Info("audio device closed", logger.String("interface", d.interfaceName))
	return nil
}

func bytesToInt16(src []byte, dst []int16) int {
	n := len(src) / 2
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2 : i*2+2]))
	}
	return n
}

func int16ToBytes(src []int16, dst []byte) int {
	n := len(src)
	if n*2 > len(dst) {
		n = len(dst) / 2
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:i*2+2], uint16(src[i]))
	}
	return n * 2
}
