// Package audio plays the CHIP-8 buzzer.
//
// The buzzer is a square wave that is gated on while the sound timer runs.
// Tone generates the samples, Beeper feeds them to the audio device.
package audio

import (
	"encoding/binary"
	"sync/atomic"
)

// Tone defaults.
const (
	DefaultSampleRate = 44100
	DefaultFrequency  = 440
	DefaultAmplitude  = 0x1800
)

// Tone is an endless mono signed 16 bit little endian square wave. While
// the gate is closed it produces silence.
type Tone struct {
	halfPeriod int
	amplitude  int16
	position   int
	gate       atomic.Bool
}

// NewTone returns a gated square wave of the given frequency.
func NewTone(sampleRate, frequency int, amplitude int16) *Tone {
	halfPeriod := sampleRate / (2 * frequency)
	if halfPeriod < 1 {
		halfPeriod = 1
	}
	return &Tone{
		halfPeriod: halfPeriod,
		amplitude:  amplitude,
	}
}

// SetGate opens or closes the gate. It is safe to call concurrently with Read.
func (t *Tone) SetGate(open bool) {
	t.gate.Store(open)
}

// Gate reports whether the tone is audible.
func (t *Tone) Gate() bool {
	return t.gate.Load()
}

// Read fills p with whole samples and never fails.
func (t *Tone) Read(p []byte) (int, error) {
	n := len(p) &^ 1
	open := t.gate.Load()

	for i := 0; i < n; i += 2 {
		var sample int16
		if open {
			sample = t.amplitude
			if (t.position/t.halfPeriod)%2 == 1 {
				sample = -t.amplitude
			}
			t.position = (t.position + 1) % (2 * t.halfPeriod)
		}
		binary.LittleEndian.PutUint16(p[i:], uint16(sample))
	}
	return n, nil
}
