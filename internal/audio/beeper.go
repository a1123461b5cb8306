package audio

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays a Tone on the default audio device.
type Beeper struct {
	ctx    *oto.Context
	player *oto.Player
	tone   *Tone
}

// NewBeeper opens the audio device and starts playing a silent tone.
func NewBeeper() (*Beeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   DefaultSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	tone := NewTone(DefaultSampleRate, DefaultFrequency, DefaultAmplitude)
	player := ctx.NewPlayer(tone)
	player.Play()

	return &Beeper{
		ctx:    ctx,
		player: player,
		tone:   tone,
	}, nil
}

// SetActive switches the buzzer on or off.
func (b *Beeper) SetActive(active bool) {
	b.tone.SetGate(active)
}

// Close stops playback.
func (b *Beeper) Close() error {
	b.tone.SetGate(false)
	if err := b.player.Close(); err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}
