package audio

import (
	"encoding/binary"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func samples(t *testing.T, tone *Tone, count int) []int16 {
	t.Helper()
	buf := make([]byte, count*2)
	n, err := tone.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, count*2, n)

	result := make([]int16, count)
	for i := range result {
		result[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
	return result
}

func TestToneSilentWhenGateClosed(t *testing.T) {
	tone := NewTone(8, 1, 100)
	assert.False(t, tone.Gate())
	assert.Equal(t, []int16{0, 0, 0, 0}, samples(t, tone, 4))
}

func TestToneSquareWave(t *testing.T) {
	tone := NewTone(8, 1, 100)
	tone.SetGate(true)
	assert.True(t, tone.Gate())

	want := []int16{100, 100, 100, 100, -100, -100, -100, -100, 100, 100}
	assert.Equal(t, want, samples(t, tone, 10))
}

func TestToneKeepsPhaseAcrossReads(t *testing.T) {
	tone := NewTone(4, 1, 5)
	tone.SetGate(true)

	assert.Equal(t, []int16{5, 5, -5}, samples(t, tone, 3))
	assert.Equal(t, []int16{-5, 5}, samples(t, tone, 2))
}

func TestToneOddBuffer(t *testing.T) {
	tone := NewTone(DefaultSampleRate, DefaultFrequency, DefaultAmplitude)
	n, err := tone.Read(make([]byte, 5))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestToneHighFrequencyClamp(t *testing.T) {
	tone := NewTone(10, 100, 1)
	assert.Equal(t, 1, tone.halfPeriod)
}
