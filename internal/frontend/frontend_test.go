package frontend

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrochip8/internal/scheduler"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type fakeSpeaker struct {
	calls []bool
}

func (s *fakeSpeaker) SetActive(active bool) {
	s.calls = append(s.calls, active)
}

func TestNewUnknownFrontend(t *testing.T) {
	_, err := New("vga", log.NewTestLogger(t), Options{})
	assert.Error(t, err)
	assert.ErrorContains(t, err, "unsupported frontend: vga")
}

func TestNewHeadless(t *testing.T) {
	f, err := New("Headless", log.NewTestLogger(t), Options{})
	assert.NoError(t, err)
	assert.NotNil(t, f)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, strings.Join(names, ","), Headless)
	assert.Contains(t, strings.Join(names, ","), Terminal)
	assert.Contains(t, strings.Join(names, ","), Ebiten)
}

func TestLinkKeyEvents(t *testing.T) {
	link, ep := NewLink(log.NewTestLogger(t), nil)

	link.Key(0xA, input.Pressed)
	link.Key(0xA, input.Released)

	assert.Equal(t, input.Event{Key: 0xA, Status: input.Pressed}, <-ep.Input)
	assert.Equal(t, input.Event{Key: 0xA, Status: input.Released}, <-ep.Input)
}

func TestLinkDropsWhenFull(t *testing.T) {
	link, ep := NewLink(log.NewTestLogger(t), nil)

	for range inputBuffer + 5 {
		link.Key(1, input.Pressed)
	}
	assert.Equal(t, inputBuffer, len(ep.Input))

	for range commandBuffer + 1 {
		link.Command(scheduler.Reset)
	}
	assert.Equal(t, commandBuffer, len(ep.Commands))
}

func TestLinkQuitIsRepeatable(t *testing.T) {
	link, ep := NewLink(log.NewTestLogger(t), nil)
	link.Quit()
	link.Quit()
	assert.Equal(t, 1, len(ep.Quit))
}

func TestLinkPoll(t *testing.T) {
	speaker := &fakeSpeaker{}
	link, _ := NewLink(log.NewTestLogger(t), speaker)
	frames := make(chan display.Frame, 2)
	sound := make(chan bool, 2)
	link.frames = frames
	link.sound = sound

	_, ok := link.Poll()
	assert.False(t, ok)

	var first, second display.Frame
	first[0] = 0x80
	second[0] = 0x01
	frames <- first
	frames <- second
	sound <- true

	frame, ok := link.Poll()
	assert.True(t, ok)
	assert.Equal(t, second, frame)
	assert.True(t, link.Sounding())
	assert.Equal(t, []bool{true}, speaker.calls)

	link.Close()
	assert.False(t, link.Sounding())
	assert.Equal(t, []bool{true, false}, speaker.calls)
}

func TestLinkStatus(t *testing.T) {
	link, _ := NewLink(log.NewTestLogger(t), nil)
	status := make(chan scheduler.Status, 2)
	link.status = status

	assert.Equal(t, scheduler.Status{}, link.Status())

	status <- scheduler.Status{State: scheduler.Paused}
	status <- scheduler.Status{State: scheduler.Paused, Fault: true}
	_, ok := link.Poll()
	assert.False(t, ok)
	assert.Equal(t, scheduler.Status{State: scheduler.Paused, Fault: true}, link.Status())
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "", statusLabel(scheduler.Status{State: scheduler.Running}))
	assert.Equal(t, "", statusLabel(scheduler.Status{State: scheduler.Blocked}))
	assert.Equal(t, "PAUSED", statusLabel(scheduler.Status{State: scheduler.Paused}))
	assert.Equal(t, "HALTED", statusLabel(scheduler.Status{State: scheduler.Paused, Fault: true}))
}

func TestWindowTitle(t *testing.T) {
	assert.Equal(t, "chip8", windowTitle("chip8", scheduler.Status{}))
	assert.Equal(t, "chip8 [HALTED]", windowTitle("chip8", scheduler.Status{State: scheduler.Paused, Fault: true}))
}

func TestFrameText(t *testing.T) {
	var frame display.Frame
	frame[0] = 0xC0
	frame[display.RowBytes*display.Height-1] = 0x01

	lines := strings.Split(strings.TrimSuffix(FrameText(frame), "\n"), "\n")
	assert.Len(t, lines, display.Height)
	assert.Equal(t, "##"+strings.Repeat(".", display.Width-2), lines[0])
	assert.Equal(t, strings.Repeat(".", display.Width-1)+"#", lines[display.Height-1])
}

func TestFramePixels(t *testing.T) {
	var frame display.Frame
	frame[0] = 0x80

	pixels := make([]byte, display.Width*display.Height*4)
	FramePixels(frame, pixels)

	fg, bg := ForegroundColor, BackgroundColor
	assert.Equal(t, []byte{fg.R, fg.G, fg.B, fg.A}, pixels[0:4])
	assert.Equal(t, []byte{bg.R, bg.G, bg.B, bg.A}, pixels[4:8])
}

func TestHeldKeys(t *testing.T) {
	keys := newHeldKeys(config.DefaultKeymap(), 100*time.Millisecond)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	key, pressed, ok := keys.press("q", start)
	assert.True(t, ok)
	assert.True(t, pressed)
	assert.Equal(t, uint8(4), key)

	_, pressed, _ = keys.press("q", start.Add(50*time.Millisecond))
	assert.False(t, pressed)

	_, _, ok = keys.press("p", start)
	assert.False(t, ok)

	_, _, _ = keys.press("x", start)

	assert.Empty(t, keys.expire(start.Add(60*time.Millisecond)))
	assert.Equal(t, []uint8{0}, keys.expire(start.Add(100*time.Millisecond)))
	assert.Equal(t, []uint8{4}, keys.expire(start.Add(150*time.Millisecond)))
	assert.Empty(t, keys.expire(start.Add(time.Second)))
}

func TestHeadlessWritesLastFrame(t *testing.T) {
	var out bytes.Buffer
	f, err := New(Headless, log.NewTestLogger(t), Options{Output: &out})
	assert.NoError(t, err)

	link, ep := NewLink(log.NewTestLogger(t), nil)
	var frame display.Frame
	frame[0] = 0xFF
	ep.Frames <- frame

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, f.Run(ctx, link))
	assert.Equal(t, 1, len(ep.Quit))
	assert.True(t, strings.HasPrefix(out.String(), "########."))
}
