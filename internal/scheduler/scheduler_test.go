package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type harness struct {
	input    chan input.Event
	quit     chan struct{}
	commands chan Command
	frames   chan display.Frame
	sound    chan bool
	status   chan Status

	machine *cpu.CPU
	sched   *Scheduler
	clock   time.Time
}

func newHarness(t *testing.T, cfg Config, words ...uint16) *harness {
	t.Helper()
	return newHarnessWithLogger(t, log.NewTestLogger(t), cfg, words...)
}

// newHarnessWithLogger is used by tests that expect error records, which
// fail a test logger.
func newHarnessWithLogger(t *testing.T, logger *log.Logger, cfg Config, words ...uint16) *harness {
	t.Helper()

	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}

	h := &harness{
		input:    make(chan input.Event, 16),
		quit:     make(chan struct{}, 1),
		commands: make(chan Command, 4),
		frames:   make(chan display.Frame, 1),
		sound:    make(chan bool, 1),
		status:   make(chan Status, 1),
		machine:  cpu.New(),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	h.machine.LoadProgram(program)

	sched, err := New(logger, h.machine, h.endpoints(), cfg)
	assert.NoError(t, err)
	sched.now = func() time.Time { return h.clock }
	sched.last = h.clock
	h.sched = sched
	return h
}

func (h *harness) endpoints() Endpoints {
	return Endpoints{
		Input:    h.input,
		Quit:     h.quit,
		Commands: h.commands,
		Frames:   h.frames,
		Sound:    h.sound,
		Status:   h.status,
	}
}

func (h *harness) tick(n int) {
	for range n {
		h.clock = h.clock.Add(h.sched.period)
		h.sched.tick(context.Background(), h.clock)
	}
}

func TestNewMissingEndpoint(t *testing.T) {
	h := newHarness(t, Config{})

	tests := []struct {
		name  string
		strip func(ep *Endpoints)
	}{
		{"input", func(ep *Endpoints) { ep.Input = nil }},
		{"quit", func(ep *Endpoints) { ep.Quit = nil }},
		{"commands", func(ep *Endpoints) { ep.Commands = nil }},
		{"frames", func(ep *Endpoints) { ep.Frames = nil }},
		{"sound", func(ep *Endpoints) { ep.Sound = nil }},
		{"status", func(ep *Endpoints) { ep.Status = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := h.endpoints()
			tt.strip(&ep)
			sched, err := New(log.NewTestLogger(t), h.machine, ep, Config{})
			assert.True(t, sched == nil)
			assert.True(t, errors.Is(err, ErrMissingEndpoint))
			assert.ErrorContains(t, err, tt.name)
		})
	}
}

func TestClockRate(t *testing.T) {
	h := newHarness(t, Config{})
	assert.Equal(t, time.Second/DefaultClockRate, h.sched.period)

	h = newHarness(t, Config{ClockRate: 1000})
	assert.Equal(t, time.Millisecond, h.sched.period)
}

func TestExecutesOneInstructionPerTick(t *testing.T) {
	h := newHarness(t, Config{Trace: true}, 0x6001, 0x6102, 0x6203)

	h.tick(1)
	assert.Equal(t, uint16(0x202), h.machine.State().PC)
	h.tick(2)
	state := h.machine.State()
	assert.Equal(t, uint16(0x206), state.PC)
	assert.Equal(t, uint8(3), state.V[2])
	assert.Equal(t, Running, h.sched.State())
}

func TestErrorPausesExecution(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithConfig(log.Config{
		Level:      log.DebugLevel,
		Output:     &buf,
		TimeFormat: "-",
	})
	h := newHarnessWithLogger(t, logger, Config{}, 0x6001, 0x00EE)

	h.tick(2)
	assert.Equal(t, Paused, h.sched.State())
	assert.Equal(t, uint16(0x202), h.machine.State().PC)

	report := buf.String()
	assert.Contains(t, report, "Execution paused")
	assert.Contains(t, report, "return with empty stack")
	assert.Contains(t, report, `"pc":"0x0202"`)
	assert.Contains(t, report, `"instruction":"RET"`)

	h.tick(5)
	assert.Equal(t, Paused, h.sched.State())
	assert.Equal(t, uint16(0x202), h.machine.State().PC)

	h.commands <- TogglePause
	h.tick(1)
	assert.Equal(t, Paused, h.sched.State())

	h.commands <- Reset
	h.tick(1)
	assert.Equal(t, Running, h.sched.State())
	assert.Equal(t, uint16(0x202), h.machine.State().PC)
	assert.Equal(t, uint8(1), h.machine.State().V[0])
}

func TestTogglePause(t *testing.T) {
	h := newHarness(t, Config{}, 0x7001, 0x1200)

	h.tick(1)
	assert.Equal(t, uint8(1), h.machine.State().V[0])

	h.commands <- TogglePause
	h.tick(4)
	assert.Equal(t, Paused, h.sched.State())
	assert.Equal(t, uint16(0x202), h.machine.State().PC)

	h.commands <- TogglePause
	h.tick(2)
	assert.Equal(t, Running, h.sched.State())
	assert.Equal(t, uint8(2), h.machine.State().V[0])
}

func TestWaitForKey(t *testing.T) {
	h := newHarness(t, Config{}, 0xF50A, 0x6101)

	h.tick(1)
	assert.Equal(t, Blocked, h.sched.State())

	h.tick(3)
	assert.Equal(t, uint16(0x202), h.machine.State().PC)

	h.input <- input.Event{Key: 0x9, Status: input.Released}
	h.tick(1)
	assert.Equal(t, Blocked, h.sched.State())

	h.input <- input.Event{Key: 0x9, Status: input.Pressed}
	h.tick(1)
	assert.Equal(t, Running, h.sched.State())
	state := h.machine.State()
	assert.Equal(t, uint8(0x9), state.V[5])
	assert.Equal(t, uint8(1), state.V[1])
	assert.True(t, h.machine.Keypad().IsPressed(0x9))
}

func TestInputUpdatesKeypad(t *testing.T) {
	h := newHarness(t, Config{}, 0x1200)

	h.input <- input.Event{Key: 0x1, Status: input.Pressed}
	h.input <- input.Event{Key: 0x2, Status: input.Pressed}
	h.input <- input.Event{Key: 0x1, Status: input.Released}
	h.tick(1)

	keypad := h.machine.Keypad()
	assert.False(t, keypad.IsPressed(0x1))
	assert.True(t, keypad.IsPressed(0x2))
	assert.Equal(t, 0, len(h.input))
}

func TestTimersFollowElapsedTime(t *testing.T) {
	h := newHarness(t, Config{}, 0x6020, 0xF015, 0x1204)

	h.tick(2)
	assert.Equal(t, uint8(0x20), h.machine.State().Delay)

	h.clock = h.clock.Add(3 * cpu.TimerPeriod)
	h.sched.tick(context.Background(), h.clock)
	assert.Equal(t, uint8(0x20-3), h.machine.State().Delay)
}

func TestTimersHoldWhileBlocked(t *testing.T) {
	h := newHarness(t, Config{}, 0x6020, 0xF015, 0xF00A)

	h.tick(3)
	assert.Equal(t, Blocked, h.sched.State())
	delay := h.machine.State().Delay

	h.clock = h.clock.Add(10 * cpu.TimerPeriod)
	h.sched.tick(context.Background(), h.clock)
	assert.Equal(t, delay, h.machine.State().Delay)
}

func TestFramePublishing(t *testing.T) {
	h := newHarness(t, Config{}, 0xA050, 0xD005, 0x1204)

	h.tick(1)
	frame := <-h.frames
	assert.Equal(t, display.Frame{}, frame)

	h.tick(1)
	frame = <-h.frames
	assert.Equal(t, byte(0xF0), frame[0])

	h.tick(3)
	assert.Equal(t, 0, len(h.frames))
}

func TestFrameRetriedWhenChannelFull(t *testing.T) {
	h := newHarness(t, Config{}, 0xA050, 0xD005, 0x1204)

	h.frames <- display.Frame{}
	h.tick(2)
	assert.True(t, h.machine.Display().Dirty())

	<-h.frames
	h.tick(1)
	frame := <-h.frames
	assert.Equal(t, byte(0xF0), frame[0])
	assert.False(t, h.machine.Display().Dirty())
}

func TestSoundMessages(t *testing.T) {
	h := newHarness(t, Config{}, 0x6002, 0xF018, 0x1204)

	h.tick(2)
	assert.True(t, <-h.sound)

	h.clock = h.clock.Add(2 * cpu.TimerPeriod)
	h.sched.tick(context.Background(), h.clock)
	assert.False(t, <-h.sound)
}

func TestStatusMessages(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithConfig(log.Config{Output: &buf, TimeFormat: "-"})
	h := newHarnessWithLogger(t, logger, Config{}, 0x6001, 0x00EE)

	h.commands <- TogglePause
	h.tick(1)
	assert.Equal(t, Status{State: Paused}, <-h.status)

	h.commands <- TogglePause
	h.tick(1)
	assert.Equal(t, Status{State: Running}, <-h.status)

	h.tick(1)
	assert.Equal(t, Status{State: Paused, Fault: true}, <-h.status)

	h.commands <- TogglePause
	h.tick(1)
	assert.Equal(t, 0, len(h.status))

	h.commands <- Reset
	h.tick(1)
	assert.Equal(t, Status{State: Running}, <-h.status)
}

func TestQuitTerminates(t *testing.T) {
	h := newHarness(t, Config{}, 0x1200)

	h.quit <- struct{}{}
	h.tick(1)
	assert.Equal(t, Terminated, h.sched.State())
}

func TestRunStopsOnQuit(t *testing.T) {
	h := newHarness(t, Config{}, 0x7001, 0x1200)

	var sleeps []time.Duration
	h.sched.sleep = func(_ context.Context, d time.Duration) {
		sleeps = append(sleeps, d)
		if len(sleeps) == 3 {
			h.quit <- struct{}{}
		}
	}

	err := h.sched.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, Terminated, h.sched.State())
	assert.Len(t, sleeps, 3)
	assert.Equal(t, h.sched.period, sleeps[0])
	assert.Equal(t, uint8(2), h.machine.State().V[0])
}

func TestRunSkipsSleepOnOverrun(t *testing.T) {
	h := newHarness(t, Config{}, 0x1200)

	calls := 0
	h.sched.now = func() time.Time {
		calls++
		if calls == 7 {
			h.quit <- struct{}{}
		}
		h.clock = h.clock.Add(h.sched.period * 2)
		return h.clock
	}
	slept := false
	h.sched.sleep = func(context.Context, time.Duration) { slept = true }

	assert.NoError(t, h.sched.Run(context.Background()))
	assert.False(t, slept)
}

func TestRunCanceled(t *testing.T) {
	h := newHarness(t, Config{}, 0x1200)

	ctx, cancel := context.WithCancel(context.Background())
	h.sched.sleep = func(context.Context, time.Duration) { cancel() }

	err := h.sched.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, Terminated, h.sched.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "blocked", Blocked.String())
	assert.Equal(t, "unknown", State(42).String())
}
