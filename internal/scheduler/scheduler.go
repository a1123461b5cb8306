// Package scheduler runs the instruction engine at a fixed rate.
//
// The scheduler owns the engine and exchanges messages with the frontend
// over channels only: key events, quit and control commands come in,
// frames, sound and execution status go out. All receives and sends are non-blocking,
// the loop itself only blocks in the sleep that holds the tick rate.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrogolib/log"
)

// DefaultClockRate is the number of instructions executed per second.
const DefaultClockRate = 600

// ErrMissingEndpoint is returned by New when a channel endpoint is nil.
var ErrMissingEndpoint = errors.New("missing channel endpoint")

// State of the execution state machine.
type State uint8

// Scheduler states.
const (
	Running State = iota
	Paused
	Blocked
	Terminated
)

var stateNames = map[State]string{
	Running:    "running",
	Paused:     "paused",
	Blocked:    "blocked",
	Terminated: "terminated",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Status is the execution state published to the frontend. Fault is set
// while the machine is paused by an execution error.
type Status struct {
	State State
	Fault bool
}

// Command is an operator request sent by the frontend.
type Command uint8

// Operator commands.
const (
	// TogglePause pauses a running machine or resumes one paused by the
	// operator. It does not resume a machine paused by an execution error.
	TogglePause Command = iota
	// Reset reinitializes the machine with the loaded program and resumes
	// execution from any state but Terminated.
	Reset
)

// Endpoints are the scheduler side ends of the frontend channels.
type Endpoints struct {
	Input    <-chan input.Event
	Quit     <-chan struct{}
	Commands <-chan Command
	Frames   chan<- display.Frame
	Sound    chan<- bool
	Status   chan<- Status
}

func (e Endpoints) validate() error {
	switch {
	case e.Input == nil:
		return errors.Join(ErrMissingEndpoint, errors.New("input"))
	case e.Quit == nil:
		return errors.Join(ErrMissingEndpoint, errors.New("quit"))
	case e.Commands == nil:
		return errors.Join(ErrMissingEndpoint, errors.New("commands"))
	case e.Frames == nil:
		return errors.Join(ErrMissingEndpoint, errors.New("frames"))
	case e.Sound == nil:
		return errors.Join(ErrMissingEndpoint, errors.New("sound"))
	case e.Status == nil:
		return errors.Join(ErrMissingEndpoint, errors.New("status"))
	}
	return nil
}

// Config controls the scheduler timing and diagnostics.
type Config struct {
	ClockRate int  // instructions per second, DefaultClockRate if 0
	Trace     bool // log every executed instruction at trace level
}

// Scheduler drives a cpu.CPU from its own goroutine.
type Scheduler struct {
	logger  *log.Logger
	machine *cpu.CPU
	ep      Endpoints
	period  time.Duration
	trace   bool

	state       State
	errorPaused bool
	sound       bool
	published   Status
	last        time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// New returns a scheduler for the machine. All endpoints must be set.
func New(logger *log.Logger, machine *cpu.CPU, ep Endpoints, cfg Config) (*Scheduler, error) {
	if err := ep.validate(); err != nil {
		return nil, err
	}
	rate := cfg.ClockRate
	if rate <= 0 {
		rate = DefaultClockRate
	}

	return &Scheduler{
		logger:  logger,
		machine: machine,
		ep:      ep,
		period:  time.Second / time.Duration(rate),
		trace:   cfg.Trace,
		state:   Running,
		now:     time.Now,
		sleep:   sleepContext,
	}, nil
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.state
}

// Run executes ticks until a quit message arrives or the context is
// canceled. A quit returns nil, a cancellation the context error.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting execution", log.Int("clock_rate", int(time.Second/s.period)))
	s.last = s.now()

	for {
		start := s.now()
		s.tick(ctx, start)
		if s.state == Terminated {
			s.logger.Info("Execution stopped")
			return ctx.Err()
		}

		if spent := s.now().Sub(start); spent < s.period {
			s.sleep(ctx, s.period-spent)
		}
	}
}

// tick performs one iteration of the loop at time now.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.drainInput()

	select {
	case <-s.ep.Quit:
		s.state = Terminated
		return
	case <-ctx.Done():
		s.state = Terminated
		return
	default:
	}

	s.drainCommands()

	elapsed := now.Sub(s.last)
	s.last = now
	if s.state == Running {
		s.machine.TimerTick(elapsed)
		s.execute()
	}

	s.publish()
}

func (s *Scheduler) drainInput() {
	for {
		select {
		case ev := <-s.ep.Input:
			s.handleInput(ev)
		default:
			return
		}
	}
}

func (s *Scheduler) handleInput(ev input.Event) {
	s.machine.Keypad().Update(ev.Key, ev.Status)

	if s.state != Blocked || ev.Status != input.Pressed || ev.Key >= input.KeyCount {
		return
	}
	if err := s.machine.Unblock(ev.Key); err != nil {
		s.logger.Warn("Unblocking machine failed", log.Err(err))
		return
	}
	s.state = Running
}

func (s *Scheduler) drainCommands() {
	for {
		select {
		case cmd := <-s.ep.Commands:
			s.handleCommand(cmd)
		default:
			return
		}
	}
}

func (s *Scheduler) handleCommand(cmd Command) {
	switch cmd {
	case TogglePause:
		switch {
		case s.state == Running:
			s.state = Paused
			s.logger.Info("Execution paused")
		case s.state == Paused && !s.errorPaused:
			s.state = Running
			s.logger.Info("Execution resumed")
		}

	case Reset:
		s.machine.Reset()
		s.state = Running
		s.errorPaused = false
		s.logger.Info("Machine reset")

	default:
		s.logger.Warn("Ignoring unknown command", log.Uint8("command", uint8(cmd)))
	}
}

func (s *Scheduler) execute() {
	if s.trace {
		s.traceInstruction()
	}

	if err := s.machine.Step(); err != nil {
		s.state = Paused
		s.errorPaused = true
		s.reportError(err)
		return
	}

	if s.machine.Blocking() {
		s.state = Blocked
	}
}

func (s *Scheduler) publish() {
	fb := s.machine.Display()
	if fb.Dirty() {
		select {
		case s.ep.Frames <- fb.Snapshot():
			fb.MarkClean()
		default:
		}
	}

	sound := s.state == Running && s.machine.SoundActive()
	if sound != s.sound {
		select {
		case s.ep.Sound <- sound:
			s.sound = sound
		default:
		}
	}

	status := Status{State: s.state, Fault: s.errorPaused}
	if status != s.published {
		select {
		case s.ep.Status <- status:
			s.published = status
		default:
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
