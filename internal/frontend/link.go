package frontend

import (
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrochip8/internal/scheduler"
	"github.com/retroenv/retrogolib/log"
)

// Channel buffer sizes.
const (
	inputBuffer   = 64
	commandBuffer = 8
)

// Speaker switches the buzzer.
type Speaker interface {
	SetActive(active bool)
}

// Link is the frontend side of the scheduler channels.
type Link struct {
	logger   *log.Logger
	input    chan<- input.Event
	quit     chan<- struct{}
	commands chan<- scheduler.Command
	frames   <-chan display.Frame
	sound    <-chan bool
	status   <-chan scheduler.Status
	speaker  Speaker

	sounding bool
	current  scheduler.Status
}

// NewLink creates the channels between a frontend and the scheduler and
// returns both ends. The speaker is optional.
func NewLink(logger *log.Logger, speaker Speaker) (*Link, scheduler.Endpoints) {
	inputs := make(chan input.Event, inputBuffer)
	quit := make(chan struct{}, 1)
	commands := make(chan scheduler.Command, commandBuffer)
	frames := make(chan display.Frame, 1)
	sound := make(chan bool, 1)
	status := make(chan scheduler.Status, 1)

	link := &Link{
		logger:   logger,
		input:    inputs,
		quit:     quit,
		commands: commands,
		frames:   frames,
		sound:    sound,
		status:   status,
		speaker:  speaker,
	}
	ep := scheduler.Endpoints{
		Input:    inputs,
		Quit:     quit,
		Commands: commands,
		Frames:   frames,
		Sound:    sound,
		Status:   status,
	}
	return link, ep
}

// Key sends a key transition. The event is dropped if the scheduler is
// not keeping up.
func (l *Link) Key(key uint8, status input.KeyStatus) {
	select {
	case l.input <- input.Event{Key: key, Status: status}:
	default:
		l.logger.Warn("Input queue full, dropping key event",
			log.Uint8("key", key), log.Stringer("status", status))
	}
}

// Command sends an operator command.
func (l *Link) Command(cmd scheduler.Command) {
	select {
	case l.commands <- cmd:
	default:
		l.logger.Warn("Command queue full, dropping command", log.Uint8("command", uint8(cmd)))
	}
}

// Quit asks the scheduler to stop. Repeated calls are harmless.
func (l *Link) Quit() {
	select {
	case l.quit <- struct{}{}:
	default:
	}
}

// Poll drains the scheduler output. It returns the newest frame if one
// arrived, forwards sound changes to the speaker and records the newest
// execution status.
func (l *Link) Poll() (display.Frame, bool) {
	var (
		frame    display.Frame
		received bool
	)

	for {
		select {
		case frame = <-l.frames:
			received = true
			continue
		case on := <-l.sound:
			l.setSound(on)
			continue
		case l.current = <-l.status:
			continue
		default:
		}
		return frame, received
	}
}

// Status returns the last execution status received by Poll.
func (l *Link) Status() scheduler.Status {
	return l.current
}

// Sounding reports whether the buzzer is on.
func (l *Link) Sounding() bool {
	return l.sounding
}

// Close switches off the buzzer.
func (l *Link) Close() {
	l.setSound(false)
}

func (l *Link) setSound(on bool) {
	l.sounding = on
	if l.speaker != nil {
		l.speaker.SetActive(on)
	}
}
