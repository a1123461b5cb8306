package frontend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrochip8/internal/scheduler"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// Terminals report key presses only. A key counts as held until no repeat
// arrived for keyHoldTime.
const (
	keyHoldTime     = 100 * time.Millisecond
	terminalRefresh = time.Second / 60
)

var errNoTerminal = errors.New("standard output is not a terminal")

type terminalFrontend struct {
	logger *log.Logger
	opts   Options
}

func newTerminal(logger *log.Logger, opts Options) (Frontend, error) {
	return &terminalFrontend{
		logger: logger,
		opts:   opts,
	}, nil
}

// Run draws the screen with half block characters, two machine rows per
// terminal line.
func (f *terminalFrontend) Run(ctx context.Context, link *Link) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer termbox.Close()
	defer link.Close()

	events := make(chan termbox.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			events <- ev
		}
	}()
	defer func() {
		termbox.Interrupt()
		for range events { //nolint:revive // drain until the poller exits
		}
	}()

	keys := newHeldKeys(f.opts.Keymap, keyHoldTime)
	ticker := time.NewTicker(terminalRefresh)
	defer ticker.Stop()

	paint(display.Frame{})
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if ev.Type == termbox.EventError {
				return fmt.Errorf("reading terminal events: %w", ev.Err)
			}
			if ev.Type != termbox.EventKey {
				continue
			}
			if quit := f.handleKey(ev, keys, link); quit {
				return nil
			}

		case now := <-ticker.C:
			for _, key := range keys.expire(now) {
				link.Key(key, input.Released)
			}
			if frame, ok := link.Poll(); ok {
				paint(frame)
			}
		}
	}
}

func (f *terminalFrontend) handleKey(ev termbox.Event, keys *heldKeys, link *Link) bool {
	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		link.Quit()
		return true
	case termbox.KeySpace:
		link.Command(scheduler.TogglePause)
		return false
	case termbox.KeyF5:
		link.Command(scheduler.Reset)
		return false
	}

	if ev.Ch == 0 {
		return false
	}
	key, pressed, ok := keys.press(string(ev.Ch), time.Now())
	if !ok {
		f.logger.Debug("Unmapped key", log.String("key", string(ev.Ch)))
		return false
	}
	if pressed {
		link.Key(key, input.Pressed)
	}
	return false
}

func paint(frame display.Frame) {
	fg := termbox.ColorWhite
	bg := termbox.ColorBlack
	for y := 0; y < display.Height; y += 2 {
		for x := range display.Width {
			top, bottom := bg, bg
			if frame.Pixel(x, y) {
				top = fg
			}
			if frame.Pixel(x, y+1) {
				bottom = fg
			}
			termbox.SetCell(x, y/2, '▀', top, bottom)
		}
	}
	_ = termbox.Flush()
}
