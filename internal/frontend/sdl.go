//go:build sdl

package frontend

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrochip8/internal/scheduler"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const sdlRefresh = time.Second / 60

// SDL must be driven from the main thread, which runs main.main while the
// main goroutine stays locked to it.
func init() {
	runtime.LockOSThread()
	constructors[SDL] = newSDL
}

type sdlFrontend struct {
	logger *log.Logger
	opts   Options
	keys   map[sdl.Keycode]uint8
}

// newSDL resolves the keymap names with the SDL key name table, so keymaps
// can use any name SDL knows, for example "Keypad 5" or "Left Shift".
func newSDL(logger *log.Logger, opts Options) (Frontend, error) {
	keys := make(map[sdl.Keycode]uint8, len(opts.Keymap))
	for name, value := range opts.Keymap {
		code := sdl.GetKeyFromName(name)
		if code == sdl.K_UNKNOWN {
			logger.Warn("Key not supported by SDL frontend", log.String("key", name))
			continue
		}
		keys[code] = value
	}

	return &sdlFrontend{
		logger: logger,
		opts:   opts,
		keys:   keys,
	}, nil
}

func (f *sdlFrontend) Run(ctx context.Context, link *Link) error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("initializing SDL: %w", err)
	}
	defer sdl.Quit()

	scale := int32(f.opts.Scale)
	window, err := sdl.CreateWindow(f.opts.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		display.Width*scale, display.Height*scale, sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer func() { _ = window.Destroy() }()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer func() { _ = renderer.Destroy() }()
	defer link.Close()

	ticker := time.NewTicker(sdlRefresh)
	defer ticker.Stop()

	if err := f.paint(renderer, display.Frame{}); err != nil {
		return err
	}
	var status scheduler.Status
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if quit := f.pollEvents(link); quit {
			return nil
		}
		if frame, ok := link.Poll(); ok {
			if err := f.paint(renderer, frame); err != nil {
				return err
			}
		}
		if current := link.Status(); current != status {
			status = current
			window.SetTitle(windowTitle(f.opts.Title, status))
		}
	}
}

func (f *sdlFrontend) pollEvents(link *Link) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.QuitEvent:
			link.Quit()
			return true

		case *sdl.KeyboardEvent:
			if t.Repeat != 0 {
				continue
			}
			pressed := t.Type == sdl.KEYDOWN

			switch t.Keysym.Sym {
			case sdl.K_ESCAPE:
				link.Quit()
				return true
			case sdl.K_SPACE:
				if pressed {
					link.Command(scheduler.TogglePause)
				}
				continue
			case sdl.K_F5:
				if pressed {
					link.Command(scheduler.Reset)
				}
				continue
			}

			key, ok := f.keys[t.Keysym.Sym]
			if !ok {
				continue
			}
			if pressed {
				link.Key(key, input.Pressed)
			} else {
				link.Key(key, input.Released)
			}
		}
	}
	return false
}

func (f *sdlFrontend) paint(renderer *sdl.Renderer, frame display.Frame) error {
	bg, fg := BackgroundColor, ForegroundColor
	if err := renderer.SetDrawColor(bg.R, bg.G, bg.B, bg.A); err != nil {
		return fmt.Errorf("setting draw color: %w", err)
	}
	if err := renderer.Clear(); err != nil {
		return fmt.Errorf("clearing renderer: %w", err)
	}
	if err := renderer.SetDrawColor(fg.R, fg.G, fg.B, fg.A); err != nil {
		return fmt.Errorf("setting draw color: %w", err)
	}

	scale := int32(f.opts.Scale)
	for y := range display.Height {
		for x := range display.Width {
			if !frame.Pixel(x, y) {
				continue
			}
			rect := sdl.Rect{X: int32(x) * scale, Y: int32(y) * scale, W: scale, H: scale}
			if err := renderer.FillRect(&rect); err != nil {
				return fmt.Errorf("drawing pixel: %w", err)
			}
		}
	}

	renderer.Present()
	return nil
}
