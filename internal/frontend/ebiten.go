package frontend

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrochip8/internal/scheduler"
	"github.com/retroenv/retrogolib/log"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

var overlayColor = color.RGBA{R: 0xFF, G: 0x40, B: 0x40, A: 0xFF}

// ebitenKeys maps key names as used in keymaps to ebiten keys.
var ebitenKeys = map[string]ebiten.Key{
	"0": ebiten.KeyDigit0, "1": ebiten.KeyDigit1, "2": ebiten.KeyDigit2, "3": ebiten.KeyDigit3,
	"4": ebiten.KeyDigit4, "5": ebiten.KeyDigit5, "6": ebiten.KeyDigit6, "7": ebiten.KeyDigit7,
	"8": ebiten.KeyDigit8, "9": ebiten.KeyDigit9,
	"a": ebiten.KeyA, "b": ebiten.KeyB, "c": ebiten.KeyC, "d": ebiten.KeyD, "e": ebiten.KeyE,
	"f": ebiten.KeyF, "g": ebiten.KeyG, "h": ebiten.KeyH, "i": ebiten.KeyI, "j": ebiten.KeyJ,
	"k": ebiten.KeyK, "l": ebiten.KeyL, "m": ebiten.KeyM, "n": ebiten.KeyN, "o": ebiten.KeyO,
	"p": ebiten.KeyP, "q": ebiten.KeyQ, "r": ebiten.KeyR, "s": ebiten.KeyS, "t": ebiten.KeyT,
	"u": ebiten.KeyU, "v": ebiten.KeyV, "w": ebiten.KeyW, "x": ebiten.KeyX, "y": ebiten.KeyY,
	"z": ebiten.KeyZ,
	"up": ebiten.KeyArrowUp, "down": ebiten.KeyArrowDown,
	"left": ebiten.KeyArrowLeft, "right": ebiten.KeyArrowRight,
	"return": ebiten.KeyEnter, "tab": ebiten.KeyTab, "backspace": ebiten.KeyBackspace,
}

type ebitenFrontend struct {
	logger *log.Logger
	opts   Options
	keys   map[ebiten.Key]uint8
}

func newEbiten(logger *log.Logger, opts Options) (Frontend, error) {
	keys := make(map[ebiten.Key]uint8, len(opts.Keymap))
	for name, value := range opts.Keymap {
		key, ok := ebitenKeys[name]
		if !ok {
			logger.Warn("Key not supported by window frontend", log.String("key", name))
			continue
		}
		keys[key] = value
	}

	return &ebitenFrontend{
		logger: logger,
		opts:   opts,
		keys:   keys,
	}, nil
}

// Run opens the window. It must be called from the main goroutine.
func (f *ebitenFrontend) Run(ctx context.Context, link *Link) error {
	ebiten.SetWindowSize(display.Width*f.opts.Scale, display.Height*f.opts.Scale)
	ebiten.SetWindowTitle(f.opts.Title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetWindowClosingHandled(true)

	g := &game{
		ctx:    ctx,
		logger: f.logger,
		link:   link,
		keys:   f.keys,
		pixels: make([]byte, display.Width*display.Height*4),
	}
	FramePixels(g.frame, g.pixels)

	defer link.Close()
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// game implements ebiten.Game.
type game struct {
	ctx    context.Context
	logger *log.Logger
	link   *Link
	keys   map[ebiten.Key]uint8

	frame  display.Frame
	image  *ebiten.Image
	pixels []byte

	clipboardOnce sync.Once
	clipboardOK   bool
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.link.Quit()
		return ebiten.Termination
	}
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.link.Command(scheduler.TogglePause)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.link.Command(scheduler.Reset)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		g.copyFrame()
	}

	for key, value := range g.keys {
		if inpututil.IsKeyJustPressed(key) {
			g.link.Key(value, input.Pressed)
		}
		if inpututil.IsKeyJustReleased(key) {
			g.link.Key(value, input.Released)
		}
	}

	if frame, ok := g.link.Poll(); ok {
		g.frame = frame
		FramePixels(frame, g.pixels)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.image == nil {
		g.image = ebiten.NewImage(display.Width, display.Height)
	}
	g.image.WritePixels(g.pixels)
	screen.DrawImage(g.image, nil)

	if label := statusLabel(g.link.Status()); label != "" {
		text.Draw(screen, label, basicfont.Face7x13, 11, 20, overlayColor)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return display.Width, display.Height
}

// copyFrame puts a text rendering of the screen on the clipboard.
func (g *game) copyFrame() {
	g.clipboardOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			g.logger.Warn("Clipboard not available", log.Err(err))
			return
		}
		g.clipboardOK = true
	})
	if !g.clipboardOK {
		return
	}

	clipboard.Write(clipboard.FmtText, []byte(FrameText(g.frame)))
	g.logger.Info("Copied screen to clipboard")
}
