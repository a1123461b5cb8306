// Package frontend connects the scheduler to a user interface.
//
// A frontend runs on the main goroutine, turns physical key presses into
// logical key events and renders the frames the scheduler publishes. It
// talks to the scheduler only through a Link.
package frontend

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrogolib/log"
)

// Names of the available frontends.
const (
	Ebiten   = "ebiten"
	SDL      = "sdl"
	Terminal = "terminal"
	Headless = "headless"
)

// Frontend is a user interface for the machine.
type Frontend interface {
	// Run blocks until the user quits or the context is canceled.
	Run(ctx context.Context, link *Link) error
}

// Options configures a frontend.
type Options struct {
	Keymap   config.Keymap
	Scale    int           // window pixels per machine pixel
	Title    string        // window title
	Duration time.Duration // headless run time, 0 runs until canceled
	Output   io.Writer     // headless final frame output
}

type constructor func(logger *log.Logger, opts Options) (Frontend, error)

var constructors = map[string]constructor{
	Ebiten:   newEbiten,
	Terminal: newTerminal,
	Headless: newHeadless,
}

// New returns the frontend with the given name.
func New(name string, logger *log.Logger, opts Options) (Frontend, error) {
	if opts.Keymap == nil {
		opts.Keymap = config.DefaultKeymap()
	}
	if opts.Scale <= 0 {
		opts.Scale = 10
	}

	create, ok := constructors[strings.ToLower(name)]
	if !ok {
		if strings.EqualFold(name, SDL) {
			return nil, fmt.Errorf("frontend %s is not included in this build, rebuild with -tags sdl", SDL)
		}
		return nil, fmt.Errorf("unsupported frontend: %s. Valid options: %s", name, strings.Join(Names(), ", "))
	}
	return create(logger, opts)
}

// Names returns the frontends included in the build.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
