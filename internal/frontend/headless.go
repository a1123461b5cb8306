package frontend

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrogolib/log"
)

const headlessPoll = time.Second / 60

type headlessFrontend struct {
	logger   *log.Logger
	duration time.Duration
	output   io.Writer
}

func newHeadless(logger *log.Logger, opts Options) (Frontend, error) {
	return &headlessFrontend{
		logger:   logger,
		duration: opts.Duration,
		output:   opts.Output,
	}, nil
}

// Run collects frames without displaying them. When the run time is over
// it stops the scheduler and writes the last frame as text to the output.
func (f *headlessFrontend) Run(ctx context.Context, link *Link) error {
	defer link.Close()

	if f.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.duration)
		defer cancel()
	}

	ticker := time.NewTicker(headlessPoll)
	defer ticker.Stop()

	var (
		frame  display.Frame
		frames int
	)
	for {
		select {
		case <-ctx.Done():
			link.Quit()
			if latest, ok := link.Poll(); ok {
				frame = latest
				frames++
			}
			f.logger.Info("Headless run finished", log.Int("frames", frames))
			return f.writeFrame(frame)

		case <-ticker.C:
			if latest, ok := link.Poll(); ok {
				frame = latest
				frames++
			}
		}
	}
}

func (f *headlessFrontend) writeFrame(frame display.Frame) error {
	if f.output == nil {
		return nil
	}
	if _, err := io.WriteString(f.output, FrameText(frame)); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
