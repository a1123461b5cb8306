// Package pipeline wires the program loader, the machine, the scheduler and
// a frontend into a running emulation session.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/scheduler"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sync/errgroup"
)

// Pipeline orchestrates an emulation session.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
}

// New creates a new session pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(logger),
	}
}

// Execute loads the program given in the options and runs it with the
// frontend until the user quits or the context is canceled. The speaker
// is optional.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, ui frontend.Frontend, speaker frontend.Speaker) error {
	program, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	machine := cpu.New(cpu.WithRand(rand.New(rand.NewSource(seed))))
	machine.LoadProgram(program)

	cfg := scheduler.Config{
		ClockRate: opts.ClockRate,
		Trace:     opts.Trace,
	}
	return p.Run(ctx, machine, cfg, ui, speaker)
}

// Run starts the scheduler for the machine on its own goroutine and runs
// the frontend on the calling one. Whichever side stops first stops the
// other.
func (p *Pipeline) Run(ctx context.Context, machine *cpu.CPU, cfg scheduler.Config,
	ui frontend.Frontend, speaker frontend.Speaker) error {

	link, ep := frontend.NewLink(p.logger, speaker)
	sched, err := scheduler.New(p.logger, machine, ep, cfg)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return sched.Run(groupCtx)
	})

	uiErr := ui.Run(groupCtx, link)
	link.Quit()
	schedErr := group.Wait()

	if uiErr != nil {
		return fmt.Errorf("running frontend: %w", uiErr)
	}
	if schedErr != nil {
		return fmt.Errorf("running scheduler: %w", schedErr)
	}
	return nil
}

// Disassemble writes a listing of the program given in the options.
func (p *Pipeline) Disassemble(opts options.Program, w io.Writer) error {
	program, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	if err := disasm.Listing(w, program, cpu.ProgramStart); err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}
	return nil
}
