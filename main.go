// Package main implements the main entry point for a CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/pipeline"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Flags)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Flags)
	printBanner(logger, opts)
	p := pipeline.New(logger)

	if opts.Disasm {
		if err := p.Disassemble(opts, os.Stdout); err != nil {
			logger.Fatal(err.Error())
		}
		return
	}

	if err := run(ctx, logger, p, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation interrupted")
			return
		}
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, p *pipeline.Pipeline, opts options.Program) error {
	keymap, err := config.LoadKeymap(logger, opts.Keymap)
	if err != nil {
		return err
	}

	ui, err := frontend.New(opts.Frontend, logger, frontend.Options{
		Keymap:   keymap,
		Scale:    opts.Scale,
		Title:    "retrochip8",
		Duration: opts.Duration,
		Output:   os.Stdout,
	})
	if err != nil {
		return err
	}

	var speaker frontend.Speaker
	if !opts.Mute {
		beeper, err := audio.NewBeeper()
		if err != nil {
			logger.Warn("Audio not available, running without sound", log.Err(err))
		} else {
			defer func() { _ = beeper.Close() }()
			speaker = beeper
		}
	}

	return p.Execute(ctx, opts, ui, speaker)
}

func printBanner(logger *log.Logger, opts options.Program) {
	if opts.Quiet {
		return
	}
	logger.Info("retrochip8", log.String("version", buildinfo.Version(version, commit, date)))
}
