// Package options contains the program options.
package options

import "time"

// Parameters contains file path options.
type Parameters struct {
	Input  string `arg:"positional" usage:"CHIP-8 program file"`
	Keymap string `flag:"keymap" usage:"Lua keymap script" default:"keymap.lua"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend  string        `flag:"ui" usage:"user interface: ebiten, sdl, terminal, headless" default:"ebiten"`
	ClockRate int           `flag:"hz" usage:"instructions executed per second" default:"600"`
	Scale     int           `flag:"scale" usage:"window pixels per machine pixel" default:"10"`
	Seed      int64         `flag:"seed" usage:"random number seed, 0 seeds from the clock"`
	Duration  time.Duration `flag:"duration" usage:"headless run time, 0 runs until interrupted"`
	Disasm    bool          `flag:"disasm" usage:"print a listing of the program and exit"`
	Trace     bool          `flag:"trace" usage:"log every executed instruction"`
	Mute      bool          `flag:"mute" usage:"disable the buzzer"`
	Debug     bool          `flag:"debug" usage:"enable debug logging"`
	Quiet     bool          `flag:"q" usage:"quiet mode"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
}
