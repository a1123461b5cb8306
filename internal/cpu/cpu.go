// Package cpu implements the CHIP-8 instruction engine.
//
// The engine owns memory, registers, the call stack and both timers, and
// delegates screen and keypad side effects to a display.Framebuffer and an
// input.Keypad it owns. It is not safe for concurrent use.
package cpu

import (
	"math/rand"
	"time"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/input"
)

// Memory layout.
const (
	MemorySize     = 4096
	ProgramStart   = 0x200
	MaxProgramSize = MemorySize - ProgramStart
	StackDepth     = 16
	RegisterCount  = 16
)

// TimerPeriod is the interval after which the delay and sound timers decrement.
const TimerPeriod = time.Second / 60

// State is a copy of the register file.
type State struct {
	PC    uint16
	I     uint16
	SP    int
	V     [RegisterCount]uint8
	Stack [StackDepth]uint16
	Delay uint8
	Sound uint8
}

// Option configures a CPU.
type Option func(*CPU)

// WithRand sets the random source used by the RND instruction.
func WithRand(rng *rand.Rand) Option {
	return func(c *CPU) {
		c.rng = rng
	}
}

// CPU is the CHIP-8 instruction engine.
type CPU struct {
	memory [MemorySize]byte
	v      [RegisterCount]uint8
	stack  [StackDepth]uint16
	sp     int
	i      uint16
	pc     uint16

	delay      uint8
	sound      uint8
	timerCarry time.Duration

	blocking bool
	pending  uint8

	program []byte
	rng     *rand.Rand

	display *display.Framebuffer
	keypad  *input.Keypad
}

// New returns an engine with the font loaded and pc at the program start.
func New(opts ...Option) *CPU {
	c := &CPU{
		display: display.New(),
		keypad:  &input.Keypad{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c.reset()
	return c
}

// LoadProgram copies the program into memory at ProgramStart. Data beyond
// MaxProgramSize is dropped. It returns the number of bytes loaded.
// The image is kept so that Reset can restore it.
func (c *CPU) LoadProgram(program []byte) int {
	if len(program) > MaxProgramSize {
		program = program[:MaxProgramSize]
	}
	c.program = append(c.program[:0], program...)
	copy(c.memory[ProgramStart:], c.program)
	return len(program)
}

// Reset reinitializes the machine and reloads the last loaded program.
func (c *CPU) Reset() {
	c.reset()
	copy(c.memory[ProgramStart:], c.program)
}

func (c *CPU) reset() {
	c.memory = [MemorySize]byte{}
	copy(c.memory[FontAddress:], font[:])
	c.v = [RegisterCount]uint8{}
	c.stack = [StackDepth]uint16{}
	c.sp = 0
	c.i = 0
	c.pc = ProgramStart
	c.delay = 0
	c.sound = 0
	c.timerCarry = 0
	c.blocking = false
	c.pending = 0
	c.display.Clear()
	c.keypad.Reset()
}

// TimerTick credits elapsed wall clock time to the timers. Every full
// TimerPeriod decrements each non-zero timer by one, the remainder carries
// over to the next call.
func (c *CPU) TimerTick(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	c.timerCarry += elapsed
	ticks := c.timerCarry / TimerPeriod
	c.timerCarry %= TimerPeriod
	if ticks == 0 {
		return
	}
	c.delay = countdown(c.delay, ticks)
	c.sound = countdown(c.sound, ticks)
}

func countdown(value uint8, ticks time.Duration) uint8 {
	if time.Duration(value) <= ticks {
		return 0
	}
	return value - uint8(ticks)
}

// Unblock completes a pending wait for key instruction by storing the key in
// the waiting register.
func (c *CPU) Unblock(key uint8) error {
	if !c.blocking {
		return ErrNotBlocking
	}
	c.v[c.pending] = key
	c.blocking = false
	c.pending = 0
	return nil
}

// Blocking reports whether the machine waits for a key press.
func (c *CPU) Blocking() bool {
	return c.blocking
}

// SoundActive reports whether the sound timer is running.
func (c *CPU) SoundActive() bool {
	return c.sound > 0
}

// State returns a copy of the registers.
func (c *CPU) State() State {
	return State{
		PC:    c.pc,
		I:     c.i,
		SP:    c.sp,
		V:     c.v,
		Stack: c.stack,
		Delay: c.delay,
		Sound: c.sound,
	}
}

// Display returns the framebuffer driven by the draw instructions.
func (c *CPU) Display() *display.Framebuffer {
	return c.display
}

// Keypad returns the keypad queried by the key instructions.
func (c *CPU) Keypad() *input.Keypad {
	return c.keypad
}

// Memory returns a copy of size bytes of memory starting at address,
// truncated at the end of memory.
func (c *CPU) Memory(address uint16, size int) []byte {
	if int(address) >= MemorySize || size <= 0 {
		return nil
	}
	end := min(int(address)+size, MemorySize)
	data := make([]byte, end-int(address))
	copy(data, c.memory[address:end])
	return data
}

// Opcode returns the instruction word at pc without executing it.
func (c *CPU) Opcode() (uint16, error) {
	if !validPC(int(c.pc)) {
		return 0, ErrMemoryOutOfBounds
	}
	return uint16(c.memory[c.pc])<<8 | uint16(c.memory[c.pc+1]), nil
}

func validPC(pc int) bool {
	return pc&1 == 0 && pc+1 < MemorySize
}
