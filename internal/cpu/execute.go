package cpu

import "github.com/retroenv/retrochip8/internal/display"

// Step fetches, decodes and executes the instruction at pc. A failing
// instruction returns an *ExecError and leaves the machine unchanged.
func (c *CPU) Step() error {
	pc := c.pc
	raw, err := c.Opcode()
	if err != nil {
		return &ExecError{PC: pc, Err: err}
	}

	inst, err := Decode(raw)
	if err != nil {
		return &ExecError{PC: pc, Opcode: raw, Err: ErrUnknownOpcode}
	}

	next, err := c.nextPC(inst)
	if err != nil {
		return &ExecError{PC: pc, Opcode: raw, Err: err}
	}
	if err := c.checkMemory(inst); err != nil {
		return &ExecError{PC: pc, Opcode: raw, Err: err}
	}

	c.apply(inst)
	c.pc = next
	return nil
}

// nextPC returns the pc following the instruction and validates the
// control flow, without changing any state.
func (c *CPU) nextPC(inst Instruction) (uint16, error) {
	next := int(c.pc) + 2

	switch inst.Op {
	case OpRet:
		if c.sp == 0 {
			return 0, ErrEmptyStack
		}
		next = int(c.stack[c.sp-1])
	case OpCall:
		if c.sp >= StackDepth {
			return 0, ErrStackOverflow
		}
		next = int(inst.NNN)
	case OpJp:
		next = int(inst.NNN)
	case OpJpV0:
		next = int(inst.NNN) + int(c.v[0])
	case OpSeByte:
		if c.v[inst.X] == inst.KK {
			next += 2
		}
	case OpSneByte:
		if c.v[inst.X] != inst.KK {
			next += 2
		}
	case OpSeReg:
		if c.v[inst.X] == c.v[inst.Y] {
			next += 2
		}
	case OpSneReg:
		if c.v[inst.X] != c.v[inst.Y] {
			next += 2
		}
	case OpSkp:
		if c.keypad.IsPressed(c.v[inst.X]) {
			next += 2
		}
	case OpSknp:
		if !c.keypad.IsPressed(c.v[inst.X]) {
			next += 2
		}
	}

	if !validPC(next) {
		return 0, ErrMemoryOutOfBounds
	}
	return uint16(next), nil
}

// checkMemory validates the memory range accessed through the index register.
// The index register itself never leaves memory.
func (c *CPU) checkMemory(inst Instruction) error {
	start := int(c.i)
	switch inst.Op {
	case OpAddI:
		if start+int(c.v[inst.X]) >= MemorySize {
			return ErrMemoryOutOfBounds
		}
		return nil
	case OpDrw:
		return checkRange(start, int(inst.N), false)
	case OpBCD:
		return checkRange(start, 3, true)
	case OpStore:
		return checkRange(start, int(inst.X)+1, true)
	case OpLoad:
		return checkRange(start, int(inst.X)+1, false)
	default:
		return nil
	}
}

func checkRange(start, size int, write bool) error {
	if start+size > MemorySize {
		return ErrMemoryOutOfBounds
	}
	if write && start < ProgramStart {
		return ErrMemoryOutOfBounds
	}
	return nil
}

// apply performs the effect of a validated instruction, except for the pc update.
func (c *CPU) apply(inst Instruction) {
	x, y := inst.X, inst.Y

	switch inst.Op {
	case OpCls:
		c.display.Clear()
	case OpRet:
		c.sp--
		c.stack[c.sp] = 0
	case OpCall:
		c.stack[c.sp] = c.pc + 2
		c.sp++
	case OpLdByte:
		c.v[x] = inst.KK
	case OpAddByte:
		c.v[x] += inst.KK
	case OpLdReg:
		c.v[x] = c.v[y]
	case OpOr:
		c.v[x] |= c.v[y]
	case OpAnd:
		c.v[x] &= c.v[y]
	case OpXor:
		c.v[x] ^= c.v[y]
	case OpAddReg:
		sum := uint16(c.v[x]) + uint16(c.v[y])
		c.setFlag(sum > 0xFF)
		c.v[x] = uint8(sum)
	case OpSub:
		vx, vy := c.v[x], c.v[y]
		c.setFlag(vx > vy)
		c.v[x] = vx - vy
	case OpShr:
		vx := c.v[x]
		c.setFlag(vx&0x01 != 0)
		c.v[x] = vx >> 1
	case OpSubn:
		vx, vy := c.v[x], c.v[y]
		c.setFlag(vy > vx)
		c.v[x] = vy - vx
	case OpShl:
		vx := c.v[x]
		c.setFlag(vx&0x80 != 0)
		c.v[x] = vx << 1
	case OpLdI:
		c.i = inst.NNN
	case OpRnd:
		c.v[x] = uint8(c.rng.Intn(256)) & inst.KK
	case OpDrw:
		sprite := c.memory[c.i : int(c.i)+int(inst.N)]
		collision := c.display.Draw(int(c.v[x])%display.Width, int(c.v[y])%display.Height, sprite)
		c.setFlag(collision)
	case OpLdVxDT:
		c.v[x] = c.delay
	case OpLdKey:
		c.blocking = true
		c.pending = x
	case OpLdDTVx:
		c.delay = c.v[x]
	case OpLdSTVx:
		c.sound = c.v[x]
	case OpAddI:
		c.i += uint16(c.v[x])
	case OpLdFont:
		c.i = FontAddress + uint16(c.v[x])*GlyphSize
	case OpBCD:
		value := c.v[x]
		c.memory[c.i] = value / 100
		c.memory[c.i+1] = value / 10 % 10
		c.memory[c.i+2] = value % 10
	case OpStore:
		copy(c.memory[c.i:], c.v[:x+1])
	case OpLoad:
		copy(c.v[:x+1], c.memory[c.i:])
	}
}

func (c *CPU) setFlag(set bool) {
	if set {
		c.v[0xF] = 1
	} else {
		c.v[0xF] = 0
	}
}
