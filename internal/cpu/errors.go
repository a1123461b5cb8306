package cpu

import (
	"errors"
	"fmt"
)

// Errors returned by instruction execution.
var (
	ErrUnknownOpcode     = errors.New("unknown opcode")
	ErrEmptyStack        = errors.New("return with empty stack")
	ErrStackOverflow     = errors.New("stack nesting limit exceeded")
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
	ErrNotBlocking       = errors.New("machine is not waiting for a key")
)

// ExecError describes a failed instruction.
type ExecError struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("executing opcode %04X at $%03X: %v", e.Opcode, e.PC, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
