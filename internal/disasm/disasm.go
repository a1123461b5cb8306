// Package disasm renders CHIP-8 opcodes as assembly text.
// It is used for the program listing, the execution trace and the
// reports of failed instructions.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Lookup returns the instruction matching the opcode.
func Lookup(opcode uint16) (*chip8.Instruction, bool) {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode == op.Info.Value && op.Instruction != nil {
			return op.Instruction, true
		}
	}
	return nil, false
}

// Mnemonic returns the assembly text of the opcode, for example "JP $234".
// Opcodes that are not instructions return false.
func Mnemonic(opcode uint16) (string, bool) {
	ins, ok := Lookup(opcode)
	if !ok {
		return "", false
	}
	name := strings.ToUpper(ins.Name)
	if params := formatParams(ins.Name, opcode); params != "" {
		return fmt.Sprintf("%s %s", name, params), true
	}
	return name, true
}

// Listing writes one line per opcode of the program, addressed from base.
// Words that do not decode are written as data words.
func Listing(w io.Writer, program []byte, base uint16) error {
	for offset := 0; offset < len(program); offset += 2 {
		address := int(base) + offset

		if offset+1 >= len(program) {
			if _, err := fmt.Fprintf(w, "$%03X: %02X    .byte $%02X\n", address, program[offset], program[offset]); err != nil {
				return fmt.Errorf("writing listing: %w", err)
			}
			break
		}

		opcode := uint16(program[offset])<<8 | uint16(program[offset+1])
		text, ok := Mnemonic(opcode)
		if !ok {
			text = fmt.Sprintf(".word $%04X", opcode)
		}
		if _, err := fmt.Fprintf(w, "$%03X: %04X  %s\n", address, opcode, text); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
	}
	return nil
}
