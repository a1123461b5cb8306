package cpu

import "fmt"

// Op identifies a decoded instruction.
type Op uint8

// Decoded instruction kinds.
const (
	OpCls Op = iota
	OpRet
	OpJp
	OpCall
	OpSeByte
	OpSneByte
	OpSeReg
	OpSneReg
	OpLdByte
	OpAddByte
	OpLdReg
	OpOr
	OpAnd
	OpXor
	OpAddReg
	OpSub
	OpShr
	OpSubn
	OpShl
	OpLdI
	OpJpV0
	OpRnd
	OpDrw
	OpSkp
	OpSknp
	OpLdVxDT
	OpLdKey
	OpLdDTVx
	OpLdSTVx
	OpAddI
	OpLdFont
	OpBCD
	OpStore
	OpLoad
)

var opNames = [...]string{
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP addr",
	OpCall:    "CALL addr",
	OpSeByte:  "SE Vx, byte",
	OpSneByte: "SNE Vx, byte",
	OpSeReg:   "SE Vx, Vy",
	OpSneReg:  "SNE Vx, Vy",
	OpLdByte:  "LD Vx, byte",
	OpAddByte: "ADD Vx, byte",
	OpLdReg:   "LD Vx, Vy",
	OpOr:      "OR Vx, Vy",
	OpAnd:     "AND Vx, Vy",
	OpXor:     "XOR Vx, Vy",
	OpAddReg:  "ADD Vx, Vy",
	OpSub:     "SUB Vx, Vy",
	OpShr:     "SHR Vx",
	OpSubn:    "SUBN Vx, Vy",
	OpShl:     "SHL Vx",
	OpLdI:     "LD I, addr",
	OpJpV0:    "JP V0, addr",
	OpRnd:     "RND Vx, byte",
	OpDrw:     "DRW Vx, Vy, nibble",
	OpSkp:     "SKP Vx",
	OpSknp:    "SKNP Vx",
	OpLdVxDT:  "LD Vx, DT",
	OpLdKey:   "LD Vx, K",
	OpLdDTVx:  "LD DT, Vx",
	OpLdSTVx:  "LD ST, Vx",
	OpAddI:    "ADD I, Vx",
	OpLdFont:  "LD F, Vx",
	OpBCD:     "LD B, Vx",
	OpStore:   "LD [I], Vx",
	OpLoad:    "LD Vx, [I]",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Instruction is a decoded opcode with its operand fields extracted.
type Instruction struct {
	Op  Op
	Raw uint16
	X   uint8  // register index from bits 8-11
	Y   uint8  // register index from bits 4-7
	N   uint8  // low nibble
	KK  uint8  // low byte
	NNN uint16 // low 12 bits
}

var aluOps = [16]struct {
	op    Op
	valid bool
}{
	0x0: {OpLdReg, true},
	0x1: {OpOr, true},
	0x2: {OpAnd, true},
	0x3: {OpXor, true},
	0x4: {OpAddReg, true},
	0x5: {OpSub, true},
	0x6: {OpShr, true},
	0x7: {OpSubn, true},
	0xE: {OpShl, true},
}

var miscOps = map[uint8]Op{
	0x07: OpLdVxDT,
	0x0A: OpLdKey,
	0x15: OpLdDTVx,
	0x18: OpLdSTVx,
	0x1E: OpAddI,
	0x29: OpLdFont,
	0x33: OpBCD,
	0x55: OpStore,
	0x65: OpLoad,
}

// Decode splits the opcode into its fields and identifies the instruction.
// Opcodes that match no instruction return ErrUnknownOpcode.
func Decode(raw uint16) (Instruction, error) {
	inst := Instruction{
		Raw: raw,
		X:   uint8(raw >> 8 & 0xF),
		Y:   uint8(raw >> 4 & 0xF),
		N:   uint8(raw & 0xF),
		KK:  uint8(raw & 0xFF),
		NNN: raw & 0xFFF,
	}

	var ok bool
	inst.Op, ok = decodeOp(inst)
	if !ok {
		return inst, fmt.Errorf("%w: %04X", ErrUnknownOpcode, raw)
	}
	return inst, nil
}

func decodeOp(inst Instruction) (Op, bool) {
	switch inst.Raw >> 12 {
	case 0x0:
		switch inst.Raw {
		case 0x00E0:
			return OpCls, true
		case 0x00EE:
			return OpRet, true
		}
	case 0x1:
		return OpJp, true
	case 0x2:
		return OpCall, true
	case 0x3:
		return OpSeByte, true
	case 0x4:
		return OpSneByte, true
	case 0x5:
		return OpSeReg, inst.N == 0
	case 0x6:
		return OpLdByte, true
	case 0x7:
		return OpAddByte, true
	case 0x8:
		alu := aluOps[inst.N]
		return alu.op, alu.valid
	case 0x9:
		return OpSneReg, inst.N == 0
	case 0xA:
		return OpLdI, true
	case 0xB:
		return OpJpV0, true
	case 0xC:
		return OpRnd, true
	case 0xD:
		return OpDrw, true
	case 0xE:
		switch inst.KK {
		case 0x9E:
			return OpSkp, true
		case 0xA1:
			return OpSknp, true
		}
	case 0xF:
		op, ok := miscOps[inst.KK]
		return op, ok
	}
	return 0, false
}
