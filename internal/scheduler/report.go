package scheduler

import (
	"errors"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrogolib/log"
)

func (s *Scheduler) reportError(err error) {
	state := s.machine.State()

	var execErr *cpu.ExecError
	if !errors.As(err, &execErr) {
		s.logger.Error("Execution paused", log.Err(err), log.Hex("pc", state.PC))
		return
	}

	text, ok := disasm.Mnemonic(execErr.Opcode)
	if !ok {
		text = "unknown"
	}
	s.logger.Error("Execution paused",
		log.Err(execErr.Err),
		log.Hex("pc", execErr.PC),
		log.Hex("opcode", execErr.Opcode),
		log.String("instruction", text),
		log.Hex("i", state.I),
		log.Int("sp", state.SP))
}

func (s *Scheduler) traceInstruction() {
	state := s.machine.State()
	opcode, err := s.machine.Opcode()
	if err != nil {
		return
	}

	text, ok := disasm.Mnemonic(opcode)
	if !ok {
		text = "unknown"
	}
	s.logger.Trace("Executing",
		log.Hex("pc", state.PC),
		log.Hex("opcode", opcode),
		log.String("instruction", text),
		log.Hex("i", state.I))
}
