package disasm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestMnemonic(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		want   string
	}{
		{"clear screen", 0x00E0, "CLS"},
		{"return", 0x00EE, "RET"},
		{"jump", 0x1234, "JP $234"},
		{"jump with offset", 0xB210, "JP V0, $210"},
		{"call", 0x2ABC, "CALL $ABC"},
		{"skip equal byte", 0x3A05, "SE VA, $05"},
		{"skip not equal register", 0x9120, "SNE V1, V2"},
		{"load byte", 0x6105, "LD V1, $05"},
		{"load index", 0xA2F0, "LD I, $2F0"},
		{"add byte", 0x7C01, "ADD VC, $01"},
		{"add register", 0x8014, "ADD V0, V1"},
		{"xor", 0x83D3, "XOR V3, VD"},
		{"random", 0xC30F, "RND V3, $0F"},
		{"draw", 0xD015, "DRW V0, V1, $5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Mnemonic(tt.opcode)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup(t *testing.T) {
	ins, ok := Lookup(0xF01E)
	assert.True(t, ok)
	assert.Equal(t, chip8.AddName, ins.Name)

	ins, ok = Lookup(0x8006)
	assert.True(t, ok)
	assert.Equal(t, chip8.ShrName, ins.Name)

	_, ok = Lookup(0x5001)
	assert.False(t, ok)
}

func TestMnemonicUnknown(t *testing.T) {
	_, ok := Mnemonic(0xFFFF)
	assert.False(t, ok)
}

func TestFormatLoadSpecial(t *testing.T) {
	assert.Equal(t, "V3, DT", formatLoadSpecial(3, 0x07))
	assert.Equal(t, "DT, V3", formatLoadSpecial(3, 0x15))
	assert.Equal(t, "[I], VE", formatLoadSpecial(0xE, 0x55))
	assert.Equal(t, "", formatLoadSpecial(0, 0x99))
}

func TestListing(t *testing.T) {
	program := []byte{0x00, 0xE0, 0xFF, 0xFF, 0x12}

	var buf bytes.Buffer
	assert.NoError(t, Listing(&buf, program, 0x200))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "$200: 00E0  CLS", lines[0])
	assert.Equal(t, "$202: FFFF  .word $FFFF", lines[1])
	assert.Equal(t, "$204: 12    .byte $12", lines[2])
}
