package bytecode

import (
	"fmt"
	"strings"
)

// Disassembler renders a Chunk as a human-readable instruction listing,
// grounded on the teacher's internal/bytecode/disasm.go output shape:
// address, opcode mnemonic, operands, and the constant pool rendered
// separately.
type Disassembler struct {
	chunk *Chunk
}

func NewDisassembler(chunk *Chunk) *Disassembler {
	return &Disassembler{chunk: chunk}
}

func (d *Disassembler) String() string {
	var sb strings.Builder
	for addr, in := range d.chunk.Code {
		sb.WriteString(d.instructionLine(Address(addr), in))
		sb.WriteString("\n")
	}
	if len(d.chunk.Constants) > 0 {
		sb.WriteString("\nconstants:\n")
		for i, c := range d.chunk.Constants {
			sb.WriteString(fmt.Sprintf("  [%d] %#v\n", i, c))
		}
	}
	return sb.String()
}

func (d *Disassembler) instructionLine(addr Address, in Instruction) string {
	switch in.Op {
	case OpJump:
		return fmt.Sprintf("%04d  %-18s -> %04d", addr, in.Op, in.A)
	case OpJumpIfFalse, OpJumpIfTrue:
		return fmt.Sprintf("%04d  %-18s r%d -> %04d", addr, in.Op, in.B, in.A)
	case OpReturn:
		if in.A < 0 {
			return fmt.Sprintf("%04d  %-18s (no value)", addr, in.Op)
		}
		return fmt.Sprintf("%04d  %-18s r%d", addr, in.Op, in.A)
	case OpLoadConst, OpStoreConst:
		return fmt.Sprintf("%04d  %-18s r%d, const[%d]", addr, in.Op, in.A, in.B)
	case OpCall:
		return fmt.Sprintf("%04d  %-18s r%d <- r%d(argc=%d)", addr, in.Op, in.A, in.B, in.C)
	case OpBuildFunction:
		return fmt.Sprintf("%04d  %-18s const[%d], code=[%d,%d)", addr, in.Op, in.A, in.B, in.C)
	case OpBuildClass:
		return fmt.Sprintf("%04d  %-18s const[%d], parents=%d, body=%d", addr, in.Op, in.A, in.B, in.C)
	default:
		return fmt.Sprintf("%04d  %-18s r%d, r%d, r%d", addr, in.Op, in.A, in.B, in.C)
	}
}
