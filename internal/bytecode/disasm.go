package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a Chunk as a readable listing, used by debug
// builds and by tests that assert on emitted instruction shape.
func Disassemble(name string, chunk *Chunk) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	for ip := 0; ip < len(chunk.Code); {
		ip = disassembleInstruction(&sb, chunk, ip)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, chunk *Chunk, ip int) int {
	op := OpCode(chunk.Code[ip])
	line := chunk.LineAt(ip)
	fmt.Fprintf(sb, "%4d %-18s", line, op.String())
	switch op {
	case OpConstant, OpGetGlobal, OpSetGlobal, OpDefineGlobal, OpDefineGlobalConst,
		OpClass, OpMethod, OpGetProperty, OpSetProperty:
		idx := chunk.ReadUint16(ip + 1)
		fmt.Fprintf(sb, " %d", idx)
		if int(idx) < len(chunk.Constants) {
			fmt.Fprintf(sb, " ; %v", chunk.Constants[idx])
		}
		sb.WriteByte('\n')
		return ip + 3
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpLoop:
		off := chunk.ReadUint16(ip + 1)
		sb.WriteString(fmt.Sprintf(" %d\n", off))
		return ip + 3
	case OpMakeClosure:
		idx := chunk.ReadUint16(ip + 1)
		fmt.Fprintf(sb, " %d\n", idx)
		next := ip + 3
		if int(idx) < len(chunk.Constants) {
			if fn, ok := chunk.Constants[idx].(*Function); ok {
				for i := 0; i < fn.UpvalueCount; i++ {
					next += 2
				}
			}
		}
		return next
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall, OpNew,
		OpBuildList, OpBuildObject:
		operand := chunk.Code[ip+1]
		fmt.Fprintf(sb, " %d\n", operand)
		return ip + 2
	default:
		sb.WriteByte('\n')
		return ip + 1
	}
}
