package compiler

import "nimbus/internal/bytecode"

func (c *Compiler) debug() bytecode.DebugInfo {
	return bytecode.DebugInfo{Line: c.lastLine, File: c.file}
}

func (c *Compiler) emitByte(b byte) int {
	return c.cur.chunk().WriteByte(b, c.debug())
}

func (c *Compiler) emitOp(op bytecode.OpCode) int {
	return c.cur.chunk().WriteOp(op, c.debug())
}

func (c *Compiler) emitUint16(v uint16) int {
	return c.cur.chunk().WriteUint16(v, c.debug())
}

// addConstant interns nothing — every call gets its own pool slot,
// matching the teacher's single-pass compiler's lack of a dedup pass.
func (c *Compiler) addConstant(v interface{}) int {
	return c.cur.chunk().AddConstant(v)
}

// addStringConstant mints a heap-backed *object.String through the
// shared Heap, per the data model's "strings are created at compile
// time (constant pool)" lifecycle, and pools it as the constant value
// itself rather than a raw Go string.
func (c *Compiler) addStringConstant(s string) int {
	return c.addConstant(c.heap.NewString(s))
}

// emitConstant pushes a constant pool entry by value, adding it to the
// pool first.
func (c *Compiler) emitConstant(v interface{}) {
	idx := c.addConstant(v)
	c.emitOp(bytecode.OpConstant)
	c.emitUint16(uint16(idx))
}

// emitNameConstant is for opcodes keyed by a string constant index
// (globals, properties, methods) — always a pooled *object.String.
func (c *Compiler) emitNameConstant(op bytecode.OpCode, name string) {
	idx := c.addStringConstant(name)
	c.emitOp(op)
	c.emitUint16(uint16(idx))
}

// emitJump writes op followed by a placeholder 2-byte offset and
// returns the offset's position for patchJump to fill in later.
func (c *Compiler) emitJump(op bytecode.OpCode) int {
	c.emitOp(op)
	pos := c.emitUint16(0)
	return pos
}

// patchJump fills in the operand at pos with the forward distance from
// the end of that operand to the current end of the chunk, which the VM
// adds to ip after reading it.
func (c *Compiler) patchJump(pos int) {
	offset := len(c.cur.chunk().Code) - (pos + 2)
	c.cur.chunk().PatchUint16(pos, uint16(offset))
}

// emitLoop writes a LOOP back-jump to loopStart. LOOP's offset is
// consumed by the VM as a backward displacement from the instruction
// immediately following the 2-byte operand.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.OpLoop)
	offset := len(c.cur.chunk().Code) + 2 - loopStart
	c.emitUint16(uint16(offset))
}
