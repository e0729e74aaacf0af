// Package jit implements the method-granular JIT spec.md §4.6 specifies:
// given a Function, produce either nil or a native entry point of type
// func(args []float64) float64 over the restricted opcode subset
// {CONSTANT, GET_LOCAL, SET_LOCAL, ADD, SUB, MUL, POP, RETURN}, numeric
// values only, refusing on any other opcode.
//
// Emitting real architecture-specific machine code is explicitly out of
// scope (spec.md §1) — the teacher's own internal/jit targets a
// register-based bytecode with asmjit-backed x86/arm64 codegen, neither
// of which carries over to this module's stack-based instruction set.
// The "native pointer" the contract describes is realised here as a
// specialised Go closure tree: each compiled opcode becomes a closure
// over its operand closures, so evaluating the outermost closure against
// a packed []float64 argument slice reproduces exactly what bytecode
// dispatch would have computed, without a bytecode loop in between. The
// closures, once built, live as long as the owning Function and need no
// separate code buffer — ordinary Go heap values already satisfy the
// contract's "runtime code buffer whose lifetime exceeds any compiled
// function pointer" requirement.
package jit

import (
	"nimbus/internal/bytecode"
	"nimbus/internal/object"
)

// numFn is one node of the compiled closure tree: given the function's
// packed numeric arguments (args[i] holds local slot i+1; slot 0 is the
// receiver slot), it produces a value. Nodes never write to args:
// SET_LOCAL rebinds the slot's node on the simulated stack, so every
// later GET_LOCAL of that slot yields the assigned value.
type numFn func(args []float64) float64

// Compile attempts to JIT-compile fn's chunk. It returns nil whenever
// the chunk contains any opcode outside the restricted numeric subset,
// a non-numeric constant, a GET_LOCAL/SET_LOCAL of the receiver slot or
// of a slot not yet on the simulated frame, or a RETURN with no value
// above the parameter slots — internal/vm keeps dispatching such
// functions through ordinary bytecode.
func Compile(fn *object.Function) object.JitEntry {
	code := fn.Chunk.Code
	// The simulated stack mirrors the call frame: slot 0 is the receiver
	// slot, slots 1..arity read the packed arguments, and each value a
	// local declaration leaves behind becomes the next local slot.
	stack := []numFn{nil}
	for i := 0; i < fn.Arity; i++ {
		i := i
		stack = append(stack, func(args []float64) float64 { return args[i] })
	}
	base := len(stack)
	ip := 0

	pop := func() (numFn, bool) {
		if len(stack) <= base {
			return nil, false
		}
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]
		return f, true
	}

	for ip < len(code) {
		op := bytecode.OpCode(code[ip])
		ip++

		switch op {
		case bytecode.OpConstant:
			if ip+2 > len(code) {
				return nil
			}
			idx := fn.Chunk.ReadUint16(ip)
			ip += 2
			v, ok := fn.Chunk.Constants[idx].(float64)
			if !ok {
				return nil
			}
			stack = append(stack, func(args []float64) float64 { return v })

		case bytecode.OpGetLocal:
			if ip+1 > len(code) {
				return nil
			}
			slot := int(code[ip])
			ip++
			if slot == 0 || slot >= len(stack) {
				return nil
			}
			stack = append(stack, stack[slot])

		case bytecode.OpSetLocal:
			if ip+1 > len(code) {
				return nil
			}
			slot := int(code[ip])
			ip++
			if slot == 0 || slot >= len(stack) || len(stack) <= base {
				return nil
			}
			stack[slot] = stack[len(stack)-1]

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul:
			b, ok1 := pop()
			a, ok2 := pop()
			if !ok1 || !ok2 {
				return nil
			}
			stack = append(stack, binaryNode(op, a, b))

		case bytecode.OpPop:
			if _, ok := pop(); !ok {
				return nil
			}

		case bytecode.OpReturn:
			if len(stack) <= base {
				return nil
			}
			result := stack[len(stack)-1]
			return func(args []float64) float64 { return result(args) }

		default:
			return nil
		}
	}
	return nil
}

func binaryNode(op bytecode.OpCode, a, b numFn) numFn {
	switch op {
	case bytecode.OpAdd:
		return func(args []float64) float64 { return a(args) + b(args) }
	case bytecode.OpSub:
		return func(args []float64) float64 { return a(args) - b(args) }
	default:
		return func(args []float64) float64 { return a(args) * b(args) }
	}
}
