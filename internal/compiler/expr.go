package compiler

import (
	"nimbus/internal/bytecode"
	"nimbus/internal/parser"
)

func (c *Compiler) compileExpr(e parser.Expr) {
	e.Accept(c)
}

func (c *Compiler) VisitLiteral(e *parser.Literal) interface{} {
	switch v := e.Value.(type) {
	case nil:
		c.emitOp(bytecode.OpNil)
	case bool:
		if v {
			c.emitOp(bytecode.OpTrue)
		} else {
			c.emitOp(bytecode.OpFalse)
		}
	case string:
		c.emitConstant(c.heap.NewString(v))
	default:
		c.emitConstant(v)
	}
	return nil
}

func (c *Compiler) VisitVariable(e *parser.Variable) interface{} {
	kind, idx, _ := c.resolveVariable(e.Name)
	c.emitVariableRead(kind, idx, e.Name)
	return nil
}

// emitVariableRead pushes a variable's current value per the three-tier
// resolution of resolveVariable: local and upvalue reads carry a slot
// index, globals carry the interned name.
func (c *Compiler) emitVariableRead(kind varKind, idx int, name string) {
	switch kind {
	case varLocal:
		c.emitOp(bytecode.OpGetLocal)
		c.emitByte(byte(idx))
	case varUpvalue:
		c.emitOp(bytecode.OpGetUpvalue)
		c.emitByte(byte(idx))
	default:
		c.emitNameConstant(bytecode.OpGetGlobal, name)
	}
}

func (c *Compiler) VisitThis(e *parser.This) interface{} {
	kind, idx, _ := c.resolveVariable("this")
	c.emitVariableRead(kind, idx, "this")
	return nil
}

func (c *Compiler) VisitAssign(e *parser.Assign) interface{} {
	switch target := e.Target.(type) {
	case *parser.Variable:
		kind, idx, isConst := c.resolveVariable(target.Name)
		if isConst {
			c.errorf(e.Line, "cannot assign to const %q", target.Name)
		}
		c.compileExpr(e.Value)
		switch kind {
		case varLocal:
			c.emitOp(bytecode.OpSetLocal)
			c.emitByte(byte(idx))
		case varUpvalue:
			c.emitOp(bytecode.OpSetUpvalue)
			c.emitByte(byte(idx))
		default:
			c.emitNameConstant(bytecode.OpSetGlobal, target.Name)
		}
	case *parser.Property:
		c.compileExpr(target.Object)
		c.compileExpr(e.Value)
		c.emitNameConstant(bytecode.OpSetProperty, target.Name)
	case *parser.Index:
		c.compileExpr(target.Object)
		c.compileExpr(target.Index)
		c.compileExpr(e.Value)
		c.emitOp(bytecode.OpSetSubscript)
	default:
		c.errorf(e.Line, "invalid assignment target")
	}
	return nil
}

func (c *Compiler) VisitTernary(e *parser.Ternary) interface{} {
	c.compileExpr(e.Cond)
	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.compileExpr(e.Then)

	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)
	c.compileExpr(e.Else)
	c.patchJump(elseJump)
	return nil
}

// VisitLogical short-circuits: && leaves its left operand on the stack
// and skips the right if it's already falsy, || the mirror image.
func (c *Compiler) VisitLogical(e *parser.Logical) interface{} {
	c.compileExpr(e.Left)
	if e.Operator == "&&" {
		endJump := c.emitJump(bytecode.OpJumpIfFalse)
		c.emitOp(bytecode.OpPop)
		c.compileExpr(e.Right)
		c.patchJump(endJump)
		return nil
	}
	endJump := c.emitJump(bytecode.OpJumpIfTrue)
	c.emitOp(bytecode.OpPop)
	c.compileExpr(e.Right)
	c.patchJump(endJump)
	return nil
}

// binaryOpcodes covers every Binary.Operator that maps directly to one
// opcode; != , <= and >= instead compile as the complementary opcode
// followed by NOT (spec.md §4.4 defines no dedicated opcodes for them).
var binaryOpcodes = map[string]bytecode.OpCode{
	"+":   bytecode.OpAdd,
	"-":   bytecode.OpSub,
	"*":   bytecode.OpMul,
	"/":   bytecode.OpDiv,
	"%":   bytecode.OpMod,
	"==":  bytecode.OpEqual,
	"===": bytecode.OpStrictEqual,
	"!==": bytecode.OpStrictNotEqual,
	"<":   bytecode.OpLess,
	">":   bytecode.OpGreater,
}

func (c *Compiler) VisitBinary(e *parser.Binary) interface{} {
	c.compileExpr(e.Left)
	c.compileExpr(e.Right)
	c.lastLine = e.Line

	switch e.Operator {
	case "!=":
		c.emitOp(bytecode.OpEqual)
		c.emitOp(bytecode.OpNot)
	case "<=":
		c.emitOp(bytecode.OpGreater)
		c.emitOp(bytecode.OpNot)
	case ">=":
		c.emitOp(bytecode.OpLess)
		c.emitOp(bytecode.OpNot)
	default:
		op, ok := binaryOpcodes[e.Operator]
		if !ok {
			c.errorf(e.Line, "unknown binary operator %q", e.Operator)
			return nil
		}
		c.emitOp(op)
	}
	return nil
}

func (c *Compiler) VisitUnary(e *parser.Unary) interface{} {
	switch e.Operator {
	case "!":
		c.compileExpr(e.Operand)
		c.emitOp(bytecode.OpNot)
	case "-":
		c.compileExpr(e.Operand)
		c.emitOp(bytecode.OpNegate)
	case "++", "--":
		c.compilePrefixIncDec(e)
	default:
		c.errorf(e.Line, "unknown unary operator %q", e.Operator)
	}
	return nil
}

// compilePrefixIncDec desugars `++x`/`--x` to `x = x + 1`/`x = x - 1`
// in place, leaving the updated value on the stack.
func (c *Compiler) compilePrefixIncDec(e *parser.Unary) {
	delta := "+"
	if e.Operator == "--" {
		delta = "-"
	}
	assign := &parser.Assign{
		Target: e.Operand,
		Value:  &parser.Binary{Left: e.Operand, Operator: delta, Right: &parser.Literal{Value: 1.0, Line: e.Line}, Line: e.Line},
		Line:   e.Line,
	}
	c.compileExpr(assign)
}

// VisitPostfix evaluates the pre-update value, then performs the same
// update as the prefix form and discards its result, so the expression
// as a whole yields the old value.
func (c *Compiler) VisitPostfix(e *parser.Postfix) interface{} {
	c.compileExpr(e.Operand)

	delta := "+"
	if e.Operator == "--" {
		delta = "-"
	}
	assign := &parser.Assign{
		Target: e.Operand,
		Value:  &parser.Binary{Left: e.Operand, Operator: delta, Right: &parser.Literal{Value: 1.0, Line: e.Line}, Line: e.Line},
		Line:   e.Line,
	}
	c.compileExpr(assign)
	c.emitOp(bytecode.OpPop)
	return nil
}

func (c *Compiler) VisitNew(e *parser.New) interface{} {
	c.compileExpr(e.Callee)
	for _, a := range e.Args {
		c.compileExpr(a)
	}
	c.emitOp(bytecode.OpNew)
	c.emitByte(byte(len(e.Args)))
	return nil
}

func (c *Compiler) VisitCall(e *parser.Call) interface{} {
	c.compileExpr(e.Callee)
	for _, a := range e.Args {
		c.compileExpr(a)
	}
	c.emitOp(bytecode.OpCall)
	c.emitByte(byte(len(e.Args)))
	return nil
}

func (c *Compiler) VisitProperty(e *parser.Property) interface{} {
	c.compileExpr(e.Object)
	c.emitNameConstant(bytecode.OpGetProperty, e.Name)
	return nil
}

func (c *Compiler) VisitIndex(e *parser.Index) interface{} {
	c.compileExpr(e.Object)
	c.compileExpr(e.Index)
	c.emitOp(bytecode.OpGetSubscript)
	return nil
}

func (c *Compiler) VisitListLiteral(e *parser.ListLiteral) interface{} {
	for _, el := range e.Elements {
		c.compileExpr(el)
	}
	c.emitOp(bytecode.OpBuildList)
	c.emitByte(byte(len(e.Elements)))
	return nil
}

func (c *Compiler) VisitObjectLiteral(e *parser.ObjectLiteral) interface{} {
	for i, key := range e.Keys {
		c.emitConstant(c.heap.NewString(key))
		c.compileExpr(e.Values[i])
	}
	c.emitOp(bytecode.OpBuildObject)
	c.emitByte(byte(len(e.Keys)))
	return nil
}

func (c *Compiler) VisitFunctionExpr(e *parser.FunctionExpr) interface{} {
	name := e.Name
	if name == "" {
		name = "<anonymous>"
	}
	c.emitClosure(KindFunction, name, e.Params, e.Body)
	return nil
}

func (c *Compiler) VisitArrowExpr(e *parser.ArrowExpr) interface{} {
	body := e.Body
	if body == nil {
		body = []parser.Stmt{&parser.ReturnStmt{Value: e.ExprBody, Line: e.Line}}
	}
	c.emitClosure(KindFunction, "<anonymous>", e.Params, body)
	return nil
}

// emitClosure compiles a nested function body in its own frame and
// emits MAKE_CLOSURE followed by one (isLocal, index) pair per captured
// upvalue, per spec.md §4.3's closure-creation sequence.
func (c *Compiler) emitClosure(kind FunctionKind, name string, params []string, body []parser.Stmt) {
	fn, upvalues := c.compileFunctionBody(kind, name, params, body)
	idx := c.addConstant(fn)
	c.emitOp(bytecode.OpMakeClosure)
	c.emitUint16(uint16(idx))
	for _, uv := range upvalues {
		if uv.IsLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(uv.Index)
	}
}
