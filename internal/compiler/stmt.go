package compiler

import (
	"nimbus/internal/bytecode"
	"nimbus/internal/parser"
)

func (c *Compiler) compileStmt(s parser.Stmt) {
	s.Accept(c)
}

// compileStatements compiles a statement list. At the script's top level
// it hoists function declarations: every direct-child FunctionStmt is
// declared and defined first, in source order, so code physically
// preceding it can already call it at runtime (SPEC_FULL.md §4.3).
// Everything else then compiles in its original order, skipping the
// FunctionStmts already emitted. Inside a function body or block every
// statement compiles in source order, so a local function declaration is
// visible from its declaration onward and can capture earlier locals.
func (c *Compiler) compileStatements(stmts []parser.Stmt) {
	if c.cur.scopeDepth > 0 {
		for _, s := range stmts {
			c.compileStmt(s)
		}
		return
	}
	for _, s := range stmts {
		if fs, ok := s.(*parser.FunctionStmt); ok {
			c.compileFunctionDecl(fs)
		}
	}
	for _, s := range stmts {
		if _, ok := s.(*parser.FunctionStmt); ok {
			continue
		}
		c.compileStmt(s)
	}
}

func (c *Compiler) VisitExpressionStmt(s *parser.ExpressionStmt) interface{} {
	c.compileExpr(s.Expr)
	c.emitOp(bytecode.OpPop)
	return nil
}

func (c *Compiler) VisitVarStmt(s *parser.VarStmt) interface{} {
	c.lastLine = s.Line
	if s.Init != nil {
		c.compileExpr(s.Init)
	} else {
		c.emitOp(bytecode.OpNil)
	}

	if c.cur.scopeDepth > 0 {
		c.addLocal(s.Name, s.IsConst)
		c.markInitialized()
		return nil
	}

	if s.IsConst {
		c.globalConsts[s.Name] = true
		c.emitNameConstant(bytecode.OpDefineGlobalConst, s.Name)
	} else {
		c.emitNameConstant(bytecode.OpDefineGlobal, s.Name)
	}
	return nil
}

func (c *Compiler) VisitBlockStmt(s *parser.BlockStmt) interface{} {
	c.beginScope()
	c.compileStatements(s.Stmts)
	c.endScope()
	return nil
}

func (c *Compiler) VisitIfStmt(s *parser.IfStmt) interface{} {
	c.compileExpr(s.Cond)
	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.compileStmt(s.Then)

	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)

	if s.Else != nil {
		c.compileStmt(s.Else)
	}
	c.patchJump(elseJump)
	return nil
}

func (c *Compiler) VisitWhileStmt(s *parser.WhileStmt) interface{} {
	loopStart := len(c.cur.chunk().Code)
	c.compileExpr(s.Cond)
	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)

	c.compileStmt(s.Body)
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
	return nil
}

func (c *Compiler) VisitReturnStmt(s *parser.ReturnStmt) interface{} {
	c.lastLine = s.Line
	if s.Value != nil {
		c.compileExpr(s.Value)
	} else if c.cur.kind == KindConstructor {
		c.emitOp(bytecode.OpGetLocal)
		c.emitByte(0)
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.emitOp(bytecode.OpReturn)
	return nil
}

func (c *Compiler) compileFunctionDecl(s *parser.FunctionStmt) {
	c.lastLine = s.Line
	if c.cur.scopeDepth > 0 {
		slot := c.addLocal(s.Name, false)
		c.markInitialized()
		c.emitClosure(KindFunction, s.Name, s.Params, s.Body)
		_ = slot // the MAKE_CLOSURE push itself occupies the declared slot
		return
	}
	c.emitClosure(KindFunction, s.Name, s.Params, s.Body)
	c.emitNameConstant(bytecode.OpDefineGlobal, s.Name)
}

func (c *Compiler) VisitFunctionStmt(s *parser.FunctionStmt) interface{} {
	// Reached for every function declaration inside a function body or
	// block, and for one nested somewhere other than a direct child of a
	// statement list (e.g. as the single statement of an `if` with no
	// braces); compileStatements hoists only the script's top-level
	// declarations, so this defines it in place.
	c.compileFunctionDecl(s)
	return nil
}

func (c *Compiler) VisitClassStmt(s *parser.ClassStmt) interface{} {
	c.lastLine = s.Line
	c.emitNameConstant(bytecode.OpClass, s.Name)

	for _, m := range s.Methods {
		kind := KindMethod
		if m.Name == "constructor" {
			kind = KindConstructor
		}
		c.emitClosure(kind, m.Name, m.Params, m.Body)
		c.emitNameConstant(bytecode.OpMethod, m.Name)
	}

	if c.cur.scopeDepth > 0 {
		c.addLocal(s.Name, false)
		c.markInitialized()
	} else {
		c.emitNameConstant(bytecode.OpDefineGlobal, s.Name)
	}
	return nil
}

// VisitImportStmt desugars `import { a, b } from "path"` to
// `require("path")` followed by a property-get per specifier that
// defines a matching global, per spec.md §4.3.
func (c *Compiler) VisitImportStmt(s *parser.ImportStmt) interface{} {
	c.lastLine = s.Line
	c.emitNameConstant(bytecode.OpGetGlobal, "require")
	c.emitConstant(c.heap.NewString(s.Path))
	c.emitOp(bytecode.OpCall)
	c.emitByte(1)

	if c.cur.scopeDepth == 0 {
		c.emitNameConstant(bytecode.OpDefineGlobal, "__nimbus_import")
	} else {
		c.addLocal("__nimbus_import", false)
		c.markInitialized()
	}

	for _, name := range s.Specifiers {
		if c.cur.scopeDepth == 0 {
			c.emitNameConstant(bytecode.OpGetGlobal, "__nimbus_import")
		} else {
			kind, idx, _ := c.resolveVariable("__nimbus_import")
			c.emitVariableRead(kind, idx, "__nimbus_import")
		}
		c.emitNameConstant(bytecode.OpGetProperty, name)
		if c.cur.scopeDepth == 0 {
			c.emitNameConstant(bytecode.OpDefineGlobal, name)
		} else {
			c.addLocal(name, false)
			c.markInitialized()
		}
	}
	return nil
}

// VisitExportStmt writes each named value into the module's exports
// object, per spec.md §4.3. The module system (internal/module) binds
// the "exports" global before running the module's closure.
func (c *Compiler) VisitExportStmt(s *parser.ExportStmt) interface{} {
	c.lastLine = s.Line
	for _, name := range s.Names {
		c.emitNameConstant(bytecode.OpGetGlobal, "exports")
		kind, idx, _ := c.resolveVariable(name)
		c.emitVariableRead(kind, idx, name)
		c.emitNameConstant(bytecode.OpSetProperty, name)
		c.emitOp(bytecode.OpPop)
	}
	return nil
}
