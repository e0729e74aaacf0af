package compiler

import "nimbus/internal/bytecode"

func (c *Compiler) beginScope() {
	c.cur.scopeDepth++
}

// endScope pops every local declared at the scope being left. Any of
// them captured by a nested closure must be closed (CLOSE_UPVALUE)
// before POP truncates the stack out from under its borrowed slot.
func (c *Compiler) endScope() {
	c.cur.scopeDepth--
	locals := c.cur.locals
	for len(locals) > 0 && locals[len(locals)-1].Depth > c.cur.scopeDepth {
		last := locals[len(locals)-1]
		if last.IsCaptured {
			c.emitOp(bytecode.OpCloseUpvalue)
		} else {
			c.emitOp(bytecode.OpPop)
		}
		locals = locals[:len(locals)-1]
	}
	c.cur.locals = locals
}

// addLocal declares a new local in the current scope and returns its
// slot index. The slot is not yet resolvable by name until
// markInitialized runs — this lets `var x = x;` see the enclosing x
// rather than an uninitialized slot of its own.
func (c *Compiler) addLocal(name string, isConst bool) int {
	c.cur.locals = append(c.cur.locals, Local{Name: name, Depth: -1, IsConst: isConst})
	return len(c.cur.locals) - 1
}

func (c *Compiler) markInitialized() {
	c.cur.locals[len(c.cur.locals)-1].Depth = c.cur.scopeDepth
}

// resolveVariable implements spec.md §4.3's three-tier lookup: local
// takes precedence over upvalue, upvalue over global.
type varKind int

const (
	varLocal varKind = iota
	varUpvalue
	varGlobal
)

func (c *Compiler) resolveVariable(name string) (kind varKind, index int, isConst bool) {
	if idx, constFlag, ok := resolveLocal(c.cur, name); ok {
		return varLocal, idx, constFlag
	}
	if idx, constFlag, ok := resolveUpvalue(c.cur, name); ok {
		return varUpvalue, idx, constFlag
	}
	return varGlobal, -1, c.globalConsts[name]
}

func resolveLocal(s *state, name string) (int, bool, bool) {
	for i := len(s.locals) - 1; i >= 0; i-- {
		if s.locals[i].Name == name && s.locals[i].Depth != -1 {
			return i, s.locals[i].IsConst, true
		}
	}
	return 0, false, false
}

// resolveUpvalue recursively walks enclosing CompilerStates, adding an
// Upvalue entry to every frame between the defining scope and this one
// so each intermediate closure also forwards the capture.
func resolveUpvalue(s *state, name string) (int, bool, bool) {
	if s.enclosing == nil {
		return 0, false, false
	}
	if idx, constFlag, ok := resolveLocal(s.enclosing, name); ok {
		s.enclosing.locals[idx].IsCaptured = true
		return addUpvalue(s, byte(idx), true, constFlag), constFlag, true
	}
	if idx, constFlag, ok := resolveUpvalue(s.enclosing, name); ok {
		return addUpvalue(s, byte(idx), false, constFlag), constFlag, true
	}
	return 0, false, false
}

func addUpvalue(s *state, index byte, isLocal bool, isConst bool) int {
	for i, uv := range s.upvalues {
		if uv.Index == index && uv.IsLocal == isLocal {
			return i
		}
	}
	s.upvalues = append(s.upvalues, Upvalue{Index: index, IsLocal: isLocal, IsConst: isConst})
	return len(s.upvalues) - 1
}
