// Package repl implements the interactive line-at-a-time loop SPEC_FULL.md
// component 10 describes: one persistent compiler/VM pipeline, a prompt,
// and immediate execution of each line against the running globals.
//
// Grounded on the teacher's internal/repl.Start, which drove the same
// scan/parse/compile/run pipeline per line; rewritten against the
// current VM (internal/vm.NewVM takes a *memory.Heap and a file name and
// exposes Interpret, not the teacher's ResetWithChunk/Run pair) and
// wired to internal/module and internal/stdlib so an interactive session
// sees the same globals a script run does.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"nimbus/internal/compiler"
	"nimbus/internal/errors"
	"nimbus/internal/lexer"
	"nimbus/internal/memory"
	"nimbus/internal/module"
	"nimbus/internal/object"
	"nimbus/internal/parser"
	"nimbus/internal/stdlib"
	"nimbus/internal/vm"
)

const prompt = ">> "

// Start runs the REPL, reading lines from in and writing the prompt,
// results, and diagnostics to out. A single VM and Loader persist across
// lines so variables, functions, and classes declared on one line stay
// visible on the next.
func Start(in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "nimbus REPL | Ctrl-D or 'exit' to quit")

	heap := memory.NewHeap()
	v := vm.NewVM(heap, "<repl>")

	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	loader := module.NewLoader(dir)
	stdlib.Register(v, loader, out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := scanner.Text()
		if line == "exit" || line == "exit()" {
			return
		}
		if line == "" {
			continue
		}

		if exitCode, done := evalLine(v, heap, line, out); done {
			os.Exit(exitCode)
		}
	}
}

// evalLine compiles and runs one line against v's persistent globals. A
// bare expression statement's value is printed, the way a JS REPL
// echoes its last evaluated expression. Returns (code, true) when the
// line called exit(n), signalling the caller to end the process.
func evalLine(v *vm.VM, heap *memory.Heap, line string, out io.Writer) (int, bool) {
	sc := lexer.NewScanner(line)
	tokens := sc.ScanTokens()

	p := parser.NewParser(tokens, "<repl>")
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		for _, e := range p.Errors {
			fmt.Fprintln(out, e.Error())
		}
		return 0, false
	}

	// A trailing bare expression becomes the line's return value, which
	// Interpret hands back for echoing.
	bare := isBareExpression(stmts)
	if bare {
		last := stmts[len(stmts)-1].(*parser.ExpressionStmt)
		stmts[len(stmts)-1] = &parser.ReturnStmt{Value: last.Expr}
	}

	fn, errs := compiler.Compile(stmts, heap, "<repl>")
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(out, e.Error())
		}
		return 0, false
	}

	result, err := v.Interpret(fn)
	if err != nil {
		if exit, ok := err.(*errors.Exit); ok {
			return exit.Code, true
		}
		fmt.Fprintln(out, err.Error())
		return 0, false
	}

	if err := v.RunEventLoop(); err != nil {
		if exit, ok := err.(*errors.Exit); ok {
			return exit.Code, true
		}
		fmt.Fprintln(out, err.Error())
		return 0, false
	}

	if result != nil && bare {
		fmt.Fprintln(out, object.ToDisplayString(result))
	}
	return 0, false
}

// isBareExpression reports whether the line's last statement was an
// expression statement, so only its value (not the value of a
// let/function/class/loop statement) gets echoed.
func isBareExpression(stmts []parser.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*parser.ExpressionStmt)
	return ok
}
