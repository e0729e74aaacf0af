// Command nimbus is the thin entry point spec.md §6 and §7 describe: it
// runs one script to completion, mapping a script-requested exit(n) to
// the process exit code, or drops into the REPL when stdin is an
// interactive terminal.
//
// Grounded on the teacher's cmd/sentra/main.go ("run" subcommand) with
// everything the teacher's main wires up that this interpreter does not
// implement dropped: the debugger, formatter, linter, doc generator,
// and package manager subcommands all belong to a much larger surface
// than spec.md names, and there is no separate build step for this
// interpreter's single-file scripts to make a "build/watch/clean"
// project workflow meaningful; only the "init" scaffolding command is
// kept.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"nimbus/internal/commands"
	"nimbus/internal/compiler"
	"nimbus/internal/errors"
	"nimbus/internal/lexer"
	"nimbus/internal/memory"
	"nimbus/internal/module"
	"nimbus/internal/parser"
	"nimbus/internal/repl"
	"nimbus/internal/stdlib"
	"nimbus/internal/vm"
)

func main() {
	args := os.Args[1:]

	if len(args) == 0 {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			repl.Start(os.Stdin, os.Stdout)
			return
		}
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "nimbus: cannot read stdin:", err)
			os.Exit(1)
		}
		os.Exit(runSource(source, "<stdin>"))
	}

	switch args[0] {
	case "--help", "-h", "help":
		usage()
		return
	case "--version", "-v", "version":
		fmt.Println("nimbus 0.1.0")
		return
	case "repl":
		repl.Start(os.Stdin, os.Stdout)
		return
	case "init":
		if err := commands.InitCommand(args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, "nimbus:", err)
			os.Exit(1)
		}
		return
	}

	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nimbus: cannot read %s: %v\n", path, err)
		os.Exit(1)
	}
	os.Exit(runSource(source, path))
}

// runSource runs one script end to end and returns the process exit
// code: 0 on success, a script-chosen code for exit(n), 1 for any other
// error (printed as spec.md §7's `[file:line] Error: msg`).
func runSource(source []byte, path string) int {
	heap := memory.NewHeap()
	v := vm.NewVM(heap, path)

	loader := module.NewLoader(filepath.Dir(path))
	stdlib.Register(v, loader, os.Stdout)

	sc := lexer.NewScanner(string(source))
	tokens := sc.ScanTokens()

	p := parser.NewParser(tokens, path)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		for _, e := range p.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return 1
	}

	fn, errs := compiler.Compile(stmts, heap, path)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return 1
	}

	if _, err := v.Interpret(fn); err != nil {
		return reportRunErr(err)
	}
	if err := v.RunEventLoop(); err != nil {
		return reportRunErr(err)
	}
	return 0
}

func reportRunErr(err error) int {
	if exit, ok := err.(*errors.Exit); ok {
		return exit.Code
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return 1
}

func usage() {
	fmt.Println("nimbus - a small dynamically typed scripting language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  nimbus <file.nim>   Run a script")
	fmt.Println("  nimbus repl         Start the interactive REPL")
	fmt.Println("  nimbus init [name]  Scaffold a new project directory")
	fmt.Println("  nimbus              Start the REPL if stdin is a terminal, else read a script from stdin")
}
