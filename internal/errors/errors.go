// Package errors defines the interpreter's typed error model: one Kind
// per pipeline stage, a shared `[file:line] Error: msg` rendering (spec
// §7), and cause-chain wrapping via github.com/pkg/errors for anything
// that originates outside the interpreter (a failed file read, a
// nested compile error surfaced through require()).
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

type Kind string

const (
	Lex      Kind = "LexError"
	Parse    Kind = "ParseError"
	Compile  Kind = "CompileError"
	Runtime  Kind = "RuntimeError"
	Module   Kind = "ModuleError"
)

// Error is the single error type every stage of the pipeline raises.
// Kind distinguishes where it came from; Cause, when present, is the
// lower-level error this one wraps (e.g. a ModuleError wrapping the
// CompileError of the file it tried to load).
type Error struct {
	Kind    Kind
	File    string
	Line    int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s:%d] Error: %s", e.File, e.Line, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with no wrapped cause.
func New(kind Kind, file string, line int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, File: file, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause via pkg/errors so pkgerrors.Cause(err) can walk
// back to the original failure (a read error, an earlier stage's
// Error) through this one.
func Wrap(kind Kind, file string, line int, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		File:    file,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
		Cause:   pkgerrors.WithStack(cause),
	}
}

// Exit signals a script-requested process exit (the exit(n) builtin).
// The VM's call protocol threads it back unwrapped instead of folding
// it into a RuntimeError, so cmd/nimbus can recover the code and map it
// to its own process exit status per spec.md §6's CLI contract.
type Exit struct{ Code int }

func (e *Exit) Error() string { return fmt.Sprintf("exit(%d)", e.Code) }
