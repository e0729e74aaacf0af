package errors

import (
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestErrorFormatsFileAndLine(t *testing.T) {
	e := New(Runtime, "main.nim", 12, "undefined variable %q", "x")
	want := `[main.nim:12] Error: undefined variable "x"`
	if e.Error() != want {
		t.Fatalf("got %q, want %q", e.Error(), want)
	}
}

func TestErrorWithoutFileOmitsLocation(t *testing.T) {
	e := New(Module, "", 0, "no search path configured")
	want := "ModuleError: no search path configured"
	if e.Error() != want {
		t.Fatalf("got %q, want %q", e.Error(), want)
	}
}

func TestWrapPreservesCauseChain(t *testing.T) {
	cause := fmt.Errorf("file not found")
	e := Wrap(Module, "greet.nim", 0, cause, "require: cannot read module")

	if e.Unwrap() == nil {
		t.Fatal("expected Unwrap to return the wrapped cause")
	}
	if pkgerrors.Cause(e.Unwrap()) != cause {
		t.Fatalf("expected pkgerrors.Cause to walk back to the original error")
	}
}

func TestExitErrorMessage(t *testing.T) {
	e := &Exit{Code: 3}
	if e.Error() != "exit(3)" {
		t.Fatalf("got %q", e.Error())
	}
}
