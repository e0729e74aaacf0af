// Package stdlib registers the native globals and built-in classes
// spec.md §6 names ("Built-in globals", "Built-in classes") into a
// freshly constructed VM. Grounded on the teacher's
// internal/vmregister.RegisterStdlib (one registerGlobal call per
// builtin, a NativeFn closure per entry) with the teacher's large
// security/network/ML module surface dropped — none of it is named by
// spec.md §6 — in favour of exactly the globals and classes the data
// model calls for.
package stdlib

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"nimbus/internal/errors"
	"nimbus/internal/module"
	"nimbus/internal/object"
	"nimbus/internal/vm"
)

// Register wires every spec.md §6 builtin into v: the global functions,
// and the File and Object native classes. stdout is where print/println
// write, injected rather than hardcoded to os.Stdout so tests can
// capture it.
func Register(v *vm.VM, loader *module.Loader, stdout io.Writer) {
	registerGlobals(v, loader, stdout)
	registerFileClass(v)
	registerObjectClass(v)
}

func registerGlobals(v *vm.VM, loader *module.Loader, stdout io.Writer) {
	heap := v.Heap()
	g := v.Globals()

	g["print"] = heap.NewNative("print", printFn(stdout, ""))
	g["println"] = heap.NewNative("println", printFn(stdout, "\n"))

	g["now"] = heap.NewNative("now", func(receiver object.Value, args []object.Value) (object.Value, error) {
		return float64(time.Now().UnixMilli()), nil
	})

	g["sleep"] = heap.NewNative("sleep", func(receiver object.Value, args []object.Value) (object.Value, error) {
		ms, err := argNumber(args, 0, "sleep")
		if err != nil {
			return nil, err
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return nil, nil
	})

	g["getEnv"] = heap.NewNative("getEnv", func(receiver object.Value, args []object.Value) (object.Value, error) {
		name, err := argString(args, 0, "getEnv")
		if err != nil {
			return nil, err
		}
		val, ok := os.LookupEnv(name)
		if !ok {
			return nil, nil
		}
		return heap.NewString(val), nil
	})

	g["setEnv"] = heap.NewNative("setEnv", func(receiver object.Value, args []object.Value) (object.Value, error) {
		name, err := argString(args, 0, "setEnv")
		if err != nil {
			return nil, err
		}
		val, err := argString(args, 1, "setEnv")
		if err != nil {
			return nil, err
		}
		if err := os.Setenv(name, val); err != nil {
			return nil, err
		}
		return nil, nil
	})

	g["exit"] = heap.NewNative("exit", func(receiver object.Value, args []object.Value) (object.Value, error) {
		code := 0
		if len(args) > 0 {
			if n, ok := args[0].(float64); ok {
				code = int(n)
			}
		}
		return nil, &errors.Exit{Code: code}
	})

	g["typeof"] = heap.NewNative("typeof", func(receiver object.Value, args []object.Value) (object.Value, error) {
		if len(args) == 0 {
			return heap.NewString("undefined"), nil
		}
		return heap.NewString(object.TypeOf(args[0])), nil
	})

	g["setTimeout"] = heap.NewNative("setTimeout", func(receiver object.Value, args []object.Value) (object.Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("setTimeout expects (fn, ms)")
		}
		ms, ok := args[1].(float64)
		if !ok {
			return nil, fmt.Errorf("setTimeout: ms must be a number")
		}
		v.Loop().SetTimeout(args[0], ms)
		return nil, nil
	})

	g["setInterval"] = heap.NewNative("setInterval", func(receiver object.Value, args []object.Value) (object.Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("setInterval expects (fn, ms)")
		}
		ms, ok := args[1].(float64)
		if !ok {
			return nil, fmt.Errorf("setInterval: ms must be a number")
		}
		id := v.Loop().SetInterval(args[0], ms)
		return float64(id), nil
	})

	g["clearInterval"] = heap.NewNative("clearInterval", func(receiver object.Value, args []object.Value) (object.Value, error) {
		id, err := argNumber(args, 0, "clearInterval")
		if err != nil {
			return nil, err
		}
		v.Loop().ClearInterval(int(id))
		return nil, nil
	})

	g["require"] = heap.NewNative("require", func(receiver object.Value, args []object.Value) (object.Value, error) {
		path, err := argString(args, 0, "require")
		if err != nil {
			return nil, err
		}
		return loader.Require(v, path)
	})
}

// printFn backs both print (no trailing newline) and
// println (trailing newline): multiple arguments are space-joined the
// way the data model's display conversion does for list elements.
func printFn(w io.Writer, suffix string) object.NativeFn {
	return func(receiver object.Value, args []object.Value) (object.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = object.ToDisplayString(a)
		}
		fmt.Fprint(w, strings.Join(parts, " ")+suffix)
		return nil, nil
	}
}

func argString(args []object.Value, i int, who string) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s expects at least %d argument(s)", who, i+1)
	}
	s, ok := args[i].(*object.String)
	if !ok {
		return "", fmt.Errorf("%s: argument %d must be a string", who, i+1)
	}
	return s.Value, nil
}

func argNumber(args []object.Value, i int, who string) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%s expects at least %d argument(s)", who, i+1)
	}
	n, ok := args[i].(float64)
	if !ok {
		return 0, fmt.Errorf("%s: argument %d must be a number", who, i+1)
	}
	return n, nil
}
