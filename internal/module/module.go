// Package module implements spec.md §4.5's require(): resolve a path
// against a fixed search list, compile and run the file to completion
// with a fresh `exports` global swapped in for the duration, then
// memoise the result under the resolved absolute path.
//
// Grounded on the teacher's internal/module.ModuleLoader (search-path
// list, builtin-vs-file dispatch, a cache map guarded by a mutex) with
// the builtin-module switch dropped — this interpreter's builtins live
// in internal/stdlib as globals and native classes, not as named
// modules — and SPEC_FULL.md §4.5's single-flight de-duplication added
// so two concurrent require() calls for the same uncached path (only
// reachable once the event loop re-enters run() from a timer callback)
// run the module's top-level code exactly once.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"nimbus/internal/compiler"
	"nimbus/internal/errors"
	"nimbus/internal/lexer"
	"nimbus/internal/object"
	"nimbus/internal/parser"
	"nimbus/internal/vm"
)

// Loader owns the module cache and search path for one VM's require().
// Per spec.md §5, there is no process-level singleton: one Loader
// belongs to exactly one VM, created alongside it by cmd/nimbus or
// internal/repl.
type Loader struct {
	searchPath []string

	mu    sync.Mutex
	cache map[string]object.Value

	sf singleflight.Group

	// logDiagnostics mirrors internal/memory's NIMBUS_GC_LOG convention:
	// require() never surfaces *why* it returned null to the script, but
	// setting NIMBUS_MODULE_LOG prints the underlying ModuleError to
	// stderr for anyone debugging a require() that unexpectedly failed.
	logDiagnostics bool
}

// NewLoader creates a loader rooted at entryDir (the directory holding
// the top-level script, always searched first) plus any additional
// directories the caller wants on the path.
func NewLoader(entryDir string, extra ...string) *Loader {
	return &Loader{
		searchPath:     append([]string{entryDir, "."}, extra...),
		cache:          make(map[string]object.Value),
		logDiagnostics: os.Getenv("NIMBUS_MODULE_LOG") != "",
	}
}

// AddSearchPath appends a directory to the end of the search list.
func (l *Loader) AddSearchPath(dir string) {
	l.searchPath = append(l.searchPath, dir)
}

// Require implements the six numbered steps of spec.md §4.5 against v.
// Every failure path (file not found, parse error, compile error) per
// the spec's ModuleError note returns script-level null rather than a
// Go error the VM would surface as a RuntimeError.
func (l *Loader) Require(v *vm.VM, path string) (object.Value, error) {
	resolved, found := l.resolve(path)
	if !found {
		return nil, nil
	}

	l.mu.Lock()
	if cached, ok := l.cache[resolved]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	result, err, _ := l.sf.Do(resolved, func() (interface{}, error) {
		l.mu.Lock()
		if cached, ok := l.cache[resolved]; ok {
			l.mu.Unlock()
			return requireResult{cached}, nil
		}
		l.mu.Unlock()

		exports, ran, diagnostic := l.loadAndRun(v, resolved)
		if ran {
			l.mu.Lock()
			l.cache[resolved] = exports
			l.mu.Unlock()
		} else if diagnostic != nil && l.logDiagnostics {
			fmt.Fprintln(os.Stderr, diagnostic)
		}
		return requireResult{exports}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(requireResult).exports, nil
}

// requireResult wraps the exports value so singleflight.Do never has to
// type-assert a bare object.Value (itself interface{}) back out of an
// interface{}, which fails for the nil case.
type requireResult struct{ exports object.Value }

// loadAndRun executes steps 2-6 of spec.md §4.5 against the already
// resolved absolute path. ran reports whether execution reached step 6
// (and therefore whether the result should be memoised); on any failure
// exports is nil (script null) and diagnostic carries the underlying
// cause — a failed read, a parse/compile error, or a runtime error
// raised by the module's own top-level code — wrapped as a ModuleError
// so a caller that wants to know *why* require() returned null (the
// CLI's stderr, a future debugger) has somewhere to look; the require()
// native itself still only ever hands the script null, per spec.md's
// ModuleError note.
func (l *Loader) loadAndRun(v *vm.VM, resolved string) (exports object.Value, ran bool, diagnostic error) {
	source, err := os.ReadFile(resolved)
	if err != nil {
		return nil, false, errors.Wrap(errors.Module, resolved, 0, err, "require: cannot read module")
	}

	scanner := lexer.NewScanner(string(source))
	tokens := scanner.ScanTokens()
	p := parser.NewParser(tokens, resolved)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		return nil, false, errors.Wrap(errors.Module, resolved, 0, p.Errors[0], "require: %v", p.Errors)
	}

	prevExports, hadPrev := v.Globals()["exports"]
	fresh := v.NewPlainObject()
	v.Globals()["exports"] = fresh
	v.Heap().PushTempRoot(fresh)
	defer v.Heap().PopTempRoot()

	restore := func() {
		if hadPrev {
			v.Globals()["exports"] = prevExports
		} else {
			delete(v.Globals(), "exports")
		}
	}

	script, errs := compiler.Compile(stmts, v.Heap(), resolved)
	if len(errs) > 0 {
		restore()
		return nil, false, errors.Wrap(errors.Module, resolved, 0, errs[0], "require: %v", errs)
	}

	closure := v.Heap().NewClosure(v.Heap().NewFunction(script), nil)
	if _, err := v.CallSync(closure, nil); err != nil {
		restore()
		return nil, false, errors.Wrap(errors.Module, resolved, 0, err, "require: module body raised an error")
	}

	result := v.Globals()["exports"]
	restore()
	return result, true, nil
}

// resolve walks the search path looking for path, path+".nim", and
// path/index.nim in turn, returning the first hit's cleaned absolute
// form — the memoisation key spec.md §4.5 calls for.
func (l *Loader) resolve(path string) (string, bool) {
	candidates := []string{path}
	if filepath.Ext(path) == "" {
		candidates = append(candidates, path+".nim", filepath.Join(path, "index.nim"))
	}

	if filepath.IsAbs(path) {
		for _, c := range candidates {
			if isFile(c) {
				return filepath.Clean(c), true
			}
		}
		return "", false
	}

	for _, dir := range l.searchPath {
		for _, c := range candidates {
			full := filepath.Join(dir, c)
			if isFile(full) {
				abs, err := filepath.Abs(full)
				if err != nil {
					abs = full
				}
				return filepath.Clean(abs), true
			}
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
