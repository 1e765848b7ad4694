package krk

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kuroko-lang/krk/internal/flushio"
	"github.com/kuroko-lang/krk/internal/panicerr"
)

// Interpret compiles and runs source as a fresh module body under the name
// "<module>" (or filename for tracebacks), using a new thread of execution.
// It is the embedding surface's primary entry point (§6.4 "krk_interpret"),
// the Go-native analogue of the teacher's Run(ctx): the core execution runs
// under panicerr.Recover so a Go-level panic deep in the dispatch loop (an
// index slip in a hand-written opcode handler, say) comes back as a returned
// error instead of taking the whole embedding process down with it.
func Interpret(vm *VM, source, filename string) (Value, error) {
	code, errs := compileModule(vm, source, filename)
	if len(errs) > 0 {
		return None, fmt.Errorf("%s: %w", filename, errs[0])
	}

	codeObj := vm.allocObj(ObjKindCode, code)
	closure := &ObjClosure{code: code, codeObj: codeObj, globals: &vm.globals}
	closureObj := vm.allocObj(ObjKindClosure, closure)
	closure.setSelf(closureObj)

	vm.execMu.Lock()
	defer vm.execMu.Unlock()

	t := newThreadState(vm, len(vm.threads))
	vm.threads = append(vm.threads, t)
	defer func() {
		for i, th := range vm.threads {
			if th == t {
				vm.threads = append(vm.threads[:i], vm.threads[i+1:]...)
				break
			}
		}
	}()

	var result Value
	err := panicerr.Recover("VM", func() error {
		var callErr error
		result, callErr = vm.callClosure(t, closureObj, closure, nil, nil)
		return callErr
	})
	if err != nil {
		if kerr, ok := err.(*KurokoError); ok {
			if kerr.Message == "" {
				kerr.Message = exceptionMessage(kerr.Value)
			}
		}
		return None, err
	}
	return result, nil
}

// RunFile reads path and Interprets it, using path itself as the traceback
// filename.
func RunFile(vm *VM, path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return None, err
	}
	return Interpret(vm, string(data), path)
}

// compileModule drives a full module-level compile: it is compileBlock's
// sibling for the one lexical level that has no indented header of its own
// (top-level statements sit at whatever width the first line establishes,
// conventionally 0), and it stops at EOF rather than at a dedent.
func compileModule(vm *VM, source, filename string) (*ObjCode, []error) {
	scanner := NewScanner(strings.NewReader(source), filename)
	p := newParser(vm, scanner, filename)
	p.advance()

	c := newCompiler(vm, nil, FuncModule, "<module>")
	c.code.qualifiedName = "<module>"

	p.skipEOLs()
	for !p.check(TokEOF) {
		if !p.check(TokIndentation) {
			p.errorAt(p.current, "expected a statement")
			break
		}
		width := p.current.Width
		p.advance()
		compileStatement(p, c, width)
		p.skipEOLs()
	}

	c.emit(OpNone, p.previous.Line)
	c.emit(OpReturn, p.previous.Line)
	c.code.upvalueDescs = c.upvalues
	c.popChain()

	if p.hadError {
		return nil, p.errs
	}
	return c.code, nil
}

// RegisterModule installs table as the namespace importable under name,
// letting an embedder expose host functionality the way the teacher's
// main.go wires `-D` defines into the running VM (§6.4 "embedding API").
// `import name` (and `from name import ...`) then resolve it through the
// __import__ native installed by bootstrapModules.
func RegisterModule(vm *VM, name string, table *Table) {
	vm.modules.Set(vm.newString(name), ObjValue(vm.allocObj(ObjKindDict, &ObjDict{table: *table})))
}

// bootstrapModules installs the single native entry point the compiler's
// import/from-import/export statements compile down to: __import__(name)
// looks up a pre-registered module namespace in vm.modules and raises
// ImportError if nothing was registered under that name. This module system
// deliberately does not read files off disk; a hosting program supplies
// every importable name up front via RegisterModule, matching the
// "modules are whatever the embedder registered" contract documented at
// compiler_stmt.go's import/from-import/export handlers.
func (vm *VM) bootstrapModules() {
	vm.defineNative("__import__", builtinImport)
}

func builtinImport(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	var name string
	if err := parseArgs(vm, t, "__import__", "s", args, kwPairs, &name); err != nil {
		return None, err
	}
	mod, ok := vm.modules.Get(vm.newString(name))
	if !ok {
		return None, vm.runtimeErrorf(t, "ImportError", "no module named '%s'", name)
	}
	return mod, nil
}

// Push, Pop, and Peek expose a thread's operand stack to host code calling
// back into the VM from a native function (§6.4).
func Push(t *threadState, v Value) { t.push(v) }
func Pop(t *threadState) Value     { return t.pop() }
func Peek(t *threadState, distance int) Value { return t.peek(distance) }

// Call invokes callee with args/kwPairs on thread t, the embedding-facing
// wrapper around the VM's internal call protocol (§4.3 "callValue"), for a
// native function that needs to call back into Kuroko code (e.g. sorted's
// key= callback).
func Call(vm *VM, t *threadState, callee Value, args []Value, kwPairs []Value) (Value, error) {
	return vm.call(t, callee, args, kwPairs)
}

// DefineNative installs fn as a global builtin named name, exported for
// embedders that want to add host functions alongside the built-in set.
func DefineNative(vm *VM, name string, fn NativeFunc) { vm.defineNative(name, fn) }

// AttachNamedValue sets name on table to value, interning name as needed;
// a small convenience for embedders building a module namespace to pass to
// RegisterModule.
func AttachNamedValue(vm *VM, table *Table, name string, value Value) {
	table.Set(vm.newString(name), value)
}

// RuntimeError raises a Kuroko exception of the given class on t, returning
// it as a Go error the same way any native function would; exported so
// embedder-provided natives can raise Kuroko exceptions without reaching
// into unexported VM internals.
func RuntimeError(vm *VM, t *threadState, class, format string, args ...interface{}) error {
	return vm.runtimeErrorf(t, class, format, args...)
}

// ParseArgs exposes the argument-binding mini-language (§6.4 "parse_args")
// to embedder-defined natives, identical to the one bootstrapBuiltins uses
// internally.
func ParseArgs(vm *VM, t *threadState, fname, spec string, args []Value, kwPairs []Value, outs ...interface{}) error {
	return parseArgs(vm, t, fname, spec, args, kwPairs, outs...)
}

// SetOutput redirects the VM's stdout/stderr, the Go-native analogue of the
// teacher's logio.Logger.SetOutput used by cmd/kuroko for `-o`-style
// redirection and by tests that capture printed output.
func (vm *VM) SetOutput(stdout, stderr io.Writer) {
	if stdout != nil {
		vm.stdout = flushio.NewWriteFlusher(stdout)
	}
	if stderr != nil {
		vm.stderr = flushio.NewWriteFlusher(stderr)
	}
}
