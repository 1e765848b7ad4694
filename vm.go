package krk

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/kuroko-lang/krk/internal/flushio"
)

// VM is one interpreter instance: its module table, the interned-string
// table, the GC's all-objects list, and the configuration installed by
// VMOptions at construction (§6.4 "init_vm").
//
// A VM is not safe for concurrent use by multiple goroutines except through
// the explicit ThreadGroup machinery in threads.go, which gives each
// goroutine its own threadState while sharing the VM's heap under the GC's
// coordination (§5).
type VM struct {
	globals Table // the __main__ module's namespace
	modules Table // name -> module namespace Table, for `import`

	strings map[string]*Obj // interned string table

	exceptionClasses map[string]*Obj // name -> built-in exception class, from bootstrapExceptions

	allObjects    *Obj // intrusive linked list of every live heap object
	bytesAllocated int64
	nextGC         int64
	gcStress       bool
	gcPaused       int

	compilerChain *Compiler // GC root: in-progress compiles

	threads []*threadState

	// execMu implements §5's "single-threaded cooperative per interpreter
	// instance": at most one goroutine ever runs the dispatch loop or
	// touches the heap at a time. ThreadGroup-scheduled thread bodies and
	// Lock.acquire (threads.go) take turns releasing and reacquiring it
	// around the one call that is allowed to actually block.
	execMu sync.Mutex

	stdout flushio.WriteFlusher
	stderr flushio.WriteFlusher
	stdin  io.Reader

	frameMax int

	memLimit int64

	debugHook func(vm *VM, event DebugEvent)

	exitCode int
}

// DebugEvent is passed to an installed debug hook on each instruction step
// (§6.4 "debug interface").
type DebugEvent struct {
	Thread *threadState
	Frame  *CallFrame
	IP     int
}

const defaultNextGC = 1 << 20 // 1MiB, matching a conservative embedded default

// NewVM constructs a VM, applying opts in order (functional-options pattern,
// §6.4/"options.go" in the embedding API).
func NewVM(opts ...VMOption) *VM {
	vm := &VM{
		strings:  make(map[string]*Obj),
		nextGC:   defaultNextGC,
		frameMax: 1024,
		stdout:   flushio.NewWriteFlusher(os.Stdout),
		stderr:   flushio.NewWriteFlusher(os.Stderr),
	}
	vm.globals = Table{}
	vm.modules = Table{}
	for _, opt := range opts {
		opt(vm)
	}
	vm.bootstrapExceptions()
	vm.bootstrapBuiltins()
	vm.bootstrapModules()
	vm.bootstrapThreads()
	return vm
}

// allocObj links a freshly constructed object into the VM's heap, charging
// its estimated size against the GC's byte budget (§5.2 "Allocation").
func (vm *VM) allocObj(kind ObjKind, data objData) *Obj {
	o := &Obj{kind: kind, data: data, next: vm.allObjects}
	vm.allObjects = o
	vm.bytesAllocated += estimateSize(kind)
	if vm.bytesAllocated > vm.nextGC || vm.gcStress {
		vm.collectGarbage()
	}
	if vm.memLimit > 0 && vm.bytesAllocated > vm.memLimit {
		// A C-layer allocation fault is documented as fatal (§7 "Propagation
		// policy"): there is no Value-level exception to raise mid-allocObj,
		// so this is reported the same way the embedding API observes any
		// other dispatch-loop fault, via Interpret's panicerr.Recover.
		panic(fmt.Errorf("memory limit of %d bytes exceeded", vm.memLimit))
	}
	return o
}

// estimateSize is a rough per-kind byte charge driving nextGC scheduling;
// exactness does not matter, only rough proportionality (§5.2).
func estimateSize(kind ObjKind) int64 {
	switch kind {
	case ObjKindString, ObjKindBytes:
		return 48
	case ObjKindTuple, ObjKindList:
		return 56
	case ObjKindDict, ObjKindSet:
		return 96
	case ObjKindClosure:
		return 80
	case ObjKindClass, ObjKindInstance:
		return 96
	default:
		return 32
	}
}

// CallFrame is one activation record on a thread's call stack: the closure
// being executed, its instruction pointer, and the base of its stack window
// (§4.2).
type CallFrame struct {
	closure    *ObjClosure
	closureObj *Obj // wraps closure itself; the GC root for a closure with no other live reference (§5.3 "roots")
	ip         int
	base       int // index into thread.stack where this frame's locals start

	// handlers is this frame's stack of active try/with markers, each a
	// Handler Value pushed by PUSH_TRY/PUSH_WITH.
	handlers []Value
}

// threadState is one logical Kuroko thread of execution: an operand stack,
// a call-frame stack, and the head of its open-upvalues list (§3.3 invariant
// 3, §5 "optional parallel threads").
type threadState struct {
	vm *VM

	stack  []Value
	frames []CallFrame

	openUpvalues *Obj // wraps the head *ObjUpvalue, sorted by descending stack index

	currentException Value
	hasException      bool

	// yielded/yieldValue implement OP_YIELD's suspension signal: step()
	// sets both and returns normally rather than erroring, and runUntil
	// stops the dispatch loop without popping the still-live frame so a
	// generator's private thread (generator.go) can be resumed later
	// exactly where it left off (§3.4, §4.2 "Generators/coroutines").
	yielded    bool
	yieldValue Value

	id int
}

func newThreadState(vm *VM, id int) *threadState {
	return &threadState{vm: vm, id: id, stack: make([]Value, 0, 256)}
}

func (t *threadState) push(v Value) { t.stack = append(t.stack, v) }

func (t *threadState) pop() Value {
	n := len(t.stack) - 1
	v := t.stack[n]
	t.stack = t.stack[:n]
	return v
}

func (t *threadState) peek(distance int) Value {
	return t.stack[len(t.stack)-1-distance]
}

func (t *threadState) swap() {
	n := len(t.stack)
	t.stack[n-1], t.stack[n-2] = t.stack[n-2], t.stack[n-1]
}

func (t *threadState) frame() *CallFrame { return &t.frames[len(t.frames)-1] }

// runtimeErrorf formats and raises a Kuroko exception of the given class
// name on thread t, matching the embedding API's `krk_runtimeError` (§6.4).
func (vm *VM) runtimeErrorf(t *threadState, class string, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	exc := vm.newException(class, msg)
	t.currentException = exc
	t.hasException = true
	return &KurokoError{Value: exc, Message: msg}
}

// KurokoError wraps an in-flight Kuroko exception Value as a Go error, the
// boundary type returned by Interpret/RunFile to the embedder. Trace is
// filled in as the VM unwinds frames looking for a handler and finds none
// down to the target depth (§4.3 "Tracebacks"); it is ordered innermost
// frame first.
type KurokoError struct {
	Value   Value
	Message string
	Trace   []TraceEntry
}

// TraceEntry records one call frame an unhandled exception unwound through:
// the code object executing and the source line its instruction pointer
// mapped to at the moment of unwind.
type TraceEntry struct {
	Code *ObjCode
	Line int
}

func (e *KurokoError) Error() string { return e.Message }
