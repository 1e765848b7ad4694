package krk

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// ThreadGroup schedules concurrent Kuroko thread bodies, each running
// against its own threadState but sharing the owning VM's heap (§5
// "optional parallel threads"). It is a thin domain wrapper over a plain
// errgroup.Group (no context): Wait returns the first error any thread body
// returned, and the other bodies keep running to completion.
//
// Only one thread body actually executes VM bytecode at a time — vm.execMu
// enforces §5's "single-threaded cooperative per interpreter instance"
// scheduling model, since dispatch is not reentrant-safe across goroutines
// (allocation, GC, and table mutation all assume a single active thread).
// "Parallel" here means concurrently schedulable and able to block
// independently (on a Lock, on external I/O), not simultaneously executing
// bytecode.
type ThreadGroup struct {
	vm *VM
	eg errgroup.Group
}

// NewThreadGroup creates a ThreadGroup bound to vm.
func NewThreadGroup(vm *VM) *ThreadGroup { return &ThreadGroup{vm: vm} }

// Go starts fn as a new Kuroko thread: a fresh threadState is registered as
// a GC root for the duration of the call (so a collection triggered by
// another thread still marks its stack) and unregistered when fn returns.
func (g *ThreadGroup) Go(fn func(vm *VM, t *threadState) error) {
	vm := g.vm
	t := newThreadState(vm, len(vm.threads))

	vm.execMu.Lock()
	vm.threads = append(vm.threads, t)
	vm.execMu.Unlock()

	g.eg.Go(func() error {
		vm.execMu.Lock()
		defer vm.execMu.Unlock()
		defer func() {
			for i, th := range vm.threads {
				if th == t {
					vm.threads = append(vm.threads[:i], vm.threads[i+1:]...)
					break
				}
			}
		}()
		return fn(vm, t)
	})
}

// Wait blocks until every thread body started with Go has returned,
// propagating the first non-nil error (§6.4 "ThreadError" on failure).
func (g *ThreadGroup) Wait() error { return g.eg.Wait() }

// ObjMutexData backs the built-in Lock type: a plain mutex exposed to
// Kuroko with acquire/release methods and context-manager semantics
// (§5 "Ordering guarantees" — "the embedded lock type, a mutex exposed
// with acquire/release/context-manager semantics").
type ObjMutexData struct {
	mu sync.Mutex
}

func (*ObjMutexData) typeName() string { return "mutex" }
func (*ObjMutexData) repr() string     { return "<mutex>" }

const lockDataAttr = "$mutex"

// bootstrapThreads installs the built-in Lock class as a global. ThreadGroup
// itself is reachable from Go only; no Kuroko-level constructor for it is
// installed.
func (vm *VM) bootstrapThreads() {
	lockClass := newClass("Lock", nil)
	lockObj := vm.allocObj(ObjKindClass, lockClass)
	lockClass.setSelf(lockObj)
	lockClass.finalizer = func(vm *VM, inst *ObjInstance) {
		data := vm.allocObj(ObjKindMutex, &ObjMutexData{})
		inst.attrs.Set(vm.newString(lockDataAttr), ObjValue(data))
	}
	lockClass.attrs.Set(vm.newString("acquire"), ObjValue(vm.allocObj(ObjKindNative, &ObjNative{
		name: "acquire", fn: lockAcquire,
	})))
	lockClass.attrs.Set(vm.newString("release"), ObjValue(vm.allocObj(ObjKindNative, &ObjNative{
		name: "release", fn: lockRelease,
	})))
	lockClass.attrs.Set(vm.newString("__enter__"), ObjValue(vm.allocObj(ObjKindNative, &ObjNative{
		name: "__enter__", fn: lockEnter,
	})))
	lockClass.attrs.Set(vm.newString("__exit__"), ObjValue(vm.allocObj(ObjKindNative, &ObjNative{
		name: "__exit__", fn: lockExit,
	})))
	lockClass.finalize()
	vm.globals.Set(vm.newString("Lock"), ObjValue(lockObj))
}

func lockMutex(vm *VM, t *threadState, args []Value) (*ObjMutexData, error) {
	if len(args) == 0 {
		return nil, vm.runtimeErrorf(t, "TypeError", "expected a Lock instance")
	}
	inst, ok := asObjData(args[0]).(*ObjInstance)
	if !ok {
		return nil, vm.runtimeErrorf(t, "TypeError", "expected a Lock instance")
	}
	v, ok := inst.attrs.Get(hashableString(lockDataAttr))
	if !ok {
		return nil, vm.runtimeErrorf(t, "ThreadError", "lock is not initialized")
	}
	return v.AsObject().data.(*ObjMutexData), nil
}

// lockAcquire blocks the calling goroutine until the lock is held, releasing
// vm.execMu for the duration of the wait so other threads can keep running
// (otherwise two threads contending for the same Lock would deadlock: the
// first holds execMu forever waiting on a mutex only a second, execMu-less
// thread could ever release).
func lockAcquire(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	m, err := lockMutex(vm, t, args)
	if err != nil {
		return None, err
	}
	vm.execMu.Unlock()
	m.mu.Lock()
	vm.execMu.Lock()
	return None, nil
}

func lockRelease(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	m, err := lockMutex(vm, t, args)
	if err != nil {
		return None, err
	}
	m.mu.Unlock()
	return None, nil
}

func lockEnter(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if _, err := lockAcquire(vm, t, args, kwPairs); err != nil {
		return None, err
	}
	if len(args) == 0 {
		return None, nil
	}
	return args[0], nil
}

func lockExit(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	return lockRelease(vm, t, args, kwPairs)
}
