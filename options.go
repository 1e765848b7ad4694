package krk

import (
	"io"

	"github.com/kuroko-lang/krk/internal/flushio"
)

// VMOption configures a VM at construction time (§6.4 "init_vm"), following
// the functional-options pattern.
type VMOption func(*VM)

// WithStdout overrides the VM's print()/write() destination.
func WithStdout(w io.Writer) VMOption {
	return func(vm *VM) { vm.stdout = flushio.NewWriteFlusher(w) }
}

// WithStderr overrides the VM's traceback/error destination.
func WithStderr(w io.Writer) VMOption {
	return func(vm *VM) { vm.stderr = flushio.NewWriteFlusher(w) }
}

// WithStdin sets the VM's stdin source. No built-in function reads from it.
func WithStdin(r io.Reader) VMOption {
	return func(vm *VM) { vm.stdin = r }
}

// WithGCStress forces a full collection on every single allocation, a
// debugging aid for shaking out missed roots (§5.3).
func WithGCStress(stress bool) VMOption {
	return func(vm *VM) { vm.gcStress = stress }
}

// WithFrameLimit caps call-stack depth, guarding against runaway recursion
// overrunning the Go stack (§4.2).
func WithFrameLimit(n int) VMOption {
	return func(vm *VM) { vm.frameMax = n }
}

// WithMemoryLimit caps total bytes the GC will let the heap grow to before
// raising rather than collecting further (§6.4 embedding knob); 0 disables
// the limit.
func WithMemoryLimit(n int64) VMOption {
	return func(vm *VM) { vm.memLimit = n }
}

// WithDebugHook installs a single-step callback invoked before each
// instruction, the embedding API's debug interface (§6.4).
func WithDebugHook(fn func(vm *VM, event DebugEvent)) VMOption {
	return func(vm *VM) { vm.debugHook = fn }
}
