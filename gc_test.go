package krk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// survives reports whether o is still linked into vm's all-objects list.
func survives(vm *VM, o *Obj) bool {
	for p := vm.allObjects; p != nil; p = p.next {
		if p == o {
			return true
		}
	}
	return false
}

func TestGCSweepsUnreachableObject(t *testing.T) {
	vm := NewVM()
	list := vm.newList([]Value{Int(1), Int(2)})
	obj := list.AsObject()
	require.True(t, survives(vm, obj))

	// second-chance: the first sweep after an object becomes unreachable
	// only demotes it, it does not free it yet.
	vm.collectGarbage()
	require.True(t, survives(vm, obj), "object should survive its first unmarked sweep")

	vm.collectGarbage()
	require.False(t, survives(vm, obj), "object should be freed on its second unmarked sweep")
}

func TestGCRootsKeepThreadStackAlive(t *testing.T) {
	vm := NewVM()
	th := newThreadState(vm, 0)
	vm.threads = append(vm.threads, th)

	tup := vm.newTuple([]Value{Int(1)})
	th.push(tup)
	obj := tup.AsObject()

	vm.collectGarbage()
	vm.collectGarbage()
	require.True(t, survives(vm, obj), "a value on a live thread's stack is a GC root")

	th.pop()
	vm.collectGarbage()
	vm.collectGarbage()
	require.False(t, survives(vm, obj), "popped value should no longer be reachable")
}

func TestGCRootsKeepGlobalsAlive(t *testing.T) {
	vm := NewVM()
	d := vm.newDict()
	vm.globals.Set(vm.newString("g"), d)
	obj := d.AsObject()

	vm.collectGarbage()
	vm.collectGarbage()
	require.True(t, survives(vm, obj), "a value reachable from globals is a GC root")
}

func TestPauseGCSuppressesCollection(t *testing.T) {
	vm := NewVM()
	tup := vm.newTuple(nil)
	obj := tup.AsObject()

	vm.PauseGC()
	vm.collectGarbage()
	vm.collectGarbage()
	require.True(t, survives(vm, obj), "collectGarbage must be a no-op while paused")
	vm.ResumeGC()

	vm.collectGarbage()
	vm.collectGarbage()
	require.False(t, survives(vm, obj))
}

// TestGCRootsExecutingClosureWithNoOtherReference reproduces the scenario
// where a closure is popped entirely off the operand stack to be called
// (OpCall's callee := t.pop()) and held alive by nothing else — a returned
// closure called immediately, e.g. make_adder(3)(4) — for the duration of
// its own body. Before CallFrame carried closureObj, collectGarbage only
// marked f.closure.codeObj, never the closure's own wrapper, so two
// consecutive GC sweeps mid-body would have swept it (§5.3 "roots", §8
// invariant 5).
func TestGCRootsExecutingClosureWithNoOtherReference(t *testing.T) {
	vm := NewVM()
	var probedObj *Obj
	var survivedBothSweeps bool
	DefineNative(vm, "probe", func(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
		probedObj = t.frame().closureObj
		vm.collectGarbage()
		vm.collectGarbage()
		survivedBothSweeps = survives(vm, probedObj)
		return None, nil
	})

	_, err := Interpret(vm, strings.Join([]string{
		"def make_adder(x):",
		"    def adder(y):",
		"        probe()",
		"        return x + y",
		"    return adder",
		"make_adder(3)(4)",
		"",
	}, "\n"), "<test>")
	require.NoError(t, err)
	require.NotNil(t, probedObj)
	require.True(t, survivedBothSweeps, "a closure executing its own body must remain a GC root even with no other live reference")
}

func TestInternedStringPrunedWhenCollected(t *testing.T) {
	vm := NewVM()
	vm.newString("throwaway")
	_, ok := vm.strings["throwaway"]
	require.True(t, ok)

	vm.collectGarbage()
	vm.collectGarbage()
	_, ok = vm.strings["throwaway"]
	require.False(t, ok, "a collected string must be pruned from the intern table")
}
