package krk

// ObjGenerator is a suspended, resumable function body (§3.2 CodeObject
// flags "is-generator, is-coroutine"; §4.2 "Generators/coroutines"; §9
// "Generators and coroutines"). Calling the generator function does not run
// any of its body; it only binds arguments into a private threadState and
// returns this wrapper. Each subsequent call resumes that private thread
// from wherever OP_YIELD last suspended it, running until the next yield or
// until the body falls off the end.
//
// A generator is its own iterator (getIterator, below) and follows the same
// self-return-on-exhaustion convention as every other Kuroko iterator
// (iterator.go): once its body has returned, every further call returns the
// generator object itself rather than raising, so a `for` loop's
// `next IS loopIter` exhaustion check works identically whether the
// underlying iterable was a list, a user `__iter__` class, or a generator.
type ObjGenerator struct {
	closure    *ObjClosure
	closureObj *Obj // wraps closure, mirroring CallFrame.closureObj so walkRefs can root it
	thread     *threadState
	done       bool
	selfObj    *Obj
}

func (g *ObjGenerator) typeName() string { return "generator" }
func (g *ObjGenerator) repr() string     { return "<generator " + g.closure.code.qualifiedName + ">" }

// walkRefs marks the generator's own private stack, frame, and open
// upvalues as live — this is what keeps a suspended generator's captured
// locals alive across a GC cycle even though its thread is never registered
// in vm.threads (§5.3 "roots"). It mirrors collectGarbage's per-thread root
// walk exactly, including that walk's choice to mark each frame's closure
// wrapper (closureObj) rather than only the code object behind it.
func (g *ObjGenerator) walkRefs(mark func(Value)) {
	mark(ObjValue(g.closureObj))
	for _, v := range g.thread.stack {
		mark(v)
	}
	for _, f := range g.thread.frames {
		mark(ObjValue(f.closureObj))
		for _, h := range f.handlers {
			mark(h)
		}
	}
	for uo := g.thread.openUpvalues; uo != nil; {
		mark(ObjValue(uo))
		uo = uo.data.(*ObjUpvalue).nextObj
	}
}

// makeGenerator binds args/kwPairs the same way callClosure would, but
// instead of running the body immediately it parks a fresh CallFrame on a
// brand-new private threadState and hands back the wrapper object. The
// private thread is deliberately never appended to vm.threads: it is not a
// schedulable §5 "parallel thread", just heap-allocated frame storage kept
// alive by whatever references the generator object (§9 "model the frame
// itself as heap-allocated rather than stack-allocated").
func (vm *VM) makeGenerator(t *threadState, closureObj *Obj, closure *ObjClosure, args []Value, kwPairs []Value) (Value, error) {
	locals, err := bindArguments(vm, t, closure.code, args, kwPairs)
	if err != nil {
		return None, err
	}
	gt := newThreadState(vm, -1)
	gt.stack = append(gt.stack, locals...)
	gt.frames = append(gt.frames, CallFrame{closure: closure, closureObj: closureObj, base: 0})
	gen := &ObjGenerator{closure: closure, closureObj: closureObj, thread: gt}
	genObj := vm.allocObj(ObjKindGenerator, gen)
	gen.selfObj = genObj
	return ObjValue(genObj), nil
}

// resumeGenerator implements calling a generator object: run its private
// thread forward until the next OP_YIELD or until its body returns. A
// generator that has already run to completion (or one whose resumption
// itself raised) is permanently done and, per the iterator-exhaustion
// sentinel convention, returns itself on every further call instead of
// erroring.
func (vm *VM) resumeGenerator(gen *ObjGenerator) (Value, error) {
	if gen.done {
		return ObjValue(gen.selfObj), nil
	}
	gt := gen.thread
	if err := vm.runUntil(gt, 0); err != nil {
		gen.done = true
		return None, err
	}
	if gt.yielded {
		gt.yielded = false
		return gt.yieldValue, nil
	}
	gen.done = true
	return ObjValue(gen.selfObj), nil
}

// awaitValue implements OP_AWAIT. Kuroko's core has no event loop (§1
// Non-goals rule out anything beyond the language core), so `await expr` is
// given the simplest semantics consistent with §3.2's is-coroutine flag:
// a generator/coroutine is driven to exhaustion on the spot, synchronously,
// and the last value it yielded (or None, if it never yielded) is the
// expression's result. A non-generator value passes through unchanged,
// so `await` on an already-resolved value is a no-op, matching how a
// coroutine with no yields behaves like a plain function call.
func (vm *VM) awaitValue(t *threadState, v Value) (Value, error) {
	gen, ok := asObjData(v).(*ObjGenerator)
	if !ok {
		return v, nil
	}
	last := None
	for {
		result, err := vm.resumeGenerator(gen)
		if err != nil {
			return None, err
		}
		if Is(result, v) {
			return last, nil
		}
		last = result
	}
}
