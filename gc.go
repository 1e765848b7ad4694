package krk

// collectGarbage runs one full tracing mark-sweep cycle: mark every object
// reachable from a root, then sweep the all-objects list, freeing anything
// left unmarked (§5.3).
//
// Roots are: every live thread's operand stack, frames and open-upvalues
// list, the global/module namespace tables, and the in-progress compiler
// chain (so a CodeObject under construction is not
// swept out from under a pathological deeply-nested compile-time
// allocation). The interned-string table is not a root: an unreachable
// string is swept like any other object and its intern entry removed.
func (vm *VM) collectGarbage() {
	if vm.gcPaused > 0 {
		return
	}
	var gray []*Obj

	mark := func(v Value) {
		if !v.IsObject() {
			return
		}
		o := v.AsObject()
		if o == nil || o.flags&flagMarked != 0 {
			return
		}
		o.flags |= flagMarked
		gray = append(gray, o)
	}

	vm.globals.Each(func(_, v Value) { mark(v) })
	vm.modules.Each(func(_, v Value) { mark(v) })

	for _, t := range vm.threads {
		for _, v := range t.stack {
			mark(v)
		}
		for _, f := range t.frames {
			// Mark the closure's own wrapper, not just its code object: a
			// closure with no other live reference (e.g. one popped off the
			// stack to be called, per CALL's callee := t.pop()) is rooted
			// for the duration of its own body only through the running
			// frame that holds it (§5.3 "roots", §8 invariant 5). walkRefs
			// reaches codeObj/upvalues/attrs transitively from here.
			mark(ObjValue(f.closureObj))
			for _, h := range f.handlers {
				mark(h)
			}
		}
		if t.hasException {
			mark(t.currentException)
		}
		for uo := t.openUpvalues; uo != nil; {
			mark(ObjValue(uo))
			uo = uo.data.(*ObjUpvalue).nextObj
		}
	}

	for c := vm.compilerChain; c != nil; c = c.next {
		for _, v := range c.code.chunk.constants {
			mark(v)
		}
	}

	for len(gray) > 0 {
		o := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		if s, ok := o.data.(scannerObj); ok {
			s.walkRefs(mark)
		}
	}

	// Sweep: walk the intrusive all-objects list. An unmarked, non-immortal
	// object survives once by gaining the second-chance flag; only an
	// object that arrives at sweep unmarked *and* already carrying
	// second-chance is actually unlinked and freed (§4.5 "second-chance
	// survival"). Strings get pruned from the intern table in the same
	// pass a string is actually freed, so a collected string cannot leak a
	// stale entry while a merely-demoted one keeps its intern slot.
	var kept *Obj
	var prevKept *Obj
	for o := vm.allObjects; o != nil; {
		next := o.next
		switch {
		case o.flags&flagMarked != 0:
			o.flags &^= flagMarked
			o.flags &^= flagSecondChance
		case o.flags&flagImmortal != 0:
			// never swept
		case o.flags&flagSecondChance == 0:
			o.flags |= flagSecondChance
		default:
			if s, ok := o.data.(*ObjString); ok {
				delete(vm.strings, s.chars)
			}
			vm.bytesAllocated -= estimateSize(o.kind)
			o = next
			continue
		}
		if prevKept == nil {
			kept = o
		} else {
			prevKept.next = o
		}
		prevKept = o
		o = next
	}
	if prevKept != nil {
		prevKept.next = nil
	}
	vm.allObjects = kept

	if vm.bytesAllocated*2 > vm.bytesAllocated+64<<20 {
		vm.nextGC = vm.bytesAllocated + 64<<20
	} else {
		vm.nextGC = vm.bytesAllocated * 2
	}
}

// PauseGC and ResumeGC let embedders bracket a region of code that must not
// be interrupted by a collection (§6.4); calls nest.
func (vm *VM) PauseGC()  { vm.gcPaused++ }
func (vm *VM) ResumeGC() { vm.gcPaused-- }
