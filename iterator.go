package krk

// ObjIterator is the native iterator kind produced by iterating any builtin
// sequence (list, tuple, dict, set, string). It follows the same
// self-return-on-exhaustion convention as a user-defined iterator class:
// calling it yields the next element, and once exhausted it returns itself
// rather than raising, so INVOKE_NEXT can detect "done" with a plain
// identity check (the Open Question on iterator exhaustion was resolved in
// favor of preserving this convention verbatim rather than introducing a
// StopIteration-raising protocol).
type ObjIterator struct {
	items   []Value
	idx     int
	selfObj *Obj
}

func (it *ObjIterator) typeName() string { return "iterator" }
func (it *ObjIterator) repr() string     { return "<iterator>" }
func (it *ObjIterator) walkRefs(mark func(Value)) {
	for _, v := range it.items {
		mark(v)
	}
}

// newNativeIterator snapshots items (a container's contents at the moment
// iteration starts, matching Kuroko's "for x in y" semantics where mutating
// y mid-loop does not perturb the iteration) into a fresh ObjIterator.
func (vm *VM) newNativeIterator(items []Value) Value {
	it := &ObjIterator{items: items}
	o := vm.allocObj(ObjKindIterator, it)
	it.selfObj = o
	return ObjValue(o)
}

// getIterator resolves the INVOKE_ITER half of the for-loop protocol: every
// builtin container kind gets a native snapshot iterator; an ObjInstance
// defers to its __iter__ dunder if defined (§4.3).
func (vm *VM) getIterator(t *threadState, v Value) (Value, error) {
	if v.IsObject() {
		switch d := v.AsObject().data.(type) {
		case *ObjList:
			return vm.newNativeIterator(d.snapshotLocked()), nil
		case *ObjTuple:
			return vm.newNativeIterator(append([]Value(nil), d.items...)), nil
		case *ObjDict:
			return vm.newNativeIterator(d.items(vm)), nil
		case *ObjSet:
			var out []Value
			d.table.Each(func(k, _ Value) { out = append(out, k) })
			return vm.newNativeIterator(out), nil
		case *ObjString:
			out := make([]Value, 0, d.count)
			for i := 0; i < d.count; i++ {
				out = append(out, vm.newString(string(d.codepointAt(i))))
			}
			return vm.newNativeIterator(out), nil
		case *ObjIterator:
			return v, nil
		case *ObjGenerator:
			return v, nil // a generator is its own iterator
		case *ObjInstance:
			cd := d.classData()
			if dunder := cd.dunder(dunderIter); !dunder.IsNone() {
				return vm.call(t, dunder, []Value{v}, nil)
			}
		}
	}
	return None, vm.runtimeErrorf(t, "TypeError", "'%s' object is not iterable", v.TypeName())
}
