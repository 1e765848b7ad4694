package krk

// tupleMethods is a narrow slice of listMethods: tuples are immutable, so
// only the read-only query methods apply (§6.3).
var tupleMethods = map[string]methodFunc{
	"index": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		tup := recv.AsObject().data.(*ObjTuple)
		for i, v := range tup.items {
			if eq, err := vm.valuesEqual(t, v, args[0]); err != nil {
				return None, err
			} else if eq {
				return Int(int64(i)), nil
			}
		}
		return None, vm.runtimeErrorf(t, "ValueError", "value not in tuple")
	},
	"count": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		tup := recv.AsObject().data.(*ObjTuple)
		n := int64(0)
		for _, v := range tup.items {
			if eq, err := vm.valuesEqual(t, v, args[0]); err != nil {
				return None, err
			} else if eq {
				n++
			}
		}
		return Int(n), nil
	},
	"__getitem__": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		tup := recv.AsObject().data.(*ObjTuple)
		if sl, ok := asObjData(args[0]).(*ObjSlice); ok {
			start, stop, step, err := resolveSliceBounds(sl, len(tup.items))
			if err != nil {
				return None, vm.runtimeErrorf(t, "TypeError", "%v", err)
			}
			var out []Value
			if step > 0 {
				for i := start; i < stop; i += step {
					out = append(out, tup.items[i])
				}
			} else {
				for i := start; i > stop; i += step {
					out = append(out, tup.items[i])
				}
			}
			return vm.newTuple(out), nil
		}
		key := args[0]
		if !key.IsInt() {
			return None, vm.runtimeErrorf(t, "TypeError", "tuple indices must be integers, not '%s'", key.TypeName())
		}
		i := normalizeIndex(int(key.AsInt()), len(tup.items))
		if i < 0 || i >= len(tup.items) {
			return None, vm.runtimeErrorf(t, "IndexError", "tuple index out of range")
		}
		return tup.items[i], nil
	},
}

// setMethods backs the mutable set API (§6.3); set membership/iteration
// itself goes through getIterator and the VM's contains() helper.
var setMethods = map[string]methodFunc{
	"add": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		s := recv.AsObject().data.(*ObjSet)
		s.Add(args[0])
		return None, nil
	},
	"remove": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		s := recv.AsObject().data.(*ObjSet)
		if !s.Remove(args[0]) {
			return None, vm.runtimeErrorf(t, "KeyError", "%s", Repr(args[0]))
		}
		return None, nil
	},
	"discard": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		s := recv.AsObject().data.(*ObjSet)
		s.Remove(args[0])
		return None, nil
	},
	"clear": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		s := recv.AsObject().data.(*ObjSet)
		*s = ObjSet{}
		return None, nil
	},
	"copy": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		s := recv.AsObject().data.(*ObjSet)
		out := newSet()
		s.table.Each(func(k, _ Value) { out.Add(k) })
		return ObjValue(vm.allocObj(ObjKindSet, out)), nil
	},
	"union": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		s := recv.AsObject().data.(*ObjSet)
		out := newSet()
		s.table.Each(func(k, _ Value) { out.Add(k) })
		items, err := drain(vm, t, args[0])
		if err != nil {
			return None, err
		}
		for _, v := range items {
			out.Add(v)
		}
		return ObjValue(vm.allocObj(ObjKindSet, out)), nil
	},
	"intersection": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		s := recv.AsObject().data.(*ObjSet)
		items, err := drain(vm, t, args[0])
		if err != nil {
			return None, err
		}
		other := newSet()
		for _, v := range items {
			other.Add(v)
		}
		out := newSet()
		s.table.Each(func(k, _ Value) {
			if other.Contains(k) {
				out.Add(k)
			}
		})
		return ObjValue(vm.allocObj(ObjKindSet, out)), nil
	},
	"difference": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		s := recv.AsObject().data.(*ObjSet)
		items, err := drain(vm, t, args[0])
		if err != nil {
			return None, err
		}
		other := newSet()
		for _, v := range items {
			other.Add(v)
		}
		out := newSet()
		s.table.Each(func(k, _ Value) {
			if !other.Contains(k) {
				out.Add(k)
			}
		})
		return ObjValue(vm.allocObj(ObjKindSet, out)), nil
	},
}
