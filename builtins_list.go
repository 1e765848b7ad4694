package krk

// methodFunc is a built-in container method, bound to its receiver the same
// way ObjBoundMethod binds a user closure (§4.3 "Attribute access").
type methodFunc func(vm *VM, t *threadState, recv Value, args []Value, kwPairs []Value) (Value, error)

// lookupBuiltinMethod resolves name against the method table for kind,
// falling back across builtins_list.go/builtins_dict.go/builtins_tuple.go/
// builtins_str.go's per-kind tables.
func lookupBuiltinMethod(kind ObjKind, name string) (methodFunc, bool) {
	var table map[string]methodFunc
	switch kind {
	case ObjKindList:
		table = listMethods
	case ObjKindDict:
		table = dictMethods
	case ObjKindSet:
		table = setMethods
	case ObjKindTuple:
		table = tupleMethods
	case ObjKindString:
		table = stringMethods
	default:
		return nil, false
	}
	mf, ok := table[name]
	return mf, ok
}

func normalizeIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	return i
}

var listMethods = map[string]methodFunc{
	"append": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		for _, a := range args {
			l.Append(a)
		}
		return None, nil
	},
	"extend": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		items, err := drain(vm, t, args[0])
		if err != nil {
			return None, err
		}
		l.Extend(items)
		return None, nil
	},
	"insert": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		if len(args) != 2 || !args[0].IsInt() {
			return None, vm.runtimeErrorf(t, "TypeError", "insert() takes an index and a value")
		}
		l.Insert(normalizeIndex(int(args[0].AsInt()), l.Len()), args[1])
		return None, nil
	},
	"pop": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		if l.Len() == 0 {
			return None, vm.runtimeErrorf(t, "IndexError", "pop from empty list")
		}
		if len(args) == 1 {
			if !args[0].IsInt() {
				return None, vm.runtimeErrorf(t, "TypeError", "pop() index must be an int")
			}
			i := normalizeIndex(int(args[0].AsInt()), l.Len())
			if i < 0 || i >= l.Len() {
				return None, vm.runtimeErrorf(t, "IndexError", "pop index out of range")
			}
			return l.Delete(i), nil
		}
		return l.Pop(), nil
	},
	"remove": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		for i, v := range l.snapshotLocked() {
			if eq, err := vm.valuesEqual(t, v, args[0]); err != nil {
				return None, err
			} else if eq {
				l.Delete(i)
				return None, nil
			}
		}
		return None, vm.runtimeErrorf(t, "ValueError", "list.remove(x): x not in list")
	},
	"index": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		for i, v := range l.snapshotLocked() {
			if eq, err := vm.valuesEqual(t, v, args[0]); err != nil {
				return None, err
			} else if eq {
				return Int(int64(i)), nil
			}
		}
		return None, vm.runtimeErrorf(t, "ValueError", "value not in list")
	},
	"count": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		n := int64(0)
		for _, v := range l.snapshotLocked() {
			if eq, err := vm.valuesEqual(t, v, args[0]); err != nil {
				return None, err
			} else if eq {
				n++
			}
		}
		return Int(n), nil
	},
	"sort": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		var key Value
		reverse := false
		for i := 0; i+1 < len(kw); i += 2 {
			switch Str(kw[i]) {
			case "key":
				key = kw[i+1]
			case "reverse":
				reverse = kw[i+1].Truthy()
			}
		}
		var sortErr error
		l.Sort(func(a, b Value) bool {
			if sortErr != nil {
				return false
			}
			av, bv := a, b
			if !key.IsNone() {
				var err error
				av, err = vm.call(t, key, []Value{a}, nil)
				if err != nil {
					sortErr = err
					return false
				}
				bv, err = vm.call(t, key, []Value{b}, nil)
				if err != nil {
					sortErr = err
					return false
				}
			}
			res, err := vm.compare(t, OpLess, av, bv)
			if err != nil {
				sortErr = err
				return false
			}
			if reverse {
				return !res.Truthy()
			}
			return res.Truthy()
		})
		return None, sortErr
	},
	"reverse": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		items := l.snapshotLocked()
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		for i, v := range items {
			l.Set(i, v)
		}
		return None, nil
	},
	"clear": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		for l.Len() > 0 {
			l.Pop()
		}
		return None, nil
	},
	"copy": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		l := recv.AsObject().data.(*ObjList)
		return vm.newList(l.snapshotLocked()), nil
	},
	"__getitem__": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		return listGetItem(vm, t, recv.AsObject().data.(*ObjList), args[0])
	},
	"__setitem__": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		return None, listSetItem(vm, t, recv.AsObject().data.(*ObjList), args[0], args[1])
	},
}

func listGetItem(vm *VM, t *threadState, l *ObjList, key Value) (Value, error) {
	if sl, ok := asObjData(key).(*ObjSlice); ok {
		start, stop, step, err := resolveSliceBounds(sl, l.Len())
		if err != nil {
			return None, vm.runtimeErrorf(t, "TypeError", "%v", err)
		}
		var out []Value
		if step > 0 {
			for i := start; i < stop; i += step {
				out = append(out, l.Get(i))
			}
		} else {
			for i := start; i > stop; i += step {
				out = append(out, l.Get(i))
			}
		}
		return vm.newList(out), nil
	}
	if !key.IsInt() {
		return None, vm.runtimeErrorf(t, "TypeError", "list indices must be integers, not '%s'", key.TypeName())
	}
	i := normalizeIndex(int(key.AsInt()), l.Len())
	if i < 0 || i >= l.Len() {
		return None, vm.runtimeErrorf(t, "IndexError", "list index out of range")
	}
	return l.Get(i), nil
}

func listSetItem(vm *VM, t *threadState, l *ObjList, key, value Value) error {
	if sl, ok := asObjData(key).(*ObjSlice); ok {
		start, stop, step, err := resolveSliceBounds(sl, l.Len())
		if err != nil {
			return vm.runtimeErrorf(t, "TypeError", "%v", err)
		}
		items, err := drain(vm, t, value)
		if err != nil {
			return err
		}
		if step != 1 {
			return vm.runtimeErrorf(t, "TypeError", "extended slice assignment requires a matching-length sequence")
		}
		if start > stop {
			stop = start
		}
		for i := stop - 1; i >= start; i-- {
			l.Delete(i)
		}
		for i, v := range items {
			l.Insert(start+i, v)
		}
		return nil
	}
	if !key.IsInt() {
		return vm.runtimeErrorf(t, "TypeError", "list indices must be integers, not '%s'", key.TypeName())
	}
	i := normalizeIndex(int(key.AsInt()), l.Len())
	if i < 0 || i >= l.Len() {
		return vm.runtimeErrorf(t, "IndexError", "list assignment index out of range")
	}
	l.Set(i, value)
	return nil
}
