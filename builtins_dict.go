package krk

// dictMethods mirrors listMethods for dict (§6.3), built on Table's
// insertion-ordered storage.
var dictMethods = map[string]methodFunc{
	"get": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		if len(args) == 0 {
			return None, vm.runtimeErrorf(t, "TypeError", "get() takes at least one argument")
		}
		if v, ok := d.table.Get(args[0]); ok {
			return v, nil
		}
		if len(args) > 1 {
			return args[1], nil
		}
		return None, nil
	},
	"keys": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		return vm.newNativeIterator(d.table.Keys()), nil
	},
	"values": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		var out []Value
		d.table.Each(func(_, v Value) { out = append(out, v) })
		return vm.newNativeIterator(out), nil
	},
	"items": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		return vm.newNativeIterator(d.items(vm)), nil
	},
	"pop": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		if len(args) == 0 {
			return None, vm.runtimeErrorf(t, "TypeError", "pop() takes at least one argument")
		}
		if v, ok := d.table.Get(args[0]); ok {
			d.table.Delete(args[0])
			return v, nil
		}
		if len(args) > 1 {
			return args[1], nil
		}
		return None, vm.runtimeErrorf(t, "KeyError", "%s", Repr(args[0]))
	},
	"update": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		if len(args) > 0 {
			other, ok := asObjData(args[0]).(*ObjDict)
			if !ok {
				return None, vm.runtimeErrorf(t, "TypeError", "update() argument must be a dict")
			}
			other.table.Each(func(k, v Value) { d.table.Set(k, v) })
		}
		for i := 0; i+1 < len(kw); i += 2 {
			d.table.Set(kw[i], kw[i+1])
		}
		return None, nil
	},
	"clear": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		*d = ObjDict{}
		return None, nil
	},
	"copy": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		out := newDict()
		d.table.Each(func(k, v Value) { out.table.Set(k, v) })
		return ObjValue(vm.allocObj(ObjKindDict, out)), nil
	},
	"__getitem__": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		if v, ok := d.table.Get(args[0]); ok {
			return v, nil
		}
		return None, vm.runtimeErrorf(t, "KeyError", "%s", Repr(args[0]))
	},
	"__setitem__": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		d.table.Set(args[0], args[1])
		return None, nil
	},
	"__delitem__": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		d := recv.AsObject().data.(*ObjDict)
		if _, ok := d.table.Get(args[0]); !ok {
			return None, vm.runtimeErrorf(t, "KeyError", "%s", Repr(args[0]))
		}
		d.table.Delete(args[0])
		return None, nil
	},
}
