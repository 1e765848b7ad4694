package krk

// call is the single call protocol every callable kind funnels through:
// CALL/CALL_METHOD, operator dunder dispatch, iterator protocol, __init__,
// __repr__/__str__ formatting, and any other place the VM must invoke a
// Kuroko value as a function (§4.3 "callValue").
//
// For a closure this pushes a fresh CallFrame and runs a nested dispatch
// loop to completion before returning, so that call() itself is always a
// synchronous, stack-balanced operation regardless of the callee's kind —
// at the cost of one Go stack frame per Kuroko call depth, bounded by
// vm.frameMax.
func (vm *VM) call(t *threadState, callee Value, args []Value, kwPairs []Value) (Value, error) {
	if !callee.IsObject() {
		return None, vm.runtimeErrorf(t, "TypeError", "'%s' object is not callable", callee.TypeName())
	}
	obj := callee.AsObject()
	switch d := obj.data.(type) {
	case *ObjNative:
		return d.fn(vm, t, args, kwPairs)
	case *ObjClosure:
		return vm.callClosure(t, obj, d, args, kwPairs)
	case *ObjBoundMethod:
		full := make([]Value, 0, len(args)+1)
		full = append(full, d.receiver)
		full = append(full, args...)
		return vm.call(t, d.method, full, kwPairs)
	case *ObjClass:
		return vm.instantiate(t, obj, d, args, kwPairs)
	case *ObjIterator:
		if d.idx >= len(d.items) {
			return ObjValue(obj), nil // exhausted: self-return sentinel
		}
		v := d.items[d.idx]
		d.idx++
		return v, nil
	case *ObjGenerator:
		return vm.resumeGenerator(d)
	case *ObjInstance:
		cd := d.classData()
		if dunder := cd.dunder(dunderCall); !dunder.IsNone() {
			bound := ObjValue(vm.allocObj(ObjKindBoundMethod, &ObjBoundMethod{receiver: callee, method: dunder}))
			return vm.call(t, bound, args, kwPairs)
		}
		return None, vm.runtimeErrorf(t, "TypeError", "'%s' object is not callable", d.typeName())
	default:
		return None, vm.runtimeErrorf(t, "TypeError", "'%s' object is not callable", callee.TypeName())
	}
}

// callClosure binds args/kwPairs into the callee's local-slot layout, pushes
// a CallFrame, and runs it to completion (§4.5 argument binding). closureObj
// is the *Obj wrapping closure itself, stored on the pushed CallFrame so the
// GC can root a closure that is executing its own body with no other live
// reference to it (§5.3 "roots").
func (vm *VM) callClosure(t *threadState, closureObj *Obj, closure *ObjClosure, args []Value, kwPairs []Value) (Value, error) {
	if closure.code.isGenerator {
		return vm.makeGenerator(t, closureObj, closure, args, kwPairs)
	}
	if len(t.frames) >= vm.frameMax {
		return None, vm.runtimeErrorf(t, "RecursionError", "maximum recursion depth exceeded")
	}
	locals, err := bindArguments(vm, t, closure.code, args, kwPairs)
	if err != nil {
		return None, err
	}
	base := len(t.stack)
	t.stack = append(t.stack, locals...)
	depth := len(t.frames)
	t.frames = append(t.frames, CallFrame{closure: closure, closureObj: closureObj, base: base})
	if err := vm.runUntil(t, depth); err != nil {
		return None, err
	}
	return t.pop(), nil
}

// instantiate implements class-call semantics: allocate an ObjInstance, then
// (if the class or a base defines __init__) call it with the new instance
// as the implicit receiver, discarding its return value, matching the
// constructor-call convention (§4.3 "Class instantiation").
func (vm *VM) instantiate(t *threadState, classObj *Obj, class *ObjClass, args []Value, kwPairs []Value) (Value, error) {
	inst := &ObjInstance{class: classObj}
	io := vm.allocObj(ObjKindInstance, inst)
	if init := class.dunder(dunderInit); !init.IsNone() {
		if _, err := vm.call(t, init, append([]Value{ObjValue(io)}, args...), kwPairs); err != nil {
			return None, err
		}
	}
	if class.finalizer != nil {
		class.finalizer(vm, inst)
	}
	return ObjValue(io), nil
}

// bindArguments maps a call's positional arguments and flattened keyword
// pairs onto code's declared parameter list, applying defaults and
// collecting overflow into *args/**kwargs, and returns the resulting local
// slots in the order newCompiler laid them out: [receiver-or-placeholder,
// positional params..., kwonly params..., *args?, **kwargs?] (§4.5).
func bindArguments(vm *VM, t *threadState, code *ObjCode, positional []Value, kwPairs []Value) ([]Value, error) {
	isMethod := code.kind == FuncMethod || code.kind == FuncInit
	args := positional
	var self Value
	if isMethod {
		if len(args) == 0 {
			return nil, vm.runtimeErrorf(t, "TypeError", "%s() missing receiver", code.name)
		}
		self = args[0]
		args = args[1:]
	}

	nParams := len(code.argNames)
	values := make([]Value, nParams)
	filled := make([]bool, nParams)

	nPos := len(args)
	if nPos > nParams && !code.collectsArgs {
		return nil, vm.runtimeErrorf(t, "TypeError", "%s() takes at most %d positional arguments (%d given)", code.name, nParams, nPos)
	}
	fillCount := nPos
	if fillCount > nParams {
		fillCount = nParams
	}
	for i := 0; i < fillCount; i++ {
		values[i] = args[i]
		filled[i] = true
	}
	var varargs []Value
	if nPos > nParams {
		varargs = append(varargs, args[nParams:]...)
	}

	kwValues := make([]Value, len(code.kwonlyNames))
	kwFilled := make([]bool, len(code.kwonlyNames))
	var extraKwargs []Value
	for i := 0; i+1 < len(kwPairs); i += 2 {
		key, val := kwPairs[i], kwPairs[i+1]
		name := Str(key)
		matched := false
		for pi, pname := range code.argNames {
			if pname == name {
				if filled[pi] {
					return nil, vm.runtimeErrorf(t, "TypeError", "%s() got multiple values for argument '%s'", code.name, name)
				}
				values[pi] = val
				filled[pi] = true
				matched = true
				break
			}
		}
		if !matched {
			for ki, kname := range code.kwonlyNames {
				if kname == name {
					kwValues[ki] = val
					kwFilled[ki] = true
					matched = true
					break
				}
			}
		}
		if !matched {
			if !code.collectsKwargs {
				return nil, vm.runtimeErrorf(t, "TypeError", "%s() got an unexpected keyword argument '%s'", code.name, name)
			}
			extraKwargs = append(extraKwargs, key, val)
		}
	}

	for i := 0; i < nParams; i++ {
		if filled[i] {
			continue
		}
		di := i - code.requiredArgCount
		if di < 0 || di >= len(code.argDefaults) {
			return nil, vm.runtimeErrorf(t, "TypeError", "%s() missing required argument '%s'", code.name, code.argNames[i])
		}
		values[i] = code.argDefaults[di]
	}
	for i := range code.kwonlyNames {
		if kwFilled[i] {
			continue
		}
		if i >= len(code.kwonlyDefaults) {
			return nil, vm.runtimeErrorf(t, "TypeError", "%s() missing required keyword-only argument '%s'", code.name, code.kwonlyNames[i])
		}
		kwValues[i] = code.kwonlyDefaults[i]
	}

	out := make([]Value, 0, 2+nParams+len(code.kwonlyNames))
	if isMethod {
		out = append(out, self)
	} else {
		out = append(out, None)
	}
	out = append(out, values...)
	out = append(out, kwValues...)
	if code.collectsArgs {
		out = append(out, vm.newList(varargs))
	}
	if code.collectsKwargs {
		d := newDict()
		for i := 0; i+1 < len(extraKwargs); i += 2 {
			d.table.Set(extraKwargs[i], extraKwargs[i+1])
		}
		out = append(out, ObjValue(vm.allocObj(ObjKindDict, d)))
	}
	return out, nil
}

// captureUpvalue returns an open upvalue for the given stack slot on t,
// reusing an existing one if the frame already captured that slot, and
// otherwise allocating and threading a new one onto t.openUpvalues in
// descending-index order (§3.3 invariant 3).
func (vm *VM) captureUpvalue(t *threadState, slot int) *Obj {
	var prev *Obj
	cur := t.openUpvalues
	for cur != nil {
		uv := cur.data.(*ObjUpvalue)
		if uv.location == slot {
			return cur
		}
		if uv.location < slot {
			break
		}
		prev = cur
		cur = uv.nextObj
	}
	created := vm.allocObj(ObjKindUpvalue, &ObjUpvalue{thread: t, location: slot})
	created.data.(*ObjUpvalue).nextObj = cur
	if prev == nil {
		t.openUpvalues = created
	} else {
		prev.data.(*ObjUpvalue).nextObj = created
	}
	return created
}

// closeUpvalues closes every open upvalue referencing a stack slot >= from,
// copying its value off the stack before the slot is discarded (OP_RETURN,
// OP_CLOSE_UPVALUE, end of scope).
func (t *threadState) closeUpvalues(from int) {
	for t.openUpvalues != nil {
		uv := t.openUpvalues.data.(*ObjUpvalue)
		if uv.location < from {
			break
		}
		uv.close()
		t.openUpvalues = uv.nextObj
	}
}

// getProperty implements attribute read (GET_PROPERTY and the receiver half
// of CALL_METHOD): instance attrs first, then class method-table lookup
// (binding a found closure/native as a BoundMethod, or invoking __get__ if
// the found value is itself an instance of a descriptor class), falling
// back to __getattr__ if defined (§4.3 "Attribute access").
func (vm *VM) getProperty(t *threadState, receiver Value, name string) (Value, error) {
	if !receiver.IsObject() {
		return None, vm.runtimeErrorf(t, "AttributeError", "'%s' object has no attribute '%s'", receiver.TypeName(), name)
	}
	key := hashableString(name)
	switch d := receiver.AsObject().data.(type) {
	case *ObjInstance:
		if v, ok := d.attrs.Get(key); ok {
			return v, nil
		}
		cd := d.classData()
		if v, ok := cd.attrs.Get(key); ok {
			if descInst, ok := asObjData(v).(*ObjInstance); ok {
				if get := descInst.classData().dunder(dunderGet); !get.IsNone() {
					return vm.call(t, get, []Value{v, receiver, ObjValue(d.class)}, nil)
				}
			}
			return bindIfCallable(vm, receiver, v), nil
		}
		if ga := cd.dunder(dunderGetAttr); !ga.IsNone() {
			return vm.call(t, ga, []Value{receiver, vm.newString(name)}, nil)
		}
		return None, vm.runtimeErrorf(t, "AttributeError", "'%s' object has no attribute '%s'", d.typeName(), name)
	case *ObjClass:
		if v, ok := d.attrs.Get(key); ok {
			return v, nil
		}
		return None, vm.runtimeErrorf(t, "AttributeError", "class '%s' has no attribute '%s'", d.name, name)
	case *ObjClosure:
		if v, ok := d.attrs.Get(key); ok {
			return v, nil
		}
	case *ObjDict:
		// A module namespace is a plain dict (RegisterModule/__import__):
		// `from mod import x` compiles to a GET_PROPERTY on the imported
		// dict value, so a member lookup must check the dict's own entries
		// before falling through to dict's builtin methods below.
		if v, ok := d.table.Get(key); ok {
			return v, nil
		}
	}
	if mf, ok := lookupBuiltinMethod(receiver.AsObject().kind, name); ok {
		return vm.bindBuiltinMethod(receiver, mf), nil
	}
	return None, vm.runtimeErrorf(t, "AttributeError", "'%s' object has no attribute '%s'", receiver.TypeName(), name)
}

// bindBuiltinMethod adapts a methodFunc (builtins_list.go/builtins_dict.go/
// builtins_tuple.go/builtins_str.go) into an ordinary callable bound to recv,
// the same way bindIfCallable binds a user closure — so a.append is exactly
// as callable as a user-defined a.method.
func (vm *VM) bindBuiltinMethod(recv Value, mf methodFunc) Value {
	native := &ObjNative{name: "builtin-method", fn: func(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
		return mf(vm, t, recv, args, kwPairs)
	}}
	return ObjValue(vm.allocObj(ObjKindNative, native))
}

// bindIfCallable wraps a class-attribute lookup result in a BoundMethod when
// it is itself callable (a closure or native), matching Python-style method
// binding; plain data attributes pass through unchanged.
func bindIfCallable(vm *VM, receiver Value, v Value) Value {
	if !v.IsObject() {
		return v
	}
	switch v.AsObject().data.(type) {
	case *ObjClosure, *ObjNative:
		return ObjValue(vm.allocObj(ObjKindBoundMethod, &ObjBoundMethod{receiver: receiver, method: v}))
	default:
		return v
	}
}

// setProperty implements attribute write (SET_PROPERTY): a class attribute
// that is itself a descriptor (an instance whose class defines __set__)
// takes priority over the instance's own attrs, then falls back to
// __setattr__ when the class defines it.
func (vm *VM) setProperty(t *threadState, receiver Value, name string, value Value) error {
	if !receiver.IsObject() {
		return vm.runtimeErrorf(t, "AttributeError", "'%s' object has no attribute '%s'", receiver.TypeName(), name)
	}
	inst, ok := receiver.AsObject().data.(*ObjInstance)
	if !ok {
		return vm.runtimeErrorf(t, "AttributeError", "'%s' object has no attribute '%s'", receiver.TypeName(), name)
	}
	cd := inst.classData()
	key := hashableString(name)
	if cv, ok := cd.attrs.Get(key); ok {
		if descInst, ok := asObjData(cv).(*ObjInstance); ok {
			if set := descInst.classData().dunder(dunderSet); !set.IsNone() {
				_, err := vm.call(t, set, []Value{cv, receiver, value}, nil)
				return err
			}
		}
	}
	if sa := cd.dunder(dunderSetAttr); !sa.IsNone() {
		_, err := vm.call(t, sa, []Value{receiver, vm.newString(name), value}, nil)
		return err
	}
	inst.attrs.Set(key, value)
	return nil
}

// getSuper resolves name starting from class base's method table, the
// runtime behavior of GET_SUPER (no MRO walk beyond the single base link,
// per the Non-goal ruling out C3 linearization).
func (vm *VM) getSuper(t *threadState, receiver Value, base *Obj, name string) (Value, error) {
	cd := base.data.(*ObjClass)
	if v, ok := cd.attrs.Get(hashableString(name)); ok {
		return bindIfCallable(vm, receiver, v), nil
	}
	return None, vm.runtimeErrorf(t, "AttributeError", "'super' object has no attribute '%s'", name)
}
