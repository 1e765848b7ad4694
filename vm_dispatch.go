package krk

// runUntil executes instructions on t until its frame stack depth returns to
// targetDepth (normal return), an exception unwinds past every handler down
// to that depth (in which case the *KurokoError propagates to the caller),
// or an OP_YIELD suspends the topmost frame (t.yielded set, frame left
// intact above targetDepth for a later resume — see generator.go). This is
// the single bytecode interpreter loop (§6.1); every nested Kuroko call
// (vm.call on a closure) re-enters it with a deeper targetDepth rather than
// maintaining a separate trampoline.
func (vm *VM) runUntil(t *threadState, targetDepth int) error {
	for len(t.frames) > targetDepth {
		if err := vm.step(t); err != nil {
			kerr, ok := err.(*KurokoError)
			if !ok {
				return err
			}
			if !vm.handleException(t, kerr, targetDepth) {
				vm.unwindUnhandled(t, kerr, targetDepth)
				return kerr
			}
			continue
		}
		if t.yielded {
			return nil
		}
	}
	return nil
}

// unwindUnhandled runs once handleException has confirmed no frame from the
// top of t down to (and including) targetDepth has an active handler: it
// records each of those frames into kerr.Trace, innermost first, then
// truncates t's frame and operand stacks back to targetDepth so the caller
// (an enclosing runUntil, or the embedder via Interpret) sees a clean thread
// rather than one still carrying the failed call's dead frames.
func (vm *VM) unwindUnhandled(t *threadState, kerr *KurokoError, targetDepth int) {
	for fi := len(t.frames) - 1; fi >= targetDepth; fi-- {
		f := &t.frames[fi]
		kerr.Trace = append(kerr.Trace, TraceEntry{Code: f.closure.code, Line: f.closure.code.chunk.LineFor(f.ip)})
	}
	base := len(t.stack)
	if targetDepth < len(t.frames) {
		base = t.frames[targetDepth].base
	}
	t.closeUpvalues(base)
	t.frames = t.frames[:targetDepth]
	t.stack = t.stack[:base]
	t.currentException = kerr.Value
	t.hasException = true
}

func readIndexed(chunk *Chunk, ip *int, long bool) int {
	if long {
		v := chunk.readU24(*ip)
		*ip += 3
		return v
	}
	v := chunk.readU8(*ip)
	*ip++
	return v
}

// jumpTarget resolves a jump/loop instruction's destination ip, given the ip
// of its 2-byte operand (§6.1 "overlong jump patch table").
func jumpTarget(chunk *Chunk, ip int, backward bool) int {
	dist := chunk.jumpOffset(ip)
	after := ip + 2
	if backward {
		return after - dist
	}
	return after + dist
}

// step executes exactly one instruction on the thread's topmost frame.
func (vm *VM) step(t *threadState) error {
	f := t.frame()
	code := f.closure.code
	chunk := &code.chunk

	if vm.debugHook != nil {
		vm.debugHook(vm, DebugEvent{Thread: t, Frame: f, IP: f.ip})
	}

	op := OpCode(chunk.code[f.ip])
	f.ip++

	switch op {
	case OpConstant, OpConstantLong:
		idx := readIndexed(chunk, &f.ip, op == OpConstantLong)
		t.push(chunk.constants[idx])
	case OpPop:
		t.pop()
	case OpDup:
		t.push(t.peek(0))
	case OpSwap:
		t.swap()
	case OpNone:
		t.push(None)
	case OpTrue:
		t.push(True)
	case OpFalse:
		t.push(False)

	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpFloorDiv, OpModulo, OpPow,
		OpBitAnd, OpBitOr, OpBitXor, OpBitShiftL, OpBitShiftR:
		b, a := t.pop(), t.pop()
		res, err := vm.binaryOp(t, op, a, b)
		if err != nil {
			return err
		}
		t.push(res)

	case OpNegate:
		res, err := vm.unaryNegate(t, t.pop())
		if err != nil {
			return err
		}
		t.push(res)
	case OpNot:
		t.push(Bool(!t.pop().Truthy()))
	case OpInvert:
		a := t.pop()
		if !a.IsInt() {
			return vm.runtimeErrorf(t, "TypeError", "bad operand type for unary ~: '%s'", a.TypeName())
		}
		t.push(Int(^a.AsInt()))

	case OpEqual:
		b, a := t.pop(), t.pop()
		eq, err := vm.valuesEqual(t, a, b)
		if err != nil {
			return err
		}
		t.push(Bool(eq))
	case OpLess, OpGreater, OpLessEqual, OpGreaterEqual:
		b, a := t.pop(), t.pop()
		res, err := vm.compare(t, op, a, b)
		if err != nil {
			return err
		}
		t.push(res)
	case OpIs:
		b, a := t.pop(), t.pop()
		t.push(Bool(Is(a, b)))
	case OpContains:
		b, a := t.pop(), t.pop()
		res, err := vm.contains(t, a, b)
		if err != nil {
			return err
		}
		t.push(res)

	case OpDefineGlobal, OpDefineGlobalLong:
		idx := readIndexed(chunk, &f.ip, op == OpDefineGlobalLong)
		f.closure.globals.Set(chunk.constants[idx], t.pop())
	case OpGetGlobal, OpGetGlobalLong:
		idx := readIndexed(chunk, &f.ip, op == OpGetGlobalLong)
		name := chunk.constants[idx]
		v, ok := f.closure.globals.Get(name)
		if !ok {
			v, ok = vm.globals.Get(name)
		}
		if !ok {
			return vm.runtimeErrorf(t, "NameError", "name '%s' is not defined", Str(name))
		}
		t.push(v)
	case OpSetGlobal, OpSetGlobalLong:
		idx := readIndexed(chunk, &f.ip, op == OpSetGlobalLong)
		name := chunk.constants[idx]
		if _, ok := f.closure.globals.Get(name); !ok {
			return vm.runtimeErrorf(t, "NameError", "name '%s' is not defined", Str(name))
		}
		f.closure.globals.Set(name, t.peek(0))
	case OpDelGlobal, OpDelGlobalLong:
		idx := readIndexed(chunk, &f.ip, op == OpDelGlobalLong)
		f.closure.globals.Delete(chunk.constants[idx])

	case OpGetLocal, OpGetLocalLong:
		idx := readIndexed(chunk, &f.ip, op == OpGetLocalLong)
		t.push(t.stack[f.base+idx])
	case OpSetLocal, OpSetLocalLong:
		idx := readIndexed(chunk, &f.ip, op == OpSetLocalLong)
		t.stack[f.base+idx] = t.peek(0)

	case OpGetUpvalue:
		idx := int(chunk.readU8(f.ip))
		f.ip++
		t.push(f.closure.upvalues[idx].data.(*ObjUpvalue).get())
	case OpSetUpvalue:
		idx := int(chunk.readU8(f.ip))
		f.ip++
		f.closure.upvalues[idx].data.(*ObjUpvalue).set(t.peek(0))
	case OpCloseUpvalue:
		t.closeUpvalues(len(t.stack) - 1)
		t.pop()

	case OpGetProperty, OpGetPropertyLong:
		idx := readIndexed(chunk, &f.ip, op == OpGetPropertyLong)
		name := Str(chunk.constants[idx])
		v, err := vm.getProperty(t, t.pop(), name)
		if err != nil {
			return err
		}
		t.push(v)
	case OpSetProperty, OpSetPropertyLong:
		idx := readIndexed(chunk, &f.ip, op == OpSetPropertyLong)
		name := Str(chunk.constants[idx])
		val := t.pop()
		recv := t.pop()
		if err := vm.setProperty(t, recv, name, val); err != nil {
			return err
		}
		t.push(val)
	case OpDelProperty, OpDelPropertyLong:
		idx := readIndexed(chunk, &f.ip, op == OpDelPropertyLong)
		name := Str(chunk.constants[idx])
		recv := t.pop()
		if inst, ok := asObjData(recv).(*ObjInstance); ok {
			inst.attrs.Delete(hashableString(name))
		}
	case OpGetSuper, OpGetSuperLong:
		idx := readIndexed(chunk, &f.ip, op == OpGetSuperLong)
		name := Str(chunk.constants[idx])
		baseVal := t.pop()
		recv := t.pop()
		v, err := vm.getSuper(t, recv, baseVal.AsObject(), name)
		if err != nil {
			return err
		}
		t.push(v)

	case OpJump:
		f.ip = jumpTarget(chunk, f.ip, false)
	case OpJumpIfFalse:
		target := jumpTarget(chunk, f.ip, false)
		f.ip += 2
		if !t.peek(0).Truthy() {
			f.ip = target
		}
	case OpJumpIfTrue:
		target := jumpTarget(chunk, f.ip, false)
		f.ip += 2
		if t.peek(0).Truthy() {
			f.ip = target
		}
	case OpLoop:
		f.ip = jumpTarget(chunk, f.ip, true)

	case OpClosure, OpClosureLong:
		idx := readIndexed(chunk, &f.ip, op == OpClosureLong)
		codeObj := chunk.constants[idx].AsObject()
		innerCode := codeObj.data.(*ObjCode)
		closure := &ObjClosure{code: innerCode, codeObj: codeObj, globals: f.closure.globals}
		closure.upvalues = make([]*Obj, len(innerCode.upvalueDescs))
		for i, d := range innerCode.upvalueDescs {
			if d.isLocal {
				closure.upvalues[i] = vm.captureUpvalue(t, f.base+d.index)
			} else {
				closure.upvalues[i] = f.closure.upvalues[d.index]
			}
		}
		closureObj := vm.allocObj(ObjKindClosure, closure)
		closure.setSelf(closureObj)
		t.push(ObjValue(closureObj))

	case OpClass, OpClassLong:
		idx := readIndexed(chunk, &f.ip, op == OpClassLong)
		name := Str(chunk.constants[idx])
		cls := newClass(name, nil)
		o := vm.allocObj(ObjKindClass, cls)
		cls.setSelf(o)
		t.push(ObjValue(o))
	case OpInherit:
		base := t.pop()
		baseClass, ok := asObjData(base).(*ObjClass)
		if !ok {
			return vm.runtimeErrorf(t, "TypeError", "base is not a class")
		}
		sub := t.peek(0).AsObject().data.(*ObjClass)
		sub.inherit(baseClass)
	case OpMethod, OpMethodLong:
		idx := readIndexed(chunk, &f.ip, op == OpMethodLong)
		name := chunk.constants[idx]
		method := t.pop()
		cls := t.peek(0).AsObject().data.(*ObjClass)
		cls.attrs.Set(name, method)
		cls.finalized = false

	case OpCall:
		argc := int(chunk.readU8(f.ip))
		f.ip++
		args, kwPairs := popCallArgs(t, argc)
		callee := t.pop()
		result, err := vm.call(t, callee, args, kwPairs)
		if err != nil {
			return err
		}
		t.push(result)
	case OpCallMethod, OpCallMethodLong:
		idx := readIndexed(chunk, &f.ip, op == OpCallMethodLong)
		name := Str(chunk.constants[idx])
		argc := int(chunk.readU8(f.ip))
		f.ip++
		args, kwPairs := popCallArgs(t, argc)
		recv := t.pop()
		method, err := vm.getProperty(t, recv, name)
		if err != nil {
			return err
		}
		result, err := vm.call(t, method, args, kwPairs)
		if err != nil {
			return err
		}
		t.push(result)
	case OpReturn:
		ret := t.pop()
		t.closeUpvalues(f.base)
		t.stack = t.stack[:f.base]
		t.frames = t.frames[:len(t.frames)-1]
		t.push(ret)

	case OpBuildTuple:
		n := int(chunk.readU8(f.ip))
		f.ip++
		items := append([]Value(nil), t.stack[len(t.stack)-n:]...)
		t.stack = t.stack[:len(t.stack)-n]
		t.push(vm.newTuple(items))
	case OpBuildList:
		n := int(chunk.readU8(f.ip))
		f.ip++
		items := append([]Value(nil), t.stack[len(t.stack)-n:]...)
		t.stack = t.stack[:len(t.stack)-n]
		t.push(vm.newList(items))
	case OpBuildSet:
		n := int(chunk.readU8(f.ip))
		f.ip++
		s := newSet()
		for _, v := range t.stack[len(t.stack)-n:] {
			s.Add(v)
		}
		t.stack = t.stack[:len(t.stack)-n]
		t.push(ObjValue(vm.allocObj(ObjKindSet, s)))
	case OpBuildDict:
		n := int(chunk.readU8(f.ip))
		f.ip++
		start := len(t.stack) - n*2
		pairs := t.stack[start:]
		d := newDict()
		for i := 0; i+1 < len(pairs); i += 2 {
			d.table.Set(pairs[i], pairs[i+1])
		}
		t.stack = t.stack[:start]
		t.push(ObjValue(vm.allocObj(ObjKindDict, d)))
	case OpUnpack:
		n := int(chunk.readU8(f.ip))
		f.ip++
		v := t.pop()
		var items []Value
		switch d := asObjData(v).(type) {
		case *ObjList:
			items = d.snapshotLocked()
		case *ObjTuple:
			items = d.items
		default:
			return vm.runtimeErrorf(t, "TypeError", "cannot unpack non-sequence '%s'", v.TypeName())
		}
		if len(items) != n {
			return vm.runtimeErrorf(t, "ValueError", "expected %d values to unpack, got %d", n, len(items))
		}
		for _, it := range items {
			t.push(it)
		}

	case OpPushTry:
		target := jumpTarget(chunk, f.ip, false)
		f.ip += 2
		f.handlers = append(f.handlers, Handler(int64(target), int64(len(t.stack))))
	case OpPopHandler:
		f.handlers = f.handlers[:len(f.handlers)-1]
	case OpPushWith:
		target := jumpTarget(chunk, f.ip, false)
		f.ip += 2
		ctxVal := t.peek(0)
		inst, ok := asObjData(ctxVal).(*ObjInstance)
		if !ok {
			return vm.runtimeErrorf(t, "TypeError", "'%s' object does not support the context manager protocol", ctxVal.TypeName())
		}
		enter := inst.classData().dunder(dunderEnter)
		if enter.IsNone() {
			return vm.runtimeErrorf(t, "TypeError", "'%s' object does not support the context manager protocol", ctxVal.TypeName())
		}
		result, err := vm.call(t, enter, []Value{ctxVal}, nil)
		if err != nil {
			return err
		}
		t.push(result)
		f.handlers = append(f.handlers, Handler(int64(target), int64(len(t.stack))))
	case OpRaise:
		exc := t.pop()
		return &KurokoError{Value: exc, Message: exceptionMessage(exc)}
	case OpRaiseFrom:
		cause := t.pop()
		exc := t.pop()
		if inst, ok := asObjData(exc).(*ObjInstance); ok {
			inst.attrs.Set(vm.newString("__cause__"), cause)
		}
		return &KurokoError{Value: exc, Message: exceptionMessage(exc)}
	case OpFilterExcept:
		idx := int(chunk.readU8(f.ip))
		f.ip++
		name := Str(chunk.constants[idx])
		t.push(Bool(vm.isInstanceOfException(t.peek(1), name)))

	case OpInvokeIter:
		v, err := vm.getIterator(t, t.pop())
		if err != nil {
			return err
		}
		t.push(v)
	case OpInvokeNext:
		iterVal := t.peek(0)
		target := jumpTarget(chunk, f.ip, false)
		f.ip += 2
		result, err := vm.call(t, iterVal, nil, nil)
		if err != nil {
			return err
		}
		if Is(result, iterVal) {
			t.pop()
			f.ip = target
		} else {
			t.push(result)
		}

	case OpYield:
		// Suspend: the yielded value is handed to resumeGenerator, and a
		// None placeholder is left on the stack standing in for this
		// (yield expr)'s result once execution continues — Kuroko has no
		// generator.send(), so a resumed yield expression always reads as
		// None (§3.4, §9 "Generators and coroutines").
		v := t.pop()
		t.push(None)
		t.yielded = true
		t.yieldValue = v
	case OpAwait:
		v := t.pop()
		result, err := vm.awaitValue(t, v)
		if err != nil {
			return err
		}
		t.push(result)

	default:
		return vm.runtimeErrorf(t, "SystemError", "unimplemented opcode %s", op)
	}
	return nil
}

// popCallArgs pops a CALL/CALL_METHOD instruction's argument region off the
// stack: argc positional values, plus any trailing keyword (key, value)
// pairs marked by a Kwargs count sentinel (§4.5).
func popCallArgs(t *threadState, argc int) (args, kwPairs []Value) {
	if n := len(t.stack); n > 0 && t.stack[n-1].Kind() == KindKwargs {
		sentinel := t.pop()
		kwCount := sentinel.KwargCount()
		start := len(t.stack) - kwCount*2
		kwPairs = append([]Value(nil), t.stack[start:]...)
		t.stack = t.stack[:start]
	}
	args = append([]Value(nil), t.stack[len(t.stack)-argc:]...)
	t.stack = t.stack[:len(t.stack)-argc]
	return args, kwPairs
}
