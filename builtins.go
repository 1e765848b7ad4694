package krk

import (
	"io"
	"sort"
	"strconv"
	"strings"
)

// bootstrapBuiltins installs the global built-in functions and types every
// Kuroko program sees without an import, mirroring the teacher's pattern of
// one Go method per primitive (first.go) generalized from FIRST's stack
// words to Kuroko's richer, keyword/default-argument-aware native calling
// convention (§2, §6.4).
func (vm *VM) bootstrapBuiltins() {
	vm.defineNative("print", builtinPrint)
	vm.defineNative("len", builtinLen)
	vm.defineNative("repr", builtinRepr)
	vm.defineNative("str", builtinStr)
	vm.defineNative("int", builtinInt)
	vm.defineNative("float", builtinFloat)
	vm.defineNative("bool", builtinBool)
	vm.defineNative("type", builtinType)
	vm.defineNative("range", builtinRange)
	vm.defineNative("list", builtinListCtor)
	vm.defineNative("tuple", builtinTupleCtor)
	vm.defineNative("dict", builtinDictCtor)
	vm.defineNative("set", builtinSetCtor)
	vm.defineNative("isinstance", builtinIsInstance)
	vm.defineNative("abs", builtinAbs)
	vm.defineNative("min", builtinMin)
	vm.defineNative("max", builtinMax)
	vm.defineNative("sum", builtinSum)
	vm.defineNative("sorted", builtinSorted)
	vm.defineNative("hasattr", builtinHasAttr)
	vm.defineNative("getattr", builtinGetAttr)
	vm.defineNative("setattr", builtinSetAttr)
	vm.defineNative("ord", builtinOrd)
	vm.defineNative("chr", builtinChr)
	vm.defineNative("slice", builtinSliceCtor)
}

func (vm *VM) defineNative(name string, fn NativeFunc) {
	n := &ObjNative{name: name, fn: fn}
	vm.globals.Set(vm.newString(name), ObjValue(vm.allocObj(ObjKindNative, n)))
}

func builtinPrint(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	sep := " "
	end := "\n"
	for i := 0; i+1 < len(kwPairs); i += 2 {
		switch Str(kwPairs[i]) {
		case "sep":
			sep = Str(kwPairs[i+1])
		case "end":
			end = Str(kwPairs[i+1])
		}
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Str(a)
	}
	io.WriteString(vm.stdout, strings.Join(parts, sep))
	io.WriteString(vm.stdout, end)
	vm.stdout.Flush()
	return None, nil
}

func builtinLen(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) != 1 {
		return None, vm.runtimeErrorf(t, "TypeError", "len() takes exactly one argument (%d given)", len(args))
	}
	v := args[0]
	if v.IsObject() {
		if lo, ok := v.AsObject().data.(lenObj); ok {
			return Int(int64(lo.length())), nil
		}
		if inst, ok := v.AsObject().data.(*ObjInstance); ok {
			if fn := inst.classData().dunder(dunderLen); !fn.IsNone() {
				return vm.call(t, fn, []Value{v}, nil)
			}
		}
	}
	return None, vm.runtimeErrorf(t, "TypeError", "object of type '%s' has no len()", v.TypeName())
}

func builtinRepr(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) != 1 {
		return None, vm.runtimeErrorf(t, "TypeError", "repr() takes exactly one argument")
	}
	v := args[0]
	if inst, ok := asObjData(v).(*ObjInstance); ok {
		if fn := inst.classData().dunder(dunderRepr); !fn.IsNone() {
			return vm.call(t, fn, []Value{v}, nil)
		}
	}
	return vm.newString(Repr(v)), nil
}

func builtinStr(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) == 0 {
		return vm.newString(""), nil
	}
	v := args[0]
	if inst, ok := asObjData(v).(*ObjInstance); ok {
		cd := inst.classData()
		if fn := cd.dunder(dunderStr); !fn.IsNone() {
			return vm.call(t, fn, []Value{v}, nil)
		}
		if fn := cd.dunder(dunderRepr); !fn.IsNone() {
			return vm.call(t, fn, []Value{v}, nil)
		}
	}
	return vm.newString(Str(v)), nil
}

func builtinInt(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) == 0 {
		return Int(0), nil
	}
	v := args[0]
	switch {
	case v.IsInt():
		return v, nil
	case v.IsFloat():
		return Int(int64(v.AsFloat())), nil
	case v.IsBool():
		return Int(v.AsInt()), nil
	}
	if s, ok := asStr(v); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return None, vm.runtimeErrorf(t, "ValueError", "invalid literal for int(): '%s'", s)
		}
		return Int(n), nil
	}
	return None, vm.runtimeErrorf(t, "TypeError", "int() argument must be a string or number, not '%s'", v.TypeName())
}

func builtinFloat(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) == 0 {
		return Float(0), nil
	}
	v := args[0]
	if isNumeric(v) {
		return Float(toFloat(v)), nil
	}
	if s, ok := asStr(v); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return None, vm.runtimeErrorf(t, "ValueError", "could not convert string to float: '%s'", s)
		}
		return Float(f), nil
	}
	return None, vm.runtimeErrorf(t, "TypeError", "float() argument must be a string or number, not '%s'", v.TypeName())
}

func builtinBool(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) == 0 {
		return False, nil
	}
	return Bool(args[0].Truthy()), nil
}

func builtinType(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) != 1 {
		return None, vm.runtimeErrorf(t, "TypeError", "type() takes exactly one argument")
	}
	v := args[0]
	if inst, ok := asObjData(v).(*ObjInstance); ok {
		return ObjValue(inst.class), nil
	}
	return vm.newString(v.TypeName()), nil
}

func builtinRange(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		if !args[0].IsInt() {
			return None, vm.runtimeErrorf(t, "TypeError", "range() requires int arguments")
		}
		stop = args[0].AsInt()
	case 2, 3:
		if !args[0].IsInt() || !args[1].IsInt() {
			return None, vm.runtimeErrorf(t, "TypeError", "range() requires int arguments")
		}
		start, stop = args[0].AsInt(), args[1].AsInt()
		if len(args) == 3 {
			if !args[2].IsInt() {
				return None, vm.runtimeErrorf(t, "TypeError", "range() requires int arguments")
			}
			step = args[2].AsInt()
		}
	default:
		return None, vm.runtimeErrorf(t, "TypeError", "range() expected 1 to 3 arguments, got %d", len(args))
	}
	if step == 0 {
		return None, vm.runtimeErrorf(t, "ValueError", "range() arg 3 must not be zero")
	}
	var items []Value
	if step > 0 {
		for i := start; i < stop; i += step {
			items = append(items, Int(i))
		}
	} else {
		for i := start; i > stop; i += step {
			items = append(items, Int(i))
		}
	}
	return vm.newNativeIterator(items), nil
}

func builtinListCtor(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) == 0 {
		return vm.newList(nil), nil
	}
	items, err := drain(vm, t, args[0])
	if err != nil {
		return None, err
	}
	return vm.newList(items), nil
}

func builtinTupleCtor(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) == 0 {
		return vm.newTuple(nil), nil
	}
	items, err := drain(vm, t, args[0])
	if err != nil {
		return None, err
	}
	return vm.newTuple(items), nil
}

func builtinSetCtor(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	s := newSet()
	if len(args) > 0 {
		items, err := drain(vm, t, args[0])
		if err != nil {
			return None, err
		}
		for _, it := range items {
			s.Add(it)
		}
	}
	return ObjValue(vm.allocObj(ObjKindSet, s)), nil
}

func builtinDictCtor(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	d := newDict()
	if len(args) > 0 {
		items, err := drain(vm, t, args[0])
		if err != nil {
			return None, err
		}
		for _, pair := range items {
			tup, ok := asObjData(pair).(*ObjTuple)
			if !ok || len(tup.items) != 2 {
				return None, vm.runtimeErrorf(t, "ValueError", "dict() update sequence element must be a pair")
			}
			d.table.Set(tup.items[0], tup.items[1])
		}
	}
	for i := 0; i+1 < len(kwPairs); i += 2 {
		d.table.Set(kwPairs[i], kwPairs[i+1])
	}
	return ObjValue(vm.allocObj(ObjKindDict, d)), nil
}

// drain fully consumes an iterable value into a slice, using the same
// iterator protocol as a for-loop (§4.3).
func drain(vm *VM, t *threadState, v Value) ([]Value, error) {
	iter, err := vm.getIterator(t, v)
	if err != nil {
		return nil, err
	}
	var out []Value
	for {
		next, err := vm.call(t, iter, nil, nil)
		if err != nil {
			return nil, err
		}
		if Is(next, iter) {
			return out, nil
		}
		out = append(out, next)
	}
}

func builtinIsInstance(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) != 2 {
		return None, vm.runtimeErrorf(t, "TypeError", "isinstance() takes exactly 2 arguments")
	}
	v, classVal := args[0], args[1]
	targetCls, ok := asObjData(classVal).(*ObjClass)
	if !ok {
		return None, vm.runtimeErrorf(t, "TypeError", "isinstance() arg 2 must be a class")
	}
	inst, ok := asObjData(v).(*ObjInstance)
	if !ok {
		return False, nil
	}
	for c := inst.class; c != nil; {
		cd := c.data.(*ObjClass)
		if cd == targetCls {
			return True, nil
		}
		c = cd.base
	}
	return False, nil
}

func builtinAbs(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) != 1 {
		return None, vm.runtimeErrorf(t, "TypeError", "abs() takes exactly one argument")
	}
	v := args[0]
	switch {
	case v.IsInt():
		n := v.AsInt()
		if n < 0 {
			n = -n
		}
		return Int(n), nil
	case v.IsFloat():
		f := v.AsFloat()
		if f < 0 {
			f = -f
		}
		return Float(f), nil
	}
	return None, vm.runtimeErrorf(t, "TypeError", "bad operand type for abs(): '%s'", v.TypeName())
}

func builtinMin(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	return extremum(vm, t, args, false)
}

func builtinMax(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	return extremum(vm, t, args, true)
}

func extremum(vm *VM, t *threadState, args []Value, wantMax bool) (Value, error) {
	items := args
	if len(args) == 1 {
		drained, err := drain(vm, t, args[0])
		if err != nil {
			return None, err
		}
		items = drained
	}
	if len(items) == 0 {
		return None, vm.runtimeErrorf(t, "ValueError", "min()/max() arg is an empty sequence")
	}
	best := items[0]
	for _, v := range items[1:] {
		res, err := vm.compare(t, OpLess, v, best)
		if err != nil {
			return None, err
		}
		if res.Truthy() != wantMax {
			best = v
		}
	}
	return best, nil
}

func builtinSum(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) == 0 {
		return None, vm.runtimeErrorf(t, "TypeError", "sum() takes at least one argument")
	}
	items, err := drain(vm, t, args[0])
	if err != nil {
		return None, err
	}
	total := Int(0)
	if len(args) > 1 {
		total = args[1]
	}
	for _, v := range items {
		total, err = vm.binaryOp(t, OpAdd, total, v)
		if err != nil {
			return None, err
		}
	}
	return total, nil
}

func builtinSorted(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) != 1 {
		return None, vm.runtimeErrorf(t, "TypeError", "sorted() takes exactly one argument")
	}
	items, err := drain(vm, t, args[0])
	if err != nil {
		return None, err
	}
	out := append([]Value(nil), items...)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		v, err := vm.compare(t, OpLess, out[i], out[j])
		if err != nil {
			sortErr = err
			return false
		}
		return v.Truthy()
	})
	if sortErr != nil {
		return None, sortErr
	}
	return vm.newList(out), nil
}

func builtinHasAttr(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) != 2 {
		return None, vm.runtimeErrorf(t, "TypeError", "hasattr() takes exactly 2 arguments")
	}
	name, ok := asStr(args[1])
	if !ok {
		return None, vm.runtimeErrorf(t, "TypeError", "hasattr(): attribute name must be a string")
	}
	_, err := vm.getProperty(t, args[0], name)
	return Bool(err == nil), nil
}

func builtinGetAttr(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) < 2 {
		return None, vm.runtimeErrorf(t, "TypeError", "getattr() takes 2 or 3 arguments")
	}
	name, ok := asStr(args[1])
	if !ok {
		return None, vm.runtimeErrorf(t, "TypeError", "getattr(): attribute name must be a string")
	}
	v, err := vm.getProperty(t, args[0], name)
	if err != nil {
		if len(args) == 3 {
			return args[2], nil
		}
		return None, err
	}
	return v, nil
}

func builtinSetAttr(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) != 3 {
		return None, vm.runtimeErrorf(t, "TypeError", "setattr() takes exactly 3 arguments")
	}
	name, ok := asStr(args[1])
	if !ok {
		return None, vm.runtimeErrorf(t, "TypeError", "setattr(): attribute name must be a string")
	}
	return None, vm.setProperty(t, args[0], name, args[2])
}

func builtinOrd(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) != 1 {
		return None, vm.runtimeErrorf(t, "TypeError", "ord() takes exactly one argument")
	}
	s, ok := asObjData(args[0]).(*ObjString)
	if !ok || s.count != 1 {
		return None, vm.runtimeErrorf(t, "TypeError", "ord() expected a character")
	}
	return Int(int64(s.codepointAt(0))), nil
}

func builtinChr(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) != 1 || !args[0].IsInt() {
		return None, vm.runtimeErrorf(t, "TypeError", "chr() takes exactly one int argument")
	}
	return vm.newString(string(rune(args[0].AsInt()))), nil
}

// builtinSliceCtor backs both the literal `a[i:j:k]` syntax (compiled as a
// call to this global, parseSliceOrIndex in compiler_rules.go) and explicit
// `slice(start, stop, step)` construction.
func builtinSliceCtor(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	start, stop, step := None, None, None
	switch len(args) {
	case 1:
		stop = args[0]
	case 2:
		start, stop = args[0], args[1]
	case 3:
		start, stop, step = args[0], args[1], args[2]
	default:
		return None, vm.runtimeErrorf(t, "TypeError", "slice() takes 1 to 3 arguments, got %d", len(args))
	}
	return vm.newSlice(start, stop, step), nil
}
