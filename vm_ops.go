package krk

import "math"

// opSymbols maps each binary arithmetic/bitwise opcode to the operator
// string used to key operatorDunders (§4.3 "Method resolution for
// operators").
var opSymbols = map[OpCode]string{
	OpAdd: "+", OpSubtract: "-", OpMultiply: "*", OpDivide: "/",
	OpFloorDiv: "//", OpModulo: "%", OpPow: "**",
	OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^",
	OpBitShiftL: "<<", OpBitShiftR: ">>",
	OpLess: "<", OpGreater: ">", OpLessEqual: "<=", OpGreaterEqual: ">=",
}

func toFloat(v Value) float64 {
	if v.IsInt() {
		return float64(v.AsInt())
	}
	return v.AsFloat()
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorModInt(a, b int64) int64 {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

// binaryOp implements the arithmetic/bitwise family of opcodes: integer
// fast path, numeric promotion to float, string/list/tuple overloads of +,
// string/list overloads of * by an int (tuple * int is not supported), and
// finally operator-dunder dispatch (§4.3).
func (vm *VM) binaryOp(t *threadState, op OpCode, a, b Value) (Value, error) {
	if a.IsInt() && b.IsInt() {
		ai, bi := a.AsInt(), b.AsInt()
		switch op {
		case OpAdd:
			return Int(ai + bi), nil
		case OpSubtract:
			return Int(ai - bi), nil
		case OpMultiply:
			return Int(ai * bi), nil
		case OpDivide:
			if bi == 0 {
				return None, vm.runtimeErrorf(t, "ZeroDivisionError", "division by zero")
			}
			return Float(float64(ai) / float64(bi)), nil
		case OpFloorDiv:
			if bi == 0 {
				return None, vm.runtimeErrorf(t, "ZeroDivisionError", "division by zero")
			}
			return Int(floorDivInt(ai, bi)), nil
		case OpModulo:
			if bi == 0 {
				return None, vm.runtimeErrorf(t, "ZeroDivisionError", "modulo by zero")
			}
			return Int(floorModInt(ai, bi)), nil
		case OpPow:
			if bi >= 0 {
				r := int64(1)
				for i := int64(0); i < bi; i++ {
					r *= ai
				}
				return Int(r), nil
			}
			return Float(math.Pow(float64(ai), float64(bi))), nil
		case OpBitAnd:
			return Int(ai & bi), nil
		case OpBitOr:
			return Int(ai | bi), nil
		case OpBitXor:
			return Int(ai ^ bi), nil
		case OpBitShiftL:
			return Int(ai << uint(bi)), nil
		case OpBitShiftR:
			return Int(ai >> uint(bi)), nil
		}
	}

	if isNumeric(a) && isNumeric(b) {
		switch op {
		case OpBitAnd, OpBitOr, OpBitXor, OpBitShiftL, OpBitShiftR:
			return None, vm.runtimeErrorf(t, "TypeError", "unsupported operand type(s) for %s: 'float'", opSymbols[op])
		}
		af, bf := toFloat(a), toFloat(b)
		switch op {
		case OpAdd:
			return Float(af + bf), nil
		case OpSubtract:
			return Float(af - bf), nil
		case OpMultiply:
			return Float(af * bf), nil
		case OpDivide:
			if bf == 0 {
				return None, vm.runtimeErrorf(t, "ZeroDivisionError", "division by zero")
			}
			return Float(af / bf), nil
		case OpFloorDiv:
			if bf == 0 {
				return None, vm.runtimeErrorf(t, "ZeroDivisionError", "division by zero")
			}
			return Float(math.Floor(af / bf)), nil
		case OpModulo:
			if bf == 0 {
				return None, vm.runtimeErrorf(t, "ZeroDivisionError", "modulo by zero")
			}
			return Float(math.Mod(af, bf)), nil
		case OpPow:
			return Float(math.Pow(af, bf)), nil
		}
	}

	if op == OpAdd {
		if as, aok := asStr(a); aok {
			if bs, bok := asStr(b); bok {
				return vm.newString(as + bs), nil
			}
		}
		if al, aok := asObjData(a).(*ObjList); aok {
			if bl, bok := asObjData(b).(*ObjList); bok {
				out := append(al.snapshotLocked(), bl.snapshotLocked()...)
				return vm.newList(out), nil
			}
		}
		if at, aok := asObjData(a).(*ObjTuple); aok {
			if bt, bok := asObjData(b).(*ObjTuple); bok {
				out := append(append([]Value{}, at.items...), bt.items...)
				return vm.newTuple(out), nil
			}
		}
	}
	if op == OpMultiply {
		if as, aok := asStr(a); aok && b.IsInt() {
			return vm.newString(repeatString(as, int(b.AsInt()))), nil
		}
		if bs, bok := asStr(b); bok && a.IsInt() {
			return vm.newString(repeatString(bs, int(a.AsInt()))), nil
		}
		if al, aok := asObjData(a).(*ObjList); aok && b.IsInt() {
			return vm.newList(repeatValues(al.snapshotLocked(), int(b.AsInt()))), nil
		}
	}

	if sym, ok := opSymbols[op]; ok {
		if v, handled, err := vm.tryOperatorDunder(t, sym, a, b); handled {
			return v, err
		}
	}
	return None, vm.runtimeErrorf(t, "TypeError", "unsupported operand type(s) for %s: '%s' and '%s'", opSymbols[op], a.TypeName(), b.TypeName())
}

func isNumeric(v Value) bool { return v.IsInt() || v.IsFloat() }

func asStr(v Value) (string, bool) {
	if !v.IsObject() {
		return "", false
	}
	s, ok := v.AsObject().data.(*ObjString)
	if !ok {
		return "", false
	}
	return s.chars, true
}

func asObjData(v Value) objData {
	if !v.IsObject() {
		return nil
	}
	return v.AsObject().data
}

func repeatString(s string, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func repeatValues(vs []Value, n int) []Value {
	if n <= 0 {
		return nil
	}
	out := make([]Value, 0, len(vs)*n)
	for i := 0; i < n; i++ {
		out = append(out, vs...)
	}
	return out
}

// tryOperatorDunder attempts the forward dunder on a then the reflected
// dunder on b, returning handled=false if neither side defines the slot.
func (vm *VM) tryOperatorDunder(t *threadState, sym string, a, b Value) (result Value, handled bool, err error) {
	names, ok := operatorDunders[sym]
	if !ok {
		return None, false, nil
	}
	if inst, ok := asObjData(a).(*ObjInstance); ok {
		if fn, ok := inst.classData().attrs.Get(hashableString(names[0])); ok {
			v, err := vm.call(t, fn, []Value{a, b}, nil)
			return v, true, err
		}
	}
	if inst, ok := asObjData(b).(*ObjInstance); ok {
		if fn, ok := inst.classData().attrs.Get(hashableString(names[1])); ok {
			v, err := vm.call(t, fn, []Value{b, a}, nil)
			return v, true, err
		}
	}
	return None, false, nil
}

// unaryNegate implements NEGATE for numeric operands and __neg__ otherwise.
func (vm *VM) unaryNegate(t *threadState, a Value) (Value, error) {
	switch {
	case a.IsInt():
		return Int(-a.AsInt()), nil
	case a.IsFloat():
		return Float(-a.AsFloat()), nil
	}
	if inst, ok := asObjData(a).(*ObjInstance); ok {
		if fn, ok := inst.classData().attrs.Get(hashableString("__neg__")); ok {
			return vm.call(t, fn, []Value{a}, nil)
		}
	}
	return None, vm.runtimeErrorf(t, "TypeError", "bad operand type for unary -: '%s'", a.TypeName())
}

// compare implements the ordering opcodes: numeric and string comparison
// directly, otherwise operator-dunder dispatch via operatorDunders.
func (vm *VM) compare(t *threadState, op OpCode, a, b Value) (Value, error) {
	if isNumeric(a) && isNumeric(b) {
		af, bf := toFloat(a), toFloat(b)
		switch op {
		case OpLess:
			return Bool(af < bf), nil
		case OpGreater:
			return Bool(af > bf), nil
		case OpLessEqual:
			return Bool(af <= bf), nil
		case OpGreaterEqual:
			return Bool(af >= bf), nil
		}
	}
	if as, aok := asStr(a); aok {
		if bs, bok := asStr(b); bok {
			switch op {
			case OpLess:
				return Bool(as < bs), nil
			case OpGreater:
				return Bool(as > bs), nil
			case OpLessEqual:
				return Bool(as <= bs), nil
			case OpGreaterEqual:
				return Bool(as >= bs), nil
			}
		}
	}
	if sym, ok := opSymbols[op]; ok {
		if v, handled, err := vm.tryOperatorDunder(t, sym, a, b); handled {
			return v, err
		}
	}
	return None, vm.runtimeErrorf(t, "TypeError", "'%s' not supported between instances of '%s' and '%s'", opSymbols[op], a.TypeName(), b.TypeName())
}

// valuesEqual implements EQUAL: falls back to Equal() for primitives and
// content-equal objects, but prefers a class's __eq__ when defined.
func (vm *VM) valuesEqual(t *threadState, a, b Value) (bool, error) {
	if inst, ok := asObjData(a).(*ObjInstance); ok {
		if fn := inst.classData().dunder(dunderEq); !fn.IsNone() {
			v, err := vm.call(t, fn, []Value{a, b}, nil)
			if err != nil {
				return false, err
			}
			return v.Truthy(), nil
		}
	}
	return Equal(a, b), nil
}

// contains implements `a in b` (CONTAINS): membership test appropriate to
// b's kind, or __contains__ if b is an instance defining it.
func (vm *VM) contains(t *threadState, a, b Value) (Value, error) {
	switch d := asObjData(b).(type) {
	case *ObjList:
		for _, v := range d.snapshotLocked() {
			if eq, err := vm.valuesEqual(t, a, v); err != nil {
				return None, err
			} else if eq {
				return True, nil
			}
		}
		return False, nil
	case *ObjTuple:
		for _, v := range d.items {
			if eq, err := vm.valuesEqual(t, a, v); err != nil {
				return None, err
			} else if eq {
				return True, nil
			}
		}
		return False, nil
	case *ObjDict:
		_, ok := d.table.Get(a)
		return Bool(ok), nil
	case *ObjSet:
		return Bool(d.Contains(a)), nil
	case *ObjString:
		as, ok := asStr(a)
		if !ok {
			return None, vm.runtimeErrorf(t, "TypeError", "'in <string>' requires string as left operand")
		}
		return Bool(containsSubstring(d.chars, as)), nil
	case *ObjInstance:
		if fn := d.classData().dunder(dunderContains); !fn.IsNone() {
			v, err := vm.call(t, fn, []Value{ObjValue(b.AsObject()), a}, nil)
			if err != nil {
				return None, err
			}
			return Bool(v.Truthy()), nil
		}
	}
	return None, vm.runtimeErrorf(t, "TypeError", "argument of type '%s' is not iterable", b.TypeName())
}

func containsSubstring(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
