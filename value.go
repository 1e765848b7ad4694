package krk

import (
	"fmt"
	"math"
)

// ValueKind tags the active member of a Value.
type ValueKind uint8

const (
	// KindNone is the singleton None value; it is also the zero Value,
	// so a freshly declared Value or a zeroed slice slot reads as None.
	KindNone ValueKind = iota
	KindBool
	KindInt
	KindFloat
	// KindHandler marks an exception/with-block frame marker pushed by
	// PUSH_TRY/PUSH_WITH. Never user visible.
	KindHandler
	// KindKwargs is the sentinel pushed after a run of (key, value) pairs
	// to mark a keyword-argument region on the call stack (see §4.5 of
	// the argument-binding design).
	KindKwargs
	KindObject
)

// Value is a tagged union: None, Bool, Integer, Float, an internal
// Handler/Kwargs sentinel, or a reference to a heap Object.
//
// Integer, float and sentinel payloads live in i/f directly so that the
// common arithmetic path never touches the heap or the GC.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	obj  *Obj
}

// None is the singleton None value.
var None = Value{}

// True and False are the two Bool values.
var (
	True  = Value{kind: KindBool, i: 1}
	False = Value{kind: KindBool, i: 0}
)

// Int constructs an Integer value.
func Int(n int64) Value { return Value{kind: KindInt, i: n} }

// Float constructs a Float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool constructs a Bool value.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Handler constructs an internal exception/with-block stack marker carrying
// a jump target and the stack depth to restore on unwind.
func Handler(jumpTarget, stackTop int64) Value {
	return Value{kind: KindHandler, i: jumpTarget, f: float64(stackTop)}
}

// Kwargs constructs the keyword-argument count sentinel.
func Kwargs(n int64) Value { return Value{kind: KindKwargs, i: n} }

// Obj wraps a heap object reference as a Value.
func ObjValue(o *Obj) Value {
	if o == nil {
		return None
	}
	return Value{kind: KindObject, obj: o}
}

// Kind reports which member of the union is active.
func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNone() bool   { return v.kind == KindNone }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsInt() bool    { return v.kind == KindInt }
func (v Value) IsFloat() bool  { return v.kind == KindFloat }
func (v Value) IsObject() bool { return v.kind == KindObject }

// AsBool returns the boolean payload; only meaningful when IsBool().
func (v Value) AsBool() bool { return v.i != 0 }

// AsInt returns the integer payload; only meaningful when IsInt().
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the float payload; only meaningful when IsFloat().
func (v Value) AsFloat() float64 { return v.f }

// AsObject returns the heap object reference; only meaningful when IsObject().
func (v Value) AsObject() *Obj { return v.obj }

// JumpTarget and StackTop decode a Handler Value.
func (v Value) JumpTarget() int { return int(v.i) }
func (v Value) StackTop() int   { return int(v.f) }

// KwargCount decodes a Kwargs sentinel Value.
func (v Value) KwargCount() int { return int(v.i) }

// Truthy implements Kuroko's truthiness rules: None and False are falsy,
// zero int/float are falsy, empty strings/containers are falsy, everything
// else (including all other objects, unless they define __len__ producing
// zero) is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNone:
		return false
	case KindBool:
		return v.i != 0
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindObject:
		return v.obj.truthy()
	default:
		return true
	}
}

// TypeName returns the Kuroko type name used in error messages and repr().
func (v Value) TypeName() string {
	switch v.kind {
	case KindNone:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindHandler, KindKwargs:
		return "<internal>"
	case KindObject:
		return v.obj.typeName()
	default:
		return "?"
	}
}

// Is implements identity comparison (the `is` operator): same kind and same
// payload bits, or the same object pointer for heap values.
func Is(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNone:
		return true
	case KindBool, KindInt, KindHandler, KindKwargs:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f || (math.IsNaN(a.f) && math.IsNaN(b.f) && false)
	case KindObject:
		return a.obj == b.obj
	default:
		return true
	}
}

// Equal implements value equality (the `==` operator) for the primitive
// kinds; heap-object equality (which may dispatch to __eq__) is resolved by
// the VM via (*VM).valuesEqual, which falls back to Equal for kinds it does
// not special-case.
func Equal(a, b Value) bool {
	if a.kind == KindObject && b.kind == KindObject {
		return equalObjects(a.obj, b.obj)
	}
	an, aIsNum := a.numeric()
	bn, bIsNum := b.numeric()
	if aIsNum && bIsNum {
		return an == bn
	}
	return Is(a, b)
}

func (v Value) numeric() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindBool:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Hash computes a value's hash, used as a Table key. Integers, booleans and
// the internal sentinels hash to their integer representation; floats hash
// as their truncated integer value so that 1 and 1.0 collide (required
// since Equal treats them as equal); strings/bytes cache a precomputed
// hash; other objects either implement hashable or fall back to identity
// (the pointer value), per §3.1.
func Hash(v Value) uint64 {
	switch v.kind {
	case KindNone:
		return 0
	case KindBool, KindInt, KindHandler, KindKwargs:
		return uint64(v.i)
	case KindFloat:
		return uint64(int64(v.f))
	case KindObject:
		return v.obj.hash()
	default:
		return 0
	}
}

// Repr renders a value the way Kuroko's repr() builtin would.
func Repr(v Value) string {
	switch v.kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.i != 0 {
			return "True"
		}
		return "False"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return formatFloat(v.f)
	case KindObject:
		return v.obj.repr()
	default:
		return "<internal>"
	}
}

// Str renders a value the way Kuroko's str() builtin / print() would: like
// Repr except strings print without quotes.
func Str(v Value) string {
	if v.kind == KindObject {
		if s, ok := v.obj.data.(*ObjString); ok {
			return s.chars
		}
		return v.obj.str()
	}
	return Repr(v)
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := fmt.Sprintf("%g", f)
	// Kuroko, like Python, always shows a float as a float: 1.0 not 1.
	hasDotOrExp := false
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'E' {
			hasDotOrExp = true
			break
		}
	}
	if !hasDotOrExp {
		s += ".0"
	}
	return s
}
