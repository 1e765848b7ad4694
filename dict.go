package krk

// ObjDict is Kuroko's dict: a thin wrapper over the shared Table type.
// Iteration order is insertion order (§4.4).
type ObjDict struct {
	table Table
}

func newDict() *ObjDict { return &ObjDict{} }

func (d *ObjDict) typeName() string { return "dict" }
func (d *ObjDict) truthy() bool     { return d.table.Len() != 0 }
func (d *ObjDict) length() int      { return d.table.Len() }

func (d *ObjDict) repr() string {
	if d.table.Len() == 0 {
		return "{}"
	}
	s := "{"
	first := true
	d.table.Each(func(k, v Value) {
		if !first {
			s += ", "
		}
		first = false
		s += Repr(k) + ": " + Repr(v)
	})
	return s + "}"
}

func (d *ObjDict) walkRefs(mark func(Value)) {
	d.table.Each(func(k, v Value) {
		mark(k)
		mark(v)
	})
}

func (d *ObjDict) equalTo(other objData) bool {
	o, ok := other.(*ObjDict)
	if !ok || o.table.Len() != d.table.Len() {
		return false
	}
	equal := true
	d.table.Each(func(k, v Value) {
		if ov, found := o.table.Get(k); !found || !Equal(v, ov) {
			equal = false
		}
	})
	return equal
}

// items returns (key, value) tuples in insertion order, backing the
// builtin dict.items() used by the §8 end-to-end scenario.
func (d *ObjDict) items(vm *VM) []Value {
	out := make([]Value, 0, d.table.Len())
	d.table.Each(func(k, v Value) {
		out = append(out, vm.newTuple([]Value{k, v}))
	})
	return out
}
