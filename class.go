package krk

// dunderSlot indexes the per-class cache of resolved special methods
// (§3.3 invariant 4: "class method cache").
type dunderSlot uint8

const (
	dunderInit dunderSlot = iota
	dunderRepr
	dunderStr
	dunderGet
	dunderSet
	dunderCall
	dunderGetAttr
	dunderSetAttr
	dunderEnter
	dunderExit
	dunderIter
	dunderEq
	dunderLen
	dunderNew
	dunderContains
	dunderCount
)

var dunderNames = [dunderCount]string{
	dunderInit:     "__init__",
	dunderRepr:     "__repr__",
	dunderStr:      "__str__",
	dunderGet:      "__get__",
	dunderSet:      "__set__",
	dunderCall:     "__call__",
	dunderGetAttr:  "__getattr__",
	dunderSetAttr:  "__setattr__",
	dunderEnter:    "__enter__",
	dunderExit:     "__exit__",
	dunderIter:     "__iter__",
	dunderEq:       "__eq__",
	dunderLen:      "__len__",
	dunderNew:      "__new__",
	dunderContains: "__contains__",
}

// operatorDunders pairs a binary operator with its forward/reflected
// dunder names (§4.3 "Method resolution for operators").
var operatorDunders = map[string][2]string{
	"+":  {"__add__", "__radd__"},
	"-":  {"__sub__", "__rsub__"},
	"*":  {"__mul__", "__rmul__"},
	"/":  {"__truediv__", "__rtruediv__"},
	"//": {"__floordiv__", "__rfloordiv__"},
	"%":  {"__mod__", "__rmod__"},
	"**": {"__pow__", "__rpow__"},
	"&":  {"__and__", "__rand__"},
	"|":  {"__or__", "__ror__"},
	"^":  {"__xor__", "__rxor__"},
	"<<": {"__lshift__", "__rlshift__"},
	">>": {"__rshift__", "__rrshift__"},
	"<":  {"__lt__", "__gt__"},
	">":  {"__gt__", "__lt__"},
	"<=": {"__le__", "__ge__"},
	">=": {"__ge__", "__le__"},
}

// ObjClass describes a Kuroko class: its base, its own attribute table
// (methods + class vars), and a resolved dunder cache built once when the
// class is finalized by CLASS/INHERIT/METHOD (§3.3 invariant 4).
type ObjClass struct {
	name  string
	base  *Obj // wraps another *ObjClass, or nil
	attrs Table

	dunders [dunderCount]Value // resolved once at finalize time

	// finalizer, when set, is called by instantiate on every new instance
	// right after __init__ (the built-in Lock class uses it to attach its
	// mutex); pure-Kuroko classes leave it nil.
	finalizer func(vm *VM, inst *ObjInstance)

	noInherit bool // flagNoInherit mirrored for convenience
	selfObj   *Obj

	// finalized tracks whether dunders has been (re)built since the last
	// attrs change the VM knows about; dunder() finalizes lazily on first
	// access so METHOD opcodes executed after INHERIT are still picked up.
	finalized bool
}

func newClass(name string, base *Obj) *ObjClass {
	return &ObjClass{name: name, base: base}
}

func (c *ObjClass) typeName() string { return "class" }
func (c *ObjClass) repr() string     { return "<class " + c.name + ">" }
func (c *ObjClass) walkRefs(mark func(Value)) {
	if c.base != nil {
		mark(ObjValue(c.base))
	}
	c.attrs.Each(func(_, v Value) { mark(v) })
	for _, d := range c.dunders {
		mark(d)
	}
}

// finalize resolves and caches every dunder, walking the base chain once so
// runtime dispatch (GET_PROPERTY, operators) never has to walk it again.
func (c *ObjClass) finalize() {
	c.finalized = true
	for slot, name := range dunderNames {
		if name == "" {
			continue
		}
		c.dunders[slot] = c.lookupUncached(name)
	}
}

func (c *ObjClass) lookupUncached(name string) Value {
	for cls := c; cls != nil; {
		if v, ok := cls.attrs.Get(hashableString(name)); ok {
			return v
		}
		if cls.base == nil {
			break
		}
		cls = cls.base.data.(*ObjClass)
	}
	return None
}

// dunder returns the cached resolved special method, or None if the class
// (nor any base) defines it, finalizing the cache on first access.
func (c *ObjClass) dunder(slot dunderSlot) Value {
	if !c.finalized {
		c.finalize()
	}
	return c.dunders[slot]
}

// inherit copies the base's attributes and dunder cache into c, implementing
// the INHERIT opcode's "single-inheritance plus method-table copy" scheme
// (§1 Non-goals: no C3 linearization).
func (c *ObjClass) inherit(base *ObjClass) {
	c.base = nil // attrs copy makes an explicit base link unnecessary for lookup...
	base.attrs.Each(func(k, v Value) { c.attrs.Set(k, v) })
	c.dunders = base.dunders
	c.base = base.selfObj
}

// selfObj is set by the VM at class-creation time so inherit/finalize can
// reference this class's own Obj wrapper (for the base-chain walk above).
func (c *ObjClass) setSelf(o *Obj) { c.selfObj = o }

// ObjInstance is a live object: a class pointer plus its own attribute
// table (§3.2).
type ObjInstance struct {
	class *Obj // wraps *ObjClass
	attrs Table
}

func (i *ObjInstance) typeName() string {
	return i.class.data.(*ObjClass).name
}
func (i *ObjInstance) repr() string {
	return "<instance of " + i.typeName() + ">"
}
func (i *ObjInstance) walkRefs(mark func(Value)) {
	mark(ObjValue(i.class))
	i.attrs.Each(func(_, v Value) { mark(v) })
}

func (i *ObjInstance) classData() *ObjClass { return i.class.data.(*ObjClass) }
