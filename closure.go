package krk

// FunctionKind records what a CodeObject was compiled as, driving implicit
// `self`/`super` binding and whether an implicit `return None` vs
// `return self` is emitted (§4.2 Scopes: "function type").
type FunctionKind uint8

const (
	FuncModule FunctionKind = iota
	FuncFunction
	FuncMethod
	FuncInit
	FuncLambda
	FuncStaticMethod
	FuncClassMethod
)

// ObjCode is an immutable compiled function body: bytecode chunk,
// constants, line map, argument arity, and debug metadata (§3.2).
type ObjCode struct {
	chunk Chunk

	name          string
	qualifiedName string

	argNames    []string // positional + optional, in declared order
	requiredArgCount int
	argDefaults []Value // parallel to the optional tail of argNames

	kwonlyNames    []string
	kwonlyDefaults []Value

	collectsArgs   bool // *args
	collectsKwargs bool // **kwargs

	isGenerator  bool
	isCoroutine  bool

	kind FunctionKind

	// upvalueDescs is filled in by the enclosing compiler when it emits
	// OP_CLOSURE; each entry says whether to capture a local of the
	// immediately enclosing function or one of its own upvalues.
	upvalueDescs []upvalueDesc

	// localNames supports the debug-table / disassembler use case of
	// mapping a local slot back to a source name.
	localNames []string
}

type upvalueDesc struct {
	isLocal bool
	index   int
}

func (c *ObjCode) typeName() string { return "codeobject" }
func (c *ObjCode) repr() string     { return "<code " + c.qualifiedName + ">" }
func (c *ObjCode) walkRefs(mark func(Value)) {
	for _, v := range c.chunk.constants {
		mark(v)
	}
	for _, v := range c.argDefaults {
		mark(v)
	}
	for _, v := range c.kwonlyDefaults {
		mark(v)
	}
}

// arity returns (required, optional, hasVarArgs, kwOnly, hasKwargs).
func (c *ObjCode) arity() (required, optional int, hasVarArgs bool, kwOnly int, hasKwargs bool) {
	return c.requiredArgCount, len(c.argNames) - c.requiredArgCount, c.collectsArgs, len(c.kwonlyNames), c.collectsKwargs
}

// ObjUpvalue is storage for a variable referenced by an inner function:
// open (still on the owning thread's stack) or closed (copied into value).
type ObjUpvalue struct {
	thread   *threadState
	location int // stack index, meaningful while open
	closed   bool
	value    Value

	// nextObj threads the per-thread open-upvalues list, sorted by
	// descending stack position (§3.3 invariant 3). It wraps the next
	// *ObjUpvalue in its own *Obj so the GC can mark along the chain
	// without fabricating an unlinked wrapper.
	nextObj *Obj
}

// next returns the next open upvalue in the chain, or nil at the end.
func (u *ObjUpvalue) next() *ObjUpvalue {
	if u.nextObj == nil {
		return nil
	}
	return u.nextObj.data.(*ObjUpvalue)
}

func (u *ObjUpvalue) typeName() string { return "upvalue" }
func (u *ObjUpvalue) repr() string     { return "<upvalue>" }
func (u *ObjUpvalue) walkRefs(mark func(Value)) {
	if u.closed {
		mark(u.value)
	}
}

func (u *ObjUpvalue) get() Value {
	if u.closed {
		return u.value
	}
	return u.thread.stack[u.location]
}

func (u *ObjUpvalue) set(v Value) {
	if u.closed {
		u.value = v
		return
	}
	u.thread.stack[u.location] = v
}

// close copies the upvalue's stack slot into its own storage. Invariant 3:
// an upvalue closes exactly once.
func (u *ObjUpvalue) close() {
	if !u.closed {
		u.value = u.thread.stack[u.location]
		u.closed = true
		u.thread = nil
	}
}

// ObjClosure pairs a CodeObject with its captured upvalues, an attribute
// table for decorators/annotations, and the globals table it closes over
// (a function's globals are its defining module's, not the caller's).
type ObjClosure struct {
	code        *ObjCode
	codeObj     *Obj // wraps code, kept so the GC can mark it through this closure
	selfObj     *Obj // wraps this closure itself, so a running CallFrame can root it (§5.3 "roots")
	upvalues    []*Obj // each wraps an *ObjUpvalue
	globals     *Table
	attrs       Table
	annotations *ObjDict
	doc         string
}

func (c *ObjClosure) typeName() string { return "function" }
func (c *ObjClosure) repr() string     { return "<function " + c.code.qualifiedName + ">" }
func (c *ObjClosure) walkRefs(mark func(Value)) {
	for _, uv := range c.upvalues {
		mark(ObjValue(uv))
	}
	mark(ObjValue(c.codeObj))
	c.attrs.Each(func(_, v Value) { mark(v) })
}

// codeObj caches the Obj wrapper for c.code so the GC can mark the code
// object itself (code objects outlive any one closure via the compiler's
// in-progress chain, but a closure is the common root that keeps one alive
// at runtime).
func (c *ObjClosure) setCode(o *Obj) { c.codeObj = o }

// setSelf records the *Obj wrapping this closure, the same pattern
// ObjClass/ObjIterator use for their own selfObj: a CallFrame stores this
// wrapper (not just the raw *ObjClosure) so collectGarbage can root a
// closure that is executing its own body with no other live reference to it
// (§5.3 "roots", §8 invariant 5).
func (c *ObjClosure) setSelf(o *Obj) { c.selfObj = o }

// NativeFunc is a host-provided function, exposed to Kuroko code the same
// way a Closure is. args holds the positional arguments and kwPairs the
// flattened (key, value) keyword arguments; a native typically further
// destructures both with ParseArgs (§6.4).
type NativeFunc func(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error)

// ObjNative wraps a NativeFunc with a display name and docstring, mirroring
// §3.2's "Native" kind.
type ObjNative struct {
	name string
	doc  string
	fn   NativeFunc
}

func (n *ObjNative) typeName() string { return "nativefunction" }
func (n *ObjNative) repr() string     { return "<builtin-function " + n.name + ">" }

// ObjBoundMethod pairs a receiver with a callable method, the result of
// accessing a function-valued attribute through an instance (§4.3
// "Attribute access").
type ObjBoundMethod struct {
	receiver Value
	method   Value
}

func (b *ObjBoundMethod) typeName() string { return "boundmethod" }
func (b *ObjBoundMethod) repr() string {
	return "<bound method of " + Repr(b.receiver) + ">"
}
func (b *ObjBoundMethod) walkRefs(mark func(Value)) {
	mark(b.receiver)
	mark(b.method)
}
