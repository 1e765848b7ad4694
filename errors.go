package krk

// Kuroko's built-in exception hierarchy, all rooted at BaseException. The VM
// pre-creates one ObjClass per name at startup (vm.bootstrapExceptions) and
// every raised built-in error is an instance of one of these classes,
// carrying an "arg" attribute matching the exception's conventional
// single constructor argument.
var exceptionHierarchy = []struct {
	name string
	base string
}{
	{"BaseException", ""},
	{"Exception", "BaseException"},
	{"TypeError", "Exception"},
	{"ValueError", "Exception"},
	{"ArgumentError", "TypeError"},
	{"IndexError", "Exception"},
	{"KeyError", "Exception"},
	{"AttributeError", "Exception"},
	{"NameError", "Exception"},
	{"ImportError", "Exception"},
	{"IOError", "Exception"},
	{"OSError", "Exception"},
	{"NotImplementedError", "Exception"},
	{"ZeroDivisionError", "Exception"},
	{"SyntaxError", "Exception"},
	{"AssertionError", "Exception"},
	{"KeyboardInterrupt", "BaseException"},
	{"SystemError", "Exception"},
	{"ThreadError", "Exception"},
	{"StopIteration", "Exception"},
	{"RecursionError", "Exception"},
}

// bootstrapExceptions populates vm.globals (and vm.exceptionClasses) with the
// exception classes above, run once from NewVM before any user code
// compiles (so `except ValueError:` resolves a real global).
//
// BaseException alone gets native __init__/__str__/__repr__ methods; every
// other class inherits them via the ordinary single-inheritance attrs copy
// (ObjClass.inherit), so `raise ValueError("bad")` stores "bad" under the
// instance's conventional "arg" attribute exactly like a user-defined
// class's constructor would, and str()/repr() read it back.
func (vm *VM) bootstrapExceptions() {
	classes := make(map[string]*Obj, len(exceptionHierarchy))
	for _, ent := range exceptionHierarchy {
		var baseObj *Obj
		if ent.base != "" {
			baseObj = classes[ent.base]
		}
		cls := newClass(ent.name, baseObj)
		o := vm.allocObj(ObjKindClass, cls)
		cls.setSelf(o)
		if baseObj != nil {
			cls.inherit(baseObj.data.(*ObjClass))
			cls.setSelf(o)
		} else {
			cls.attrs.Set(vm.newString("__init__"), ObjValue(vm.allocObj(ObjKindNative, &ObjNative{name: "__init__", fn: exceptionInit})))
			cls.attrs.Set(vm.newString("__str__"), ObjValue(vm.allocObj(ObjKindNative, &ObjNative{name: "__str__", fn: exceptionStr})))
			cls.attrs.Set(vm.newString("__repr__"), ObjValue(vm.allocObj(ObjKindNative, &ObjNative{name: "__repr__", fn: exceptionRepr})))
		}
		cls.finalize()
		classes[ent.name] = o
		vm.globals.Set(vm.newString(ent.name), ObjValue(o))
	}
	vm.exceptionClasses = classes
}

func exceptionInit(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) == 0 {
		return None, nil
	}
	inst, ok := asObjData(args[0]).(*ObjInstance)
	if !ok {
		return None, nil
	}
	if len(args) > 1 {
		inst.attrs.Set(vm.newString("arg"), args[1])
	}
	return None, nil
}

func exceptionStr(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) == 0 {
		return vm.newString(""), nil
	}
	return vm.newString(exceptionMessage(args[0])), nil
}

func exceptionRepr(vm *VM, t *threadState, args []Value, kwPairs []Value) (Value, error) {
	if len(args) == 0 {
		return vm.newString("<exception>"), nil
	}
	name := "Exception"
	if inst, ok := asObjData(args[0]).(*ObjInstance); ok {
		name = inst.typeName()
	}
	return vm.newString(name + "(" + quoteKuroko(exceptionMessage(args[0])) + ")"), nil
}

// newException constructs a new instance of the built-in exception class
// named class (falling back to Exception if unknown), with message stored
// under its conventional "arg" attribute, mirroring the constructor Python
// exceptions receive: `ValueError("bad thing")`.
func (vm *VM) newException(class, message string) Value {
	co, ok := vm.exceptionClasses[class]
	if !ok {
		co = vm.exceptionClasses["Exception"]
	}
	inst := &ObjInstance{class: co}
	io := vm.allocObj(ObjKindInstance, inst)
	inst.attrs.Set(vm.newString("arg"), vm.newString(message))
	return ObjValue(io)
}

// isInstanceOfException reports whether v is an instance of the named
// built-in exception class or one of its subclasses, used by except-clause
// matching (FILTER_EXCEPT) and by the embedding API's error classification.
func (vm *VM) isInstanceOfException(v Value, class string) bool {
	target, ok := vm.exceptionClasses[class]
	if !ok {
		return false
	}
	if !v.IsObject() {
		return false
	}
	inst, ok := v.AsObject().data.(*ObjInstance)
	if !ok {
		return false
	}
	for c := inst.class; c != nil; {
		if c == target {
			return true
		}
		cd := c.data.(*ObjClass)
		c = cd.base
	}
	return false
}

// exceptionMessage extracts the conventional "arg" attribute for display in
// a traceback, falling back to the class name.
func exceptionMessage(v Value) string {
	if !v.IsObject() {
		return Str(v)
	}
	inst, ok := v.AsObject().data.(*ObjInstance)
	if !ok {
		return Str(v)
	}
	if msg, ok := inst.attrs.Get(hashableString("arg")); ok {
		return Str(msg)
	}
	return inst.typeName()
}
