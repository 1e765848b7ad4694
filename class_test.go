package krk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDescriptorProtocol exercises getProperty/setProperty's __get__/__set__
// dispatch (§4.3 "Attribute access": "If it is a descriptor (class with
// __get__), invoke the descriptor"). classStmt's class body only accepts
// def/pass (no class-level variable declarations), so the descriptor
// instance is installed onto Holder's class attrs directly here rather than
// through a `x = Desc()` class-body statement Kuroko source cannot express;
// the dispatch itself still runs through the ordinary getProperty/
// setProperty entry points exactly as GET_PROPERTY/SET_PROPERTY would reach
// them.
func TestDescriptorProtocol(t *testing.T) {
	vm := NewVM()
	_, err := Interpret(vm, strings.Join([]string{
		"class Desc:",
		"    def __get__(self, instance, owner):",
		"        return instance._value * 2",
		"    def __set__(self, instance, value):",
		"        instance._value = value",
		"class Holder:",
		"    def __init__(self):",
		"        pass",
		"",
	}, "\n"), "<test>")
	require.NoError(t, err)

	descClsVal, ok := vm.globals.Get(hashableString("Desc"))
	require.True(t, ok)
	holderClsVal, ok := vm.globals.Get(hashableString("Holder"))
	require.True(t, ok)
	holderClass := holderClsVal.AsObject().data.(*ObjClass)

	descInst := &ObjInstance{class: descClsVal.AsObject()}
	descObj := vm.allocObj(ObjKindInstance, descInst)
	holderClass.attrs.Set(vm.newString("x"), ObjValue(descObj))
	holderClass.finalized = false

	th := newThreadState(vm, len(vm.threads))
	vm.threads = append(vm.threads, th)

	holder, err := vm.instantiate(th, holderClsVal.AsObject(), holderClass, nil, nil)
	require.NoError(t, err)

	require.NoError(t, vm.setProperty(th, holder, "x", Int(21)))

	got, err := vm.getProperty(th, holder, "x")
	require.NoError(t, err)
	require.Equal(t, int64(42), got.AsInt())
}
