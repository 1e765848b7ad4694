package krk

import "fmt"

// parseArgs implements the native-function argument mini-language (§6.4
// `parse_args`): a format string of type codes, each consuming one of args
// and writing through the matching out pointer, with `|` marking the start
// of optional parameters, `*` collecting remaining positional args into a
// *[]Value, `$` marking the start of keyword-only parameters drawn from
// kwPairs, and `~` tolerating unrecognized extra arguments instead of
// raising TypeError.
//
//	i   int64, out is *int64
//	f   float64, out is *float64 (also accepts an int, widened)
//	s   string, out is *string
//	V   any Value, out is *Value
//	O!  object of a specific objData type, out is *Value (checked by the
//	    caller after the call, since Go generics can't express the type gate
//	    here without a heavier callback)
//
// fname is used in error messages ("fname() takes ...").
func parseArgs(vm *VM, t *threadState, fname, spec string, args []Value, kwPairs []Value, outs ...interface{}) error {
	optional := false
	kwOnly := false
	tolerant := false
	ai := 0
	oi := 0

	consumeOne := func(code byte) error {
		if oi >= len(outs) {
			return fmt.Errorf("parseArgs: spec %q longer than outs", spec)
		}
		if ai >= len(args) {
			if optional {
				oi++
				return nil
			}
			return vm.runtimeErrorf(t, "TypeError", "%s() missing required argument", fname)
		}
		v := args[ai]
		switch code {
		case 'i':
			if !v.IsInt() {
				return vm.runtimeErrorf(t, "TypeError", "%s() expected int, got '%s'", fname, v.TypeName())
			}
			*outs[oi].(*int64) = v.AsInt()
		case 'f':
			if !isNumeric(v) {
				return vm.runtimeErrorf(t, "TypeError", "%s() expected float, got '%s'", fname, v.TypeName())
			}
			*outs[oi].(*float64) = toFloat(v)
		case 's':
			sv, ok := asStr(v)
			if !ok {
				return vm.runtimeErrorf(t, "TypeError", "%s() expected str, got '%s'", fname, v.TypeName())
			}
			*outs[oi].(*string) = sv
		case 'V':
			*outs[oi].(*Value) = v
		default:
			return fmt.Errorf("parseArgs: unknown spec code %q", code)
		}
		ai++
		oi++
		return nil
	}

	i := 0
	for i < len(spec) {
		c := spec[i]
		switch c {
		case '|':
			optional = true
			i++
			continue
		case '$':
			kwOnly = true
			i++
			continue
		case '~':
			tolerant = true
			i++
			continue
		case '*':
			rest := append([]Value(nil), args[ai:]...)
			*outs[oi].(*[]Value) = rest
			ai = len(args)
			oi++
			i++
			continue
		case 'O':
			if i+1 < len(spec) && spec[i+1] == '!' {
				if err := consumeOne('V'); err != nil {
					return err
				}
				i += 2
				continue
			}
		}
		if kwOnly {
			// kw-only params are looked up by out-index position in kwPairs
			// rather than positionally; callers needing true kwonly binding
			// should use bindArguments instead (this path covers natives
			// with a handful of simple kwonly flags).
			name := fmt.Sprintf("arg%d", oi)
			found := false
			for k := 0; k+1 < len(kwPairs); k += 2 {
				if Str(kwPairs[k]) == name {
					args = append(args, kwPairs[k+1])
					found = true
					break
				}
			}
			if !found && !optional {
				return vm.runtimeErrorf(t, "TypeError", "%s() missing required keyword argument", fname)
			}
		}
		if err := consumeOne(c); err != nil {
			return err
		}
		i++
	}
	if !tolerant && ai < len(args) {
		return vm.runtimeErrorf(t, "TypeError", "%s() takes at most %d arguments (%d given)", fname, ai, len(args))
	}
	return nil
}
