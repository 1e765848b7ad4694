package krk

import "strings"

// stringMethods covers the commonly used str methods (§6.3); strings are
// immutable, so every method here returns a fresh ObjString rather than
// mutating recv.
var stringMethods = map[string]methodFunc{
	"upper": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		return vm.newString(strings.ToUpper(recv.AsObject().data.(*ObjString).chars)), nil
	},
	"lower": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		return vm.newString(strings.ToLower(recv.AsObject().data.(*ObjString).chars)), nil
	},
	"strip": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		cutset := stripCutset(args)
		return vm.newString(strings.Trim(recv.AsObject().data.(*ObjString).chars, cutset)), nil
	},
	"lstrip": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		cutset := stripCutset(args)
		return vm.newString(strings.TrimLeft(recv.AsObject().data.(*ObjString).chars, cutset)), nil
	},
	"rstrip": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		cutset := stripCutset(args)
		return vm.newString(strings.TrimRight(recv.AsObject().data.(*ObjString).chars, cutset)), nil
	},
	"split": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		s := recv.AsObject().data.(*ObjString).chars
		var parts []string
		if len(args) == 0 {
			parts = strings.Fields(s)
		} else {
			sep, ok := asStr(args[0])
			if !ok {
				return None, vm.runtimeErrorf(t, "TypeError", "split() separator must be a string")
			}
			parts = strings.Split(s, sep)
		}
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = vm.newString(p)
		}
		return vm.newList(out), nil
	},
	"join": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		sep := recv.AsObject().data.(*ObjString).chars
		items, err := drain(vm, t, args[0])
		if err != nil {
			return None, err
		}
		parts := make([]string, len(items))
		for i, v := range items {
			s, ok := asStr(v)
			if !ok {
				return None, vm.runtimeErrorf(t, "TypeError", "join() sequence item %d is not a string", i)
			}
			parts[i] = s
		}
		return vm.newString(strings.Join(parts, sep)), nil
	},
	"startswith": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		prefix, _ := asStr(args[0])
		return Bool(strings.HasPrefix(recv.AsObject().data.(*ObjString).chars, prefix)), nil
	},
	"endswith": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		suffix, _ := asStr(args[0])
		return Bool(strings.HasSuffix(recv.AsObject().data.(*ObjString).chars, suffix)), nil
	},
	"replace": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		old, _ := asStr(args[0])
		new, _ := asStr(args[1])
		n := -1
		if len(args) > 2 && args[2].IsInt() {
			n = int(args[2].AsInt())
		}
		return vm.newString(strings.Replace(recv.AsObject().data.(*ObjString).chars, old, new, n)), nil
	},
	"find": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		needle, _ := asStr(args[0])
		i := strings.Index(recv.AsObject().data.(*ObjString).chars, needle)
		if i < 0 {
			return Int(-1), nil
		}
		return Int(int64(len([]rune(recv.AsObject().data.(*ObjString).chars[:i])))), nil
	},
	"format": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		return vm.newString(formatKuroko(recv.AsObject().data.(*ObjString).chars, args, kw)), nil
	},
	"__getitem__": func(vm *VM, t *threadState, recv Value, args []Value, kw []Value) (Value, error) {
		s := recv.AsObject().data.(*ObjString)
		if sl, ok := asObjData(args[0]).(*ObjSlice); ok {
			start, stop, step, err := resolveSliceBounds(sl, s.count)
			if err != nil {
				return None, vm.runtimeErrorf(t, "TypeError", "%v", err)
			}
			var b []rune
			if step > 0 {
				for i := start; i < stop; i += step {
					b = append(b, s.codepointAt(i))
				}
			} else {
				for i := start; i > stop; i += step {
					b = append(b, s.codepointAt(i))
				}
			}
			return vm.newString(string(b)), nil
		}
		key := args[0]
		if !key.IsInt() {
			return None, vm.runtimeErrorf(t, "TypeError", "string indices must be integers, not '%s'", key.TypeName())
		}
		i := normalizeIndex(int(key.AsInt()), s.count)
		if i < 0 || i >= s.count {
			return None, vm.runtimeErrorf(t, "IndexError", "string index out of range")
		}
		return vm.newString(string(s.codepointAt(i))), nil
	},
}

func stripCutset(args []Value) string {
	if len(args) == 0 {
		return " \t\n\r\v\f"
	}
	s, _ := asStr(args[0])
	return s
}

// formatKuroko implements the minimal {} / {0} / {name} substitution mini-
// language behind str.format() (§6.3), using positional args and kwPairs as
// (name, value) pairs; this is deliberately not a full format-spec engine.
func formatKuroko(template string, args []Value, kwPairs []Value) string {
	kw := make(map[string]Value, len(kwPairs)/2)
	for i := 0; i+1 < len(kwPairs); i += 2 {
		kw[Str(kwPairs[i])] = kwPairs[i+1]
	}
	var out strings.Builder
	auto := 0
	i := 0
	for i < len(template) {
		c := template[i]
		if c == '{' && i+1 < len(template) && template[i+1] == '{' {
			out.WriteByte('{')
			i += 2
			continue
		}
		if c == '}' && i+1 < len(template) && template[i+1] == '}' {
			out.WriteByte('}')
			i += 2
			continue
		}
		if c == '{' {
			j := strings.IndexByte(template[i:], '}')
			if j < 0 {
				out.WriteString(template[i:])
				break
			}
			field := template[i+1 : i+j]
			i += j + 1
			if field == "" {
				if auto < len(args) {
					out.WriteString(Str(args[auto]))
				}
				auto++
				continue
			}
			if n, ok := parseSimpleInt(field); ok && n < len(args) {
				out.WriteString(Str(args[n]))
				continue
			}
			if v, ok := kw[field]; ok {
				out.WriteString(Str(v))
				continue
			}
			continue
		}
		out.WriteByte(c)
		i++
	}
	return out.String()
}

func parseSimpleInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
