package krk

import "strconv"

// compileParamList parses a parenthesized or lambda parameter list up to
// (not consuming) terminator, declaring each parameter as a local in fc in
// exactly the slot order bindArguments expects: positional params (with any
// trailing defaults), then *args, then **kwargs (§4.5 "bindArguments").
// Keyword-only parameters (a bare '*' separator) are not supported; every
// declared name before an optional *args/**kwargs tail is a plain positional
// parameter, which keeps the single-pass grammar simple and still covers
// §6.4's positional/default/*args/**kwargs surface.
func compileParamList(p *Parser, fc *Compiler, terminator TokenKind) {
	sawDefault := false
	for !p.check(terminator) && !p.check(TokEOF) {
		if p.match(TokStarStar) {
			p.consume(TokIdentifier, "expected parameter name after '**'")
			name := p.previous.Text
			fc.code.collectsKwargs = true
			fc.declareLocal(name)
			fc.code.localNames = append(fc.code.localNames, name)
			p.match(TokComma)
			break
		}
		if p.match(TokStar) {
			p.consume(TokIdentifier, "expected parameter name after '*'")
			name := p.previous.Text
			fc.code.collectsArgs = true
			fc.declareLocal(name)
			fc.code.localNames = append(fc.code.localNames, name)
			if !p.match(TokComma) {
				break
			}
			continue
		}
		p.consume(TokIdentifier, "expected parameter name")
		name := p.previous.Text
		fc.declareLocal(name)
		fc.code.localNames = append(fc.code.localNames, name)
		fc.code.argNames = append(fc.code.argNames, name)
		if p.match(TokEquals) {
			sawDefault = true
			fc.code.argDefaults = append(fc.code.argDefaults, parseConstDefault(p, fc))
		} else {
			if sawDefault {
				p.errorAt(p.previous, "non-default argument follows default argument")
			}
			fc.code.requiredArgCount++
		}
		if !p.match(TokComma) {
			break
		}
	}
}

// parseConstDefault parses a default-argument expression. bindArguments
// consults code.argDefaults directly (no bytecode runs to produce them), so
// a default must be knowable at compile time; this covers the literal forms
// §6.3 parameter defaults actually need.
func parseConstDefault(p *Parser, fc *Compiler) Value {
	neg := p.match(TokMinus)
	switch {
	case p.match(TokInt):
		n, _ := strconv.ParseInt(p.previous.Text, 0, 64)
		if neg {
			n = -n
		}
		return Int(n)
	case p.match(TokFloat):
		f, _ := strconv.ParseFloat(p.previous.Text, 64)
		if neg {
			f = -f
		}
		return Float(f)
	case p.match(TokString):
		return fc.vm.newString(p.previous.Text)
	case p.match(TokTrue):
		return True
	case p.match(TokFalse):
		return False
	case p.match(TokNone):
		return None
	default:
		p.errorAt(p.current, "default argument must be a constant")
		return None
	}
}

// finishFunction closes out a nested function compiler: it emits the
// implicit trailing return every body falls through to if its own
// statements didn't already return (§4.2 "function type" — FuncInit returns
// self, everything else returns None), finalizes fc's CodeObject, pops it
// off the GC-visible compiler chain, and emits OP_CLOSURE in the enclosing
// compiler referencing it as a constant. OP_CLOSURE reads its upvalue
// descriptors straight off the CodeObject (innerCode.upvalueDescs), so
// there is no per-upvalue trailing byte to emit here, unlike a classic
// bytecode-closure encoding.
func finishFunction(p *Parser, fc *Compiler, line int) {
	implicitLine := p.previous.Line
	if fc.kind == FuncInit {
		fc.code.chunk.WriteIndexed(OpGetLocal, OpGetLocalLong, 0, implicitLine)
	} else {
		fc.emit(OpNone, implicitLine)
	}
	fc.emit(OpReturn, implicitLine)

	fc.code.upvalueDescs = fc.upvalues
	fc.popChain()

	enclosing := fc.enclosing
	codeObj := enclosing.vm.allocObj(ObjKindCode, fc.code)
	idx := enclosing.code.chunk.AddConstant(ObjValue(codeObj))
	enclosing.code.chunk.WriteIndexed(OpClosure, OpClosureLong, idx, line)
}
