package krk

// compileBlock compiles one indented suite: the statements that make up the
// body of a def/class/if/while/for/try/with header. It establishes the
// block's indentation width from its own first statement (which must sit
// strictly deeper than headerWidth) and then compiles every further
// statement at that same width, stopping as soon as a shallower or unequal
// indentation (or EOF) is seen — leaving that token for the caller, exactly
// the way peekContinuation leaves a non-matching line for its own caller
// (§4.1 "Indentation").
func compileBlock(p *Parser, c *Compiler, headerWidth int) {
	p.skipEOLs()
	if !p.check(TokIndentation) || p.current.Width <= headerWidth {
		p.errorAt(p.current, "expected an indented block")
		return
	}
	width := p.current.Width
	for p.check(TokIndentation) && p.current.Width == width {
		p.advance()
		compileStatement(p, c, width)
		p.skipEOLs()
	}
}

// compileStatement dispatches on the statement's leading keyword, advancing
// past it first so every handler's p.previous is that keyword (matching the
// convention lambdaExpr/compileParamList already rely on for p.previous.Line
// bookkeeping).
func compileStatement(p *Parser, c *Compiler, width int) {
	switch p.current.Kind {
	case TokIf:
		p.advance()
		ifStmt(p, c, width)
	case TokWhile:
		p.advance()
		whileStmt(p, c, width)
	case TokFor:
		p.advance()
		forStmt(p, c, width)
	case TokLet:
		p.advance()
		letStmt(p, c)
	case TokDef:
		p.advance()
		defStmt(p, c, width, false)
	case TokAsync:
		p.advance()
		p.consume(TokDef, "expected 'def' after 'async'")
		defStmt(p, c, width, true)
	case TokClass:
		p.advance()
		classStmt(p, c, width)
	case TokTry:
		p.advance()
		tryStmt(p, c, width)
	case TokWith:
		p.advance()
		withStmt(p, c, width)
	case TokReturn:
		p.advance()
		returnStmt(p, c)
	case TokRaise:
		p.advance()
		raiseStmt(p, c)
	case TokImport:
		p.advance()
		importStmt(p, c)
	case TokFrom:
		p.advance()
		fromImportStmt(p, c)
	case TokExport:
		p.advance()
		exportStmt(p, c)
	case TokBreak:
		p.advance()
		breakStmt(p, c)
	case TokContinue:
		p.advance()
		continueStmt(p, c)
	case TokPass:
		p.advance()
		endOfStatement(p)
	case TokDel:
		p.advance()
		delStmt(p, c)
	case TokAssert:
		p.advance()
		assertStmt(p, c)
	default:
		expressionOrAssignStmt(p, c)
	}
}

// consumeHeaderEOL requires the newline that ends a compound statement's
// header line (`if cond:`, `def f():`, ...), tolerating a bare EOF for a
// source file with no trailing newline.
func consumeHeaderEOL(p *Parser) {
	if !p.match(TokEOL) && !p.check(TokEOF) {
		p.errorAt(p.current, "expected newline")
	}
}

// endOfStatement requires the newline that ends a simple statement.
func endOfStatement(p *Parser) {
	if !p.match(TokEOL) && !p.check(TokEOF) {
		p.errorAt(p.current, "expected newline after statement")
	}
}

// peekContinuation looks at the next source line without permanently
// consuming it: if it is indented at exactly width and starts with one of
// kinds, the keyword is consumed (p.previous becomes it, ready for the
// caller to keep parsing its clause) and returned. Otherwise the parser is
// restored to exactly where it was, relying on Scanner.Unscan's one-token
// pushback (§4.1 "Scanner.Unscan").
func peekContinuation(p *Parser, width int, kinds ...TokenKind) TokenKind {
	save := *p
	p.skipEOLs()
	if !p.check(TokIndentation) || p.current.Width != width {
		*p = save
		return TokEOF
	}
	p.advance() // current = first real token of that line
	for _, k := range kinds {
		if p.current.Kind == k {
			p.advance()
			return k
		}
	}
	*p = save
	return TokEOF
}

// patchJumpTo backpatches the jump at offset at (as returned by
// Chunk.EmitJump) to land at an already-known target offset, the same
// arithmetic as Chunk.PatchJump but for a target other than "here" (used
// when a jump must reach a label recorded earlier, e.g. OP_PUSH_TRY's
// target is the except-dispatch chain, not the jump instruction's own
// textual successor).
func patchJumpTo(chunk *Chunk, at, target int) {
	dist := target - (at + 2)
	if dist >= -32768 && dist <= 32767 {
		chunk.code[at] = byte(uint16(dist) >> 8)
		chunk.code[at+1] = byte(uint16(dist))
		return
	}
	if chunk.overlongJumps == nil {
		chunk.overlongJumps = make(map[int]int)
	}
	chunk.overlongJumps[at] = dist
	chunk.code[at], chunk.code[at+1] = 0, 0
}

// declareOrDefine binds name to whatever value is currently on top of the
// stack: a global at module scope (DEFINE_GLOBAL, which pops it), or a
// plain local slot otherwise (declareLocal, which emits nothing since the
// value is already correctly positioned).
func declareOrDefine(c *Compiler, name string, line int) {
	if c.scopeDepth == 0 {
		idx := c.code.chunk.AddConstant(c.vm.newString(name))
		c.code.chunk.WriteIndexed(OpDefineGlobal, OpDefineGlobalLong, idx, line)
	} else {
		c.declareLocal(name)
	}
}

// expressionOrAssignStmt covers both bare expression statements and
// assignment statements: every assignment-producing opcode leaves its value
// on the stack (§4.3), so either form reduces to parsing one expression at
// statement precedence followed by a POP to discard the result.
func expressionOrAssignStmt(p *Parser, c *Compiler) {
	line := p.current.Line
	parseExpression(p, c)
	c.emit(OpPop, line)
	endOfStatement(p)
}

// letStmt handles `let name = expr` and `let (a, b, ...) = expr` tuple
// unpacking. OP_UNPACK pushes its n items back in their original order
// (items[0] deepest), so a local target list declares names in that same
// order (locals occupy contiguous stack slots bottom-to-top); a global
// target list must instead DEFINE_GLOBAL in reverse order, since
// DEFINE_GLOBAL only ever consumes the single current stack top (§4.2
// "OP_UNPACK").
func letStmt(p *Parser, c *Compiler) {
	line := p.previous.Line
	if p.match(TokLParen) {
		var names []string
		for !p.check(TokRParen) {
			p.consume(TokIdentifier, "expected name in unpack target")
			names = append(names, p.previous.Text)
			if !p.match(TokComma) {
				break
			}
		}
		p.consume(TokRParen, "expected ')'")
		p.consume(TokEquals, "expected '=' after unpack target")
		parseExpression(p, c)
		c.emit(OpUnpack, line)
		c.emit(OpCode(len(names)), line)
		if c.scopeDepth == 0 {
			for i := len(names) - 1; i >= 0; i-- {
				declareOrDefine(c, names[i], line)
			}
		} else {
			for _, name := range names {
				declareOrDefine(c, name, line)
			}
		}
		endOfStatement(p)
		return
	}
	p.consume(TokIdentifier, "expected name after 'let'")
	name := p.previous.Text
	p.consume(TokEquals, "expected '=' after 'let' name")
	parseExpression(p, c)
	declareOrDefine(c, name, line)
	endOfStatement(p)
}

// ifStmt compiles `if`/chained `elif`/optional trailing `else`, using
// peekContinuation to detect each continuation clause without consuming a
// line that turns out not to belong to this chain.
func ifStmt(p *Parser, c *Compiler, width int) {
	chunk := &c.code.chunk
	var endJumps []int
	compileIfBranch := func() {
		parseExpression(p, c)
		p.consume(TokColon, "expected ':' after condition")
		consumeHeaderEOL(p)
		falseJump := chunk.EmitJump(OpJumpIfFalse, p.previous.Line)
		c.emit(OpPop, p.previous.Line)
		c.beginScope()
		compileBlock(p, c, width)
		c.endScope(p.previous.Line)
		endJumps = append(endJumps, chunk.EmitJump(OpJump, p.previous.Line))
		chunk.PatchJump(falseJump)
		c.emit(OpPop, p.previous.Line)
	}
	compileIfBranch()
	for peekContinuation(p, width, TokElif) == TokElif {
		compileIfBranch()
	}
	if peekContinuation(p, width, TokElse) == TokElse {
		p.consume(TokColon, "expected ':' after 'else'")
		consumeHeaderEOL(p)
		c.beginScope()
		compileBlock(p, c, width)
		c.endScope(p.previous.Line)
	}
	for _, j := range endJumps {
		chunk.PatchJump(j)
	}
}

// whileStmt compiles a plain condition loop; it carries no extra stack
// values below its body's locals, so its break/continue unwind is trivial
// (extraPops = 0).
func whileStmt(p *Parser, c *Compiler, width int) {
	chunk := &c.code.chunk
	line := p.previous.Line
	loopStart := len(chunk.code)
	parseExpression(p, c)
	p.consume(TokColon, "expected ':' after condition")
	consumeHeaderEOL(p)
	exitJump := chunk.EmitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)

	c.pushLoop(loopStart, 0)
	c.beginScope()
	compileBlock(p, c, width)
	c.endScope(p.previous.Line)
	chunk.EmitLoop(loopStart, p.previous.Line)
	chunk.PatchJump(exitJump)
	c.emit(OpPop, p.previous.Line)
	for _, j := range c.popLoop() {
		chunk.PatchJump(j)
	}
}

// forStmt compiles `for name[, name...] in iterable:`. OP_INVOKE_ITER
// leaves the iterator value itself on the stack for the duration of the
// loop (the live value OP_INVOKE_NEXT calls each iteration), so the loop
// body's locals sit one slot above it; break must pop that extra value,
// continue must not (§4.3 "OP_INVOKE_ITER"/"OP_INVOKE_NEXT").
func forStmt(p *Parser, c *Compiler, width int) {
	chunk := &c.code.chunk
	line := p.previous.Line
	var names []string
	p.consume(TokIdentifier, "expected loop variable name")
	names = append(names, p.previous.Text)
	for p.match(TokComma) {
		p.consume(TokIdentifier, "expected loop variable name")
		names = append(names, p.previous.Text)
	}
	p.consume(TokIn, "expected 'in' in for statement")
	parseExpression(p, c)
	p.consume(TokColon, "expected ':' after for clause")
	consumeHeaderEOL(p)

	c.emit(OpInvokeIter, line)
	loopStart := len(chunk.code)
	exitJump := chunk.EmitJump(OpInvokeNext, line)

	c.pushLoop(loopStart, 1)
	c.beginScope()
	if len(names) == 1 {
		c.declareLocal(names[0])
	} else {
		c.emit(OpUnpack, line)
		c.emit(OpCode(len(names)), line)
		for _, name := range names {
			c.declareLocal(name)
		}
	}
	compileBlock(p, c, width)
	bodyLine := p.previous.Line
	c.endScope(bodyLine)
	chunk.EmitLoop(loopStart, bodyLine)
	chunk.PatchJump(exitJump)
	for _, j := range c.popLoop() {
		chunk.PatchJump(j)
	}
}

func breakStmt(p *Parser, c *Compiler) {
	line := p.previous.Line
	if len(c.loopStarts) == 0 {
		p.errorAt(p.previous, "'break' outside loop")
		endOfStatement(p)
		return
	}
	n := len(c.loopStarts) - 1
	c.popLocalsAbove(c.loopDepths[n], line)
	for i := 0; i < c.loopExtraPops[n]; i++ {
		c.emit(OpPop, line)
	}
	j := c.code.chunk.EmitJump(OpJump, line)
	c.breakJumps[n] = append(c.breakJumps[n], j)
	endOfStatement(p)
}

func continueStmt(p *Parser, c *Compiler) {
	line := p.previous.Line
	if len(c.loopStarts) == 0 {
		p.errorAt(p.previous, "'continue' outside loop")
		endOfStatement(p)
		return
	}
	n := len(c.loopStarts) - 1
	c.popLocalsAbove(c.loopDepths[n], line)
	c.code.chunk.EmitLoop(c.loopStarts[n], line)
	endOfStatement(p)
}

// tryStmt compiles try/except/else/finally as a single shared tail: the
// body, each matched except clause, and the else clause all converge by
// pushing a one-value sentinel (None = "completed normally", or the live
// exception = "re-raise after finally") and jumping to that tail, which
// runs the finally block (if any) and then either falls through or
// re-raises (§5.3 "exception propagation").
func tryStmt(p *Parser, c *Compiler, width int) {
	chunk := &c.code.chunk
	line := p.previous.Line
	p.consume(TokColon, "expected ':' after 'try'")
	consumeHeaderEOL(p)

	pushJump := chunk.EmitJump(OpPushTry, line)
	c.beginScope()
	compileBlock(p, c, width)
	c.endScope(p.previous.Line)
	c.emit(OpPopHandler, p.previous.Line)

	if peekContinuation(p, width, TokElse) == TokElse {
		p.consume(TokColon, "expected ':' after 'else'")
		consumeHeaderEOL(p)
		c.beginScope()
		compileBlock(p, c, width)
		c.endScope(p.previous.Line)
	}
	c.emit(OpNone, p.previous.Line)
	tailJumps := []int{chunk.EmitJump(OpJump, p.previous.Line)}

	handlerEntry := len(chunk.code)
	patchJumpTo(chunk, pushJump, handlerEntry)

	sawExcept := false
	for {
		if peekContinuation(p, width, TokExcept) != TokExcept {
			break
		}
		sawExcept = true
		exLine := p.previous.Line
		if p.check(TokColon) {
			// bare "except:": always matches, must be the last clause.
			p.advance()
			consumeHeaderEOL(p)
			c.emit(OpPop, exLine)
			c.beginScope()
			compileBlock(p, c, width)
			c.endScope(p.previous.Line)
			c.emit(OpNone, p.previous.Line)
			tailJumps = append(tailJumps, chunk.EmitJump(OpJump, p.previous.Line))
			break
		}
		p.consume(TokIdentifier, "expected exception type after 'except'")
		classIdx := chunk.AddConstant(c.vm.newString(p.previous.Text))
		asName := ""
		if p.match(TokAs) {
			p.consume(TokIdentifier, "expected name after 'as'")
			asName = p.previous.Text
		}
		p.consume(TokColon, "expected ':' after except clause")
		consumeHeaderEOL(p)

		c.emit(OpDup, exLine)
		c.emit(OpFilterExcept, exLine)
		chunk.writeByte(byte(classIdx), exLine)
		noMatch := chunk.EmitJump(OpJumpIfFalse, exLine)
		c.emit(OpPop, exLine)
		c.emit(OpPop, exLine)
		c.beginScope()
		if asName != "" {
			c.declareLocal(asName)
		} else {
			c.emit(OpPop, exLine)
		}
		compileBlock(p, c, width)
		c.endScope(p.previous.Line)
		c.emit(OpNone, p.previous.Line)
		tailJumps = append(tailJumps, chunk.EmitJump(OpJump, p.previous.Line))

		chunk.PatchJump(noMatch)
		c.emit(OpPop, exLine)
		c.emit(OpPop, exLine)
	}
	_ = sawExcept // no match at chain's end falls straight through to the tail, stack=[exc]

	tailStart := len(chunk.code)
	if peekContinuation(p, width, TokFinally) == TokFinally {
		p.consume(TokColon, "expected ':' after 'finally'")
		consumeHeaderEOL(p)
		c.beginScope()
		compileBlock(p, c, width)
		c.endScope(p.previous.Line)
	}
	for _, j := range tailJumps {
		patchJumpTo(chunk, j, tailStart)
	}
	tailLine := p.previous.Line
	c.emit(OpDup, tailLine)
	c.emit(OpNone, tailLine)
	c.emit(OpIs, tailLine)
	reraiseJump := chunk.EmitJump(OpJumpIfFalse, tailLine)
	c.emit(OpPop, tailLine)
	c.emit(OpPop, tailLine)
	doneJump := chunk.EmitJump(OpJump, tailLine)
	chunk.PatchJump(reraiseJump)
	c.emit(OpPop, tailLine)
	c.emit(OpRaise, tailLine)
	chunk.PatchJump(doneJump)
}

// withStmt compiles `with expr [as name]:`, binding the context value and
// __enter__'s result to fixed local slots so the exception path can refetch
// them by slot instead of juggling stack order (§5.3 "OP_PUSH_WITH").
// __exit__'s return value is never consulted: this implementation does not
// support exception suppression via a truthy __exit__ result, a scope cut
// from Python's full protocol.
func withStmt(p *Parser, c *Compiler, width int) {
	chunk := &c.code.chunk
	line := p.previous.Line
	parseExpression(p, c)
	asName := ""
	if p.match(TokAs) {
		p.consume(TokIdentifier, "expected name after 'as'")
		asName = p.previous.Text
	}
	p.consume(TokColon, "expected ':' after with-statement")
	consumeHeaderEOL(p)

	c.beginScope()
	ctxSlot := c.declarePlaceholder()
	pushJump := chunk.EmitJump(OpPushWith, line)
	enterSlot := c.declarePlaceholder()
	if asName != "" {
		c.locals[enterSlot].name = asName
	}
	compileBlock(p, c, width)
	c.emit(OpPopHandler, p.previous.Line)

	exitLine := p.previous.Line
	exitIdx := chunk.AddConstant(c.vm.newString("__exit__"))
	chunk.WriteIndexed(OpGetLocal, OpGetLocalLong, ctxSlot, exitLine)
	c.emit(OpNone, exitLine)
	chunk.WriteIndexed(OpCallMethod, OpCallMethodLong, exitIdx, exitLine)
	c.emit(OpCode(1), exitLine)
	c.emit(OpPop, exitLine)
	doneJump := chunk.EmitJump(OpJump, exitLine)

	handlerTarget := len(chunk.code)
	patchJumpTo(chunk, pushJump, handlerTarget)
	c.beginScope()
	excSlot := c.declarePlaceholder()
	hline := p.previous.Line
	chunk.WriteIndexed(OpGetLocal, OpGetLocalLong, ctxSlot, hline)
	chunk.WriteIndexed(OpGetLocal, OpGetLocalLong, excSlot, hline)
	chunk.WriteIndexed(OpCallMethod, OpCallMethodLong, exitIdx, hline)
	c.emit(OpCode(1), hline)
	c.emit(OpPop, hline)
	chunk.WriteIndexed(OpGetLocal, OpGetLocalLong, excSlot, hline)
	c.emit(OpRaise, hline)
	c.endScope(hline) // unreachable after OP_RAISE; balances compile-time local bookkeeping

	chunk.PatchJump(doneJump)
	c.endScope(p.previous.Line)
}

// defStmt compiles a function or method declaration. Method bodies are
// compiled exactly like plain functions except for fc.kind/className,
// already threaded through by newCompiler/resolveName; "self" is never part
// of the parsed parameter list since newCompiler reserves slot 0 for it
// (§4.2 "newCompiler").
func defStmt(p *Parser, c *Compiler, width int, isAsync bool) {
	defLine := p.previous.Line
	p.consume(TokIdentifier, "expected function name")
	name := p.previous.Text
	kind := FuncFunction
	if c.className != "" {
		if name == "__init__" {
			kind = FuncInit
		} else {
			kind = FuncMethod
		}
	}
	fc := newCompiler(c.vm, c, kind, name)
	fc.className = c.className
	fc.hasSuperclass = c.hasSuperclass
	fc.code.isCoroutine = isAsync
	fc.beginScope()
	p.consume(TokLParen, "expected '(' after function name")
	compileParamList(p, fc, TokRParen)
	p.consume(TokRParen, "expected ')'")
	p.consume(TokColon, "expected ':' after function signature")
	consumeHeaderEOL(p)
	compileBlock(p, fc, width)
	finishFunction(p, fc, defLine)

	if c.className != "" {
		methodIdx := c.code.chunk.AddConstant(c.vm.newString(name))
		c.code.chunk.WriteIndexed(OpMethod, OpMethodLong, methodIdx, defLine)
	} else {
		declareOrDefine(c, name, defLine)
	}
}

// classStmt compiles `class Name[(Base)]:`. Method bodies attach via
// OP_METHOD, which reads the class object from the very top of the stack
// (§4.2 "OP_METHOD"), so the class value is refetched by name before each
// nested def instead of being tracked through arbitrary stack positions.
// Only "def" (and "pass" for an empty body) are valid class-body statements
// — no class-level variable declarations, a scope cut kept simple because
// ObjClass has no notion of per-instance field declarations independent of
// __init__.
func classStmt(p *Parser, c *Compiler, width int) {
	defLine := p.previous.Line
	p.consume(TokIdentifier, "expected class name")
	name := p.previous.Text
	classIdx := c.code.chunk.AddConstant(c.vm.newString(name))
	c.code.chunk.WriteIndexed(OpClass, OpClassLong, classIdx, defLine)
	declareOrDefine(c, name, defLine)
	classGet, _ := c.resolveName(name, defLine, OpGetGlobal, OpGetGlobalLong, OpSetGlobal, OpSetGlobalLong)

	hasBase := false
	baseName := ""
	if p.match(TokLParen) {
		if !p.check(TokRParen) {
			p.consume(TokIdentifier, "expected base class name")
			baseName = p.previous.Text
			hasBase = true
		}
		p.consume(TokRParen, "expected ')'")
	}
	if hasBase {
		baseGet, _ := c.resolveName(baseName, defLine, OpGetGlobal, OpGetGlobalLong, OpSetGlobal, OpSetGlobalLong)
		classGet()
		baseGet()
		c.emit(OpInherit, defLine)
		c.emit(OpPop, defLine)
		classGet()
		baseGet()
		baseAttrIdx := c.code.chunk.AddConstant(c.vm.newString("__base__"))
		c.code.chunk.WriteIndexed(OpSetProperty, OpSetPropertyLong, baseAttrIdx, defLine)
		c.emit(OpPop, defLine)
	}

	savedClassName, savedHasSuper := c.className, c.hasSuperclass
	c.className, c.hasSuperclass = name, hasBase

	p.consume(TokColon, "expected ':' after class header")
	consumeHeaderEOL(p)
	p.skipEOLs()
	if !p.check(TokIndentation) || p.current.Width <= width {
		p.errorAt(p.current, "expected an indented class body")
	} else {
		blockWidth := p.current.Width
		for p.check(TokIndentation) && p.current.Width == blockWidth {
			p.advance()
			switch {
			case p.check(TokDef):
				p.advance()
				classGet()
				defStmt(p, c, blockWidth, false)
			case p.check(TokAsync):
				p.advance()
				p.consume(TokDef, "expected 'def' after 'async'")
				classGet()
				defStmt(p, c, blockWidth, true)
			case p.check(TokPass):
				p.advance()
				endOfStatement(p)
			default:
				p.errorAt(p.current, "only 'def' (and 'pass') are supported in a class body")
				for !p.check(TokEOL) && !p.check(TokEOF) {
					p.advance()
				}
				p.match(TokEOL)
			}
			p.skipEOLs()
		}
	}
	c.className, c.hasSuperclass = savedClassName, savedHasSuper
}

// returnStmt compiles `return [expr]`. OP_RETURN truncates the stack to the
// frame's base directly, so unlike break/continue it needs no explicit
// local-popping bytecode regardless of how many scopes are open (§4.3
// "OP_RETURN").
func returnStmt(p *Parser, c *Compiler) {
	line := p.previous.Line
	if c.kind == FuncModule {
		p.errorAt(p.previous, "'return' outside function")
	}
	if p.check(TokEOL) || p.check(TokEOF) {
		if c.kind == FuncInit {
			c.code.chunk.WriteIndexed(OpGetLocal, OpGetLocalLong, 0, line)
		} else {
			c.emit(OpNone, line)
		}
	} else {
		parseExpression(p, c)
	}
	c.emit(OpReturn, line)
	endOfStatement(p)
}

// raiseStmt compiles `raise expr` and `raise expr from cause`. A bare
// `raise` with no expression (Python's "re-raise the active exception") is
// not supported: nothing in the bytecode exposes the thread's current
// exception value as an operand, and the common case — re-raising inside an
// except clause — is already covered by `raise` naming the clause's bound
// name directly.
func raiseStmt(p *Parser, c *Compiler) {
	line := p.previous.Line
	if p.check(TokEOL) || p.check(TokEOF) {
		p.errorAt(p.previous, "bare 'raise' is not supported; raise the bound exception by name")
		endOfStatement(p)
		return
	}
	parseExpression(p, c)
	if p.match(TokFrom) {
		parseExpression(p, c)
		c.emit(OpRaiseFrom, line)
	} else {
		c.emit(OpRaise, line)
	}
	endOfStatement(p)
}

// importStmt/fromImportStmt/exportStmt implement a minimal module system on
// top of a single native entry point, `__import__(name)`, which looks up a
// pre-registered namespace in vm.modules (§6.4 "embedding API" — this
// implementation does not load files from disk; modules are whatever the
// embedder registered before running a script, the same boundary the
// original's dynamic-library loader sits behind but deliberately not
// reimplemented here, a Non-goal carried from spec.md).
func importStmt(p *Parser, c *Compiler) {
	line := p.previous.Line
	p.consume(TokIdentifier, "expected module name")
	name := p.previous.Text
	emitImportCall(c, name, line)
	declareOrDefine(c, name, line)
	endOfStatement(p)
}

// fromImportStmt compiles `from module import a, b, ...`.
func fromImportStmt(p *Parser, c *Compiler) {
	line := p.previous.Line
	p.consume(TokIdentifier, "expected module name")
	module := p.previous.Text
	p.consume(TokImport, "expected 'import' after module name")
	for {
		p.consume(TokIdentifier, "expected imported name")
		member := p.previous.Text
		emitImportCall(c, module, line)
		idx := c.code.chunk.AddConstant(c.vm.newString(member))
		c.code.chunk.WriteIndexed(OpGetProperty, OpGetPropertyLong, idx, line)
		declareOrDefine(c, member, line)
		if !p.match(TokComma) {
			break
		}
	}
	endOfStatement(p)
}

func emitImportCall(c *Compiler, module string, line int) {
	getImport, _ := c.resolveName("__import__", line, OpGetGlobal, OpGetGlobalLong, OpSetGlobal, OpSetGlobalLong)
	getImport()
	c.emitConstant(c.vm.newString(module), line)
	c.emit(OpCall, line)
	c.emit(OpCode(1), line)
}

// exportStmt compiles `export name`: a no-op beyond evaluating the name,
// since every module-scope global is already visible to importers through
// vm.modules' shared namespace Table; it exists purely so module source
// written against an explicit export list still parses.
func exportStmt(p *Parser, c *Compiler) {
	p.consume(TokIdentifier, "expected name after 'export'")
	endOfStatement(p)
}

// delStmt supports `del name` (global only), `del obj.attr`, and
// `del obj[key]`. Deleting a local is not supported: locals are stack
// slots, not a name table, so there is no runtime operation to "unbind" one
// independent of the block-exit pops endScope already emits.
func delStmt(p *Parser, c *Compiler) {
	line := p.previous.Line
	p.consume(TokIdentifier, "expected name after 'del'")
	name := p.previous.Text
	if p.check(TokDot) || p.check(TokLBracket) {
		get, _ := c.resolveName(name, line, OpGetGlobal, OpGetGlobalLong, OpSetGlobal, OpSetGlobalLong)
		get()
		for {
			if p.match(TokDot) {
				p.consume(TokIdentifier, "expected property name after '.'")
				prop := p.previous.Text
				idx := c.code.chunk.AddConstant(c.vm.newString(prop))
				if p.check(TokDot) || p.check(TokLBracket) {
					c.code.chunk.WriteIndexed(OpGetProperty, OpGetPropertyLong, idx, line)
					continue
				}
				c.code.chunk.WriteIndexed(OpDelProperty, OpDelPropertyLong, idx, line)
				break
			}
			p.consume(TokLBracket, "expected '[' or '.'")
			parseExpression(p, c)
			p.consume(TokRBracket, "expected ']'")
			if p.check(TokDot) || p.check(TokLBracket) {
				idx := c.code.chunk.AddConstant(c.vm.newString("__getitem__"))
				c.code.chunk.WriteIndexed(OpCallMethod, OpCallMethodLong, idx, line)
				c.emit(OpCode(1), line)
				continue
			}
			idx := c.code.chunk.AddConstant(c.vm.newString("__delitem__"))
			c.code.chunk.WriteIndexed(OpCallMethod, OpCallMethodLong, idx, line)
			c.emit(OpCode(1), line)
			c.emit(OpPop, line)
			break
		}
		endOfStatement(p)
		return
	}
	idx := c.code.chunk.AddConstant(c.vm.newString(name))
	c.code.chunk.WriteIndexed(OpDelGlobal, OpDelGlobalLong, idx, line)
	endOfStatement(p)
}

// assertStmt compiles `assert cond[, message]`, raising AssertionError via
// the global AssertionError class (bootstrapExceptions installs it as an
// ordinary global, §"errors.go") when cond is falsy.
func assertStmt(p *Parser, c *Compiler) {
	line := p.previous.Line
	parseExpression(p, c)
	hasMessage := p.match(TokComma)
	if hasMessage {
		parseExpression(p, c)
	} else {
		c.emit(OpNone, line)
	}
	getAssertionError, _ := c.resolveName("AssertionError", line, OpGetGlobal, OpGetGlobalLong, OpSetGlobal, OpSetGlobalLong)
	// stack: [cond, message] -> swap so cond is on top for the jump test,
	// build the exception lazily only on the failing path.
	chunk := &c.code.chunk
	c.emit(OpSwap, line) // [message, cond]
	passJump := chunk.EmitJump(OpJumpIfTrue, line)
	c.emit(OpPop, line) // drop cond (false)
	getAssertionError()
	c.emit(OpSwap, line) // [AssertionError, message]
	c.emit(OpCall, line)
	c.emit(OpCode(1), line)
	c.emit(OpRaise, line)
	chunk.PatchJump(passJump)
	c.emit(OpPop, line) // drop cond (true)
	c.emit(OpPop, line) // drop the unused message
	endOfStatement(p)
}
