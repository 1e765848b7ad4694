package krk

// This file implements list/set/dict comprehensions and generator
// expressions (§4.2 "Single-pass compilation of list comprehensions", §6.3
// "list/set/dict comprehensions, generator expressions"). The compiler is
// single-pass with no AST, so a comprehension's head expression cannot be
// compiled the moment it is scanned: `[x*x for x in range(n)]`'s `x*x`
// refers to a local that `for x in ...` hasn't declared yet. recordHeadExpr
// scans the head without compiling it, just far enough to tell a plain
// literal from a comprehension; once the loop variable exists as a local,
// Parser.startReplay (compiler.go) re-feeds those buffered tokens through
// the ordinary expression compiler.

// recordHeadExpr scans tokens at the current bracket-nesting level without
// compiling them, stopping at the first top-level comma, top-level `for`,
// or the enclosing close token — the exact three places a plain literal
// element, a literal's next element, and a comprehension's iteration clause
// first diverge. The stopping token is left in p.current, uncomsumed.
func recordHeadExpr(p *Parser) (tokens []Token, isCompr bool) {
	depth := 0
	for {
		switch p.current.Kind {
		case TokLParen, TokLBracket, TokLBrace:
			depth++
		case TokRParen, TokRBracket, TokRBrace:
			if depth == 0 {
				return tokens, false
			}
			depth--
		case TokComma:
			if depth == 0 {
				return tokens, false
			}
		case TokFor:
			if depth == 0 {
				return tokens, true
			}
		case TokEOF:
			return tokens, false
		}
		tokens = append(tokens, p.current)
		p.advance()
	}
}

// recordTernaryOperand scans a potential `a` operand of a conditional
// expression (parseExpression, compiler_rules.go) without compiling it, at
// the current bracket-nesting level, stopping at whichever comes first: a
// top-level `if` (making this a ternary) or one of the small, closed set of
// tokens that can legally terminate a bare expression — EOL, EOF, a comma,
// a matching close bracket, or a colon. Binary/keyword operators
// (`and`, `or`, `in`, `is`, comparisons, ...) are deliberately not
// terminators here: they stay inside the buffered span and are compiled
// normally once replayed.
func recordTernaryOperand(p *Parser) (tokens []Token, isTernary bool) {
	depth := 0
	for {
		switch p.current.Kind {
		case TokLParen, TokLBracket, TokLBrace:
			depth++
		case TokRParen, TokRBracket, TokRBrace:
			if depth == 0 {
				return tokens, false
			}
			depth--
		case TokComma, TokColon, TokEOL, TokEOF:
			if depth == 0 {
				return tokens, false
			}
		case TokIf:
			if depth == 0 {
				return tokens, true
			}
		}
		tokens = append(tokens, p.current)
		p.advance()
	}
}

// splitAtTopLevelColon divides a brace literal's recorded head into a dict
// entry's key/value halves, skipping over a `lambda ...: ...` colon (which
// belongs to the lambda, not the entry) the same way the colon in a dict
// comprehension's value position must not be mistaken for a second entry
// separator.
func splitAtTopLevelColon(tokens []Token) (key, val []Token, isDict bool) {
	depth := 0
	lambdaDepth := 0
	for i, tok := range tokens {
		switch tok.Kind {
		case TokLParen, TokLBracket, TokLBrace:
			depth++
		case TokRParen, TokRBracket, TokRBrace:
			depth--
		case TokLambda:
			if depth == 0 {
				lambdaDepth++
			}
		case TokColon:
			if depth == 0 {
				if lambdaDepth > 0 {
					lambdaDepth--
					continue
				}
				return tokens[:i], tokens[i+1:], true
			}
		}
	}
	return tokens, nil, false
}

// compileForClause compiles the shared `for name[, name...] in iter
// [if cond]` portion of a comprehension or generator expression against
// compiler fc, leaving the loop established (OP_INVOKE_ITER/LOOP target
// emitted, loop-variable locals declared) and positioned to compile the
// accumulation/yield step. The caller is responsible for closing the
// filter's conditional jump, the loop body's scope, and the loop itself
// once its own accumulation code is emitted — see compileComprehension and
// compileGenExpr, whose accumulation step differs.
func compileForClause(p *Parser, fc *Compiler, line int) (loopStart int, exitJump int, filterJump int, hasFilter bool) {
	chunk := &fc.code.chunk
	p.consume(TokFor, "expected 'for'")
	var names []string
	p.consume(TokIdentifier, "expected loop variable name")
	names = append(names, p.previous.Text)
	for p.match(TokComma) {
		p.consume(TokIdentifier, "expected loop variable name")
		names = append(names, p.previous.Text)
	}
	p.consume(TokIn, "expected 'in' in comprehension")
	parseExpression(p, fc)

	fc.emit(OpInvokeIter, line)
	loopStart = len(chunk.code)
	exitJump = chunk.EmitJump(OpInvokeNext, line)

	fc.pushLoop(loopStart, 1)
	fc.beginScope()
	if len(names) == 1 {
		fc.declareLocal(names[0])
	} else {
		fc.emit(OpUnpack, line)
		fc.emit(OpCode(len(names)), line)
		for _, name := range names {
			fc.declareLocal(name)
		}
	}

	hasFilter = p.match(TokIf)
	if hasFilter {
		parseExpression(p, fc)
		filterJump = chunk.EmitJump(OpJumpIfFalse, p.previous.Line)
		fc.emit(OpPop, p.previous.Line)
	}
	return
}

// closeForClause patches and pops the loop bookkeeping compileForClause
// opened, after the caller has emitted the accumulation/yield step.
func closeForClause(p *Parser, fc *Compiler, loopStart, exitJump, filterJump int, hasFilter bool) {
	chunk := &fc.code.chunk
	if hasFilter {
		// The accumulate/yield step the caller just emitted only runs on
		// the true path, which must now skip the false path's own POP of
		// the (different) condition value that landed it at filterJump.
		afterJump := chunk.EmitJump(OpJump, p.previous.Line)
		chunk.PatchJump(filterJump)
		fc.emit(OpPop, p.previous.Line)
		chunk.PatchJump(afterJump)
	}
	bodyLine := p.previous.Line
	fc.endScope(bodyLine)
	chunk.EmitLoop(loopStart, bodyLine)
	chunk.PatchJump(exitJump)
	for _, j := range fc.popLoop() {
		chunk.PatchJump(j)
	}
}

// compileComprehension compiles `HEAD for name in iter [if cond]` into a
// hidden accumulator local built before the loop and fed by a builtin
// append/add call each iteration, compiling directly into compiler c
// rather than a nested function (a list/set comprehension, unlike a
// generator expression, has no reason to suspend: it always runs to
// completion on the spot and leaves one value, the finished container, on
// the stack).
func compileComprehension(p *Parser, c *Compiler, headTokens []Token, accumMethod string, buildOp OpCode, closeTok TokenKind) {
	line := p.previous.Line
	c.emit(buildOp, line)
	c.emit(OpCode(0), line)
	c.beginScope()
	accIdx := c.declarePlaceholder()

	loopStart, exitJump, filterJump, hasFilter := compileForClause(p, c, line)

	c.code.chunk.WriteIndexed(OpGetLocal, OpGetLocalLong, accIdx, line)
	p.startReplay(headTokens)
	parseExpression(p, c)
	idx := c.code.chunk.AddConstant(c.vm.newString(accumMethod))
	c.code.chunk.WriteIndexed(OpCallMethod, OpCallMethodLong, idx, p.previous.Line)
	c.emit(OpCode(1), p.previous.Line)
	c.emit(OpPop, p.previous.Line)

	closeForClause(p, c, loopStart, exitJump, filterJump, hasFilter)

	p.consume(closeTok, "expected closing bracket")
	c.endScope(p.previous.Line)
}

// compileDictComprehension is compileComprehension's dict-entry analogue:
// the accumulation step calls __setitem__(key, value) on the hidden
// accumulator instead of a single-argument append/add.
func compileDictComprehension(p *Parser, c *Compiler, keyTokens, valTokens []Token) {
	line := p.previous.Line
	c.emit(OpBuildDict, line)
	c.emit(OpCode(0), line)
	c.beginScope()
	accIdx := c.declarePlaceholder()

	loopStart, exitJump, filterJump, hasFilter := compileForClause(p, c, line)

	c.code.chunk.WriteIndexed(OpGetLocal, OpGetLocalLong, accIdx, line)
	p.startReplay(keyTokens)
	parseExpression(p, c)
	p.startReplay(valTokens)
	parseExpression(p, c)
	idx := c.code.chunk.AddConstant(c.vm.newString("__setitem__"))
	c.code.chunk.WriteIndexed(OpCallMethod, OpCallMethodLong, idx, p.previous.Line)
	c.emit(OpCode(2), p.previous.Line)
	c.emit(OpPop, p.previous.Line)

	closeForClause(p, c, loopStart, exitJump, filterJump, hasFilter)

	p.consume(TokRBrace, "expected '}'")
	c.endScope(p.previous.Line)
}

// compileGenExpr compiles `(HEAD for name in iter [if cond])` as an
// immediately-called, zero-argument generator closure (generator.go):
// calling a closure whose code.isGenerator is set never runs its body, it
// parks it and hands back an ObjGenerator, so the call this function emits
// produces a live, lazily-driven generator rather than a materialized
// container the way compileComprehension's list/set/dict forms do.
//
// The outer `iter` expression is, unlike CPython, evaluated on first
// resumption rather than eagerly at the `(...)` expression's own
// evaluation point; with no event loop or scheduler in this runtime
// nothing can observe the difference, so the simpler lowering (identical
// to every other generator body) was kept rather than special-cased.
func compileGenExpr(p *Parser, c *Compiler, headTokens []Token, line int) {
	fc := newCompiler(c.vm, c, FuncLambda, "<genexpr>")
	fc.beginScope()

	loopStart, exitJump, filterJump, hasFilter := compileForClause(p, fc, line)

	p.startReplay(headTokens)
	parseExpression(p, fc)
	fc.emit(OpYield, p.previous.Line)
	fc.emit(OpPop, p.previous.Line)

	closeForClause(p, fc, loopStart, exitJump, filterJump, hasFilter)

	p.consume(TokRParen, "expected ')'")
	fc.endScope(p.previous.Line)
	fc.code.isGenerator = true
	finishFunction(p, fc, line)

	c.emit(OpCall, p.previous.Line)
	c.emit(OpCode(0), p.previous.Line)
}
