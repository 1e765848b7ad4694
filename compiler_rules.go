package krk

import "strings"

// Precedence levels for the expression Pratt parser (§4.2), lowest to
// highest, mirroring Python's own operator precedence table.
type precedence int

const (
	precNone precedence = iota
	precOr
	precAnd
	precNot
	precComparison
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precTerm
	precFactor
	precUnary
	precPower
	precCall
	precPrimary
)

type parseRule struct {
	prefix     func(p *Parser, c *Compiler, canAssign bool)
	infix      func(p *Parser, c *Compiler, canAssign bool)
	precedence precedence
}

var rules map[TokenKind]parseRule

func init() {
	rules = map[TokenKind]parseRule{
		TokLParen:     {prefix: grouping, infix: call, precedence: precCall},
		TokLBracket:   {prefix: listLiteral, infix: subscript, precedence: precCall},
		TokLBrace:     {prefix: braceLiteral},
		TokDot:        {infix: attribute, precedence: precCall},
		TokMinus:      {prefix: unary, infix: binary, precedence: precTerm},
		TokPlus:       {infix: binary, precedence: precTerm},
		TokSlash:      {infix: binary, precedence: precFactor},
		TokSlashSlash: {infix: binary, precedence: precFactor},
		TokStar:       {infix: binary, precedence: precFactor},
		TokStarStar:   {infix: binaryRightAssoc, precedence: precPower},
		TokPercent:    {infix: binary, precedence: precFactor},
		TokAmp:        {infix: binary, precedence: precBitAnd},
		TokPipe:       {infix: binary, precedence: precBitOr},
		TokCaret:      {infix: binary, precedence: precBitXor},
		TokLShift:     {infix: binary, precedence: precShift},
		TokRShift:     {infix: binary, precedence: precShift},
		TokTilde:      {prefix: unary},
		TokNot:        {prefix: unaryNot, precedence: precNot},
		TokEqEq:       {infix: binary, precedence: precComparison},
		TokNotEq:      {infix: binary, precedence: precComparison},
		TokLess:       {infix: binary, precedence: precComparison},
		TokGreater:    {infix: binary, precedence: precComparison},
		TokLessEq:     {infix: binary, precedence: precComparison},
		TokGreaterEq:  {infix: binary, precedence: precComparison},
		TokIs:         {infix: isOrIsNot, precedence: precComparison},
		TokIn:         {infix: inOp, precedence: precComparison},
		TokAnd:        {infix: andOp, precedence: precAnd},
		TokOr:         {infix: orOp, precedence: precOr},
		TokInt:        {prefix: literalInt},
		TokFloat:      {prefix: literalFloat},
		TokString:     {prefix: literalString},
		TokFString:    {prefix: literalFString},
		TokChar:       {prefix: literalChar},
		TokTrue:       {prefix: literalTrue},
		TokFalse:      {prefix: literalFalse},
		TokNone:       {prefix: literalNone},
		TokIdentifier: {prefix: variable},
		TokSelf:       {prefix: selfExpr},
		TokSuper:      {prefix: superExpr},
		TokLambda:     {prefix: lambdaExpr},
		TokYield:      {prefix: yieldExpr},
		TokAwait:      {prefix: awaitExpr, precedence: precUnary},
	}
}

func getRule(k TokenKind) parseRule { return rules[k] }

// parseExpression compiles one expression at precOr or looser (the loosest
// binding level above bare assignment, which is handled at statement
// level), special-casing Python's conditional expression `a if cond else b`
// (§6.3). A conditional expression cannot be parsed as an ordinary infix
// operator the way `and`/`or` are: by the time an infix rule sees `if`, its
// left operand's bytecode has already been emitted, which is fine for
// and/or (the short-circuited value IS the left operand) but wrong here,
// since `cond` must run, and be branched on, before `a` does. So `a` is
// buffered unevaluated (recordTernaryOperand, compiler_compr.go) until
// `cond` has compiled, then replayed — the same technique comprehensions
// use for their head expression, generalized to every expression position
// rather than just a literal's elements.
func parseExpression(p *Parser, c *Compiler) {
	aTokens, isTernary := recordTernaryOperand(p)
	if !isTernary {
		p.startReplay(aTokens)
		parsePrecedence(p, c, precOr)
		return
	}
	line := p.previous.Line
	chunk := &c.code.chunk
	p.consume(TokIf, "expected 'if'")
	parsePrecedence(p, c, precOr)
	falseJump := chunk.EmitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)
	p.startReplay(aTokens)
	parsePrecedence(p, c, precOr)
	endJump := chunk.EmitJump(OpJump, line)
	chunk.PatchJump(falseJump)
	c.emit(OpPop, line)
	p.consume(TokElse, "expected 'else' in conditional expression")
	parsePrecedence(p, c, precOr)
	chunk.PatchJump(endJump)
}

func parsePrecedence(p *Parser, c *Compiler, prec precedence) {
	p.advance()
	rule := getRule(p.previous.Kind)
	if rule.prefix == nil {
		p.errorAt(p.previous, "expected expression")
		return
	}
	canAssign := prec <= precOr
	rule.prefix(p, c, canAssign)

	for prec <= getRule(p.current.Kind).precedence {
		p.advance()
		infixRule := getRule(p.previous.Kind).infix
		infixRule(p, c, canAssign)
	}
}

func grouping(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	if p.check(TokRParen) {
		p.advance()
		buildTuple(p, c, 0)
		return
	}
	headTokens, isCompr := recordHeadExpr(p)
	if isCompr {
		compileGenExpr(p, c, headTokens, line)
		return
	}
	p.startReplay(headTokens)
	parseExpression(p, c)
	if p.check(TokComma) {
		n := 1
		for p.match(TokComma) {
			if p.check(TokRParen) {
				break
			}
			parseExpression(p, c)
			n++
		}
		c.consumeRParen(p)
		buildTuple(p, c, n)
		return
	}
	p.consume(TokRParen, "expected ')'")
}

func (c *Compiler) consumeRParen(p *Parser) { p.consume(TokRParen, "expected ')'") }

func buildTuple(p *Parser, c *Compiler, n int) {
	c.emit(OpBuildTuple, p.previous.Line)
	c.emit(OpCode(n), p.previous.Line)
}

// listLiteral compiles both plain list literals ([a, b, ...]) and list
// comprehensions ([expr for name in iter if cond]); recordHeadExpr
// (compiler_compr.go) decides which by scanning ahead, without compiling,
// for a top-level `for`.
func listLiteral(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	if p.check(TokRBracket) {
		p.advance()
		c.emit(OpBuildList, line)
		c.emit(OpCode(0), line)
		return
	}
	headTokens, isCompr := recordHeadExpr(p)
	if isCompr {
		compileComprehension(p, c, headTokens, "append", OpBuildList, TokRBracket)
		return
	}
	n := 0
	p.startReplay(headTokens)
	parseExpression(p, c)
	n++
	for p.match(TokComma) {
		if p.check(TokRBracket) {
			break
		}
		parseExpression(p, c)
		n++
	}
	p.consume(TokRBracket, "expected ']'")
	c.emit(OpBuildList, line)
	c.emit(OpCode(n), line)
}

// braceLiteral compiles dict ({k: v, ...}) and set ({v, ...}) literals, and
// their comprehension forms ({k: v for ...}, {v for ...}), disambiguated by
// whether the recorded head contains a top-level colon
// (splitAtTopLevelColon, compiler_compr.go) and whether it is followed by a
// top-level `for` (recordHeadExpr).
func braceLiteral(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	if p.match(TokRBrace) {
		c.emit(OpBuildDict, line)
		c.emit(OpCode(0), line)
		return
	}
	head, isCompr := recordHeadExpr(p)
	keyToks, valToks, isDict := splitAtTopLevelColon(head)
	if isCompr {
		if isDict {
			compileDictComprehension(p, c, keyToks, valToks)
		} else {
			compileComprehension(p, c, head, "add", OpBuildSet, TokRBrace)
		}
		return
	}
	if isDict {
		p.startReplay(keyToks)
		parseExpression(p, c)
		p.startReplay(valToks)
		parseExpression(p, c)
	} else {
		p.startReplay(head)
		parseExpression(p, c)
	}
	n := 1
	for p.match(TokComma) {
		if p.check(TokRBrace) {
			break
		}
		parseExpression(p, c)
		if isDict {
			p.consume(TokColon, "expected ':' in dict literal")
			parseExpression(p, c)
		}
		n++
	}
	p.consume(TokRBrace, "expected '}'")
	if isDict {
		c.emit(OpBuildDict, line)
	} else {
		c.emit(OpBuildSet, line)
	}
	c.emit(OpCode(n), line)
}

func subscript(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	parseSliceOrIndex(p, c)
	p.consume(TokRBracket, "expected ']'")
	if canAssign && p.match(TokEquals) {
		parseExpression(p, c)
		// stack: receiver, key, value -> receiver.__setitem__(key, value)
		idx := c.code.chunk.AddConstant(c.vm.newString("__setitem__"))
		c.code.chunk.WriteIndexed(OpCallMethod, OpCallMethodLong, idx, line)
		c.emit(OpCode(2), line)
		return
	}
	// stack: receiver, key -> receiver.__getitem__(key)
	idx := c.code.chunk.AddConstant(c.vm.newString("__getitem__"))
	c.code.chunk.WriteIndexed(OpCallMethod, OpCallMethodLong, idx, line)
	c.emit(OpCode(1), line)
}

// parseSliceOrIndex handles both `a[i]` and `a[i:j:k]` (§6.3 "subscript
// ([], including slices)"). The compiler is single-pass with only a
// one-token lookahead, so it cannot know in advance whether a bracket holds
// a plain index or a slice until it has already parsed the first
// sub-expression. It sidesteps backtracking entirely: the global `slice`
// constructor is pushed unconditionally before the first sub-expression, the
// same way any ordinary call pushes its callee before its arguments; once
// the first sub-expression is parsed, a one-token check for ':' decides
// whether to keep building the call (a real slice) or unwind it (SWAP+POP
// to discard the unused `slice` callee, leaving a plain index value).
func parseSliceOrIndex(p *Parser, c *Compiler) {
	line := p.previous.Line
	getSlice, _ := c.resolveName("slice", line, OpGetGlobal, OpGetGlobalLong, OpSetGlobal, OpSetGlobalLong)
	getSlice()

	hasStart := !p.check(TokColon) && !p.check(TokRBracket)
	if hasStart {
		parseExpression(p, c)
	} else {
		c.emit(OpNone, line)
	}

	if !p.match(TokColon) {
		// Plain index: stack is [slice_global, start]; drop the callee.
		c.emit(OpSwap, line)
		c.emit(OpPop, line)
		return
	}

	hasStop := !p.check(TokColon) && !p.check(TokRBracket)
	if hasStop {
		parseExpression(p, c)
	} else {
		c.emit(OpNone, line)
	}
	if p.match(TokColon) && !p.check(TokRBracket) {
		parseExpression(p, c)
	} else {
		c.emit(OpNone, line)
	}
	c.emit(OpCall, line)
	c.emit(OpCode(3), line)
}

func attribute(p *Parser, c *Compiler, canAssign bool) {
	p.consume(TokIdentifier, "expected property name after '.'")
	name := p.previous.Text
	line := p.previous.Line
	idx := c.code.chunk.AddConstant(c.vm.newString(name))
	if canAssign && p.match(TokEquals) {
		parseExpression(p, c)
		c.code.chunk.WriteIndexed(OpSetProperty, OpSetPropertyLong, idx, line)
		return
	}
	if p.check(TokLParen) {
		// method call: a.b(args) compiles directly to CALL_METHOD so the
		// receiver doesn't need a separate bound-method allocation.
		p.advance()
		argc, kwc := argumentList(p, c)
		c.code.chunk.WriteIndexed(OpCallMethod, OpCallMethodLong, idx, line)
		c.emit(OpCode(argc), line)
		_ = kwc
		return
	}
	c.code.chunk.WriteIndexed(OpGetProperty, OpGetPropertyLong, idx, line)
}

func call(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	argc, _ := argumentList(p, c)
	c.emit(OpCall, line)
	c.emit(OpCode(argc), line)
}

// argumentList parses a parenthesized call's arguments, which must already
// have consumed the opening '('. Keyword arguments (name=value) are emitted
// as (key, value) pairs followed by a Kwargs count sentinel, matching
// popCallArgs' expectations (§4.5).
func argumentList(p *Parser, c *Compiler) (argc, kwc int) {
	line := p.previous.Line
	var kwNames []string
	for !p.check(TokRParen) {
		if p.check(TokIdentifier) {
			save := *p
			name := p.current.Text
			p.advance()
			if p.match(TokEquals) {
				c.emitConstant(c.vm.newString(name), line)
				parseExpression(p, c)
				kwNames = append(kwNames, name)
				if !p.match(TokComma) {
					break
				}
				continue
			}
			*p = save
		}
		if len(kwNames) > 0 {
			p.errorAt(p.current, "positional argument follows keyword argument")
		}
		parseExpression(p, c)
		argc++
		if !p.match(TokComma) {
			break
		}
	}
	p.consume(TokRParen, "expected ')'")
	if len(kwNames) > 0 {
		c.emitConstant(Kwargs(int64(len(kwNames))), line)
	}
	return argc, len(kwNames)
}

func unary(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	op := p.previous.Kind
	parsePrecedence(p, c, precUnary)
	switch op {
	case TokMinus:
		c.emit(OpNegate, line)
	case TokTilde:
		c.emit(OpInvert, line)
	}
}

func unaryNot(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	parsePrecedence(p, c, precNot)
	c.emit(OpNot, line)
}

func binary(p *Parser, c *Compiler, canAssign bool) {
	op := p.previous.Kind
	line := p.previous.Line
	rule := getRule(op)
	parsePrecedence(p, c, rule.precedence+1)
	emitBinaryOp(c, op, line)
}

func binaryRightAssoc(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	parsePrecedence(p, c, precPower)
	c.emit(OpPow, line)
}

func emitBinaryOp(c *Compiler, tk TokenKind, line int) {
	switch tk {
	case TokPlus:
		c.emit(OpAdd, line)
	case TokMinus:
		c.emit(OpSubtract, line)
	case TokStar:
		c.emit(OpMultiply, line)
	case TokSlash:
		c.emit(OpDivide, line)
	case TokSlashSlash:
		c.emit(OpFloorDiv, line)
	case TokPercent:
		c.emit(OpModulo, line)
	case TokAmp:
		c.emit(OpBitAnd, line)
	case TokPipe:
		c.emit(OpBitOr, line)
	case TokCaret:
		c.emit(OpBitXor, line)
	case TokLShift:
		c.emit(OpBitShiftL, line)
	case TokRShift:
		c.emit(OpBitShiftR, line)
	case TokEqEq:
		c.emit(OpEqual, line)
	case TokNotEq:
		c.emit(OpEqual, line)
		c.emit(OpNot, line)
	case TokLess:
		c.emit(OpLess, line)
	case TokGreater:
		c.emit(OpGreater, line)
	case TokLessEq:
		c.emit(OpLessEqual, line)
	case TokGreaterEq:
		c.emit(OpGreaterEqual, line)
	}
}

func isOrIsNot(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	negate := p.match(TokNot)
	parsePrecedence(p, c, precComparison+1)
	c.emit(OpIs, line)
	if negate {
		c.emit(OpNot, line)
	}
}

func inOp(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	parsePrecedence(p, c, precComparison+1)
	c.emit(OpContains, line)
}

func andOp(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	endJump := c.code.chunk.EmitJump(OpJumpIfFalse, line)
	c.emit(OpPop, line)
	parsePrecedence(p, c, precAnd)
	c.code.chunk.PatchJump(endJump)
}

func orOp(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	endJump := c.code.chunk.EmitJump(OpJumpIfTrue, line)
	c.emit(OpPop, line)
	parsePrecedence(p, c, precOr)
	c.code.chunk.PatchJump(endJump)
}

func literalInt(p *Parser, c *Compiler, canAssign bool) {
	n := parseIntLiteral(p.previous.Text)
	c.emitConstant(Int(n), p.previous.Line)
}

func literalFloat(p *Parser, c *Compiler, canAssign bool) {
	f := parseFloatLiteral(p.previous.Text)
	c.emitConstant(Float(f), p.previous.Line)
}

func literalString(p *Parser, c *Compiler, canAssign bool) {
	c.emitConstant(c.vm.newString(p.previous.Text), p.previous.Line)
}

// literalChar compiles a single-quoted char literal to its codepoint value
// (§4.1 "char literal"), not a one-character string.
func literalChar(p *Parser, c *Compiler, canAssign bool) {
	r := []rune(p.previous.Text)[0]
	c.emitConstant(Int(int64(r)), p.previous.Line)
}

// literalFString compiles an f-string by splitting it at compile time into
// its literal runs and `{expr}` runs (§4.1 "f-string"), compiling each
// expression run with its own nested scanner/parser and concatenating the
// pieces at runtime with str(), the same general shape str.format() uses.
func literalFString(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	parts := splitFString(p.previous.Text)
	if len(parts) == 0 {
		c.emitConstant(c.vm.newString(""), line)
		return
	}
	n := 0
	for _, part := range parts {
		if part.isExpr {
			compileSubExpression(p, c, part.text, line)
			getStr, _ := c.resolveName("str", line, OpGetGlobal, OpGetGlobalLong, OpSetGlobal, OpSetGlobalLong)
			// Wrap: stack currently has [exprValue]; we need str(exprValue).
			// Since getStr pushes the callee, rotate with SWAP so the callee
			// ends up beneath the already-evaluated argument.
			getStr()
			c.emit(OpSwap, line)
			c.emit(OpCall, line)
			c.emit(OpCode(1), line)
		} else {
			c.emitConstant(c.vm.newString(part.text), line)
		}
		n++
	}
	if n == 1 {
		return
	}
	// Concatenate n string pieces with repeated ADD, left to right.
	for i := 1; i < n; i++ {
		c.emit(OpAdd, line)
	}
}

type fStringPart struct {
	text   string
	isExpr bool
}

// splitFString scans an f-string body for `{expr}` runs, honoring `{{`/`}}`
// as escaped braces the same way str.format()'s mini-language does.
func splitFString(body string) []fStringPart {
	var parts []fStringPart
	var lit strings.Builder
	flushLit := func() {
		if lit.Len() > 0 {
			parts = append(parts, fStringPart{text: lit.String()})
			lit.Reset()
		}
	}
	i := 0
	for i < len(body) {
		c := body[i]
		if c == '{' && i+1 < len(body) && body[i+1] == '{' {
			lit.WriteByte('{')
			i += 2
			continue
		}
		if c == '}' && i+1 < len(body) && body[i+1] == '}' {
			lit.WriteByte('}')
			i += 2
			continue
		}
		if c == '{' {
			j := strings.IndexByte(body[i:], '}')
			if j < 0 {
				lit.WriteString(body[i:])
				break
			}
			flushLit()
			parts = append(parts, fStringPart{text: body[i+1 : i+j], isExpr: true})
			i += j + 1
			continue
		}
		lit.WriteByte(c)
		i++
	}
	flushLit()
	return parts
}

// compileSubExpression compiles a single embedded f-string expression by
// running a fresh Scanner/Parser over its text in the same Compiler scope,
// so it can see the enclosing function's locals/upvalues exactly like any
// other expression at this point in the source.
func compileSubExpression(p *Parser, c *Compiler, src string, line int) {
	sub := NewScanner(strings.NewReader(src), p.filename)
	subParser := newParser(c.vm, sub, p.filename)
	subParser.advance()
	parseExpression(subParser, c)
	if subParser.hadError {
		p.hadError = true
		p.errs = append(p.errs, subParser.errs...)
	}
}

func literalTrue(p *Parser, c *Compiler, canAssign bool)  { c.emit(OpTrue, p.previous.Line) }
func literalFalse(p *Parser, c *Compiler, canAssign bool) { c.emit(OpFalse, p.previous.Line) }
func literalNone(p *Parser, c *Compiler, canAssign bool)  { c.emit(OpNone, p.previous.Line) }

func variable(p *Parser, c *Compiler, canAssign bool) {
	namedVariable(p, c, p.previous.Text, canAssign)
}

func selfExpr(p *Parser, c *Compiler, canAssign bool) {
	namedVariable(p, c, "self", false)
}

func superExpr(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	if c.className == "" {
		p.errorAt(p.previous, "'super' used outside a method")
	}
	namedVariable(p, c, "self", false)
	p.consume(TokDot, "expected '.' after 'super'")
	p.consume(TokIdentifier, "expected method name after 'super.'")
	name := p.previous.Text
	// push the base class object so GET_SUPER knows where to start lookup.
	getBase, _ := c.resolveName(c.className, line, OpGetGlobal, OpGetGlobalLong, OpSetGlobal, OpSetGlobalLong)
	getBase()
	c.code.chunk.WriteIndexed(OpGetProperty, OpGetPropertyLong, c.code.chunk.AddConstant(c.vm.newString("__base__")), line)
	idx := c.code.chunk.AddConstant(c.vm.newString(name))
	c.code.chunk.WriteIndexed(OpGetSuper, OpGetSuperLong, idx, line)
}

func namedVariable(p *Parser, c *Compiler, name string, canAssign bool) {
	line := p.previous.Line
	get, set := c.resolveName(name, line, OpGetGlobal, OpGetGlobalLong, OpSetGlobal, OpSetGlobalLong)
	if canAssign && p.match(TokEquals) {
		parseExpression(p, c)
		set()
		return
	}
	if canAssign {
		if augOp, ok := augAssignOp(p.current.Kind); ok {
			p.advance()
			get()
			parseExpression(p, c)
			emitBinaryOp(c, augOp, line)
			set()
			return
		}
	}
	get()
}

func augAssignOp(k TokenKind) (TokenKind, bool) {
	switch k {
	case TokPlusEq:
		return TokPlus, true
	case TokMinusEq:
		return TokMinus, true
	case TokStarEq:
		return TokStar, true
	case TokSlashEq:
		return TokSlash, true
	}
	return 0, false
}

// yieldExpr compiles `yield [EXPR]` (§4.2 "Generators/coroutines"). Marking
// c.code.isGenerator here, the first time a yield is seen anywhere in the
// body, is what makeGenerator (generator.go) keys off of at call time; it is
// set eagerly on the enclosing function compiler rather than being inferred
// by a separate body pre-scan, matching the single-pass, no-AST compiler
// design (§4.2 "Model").
func yieldExpr(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	if c.kind == FuncModule {
		p.errorAt(p.previous, "'yield' outside function")
	}
	c.code.isGenerator = true
	if p.check(TokEOL) || p.check(TokEOF) || p.check(TokRParen) || p.check(TokColon) || p.check(TokComma) {
		c.emit(OpNone, line)
	} else {
		parseExpression(p, c)
	}
	c.emit(OpYield, line)
}

// awaitExpr compiles `await EXPR` (§3.2 "is-coroutine"). It is valid
// anywhere an expression is (not restricted to `async def` bodies), the
// same liberal stance the source's own grammar takes since "async" only
// changes whether bytecode runs eagerly; see awaitValue (generator.go) for
// the no-event-loop runtime semantics this maps to.
func awaitExpr(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	parsePrecedence(p, c, precUnary)
	c.emit(OpAwait, line)
}

func lambdaExpr(p *Parser, c *Compiler, canAssign bool) {
	line := p.previous.Line
	fc := newCompiler(c.vm, c, FuncLambda, "<lambda>")
	fc.beginScope()
	compileParamList(p, fc, TokColon)
	p.consume(TokColon, "expected ':' after lambda parameters")
	parseExpression(p, fc)
	fc.emit(OpReturn, p.previous.Line)
	finishFunction(p, fc, line)
}
