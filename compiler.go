package krk

import (
	"fmt"
)

// local is a single entry in a Compiler's local-slot array (§4.2 Scopes).
type local struct {
	name     string
	depth    int
	captured bool
}

// Compiler holds one lexical scope's worth of compile state: the CodeObject
// being built, its declared locals, and the upvalue descriptors it has
// resolved so far. A stack of Compilers (linked via enclosing) mirrors the
// nesting of module/function/method/lambda bodies (§4.2).
type Compiler struct {
	enclosing *Compiler
	vm        *VM

	code *ObjCode
	kind FunctionKind

	locals     []local
	scopeDepth int

	upvalues []upvalueDesc

	// loop bookkeeping for break/continue patch lists.
	loopStarts    []int
	breakJumps    [][]int
	continueJumps [][]int

	// loopDepths records c.scopeDepth at the moment each active loop's body
	// was entered; loopExtraPops records how many non-local values (e.g. a
	// for-loop's live iterator) sit on the stack beneath that loop's locals.
	// break uses both to unwind the stack to the loop's normal exit state.
	loopDepths    []int
	loopExtraPops []int

	// placeholderSeq generates unique synthetic local names (declarePlaceholder)
	// so bookkeeping slots never collide with declareLocal's same-scope
	// redeclare-reuse rule.
	placeholderSeq int

	// className, when compiling a method, names the enclosing class, used
	// to resolve `super`.
	className   string
	hasSuperclass bool

	// next threads the global "in progress" compiler chain the GC walks
	// as roots (§4.5 "Cooperation with compiler").
	next *Compiler
}

// Parser drives the token stream feeding every Compiler in the current
// compile; it is shared by the whole compile (there is exactly one scanner
// per source file).
type Parser struct {
	vm      *VM
	scanner *Scanner

	current  Token
	previous Token

	hadError bool
	errs     []error

	filename string

	// replayStack implements comprehension/generator-expression/ternary
	// head-expression replay (§4.2 "Single-pass compilation of list
	// comprehensions"): advance() drains the topmost frame instead of the
	// live scanner until it runs out, then pops it and resumes whatever was
	// underneath (an enclosing replay frame, or the live scanner). A stack
	// rather than one flat buffer is what lets a conditional expression's
	// `a` operand be replayed *while* a comprehension's head tokens are
	// themselves being replayed (`[a if c else b for x in y]`). See
	// startReplay.
	replayStack []replayFrame
}

type replayFrame struct {
	tokens []Token
	pos    int
}

func newParser(vm *VM, scanner *Scanner, filename string) *Parser {
	return &Parser{vm: vm, scanner: scanner, filename: filename}
}

func (p *Parser) advance() {
	p.previous = p.current
	for len(p.replayStack) > 0 {
		top := &p.replayStack[len(p.replayStack)-1]
		if top.pos < len(top.tokens) {
			p.current = top.tokens[top.pos]
			top.pos++
			return
		}
		p.replayStack = p.replayStack[:len(p.replayStack)-1]
	}
	for {
		tok, err := p.scanner.Next()
		if err != nil {
			p.errorAt(p.previous, err.Error())
			p.current = Token{Kind: TokEOF}
			return
		}
		p.current = tok
		return
	}
}

// startReplay re-parses a span of already-scanned tokens (buf) as if they
// were freshly read from the source, then transparently resumes wherever
// parsing was before the call once buf is drained. It is how a
// comprehension, generator expression, or conditional expression compiles
// an operand twice: once silently, just to find where it ends
// (recordHeadExpr/recordTernaryOperand, compiler_compr.go), and once for
// real once whatever made the first pass premature (an undeclared loop
// variable, an unevaluated condition) is resolved.
//
// p.current holds the token the scan stopped on. If no replay is already
// active, that token came from the live scanner and is pushed back onto it
// (Unscan) so it resurfaces once buf drains. If a replay is already active
// (nested operand buffering, e.g. a ternary inside a comprehension head),
// that token instead came from the enclosing frame; rewinding that frame's
// position by one makes it resurface the same way, without touching the
// scanner at all.
func (p *Parser) startReplay(buf []Token) {
	if len(p.replayStack) > 0 {
		p.replayStack[len(p.replayStack)-1].pos--
	} else {
		p.scanner.Unscan(p.current)
	}
	p.replayStack = append(p.replayStack, replayFrame{tokens: buf})
	p.advance()
}

func (p *Parser) check(k TokenKind) bool { return p.current.Kind == k }

func (p *Parser) match(k TokenKind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(k TokenKind, mess string) {
	if p.current.Kind == k {
		p.advance()
		return
	}
	p.errorAt(p.current, mess)
}

func (p *Parser) errorAt(t Token, mess string) {
	p.hadError = true
	p.errs = append(p.errs, fmt.Errorf("%s:%d: %s (near %q)", p.filename, t.Line, mess, t.Text))
}

// skipEOLs consumes any run of blank EOL tokens (blank lines between
// statements at the same indentation).
func (p *Parser) skipEOLs() {
	for p.check(TokEOL) {
		p.advance()
	}
}

// newCompiler pushes a new function-scope compiler, linking it into both
// the Go call stack (enclosing) and the VM's GC-visible compiler chain.
func newCompiler(vm *VM, enclosing *Compiler, kind FunctionKind, name string) *Compiler {
	c := &Compiler{
		enclosing: enclosing,
		vm:        vm,
		kind:      kind,
		code:      &ObjCode{name: name, qualifiedName: name, kind: kind},
	}
	// Slot 0 is reserved for the implicit receiver (self) in
	// methods/initializers, matching the call protocol's implicit-self
	// placement (§4.3 "callValue").
	if kind == FuncMethod || kind == FuncInit {
		c.locals = append(c.locals, local{name: "self", depth: 0})
	} else {
		c.locals = append(c.locals, local{name: "", depth: 0})
	}
	c.next = vm.compilerChain
	vm.compilerChain = c
	return c
}

func (c *Compiler) popChain() {
	c.vm.compilerChain = c.next
}

func (c *Compiler) emit(op OpCode, line int) int { return c.code.chunk.Write(op, line) }

func (c *Compiler) emitConstant(v Value, line int) {
	idx := c.code.chunk.AddConstant(v)
	c.code.chunk.WriteIndexed(OpConstant, OpConstantLong, idx, line)
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope(line int) {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.captured {
			c.emit(OpCloseUpvalue, line)
		} else {
			c.emit(OpPop, line)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) declareLocal(name string) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth != -1 && c.locals[i].depth < c.scopeDepth {
			break
		}
		if c.locals[i].name == name {
			return // redeclare in same scope: reuse slot like Python rebinding
		}
	}
	c.locals = append(c.locals, local{name: name, depth: c.scopeDepth})
}

// declarePlaceholder reserves a stack slot for compiler-internal bookkeeping
// (an except clause's exception value, a with-statement's context value)
// under a name no source identifier can ever spell, so it is immune to
// declareLocal's same-scope redeclare-reuse rule.
func (c *Compiler) declarePlaceholder() int {
	name := fmt.Sprintf("$%d", c.placeholderSeq)
	c.placeholderSeq++
	c.locals = append(c.locals, local{name: name, depth: c.scopeDepth})
	return len(c.locals) - 1
}

// popLocalsAbove emits pop/close-upvalue bytecode for every local declared at
// or above depth, without touching c.locals: used by break/continue, whose
// compile-time scope bookkeeping must stay intact for the loop's own normal
// exit path (endScope) to still run correctly later.
func (c *Compiler) popLocalsAbove(depth int, line int) {
	for i := len(c.locals) - 1; i >= 0 && c.locals[i].depth >= depth; i-- {
		if c.locals[i].captured {
			c.emit(OpCloseUpvalue, line)
		} else {
			c.emit(OpPop, line)
		}
	}
}

// pushLoop registers a new enclosing loop for break/continue to target.
// loopStart is the LOOP instruction's backward target; extraPops is how
// many non-local values (e.g. a for-loop's live iterator) sit on the stack
// beneath the loop body's own scope, which break must also discard.
func (c *Compiler) pushLoop(loopStart, extraPops int) {
	c.loopStarts = append(c.loopStarts, loopStart)
	c.loopDepths = append(c.loopDepths, c.scopeDepth+1)
	c.loopExtraPops = append(c.loopExtraPops, extraPops)
	c.breakJumps = append(c.breakJumps, nil)
}

// popLoop pops the innermost loop's bookkeeping, returning its break jumps
// for the caller to patch to the loop's exit point.
func (c *Compiler) popLoop() (breaks []int) {
	n := len(c.loopStarts) - 1
	breaks = c.breakJumps[n]
	c.loopStarts = c.loopStarts[:n]
	c.loopDepths = c.loopDepths[:n]
	c.loopExtraPops = c.loopExtraPops[:n]
	c.breakJumps = c.breakJumps[:n]
	return
}

func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i
		}
	}
	return -1
}

func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if li := c.enclosing.resolveLocal(name); li >= 0 {
		c.enclosing.locals[li].captured = true
		return c.addUpvalue(li, true)
	}
	if ui := c.enclosing.resolveUpvalue(name); ui >= 0 {
		return c.addUpvalue(ui, false)
	}
	return -1
}

func (c *Compiler) addUpvalue(index int, isLocal bool) int {
	for i, u := range c.upvalues {
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	c.upvalues = append(c.upvalues, upvalueDesc{isLocal: isLocal, index: index})
	return len(c.upvalues) - 1
}

// resolveName implements §4.2's three-step identifier resolution.
func (c *Compiler) resolveName(name string, line int, getShort, getLong, setShort, setLong OpCode) (get func(), set func()) {
	if li := c.resolveLocal(name); li >= 0 {
		return func() { c.code.chunk.WriteIndexed(OpGetLocal, OpGetLocalLong, li, line) },
			func() { c.code.chunk.WriteIndexed(OpSetLocal, OpSetLocalLong, li, line) }
	}
	if ui := c.resolveUpvalue(name); ui >= 0 {
		return func() { c.emit(OpGetUpvalue, line); c.emit(OpCode(ui), line) },
			func() { c.emit(OpSetUpvalue, line); c.emit(OpCode(ui), line) }
	}
	idx := c.code.chunk.AddConstant(c.vm.newString(name))
	return func() { c.code.chunk.WriteIndexed(getShort, getLong, idx, line) },
		func() { c.code.chunk.WriteIndexed(setShort, setLong, idx, line) }
}
