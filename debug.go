package krk

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kuroko-lang/krk/internal/runeio"
)

// Disassemble renders code's bytecode as a human-readable opcode listing,
// one instruction per line prefixed by its offset and source line, matching
// the "compile -> disassemble" testable property of §8. It is also what
// WithDebugHook-driven tooling (the external callgrind consumer, out of
// scope here) would build on.
func Disassemble(code *ObjCode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", code.qualifiedName)
	chunk := &code.chunk
	for ip := 0; ip < len(chunk.code); {
		ip = disassembleInstruction(&b, chunk, ip)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, chunk *Chunk, ip int) int {
	op := OpCode(chunk.code[ip])
	line := chunk.LineFor(ip)
	fmt.Fprintf(b, "%04d %4d %s", ip, line, op)
	next := ip + 1
	switch op {
	case OpConstant, OpDefineGlobal, OpGetGlobal, OpSetGlobal, OpDelGlobal,
		OpGetLocal, OpSetLocal, OpGetProperty, OpSetProperty, OpDelProperty,
		OpGetSuper, OpClosure, OpClass, OpMethod:
		idx := chunk.readU8(next)
		fmt.Fprintf(b, " %d", idx)
		next++
	case OpConstantLong, OpDefineGlobalLong, OpGetGlobalLong, OpSetGlobalLong, OpDelGlobalLong,
		OpGetLocalLong, OpSetLocalLong, OpGetPropertyLong, OpSetPropertyLong, OpDelPropertyLong,
		OpGetSuperLong, OpClosureLong, OpClassLong, OpMethodLong:
		idx := chunk.readU24(next)
		fmt.Fprintf(b, " %d", idx)
		next += 3
	case OpGetUpvalue, OpSetUpvalue, OpCall, OpCallMethod, OpFilterExcept,
		OpDup, OpSwap, OpBuildTuple, OpBuildList, OpBuildDict, OpBuildSet, OpUnpack:
		fmt.Fprintf(b, " %d", chunk.readU8(next))
		next++
	case OpCallMethodLong:
		fmt.Fprintf(b, " %d", chunk.readU24(next))
		next += 3
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpLoop, OpPushTry, OpPushWith, OpInvokeNext:
		fmt.Fprintf(b, " -> %d", jumpTarget(chunk, next, op == OpLoop))
		next += 2
	}
	b.WriteByte('\n')
	return next
}

// WriteTraceback renders kerr in call order (outermost frame first, the
// innermost/raising frame last) to w, mirroring the embedding surface's
// top-level failure behavior (§7 "User-visible failure behavior"):
//
//	Traceback (most recent call last):
//	  File "filename", line N, in <name>
//	      source line, if available
//	ExceptionType: message
//
// source, when non-empty, is the original compiled text; its lines are
// looked up by number so a readable source line can be shown, with control
// characters rendered via internal/runeio the same way the teacher renders
// raw memory dumps.
func WriteTraceback(w io.Writer, kerr *KurokoError, filename, source string) {
	lines := sourceLines(source)
	fmt.Fprintln(w, "Traceback (most recent call last):")
	for i := len(kerr.Trace) - 1; i >= 0; i-- {
		fr := kerr.Trace[i]
		fmt.Fprintf(w, "  File \"%s\", line %d, in %s\n", filename, fr.Line, frameName(fr.Code))
		if fr.Line > 0 && fr.Line <= len(lines) {
			fmt.Fprint(w, "    ")
			writeEscaped(w, strings.TrimRight(lines[fr.Line-1], "\r\n"))
			w.Write([]byte{'\n'})
		}
	}
	fmt.Fprintf(w, "%s: %s\n", exceptionTypeName(kerr.Value), kerr.Message)
}

func frameName(code *ObjCode) string {
	if code == nil {
		return "<module>"
	}
	if code.kind == FuncModule {
		return "<module>"
	}
	return code.qualifiedName
}

func exceptionTypeName(v Value) string {
	if !v.IsObject() {
		return v.TypeName()
	}
	if inst, ok := v.AsObject().data.(*ObjInstance); ok {
		return inst.typeName()
	}
	return v.TypeName()
}

func sourceLines(source string) []string {
	if source == "" {
		return nil
	}
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(source))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func writeEscaped(w io.Writer, s string) {
	for _, r := range s {
		if r < 0x20 && r != '\t' {
			io.WriteString(w, runeio.CaretForm(r))
			continue
		}
		runeio.WriteANSIRune(w, r)
	}
}
