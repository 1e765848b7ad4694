/* Package krk implements the Kuroko language core: a single-pass bytecode
compiler and a stack-based virtual machine with a tracing garbage collector.

Kuroko is a small dynamic language in the Python family: indentation
structured syntax, classes with single inheritance, first-class functions and
closures, exceptions, modules. This package is the embeddable runtime --
source text in, executed program out -- plus a Go-callable surface for
exposing host functions and object types (api.go).

The four subsystems making up the core, leaves first:

	Value, Table   -- tagged value type and the ordered open-addressed hash
	                  table used for every attribute, module, and dict (value.go, table.go)
	Object, Chunk  -- heap object kinds and the bytecode container they
	                  compile into (object.go, chunk.go, opcodes.go)
	Scanner        -- indentation-aware tokenizer (scanner.go, token.go)
	Compiler       -- single-pass Pratt parser emitting bytecode directly,
	                  no intermediate AST (compiler*.go)
	VM             -- threaded dispatch loop: call frames, method
	                  resolution, exception propagation (vm*.go)
	GC             -- incremental mark-sweep collector sharing the object
	                  graph with the compiler and all threads (gc.go)

cmd/kuroko is a minimal script-runner front end that exercises the core; it
is not a REPL and does not implement line editing, module loading from
shared libraries, or any of the standard library (those are out of scope
for the core, same as the upstream C implementation this package's design
is modeled on).
*/
package krk
