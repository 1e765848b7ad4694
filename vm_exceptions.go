package krk

// handleException searches t's frames, innermost first down to (and
// including) the frame at index targetDepth, for the first frame with an
// active handler. If
// found, it unwinds every frame above it, restores the stack to the
// handler's recorded depth, pushes the exception value, and transfers
// control to the handler's jump target — which is compiled except/finally
// dispatch code, not the VM itself deciding which except clause matches
// (§4.4 "try/except/finally").
//
// Returns false if no frame down to targetDepth has a handler, meaning kerr
// must propagate to runUntil's caller.
func (vm *VM) handleException(t *threadState, kerr *KurokoError, targetDepth int) bool {
	for fi := len(t.frames) - 1; fi >= targetDepth; fi-- {
		f := &t.frames[fi]
		if len(f.handlers) == 0 {
			continue
		}
		h := f.handlers[len(f.handlers)-1]
		f.handlers = f.handlers[:len(f.handlers)-1]

		t.closeUpvalues(h.StackTop())
		t.frames = t.frames[:fi+1]
		t.stack = t.stack[:h.StackTop()]
		t.push(kerr.Value)
		f.ip = h.JumpTarget()
		t.currentException = kerr.Value
		t.hasException = false
		return true
	}
	return false
}
