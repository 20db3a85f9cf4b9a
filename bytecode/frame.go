package bytecode

import (
	"github.com/go-asmgo/asmgo/classfile"
)

// frameSim accumulates one basic block's output-frame template as its
// instructions are visited (spec.md §4.3 "output-frame simulation").
// Exactly one frameSim exists per block-starting Label, built once while
// instructions are emitted; the fix-point pass in resolve.go re-resolves
// the same template against successively wider input frames without
// re-simulating.
type frameSim struct {
	label *Label
	mw    *MethodWriter
}

func newFrameSim(mw *MethodWriter, l *Label) *frameSim {
	l = l.canonical()
	return &frameSim{label: l, mw: mw}
}

// push appends t to the block's output stack.
func (f *frameSim) push(t frameType) {
	f.label.outputStack = append(f.label.outputStack, t)
	if len(f.label.outputStack) > f.label.outputStackMax {
		f.label.outputStackMax = len(f.label.outputStack)
	}
}

// pop removes and returns the top of the output stack, or, if the
// output stack is already empty, borrows one element from the block's
// (still unknown) input stack: it decrements inputStackTop and returns a
// STACK-kinded reference whose VALUE is the 1-based depth from the top
// of whatever the input stack turns out to be (spec.md §4.3).
func (f *frameSim) pop() frameType {
	n := len(f.label.outputStack)
	if n > 0 {
		t := f.label.outputStack[n-1]
		f.label.outputStack = f.label.outputStack[:n-1]
		return t
	}
	f.label.inputStackTop--
	return stackRef(-f.label.inputStackTop)
}

// popN pops n slots, ignoring their values (used when an instruction's
// effect doesn't need the popped type, only its presence).
func (f *frameSim) popN(n int) {
	for i := 0; i < n; i++ {
		f.pop()
	}
}

// get returns the current output value of local index, or, if that local
// has not been written in this block yet, a LOCAL-kinded reference to the
// (still unknown) input frame's local at the same index.
func (f *frameSim) get(index int) frameType {
	if index < len(f.label.outputLocals) {
		if t := f.label.outputLocals[index]; t != 0 {
			return t
		}
	}
	return localRef(index)
}

// set assigns index in the output locals, growing the array as needed.
// It writes that one slot only: setWide is the variant that also writes
// TOP into the slot after a LONG/DOUBLE, and writing over either half of
// a LONG/DOUBLE leaves the other half's slot as it was.
func (f *frameSim) set(index int, t frameType) {
	locals := f.label.outputLocals
	for len(locals) <= index {
		locals = append(locals, 0)
	}
	locals[index] = t
	f.label.outputLocals = locals
}

func (f *frameSim) setWide(index int, t frameType) {
	f.set(index, t)
	f.set(index+1, ftTop)
}

// recordInitialization marks that the UNINITIALIZED/UNINITIALIZED_THIS
// value produced at allocSite (encoded as a frameType so it can be
// pattern-matched against propagated frame slots later) has now been
// initialized; the resolved frame's merge step substitutes the
// constructed OBJECT type for every matching slot (spec.md §4.3).
func (f *frameSim) recordInitialization(uninitialized, initialized frameType) {
	f.label.initializations = append(f.label.initializations, uninitialized, initialized)
}

// --- merge_type (spec.md §4.3) ---

// mergeType computes the least upper bound of u and t in the verification
// type lattice: a zero operand yields the other one, equal types are
// unchanged, BOOLEAN/BYTE/CHAR/SHORT widen to INTEGER, NULL joined with a
// reference yields that reference, two OBJECT types of the same DIM join
// to their common supertype via hierarchy, and anything else (a primitive
// against a reference, a DIM mismatch, or an UNINITIALIZED value against
// a different non-NULL reference) collapses to TOP.
func mergeType(pool *classfile.ConstantPool, hierarchy classfile.ClassHierarchy, u, t frameType) (frameType, error) {
	if u == t {
		return u, nil
	}
	if u == 0 {
		return t, nil
	}
	if t == 0 {
		return u, nil
	}

	wide := func(x frameType) frameType {
		switch x {
		case ftBoolean, ftByte, ftChar, ftShort:
			return ftInteger
		default:
			return x
		}
	}
	u, t = wide(u), wide(t)
	if u == t {
		return u, nil
	}

	uRef, tRef := isReference(u), isReference(t)
	if uRef && tRef {
		if u == ftNull {
			return t, nil
		}
		if t == ftNull {
			return u, nil
		}
		if u.dim() != t.dim() || isUninitialized(u) || isUninitialized(t) {
			return ftTop, nil
		}
		merged, err := pool.GetMergedType(hierarchy, u.typeTableIndex(), t.typeTableIndex())
		if err != nil {
			return 0, err
		}
		return objectType(merged).withDim(u.dim()), nil
	}
	return ftTop, nil
}

// resolveSlot resolves one output-frame slot against a block's now-known
// (concrete, BASE-only) input frame: LOCAL/STACK entries are substituted
// by position, BASE entries pass through unchanged, and the DIM field is
// added on top of whatever the referenced input slot's own DIM already is.
func resolveSlot(s frameType, inputLocals, inputStack []frameType) frameType {
	switch s.kind() {
	case kindLocal:
		idx := int(s.value())
		if idx >= len(inputLocals) {
			return ftTop
		}
		return inputLocals[idx].withDim(s.dim())
	case kindStack:
		depth := int(s.value())
		idx := len(inputStack) - depth
		if idx < 0 || idx >= len(inputStack) {
			return ftTop
		}
		return inputStack[idx].withDim(s.dim())
	default:
		return s
	}
}

// resolveInitializations resolves the "uninitialized" half of each
// recorded (uninitialized, initialized) pair against l's own input frame.
// recordInitialization runs during instruction simulation, before the
// block's input frame is known, so a receiver that arrived via a local or
// stack slot rather than being pushed fresh by NEW in the same block (the
// "ALOAD 0; INVOKESPECIAL <init>" super-call shape) is recorded as a
// symbolic LOCAL/STACK reference. Comparing that symbolic key against the
// already-resolved concrete values applyInitializations sees would never
// match, so both sides must be resolved into the same space first.
func resolveInitializations(l *Label) []frameType {
	if len(l.initializations) == 0 {
		return nil
	}
	out := append([]frameType(nil), l.initializations...)
	for i := 0; i+1 < len(out); i += 2 {
		out[i] = resolveSlot(out[i], l.inputLocals, l.inputStack)
	}
	return out
}

// applyInitializations substitutes the OBJECT type of a just-constructed
// class for every UNINITIALIZED/UNINITIALIZED_THIS slot whose allocation
// site matches an entry recorded by recordInitialization (spec.md §4.3).
// initializations must already be resolved (resolveInitializations).
func applyInitializations(t frameType, initializations []frameType) frameType {
	if !isUninitialized(t) && t != ftUninitializedThis {
		return t
	}
	if len(initializations) == 0 {
		return t
	}
	for i := 0; i+1 < len(initializations); i += 2 {
		if initializations[i] == t {
			return initializations[i+1]
		}
	}
	return t
}
