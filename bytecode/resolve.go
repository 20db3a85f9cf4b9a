package bytecode

import "github.com/go-asmgo/asmgo/classfile"

// workQueue is the singly-linked chain of label pointers described in
// spec.md §9: a cyclic control-flow graph cannot be walked with a tree,
// so both fix-points below push/pop canonical labels through this chain
// instead of recursing. It is reset (emptied) at the start of each
// fix-point.
type workQueue struct {
	head *Label
}

func (q *workQueue) push(l *Label) {
	l = l.canonical()
	if l.queued {
		return
	}
	l.queued = true
	l.next = q.head
	q.head = l
}

func (q *workQueue) pop() *Label {
	l := q.head
	if l == nil {
		return nil
	}
	q.head = l.next
	l.next = nil
	l.queued = false
	return l
}

// computeMaxStack runs the cheap fix-point (spec.md §4.3): only
// inputStackTop is propagated across edges, so neither exact types nor
// the blocks' actual output arrays are ever needed. entry is the
// method-entry label, already simulated with inputStackTop == 0.
func computeMaxStack(entry *Label) int {
	q := &workQueue{}
	entry.inputStackTop = max0(entry.inputStackTop)
	q.push(entry)

	best := 0
	seen := map[*Label]bool{entry.canonical(): true}
	for l := q.pop(); l != nil; l = q.pop() {
		selfDepth := l.inputStackTop
		if selfDepth+l.outputStackMax > best {
			best = selfDepth + l.outputStackMax
		}
		// residual height still on the stack after the block's last
		// instruction — every outgoing edge starts from here, since a
		// basic block's only branch is its final instruction.
		outDepth := selfDepth + len(l.outputStack)

		for e := l.successors; e != nil; e = e.Next {
			incoming := outDepth
			switch e.Kind {
			case EdgeHandler:
				incoming = 1
			case EdgeJSR:
				incoming = outDepth + 1
			}
			if !seen[e.Successor] || incoming > e.Successor.inputStackTop {
				seen[e.Successor] = true
				e.Successor.inputStackTop = incoming
				q.push(e.Successor)
			}
		}
	}
	return best
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// computeMaxLocals returns one past the highest local slot touched by any
// block's output locals, or declaredLocals if that is larger, used for
// max_locals alongside computeMaxStack.
func computeMaxLocals(blocks []*Label, declaredLocals int) int {
	maxLocals := declaredLocals
	for _, l := range blocks {
		if n := len(l.outputLocals); n > maxLocals {
			maxLocals = n
		}
	}
	return maxLocals
}

// computeFrames runs the expensive fix-point (spec.md §4.3): resolves
// every block's output-frame template against its own now-known input
// frame, merges the result into each successor's input frame via
// mergeType, and re-enqueues any successor whose input frame changed.
// entry's inputLocals/inputStack must already hold the method's initial
// frame (descriptor-derived locals, empty stack).
func computeFrames(pool *classfile.ConstantPool, hierarchy classfile.ClassHierarchy, entry *Label) error {
	q := &workQueue{}
	q.push(entry)

	for l := q.pop(); l != nil; l = q.pop() {
		for e := l.successors; e != nil; e = e.Next {
			succ := e.Successor
			var stack []frameType
			var locals []frameType

			switch e.Kind {
			case EdgeHandler:
				locals = l.inputLocals
				caught := objectType(uint16(e.Info))
				stack = []frameType{caught}
			default:
				locals = resolveLocals(l)
				stack = resolveStack(l)
			}

			changed, err := mergeInto(pool, hierarchy, succ, locals, stack)
			if err != nil {
				return err
			}
			if changed {
				q.push(succ)
			}
		}
	}
	return nil
}

func resolveLocals(l *Label) []frameType {
	out := make([]frameType, len(l.outputLocals))
	for i, s := range l.outputLocals {
		if s == 0 {
			s = localRef(i)
		}
		out[i] = resolveSlot(s, l.inputLocals, l.inputStack)
	}
	if len(out) < len(l.inputLocals) {
		// Locals this block never touches still flow through unchanged.
		extended := make([]frameType, len(l.inputLocals))
		copy(extended, l.inputLocals)
		copy(extended, out)
		out = extended
	}
	// A successful <init> call replaces every occurrence of its
	// UNINITIALIZED(_THIS) value, not just the ones this block happened
	// to rewrite — including locals that passed through untouched above.
	inits := resolveInitializations(l)
	for i, t := range out {
		out[i] = applyInitializations(t, inits)
	}
	return out
}

func resolveStack(l *Label) []frameType {
	out := make([]frameType, len(l.outputStack))
	for i, s := range l.outputStack {
		out[i] = resolveSlot(s, l.inputLocals, l.inputStack)
	}
	if l.inputStackTop < 0 {
		borrowed := resolveBorrowedPrefix(l)
		out = append(borrowed, out...)
	}
	inits := resolveInitializations(l)
	for i, t := range out {
		out[i] = applyInitializations(t, inits)
	}
	return out
}

// resolveBorrowedPrefix resolves the portion of the input stack this
// block consumed beyond what it ever pushed back (inputStackTop < 0, see
// frameSim.pop), in top-to-bottom input order so it can be prepended to
// the block's own symbolic output stack entries.
func resolveBorrowedPrefix(l *Label) []frameType {
	depth := -l.inputStackTop
	n := len(l.inputStack)
	start := n - depth
	if start < 0 {
		start = 0
	}
	prefix := make([]frameType, 0, n-start)
	for i := start; i < n; i++ {
		prefix = append(prefix, l.inputStack[i])
	}
	return prefix
}

// mergeInto widens succ's input frame to cover (locals, stack), returning
// true if anything actually changed (frame merge laws, spec.md §8:
// mergeType only ever widens a slot toward TOP, so this terminates).
func mergeInto(pool *classfile.ConstantPool, hierarchy classfile.ClassHierarchy, succ *Label, locals, stack []frameType) (bool, error) {
	succ = succ.canonical()
	changed := false

	if succ.inputLocals == nil {
		succ.inputLocals = append(make([]frameType, 0, len(locals)), locals...)
		changed = true
	} else {
		n := len(locals)
		if len(succ.inputLocals) < n {
			n = len(succ.inputLocals)
		}
		for i := 0; i < n; i++ {
			merged, err := mergeType(pool, hierarchy, succ.inputLocals[i], locals[i])
			if err != nil {
				return false, err
			}
			if merged != succ.inputLocals[i] {
				succ.inputLocals[i] = merged
				changed = true
			}
		}
	}

	if succ.inputStack == nil {
		succ.inputStack = append(make([]frameType, 0, len(stack)), stack...)
		changed = true
	} else {
		n := len(stack)
		if len(succ.inputStack) < n {
			n = len(succ.inputStack)
		}
		for i := 0; i < n; i++ {
			merged, err := mergeType(pool, hierarchy, succ.inputStack[i], stack[i])
			if err != nil {
				return false, err
			}
			if merged != succ.inputStack[i] {
				succ.inputStack[i] = merged
				changed = true
			}
		}
	}
	return changed, nil
}
