package bytecode

import "github.com/go-asmgo/asmgo/classfile"

// LabelStatus is a bit-set describing what role a Label plays. Several
// bits can be set at once (e.g. a basic block start that is also a
// resolved forward-ref target).
type LabelStatus uint8

const (
	// StatusDebug marks a label used only for line/variable tables; it is
	// not a basic-block boundary and never joins the control-flow graph.
	StatusDebug LabelStatus = 1 << iota
	// StatusResolved marks a label whose byte position is known.
	StatusResolved
	// StatusResized marks a label whose position moved during the resize
	// pass and must not be moved again within the same pass.
	StatusResized
	// StatusTarget marks a label that is the target of some jump, i.e. a
	// basic-block boundary.
	StatusTarget
	// StatusStore marks a label that must carry a serialized stack-map
	// frame entry in the emitted StackMapTable.
	StatusStore
)

// forwardRef is a pending patch: a branch instruction emitted before its
// target label was resolved. source encodes both the byte offset of the
// referencing instruction and the patch slot width: source >= 0 means a
// 2-byte slot at patchPos, source < 0 means a 4-byte slot at patchPos and
// the true source offset is -1-source (spec.md §3).
type forwardRef struct {
	source   int
	patchPos int
}

// Edge is a directed control-flow arc from the block owning it to
// successor, used only during max-stack/stack-map computation (spec.md
// §3, §4.3).
type Edge struct {
	// Info is the caught exception's type-table index for a handler edge
	// (0 for a catch-all/finally) and 0 for normal and jsr edges.
	// computeMaxStack derives each edge's stack height from Kind alone.
	Info int
	Kind EdgeKind

	Successor *Label
	Next      *Edge // next outgoing edge of the same source label
}

// EdgeKind distinguishes the three control-flow arc shapes spec.md §3 names.
type EdgeKind uint8

const (
	EdgeNormal EdgeKind = iota
	EdgeJSR
	EdgeHandler
)

// Label is a position token within one method's bytecode (spec.md §3).
// Label values must never be reused across writers; such reuse is not
// detected.
type Label struct {
	Status LabelStatus

	// Position is the byte offset within the method body. Valid iff
	// Status has StatusResolved set.
	Position int

	forwardRefs []forwardRef

	// first is the head of a run of labels colocated at the same byte
	// offset (spec.md §3); dataflow fields below live only on first.
	first *Label

	// Dataflow fields, meaningful only when this label heads a basic
	// block (first == this and the label participates in the CFG).
	inputLocals     []frameType
	inputStack      []frameType
	inputStackTop   int // cheap-mode-only: depth contributed by this block's input
	outputLocals    []frameType
	outputStack     []frameType
	outputStackTop  int
	outputStackMax  int
	initializations []frameType // pending UNINITIALIZED -> OBJECT substitutions

	successors *Edge // head of this block's outgoing edge list
	next       *Label // work-queue chain, reset per fix-point pass
	queued     bool

	// frame holds the resolved input frame once the expensive fix-point
	// has converged, used to serialize the StackMapTable entry.
	frame *resolvedFrame
}

// NewLabel returns an unresolved, unstatused label.
func NewLabel() *Label {
	l := &Label{}
	l.first = l
	return l
}

// IsResolved reports whether Position is valid.
func (l *Label) IsResolved() bool { return l.Status&StatusResolved != 0 }

// Resolve assigns position to the label and patches every pending
// forward reference recorded against it into code. It is an error
// (ErrIllegalState) to resolve a label twice. If any 2-byte patch
// overflows i16, the opcode at that reference's source offset is
// rewritten in place to its pseudo-opcode form (spec.md §4.2) and the
// slot is patched as an unsigned offset instead; resized reports whether
// this happened, so the caller knows to run the resize pass.
func (l *Label) Resolve(code *ByteVector, position int) (resized bool, err error) {
	if l.IsResolved() {
		return false, illegalState("label already resolved")
	}
	l.Status |= StatusResolved
	l.Position = position

	for _, ref := range l.forwardRefs {
		if ref.source >= 0 {
			offset := position - ref.source
			if offset < -1<<15 || offset > 1<<15-1 {
				op := classfile.Opcode(code.byteAt(ref.source))
				pseudo, ok := classfile.ToPseudo(op)
				if !ok {
					return false, illegalState("branch offset overflow on a non-widenable opcode")
				}
				code.putByteAt(ref.source, byte(pseudo))
				code.putShortAt(ref.patchPos, int16(uint16(offset)))
				resized = true
				continue
			}
			code.putShortAt(ref.patchPos, int16(offset))
		} else {
			source := -1 - ref.source
			offset := position - source
			code.putIntAt(ref.patchPos, int32(offset))
		}
	}
	l.forwardRefs = nil
	return resized, nil
}

// addForwardRef records a pending patch against l. wide selects a 4-byte
// slot (used for GOTO_W/JSR_W and the resize pass); source is the byte
// offset of the referencing instruction, patchPos the offset within code
// where the placeholder offset bytes begin.
func (l *Label) addForwardRef(source, patchPos int, wide bool) {
	if wide {
		source = -1 - source
	}
	l.forwardRefs = append(l.forwardRefs, forwardRef{source: source, patchPos: patchPos})
}

// canonical returns the representative label for this byte offset: the
// head of the colocated run. Dataflow state is only ever read/written
// through the canonical label.
func (l *Label) canonical() *Label {
	if l.first == nil {
		return l
	}
	return l.first
}

// addSuccessor appends a new outgoing edge from l (its canonical label).
func (l *Label) addSuccessor(kind EdgeKind, info int, target *Label) {
	c := l.canonical()
	c.successors = &Edge{Kind: kind, Info: info, Successor: target.canonical(), Next: c.successors}
}
