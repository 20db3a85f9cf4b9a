package bytecode

import "github.com/go-asmgo/asmgo/classfile"

// resolvedFrame is the concrete input frame attached to a label once the
// expensive fix-point (computeFrames) has converged: plain BASE-only
// locals/stack arrays, no more LOCAL/STACK-relative entries. Only labels
// with StatusStore carry one through to StackMapTable serialization.
type resolvedFrame struct {
	locals []frameType
	stack  []frameType
}

// attachResolvedFrames copies each StatusStore label's resolved input
// frame onto l.frame, trimming every trailing TOP from its locals,
// including the TOP that follows a final LONG/DOUBLE.
func attachResolvedFrames(blocks []*Label) {
	for _, l := range blocks {
		l = l.canonical()
		if l.Status&StatusStore == 0 {
			continue
		}
		locals := trimTrailingTop(l.inputLocals)
		l.frame = &resolvedFrame{
			locals: locals,
			stack:  append([]frameType(nil), l.inputStack...),
		}
	}
}

func trimTrailingTop(locals []frameType) []frameType {
	n := len(locals)
	for n > 0 && locals[n-1] == ftTop {
		n--
	}
	return append([]frameType(nil), locals[:n]...)
}

// StackMapTable delta frame types, JVMS 4.7.4.
const (
	smtSameFrameMax        = 63  // tag 0-63
	smtSameLocals1Stack    = 64  // tag 64-127, offset_delta = tag-64
	smtSameLocals1StackExt = 247 // tag 247, explicit offset_delta
	smtChopFrameLow        = 248 // tags 248-250
	smtChopFrameHigh       = 250
	smtSameFrameExt        = 251
	smtAppendFrameLow      = 252 // tags 252-254
	smtAppendFrameHigh     = 254
	smtFullFrame           = 255
)

// stackMapEntry pairs a StatusStore label's resolved frame with its code
// offset, kept only long enough to sort into ascending offset order.
type stackMapEntry struct {
	offset int
	frame  *resolvedFrame
}

// encodeStackMapTable serializes blocks carrying StatusStore into the
// compact delta form, choosing the minimal-diff variant between each
// frame and its immediate predecessor in code-offset order (JVMS 4.7.4),
// per spec.md §4.3's "minimal-diff rule".
func encodeStackMapTable(pool *classfile.ConstantPool, blocks []*Label, firstLocals []frameType) ([]byte, int, error) {
	var entries []stackMapEntry
	for _, l := range blocks {
		l = l.canonical()
		if l.Status&StatusStore != 0 && l.frame != nil {
			entries = append(entries, stackMapEntry{offset: l.Position, frame: l.frame})
		}
	}
	sortEntriesByOffset(entries)

	buf := NewByteVector(64)
	buf.PutShort(len(entries))
	prevOffset := -1
	prevLocals := firstLocals
	for _, e := range entries {
		delta := e.offset - prevOffset - 1
		if prevOffset == -1 {
			delta = e.offset
		}
		appendFrame(buf, pool, prevLocals, e.frame, delta)
		prevOffset = e.offset
		prevLocals = e.frame.locals
	}
	return buf.Bytes(), len(entries), nil
}

func sortEntriesByOffset(entries []stackMapEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].offset > entries[j].offset; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}

func appendFrame(buf *ByteVector, pool *classfile.ConstantPool, prevLocals []frameType, f *resolvedFrame, delta int) {
	switch {
	case len(f.stack) == 0 && sameLocals(prevLocals, f.locals):
		appendSameFrame(buf, delta)
	case len(f.stack) == 1 && sameLocals(prevLocals, f.locals):
		appendSameLocals1StackFrame(buf, pool, delta, f.stack[0])
	case len(f.stack) == 0 && isAppendOnly(prevLocals, f.locals) && len(f.locals)-len(prevLocals) <= 3:
		appendAppendFrame(buf, pool, delta, prevLocals, f.locals)
	case len(f.stack) == 0 && isChopOnly(prevLocals, f.locals) && len(prevLocals)-len(f.locals) <= 3:
		appendChopFrame(buf, delta, len(prevLocals)-len(f.locals))
	default:
		appendFullFrame(buf, pool, delta, f)
	}
}

func sameLocals(a, b []frameType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isAppendOnly reports whether next extends prev by one or more locals
// with no change to prev's own slots.
func isAppendOnly(prev, next []frameType) bool {
	if len(next) <= len(prev) {
		return false
	}
	for i := range prev {
		if prev[i] != next[i] {
			return false
		}
	}
	return true
}

func isChopOnly(prev, next []frameType) bool {
	if len(next) >= len(prev) {
		return false
	}
	for i := range next {
		if prev[i] != next[i] {
			return false
		}
	}
	return true
}

func appendSameFrame(buf *ByteVector, delta int) {
	if delta <= smtSameFrameMax {
		buf.PutByte(byte(delta))
	} else {
		buf.PutByte(smtSameFrameExt)
		buf.PutShort(delta)
	}
}

func appendSameLocals1StackFrame(buf *ByteVector, pool *classfile.ConstantPool, delta int, stackTop frameType) {
	if delta <= 63 {
		buf.PutByte(byte(smtSameLocals1Stack + delta))
	} else {
		buf.PutByte(smtSameLocals1StackExt)
		buf.PutShort(delta)
	}
	appendVerificationType(buf, pool, stackTop)
}

func appendChopFrame(buf *ByteVector, delta, chopCount int) {
	buf.PutByte(byte(smtSameFrameExt - chopCount))
	buf.PutShort(delta)
}

func appendAppendFrame(buf *ByteVector, pool *classfile.ConstantPool, delta int, prev, next []frameType) {
	appended := next[len(prev):]
	buf.PutByte(byte(smtAppendFrameLow + len(appended) - 1))
	buf.PutShort(delta)
	for _, t := range appended {
		appendVerificationType(buf, pool, t)
	}
}

func appendFullFrame(buf *ByteVector, pool *classfile.ConstantPool, delta int, f *resolvedFrame) {
	buf.PutByte(smtFullFrame)
	buf.PutShort(delta)
	buf.PutShort(len(f.locals))
	for _, t := range f.locals {
		appendVerificationType(buf, pool, t)
	}
	buf.PutShort(len(f.stack))
	for _, t := range f.stack {
		appendVerificationType(buf, pool, t)
	}
}

// Verification type tags, JVMS 4.7.4.
const (
	vtTop               = 0
	vtInteger           = 1
	vtFloat             = 2
	vtDouble            = 3
	vtLong              = 4
	vtNull              = 5
	vtUninitializedThis = 6
	vtObject            = 7
	vtUninitialized     = 8
)

func appendVerificationType(buf *ByteVector, pool *classfile.ConstantPool, t frameType) {
	if t.dim() > 0 {
		appendObjectVerificationType(buf, pool, t)
		return
	}
	switch t {
	case ftTop:
		buf.PutByte(vtTop)
	case ftBoolean, ftByte, ftChar, ftShort, ftInteger:
		// BOOLEAN/BYTE/CHAR/SHORT verify as INTEGER (JVMS 4.7.4); mergeType
		// already widens them on merge, but a block's very first locals
		// array (descriptor-derived, unmerged) can still carry the
		// narrower subkind directly.
		buf.PutByte(vtInteger)
	case ftFloat:
		buf.PutByte(vtFloat)
	case ftLong:
		buf.PutByte(vtLong)
	case ftDouble:
		buf.PutByte(vtDouble)
	case ftNull:
		buf.PutByte(vtNull)
	case ftUninitializedThis:
		buf.PutByte(vtUninitializedThis)
	default:
		appendObjectVerificationType(buf, pool, t)
	}
}

func appendObjectVerificationType(buf *ByteVector, pool *classfile.ConstantPool, t frameType) {
	if isUninitialized(t) {
		buf.PutByte(vtUninitialized)
		entry := pool.TypeTableEntryAt(t.typeTableIndex())
		buf.PutShort(entry.NewOffset)
		return
	}
	buf.PutByte(vtObject)
	entry := pool.TypeTableEntryAt(t.typeTableIndex())
	classIdx := pool.AddClass(arrayify(entry.InternalName, t.dim()))
	buf.PutShort(int(classIdx))
}

// arrayify prepends dim '[' characters and, for a non-array element,
// wraps a plain internal name in "L...;" so the result is itself a valid
// CONSTANT_Class internal name once dim > 0.
func arrayify(internalName string, dim int32) string {
	if dim <= 0 {
		return internalName
	}
	prefix := make([]byte, dim)
	for i := range prefix {
		prefix[i] = '['
	}
	return string(prefix) + "L" + internalName + ";"
}
