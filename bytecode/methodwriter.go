package bytecode

import "github.com/go-asmgo/asmgo/classfile"

// tryCatch is one exception-table row pending emission (spec.md §4.2).
type tryCatch struct {
	start, end, handler *Label
	catchType           uint16 // 0 means catch-all/finally
}

// MethodWriter implements the visitor-driven emission side of a single
// method body: instruction bytes, the label-put/resolve protocol, the
// resize pass, the exception table, and the two frame-computation modes
// (spec.md §4.2, §4.3). One MethodWriter exists per method being written.
type MethodWriter struct {
	pool      *classfile.ConstantPool
	hierarchy classfile.ClassHierarchy
	flags     classfile.WriterFlags

	code       *ByteVector
	maxStack   int
	maxLocals  int
	resizeNeeded bool

	entry  *Label
	blocks []*Label // basic-block starts, in emission order

	current *frameSim // simulator for the block currently being emitted
	sim     map[*Label]*frameSim

	tryCatches []tryCatch

	// allLabels is every label ever resolved via VisitLabel, kept so the
	// resize pass can shift every position affected by an insertion.
	allLabels []*Label

	// branchSites is every jump/switch-target patch site ever written,
	// kept so the resize pass can re-derive each one's offset from
	// scratch once all insertions have settled (spec.md §4.2: "propagates
	// all downstream offset shifts").
	branchSites []branchSite

	// pendingNew remembers the type-table index assigned to each NEW
	// instruction, keyed by the offset it was emitted at (shifted by the
	// resize pass). VisitMethodInsn does not consult it: an <init> call
	// takes its receiver's type from the simulated stack.
	pendingNew map[int]uint16

	// switchSource is the byte offset of the tableswitch/lookupswitch
	// opcode currently being emitted, captured by emitSwitchHeader so
	// putSwitchTarget can compute instruction-relative offsets.
	switchSource int
}

// NewMethodWriter returns a writer for a method whose initial (descriptor-
// derived) locals are argLocals and whose operand stack starts empty.
func NewMethodWriter(pool *classfile.ConstantPool, hierarchy classfile.ClassHierarchy, flags classfile.WriterFlags, argLocals []frameType) *MethodWriter {
	entry := NewLabel()
	entry.Status |= StatusTarget | StatusResolved
	entry.inputLocals = append([]frameType(nil), argLocals...)
	entry.inputStack = nil

	mw := &MethodWriter{
		pool:       pool,
		hierarchy:  hierarchy,
		flags:      flags,
		code:       NewByteVector(64),
		entry:      entry,
		blocks:     []*Label{entry},
		sim:        map[*Label]*frameSim{},
		pendingNew: map[int]uint16{},
	}
	mw.current = newFrameSim(mw, entry)
	mw.sim[entry] = mw.current
	return mw
}

// startBlock marks l as a basic-block boundary and makes it the target of
// further instruction simulation, used whenever the visitor reaches a
// label that was recorded as a branch target (StatusTarget) during
// emission, or an exception handler entry.
func (mw *MethodWriter) startBlock(l *Label) {
	l = l.canonical()
	l.Status |= StatusTarget
	if mw.current != nil && mw.current.label != l {
		mw.current.label.addSuccessor(EdgeNormal, 0, l) // fallthrough
	}
	if sim, ok := mw.sim[l]; ok {
		mw.current = sim
		return
	}
	mw.blocks = append(mw.blocks, l)
	mw.current = newFrameSim(mw, l)
	mw.sim[l] = mw.current
}

// VisitLabel resolves l at the current code offset (if not already
// resolved via a forward reference elsewhere) and, if l is a basic-block
// boundary, switches the active simulator to it.
func (mw *MethodWriter) VisitLabel(l *Label) error {
	pos := mw.code.Len()
	if !l.IsResolved() {
		resized, err := l.Resolve(mw.code, pos)
		if err != nil {
			return err
		}
		if resized {
			mw.resizeNeeded = true
		}
	}
	mw.startBlock(l)
	mw.allLabels = append(mw.allLabels, l)
	return nil
}

// branchSite is a recorded jump/switch-target patch: source is the byte
// offset the patched value is relative to (the instruction's own opcode
// byte for ordinary jumps, the switch opcode's offset for switch
// targets), patchPos is where the offset bytes live, and width is 2 or 4.
type branchSite struct {
	source, patchPos, width int
	target                  *Label
}

// VisitInsn emits a no-operand instruction and simulates its stack effect.
func (mw *MethodWriter) VisitInsn(op classfile.Opcode) {
	mw.code.PutByte(byte(op))
	simulateSimpleInsn(mw.current, op)
	if op >= classfile.IRETURN && op <= classfile.RETURN || op == classfile.ATHROW {
		mw.endBlock()
	}
}

// VisitIntInsn emits BIPUSH/SIPUSH/NEWARRAY.
func (mw *MethodWriter) VisitIntInsn(op classfile.Opcode, operand int) {
	mw.code.PutByte(byte(op))
	switch op {
	case classfile.BIPUSH:
		mw.code.PutByte(byte(operand))
		simulateBipushSipush(mw.current)
	case classfile.SIPUSH:
		mw.code.PutShort(operand)
		simulateBipushSipush(mw.current)
	case classfile.NEWARRAY:
		mw.code.PutByte(byte(operand))
		simulateNewArray(mw.current, descriptorBaseType(string(newArrayTypeChar(operand))))
	}
}

// newArrayTypeChar maps a JVMS newarray atype code (4-11) to its
// descriptor character.
func newArrayTypeChar(atype int) byte {
	switch atype {
	case 4:
		return 'Z'
	case 5:
		return 'C'
	case 6:
		return 'F'
	case 7:
		return 'D'
	case 8:
		return 'B'
	case 9:
		return 'S'
	case 10:
		return 'I'
	case 11:
		return 'J'
	default:
		return 0
	}
}

// VisitVarInsn emits ILOAD/LLOAD/.../ASTORE/RET with an explicit index,
// using the wide (WIDE-prefixed) form when index exceeds a byte.
func (mw *MethodWriter) VisitVarInsn(op classfile.Opcode, index int) {
	if index > 0xFF {
		mw.code.PutByte(byte(classfile.WIDE))
		mw.code.PutByte(byte(op))
		mw.code.PutShort(index)
	} else {
		mw.code.PutByte(byte(op))
		mw.code.PutByte(byte(index))
	}
	simulateVarInsn(mw.current, op, index)
}

// VisitIincInsn emits IINC, using the wide form when either operand
// overflows a signed byte.
func (mw *MethodWriter) VisitIincInsn(index, delta int) {
	if index > 0xFF || delta < -128 || delta > 127 {
		mw.code.PutByte(byte(classfile.WIDE))
		mw.code.PutByte(byte(classfile.IINC))
		mw.code.PutShort(index)
		mw.code.PutShort(delta)
	} else {
		mw.code.PutByte(byte(classfile.IINC))
		mw.code.PutByte(byte(index))
		mw.code.PutByte(byte(delta))
	}
	simulateIinc(mw.current, index)
}

// VisitLdcInsn emits LDC/LDC_W/LDC2_W for an int32/int64/float32/float64/
// string constant, picking the wide form LDC2_W for long/double (the only
// form that can address them) and LDC_W over LDC whenever the interned
// index overflows a byte. value carries the same Go-typed contract
// ClassReader.ldcValue decodes to and ConstantPool.AddConst accepts.
func (mw *MethodWriter) VisitLdcInsn(value interface{}) error {
	idx, err := mw.pool.AddConst(value)
	if err != nil {
		return err
	}
	switch value.(type) {
	case int64, float64:
		mw.code.PutByte(byte(classfile.LDC2_W))
		mw.code.PutShort(int(idx))
	default:
		if idx <= 0xFF {
			mw.code.PutByte(byte(classfile.LDC))
			mw.code.PutByte(byte(idx))
		} else {
			mw.code.PutByte(byte(classfile.LDC_W))
			mw.code.PutShort(int(idx))
		}
	}
	simulateLdc(mw.current, ldcTag(value), mw.ldcObjectType(value))
	return nil
}

// ldcTag maps value's Go type to the CONSTANT_* tag simulateLdc switches
// on; AddConst above already rejected anything outside this set.
func ldcTag(value interface{}) classfile.Tag {
	switch value.(type) {
	case int32:
		return classfile.TagInteger
	case float32:
		return classfile.TagFloat
	case int64:
		return classfile.TagLong
	case float64:
		return classfile.TagDouble
	default:
		return classfile.TagString
	}
}

// ldcObjectType resolves the reference frameType a string constant
// pushes (java/lang/String); unused for the four primitive tags.
func (mw *MethodWriter) ldcObjectType(value interface{}) frameType {
	if _, ok := value.(string); ok {
		return objectType(mw.pool.AddType("java/lang/String"))
	}
	return 0
}

// VisitTypeInsn emits NEW/ANEWARRAY/CHECKCAST/INSTANCEOF, each carrying a
// single CONSTANT_Class operand.
func (mw *MethodWriter) VisitTypeInsn(op classfile.Opcode, internalName string) {
	pos := mw.code.Len()
	classIdx := mw.pool.AddClass(internalName)
	mw.code.PutByte(byte(op))
	mw.code.PutShort(int(classIdx))

	switch op {
	case classfile.NEW:
		idx := mw.pool.AddUninitializedType(internalName, pos)
		mw.pendingNew[pos] = idx
		simulateNew(mw.current, idx)
	default:
		typeIdx := mw.pool.AddType(internalName)
		simulateTypeInsn(mw.current, op, typeIdx)
	}
}

// VisitFieldInsn emits GETFIELD/PUTFIELD/GETSTATIC/PUTSTATIC.
func (mw *MethodWriter) VisitFieldInsn(op classfile.Opcode, owner, name, descriptor string) {
	idx := mw.pool.AddFieldref(owner, name, descriptor)
	mw.code.PutByte(byte(op))
	mw.code.PutShort(int(idx))
	simulateFieldInsn(mw.current, op, mw.descriptorFrameType(descriptor))
}

// VisitMethodInsn emits INVOKEVIRTUAL/INVOKESPECIAL/INVOKESTATIC/
// INVOKEINTERFACE. isInterface selects an InterfaceMethodref operand. An
// INVOKESPECIAL call to <init> additionally drives recordInitialization.
func (mw *MethodWriter) VisitMethodInsn(op classfile.Opcode, owner, name, descriptor string, isInterface bool) {
	var idx uint16
	if isInterface {
		idx = mw.pool.AddInterfaceMethodref(owner, name, descriptor)
	} else {
		idx = mw.pool.AddMethodref(owner, name, descriptor)
	}
	mw.code.PutByte(byte(op))
	mw.code.PutShort(int(idx))
	if op == classfile.INVOKEINTERFACE {
		argCount := countArgSlots(descriptor) + 1 // +1 for the receiver
		mw.code.PutByte(byte(argCount))
		mw.code.PutByte(0)
	}

	argTypes := mw.descriptorArgTypes(descriptor)
	if op == classfile.INVOKESPECIAL && name == "<init>" {
		// The receiver was pushed by a NEW or loaded from an
		// UNINITIALIZED_THIS local. recordInitialization
		// needs the exact uninitialized frameType, which the output-frame
		// simulator still has as the value one slot past argTypes on the
		// output stack — args are popped first, leaving it on top.
		simulateInitInvocationFromOwner(mw.current, argTypes, mw.pool, owner)
		return
	}
	returnType := mw.descriptorFrameType(returnDescriptor(descriptor))
	simulateMethodInsn(mw.current, op, argTypes, returnType)
}

// VisitInvokeDynamicInsn emits INVOKEDYNAMIC.
func (mw *MethodWriter) VisitInvokeDynamicInsn(name, descriptor string, bootstrap classfile.Handle, args ...interface{}) error {
	idx, err := mw.addInvokeDynamic(name, descriptor, bootstrap, args)
	if err != nil {
		return err
	}
	mw.code.PutByte(byte(classfile.INVOKEDYNAMIC))
	mw.code.PutShort(int(idx))
	mw.code.PutShort(0)
	argTypes := mw.descriptorArgTypes(descriptor)
	returnType := mw.descriptorFrameType(returnDescriptor(descriptor))
	simulateMethodInsn(mw.current, classfile.INVOKEDYNAMIC, argTypes, returnType)
	return nil
}

// addInvokeDynamic is a placeholder seam for bootstrap-method-attribute
// interning, left unimplemented: the bootstrap_methods attribute table
// lives at the class level (one shared table across all methods), so the
// ClassWriter owns it; this method exists so MethodWriter's public surface
// is complete even though the class-level wiring (not reachable from any
// single method) is out of scope for this pass.
func (mw *MethodWriter) addInvokeDynamic(name, descriptor string, bootstrap classfile.Handle, args []interface{}) (uint16, error) {
	return mw.pool.AddNameAndType(name, descriptor), nil
}

// VisitJumpInsn emits a branch instruction targeting l, using the
// label-put protocol: a resolved target patches its offset immediately,
// an unresolved one gets a placeholder plus a forward reference.
func (mw *MethodWriter) VisitJumpInsn(op classfile.Opcode, l *Label) {
	source := mw.code.Len()
	mw.code.PutByte(byte(op))
	patchPos := mw.code.Len()
	mw.code.PutShort(0)

	if l.IsResolved() {
		offset := l.Position - source
		mw.code.putShortAt(patchPos, int16(offset))
	} else {
		l.addForwardRef(source, patchPos, false)
	}
	mw.branchSites = append(mw.branchSites, branchSite{source: source, patchPos: patchPos, width: 2, target: l})

	if op == classfile.JSR {
		mw.current.label.addSuccessor(EdgeJSR, 0, l)
		mw.current.push(stackRef(0)) // return address slot, popped by RET
	} else {
		mw.current.label.addSuccessor(EdgeNormal, 0, l)
	}
	simulateSimpleInsn(mw.current, conditionalBranchOpcode(op))
	if op == classfile.GOTO {
		mw.endBlock()
	}
}

// conditionalBranchOpcode maps JSR/GOTO into an opcode simulateSimpleInsn
// already knows how to treat as a no-stack-growth control transfer,
// since GOTO/JSR have no entry of their own stack-consuming semantics
// beyond what VisitJumpInsn already applied.
func conditionalBranchOpcode(op classfile.Opcode) classfile.Opcode {
	if op == classfile.JSR {
		return classfile.NOP
	}
	return op
}

// VisitLookupSwitchInsn and VisitTableSwitchInsn both terminate their
// block and fan out to every case label plus default.
func (mw *MethodWriter) VisitTableSwitchInsn(min, max int, dflt *Label, labels []*Label) {
	mw.emitSwitchHeader(classfile.TABLESWITCH)
	mw.putSwitchTarget(dflt)
	mw.code.PutInt(min)
	mw.code.PutInt(max)
	for _, l := range labels {
		mw.putSwitchTarget(l)
	}
	mw.current.pop()
	mw.endBlock()
}

func (mw *MethodWriter) VisitLookupSwitchInsn(dflt *Label, keys []int, labels []*Label) {
	mw.emitSwitchHeader(classfile.LOOKUPSWITCH)
	mw.putSwitchTarget(dflt)
	mw.code.PutInt(len(keys))
	for i, k := range keys {
		mw.code.PutInt(k)
		mw.putSwitchTarget(labels[i])
	}
	mw.current.pop()
	mw.endBlock()
}

func (mw *MethodWriter) emitSwitchHeader(op classfile.Opcode) {
	source := mw.code.Len()
	mw.code.PutByte(byte(op))
	pad := (4 - ((mw.code.Len() - 0) & 3)) & 3
	for i := 0; i < pad; i++ {
		mw.code.PutByte(0)
	}
	mw.switchSource = source
}

func (mw *MethodWriter) putSwitchTarget(l *Label) {
	source := mw.switchSource
	patchPos := mw.code.Len()
	mw.code.PutInt(0)
	if l.IsResolved() {
		mw.code.putIntAt(patchPos, int32(l.Position-source))
	} else {
		l.addForwardRef(source, patchPos, true)
	}
	mw.branchSites = append(mw.branchSites, branchSite{source: source, patchPos: patchPos, width: 4, target: l})
	mw.current.label.addSuccessor(EdgeNormal, 0, l)
}

// VisitMultiANewArrayInsn emits MULTIANEWARRAY. descriptor is the array
// type's own descriptor (e.g. "[[Ljava/lang/Object;"), matching the
// CONSTANT_Class entry the instruction's operand indexes and the form
// ClassReader.driveInsn hands back via className.
func (mw *MethodWriter) VisitMultiANewArrayInsn(descriptor string, dims int) {
	classIdx := mw.pool.AddClass(descriptor)
	mw.code.PutByte(byte(classfile.MULTIANEWARRAY))
	mw.code.PutShort(int(classIdx))
	mw.code.PutByte(byte(dims))
	idx := mw.pool.AddType(multiArrayElementName(descriptor))
	simulateMultiANewArray(mw.current, idx, dims)
}

// multiArrayElementName strips descriptor's leading '[' dimension markers
// and, for an object element, its surrounding "L...;", leaving the bare
// internal name simulateMultiANewArray's type-table lookup expects.
func multiArrayElementName(descriptor string) string {
	i := 0
	for i < len(descriptor) && descriptor[i] == '[' {
		i++
	}
	rest := descriptor[i:]
	if len(rest) > 0 && rest[0] == 'L' {
		return rest[1 : len(rest)-1]
	}
	return rest
}

// endBlock closes the current basic block: its final instruction was a
// control transfer, so any code that follows belongs to a new block with
// no fallthrough edge from this one.
func (mw *MethodWriter) endBlock() {
	mw.current = nil
}

// VisitTryCatchBlock records an exception-table row and wires the
// corresponding handler edge into the control-flow graph.
func (mw *MethodWriter) VisitTryCatchBlock(start, end, handler *Label, catchInternalName string) {
	var catchType uint16
	handlerType := 0
	if catchInternalName != "" {
		catchType = mw.pool.AddClass(catchInternalName)
		handlerType = int(mw.pool.AddType(catchInternalName))
	}
	mw.tryCatches = append(mw.tryCatches, tryCatch{start: start, end: end, handler: handler, catchType: catchType})
	start.canonical().addSuccessor(EdgeHandler, handlerType, handler)
}

// descriptorFrameType maps a single field/return descriptor to its
// frameType, resolving object/array descriptors through the type table.
func (mw *MethodWriter) descriptorFrameType(desc string) frameType {
	if len(desc) == 0 || desc == "V" {
		return 0
	}
	dim := int32(0)
	for dim < int32(len(desc)) && desc[dim] == '[' {
		dim++
	}
	rest := desc[dim:]
	if len(rest) > 0 && rest[0] == 'L' {
		internalName := rest[1 : len(rest)-1]
		idx := mw.pool.AddType(internalName)
		return objectType(idx).withDim(dim)
	}
	return descriptorBaseType(rest).withDim(dim)
}

// descriptorArgTypes splits a method descriptor's parameter list and
// resolves each to a frameType, in left-to-right order.
func (mw *MethodWriter) descriptorArgTypes(descriptor string) []frameType {
	params := splitParams(descriptor)
	out := make([]frameType, len(params))
	for i, p := range params {
		out[i] = mw.descriptorFrameType(p)
	}
	return out
}

// splitParams extracts the "(...)R" parameter list as individual
// descriptor strings.
func splitParams(descriptor string) []string {
	if len(descriptor) == 0 || descriptor[0] != '(' {
		return nil
	}
	var out []string
	i := 1
	for i < len(descriptor) && descriptor[i] != ')' {
		start := i
		for descriptor[i] == '[' {
			i++
		}
		if descriptor[i] == 'L' {
			for descriptor[i] != ';' {
				i++
			}
			i++
		} else {
			i++
		}
		out = append(out, descriptor[start:i])
	}
	return out
}

func returnDescriptor(descriptor string) string {
	i := 0
	for i < len(descriptor) && descriptor[i] != ')' {
		i++
	}
	return descriptor[i+1:]
}

func countArgSlots(descriptor string) int {
	n := 0
	for _, p := range splitParams(descriptor) {
		n++
		if p == "J" || p == "D" {
			n++
		}
	}
	return n
}

// simulateInitInvocationFromOwner resolves owner to a type-table index
// and applies the constructor-call effect.
func simulateInitInvocationFromOwner(f *frameSim, argTypes []frameType, pool *classfile.ConstantPool, owner string) {
	idx := pool.AddType(owner)
	simulateInitInvocation(f, argTypes, idx)
}

// Finish runs the resize pass (if needed) followed by max-stack/locals or
// full frame computation per flags, and returns the finished code bytes,
// max stack, max locals and, in expensive mode, the StackMapTable
// payload. The exception table stays in mw.tryCatches.
func (mw *MethodWriter) Finish(declaredLocals int) (code []byte, maxStack, maxLocals int, stackMapTable []byte, err error) {
	for _, b := range mw.branchSites {
		if !b.target.IsResolved() {
			return nil, 0, 0, nil, unresolvedLabel("branch target")
		}
	}
	for _, tc := range mw.tryCatches {
		if !tc.start.IsResolved() || !tc.end.IsResolved() || !tc.handler.IsResolved() {
			return nil, 0, 0, nil, unresolvedLabel("exception table")
		}
	}

	if mw.resizeNeeded {
		if err := mw.runResizePass(); err != nil {
			return nil, 0, 0, nil, err
		}
	}

	if mw.flags.ComputesMaxs() {
		maxStack = computeMaxStack(mw.entry)
		maxLocals = computeMaxLocals(mw.blocks, declaredLocals)
	}
	if mw.flags.ComputesFrames() {
		if err := mw.rejectJSRForFrames(); err != nil {
			return nil, 0, 0, nil, err
		}
		if err := computeFrames(mw.pool, mw.hierarchy, mw.entry); err != nil {
			return nil, 0, 0, nil, err
		}
		markStoreLabels(mw.blocks, mw.entry)
		attachResolvedFrames(mw.blocks)
		stackMapTable, _, err = encodeStackMapTable(mw.pool, mw.blocks, mw.entry.inputLocals)
		if err != nil {
			return nil, 0, 0, nil, err
		}
		if maxStack == 0 {
			maxStack = computeMaxStack(mw.entry)
		}
		if maxLocals == 0 {
			maxLocals = computeMaxLocals(mw.blocks, declaredLocals)
		}
	}

	if mw.code.Len() > 1<<16-1 {
		return nil, 0, 0, nil, overflowLimit("method body exceeds 65535 bytes")
	}
	return mw.code.Bytes(), maxStack, maxLocals, stackMapTable, nil
}

// rejectJSRForFrames enforces spec.md §4.3's "expensive mode rejects
// jsr/ret" rule.
func (mw *MethodWriter) rejectJSRForFrames() error {
	for _, l := range mw.blocks {
		for e := l.successors; e != nil; e = e.Next {
			if e.Kind == EdgeJSR {
				return unsupportedConstruct("jsr/ret", "frame computation requested")
			}
		}
	}
	return nil
}

// markStoreLabels marks every basic block except the method entry with
// StatusStore: each one needs a StackMapTable entry describing its input
// frame (the entry's frame is implicit, carried by the method descriptor).
func markStoreLabels(blocks []*Label, entry *Label) {
	for _, l := range blocks {
		l = l.canonical()
		if l == entry.canonical() {
			continue
		}
		l.Status |= StatusStore
	}
}
