package classfile

// ClassVisitor is the capability-bundle re-expression of the original
// subclass-override visitor (spec.md §9): one function-valued field per
// visit event. A nil field means "don't care" — callers must nil-check
// before invoking, letting streaming and tree-style adapters compose
// without inheritance. Call ordering follows spec.md §6's contract:
// Visit -> VisitSource? -> VisitOuterClass? -> VisitInnerClass* ->
// (VisitField | VisitMethod)* -> VisitAttribute* -> VisitEnd.
type ClassVisitor struct {
	Visit           func(version uint32, access uint16, name, superName string, interfaces []string) error
	VisitSource     func(source, debug string) error
	VisitOuterClass func(owner, name, descriptor string) error
	VisitInnerClass func(name, outerName, innerName string, access uint16) error
	VisitAttribute  func(attr Attribute) error

	// VisitField returns the FieldVisitor to drive for this field's own
	// attributes/annotations, or nil to skip it entirely.
	VisitField func(access uint16, name, descriptor string, value interface{}) *FieldVisitor

	// VisitMethod returns the MethodVisitor to drive for this method's
	// body, or nil to skip it entirely.
	VisitMethod func(access uint16, name, descriptor string, exceptions []string) *MethodVisitor

	VisitEnd func() error
}

// FieldVisitor bundles the per-field visit events.
type FieldVisitor struct {
	VisitAnnotation func(descriptor string, visible bool) *AnnotationVisitor
	VisitAttribute  func(attr Attribute) error
	VisitEnd        func() error
}

// MethodVisitor bundles the per-method visit events, including the full
// instruction stream (spec.md §6). Label/Handle/ConstantDynamicValue
// parameters are produced by the ClassReader's two-phase parse; the
// bytecode package's MethodWriter implements the write-side counterpart
// of this same event surface.
type MethodVisitor struct {
	VisitAnnotation        func(descriptor string, visible bool) *AnnotationVisitor
	VisitParameter         func(name string, access uint16)
	VisitAnnotationDefault func() *AnnotationVisitor
	VisitCode              func()

	VisitFrame              func(kind int, locals, stack []FrameValue)
	VisitInsn               func(opcode Opcode)
	VisitIntInsn            func(opcode Opcode, operand int)
	VisitVarInsn            func(opcode Opcode, index int)
	VisitTypeInsn           func(opcode Opcode, internalName string)
	VisitFieldInsn          func(opcode Opcode, owner, name, descriptor string)
	VisitMethodInsn         func(opcode Opcode, owner, name, descriptor string, isInterface bool)
	VisitInvokeDynamicInsn  func(name, descriptor string, bootstrap Handle, args []interface{})
	VisitJumpInsn           func(opcode Opcode, label interface{})
	VisitLabel              func(label interface{})
	VisitLdcInsn            func(value interface{})
	VisitIincInsn           func(index, delta int)
	VisitTableSwitchInsn    func(min, max int, dflt interface{}, labels []interface{})
	VisitLookupSwitchInsn   func(dflt interface{}, keys []int, labels []interface{})
	VisitMultiANewArrayInsn func(descriptor string, dims int)

	VisitTryCatchBlock func(start, end, handler interface{}, catchType string)
	VisitLocalVariable func(name, descriptor, signature string, start, end interface{}, index int)
	VisitLineNumber    func(line int, start interface{})
	VisitMaxs          func(maxStack, maxLocals int)
	VisitAttribute     func(attr Attribute) error
	VisitEnd           func() error
}

// AnnotationVisitor bundles the per-annotation visit events.
type AnnotationVisitor struct {
	Visit           func(name string, value interface{})
	VisitEnum       func(name, descriptor, value string)
	VisitAnnotation func(name, descriptor string) *AnnotationVisitor
	VisitArray      func(name string) *AnnotationVisitor
	VisitEnd        func()
}
