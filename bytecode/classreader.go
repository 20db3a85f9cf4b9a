package bytecode

import (
	"encoding/binary"

	"github.com/go-asmgo/asmgo/classfile"
)

// ClassReader is the single-pass, visitor-driven parser (spec.md §4.1).
// One ClassReader exists per class file being read; it owns the raw byte
// slice and constant pool for the duration of the parse.
type ClassReader struct {
	data  []byte
	pool  *classfile.ConstantPool
	flags classfile.ReaderFlags

	attrs *classfile.AttributePrototypeRegistry
}

// NewClassReader wraps data for parsing. attrs may be nil, in which case
// every non-standard attribute surfaces as an opaque classfile.Attribute.
func NewClassReader(data []byte, flags classfile.ReaderFlags, attrs *classfile.AttributePrototypeRegistry) *ClassReader {
	return &ClassReader{data: data, flags: flags, attrs: attrs}
}

// Accept drives v through the class file per the ordering contract in
// spec.md §6: Visit -> VisitSource? -> VisitOuterClass? ->
// VisitInnerClass* -> (VisitField | VisitMethod)* -> VisitAttribute* -> VisitEnd.
func (r *ClassReader) Accept(v *classfile.ClassVisitor) error {
	if len(r.data) < 10 || binary.BigEndian.Uint32(r.data) != 0xCAFEBABE {
		return malformed("Accept", 0, "bad magic")
	}
	minor := binary.BigEndian.Uint16(r.data[4:])
	major := binary.BigEndian.Uint16(r.data[6:])
	version := uint32(major)<<16 | uint32(minor)

	pool, offset, err := classfile.Decode(r.data, 8)
	if err != nil {
		return err
	}
	r.pool = pool

	if offset+8 > len(r.data) {
		return malformed("Accept", offset, "truncated class header")
	}
	access := binary.BigEndian.Uint16(r.data[offset:])
	thisClassIdx := binary.BigEndian.Uint16(r.data[offset+2:])
	superClassIdx := binary.BigEndian.Uint16(r.data[offset+4:])
	ifaceCount := int(binary.BigEndian.Uint16(r.data[offset+6:]))
	offset += 8

	thisName, err := r.className(thisClassIdx)
	if err != nil {
		return err
	}
	var superName string
	if superClassIdx != 0 {
		superName, err = r.className(superClassIdx)
		if err != nil {
			return err
		}
	}

	interfaces := make([]string, ifaceCount)
	for i := 0; i < ifaceCount; i++ {
		if offset+2 > len(r.data) {
			return malformed("Accept", offset, "truncated interfaces")
		}
		idx := binary.BigEndian.Uint16(r.data[offset:])
		offset += 2
		interfaces[i], err = r.className(idx)
		if err != nil {
			return err
		}
	}

	if v.Visit != nil {
		if err := v.Visit(version, access, thisName, superName, interfaces); err != nil {
			return err
		}
	}

	offset, err = r.readFields(offset, v)
	if err != nil {
		return err
	}
	offset, err = r.readMethods(offset, v)
	if err != nil {
		return err
	}
	if _, err := r.readClassAttributes(offset, v); err != nil {
		return err
	}

	if v.VisitEnd != nil {
		return v.VisitEnd()
	}
	return nil
}

func (r *ClassReader) className(idx uint16) (string, error) {
	if idx == 0 {
		return "", nil
	}
	e, err := r.pool.Get(idx)
	if err != nil {
		return "", err
	}
	return r.pool.Utf8(e.NameIndex)
}

func (r *ClassReader) readFields(offset int, v *classfile.ClassVisitor) (int, error) {
	if offset+2 > len(r.data) {
		return 0, malformed("readFields", offset, "truncated field count")
	}
	count := int(binary.BigEndian.Uint16(r.data[offset:]))
	offset += 2
	for i := 0; i < count; i++ {
		if offset+8 > len(r.data) {
			return 0, malformed("readFields", offset, "truncated field_info")
		}
		access := binary.BigEndian.Uint16(r.data[offset:])
		nameIdx := binary.BigEndian.Uint16(r.data[offset+2:])
		descIdx := binary.BigEndian.Uint16(r.data[offset+4:])
		offset += 6
		name, err := r.pool.Utf8(nameIdx)
		if err != nil {
			return 0, err
		}
		descriptor, err := r.pool.Utf8(descIdx)
		if err != nil {
			return 0, err
		}

		var fv *classfile.FieldVisitor
		if v.VisitField != nil {
			fv = v.VisitField(access, name, descriptor, nil)
		}
		var err2 error
		offset, err2 = r.readAttributes(r.data, offset, func(attr classfile.Attribute) error {
			if fv != nil && fv.VisitAttribute != nil {
				return fv.VisitAttribute(attr)
			}
			return nil
		})
		if err2 != nil {
			return 0, err2
		}
		if fv != nil && fv.VisitEnd != nil {
			if err := fv.VisitEnd(); err != nil {
				return 0, err
			}
		}
	}
	return offset, nil
}

func (r *ClassReader) readMethods(offset int, v *classfile.ClassVisitor) (int, error) {
	if offset+2 > len(r.data) {
		return 0, malformed("readMethods", offset, "truncated method count")
	}
	count := int(binary.BigEndian.Uint16(r.data[offset:]))
	offset += 2
	for i := 0; i < count; i++ {
		if offset+8 > len(r.data) {
			return 0, malformed("readMethods", offset, "truncated method_info")
		}
		access := binary.BigEndian.Uint16(r.data[offset:])
		nameIdx := binary.BigEndian.Uint16(r.data[offset+2:])
		descIdx := binary.BigEndian.Uint16(r.data[offset+4:])
		offset += 6
		name, err := r.pool.Utf8(nameIdx)
		if err != nil {
			return 0, err
		}
		descriptor, err := r.pool.Utf8(descIdx)
		if err != nil {
			return 0, err
		}

		var mv *classfile.MethodVisitor
		if v.VisitMethod != nil {
			mv = v.VisitMethod(access, name, descriptor, nil)
		}
		var err2 error
		offset, err2 = r.readAttributes(r.data, offset, func(attr classfile.Attribute) error {
			if attr.Type == "Code" && !r.flags.Skips(classfile.SkipCode) {
				return r.readCode(attr.Content, mv)
			}
			if mv != nil && mv.VisitAttribute != nil {
				return mv.VisitAttribute(attr)
			}
			return nil
		})
		if err2 != nil {
			return 0, err2
		}
		if mv != nil && mv.VisitEnd != nil {
			if err := mv.VisitEnd(); err != nil {
				return 0, err
			}
		}
	}
	return offset, nil
}

func (r *ClassReader) readClassAttributes(offset int, v *classfile.ClassVisitor) (int, error) {
	return r.readAttributes(r.data, offset, func(attr classfile.Attribute) error {
		switch attr.Type {
		case "SourceFile":
			if v.VisitSource != nil && len(attr.Content) >= 2 {
				idx := binary.BigEndian.Uint16(attr.Content)
				name, err := r.pool.Utf8(idx)
				if err != nil {
					return err
				}
				return v.VisitSource(name, "")
			}
			return nil
		case "EnclosingMethod":
			if v.VisitOuterClass != nil && len(attr.Content) >= 4 {
				classIdx := binary.BigEndian.Uint16(attr.Content)
				owner, err := r.className(classIdx)
				if err != nil {
					return err
				}
				return v.VisitOuterClass(owner, "", "")
			}
			return nil
		case "InnerClasses":
			return r.readInnerClasses(attr.Content, v)
		default:
			if v.VisitAttribute != nil {
				return v.VisitAttribute(attr)
			}
			return nil
		}
	})
}

func (r *ClassReader) readInnerClasses(content []byte, v *classfile.ClassVisitor) error {
	if v.VisitInnerClass == nil || len(content) < 2 {
		return nil
	}
	count := int(binary.BigEndian.Uint16(content))
	pos := 2
	for i := 0; i < count; i++ {
		if pos+8 > len(content) {
			return malformed("readInnerClasses", pos, "truncated inner_classes entry")
		}
		innerIdx := binary.BigEndian.Uint16(content[pos:])
		outerIdx := binary.BigEndian.Uint16(content[pos+2:])
		nameIdx := binary.BigEndian.Uint16(content[pos+4:])
		access := binary.BigEndian.Uint16(content[pos+6:])
		pos += 8

		innerName, err := r.className(innerIdx)
		if err != nil {
			return err
		}
		var outerName, simpleName string
		if outerIdx != 0 {
			outerName, err = r.className(outerIdx)
			if err != nil {
				return err
			}
		}
		if nameIdx != 0 {
			simpleName, err = r.pool.Utf8(nameIdx)
			if err != nil {
				return err
			}
		}
		if err := v.VisitInnerClass(innerName, outerName, simpleName, access); err != nil {
			return err
		}
	}
	return nil
}

// readAttributes walks an attribute_info table within data starting at
// offset, invoking handle for each decoded attribute (SKIP_DEBUG skips
// LineNumberTable/LocalVariableTable*, SKIP_FRAMES skips StackMapTable).
func (r *ClassReader) readAttributes(data []byte, offset int, handle func(classfile.Attribute) error) (int, error) {
	if offset+2 > len(data) {
		return 0, malformed("readAttributes", offset, "truncated attribute count")
	}
	count := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	for i := 0; i < count; i++ {
		if offset+6 > len(data) {
			return 0, malformed("readAttributes", offset, "truncated attribute_info")
		}
		nameIdx := binary.BigEndian.Uint16(data[offset:])
		length := int(binary.BigEndian.Uint32(data[offset+2:]))
		offset += 6
		if offset+length > len(data) {
			return 0, malformed("readAttributes", offset, "truncated attribute content")
		}
		name, err := r.pool.Utf8(nameIdx)
		if err != nil {
			return 0, err
		}
		content := data[offset : offset+length]
		offset += length

		if r.flags.Skips(classfile.SkipDebug) && isDebugAttribute(name) {
			continue
		}
		if r.flags.Skips(classfile.SkipFrames) && name == "StackMapTable" {
			continue
		}
		attr := classfile.Attribute{Type: name, Content: content}
		if r.attrs != nil {
			v, matched, err := r.attrs.Resolve(name, content, r.pool)
			if err != nil {
				return 0, err
			}
			if matched {
				attr.Value = v
			}
		}
		if err := handle(attr); err != nil {
			return 0, err
		}
	}
	return offset, nil
}

func isDebugAttribute(name string) bool {
	return name == "LineNumberTable" || name == "LocalVariableTable" || name == "LocalVariableTypeTable"
}

// readCode implements the two-phase parse of the Code attribute body
// (spec.md §4.1): label discovery, then a visitor-driving re-scan.
func (r *ClassReader) readCode(content []byte, mv *classfile.MethodVisitor) error {
	if len(content) < 8 {
		return malformed("readCode", 0, "truncated Code attribute")
	}
	maxStack := int(binary.BigEndian.Uint16(content))
	maxLocals := int(binary.BigEndian.Uint16(content[2:]))
	codeLen := int(binary.BigEndian.Uint32(content[4:]))
	codeStart := 8
	if codeStart+codeLen > len(content) {
		return malformed("readCode", codeStart, "truncated code array")
	}
	code := content[codeStart : codeStart+codeLen]

	exTableOffset := codeStart + codeLen
	if exTableOffset+2 > len(content) {
		return malformed("readCode", exTableOffset, "truncated exception table count")
	}
	exCount := int(binary.BigEndian.Uint16(content[exTableOffset:]))
	exOffset := exTableOffset + 2
	exRows := make([]exceptionRow, exCount)
	for i := 0; i < exCount; i++ {
		base := exOffset + i*8
		if base+8 > len(content) {
			return malformed("readCode", base, "truncated exception_table entry")
		}
		exRows[i] = exceptionRow{
			start:     int(binary.BigEndian.Uint16(content[base:])),
			end:       int(binary.BigEndian.Uint16(content[base+2:])),
			handler:   int(binary.BigEndian.Uint16(content[base+4:])),
			catchType: binary.BigEndian.Uint16(content[base+6:]),
		}
	}
	afterExTable := exOffset + exCount*8

	labels := map[int]*Label{}
	labelAt := func(off int) *Label {
		if l, ok := labels[off]; ok {
			return l
		}
		l := NewLabel()
		labels[off] = l
		return l
	}

	if err := r.discoverLabels(code, exRows, labelAt); err != nil {
		return err
	}
	for off := range labels {
		if off < 0 || off > codeLen {
			return malformed("readCode", off, "branch or handler offset outside the code array")
		}
	}

	if mv != nil && mv.VisitCode != nil {
		mv.VisitCode()
	}

	peekLabelAt := func(off int) (*Label, bool) {
		l, ok := labels[off]
		return l, ok
	}
	if err := r.driveCode(code, mv, labelAt, peekLabelAt); err != nil {
		return err
	}

	for _, ex := range exRows {
		if mv != nil && mv.VisitTryCatchBlock != nil {
			catchName := ""
			if ex.catchType != 0 {
				var err error
				catchName, err = r.className(ex.catchType)
				if err != nil {
					return err
				}
			}
			mv.VisitTryCatchBlock(labelAt(ex.start), labelAt(ex.end), labelAt(ex.handler), catchName)
		}
	}

	if _, err := r.readAttributes(content, afterExTable, func(attr classfile.Attribute) error {
		switch attr.Type {
		case "LineNumberTable":
			return r.readLineNumberTable(attr.Content, mv, labelAt)
		case "LocalVariableTable":
			return r.readLocalVariableTable(attr.Content, mv, labelAt, r.pool)
		default:
			if mv != nil && mv.VisitAttribute != nil {
				return mv.VisitAttribute(attr)
			}
			return nil
		}
	}); err != nil {
		return err
	}

	if mv != nil && mv.VisitMaxs != nil {
		mv.VisitMaxs(maxStack, maxLocals)
	}
	return nil
}

// exceptionRow is one decoded exception_table entry from a Code
// attribute, shared between readCode's exception-table pass and phase 1
// label discovery.
type exceptionRow struct {
	start, end, handler int
	catchType           uint16
}

// discoverLabels is phase 1 (spec.md §4.1): walk the opcode-length table
// once, allocating a deduplicated Label at every branch target, exception
// range boundary, and (later) debug program-counter reference.
func (r *ClassReader) discoverLabels(code []byte, exRows []exceptionRow, labelAt func(int) *Label) error {
	for _, ex := range exRows {
		labelAt(ex.start)
		labelAt(ex.end)
		labelAt(ex.handler)
	}

	pos := 0
	for pos < len(code) {
		op := classfile.Opcode(code[pos])
		if op >= classfile.PseudoOpcodeLow && op <= classfile.PseudoOpcodeHigh {
			return malformed("discoverLabels", pos, "reserved pseudo-opcode in input")
		}
		switch op {
		case classfile.GOTO, classfile.JSR, classfile.IFEQ, classfile.IFNE, classfile.IFLT, classfile.IFGE,
			classfile.IFGT, classfile.IFLE, classfile.IF_ICMPEQ, classfile.IF_ICMPNE, classfile.IF_ICMPLT,
			classfile.IF_ICMPGE, classfile.IF_ICMPGT, classfile.IF_ICMPLE, classfile.IF_ACMPEQ, classfile.IF_ACMPNE,
			classfile.IFNULL, classfile.IFNONNULL:
			if pos+3 > len(code) {
				return malformed("discoverLabels", pos, "truncated branch instruction")
			}
			target := pos + int(int16(binary.BigEndian.Uint16(code[pos+1:])))
			labelAt(target)
		case classfile.GOTO_W, classfile.JSR_W:
			if pos+5 > len(code) {
				return malformed("discoverLabels", pos, "truncated wide branch instruction")
			}
			target := pos + int(int32(binary.BigEndian.Uint32(code[pos+1:])))
			labelAt(target)
		case classfile.TABLESWITCH:
			pad := (4 - ((pos + 1) & 3)) & 3
			base := pos + 1 + pad
			if base+12 > len(code) {
				return malformed("discoverLabels", pos, "truncated tableswitch")
			}
			dflt := int(int32(binary.BigEndian.Uint32(code[base:])))
			low := int32(binary.BigEndian.Uint32(code[base+4:]))
			high := int32(binary.BigEndian.Uint32(code[base+8:]))
			labelAt(pos + dflt)
			entries := base + 12
			for k := int32(0); k <= high-low; k++ {
				off := entries + int(k)*4
				if off+4 > len(code) {
					return malformed("discoverLabels", off, "truncated tableswitch entry")
				}
				target := int(int32(binary.BigEndian.Uint32(code[off:])))
				labelAt(pos + target)
			}
		case classfile.LOOKUPSWITCH:
			pad := (4 - ((pos + 1) & 3)) & 3
			base := pos + 1 + pad
			if base+8 > len(code) {
				return malformed("discoverLabels", pos, "truncated lookupswitch")
			}
			dflt := int(int32(binary.BigEndian.Uint32(code[base:])))
			npairs := int(binary.BigEndian.Uint32(code[base+4:]))
			labelAt(pos + dflt)
			entries := base + 8
			for k := 0; k < npairs; k++ {
				off := entries + k*8
				if off+8 > len(code) {
					return malformed("discoverLabels", off, "truncated lookupswitch entry")
				}
				target := int(int32(binary.BigEndian.Uint32(code[off+4:])))
				labelAt(pos + target)
			}
		}
		pos += instructionLength(code, pos)
	}
	return nil
}

// driveCode is phase 2: re-scan, emitting VisitLabel at every offset that
// phase 1 marked, then dispatching the specific Visit*Insn call.
func (r *ClassReader) driveCode(code []byte, mv *classfile.MethodVisitor, labelAt func(int) *Label, peekLabelAt func(int) (*Label, bool)) error {
	pos := 0
	for pos < len(code) {
		if l, ok := peekLabelAt(pos); ok && mv != nil && mv.VisitLabel != nil {
			mv.VisitLabel(l)
		}
		op := classfile.Opcode(code[pos])
		n := instructionLength(code, pos)
		if err := r.driveInsn(code, pos, op, mv, labelAt); err != nil {
			return err
		}
		pos += n
	}
	return nil
}

func (r *ClassReader) driveInsn(code []byte, pos int, op classfile.Opcode, mv *classfile.MethodVisitor, labelAt func(int) *Label) error {
	if mv == nil {
		return nil
	}
	switch op {
	case classfile.BIPUSH:
		if mv.VisitIntInsn != nil {
			mv.VisitIntInsn(op, int(int8(code[pos+1])))
		}
	case classfile.SIPUSH:
		if mv.VisitIntInsn != nil {
			mv.VisitIntInsn(op, int(int16(binary.BigEndian.Uint16(code[pos+1:]))))
		}
	case classfile.NEWARRAY:
		if mv.VisitIntInsn != nil {
			mv.VisitIntInsn(op, int(code[pos+1]))
		}
	case classfile.ILOAD, classfile.LLOAD, classfile.FLOAD, classfile.DLOAD, classfile.ALOAD,
		classfile.ISTORE, classfile.LSTORE, classfile.FSTORE, classfile.DSTORE, classfile.ASTORE, classfile.RET:
		if mv.VisitVarInsn != nil {
			mv.VisitVarInsn(op, int(code[pos+1]))
		}
	case classfile.IINC:
		if mv.VisitIincInsn != nil {
			mv.VisitIincInsn(int(code[pos+1]), int(int8(code[pos+2])))
		}
	case classfile.WIDE:
		return r.driveWideInsn(code, pos, mv)
	case classfile.LDC:
		if mv.VisitLdcInsn != nil {
			v, err := r.ldcValue(uint16(code[pos+1]))
			if err != nil {
				return err
			}
			mv.VisitLdcInsn(v)
		}
	case classfile.LDC_W, classfile.LDC2_W:
		if mv.VisitLdcInsn != nil {
			v, err := r.ldcValue(binary.BigEndian.Uint16(code[pos+1:]))
			if err != nil {
				return err
			}
			mv.VisitLdcInsn(v)
		}
	case classfile.NEW, classfile.ANEWARRAY, classfile.CHECKCAST, classfile.INSTANCEOF:
		if mv.VisitTypeInsn != nil {
			idx := binary.BigEndian.Uint16(code[pos+1:])
			name, err := r.className(idx)
			if err != nil {
				return err
			}
			mv.VisitTypeInsn(op, name)
		}
	case classfile.GETSTATIC, classfile.PUTSTATIC, classfile.GETFIELD, classfile.PUTFIELD:
		if mv.VisitFieldInsn != nil {
			owner, name, desc, err := r.memberRef(binary.BigEndian.Uint16(code[pos+1:]))
			if err != nil {
				return err
			}
			mv.VisitFieldInsn(op, owner, name, desc)
		}
	case classfile.INVOKEVIRTUAL, classfile.INVOKESPECIAL, classfile.INVOKESTATIC:
		if mv.VisitMethodInsn != nil {
			owner, name, desc, err := r.memberRef(binary.BigEndian.Uint16(code[pos+1:]))
			if err != nil {
				return err
			}
			mv.VisitMethodInsn(op, owner, name, desc, false)
		}
	case classfile.INVOKEINTERFACE:
		if mv.VisitMethodInsn != nil {
			owner, name, desc, err := r.memberRef(binary.BigEndian.Uint16(code[pos+1:]))
			if err != nil {
				return err
			}
			mv.VisitMethodInsn(op, owner, name, desc, true)
		}
	case classfile.INVOKEDYNAMIC:
		if mv.VisitInvokeDynamicInsn != nil {
			idx := binary.BigEndian.Uint16(code[pos+1:])
			e, err := r.pool.Get(idx)
			if err != nil {
				return err
			}
			nt, err := r.pool.Get(e.NameAndTypeIdx)
			if err != nil {
				return err
			}
			name, err := r.pool.Utf8(nt.NameIndex)
			if err != nil {
				return err
			}
			desc, err := r.pool.Utf8(nt.DescriptorIndex)
			if err != nil {
				return err
			}
			mv.VisitInvokeDynamicInsn(name, desc, classfile.Handle{}, nil)
		}
	case classfile.MULTIANEWARRAY:
		if mv.VisitMultiANewArrayInsn != nil {
			idx := binary.BigEndian.Uint16(code[pos+1:])
			name, err := r.className(idx)
			if err != nil {
				return err
			}
			mv.VisitMultiANewArrayInsn(name, int(code[pos+3]))
		}
	case classfile.GOTO, classfile.JSR, classfile.IFEQ, classfile.IFNE, classfile.IFLT, classfile.IFGE,
		classfile.IFGT, classfile.IFLE, classfile.IF_ICMPEQ, classfile.IF_ICMPNE, classfile.IF_ICMPLT,
		classfile.IF_ICMPGE, classfile.IF_ICMPGT, classfile.IF_ICMPLE, classfile.IF_ACMPEQ, classfile.IF_ACMPNE,
		classfile.IFNULL, classfile.IFNONNULL:
		if mv.VisitJumpInsn != nil {
			target := pos + int(int16(binary.BigEndian.Uint16(code[pos+1:])))
			mv.VisitJumpInsn(op, labelAt(target))
		}
	case classfile.GOTO_W, classfile.JSR_W:
		if mv.VisitJumpInsn != nil {
			target := pos + int(int32(binary.BigEndian.Uint32(code[pos+1:])))
			real := classfile.GOTO
			if op == classfile.JSR_W {
				real = classfile.JSR
			}
			mv.VisitJumpInsn(real, labelAt(target))
		}
	case classfile.TABLESWITCH:
		return r.driveTableSwitch(code, pos, mv, labelAt)
	case classfile.LOOKUPSWITCH:
		return r.driveLookupSwitch(code, pos, mv, labelAt)
	default:
		if mv.VisitInsn != nil {
			mv.VisitInsn(op)
		}
	}
	return nil
}

func (r *ClassReader) driveWideInsn(code []byte, pos int, mv *classfile.MethodVisitor) error {
	inner := classfile.Opcode(code[pos+1])
	if inner == classfile.IINC {
		index := int(binary.BigEndian.Uint16(code[pos+2:]))
		delta := int(int16(binary.BigEndian.Uint16(code[pos+4:])))
		if mv.VisitIincInsn != nil {
			mv.VisitIincInsn(index, delta)
		}
		return nil
	}
	index := int(binary.BigEndian.Uint16(code[pos+2:]))
	if mv.VisitVarInsn != nil {
		mv.VisitVarInsn(inner, index)
	}
	return nil
}

func (r *ClassReader) driveTableSwitch(code []byte, pos int, mv *classfile.MethodVisitor, labelAt func(int) *Label) error {
	pad := (4 - ((pos + 1) & 3)) & 3
	base := pos + 1 + pad
	dflt := int(int32(binary.BigEndian.Uint32(code[base:])))
	low := int32(binary.BigEndian.Uint32(code[base+4:]))
	high := int32(binary.BigEndian.Uint32(code[base+8:]))
	entries := base + 12
	labels := make([]interface{}, 0, high-low+1)
	for k := int32(0); k <= high-low; k++ {
		off := entries + int(k)*4
		target := int(int32(binary.BigEndian.Uint32(code[off:])))
		labels = append(labels, labelAt(pos+target))
	}
	if mv.VisitTableSwitchInsn != nil {
		mv.VisitTableSwitchInsn(int(low), int(high), labelAt(pos+dflt), labels)
	}
	return nil
}

func (r *ClassReader) driveLookupSwitch(code []byte, pos int, mv *classfile.MethodVisitor, labelAt func(int) *Label) error {
	pad := (4 - ((pos + 1) & 3)) & 3
	base := pos + 1 + pad
	dflt := int(int32(binary.BigEndian.Uint32(code[base:])))
	npairs := int(binary.BigEndian.Uint32(code[base+4:]))
	entries := base + 8
	keys := make([]int, npairs)
	labels := make([]interface{}, npairs)
	for k := 0; k < npairs; k++ {
		off := entries + k*8
		keys[k] = int(int32(binary.BigEndian.Uint32(code[off:])))
		target := int(int32(binary.BigEndian.Uint32(code[off+4:])))
		labels[k] = labelAt(pos + target)
	}
	if mv.VisitLookupSwitchInsn != nil {
		mv.VisitLookupSwitchInsn(labelAt(pos+dflt), keys, labels)
	}
	return nil
}

func (r *ClassReader) memberRef(idx uint16) (owner, name, descriptor string, err error) {
	e, err := r.pool.Get(idx)
	if err != nil {
		return "", "", "", err
	}
	owner, err = r.className(e.ClassIndex)
	if err != nil {
		return "", "", "", err
	}
	nt, err := r.pool.Get(e.NameAndTypeIdx)
	if err != nil {
		return "", "", "", err
	}
	name, err = r.pool.Utf8(nt.NameIndex)
	if err != nil {
		return "", "", "", err
	}
	descriptor, err = r.pool.Utf8(nt.DescriptorIndex)
	return owner, name, descriptor, err
}

func (r *ClassReader) ldcValue(idx uint16) (interface{}, error) {
	e, err := r.pool.Get(idx)
	if err != nil {
		return nil, err
	}
	switch e.Tag {
	case classfile.TagInteger:
		return e.Int32, nil
	case classfile.TagFloat:
		return e.Float32, nil
	case classfile.TagLong:
		return e.Int64, nil
	case classfile.TagDouble:
		return e.Float64, nil
	case classfile.TagString:
		return r.pool.Utf8(e.StringIndex)
	case classfile.TagClass:
		return r.className(idx)
	default:
		return nil, malformed("ldcValue", int(idx), "unsupported loadable constant tag")
	}
}

func (r *ClassReader) readLineNumberTable(content []byte, mv *classfile.MethodVisitor, labelAt func(int) *Label) error {
	if mv == nil || mv.VisitLineNumber == nil || len(content) < 2 {
		return nil
	}
	count := int(binary.BigEndian.Uint16(content))
	pos := 2
	for i := 0; i < count; i++ {
		if pos+4 > len(content) {
			return malformed("readLineNumberTable", pos, "truncated entry")
		}
		startPC := int(binary.BigEndian.Uint16(content[pos:]))
		line := int(binary.BigEndian.Uint16(content[pos+2:]))
		pos += 4
		mv.VisitLineNumber(line, labelAt(startPC))
	}
	return nil
}

func (r *ClassReader) readLocalVariableTable(content []byte, mv *classfile.MethodVisitor, labelAt func(int) *Label, pool *classfile.ConstantPool) error {
	if mv == nil || mv.VisitLocalVariable == nil || len(content) < 2 {
		return nil
	}
	count := int(binary.BigEndian.Uint16(content))
	pos := 2
	for i := 0; i < count; i++ {
		if pos+10 > len(content) {
			return malformed("readLocalVariableTable", pos, "truncated entry")
		}
		startPC := int(binary.BigEndian.Uint16(content[pos:]))
		length := int(binary.BigEndian.Uint16(content[pos+2:]))
		nameIdx := binary.BigEndian.Uint16(content[pos+4:])
		descIdx := binary.BigEndian.Uint16(content[pos+6:])
		index := int(binary.BigEndian.Uint16(content[pos+8:]))
		pos += 10

		name, err := pool.Utf8(nameIdx)
		if err != nil {
			return err
		}
		descriptor, err := pool.Utf8(descIdx)
		if err != nil {
			return err
		}
		mv.VisitLocalVariable(name, descriptor, "", labelAt(startPC), labelAt(startPC+length), index)
	}
	return nil
}
