package bytecode

import (
	"github.com/go-asmgo/asmgo/classfile"
)

// classField is one field_info row pending emission.
type classField struct {
	access     uint16
	name       string
	descriptor string
	attrs      []classfile.Attribute
}

// classMethod is one method_info row pending emission: either a finished
// MethodWriter (code-bearing) or a bare descriptor for an abstract/native
// method with no Code attribute.
type classMethod struct {
	access         uint16
	name           string
	descriptor     string
	exceptions     []string
	mw             *MethodWriter
	declaredLocals int
	attrs          []classfile.Attribute
}

// ClassWriter is the emission-side counterpart of ClassReader (spec.md
// §4.2): it owns the class-level ConstantPool and accumulates field and
// method rows, handing method bodies off to one MethodWriter each before
// assembling the finished class file bytes.
type ClassWriter struct {
	pool      *classfile.ConstantPool
	hierarchy classfile.ClassHierarchy
	flags     classfile.WriterFlags

	version    uint32
	access     uint16
	name       string
	superName  string
	interfaces []string
	source     string

	fields  []classField
	methods []classMethod
	attrs   []classfile.Attribute
}

// NewClassWriter starts a class file for name/superName/interfaces at the
// given version (major<<16|minor), computing stack map frames or bare
// max-stack/locals according to flags. hierarchy resolves common
// supertypes during frame merging (spec.md §4.3); it is consulted only
// under ComputeFrames, and may be nil otherwise.
func NewClassWriter(version uint32, flags classfile.WriterFlags, hierarchy classfile.ClassHierarchy, access uint16, name, superName string, interfaces []string) *ClassWriter {
	pool := classfile.NewConstantPool()
	cw := &ClassWriter{
		pool:       pool,
		hierarchy:  hierarchy,
		flags:      flags,
		version:    version,
		access:     access,
		name:       name,
		superName:  superName,
		interfaces: append([]string(nil), interfaces...),
	}
	pool.AddClass(name)
	if superName != "" {
		pool.AddClass(superName)
	}
	for _, i := range interfaces {
		pool.AddClass(i)
	}
	return cw
}

// VisitSource records the optional SourceFile attribute.
func (cw *ClassWriter) VisitSource(source string) {
	cw.source = source
}

// VisitField appends a field_info row. value, when non-nil, becomes a
// ConstantValue attribute (JVMS 4.7.2).
func (cw *ClassWriter) VisitField(access uint16, name, descriptor string, value interface{}) error {
	f := classField{access: access, name: name, descriptor: descriptor}
	if value != nil {
		idx, err := cw.pool.AddConst(value)
		if err != nil {
			return err
		}
		f.attrs = append(f.attrs, classfile.Attribute{Type: "ConstantValue", Content: u16Bytes(idx)})
	}
	cw.fields = append(cw.fields, f)
	return nil
}

// VisitMethod starts a new method body and returns the MethodWriter the
// caller should drive with VisitInsn/VisitLabel/etc, finishing with
// cw.FinishMethod once the body is complete. Pass a nil-bodied method
// (abstract or native) by never calling VisitInsn and finishing
// immediately.
func (cw *ClassWriter) VisitMethod(access uint16, name, descriptor string, exceptions []string) *MethodWriter {
	argLocals := methodArgLocals(cw.pool, access, descriptor)
	mw := NewMethodWriter(cw.pool, cw.hierarchy, cw.flags, argLocals)
	cw.methods = append(cw.methods, classMethod{
		access:         access,
		name:           name,
		descriptor:     descriptor,
		exceptions:     append([]string(nil), exceptions...),
		mw:             mw,
		declaredLocals: len(argLocals),
	})
	return mw
}

// methodArgLocals derives a method's initial local-variable frame from
// its descriptor, reserving slot 0 for the receiver unless the method is
// static (spec.md §4.3's input-frame seed).
func methodArgLocals(pool *classfile.ConstantPool, access uint16, descriptor string) []frameType {
	var locals []frameType
	if access&classfile.AccStatic == 0 {
		locals = append(locals, objectType(0)) // placeholder; caller overwrites via VisitMethodOwner for <init>/instance receivers
	}
	for _, p := range splitParams(descriptor) {
		ft := (&MethodWriter{pool: pool}).descriptorFrameType(p)
		locals = append(locals, ft)
		if isWide(ft) {
			locals = append(locals, 0)
		}
	}
	return locals
}

// VisitMethodOwner fixes up the receiver slot seeded by VisitMethod once
// the owning class's internal name is known; call it immediately after
// VisitMethod for any non-static method.
func (cw *ClassWriter) VisitMethodOwner(mw *MethodWriter, isInit bool) {
	if len(mw.entry.inputLocals) == 0 {
		return
	}
	if isInit {
		mw.entry.inputLocals[0] = ftUninitializedThis
		return
	}
	idx := cw.pool.AddType(cw.name)
	mw.entry.inputLocals[0] = objectType(idx)
}

// FinishMethod runs mw (already obtained via VisitMethod) through its
// resize/frame-computation pipeline and records its finished bytes.
func (cw *ClassWriter) FinishMethod(mw *MethodWriter) error {
	for i := range cw.methods {
		if cw.methods[i].mw != mw {
			continue
		}
		code, maxStack, maxLocals, smt, err := mw.Finish(cw.methods[i].declaredLocals)
		if err != nil {
			return err
		}
		cw.methods[i].attrs = append(cw.methods[i].attrs, classfile.Attribute{
			Type:    "Code",
			Content: cw.encodeCodeAttribute(code, maxStack, maxLocals, mw.tryCatches, smt),
		})
		return nil
	}
	return illegalState("FinishMethod called with an unknown MethodWriter")
}

// encodeCodeAttribute assembles a Code attribute's info[] payload (JVMS
// 4.7.3): max_stack, max_locals, code, exception_table, then an
// attributes table holding StackMapTable when present.
func (cw *ClassWriter) encodeCodeAttribute(code []byte, maxStack, maxLocals int, tryCatches []tryCatch, stackMapTable []byte) []byte {
	buf := NewByteVector(len(code) + 32)
	buf.PutShort(maxStack)
	buf.PutShort(maxLocals)
	buf.PutInt(len(code))
	buf.PutBytes(code)
	buf.PutShort(len(tryCatches))
	for _, tc := range tryCatches {
		buf.PutShort(tc.start.Position)
		buf.PutShort(tc.end.Position)
		buf.PutShort(tc.handler.Position)
		buf.PutShort(int(tc.catchType))
	}
	if stackMapTable != nil {
		buf.PutShort(1)
		nameIdx := cw.pool.AddUtf8("StackMapTable")
		buf.PutShort(int(nameIdx))
		buf.PutInt(len(stackMapTable))
		buf.PutBytes(stackMapTable)
	} else {
		buf.PutShort(0)
	}
	return buf.Bytes()
}

// ToByteArray assembles the finished class file (JVMS 4.1): magic,
// version, constant pool, access/this/super/interfaces, fields, methods,
// class attributes. Every MethodWriter obtained via VisitMethod must have
// already been finished via FinishMethod.
func (cw *ClassWriter) ToByteArray() ([]byte, error) {
	body := NewByteVector(256)
	body.PutShort(int(cw.access))
	body.PutShort(int(cw.pool.AddClass(cw.name)))
	if cw.superName != "" {
		body.PutShort(int(cw.pool.AddClass(cw.superName)))
	} else {
		body.PutShort(0)
	}
	body.PutShort(len(cw.interfaces))
	for _, iface := range cw.interfaces {
		body.PutShort(int(cw.pool.AddClass(iface)))
	}

	body.PutShort(len(cw.fields))
	for _, f := range cw.fields {
		body.PutShort(int(f.access))
		body.PutShort(int(cw.pool.AddUtf8(f.name)))
		body.PutShort(int(cw.pool.AddUtf8(f.descriptor)))
		appendAttributeTable(body, cw.pool, f.attrs)
	}

	body.PutShort(len(cw.methods))
	for _, m := range cw.methods {
		if m.mw != nil {
			found := false
			for _, a := range m.attrs {
				if a.Type == "Code" {
					found = true
				}
			}
			if !found {
				return nil, illegalState("VisitMethod body was never finished with FinishMethod")
			}
		}
		body.PutShort(int(m.access))
		body.PutShort(int(cw.pool.AddUtf8(m.name)))
		body.PutShort(int(cw.pool.AddUtf8(m.descriptor)))
		attrs := m.attrs
		if len(m.exceptions) > 0 {
			attrs = append(attrs, classfile.Attribute{Type: "Exceptions", Content: cw.encodeExceptions(m.exceptions)})
		}
		appendAttributeTable(body, cw.pool, attrs)
	}

	classAttrs := cw.attrs
	if cw.source != "" {
		classAttrs = append(classAttrs, classfile.Attribute{
			Type:    "SourceFile",
			Content: u16Bytes(cw.pool.AddUtf8(cw.source)),
		})
	}
	appendAttributeTable(body, cw.pool, classAttrs)

	out := NewByteVector(len(body.Bytes()) + cw.pool.Len()*4 + 10)
	out.PutInt(int(0xCAFEBABE))
	out.PutShort(int(uint16(cw.version)))
	out.PutShort(int(uint16(cw.version >> 16)))
	out.data = cw.pool.AppendTo(out.data)
	out.PutBytes(body.Bytes())
	return out.Bytes(), nil
}

func (cw *ClassWriter) encodeExceptions(names []string) []byte {
	buf := NewByteVector(2 + len(names)*2)
	buf.PutShort(len(names))
	for _, n := range names {
		buf.PutShort(int(cw.pool.AddClass(n)))
	}
	return buf.Bytes()
}

// appendAttributeTable writes an attributes_count-prefixed table of
// already-encoded attributes, resolving each Type through pool.
func appendAttributeTable(buf *ByteVector, pool *classfile.ConstantPool, attrs []classfile.Attribute) {
	buf.PutShort(len(attrs))
	for _, a := range attrs {
		buf.PutShort(int(pool.AddUtf8(a.Type)))
		buf.PutInt(len(a.Content))
		buf.PutBytes(a.Content)
	}
}

func u16Bytes(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }
