package bytecode

import "github.com/go-asmgo/asmgo/classfile"

// simulateVarInsn applies ILOAD/LLOAD/FLOAD/DLOAD/ALOAD/ISTORE/.../ASTORE
// with an explicit variable index (as opposed to the _0.._3 short forms
// handled generically in frame_effects.go).
func simulateVarInsn(f *frameSim, op classfile.Opcode, index int) {
	switch op {
	case classfile.ILOAD:
		f.push(f.get(index))
	case classfile.FLOAD:
		f.push(f.get(index))
	case classfile.ALOAD:
		f.push(f.get(index))
	case classfile.LLOAD:
		f.push(f.get(index))
	case classfile.DLOAD:
		f.push(f.get(index))
	case classfile.ISTORE, classfile.FSTORE, classfile.ASTORE:
		f.set(index, f.pop())
	case classfile.LSTORE, classfile.DSTORE:
		f.setWide(index, f.pop())
	case classfile.RET:
		// ret's operand is a return address local, not a typed value;
		// no stack effect and no frame-relevant local effect.
	}
}

// simulateIinc has no stack effect; it narrows nothing and never changes
// a local's declared type, so the frame engine does not need to touch
// outputLocals for it.
func simulateIinc(*frameSim, int) {}

// simulateBipushSipush pushes a plain int constant.
func simulateBipushSipush(f *frameSim) { f.push(ftInteger) }

// simulateLdc pushes the frame type corresponding to a CONSTANT_*
// loadable entry. handle/dynamic loadable constants other than the five
// primitive/string/class shapes resolve to OBJECT MethodHandle/CallSite
// types at the call site, which callers pass in via objectTag.
func simulateLdc(f *frameSim, tag classfile.Tag, objectTag frameType) {
	switch tag {
	case classfile.TagInteger:
		f.push(ftInteger)
	case classfile.TagFloat:
		f.push(ftFloat)
	case classfile.TagLong:
		f.push(ftLong)
	case classfile.TagDouble:
		f.push(ftDouble)
	case classfile.TagString, classfile.TagClass, classfile.TagMethodHandle, classfile.TagMethodType, classfile.TagDynamic:
		f.push(objectTag)
	}
}

// simulateFieldInsn applies GETFIELD/PUTFIELD/GETSTATIC/PUTSTATIC. fieldType
// is the descriptor-derived frameType, with objectType already resolved
// by the caller for reference descriptors (the caller owns type-table
// interning since it holds the ConstantPool).
func simulateFieldInsn(f *frameSim, op classfile.Opcode, fieldType frameType) {
	switch op {
	case classfile.GETSTATIC:
		f.push(fieldType)
	case classfile.PUTSTATIC:
		f.pop()
		if isWide(fieldType) {
			f.pop()
		}
	case classfile.GETFIELD:
		f.pop() // objectref
		f.push(fieldType)
	case classfile.PUTFIELD:
		f.pop() // value
		if isWide(fieldType) {
			f.pop()
		}
		f.pop() // objectref
	}
}

// simulateMethodInsn pops the receiver (unless static) and each argument
// (argTypes, in left-to-right descriptor order so the caller passes them
// already reversed or this pops in reverse — here argTypes is consumed
// back-to-front since the stack holds the last argument on top), then
// pushes the return type if it is not void (returnType == 0 meaning
// void). invokedynamic has no receiver either.
func simulateMethodInsn(f *frameSim, op classfile.Opcode, argTypes []frameType, returnType frameType) {
	for i := len(argTypes) - 1; i >= 0; i-- {
		f.pop()
		if isWide(argTypes[i]) {
			f.pop()
		}
	}
	if op == classfile.INVOKEVIRTUAL || op == classfile.INVOKESPECIAL ||
		op == classfile.INVOKEINTERFACE {
		f.pop() // receiver; handled separately for INVOKESPECIAL <init> by the caller
	}
	if returnType != 0 {
		f.push(returnType)
	}
}

// simulateNew pushes an UNINITIALIZED|typeTableIdx value for a NEW
// instruction, where typeTableIdx has already been interned via
// ConstantPool.AddUninitializedType by the caller (spec.md §4.3: "the
// byte-offset of the NEW is part of the tag to distinguish multiple
// allocations of the same class").
func simulateNew(f *frameSim, typeTableIdx uint16) {
	f.push(uninitializedType(typeTableIdx))
}

// simulateInitInvocation pops the receiver (an UNINITIALIZED/
// UNINITIALIZED_THIS value) and the constructor's arguments, then
// records the substitution of that value for the constructed OBJECT type
// so the fix-point's applyInitializations step can resolve it later.
func simulateInitInvocation(f *frameSim, argTypes []frameType, ownerTypeIdx uint16) {
	for i := len(argTypes) - 1; i >= 0; i-- {
		f.pop()
		if isWide(argTypes[i]) {
			f.pop()
		}
	}
	uninitialized := f.pop()
	initialized := objectType(ownerTypeIdx)
	f.recordInitialization(uninitialized, initialized)
}

// simulateTypeInsn applies CHECKCAST/INSTANCEOF/ANEWARRAY, each of which
// takes one type-table-indexed operand.
func simulateTypeInsn(f *frameSim, op classfile.Opcode, typeTableIdx uint16) {
	switch op {
	case classfile.CHECKCAST:
		f.pop()
		f.push(objectType(typeTableIdx))
	case classfile.INSTANCEOF:
		f.pop()
		f.push(ftInteger)
	case classfile.ANEWARRAY:
		f.pop() // count
		f.push(objectType(typeTableIdx).withDim(1))
	}
}

// simulateNewArray applies the primitive NEWARRAY instruction.
func simulateNewArray(f *frameSim, elementType frameType) {
	f.pop() // count
	f.push(elementType.withDim(1))
}

// simulateMultiANewArray pops dims count operands and pushes the array
// type with the requested rank.
func simulateMultiANewArray(f *frameSim, typeTableIdx uint16, dims int) {
	f.popN(dims)
	f.push(objectType(typeTableIdx).withDim(int32(dims)))
}
