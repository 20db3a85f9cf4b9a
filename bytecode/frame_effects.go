package bytecode

import "github.com/go-asmgo/asmgo/classfile"

// descriptorBaseType maps a field/array element descriptor's leading
// character to its frameType, used throughout the effect table below.
func descriptorBaseType(desc string) frameType {
	if len(desc) == 0 {
		return ftTop
	}
	switch desc[0] {
	case 'I':
		return ftInteger
	case 'J':
		return ftLong
	case 'F':
		return ftFloat
	case 'D':
		return ftDouble
	case 'Z':
		return ftBoolean
	case 'B':
		return ftByte
	case 'C':
		return ftChar
	case 'S':
		return ftShort
	default:
		return ftTop // object/array descriptors handled by callers via the type table
	}
}

func isWide(t frameType) bool { return t == ftLong || t == ftDouble }

// simulateSimpleInsn applies the effect of a no-operand opcode to the
// block currently being simulated. Opcodes that need constant-pool or
// type-table context (LDC, NEW, field/method access, casts, array
// allocation) are simulated by the caller via the dedicated helpers
// below rather than through this table, matching spec.md §4.3's
// "highlights" list.
func simulateSimpleInsn(f *frameSim, op classfile.Opcode) {
	switch op {
	case classfile.NOP:
	case classfile.ACONST_NULL:
		f.push(ftNull)
	case classfile.ICONST_M1, classfile.ICONST_0, classfile.ICONST_1, classfile.ICONST_2,
		classfile.ICONST_3, classfile.ICONST_4, classfile.ICONST_5:
		f.push(ftInteger)
	case classfile.LCONST_0, classfile.LCONST_1:
		f.push(ftLong)
	case classfile.FCONST_0, classfile.FCONST_1, classfile.FCONST_2:
		f.push(ftFloat)
	case classfile.DCONST_0, classfile.DCONST_1:
		f.push(ftDouble)

	case classfile.ILOAD_0, classfile.ILOAD_1, classfile.ILOAD_2, classfile.ILOAD_3:
		f.push(f.get(int(op - classfile.ILOAD_0)))
	case classfile.LLOAD_0, classfile.LLOAD_1, classfile.LLOAD_2, classfile.LLOAD_3:
		f.push(f.get(int(op - classfile.LLOAD_0)))
	case classfile.FLOAD_0, classfile.FLOAD_1, classfile.FLOAD_2, classfile.FLOAD_3:
		f.push(f.get(int(op - classfile.FLOAD_0)))
	case classfile.DLOAD_0, classfile.DLOAD_1, classfile.DLOAD_2, classfile.DLOAD_3:
		f.push(f.get(int(op - classfile.DLOAD_0)))
	case classfile.ALOAD_0, classfile.ALOAD_1, classfile.ALOAD_2, classfile.ALOAD_3:
		f.push(f.get(int(op - classfile.ALOAD_0)))

	case classfile.ISTORE_0, classfile.ISTORE_1, classfile.ISTORE_2, classfile.ISTORE_3:
		f.set(int(op-classfile.ISTORE_0), f.pop())
	case classfile.FSTORE_0, classfile.FSTORE_1, classfile.FSTORE_2, classfile.FSTORE_3:
		f.set(int(op-classfile.FSTORE_0), f.pop())
	case classfile.ASTORE_0, classfile.ASTORE_1, classfile.ASTORE_2, classfile.ASTORE_3:
		f.set(int(op-classfile.ASTORE_0), f.pop())
	case classfile.LSTORE_0, classfile.LSTORE_1, classfile.LSTORE_2, classfile.LSTORE_3:
		f.setWide(int(op-classfile.LSTORE_0), f.pop())
	case classfile.DSTORE_0, classfile.DSTORE_1, classfile.DSTORE_2, classfile.DSTORE_3:
		f.setWide(int(op-classfile.DSTORE_0), f.pop())

	case classfile.IALOAD, classfile.BALOAD, classfile.CALOAD, classfile.SALOAD:
		f.popN(2)
		f.push(ftInteger)
	case classfile.FALOAD:
		f.popN(2)
		f.push(ftFloat)
	case classfile.LALOAD:
		f.popN(2)
		f.push(ftLong)
	case classfile.DALOAD:
		f.popN(2)
		f.push(ftDouble)
	case classfile.AALOAD:
		f.pop() // index
		arr := f.pop()
		f.push(arr.withDim(-1))

	case classfile.IASTORE, classfile.BASTORE, classfile.CASTORE, classfile.SASTORE, classfile.FASTORE, classfile.AASTORE:
		f.popN(3)
	case classfile.LASTORE, classfile.DASTORE:
		f.pop()
		f.popN(2)

	case classfile.POP:
		f.pop()
	case classfile.POP2:
		f.popN(2)
	case classfile.DUP:
		t := f.pop()
		f.push(t)
		f.push(t)
	case classfile.DUP_X1:
		a, b := f.pop(), f.pop()
		f.push(a)
		f.push(b)
		f.push(a)
	case classfile.DUP_X2:
		a, b, c := f.pop(), f.pop(), f.pop()
		f.push(a)
		f.push(c)
		f.push(b)
		f.push(a)
	case classfile.DUP2:
		a, b := f.pop(), f.pop()
		f.push(b)
		f.push(a)
		f.push(b)
		f.push(a)
	case classfile.DUP2_X1:
		a, b, c := f.pop(), f.pop(), f.pop()
		f.push(b)
		f.push(a)
		f.push(c)
		f.push(b)
		f.push(a)
	case classfile.DUP2_X2:
		a, b, c, d := f.pop(), f.pop(), f.pop(), f.pop()
		f.push(b)
		f.push(a)
		f.push(d)
		f.push(c)
		f.push(b)
		f.push(a)
	case classfile.SWAP:
		a, b := f.pop(), f.pop()
		f.push(a)
		f.push(b)

	case classfile.IADD, classfile.ISUB, classfile.IMUL, classfile.IDIV, classfile.IREM,
		classfile.ISHL, classfile.ISHR, classfile.IUSHR, classfile.IAND, classfile.IOR, classfile.IXOR:
		f.popN(2)
		f.push(ftInteger)
	case classfile.LADD, classfile.LSUB, classfile.LMUL, classfile.LDIV, classfile.LREM,
		classfile.LAND, classfile.LOR, classfile.LXOR:
		f.popN(2)
		f.push(ftLong)
	case classfile.LSHL, classfile.LSHR, classfile.LUSHR:
		f.pop() // shift amount is an int
		f.pop()
		f.push(ftLong)
	case classfile.FADD, classfile.FSUB, classfile.FMUL, classfile.FDIV, classfile.FREM:
		f.popN(2)
		f.push(ftFloat)
	case classfile.DADD, classfile.DSUB, classfile.DMUL, classfile.DDIV, classfile.DREM:
		f.popN(2)
		f.push(ftDouble)
	case classfile.INEG:
		t := f.pop()
		f.push(t)
	case classfile.LNEG, classfile.FNEG, classfile.DNEG:
		t := f.pop()
		f.push(t)

	case classfile.I2L:
		f.pop()
		f.push(ftLong)
	case classfile.I2F:
		f.pop()
		f.push(ftFloat)
	case classfile.I2D:
		f.pop()
		f.push(ftDouble)
	case classfile.L2I:
		f.pop()
		f.push(ftInteger)
	case classfile.L2F:
		f.pop()
		f.push(ftFloat)
	case classfile.L2D:
		f.pop()
		f.push(ftDouble)
	case classfile.F2I:
		f.pop()
		f.push(ftInteger)
	case classfile.F2L:
		f.pop()
		f.push(ftLong)
	case classfile.F2D:
		f.pop()
		f.push(ftDouble)
	case classfile.D2I:
		f.pop()
		f.push(ftInteger)
	case classfile.D2L:
		f.pop()
		f.push(ftLong)
	case classfile.D2F:
		f.pop()
		f.push(ftFloat)
	case classfile.I2B:
		f.pop()
		f.push(ftInteger)
	case classfile.I2C:
		f.pop()
		f.push(ftInteger)
	case classfile.I2S:
		f.pop()
		f.push(ftInteger)

	case classfile.LCMP:
		f.popN(2)
		f.push(ftInteger)
	case classfile.FCMPL, classfile.FCMPG, classfile.DCMPL, classfile.DCMPG:
		f.popN(2)
		f.push(ftInteger)

	case classfile.IFEQ, classfile.IFNE, classfile.IFLT, classfile.IFGE, classfile.IFGT, classfile.IFLE,
		classfile.IFNULL, classfile.IFNONNULL:
		f.pop()
	case classfile.IF_ICMPEQ, classfile.IF_ICMPNE, classfile.IF_ICMPLT, classfile.IF_ICMPGE,
		classfile.IF_ICMPGT, classfile.IF_ICMPLE, classfile.IF_ACMPEQ, classfile.IF_ACMPNE:
		f.popN(2)
	case classfile.GOTO:
	case classfile.TABLESWITCH, classfile.LOOKUPSWITCH:
		f.pop()

	case classfile.IRETURN, classfile.FRETURN, classfile.ARETURN:
		f.pop()
	case classfile.LRETURN, classfile.DRETURN:
		f.pop()
	case classfile.RETURN:
	case classfile.ATHROW:
		f.pop()

	case classfile.ARRAYLENGTH:
		f.pop()
		f.push(ftInteger)
	case classfile.MONITORENTER, classfile.MONITOREXIT:
		f.pop()
	}
}
