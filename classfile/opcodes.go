package classfile

// Opcode is a single bytecode instruction opcode. Standard opcodes occupy
// 0-201; GOTO_W, JSR_W, IFNULL and IFNONNULL extend the original 0-171
// range used by early class file versions. 202-219 is a reserved band used
// internally by the writer to mark short branches pending widening (see
// bytecode.Label) and must never appear in bytes handed to a ClassReader.
type Opcode byte

const (
	NOP             Opcode = 0
	ACONST_NULL     Opcode = 1
	ICONST_M1       Opcode = 2
	ICONST_0        Opcode = 3
	ICONST_1        Opcode = 4
	ICONST_2        Opcode = 5
	ICONST_3        Opcode = 6
	ICONST_4        Opcode = 7
	ICONST_5        Opcode = 8
	LCONST_0        Opcode = 9
	LCONST_1        Opcode = 10
	FCONST_0        Opcode = 11
	FCONST_1        Opcode = 12
	FCONST_2        Opcode = 13
	DCONST_0        Opcode = 14
	DCONST_1        Opcode = 15
	BIPUSH          Opcode = 16
	SIPUSH          Opcode = 17
	LDC             Opcode = 18
	LDC_W           Opcode = 19
	LDC2_W          Opcode = 20
	ILOAD           Opcode = 21
	LLOAD           Opcode = 22
	FLOAD           Opcode = 23
	DLOAD           Opcode = 24
	ALOAD           Opcode = 25
	ILOAD_0         Opcode = 26
	ILOAD_1         Opcode = 27
	ILOAD_2         Opcode = 28
	ILOAD_3         Opcode = 29
	LLOAD_0         Opcode = 30
	LLOAD_1         Opcode = 31
	LLOAD_2         Opcode = 32
	LLOAD_3         Opcode = 33
	FLOAD_0         Opcode = 34
	FLOAD_1         Opcode = 35
	FLOAD_2         Opcode = 36
	FLOAD_3         Opcode = 37
	DLOAD_0         Opcode = 38
	DLOAD_1         Opcode = 39
	DLOAD_2         Opcode = 40
	DLOAD_3         Opcode = 41
	ALOAD_0         Opcode = 42
	ALOAD_1         Opcode = 43
	ALOAD_2         Opcode = 44
	ALOAD_3         Opcode = 45
	IALOAD          Opcode = 46
	LALOAD          Opcode = 47
	FALOAD          Opcode = 48
	DALOAD          Opcode = 49
	AALOAD          Opcode = 50
	BALOAD          Opcode = 51
	CALOAD          Opcode = 52
	SALOAD          Opcode = 53
	ISTORE          Opcode = 54
	LSTORE          Opcode = 55
	FSTORE          Opcode = 56
	DSTORE          Opcode = 57
	ASTORE          Opcode = 58
	ISTORE_0        Opcode = 59
	ISTORE_1        Opcode = 60
	ISTORE_2        Opcode = 61
	ISTORE_3        Opcode = 62
	LSTORE_0        Opcode = 63
	LSTORE_1        Opcode = 64
	LSTORE_2        Opcode = 65
	LSTORE_3        Opcode = 66
	FSTORE_0        Opcode = 67
	FSTORE_1        Opcode = 68
	FSTORE_2        Opcode = 69
	FSTORE_3        Opcode = 70
	DSTORE_0        Opcode = 71
	DSTORE_1        Opcode = 72
	DSTORE_2        Opcode = 73
	DSTORE_3        Opcode = 74
	ASTORE_0        Opcode = 75
	ASTORE_1        Opcode = 76
	ASTORE_2        Opcode = 77
	ASTORE_3        Opcode = 78
	IASTORE         Opcode = 79
	LASTORE         Opcode = 80
	FASTORE         Opcode = 81
	DASTORE         Opcode = 82
	AASTORE         Opcode = 83
	BASTORE         Opcode = 84
	CASTORE         Opcode = 85
	SASTORE         Opcode = 86
	POP             Opcode = 87
	POP2            Opcode = 88
	DUP             Opcode = 89
	DUP_X1          Opcode = 90
	DUP_X2          Opcode = 91
	DUP2            Opcode = 92
	DUP2_X1         Opcode = 93
	DUP2_X2         Opcode = 94
	SWAP            Opcode = 95
	IADD            Opcode = 96
	LADD            Opcode = 97
	FADD            Opcode = 98
	DADD            Opcode = 99
	ISUB            Opcode = 100
	LSUB            Opcode = 101
	FSUB            Opcode = 102
	DSUB            Opcode = 103
	IMUL            Opcode = 104
	LMUL            Opcode = 105
	FMUL            Opcode = 106
	DMUL            Opcode = 107
	IDIV            Opcode = 108
	LDIV            Opcode = 109
	FDIV            Opcode = 110
	DDIV            Opcode = 111
	IREM            Opcode = 112
	LREM            Opcode = 113
	FREM            Opcode = 114
	DREM            Opcode = 115
	INEG            Opcode = 116
	LNEG            Opcode = 117
	FNEG            Opcode = 118
	DNEG            Opcode = 119
	ISHL            Opcode = 120
	LSHL            Opcode = 121
	ISHR            Opcode = 122
	LSHR            Opcode = 123
	IUSHR           Opcode = 124
	LUSHR           Opcode = 125
	IAND            Opcode = 126
	LAND            Opcode = 127
	IOR             Opcode = 128
	LOR             Opcode = 129
	IXOR            Opcode = 130
	LXOR            Opcode = 131
	IINC            Opcode = 132
	I2L             Opcode = 133
	I2F             Opcode = 134
	I2D             Opcode = 135
	L2I             Opcode = 136
	L2F             Opcode = 137
	L2D             Opcode = 138
	F2I             Opcode = 139
	F2L             Opcode = 140
	F2D             Opcode = 141
	D2I             Opcode = 142
	D2L             Opcode = 143
	D2F             Opcode = 144
	I2B             Opcode = 145
	I2C             Opcode = 146
	I2S             Opcode = 147
	LCMP            Opcode = 148
	FCMPL           Opcode = 149
	FCMPG           Opcode = 150
	DCMPL           Opcode = 151
	DCMPG           Opcode = 152
	IFEQ            Opcode = 153
	IFNE            Opcode = 154
	IFLT            Opcode = 155
	IFGE            Opcode = 156
	IFGT            Opcode = 157
	IFLE            Opcode = 158
	IF_ICMPEQ       Opcode = 159
	IF_ICMPNE       Opcode = 160
	IF_ICMPLT       Opcode = 161
	IF_ICMPGE       Opcode = 162
	IF_ICMPGT       Opcode = 163
	IF_ICMPLE       Opcode = 164
	IF_ACMPEQ       Opcode = 165
	IF_ACMPNE       Opcode = 166
	GOTO            Opcode = 167
	JSR             Opcode = 168
	RET             Opcode = 169
	TABLESWITCH     Opcode = 170
	LOOKUPSWITCH    Opcode = 171
	IRETURN         Opcode = 172
	LRETURN         Opcode = 173
	FRETURN         Opcode = 174
	DRETURN         Opcode = 175
	ARETURN         Opcode = 176
	RETURN          Opcode = 177
	GETSTATIC       Opcode = 178
	PUTSTATIC       Opcode = 179
	GETFIELD        Opcode = 180
	PUTFIELD        Opcode = 181
	INVOKEVIRTUAL   Opcode = 182
	INVOKESPECIAL   Opcode = 183
	INVOKESTATIC    Opcode = 184
	INVOKEINTERFACE Opcode = 185
	INVOKEDYNAMIC   Opcode = 186
	NEW             Opcode = 187
	NEWARRAY        Opcode = 188
	ANEWARRAY       Opcode = 189
	ARRAYLENGTH     Opcode = 190
	ATHROW          Opcode = 191
	CHECKCAST       Opcode = 192
	INSTANCEOF      Opcode = 193
	MONITORENTER    Opcode = 194
	MONITOREXIT     Opcode = 195
	WIDE            Opcode = 196
	MULTIANEWARRAY  Opcode = 197
	IFNULL          Opcode = 198
	IFNONNULL       Opcode = 199
	GOTO_W          Opcode = 200
	JSR_W           Opcode = 201
)

// Pseudo-opcodes. Reserved band 202-219, never valid in input or final
// output. The writer substitutes a real opcode into this band when a
// 2-byte branch offset overflows i16 and must wait for the resize pass;
// IFEQ..JSR shift by +49, IFNULL/IFNONNULL shift by +20.
const (
	pseudoGOTO          Opcode = GOTO + 49      // 216
	pseudoJSR           Opcode = JSR + 49       // 217
	pseudoASM_IFEQ      Opcode = IFEQ + 49      // 202
	pseudoASM_IFNE      Opcode = IFNE + 49      // 203
	pseudoASM_IFLT      Opcode = IFLT + 49      // 204
	pseudoASM_IFGE      Opcode = IFGE + 49      // 205
	pseudoASM_IFGT      Opcode = IFGT + 49      // 206
	pseudoASM_IFLE      Opcode = IFLE + 49      // 207
	pseudoASM_IF_ICMPEQ Opcode = IF_ICMPEQ + 49 // 208
	pseudoASM_IF_ICMPNE Opcode = IF_ICMPNE + 49 // 209
	pseudoASM_IF_ICMPLT Opcode = IF_ICMPLT + 49 // 210
	pseudoASM_IF_ICMPGE Opcode = IF_ICMPGE + 49 // 211
	pseudoASM_IF_ICMPGT Opcode = IF_ICMPGT + 49 // 212
	pseudoASM_IF_ICMPLE Opcode = IF_ICMPLE + 49 // 213
	pseudoASM_IF_ACMPEQ Opcode = IF_ACMPEQ + 49 // 214
	pseudoASM_IF_ACMPNE Opcode = IF_ACMPNE + 49 // 215
	pseudoASM_IFNULL    Opcode = IFNULL + 20    // 218
	pseudoASM_IFNONNULL Opcode = IFNONNULL + 20 // 219
)

// PseudoOpcodeLow and PseudoOpcodeHigh bound the reserved internal band.
// A ClassReader must reject any input opcode within this range.
const (
	PseudoOpcodeLow  Opcode = 202
	PseudoOpcodeHigh Opcode = 219
)

// ToPseudo maps a real short-branch opcode to its pseudo-opcode slot, used
// by the writer when a 2-byte offset overflows. ok is false for opcodes
// that have no wide-branch form (e.g. TABLESWITCH, which is already
// 4-byte addressed).
func ToPseudo(op Opcode) (Opcode, bool) {
	switch {
	case op == GOTO:
		return pseudoGOTO, true
	case op == JSR:
		return pseudoJSR, true
	case op == IFNULL:
		return pseudoASM_IFNULL, true
	case op == IFNONNULL:
		return pseudoASM_IFNONNULL, true
	case op >= IFEQ && op <= IF_ACMPNE:
		return op + 49, true
	default:
		return 0, false
	}
}

// FromPseudo is the inverse of ToPseudo.
func FromPseudo(op Opcode) (Opcode, bool) {
	switch {
	case op == pseudoGOTO:
		return GOTO, true
	case op == pseudoJSR:
		return JSR, true
	case op == pseudoASM_IFNULL:
		return IFNULL, true
	case op == pseudoASM_IFNONNULL:
		return IFNONNULL, true
	case op >= pseudoASM_IFEQ && op <= pseudoASM_IF_ACMPNE:
		return op - 49, true
	default:
		return 0, false
	}
}

// NegatedCondition returns the opcode testing the negation of the given
// conditional jump's predicate, used by the resize pass to build the
// "invert and skip over GOTO_W" sequence for a widened conditional branch.
func NegatedCondition(op Opcode) (Opcode, bool) {
	pairs := map[Opcode]Opcode{
		IFEQ: IFNE, IFNE: IFEQ,
		IFLT: IFGE, IFGE: IFLT,
		IFGT: IFLE, IFLE: IFGT,
		IF_ICMPEQ: IF_ICMPNE, IF_ICMPNE: IF_ICMPEQ,
		IF_ICMPLT: IF_ICMPGE, IF_ICMPGE: IF_ICMPLT,
		IF_ICMPGT: IF_ICMPLE, IF_ICMPLE: IF_ICMPGT,
		IF_ACMPEQ: IF_ACMPNE, IF_ACMPNE: IF_ACMPEQ,
		IFNULL: IFNONNULL, IFNONNULL: IFNULL,
	}
	negated, ok := pairs[op]
	return negated, ok
}

// InsnLength is the fixed length in bytes of each opcode's instruction,
// header byte included, for opcodes whose length does not depend on
// operands (variable-length opcodes are zero here and handled specially
// by the reader: TABLESWITCH, LOOKUPSWITCH, WIDE).
var InsnLength = [202]byte{
	NOP: 1, ACONST_NULL: 1, ICONST_M1: 1, ICONST_0: 1, ICONST_1: 1, ICONST_2: 1,
	ICONST_3: 1, ICONST_4: 1, ICONST_5: 1, LCONST_0: 1, LCONST_1: 1, FCONST_0: 1,
	FCONST_1: 1, FCONST_2: 1, DCONST_0: 1, DCONST_1: 1, BIPUSH: 2, SIPUSH: 3,
	LDC: 2, LDC_W: 3, LDC2_W: 3, ILOAD: 2, LLOAD: 2, FLOAD: 2, DLOAD: 2, ALOAD: 2,
	ILOAD_0: 1, ILOAD_1: 1, ILOAD_2: 1, ILOAD_3: 1, LLOAD_0: 1, LLOAD_1: 1,
	LLOAD_2: 1, LLOAD_3: 1, FLOAD_0: 1, FLOAD_1: 1, FLOAD_2: 1, FLOAD_3: 1,
	DLOAD_0: 1, DLOAD_1: 1, DLOAD_2: 1, DLOAD_3: 1, ALOAD_0: 1, ALOAD_1: 1,
	ALOAD_2: 1, ALOAD_3: 1, IALOAD: 1, LALOAD: 1, FALOAD: 1, DALOAD: 1,
	AALOAD: 1, BALOAD: 1, CALOAD: 1, SALOAD: 1, ISTORE: 2, LSTORE: 2, FSTORE: 2,
	DSTORE: 2, ASTORE: 2, ISTORE_0: 1, ISTORE_1: 1, ISTORE_2: 1, ISTORE_3: 1,
	LSTORE_0: 1, LSTORE_1: 1, LSTORE_2: 1, LSTORE_3: 1, FSTORE_0: 1, FSTORE_1: 1,
	FSTORE_2: 1, FSTORE_3: 1, DSTORE_0: 1, DSTORE_1: 1, DSTORE_2: 1, DSTORE_3: 1,
	ASTORE_0: 1, ASTORE_1: 1, ASTORE_2: 1, ASTORE_3: 1, IASTORE: 1, LASTORE: 1,
	FASTORE: 1, DASTORE: 1, AASTORE: 1, BASTORE: 1, CASTORE: 1, SASTORE: 1,
	POP: 1, POP2: 1, DUP: 1, DUP_X1: 1, DUP_X2: 1, DUP2: 1, DUP2_X1: 1,
	DUP2_X2: 1, SWAP: 1, IADD: 1, LADD: 1, FADD: 1, DADD: 1, ISUB: 1, LSUB: 1,
	FSUB: 1, DSUB: 1, IMUL: 1, LMUL: 1, FMUL: 1, DMUL: 1, IDIV: 1, LDIV: 1,
	FDIV: 1, DDIV: 1, IREM: 1, LREM: 1, FREM: 1, DREM: 1, INEG: 1, LNEG: 1,
	FNEG: 1, DNEG: 1, ISHL: 1, LSHL: 1, ISHR: 1, LSHR: 1, IUSHR: 1, LUSHR: 1,
	IAND: 1, LAND: 1, IOR: 1, LOR: 1, IXOR: 1, LXOR: 1, IINC: 3, I2L: 1,
	I2F: 1, I2D: 1, L2I: 1, L2F: 1, L2D: 1, F2I: 1, F2L: 1, F2D: 1, D2I: 1,
	D2L: 1, D2F: 1, I2B: 1, I2C: 1, I2S: 1, LCMP: 1, FCMPL: 1, FCMPG: 1,
	DCMPL: 1, DCMPG: 1, IFEQ: 3, IFNE: 3, IFLT: 3, IFGE: 3, IFGT: 3, IFLE: 3,
	IF_ICMPEQ: 3, IF_ICMPNE: 3, IF_ICMPLT: 3, IF_ICMPGE: 3, IF_ICMPGT: 3,
	IF_ICMPLE: 3, IF_ACMPEQ: 3, IF_ACMPNE: 3, GOTO: 3, JSR: 3, RET: 2,
	TABLESWITCH: 0, LOOKUPSWITCH: 0, IRETURN: 1, LRETURN: 1, FRETURN: 1,
	DRETURN: 1, ARETURN: 1, RETURN: 1, GETSTATIC: 3, PUTSTATIC: 3,
	GETFIELD: 3, PUTFIELD: 3, INVOKEVIRTUAL: 3, INVOKESPECIAL: 3,
	INVOKESTATIC: 3, INVOKEINTERFACE: 5, INVOKEDYNAMIC: 5, NEW: 3,
	NEWARRAY: 2, ANEWARRAY: 3, ARRAYLENGTH: 1, ATHROW: 1, CHECKCAST: 3,
	INSTANCEOF: 3, MONITORENTER: 1, MONITOREXIT: 1, WIDE: 0,
	MULTIANEWARRAY: 4, IFNULL: 3, IFNONNULL: 3, GOTO_W: 5, JSR_W: 5,
}
