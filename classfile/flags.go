package classfile

// ReaderFlags selects which parts of a class file a ClassReader bothers
// decoding, mirroring the original's SKIP_DEBUG/SKIP_FRAMES/SKIP_CODE
// constructor flags (SUPPLEMENTED FEATURES in SPEC_FULL.md).
type ReaderFlags uint8

const (
	// SkipDebug omits LineNumberTable/LocalVariableTable(Type) decoding
	// and the DEBUG-status labels they would otherwise allocate.
	SkipDebug ReaderFlags = 1 << iota
	// SkipFrames drops the StackMapTable attribute, which otherwise
	// reaches the method visitor's VisitAttribute as an opaque Attribute.
	// The reader does not decode frames or call VisitFrame in either case.
	SkipFrames
	// SkipCode skips method bodies: no label discovery, no instruction
	// dispatch, and VisitCode/VisitMaxs are not called. The raw Code
	// attribute reaches the method visitor's VisitAttribute, and the
	// method's VisitEnd is still called.
	SkipCode
)

func (f ReaderFlags) has(bit ReaderFlags) bool { return f&bit != 0 }

// Skips reports whether the given ReaderFlags bit is set, used by the
// bytecode package's ClassReader to decide what to decode.
func (f ReaderFlags) Skips(bit ReaderFlags) bool { return f.has(bit) }

// WriterFlags selects the MethodWriter's max/frame computation mode,
// mirroring the original's COMPUTE_MAXS/COMPUTE_FRAMES distinction
// (spec.md §4.3's cheap vs. expensive mode).
type WriterFlags uint8

const (
	// ComputeNone performs no control-flow analysis: MethodWriter.Finish
	// reports max stack and max locals as 0 and emits no StackMapTable.
	// MethodWriter has no method for supplying these values itself.
	ComputeNone WriterFlags = 0
	// ComputeMaxs runs the cheap fix-point (max stack/locals only).
	ComputeMaxs WriterFlags = 1 << 0
	// ComputeFrames runs the expensive fix-point and emits a compact
	// StackMapTable; implies ComputeMaxs. Rejects jsr/ret (ErrUnsupportedConstruct).
	ComputeFrames WriterFlags = 1 << 1
)

func (f WriterFlags) has(bit WriterFlags) bool { return f&bit != 0 }

// ComputesMaxs reports whether max stack/locals are computed (true for
// either ComputeMaxs or ComputeFrames).
func (f WriterFlags) ComputesMaxs() bool { return f.has(ComputeMaxs) || f.has(ComputeFrames) }

// ComputesFrames reports whether full stack-map frames are computed.
func (f WriterFlags) ComputesFrames() bool { return f.has(ComputeFrames) }

// Access flag bits shared by class, field, and method access_flags
// (JVMS 4.1 Table 4.1-B, 4.5 Table 4.5-A, 4.6 Table 4.6-A). Only the
// bits asmgo's writer/reader actually interprets are named here; the
// rest round-trip as opaque bits in the uint16 access value.
const (
	AccPublic       uint16 = 0x0001
	AccPrivate      uint16 = 0x0002
	AccProtected    uint16 = 0x0004
	AccStatic       uint16 = 0x0008
	AccFinal        uint16 = 0x0010
	AccSuper        uint16 = 0x0020
	AccSynchronized uint16 = 0x0020
	AccInterface    uint16 = 0x0200
	AccAbstract     uint16 = 0x0400
)
